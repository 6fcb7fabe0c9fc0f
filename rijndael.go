// rijndael.go: Rijndael block transform with 128, 192 and 256-bit blocks.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptex

import "crypto/cipher"

// Rijndael encrypts and decrypts single blocks under one expanded key.
//
// With a 16-byte block it is AES. The 24 and 32-byte widths are the
// original Rijndael extensions that AES dropped. Rijndael implements
// cipher.Block, so it plugs into the block-transform driver like any
// other family. A Rijndael value is read-only after construction and may
// be shared between goroutines.
type Rijndael struct {
	key      *ExpandedKey
	nb       int
	nrMinus1 int
}

var _ cipher.Block = (*Rijndael)(nil)

// NewRijndael expands key for a block of blockSize bytes (16, 24 or 32).
//
// Example:
//
//	r, err := cryptex.NewRijndael(key, 32)
//	if err != nil {
//		return err
//	}
//	ct, err := r.EncryptBlock(block)
func NewRijndael(key []byte, blockSize int) (*Rijndael, error) {
	if blockSize%4 != 0 || !isLegalWidth(blockSize/4) {
		return nil, newError(ErrInvalidBlockSize, ErrCodeInvalidBlockSize,
			"block size must be 16, 24 or 32 bytes, got %d", blockSize)
	}
	ek, err := ExpandKey(key, blockSize/4)
	if err != nil {
		return nil, err
	}
	return &Rijndael{key: ek, nb: ek.Nb(), nrMinus1: ek.Rounds() - 1}, nil
}

// BlockSize returns the block size in bytes.
func (r *Rijndael) BlockSize() int { return 4 * r.nb }

// Rounds returns Nr.
func (r *Rijndael) Rounds() int { return r.nrMinus1 + 1 }

// EncryptBlock returns the encryption of exactly one block.
func (r *Rijndael) EncryptBlock(block []byte) ([]byte, error) {
	s, err := r.newBlockState(block)
	if err != nil {
		return nil, err
	}
	r.encryptState(s)
	return s.buf, nil
}

// DecryptBlock returns the decryption of exactly one block.
func (r *Rijndael) DecryptBlock(block []byte) ([]byte, error) {
	s, err := r.newBlockState(block)
	if err != nil {
		return nil, err
	}
	r.decryptState(s)
	return s.buf, nil
}

// Encrypt implements cipher.Block. It panics if src or dst is shorter than a block.
func (r *Rijndael) Encrypt(dst, src []byte) {
	buf := r.scratch(dst, src)
	defer putBuffer(buf)
	s := &State{nb: r.nb, buf: *buf}
	r.encryptState(s)
	copy(dst, s.buf)
}

// Decrypt implements cipher.Block. It panics if src or dst is shorter than a block.
func (r *Rijndael) Decrypt(dst, src []byte) {
	buf := r.scratch(dst, src)
	defer putBuffer(buf)
	s := &State{nb: r.nb, buf: *buf}
	r.decryptState(s)
	copy(dst, s.buf)
}

func (r *Rijndael) newBlockState(block []byte) (*State, error) {
	if len(block) != 4*r.nb {
		return nil, newError(ErrBlockSizeMismatch, ErrCodeBlockSizeMismatch,
			"block must be %d bytes, got %d", 4*r.nb, len(block))
	}
	return NewState(block)
}

// scratch checks the cipher.Block length contract and returns a pooled
// buffer holding a copy of the input block.
func (r *Rijndael) scratch(dst, src []byte) *[]byte {
	bs := 4 * r.nb
	if len(src) < bs {
		panic("cryptex: input not full block")
	}
	if len(dst) < bs {
		panic("cryptex: output not full block")
	}
	buf := getBuffer(bs)
	copy(*buf, src[:bs])
	return buf
}

func (r *Rijndael) encryptState(s *State) {
	s.xorKey(r.key.Round(0))
	for round := 1; round <= r.nrMinus1; round++ {
		s.SubBytes()
		s.ShiftRows()
		s.MixColumns()
		s.xorKey(r.key.Round(round))
	}
	s.SubBytes()
	s.ShiftRows()
	s.xorKey(r.key.Round(r.nrMinus1 + 1))
}

func (r *Rijndael) decryptState(s *State) {
	s.xorKey(r.key.Round(r.nrMinus1 + 1))
	s.InvShiftRows()
	s.InvSubBytes()
	for round := r.nrMinus1; round >= 1; round-- {
		s.xorKey(r.key.Round(round))
		s.InvMixColumns()
		s.InvShiftRows()
		s.InvSubBytes()
	}
	s.xorKey(r.key.Round(0))
}
