// keyschedule.go: Rijndael key expansion for variable block and key widths.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptex

import "bytes"

// isLegalWidth reports whether n is a legal Nb or Nk.
func isLegalWidth(n int) bool {
	return n == 4 || n == 6 || n == 8
}

// Rounds returns Nr for the given key and block widths in 32-bit words.
func Rounds(nk, nb int) int {
	if nk > nb {
		return nk + 6
	}
	return nb + 6
}

// ExpandedKey holds the Nr+1 round keys derived from a raw key. It is
// immutable after ExpandKey returns and owns its storage.
type ExpandedKey struct {
	nb, nk, nr int
	words      []byte // 4*Nb*(Nr+1) bytes, one 4-byte word after another
}

// ExpandKey derives the round keys for key at a block width of nb columns.
//
// The key length selects Nk (16, 24 or 32 bytes). The key is copied, so the
// caller may wipe it after this returns.
func ExpandKey(key []byte, nb int) (*ExpandedKey, error) {
	if len(key)%4 != 0 || !isLegalWidth(len(key)/4) {
		return nil, newError(ErrInvalidKeySize, ErrCodeInvalidKeySize,
			"key must be 16, 24 or 32 bytes, got %d", len(key))
	}
	if !isLegalWidth(nb) {
		return nil, newError(ErrInvalidBlockSize, ErrCodeInvalidBlockSize,
			"block width must be 4, 6 or 8 columns, got %d", nb)
	}

	nk := len(key) / 4
	nr := Rounds(nk, nb)
	total := nb * (nr + 1)

	w := make([]byte, 4*total)
	copy(w, key)

	var temp [4]byte
	for i := nk; i < total; i++ {
		copy(temp[:], w[4*(i-1):4*i])

		switch {
		case i%nk == 0:
			// RotWord, SubWord, Rcon
			temp[0], temp[1], temp[2], temp[3] = sbox[temp[1]], sbox[temp[2]], sbox[temp[3]], sbox[temp[0]]
			temp[0] ^= rcon[i/nk]
		case nk > 6 && i%nk == 4:
			for j := range temp {
				temp[j] = sbox[temp[j]]
			}
		}

		prev := w[4*(i-nk) : 4*(i-nk)+4]
		for j := 0; j < 4; j++ {
			w[4*i+j] = prev[j] ^ temp[j]
		}
	}

	return &ExpandedKey{nb: nb, nk: nk, nr: nr, words: w}, nil
}

// Rounds returns Nr.
func (k *ExpandedKey) Rounds() int { return k.nr }

// Nb returns the block width in columns the key was expanded for.
func (k *ExpandedKey) Nb() int { return k.nb }

// Nk returns the key width in words.
func (k *ExpandedKey) Nk() int { return k.nk }

// Round returns the subkey for round i (0..Nr) as 4*Nb bytes in column order.
// The returned slice aliases internal storage and must not be modified.
func (k *ExpandedKey) Round(i int) []byte {
	size := 4 * k.nb
	return k.words[i*size : (i+1)*size : (i+1)*size]
}

// Equal reports whether both schedules hold identical round keys.
func (k *ExpandedKey) Equal(other *ExpandedKey) bool {
	if other == nil {
		return false
	}
	return k.nb == other.nb && k.nk == other.nk && bytes.Equal(k.words, other.words)
}
