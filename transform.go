// transform.go: Generic block-transform driver.
//
// A Transform owns the configuration of one encrypt or decrypt pass and
// drives a single-block engine across a buffer. The engine comes from the
// cipher family, so the same driver serves the custom Rijndael and every
// cipher.Block in the registry.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptex

import (
	"crypto/cipher"
)

// Transform drives a cipher family over whole blocks in one direction.
//
// Configuration is checked eagerly by each setter. The first call to
// Finalize, TransformBlock or TransformFinalBlock locks it; later setter
// calls fail with ErrConfigLocked. A Transform is not safe for concurrent
// use, but distinct transforms share no mutable state.
type Transform struct {
	family    *Family
	op        Operation
	blockSize int // bits
	key       []byte
	iv        []byte
	mode      CipherMode
	padding   PaddingMode

	begun  bool
	engine cipher.Block
}

// NewTransform returns an unlocked transform for family running in op,
// with the family's default block size, ECB and no padding.
func NewTransform(family *Family, op Operation) (*Transform, error) {
	if family == nil {
		return nil, newError(ErrUnknownFamily, ErrCodeUnknownFamily, "family cannot be nil")
	}
	if op != OpEncrypt && op != OpDecrypt {
		return nil, newError(ErrInvalidOperation, ErrCodeInvalidOperation, "unrecognized operation %d", int(op))
	}
	return &Transform{
		family:    family,
		op:        op,
		blockSize: family.DefaultBlockSize,
		mode:      ModeECB,
		padding:   PaddingNone,
	}, nil
}

func (t *Transform) checkUnlocked(what string) error {
	if t.begun {
		return newError(ErrConfigLocked, ErrCodeConfigLocked, "cannot set %s after operations have begun", what)
	}
	return nil
}

// SetBlockSize sets the block size in bits.
func (t *Transform) SetBlockSize(bits int) error {
	if err := t.checkUnlocked("block size"); err != nil {
		return err
	}
	if !IsLegalSize(bits, t.family.BlockSizes) {
		return newError(ErrInvalidBlockSize, ErrCodeInvalidBlockSize,
			"legal block sizes for %s are %v, not %d", t.family.ID, LegalSizes(t.family.BlockSizes), bits)
	}
	t.blockSize = bits
	return nil
}

// SetKey stores a copy of key, whose length must be a legal key size.
func (t *Transform) SetKey(key []byte) error {
	if err := t.checkUnlocked("key"); err != nil {
		return err
	}
	if !IsLegalSize(len(key)*8, t.family.KeySizes) {
		return newError(ErrInvalidKeySize, ErrCodeInvalidKeySize,
			"legal key sizes for %s are %v, not %d", t.family.ID, LegalSizes(t.family.KeySizes), len(key)*8)
	}
	t.key = append(t.key[:0], key...)
	return nil
}

// SetIV stores a copy of iv. A nil iv clears it. A non-nil iv must have the
// length of a legal block size; Finalize checks it against the chosen one.
func (t *Transform) SetIV(iv []byte) error {
	if err := t.checkUnlocked("IV"); err != nil {
		return err
	}
	if iv == nil {
		t.iv = nil
		return nil
	}
	if !IsLegalSize(len(iv)*8, t.family.BlockSizes) {
		return newError(ErrInvalidIVSize, ErrCodeInvalidIVSize,
			"legal IV sizes for %s are %v, not %d", t.family.ID, LegalSizes(t.family.BlockSizes), len(iv)*8)
	}
	t.iv = append(t.iv[:0], iv...)
	return nil
}

// SetMode sets the cipher mode.
func (t *Transform) SetMode(mode CipherMode) error {
	if err := t.checkUnlocked("mode"); err != nil {
		return err
	}
	if !isSupportedMode(mode) {
		return newError(ErrModeNotSupported, ErrCodeModeNotSupported, "mode %s is not supported", mode)
	}
	t.mode = mode
	return nil
}

// SetPadding records the padding the caller applies around this transform.
func (t *Transform) SetPadding(padding PaddingMode) error {
	if err := t.checkUnlocked("padding"); err != nil {
		return err
	}
	if !padding.Valid() {
		return newError(ErrPaddingNotSupported, ErrCodePaddingUnsupported, "unknown padding mode %d", int(padding))
	}
	t.padding = padding
	return nil
}

// Operation returns the direction of the transform.
func (t *Transform) Operation() Operation { return t.op }

// BlockSize returns the block size in bits.
func (t *Transform) BlockSize() int { return t.blockSize }

// Mode returns the configured cipher mode.
func (t *Transform) Mode() CipherMode { return t.mode }

// Padding returns the configured padding.
func (t *Transform) Padding() PaddingMode { return t.padding }

// Locked reports whether operations have begun.
func (t *Transform) Locked() bool { return t.begun }

// Finalize validates the configuration, builds the block engine and locks
// the transform. Calling it again is a no-op.
func (t *Transform) Finalize() error {
	if t.begun {
		return nil
	}
	if len(t.key) == 0 {
		return newError(ErrNoKey, ErrCodeNoKey, "no key configured for %s", t.family.ID)
	}

	bs := t.blockSize / 8
	if t.iv != nil && len(t.iv) != bs {
		return newError(ErrInvalidIVSize, ErrCodeInvalidIVSize, "IV must be %d bytes, got %d", bs, len(t.iv))
	}
	if t.mode.NeedsIV() && t.iv == nil {
		return newError(ErrNoIV, ErrCodeNoIV, "mode %s requires an IV", t.mode)
	}

	engine, err := t.family.NewBlock(t.key, bs)
	if err != nil {
		return wrapError(ErrInvalidKeySize, err, ErrCodeCipherInit, "failed to create "+t.family.ID+" block engine")
	}
	if engine.BlockSize() != bs {
		return newError(ErrBlockSizeMismatch, ErrCodeBlockSizeMismatch,
			"%s engine has %d-byte blocks, configured %d", t.family.ID, engine.BlockSize(), bs)
	}

	t.engine = engine
	t.begun = true
	return nil
}

// TransformBlock transforms every whole block of src into dst and returns
// the number of bytes transformed. A trailing partial block is copied to
// dst unchanged; callers pad before reaching it. dst must be at least
// len(src) bytes and may alias src exactly.
//
// Decryption walks the blocks from last to first and writes each one back
// to its own offset.
func (t *Transform) TransformBlock(dst, src []byte) (int, error) {
	if err := t.Finalize(); err != nil {
		return 0, err
	}
	if len(dst) < len(src) {
		return 0, newError(ErrBlockSizeMismatch, ErrCodeBlockSizeMismatch,
			"output buffer of %d bytes cannot hold %d input bytes", len(dst), len(src))
	}

	bs := t.engine.BlockSize()
	whole := len(src) - len(src)%bs
	t.run(dst[:whole], src[:whole], bs)
	copy(dst[whole:len(src)], src[whole:])
	return whole, nil
}

// TransformFinalBlock runs the same loop as TransformBlock into a freshly
// allocated buffer holding the final segment of a stream.
func (t *Transform) TransformFinalBlock(src []byte) ([]byte, error) {
	out := make([]byte, len(src))
	if _, err := t.TransformBlock(out, src); err != nil {
		return nil, err
	}
	return out, nil
}

// run processes len(src)/bs blocks. The forward and the mirrored reverse
// offsets are both computed on every iteration and the active one is
// selected arithmetically, so the addressing work is the same for both
// directions. This narrows the timing difference; it is not constant time.
func (t *Transform) run(dst, src []byte, bs int) {
	n := len(src) / bs
	rev := int(t.op - OpEncrypt) // 0 encrypting, 1 decrypting
	fwd := 1 - rev

	for i := 0; i < n; i++ {
		forwardOff := i * bs
		reverseOff := (n - 1 - i) * bs
		off := forwardOff*fwd + reverseOff*rev

		in := src[off : off+bs]
		out := dst[off : off+bs]
		if t.op == OpEncrypt {
			t.engine.Encrypt(out, in)
		} else {
			t.engine.Decrypt(out, in)
		}
	}
}
