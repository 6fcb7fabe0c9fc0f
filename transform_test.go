// transform_test.go: Block-transform driver tests.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptex_test

import (
	"bytes"
	"crypto/cipher"
	"sync"
	"testing"

	"github.com/agilira/cryptex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rijndaelFamily(t testing.TB) *cryptex.Family {
	t.Helper()
	f, err := cryptex.LookupFamily("rijndael")
	require.NoError(t, err)
	return f
}

func newTransform(t testing.TB, op cryptex.Operation, blockBits int, key []byte) *cryptex.Transform {
	t.Helper()
	tr, err := cryptex.NewTransform(rijndaelFamily(t), op)
	require.NoError(t, err)
	require.NoError(t, tr.SetBlockSize(blockBits))
	require.NoError(t, tr.SetKey(key))
	return tr
}

// recorder is an identity block cipher that records the first byte of every
// block it sees, which the tests use as the block index.
type recorder struct {
	mu    sync.Mutex
	order []byte
}

func (r *recorder) BlockSize() int { return 16 }

func (r *recorder) Encrypt(dst, src []byte) { r.record(dst, src) }

func (r *recorder) Decrypt(dst, src []byte) { r.record(dst, src) }

func (r *recorder) record(dst, src []byte) {
	r.mu.Lock()
	r.order = append(r.order, src[0])
	r.mu.Unlock()
	copy(dst, src[:16])
}

func recorderFamily(rec *recorder) *cryptex.Family {
	return &cryptex.Family{
		ID:               "recorder",
		BlockSizes:       []cryptex.KeySizes{{Min: 128, Max: 128}},
		KeySizes:         []cryptex.KeySizes{{Min: 128, Max: 128}},
		DefaultBlockSize: 128,
		DefaultKeySize:   128,
		NewBlock: func(key []byte, blockSize int) (cipher.Block, error) {
			return rec, nil
		},
	}
}

func indexedBlocks(n int) []byte {
	buf := make([]byte, 16*n)
	for i := 0; i < n; i++ {
		buf[16*i] = byte(i)
	}
	return buf
}

func TestTransform_BlockOrder(t *testing.T) {
	tests := []struct {
		op   cryptex.Operation
		want []byte
	}{
		{cryptex.OpEncrypt, []byte{0, 1, 2, 3}},
		{cryptex.OpDecrypt, []byte{3, 2, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			rec := &recorder{}
			tr, err := cryptex.NewTransform(recorderFamily(rec), tt.op)
			require.NoError(t, err)
			require.NoError(t, tr.SetKey(make([]byte, 16)))

			src := indexedBlocks(4)
			out, err := tr.TransformFinalBlock(src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.order)
			// Every block lands back at its own offset.
			assert.Equal(t, src, out)
		})
	}
}

func TestTransform_MatchesBlockCipher(t *testing.T) {
	key := sequence(32)
	for _, blockBits := range []int{128, 192, 256} {
		bs := blockBits / 8
		r, err := cryptex.NewRijndael(key, bs)
		require.NoError(t, err)

		src := bytes.Repeat(sequence(bs), 5)
		for i := range src {
			src[i] ^= byte(i / bs)
		}
		want := make([]byte, len(src))
		for off := 0; off < len(src); off += bs {
			r.Encrypt(want[off:off+bs], src[off:off+bs])
		}

		enc := newTransform(t, cryptex.OpEncrypt, blockBits, key)
		got, err := enc.TransformFinalBlock(src)
		require.NoError(t, err)
		assert.Equal(t, want, got, "block %d", blockBits)

		dec := newTransform(t, cryptex.OpDecrypt, blockBits, key)
		back, err := dec.TransformFinalBlock(got)
		require.NoError(t, err)
		assert.Equal(t, src, back, "block %d", blockBits)
	}
}

func TestTransform_PartialTail(t *testing.T) {
	tr := newTransform(t, cryptex.OpEncrypt, 128, sequence(16))
	src := sequence(40)
	dst := make([]byte, 40)

	n, err := tr.TransformBlock(dst, src)
	require.NoError(t, err)
	assert.Equal(t, 32, n)
	assert.Equal(t, src[32:], dst[32:], "partial tail is copied through")
	assert.NotEqual(t, src[:32], dst[:32])
}

func TestTransform_InPlace(t *testing.T) {
	key := sequence(24)
	buf := bytes.Repeat([]byte("in-place buffer!"), 3)
	orig := append([]byte(nil), buf...)

	enc := newTransform(t, cryptex.OpEncrypt, 128, key)
	_, err := enc.TransformBlock(buf, buf)
	require.NoError(t, err)
	assert.NotEqual(t, orig, buf)

	dec := newTransform(t, cryptex.OpDecrypt, 128, key)
	_, err = dec.TransformBlock(buf, buf)
	require.NoError(t, err)
	assert.Equal(t, orig, buf)
}

func TestTransform_ShortOutput(t *testing.T) {
	tr := newTransform(t, cryptex.OpEncrypt, 128, sequence(16))
	_, err := tr.TransformBlock(make([]byte, 16), make([]byte, 32))
	assert.ErrorIs(t, err, cryptex.ErrBlockSizeMismatch)
}

func TestTransform_Empty(t *testing.T) {
	tr := newTransform(t, cryptex.OpEncrypt, 128, sequence(16))
	out, err := tr.TransformFinalBlock(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestTransform_Validation(t *testing.T) {
	_, err := cryptex.NewTransform(nil, cryptex.OpEncrypt)
	assert.ErrorIs(t, err, cryptex.ErrUnknownFamily)

	_, err = cryptex.NewTransform(rijndaelFamily(t), cryptex.Operation(7))
	assert.ErrorIs(t, err, cryptex.ErrInvalidOperation)

	tr, err := cryptex.NewTransform(rijndaelFamily(t), cryptex.OpEncrypt)
	require.NoError(t, err)
	assert.Equal(t, 128, tr.BlockSize())
	assert.Equal(t, cryptex.ModeECB, tr.Mode())
	assert.Equal(t, cryptex.PaddingNone, tr.Padding())

	assert.ErrorIs(t, tr.SetBlockSize(96), cryptex.ErrInvalidBlockSize)
	assert.ErrorIs(t, tr.SetKey(make([]byte, 10)), cryptex.ErrInvalidKeySize)
	assert.ErrorIs(t, tr.SetIV(make([]byte, 10)), cryptex.ErrInvalidIVSize)
	assert.ErrorIs(t, tr.SetMode(cryptex.ModeCBC), cryptex.ErrModeNotSupported)
	assert.ErrorIs(t, tr.SetPadding(cryptex.PaddingMode(0)), cryptex.ErrPaddingNotSupported)
	assert.NoError(t, tr.SetPadding(cryptex.PaddingPKCS7), "legal padding values are accepted")

	assert.ErrorIs(t, tr.Finalize(), cryptex.ErrNoKey)

	require.NoError(t, tr.SetKey(sequence(16)))
	require.NoError(t, tr.SetIV(make([]byte, 32)))
	assert.ErrorIs(t, tr.Finalize(), cryptex.ErrInvalidIVSize)

	require.NoError(t, tr.SetIV(nil))
	require.NoError(t, tr.Finalize())
}

func TestTransform_LocksAfterFirstUse(t *testing.T) {
	tr := newTransform(t, cryptex.OpEncrypt, 128, sequence(16))
	assert.False(t, tr.Locked())

	_, err := tr.TransformBlock(make([]byte, 16), make([]byte, 16))
	require.NoError(t, err)
	assert.True(t, tr.Locked())

	assert.ErrorIs(t, tr.SetBlockSize(256), cryptex.ErrConfigLocked)
	assert.ErrorIs(t, tr.SetKey(sequence(32)), cryptex.ErrConfigLocked)
	assert.ErrorIs(t, tr.SetIV(nil), cryptex.ErrConfigLocked)
	assert.ErrorIs(t, tr.SetMode(cryptex.ModeECB), cryptex.ErrConfigLocked)
	assert.ErrorIs(t, tr.SetPadding(cryptex.PaddingZeros), cryptex.ErrConfigLocked)
	assert.NoError(t, tr.Finalize())
}

func TestTransform_SetKeyCopies(t *testing.T) {
	key := sequence(16)
	a := newTransform(t, cryptex.OpEncrypt, 128, key)
	cryptex.Zeroize(key)
	b := newTransform(t, cryptex.OpEncrypt, 128, sequence(16))

	x, err := a.TransformFinalBlock(make([]byte, 16))
	require.NoError(t, err)
	y, err := b.TransformFinalBlock(make([]byte, 16))
	require.NoError(t, err)
	assert.Equal(t, y, x)
}

func TestTransform_IndependentConcurrentTransforms(t *testing.T) {
	key := sequence(32)
	src := bytes.Repeat([]byte("concurrent block"), 64)
	ref := newTransform(t, cryptex.OpEncrypt, 256, key)
	want, err := ref.TransformFinalBlock(src)
	require.NoError(t, err)

	family := rijndaelFamily(t)
	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr, err := cryptex.NewTransform(family, cryptex.OpEncrypt)
			if err == nil {
				err = tr.SetBlockSize(256)
			}
			if err == nil {
				err = tr.SetKey(key)
			}
			if err != nil {
				errs <- err
				return
			}
			got, err := tr.TransformFinalBlock(src)
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(want, got) {
				errs <- assert.AnError
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func BenchmarkTransform(b *testing.B) {
	tr := newTransform(b, cryptex.OpEncrypt, 256, sequence(32))
	buf := make([]byte, 64*1024)
	b.SetBytes(int64(len(buf)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tr.TransformBlock(buf, buf); err != nil {
			b.Fatal(err)
		}
	}
}
