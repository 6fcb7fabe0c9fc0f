// registry_test.go: Cipher family registry tests.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptex_test

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"testing"

	"github.com/agilira/cryptex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFamilies_Registered(t *testing.T) {
	ids := cryptex.Families()
	for _, want := range []string{"aes", "camellia", "des", "hight", "rijndael", "seed", "serpent", "tripledes"} {
		assert.Contains(t, ids, want)
	}
	assert.IsIncreasing(t, ids)
}

func TestLookupFamily(t *testing.T) {
	f, err := cryptex.LookupFamily("RIJNDAEL")
	require.NoError(t, err)
	assert.Equal(t, "rijndael", f.ID)
	assert.Equal(t, []int{128, 192, 256}, cryptex.LegalSizes(f.BlockSizes))

	_, err = cryptex.LookupFamily("rc2")
	assert.ErrorIs(t, err, cryptex.ErrUnknownFamily)
}

// Every family must encrypt and decrypt whole buffers at every legal size.
func TestFamilies_RoundTrip(t *testing.T) {
	for _, id := range cryptex.Families() {
		f, err := cryptex.LookupFamily(id)
		require.NoError(t, err)

		for _, blockBits := range cryptex.LegalSizes(f.BlockSizes) {
			for _, keyBits := range cryptex.LegalSizes(f.KeySizes) {
				t.Run(fmt.Sprintf("%s_b%d_k%d", id, blockBits, keyBits), func(t *testing.T) {
					alg, err := cryptex.NewCipher(id)
					require.NoError(t, err)
					require.NoError(t, alg.SetBlockSize(blockBits))
					require.NoError(t, alg.SetKeySize(keyBits))

					ks := cryptex.NewStaticKeySource(sequence(keyBits/8), nil)
					pt := bytes.Repeat([]byte{0x42}, 4*blockBits/8)

					ct, err := alg.Encrypt(pt, ks)
					require.NoError(t, err)
					require.Len(t, ct, len(pt))
					assert.NotEqual(t, pt, ct)

					back, err := alg.Decrypt(ct, ks)
					require.NoError(t, err)
					assert.Equal(t, pt, back)
				})
			}
		}
	}
}

func TestFamilies_AESMatchesRijndael128(t *testing.T) {
	key := sequence(32)
	pt := bytes.Repeat([]byte("sixteen byte blk"), 4)
	ks := cryptex.NewStaticKeySource(key, nil)

	a, err := cryptex.NewCipher("aes")
	require.NoError(t, err)
	r, err := cryptex.NewCipher("rijndael")
	require.NoError(t, err)

	fromAES, err := a.Encrypt(pt, ks)
	require.NoError(t, err)
	fromRijndael, err := r.Encrypt(pt, ks)
	require.NoError(t, err)
	assert.Equal(t, fromAES, fromRijndael)

	std, err := aes.NewCipher(key)
	require.NoError(t, err)
	want := make([]byte, 16)
	std.Encrypt(want, pt[:16])
	assert.Equal(t, want, fromAES[:16])
}

func TestRegisterFamily(t *testing.T) {
	err := cryptex.RegisterFamily(cryptex.Family{ID: "broken"})
	assert.ErrorIs(t, err, cryptex.ErrUnknownFamily)

	factory := func(key []byte, _ int) (cipher.Block, error) { return aes.NewCipher(key) }

	err = cryptex.RegisterFamily(cryptex.Family{
		ID:               "bad-default",
		BlockSizes:       []cryptex.KeySizes{{Min: 128, Max: 128}},
		KeySizes:         []cryptex.KeySizes{{Min: 128, Max: 128}},
		DefaultBlockSize: 64,
		DefaultKeySize:   128,
		NewBlock:         factory,
	})
	assert.ErrorIs(t, err, cryptex.ErrInvalidBlockSize)

	err = cryptex.RegisterFamily(cryptex.Family{
		ID:               "Test-AES128",
		Description:      "AES restricted to 128-bit keys",
		BlockSizes:       []cryptex.KeySizes{{Min: 128, Max: 128}},
		KeySizes:         []cryptex.KeySizes{{Min: 128, Max: 128}},
		DefaultBlockSize: 128,
		DefaultKeySize:   128,
		NewBlock:         factory,
	})
	require.NoError(t, err)

	alg, err := cryptex.NewCipher("test-aes128")
	require.NoError(t, err)
	assert.Equal(t, "test-aes128", alg.Identifier())
	assert.ErrorIs(t, alg.SetKeySize(256), cryptex.ErrInvalidKeySize)
}

func TestNewCipher_Defaults(t *testing.T) {
	tests := []struct {
		id        string
		blockBits int
		keyBits   int
	}{
		{"rijndael", 128, 256},
		{"aes", 128, 256},
		{"des", 64, 64},
		{"tripledes", 64, 192},
		{"camellia", 128, 256},
		{"serpent", 128, 256},
		{"seed", 128, 128},
		{"hight", 64, 128},
	}

	for _, tt := range tests {
		alg, err := cryptex.NewCipher(tt.id)
		require.NoError(t, err, tt.id)
		assert.Equal(t, tt.blockBits, alg.BlockSize(), tt.id)
		assert.Equal(t, tt.keyBits, alg.KeySize(), tt.id)
		assert.Equal(t, cryptex.ModeECB, alg.Mode(), tt.id)
		assert.Equal(t, cryptex.PaddingNone, alg.Padding(), tt.id)
	}
}

func TestDescribe(t *testing.T) {
	got, err := cryptex.Describe("Rijndael")
	require.NoError(t, err)
	assert.Equal(t, "Rijndael with 128, 192 or 256-bit blocks (block 128-256/64, key 128-256/64)", got)

	got, err = cryptex.Describe("des")
	require.NoError(t, err)
	assert.Contains(t, got, "(block 64, key 64)")

	_, err = cryptex.Describe("rc2")
	assert.ErrorIs(t, err, cryptex.ErrUnknownFamily)
}
