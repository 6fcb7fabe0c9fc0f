// keyschedule_test.go: Key expansion tests.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptex_test

import (
	"encoding/hex"
	"testing"

	"github.com/agilira/cryptex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestRounds(t *testing.T) {
	tests := []struct {
		nk, nb, want int
	}{
		{4, 4, 10}, {4, 6, 12}, {4, 8, 14},
		{6, 4, 12}, {6, 6, 12}, {6, 8, 14},
		{8, 4, 14}, {8, 6, 14}, {8, 8, 14},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cryptex.Rounds(tt.nk, tt.nb), "Nk=%d Nb=%d", tt.nk, tt.nb)
	}
}

// Words from the FIPS-197 appendix A expansions.
func TestExpandKey_FIPS197(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		round int
		at    int // byte offset within the round key
		word  string
	}{
		{"128 w4", "2b7e151628aed2a6abf7158809cf4f3c", 1, 0, "a0fafe17"},
		{"128 w43", "2b7e151628aed2a6abf7158809cf4f3c", 10, 12, "b6630ca6"},
		{"192 w6", "8e73b0f7da0e6452c810f32b809079e562f8ead2522c6b7b", 1, 8, "fe0c91f7"},
		{"192 w51", "8e73b0f7da0e6452c810f32b809079e562f8ead2522c6b7b", 12, 12, "01002202"},
		{"256 w8", "603deb1015ca71be2b73aef0857d77811f352c073b6108d72d9810a30914dff4", 2, 0, "9ba35411"},
		{"256 w59", "603deb1015ca71be2b73aef0857d77811f352c073b6108d72d9810a30914dff4", 14, 12, "706c631e"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ek, err := cryptex.ExpandKey(mustHex(t, tt.key), 4)
			require.NoError(t, err)
			got := ek.Round(tt.round)[tt.at : tt.at+4]
			assert.Equal(t, tt.word, hex.EncodeToString(got))
		})
	}
}

func TestExpandKey_FirstRoundIsKey(t *testing.T) {
	key := mustHex(t, "000102030405060708090a0b0c0d0e0f1011121314151617")
	ek, err := cryptex.ExpandKey(key, 6)
	require.NoError(t, err)
	assert.Equal(t, key, ek.Round(0))
}

func TestExpandKey_Shape(t *testing.T) {
	for _, keyLen := range []int{16, 24, 32} {
		for _, nb := range []int{4, 6, 8} {
			ek, err := cryptex.ExpandKey(make([]byte, keyLen), nb)
			require.NoError(t, err)
			assert.Equal(t, nb, ek.Nb())
			assert.Equal(t, keyLen/4, ek.Nk())
			assert.Equal(t, cryptex.Rounds(keyLen/4, nb), ek.Rounds())
			for r := 0; r <= ek.Rounds(); r++ {
				assert.Len(t, ek.Round(r), 4*nb)
			}
		}
	}
}

func TestExpandKey_Errors(t *testing.T) {
	_, err := cryptex.ExpandKey(make([]byte, 15), 4)
	assert.ErrorIs(t, err, cryptex.ErrInvalidKeySize)

	_, err = cryptex.ExpandKey(make([]byte, 20), 4)
	assert.ErrorIs(t, err, cryptex.ErrInvalidKeySize)

	_, err = cryptex.ExpandKey(nil, 4)
	assert.ErrorIs(t, err, cryptex.ErrInvalidKeySize)

	_, err = cryptex.ExpandKey(make([]byte, 16), 5)
	assert.ErrorIs(t, err, cryptex.ErrInvalidBlockSize)
}

func TestExpandKey_CopiesKey(t *testing.T) {
	key := mustHex(t, "2b7e151628aed2a6abf7158809cf4f3c")
	a, err := cryptex.ExpandKey(key, 4)
	require.NoError(t, err)
	b, err := cryptex.ExpandKey(key, 4)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	cryptex.Zeroize(key)
	c, err := cryptex.ExpandKey(key, 4)
	require.NoError(t, err)
	assert.False(t, a.Equal(c))
	assert.True(t, a.Equal(b), "wiping the caller's key must not change a schedule")
	assert.False(t, a.Equal(nil))
}
