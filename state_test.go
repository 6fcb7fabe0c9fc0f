// state_test.go: Round primitive tests.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptex_test

import (
	"testing"

	"github.com/agilira/cryptex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func TestNewState_Sizes(t *testing.T) {
	for _, n := range []int{16, 24, 32} {
		s, err := cryptex.NewState(sequence(n))
		require.NoError(t, err)
		assert.Equal(t, n/4, s.Nb())
		assert.Equal(t, sequence(n), s.Bytes())
	}

	for _, n := range []int{0, 8, 15, 20, 28, 36} {
		_, err := cryptex.NewState(make([]byte, n))
		assert.ErrorIs(t, err, cryptex.ErrInvalidStateSize, "len %d", n)
	}
}

func TestState_CopiesInput(t *testing.T) {
	in := sequence(16)
	s, err := cryptex.NewState(in)
	require.NoError(t, err)

	in[0] = 0xff
	out := s.Bytes()
	assert.Equal(t, byte(0), out[0])
	out[1] = 0xff
	assert.Equal(t, byte(1), s.Bytes()[1])
}

func TestShiftRows_AES(t *testing.T) {
	s, err := cryptex.NewState(sequence(16))
	require.NoError(t, err)
	s.ShiftRows()
	want := []byte{0, 5, 10, 15, 4, 9, 14, 3, 8, 13, 2, 7, 12, 1, 6, 11}
	assert.Equal(t, want, s.Bytes())
}

func TestShiftRows_Offsets(t *testing.T) {
	offsets := map[int][3]int{4: {1, 2, 3}, 6: {1, 2, 3}, 8: {1, 3, 4}}

	for nb, off := range offsets {
		s, err := cryptex.NewState(sequence(4 * nb))
		require.NoError(t, err)
		s.ShiftRows()
		got := s.Bytes()

		for r := 0; r < 4; r++ {
			shift := 0
			if r > 0 {
				shift = off[r-1]
			}
			for c := 0; c < nb; c++ {
				want := byte(r + 4*((c+shift)%nb))
				assert.Equal(t, want, got[r+4*c], "Nb=%d row %d col %d", nb, r, c)
			}
		}
	}
}

func TestState_Inverses(t *testing.T) {
	for _, n := range []int{16, 24, 32} {
		in := sequence(n)
		for i := range in {
			in[i] = byte(i*37 + 11)
		}

		s, err := cryptex.NewState(in)
		require.NoError(t, err)

		s.ShiftRows()
		s.InvShiftRows()
		assert.Equal(t, in, s.Bytes(), "ShiftRows, Nb=%d", n/4)

		s.SubBytes()
		s.InvSubBytes()
		assert.Equal(t, in, s.Bytes(), "SubBytes, Nb=%d", n/4)

		s.MixColumns()
		s.InvMixColumns()
		assert.Equal(t, in, s.Bytes(), "MixColumns, Nb=%d", n/4)
	}
}

func TestSubBytes(t *testing.T) {
	s, err := cryptex.NewState(sequence(16))
	require.NoError(t, err)
	s.SubBytes()
	for i, b := range s.Bytes() {
		assert.Equal(t, cryptex.SubByte(byte(i)), b)
	}
}

func TestMixColumns_KnownColumns(t *testing.T) {
	in := mustHex(t, "db135345f20a225c01010101c6c6c6c6")
	want := mustHex(t, "8e4da1bc9fdc589d01010101c6c6c6c6")

	s, err := cryptex.NewState(in)
	require.NoError(t, err)
	s.MixColumns()
	assert.Equal(t, want, s.Bytes())
}

func TestAddRoundKey(t *testing.T) {
	s, err := cryptex.NewState(sequence(16))
	require.NoError(t, err)

	key := make([]byte, 16)
	for i := range key {
		key[i] = 0xff
	}
	require.NoError(t, s.AddRoundKey(key))
	for i, b := range s.Bytes() {
		assert.Equal(t, byte(i)^0xff, b)
	}

	err = s.AddRoundKey(make([]byte, 24))
	assert.ErrorIs(t, err, cryptex.ErrRoundKeySize)
}
