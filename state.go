// state.go: The 4xNb Rijndael state matrix and its round primitives.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptex

// shiftOffsets holds the left rotation for rows 1..3, indexed by Nb.
var shiftOffsets = map[int][3]int{
	4: {1, 2, 3},
	6: {1, 2, 3},
	8: {1, 3, 4},
}

// State is the working matrix of one block transform. Bytes are stored in
// column order: input byte i lands in row i%4, column i/4.
//
// A State is scratch data for a single block call and is not safe for
// concurrent use.
type State struct {
	nb  int
	buf []byte
	tmp [8]byte
}

// NewState builds a State from a copy of block, which must be 16, 24 or 32 bytes.
func NewState(block []byte) (*State, error) {
	if len(block)%4 != 0 || !isLegalWidth(len(block)/4) {
		return nil, newError(ErrInvalidStateSize, ErrCodeInvalidStateSize,
			"state requires 16, 24 or 32 bytes, got %d", len(block))
	}
	s := &State{nb: len(block) / 4, buf: make([]byte, len(block))}
	copy(s.buf, block)
	return s, nil
}

// Nb returns the number of columns.
func (s *State) Nb() int { return s.nb }

// Bytes returns a copy of the state in column order.
func (s *State) Bytes() []byte {
	out := make([]byte, len(s.buf))
	copy(out, s.buf)
	return out
}

// at returns the byte at row r, column c.
func (s *State) at(r, c int) byte { return s.buf[r+4*c] }

func (s *State) SubBytes() {
	for i, b := range s.buf {
		s.buf[i] = sbox[b]
	}
}

func (s *State) InvSubBytes() {
	for i, b := range s.buf {
		s.buf[i] = invSbox[b]
	}
}

// ShiftRows rotates row r left by the Nb-dependent offset; row 0 is fixed.
func (s *State) ShiftRows() {
	s.rotateRows(false)
}

// InvShiftRows rotates each row right by the same offsets ShiftRows uses.
func (s *State) InvShiftRows() {
	s.rotateRows(true)
}

func (s *State) rotateRows(inverse bool) {
	offsets := shiftOffsets[s.nb]
	row := s.tmp[:s.nb]
	for r := 1; r < 4; r++ {
		shift := offsets[r-1]
		if inverse {
			shift = s.nb - shift
		}
		for c := 0; c < s.nb; c++ {
			row[c] = s.at(r, (c+shift)%s.nb)
		}
		for c := 0; c < s.nb; c++ {
			s.buf[r+4*c] = row[c]
		}
	}
}

// MixColumns multiplies every column by {2,3,1,1} circulant over GF(2^8).
func (s *State) MixColumns() {
	for c := 0; c < s.nb; c++ {
		col := s.buf[4*c : 4*c+4]
		a0, a1, a2, a3 := col[0], col[1], col[2], col[3]
		col[0] = GMul(a0, 2) ^ GMul(a1, 3) ^ a2 ^ a3
		col[1] = a0 ^ GMul(a1, 2) ^ GMul(a2, 3) ^ a3
		col[2] = a0 ^ a1 ^ GMul(a2, 2) ^ GMul(a3, 3)
		col[3] = GMul(a0, 3) ^ a1 ^ a2 ^ GMul(a3, 2)
	}
}

// InvMixColumns multiplies every column by the {14,11,13,9} circulant.
func (s *State) InvMixColumns() {
	for c := 0; c < s.nb; c++ {
		col := s.buf[4*c : 4*c+4]
		a0, a1, a2, a3 := col[0], col[1], col[2], col[3]
		col[0] = GMul(a0, 14) ^ GMul(a1, 11) ^ GMul(a2, 13) ^ GMul(a3, 9)
		col[1] = GMul(a0, 9) ^ GMul(a1, 14) ^ GMul(a2, 11) ^ GMul(a3, 13)
		col[2] = GMul(a0, 13) ^ GMul(a1, 9) ^ GMul(a2, 14) ^ GMul(a3, 11)
		col[3] = GMul(a0, 11) ^ GMul(a1, 13) ^ GMul(a2, 9) ^ GMul(a3, 14)
	}
}

// AddRoundKey XORs the state with one round key of 4*Nb bytes.
func (s *State) AddRoundKey(subkey []byte) error {
	if len(subkey) != len(s.buf) {
		return newError(ErrRoundKeySize, ErrCodeRoundKeySize,
			"round key must be %d bytes, got %d", len(s.buf), len(subkey))
	}
	s.xorKey(subkey)
	return nil
}

func (s *State) xorKey(subkey []byte) {
	for i := range s.buf {
		s.buf[i] ^= subkey[i]
	}
}
