// gf.go: GF(2^8) arithmetic and the Rijndael substitution boxes.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptex

// Reduction polynomial x^8 + x^4 + x^3 + x + 1 without the x^8 term.
const gfReduction = 0x1b

var (
	sbox    [256]byte
	invSbox [256]byte

	// rcon[i] is x^(i-1) in GF(2^8); rcon[0] is unused.
	// 30 entries cover the longest schedule (Nb=8, Nk=4 needs 120/4 words).
	rcon [30]byte
)

func init() {
	for i := 0; i < 256; i++ {
		b := byte(i)
		inv := gfInverse(b)
		s := inv ^ rotl8(inv, 1) ^ rotl8(inv, 2) ^ rotl8(inv, 3) ^ rotl8(inv, 4) ^ 0x63
		sbox[i] = s
		invSbox[s] = b
	}

	rcon[1] = 0x01
	for i := 2; i < len(rcon); i++ {
		rcon[i] = xtime(rcon[i-1])
	}
}

// xtime multiplies by x in GF(2^8).
func xtime(b byte) byte {
	if b&0x80 != 0 {
		return (b << 1) ^ gfReduction
	}
	return b << 1
}

func rotl8(b byte, n uint) byte {
	return b<<n | b>>(8-n)
}

// GMul multiplies a and b in GF(2^8) using the Rijndael reduction polynomial.
func GMul(a, b byte) byte {
	var p byte
	for b != 0 {
		if b&1 != 0 {
			p ^= a
		}
		a = xtime(a)
		b >>= 1
	}
	return p
}

// gfInverse returns the multiplicative inverse of b (a^254), with 0 mapping to 0.
func gfInverse(b byte) byte {
	if b == 0 {
		return 0
	}
	result := byte(1)
	base := b
	for e := 254; e > 0; e >>= 1 {
		if e&1 != 0 {
			result = GMul(result, base)
		}
		base = GMul(base, base)
	}
	return result
}

// SubByte applies the forward S-box.
func SubByte(b byte) byte {
	return sbox[b]
}

// InvSubByte applies the inverse S-box. InvSubByte(SubByte(b)) == b for every b.
func InvSubByte(b byte) byte {
	return invSbox[b]
}
