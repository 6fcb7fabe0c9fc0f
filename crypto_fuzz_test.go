// crypto_fuzz_test.go: Fuzz tests for the block cipher and the algorithm wrapper.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptex_test

import (
	"bytes"
	"testing"

	"github.com/agilira/cryptex"
)

// FuzzDecrypt feeds arbitrary ciphertext and key material to Decrypt.
// Most inputs fail; none may panic, and a successful decrypt must return
// exactly as many bytes as it was given.
//
// Usage:
//
//	go test -fuzz=FuzzDecrypt -fuzztime=30s
func FuzzDecrypt(f *testing.F) {
	f.Add([]byte{}, sequence(32), uint8(0))
	f.Add(make([]byte, 16), sequence(16), uint8(1))
	f.Add(make([]byte, 17), sequence(32), uint8(2))
	f.Add(bytes.Repeat([]byte{0xff}, 96), sequence(24), uint8(0))
	f.Add(make([]byte, 32), []byte{}, uint8(1))

	f.Fuzz(func(t *testing.T, ciphertext, key []byte, sizeSel uint8) {
		sizes := []int{128, 192, 256}
		alg, err := cryptex.NewCipher("rijndael")
		if err != nil {
			t.Fatal(err)
		}
		if err := alg.SetBlockSize(sizes[int(sizeSel)%3]); err != nil {
			t.Fatal(err)
		}
		if err := alg.SetPadding(cryptex.PaddingZeros); err != nil {
			t.Fatal(err)
		}

		keyCopy := append([]byte(nil), key...)
		out, err := alg.Decrypt(ciphertext, cryptex.NewStaticKeySource(key, nil))
		if !bytes.Equal(key, keyCopy) {
			t.Fatal("Decrypt modified the caller's key")
		}
		if err == nil && len(out) != len(ciphertext) {
			t.Fatalf("decrypted %d bytes from %d", len(out), len(ciphertext))
		}
	})
}

// FuzzRoundTrip checks Decrypt(Encrypt(p)) == p up to zero padding for
// every block and key size.
func FuzzRoundTrip(f *testing.F) {
	f.Add([]byte("a"), uint8(0), uint8(0))
	f.Add([]byte("exactly sixteen!"), uint8(1), uint8(2))
	f.Add(bytes.Repeat([]byte{0}, 100), uint8(2), uint8(1))

	f.Fuzz(func(t *testing.T, plaintext []byte, blockSel, keySel uint8) {
		if len(plaintext) == 0 {
			return
		}
		sizes := []int{128, 192, 256}
		blockBits, keyBits := sizes[int(blockSel)%3], sizes[int(keySel)%3]

		alg, err := cryptex.NewCipher("rijndael")
		if err != nil {
			t.Fatal(err)
		}
		if err := alg.SetBlockSize(blockBits); err != nil {
			t.Fatal(err)
		}
		if err := alg.SetKeySize(keyBits); err != nil {
			t.Fatal(err)
		}
		if err := alg.SetPadding(cryptex.PaddingZeros); err != nil {
			t.Fatal(err)
		}
		ks := cryptex.NewStaticKeySource(sequence(keyBits/8), nil)

		ct, err := alg.Encrypt(plaintext, ks)
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		if len(ct)%(blockBits/8) != 0 || len(ct) < len(plaintext) {
			t.Fatalf("ciphertext length %d for %d-byte input", len(ct), len(plaintext))
		}
		pt, err := alg.Decrypt(ct, ks)
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		if !bytes.Equal(plaintext, pt[:len(plaintext)]) {
			t.Fatal("round trip mismatch")
		}
		for _, b := range pt[len(plaintext):] {
			if b != 0 {
				t.Fatal("padding bytes are not zero")
			}
		}
	})
}

// FuzzBlockInverse checks that Rijndael.DecryptBlock inverts EncryptBlock
// for arbitrary keys and blocks.
func FuzzBlockInverse(f *testing.F) {
	f.Add(sequence(16), sequence(16))
	f.Add(sequence(24), sequence(32))
	f.Add(sequence(32), sequence(24))

	f.Fuzz(func(t *testing.T, key, block []byte) {
		r, err := cryptex.NewRijndael(key, len(block))
		if err != nil {
			return
		}
		ct, err := r.EncryptBlock(block)
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		pt, err := r.DecryptBlock(ct)
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		if !bytes.Equal(block, pt) {
			t.Fatalf("inverse mismatch for key %x block %x", key, block)
		}
	})
}
