// Package cryptex is a pluggable symmetric block-cipher engine for file encryption.
//
// The package provides:
//   - A from-scratch Rijndael with 128, 192 and 256-bit blocks and keys
//   - The GF(2^8) arithmetic, key schedule and State primitives it is built from
//   - A generic block-transform driver that runs any cipher.Block over a buffer
//   - An Algorithm wrapper adding key, IV, mode and padding configuration
//   - A static registry of cipher families (rijndael, aes, des, tripledes,
//     camellia, serpent, seed, hight)
//   - Key sources backed by key files, static material, passphrases or randomness
//   - A versioned settings record and chunked streaming for large files
//
// ECB is the only mode the driver runs, and only None and Zeros padding are
// implemented. There is no authentication: ciphertext can be altered without
// detection. This is a utility-grade engine, not a vetted cryptographic library.
//
// # Quick Start
//
//	alg, err := cryptex.NewCipher("rijndael")
//	if err != nil {
//		log.Fatal(err)
//	}
//	_ = alg.SetBlockSize(256)
//	_ = alg.SetPadding(cryptex.PaddingZeros)
//
//	ks := cryptex.NewStaticKeySource(key, nil) // key is 32 bytes
//	ciphertext, err := alg.Encrypt([]byte("sensitive data"), ks)
//	if err != nil {
//		log.Fatal(err)
//	}
//	plaintext, err := alg.Decrypt(ciphertext, ks)
//
// Zero padding is not reversible: Decrypt returns the padded plaintext, so
// only block-aligned input round-trips byte for byte.
//
// # Key Sources
//
// Encrypt and Decrypt never use the key stored on the Algorithm. They request
// fresh material from a KeySource on every call:
//
//	ks, err := cryptex.NewFileKeySource("secret.key")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer ks.Close()
//
// A source that returns fewer bytes than the key size fails the operation
// with ErrKeyTooShort. GenerateKey and GenerateIV zero-fill short material
// only when the algorithm was built with WithAllowZeroFill(true).
//
// # Configuration Lifecycle
//
// Setters validate eagerly. Once an Algorithm has created its first
// transform, its configuration is locked and setters return ErrConfigLocked.
// Use Settings and ApplySettings to carry a configuration to a fresh
// Algorithm:
//
//	data, _ := cryptex.MarshalSettings(alg.Settings())
//	s, err := cryptex.UnmarshalSettings(data)
//	next, _ := cryptex.NewCipher(s.Family)
//	err = next.ApplySettings(s)
//
// # Error Handling
//
// Every error wraps a sentinel for errors.Is and a rich error from
// github.com/agilira/go-errors carrying a stable code:
//
//	if errors.Is(err, cryptex.ErrKeyTooShort) {
//		// ask for a longer key
//	}
//
// # Thread Safety
//
// State, ExpandedKey and Transform values belong to one goroutine at a time.
// Distinct transforms share no mutable state and may run concurrently.
// Rijndael values and the family registry are safe for concurrent use, and
// Algorithm guards its configuration with a mutex. FileKeySource serializes
// its own reads.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package cryptex
