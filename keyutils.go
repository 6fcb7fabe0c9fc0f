// keyutils.go: Key encoding, zeroization, fingerprinting and random material.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptex

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"

	goerrors "github.com/agilira/go-errors"
)

// KeyToBase64 encodes key material with standard padded base64.
//
// Example:
//
//	key, _ := cryptex.GenerateRandomBytes(32)
//	fmt.Println(cryptex.KeyToBase64(key))
func KeyToBase64(key []byte) string { return base64.StdEncoding.EncodeToString(key) }

// KeyToHex encodes key material as lowercase hex.
func KeyToHex(key []byte) string { return hex.EncodeToString(key) }

// KeyFromBase64 decodes standard padded base64 key material.
func KeyFromBase64(s string) ([]byte, error) {
	return decodeKey(s, base64.StdEncoding.DecodeString, "BASE64_DECODE_ERROR", "base64")
}

// KeyFromHex decodes hex key material in either case.
func KeyFromHex(s string) ([]byte, error) {
	return decodeKey(s, hex.DecodeString, "HEX_DECODE_ERROR", "hex")
}

func decodeKey(s string, decode func(string) ([]byte, error), code, encoding string) ([]byte, error) {
	key, err := decode(s)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.ErrorCode(code), "failed to decode "+encoding+" key material")
	}
	return key, nil
}

// Zeroize overwrites b with zeros in place. Key material drawn from a
// KeySource is zeroized as soon as the transform that consumed it exists.
func Zeroize(b []byte) {
	clear(b)
}

// KeyFingerprint returns 16 hex characters of SHA-256(key), or "" for an
// empty key. Loggers record it in place of key bytes.
//
// Example:
//
//	log.Info("key loaded", zap.String("key_fingerprint", cryptex.KeyFingerprint(key)))
func KeyFingerprint(key []byte) string {
	if len(key) == 0 {
		return ""
	}
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:8])
}

// GenerateRandomBytes returns size bytes from the operating system CSPRNG.
func GenerateRandomBytes(size int) ([]byte, error) {
	if size <= 0 {
		return nil, goerrors.New("INVALID_SIZE", "size must be positive")
	}
	b := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, goerrors.Wrap(err, "RANDOM_GEN_ERROR", "failed to read random bytes")
	}
	return b, nil
}
