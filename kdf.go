// kdf.go: Passphrase stretching and key expansion for passphrase key sources.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptex

import (
	"crypto/sha256"
	"io"
	"strings"

	goerrors "github.com/agilira/go-errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

// KDF names the password hash used by PassphraseKeySource.
type KDF string

const (
	KDFArgon2id KDF = "argon2id"
	KDFPBKDF2   KDF = "pbkdf2"
)

// ParseKDF resolves a KDF name case-insensitively. The empty name is Argon2id.
func ParseKDF(name string) (KDF, error) {
	switch k := KDF(strings.ToLower(strings.TrimSpace(name))); k {
	case "", KDFArgon2id:
		return KDFArgon2id, nil
	case KDFPBKDF2:
		return k, nil
	default:
		return "", goerrors.New("UNKNOWN_KDF", "unknown key derivation function "+name)
	}
}

// Argon2id cost used when a KDFParams field is zero.
const (
	DefaultArgon2Time    = 3
	DefaultArgon2Memory  = 64 // MB
	DefaultArgon2Threads = 4
)

// DefaultPBKDF2Iterations is used when PassphraseKeySource.Iterations is zero.
const DefaultPBKDF2Iterations = 600000

// KDFParams holds Argon2id cost parameters. Zero fields take the defaults.
//
// Example:
//
//	params := &cryptex.KDFParams{Time: 4, Memory: 128, Threads: 2}
//	key, err := cryptex.DeriveKey(passphrase, salt, 32, params)
type KDFParams struct {
	Time    uint32 `json:"time,omitempty" yaml:"time,omitempty"`
	Memory  uint32 `json:"memory,omitempty" yaml:"memory,omitempty"` // MB
	Threads uint8  `json:"threads,omitempty" yaml:"threads,omitempty"`
}

// FastKDFParams returns cheap Argon2id parameters (1 pass, 32MB, 2 threads)
// for tests and development. Never use them for real key files.
func FastKDFParams() *KDFParams {
	return &KDFParams{Time: 1, Memory: 32, Threads: 2}
}

// argon2Cost returns the effective time, memory in KiB and threads.
func (p *KDFParams) argon2Cost() (uint32, uint32, uint8) {
	t, m, th := uint32(DefaultArgon2Time), uint32(DefaultArgon2Memory), uint8(DefaultArgon2Threads)
	if p != nil {
		if p.Time > 0 {
			t = p.Time
		}
		if p.Memory > 0 {
			m = p.Memory
		}
		if p.Threads > 0 {
			th = p.Threads
		}
	}
	return t, m * 1024, th
}

func checkStretchInput(passphrase, salt []byte, keyLen int) error {
	switch {
	case len(passphrase) == 0:
		return goerrors.New("EMPTY_PASSWORD", "passphrase cannot be empty")
	case len(salt) == 0:
		return goerrors.New("EMPTY_SALT", "salt cannot be empty")
	case keyLen <= 0:
		return goerrors.New("INVALID_KEYLEN", "key length must be positive")
	}
	return nil
}

// DeriveKey stretches a passphrase into keyLen bytes with Argon2id. A nil
// params uses the default cost.
func DeriveKey(passphrase, salt []byte, keyLen int, params *KDFParams) ([]byte, error) {
	if err := checkStretchInput(passphrase, salt, keyLen); err != nil {
		return nil, err
	}
	t, m, th := params.argon2Cost()
	return argon2.IDKey(passphrase, salt, t, m, th, uint32(keyLen)), nil // #nosec G115 -- keyLen checked positive
}

// DeriveKeyPBKDF2 stretches a passphrase into keyLen bytes with
// PBKDF2-HMAC-SHA256. It reads key files produced by older tooling.
func DeriveKeyPBKDF2(passphrase, salt []byte, iterations, keyLen int) ([]byte, error) {
	if err := checkStretchInput(passphrase, salt, keyLen); err != nil {
		return nil, err
	}
	if iterations <= 0 {
		return nil, goerrors.New("INVALID_ITERATIONS", "iterations must be positive")
	}
	return pbkdf2.Key(passphrase, salt, iterations, keyLen, sha256.New), nil
}

// DeriveKeyHKDF expands a high-entropy secret into keyLen bytes with
// HKDF-SHA256 (RFC 5869). salt and info may be nil. Passphrases must be
// stretched first.
func DeriveKeyHKDF(secret, salt, info []byte, keyLen int) ([]byte, error) {
	if len(secret) == 0 {
		return nil, goerrors.New("INVALID_MASTER_KEY", "secret cannot be empty")
	}
	if keyLen <= 0 || keyLen > 255*sha256.Size {
		return nil, goerrors.New("INVALID_KEYLEN", "HKDF-SHA256 output must be between 1 and 8160 bytes")
	}

	out := make([]byte, keyLen)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, info), out); err != nil {
		return nil, goerrors.Wrap(err, "HKDF_EXPAND_ERROR", "failed to expand key material")
	}
	return out, nil
}

// stretch runs the selected KDF to produce a 32-byte master secret.
func (k KDF) stretch(passphrase, salt []byte, params *KDFParams, iterations int) ([]byte, error) {
	switch k {
	case KDFPBKDF2:
		if iterations == 0 {
			iterations = DefaultPBKDF2Iterations
		}
		return DeriveKeyPBKDF2(passphrase, salt, iterations, 32)
	case KDFArgon2id, "":
		return DeriveKey(passphrase, salt, 32, params)
	default:
		return nil, goerrors.New("UNKNOWN_KDF", "unknown key derivation function "+string(k))
	}
}
