// registry.go: Static table of cipher families.
//
// Families are declared up front and looked up by identifier. Hosts that
// carry their own block ciphers add them with RegisterFamily at startup.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptex

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/RyuaNerin/go-krypto/hight"
	"github.com/RyuaNerin/go-krypto/seed"
	"github.com/aead/camellia"
	"github.com/aead/serpent"
)

// BlockFactory builds a single-block engine for key with blocks of blockSize bytes.
type BlockFactory func(key []byte, blockSize int) (cipher.Block, error)

// Family describes one cipher family: its identifier, legal sizes in bits
// and how to build its block engine.
type Family struct {
	ID               string
	Description      string
	BlockSizes       []KeySizes
	KeySizes         []KeySizes
	DefaultBlockSize int
	DefaultKeySize   int
	NewBlock         BlockFactory
}

// fixedBlock adapts constructors whose block size is implied by the cipher.
func fixedBlock(newCipher func(key []byte) (cipher.Block, error)) BlockFactory {
	return func(key []byte, _ int) (cipher.Block, error) {
		return newCipher(key)
	}
}

var (
	registryMu sync.RWMutex
	registry   = map[string]*Family{
		"rijndael": {
			ID:               "rijndael",
			Description:      "Rijndael with 128, 192 or 256-bit blocks",
			BlockSizes:       []KeySizes{{Min: 128, Max: 256, Skip: 64}},
			KeySizes:         []KeySizes{{Min: 128, Max: 256, Skip: 64}},
			DefaultBlockSize: 128,
			DefaultKeySize:   256,
			NewBlock: func(key []byte, blockSize int) (cipher.Block, error) {
				return NewRijndael(key, blockSize)
			},
		},
		"aes": {
			ID:               "aes",
			Description:      "AES (FIPS-197)",
			BlockSizes:       []KeySizes{{Min: 128, Max: 128}},
			KeySizes:         []KeySizes{{Min: 128, Max: 256, Skip: 64}},
			DefaultBlockSize: 128,
			DefaultKeySize:   256,
			NewBlock:         fixedBlock(aes.NewCipher),
		},
		"des": {
			ID:               "des",
			Description:      "DES, legacy compatibility only",
			BlockSizes:       []KeySizes{{Min: 64, Max: 64}},
			KeySizes:         []KeySizes{{Min: 64, Max: 64}},
			DefaultBlockSize: 64,
			DefaultKeySize:   64,
			NewBlock:         fixedBlock(des.NewCipher),
		},
		"tripledes": {
			ID:               "tripledes",
			Description:      "Triple DES (EDE3)",
			BlockSizes:       []KeySizes{{Min: 64, Max: 64}},
			KeySizes:         []KeySizes{{Min: 192, Max: 192}},
			DefaultBlockSize: 64,
			DefaultKeySize:   192,
			NewBlock:         fixedBlock(des.NewTripleDESCipher),
		},
		"camellia": {
			ID:               "camellia",
			Description:      "Camellia (RFC 3713)",
			BlockSizes:       []KeySizes{{Min: 128, Max: 128}},
			KeySizes:         []KeySizes{{Min: 128, Max: 256, Skip: 64}},
			DefaultBlockSize: 128,
			DefaultKeySize:   256,
			NewBlock: func(key []byte, _ int) (cipher.Block, error) {
				return camellia.NewCipher(key)
			},
		},
		"serpent": {
			ID:               "serpent",
			Description:      "Serpent",
			BlockSizes:       []KeySizes{{Min: 128, Max: 128}},
			KeySizes:         []KeySizes{{Min: 128, Max: 256, Skip: 64}},
			DefaultBlockSize: 128,
			DefaultKeySize:   256,
			NewBlock: func(key []byte, _ int) (cipher.Block, error) {
				return serpent.NewCipher(key)
			},
		},
		"seed": {
			ID:               "seed",
			Description:      "SEED (KISA, RFC 4269)",
			BlockSizes:       []KeySizes{{Min: 128, Max: 128}},
			KeySizes:         []KeySizes{{Min: 128, Max: 128}},
			DefaultBlockSize: 128,
			DefaultKeySize:   128,
			NewBlock: func(key []byte, _ int) (cipher.Block, error) {
				return seed.NewCipher(key)
			},
		},
		"hight": {
			ID:               "hight",
			Description:      "HIGHT lightweight cipher (KISA)",
			BlockSizes:       []KeySizes{{Min: 64, Max: 64}},
			KeySizes:         []KeySizes{{Min: 128, Max: 128}},
			DefaultBlockSize: 64,
			DefaultKeySize:   128,
			NewBlock: func(key []byte, _ int) (cipher.Block, error) {
				return hight.NewCipher(key)
			},
		},
	}
)

// DefaultFamily is the family used when none is named.
const DefaultFamily = "rijndael"

// RegisterFamily adds or replaces a family. It is meant for program
// startup; algorithms created before the call keep the old descriptor.
func RegisterFamily(f Family) error {
	if f.ID == "" || f.NewBlock == nil {
		return newError(ErrUnknownFamily, ErrCodeUnknownFamily, "family requires an identifier and a block factory")
	}
	if !IsLegalSize(f.DefaultBlockSize, f.BlockSizes) {
		return newError(ErrInvalidBlockSize, ErrCodeInvalidBlockSize,
			"default block size %d is not legal for %s", f.DefaultBlockSize, f.ID)
	}
	if !IsLegalSize(f.DefaultKeySize, f.KeySizes) {
		return newError(ErrInvalidKeySize, ErrCodeInvalidKeySize,
			"default key size %d is not legal for %s", f.DefaultKeySize, f.ID)
	}

	id := strings.ToLower(f.ID)
	f.ID = id

	registryMu.Lock()
	defer registryMu.Unlock()
	registry[id] = &f
	return nil
}

// LookupFamily returns the descriptor registered under id (case-insensitive).
func LookupFamily(id string) (*Family, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	f, ok := registry[strings.ToLower(id)]
	if !ok {
		return nil, newError(ErrUnknownFamily, ErrCodeUnknownFamily, "family %q is not registered", id)
	}
	return f, nil
}

// Families returns the registered identifiers in sorted order.
func Families() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Describe returns a one-line summary of the family registered under id:
// its description followed by the legal block and key size ranges.
func Describe(id string) (string, error) {
	f, err := LookupFamily(id)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s (block %s, key %s)", f.Description, joinRanges(f.BlockSizes), joinRanges(f.KeySizes)), nil
}

func joinRanges(ranges []KeySizes) string {
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}

// NewCipher returns a fresh Algorithm for the family registered under id.
//
// Example:
//
//	c, err := cryptex.NewCipher("rijndael", cryptex.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	ct, err := c.Encrypt(plaintext, keySource)
func NewCipher(id string, opts ...Option) (*Algorithm, error) {
	f, err := LookupFamily(id)
	if err != nil {
		return nil, err
	}
	return NewAlgorithm(f, opts...)
}
