// keysource.go: Key sources that supply raw key and IV material.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptex

import (
	"errors"
	"io"
	"os"
	"sync"
)

// KeySource supplies key and IV bytes on demand.
//
// RequestKey should return at least bits/8 bytes. A short or empty result
// is treated by the algorithm as a configuration error, never padded at the
// cryptographic boundary. RequestIV may return (nil, nil), which means "use
// the IV already configured".
//
// Calls are synchronous and may block; the core imposes no timeout.
// Implementations shared between goroutines serialize their own access.
type KeySource interface {
	RequestKey(bits int) ([]byte, error)
	RequestIV(bits int) ([]byte, error)
}

// Rewinder is implemented by positional key sources. The algorithm calls
// Rewind after every Encrypt and Decrypt so the next operation reads the
// same material again.
type Rewinder interface {
	Rewind() error
}

// FileKeySource reads key bytes and then IV bytes sequentially from a file.
//
// The expected layout is the key followed by the optional IV, as written by
// `cryptex keygen`. Reads are serialized by a mutex.
type FileKeySource struct {
	mu   sync.Mutex
	file *os.File
	pos  int64
}

// NewFileKeySource opens path for reading.
func NewFileKeySource(path string) (*FileKeySource, error) {
	f, err := os.Open(path) // #nosec G304 -- key file path is chosen by the operator
	if err != nil {
		return nil, wrapError(ErrNoKeySource, err, ErrCodeKeySource, "failed to open key file")
	}
	return &FileKeySource{file: f}, nil
}

// RequestKey reads the next bits/8 bytes. It returns the available prefix
// when the file is short and ErrKeyMaterialExhausted when nothing is left.
func (s *FileKeySource) RequestKey(bits int) ([]byte, error) {
	b, err := s.next(bits / 8)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, newError(ErrKeyMaterialExhausted, ErrCodeKeyExhausted, "key file has no key material left")
	}
	return b, nil
}

// RequestIV reads the next bits/8 bytes, or returns (nil, nil) when the file
// holds no IV.
func (s *FileKeySource) RequestIV(bits int) ([]byte, error) {
	b, err := s.next(bits / 8)
	if err != nil || len(b) == 0 {
		return nil, err
	}
	return b, nil
}

func (s *FileKeySource) next(n int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	read, err := s.file.ReadAt(buf, s.pos)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, wrapError(ErrNoKeySource, err, ErrCodeKeySource, "failed to read key file")
	}
	s.pos += int64(read)
	return buf[:read], nil
}

// Rewind moves back to the start of the file.
func (s *FileKeySource) Rewind() error {
	s.mu.Lock()
	s.pos = 0
	s.mu.Unlock()
	return nil
}

// Close closes the underlying file.
func (s *FileKeySource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// StaticKeySource returns fixed key and IV bytes.
type StaticKeySource struct {
	key []byte
	iv  []byte
}

// NewStaticKeySource copies key and iv. iv may be nil.
func NewStaticKeySource(key, iv []byte) *StaticKeySource {
	s := &StaticKeySource{key: append([]byte(nil), key...)}
	if iv != nil {
		s.iv = append([]byte(nil), iv...)
	}
	return s
}

// StaticKeySourceFromHex decodes hex key and IV strings. An empty ivHex means no IV.
func StaticKeySourceFromHex(keyHex, ivHex string) (*StaticKeySource, error) {
	return staticFromText(keyHex, ivHex, KeyFromHex)
}

// StaticKeySourceFromBase64 decodes base64 key and IV strings. An empty ivB64 means no IV.
func StaticKeySourceFromBase64(keyB64, ivB64 string) (*StaticKeySource, error) {
	return staticFromText(keyB64, ivB64, KeyFromBase64)
}

func staticFromText(keyText, ivText string, decode func(string) ([]byte, error)) (*StaticKeySource, error) {
	key, err := decode(keyText)
	if err != nil {
		return nil, wrapError(ErrNoKey, err, ErrCodeKeySource, "failed to decode key")
	}
	var iv []byte
	if ivText != "" {
		if iv, err = decode(ivText); err != nil {
			return nil, wrapError(ErrNoIV, err, ErrCodeKeySource, "failed to decode IV")
		}
	}
	return &StaticKeySource{key: key, iv: iv}, nil
}

// RequestKey returns up to bits/8 bytes of the key.
func (s *StaticKeySource) RequestKey(bits int) ([]byte, error) {
	return prefixCopy(s.key, bits/8), nil
}

// RequestIV returns up to bits/8 bytes of the IV, or nil when none was set.
func (s *StaticKeySource) RequestIV(bits int) ([]byte, error) {
	if s.iv == nil {
		return nil, nil
	}
	return prefixCopy(s.iv, bits/8), nil
}

func prefixCopy(b []byte, n int) []byte {
	if n > len(b) {
		n = len(b)
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// Context strings that separate key and IV derivation.
var (
	keyInfo = []byte("cryptex/v1/key")
	ivInfo  = []byte("cryptex/v1/iv")
)

// PassphraseKeySource derives key and IV material from a passphrase.
//
// The passphrase is stretched once with Argon2id (or PBKDF2-SHA256) into a
// master secret, and key and IV are expanded from it with HKDF under
// distinct context strings, so the IV is never a prefix of the key.
type PassphraseKeySource struct {
	Passphrase []byte
	Salt       []byte
	KDF        KDF
	Params     *KDFParams // Argon2id cost; nil uses the defaults
	Iterations int        // PBKDF2 iterations; zero uses DefaultPBKDF2Iterations

	once   sync.Once
	master []byte
	err    error
}

func (s *PassphraseKeySource) masterSecret() ([]byte, error) {
	s.once.Do(func() {
		s.master, s.err = s.KDF.stretch(s.Passphrase, s.Salt, s.Params, s.Iterations)
		if s.err != nil {
			s.err = wrapError(ErrNoKey, s.err, ErrCodeKeySource, "failed to derive master secret")
		}
	})
	return s.master, s.err
}

// RequestKey derives bits/8 bytes of key material.
func (s *PassphraseKeySource) RequestKey(bits int) ([]byte, error) {
	master, err := s.masterSecret()
	if err != nil {
		return nil, err
	}
	return DeriveKeyHKDF(master, s.Salt, keyInfo, bits/8)
}

// RequestIV derives bits/8 bytes of IV material.
func (s *PassphraseKeySource) RequestIV(bits int) ([]byte, error) {
	master, err := s.masterSecret()
	if err != nil {
		return nil, err
	}
	return DeriveKeyHKDF(master, s.Salt, ivInfo, bits/8)
}

// RandomKeySource returns fresh random bytes on every request. Material it
// hands out cannot be requested again, so it suits key generation rather
// than decryption.
type RandomKeySource struct{}

// RequestKey returns bits/8 random bytes.
func (RandomKeySource) RequestKey(bits int) ([]byte, error) {
	return GenerateRandomBytes(bits / 8)
}

// RequestIV returns bits/8 random bytes.
func (RandomKeySource) RequestIV(bits int) ([]byte, error) {
	return GenerateRandomBytes(bits / 8)
}
