// padding.go: Block padding schemes.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptex

import "strings"

// PaddingMode selects how plaintext is extended to a block boundary.
//
// PaddingNone and PaddingZeros are implemented. PaddingANSIX923,
// PaddingISO10126 and PaddingPKCS7 are accepted as configuration values,
// but Pad and Unpad fail for them with ErrPaddingNotImplemented.
type PaddingMode int

const (
	PaddingNone PaddingMode = iota + 1
	PaddingZeros
	PaddingANSIX923
	PaddingISO10126
	PaddingPKCS7
)

var paddingNames = map[PaddingMode]string{
	PaddingNone:     "None",
	PaddingZeros:    "Zeros",
	PaddingANSIX923: "ANSIX923",
	PaddingISO10126: "ISO10126",
	PaddingPKCS7:    "PKCS7",
}

// implementedPaddings are the schemes Pad and Unpad can run.
var implementedPaddings = []PaddingMode{PaddingNone, PaddingZeros}

func (p PaddingMode) String() string {
	if name, ok := paddingNames[p]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether p is one of the declared padding values.
func (p PaddingMode) Valid() bool {
	_, ok := paddingNames[p]
	return ok
}

// Implemented reports whether Pad and Unpad work for p.
func (p PaddingMode) Implemented() bool {
	for _, impl := range implementedPaddings {
		if impl == p {
			return true
		}
	}
	return false
}

// MarshalText implements encoding.TextMarshaler.
func (p PaddingMode) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, newError(ErrPaddingNotSupported, ErrCodePaddingUnsupported, "unknown padding mode %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *PaddingMode) UnmarshalText(text []byte) error {
	mode, err := ParsePadding(string(text))
	if err != nil {
		return err
	}
	*p = mode
	return nil
}

// ParsePadding converts a name such as "zeros" to a PaddingMode.
func ParsePadding(name string) (PaddingMode, error) {
	for p, n := range paddingNames {
		if strings.EqualFold(n, name) {
			return p, nil
		}
	}
	return 0, newError(ErrPaddingNotSupported, ErrCodePaddingUnsupported, "unknown padding mode %q", name)
}

// Pad extends data to a multiple of blockSize bytes.
//
// PaddingNone returns data unchanged and leaves alignment to the caller.
// PaddingZeros appends zero bytes up to the next boundary and adds nothing
// to data that is already aligned. The result never aliases data.
func Pad(data []byte, blockSize int, mode PaddingMode) ([]byte, error) {
	if err := checkPadding(mode); err != nil {
		return nil, err
	}
	if blockSize <= 0 {
		return nil, newError(ErrInvalidBlockSize, ErrCodeInvalidBlockSize, "block size must be positive, got %d", blockSize)
	}

	switch mode {
	case PaddingZeros:
		padLen := 0
		if rem := len(data) % blockSize; rem != 0 {
			padLen = blockSize - rem
		}
		out := make([]byte, len(data)+padLen)
		copy(out, data)
		return out, nil
	default:
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}
}

// Unpad reverses Pad. For PaddingZeros it is a no-op: trailing zeros cannot
// be told apart from plaintext, so only block-aligned input round-trips.
func Unpad(data []byte, mode PaddingMode) ([]byte, error) {
	if err := checkPadding(mode); err != nil {
		return nil, err
	}
	return data, nil
}

func checkPadding(mode PaddingMode) error {
	if !mode.Valid() {
		return newError(ErrPaddingNotSupported, ErrCodePaddingUnsupported, "unknown padding mode %d", int(mode))
	}
	if !mode.Implemented() {
		return newError(ErrPaddingNotImplemented, ErrCodePaddingNotImpl, "padding %s is not implemented", mode)
	}
	return nil
}
