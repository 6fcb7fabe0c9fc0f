// mode.go: Cipher mode and operation direction values.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptex

import "strings"

// CipherMode selects how blocks are chained. Only ModeECB is implemented;
// the other values exist so that a chained mode can be added without
// changing the public contract.
type CipherMode int

const (
	ModeECB CipherMode = iota + 1
	ModeCBC
	ModeCFB
	ModeOFB
	ModeCTS
)

var modeNames = map[CipherMode]string{
	ModeECB: "ECB",
	ModeCBC: "CBC",
	ModeCFB: "CFB",
	ModeOFB: "OFB",
	ModeCTS: "CTS",
}

func (m CipherMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "UNKNOWN"
}

// NeedsIV reports whether the mode consumes an IV.
func (m CipherMode) NeedsIV() bool {
	return m != ModeECB
}

// MarshalText implements encoding.TextMarshaler.
func (m CipherMode) MarshalText() ([]byte, error) {
	if _, ok := modeNames[m]; !ok {
		return nil, newError(ErrModeNotSupported, ErrCodeModeNotSupported, "unknown cipher mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Matching is case-insensitive.
func (m *CipherMode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ParseMode converts a mode name such as "ecb" to a CipherMode.
func ParseMode(name string) (CipherMode, error) {
	for m, n := range modeNames {
		if strings.EqualFold(n, name) {
			return m, nil
		}
	}
	return 0, newError(ErrModeNotSupported, ErrCodeModeNotSupported, "unknown cipher mode %q", name)
}

// supportedModes are the modes the driver can run.
var supportedModes = []CipherMode{ModeECB}

func isSupportedMode(m CipherMode) bool {
	for _, s := range supportedModes {
		if s == m {
			return true
		}
	}
	return false
}

// Operation is the direction a transform runs in.
type Operation int

const (
	OpEncrypt Operation = iota + 1
	OpDecrypt
)

func (o Operation) String() string {
	switch o {
	case OpEncrypt:
		return "encrypt"
	case OpDecrypt:
		return "decrypt"
	default:
		return "unknown"
	}
}
