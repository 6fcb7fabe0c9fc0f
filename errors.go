// errors.go: Error taxonomy for the cipher core.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptex

import (
	"errors"
	"fmt"

	goerrors "github.com/agilira/go-errors"
)

// Public sentinel errors. Every error returned by this package wraps exactly
// one of them, so callers can branch with errors.Is.
var (
	// Configuration errors.

	// ErrInvalidBlockSize is returned when a block size is outside the legal set.
	ErrInvalidBlockSize = errors.New("cryptex: invalid block size")

	// ErrInvalidKeySize is returned when a key size is outside the legal set.
	ErrInvalidKeySize = errors.New("cryptex: invalid key size")

	// ErrInvalidIVSize is returned when a configured IV does not match the block size.
	ErrInvalidIVSize = errors.New("cryptex: invalid IV size")

	// ErrModeNotSupported is returned when a cipher mode is not legal for the family.
	ErrModeNotSupported = errors.New("cryptex: cipher mode not supported")

	// ErrPaddingNotSupported is returned for padding values outside the known set.
	ErrPaddingNotSupported = errors.New("cryptex: padding mode not supported")

	// ErrConfigLocked is returned when configuration is mutated after operations began.
	ErrConfigLocked = errors.New("cryptex: configuration locked after first use")

	// ErrUnknownFamily is returned when a cipher family identifier is not registered.
	ErrUnknownFamily = errors.New("cryptex: unknown cipher family")

	// ErrInvalidOperation is returned for an operation direction other than encrypt or decrypt.
	ErrInvalidOperation = errors.New("cryptex: invalid operation")

	// ErrInvalidStateSize is returned when a State is built from a block of the wrong length.
	ErrInvalidStateSize = errors.New("cryptex: invalid state size")

	// ErrRoundKeySize is returned when a round key does not match the State width.
	ErrRoundKeySize = errors.New("cryptex: round key size mismatch")

	// Input errors.

	// ErrEmptyInput is returned when plaintext or ciphertext is empty.
	ErrEmptyInput = errors.New("cryptex: input cannot be empty")

	// ErrNoKeySource is returned when an operation needs key material and none was supplied.
	ErrNoKeySource = errors.New("cryptex: no key source")

	// ErrNoKey is returned when the key source yields no key.
	ErrNoKey = errors.New("cryptex: no key")

	// ErrKeyTooShort is returned when the key source yields fewer bytes than the key size.
	ErrKeyTooShort = errors.New("cryptex: key too short")

	// ErrNoIV is returned when the mode needs an IV and none is available.
	ErrNoIV = errors.New("cryptex: no IV")

	// ErrIVTooShort is returned when the IV is shorter than the block size.
	ErrIVTooShort = errors.New("cryptex: IV too short")

	// ErrBlockSizeMismatch is returned when an input segment does not match the block size.
	ErrBlockSizeMismatch = errors.New("cryptex: block size mismatch")

	// ErrShortKeyMaterial is returned by key generation when the key source is short
	// and zero-fill is not allowed.
	ErrShortKeyMaterial = errors.New("cryptex: short key material")

	// ErrKeyMaterialExhausted is returned by positional key sources with nothing left to read.
	ErrKeyMaterialExhausted = errors.New("cryptex: key material exhausted")

	// Capability gaps.

	// ErrPaddingNotImplemented is returned for declared padding schemes without pad/unpad logic.
	ErrPaddingNotImplemented = errors.New("cryptex: padding scheme not implemented")

	// Settings errors.

	// ErrSettingsDecode is returned when a settings record cannot be decoded.
	ErrSettingsDecode = errors.New("cryptex: settings decode error")

	// ErrSettingsVersion is returned for settings records with an unknown schema version.
	ErrSettingsVersion = errors.New("cryptex: unsupported settings version")
)

// Error codes for rich error handling
const (
	ErrCodeInvalidBlockSize   = "CRYPTEX_INVALID_BLOCK_SIZE"
	ErrCodeInvalidKeySize     = "CRYPTEX_INVALID_KEY_SIZE"
	ErrCodeInvalidIVSize      = "CRYPTEX_INVALID_IV_SIZE"
	ErrCodeModeNotSupported   = "CRYPTEX_MODE_NOT_SUPPORTED"
	ErrCodePaddingUnsupported = "CRYPTEX_PADDING_NOT_SUPPORTED"
	ErrCodeConfigLocked       = "CRYPTEX_CONFIG_LOCKED"
	ErrCodeUnknownFamily      = "CRYPTEX_UNKNOWN_FAMILY"
	ErrCodeInvalidOperation   = "CRYPTEX_INVALID_OPERATION"
	ErrCodeInvalidStateSize   = "CRYPTEX_INVALID_STATE_SIZE"
	ErrCodeRoundKeySize       = "CRYPTEX_ROUND_KEY_SIZE"
	ErrCodeEmptyInput         = "CRYPTEX_EMPTY_INPUT"
	ErrCodeNoKeySource        = "CRYPTEX_NO_KEY_SOURCE"
	ErrCodeNoKey              = "CRYPTEX_NO_KEY"
	ErrCodeKeyTooShort        = "CRYPTEX_KEY_TOO_SHORT"
	ErrCodeNoIV               = "CRYPTEX_NO_IV"
	ErrCodeIVTooShort         = "CRYPTEX_IV_TOO_SHORT"
	ErrCodeBlockSizeMismatch  = "CRYPTEX_BLOCK_SIZE_MISMATCH"
	ErrCodeShortKeyMaterial   = "CRYPTEX_SHORT_KEY_MATERIAL"
	ErrCodeKeyExhausted       = "CRYPTEX_KEY_MATERIAL_EXHAUSTED"
	ErrCodeKeySource          = "CRYPTEX_KEY_SOURCE"
	ErrCodePaddingNotImpl     = "CRYPTEX_PADDING_NOT_IMPLEMENTED"
	ErrCodeSettingsDecode     = "CRYPTEX_SETTINGS_DECODE"
	ErrCodeSettingsVersion    = "CRYPTEX_SETTINGS_VERSION"
	ErrCodeCipherInit         = "CRYPTEX_CIPHER_INIT"
)

// newError pairs a sentinel with a rich error carrying a stable code.
func newError(sentinel error, code, format string, args ...interface{}) error {
	richErr := goerrors.New(goerrors.ErrorCode(code), fmt.Sprintf(format, args...))
	return fmt.Errorf("%w: %w", sentinel, richErr)
}

// wrapError is newError for failures that have an underlying cause.
func wrapError(sentinel error, cause error, code, msg string) error {
	richErr := goerrors.Wrap(cause, goerrors.ErrorCode(code), msg)
	return fmt.Errorf("%w: %w", sentinel, richErr)
}
