// settings.go: Versioned settings record for persisting algorithm configuration.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptex

import (
	"encoding/json"
	"time"
)

// SettingsVersion is the schema version written by MarshalSettings.
const SettingsVersion = 1

// Settings is the flat configuration record a host persists between runs.
// Mode and Padding serialize by name.
type Settings struct {
	Version       int         `json:"version" yaml:"version"`
	Family        string      `json:"family" yaml:"family"`
	KeySize       int         `json:"key_size" yaml:"key_size"`
	BlockSize     int         `json:"block_size" yaml:"block_size"`
	Mode          CipherMode  `json:"mode" yaml:"mode"`
	Padding       PaddingMode `json:"padding" yaml:"padding"`
	AllowZeroFill bool        `json:"allow_zero_fill" yaml:"allow_zero_fill"`
	SavedAt       time.Time   `json:"saved_at" yaml:"saved_at"`
}

// MarshalSettings encodes s as indented JSON, stamping the current version.
func MarshalSettings(s Settings) ([]byte, error) {
	s.Version = SettingsVersion
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, wrapError(ErrSettingsDecode, err, ErrCodeSettingsDecode, "failed to encode settings")
	}
	return data, nil
}

// UnmarshalSettings decodes a record produced by MarshalSettings and rejects
// unknown schema versions.
func UnmarshalSettings(data []byte) (Settings, error) {
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, wrapError(ErrSettingsDecode, err, ErrCodeSettingsDecode, "failed to decode settings")
	}
	if err := s.CheckVersion(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// CheckVersion reports ErrSettingsVersion for records this build cannot read.
func (s Settings) CheckVersion() error {
	if s.Version != SettingsVersion {
		return newError(ErrSettingsVersion, ErrCodeSettingsVersion,
			"settings version %d is not supported, expected %d", s.Version, SettingsVersion)
	}
	return nil
}
