// config.go: Layered configuration for the cryptex CLI.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

// Package config resolves the CLI configuration from built-in defaults, the
// user's YAML file, a .env file and CRYPTEX_* environment variables. Command
// line flags are merged on top by the caller with Merge.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	goerrors "github.com/agilira/go-errors"
	"github.com/agilira/cryptex"
	"github.com/OpenPeeDeeP/xdg"
	"github.com/goccy/go-yaml"
	"github.com/imdario/mergo"
	"github.com/joho/godotenv"
)

const (
	vendorName = "agilira"
	appName    = "cryptex"
	fileName   = "config.yml"
	envPrefix  = "CRYPTEX_"
)

// Error codes for configuration failures.
const (
	ErrCodeConfigRead  = "CRYPTEX_CONFIG_READ"
	ErrCodeConfigParse = "CRYPTEX_CONFIG_PARSE"
	ErrCodeConfigEnv   = "CRYPTEX_CONFIG_ENV"
	ErrCodeConfigWrite = "CRYPTEX_CONFIG_WRITE"
)

// Config is what the CLI needs to build an Algorithm and run it.
//
// Zero values mean "unset" so that mergo can layer sources; a later layer
// cannot switch AllowZeroFill back to false once an earlier one enabled it.
type Config struct {
	Family        string `yaml:"family,omitempty"`
	BlockSize     int    `yaml:"block_size,omitempty"`
	KeySize       int    `yaml:"key_size,omitempty"`
	Mode          string `yaml:"mode,omitempty"`
	Padding       string `yaml:"padding,omitempty"`
	AllowZeroFill bool   `yaml:"allow_zero_fill,omitempty"`
	ChunkSize     int    `yaml:"chunk_size,omitempty"`
	KDF           string `yaml:"kdf,omitempty"`
	Salt          string `yaml:"salt,omitempty"` // hex
	LogLevel      string `yaml:"log_level,omitempty"`
}

// Default returns the built-in configuration. Block and key sizes are left
// unset so each family falls back to its own defaults. The CLI pads with
// zeros so arbitrary files can be encrypted; the library defaults to none.
func Default() Config {
	return Config{
		Family:    cryptex.DefaultFamily,
		Mode:      cryptex.ModeECB.String(),
		Padding:   cryptex.PaddingZeros.String(),
		ChunkSize: cryptex.DefaultChunkSize,
		KDF:       string(cryptex.KDFArgon2id),
		LogLevel:  "warn",
	}
}

// Path returns the user config file location under the XDG config home.
func Path() string {
	return filepath.Join(xdg.New(vendorName, appName).ConfigHome(), fileName)
}

// Load resolves the configuration. An empty path means Path(); a missing
// file is not an error.
func Load(path string) (Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()

	file, err := ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := Merge(&cfg, file); err != nil {
		return Config{}, err
	}

	// .env is optional in the working directory.
	_ = godotenv.Load()
	env, err := FromEnv(os.Environ())
	if err != nil {
		return Config{}, err
	}
	if err := Merge(&cfg, env); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ReadFile parses a YAML config file. A missing file yields an empty Config.
func ReadFile(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path) // #nosec G304 -- user supplied config path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, goerrors.Wrap(err, ErrCodeConfigRead, "failed to read config file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, goerrors.Wrap(err, ErrCodeConfigParse, "failed to parse config file "+path)
	}
	return cfg, nil
}

// FromEnv extracts CRYPTEX_* settings from environ (KEY=VALUE pairs).
func FromEnv(environ []string) (Config, error) {
	var cfg Config
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, envPrefix) || value == "" {
			continue
		}
		var err error
		switch strings.TrimPrefix(key, envPrefix) {
		case "FAMILY":
			cfg.Family = value
		case "BLOCK_SIZE":
			cfg.BlockSize, err = strconv.Atoi(value)
		case "KEY_SIZE":
			cfg.KeySize, err = strconv.Atoi(value)
		case "MODE":
			cfg.Mode = value
		case "PADDING":
			cfg.Padding = value
		case "ALLOW_ZERO_FILL":
			cfg.AllowZeroFill, err = strconv.ParseBool(value)
		case "CHUNK_SIZE":
			cfg.ChunkSize, err = strconv.Atoi(value)
		case "KDF":
			cfg.KDF = value
		case "SALT":
			cfg.Salt = value
		case "LOG_LEVEL":
			cfg.LogLevel = value
		}
		if err != nil {
			return Config{}, goerrors.Wrap(err, ErrCodeConfigEnv, "invalid value for "+key)
		}
	}
	return cfg, nil
}

// Merge overlays the non-zero fields of src onto dst.
func Merge(dst *Config, src Config) error {
	if err := mergo.Merge(dst, src, mergo.WithOverride); err != nil {
		return fmt.Errorf("merge config: %w", err)
	}
	return nil
}

// Save writes cfg as YAML, creating the parent directory.
func Save(path string, cfg Config) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return goerrors.Wrap(err, ErrCodeConfigWrite, "failed to create config directory")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return goerrors.Wrap(err, ErrCodeConfigWrite, "failed to encode config")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return goerrors.Wrap(err, ErrCodeConfigWrite, "failed to write config file")
	}
	return nil
}

// Settings converts cfg into the library's settings record.
func (c Config) Settings() (cryptex.Settings, error) {
	mode, err := cryptex.ParseMode(c.Mode)
	if err != nil {
		return cryptex.Settings{}, err
	}
	padding, err := cryptex.ParsePadding(c.Padding)
	if err != nil {
		return cryptex.Settings{}, err
	}
	return cryptex.Settings{
		Version:       cryptex.SettingsVersion,
		Family:        strings.ToLower(c.Family),
		KeySize:       c.KeySize,
		BlockSize:     c.BlockSize,
		Mode:          mode,
		Padding:       padding,
		AllowZeroFill: c.AllowZeroFill,
	}, nil
}

// FromSettings overlays a settings record onto c.
func (c Config) FromSettings(s cryptex.Settings) Config {
	c.Family = s.Family
	c.KeySize = s.KeySize
	c.BlockSize = s.BlockSize
	c.Mode = s.Mode.String()
	c.Padding = s.Padding.String()
	c.AllowZeroFill = s.AllowZeroFill
	return c
}

// Algorithm builds a configured Algorithm for c. Block and key sizes left at
// zero keep the family defaults.
func (c Config) Algorithm(opts ...cryptex.Option) (*cryptex.Algorithm, error) {
	s, err := c.Settings()
	if err != nil {
		return nil, err
	}
	opts = append(opts, cryptex.WithAllowZeroFill(c.AllowZeroFill), cryptex.WithChunkSize(c.ChunkSize))
	alg, err := cryptex.NewCipher(s.Family, opts...)
	if err != nil {
		return nil, err
	}
	if s.BlockSize == 0 {
		s.BlockSize = alg.BlockSize()
	}
	if s.KeySize == 0 {
		s.KeySize = alg.KeySize()
	}
	if err := alg.ApplySettings(s); err != nil {
		return nil, err
	}
	return alg, nil
}
