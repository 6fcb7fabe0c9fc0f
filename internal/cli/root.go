// root.go: Root command and shared CLI state.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

// Package cli implements the cryptex command line interface.
package cli

import (
	"github.com/agilira/cryptex"
	"github.com/agilira/cryptex/internal/config"
	"github.com/agilira/cryptex/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is the state resolved before any subcommand runs.
type app struct {
	configPath string
	cfg        config.Config
	log        *zap.Logger

	// flag values, merged over the loaded config when set
	flags   config.Config
	verbose bool
}

// NewRootCommand builds the cryptex command tree.
func NewRootCommand(version string) *cobra.Command {
	a := &app{log: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "cryptex",
		Short: "Block-cipher file encryption with variable-block Rijndael",
		Long: `Cryptex encrypts and decrypts files with a pluggable block-cipher engine.

The default family is a Rijndael implementation supporting 128, 192 and
256-bit blocks and keys. AES, DES, Triple DES, Camellia, Serpent, SEED and
HIGHT are available through --family.

Only ECB mode is supported and there is no authentication. Use this tool
for compatibility with existing data, not for new security designs.

Configuration is read from the user config file, a .env file, CRYPTEX_*
environment variables and flags, later sources winning.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.resolve(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (default "+config.Path()+")")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVarP(&a.flags.Family, "family", "f", "", "Cipher family (see 'cryptex families')")
	pf.IntVar(&a.flags.BlockSize, "block-size", 0, "Block size in bits")
	pf.IntVar(&a.flags.KeySize, "key-size", 0, "Key size in bits")
	pf.StringVar(&a.flags.Mode, "mode", "", "Cipher mode")
	pf.StringVar(&a.flags.Padding, "padding", "", "Padding: None or Zeros")
	pf.BoolVar(&a.flags.AllowZeroFill, "allow-zero-fill", false, "Zero-fill short generated key material")
	pf.IntVar(&a.flags.ChunkSize, "chunk-size", 0, "Streaming chunk size in bytes")
	pf.StringVar(&a.flags.KDF, "kdf", "", "Passphrase KDF: argon2id or pbkdf2")
	pf.StringVar(&a.flags.Salt, "salt", "", "Passphrase salt, hex encoded")

	rootCmd.AddCommand(
		newEncryptCommand(a),
		newDecryptCommand(a),
		newFamiliesCommand(a),
		newKeygenCommand(a),
		newSettingsCommand(a),
	)
	return rootCmd
}

// resolve loads the layered configuration and builds the logger.
func (a *app) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := config.Merge(&cfg, a.flags); err != nil {
		return err
	}
	if a.verbose && !cmd.Flags().Changed("log-level") {
		cfg.LogLevel = "debug"
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	return nil
}

// algorithm builds the configured cipher, logging through a's logger.
func (a *app) algorithm(log *zap.Logger) (*cryptex.Algorithm, error) {
	return a.cfg.Algorithm(cryptex.WithLogger(log))
}
