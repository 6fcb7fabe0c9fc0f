// keygen.go: keygen command.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/agilira/cryptex"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newKeygenCommand(a *app) *cobra.Command {
	var (
		output string
		withIV bool
		salt   bool
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a random key file or passphrase salt",
		Long: `Generate random key material sized for the configured family.

The key file holds the key bytes followed, with --iv, by one block of IV
bytes. It is read back with 'cryptex encrypt --key-file'.`,
		Example: `  cryptex keygen -o secret.key
  cryptex keygen --family tripledes -o legacy.key
  cryptex keygen --new-salt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if salt {
				b, err := cryptex.GenerateRandomBytes(16)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cryptex.KeyToHex(b))
				return nil
			}
			if output == "" {
				return errors.New("--output is required")
			}
			if _, err := os.Stat(output); err == nil && !force {
				return fmt.Errorf("%s exists, use --force to overwrite", output)
			}

			alg, err := a.algorithm(a.log)
			if err != nil {
				return err
			}
			var ks cryptex.RandomKeySource
			if err := alg.GenerateKey(ks); err != nil {
				return err
			}
			material := alg.Key()
			defer cryptex.Zeroize(material)
			if withIV {
				if err := alg.GenerateIV(ks); err != nil {
					return err
				}
				material = append(material, alg.IV()...)
			}

			if err := os.WriteFile(output, material, 0o600); err != nil {
				return fmt.Errorf("write key file: %w", err)
			}
			a.log.Info("key file written",
				zap.String("family", alg.Identifier()),
				zap.Int("key_size", alg.KeySize()),
				zap.String("key_fingerprint", cryptex.KeyFingerprint(alg.Key())))

			color.New(color.FgGreen, color.Bold).Fprintf(cmd.ErrOrStderr(),
				"✓ Wrote %d-bit %s key to %s\n", alg.KeySize(), alg.Identifier(), output)
			color.New(color.FgYellow).Fprintln(cmd.ErrOrStderr(),
				"  Anyone holding this file can decrypt your data. Keep it private.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Key file to write")
	cmd.Flags().BoolVar(&withIV, "iv", false, "Append one block of IV bytes")
	cmd.Flags().BoolVar(&salt, "new-salt", false, "Print a random hex salt for --passphrase and exit")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing key file")
	return cmd
}
