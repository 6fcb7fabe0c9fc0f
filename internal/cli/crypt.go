// crypt.go: encrypt and decrypt commands.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/agilira/cryptex"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// keyFlags selects where key material comes from. Exactly one is used.
type keyFlags struct {
	keyFile    string
	keyHex     string
	ivHex      string
	passphrase bool
}

func (k *keyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&k.keyFile, "key-file", "k", "", "File holding key bytes followed by optional IV bytes")
	cmd.Flags().StringVar(&k.keyHex, "key-hex", "", "Key as hex")
	cmd.Flags().StringVar(&k.ivHex, "iv-hex", "", "IV as hex (with --key-hex)")
	cmd.Flags().BoolVarP(&k.passphrase, "passphrase", "p", false,
		"Derive the key from a passphrase ("+passphraseEnv+" or prompt)")
	cmd.MarkFlagsMutuallyExclusive("key-file", "key-hex", "passphrase")
}

// source opens the selected key source. The returned closer is never nil.
func (k *keyFlags) source(cmd *cobra.Command, a *app) (cryptex.KeySource, func(), error) {
	noop := func() {}
	switch {
	case k.keyFile != "":
		ks, err := cryptex.NewFileKeySource(k.keyFile)
		if err != nil {
			return nil, noop, err
		}
		return ks, func() { _ = ks.Close() }, nil

	case k.keyHex != "":
		ks, err := cryptex.StaticKeySourceFromHex(k.keyHex, k.ivHex)
		if err != nil {
			return nil, noop, err
		}
		return ks, noop, nil

	case k.passphrase:
		if a.cfg.Salt == "" {
			return nil, noop, errors.New("passphrase mode needs a salt: set --salt, salt in the config file or CRYPTEX_SALT")
		}
		salt, err := hex.DecodeString(a.cfg.Salt)
		if err != nil {
			return nil, noop, fmt.Errorf("invalid salt: %w", err)
		}
		kdf, err := cryptex.ParseKDF(a.cfg.KDF)
		if err != nil {
			return nil, noop, err
		}
		pass, err := readPassphrase(cmd, "Passphrase: ")
		if err != nil {
			return nil, noop, err
		}
		ks := &cryptex.PassphraseKeySource{
			Passphrase: pass,
			Salt:       salt,
			KDF:        kdf,
		}
		return ks, func() { cryptex.Zeroize(pass) }, nil
	}
	return nil, noop, errors.New("no key given: use --key-file, --key-hex or --passphrase")
}

func newEncryptCommand(a *app) *cobra.Command {
	var (
		input  string
		output string
		keys   keyFlags
	)

	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a file or stdin",
		Example: `  # Encrypt with a key file made by 'cryptex keygen'
  cryptex encrypt -k secret.key -i report.pdf -o report.pdf.enc

  # Rijndael with a 256-bit block and a hex key
  cryptex encrypt --block-size 256 --key-hex 00112233... < in > out

  # Passphrase key, prompted on the terminal
  cryptex encrypt -p --salt 8f1e... -i notes.txt -o notes.enc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, cryptex.OpEncrypt, input, output, &keys)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input file (default stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	keys.register(cmd)
	return cmd
}

func newDecryptCommand(a *app) *cobra.Command {
	var (
		input  string
		output string
		keys   keyFlags
	)

	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt a file or stdin",
		Long: `Decrypt data produced by 'cryptex encrypt' with the same family, sizes,
padding and key.

Zero padding cannot be removed reliably, so decrypted output keeps any
trailing zero bytes added during encryption.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, cryptex.OpDecrypt, input, output, &keys)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input file (default stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	keys.register(cmd)
	return cmd
}

// run streams input through the configured algorithm in direction op.
func (a *app) run(cmd *cobra.Command, op cryptex.Operation, input, output string, keys *keyFlags) error {
	log := a.log.With(zap.String("op_id", uuid.NewString()), zap.Stringer("operation", op))

	alg, err := a.algorithm(log)
	if err != nil {
		return err
	}
	ks, release, err := keys.source(cmd, a)
	if err != nil {
		return err
	}
	defer release()

	in, err := openInput(cmd, input)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := openOutput(cmd, output)
	if err != nil {
		return err
	}

	var n int64
	if op == cryptex.OpEncrypt {
		n, err = alg.EncryptStream(out, in, ks)
	} else {
		n, err = alg.DecryptStream(out, in, ks)
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Error("operation failed", zap.Error(err))
		return err
	}

	log.Info("operation complete",
		zap.String("family", alg.Identifier()),
		zap.Int("block_size", alg.BlockSize()),
		zap.Int64("bytes", n))
	if output != "" && output != "-" {
		report(cmd.ErrOrStderr(), op, n, output)
	}
	return nil
}

func report(w io.Writer, op cryptex.Operation, n int64, path string) {
	green := color.New(color.FgGreen, color.Bold)
	verb := "Encrypted"
	if op == cryptex.OpDecrypt {
		verb = "Decrypted"
	}
	green.Fprintf(w, "✓ %s %d bytes to %s\n", verb, n, path)
}
