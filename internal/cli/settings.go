// settings.go: settings command group.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"
	"os"

	"github.com/agilira/cryptex"
	"github.com/agilira/cryptex/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSettingsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show, save or import cipher settings",
	}
	cmd.AddCommand(
		newSettingsShowCommand(a),
		newSettingsSaveCommand(a),
		newSettingsImportCommand(a),
	)
	return cmd
}

func newSettingsShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings record as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := a.algorithm(a.log)
			if err != nil {
				return err
			}
			data, err := cryptex.MarshalSettings(alg.Settings())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newSettingsSaveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Write the effective settings to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := a.algorithm(a.log)
			if err != nil {
				return err
			}
			return a.save(cmd, alg.Settings())
		},
	}
}

func newSettingsImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Validate a JSON settings record and store it in the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0]) // #nosec G304 -- user supplied settings path
			if err != nil {
				return fmt.Errorf("read settings: %w", err)
			}
			s, err := cryptex.UnmarshalSettings(data)
			if err != nil {
				return err
			}
			// Apply to a scratch algorithm so invalid records never reach disk.
			alg, err := cryptex.NewCipher(s.Family, cryptex.WithLogger(a.log))
			if err != nil {
				return err
			}
			if err := alg.ApplySettings(s); err != nil {
				return err
			}
			return a.save(cmd, alg.Settings())
		},
	}
}

func (a *app) save(cmd *cobra.Command, s cryptex.Settings) error {
	path := a.configPath
	if path == "" {
		path = config.Path()
	}
	current, err := config.ReadFile(path)
	if err != nil {
		return err
	}
	if err := config.Save(path, current.FromSettings(s)); err != nil {
		return err
	}
	a.log.Debug("settings saved", zap.String("path", path), zap.String("family", s.Family))
	color.New(color.FgGreen, color.Bold).Fprintf(cmd.ErrOrStderr(), "✓ Settings saved to %s\n", path)
	return nil
}
