// families.go: families command.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"

	"github.com/agilira/cryptex"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newFamiliesCommand(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "families",
		Short: "List the registered cipher families and their legal sizes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cyan := color.New(color.FgCyan, color.Bold)
			w := cmd.OutOrStdout()

			for _, id := range cryptex.Families() {
				f, err := cryptex.LookupFamily(id)
				if err != nil {
					return err
				}
				summary, err := cryptex.Describe(id)
				if err != nil {
					return err
				}
				marker := " "
				if id == cryptex.DefaultFamily {
					marker = "*"
				}
				cyan.Fprintf(w, "%s %-10s", marker, f.ID)
				fmt.Fprintf(w, " %s\n", summary)
				fmt.Fprintf(w, "    block bits: %v (default %d)\n", cryptex.LegalSizes(f.BlockSizes), f.DefaultBlockSize)
				fmt.Fprintf(w, "    key bits:   %v (default %d)\n", cryptex.LegalSizes(f.KeySizes), f.DefaultKeySize)
			}
			return nil
		},
	}
}
