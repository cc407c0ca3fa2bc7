// Package cmd - bases command
package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"inventory-valuation/api"
	"inventory-valuation/core/types"
	"inventory-valuation/internal/config"
)

func newBasesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "bases",
		Short: "List the supported activity bases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defaultBasis := config.Get().Valuation.Defaults.ActivityBasis

			bases := make([]api.BasisInfo, 0, len(types.AllBases()))
			for _, b := range types.AllBases() {
				bases = append(bases, api.BasisInfo{
					Basis:         b,
					Label:         b.Label(),
					Unit:          b.Unit(),
					Justification: b.Justification(),
					Default:       b == defaultBasis,
				})
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), bases)
			}

			out := cmd.OutOrStdout()
			bold := color.New(color.Bold)
			for _, b := range bases {
				marker := " "
				if b.Default {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %-20s %s\n", marker, b.Basis, bold.Sprint(b.Label))
				fmt.Fprintf(out, "  %-20s %s\n", "", b.Justification)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
