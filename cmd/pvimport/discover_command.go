package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/JonMunkholm/pvimport/internal/core"
	"github.com/spf13/cobra"
)

func newDiscoverCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "discover <folder>",
		Short: "List the sweeps an import of folder would process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sweeps, err := ctx.importer(0).Discover(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
			}
			if sweeps == nil {
				sweeps = []core.DiscoveredSweep{}
			}

			if asJSON {
				return writeJSON(cmd, sweeps)
			}

			out := cmd.OutOrStdout()
			if len(sweeps) == 0 {
				fmt.Fprintln(out, "No sweeps found.")
				return nil
			}
			rows := make([][]string, 0, len(sweeps))
			for _, s := range sweeps {
				rows = append(rows, []string{strconv.Itoa(s.Ordinal), s.Label, filepath.Base(s.Path)})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"#", "Sweep", "Metadata file"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print sweeps as JSON")
	return cmd
}
