package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/pvimport/internal/core"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// importOutput is the --json envelope of the import command.
type importOutput struct {
	RunID      string                `json:"run_id"`
	Folder     string                `json:"folder"`
	Sweeps     int                   `json:"sweeps"`
	DurationMS int64                 `json:"duration_ms"`
	Result     *core.FolderResult    `json:"result"`
	Summary    []core.ChannelSummary `json:"summary,omitempty"`
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var (
		asJSON  bool
		summary bool
		rows    int
		workers int
	)

	cmd := &cobra.Command{
		Use:   "import <folder>",
		Short: "Import every sweep in a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if rows < 0 {
				return fmt.Errorf("--rows must be >= 0, got %d", rows)
			}
			folder := args[0]

			start := time.Now()
			result, err := ctx.importer(workers).ImportFolder(cmd.Context(), folder)
			if err != nil {
				return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
			}

			out := importOutput{
				RunID:      uuid.NewString(),
				Folder:     folder,
				Sweeps:     len(result.Metadata),
				DurationMS: time.Since(start).Milliseconds(),
				Result:     result,
			}
			if summary {
				out.Summary = core.Summarize(result.Primary)
			}

			if asJSON {
				return writeJSON(cmd, out)
			}
			return printImport(cmd.OutOrStdout(), out, rows)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")
	cmd.Flags().BoolVar(&summary, "summary", false, "Include per-channel statistics of the primary table")
	cmd.Flags().IntVar(&rows, "rows", 0, "Print the first N rows of each table")
	cmd.Flags().IntVar(&workers, "workers", 0, "Sweeps processed in parallel (0 uses the configured value)")
	return cmd
}

func printImport(w io.Writer, out importOutput, rows int) error {
	fmt.Fprintf(w, "Run %s: %d sweep(s) from %s in %dms\n", out.RunID, out.Sweeps, out.Folder, out.DurationMS)

	res := out.Result
	if res.Empty() {
		fmt.Fprintln(w, "No sweeps found.")
		return nil
	}

	fmt.Fprintln(w, sweepTable(w, res.Metadata))
	for _, part := range []struct {
		name string
		t    *core.IndexedTable
	}{{"Primary", res.Primary}, {"Auxiliary", res.Auxiliary}} {
		if part.t == nil {
			fmt.Fprintf(w, "%s: none\n", part.name)
			continue
		}
		fmt.Fprintf(w, "%s: %d rows x %d columns (%s)\n",
			part.name, part.t.Len(), len(part.t.Columns), strings.Join(part.t.Columns, ", "))
		if rows > 0 {
			fmt.Fprintln(w, headTable(w, part.t, rows))
		}
	}

	if len(out.Summary) > 0 {
		fmt.Fprintln(w, summaryTable(w, out.Summary))
	}
	return nil
}

func sweepTable(w io.Writer, metadata map[string]core.SweepMetadata) string {
	var rows [][]string
	for k := 1; k <= len(metadata); k++ {
		key := core.MetadataKey(k)
		meta, ok := metadata[key]
		if !ok {
			continue
		}
		rows = append(rows, []string{
			key,
			core.SweepLabel(k),
			meta.Role.String(),
			strings.Join(meta.Channels, ", "),
			strconv.Itoa(meta.SamplingRateHz),
			formatFloat(meta.DurationSeconds),
		})
	}
	return renderTable(w,
		[]string{"Key", "Sweep", "Role", "Channels", "Rate (Hz)", "Duration (s)"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	)
}

// headTable shows the first n rows of each sweep.
func headTable(w io.Writer, t *core.IndexedTable, n int) string {
	headers := append([]string{"Sweep", "Row"}, t.Columns...)
	aligns := []columnAlignment{alignLeft}
	for range len(headers) - 1 {
		aligns = append(aligns, alignRight)
	}

	var rows [][]string
	for i, key := range t.Index {
		if key.Row >= n {
			continue
		}
		row := []string{key.Sweep, strconv.Itoa(key.Row)}
		for _, v := range t.Rows[i] {
			row = append(row, formatFloat(v))
		}
		rows = append(rows, row)
	}
	return renderTable(w, headers, rows, aligns)
}

func summaryTable(w io.Writer, summaries []core.ChannelSummary) string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Sweep, s.Column, strconv.Itoa(s.N),
			formatFloat(s.Mean), formatFloat(s.StdDev), formatFloat(s.Min), formatFloat(s.Max),
		})
	}
	return renderTable(w,
		[]string{"Sweep", "Column", "N", "Mean", "Std dev", "Min", "Max"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	)
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
