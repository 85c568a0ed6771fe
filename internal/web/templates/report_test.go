package templates

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/JonMunkholm/pvimport/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorPage_EscapesText(t *testing.T) {
	var buf bytes.Buffer
	err := ErrorPage("bad <folder>", "try again", "IMP003").Render(context.Background(), &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "bad &lt;folder&gt;")
	assert.NotContains(t, out, "<folder>")
	assert.Contains(t, out, "Code: IMP003")
}

func TestReportPage(t *testing.T) {
	report := &core.ImportReport{
		ImportID: "abc-123",
		Folder:   "exp1",
		Sweeps:   1,
		Result: &core.FolderResult{
			Primary: &core.IndexedTable{
				Columns: []string{"Time", "Primary"},
				Index:   []core.RowKey{{Sweep: "Sweep0001", Row: 0}},
				Rows:    [][]float64{{0, 1}},
			},
			Metadata: map[string]core.SweepMetadata{
				"File1": {
					Channels:        []string{"Primary"},
					SamplingRateHz:  10000,
					DurationSeconds: 2,
					PrimaryFile:     "Cycle1_VoltageRecording_001",
					Role:            core.DataFileIsPrimary,
				},
			},
		},
	}
	summaries := []core.ChannelSummary{
		{Sweep: "Sweep0001", Column: "Primary", N: 0, Mean: math.NaN(), StdDev: math.NaN(), Min: math.NaN(), Max: math.NaN()},
	}

	var buf bytes.Buffer
	require.NoError(t, ReportPage(report, summaries).Render(context.Background(), &buf))

	out := buf.String()
	assert.Contains(t, out, "<title>Import exp1</title>")
	assert.Contains(t, out, "abc-123")
	assert.Contains(t, out, "data_file_is_primary")
	assert.Contains(t, out, "Cycle1_VoltageRecording_001")
	assert.Contains(t, out, "<td>Auxiliary</td>")
	assert.Contains(t, out, "n/a")
}

func TestReportPage_EmptyFolder(t *testing.T) {
	report := &core.ImportReport{ImportID: "x", Folder: "empty", Result: &core.FolderResult{}}

	var buf bytes.Buffer
	require.NoError(t, ReportPage(report, nil).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "No sweeps found")
}
