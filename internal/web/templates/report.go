// Package templates renders the HTML pages of the import service as templ
// components.
package templates

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/JonMunkholm/pvimport/internal/core"
	"github.com/a-h/templ"
)

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2937}
table{border-collapse:collapse;margin:1rem 0}
th,td{border:1px solid #d1d5db;padding:.25rem .6rem;text-align:left}
th{background:#f3f4f6}
td.num{text-align:right;font-variant-numeric:tabular-nums}
dt{font-weight:600}
.alert{border:1px solid #fca5a5;background:#fef2f2;padding:1rem;border-radius:.375rem}
.code{color:#6b7280;font-size:.875rem}`

// pageWriter writes HTML and keeps the first write error.
type pageWriter struct {
	w   io.Writer
	err error
}

func (p *pageWriter) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

// text writes s HTML-escaped.
func (p *pageWriter) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *pageWriter) cell(s string) {
	p.raw("<td>")
	p.text(s)
	p.raw("</td>")
}

func (p *pageWriter) num(s string) {
	p.raw(`<td class="num">`)
	p.text(s)
	p.raw("</td>")
}

func (p *pageWriter) header(cols ...string) {
	p.raw("<thead><tr>")
	for _, c := range cols {
		p.raw("<th>")
		p.text(c)
		p.raw("</th>")
	}
	p.raw("</tr></thead>")
}

// Layout wraps body in the page shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		p.text(title)
		p.raw(`</title><style>` + pageStyle + `</style></head><body>`)
		if p.err != nil {
			return p.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		p.raw(`</body></html>`)
		return p.err
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		p.raw(`<div class="alert" role="alert"><strong>`)
		p.text(message)
		p.raw(`</strong>`)
		if action != "" {
			p.raw(`<p>`)
			p.text(action)
			p.raw(`</p>`)
		}
		p.raw(`<p class="code">Code: `)
		p.text(code)
		p.raw(`</p></div>`)
		return p.err
	})
}

// ErrorPage is ErrorAlert as a full page.
func ErrorPage(message, action, code string) templ.Component {
	return Layout("Import failed", ErrorAlert(message, action, code))
}

// ReportPage renders an import report with per-channel summaries.
func ReportPage(report *core.ImportReport, summaries []core.ChannelSummary) templ.Component {
	return Layout("Import "+report.Folder, ImportReport(report, summaries))
}

// ImportReport renders the body of the report page.
func ImportReport(report *core.ImportReport, summaries []core.ChannelSummary) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &pageWriter{w: w}

		p.raw(`<h1>Import report</h1><dl><dt>Folder</dt><dd>`)
		p.text(report.Folder)
		p.raw(`</dd><dt>Import ID</dt><dd>`)
		p.text(report.ImportID)
		p.raw(`</dd><dt>Sweeps</dt><dd>`)
		p.text(strconv.Itoa(report.Sweeps))
		p.raw(`</dd></dl>`)

		res := report.Result
		if res == nil || res.Empty() {
			p.raw(`<p>No sweeps found in this folder.</p>`)
			return p.err
		}

		writeSweeps(p, res.Metadata)

		p.raw(`<h2>Tables</h2><table>`)
		p.header("Table", "Rows", "Columns")
		p.raw(`<tbody>`)
		writeTableRow(p, "Primary", res.Primary)
		writeTableRow(p, "Auxiliary", res.Auxiliary)
		p.raw(`</tbody></table>`)

		if len(summaries) > 0 {
			writeSummaries(p, summaries)
		}
		return p.err
	})
}

func writeSweeps(p *pageWriter, metadata map[string]core.SweepMetadata) {
	p.raw(`<h2>Sweeps</h2><table>`)
	p.header("Key", "Role", "Channels", "Rate (Hz)", "Duration (s)", "Primary file", "Auxiliary file")
	p.raw(`<tbody>`)
	for k := 1; k <= len(metadata); k++ {
		key := core.MetadataKey(k)
		meta, ok := metadata[key]
		if !ok {
			continue
		}
		p.raw(`<tr>`)
		p.cell(key)
		p.cell(meta.Role.String())
		p.cell(strings.Join(meta.Channels, ", "))
		p.num(strconv.Itoa(meta.SamplingRateHz))
		p.num(formatFloat(meta.DurationSeconds))
		p.cell(orDash(meta.PrimaryFile))
		p.cell(orDash(meta.AuxiliaryFile))
		p.raw(`</tr>`)
	}
	p.raw(`</tbody></table>`)
}

func writeTableRow(p *pageWriter, name string, t *core.IndexedTable) {
	p.raw(`<tr>`)
	p.cell(name)
	if t == nil {
		p.num("-")
		p.cell("none")
	} else {
		p.num(strconv.Itoa(t.Len()))
		p.cell(strings.Join(t.Columns, ", "))
	}
	p.raw(`</tr>`)
}

func writeSummaries(p *pageWriter, summaries []core.ChannelSummary) {
	p.raw(`<h2>Primary channel summary</h2><table>`)
	p.header("Sweep", "Column", "N", "Mean", "Std dev", "Min", "Max")
	p.raw(`<tbody>`)
	for _, s := range summaries {
		p.raw(`<tr>`)
		p.cell(s.Sweep)
		p.cell(s.Column)
		p.num(strconv.Itoa(s.N))
		p.num(formatFloat(s.Mean))
		p.num(formatFloat(s.StdDev))
		p.num(formatFloat(s.Min))
		p.num(formatFloat(s.Max))
		p.raw(`</tr>`)
	}
	p.raw(`</tbody></table>`)
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.6g", v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
