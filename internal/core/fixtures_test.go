package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// signal is one <VRecSignal> entry of a metadata fixture.
type signal struct {
	name     string
	chType   string
	disabled bool
	device   string
	channel  string
	unit     string
	divisor  string
}

// ephysSignal is an enabled patch-clamp channel.
func ephysSignal(channel, unit, divisor string) signal {
	return signal{
		name:    "Input " + channel,
		chType:  "Physical",
		device:  "MultiClamp 700B",
		channel: channel,
		unit:    unit,
		divisor: divisor,
	}
}

// plainSignal is an enabled physical channel with no amplifier.
func plainSignal(name string) signal {
	return signal{name: name, chType: "Physical", unit: "V", divisor: "1"}
}

// sweepDoc builds a VoltageRecording metadata document. Empty string fields
// are left out of the document entirely.
type sweepDoc struct {
	signals         []signal
	rate            string
	acquisitionTime string
	dataFile        string
	profile         string
}

func defaultDoc(dataFile string) sweepDoc {
	return sweepDoc{
		signals: []signal{
			ephysSignal("0", "mV", "0.1"),
			ephysSignal("1", "pA", "0.5"),
		},
		rate:            "10000",
		acquisitionTime: "2000",
		dataFile:        dataFile,
	}
}

func (d sweepDoc) XML() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	b.WriteString(`<VRecSessionEntry xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` + "\n")
	b.WriteString("  <Experiment>\n")
	writeElem(&b, "    ", "Rate", d.rate)
	writeElem(&b, "    ", "AcquisitionTime", d.acquisitionTime)
	b.WriteString("    <SignalList>\n")
	for _, s := range d.signals {
		b.WriteString("      <VRecSignal>\n")
		writeElem(&b, "        ", "Name", s.name)
		fmt.Fprintf(&b, "        <Enabled>%t</Enabled>\n", !s.disabled)
		writeElem(&b, "        ", "Type", s.chType)
		if s.device != "" {
			writeElem(&b, "        ", "PatchclampDevice", s.device)
			writeElem(&b, "        ", "PatchclampChannel", s.channel)
		} else {
			b.WriteString(`        <PatchclampDevice xsi:nil="true" />` + "\n")
		}
		b.WriteString("        <Unit>\n")
		writeElem(&b, "          ", "UnitName", s.unit)
		writeElem(&b, "          ", "Divisor", s.divisor)
		b.WriteString("        </Unit>\n")
		b.WriteString("      </VRecSignal>\n")
	}
	b.WriteString("    </SignalList>\n")
	b.WriteString("  </Experiment>\n")
	writeElem(&b, "  ", "DataFile", d.dataFile)
	if d.profile != "" {
		writeElem(&b, "  ", "AssociatedLinescanProfileFile", d.profile)
	} else {
		b.WriteString(`  <AssociatedLinescanProfileFile xsi:nil="true" />` + "\n")
	}
	b.WriteString("</VRecSessionEntry>\n")
	return b.String()
}

func writeElem(b *strings.Builder, indent, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s<%s>%s</%s>\n", indent, name, value, name)
}

// metadataName is the file name of the k-th sweep's metadata document.
func metadataName(k int) string {
	return fmt.Sprintf("TSeries-001_Cycle%05d_VoltageRecording_%03d.xml", k, k)
}

// dataName is the extension-less data file reference of the k-th sweep.
func dataName(k int) string {
	return fmt.Sprintf("TSeries-001_Cycle%05d_VoltageRecording_%03d", k, k)
}

func writeFile(t testing.TB, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// primaryCSV renders a two-channel primary recording with n rows sampled
// every 0.1 ms, scaled by k so sweeps are distinguishable.
func primaryCSV(k, n int) string {
	var b strings.Builder
	b.WriteString("Time(ms), Input 0, Input 1\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%g,%d,%d\n", float64(i)/10, k*10+i, -(k*10 + i))
	}
	return b.String()
}

// writePrimarySweep writes the metadata and primary CSV of sweep k.
func writePrimarySweep(t testing.TB, dir string, k, rows int) {
	t.Helper()
	writeFile(t, dir, metadataName(k), defaultDoc(dataName(k)).XML())
	writeFile(t, dir, dataName(k)+".csv", primaryCSV(k, rows))
}
