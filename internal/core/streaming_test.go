package core

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestBOMReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("Time,Input 0")...),
			expected: "Time,Input 0",
		},
		{
			name:     "file without BOM",
			input:    []byte("Time,Input 0"),
			expected: "Time,Input 0",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "partial BOM at start",
			input:    []byte{0xEF, 0xBB, 'a', 'b', 'c'},
			expected: string([]byte{0xEF, 0xBB, 'a', 'b', 'c'}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(newBOMReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestUTF8Sanitizer(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "valid ASCII",
			input:    []byte("0.1,2.5"),
			expected: "0.1,2.5",
		},
		{
			name:     "valid multibyte",
			input:    []byte("Prof 1 (µm)"),
			expected: "Prof 1 (µm)",
		},
		{
			name:     "invalid single byte replaced",
			input:    []byte{'h', 'e', 0x80, 'l', 'o'},
			expected: "he?lo",
		},
		{
			name:     "truncated sequence at end",
			input:    []byte{'a', 0xC3},
			expected: "a?",
		},
		{
			name:     "empty input",
			input:    []byte{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(newUTF8Sanitizer(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestUTF8Sanitizer_SplitAcrossReads(t *testing.T) {
	input := "Prof 1 (µm),Δt\n"

	result, err := io.ReadAll(newUTF8Sanitizer(iotest.OneByteReader(bytes.NewReader([]byte(input)))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result) != input {
		t.Errorf("got %q, want %q", string(result), input)
	}
}

// readInSteps drains r with a fixed, tiny buffer.
func readInSteps(t *testing.T, r io.Reader, size int) string {
	t.Helper()
	var out []byte
	buf := make([]byte, size)
	for calls := 0; ; calls++ {
		if calls > 1000 {
			t.Fatalf("no progress after %d reads, got %q so far", calls, out)
		}
		n, err := r.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return string(out)
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

func TestUTF8Sanitizer_SmallBuffers(t *testing.T) {
	input := "µm,\xffΔt€\n"
	want := "µm,?Δt€\n"

	for _, size := range []int{1, 2, 3} {
		for name, src := range map[string]func() io.Reader{
			"whole":    func() io.Reader { return strings.NewReader(input) },
			"one byte": func() io.Reader { return iotest.OneByteReader(strings.NewReader(input)) },
		} {
			t.Run(fmt.Sprintf("%s/%d", name, size), func(t *testing.T) {
				got := readInSteps(t, newUTF8Sanitizer(src()), size)
				if got != want {
					t.Errorf("got %q, want %q", got, want)
				}
			})
		}
	}
}

func TestWrapCSVReader(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte{'h', 'e', 0x80, 'l', 'o'}...)

	result, err := io.ReadAll(wrapCSVReader(bytes.NewReader(input)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// BOM stripped, invalid byte replaced
	if string(result) != "he?lo" {
		t.Errorf("got %q, want %q", string(result), "he?lo")
	}
}
