package core

// streaming.go provides the reader chain every CSV passes through before
// encoding/csv sees it:
//
//   - bomReader: drops a leading UTF-8 BOM (acquisition PCs are Windows boxes)
//   - utf8Sanitizer: replaces invalid UTF-8 bytes with '?'
//
// Use wrapCSVReader to apply them in order.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// bomReader skips a UTF-8 byte order mark at the start of the stream.
type bomReader struct {
	r       *bufio.Reader
	checked bool
}

func newBOMReader(r io.Reader) *bomReader {
	return &bomReader{r: bufio.NewReader(r)}
}

func (b *bomReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head, err := b.r.Peek(len(utf8BOM))
		if err != nil && err != io.EOF {
			return 0, err
		}
		if bytes.Equal(head, utf8BOM) {
			if _, err := b.r.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return b.r.Read(p)
}

// utf8Sanitizer replaces invalid UTF-8 bytes with '?' without buffering the
// whole file. A multi-byte sequence split across reads is held back until
// the next read completes it. Reads into buffers too small for a whole
// sequence go through an internal chunk and are handed out piecewise.
type utf8Sanitizer struct {
	r       io.Reader
	pending []byte
	out     []byte // sanitized bytes not yet returned
	err     error  // deferred until out is drained
}

// sanitizerChunk is the read size used for callers with tiny buffers.
const sanitizerChunk = 512

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{r: r, pending: make([]byte, 0, utf8.UTFMax)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if len(s.out) > 0 {
		n := copy(p, s.out)
		s.out = s.out[n:]
		if len(s.out) == 0 && s.err != nil {
			err := s.err
			s.err = nil
			return n, err
		}
		return n, nil
	}
	if s.err != nil {
		err := s.err
		s.err = nil
		return 0, err
	}

	if len(p) >= utf8.UTFMax {
		return s.fill(p)
	}

	chunk := make([]byte, sanitizerChunk)
	n, err := s.fill(chunk)
	copied := copy(p, chunk[:n])
	if copied < n {
		s.out = chunk[copied:n]
		s.err = err
		return copied, nil
	}
	return copied, err
}

// fill reads into p, which must hold at least utf8.UTFMax bytes so that
// pending always fits with room to spare.
func (s *utf8Sanitizer) fill(p []byte) (int, error) {
	offset := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.r.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	data := p[:n]
	if err == nil {
		// Hold back a trailing sequence that may still be completed.
		if tail := incompleteTail(data); tail > 0 {
			s.pending = append(s.pending, data[len(data)-tail:]...)
			data = data[:len(data)-tail]
		}
	}

	if utf8.Valid(data) {
		return len(data), err
	}
	return sanitizeInPlace(data), err
}

// sanitizeInPlace rewrites invalid bytes as '?' and returns the new length.
// Replacement never grows the data.
func sanitizeInPlace(data []byte) int {
	w := 0
	for r := 0; r < len(data); {
		c, size := utf8.DecodeRune(data[r:])
		if c == utf8.RuneError && size == 1 {
			data[w] = '?'
			w++
			r++
			continue
		}
		copy(data[w:], data[r:r+size])
		w += size
		r += size
	}
	return w
}

// incompleteTail returns how many trailing bytes form the start of a
// multi-byte sequence that is not yet complete.
func incompleteTail(data []byte) int {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(data); i++ {
		b := data[len(data)-i]
		if b < utf8.RuneSelf {
			return 0
		}
		if utf8.RuneStart(b) {
			if expectedLen(b) > i {
				return i
			}
			return 0
		}
	}
	return 0
}

func expectedLen(b byte) int {
	switch {
	case b < 0xC0:
		return 1
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}

// wrapCSVReader strips the BOM first, then sanitizes.
func wrapCSVReader(r io.Reader) io.Reader {
	return newUTF8Sanitizer(newBOMReader(r))
}
