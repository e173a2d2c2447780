package core

// streaming.go provides the readers the CSV parser consumes through.
// They keep memory at O(buffer) regardless of file size:
//
//   - bomReader skips the UTF-8 BOM (0xEF 0xBB 0xBF) Windows tools
//     prepend to exported files
//   - utf8Reader replaces invalid UTF-8 bytes with '?' on the fly
//
// NewSanitizedReader stacks them in the required order.

import (
	"bufio"
	"io"
	"unicode/utf8"
)

// NewSanitizedReader wraps r so the CSV parser sees clean UTF-8:
// BOM stripped, invalid sequences replaced.
func NewSanitizedReader(r io.Reader) io.Reader {
	return &utf8Reader{r: &bomReader{br: bufio.NewReaderSize(r, 64*1024)}}
}

type bomReader struct {
	br      *bufio.Reader
	checked bool
}

func (b *bomReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		if peek, _ := b.br.Peek(3); len(peek) == 3 &&
			peek[0] == 0xEF && peek[1] == 0xBB && peek[2] == 0xBF {
			b.br.Discard(3)
		}
	}
	return b.br.Read(p)
}

// utf8Reader sanitizes invalid UTF-8 in place. Bytes that may start an
// incomplete multi-byte sequence at a buffer boundary are held back
// until the next read, so sequences split across reads survive intact.
type utf8Reader struct {
	r        io.Reader
	pending  [utf8.UTFMax]byte
	npending int
}

func (s *utf8Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	off := copy(p, s.pending[:s.npending])
	s.npending = 0

	n, err := s.r.Read(p[off:])
	n += off
	if n == 0 {
		return 0, err
	}

	data := p[:n]
	if allASCII(data) {
		return n, err
	}

	// Hold back a possibly incomplete trailing sequence unless the
	// stream is exhausted.
	if err != io.EOF {
		if tail := incompleteTail(data); tail > 0 {
			s.npending = copy(s.pending[:], data[n-tail:])
			n -= tail
			data = data[:n]
		}
	}

	if utf8.Valid(data) {
		return n, err
	}

	w := 0
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			// Replace with a single byte so the data never expands.
			data[w] = '?'
			w++
			i++
		} else {
			copy(data[w:], data[i:i+size])
			w += size
			i += size
		}
	}
	return w, err
}

func allASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// incompleteTail returns how many trailing bytes of data form the
// start of a multi-byte sequence whose remainder has not arrived yet.
func incompleteTail(data []byte) int {
	for i := 1; i < utf8.UTFMax && i <= len(data); i++ {
		b := data[len(data)-i]
		if b&0xC0 == 0x80 {
			continue // continuation byte, keep scanning back
		}
		if b >= 0xC0 && seqLen(b) > i {
			return i
		}
		return 0
	}
	return 0
}

// seqLen returns the declared length of a UTF-8 sequence led by b,
// or 0 for a bare continuation byte.
func seqLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xC0:
		return 0
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}
