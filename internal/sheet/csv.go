package sheet

// csv.go reads comma separated exports. Spreadsheet programs on Windows
// prepend a UTF-8 byte order mark and legacy exports may carry bytes that
// are not valid UTF-8; both are cleaned while streaming, before the CSV
// parser sees them.

import (
	"encoding/csv"
	"errors"
	"io"
	"unicode/utf8"

	"github.com/JonMunkholm/storefront/internal/core"
)

func readCSV(r io.Reader) ([]core.Record, error) {
	cr := csv.NewReader(newUTF8Sanitizer(newBOMSkipper(r)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	var (
		h       header
		haveHdr bool
		out     []core.Record
	)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if isBlank(row) {
			continue
		}
		if !haveHdr {
			h = newHeader(row)
			haveHdr = true
			continue
		}
		out = append(out, h.record(row))
	}

	if !haveHdr {
		return nil, ErrNoHeader
	}
	return out, nil
}

// bomSkipper drops a leading UTF-8 byte order mark.
type bomSkipper struct {
	r       io.Reader
	checked bool
	buf     []byte
}

func newBOMSkipper(r io.Reader) *bomSkipper {
	return &bomSkipper{r: r}
}

func (b *bomSkipper) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true

		var head [3]byte
		n, err := io.ReadFull(b.r, head[:])
		if !(n == 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF) {
			b.buf = append(b.buf, head[:n]...)
		}
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, err
		}
		if err != nil && len(b.buf) == 0 {
			return 0, io.EOF
		}
	}

	if len(b.buf) > 0 {
		n := copy(p, b.buf)
		b.buf = b.buf[n:]
		return n, nil
	}
	return b.r.Read(p)
}

// utf8Sanitizer replaces invalid UTF-8 bytes with '?'. A multi-byte rune
// split across two reads is held back until the rest of it arrives.
type utf8Sanitizer struct {
	r       io.Reader
	buf     []byte
	out     []byte
	pending []byte
	err     error
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{
		r:       r,
		buf:     make([]byte, 32*1024),
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	for len(s.out) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		s.fill()
	}

	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

func (s *utf8Sanitizer) fill() {
	offset := copy(s.buf, s.pending)
	s.pending = s.pending[:0]

	n, err := s.r.Read(s.buf[offset:])
	n += offset
	s.err = err
	s.out = s.buf[:s.sanitize(s.buf[:n], err != nil)]
}

// sanitize rewrites data in place and returns the number of bytes to emit.
func (s *utf8Sanitizer) sanitize(data []byte, atEOF bool) int {
	write := 0
	for read := 0; read < len(data); {
		if data[read] < utf8.RuneSelf {
			data[write] = data[read]
			write++
			read++
			continue
		}

		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			if !atEOF && !utf8.FullRune(data[read:]) {
				s.pending = append(s.pending, data[read:]...)
				return write
			}
			data[write] = '?'
			write++
			read++
			continue
		}

		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}
