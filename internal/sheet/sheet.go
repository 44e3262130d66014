// Package sheet decodes product spreadsheets into ordered core.Records.
//
// Two formats are accepted, chosen by file extension: comma separated
// (.csv) and Excel workbooks (.xlsx). The first non-blank row is the header.
// A cell that is missing from a short row is absent from its Record, which
// is different from a cell that is present but empty.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/storefront/internal/core"
)

var (
	// ErrUnsupportedFile is returned for extensions other than .csv and .xlsx.
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrFileTooLarge is returned when the input exceeds Options.MaxSize.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNoHeader is returned when the file has no non-blank row.
	ErrNoHeader = errors.New("file has no header row")
)

// Options control decoding.
type Options struct {
	// Sheet is the worksheet read from an .xlsx file. Empty means the first one.
	Sheet string
	// MaxSize caps the bytes read; zero means no limit.
	MaxSize int64
}

// Format is a supported spreadsheet encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the format from a file name's extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w %q: expected .csv or .xlsx", ErrUnsupportedFile, filepath.Ext(name))
	}
}

// ReadFile opens path and decodes it.
func ReadFile(path string, opts Options) ([]core.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f, filepath.Base(path), opts)
}

// Read decodes r, using name only to choose the format.
func Read(r io.Reader, name string, opts Options) ([]core.Record, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}

	if opts.MaxSize > 0 {
		r = newLimitedReader(r, opts.MaxSize)
	}

	var records []core.Record
	switch format {
	case FormatXLSX:
		records, err = readXLSX(r, opts.Sheet)
	default:
		records, err = readCSV(r)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return records, nil
}

// header cleans header cells. Duplicate names keep their first position.
type header struct {
	names []string
}

func newHeader(cells []string) header {
	h := header{names: make([]string, len(cells))}
	seen := make(map[string]bool, len(cells))
	for i, c := range cells {
		name := strings.TrimSpace(c)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		h.names[i] = name
	}
	return h
}

// record maps the cells present in row onto the header. Cells past the end
// of row are absent; cells under an unnamed column are ignored.
func (h header) record(row []string) core.Record {
	rec := make(core.Record, len(row))
	for i, cell := range row {
		if i >= len(h.names) || h.names[i] == "" {
			continue
		}
		rec[h.names[i]] = cell
	}
	return rec
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// limitedReader fails with ErrFileTooLarge once more than limit bytes are read.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func newLimitedReader(r io.Reader, limit int64) *limitedReader {
	return &limitedReader{r: r, remaining: limit}
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, ErrFileTooLarge
	}
	// Read one byte past the limit so an exact-size file still succeeds.
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrFileTooLarge
	}
	return n, err
}
