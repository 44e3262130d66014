package sheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/storefront/internal/core"
)

// defaultSheet is preferred over the first sheet when no sheet is named.
const defaultSheet = "Products"

func readXLSX(r io.Reader, sheet string) ([]core.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	name, err := pickSheet(f.GetSheetList(), sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.Rows(name)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", name, err)
	}
	defer rows.Close()

	var (
		h       header
		haveHdr bool
		out     []core.Record
	)
	for rows.Next() {
		cells, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		if isBlank(cells) {
			continue
		}
		if !haveHdr {
			h = newHeader(cells)
			haveHdr = true
			continue
		}
		out = append(out, h.record(cells))
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("sheet %q: %w", name, err)
	}

	if !haveHdr {
		return nil, ErrNoHeader
	}
	return out, nil
}

// pickSheet resolves the worksheet to read: the requested one (case
// insensitive), else "Products", else the first.
func pickSheet(sheets []string, want string) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}

	if want = strings.TrimSpace(want); want != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, want) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet %q not found (have %s)", want, strings.Join(sheets, ", "))
	}

	for _, s := range sheets {
		if strings.EqualFold(s, defaultSheet) {
			return s, nil
		}
	}
	return sheets[0], nil
}
