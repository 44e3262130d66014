package sheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/storefront/internal/core"
)

// requiredColumns are highlighted in the template header.
var requiredColumns = map[string]bool{
	core.ColHandle: true,
	core.ColTitle:  true,
}

// WriteTemplate writes a blank import workbook with the full header row.
func WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", defaultSheet); err != nil {
		return fmt.Errorf("template: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("template: %w", err)
	}
	requiredStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("template: %w", err)
	}

	for i, col := range core.TemplateColumns() {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("template: %w", err)
		}
		if err := f.SetCellValue(defaultSheet, cell, col); err != nil {
			return fmt.Errorf("template: %w", err)
		}

		style := headerStyle
		if requiredColumns[col] {
			style = requiredStyle
		}
		if err := f.SetCellStyle(defaultSheet, cell, cell, style); err != nil {
			return fmt.Errorf("template: %w", err)
		}

		colName, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(defaultSheet, colName, colName, 20)
	}

	if err := f.SetPanes(defaultSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("template: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("template: %w", err)
	}
	return nil
}
