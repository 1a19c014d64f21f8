// Package export builds Excel workbooks for attendance and budget reports.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetSpec is one sheet: a header row followed by data rows.
type SheetSpec struct {
	Title  string
	Header []string
	Rows   [][]any
}

// NewWorkbook writes the sheets in order; the first one replaces the default sheet.
func NewWorkbook(sheets []SheetSpec) (*excelize.File, error) {
	f := excelize.NewFile()
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Title); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.Title); err != nil {
			return nil, fmt.Errorf("new sheet %s: %w", s.Title, err)
		}

		if err := f.SetSheetRow(s.Title, "A1", &s.Header); err != nil {
			return nil, fmt.Errorf("header %s: %w", s.Title, err)
		}
		for r, row := range s.Rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(s.Title, cell, &row); err != nil {
				return nil, fmt.Errorf("row %s%d: %w", s.Title, r+2, err)
			}
		}
		if err := ApplyDefaultExcelFormatting(f, s.Title); err != nil {
			return nil, err
		}
	}
	if len(sheets) > 0 {
		f.SetActiveSheet(0)
	}
	return f, nil
}
