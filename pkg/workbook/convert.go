package workbook

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// Convert builds an xlsx package holding every sheet of a legacy book and
// attaches it as book.File. Cells that read back as canonical numbers are
// written as numbers, everything else as text. Books that already have a
// package are left untouched.
func Convert(book *Book) error {
	if book.File != nil {
		return nil
	}

	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(0)
	for i, sh := range book.Sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sh.Name); err != nil {
				_ = f.Close()
				return fmt.Errorf("sheet %q: %w", sh.Name, err)
			}
		} else if _, err := f.NewSheet(sh.Name); err != nil {
			_ = f.Close()
			return fmt.Errorf("sheet %q: %w", sh.Name, err)
		}

		for r, row := range sh.Rows {
			if len(row) == 0 {
				continue
			}
			values := make([]any, len(row))
			for c, v := range row {
				values[c] = cellValue(v)
			}
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			if err := f.SetSheetRow(sh.Name, cell, &values); err != nil {
				_ = f.Close()
				return fmt.Errorf("sheet %q row %d: %w", sh.Name, r+1, err)
			}
		}
	}

	book.File = f
	return nil
}

func cellValue(s string) any {
	if s == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && strconv.FormatFloat(v, 'f', -1, 64) == s {
		return v
	}
	return s
}
