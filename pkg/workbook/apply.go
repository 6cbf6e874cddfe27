package workbook

import (
	"fmt"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/agentstation/fcupdater/pkg/station"
)

const filterDatabase = "_xlnm._FilterDatabase"

// Apply writes the rows of t into its sheet of f. Rows with Line > 0 have
// their Changed fields rewritten in place, the sheet lines in removed are
// deleted, and rows with Line == 0 are appended below the last data row
// with the style of that row. Appended rows receive their final Line.
func Apply(f *excelize.File, t *Table, removed []int) error {
	sheet, h := t.Sheet, t.Header

	lastData := 0
	for _, r := range t.Rows {
		if r.Line == 0 {
			continue
		}
		lastData = max(lastData, r.Line)
		if len(r.Changed) == 0 {
			continue
		}
		if err := writeFields(f, sheet, h, r.Line, r.Record, r.Changed); err != nil {
			return err
		}
	}

	lines := slices.Clone(removed)
	slices.Sort(lines)
	lines = slices.Compact(lines)
	for i := len(lines) - 1; i >= 0; i-- {
		if err := f.RemoveRow(sheet, lines[i]); err != nil {
			return fmt.Errorf("remove row %d: %w", lines[i], err)
		}
		lastData = max(lastData, lines[i])
	}

	// The last kept row, after removal, is the style template.
	template := 0
	if kept := lastKept(t.Rows); kept > 0 {
		template = kept - countBelow(lines, kept)
	}
	last := max(lastData-len(lines), h.Line())

	width := h.Width()
	if t.Book != nil {
		if sh, ok := t.Book.Sheet(sheet); ok {
			width = max(width, sh.Width())
		}
	}

	for i := range t.Rows {
		r := &t.Rows[i]
		if r.Line != 0 {
			continue
		}
		target := last + 1
		if template > 0 {
			if err := f.DuplicateRowTo(sheet, template, target); err != nil {
				return fmt.Errorf("insert row %d: %w", target, err)
			}
			if err := clearRow(f, sheet, target, width); err != nil {
				return err
			}
		} else if err := f.InsertRows(sheet, target, 1); err != nil {
			return fmt.Errorf("insert row %d: %w", target, err)
		}
		if err := writeFields(f, sheet, h, target, r.Record, allFields); err != nil {
			return err
		}
		r.Line = target
		last = target
	}

	return resetAutoFilter(f, sheet, last)
}

var allFields = []station.Field{
	station.FieldRegion, station.FieldName, station.FieldBrand, station.FieldSelf,
	station.FieldAddress, station.FieldPhone,
	station.FieldRegular, station.FieldPremium, station.FieldDiesel,
}

func lastKept(rows []Row) int {
	n := 0
	for _, r := range rows {
		n = max(n, r.Line)
	}
	return n
}

func countBelow(sorted []int, line int) int {
	n, _ := slices.BinarySearch(sorted, line)
	return n
}

func writeFields(f *excelize.File, sheet string, h HeaderMap, line int, rec station.Record, fields []station.Field) error {
	for _, field := range fields {
		col, ok := h.Index(string(field))
		if !ok {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, line)
		if err != nil {
			return err
		}
		var value any
		switch field {
		case station.FieldRegular, station.FieldPremium, station.FieldDiesel:
			if p := rec.Price(field); p != nil {
				value = *p
			}
		default:
			if s := rec.Text(field); s != "" {
				value = s
			}
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("write %s: %w", cell, err)
		}
	}
	return nil
}

func clearRow(f *excelize.File, sheet string, line, width int) error {
	for col := 1; col <= width; col++ {
		cell, err := excelize.CoordinatesToCellName(col, line)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, nil); err != nil {
			return err
		}
	}
	return nil
}

// resetAutoFilter stretches an existing auto-filter of sheet down to line.
func resetAutoFilter(f *excelize.File, sheet string, line int) error {
	for _, dn := range f.GetDefinedName() {
		if dn.Name != filterDatabase || dn.Scope != sheet {
			continue
		}
		ref := dn.RefersTo
		if i := strings.LastIndex(ref, "!"); i >= 0 {
			ref = ref[i+1:]
		}
		ref = strings.ReplaceAll(ref, "$", "")
		start, end, ok := strings.Cut(ref, ":")
		if !ok {
			end = start
		}
		startCol, startRow, err := excelize.CellNameToCoordinates(start)
		if err != nil {
			return nil // unparsable filter range is left alone
		}
		endCol, _, err := excelize.CellNameToCoordinates(end)
		if err != nil {
			return nil
		}
		from, _ := excelize.CoordinatesToCellName(startCol, startRow)
		to, _ := excelize.CoordinatesToCellName(endCol, max(line, startRow))
		return f.AutoFilter(sheet, from+":"+to, nil)
	}
	return nil
}
