package testhelper

import (
	"os"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/agentstation/fcupdater/pkg/constants"
)

// Sheet is one worksheet of an xlsx fixture.
type Sheet struct {
	Name string
	Rows [][]any
}

// StationHeader is the column layout used by station fixtures.
var StationHeader = []any{"지역", "상호", "상표", "셀프여부", "주소", "전화번호", "휘발유", "고급휘발유", "경유"}

// Station builds one fixture row in StationHeader layout. Prices may be
// int, string or nil.
func Station(region, name, brand, self, address, phone string, regular, premium, diesel any) []any {
	return []any{region, name, brand, self, address, phone, regular, premium, diesel}
}

// ChangeLogHeader is the header row of a change-log fixture.
var ChangeLogHeader = []any{
	"지역", "상호", "주소", "변경내용",
	"휘발유(이전)", "휘발유(신규)", "고급유(이전)", "고급유(신규)", "경유(이전)", "경유(신규)",
	"휘발유 Δ", "고급유 Δ", "경유 Δ",
}

// ChangeLogSheet returns a change-log sheet with a title, a date line and
// the header in row 3, followed by rows.
func ChangeLogSheet(rows ...[]any) Sheet {
	all := [][]any{{"유류비 변경내역"}, {constants.ChangeLogDatePrefix + "2000-01-01"}, ChangeLogHeader}
	return Sheet{Name: constants.ChangeLogSheet, Rows: append(all, rows...)}
}

// MasterSheet returns a master sheet with a title row, the station header in
// row 2 and the given station rows.
func MasterSheet(rows ...[]any) Sheet {
	all := [][]any{{"충청권 주유소 유류비"}, StationHeader}
	return Sheet{Name: constants.MasterSheet, Rows: append(all, rows...)}
}

// SourceSheet returns a source sheet with the station header in row 1.
func SourceSheet(name string, rows ...[]any) Sheet {
	return Sheet{Name: name, Rows: append([][]any{StationHeader}, rows...)}
}

// NewXLSX builds an in-memory workbook with the given sheets, in order.
func NewXLSX(t *testing.T, sheets ...Sheet) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	first := f.GetSheetName(0)
	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName(first, sh.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sh.Name); err != nil {
			t.Fatalf("new sheet %s: %v", sh.Name, err)
		}
		for r, row := range sh.Rows {
			values := append([]any(nil), row...)
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			if err := f.SetSheetRow(sh.Name, cell, &values); err != nil {
				t.Fatalf("write %s!%s: %v", sh.Name, cell, err)
			}
		}
	}
	return f
}

// WriteXLSX writes a workbook with the given sheets to path. The package is
// streamed, so path may carry any extension.
func WriteXLSX(t *testing.T, path string, sheets ...Sheet) {
	t.Helper()

	f := NewXLSX(t, sheets...)
	defer func() { _ = f.Close() }()
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture %s: %v", path, err)
	}
	if _, err := f.WriteTo(out); err != nil {
		_ = out.Close()
		t.Fatalf("save fixture %s: %v", path, err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("close fixture %s: %v", path, err)
	}
}

// ReadRows returns the rows of sheet in the xlsx file at path.
func ReadRows(t *testing.T, path, sheet string) [][]string {
	t.Helper()

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("rows of %s!%s: %v", path, sheet, err)
	}
	return rows
}
