package workbook

import (
	"context"

	"github.com/agentstation/fcupdater/internal/config"
	"github.com/agentstation/fcupdater/pkg/constants"
	"github.com/agentstation/fcupdater/pkg/errors"
	"github.com/agentstation/fcupdater/pkg/logging"
	"github.com/agentstation/fcupdater/pkg/station"
	"github.com/agentstation/fcupdater/pkg/workbook/biff"
)

// Role selects the sheet and vocabulary a workbook is read with.
type Role string

// Roles.
const (
	RoleMaster    Role = "master"
	RoleSource    Role = "source"
	RoleChangeLog Role = "changeLog"
)

// Row is one record together with the sheet row it came from.
type Row struct {
	// Line is the 1-based sheet row; zero for rows not yet in the sheet.
	Line   int
	Record station.Record
	// Changed lists the fields to write back into the sheet.
	Changed []station.Field
}

// Table is the record view of a workbook.
type Table struct {
	Path   string
	Format Format
	Sheet  string
	Header HeaderMap
	Rows   []Row

	// Sheets lists every sheet that contributed rows, in order.
	Sheets []string
	Book   *Book
}

// Records returns the records of the table in row order.
func (t *Table) Records() []station.Record {
	out := make([]station.Record, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Record
	}
	return out
}

// Close releases the underlying book.
func (t *Table) Close() error {
	if t == nil {
		return nil
	}
	return t.Book.Close()
}

// Reader turns workbook files into tables.
type Reader struct {
	Limits  config.Limits
	Decoder biff.Decoder
}

// NewReader creates a Reader. Limits are normalized.
func NewReader(limits config.Limits, dec biff.Decoder) *Reader {
	return &Reader{Limits: limits.Normalize(), Decoder: dec}
}

// Read opens path and builds the table for role. The caller owns the
// returned table and must Close it.
func (r *Reader) Read(ctx context.Context, path string, role Role) (*Table, error) {
	book, err := Open(ctx, path, r.Decoder)
	if err != nil {
		return nil, err
	}

	var t *Table
	switch role {
	case RoleMaster:
		t, err = r.master(ctx, book)
	case RoleSource:
		t, err = r.source(ctx, book)
	case RoleChangeLog:
		t, err = r.changeLog(book)
	default:
		err = errors.NewValidationError("role", role, "unknown workbook role")
	}
	if err != nil {
		_ = book.Close()
		return nil, err
	}
	return t, nil
}

// MasterSheetOrder returns the sheets of book in the order they are tried
// as the master sheet.
func MasterSheetOrder(book *Book) []*Sheet {
	var out []*Sheet
	if s, ok := book.Sheet(constants.MasterSheet); ok {
		out = append(out, s)
	}
	for i := range book.Sheets {
		if book.Sheets[i].Name != constants.MasterSheet {
			out = append(out, &book.Sheets[i])
		}
	}
	return out
}

func (r *Reader) master(ctx context.Context, book *Book) (*Table, error) {
	logger := logging.FromContext(ctx)
	for _, sh := range MasterSheetOrder(book) {
		h, ok := DiscoverHeader(sh.Rows, StationVocabulary, r.Limits.MasterHeaderScanRows, 0)
		if !ok {
			logger.Debug().Str("sheet", sh.Name).Msg("No master header in sheet")
			continue
		}
		t := &Table{
			Path:   book.Path,
			Format: book.Format,
			Sheet:  sh.Name,
			Header: h,
			Sheets: []string{sh.Name},
			Book:   book,
		}
		t.Rows = extract(book.Path, sh, h)
		return t, nil
	}
	return nil, headerNotFound(book, constants.MasterSheet)
}

func (r *Reader) source(ctx context.Context, book *Book) (*Table, error) {
	logger := logging.FromContext(ctx)
	t := &Table{Path: book.Path, Format: book.Format, Book: book}
	for i := range book.Sheets {
		sh := &book.Sheets[i]
		h, ok := DiscoverHeader(sh.Rows, StationVocabulary, r.Limits.SourceHeaderScanRows, 0)
		if !ok {
			logger.Debug().Str("file", book.Path).Str("sheet", sh.Name).Msg("Skipping sheet without header")
			continue
		}
		if t.Sheet == "" {
			t.Sheet, t.Header = sh.Name, h
		}
		t.Sheets = append(t.Sheets, sh.Name)
		t.Rows = append(t.Rows, extract(book.Path, sh, h)...)
	}
	if len(t.Sheets) == 0 {
		return nil, headerNotFound(book, "")
	}
	return t, nil
}

func (r *Reader) changeLog(book *Book) (*Table, error) {
	sh, ok := book.Sheet(constants.ChangeLogSheet)
	if !ok {
		fe := errors.NewFormatError(errors.FormatHeaderNotFound, book.Path, "change-log sheet is missing", nil)
		fe.Sheet = constants.ChangeLogSheet
		return nil, fe
	}
	h, ok := DiscoverHeader(sh.Rows, ChangeLogVocabulary, r.Limits.ChangeLogHeaderScanRows, r.Limits.ChangeLogHeaderScanCols)
	if !ok {
		return nil, headerNotFound(book, sh.Name)
	}
	return &Table{
		Path:   book.Path,
		Format: book.Format,
		Sheet:  sh.Name,
		Header: h,
		Sheets: []string{sh.Name},
		Book:   book,
	}, nil
}

func headerNotFound(book *Book, sheet string) error {
	fe := errors.NewFormatError(errors.FormatHeaderNotFound, book.Path, "required columns 지역, 상호, 주소 not found", nil)
	fe.Sheet = sheet
	return fe
}

// extract reads the data rows below the header. Spacer rows without
// region, name and address are not records.
func extract(path string, sh *Sheet, h HeaderMap) []Row {
	var out []Row
	for i := h.Row + 1; i < len(sh.Rows); i++ {
		rec := RecordFromCells(h, sh.Rows[i])
		if rec.Blank() {
			continue
		}
		rec.Origin = station.Origin{File: path, Sheet: sh.Name, Row: i + 1}
		out = append(out, Row{Line: i + 1, Record: rec})
	}
	return out
}

// RecordFromCells builds a record from one sheet row.
func RecordFromCells(h HeaderMap, cells []string) station.Record {
	var rec station.Record
	rec.Region = h.Cell(cells, string(station.FieldRegion))
	rec.Name = h.Cell(cells, string(station.FieldName))
	rec.Brand = h.Cell(cells, string(station.FieldBrand))
	rec.SetSelf(h.Cell(cells, string(station.FieldSelf)))
	rec.SetAddress(h.Cell(cells, string(station.FieldAddress)))
	rec.Phone = h.Cell(cells, string(station.FieldPhone))
	for _, f := range station.PriceFields {
		rec.SetPrice(f, station.ParsePrice(h.Cell(cells, string(f))))
	}
	return rec
}
