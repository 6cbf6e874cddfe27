// Package workbook reads spreadsheet containers into a uniform row model and
// writes reconciled records back.
//
// Two container families are supported. Office Open XML workbooks (.xlsx)
// are read and written through excelize. Legacy BIFF workbooks (.xls) are
// read through package biff and upgraded to .xlsx on output. The container
// kind is detected from the file signature, never from the extension.
package workbook

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/agentstation/fcupdater/pkg/errors"
	"github.com/agentstation/fcupdater/pkg/workbook/biff"
)

// Format is a container family.
type Format string

// Supported formats.
const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

var (
	zipMagic = []byte{'P', 'K', 0x03, 0x04}
	cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Detect inspects the signature of the file at path.
func Detect(path string) (Format, error) {
	f, err := os.Open(path) //nolint:gosec // user-supplied workbook path
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.WrapFormat(errors.FormatMissing, path, err)
		}
		return "", errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, len(cfbMagic))
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", errors.WrapIO("read", path, err)
	}
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, zipMagic):
		return FormatXLSX, nil
	case bytes.Equal(head, cfbMagic):
		return FormatXLS, nil
	}
	return "", errors.NewFormatError(errors.FormatUnrecognized, path, "neither a zip package nor a compound file", nil)
}

// Sheet is one worksheet as text. Rows[i] is sheet row i+1.
type Sheet struct {
	Name string
	Rows [][]string
}

// Width returns the widest row of the sheet.
func (s *Sheet) Width() int {
	w := 0
	for _, r := range s.Rows {
		w = max(w, len(r))
	}
	return w
}

// Book is an opened container.
type Book struct {
	Path   string
	Format Format
	Sheets []Sheet

	// File is the editable package of an xlsx book; nil for legacy books
	// until Convert is called.
	File *excelize.File
}

// Sheet returns the named sheet.
func (b *Book) Sheet(name string) (*Sheet, bool) {
	for i := range b.Sheets {
		if b.Sheets[i].Name == name {
			return &b.Sheets[i], true
		}
	}
	return nil, false
}

// Close releases the underlying package.
func (b *Book) Close() error {
	if b == nil || b.File == nil {
		return nil
	}
	return b.File.Close()
}

// parser decodes one container family.
type parser interface {
	parse(ctx context.Context, path string) (*Book, error)
}

// Open detects the container kind of path and parses it.
func Open(ctx context.Context, path string, dec biff.Decoder) (*Book, error) {
	format, err := Detect(path)
	if err != nil {
		return nil, err
	}

	var p parser
	switch format {
	case FormatXLSX:
		p = xlsxParser{}
	case FormatXLS:
		p = xlsParser{decoder: dec}
	}
	return p.parse(ctx, path)
}

type xlsxParser struct{}

func (xlsxParser) parse(_ context.Context, path string) (*Book, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.WrapFormat(errors.FormatCorrupt, path, err)
	}

	book := &Book{Path: path, Format: FormatXLSX, File: f}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			_ = f.Close()
			fe := errors.NewFormatError(errors.FormatCorrupt, path, err.Error(), err)
			fe.Sheet = name
			return nil, fe
		}
		book.Sheets = append(book.Sheets, Sheet{Name: name, Rows: rows})
	}
	return book, nil
}

type xlsParser struct {
	decoder biff.Decoder
}

func (p xlsParser) parse(ctx context.Context, path string) (*Book, error) {
	f, err := os.Open(path) //nolint:gosec // user-supplied workbook path
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	wb, err := biff.Open(ctx, f, p.decoder)
	if err != nil {
		if errors.IsDecode(err) {
			return nil, err
		}
		return nil, errors.WrapFormat(errors.FormatCorrupt, path, err)
	}

	book := &Book{Path: path, Format: FormatXLS}
	for _, s := range wb.Sheets {
		book.Sheets = append(book.Sheets, Sheet{Name: s.Name, Rows: s.Rows})
	}
	return book, nil
}
