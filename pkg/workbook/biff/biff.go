// Package biff reads cell values from legacy Excel workbooks (BIFF5 and
// BIFF8 inside an OLE2 compound file).
//
// Only what a tabular import needs is decoded: sheet names, shared
// strings, labels, numbers and cached formula results. Formatting,
// formulas and charts are skipped.
package biff

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/richardlehane/mscfb"

	"github.com/agentstation/fcupdater/pkg/constants"
)

// Record types.
const (
	recFormula    = 0x0006
	recEOF        = 0x000A
	recContinue   = 0x003C
	recCodePage   = 0x0042
	recBoundSheet = 0x0085
	recMulRK      = 0x00BD
	recRString    = 0x00D6
	recSST        = 0x00FC
	recLabelSST   = 0x00FD
	recNumber     = 0x0203
	recLabel      = 0x0204
	recBoolErr    = 0x0205
	recString     = 0x0207
	recRK         = 0x027E
	recBOF        = 0x0809
)

// BIFF versions as stored in the BOF record.
const (
	VersionBIFF5 = 0x0500
	VersionBIFF8 = 0x0600
)

// defaultCodePage applies when the workbook has no CODEPAGE record.
const defaultCodePage = 1200

// Decoder converts single-byte text in a workbook code page to UTF-8.
type Decoder interface {
	Decode(ctx context.Context, b []byte, codePage int) (string, error)
}

// Sheet is one worksheet as a dense grid of cell text. Rows[i] is sheet
// row i+1; trailing empty cells are trimmed.
type Sheet struct {
	Name string
	Rows [][]string
}

// Workbook is the decoded content of a legacy workbook.
type Workbook struct {
	Version  int
	CodePage int
	Sheets   []Sheet
}

// StreamNotFoundError is returned when the compound file holds no workbook stream.
type StreamNotFoundError struct{}

func (StreamNotFoundError) Error() string {
	return "compound file has no Workbook or Book stream"
}

// Open reads the workbook stream from a compound file and parses it.
func Open(ctx context.Context, r io.ReaderAt, dec Decoder) (*Workbook, error) {
	doc, err := mscfb.New(r)
	if err != nil {
		return nil, fmt.Errorf("read compound file: %w", err)
	}

	var stream []byte
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if entry.Name != "Workbook" && entry.Name != "Book" {
			continue
		}
		stream, err = io.ReadAll(entry)
		if err != nil {
			return nil, fmt.Errorf("read %s stream: %w", entry.Name, err)
		}
		if entry.Name == "Workbook" {
			break
		}
	}
	if stream == nil {
		return nil, StreamNotFoundError{}
	}
	return Parse(ctx, stream, dec)
}

type boundSheet struct {
	name   []byte // undecoded
	name8  bool   // name already holds UTF-8 from a BIFF8 unicode string
	offset int
	kind   byte
}

// Parse decodes a raw workbook stream.
func Parse(ctx context.Context, stream []byte, dec Decoder) (*Workbook, error) {
	p := &parser{ctx: ctx, stream: stream, dec: dec, codePage: defaultCodePage}
	if err := p.globals(); err != nil {
		return nil, err
	}

	wb := &Workbook{Version: p.version, CodePage: p.codePage}
	for _, bs := range p.sheets {
		if bs.kind != 0 {
			continue // chart, macro or VB module
		}
		name := string(bs.name)
		if !bs.name8 {
			var err error
			if name, err = p.text(bs.name); err != nil {
				return nil, err
			}
		}
		rows, err := p.worksheet(bs.offset)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: rows})
	}
	return wb, nil
}

type parser struct {
	ctx      context.Context
	stream   []byte
	dec      Decoder
	version  int
	codePage int
	sst      []string
	sheets   []boundSheet
}

// record reads the record at pos and returns its type, body and the next position.
func (p *parser) record(pos int) (uint16, []byte, int, error) {
	if pos+4 > len(p.stream) {
		return 0, nil, pos, io.EOF
	}
	id := binary.LittleEndian.Uint16(p.stream[pos:])
	n := int(binary.LittleEndian.Uint16(p.stream[pos+2:]))
	end := pos + 4 + n
	if end > len(p.stream) {
		return 0, nil, pos, fmt.Errorf("record 0x%04X at %d overruns stream", id, pos)
	}
	return id, p.stream[pos+4 : end], end, nil
}

func (p *parser) globals() error {
	pos := 0
	for {
		id, data, next, err := p.record(pos)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch id {
		case recBOF:
			if p.version == 0 && len(data) >= 2 {
				p.version = int(binary.LittleEndian.Uint16(data))
			}
		case recCodePage:
			if len(data) >= 2 {
				p.codePage = int(binary.LittleEndian.Uint16(data))
			}
		case recBoundSheet:
			if bs, ok := p.boundSheet(data); ok {
				p.sheets = append(p.sheets, bs)
			}
		case recSST:
			chunks := [][]byte{data}
			for {
				cid, cdata, cnext, cerr := p.record(next)
				if cerr != nil || cid != recContinue {
					break
				}
				chunks = append(chunks, cdata)
				next = cnext
			}
			sst, err := p.sharedStrings(chunks)
			if err != nil {
				return fmt.Errorf("shared strings: %w", err)
			}
			p.sst = sst
		case recEOF:
			if len(p.sheets) > 0 {
				return nil
			}
		}
		pos = next
	}
	if len(p.sheets) == 0 {
		return fmt.Errorf("no worksheets declared")
	}
	return nil
}

func (p *parser) boundSheet(data []byte) (boundSheet, bool) {
	if len(data) < 7 {
		return boundSheet{}, false
	}
	bs := boundSheet{
		offset: int(binary.LittleEndian.Uint32(data)),
		kind:   data[5],
	}
	cch := int(data[6])
	if p.version >= VersionBIFF8 && len(data) >= 8 {
		name, _, err := p.unicode(data[8:], cch, data[7]&0x01 != 0)
		if err != nil {
			return boundSheet{}, false
		}
		bs.name, bs.name8 = []byte(name), true
		return bs, true
	}
	if 7+cch > len(data) {
		cch = len(data) - 7
	}
	bs.name = data[7 : 7+cch]
	return bs, true
}

// text decodes single-byte text in the workbook code page.
func (p *parser) text(b []byte) (string, error) {
	if p.dec == nil {
		return string(b), nil
	}
	return p.dec.Decode(p.ctx, b, p.codePage)
}

// unicode decodes cch characters from b, either UTF-16LE (wide) or
// single-byte text. It returns the number of bytes consumed.
func (p *parser) unicode(b []byte, cch int, wide bool) (string, int, error) {
	if wide {
		n := cch * 2
		if n > len(b) {
			n = len(b) &^ 1
		}
		return utf16le(b[:n]), n, nil
	}
	if cch > len(b) {
		cch = len(b)
	}
	s, err := p.text(b[:cch])
	return s, cch, err
}

type grid struct {
	rows map[int]map[int]string
	maxR int
}

func (g *grid) set(row, col int, v string) error {
	if row >= constants.MaxLegacyRows || col >= constants.MaxLegacyCols {
		return fmt.Errorf("cell R%dC%d outside supported bounds", row+1, col+1)
	}
	if v == "" {
		return nil
	}
	r, ok := g.rows[row]
	if !ok {
		r = make(map[int]string)
		g.rows[row] = r
	}
	r[col] = v
	if row+1 > g.maxR {
		g.maxR = row + 1
	}
	return nil
}

func (g *grid) dense() [][]string {
	out := make([][]string, g.maxR)
	for r, cells := range g.rows {
		width := 0
		for c := range cells {
			if c+1 > width {
				width = c + 1
			}
		}
		row := make([]string, width)
		for c, v := range cells {
			row[c] = v
		}
		out[r] = row
	}
	return out
}

func (p *parser) worksheet(offset int) ([][]string, error) {
	if offset < 0 || offset >= len(p.stream) {
		return nil, fmt.Errorf("worksheet offset %d outside stream", offset)
	}

	g := &grid{rows: make(map[int]map[int]string)}
	pendingRow, pendingCol := -1, -1
	depth := 0
	pos := offset
	for {
		id, data, next, err := p.record(pos)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		pos = next

		switch id {
		case recBOF:
			depth++
			continue
		case recEOF:
			depth--
			if depth <= 0 {
				return g.dense(), nil
			}
			continue
		}
		if depth > 1 {
			continue // embedded chart substream
		}

		if err := p.cell(g, id, data, &pendingRow, &pendingCol); err != nil {
			return nil, err
		}
	}
	return g.dense(), nil
}

func (p *parser) cell(g *grid, id uint16, data []byte, pendingRow, pendingCol *int) error {
	rc := func() (int, int) {
		return int(binary.LittleEndian.Uint16(data)), int(binary.LittleEndian.Uint16(data[2:]))
	}

	switch id {
	case recLabelSST:
		if len(data) < 10 {
			return nil
		}
		r, c := rc()
		idx := int(binary.LittleEndian.Uint32(data[6:]))
		if idx < len(p.sst) {
			return g.set(r, c, p.sst[idx])
		}
	case recLabel, recRString:
		if len(data) < 8 {
			return nil
		}
		r, c := rc()
		s, err := p.label(data[6:])
		if err != nil {
			return err
		}
		return g.set(r, c, s)
	case recNumber:
		if len(data) < 14 {
			return nil
		}
		r, c := rc()
		return g.set(r, c, formatNumber(math.Float64frombits(binary.LittleEndian.Uint64(data[6:]))))
	case recRK:
		if len(data) < 10 {
			return nil
		}
		r, c := rc()
		return g.set(r, c, formatNumber(decodeRK(binary.LittleEndian.Uint32(data[6:]))))
	case recMulRK:
		if len(data) < 6 {
			return nil
		}
		r, first := rc()
		n := (len(data) - 6) / 6
		for i := 0; i < n; i++ {
			off := 4 + i*6
			v := decodeRK(binary.LittleEndian.Uint32(data[off+2:]))
			if err := g.set(r, first+i, formatNumber(v)); err != nil {
				return err
			}
		}
	case recBoolErr:
		if len(data) < 8 {
			return nil
		}
		r, c := rc()
		if data[7] == 0 {
			return g.set(r, c, formatBool(data[6] != 0))
		}
	case recFormula:
		if len(data) < 14 {
			return nil
		}
		r, c := rc()
		res := data[6:14]
		if res[6] != 0xFF || res[7] != 0xFF {
			return g.set(r, c, formatNumber(math.Float64frombits(binary.LittleEndian.Uint64(res))))
		}
		switch res[0] {
		case 0:
			*pendingRow, *pendingCol = r, c // text arrives in the next STRING record
		case 1:
			return g.set(r, c, formatBool(res[2] != 0))
		}
	case recString:
		if *pendingRow < 0 {
			return nil
		}
		s, err := p.label(data)
		if err != nil {
			return err
		}
		r, c := *pendingRow, *pendingCol
		*pendingRow, *pendingCol = -1, -1
		return g.set(r, c, s)
	}
	return nil
}

// label decodes a LABEL/STRING body: a 16-bit length followed by BIFF8
// unicode or BIFF5 code-page bytes.
func (p *parser) label(b []byte) (string, error) {
	if len(b) < 2 {
		return "", nil
	}
	cch := int(binary.LittleEndian.Uint16(b))
	if p.version < VersionBIFF8 {
		s, _, err := p.unicode(b[2:], cch, false)
		return s, err
	}
	if len(b) < 3 {
		return "", nil
	}
	flags := b[2]
	rest := b[3:]
	if flags&0x08 != 0 && len(rest) >= 2 {
		rest = rest[2:]
	}
	if flags&0x04 != 0 && len(rest) >= 4 {
		rest = rest[4:]
	}
	s, _, err := p.unicode(rest, cch, flags&0x01 != 0)
	return s, err
}

// decodeRK unpacks the compressed RK number format.
func decodeRK(rk uint32) float64 {
	var v float64
	if rk&0x02 != 0 {
		v = float64(int32(rk) >> 2)
	} else {
		v = math.Float64frombits(uint64(rk&0xFFFFFFFC) << 32)
	}
	if rk&0x01 != 0 {
		v /= 100
	}
	return v
}

func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func utf16le(b []byte) string {
	u := make([]uint16, len(b)/2)
	for i := range u {
		u[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	var sb strings.Builder
	sb.Grow(len(u))
	for _, r := range utf16.Decode(u) {
		sb.WriteRune(r)
	}
	return sb.String()
}
