// Package testhelper builds spreadsheet fixtures for tests.
package testhelper

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"testing"
	"unicode/utf16"

	"github.com/agentstation/fcupdater/pkg/constants"
)

// LegacySheet is one worksheet of a legacy fixture. Cells may be string,
// int (stored as RK), float64 (stored as NUMBER) or nil.
type LegacySheet struct {
	Name string
	Rows [][]any
}

// LegacyBook describes a BIFF8 workbook.
type LegacyBook struct {
	CodePage int
	Sheets   []LegacySheet
	// MaxRecord caps SST record bodies so tests can force CONTINUE records.
	// Zero uses the format limit of 8224 bytes.
	MaxRecord int
}

// Record encodes one BIFF record.
func Record(id uint16, body []byte) []byte {
	out := make([]byte, 4, 4+len(body))
	binary.LittleEndian.PutUint16(out, id)
	binary.LittleEndian.PutUint16(out[2:], uint16(len(body)))
	return append(out, body...)
}

func le16(v int) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, uint16(v))
	return b
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// unicodeChars returns the option flag and character bytes for s.
func unicodeChars(s string) (byte, []byte, int) {
	if isASCII(s) {
		return 0, []byte(s), len(s)
	}
	u := utf16.Encode([]rune(s))
	b := make([]byte, 2*len(u))
	for i, c := range u {
		binary.LittleEndian.PutUint16(b[2*i:], c)
	}
	return 1, b, len(u)
}

// Stream encodes the workbook as a raw BIFF8 stream.
func (b LegacyBook) Stream() []byte {
	var strs []string
	index := map[string]int{}
	for _, sh := range b.Sheets {
		for _, row := range sh.Rows {
			for _, v := range row {
				if s, ok := v.(string); ok && s != "" {
					if _, seen := index[s]; !seen {
						index[s] = len(strs)
						strs = append(strs, s)
					}
				}
			}
		}
	}

	globals := Record(0x0809, cat(le16(0x0600), le16(0x0005), make([]byte, 12)))
	codePage := b.CodePage
	if codePage == 0 {
		codePage = 1200
	}
	globals = append(globals, Record(0x0042, le16(codePage))...)

	boundPos := make([]int, len(b.Sheets))
	for i, sh := range b.Sheets {
		flag, chars, n := unicodeChars(sh.Name)
		boundPos[i] = len(globals) + 4
		globals = append(globals, Record(0x0085, cat(le32(0), []byte{0, 0, byte(n), flag}, chars))...)
	}
	globals = append(globals, b.sst(strs)...)
	globals = append(globals, Record(0x000A, nil)...)

	stream := globals
	for i, sh := range b.Sheets {
		binary.LittleEndian.PutUint32(stream[boundPos[i]:], uint32(len(stream)))
		stream = append(stream, Record(0x0809, cat(le16(0x0600), le16(0x0010), make([]byte, 12)))...)
		for r, row := range sh.Rows {
			for c, v := range row {
				rc := cat(le16(r), le16(c), le16(0))
				switch v := v.(type) {
				case string:
					if v != "" {
						stream = append(stream, Record(0x00FD, cat(rc, le32(uint32(index[v]))))...)
					}
				case int:
					stream = append(stream, Record(0x027E, cat(rc, le32(uint32(int32(v)<<2)|0x02)))...)
				case float64:
					f := make([]byte, 8)
					binary.LittleEndian.PutUint64(f, math.Float64bits(v))
					stream = append(stream, Record(0x0203, cat(rc, f))...)
				}
			}
		}
		stream = append(stream, Record(0x000A, nil)...)
	}
	return stream
}

// sst encodes the shared string table, splitting into CONTINUE records
// when a body exceeds MaxRecord.
func (b LegacyBook) sst(strs []string) []byte {
	limit := b.MaxRecord
	if limit <= 0 {
		limit = 8224
	}

	var records [][]byte
	cur := cat(le32(uint32(len(strs))), le32(uint32(len(strs))))
	flush := func() {
		records = append(records, cur)
		cur = nil
	}

	for _, s := range strs {
		flag, chars, n := unicodeChars(s)
		if len(cur)+3 > limit {
			flush()
		}
		cur = append(cur, cat(le16(n), []byte{flag})...)
		width := 1 + int(flag)
		for i := 0; i < len(chars); i += width {
			if len(cur)+width > limit {
				flush()
				cur = []byte{flag}
			}
			cur = append(cur, chars[i:i+width]...)
		}
	}
	flush()

	var out []byte
	for i, body := range records {
		id := uint16(0x003C)
		if i == 0 {
			id = 0x00FC
		}
		out = append(out, Record(id, body)...)
	}
	return out
}

// Compound wraps a workbook stream in a minimal OLE2 compound file with a
// single "Workbook" stream.
func Compound(stream []byte) []byte {
	const (
		sector     = 512
		endChain   = 0xFFFFFFFE
		freeSect   = 0xFFFFFFFF
		fatSect    = 0xFFFFFFFD
		noStream   = 0xFFFFFFFF
		miniCutoff = 4096
	)

	data := append([]byte(nil), stream...)
	if len(data) < miniCutoff {
		data = append(data, make([]byte, miniCutoff-len(data))...)
	}
	if rem := len(data) % sector; rem != 0 {
		data = append(data, make([]byte, sector-rem)...)
	}
	nData := len(data) / sector
	if nData+2 > sector/4 {
		panic("testhelper: workbook stream too large for a single FAT sector")
	}

	header := make([]byte, sector)
	copy(header, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1})
	binary.LittleEndian.PutUint16(header[0x18:], 0x003E)
	binary.LittleEndian.PutUint16(header[0x1A:], 0x0003)
	binary.LittleEndian.PutUint16(header[0x1C:], 0xFFFE)
	binary.LittleEndian.PutUint16(header[0x1E:], 9)
	binary.LittleEndian.PutUint16(header[0x20:], 6)
	binary.LittleEndian.PutUint32(header[0x2C:], 1)
	binary.LittleEndian.PutUint32(header[0x30:], 1)
	binary.LittleEndian.PutUint32(header[0x38:], miniCutoff)
	binary.LittleEndian.PutUint32(header[0x3C:], endChain)
	binary.LittleEndian.PutUint32(header[0x44:], endChain)
	binary.LittleEndian.PutUint32(header[0x4C:], 0)
	for i := 1; i < 109; i++ {
		binary.LittleEndian.PutUint32(header[0x4C+4*i:], freeSect)
	}

	fat := make([]byte, sector)
	for i := 0; i < sector/4; i++ {
		binary.LittleEndian.PutUint32(fat[4*i:], freeSect)
	}
	binary.LittleEndian.PutUint32(fat[0:], fatSect)
	binary.LittleEndian.PutUint32(fat[4:], endChain)
	for i := 0; i < nData; i++ {
		next := uint32(i + 3)
		if i == nData-1 {
			next = endChain
		}
		binary.LittleEndian.PutUint32(fat[4*(i+2):], next)
	}

	dir := make([]byte, sector)
	entry := func(slot int, name string, kind byte, child uint32, start uint32, size uint32) {
		e := dir[slot*128 : (slot+1)*128]
		u := utf16.Encode([]rune(name))
		for i, c := range u {
			binary.LittleEndian.PutUint16(e[2*i:], c)
		}
		binary.LittleEndian.PutUint16(e[0x40:], uint16(2*(len(u)+1)))
		e[0x42] = kind
		e[0x43] = 1
		binary.LittleEndian.PutUint32(e[0x44:], noStream)
		binary.LittleEndian.PutUint32(e[0x48:], noStream)
		binary.LittleEndian.PutUint32(e[0x4C:], child)
		binary.LittleEndian.PutUint32(e[0x74:], start)
		binary.LittleEndian.PutUint32(e[0x78:], size)
	}
	entry(0, "Root Entry", 5, 1, endChain, 0)
	entry(1, "Workbook", 2, noStream, 2, uint32(len(data)))
	for slot := 2; slot < 4; slot++ {
		e := dir[slot*128 : (slot+1)*128]
		binary.LittleEndian.PutUint32(e[0x44:], noStream)
		binary.LittleEndian.PutUint32(e[0x48:], noStream)
		binary.LittleEndian.PutUint32(e[0x4C:], noStream)
	}

	var buf bytes.Buffer
	buf.Write(header)
	buf.Write(fat)
	buf.Write(dir)
	buf.Write(data)
	return buf.Bytes()
}

// Bytes encodes the workbook as a complete .xls file.
func (b LegacyBook) Bytes() []byte {
	return Compound(b.Stream())
}

// WriteLegacy writes the workbook to path.
func WriteLegacy(t *testing.T, path string, b LegacyBook) {
	t.Helper()
	if err := os.WriteFile(path, b.Bytes(), constants.FilePermissions); err != nil {
		t.Fatalf("write legacy fixture %s: %v", path, err)
	}
}
