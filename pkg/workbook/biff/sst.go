package biff

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// sstReader walks the SST record and its CONTINUE records as one logical
// stream. Character arrays split across records resume with a fresh
// option byte that may switch between compressed and wide characters.
type sstReader struct {
	chunks [][]byte
	ci     int
	off    int
}

func (r *sstReader) advance() bool {
	for r.ci < len(r.chunks) && r.off >= len(r.chunks[r.ci]) {
		r.ci++
		r.off = 0
	}
	return r.ci < len(r.chunks)
}

func (r *sstReader) bytes(n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		if !r.advance() {
			return nil, io.ErrUnexpectedEOF
		}
		chunk := r.chunks[r.ci]
		k := min(n-len(out), len(chunk)-r.off)
		out = append(out, chunk[r.off:r.off+k]...)
		r.off += k
	}
	return out, nil
}

func (r *sstReader) skip(n int) error {
	_, err := r.bytes(n)
	return err
}

func (r *sstReader) u8() (byte, error) {
	b, err := r.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *sstReader) u16() (int, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return int(binary.LittleEndian.Uint16(b)), nil
}

func (r *sstReader) u32() (int, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return int(binary.LittleEndian.Uint32(b)), nil
}

func (p *parser) sharedStrings(chunks [][]byte) ([]string, error) {
	r := &sstReader{chunks: chunks}
	if _, err := r.u32(); err != nil { // total references
		return nil, err
	}
	unique, err := r.u32()
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, min(unique, 1<<16))
	for i := 0; i < unique; i++ {
		s, err := p.sstString(r)
		if err != nil {
			// Truncated tables keep what was read; cells pointing past
			// the end stay empty.
			if err == io.ErrUnexpectedEOF {
				break
			}
			return nil, fmt.Errorf("string %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func (p *parser) sstString(r *sstReader) (string, error) {
	cch, err := r.u16()
	if err != nil {
		return "", err
	}
	flags, err := r.u8()
	if err != nil {
		return "", err
	}

	runs, ext := 0, 0
	if flags&0x08 != 0 {
		if runs, err = r.u16(); err != nil {
			return "", err
		}
	}
	if flags&0x04 != 0 {
		if ext, err = r.u32(); err != nil {
			return "", err
		}
	}

	wide := flags&0x01 != 0
	var sb strings.Builder
	for left := cch; left > 0; {
		if r.ci < len(r.chunks) && r.off >= len(r.chunks[r.ci]) {
			if !r.advance() {
				return "", io.ErrUnexpectedEOF
			}
			opt, err := r.u8()
			if err != nil {
				return "", err
			}
			wide = opt&0x01 != 0
		}
		if r.ci >= len(r.chunks) {
			return "", io.ErrUnexpectedEOF
		}

		width := 1
		if wide {
			width = 2
		}
		avail := (len(r.chunks[r.ci]) - r.off) / width
		if avail == 0 {
			return "", io.ErrUnexpectedEOF
		}
		k := min(left, avail)
		raw, err := r.bytes(k * width)
		if err != nil {
			return "", err
		}
		s, _, err := p.unicode(raw, k, wide)
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
		left -= k
	}

	if err := r.skip(runs*4 + ext); err != nil {
		return "", err
	}
	return sb.String(), nil
}
