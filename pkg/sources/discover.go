// Package sources finds, loads and indexes the source workbooks a master is
// reconciled against.
//
// Sources are read sequentially in natural file-name order. The order only
// matters for duplicate addresses: the first record seen for a key wins and
// later ones are counted as conflicts.
package sources

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/agentstation/fcupdater/pkg/errors"
)

var extensions = []string{".xls", ".xlsx"}

// Discover lists the workbooks in dir whose file name starts with prefix,
// compared case-insensitively, in natural order of the case-folded names. Paths in exclude (usually
// the master and the output) are never returned.
func Discover(dir, prefix string, exclude ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFormatError(errors.FormatMissing, dir, "sources directory does not exist", err)
		}
		return nil, errors.WrapIO("read dir", dir, err)
	}

	fold := cases.Fold()
	want := fold.String(norm.NFC.String(prefix))

	var found []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := norm.NFC.String(e.Name())
		if !slices.Contains(extensions, strings.ToLower(filepath.Ext(name))) {
			continue
		}
		if !strings.HasPrefix(fold.String(name), want) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if excluded(path, exclude) {
			continue
		}
		found = append(found, path)
	}

	if len(found) == 0 {
		return nil, errors.NewFormatError(errors.FormatMissing, dir, "no source workbooks named "+prefix+"*.xls(x)", nil)
	}
	slices.SortFunc(found, func(a, b string) int {
		na, nb := norm.NFC.String(filepath.Base(a)), norm.NFC.String(filepath.Base(b))
		if c := NaturalCompare(fold.String(na), fold.String(nb)); c != 0 {
			return c
		}
		return strings.Compare(na, nb)
	})
	return found, nil
}

func excluded(path string, exclude []string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	abs, _ := filepath.Abs(path)
	for _, x := range exclude {
		if x == "" {
			continue
		}
		if xa, err := filepath.Abs(x); err == nil && xa == abs {
			return true
		}
		if xi, err := os.Stat(x); err == nil && os.SameFile(info, xi) {
			return true
		}
	}
	return false
}

// NaturalCompare orders strings so that embedded numbers compare by value:
// "file2" sorts before "file10".
func NaturalCompare(a, b string) int {
	for a != "" && b != "" {
		da, db := isDigit(a[0]), isDigit(b[0])
		switch {
		case da && db:
			na, ra := splitDigits(a)
			nb, rb := splitDigits(b)
			ta, tb := strings.TrimLeft(na, "0"), strings.TrimLeft(nb, "0")
			if len(ta) != len(tb) {
				return len(ta) - len(tb)
			}
			if c := strings.Compare(ta, tb); c != 0 {
				return c
			}
			if len(na) != len(nb) {
				return len(na) - len(nb)
			}
			a, b = ra, rb
		default:
			if a[0] != b[0] {
				return int(a[0]) - int(b[0])
			}
			a, b = a[1:], b[1:]
		}
	}
	return len(a) - len(b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func splitDigits(s string) (string, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}
