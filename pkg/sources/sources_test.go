package sources_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/fcupdater/internal/config"
	"github.com/agentstation/fcupdater/internal/testhelper"
	"github.com/agentstation/fcupdater/pkg/errors"
	"github.com/agentstation/fcupdater/pkg/sources"
	"github.com/agentstation/fcupdater/pkg/station"
	"github.com/agentstation/fcupdater/pkg/textdecode"
	"github.com/agentstation/fcupdater/pkg/workbook"
)

const prefix = "지역_위치별(주유소)"

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
	return p
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, prefix+"10.xlsx")
	touch(t, dir, prefix+"2.xls")
	touch(t, dir, prefix+"1.XLSX")
	touch(t, dir, prefix+".csv")
	touch(t, dir, "other.xlsx")
	master := touch(t, dir, prefix+"_master.xlsx")
	require.NoError(t, os.Mkdir(filepath.Join(dir, prefix+"dir.xlsx"), 0o700))

	got, err := sources.Discover(dir, prefix, master)
	require.NoError(t, err)

	var names []string
	for _, p := range got {
		names = append(names, filepath.Base(p))
	}
	assert.Equal(t, []string{prefix + "1.XLSX", prefix + "2.xls", prefix + "10.xlsx"}, names)
}

func TestDiscoverCaseInsensitivePrefix(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Stations_A.xlsx")
	touch(t, dir, "STATIONS_b.xlsx")
	touch(t, dir, "STATIONS_10.xlsx")
	touch(t, dir, "stations_2.xls")

	got, err := sources.Discover(dir, "stations_")
	require.NoError(t, err)

	var names []string
	for _, p := range got {
		names = append(names, filepath.Base(p))
	}
	assert.Equal(t, []string{"stations_2.xls", "STATIONS_10.xlsx", "Stations_A.xlsx", "STATIONS_b.xlsx"}, names,
		"case does not affect the order")
}

func TestDiscoverNothing(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "unrelated.xlsx")

	_, err := sources.Discover(dir, prefix)
	require.Error(t, err)
	assert.True(t, errors.IsMissing(err))

	_, err = sources.Discover(filepath.Join(dir, "nope"), prefix)
	assert.True(t, errors.IsMissing(err))
}

func TestNaturalCompare(t *testing.T) {
	tests := []struct {
		a, b string
		less bool
	}{
		{"file2", "file10", true},
		{"file10", "file2", false},
		{"a", "b", true},
		{"file02", "file2", false},
		{"file", "file1", true},
		{"지역1", "지역01", true},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.less, sources.NaturalCompare(tt.a, tt.b) < 0)
		})
	}
	assert.Zero(t, sources.NaturalCompare("x12y", "x12y"))
}

func record(name, addr string, row int) workbook.Row {
	var r station.Record
	r.Name = name
	r.SetAddress(addr)
	r.Origin = station.Origin{File: "s.xlsx", Sheet: "Sheet1", Row: row}
	return workbook.Row{Line: row, Record: r}
}

func TestBuildIndex(t *testing.T) {
	set := &sources.FileSet{Tables: []*workbook.Table{
		{Rows: []workbook.Row{
			record("A", "대전 서구 111", 2),
			record("B", "대전 서구 222", 3),
			record("A'", "대전광역시 서구 111", 4),
			record("N", "", 5),
		}},
		{Rows: []workbook.Row{
			record("B'", "대전 서구  222", 2),
			record("C", "대전 서구 333", 3),
		}},
	}}

	ix := sources.BuildIndex(set, 1)
	assert.Equal(t, 4, ix.Len())

	var names []string
	for _, r := range ix.Entries() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"A", "B", "N", "C"}, names)

	a, ok := ix.Lookup("대전서구111")
	require.True(t, ok)
	assert.Equal(t, "A", a.Name, "first seen wins")

	_, ok = ix.Lookup("")
	assert.False(t, ok)
	_, ok = ix.Lookup("대전서구999")
	assert.False(t, ok)

	assert.Equal(t, 2, ix.Conflicts.Duplicates)
	assert.Zero(t, ix.Conflicts.Overwritten)
	require.Len(t, ix.Conflicts.Samples, 1)
	s := ix.Conflicts.Samples[0]
	assert.Equal(t, "대전서구111", s.Key)
	assert.Equal(t, 2, s.Previous.Row)
	assert.Equal(t, 4, s.Incoming.Row)
	assert.Equal(t, s.Previous, s.Selected)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, prefix+"1.xlsx")
	testhelper.WriteXLSX(t, first, testhelper.SourceSheet("s",
		testhelper.Station("대전", "A", "", "", "대전 서구 111", "", 1550, 1700, 1400),
	))
	second := filepath.Join(dir, prefix+"2.xls")
	testhelper.WriteLegacy(t, second, testhelper.LegacyBook{Sheets: []testhelper.LegacySheet{{
		Name: "s",
		Rows: [][]any{
			{"지역", "상호", "주소", "휘발유"},
			{"대전", "B", "대전 서구 222", 1600},
		},
	}}})

	r := workbook.NewReader(config.DefaultLimits(), textdecode.New())
	set, err := sources.Load(context.Background(), r, []string{first, second})
	require.NoError(t, err)
	assert.Equal(t, []string{first, second}, set.Paths)
	assert.Equal(t, 2, set.Rows())
	assert.Nil(t, set.Tables[0].Book)

	bad := filepath.Join(dir, prefix+"3.xlsx")
	require.NoError(t, os.WriteFile(bad, []byte("garbage!"), 0o600))
	_, err = sources.Load(context.Background(), r, []string{first, bad})
	require.Error(t, err)
	assert.True(t, errors.IsUnrecognized(err))
}
