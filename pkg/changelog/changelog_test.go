package changelog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/agentstation/fcupdater/internal/config"
	"github.com/agentstation/fcupdater/internal/testhelper"
	"github.com/agentstation/fcupdater/internal/utils/ptr"
	"github.com/agentstation/fcupdater/pkg/changelog"
	"github.com/agentstation/fcupdater/pkg/constants"
	"github.com/agentstation/fcupdater/pkg/differ"
	"github.com/agentstation/fcupdater/pkg/errors"
	"github.com/agentstation/fcupdater/pkg/logging"
	"github.com/agentstation/fcupdater/pkg/station"
)

const today = "2026-10-16"

func rec(name, addr string, prices ...int) station.Record {
	r := station.Record{Region: "대전", Name: name}
	r.SetAddress(addr)
	for i, f := range station.PriceFields {
		if i < len(prices) {
			r.SetPrice(f, ptr.Int(prices[i]))
		}
	}
	return r
}

func records(t *testing.T) []differ.ChangeRecord {
	t.Helper()
	_, upd := differ.New().Compare(
		rec("A", "대전 서구 111", 1500, 1700, 1400),
		rec("A", "대전 서구 111", 1550, 1700, 1400),
	)
	require.NotNil(t, upd)
	return []differ.ChangeRecord{
		*upd,
		differ.Added(rec("B", "대전 서구 222", 1580, 1780, 1480)),
		differ.Removed(rec("C", "대전 서구 333", 1600, 1800, 1500)),
	}
}

func rows(t *testing.T, f *excelize.File) [][]string {
	t.Helper()
	out, err := f.GetRows(constants.ChangeLogSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return out
}

func TestWrite(t *testing.T) {
	f := testhelper.NewXLSX(t,
		testhelper.MasterSheet(),
		testhelper.ChangeLogSheet(
			[]any{"대전", "old1", "x", "가격변동", 1, 2, nil, nil, nil, nil, 1},
			[]any{"대전", "old2", "x", "폐업"},
			[]any{"대전", "old3", "x", "신규"},
			[]any{"대전", "old4", "x", "신규"},
		),
	)
	defer func() { _ = f.Close() }()

	res, err := changelog.NewBuilder(config.DefaultLimits()).Write(context.Background(), f, records(t), today)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Entries)
	assert.Equal(t, 3, res.HeaderRow)
	assert.False(t, res.Created)

	got := rows(t, f)
	assert.Equal(t, constants.ChangeLogDatePrefix+today, got[1][0])
	require.Len(t, got, 6, "old entries beyond the new ones are cleared")

	assert.Equal(t, []string{"대전", "A", "대전 서구 111", "가격변동", "1500", "1550", "", "", "", "", "50"}, got[3])
	assert.Equal(t, []string{"대전", "B", "대전 서구 222", "신규", "", "1580", "", "1780", "", "1480"}, got[4])
	assert.Equal(t, []string{"대전", "C", "대전 서구 333", "폐업", "1600", "", "1800", "", "1500"}, got[5])
}

func TestWriteCreatesSheet(t *testing.T) {
	f := testhelper.NewXLSX(t, testhelper.MasterSheet())
	defer func() { _ = f.Close() }()

	res, err := changelog.NewBuilder(config.DefaultLimits()).Write(context.Background(), f, records(t), today)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, constants.ChangeLogCreatedHeaderRow, res.HeaderRow)

	got := rows(t, f)
	require.Len(t, got, 6)
	assert.Equal(t, constants.ChangeLogDatePrefix+today, got[1][0])
	assert.Equal(t, "변경내용", got[2][3])
	assert.Equal(t, "휘발유 Δ", got[2][10])
	assert.Equal(t, "C", got[5][1])
}

func TestWriteNoRecords(t *testing.T) {
	f := testhelper.NewXLSX(t, testhelper.ChangeLogSheet([]any{"대전", "old", "x", "신규"}))
	defer func() { _ = f.Close() }()

	res, err := changelog.NewBuilder(config.DefaultLimits()).Write(context.Background(), f, nil, today)
	require.NoError(t, err)
	assert.Zero(t, res.Entries)
	assert.Len(t, rows(t, f), 3)
}

func TestWriteHeaderErrors(t *testing.T) {
	tests := []struct {
		name   string
		header []any
		want   string
	}{
		{
			name:   "no header",
			header: []any{"foo", "bar"},
			want:   "required columns 지역, 상호, 주소, 변경내용",
		},
		{
			name:   "missing price column",
			header: []any{"지역", "상호", "주소", "변경내용", "휘발유(이전)", "휘발유(신규)", "고급유(이전)", "고급유(신규)", "경유(이전)"},
			want:   "row 3 lacks 경유(신규)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testhelper.NewXLSX(t, testhelper.Sheet{
				Name: constants.ChangeLogSheet,
				Rows: [][]any{{"title"}, {"date"}, tt.header},
			})
			defer func() { _ = f.Close() }()

			_, err := changelog.NewBuilder(config.DefaultLimits()).Write(context.Background(), f, records(t), today)
			require.Error(t, err)
			assert.True(t, errors.IsHeaderNotFound(err))
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), constants.ChangeLogSheet)
		})
	}
}

func TestWriteHeaderVariants(t *testing.T) {
	f := testhelper.NewXLSX(t, testhelper.Sheet{
		Name: constants.ChangeLogSheet,
		Rows: [][]any{
			{"title"},
			{"date"},
			{"지역", "상호", "주소", "변경사유", "휘발유 이전", "휘발유 신규", "고급유(이전)", "고급유(신규)", "경유(이전)", "경유(신규)", "경유증감"},
		},
	})
	defer func() { _ = f.Close() }()

	_, err := changelog.NewBuilder(config.DefaultLimits()).Write(context.Background(), f, records(t)[:1], today)
	require.NoError(t, err)
	got := rows(t, f)
	assert.Equal(t, []string{"대전", "A", "대전 서구 111", "가격변동", "1500", "1550"}, got[3])
}

func TestWriteCopiesStyle(t *testing.T) {
	f := testhelper.NewXLSX(t, testhelper.ChangeLogSheet([]any{"대전", "old", "x", "신규"}))
	defer func() { _ = f.Close() }()

	style, err := f.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFFF00"}}})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(constants.ChangeLogSheet, "A4", "M4", style))

	// The configured row does not exist, so the nearest styled row is used.
	res, err := changelog.NewBuilder(config.DefaultLimits()).Write(context.Background(), f, records(t), today)
	require.NoError(t, err)
	assert.True(t, res.Styled)

	for _, cell := range []string{"A5", "M5", "D6"} {
		got, err := f.GetCellStyle(constants.ChangeLogSheet, cell)
		require.NoError(t, err)
		assert.Equal(t, style, got, cell)
	}
}

func TestWriteLogs(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	f := testhelper.NewXLSX(t, testhelper.MasterSheet())
	defer func() { _ = f.Close() }()

	_, err := changelog.NewBuilder(config.DefaultLimits()).Write(ctx, f, records(t), today)
	require.NoError(t, err)
	tl.AssertContains(t, "Change log sheet created")
	tl.AssertContains(t, "Change log written")
}
