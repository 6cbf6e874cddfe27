package station_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/fcupdater/internal/utils/ptr"
	"github.com/agentstation/fcupdater/pkg/station"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want *int
	}{
		{"1500", ptr.Int(1500)},
		{" 1,550 ", ptr.Int(1550)},
		{"1549.5", ptr.Int(1550)},
		{"1549.49", ptr.Int(1549)},
		{"-12.5", ptr.Int(-13)},
		{"0", ptr.Int(0)},
		{"", nil},
		{"  ", nil},
		{"-", nil},
		{"휴업", nil},
		{"99999999999999", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := station.ParsePrice(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "", station.FormatPrice(nil))
	assert.Equal(t, "1550", station.FormatPrice(ptr.Int(1550)))
}

func TestRecordKeyDerivesFromAddress(t *testing.T) {
	var r station.Record
	assert.False(t, r.HasKey())

	r.SetAddress("  대전광역시 서구 111 ")
	assert.Equal(t, "대전광역시 서구 111", r.RawAddress)
	assert.Equal(t, "대전서구111", r.Key())
	assert.True(t, r.HasKey())

	r.SetAddress("()")
	assert.False(t, r.HasKey())
}

func TestRecordPricesAndClone(t *testing.T) {
	var r station.Record
	r.SetPrice(station.FieldRegular, ptr.Int(1500))
	r.SetPrice(station.FieldDiesel, ptr.Int(1400))

	assert.Equal(t, 1500, *r.Price(station.FieldRegular))
	assert.Nil(t, r.Price(station.FieldPremium))
	assert.Equal(t, "1400", r.Text(station.FieldDiesel))

	c := r.Clone()
	*c.Regular = 1
	assert.Equal(t, 1500, *r.Regular)
}

func TestRecordSelfAndBlank(t *testing.T) {
	var r station.Record
	assert.True(t, r.Blank())

	r.SetSelf(" 셀프 ")
	assert.True(t, r.SelfService)
	assert.Equal(t, "셀프", r.Text(station.FieldSelf))

	r.Name = "대전주유소"
	assert.False(t, r.Blank())
}
