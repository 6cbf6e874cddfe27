package station

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var maxPrice = decimal.NewFromInt(math.MaxInt32)

// ParsePrice reads a price cell. Blank cells, "-" and text that is not a
// number are absent (nil). Thousands separators are ignored and fractions
// are rounded half away from zero.
func ParsePrice(s string) *int {
	t := strings.TrimSpace(s)
	if t == "" || t == "-" {
		return nil
	}
	t = strings.ReplaceAll(t, ",", "")

	d, err := decimal.NewFromString(t)
	if err != nil {
		return nil
	}
	d = d.Round(0)
	if d.Abs().GreaterThan(maxPrice) {
		return nil
	}
	v := int(d.IntPart())
	return &v
}

// FormatPrice renders a price for output; absent prices render as "".
func FormatPrice(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
