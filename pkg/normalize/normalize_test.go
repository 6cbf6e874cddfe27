package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/unicode/norm"

	"github.com/agentstation/fcupdater/pkg/normalize"
)

func TestAddressEquivalenceClasses(t *testing.T) {
	classes := []struct {
		name     string
		variants []string
	}{
		{
			name: "whitespace and parentheses",
			variants: []string{
				"서울 강남구  역삼동 (1층)",
				"서울강남구역삼동1층",
				"  서울 강남구\t역삼동 1층 ",
				"서울 강남구 역삼동(1층)",
			},
		},
		{
			name: "province spelled out",
			variants: []string{
				"충청남도 천안시 동남구 123",
				"충남 천안시 동남구 123",
				"충청남도천안시 동남구 123",
			},
		},
		{
			name: "metropolitan city",
			variants: []string{
				"대전광역시 서구 둔산로 111",
				"대전 서구 둔산로 111",
				"대전 서구 둔산로 111.",
			},
		},
		{
			name: "special self-governing city",
			variants: []string{
				"세종특별자치시 조치원읍 [충현로] 12",
				"세종 조치원읍 충현로 12",
			},
		},
		{
			name: "decomposed hangul",
			variants: []string{
				norm.NFD.String("충북 청주시 상당구 1"),
				"충청북도 청주시 상당구 1",
			},
		},
	}

	for _, tc := range classes {
		t.Run(tc.name, func(t *testing.T) {
			want := normalize.Address(tc.variants[0])
			assert.NotEmpty(t, want)
			for _, v := range tc.variants[1:] {
				assert.Equal(t, want, normalize.Address(v), "variant %q", v)
			}
		})
	}
}

func TestAddressDistinguishes(t *testing.T) {
	assert.NotEqual(t, normalize.Address("대전 서구 111"), normalize.Address("대전 서구 112"))
	assert.NotEqual(t, normalize.Address("충남 천안시 1"), normalize.Address("충북 천안시 1"))
}

func TestAddressProvinceOnlyAtTokenStart(t *testing.T) {
	// only the leading token is treated as a province
	assert.Equal(t, "충남천안시경기도로5", normalize.Address("충남 천안시 경기도로 5"))
	assert.Equal(t, "경기수원시1", normalize.Address("경기도 수원시 1"))
}

func TestAddressIsTotal(t *testing.T) {
	inputs := []string{"", "   ", "()", "[ ]", "\x00", "\xff\xfe", "((((", "ㄱ"}
	for _, in := range inputs {
		assert.NotPanics(t, func() { normalize.Address(in) })
	}
	assert.Equal(t, "", normalize.Address(""))
	assert.Equal(t, "", normalize.Address("  ( ) "))
}

func TestAddressDeterministic(t *testing.T) {
	in := "충청남도 아산시 (배방읍) 10"
	first := normalize.Address(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, normalize.Address(in))
	}
}

func TestSpaces(t *testing.T) {
	assert.Equal(t, "a b c", normalize.Spaces("  a \t b\n\nc  "))
	assert.Equal(t, "", normalize.Spaces(" \t "))
}

func TestHeader(t *testing.T) {
	assert.Equal(t, "휘발유(이전)", normalize.Header(" 휘발유 (이전) "))
	assert.Equal(t, "전화번호", normalize.Header("전화\n번호"))
}

func TestPhone(t *testing.T) {
	assert.Equal(t, "0415551234", normalize.Phone("041-555-1234"))
	assert.Equal(t, normalize.Phone("(041) 555 1234"), normalize.Phone("041-555-1234"))
	assert.Equal(t, "없음", normalize.Phone(" 없음 "))
}

func TestSelfService(t *testing.T) {
	for _, v := range []string{"셀프", " 셀프 ", "Y", "o", "○", "Self"} {
		assert.True(t, normalize.SelfService(v), v)
	}
	for _, v := range []string{"", "N", "일반", "x", "-"} {
		assert.False(t, normalize.SelfService(v), v)
	}
}
