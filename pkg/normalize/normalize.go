// Package normalize canonicalizes the free-text fields of fuel-station
// records so that master and source rows can be compared.
//
// Address produces the matching key: two stations are the same entity
// if and only if their keys are byte-equal.
package normalize

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Provinces maps official province names to the short forms used as keys.
// Longer names are matched first, see provinceOrder.
var Provinces = map[string]string{
	"충청남도":    "충남",
	"충청북도":    "충북",
	"대전광역시":   "대전",
	"세종특별자치시": "세종",
	"서울특별시":   "서울",
	"부산광역시":   "부산",
	"대구광역시":   "대구",
	"인천광역시":   "인천",
	"광주광역시":   "광주",
	"울산광역시":   "울산",
	"경기도":     "경기",
	"강원도":     "강원",
	"강원특별자치도": "강원",
	"전라북도":    "전북",
	"전북특별자치도": "전북",
	"전라남도":    "전남",
	"경상북도":    "경북",
	"경상남도":    "경남",
	"제주특별자치도": "제주",
}

// provinceOrder lists Provinces keys longest first.
var provinceOrder = func() []string {
	keys := make([]string, 0, len(Provinces))
	for k := range Provinces {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})
	return keys
}()

// dropped are removed from the key. Brackets go but their content stays,
// so "역삼동 (1층)" and "역삼동1층" agree.
const dropped = "()[]{},."

// Address returns the matching key for a raw address. It never fails;
// blank or punctuation-only input yields "".
func Address(raw string) string {
	s := Spaces(norm.NFC.String(raw))
	if s == "" {
		return ""
	}

	tokens := strings.Split(s, " ")
	tokens[0] = Province(tokens[0])

	var b strings.Builder
	b.Grow(len(s))
	for _, tok := range tokens {
		for _, r := range tok {
			if strings.ContainsRune(dropped, r) {
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Spaces collapses every run of Unicode whitespace to one ASCII space and trims the ends.
func Spaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Province rewrites a leading official province name of token to its short form.
// Address applies it to the first token only, road names such as 경기도로 stay intact.
func Province(token string) string {
	for _, full := range provinceOrder {
		if strings.HasPrefix(token, full) {
			return Provinces[full] + token[len(full):]
		}
	}
	return token
}

// Header canonicalizes a header cell for vocabulary matching by dropping all whitespace.
func Header(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, norm.NFC.String(s))
}

// Phone keeps the digits of a phone number. A value without digits is
// returned trimmed so that free text still compares verbatim.
func Phone(s string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if digits == "" {
		return strings.TrimSpace(s)
	}
	return digits
}

// selfMarkers are the cell values that mark a self-service station.
var selfMarkers = map[string]bool{
	"셀프":    true,
	"셀프주유소": true,
	"셀프주유":  true,
	"예":     true,
	"y":     true,
	"yes":   true,
	"o":     true,
	"○":     true,
	"●":     true,
	"v":     true,
	"self":  true,
	"true":  true,
	"1":     true,
}

// SelfService parses a self-service flag cell.
func SelfService(s string) bool {
	return selfMarkers[strings.ToLower(Header(s))]
}
