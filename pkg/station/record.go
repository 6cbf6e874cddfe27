// Package station defines the fuel-station record shared by the reader,
// the reconciler and the change log.
package station

import (
	"strings"

	"github.com/agentstation/fcupdater/internal/utils/ptr"
	"github.com/agentstation/fcupdater/pkg/normalize"
)

// Field identifies a record attribute and the header column that carries it.
type Field string

// Record fields.
const (
	FieldRegion  Field = "region"
	FieldName    Field = "name"
	FieldBrand   Field = "brand"
	FieldSelf    Field = "self"
	FieldAddress Field = "address"
	FieldPhone   Field = "phone"
	FieldRegular Field = "regular"
	FieldPremium Field = "premium"
	FieldDiesel  Field = "diesel"
)

// PriceFields lists the price fields in change-log column order.
var PriceFields = []Field{FieldRegular, FieldPremium, FieldDiesel}

// Origin locates the row a record was read from.
type Origin struct {
	File  string `json:"file" yaml:"file"`
	Sheet string `json:"sheet" yaml:"sheet"`
	Row   int    `json:"row" yaml:"row"` // 1-based sheet row
}

// Record is one fuel station.
type Record struct {
	Region      string `json:"region" yaml:"region"`
	Name        string `json:"name" yaml:"name"`
	Brand       string `json:"brand" yaml:"brand"`
	SelfService bool   `json:"self_service" yaml:"self_service"`
	// SelfText is the flag cell as written, kept for output.
	SelfText   string `json:"self_text,omitempty" yaml:"self_text,omitempty"`
	RawAddress string `json:"address" yaml:"address"`
	Phone      string `json:"phone" yaml:"phone"`
	Regular    *int   `json:"regular,omitempty" yaml:"regular,omitempty"`
	Premium    *int   `json:"premium,omitempty" yaml:"premium,omitempty"`
	Diesel     *int   `json:"diesel,omitempty" yaml:"diesel,omitempty"`
	Origin     Origin `json:"origin" yaml:"origin"`

	key string
}

// SetAddress stores the raw address and derives the matching key from it.
func (r *Record) SetAddress(raw string) {
	r.RawAddress = strings.TrimSpace(raw)
	r.key = normalize.Address(r.RawAddress)
}

// Key returns the normalized address.
func (r Record) Key() string {
	return r.key
}

// HasKey reports whether the record can be matched at all.
func (r Record) HasKey() bool {
	return r.key != ""
}

// SetSelf stores the self-service cell text and its parsed flag.
func (r *Record) SetSelf(text string) {
	r.SelfText = strings.TrimSpace(text)
	r.SelfService = normalize.SelfService(r.SelfText)
}

// Price returns the price stored under a price field.
func (r Record) Price(f Field) *int {
	switch f {
	case FieldRegular:
		return r.Regular
	case FieldPremium:
		return r.Premium
	case FieldDiesel:
		return r.Diesel
	}
	return nil
}

// SetPrice stores a copy of v under a price field.
func (r *Record) SetPrice(f Field, v *int) {
	switch f {
	case FieldRegular:
		r.Regular = ptr.Clone(v)
	case FieldPremium:
		r.Premium = ptr.Clone(v)
	case FieldDiesel:
		r.Diesel = ptr.Clone(v)
	}
}

// Text returns the output text of a field.
func (r Record) Text(f Field) string {
	switch f {
	case FieldRegion:
		return r.Region
	case FieldName:
		return r.Name
	case FieldBrand:
		return r.Brand
	case FieldSelf:
		return r.SelfText
	case FieldAddress:
		return r.RawAddress
	case FieldPhone:
		return r.Phone
	}
	return FormatPrice(r.Price(f))
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	c := r
	c.Regular = ptr.Clone(r.Regular)
	c.Premium = ptr.Clone(r.Premium)
	c.Diesel = ptr.Clone(r.Diesel)
	return c
}

// Blank reports whether the row carries no region, name or address. Such
// rows are spacers, not stations.
func (r Record) Blank() bool {
	return r.Region == "" && r.Name == "" && r.RawAddress == ""
}
