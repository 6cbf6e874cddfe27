package differ

import (
	"strings"

	"github.com/agentstation/fcupdater/internal/utils/ptr"
	"github.com/agentstation/fcupdater/pkg/normalize"
	"github.com/agentstation/fcupdater/pkg/station"
)

// Differ handles change detection between a master record and its source.
type Differ interface {
	// Compare returns master updated with the differing source fields, and
	// the change record, or nil when nothing differs.
	Compare(master, source station.Record) (station.Record, *ChangeRecord)
}

// differ is the default implementation of Differ.
type differ struct {
	ignoreFields map[station.Field]bool
}

// New creates a Differ with default settings.
func New(opts ...Option) Differ {
	d := &differ{ignoreFields: make(map[station.Field]bool)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// comparison order of the record fields; reasons are ordered separately.
var compared = []station.Field{
	station.FieldName,
	station.FieldBrand,
	station.FieldSelf,
	station.FieldAddress,
	station.FieldPhone,
	station.FieldRegular,
	station.FieldPremium,
	station.FieldDiesel,
}

var reasonOrder = []struct {
	reason Reason
	fields []station.Field
}{
	{ReasonPrice, station.PriceFields},
	{ReasonName, []station.Field{station.FieldName}},
	{ReasonBrand, []station.Field{station.FieldBrand}},
	{ReasonSelf, []station.Field{station.FieldSelf}},
	{ReasonAddress, []station.Field{station.FieldAddress}},
	{ReasonPhone, []station.Field{station.FieldPhone}},
}

// Compare implements Differ.
func (d *differ) Compare(master, source station.Record) (station.Record, *ChangeRecord) {
	var changes []FieldChange
	changed := make(map[station.Field]bool)
	for _, f := range compared {
		if d.ignoreFields[f] || same(f, master, source) {
			continue
		}
		changed[f] = true
		changes = append(changes, FieldChange{
			Field:    f,
			OldValue: master.Text(f),
			NewValue: source.Text(f),
		})
	}
	if len(changes) == 0 {
		return master, nil
	}

	updated := master.Clone()
	for _, fc := range changes {
		assign(&updated, source, fc.Field)
	}

	rec := &ChangeRecord{
		Type:    ChangeTypeUpdate,
		Key:     master.Key(),
		Changes: changes,
		Before:  master.Clone(),
		After:   updated.Clone(),
	}
	for _, r := range reasonOrder {
		for _, f := range r.fields {
			if changed[f] {
				rec.Reasons.Add(r.reason)
			}
		}
	}
	return updated, rec
}

// same reports whether f is equal on both records. Text compares trimmed,
// phones by digits, the self-service flag as a boolean and addresses with
// whitespace collapsed.
func same(f station.Field, a, b station.Record) bool {
	switch f {
	case station.FieldSelf:
		return a.SelfService == b.SelfService
	case station.FieldPhone:
		return normalize.Phone(a.Phone) == normalize.Phone(b.Phone)
	case station.FieldAddress:
		return normalize.Spaces(a.RawAddress) == normalize.Spaces(b.RawAddress)
	case station.FieldRegular, station.FieldPremium, station.FieldDiesel:
		return ptr.Equal(a.Price(f), b.Price(f))
	}
	return strings.TrimSpace(a.Text(f)) == strings.TrimSpace(b.Text(f))
}

func assign(dst *station.Record, src station.Record, f station.Field) {
	switch f {
	case station.FieldName:
		dst.Name = src.Name
	case station.FieldBrand:
		dst.Brand = src.Brand
	case station.FieldSelf:
		dst.SetSelf(src.SelfText)
	case station.FieldAddress:
		dst.SetAddress(src.RawAddress)
	case station.FieldPhone:
		dst.Phone = src.Phone
	default:
		dst.SetPrice(f, src.Price(f))
	}
}

// Added describes a source record appended to the master.
func Added(rec station.Record) ChangeRecord {
	return ChangeRecord{
		Type:    ChangeTypeAdd,
		Key:     rec.Key(),
		Reasons: ReasonSet{ReasonAdded},
		After:   rec.Clone(),
	}
}

// Removed describes a master record dropped for lack of a source.
func Removed(rec station.Record) ChangeRecord {
	return ChangeRecord{
		Type:    ChangeTypeRemove,
		Key:     rec.Key(),
		Reasons: ReasonSet{ReasonRemoved},
		Before:  rec.Clone(),
	}
}
