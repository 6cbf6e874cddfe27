// Package differ compares a master record with its source record and
// describes the outcome as a ChangeRecord.
package differ

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agentstation/fcupdater/pkg/station"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates a station that exists only in the sources.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates a matched station whose fields differ.
	ChangeTypeUpdate ChangeType = "update"
	// ChangeTypeRemove indicates a master station missing from every source.
	ChangeTypeRemove ChangeType = "remove"
)

// Reason is a change-log reason tag.
type Reason string

// Reason tags, in detection order.
const (
	ReasonPrice   Reason = "가격변동"
	ReasonName    Reason = "상호변경"
	ReasonBrand   Reason = "상표변경"
	ReasonSelf    Reason = "셀프여부변경"
	ReasonAddress Reason = "주소변경"
	ReasonPhone   Reason = "전화번호변경"
	ReasonAdded   Reason = "신규"
	ReasonRemoved Reason = "폐업"
)

// ReasonSeparator joins the tags of one ChangeRecord.
const ReasonSeparator = ","

// ReasonSet is an ordered set of reason tags.
type ReasonSet []Reason

// Add appends r unless it is already present.
func (s *ReasonSet) Add(r Reason) {
	if !slices.Contains(*s, r) {
		*s = append(*s, r)
	}
}

// Has reports whether r is in the set.
func (s ReasonSet) Has(r Reason) bool {
	return slices.Contains(s, r)
}

// String renders the set as written to the change log.
func (s ReasonSet) String() string {
	parts := make([]string, len(s))
	for i, r := range s {
		parts[i] = string(r)
	}
	return strings.Join(parts, ReasonSeparator)
}

// FieldChange represents a change to a single field.
type FieldChange struct {
	Field    station.Field `json:"field" yaml:"field"`
	OldValue string        `json:"old" yaml:"old"`
	NewValue string        `json:"new" yaml:"new"`
}

// ChangeRecord is one reconciliation outcome.
type ChangeRecord struct {
	Type    ChangeType    `json:"type" yaml:"type"`
	Key     string        `json:"key" yaml:"key"`
	Reasons ReasonSet     `json:"reasons" yaml:"reasons"`
	Changes []FieldChange `json:"changes,omitempty" yaml:"changes,omitempty"`

	// Before is the master record; zero for additions.
	Before station.Record `json:"-" yaml:"-"`
	// After is the record as written; zero for removals.
	After station.Record `json:"-" yaml:"-"`
}

// Changed reports whether field f differs between Before and After.
func (c ChangeRecord) Changed(f station.Field) bool {
	switch c.Type {
	case ChangeTypeAdd, ChangeTypeRemove:
		return true
	}
	for _, fc := range c.Changes {
		if fc.Field == f {
			return true
		}
	}
	return false
}

// OldPrice returns the previous price of f, or nil when f did not change.
func (c ChangeRecord) OldPrice(f station.Field) *int {
	if c.Type == ChangeTypeAdd || !c.Changed(f) {
		return nil
	}
	return c.Before.Price(f)
}

// NewPrice returns the new price of f, or nil when f did not change.
func (c ChangeRecord) NewPrice(f station.Field) *int {
	if c.Type == ChangeTypeRemove || !c.Changed(f) {
		return nil
	}
	return c.After.Price(f)
}

// Region returns the region shown in the change log. The master keeps its
// own region, so it wins when present.
func (c ChangeRecord) Region() string {
	if c.Type != ChangeTypeAdd {
		return c.Before.Region
	}
	return c.After.Region
}

// Name returns the station name shown in the change log.
func (c ChangeRecord) Name() string {
	if c.Type == ChangeTypeRemove {
		return c.Before.Name
	}
	return c.After.Name
}

// Address returns the raw address shown in the change log.
func (c ChangeRecord) Address() string {
	if c.Type == ChangeTypeRemove {
		return c.Before.RawAddress
	}
	return c.After.RawAddress
}

// Changeset groups the change records of one reconciliation.
type Changeset struct {
	Updated []ChangeRecord `json:"updated" yaml:"updated"`
	Added   []ChangeRecord `json:"added" yaml:"added"`
	Removed []ChangeRecord `json:"removed" yaml:"removed"`
}

// Records returns every record in change-log order: updates, additions,
// then removals.
func (c *Changeset) Records() []ChangeRecord {
	out := make([]ChangeRecord, 0, len(c.Updated)+len(c.Added)+len(c.Removed))
	out = append(out, c.Updated...)
	out = append(out, c.Added...)
	return append(out, c.Removed...)
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return len(c.Updated) > 0 || len(c.Added) > 0 || len(c.Removed) > 0
}

// String returns a human-readable summary of the changeset.
func (c *Changeset) String() string {
	if !c.HasChanges() {
		return "No changes detected"
	}
	return fmt.Sprintf("%d updated, %d added, %d removed", len(c.Updated), len(c.Added), len(c.Removed))
}
