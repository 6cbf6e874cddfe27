package differ

import "github.com/agentstation/fcupdater/pkg/station"

// Option is a functional option for configuring a Differ.
type Option func(*differ)

// WithIgnoredFields excludes fields from comparison. The master keeps its
// value for an ignored field.
func WithIgnoredFields(fields ...station.Field) Option {
	return func(d *differ) {
		for _, f := range fields {
			d.ignoreFields[f] = true
		}
	}
}
