package reconciler

import (
	"github.com/agentstation/fcupdater/pkg/differ"
	"github.com/agentstation/fcupdater/pkg/errors"
)

// options configures a reconciler.
type options struct {
	// differ overrides the per-master default.
	differ differ.Differ
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return (&options{}).apply(opts...)
}

// WithDiffer sets the record differ. By default every field the master
// sheet has a column for is compared.
func WithDiffer(d differ.Differ) Option {
	return func(o *options) error {
		if d == nil {
			return &errors.ValidationError{
				Field:   "differ",
				Message: "cannot be nil",
			}
		}
		o.differ = d
		return nil
	}
}
