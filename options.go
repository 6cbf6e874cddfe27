package fcupdater

import (
	"time"

	"github.com/agentstation/fcupdater/internal/config"
	"github.com/agentstation/fcupdater/internal/proc"
	"github.com/agentstation/fcupdater/pkg/constants"
	"github.com/agentstation/fcupdater/pkg/errors"
)

// Option is a function that configures an Updater
type Option func(*options) error

// options holds the settings of one run
type options struct {
	master        string
	sourcesDir    string
	sourcesPrefix string
	output        string

	inPlace       bool
	noChangeLog   bool
	dryRun        bool
	fastSave      bool
	strictDecode  bool
	durable       bool
	archiveCheck  bool
	decoderHelper string
	historyDB     string

	limits config.Limits
	runner proc.Runner
	today  string
}

func defaultOptions() *options {
	return &options{
		master:        constants.DefaultMasterPath,
		sourcesDir:    constants.DefaultSourcesDir,
		sourcesPrefix: constants.DefaultSourcesPrefix,
		limits:        config.DefaultLimits(),
		runner:        proc.NewRunner(),
	}
}

func (o *options) apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return err
		}
	}
	return o.validate()
}

// validate rejects mutually exclusive settings before anything is read.
func (o *options) validate() error {
	if o.inPlace && o.output != "" {
		return errors.NewArgumentConflictError("--in-place", "--output")
	}
	if o.dryRun && o.fastSave {
		return errors.NewArgumentConflictError("--dry-run", "--fast-save")
	}
	if o.master == "" {
		return errors.NewValidationError("master", o.master, "master path is required")
	}
	return nil
}

// WithMaster sets the master workbook.
func WithMaster(path string) Option {
	return func(o *options) error {
		o.master = path
		return nil
	}
}

// WithSources sets the directory searched for source workbooks and the file
// name prefix that selects them. Empty values keep the defaults.
func WithSources(dir, prefix string) Option {
	return func(o *options) error {
		if dir != "" {
			o.sourcesDir = dir
		}
		if prefix != "" {
			o.sourcesPrefix = prefix
		}
		return nil
	}
}

// WithOutput sets an explicit output path. An existing file is not
// overwritten; a numeric suffix is added instead.
func WithOutput(path string) Option {
	return func(o *options) error {
		o.output = path
		return nil
	}
}

// WithInPlace overwrites the master after backing it up.
func WithInPlace(enabled bool) Option {
	return func(o *options) error {
		o.inPlace = enabled
		return nil
	}
}

// WithChangeLog controls whether the change-log sheet is written.
func WithChangeLog(enabled bool) Option {
	return func(o *options) error {
		o.noChangeLog = !enabled
		return nil
	}
}

// WithDryRun stops after reconciliation and writes nothing.
func WithDryRun(enabled bool) Option {
	return func(o *options) error {
		o.dryRun = enabled
		return nil
	}
}

// WithFastSave skips post-write verification.
func WithFastSave(enabled bool) Option {
	return func(o *options) error {
		o.fastSave = enabled
		return nil
	}
}

// WithStrictDecoding fails on legacy text that cannot be decoded instead of
// substituting a replacement character.
func WithStrictDecoding(enabled bool) Option {
	return func(o *options) error {
		o.strictDecode = enabled
		return nil
	}
}

// WithDurability makes fsync failures fatal.
func WithDurability(enabled bool) Option {
	return func(o *options) error {
		o.durable = enabled
		return nil
	}
}

// WithArchiveCheck runs the external archive test after the built-in verification.
func WithArchiveCheck(enabled bool) Option {
	return func(o *options) error {
		o.archiveCheck = enabled
		return nil
	}
}

// WithDecoderHelper delegates legacy text decoding to an external helper
// such as iconv. An empty name uses the built-in tables only.
func WithDecoderHelper(name string) Option {
	return func(o *options) error {
		o.decoderHelper = name
		return nil
	}
}

// WithHistory appends every written run to the sqlite database at path.
func WithHistory(path string) Option {
	return func(o *options) error {
		o.historyDB = path
		return nil
	}
}

// WithLimits sets the scan limits and timeouts. Values are normalized.
func WithLimits(limits config.Limits) Option {
	return func(o *options) error {
		o.limits = limits.Normalize()
		return nil
	}
}

// WithRunner sets the process collaborator used for external helpers.
func WithRunner(r proc.Runner) Option {
	return func(o *options) error {
		if r == nil {
			return errors.NewValidationError("runner", nil, "runner cannot be nil")
		}
		o.runner = r
		return nil
	}
}

// WithToday fixes the run date (YYYY-MM-DD) instead of asking the date helper.
func WithToday(date string) Option {
	return func(o *options) error {
		if _, err := time.Parse(constants.DateLayout, date); err != nil {
			return errors.NewValidationError("today", date, "expected YYYY-MM-DD")
		}
		o.today = date
		return nil
	}
}
