package config

import (
	"time"

	"github.com/agentstation/fcupdater/pkg/constants"
)

// Viper keys of the core settings.
const (
	KeySourceHeaderScanRows      = "source_header_scan_rows"
	KeyMasterHeaderScanRows      = "master_header_scan_rows"
	KeyChangeLogHeaderScanRows   = "changelog_header_scan_rows"
	KeyChangeLogHeaderScanCols   = "changelog_header_scan_cols"
	KeyChangeLogStyleTemplateRow = "changelog_style_template_row"
	KeyCP949Strict               = "cp949_strict"
	KeyDurabilityStrict          = "durability_strict"
	KeyCommandTimeoutSecs        = "command_timeout_secs"
	KeyDecoderTimeoutSecs        = "decoder_timeout_secs"
	KeyDecoderHelper             = "decoder_helper"
	KeyArchiveCheck              = "archive_check"
	KeyHistoryDB                 = "history_db"
	KeyOutputFormat              = "output_format"
)

// Limits are the numeric settings of a run. Call Normalize before use.
type Limits struct {
	SourceHeaderScanRows      int `json:"source_header_scan_rows" yaml:"source_header_scan_rows"`
	MasterHeaderScanRows      int `json:"master_header_scan_rows" yaml:"master_header_scan_rows"`
	ChangeLogHeaderScanRows   int `json:"changelog_header_scan_rows" yaml:"changelog_header_scan_rows"`
	ChangeLogHeaderScanCols   int `json:"changelog_header_scan_cols" yaml:"changelog_header_scan_cols"`
	ChangeLogStyleTemplateRow int `json:"changelog_style_template_row" yaml:"changelog_style_template_row"`

	// CommandTimeout and DecoderTimeout of zero mean unlimited.
	CommandTimeout time.Duration `json:"command_timeout" yaml:"command_timeout"`
	DecoderTimeout time.Duration `json:"decoder_timeout" yaml:"decoder_timeout"`
}

// DefaultLimits returns the documented defaults.
func DefaultLimits() Limits {
	return Limits{}.Normalize()
}

// Normalize replaces unset values with defaults and clamps values above their ceiling.
func (l Limits) Normalize() Limits {
	l.SourceHeaderScanRows = bounded(l.SourceHeaderScanRows, constants.DefaultSourceHeaderScanRows, constants.MaxSourceHeaderScanRows)
	l.MasterHeaderScanRows = bounded(l.MasterHeaderScanRows, constants.DefaultMasterHeaderScanRows, constants.MaxMasterHeaderScanRows)
	l.ChangeLogHeaderScanRows = bounded(l.ChangeLogHeaderScanRows, constants.DefaultChangeLogHeaderScanRows, constants.MaxChangeLogHeaderScanRows)
	l.ChangeLogHeaderScanCols = bounded(l.ChangeLogHeaderScanCols, constants.DefaultChangeLogHeaderScanCols, constants.MaxChangeLogHeaderScanCols)
	if l.ChangeLogStyleTemplateRow <= 0 {
		l.ChangeLogStyleTemplateRow = constants.DefaultChangeLogStyleTemplateRow
	}
	if l.CommandTimeout < 0 {
		l.CommandTimeout = 0
	}
	if l.DecoderTimeout < 0 {
		l.DecoderTimeout = 0
	}
	return l
}

// LimitsFromViper reads the limits from Viper and the FCUPDATER_ environment.
func LimitsFromViper() Limits {
	return Limits{
		SourceHeaderScanRows:      GetInt(KeySourceHeaderScanRows),
		MasterHeaderScanRows:      GetInt(KeyMasterHeaderScanRows),
		ChangeLogHeaderScanRows:   GetInt(KeyChangeLogHeaderScanRows),
		ChangeLogHeaderScanCols:   GetInt(KeyChangeLogHeaderScanCols),
		ChangeLogStyleTemplateRow: GetInt(KeyChangeLogStyleTemplateRow),
		CommandTimeout:            seconds(GetInt(KeyCommandTimeoutSecs)),
		DecoderTimeout:            seconds(GetInt(KeyDecoderTimeoutSecs)),
	}.Normalize()
}

func bounded(v, def, max int) int {
	switch {
	case v <= 0:
		return def
	case v > max:
		return max
	default:
		return v
	}
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
