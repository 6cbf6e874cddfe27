// Package constants provides shared constants used throughout the fcupdater codebase.
// This includes sheet names, scan limits, file permissions, and other values that
// must stay consistent between the reader, the reconciler and the writer.
package constants

import "time"

// Workbook layout constants
const (
	// MasterSheet is the preferred worksheet name of the master workbook
	MasterSheet = "유류비"

	// ChangeLogSheet is the worksheet that receives the audit trail
	ChangeLogSheet = "변경내역"

	// ChangeLogDateCell holds the "last updated" stamp of the change log
	ChangeLogDateCell = "A2"

	// ChangeLogDatePrefix precedes the ISO date in ChangeLogDateCell
	ChangeLogDatePrefix = "현행화 일자: "

	// ChangeLogCreatedHeaderRow is the header row used when the log sheet has to be created
	ChangeLogCreatedHeaderRow = 3
)

// Header scan limits. Defaults apply to unset or non-positive values and
// maxima clamp larger values.
const (
	DefaultSourceHeaderScanRows = 200
	MaxSourceHeaderScanRows     = 10000

	DefaultMasterHeaderScanRows = 200
	MaxMasterHeaderScanRows     = 20000

	DefaultChangeLogHeaderScanRows = 30
	MaxChangeLogHeaderScanRows     = 1000

	DefaultChangeLogHeaderScanCols = 60
	MaxChangeLogHeaderScanCols     = 500

	// DefaultChangeLogStyleTemplateRow is the 1-based row whose style new log rows copy
	DefaultChangeLogStyleTemplateRow = 243
)

// Legacy workbook bounds
const (
	// MaxLegacyRows caps the row index accepted from a legacy worksheet
	MaxLegacyRows = 200000

	// MaxLegacyCols caps the column index accepted from a legacy worksheet
	MaxLegacyCols = 1024
)

// Source discovery and reconciliation defaults
const (
	// DefaultMasterPath is used when no master is given
	DefaultMasterPath = "fuel_cost_chungcheong.xlsx"

	// DefaultSourcesDir is searched for source workbooks
	DefaultSourcesDir = "."

	// DefaultSourcesPrefix selects source workbooks by file name
	DefaultSourcesPrefix = "지역_위치별(주유소)"

	// MaxConflictSamples bounds the example list of the conflict summary
	MaxConflictSamples = 10

	// SummaryListLimit bounds the added/removed name lists of the run summary
	SummaryListLimit = 20
)

// Output path constants
const (
	// MaxPathAttempts bounds the numeric suffix search for a free output path
	MaxPathAttempts = 100000

	// UpdatedInfix separates the master stem and the date of the auto output name
	UpdatedInfix = "_updated_"

	// BackupInfix separates the master stem and the date of the backup name
	BackupInfix = "_backup_"

	// OutputExtension is the extension of every written workbook
	OutputExtension = ".xlsx"

	// DateLayout is the ISO date layout used in file names and the change log
	DateLayout = "2006-01-02"
)

// Timeout constants
const (
	// ShutdownTimeout bounds cleanup after the command returns
	ShutdownTimeout = 5 * time.Second

	// DateHelperTimeout bounds the date helper when no command timeout is configured
	DateHelperTimeout = 2 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// DecoderCacheSize bounds the number of helper-decoded strings kept in memory
const DecoderCacheSize = 4096
