// Package fcupdater reconciles a fuel-station master workbook against the
// regional source workbooks it is maintained from.
//
// A run reads the master and every source, matches stations by their
// normalized address, updates changed fields in place, appends new stations,
// deletes closed ones and records every change in the change-log sheet. The
// result is written to a new workbook next to the master unless the run is
// in place or a dry run.
package fcupdater

import (
	"context"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/uuid"

	"github.com/agentstation/fcupdater/internal/proc"
	"github.com/agentstation/fcupdater/pkg/changelog"
	"github.com/agentstation/fcupdater/pkg/constants"
	"github.com/agentstation/fcupdater/pkg/errors"
	"github.com/agentstation/fcupdater/pkg/history"
	"github.com/agentstation/fcupdater/pkg/logging"
	"github.com/agentstation/fcupdater/pkg/reconciler"
	"github.com/agentstation/fcupdater/pkg/save"
	"github.com/agentstation/fcupdater/pkg/sources"
	"github.com/agentstation/fcupdater/pkg/textdecode"
	"github.com/agentstation/fcupdater/pkg/workbook"
)

// Updater runs reconciliations and reports station changes to hooks.
type Updater interface {
	// Run executes one reconciliation and returns its summary
	Run(ctx context.Context) (*Summary, error)

	// OnStationAdded registers a callback for added stations
	OnStationAdded(StationAddedHook)

	// OnStationUpdated registers a callback for updated stations
	OnStationUpdated(StationUpdatedHook)

	// OnStationRemoved registers a callback for removed stations
	OnStationRemoved(StationRemovedHook)
}

type updater struct {
	opts *options
	*hooks
}

// New creates an Updater. Mutually exclusive options are rejected with an
// ArgumentConflictError before anything is touched.
func New(opts ...Option) (Updater, error) {
	o := defaultOptions()
	if err := o.apply(opts...); err != nil {
		return nil, err
	}
	return &updater{opts: o, hooks: newHooks()}, nil
}

// Run reads the master and the sources, reconciles them and, unless this is
// a dry run, writes the updated workbook.
func (u *updater) Run(ctx context.Context) (*Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	o := u.opts
	start := time.Now()

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.FromContext(ctx)

	today := o.today
	if today == "" {
		today = proc.Today(ctx, o.runner, o.limits.CommandTimeout, logger)
	}

	decOpts := []textdecode.Option{
		textdecode.WithStrict(o.strictDecode),
		textdecode.WithLogger(logger),
	}
	if o.decoderHelper != "" {
		decOpts = append(decOpts, textdecode.WithHelper(o.decoderHelper, o.runner, o.limits.DecoderTimeout))
	}
	reader := workbook.NewReader(o.limits, textdecode.New(decOpts...))

	// Step 1: master
	master, err := reader.Read(logging.WithFile(ctx, o.master), o.master, workbook.RoleMaster)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := master.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("Closing master failed")
		}
	}()
	logger.Info().
		Str("master", o.master).
		Str("format", string(master.Format)).
		Str("sheet", master.Sheet).
		Int("rows", len(master.Rows)).
		Msg("Master read")

	output, overwrite := u.outputPath(today)

	// Step 2: sources
	paths, err := sources.Discover(o.sourcesDir, o.sourcesPrefix, o.master, output)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("count", len(paths)).Strs("files", paths).Msg("Sources discovered")

	set, err := sources.Load(ctx, reader, paths)
	if err != nil {
		return nil, err
	}
	ix := sources.BuildIndex(set, constants.MaxConflictSamples)
	logger.Info().
		Int("records", set.Rows()).
		Int("keys", ix.Len()).
		Int("duplicates", ix.Conflicts.Duplicates).
		Msg("Source index built")

	// Step 3: reconcile
	rec, err := reconciler.New()
	if err != nil {
		return nil, err
	}
	result, err := rec.Reconcile(ctx, master, ix)
	if err != nil {
		return nil, err
	}

	cs := result.Changeset
	summary := &Summary{
		RunID:        runID,
		Today:        today,
		Master:       o.master,
		Sources:      paths,
		MasterRows:   result.Metadata.Stats.MasterRows,
		SourceRows:   set.Rows(),
		Changed:      len(cs.Updated),
		Added:        len(cs.Added),
		Removed:      len(cs.Removed),
		Unchanged:    result.Metadata.Stats.Unchanged,
		Conflicts:    result.Conflicts,
		AddedNames:   names(cs.Added),
		RemovedNames: names(cs.Removed),
		DryRun:       o.dryRun,
	}

	if o.dryRun {
		target, err := save.Resolve(output, overwrite, true)
		if err != nil {
			return nil, err
		}
		summary.Output = target.Path
		summary.Duration = time.Since(start)
		logger.Info().Bool("dry_run", true).Str("output", target.Path).Msg("Dry run completed, nothing written")
		return summary, nil
	}

	// Step 4: build the output package
	if err := workbook.Convert(master.Book); err != nil {
		return nil, errors.NewFormatError(errors.FormatCorrupt, o.master, "converting legacy workbook", err)
	}
	f := master.Book.File
	if err := workbook.Apply(f, result.Table, result.Removed); err != nil {
		return nil, errors.NewFormatError(errors.FormatCorrupt, o.master, "updating master sheet", err)
	}
	if !o.noChangeLog {
		logRes, err := changelog.NewBuilder(o.limits).Write(ctx, f, cs.Records(), today)
		if err != nil {
			return nil, err
		}
		summary.ChangeLogEntries = logRes.Entries
	}

	// Step 5: backup, then write
	if o.inPlace {
		backup, err := save.Backup(ctx, o.master, today, o.durable)
		if err != nil {
			return nil, err
		}
		summary.Backup = backup
	}

	target, err := save.Resolve(output, overwrite, false)
	if err != nil {
		return nil, err
	}
	saveOpts := []save.Option{
		save.WithFast(o.fastSave),
		save.WithDurability(o.durable),
	}
	if o.archiveCheck {
		saveOpts = append(saveOpts, save.WithArchiveCheck(o.runner, o.limits.CommandTimeout))
	}
	saved, err := save.New(saveOpts...).Save(ctx, f, target)
	if err != nil {
		return nil, err
	}
	summary.Output = saved.Path
	summary.Verified = saved.Verified
	summary.Duration = time.Since(start)

	u.record(ctx, summary, start)
	u.hooks.trigger(cs)

	logger.Info().
		Int("changed", summary.Changed).
		Int("added", summary.Added).
		Int("removed", summary.Removed).
		Str("output", summary.Output).
		Msg("Update completed")
	return summary, nil
}

// outputPath returns the path to write and whether an existing file there
// may be replaced. Only an in-place run over an xlsx master overwrites.
func (u *updater) outputPath(today string) (string, bool) {
	o := u.opts
	switch {
	case o.inPlace:
		p := save.InPlacePath(o.master)
		return p, p == o.master
	case o.output != "":
		return o.output, false
	default:
		return save.AutoPath(o.master, today), false
	}
}

// record appends the run to the history database. The workbook is already
// written, so a failure is only logged.
func (u *updater) record(ctx context.Context, s *Summary, start time.Time) {
	if u.opts.historyDB == "" {
		return
	}
	logger := logging.FromContext(ctx)
	store, err := history.Open(ctx, u.opts.historyDB)
	if err != nil {
		logger.Warn().Err(err).Msg("Run history unavailable")
		return
	}
	defer func() { _ = store.Close() }()

	_, err = store.Record(ctx, history.Run{
		ID:         s.RunID,
		StartedAt:  utc.New(start),
		FinishedAt: utc.New(start.Add(s.Duration)),
		Master:     s.Master,
		Output:     s.Output,
		Added:      s.Added,
		Removed:    s.Removed,
		Changed:    s.Changed,
		Conflicts:  s.Conflicts.Duplicates,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Recording run history failed")
	}
}
