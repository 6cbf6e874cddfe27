// Package changelog writes reconciliation outcomes into the change-log
// sheet of the output workbook.
//
// The sheet keeps its own layout: its header row is discovered the same way
// station headers are, existing entries are cleared and new entries copy the
// style of a template row. Styling is best effort; the data is not.
package changelog

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/agentstation/fcupdater/internal/config"
	"github.com/agentstation/fcupdater/pkg/constants"
	"github.com/agentstation/fcupdater/pkg/differ"
	"github.com/agentstation/fcupdater/pkg/errors"
	"github.com/agentstation/fcupdater/pkg/logging"
	"github.com/agentstation/fcupdater/pkg/station"
	"github.com/agentstation/fcupdater/pkg/workbook"
)

// anchor locates the header row; the price columns are checked afterwards
// so that a partial header is reported by name.
var anchor = workbook.ChangeLogVocabulary.Relaxed(
	workbook.LogRegion, workbook.LogName, workbook.LogAddress, workbook.LogReason,
)

// Builder writes change records into a workbook.
type Builder struct {
	limits config.Limits
}

// NewBuilder creates a Builder. Limits are normalized.
func NewBuilder(limits config.Limits) *Builder {
	return &Builder{limits: limits.Normalize()}
}

// Result describes a written change log.
type Result struct {
	Sheet     string
	HeaderRow int // 1-based
	Entries   int
	Created   bool
	Styled    bool
}

// Write replaces the entries of the change-log sheet of f with records,
// stamped with today. A missing sheet is created.
func (b *Builder) Write(ctx context.Context, f *excelize.File, records []differ.ChangeRecord, today string) (*Result, error) {
	ctx = logging.WithSheet(logging.WithOperation(ctx, "changelog"), constants.ChangeLogSheet)
	logger := logging.FromContext(ctx)
	sheet := constants.ChangeLogSheet
	res := &Result{Sheet: sheet}

	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		if err := create(f, sheet); err != nil {
			return nil, err
		}
		res.Created = true
		logger.Info().Msg("Change log sheet created")
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheet, err)
	}
	h, err := b.header(rows)
	if err != nil {
		return nil, err
	}
	res.HeaderRow = h.Line()

	if h.Line() > 2 {
		if err := f.SetCellValue(sheet, constants.ChangeLogDateCell, constants.ChangeLogDatePrefix+today); err != nil {
			return nil, err
		}
	} else {
		logger.Warn().Int("header_row", h.Line()).Msg("Header occupies the date cell, date not written")
	}

	width := h.Width()
	first := h.Line() + 1
	template := b.templateRow(f, sheet, first, width)

	if err := clearEntries(f, sheet, rows, h, width); err != nil {
		return nil, err
	}

	var styles []int
	if len(records) > 0 {
		var styleErr error
		if styles, styleErr = rowStyles(f, sheet, template, width); styleErr != nil {
			logger.Warn().Err(styleErr).Int("template_row", template).Msg("Row style not copied")
		}
		res.Styled = styleErr == nil
	}

	for i, rec := range records {
		line := first + i
		if res.Styled && line > template {
			if err := applyStyles(f, sheet, line, styles); err != nil {
				logger.Warn().Err(err).Int("row", line).Msg("Row style not copied")
				res.Styled = false
			}
		}
		if err := writeEntry(f, sheet, h, line, rec); err != nil {
			return nil, err
		}
	}
	res.Entries = len(records)

	logger.Info().
		Int("entries", res.Entries).
		Int("header_row", res.HeaderRow).
		Int("template_row", template).
		Msg("Change log written")
	return res, nil
}

func (b *Builder) header(rows [][]string) (workbook.HeaderMap, error) {
	h, ok := workbook.DiscoverHeader(rows, anchor, b.limits.ChangeLogHeaderScanRows, b.limits.ChangeLogHeaderScanCols)
	if !ok {
		required := workbook.ChangeLogVocabulary.Missing(workbook.HeaderMap{})
		return h, headerError("required columns " + strings.Join(required, ", "))
	}
	if missing := workbook.ChangeLogVocabulary.Missing(h); len(missing) > 0 {
		return h, headerError(fmt.Sprintf("row %d lacks %s", h.Line(), strings.Join(missing, ", ")))
	}
	return h, nil
}

func headerError(msg string) error {
	fe := errors.NewFormatError(errors.FormatHeaderNotFound, "", msg, nil)
	fe.Sheet = constants.ChangeLogSheet
	return fe
}

// create adds the change-log sheet with its header in the default row.
func create(f *excelize.File, sheet string) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create %s: %w", sheet, err)
	}
	if err := f.SetCellValue(sheet, "A1", sheet); err != nil {
		return err
	}
	labels := workbook.ChangeLogVocabulary.Labels()
	values := make([]any, len(labels))
	for i, l := range labels {
		values[i] = l
	}
	cell, _ := excelize.CoordinatesToCellName(1, constants.ChangeLogCreatedHeaderRow)
	return f.SetSheetRow(sheet, cell, &values)
}

// clearEntries empties the cells of every entry row below the header.
func clearEntries(f *excelize.File, sheet string, rows [][]string, h workbook.HeaderMap, width int) error {
	last := 0
	for i := h.Row + 1; i < len(rows); i++ {
		for _, c := range h.Columns {
			if c < len(rows[i]) && strings.TrimSpace(rows[i][c]) != "" {
				last = i + 1
				break
			}
		}
	}
	for line := h.Line() + 1; line <= last; line++ {
		for col := 1; col <= min(width, len(rows[line-1])); col++ {
			cell, err := excelize.CoordinatesToCellName(col, line)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// templateRow picks the row whose style new entries copy: the configured
// row when it is styled, otherwise the nearest styled row above it.
func (b *Builder) templateRow(f *excelize.File, sheet string, first, width int) int {
	extent := rowExtent(f, sheet)
	want := b.limits.ChangeLogStyleTemplateRow
	if want >= first && want <= extent && styled(f, sheet, want, width) {
		return want
	}
	end := first + 1
	if want > first {
		end = want
	}
	for line := min(end, extent+1) - 1; line >= first; line-- {
		if styled(f, sheet, line, width) {
			return line
		}
	}
	return first
}

// rowExtent returns the last row present in the sheet XML, styled-only
// rows included.
func rowExtent(f *excelize.File, sheet string) int {
	rows, err := f.Rows(sheet)
	if err != nil {
		return 0
	}
	defer func() { _ = rows.Close() }()
	n := 0
	for rows.Next() {
		n++
	}
	return n
}

func styled(f *excelize.File, sheet string, line, width int) bool {
	for col := 1; col <= width; col++ {
		cell, err := excelize.CoordinatesToCellName(col, line)
		if err != nil {
			return false
		}
		if id, err := f.GetCellStyle(sheet, cell); err == nil && id != 0 {
			return true
		}
	}
	return false
}

func rowStyles(f *excelize.File, sheet string, line, width int) ([]int, error) {
	out := make([]int, width)
	for col := 1; col <= width; col++ {
		cell, err := excelize.CoordinatesToCellName(col, line)
		if err != nil {
			return nil, err
		}
		if out[col-1], err = f.GetCellStyle(sheet, cell); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func applyStyles(f *excelize.File, sheet string, line int, styles []int) error {
	for i, id := range styles {
		cell, err := excelize.CoordinatesToCellName(i+1, line)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, id); err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(f *excelize.File, sheet string, h workbook.HeaderMap, line int, rec differ.ChangeRecord) error {
	values := map[string]any{
		workbook.LogRegion:  rec.Region(),
		workbook.LogName:    rec.Name(),
		workbook.LogAddress: rec.Address(),
		workbook.LogReason:  rec.Reasons.String(),
	}
	for _, fld := range station.PriceFields {
		cols := workbook.PriceLogColumns[fld]
		oldP, newP := rec.OldPrice(fld), rec.NewPrice(fld)
		values[cols[0]] = price(oldP)
		values[cols[1]] = price(newP)
		if oldP != nil && newP != nil {
			values[cols[2]] = *newP - *oldP
		} else {
			values[cols[2]] = nil
		}
	}

	for id, v := range values {
		col, ok := h.Index(id)
		if !ok {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, line)
		if err != nil {
			return err
		}
		if s, isText := v.(string); isText && s == "" {
			v = nil
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func price(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
