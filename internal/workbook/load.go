package workbook

import (
	"context"
	"fmt"
	"log/slog"

	"khata/internal/core"
	"khata/internal/sheet"
)

// SheetError records one month sheet that failed to load or parse.
type SheetError struct {
	Label string
	Err   error
}

func (e SheetError) Error() string {
	return fmt.Sprintf("sheet %q: %v", e.Label, e.Err)
}

func (e SheetError) Unwrap() error {
	return e.Err
}

// Result is the outcome of loading a whole workbook. Failed sheets are
// reported alongside the records of the sheets that did parse; a single
// bad month never hides the others.
type Result struct {
	Records []core.CategoryRecord
	Stats   sheet.Stats
	Failed  []SheetError
}

// Load reads and parses every month sheet the source offers. Only a
// failure to list the sheets at all is fatal; per-sheet failures are
// collected in the result.
func Load(ctx context.Context, src Source, parser *sheet.Parser) (Result, error) {
	labels, err := src.Months(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list month sheets: %w", err)
	}

	var res Result
	for _, label := range labels {
		grid, err := src.ReadSheet(ctx, label)
		if err != nil {
			res.Failed = append(res.Failed, SheetError{Label: label, Err: err})
			slog.WarnContext(ctx, "Skipping unreadable month sheet", "label", label, "error", err)
			continue
		}
		recs, stats, err := parser.ParseMonthSheet(grid, label)
		if err != nil {
			res.Failed = append(res.Failed, SheetError{Label: label, Err: err})
			slog.WarnContext(ctx, "Skipping unparsable month sheet", "label", label, "error", err)
			continue
		}
		res.Records = append(res.Records, recs...)
		res.Stats.Rows += stats.Rows
		res.Stats.CoercedCells += stats.CoercedCells
		if stats.CoercedCells > 0 {
			slog.DebugContext(ctx, "Coerced malformed cells", "label", label, "cells", stats.CoercedCells)
		}
	}
	return res, nil
}
