// Package services orchestrates user-facing write flows: parse the input,
// merge it into the session store, announce the batch.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"khata/internal/amqp"
	"khata/internal/sheet"
	"khata/internal/store"
)

// EventPublisher is the outbound port for import announcements.
// *amqp.Client satisfies it; nil disables events.
type EventPublisher interface {
	PublishImportEvent(ctx context.Context, ev *amqp.ImportEvent) error
}

// ImportService merges uploaded sheets and manual rows into the session's
// override layer.
type ImportService struct {
	store  *store.Store
	parser *sheet.Parser
	events EventPublisher
}

// ImportResult describes one accepted batch.
type ImportResult struct {
	BatchID      uuid.UUID
	MonthLabel   string
	Records      int
	CoercedCells int
}

func NewImportService(st *store.Store, parser *sheet.Parser, events EventPublisher) *ImportService {
	return &ImportService{store: st, parser: parser, events: events}
}

// ImportSheet parses one uploaded month grid and merges it. A bad month
// label fails the import and leaves the store untouched; malformed cells
// are coerced and counted.
func (s *ImportService) ImportSheet(ctx context.Context, grid [][]string, monthLabel string) (ImportResult, error) {
	recs, stats, err := s.parser.ParseMonthSheet(grid, monthLabel)
	if err != nil {
		return ImportResult{}, fmt.Errorf("import sheet: %w", err)
	}
	s.store.AddOrReplace(recs...)

	res := ImportResult{
		BatchID:      uuid.New(),
		MonthLabel:   monthLabel,
		Records:      len(recs),
		CoercedCells: stats.CoercedCells,
	}
	s.publish(ctx, "upload", res)

	slog.InfoContext(ctx, "Imported month sheet",
		"batch_id", res.BatchID,
		"month", monthLabel,
		"records", res.Records,
		"coerced_cells", res.CoercedCells)
	return res, nil
}

// AddManualRows validates and merges interactively entered rows.
func (s *ImportService) AddManualRows(ctx context.Context, entries []sheet.ManualEntry) (ImportResult, error) {
	recs, stats, err := s.parser.ParseManualRows(entries)
	if err != nil {
		return ImportResult{}, fmt.Errorf("add manual rows: %w", err)
	}
	s.store.AddOrReplace(recs...)

	res := ImportResult{
		BatchID:      uuid.New(),
		Records:      len(recs),
		CoercedCells: stats.CoercedCells,
	}
	s.publish(ctx, "manual", res)

	slog.InfoContext(ctx, "Added manual rows",
		"batch_id", res.BatchID,
		"records", res.Records,
		"coerced_cells", res.CoercedCells)
	return res, nil
}

// publish is fire-and-forget: the user's data is already merged, so a
// broker problem is logged and swallowed.
func (s *ImportService) publish(ctx context.Context, source string, res ImportResult) {
	if s.events == nil {
		return
	}
	ev := amqp.NewImportEvent(res.BatchID.String(), source, res.MonthLabel, res.Records, res.CoercedCells)
	if err := s.events.PublishImportEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish import event",
			"batch_id", res.BatchID, "error", err)
	}
}
