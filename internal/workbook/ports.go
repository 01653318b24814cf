// Package workbook loads the source workbook through pluggable backends
// and turns every month sheet into canonical records.
package workbook

import "context"

// Source is an outbound port over one workbook: a set of month sheets
// addressed by their label.
type Source interface {
	// Months lists the month labels present in the source, in source order.
	Months(ctx context.Context) ([]string, error)
	// ReadSheet returns the raw cell grid for one month label.
	ReadSheet(ctx context.Context, label string) ([][]string, error)
}
