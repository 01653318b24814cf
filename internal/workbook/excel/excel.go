// Package excel reads xlsx workbooks through excelize. Each sheet in the
// workbook is one month; the sheet name is the month label.
package excel

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

type Workbook struct {
	f *excelize.File
}

// Open opens an xlsx workbook from disk.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &Workbook{f: f}, nil
}

func (w *Workbook) Close() error {
	return w.f.Close()
}

// Months implements workbook.Source. Sheet names are the month labels.
func (w *Workbook) Months(_ context.Context) ([]string, error) {
	return w.f.GetSheetList(), nil
}

// ReadSheet implements workbook.Source. Rows come back ragged: excelize
// drops trailing empty cells, which the parser tolerates.
func (w *Workbook) ReadSheet(_ context.Context, label string) ([][]string, error) {
	rows, err := w.f.GetRows(label)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", label, err)
	}
	return rows, nil
}

// ReadGrid parses a single-sheet upload (the "add one month" flow) and
// returns the first sheet's grid.
func ReadGrid(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open uploaded workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("uploaded workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read uploaded sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}
