// Package sheet normalizes one month of loosely-structured workbook data
// into canonical category records.
package sheet

import (
	"fmt"
	"strings"

	"khata/internal/core"
)

// Parser turns raw cell grids into category records. It is stateless: the
// same grid and label always produce the same records.
type Parser struct {
	layout     Layout
	classifier Classifier
}

// Stats reports what happened during a parse. CoercedCells counts non-blank
// amount cells that failed numeric parsing and were substituted with zero.
type Stats struct {
	Rows         int
	CoercedCells int
}

// ManualEntry is one interactively entered row. It goes through the same
// validation as a parsed sheet row: empty categories are skipped, bad
// amounts coerce to zero, a bad month label is fatal.
type ManualEntry struct {
	Category   string
	Kind       core.Kind
	Amount     string
	MonthLabel string
}

func NewParser(layout Layout, classifier Classifier) *Parser {
	return &Parser{layout: layout, classifier: classifier}
}

// ParseMonthSheet extracts every category, fund and loan row from one
// month's grid. A malformed month label fails the whole sheet, since every
// record needs a valid month key; a malformed amount cell only zeroes that
// cell. Duplicate rows for the same (category, kind) keep the last one.
func (p *Parser) ParseMonthSheet(grid [][]string, monthLabel string) ([]core.CategoryRecord, Stats, error) {
	month, err := core.ParseMonthLabel(monthLabel)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("parse sheet %q: %w", monthLabel, err)
	}
	label := strings.TrimSpace(monthLabel)

	var (
		recs  []core.CategoryRecord
		stats Stats
	)

	recs = p.parseCategoryBlock(grid, month, label, p.layout.HomeMarker, "", recs, &stats)
	recs = p.parseCategoryBlock(grid, month, label, p.layout.BangaloreMarker, p.layout.BangalorePrefix, recs, &stats)
	recs = p.parseBalanceBlock(grid, month, label, balanceBlock{
		nameCol:   p.layout.FundNameCol,
		amountCol: p.layout.FundAmountCol,
		marker:    p.layout.FundsMarker,
		fallback:  core.GroupHomeCommitment,
		reserved:  p.layout.ReservedFundRows,
	}, recs, &stats)
	recs = p.parseBalanceBlock(grid, month, label, balanceBlock{
		nameCol:        p.layout.LoanNameCol,
		amountCol:      p.layout.LoanAmountCol,
		marker:         p.layout.HomeLoansPrefix,
		markerIsPrefix: true,
		stopPrefix:     p.layout.FriendLoansPrefix,
		fallback:       core.GroupLoanCommitment,
	}, recs, &stats)
	recs = p.parseBalanceBlock(grid, month, label, balanceBlock{
		nameCol:        p.layout.LoanNameCol,
		amountCol:      p.layout.LoanAmountCol,
		marker:         p.layout.FriendLoansPrefix,
		markerIsPrefix: true,
		fallback:       core.GroupFriendLoan,
	}, recs, &stats)

	return dedupeLastWins(recs), stats, nil
}

// ParseManualRows normalizes interactively entered rows. Entries may span
// several months; each label is resolved independently and any invalid one
// fails the whole batch.
func (p *Parser) ParseManualRows(entries []ManualEntry) ([]core.CategoryRecord, Stats, error) {
	var (
		recs  []core.CategoryRecord
		stats Stats
	)
	for _, e := range entries {
		month, err := core.ParseMonthLabel(e.MonthLabel)
		if err != nil {
			return nil, Stats{}, fmt.Errorf("manual entry: %w", err)
		}
		name := core.NormalizeCategory(e.Category)
		if name == "" {
			continue
		}
		if !e.Kind.Valid() {
			return nil, Stats{}, fmt.Errorf("manual entry %q: %w: %q", name, core.ErrInvalidKind, e.Kind)
		}
		amount, coerced := core.ParseAmountCell(e.Amount)
		if coerced {
			stats.CoercedCells++
		}
		stats.Rows++
		recs = append(recs, core.CategoryRecord{
			Month:      month,
			MonthLabel: strings.TrimSpace(e.MonthLabel),
			Category:   name,
			Kind:       e.Kind,
			Amount:     amount,
			Group:      p.classifier.Classify(name),
		})
	}
	return dedupeLastWins(recs), stats, nil
}

// parseCategoryBlock walks the rows below a section marker, emitting one
// planned and one actual record per named row. A blank name ends the block;
// so does any terminator name.
func (p *Parser) parseCategoryBlock(grid [][]string, month core.MonthKey, label, marker, prefix string, recs []core.CategoryRecord, stats *Stats) []core.CategoryRecord {
	start, ok := findMarkerRow(grid, p.layout.CategoryCol, marker, false)
	if !ok {
		return recs
	}
	for i := start + 1; i < len(grid); i++ {
		name := core.NormalizeCategory(cellAt(grid, i, p.layout.CategoryCol))
		if name == "" || p.isTerminator(name) {
			break
		}
		if prefix != "" {
			name = prefix + name
		}
		planned, coerced := core.ParseAmountCell(cellAt(grid, i, p.layout.PlannedCol))
		if coerced {
			stats.CoercedCells++
		}
		actual, coerced := core.ParseAmountCell(cellAt(grid, i, p.layout.ActualCol))
		if coerced {
			stats.CoercedCells++
		}
		stats.Rows++
		group := p.classifier.Classify(name)
		recs = append(recs,
			core.CategoryRecord{Month: month, MonthLabel: label, Category: name, Kind: core.Planned, Amount: planned, Group: group},
			core.CategoryRecord{Month: month, MonthLabel: label, Category: name, Kind: core.Actual, Amount: actual, Group: group},
		)
	}
	return recs
}

type balanceBlock struct {
	nameCol        int
	amountCol      int
	marker         string
	markerIsPrefix bool
	stopPrefix     string
	fallback       core.Group
	reserved       []string
}

// parseBalanceBlock walks a single-amount section (funds or one loan side).
// Balance rows carry a point-in-time snapshot, recorded as the month's
// actual amount.
func (p *Parser) parseBalanceBlock(grid [][]string, month core.MonthKey, label string, b balanceBlock, recs []core.CategoryRecord, stats *Stats) []core.CategoryRecord {
	start, ok := findMarkerRow(grid, b.nameCol, b.marker, b.markerIsPrefix)
	if !ok {
		return recs
	}
	for i := start + 1; i < len(grid); i++ {
		name := core.NormalizeCategory(cellAt(grid, i, b.nameCol))
		if name == "" {
			break
		}
		lower := strings.ToLower(name)
		if b.stopPrefix != "" && strings.HasPrefix(lower, b.stopPrefix) {
			break
		}
		if containsFold(b.reserved, lower) {
			continue
		}
		amount, coerced := core.ParseAmountCell(cellAt(grid, i, b.amountCol))
		if coerced {
			stats.CoercedCells++
		}
		stats.Rows++
		recs = append(recs, core.CategoryRecord{
			Month:      month,
			MonthLabel: label,
			Category:   name,
			Kind:       core.Actual,
			Amount:     amount,
			Group:      p.classifier.ClassifyOr(name, b.fallback),
		})
	}
	return recs
}

func (p *Parser) isTerminator(name string) bool {
	return containsFold(p.layout.Terminators, strings.ToLower(name))
}

func findMarkerRow(grid [][]string, col int, marker string, prefix bool) (int, bool) {
	for i := range grid {
		cell := strings.ToLower(core.NormalizeCategory(cellAt(grid, i, col)))
		if cell == "" {
			continue
		}
		if prefix && strings.HasPrefix(cell, marker) {
			return i, true
		}
		if !prefix && cell == marker {
			return i, true
		}
	}
	return 0, false
}

// cellAt tolerates ragged rows; excelize trims trailing empty cells.
func cellAt(grid [][]string, row, col int) string {
	if row < 0 || row >= len(grid) {
		return ""
	}
	r := grid[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

func containsFold(list []string, lower string) bool {
	for _, v := range list {
		if lower == strings.ToLower(v) {
			return true
		}
	}
	return false
}

// dedupeLastWins keeps the last record per merge key, preserving first-seen
// order so a re-parsed sheet stays byte-identical.
func dedupeLastWins(recs []core.CategoryRecord) []core.CategoryRecord {
	if len(recs) == 0 {
		return recs
	}
	idx := make(map[core.RecordKey]int, len(recs))
	out := recs[:0:0]
	for _, r := range recs {
		k := r.Key()
		if i, ok := idx[k]; ok {
			out[i] = r
			continue
		}
		idx[k] = len(out)
		out = append(out, r)
	}
	return out
}
