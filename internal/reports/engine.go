// Package reports computes derived views over the combined record set:
// monthly totals, overspend detection, rankings, trend series and fund/loan
// balance trajectories. Every query recomputes from scratch; nothing here
// keeps state between calls.
package reports

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"khata/internal/core"
)

// ErrInvalidQuery marks a query that cannot be answered because its
// parameters are malformed, not because data is missing. Missing data
// yields empty results.
var ErrInvalidQuery = errors.New("invalid query")

// RecordSource supplies the merged record set. *store.Store satisfies it.
type RecordSource interface {
	Combined() []core.CategoryRecord
}

type Engine struct {
	src RecordSource
}

// Totals is the planned and actual sum for one month across all categories.
type Totals struct {
	Planned core.Money
	Actual  core.Money
}

// OverspendEntry is a category whose actual spend exceeded its plan.
// A missing plan counts as zero, so any positive actual overspends it.
type OverspendEntry struct {
	Category string
	Planned  core.Money
	Actual   core.Money
	Excess   core.Money
}

type CategoryAmount struct {
	Category string
	Actual   core.Money
}

// TrendPoint is one month of a category's series. Months where the
// category is absent are omitted, never interpolated.
type TrendPoint struct {
	Month   core.MonthKey
	Label   string
	Planned core.Money
	Actual  core.Money
}

// BalancePoint is a point-in-time fund or loan balance. Balances are
// per-month snapshots as recorded in the sheet, not cumulative sums.
type BalancePoint struct {
	Month   core.MonthKey
	Label   string
	Balance core.Money
}

func NewEngine(src RecordSource) *Engine {
	return &Engine{src: src}
}

// MonthlyTotals sums planned and actual amounts per month across all
// spending categories. Fund and loan balance snapshots are excluded; they
// are standing amounts, not monthly spend, and have their own views.
// An empty record set yields an empty map.
func (e *Engine) MonthlyTotals() map[core.MonthKey]Totals {
	totals := make(map[core.MonthKey]Totals)
	for _, r := range e.src.Combined() {
		if r.Group.IsBalance() {
			continue
		}
		t := totals[r.Month]
		switch r.Kind {
		case core.Planned:
			t.Planned.Cents += r.Amount.Cents
		case core.Actual:
			t.Actual.Cents += r.Amount.Cents
		}
		totals[r.Month] = t
	}
	return totals
}

// Overspend lists the spending categories of one month where actual
// exceeds planned, sorted by category name. Balance snapshots never
// overspend; a fund or loan has no plan to exceed.
func (e *Engine) Overspend(month core.MonthKey) ([]OverspendEntry, error) {
	if month.IsZero() {
		return nil, fmt.Errorf("%w: zero month key", ErrInvalidQuery)
	}

	type pair struct {
		name            string
		planned, actual int64
	}
	byCat := make(map[string]*pair)
	var order []string
	for _, r := range e.src.Combined() {
		if r.Month != month || r.Group.IsBalance() {
			continue
		}
		k := strings.ToLower(r.Category)
		p, ok := byCat[k]
		if !ok {
			p = &pair{name: r.Category}
			byCat[k] = p
			order = append(order, k)
		}
		switch r.Kind {
		case core.Planned:
			p.planned = r.Amount.Cents
		case core.Actual:
			p.actual = r.Amount.Cents
		}
	}

	var out []OverspendEntry
	sort.Strings(order)
	for _, k := range order {
		p := byCat[k]
		if p.actual > p.planned {
			out = append(out, OverspendEntry{
				Category: p.name,
				Planned:  core.Money{Cents: p.planned},
				Actual:   core.Money{Cents: p.actual},
				Excess:   core.Money{Cents: p.actual - p.planned},
			})
		}
	}
	return out, nil
}

// TopCategories ranks one month's spending categories by actual amount, descending,
// ties broken by name ascending. The result holds at most n entries.
func (e *Engine) TopCategories(month core.MonthKey, n int) ([]CategoryAmount, error) {
	if month.IsZero() {
		return nil, fmt.Errorf("%w: zero month key", ErrInvalidQuery)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative limit %d", ErrInvalidQuery, n)
	}

	var out []CategoryAmount
	for _, r := range e.src.Combined() {
		if r.Month == month && r.Kind == core.Actual && !r.Group.IsBalance() {
			out = append(out, CategoryAmount{Category: r.Category, Actual: r.Amount})
		}
	}
	sortRanked(out)
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// TopOverall ranks spending categories by actual amount summed across every month.
func (e *Engine) TopOverall(n int) ([]CategoryAmount, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative limit %d", ErrInvalidQuery, n)
	}

	sums := make(map[string]int64)
	names := make(map[string]string)
	for _, r := range e.src.Combined() {
		if r.Kind != core.Actual || r.Group.IsBalance() {
			continue
		}
		k := strings.ToLower(r.Category)
		sums[k] += r.Amount.Cents
		names[k] = r.Category
	}
	out := make([]CategoryAmount, 0, len(sums))
	for k, cents := range sums {
		out = append(out, CategoryAmount{Category: names[k], Actual: core.Money{Cents: cents}})
	}
	sortRanked(out)
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// CategoryTrend returns the category's series across every month it
// appears in, ordered by month. An unknown category yields an empty
// series, not an error.
func (e *Engine) CategoryTrend(category string) ([]TrendPoint, error) {
	name := core.NormalizeCategory(category)
	if name == "" {
		return nil, fmt.Errorf("%w: empty category", ErrInvalidQuery)
	}
	key := strings.ToLower(name)

	byMonth := make(map[core.MonthKey]*TrendPoint)
	for _, r := range e.src.Combined() {
		if strings.ToLower(r.Category) != key {
			continue
		}
		tp, ok := byMonth[r.Month]
		if !ok {
			tp = &TrendPoint{Month: r.Month, Label: r.MonthLabel}
			byMonth[r.Month] = tp
		}
		switch r.Kind {
		case core.Planned:
			tp.Planned = r.Amount
		case core.Actual:
			tp.Actual = r.Amount
		}
	}

	out := make([]TrendPoint, 0, len(byMonth))
	for _, tp := range byMonth {
		out = append(out, *tp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out, nil
}

// FundBalances returns the balance trajectory of every fund-group
// category, keyed by fund name. Uncategorized records never show up here.
func (e *Engine) FundBalances() map[string][]BalancePoint {
	return e.balances(func(g core.Group) bool { return g.IsFund() })
}

// LoanBalances returns outstanding balance snapshots for loan-group
// records on the given side.
func (e *Engine) LoanBalances(side core.Side) (map[string][]BalancePoint, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("%w: unknown loan side %q", ErrInvalidQuery, side)
	}
	return e.balances(func(g core.Group) bool {
		s, ok := g.LoanSide()
		return ok && s == side
	}), nil
}

func (e *Engine) balances(match func(core.Group) bool) map[string][]BalancePoint {
	out := make(map[string][]BalancePoint)
	for _, r := range e.src.Combined() {
		if r.Kind != core.Actual || !match(r.Group) {
			continue
		}
		out[r.Category] = append(out[r.Category], BalancePoint{
			Month:   r.Month,
			Label:   r.MonthLabel,
			Balance: r.Amount,
		})
	}
	for name := range out {
		points := out[name]
		sort.Slice(points, func(i, j int) bool { return points[i].Month.Before(points[j].Month) })
		out[name] = points
	}
	return out
}

func sortRanked(out []CategoryAmount) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Actual.Cents != out[j].Actual.Cents {
			return out[i].Actual.Cents > out[j].Actual.Cents
		}
		return out[i].Category < out[j].Category
	})
}
