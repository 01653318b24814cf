package store

import (
	"reflect"
	"testing"

	"khata/internal/core"
)

func rec(t *testing.T, label, category string, kind core.Kind, cents int64) core.CategoryRecord {
	t.Helper()
	month, err := core.ParseMonthLabel(label)
	if err != nil {
		t.Fatalf("ParseMonthLabel(%q): %v", label, err)
	}
	return core.CategoryRecord{
		Month:      month,
		MonthLabel: label,
		Category:   category,
		Kind:       kind,
		Amount:     core.Money{Cents: cents},
		Group:      core.GroupUncategorized,
	}
}

func TestCombinedMergesOverridesOverBase(t *testing.T) {
	s := New([]core.CategoryRecord{
		rec(t, "Jul-25", "Groceries", core.Planned, 50000),
		rec(t, "Jul-25", "Groceries", core.Actual, 62000),
	})
	s.AddOrReplace(rec(t, "Jul-25", "Groceries", core.Actual, 70000))

	combined := s.Combined()
	if len(combined) != 2 {
		t.Fatalf("combined has %d records, want 2", len(combined))
	}
	for _, r := range combined {
		if r.Kind == core.Actual && r.Amount.Cents != 70000 {
			t.Fatalf("override should replace base actual, got %d", r.Amount.Cents)
		}
		if r.Kind == core.Planned && r.Amount.Cents != 50000 {
			t.Fatalf("planned should stay from base, got %d", r.Amount.Cents)
		}
	}

	// The base layer itself is untouched.
	for _, r := range s.Base() {
		if r.Kind == core.Actual && r.Amount.Cents != 62000 {
			t.Fatalf("base actual was rewritten to %d", r.Amount.Cents)
		}
	}
}

func TestAddOrReplaceIdempotent(t *testing.T) {
	s := New(nil)
	r := rec(t, "Jul-25", "Rent", core.Actual, 120000)
	s.AddOrReplace(r)
	s.AddOrReplace(r)
	if got := len(s.Combined()); got != 1 {
		t.Fatalf("combined has %d records, want 1", got)
	}
	if s.OverrideCount() != 1 {
		t.Fatalf("override count = %d, want 1", s.OverrideCount())
	}
}

func TestSameSheetMergedTwiceYieldsOneSet(t *testing.T) {
	sheet := []core.CategoryRecord{
		rec(t, "Jul-25", "Groceries", core.Planned, 50000),
		rec(t, "Jul-25", "Groceries", core.Actual, 62000),
		rec(t, "Jul-25", "Rent", core.Planned, 120000),
		rec(t, "Jul-25", "Rent", core.Actual, 120000),
	}
	s := New(nil)
	s.AddOrReplace(sheet...)
	s.AddOrReplace(sheet...)
	if got := len(s.Combined()); got != 4 {
		t.Fatalf("combined has %d records, want 4 (replace, not append)", got)
	}
}

func TestCombinedDeterministic(t *testing.T) {
	s := New([]core.CategoryRecord{
		rec(t, "Sep-25", "Travel", core.Actual, 100),
		rec(t, "Jul-25", "Groceries", core.Actual, 200),
	})
	s.AddOrReplace(rec(t, "Aug-25", "Rent", core.Actual, 300))

	first := s.Combined()
	for i := 0; i < 5; i++ {
		if again := s.Combined(); !reflect.DeepEqual(first, again) {
			t.Fatalf("Combined() not deterministic: %v vs %v", first, again)
		}
	}
	// Canonical order is by month.
	if first[0].MonthLabel != "Jul-25" || first[2].MonthLabel != "Sep-25" {
		t.Fatalf("unexpected order: %v", first)
	}
}

func TestBaseDedupedLastWins(t *testing.T) {
	s := New([]core.CategoryRecord{
		rec(t, "Jul-25", "Rent", core.Actual, 100),
		rec(t, "Jul-25", "rent", core.Actual, 200),
	})
	base := s.Base()
	if len(base) != 1 || base[0].Amount.Cents != 200 {
		t.Fatalf("base = %+v", base)
	}
}
