package sheet

import (
	"errors"
	"reflect"
	"testing"

	"khata/internal/core"
)

func newTestParser() *Parser {
	return NewParser(DefaultLayout(), DefaultClassifier())
}

// row builds a grid row wide enough for the default layout.
func row(cells map[int]string) []string {
	out := make([]string, 12)
	for col, v := range cells {
		out[col] = v
	}
	return out
}

func sampleGrid() [][]string {
	return [][]string{
		row(map[int]string{0: "Home", 7: "Funds", 10: "Loans/Interest - Home Side"}),
		row(map[int]string{0: "Groceries", 1: "500", 2: "620", 7: "Home Commitment", 8: "15000", 10: "Car Loan", 11: "240000"}),
		row(map[int]string{0: "Rent", 1: "1200", 2: "1200", 7: "Planned Payments", 8: "999", 10: "Friends Side"}),
		row(map[int]string{0: "", 7: "Bangalore Commitment", 8: "8000", 10: "Ravi", 11: "5000"}),
		row(map[int]string{0: "Bangalore"}),
		row(map[int]string{0: "Rent", 1: "300", 2: "280"}),
	}
}

func findRecord(t *testing.T, recs []core.CategoryRecord, category string, kind core.Kind) core.CategoryRecord {
	t.Helper()
	for _, r := range recs {
		if r.Category == category && r.Kind == kind {
			return r
		}
	}
	t.Fatalf("record %q/%s not found in %d records", category, kind, len(recs))
	return core.CategoryRecord{}
}

func TestParseMonthSheet(t *testing.T) {
	recs, stats, err := newTestParser().ParseMonthSheet(sampleGrid(), "Jul-25")
	if err != nil {
		t.Fatalf("ParseMonthSheet: %v", err)
	}

	// 3 category rows x 2 kinds + 2 funds + 1 home loan + 1 friend loan.
	if len(recs) != 10 {
		t.Fatalf("got %d records, want 10", len(recs))
	}
	if stats.CoercedCells != 0 {
		t.Fatalf("coerced cells = %d, want 0", stats.CoercedCells)
	}

	g := findRecord(t, recs, "Groceries", core.Actual)
	if g.Amount.Cents != 62000 || g.Group != core.GroupUncategorized {
		t.Fatalf("groceries actual = %+v", g)
	}
	if p := findRecord(t, recs, "Groceries", core.Planned); p.Amount.Cents != 50000 {
		t.Fatalf("groceries planned = %+v", p)
	}

	br := findRecord(t, recs, "Bangalore - Rent", core.Actual)
	if br.Amount.Cents != 28000 {
		t.Fatalf("bangalore rent actual = %+v", br)
	}

	fund := findRecord(t, recs, "Home Commitment", core.Actual)
	if fund.Group != core.GroupHomeCommitment || fund.Amount.Cents != 1500000 {
		t.Fatalf("home commitment = %+v", fund)
	}
	if f := findRecord(t, recs, "Bangalore Commitment", core.Actual); f.Group != core.GroupBangaloreCommitment {
		t.Fatalf("bangalore commitment group = %s", f.Group)
	}

	loan := findRecord(t, recs, "Car Loan", core.Actual)
	if loan.Group != core.GroupLoanCommitment || loan.Amount.Cents != 24000000 {
		t.Fatalf("car loan = %+v", loan)
	}
	friend := findRecord(t, recs, "Ravi", core.Actual)
	if friend.Group != core.GroupFriendLoan || friend.Amount.Cents != 500000 {
		t.Fatalf("friend loan = %+v", friend)
	}

	// The reserved "Planned Payments" fund row is skipped.
	for _, r := range recs {
		if r.Category == "Planned Payments" {
			t.Fatal("reserved fund row should be skipped")
		}
	}

	for _, r := range recs {
		if r.MonthLabel != "Jul-25" {
			t.Fatalf("month label = %q", r.MonthLabel)
		}
		if r.Month.Year != 2025 {
			t.Fatalf("month key = %v", r.Month)
		}
	}
}

func TestParseMonthSheetIdempotent(t *testing.T) {
	p := newTestParser()
	a, _, err := p.ParseMonthSheet(sampleGrid(), "Jul-25")
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := p.ParseMonthSheet(sampleGrid(), "Jul-25")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("re-parsing the same grid must produce identical records")
	}
}

func TestParseMonthSheetInvalidLabelIsFatal(t *testing.T) {
	for _, label := range []string{"", "13-25", "Jul-2025"} {
		_, _, err := newTestParser().ParseMonthSheet(sampleGrid(), label)
		if !errors.Is(err, core.ErrInvalidMonthLabel) {
			t.Fatalf("label %q: expected ErrInvalidMonthLabel, got %v", label, err)
		}
	}
}

func TestParseMonthSheetCoercesMalformedCells(t *testing.T) {
	grid := [][]string{
		row(map[int]string{0: "Home"}),
		row(map[int]string{0: "Groceries", 1: "oops", 2: "620"}),
		row(map[int]string{0: "Rent", 1: "1200", 2: "1200"}),
	}
	recs, stats, err := newTestParser().ParseMonthSheet(grid, "Jul-25")
	if err != nil {
		t.Fatalf("malformed cell must not abort the sheet: %v", err)
	}
	if stats.CoercedCells != 1 {
		t.Fatalf("coerced cells = %d, want 1", stats.CoercedCells)
	}
	if g := findRecord(t, recs, "Groceries", core.Planned); g.Amount.Cents != 0 {
		t.Fatalf("coerced planned amount = %d, want 0", g.Amount.Cents)
	}
	// Rows after the malformed cell still parse.
	if r := findRecord(t, recs, "Rent", core.Actual); r.Amount.Cents != 120000 {
		t.Fatalf("rent actual = %d", r.Amount.Cents)
	}
}

func TestParseMonthSheetSkipsBlankRowsAndNames(t *testing.T) {
	grid := [][]string{
		row(map[int]string{0: "Home"}),
		row(map[int]string{0: "Groceries", 1: "500", 2: "620"}),
		row(map[int]string{0: ""}), // blank row ends the block, it is not an error
		row(map[int]string{0: "Orphan", 1: "1", 2: "2"}),
	}
	recs, _, err := newTestParser().ParseMonthSheet(grid, "Jul-25")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
}

func TestParseMonthSheetDuplicateRowLastWins(t *testing.T) {
	grid := [][]string{
		row(map[int]string{0: "Home"}),
		row(map[int]string{0: "Groceries", 1: "500", 2: "620"}),
		row(map[int]string{0: "groceries", 1: "550", 2: "700"}),
	}
	recs, _, err := newTestParser().ParseMonthSheet(grid, "Jul-25")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2 after dedupe", len(recs))
	}
	if recs[0].Amount.Cents != 55000 || recs[1].Amount.Cents != 70000 {
		t.Fatalf("last row should win: %+v", recs)
	}
}

func TestParseManualRows(t *testing.T) {
	entries := []ManualEntry{
		{Category: "Groceries", Kind: core.Actual, Amount: "620", MonthLabel: "Jul-25"},
		{Category: "  ", Kind: core.Actual, Amount: "10", MonthLabel: "Jul-25"}, // skipped
		{Category: "Travel", Kind: core.Planned, Amount: "n/a", MonthLabel: "Aug-25"},
	}
	recs, stats, err := newTestParser().ParseManualRows(entries)
	if err != nil {
		t.Fatalf("ParseManualRows: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if stats.CoercedCells != 1 {
		t.Fatalf("coerced cells = %d, want 1", stats.CoercedCells)
	}
	if recs[1].Amount.Cents != 0 || recs[1].Month.Month != 8 {
		t.Fatalf("travel record = %+v", recs[1])
	}

	t.Run("invalid month label is fatal", func(t *testing.T) {
		_, _, err := newTestParser().ParseManualRows([]ManualEntry{
			{Category: "Travel", Kind: core.Actual, Amount: "10", MonthLabel: "nope"},
		})
		if !errors.Is(err, core.ErrInvalidMonthLabel) {
			t.Fatalf("expected ErrInvalidMonthLabel, got %v", err)
		}
	})

	t.Run("invalid kind is fatal", func(t *testing.T) {
		_, _, err := newTestParser().ParseManualRows([]ManualEntry{
			{Category: "Travel", Kind: "someday", Amount: "10", MonthLabel: "Jul-25"},
		})
		if !errors.Is(err, core.ErrInvalidKind) {
			t.Fatalf("expected ErrInvalidKind, got %v", err)
		}
	})
}

func TestClassifierFallback(t *testing.T) {
	c := DefaultClassifier()
	if g := c.Classify("Groceries"); g != core.GroupUncategorized {
		t.Fatalf("unknown name group = %s", g)
	}
	if g := c.Classify("  home   commitment "); g != core.GroupHomeCommitment {
		t.Fatalf("lookup should fold case and whitespace, got %s", g)
	}
	if g := c.ClassifyOr("Gold Fund", core.GroupBangaloreCommitment); g != core.GroupBangaloreCommitment {
		t.Fatalf("fallback group = %s", g)
	}
}
