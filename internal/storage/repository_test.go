package storage

import (
	"context"
	"path/filepath"
	"testing"

	"khata/internal/core"
)

func openTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "khata.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testRecord(t *testing.T, label, category string, kind core.Kind, cents int64) core.CategoryRecord {
	t.Helper()
	month, err := core.ParseMonthLabel(label)
	if err != nil {
		t.Fatal(err)
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

func TestSaveAndLoadRecords(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	recs := []core.CategoryRecord{
		testRecord(t, "Jul-25", "Groceries", core.Planned, 50000),
		testRecord(t, "Jul-25", "Groceries", core.Actual, 62000),
		testRecord(t, "Aug-25", "Rent", core.Actual, 120000),
	}
	if err := repo.SaveRecords(ctx, recs); err != nil {
		t.Fatalf("SaveRecords: %v", err)
	}

	loaded, err := repo.LoadRecords(ctx)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("loaded %d records, want 3", len(loaded))
	}
	// Canonical order: July before August.
	if loaded[0].MonthLabel != "Jul-25" || loaded[2].MonthLabel != "Aug-25" {
		t.Fatalf("order = %v", loaded)
	}
	if loaded[1].Kind != core.Actual || loaded[1].Amount.Cents != 62000 {
		t.Fatalf("groceries actual = %+v", loaded[1])
	}
}

func TestSaveRecordsUpsertsByKey(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	if err := repo.SaveRecords(ctx, []core.CategoryRecord{
		testRecord(t, "Jul-25", "Groceries", core.Actual, 62000),
	}); err != nil {
		t.Fatal(err)
	}
	// Same key, different casing and amount: must replace, not duplicate.
	if err := repo.SaveRecords(ctx, []core.CategoryRecord{
		testRecord(t, "Jul-25", "groceries", core.Actual, 70000),
	}); err != nil {
		t.Fatal(err)
	}

	n, err := repo.CountRecords(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
	loaded, err := repo.LoadRecords(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if loaded[0].Amount.Cents != 70000 {
		t.Fatalf("amount = %d, want 70000", loaded[0].Amount.Cents)
	}
}

func TestSaveRecordsRejectsInvalid(t *testing.T) {
	repo := openTestRepo(t)
	bad := core.CategoryRecord{Category: "Rent", Kind: core.Actual} // zero month
	if err := repo.SaveRecords(context.Background(), []core.CategoryRecord{bad}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadRecordsEmpty(t *testing.T) {
	repo := openTestRepo(t)
	loaded, err := repo.LoadRecords(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 0 {
		t.Fatalf("loaded = %v", loaded)
	}
}
