// Package storage persists canonical records in SQLite. It serves two
// callers: the import tool writes a workbook snapshot, and the server can
// load that snapshot as its base layer. The session override layer is never
// written here; runtime-added data stays in memory on purpose.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"khata/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveRecords upserts records by their merge key, so re-importing a
// workbook replaces figures instead of duplicating them.
func (r *SQLiteRepository) SaveRecords(ctx context.Context, recs []core.CategoryRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (month_year, month_num, month_label, category, category_key, kind, amount_cents, grp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (month_year, month_num, category_key, kind) DO UPDATE SET
			month_label = excluded.month_label,
			category    = excluded.category,
			amount_cents = excluded.amount_cents,
			grp         = excluded.grp`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	start := time.Now()
	for _, rec := range recs {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("record %q %s: %w", rec.Category, rec.Kind, err)
		}
		_, err := stmt.ExecContext(ctx,
			rec.Month.Year,
			int(rec.Month.Month),
			rec.MonthLabel,
			rec.Category,
			strings.ToLower(core.NormalizeCategory(rec.Category)),
			string(rec.Kind),
			rec.Amount.Cents,
			string(rec.Group),
		)
		if err != nil {
			return fmt.Errorf("upsert record %q %s: %w", rec.Category, rec.Kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit records: %w", err)
	}

	slog.InfoContext(ctx, "Saved records to SQLite",
		"count", len(recs),
		"elapsed", time.Since(start))
	return nil
}

// LoadRecords returns every stored record in canonical order.
func (r *SQLiteRepository) LoadRecords(ctx context.Context) ([]core.CategoryRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT month_year, month_num, month_label, category, kind, amount_cents, grp
		FROM records
		ORDER BY month_year, month_num, category_key, kind`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryRecord
	for rows.Next() {
		var (
			rec      core.CategoryRecord
			year     int
			monthNum int
			kind     string
			grp      string
		)
		if err := rows.Scan(&year, &monthNum, &rec.MonthLabel, &rec.Category, &kind, &rec.Amount.Cents, &grp); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Month = core.MonthKey{Year: year, Month: time.Month(monthNum)}
		rec.Kind = core.Kind(kind)
		rec.Group = core.Group(grp)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// CountRecords reports how many records are stored, for import logging.
func (r *SQLiteRepository) CountRecords(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}
