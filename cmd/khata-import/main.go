// Command khata-import parses every month sheet of an xlsx workbook and
// writes the resulting records into the SQLite store, so the server can
// later run with SOURCE_BACKEND=sqlite.
package main

import (
	"context"
	"flag"
	"os"

	"khata/internal/cli"
	"khata/internal/reports"
	"khata/internal/sheet"
	"khata/internal/store"
	"khata/internal/workbook"
	"khata/internal/workbook/excel"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	workbookPath := flag.String("workbook", cfg.WorkbookPath, "path to the xlsx workbook")
	dbPath := flag.String("db", cfg.SQLiteDBPath, "path to the SQLite database")
	flag.Parse()

	ctx := context.Background()

	wb, err := excel.Open(*workbookPath)
	if err != nil {
		logger.Error("Failed to open workbook", "error", err, "path", *workbookPath)
		os.Exit(1)
	}
	defer wb.Close()

	parser := sheet.NewParser(sheet.DefaultLayout(), sheet.DefaultClassifier())
	res, err := workbook.Load(ctx, wb, parser)
	if err != nil {
		logger.Error("Failed to read workbook", "error", err, "path", *workbookPath)
		os.Exit(1)
	}
	for _, fail := range res.Failed {
		logger.Warn("Skipped sheet", "sheet", fail.Label, "error", fail.Err)
	}
	if len(res.Records) == 0 {
		logger.Error("No parseable month sheets found", "path", *workbookPath)
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, *dbPath)
	defer repo.Close()

	if err := repo.SaveRecords(ctx, res.Records); err != nil {
		logger.Error("Failed to save records", "error", err, "db", *dbPath)
		os.Exit(1)
	}

	total, err := repo.CountRecords(ctx)
	if err != nil {
		logger.Error("Failed to count records", "error", err)
		os.Exit(1)
	}

	// Summarize what the store now covers.
	st := store.New(res.Records)
	months := reports.NewEngine(st).MonthlyTotals()

	logger.Info("Import complete",
		"workbook", *workbookPath,
		"db", *dbPath,
		"rows", res.Stats.Rows,
		"imported", len(res.Records),
		"coerced_cells", res.Stats.CoercedCells,
		"months", len(months),
		"stored_total", total)
}
