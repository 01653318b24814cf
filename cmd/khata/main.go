package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"khata/internal/amqp"
	"khata/internal/cli"
	"khata/internal/config"
	"khata/internal/core"
	apphttp "khata/internal/http"
	applog "khata/internal/log"
	"khata/internal/reports"
	"khata/internal/services"
	"khata/internal/sheet"
	"khata/internal/storage"
	"khata/internal/store"
	"khata/internal/workbook"
	"khata/internal/workbook/excel"
	gsheet "khata/internal/workbook/google"
	mem "khata/internal/workbook/memory"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	parser := sheet.NewParser(sheet.DefaultLayout(), sheet.DefaultClassifier())

	base, err := loadBase(ctx, cfg, parser, logger)
	if err != nil {
		logger.Error("Failed to load base records", "error", err, "backend", cfg.SourceBackend)
		os.Exit(1)
	}
	logger.Info("Loaded base records", "backend", cfg.SourceBackend, "records", len(base))

	st := store.New(base)
	engine := reports.NewEngine(st)

	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, import events disabled", "error", err)
		} else {
			defer client.Close()
			events = client
			logger.Info("Connected to AMQP", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	imports := services.NewImportService(st, parser, events)
	srv := apphttp.NewServer(":"+cfg.Port, st, engine, imports, cfg.CacheSize, cfg.CacheTTL)

	httpLogger := applog.New(applog.DefaultConfig()).WithComponent("http")
	srv.Handler = applog.Middleware(httpLogger)(srv.Handler)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		logger.Info("Starting khata server", "port", cfg.Port, "backend", cfg.SourceBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

// loadBase builds the base record layer from the configured backend.
// Grid backends parse every month sheet; sheets that fail to parse are
// skipped. The sqlite backend reads previously imported records, and
// memory serves a seeded fixture for local development.
func loadBase(ctx context.Context, cfg *config.Config, parser *sheet.Parser, logger *slog.Logger) ([]core.CategoryRecord, error) {
	switch cfg.SourceBackend {
	case "excel":
		wb, err := excel.Open(cfg.WorkbookPath)
		if err != nil {
			return nil, err
		}
		defer wb.Close()
		return loadGrids(ctx, wb, parser, logger)
	case "sheets":
		client, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			return nil, err
		}
		return loadGrids(ctx, client, parser, logger)
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, err
		}
		defer repo.Close()
		return repo.LoadRecords(ctx)
	default:
		return loadGrids(ctx, mem.Seed(), parser, logger)
	}
}

func loadGrids(ctx context.Context, src workbook.Source, parser *sheet.Parser, logger *slog.Logger) ([]core.CategoryRecord, error) {
	res, err := workbook.Load(ctx, src, parser)
	if err != nil {
		return nil, err
	}
	for _, fail := range res.Failed {
		logger.Warn("Skipped sheet", "sheet", fail.Label, "error", fail.Err)
	}
	if res.Stats.CoercedCells > 0 {
		logger.Warn("Coerced malformed cells to zero", "cells", res.Stats.CoercedCells)
	}
	return res.Records, nil
}
