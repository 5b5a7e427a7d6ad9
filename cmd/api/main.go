package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/infinityseifer/eda-auto/adapters/charts"
	"github.com/infinityseifer/eda-auto/adapters/deck"
	"github.com/infinityseifer/eda-auto/adapters/postgres"
	"github.com/infinityseifer/eda-auto/adapters/stats"
	"github.com/infinityseifer/eda-auto/adapters/tabular"
	"github.com/infinityseifer/eda-auto/app"
	"github.com/infinityseifer/eda-auto/domain/narrative"
	"github.com/infinityseifer/eda-auto/internal/api"
	"github.com/infinityseifer/eda-auto/internal/config"
	"github.com/infinityseifer/eda-auto/internal/logging"
	"github.com/infinityseifer/eda-auto/ports"
)

func main() {
	// .env is optional; environment variables win
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.Default

	if err := os.MkdirAll(cfg.Storage.Dir, 0o755); err != nil {
		log.Fatalf("Failed to create storage directory: %v", err)
	}

	loader := tabular.NewFrameReader()

	coercerCfg := tabular.DefaultCoercionConfig()
	coercerCfg.ParseThreshold = cfg.Coercion.ParseThreshold
	coercer := tabular.NewTemporalCoercer(coercerCfg)

	profiler := stats.NewProfiler(stats.Config{
		MaxColumns:         cfg.Profiling.MaxColumns,
		CorrTopK:           cfg.Profiling.CorrTopK,
		MaxMissingRanked:   cfg.Profiling.MaxMissingRanked,
		MaxNumericSummary:  stats.DefaultConfig().MaxNumericSummary,
		MaxHistograms:      cfg.Profiling.MaxHistograms,
		MaxCategoricalBars: cfg.Profiling.MaxCategoricalBars,
		CategoryTopK:       cfg.Profiling.CategoryTopK,
	}, charts.NewPlotSink(), filepath.Join(cfg.Storage.Dir, "images"))

	renderer := deck.NewRenderer(filepath.Join(cfg.Storage.Dir, "reports"))

	narrCfg := narrative.DefaultConfig()
	narrCfg.WideColumnCutoff = cfg.Narrative.WideColumnCutoff

	orchestrator := app.NewOrchestrator(app.OrchestratorConfig{
		StorageDir: cfg.Storage.Dir,
		SampleCap:  cfg.Profiling.SampleCap,
		Narrative:  narrCfg,
	}, loader, coercer, profiler, renderer)

	jobs := app.NewJobManager(orchestrator, cfg.Jobs.MaxConcurrent)

	datasetRepo, reportRepo := initRegistry(cfg, logger)

	server := api.NewServer(cfg, orchestrator, jobs, loader, datasetRepo, reportRepo)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// initRegistry connects the optional Postgres registry. The server
// runs with filesystem discovery when DATABASE_URL is unset or the
// connection fails.
func initRegistry(cfg *config.Config, logger *logging.Logger) (ports.DatasetRepository, ports.ReportRepository) {
	if cfg.Database.URL == "" {
		logger.Info("registry disabled: DATABASE_URL not set")
		return nil, nil
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		logger.Warn("registry init failed, continuing without it: %v", err)
		return nil, nil
	}
	if err := postgres.EnsureTables(db); err != nil {
		logger.Warn("registry schema setup failed, continuing without it: %v", err)
		return nil, nil
	}
	logger.Info("registry connected")
	return postgres.NewDatasetRepository(db), postgres.NewReportRepository(db)
}
