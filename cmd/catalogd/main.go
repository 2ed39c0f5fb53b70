package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Kurai777/Alda-oficial/internal/common"
	"github.com/Kurai777/Alda-oficial/internal/core"
	"github.com/Kurai777/Alda-oficial/internal/core/associate"
	coreasync "github.com/Kurai777/Alda-oficial/internal/core/async"
	"github.com/Kurai777/Alda-oficial/internal/core/classify"
	"github.com/Kurai777/Alda-oficial/internal/core/pipeline"
	"github.com/Kurai777/Alda-oficial/internal/export"
	"github.com/Kurai777/Alda-oficial/internal/ingest"
	"github.com/Kurai777/Alda-oficial/internal/ocr"
	"github.com/Kurai777/Alda-oficial/internal/ocr/gosseract"
	"github.com/Kurai777/Alda-oficial/internal/pdftext"
	repo "github.com/Kurai777/Alda-oficial/internal/repository"
	"github.com/Kurai777/Alda-oficial/internal/sheet"
)

func main() {
	// Load .env if present; deployed environments set variables directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	if err := os.MkdirAll(cfg.Ingest.WatchDir, 0o755); err != nil {
		logger.Error("failed to create watch directory", "dir", cfg.Ingest.WatchDir, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, pool, err := repo.Open(ctx, repo.Config{
		Driver:           cfg.Ledger.Driver,
		DSN:              cfg.Ledger.DSN,
		MaxConns:         cfg.Ledger.MaxConns,
		MinConns:         cfg.Ledger.MinConns,
		MaxConnLifetime:  cfg.Ledger.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Ledger.MaxConnIdleTime,
		DialTimeout:      cfg.Ledger.DialTimeout,
		StatementTimeout: cfg.Ledger.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open ledger", "driver", cfg.Ledger.Driver, "error", err)
		os.Exit(1)
	}
	defer repo.Close(db, pool, logger)

	if err := repo.Migrate(ctx, db, logger); err != nil {
		logger.Error("failed to migrate ledger", "error", err)
		os.Exit(1)
	}
	if err := repo.HealthCheck(ctx, db, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping ledger", "error", err)
		os.Exit(1)
	}

	filesRepo := repo.NewCatalogFileRepository(db, cfg.Ledger.Driver, logger)
	runsRepo := repo.NewRunRepository(db, cfg.Ledger.Driver, logger)

	ocrCfg := ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Language:      cfg.OCR.Language,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
		Workers:       cfg.Extraction.PageWorkers,
		TessdataDir:   cfg.OCR.TessdataDir,
		PSM:           cfg.OCR.PSM,
		OEM:           cfg.OCR.OEM,
		MinConfidence: cfg.OCR.MinConfidence,
		Format:        cfg.OCR.Format,
	}
	var ocrSource *ocr.Extractor
	if cfg.OCR.Engine == "gosseract" {
		ocrSource = ocr.NewExtractorWithEngine(ocrCfg, gosseract.New(ocrCfg), logger)
	} else {
		ocrSource = ocr.NewExtractor(ocrCfg, logger)
	}
	textSource := pdftext.New(pdftext.Config{MaxPages: cfg.OCR.MaxPages}, logger)
	sheetSource := sheet.NewReader(sheet.Config{}, logger)

	classifier := classify.New(classify.Config{
		Price: classify.PricePolicy{
			MinCentavos: cfg.Extraction.MinPriceCentavos,
			MaxCentavos: cfg.Extraction.MaxPriceCentavos,
		},
		MinCodeLength: cfg.Extraction.MinCodeLength,
	})
	pipe := pipeline.New(pipeline.Config{
		Classifier:       classifier,
		GroupingDistance: cfg.Extraction.GroupingDistance,
	}, logger)
	assoc := associate.New(associate.Config{ImageColumn: cfg.Extraction.ImageColumn}, logger)

	processor := core.NewProcessor(logger, ocrSource, textSource, sheetSource, pipe, assoc, cfg.Extraction.PageWorkers)
	exporter := export.NewService(logger)
	worker := ingest.NewWorker(processor, exporter, filesRepo, runsRepo, cfg.Ingest.OutputDir, logger)

	queue := coreasync.NewProcessorQueue(worker, logger,
		coreasync.WithWorkers(cfg.Ingest.Workers),
		coreasync.WithQueueSize(cfg.Ingest.QueueSize),
		coreasync.WithProcessTimeout(10*time.Minute),
	)

	ingestor := ingest.NewFSIngestor(filesRepo, logger)
	service := ingest.NewService(ingest.ServiceConfig{
		WatchDir:     cfg.Ingest.WatchDir,
		RescanPeriod: cfg.Ingest.RescanPeriod,
	}, ingestor, filesRepo, queue, logger)

	logger.Info("catalogd watching",
		"dir", cfg.Ingest.WatchDir,
		"output_dir", cfg.Ingest.OutputDir,
		"driver", cfg.Ledger.Driver,
		"ocr_engine", cfg.OCR.Engine,
		"workers", cfg.Ingest.Workers,
	)

	runErr := service.Run(ctx)
	queue.Shutdown(context.Background())
	if runErr != nil {
		logger.Error("ingestion stopped", "error", runErr)
		os.Exit(1)
	}
}
