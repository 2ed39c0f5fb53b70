package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Kurai777/Alda-oficial/internal/async"
	"github.com/Kurai777/Alda-oficial/internal/common"
	"github.com/Kurai777/Alda-oficial/internal/core"
	"github.com/Kurai777/Alda-oficial/internal/core/associate"
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

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	_ = godotenv.Load()

	var (
		inmem = flag.Bool("inmem", false, "use an in-memory SQLite ledger")
		dir   = flag.String("dir", "", "directory to process catalogs from (required)")
		xlsx  = flag.String("xlsx", "", "consolidated XLSX output path (optional; empty skips the workbook)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	cfg := common.LoadConfig()
	if *inmem {
		cfg.Ledger.Driver = "sqlite"
		cfg.Ledger.DSN = ":memory:"
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

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

	ingestor := ingest.NewFSIngestor(filesRepo, logger)

	logger.Info("starting ingestion", "dir", *dir)
	results, stats, err := ingestor.IngestDirectory(ctx, *dir, true)
	if err != nil {
		logger.Error("failed to ingest directory", "error", err)
		os.Exit(1)
	}
	logger.Info("ingestion complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated)

	// Process every ingested file, deduplicated ones included, so the
	// workbook covers the whole directory rather than just new arrivals.
	processed := 0
	failures := 0
	var products []export.Product
	for _, r := range results {
		if r.Err != "" {
			failures++
			continue
		}
		logger.Info("processing file", "file_id", r.FileID, "path", r.SourcePath)
		res, err := worker.Process(ctx, async.Job{
			FileID:      r.FileID,
			Path:        r.SourcePath,
			SubmittedAt: time.Now().UTC(),
		})
		if err != nil {
			logger.Error("failed to process file", "file_id", r.FileID, "error", err)
			failures++
			continue
		}
		processed++
		for _, rec := range res.ValidRecords() {
			products = append(products, export.FromRecord(rec))
		}
	}

	if *xlsx != "" {
		logger.Info("exporting to XLSX", "output", *xlsx)
		xlsxBytes, err := exporter.XLSX(products)
		if err != nil {
			logger.Error("failed to export products", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsx, xlsxBytes, 0644); err != nil {
			logger.Error("failed to write output file", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("batch processing complete",
		"files_processed", processed,
		"failures", failures,
		"products", len(products),
		"json_dir", cfg.Ingest.OutputDir)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files ingested: %d\n", stats.Succeeded)
	fmt.Printf("- Files processed: %d\n", processed)
	fmt.Printf("- Failures: %d\n", failures)
	fmt.Printf("- Products: %d\n", len(products))
	fmt.Printf("- JSON documents: %s\n", cfg.Ingest.OutputDir)
	if *xlsx != "" {
		fmt.Printf("- Workbook: %s\n", *xlsx)
	}
}
