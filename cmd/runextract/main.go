package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Kurai777/Alda-oficial/internal/common"
	"github.com/Kurai777/Alda-oficial/internal/core"
	"github.com/Kurai777/Alda-oficial/internal/core/associate"
	"github.com/Kurai777/Alda-oficial/internal/core/classify"
	"github.com/Kurai777/Alda-oficial/internal/core/pipeline"
	"github.com/Kurai777/Alda-oficial/internal/export"
	"github.com/Kurai777/Alda-oficial/internal/ocr"
	"github.com/Kurai777/Alda-oficial/internal/ocr/gosseract"
	"github.com/Kurai777/Alda-oficial/internal/pdftext"
	"github.com/Kurai777/Alda-oficial/internal/sheet"
)

func main() {
	_ = godotenv.Load()

	var (
		file = flag.String("file", "", "catalog file to extract (required)")
		out  = flag.String("out", "", "output JSON path (default: stdout)")
	)
	flag.Parse()

	// The document goes to stdout, so logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *file == "" {
		logger.Error("usage", "cmd", "runextract -file <catalog> [-out <json>]")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

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

	start := time.Now()
	res, err := processor.ProcessFile(ctx, *file)
	dur := time.Since(start)
	if err != nil {
		logger.Error("extraction failed", "path", *file, "error", err, "duration_ms", dur.Milliseconds())
		os.Exit(1)
	}

	exporter := export.NewService(logger)
	data, err := exporter.JSON(&res)
	if err != nil {
		logger.Error("export failed", "run_id", res.RunID, "error", err)
		os.Exit(1)
	}

	logger.Info("extraction OK",
		"run_id", res.RunID,
		"mode", res.Mode,
		"pages", res.Pages,
		"records", len(res.Records),
		"valid", len(res.ValidRecords()),
		"page_errors", len(res.Errors),
		"duration_ms", dur.Milliseconds(),
	)

	if *out != "" {
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			logger.Error("failed to write output file", "path", *out, "error", err)
			os.Exit(1)
		}
		logger.Info("document written", "path", *out, "bytes", len(data))
		return
	}
	fmt.Println(string(data))
}
