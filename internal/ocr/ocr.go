// Package ocr turns catalog pages into positioned text elements using the
// Tesseract engine. PDFs are rasterized page by page with pdftoppm; each
// rendered page is recognized into text lines with bounding boxes and also
// kept as the page's image artifact, so records extracted from the page can
// be illustrated even when the source embeds no per-product images.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Kurai777/Alda-oficial/constants"
	"github.com/Kurai777/Alda-oficial/internal/artifact"
	"github.com/Kurai777/Alda-oficial/internal/common"
	"github.com/Kurai777/Alda-oficial/internal/entity"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"

	Language string // default "por"
	DPI      int    // rasterization DPI for scanned PDFs, default 300
	MaxPages int    // 0 = no limit
	Workers  int    // parallel page recognition, default 4

	TessdataDir string

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default

	// MinConfidence drops recognized lines whose mean word confidence falls
	// below it (0..1 scale). Zero disables the filter.
	MinConfidence float64

	Format string // "tsv" (default) or "hocr"
}

// Page is one recognized catalog page. Elements carry the text lines with
// their boxes; Image is the rendered page awaiting association. A page
// whose recognition failed keeps its number and Err, never aborts the file.
type Page struct {
	Number   int
	Elements []entity.PositionedElement
	Image    *entity.Artifact
	Err      error
}

// Result is the outcome of recognizing one source file.
type Result struct {
	Pages    []Page
	Format   constants.SourceFormat
	Language string
	Duration time.Duration
	Warnings []string
}

type Extractor struct {
	cfg    Config
	engine Engine
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Language == "" {
		cfg.Language = "por"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Format == "" {
		cfg.Format = "tsv"
	}
	e := &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
	e.engine = NewExecEngine(cfg, e.runner)
	return e
}

// NewExtractorWithEngine builds an extractor around a caller-chosen
// recognition engine, such as the libtesseract one.
func NewExtractorWithEngine(cfg Config, engine Engine, logger *slog.Logger) *Extractor {
	e := NewExtractor(cfg, logger)
	if engine != nil {
		e.engine = engine
	}
	return e
}

// ExtractFile picks a strategy based on file extension.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	format, ok := constants.DetectFormat(path)
	e.logger.Debug("ocr.extract.start", "path", path, "format", format, "engine", e.engine.Name())
	if !ok || format == constants.XLSX {
		return Result{}, fmt.Errorf("%w: %q is not an OCR source", common.ErrUnsupportedFormat, path)
	}

	var (
		res Result
		err error
	)
	switch format {
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	default:
		res, err = e.extractImage(ctx, path)
	}
	res.Format = format
	res.Language = e.cfg.Language
	res.Duration = time.Since(start)
	if err != nil {
		e.logger.Error("ocr.extract.failed", "path", path, "error", err)
		return res, err
	}
	e.logger.Debug("ocr.extract.done",
		"path", path,
		"pages", len(res.Pages),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// extractImage recognizes a standalone image as a single page.
func (e *Extractor) extractImage(ctx context.Context, path string) (Result, error) {
	elements, err := e.engine.Recognize(ctx, path, 1)
	if err != nil {
		return Result{}, err
	}
	page := Page{Number: 1, Elements: e.filterConfidence(elements)}

	var warnings []string
	if data, rerr := os.ReadFile(path); rerr != nil {
		warnings = append(warnings, fmt.Sprintf("read page image: %v", rerr))
	} else if art, aerr := artifact.Build(data, artifact.DefaultPolicy()); aerr != nil {
		warnings = append(warnings, fmt.Sprintf("page image rejected: %v", aerr))
	} else {
		art.Page = 1
		page.Image = art
	}
	return Result{Pages: []Page{page}, Warnings: warnings}, nil
}

// extractPDF rasterizes the document and recognizes the rendered pages in
// parallel. A failed page is reported on its Page entry; only rasterization
// failure or cancellation fails the whole file.
func (e *Extractor) extractPDF(ctx context.Context, path string) (Result, error) {
	dir, images, warnings, err := e.rasterize(ctx, path)
	if dir != "" {
		defer func() {
			if rmErr := os.RemoveAll(dir); rmErr != nil {
				e.logger.Warn("ocr.raster.cleanup_failed", "dir", dir, "error", rmErr)
			}
		}()
	}
	if err != nil {
		return Result{Warnings: warnings}, err
	}

	pages := make([]Page, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, img := range images {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n := i + 1
			page := Page{Number: n}
			elements, rerr := e.engine.Recognize(gctx, img, n)
			if rerr != nil {
				page.Err = fmt.Errorf("recognize page %d: %w", n, rerr)
			} else {
				page.Elements = e.filterConfidence(elements)
			}
			if data, derr := os.ReadFile(img); derr == nil {
				if art, aerr := artifact.Build(data, artifact.DefaultPolicy()); aerr == nil {
					art.Page = n
					page.Image = art
				}
			}
			pages[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{Warnings: warnings}, err
	}
	return Result{Pages: pages, Warnings: warnings}, nil
}

// filterConfidence applies the configured floor. Elements with zero
// confidence are treated as unknown and kept.
func (e *Extractor) filterConfidence(elements []entity.PositionedElement) []entity.PositionedElement {
	if e.cfg.MinConfidence <= 0 {
		return elements
	}
	kept := make([]entity.PositionedElement, 0, len(elements))
	for _, el := range elements {
		if el.Confidence > 0 && el.Confidence < e.cfg.MinConfidence {
			continue
		}
		kept = append(kept, el)
	}
	return kept
}
