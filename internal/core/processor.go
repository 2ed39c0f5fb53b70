// Package core wires the extraction stages into one run: a source adapter
// turns the catalog file into positioned elements or sheet rows, the
// pipeline assembles records page by page, and the associator attaches
// extracted images. A run always produces a structurally valid result;
// per-page failures land in the run's error list, not in the returned error.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Kurai777/Alda-oficial/constants"
	"github.com/Kurai777/Alda-oficial/internal/common"
	"github.com/Kurai777/Alda-oficial/internal/core/associate"
	"github.com/Kurai777/Alda-oficial/internal/core/pipeline"
	"github.com/Kurai777/Alda-oficial/internal/entity"
	"github.com/Kurai777/Alda-oficial/internal/ocr"
	"github.com/Kurai777/Alda-oficial/internal/pdftext"
	"github.com/Kurai777/Alda-oficial/internal/sheet"
)

// Run modes, recorded on the result for provenance.
const (
	ModeRows    = "rows"
	ModePDFText = "pdf-text"
	ModeOCR     = "ocr"
)

// OCRSource recognizes scanned pages into positioned elements.
type OCRSource interface {
	ExtractFile(ctx context.Context, path string) (ocr.Result, error)
}

// TextSource reads the embedded text layer of born-digital PDFs.
type TextSource interface {
	Probe(ctx context.Context, path string) bool
	ExtractFile(ctx context.Context, path string) (pdftext.Result, error)
}

// SheetSource reads workbook rows and embedded pictures.
type SheetSource interface {
	ReadFile(ctx context.Context, path string) (sheet.Result, error)
}

// Processor coordinates adapter, pipeline and association for one file.
type Processor struct {
	logger *slog.Logger
	ocr    OCRSource
	text   TextSource
	sheets SheetSource
	pipe   *pipeline.Pipeline
	assoc  *associate.Associator

	pageWorkers int
}

func NewProcessor(
	logger *slog.Logger,
	ocrSource OCRSource,
	textSource TextSource,
	sheetSource SheetSource,
	pipe *pipeline.Pipeline,
	associator *associate.Associator,
	pageWorkers int,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if ocrSource == nil {
		ocrSource = ocr.NewExtractor(ocr.Config{}, logger)
	}
	if textSource == nil {
		textSource = pdftext.New(pdftext.Config{}, logger)
	}
	if sheetSource == nil {
		sheetSource = sheet.NewReader(sheet.Config{}, logger)
	}
	if pipe == nil {
		pipe = pipeline.New(pipeline.Config{}, logger)
	}
	if associator == nil {
		associator = associate.New(associate.Config{}, logger)
	}
	if pageWorkers <= 0 {
		pageWorkers = 4
	}
	return &Processor{
		logger:      logger,
		ocr:         ocrSource,
		text:        textSource,
		sheets:      sheetSource,
		pipe:        pipe,
		assoc:       associator,
		pageWorkers: pageWorkers,
	}
}

// ProcessFile runs the full extraction for one catalog file. Spreadsheets
// take the row path; PDFs with a usable text layer skip OCR; everything
// else is recognized page by page.
func (p *Processor) ProcessFile(ctx context.Context, path string) (entity.RunResult, error) {
	start := time.Now()
	res := entity.RunResult{
		RunID:     uuid.New(),
		Source:    path,
		StartedAt: start.UTC(),
	}

	format, ok := constants.DetectFormat(path)
	if !ok {
		return res, fmt.Errorf("%w: %s", common.ErrUnsupportedFormat, path)
	}
	p.logger.Debug("process.start", "run_id", res.RunID, "path", path, "format", format)

	var err error
	switch format {
	case constants.XLSX:
		res.Mode = ModeRows
		err = p.runSheet(ctx, path, &res)
	case constants.PDF:
		if p.text.Probe(ctx, path) {
			res.Mode = ModePDFText
			err = p.runPDFText(ctx, path, &res)
		} else {
			res.Mode = ModeOCR
			err = p.runOCR(ctx, path, &res)
		}
	default:
		res.Mode = ModeOCR
		err = p.runOCR(ctx, path, &res)
	}

	res.Duration = time.Since(start)
	if err != nil {
		p.logger.Error("process.failed", "run_id", res.RunID, "path", path, "error", err)
		return res, err
	}
	p.logger.Info("process.done",
		"run_id", res.RunID,
		"path", path,
		"mode", res.Mode,
		"pages", res.Pages,
		"records", len(res.Records),
		"errors", len(res.Errors),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (p *Processor) runSheet(ctx context.Context, path string, res *entity.RunResult) error {
	sr, err := p.sheets.ReadFile(ctx, path)
	if err != nil {
		return err
	}
	for _, w := range sr.Warnings {
		res.Errors = append(res.Errors, entity.RunError{Scope: "sheet", Err: w})
	}
	res.Pages = 1
	res.Records = p.pipe.ExtractRows(sr.Rows)
	attached := p.assoc.Attach(res.Records, sr.Artifacts)
	p.logger.Debug("process.sheet.ok",
		"run_id", res.RunID,
		"rows", len(sr.Rows),
		"records", len(res.Records),
		"attached", attached,
	)
	return nil
}

func (p *Processor) runOCR(ctx context.Context, path string, res *entity.RunResult) error {
	or, err := p.ocr.ExtractFile(ctx, path)
	if err != nil {
		return err
	}
	for _, w := range or.Warnings {
		res.Errors = append(res.Errors, entity.RunError{Scope: "ocr", Err: w})
	}

	inputs := make([]pageInput, len(or.Pages))
	var artifacts []*entity.Artifact
	for i, page := range or.Pages {
		inputs[i] = pageInput{number: page.Number, elements: page.Elements, err: page.Err}
		if page.Image != nil {
			artifacts = append(artifacts, page.Image)
		}
	}
	if err := p.extractPages(ctx, inputs, res); err != nil {
		return err
	}
	attached := p.assoc.Attach(res.Records, artifacts)
	p.logger.Debug("process.ocr.ok",
		"run_id", res.RunID,
		"pages", res.Pages,
		"records", len(res.Records),
		"attached", attached,
	)
	return nil
}

func (p *Processor) runPDFText(ctx context.Context, path string, res *entity.RunResult) error {
	tr, err := p.text.ExtractFile(ctx, path)
	if err != nil {
		return err
	}
	inputs := make([]pageInput, len(tr.Pages))
	for i, page := range tr.Pages {
		inputs[i] = pageInput{number: page.Number, elements: page.Elements, err: page.Err}
	}
	if err := p.extractPages(ctx, inputs, res); err != nil {
		return err
	}
	p.logger.Debug("process.pdftext.ok",
		"run_id", res.RunID,
		"pages", res.Pages,
		"records", len(res.Records),
	)
	return nil
}

type pageInput struct {
	number   int
	elements []entity.PositionedElement
	err      error
}

// extractPages fans the per-page pipeline out across workers. Failed pages
// contribute a run error and zero records; page order is preserved in the
// merged record list.
func (p *Processor) extractPages(ctx context.Context, pages []pageInput, res *entity.RunResult) error {
	res.Pages = len(pages)
	perPage := make([][]entity.Record, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.pageWorkers)
	for i, page := range pages {
		if page.err != nil {
			res.Errors = append(res.Errors, entity.RunError{
				Scope: "page",
				Page:  page.number,
				Err:   page.err.Error(),
			})
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perPage[i] = p.pipe.ExtractPage(page.elements, page.number)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, recs := range perPage {
		res.Records = append(res.Records, recs...)
	}
	return nil
}
