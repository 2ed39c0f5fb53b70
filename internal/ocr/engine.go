package ocr

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Kurai777/Alda-oficial/internal/common"
	"github.com/Kurai777/Alda-oficial/internal/entity"
)

// Engine recognizes one rendered page image into positioned text elements.
// Implementations must be safe for concurrent Recognize calls; the per-page
// workers share a single engine value.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, imagePath string, page int) ([]entity.PositionedElement, error)
}

// ExecEngine shells out to the tesseract binary and parses its TSV or hOCR
// output. Each call is an independent process, so concurrent use is safe.
type ExecEngine struct {
	cfg    Config
	runner Runner
}

func NewExecEngine(cfg Config, runner Runner) *ExecEngine {
	if runner == nil {
		runner = execRunner{}
	}
	return &ExecEngine{cfg: cfg, runner: runner}
}

func (e *ExecEngine) Name() string { return "tesseract-exec" }

func (e *ExecEngine) Recognize(ctx context.Context, imagePath string, page int) ([]entity.PositionedElement, error) {
	// tesseract <file> stdout -l <lang> [--psm N] [--oem N] tsv|hocr
	args := []string{imagePath, "stdout", "-l", e.cfg.Language}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	format := e.cfg.Format
	if format == "" {
		format = "tsv"
	}
	args = append(args, format)

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: tesseract: %w: %s", common.ErrAdapterFailure, err, truncate(string(errb), 1<<10))
	}
	if format == "hocr" {
		return parseHOCR(out, page)
	}
	return parseTSV(out, page), nil
}
