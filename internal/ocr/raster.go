package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Kurai777/Alda-oficial/internal/common"
)

// rasterize renders a PDF to per-page PNGs in a fresh temp dir. The caller
// removes dir when done with the images.
func (e *Extractor) rasterize(ctx context.Context, path string) (dir string, images []string, warnings []string, err error) {
	dir, err = os.MkdirTemp("", "alda-pp-*")
	if err != nil {
		return "", nil, nil, err
	}

	prefix := filepath.Join(dir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return dir, nil, []string{string(errb)}, fmt.Errorf("%w: pdftoppm: %w", common.ErrAdapterFailure, err)
	}

	// pdftoppm zero-pads page numbers, so lexicographic order is page order
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		warnings = append(warnings, fmt.Sprintf("truncated to first %d of %d pages", e.cfg.MaxPages, len(matches)))
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return dir, nil, warnings, fmt.Errorf("no pages rendered")
	}
	return dir, matches, warnings, nil
}
