// Package pdftext reads the embedded text layer of born-digital PDFs.
// Catalogs exported straight from design tools keep selectable text with
// coordinates; reading that layer directly is faster and more accurate
// than rasterizing the page and re-recognizing it, so the processor
// probes for it before falling back to OCR.
//
// PDF coordinates grow upward. Elements come out with Y flipped so that
// ascending values read down the page, the same orientation the OCR
// adapter produces.
package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/Kurai777/Alda-oficial/constants"
	"github.com/Kurai777/Alda-oficial/internal/common"
	"github.com/Kurai777/Alda-oficial/internal/entity"
	"github.com/Kurai777/Alda-oficial/internal/geometry"
)

// probePages caps how many pages Probe samples before deciding.
const probePages = 3

type Config struct {
	// RowTolerance is the baseline distance in points that still keeps two
	// fragments on the same visual line. Default 3.0.
	RowTolerance float64

	// WordGap separates words as a multiple of the font size. Fragments
	// closer than this are glued without a space. Default 0.3.
	WordGap float64

	// MinPageChars is the per-page character floor for Probe. A sampled
	// document averaging fewer visible characters is treated as scanned.
	// Default 64.
	MinPageChars int

	MaxPages int // 0 = no limit
}

// Page is one page of positioned line elements. A page whose content
// stream could not be parsed keeps its number and Err.
type Page struct {
	Number   int
	Elements []entity.PositionedElement
	Err      error
}

type Result struct {
	Pages    []Page
	Duration time.Duration
}

type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RowTolerance <= 0 {
		cfg.RowTolerance = 3.0
	}
	if cfg.WordGap <= 0 {
		cfg.WordGap = 0.3
	}
	if cfg.MinPageChars <= 0 {
		cfg.MinPageChars = 64
	}
	return &Extractor{cfg: cfg, logger: logger}
}

// Probe reports whether the document carries a usable embedded text layer.
// It samples the first few pages and counts visible characters; a sparse
// layer, such as a scanned document with only a watermark, reads as false
// and the caller falls back to OCR.
func (e *Extractor) Probe(ctx context.Context, path string) bool {
	f, rd, err := pdf.Open(path)
	if err != nil {
		e.logger.Debug("pdftext.probe.open_failed", "path", path, "error", err)
		return false
	}
	defer f.Close()

	total := rd.NumPage()
	if total <= 0 {
		return false
	}
	sample := total
	if sample > probePages {
		sample = probePages
	}
	chars := 0
	for n := 1; n <= sample; n++ {
		if ctx.Err() != nil {
			return false
		}
		chars += pageChars(rd, n)
	}
	ok := chars >= e.cfg.MinPageChars*sample
	e.logger.Debug("pdftext.probe", "path", path, "pages_sampled", sample, "chars", chars, "text_layer", ok)
	return ok
}

// ExtractFile reads every page's text layer into positioned line elements.
// Only opening the document or cancellation fail the file; a page whose
// content stream breaks carries the error on its Page entry.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	if format, ok := constants.DetectFormat(path); !ok || format != constants.PDF {
		return Result{}, fmt.Errorf("%w: %q is not a PDF", common.ErrUnsupportedFormat, path)
	}

	f, rd, err := pdf.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	total := rd.NumPage()
	if total <= 0 {
		return Result{}, fmt.Errorf("no pages in %q", path)
	}
	if e.cfg.MaxPages > 0 && total > e.cfg.MaxPages {
		e.logger.Warn("pdftext.pages.truncated", "path", path, "total", total, "limit", e.cfg.MaxPages)
		total = e.cfg.MaxPages
	}

	pages := make([]Page, 0, total)
	for n := 1; n <= total; n++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		page := Page{Number: n}
		page.Elements, page.Err = e.extractPage(rd, n)
		if page.Err != nil {
			e.logger.Warn("pdftext.page.failed", "path", path, "page", n, "error", page.Err)
		}
		pages = append(pages, page)
	}
	res := Result{Pages: pages, Duration: time.Since(start)}
	e.logger.Debug("pdftext.extract.done",
		"path", path,
		"pages", len(pages),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// extractPage converts parser panics into errors; the library is not
// hardened against malformed content streams.
func (e *Extractor) extractPage(rd *pdf.Reader, n int) (els []entity.PositionedElement, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			els, err = nil, fmt.Errorf("page %d content: %v", n, rec)
		}
	}()
	p := rd.Page(n)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d: invalid page object", n)
	}
	return e.buildLines(p.Content().Text, n), nil
}

// buildLines folds raw text fragments into one element per visual line:
// fragments band together while their baselines sit within RowTolerance,
// each band reads left to right, and a gap wider than WordGap times the
// font size becomes a space.
func (e *Extractor) buildLines(texts []pdf.Text, page int) []entity.PositionedElement {
	frags := make([]pdf.Text, 0, len(texts))
	top := 0.0
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		if len(frags) == 0 || t.Y > top {
			top = t.Y
		}
		frags = append(frags, t)
	}
	if len(frags) == 0 {
		return nil
	}

	type band struct {
		yMin, yMax float64
		frags      []pdf.Text
	}
	var bands []band
	for _, t := range frags {
		placed := false
		for i := range bands {
			if t.Y >= bands[i].yMin-e.cfg.RowTolerance && t.Y <= bands[i].yMax+e.cfg.RowTolerance {
				bands[i].frags = append(bands[i].frags, t)
				if t.Y < bands[i].yMin {
					bands[i].yMin = t.Y
				}
				if t.Y > bands[i].yMax {
					bands[i].yMax = t.Y
				}
				placed = true
				break
			}
		}
		if !placed {
			bands = append(bands, band{yMin: t.Y, yMax: t.Y, frags: []pdf.Text{t}})
		}
	}

	// Higher Y is higher on the page; top band first.
	sort.SliceStable(bands, func(i, j int) bool { return bands[i].yMax > bands[j].yMax })

	els := make([]entity.PositionedElement, 0, len(bands))
	for _, bd := range bands {
		row := bd.frags
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

		var sb strings.Builder
		sb.WriteString(row[0].S)
		minX := row[0].X
		maxX := row[0].X + row[0].W
		sumY := row[0].Y
		maxFont := row[0].FontSize
		last := row[0]
		for _, t := range row[1:] {
			gap := t.X - (last.X + last.W)
			threshold := e.cfg.WordGap * t.FontSize
			if t.FontSize == 0 {
				threshold = 3.0
			}
			if gap > threshold {
				sb.WriteString(" ")
			}
			sb.WriteString(t.S)
			if t.X < minX {
				minX = t.X
			}
			if t.X+t.W > maxX {
				maxX = t.X + t.W
			}
			sumY += t.Y
			if t.FontSize > maxFont {
				maxFont = t.FontSize
			}
			last = t
		}

		h := maxFont
		if h == 0 {
			h = 10
		}
		midY := sumY / float64(len(row))
		els = append(els, entity.PositionedElement{
			Kind:   entity.KindText,
			Text:   strings.Join(strings.Fields(sb.String()), " "),
			Center: geometry.Point{X: minX + (maxX-minX)/2, Y: top - midY},
			Extent: geometry.Size{W: maxX - minX, H: h},
			Page:   page,
		})
	}
	return els
}

// pageChars counts visible characters on one page, tolerating both
// parse errors and panics.
func pageChars(rd *pdf.Reader, n int) (chars int) {
	defer func() {
		if rec := recover(); rec != nil {
			chars = 0
		}
	}()
	p := rd.Page(n)
	if p.V.IsNull() {
		return 0
	}
	txt, err := p.GetPlainText(nil)
	if err != nil {
		return 0
	}
	for _, r := range txt {
		if !unicode.IsSpace(r) {
			chars++
		}
	}
	return chars
}
