// Package gosseract provides an in-process recognition engine backed by
// libtesseract, for deployments where spawning the tesseract binary per
// page costs too much. Importing it links against libtesseract via cgo;
// OCR_ENGINE selects between it and the exec engine at startup.
package gosseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/Kurai777/Alda-oficial/internal/entity"
	"github.com/Kurai777/Alda-oficial/internal/geometry"
	"github.com/Kurai777/Alda-oficial/internal/ocr"
)

// Engine implements ocr.Engine on a fresh client per call; gosseract
// clients are not safe for concurrent use, so none is shared.
type Engine struct {
	Language    string
	TessdataDir string
	PSM         int
}

var _ ocr.Engine = (*Engine)(nil)

func New(cfg ocr.Config) *Engine {
	return &Engine{
		Language:    cfg.Language,
		TessdataDir: cfg.TessdataDir,
		PSM:         cfg.PSM,
	}
}

func (e *Engine) Name() string { return "gosseract" }

func (e *Engine) Recognize(ctx context.Context, imagePath string, page int) ([]entity.PositionedElement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	if e.Language != "" {
		if err := client.SetLanguage(e.Language); err != nil {
			return nil, fmt.Errorf("set language: %w", err)
		}
	}
	if e.TessdataDir != "" {
		if err := client.SetTessdataPrefix(e.TessdataDir); err != nil {
			return nil, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if e.PSM > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(e.PSM)); err != nil {
			return nil, fmt.Errorf("set page seg mode: %w", err)
		}
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("bounding boxes: %w", err)
	}

	elements := make([]entity.PositionedElement, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		box := geometry.NewBBox(
			float64(b.Box.Min.X), float64(b.Box.Min.Y),
			float64(b.Box.Max.X), float64(b.Box.Max.Y),
		)
		elements = append(elements, entity.PositionedElement{
			Kind:       entity.KindText,
			Text:       text,
			Center:     box.Center(),
			Extent:     box.Size(),
			Confidence: b.Confidence / 100,
			Page:       page,
		})
	}
	return elements, nil
}
