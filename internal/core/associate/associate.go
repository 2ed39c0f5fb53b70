// Package associate attaches extracted images to assembled records.
//
// Association is positional, attempted as a ladder of strategies from most
// to least specific. Every pass only considers records not yet holding an
// image and artifacts not yet consumed, so an artifact is owned by at most
// one record and a record holds at most one artifact.
package associate

import (
	"log/slog"

	"github.com/Kurai777/Alda-oficial/internal/entity"
)

// Config carries the association knobs.
type Config struct {
	// ImageColumn is the 1-based spreadsheet column product images are
	// anchored to. Ignored for page-anchored artifacts.
	ImageColumn int
}

// Associator matches artifacts to records by anchor position.
type Associator struct {
	imageColumn int
	logger      *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Associator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ImageColumn <= 0 {
		cfg.ImageColumn = 4
	}
	return &Associator{imageColumn: cfg.ImageColumn, logger: logger}
}

// Attach pairs artifacts with records in place and returns how many were
// attached. The ladder runs exact cell, adjacent row, same page, then an
// ordinal fallback; records left without an image stay valid and keep
// MatchNone.
func (a *Associator) Attach(records []entity.Record, artifacts []*entity.Artifact) int {
	if len(records) == 0 || len(artifacts) == 0 {
		return 0
	}

	consumed := make([]bool, len(artifacts))
	attached := 0

	passes := []struct {
		match entity.ImageMatch
		fits  func(rec *entity.Record, art *entity.Artifact) bool
	}{
		{entity.MatchExact, a.exactCell},
		{entity.MatchAdjacent, a.adjacentCell},
		{entity.MatchPage, samePage},
	}
	for _, pass := range passes {
		for i := range records {
			if records[i].HasImage() {
				continue
			}
			for j, art := range artifacts {
				if consumed[j] || !pass.fits(&records[i], art) {
					continue
				}
				records[i].Imagem = art
				records[i].ImageMatch = pass.match
				consumed[j] = true
				attached++
				break
			}
		}
	}

	// Last resort: pair remaining records and artifacts by ordinal. The
	// weakest signal, so it is flagged on the record and logged.
	next := 0
	for i := range records {
		if records[i].HasImage() {
			continue
		}
		for next < len(artifacts) && consumed[next] {
			next++
		}
		if next == len(artifacts) {
			break
		}
		records[i].Imagem = artifacts[next]
		records[i].ImageMatch = entity.MatchIndex
		consumed[next] = true
		attached++
		a.logger.Debug("associate.index_fallback", "record", records[i].Nome, "artifact_index", next)
	}

	a.logger.Debug("associate.done",
		"records", len(records),
		"artifacts", len(artifacts),
		"attached", attached,
	)
	return attached
}

func (a *Associator) exactCell(rec *entity.Record, art *entity.Artifact) bool {
	return art.CellAnchored() && art.Row == rec.Pagina && art.Col == a.imageColumn
}

func (a *Associator) adjacentCell(rec *entity.Record, art *entity.Artifact) bool {
	if !art.CellAnchored() || art.Col != a.imageColumn {
		return false
	}
	d := art.Row - rec.Pagina
	return d >= -1 && d <= 1
}

func samePage(rec *entity.Record, art *entity.Artifact) bool {
	return art.Page > 0 && art.Page == rec.Pagina
}
