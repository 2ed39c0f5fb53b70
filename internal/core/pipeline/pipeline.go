// Package pipeline assembles product records from one page or sheet of
// positioned elements. It is pure computation over already-materialized
// inputs: no I/O and no shared state, so pages can run on independent
// workers and merge their outputs afterwards.
package pipeline

import (
	"log/slog"
	"sort"

	"github.com/Kurai777/Alda-oficial/internal/core/classify"
	"github.com/Kurai777/Alda-oficial/internal/core/extract"
	"github.com/Kurai777/Alda-oficial/internal/core/grouping"
	"github.com/Kurai777/Alda-oficial/internal/entity"
)

// Pipeline coordinates grouping, anchor selection and record assembly for
// one page at a time.
type Pipeline struct {
	cls        *classify.Classifier
	strategies []grouping.Strategy
	distance   float64
	logger     *slog.Logger
}

// Config carries the pipeline knobs. Zero values select the defaults.
type Config struct {
	Classifier       *classify.Classifier
	GroupingDistance float64
}

func New(cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Classifier == nil {
		cfg.Classifier = classify.New(classify.Config{})
	}
	if cfg.GroupingDistance <= 0 {
		cfg.GroupingDistance = 100
	}
	return &Pipeline{
		cls:        cfg.Classifier,
		strategies: []grouping.Strategy{grouping.LineBand{}, grouping.Proximity{}},
		distance:   cfg.GroupingDistance,
		logger:     logger,
	}
}

// ExtractPage assembles records for a single page of positioned elements.
// Malformed elements are dropped up front; a page with no anchors yields
// zero records, never an error.
func (p *Pipeline) ExtractPage(elements []entity.PositionedElement, page int) []entity.Record {
	valid := usable(elements)
	if dropped := len(elements) - len(valid); dropped > 0 {
		p.logger.Debug("pipeline.elements.dropped", "page", page, "dropped", dropped)
	}
	if len(valid) == 0 {
		return nil
	}
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Center.Y < valid[j].Center.Y })

	anchors := extract.SelectAnchors(valid, p.cls)
	if len(anchors) > 0 {
		records := extract.AssembleByAnchors(valid, anchors, p.cls, page)
		p.logger.Debug("pipeline.page.anchored", "page", page, "anchors", len(anchors), "records", len(records))
		return records
	}
	return p.arbitrateLines(valid, page)
}

// ExtractRows assembles records from fixed-schema sheet rows. Every valid
// row is its own anchor, so there is nothing to group or arbitrate.
func (p *Pipeline) ExtractRows(rows []entity.SheetRow) []entity.Record {
	records := extract.AssembleRows(rows, p.cls)
	p.logger.Debug("pipeline.rows.assembled", "rows", len(rows), "records", len(records))
	return records
}

// arbitrateLines runs the line fallback once per grouping strategy and
// keeps the output with the greater count of valid records. Neither
// strategy dominates across catalog layouts; ties keep the first one.
func (p *Pipeline) arbitrateLines(elements []entity.PositionedElement, page int) []entity.Record {
	var (
		best     []entity.Record
		bestName string
	)
	for i, strat := range p.strategies {
		groups := strat.Group(elements, p.distance)
		anchors := extract.SelectLineAnchors(groups, p.cls)
		records := extract.AssembleByLines(groups, anchors, p.cls, page)
		if i == 0 || countValid(records) > countValid(best) {
			best = records
			bestName = strat.Name()
		}
	}
	p.logger.Debug("pipeline.page.fallback", "page", page, "strategy", bestName, "records", len(best))
	return best
}

// usable drops elements that cannot participate in assembly, such as text
// elements whose text is empty. A malformed element never aborts a page.
func usable(elements []entity.PositionedElement) []entity.PositionedElement {
	kept := make([]entity.PositionedElement, 0, len(elements))
	for _, el := range elements {
		if el.Valid() {
			kept = append(kept, el)
		}
	}
	return kept
}

func countValid(records []entity.Record) int {
	n := 0
	for i := range records {
		if records[i].Valid() {
			n++
		}
	}
	return n
}
