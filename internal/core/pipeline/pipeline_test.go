package pipeline

import (
	"testing"

	"github.com/Kurai777/Alda-oficial/internal/entity"
	"github.com/Kurai777/Alda-oficial/internal/geometry"
)

func tel(text string, x, y, w, h float64) entity.PositionedElement {
	return entity.PositionedElement{
		Kind:   entity.KindText,
		Text:   text,
		Center: geometry.Point{X: x, Y: y},
		Extent: geometry.Size{W: w, H: h},
	}
}

// Elements arrive unordered; the pipeline sorts by Y before anchoring, so
// the catalog page still collapses into one complete record.
func TestExtractPageAnchored(t *testing.T) {
	p := New(Config{}, nil)
	elements := []entity.PositionedElement{
		tel("R$ 450,00", 50, 60, 60, 10),
		tel("Cadeira Eames", 50, 10, 200, 24),
		tel("Preto", 50, 80, 40, 10),
		tel("1.00020.01.0001", 50, 40, 80, 10),
	}
	records := p.ExtractPage(elements, 1)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Nome != "Cadeira Eames" || rec.PrecoCentavos != 45000 {
		t.Errorf("record = %+v", rec)
	}
	if len(rec.Codigos) != 1 || rec.Codigos[0] != "1.00020.01.0001" {
		t.Errorf("Codigos = %v", rec.Codigos)
	}
}

func TestExtractPageDropsMalformed(t *testing.T) {
	p := New(Config{}, nil)
	elements := []entity.PositionedElement{
		tel("Cadeira Eames", 50, 10, 200, 24),
		tel("   ", 50, 20, 30, 10),
		{Kind: "shape", Text: "x", Center: geometry.Point{X: 1, Y: 1}},
		tel("R$ 450,00", 50, 60, 60, 10),
	}
	records := p.ExtractPage(elements, 1)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].PrecoCentavos != 45000 {
		t.Errorf("price = %d", records[0].PrecoCentavos)
	}
}

// No anchors on a page means zero records, not a failure.
func TestExtractPageNoAnchors(t *testing.T) {
	p := New(Config{}, nil)
	elements := []entity.PositionedElement{
		tel("abc", 0, 0, 10, 8),
		tel("xyz", 0, 10, 10, 8),
	}
	if records := p.ExtractPage(elements, 1); records != nil {
		t.Errorf("got %v, want nil", records)
	}
	if records := p.ExtractPage(nil, 1); records != nil {
		t.Errorf("empty page: got %v, want nil", records)
	}
}

// Two columns of short fragments: the vertical band strategy fuses both
// columns into one line, while proximity keeps the columns apart and
// yields two records, so arbitration picks proximity.
func TestExtractPageFallbackPrefersMoreRecords(t *testing.T) {
	p := New(Config{GroupingDistance: 50}, nil)
	elements := []entity.PositionedElement{
		tel("Ab1", 0, 0, 10, 8),
		tel("cd", 0, 10, 10, 8),
		tel("Ef2", 1000, 0, 10, 8),
		tel("gh", 1000, 10, 10, 8),
	}
	records := p.ExtractPage(elements, 3)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 from proximity grouping", len(records))
	}
	if records[0].Nome != "Ab1 cd" || records[1].Nome != "Ef2 gh" {
		t.Errorf("names = %q, %q", records[0].Nome, records[1].Nome)
	}
	if records[0].Pagina != 3 {
		t.Errorf("Pagina = %d, want 3", records[0].Pagina)
	}
}

// When both strategies extract the same number of records the first
// strategy's output is kept, even though the records differ.
func TestExtractPageFallbackTieKeepsFirstStrategy(t *testing.T) {
	p := New(Config{GroupingDistance: 50}, nil)
	elements := []entity.PositionedElement{
		tel("Xy", 0, 0, 100, 40),
		tel("Abcd", 0, 10, 10, 8),
		tel("efgh", 1000, 15, 10, 8),
	}
	records := p.ExtractPage(elements, 1)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Nome != "Xy Abcd efgh" {
		t.Errorf("Nome = %q, want the band strategy's single line", records[0].Nome)
	}
	if records[0].Descricao != "" {
		t.Errorf("Descricao = %q, want empty", records[0].Descricao)
	}
}

func TestExtractRows(t *testing.T) {
	p := New(Config{}, nil)
	rows := []entity.SheetRow{
		{Index: 2, Nome: "Mesa Lyon", Codigo: "ML-77", Preco: "450"},
		{Index: 3, Nome: "", Codigo: "X-1"},
	}
	records := p.ExtractRows(rows)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Nome != "Mesa Lyon" || records[0].PrecoCentavos != 45000 {
		t.Errorf("record = %+v", records[0])
	}
}
