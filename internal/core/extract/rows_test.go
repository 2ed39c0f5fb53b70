package extract

import (
	"reflect"
	"testing"

	"github.com/Kurai777/Alda-oficial/internal/core/classify"
	"github.com/Kurai777/Alda-oficial/internal/entity"
)

func TestRowValid(t *testing.T) {
	tests := []struct {
		name string
		row  entity.SheetRow
		want bool
	}{
		{"complete row", entity.SheetRow{Nome: "Cadeira Bristol", Codigo: "CB-100"}, true},
		{"short code still valid", entity.SheetRow{Nome: "Poltrona Ria", Codigo: "PR-9"}, true},
		{"missing name", entity.SheetRow{Nome: "  ", Codigo: "CB-100"}, false},
		{"missing code", entity.SheetRow{Nome: "Cadeira Bristol", Codigo: ""}, false},
		{"placeholder name", entity.SheetRow{Nome: "_EMPTY_", Codigo: "CB-100"}, false},
		{"placeholder code", entity.SheetRow{Nome: "Cadeira Bristol", Codigo: "_EMPTY_"}, false},
		{"unknown code sentinel", entity.SheetRow{Nome: "Cadeira Bristol", Codigo: "UNKNOWN-CODE"}, false},
		{"unknown code lowercase", entity.SheetRow{Nome: "Cadeira Bristol", Codigo: "unknown-code"}, false},
		{"header row", entity.SheetRow{Nome: "Nome", Codigo: "Código"}, false},
		{"header code with dot", entity.SheetRow{Nome: "Cadeira Bristol", Codigo: "Ref."}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RowValid(tt.row); got != tt.want {
				t.Errorf("RowValid(%+v) = %v, want %v", tt.row, got, tt.want)
			}
		})
	}
}

func TestAssembleRows(t *testing.T) {
	cls := classify.New(classify.Config{})
	rows := []entity.SheetRow{
		{
			Index:      7,
			Nome:       "Sofá Living 3 lugares",
			Local:      "Depósito 2",
			Fornecedor: "Alda Móveis",
			Quantidade: "4",
			Codigo:     "sf-2211",
			Descricao:  "estrutura de madeira, tecido linho bege",
			Preco:      "R$ 3.450,00",
		},
	}
	records := AssembleRows(rows, cls)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Nome != "Sofá Living 3 lugares" {
		t.Errorf("Nome = %q", rec.Nome)
	}
	if rec.Categoria != "Sofá" {
		t.Errorf("Categoria = %q, want Sofá", rec.Categoria)
	}
	if !reflect.DeepEqual(rec.Codigos, []string{"SF-2211"}) {
		t.Errorf("Codigos = %v", rec.Codigos)
	}
	if rec.PrecoCentavos != 345000 {
		t.Errorf("PrecoCentavos = %d, want 345000", rec.PrecoCentavos)
	}
	want := "estrutura de madeira, tecido linho bege | Local: Depósito 2 | Fornecedor: Alda Móveis | Qtd: 4"
	if rec.Descricao != want {
		t.Errorf("Descricao = %q, want %q", rec.Descricao, want)
	}
	if !reflect.DeepEqual(rec.Cores, []string{"Bege"}) {
		t.Errorf("Cores = %v", rec.Cores)
	}
	if !reflect.DeepEqual(rec.Materiais, []string{"Madeira", "Tecido", "Linho"}) {
		t.Errorf("Materiais = %v", rec.Materiais)
	}
	if rec.Pagina != 7 {
		t.Errorf("Pagina = %d, want row index 7", rec.Pagina)
	}
}

func TestAssembleRowsSkipsInvalid(t *testing.T) {
	cls := classify.New(classify.Config{})
	rows := []entity.SheetRow{
		{Index: 2, Nome: "Cadeira Bristol", Codigo: "UNKNOWN-CODE", Preco: "300"},
		{Index: 3, Nome: "_EMPTY_", Codigo: "CB-100"},
		{Index: 4, Nome: "Nome", Codigo: "Código"},
		{Index: 5, Nome: "Mesa Lyon", Codigo: "ml-77", Preco: "450"},
	}
	records := AssembleRows(rows, cls)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Nome != "Mesa Lyon" || rec.Pagina != 5 {
		t.Errorf("kept the wrong row: %+v", rec)
	}
	if !reflect.DeepEqual(rec.Codigos, []string{"ML-77"}) {
		t.Errorf("Codigos = %v", rec.Codigos)
	}
	if rec.PrecoCentavos != 45000 {
		t.Errorf("PrecoCentavos = %d, want 45000", rec.PrecoCentavos)
	}
}

func TestAssembleRowsCategoryFromDescription(t *testing.T) {
	cls := classify.New(classify.Config{})
	rows := []entity.SheetRow{
		{Index: 2, Nome: "Conjunto Diamante", Codigo: "CD-41", Descricao: "mesa lateral redonda"},
	}
	records := AssembleRows(rows, cls)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Categoria != "Mesa" {
		t.Errorf("Categoria = %q, want Mesa from description", records[0].Categoria)
	}
}

func TestAssembleRowsImplausiblePriceDropped(t *testing.T) {
	cls := classify.New(classify.Config{})
	rows := []entity.SheetRow{
		{Index: 2, Nome: "Banqueta Ipê", Codigo: "BI-3", Preco: "R$ 0,01"},
	}
	records := AssembleRows(rows, cls)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].PrecoCentavos != 0 {
		t.Errorf("PrecoCentavos = %d, want 0 for implausible cell", records[0].PrecoCentavos)
	}
}

func TestParseCellPrice(t *testing.T) {
	tests := []struct {
		in    string
		cents int64
		ok    bool
	}{
		{"R$ 1.234,56", 123456, true},
		{"r$ 88", 8800, true},
		{"1.234,56", 123456, true},
		{"450", 45000, true},
		{"", 0, false},
		{"_EMPTY_", 0, false},
		{"a combinar", 0, false},
	}
	for _, tt := range tests {
		cents, ok := parseCellPrice(tt.in)
		if ok != tt.ok || cents != tt.cents {
			t.Errorf("parseCellPrice(%q) = (%d, %v), want (%d, %v)", tt.in, cents, ok, tt.cents, tt.ok)
		}
	}
}
