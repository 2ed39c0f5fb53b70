// Package export renders run results into their outward forms: the JSON
// product document every run emits, and the optional consolidated XLSX
// product sheet. The JSON document is validated against the product schema
// before it leaves the system.
package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Kurai777/Alda-oficial/internal/entity"
)

// Product is the wire form of one extracted record. Optional scalars render
// as empty strings and optional lists as empty arrays, never null.
type Product struct {
	Nome            string   `json:"nome"`
	Preco           string   `json:"preco"`
	CodigoComercial []string `json:"codigo_comercial"`
	Cores           []string `json:"cores"`
	Materiais       []string `json:"materiais"`
	Categoria       string   `json:"categoria"`
	Descricao       string   `json:"descricao"`
	Imagem          string   `json:"imagem"`
	Pagina          int      `json:"pagina"`
}

// FromRecord converts an assembled record to its wire form.
func FromRecord(rec entity.Record) Product {
	return Product{
		Nome:            rec.Nome,
		Preco:           entity.FormatCentavos(rec.PrecoCentavos),
		CodigoComercial: append([]string{}, rec.Codigos...),
		Cores:           append([]string{}, rec.Cores...),
		Materiais:       append([]string{}, rec.Materiais...),
		Categoria:       rec.Categoria,
		Descricao:       rec.Descricao,
		Imagem:          rec.Imagem.DataURI(),
		Pagina:          rec.Pagina,
	}
}

// Service renders product documents and workbooks.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// JSON renders the run's valid records as one product document and
// validates it against the product schema.
func (s *Service) JSON(res *entity.RunResult) ([]byte, error) {
	records := res.ValidRecords()
	products := make([]Product, 0, len(records))
	for _, rec := range records {
		products = append(products, FromRecord(rec))
	}

	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal products: %w", err)
	}
	if err := validateDocument(data); err != nil {
		return nil, fmt.Errorf("product document rejected: %w", err)
	}

	s.logger.Info("export.json.ok",
		"run_id", res.RunID.String(),
		"products", len(products),
		"bytes", len(data),
	)
	return data, nil
}

// XLSX renders the consolidated product list as a workbook. Images stay in
// the JSON document; the sheet is a human-readable summary.
func (s *Service) XLSX(products []Product) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Produtos"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Nome",
		"Código Comercial",
		"Preço",
		"Categoria",
		"Cores",
		"Materiais",
		"Descrição",
		"Página",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, p := range products {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, p.Nome)
		write(2, strings.Join(p.CodigoComercial, ", "))
		write(3, p.Preco)
		write(4, p.Categoria)
		write(5, strings.Join(p.Cores, ", "))
		write(6, strings.Join(p.Materiais, ", "))
		write(7, truncate(p.Descricao, 140))
		write(8, p.Pagina)
		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 32) // nome
	_ = f.SetColWidth(sheet, "B", "B", 24) // códigos
	_ = f.SetColWidth(sheet, "C", "C", 14) // preço
	_ = f.SetColWidth(sheet, "D", "D", 16) // categoria
	_ = f.SetColWidth(sheet, "E", "F", 24) // cores, materiais
	_ = f.SetColWidth(sheet, "G", "G", 48) // descrição
	_ = f.SetColWidth(sheet, "H", "H", 8)  // página

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"products", len(products),
		"bytes", buf.Len(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
