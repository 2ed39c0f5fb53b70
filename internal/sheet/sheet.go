// Package sheet reads product rows and embedded images from XLSX catalogs.
// The column layout is fixed by convention (the upstream exports place nome
// in A, codigo in F, preco in L and so on) but remappable through Config
// for catalogs that deviate.
package sheet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Kurai777/Alda-oficial/constants"
	"github.com/Kurai777/Alda-oficial/internal/artifact"
	"github.com/Kurai777/Alda-oficial/internal/common"
	"github.com/Kurai777/Alda-oficial/internal/entity"
)

// Columns maps the semantic fields to their worksheet column letters.
type Columns struct {
	Nome       string
	Local      string
	Fornecedor string
	Quantidade string
	Codigo     string
	Descricao  string
	Preco      string
}

func (c Columns) withDefaults() Columns {
	def := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	def(&c.Nome, "A")
	def(&c.Local, "B")
	def(&c.Fornecedor, "C")
	def(&c.Quantidade, "E")
	def(&c.Codigo, "F")
	def(&c.Descricao, "G")
	def(&c.Preco, "L")
	return c
}

type Config struct {
	Columns  Columns
	StartRow int // first data row, default 2 (row 1 is the header)
	MaxRows  int // 0 = no limit
}

// workbook is the slice of the excelize API the reader touches. Tests
// substitute a fake.
type workbook interface {
	GetSheetList() []string
	GetRows(sheet string, opts ...excelize.Options) ([][]string, error)
	GetPictureCells(sheet string) ([]string, error)
	GetPictures(sheet, cell string) ([]excelize.Picture, error)
	Close() error
}

type Reader struct {
	cfg    Config
	logger *slog.Logger
	open   func(path string) (workbook, error)
}

func NewReader(cfg Config, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Columns = cfg.Columns.withDefaults()
	if cfg.StartRow <= 0 {
		cfg.StartRow = 2
	}
	return &Reader{
		cfg:    cfg,
		logger: logger,
		open: func(path string) (workbook, error) {
			return excelize.OpenFile(path)
		},
	}
}

// Result carries the rows and embedded images of one workbook.
type Result struct {
	Sheet     string
	Rows      []entity.SheetRow
	Artifacts []*entity.Artifact
	Warnings  []string
	Duration  time.Duration
}

// ReadFile reads the first worksheet into semantic rows plus the embedded
// pictures with their cell anchors. Picture extraction failures degrade to
// warnings; only an unreadable workbook fails the file.
func (r *Reader) ReadFile(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	if format, ok := constants.DetectFormat(path); !ok || format != constants.XLSX {
		return Result{}, fmt.Errorf("%w: %q is not a workbook", common.ErrUnsupportedFormat, path)
	}

	idx, err := r.columnIndexes()
	if err != nil {
		return Result{}, err
	}

	wb, err := r.open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return Result{}, fmt.Errorf("workbook %q has no sheets", path)
	}
	sheet := sheets[0]
	if len(sheets) > 1 {
		r.logger.Debug("sheet.multiple_sheets", "path", path, "using", sheet, "total", len(sheets))
	}

	raw, err := wb.GetRows(sheet)
	if err != nil {
		return Result{}, fmt.Errorf("read rows: %w", err)
	}

	res := Result{Sheet: sheet}
	for i := r.cfg.StartRow - 1; i < len(raw); i++ {
		if r.cfg.MaxRows > 0 && len(res.Rows) >= r.cfg.MaxRows {
			r.logger.Warn("sheet.rows.truncated", "path", path, "limit", r.cfg.MaxRows)
			break
		}
		cells := raw[i]
		res.Rows = append(res.Rows, entity.SheetRow{
			Index:      i + 1,
			Nome:       cellAt(cells, idx.nome),
			Local:      cellAt(cells, idx.local),
			Fornecedor: cellAt(cells, idx.fornecedor),
			Quantidade: cellAt(cells, idx.quantidade),
			Codigo:     cellAt(cells, idx.codigo),
			Descricao:  cellAt(cells, idx.descricao),
			Preco:      cellAt(cells, idx.preco),
		})
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	res.Artifacts, res.Warnings = r.readPictures(ctx, wb, sheet)

	res.Duration = time.Since(start)
	r.logger.Debug("sheet.read.done",
		"path", path,
		"sheet", sheet,
		"rows", len(res.Rows),
		"artifacts", len(res.Artifacts),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// readPictures enumerates embedded pictures with their 1-based cell
// anchors. Undecodable or below-floor images are dropped.
func (r *Reader) readPictures(ctx context.Context, wb workbook, sheet string) ([]*entity.Artifact, []string) {
	cells, err := wb.GetPictureCells(sheet)
	if err != nil {
		return nil, []string{fmt.Sprintf("list pictures: %v", err)}
	}

	var (
		arts     []*entity.Artifact
		warnings []string
	)
	for _, cell := range cells {
		if ctx.Err() != nil {
			return arts, warnings
		}
		col, row, err := excelize.CellNameToCoordinates(cell)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("picture cell %q: %v", cell, err))
			continue
		}
		pics, err := wb.GetPictures(sheet, cell)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("pictures at %s: %v", cell, err))
			continue
		}
		for _, pic := range pics {
			art, err := artifact.Build(pic.File, artifact.DefaultPolicy())
			if err != nil {
				r.logger.Debug("sheet.artifact.rejected", "cell", cell, "error", err)
				continue
			}
			art.Row, art.Col = row, col
			arts = append(arts, art)
		}
	}
	return arts, warnings
}

type colIndexes struct {
	nome, local, fornecedor, quantidade, codigo, descricao, preco int
}

func (r *Reader) columnIndexes() (colIndexes, error) {
	var idx colIndexes
	for _, bind := range []struct {
		letter string
		dst    *int
	}{
		{r.cfg.Columns.Nome, &idx.nome},
		{r.cfg.Columns.Local, &idx.local},
		{r.cfg.Columns.Fornecedor, &idx.fornecedor},
		{r.cfg.Columns.Quantidade, &idx.quantidade},
		{r.cfg.Columns.Codigo, &idx.codigo},
		{r.cfg.Columns.Descricao, &idx.descricao},
		{r.cfg.Columns.Preco, &idx.preco},
	} {
		n, err := excelize.ColumnNameToNumber(bind.letter)
		if err != nil {
			return idx, fmt.Errorf("column %q: %w", bind.letter, err)
		}
		*bind.dst = n - 1
	}
	return idx, nil
}

// cellAt reads a 0-based column from a row, tolerating the ragged rows
// GetRows returns (trailing empty cells are not materialized).
func cellAt(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}
