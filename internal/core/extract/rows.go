package extract

import (
	"strings"

	"github.com/Kurai777/Alda-oficial/internal/core/classify"
	"github.com/Kurai777/Alda-oficial/internal/entity"
)

// emptyCellPlaceholder marks cells the upstream exporter blanked out.
const emptyCellPlaceholder = "_EMPTY_"

// unknownCodeSentinel marks rows whose code could not be resolved upstream;
// such rows are not products.
const unknownCodeSentinel = "UNKNOWN-CODE"

// RowValid reports whether a sheet row is a data row worth assembling.
// Rows missing a name or code, carrying placeholder values, or whose code
// cell is really a header label are excluded.
func RowValid(row entity.SheetRow) bool {
	nome := strings.TrimSpace(row.Nome)
	codigo := strings.TrimSpace(row.Codigo)
	if nome == "" || codigo == "" {
		return false
	}
	if nome == emptyCellPlaceholder || codigo == emptyCellPlaceholder {
		return false
	}
	if strings.EqualFold(codigo, unknownCodeSentinel) {
		return false
	}
	if classify.LooksLikeCodeHeader(codigo) || classify.LooksLikeCodeHeader(nome) {
		return false
	}
	return true
}

// AssembleRows builds one record per valid sheet row. The column schema is
// fixed, so every valid row is its own anchor and there is no clustering
// ambiguity. Color, material and category are harvested from the name and
// description cells; the extra cells (local, fornecedor, quantidade) fold
// into the description as labeled segments so the output schema stays flat.
func AssembleRows(rows []entity.SheetRow, cls *classify.Classifier) []entity.Record {
	var records []entity.Record
	for _, row := range rows {
		if !RowValid(row) {
			continue
		}

		nome := strings.TrimSpace(row.Nome)
		rec := newRecord(nome, cls, row.Index)

		appendUnique(&rec.Codigos, strings.ToUpper(strings.TrimSpace(row.Codigo)))

		if cents, ok := parseCellPrice(row.Preco); ok && cls.PriceBounds().Plausible(cents) {
			rec.PrecoCentavos = cents
		}

		descricao := strings.TrimSpace(row.Descricao)
		if descricao != "" && descricao != emptyCellPlaceholder {
			rec.Descricao = descricao
		}
		for _, seg := range []struct{ label, value string }{
			{"Local", row.Local},
			{"Fornecedor", row.Fornecedor},
			{"Qtd", row.Quantidade},
		} {
			v := strings.TrimSpace(seg.value)
			if v == "" || v == emptyCellPlaceholder {
				continue
			}
			segment := seg.label + ": " + v
			if rec.Descricao == "" {
				rec.Descricao = segment
			} else {
				rec.Descricao += " | " + segment
			}
		}

		for _, source := range []string{nome, descricao} {
			for _, c := range cls.MatchColors(source) {
				appendUnique(&rec.Cores, capitalizeFirst(c))
			}
			for _, m := range cls.MatchMaterials(source) {
				appendUnique(&rec.Materiais, capitalizeFirst(m))
			}
		}
		if rec.Categoria == "" {
			if cat, ok := cls.MatchCategory(descricao); ok {
				rec.Categoria = cat
			}
		}

		records = append(records, rec)
	}
	return records
}

// parseCellPrice handles the forms price cells arrive in: a bare Brazilian
// number ("1.234,56") or one already carrying the currency marker.
func parseCellPrice(cell string) (int64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" || s == emptyCellPlaceholder {
		return 0, false
	}
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(s, "R$"), "r$"))
	return classify.ParseAmount(s)
}
