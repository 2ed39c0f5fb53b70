// Package extract turns positioned elements into assembled product records:
// it selects the anchors that start each record, walks the anchor-defined
// regions, and folds per-element classifications into records under the
// field merge policy.
package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Kurai777/Alda-oficial/internal/core/classify"
	"github.com/Kurai777/Alda-oficial/internal/core/grouping"
	"github.com/Kurai777/Alda-oficial/internal/entity"
)

// AssembleByAnchors builds one record per anchor element. The region for
// an anchor runs from the element after it up to the next anchor. Elements
// whose raw text is byte-identical to the anchor's are skipped so a title
// never re-classifies into its own body. An anchor with an empty region
// still yields a minimal name-only record.
func AssembleByAnchors(elements []entity.PositionedElement, anchors []int, cls *classify.Classifier, page int) []entity.Record {
	records := make([]entity.Record, 0, len(anchors))
	for n, idx := range anchors {
		end := len(elements)
		if n+1 < len(anchors) {
			end = anchors[n+1]
		}
		records = append(records, assembleRegion(elements[idx], elements[idx+1:end], cls, page))
	}
	return records
}

// AssembleByLines is the fallback assembly over grouped lines: each group's
// concatenated text is one classification unit.
func AssembleByLines(groups []grouping.Group, anchors []int, cls *classify.Classifier, page int) []entity.Record {
	records := make([]entity.Record, 0, len(anchors))
	for n, idx := range anchors {
		end := len(groups)
		if n+1 < len(anchors) {
			end = anchors[n+1]
		}

		name := groups[idx].Text()
		rec := newRecord(name, cls, page)
		for _, g := range groups[idx+1 : end] {
			text := g.Text()
			if text == "" || text == name {
				continue
			}
			applyClassification(&rec, cls.Classify(text), text)
		}
		records = append(records, rec)
	}
	return records
}

func assembleRegion(anchor entity.PositionedElement, body []entity.PositionedElement, cls *classify.Classifier, page int) entity.Record {
	name := strings.TrimSpace(anchor.Text)
	rec := newRecord(name, cls, page)
	for _, el := range body {
		if el.Kind != entity.KindText {
			continue
		}
		text := strings.TrimSpace(el.Text)
		if text == "" || text == name {
			continue
		}
		applyClassification(&rec, cls.Classify(text), text)
	}
	return rec
}

// newRecord starts a record from its anchor text. The category read from
// the anchor itself counts as the first writer.
func newRecord(name string, cls *classify.Classifier, page int) entity.Record {
	rec := entity.Record{Nome: name, Pagina: page}
	if cat, ok := cls.MatchCategory(name); ok {
		rec.Categoria = cat
	}
	return rec
}

// applyClassification folds one classified element into the record:
// price and category are first-writer-wins, the list fields are ordered
// set unions, description appends. Noise contributes nothing.
func applyClassification(rec *entity.Record, cl classify.Classification, raw string) {
	switch cl.Label {
	case classify.LabelPrice:
		if rec.PrecoCentavos == 0 && cl.PrecoCentavos > 0 {
			rec.PrecoCentavos = cl.PrecoCentavos
		}
	case classify.LabelCode:
		appendUnique(&rec.Codigos, strings.ToUpper(cl.Codigo))
	case classify.LabelColor, classify.LabelMaterial:
		for _, c := range cl.Cores {
			appendUnique(&rec.Cores, capitalizeFirst(c))
		}
		for _, m := range cl.Materiais {
			appendUnique(&rec.Materiais, capitalizeFirst(m))
		}
	case classify.LabelCategory:
		if rec.Categoria == "" {
			rec.Categoria = cl.Categoria
		}
	case classify.LabelDescription:
		if rec.Descricao == "" {
			rec.Descricao = raw
		} else {
			rec.Descricao += " " + raw
		}
	case classify.LabelNoise:
	}
}

// appendUnique inserts v preserving first-seen order, dropping duplicates.
func appendUnique(set *[]string, v string) {
	if v == "" {
		return
	}
	for _, existing := range *set {
		if existing == v {
			return
		}
	}
	*set = append(*set, v)
}

// capitalizeFirst upper-cases the first rune and lower-cases the rest:
// "cromado" -> "Cromado", "aço" -> "Aço", "MDF" -> "Mdf".
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
