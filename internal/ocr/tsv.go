package ocr

import (
	"strconv"
	"strings"

	"github.com/Kurai777/Alda-oficial/internal/entity"
	"github.com/Kurai777/Alda-oficial/internal/geometry"
)

// Tesseract TSV columns:
//
//	level page_num block_num par_num line_num word_num left top width height conf text
//
// Word rows are level 5; structural rows carry conf -1 and no text.
const (
	tsvLevel  = 0
	tsvBlock  = 2
	tsvPar    = 3
	tsvLine   = 4
	tsvLeft   = 6
	tsvTop    = 7
	tsvWidth  = 8
	tsvHeight = 9
	tsvConf   = 10
	tsvText   = 11
)

// parseTSV folds word rows into line elements: text joined in word order,
// box as the union of the word boxes, confidence as the word mean. Lines
// come out in first-seen order. Malformed rows are skipped, never fatal.
func parseTSV(data []byte, page int) []entity.PositionedElement {
	type lineAcc struct {
		texts []string
		box   geometry.BBox
		conf  float64
		n     int
	}
	var order []string
	acc := map[string]*lineAcc{}

	rows := strings.Split(string(data), "\n")
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		row = strings.TrimRight(row, "\r")
		if row == "" {
			continue
		}
		cols := strings.Split(row, "\t")
		if len(cols) < 12 || cols[tsvLevel] != "5" {
			continue
		}
		text := strings.TrimSpace(cols[tsvText])
		if text == "" {
			continue
		}
		conf, err := strconv.ParseFloat(cols[tsvConf], 64)
		if err != nil || conf < 0 {
			continue
		}
		left, err1 := strconv.Atoi(cols[tsvLeft])
		top, err2 := strconv.Atoi(cols[tsvTop])
		width, err3 := strconv.Atoi(cols[tsvWidth])
		height, err4 := strconv.Atoi(cols[tsvHeight])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}

		key := cols[tsvBlock] + "/" + cols[tsvPar] + "/" + cols[tsvLine]
		box := geometry.NewBBox(float64(left), float64(top), float64(left+width), float64(top+height))
		a, seen := acc[key]
		if !seen {
			a = &lineAcc{box: box}
			acc[key] = a
			order = append(order, key)
		} else {
			a.box = a.box.Union(box)
		}
		a.texts = append(a.texts, text)
		a.conf += conf
		a.n++
	}

	elements := make([]entity.PositionedElement, 0, len(order))
	for _, key := range order {
		a := acc[key]
		elements = append(elements, entity.PositionedElement{
			Kind:       entity.KindText,
			Text:       strings.Join(a.texts, " "),
			Center:     a.box.Center(),
			Extent:     a.box.Size(),
			Confidence: a.conf / float64(a.n) / 100,
			Page:       page,
		})
	}
	return elements
}
