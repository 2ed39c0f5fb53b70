package ocr

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/Kurai777/Alda-oficial/internal/entity"
	"github.com/Kurai777/Alda-oficial/internal/geometry"
)

// Line-level hOCR classes emitted by Tesseract 4+.
var hocrLineClasses = map[string]bool{
	"ocr_line":      true,
	"ocr_header":    true,
	"ocr_caption":   true,
	"ocr_textfloat": true,
}

// parseHOCR extracts line elements from Tesseract hOCR output. Lines carry
// a title attribute like "bbox 451 216 849 247; baseline 0 -8"; word spans
// carry "x_wconf NN" confidences that are averaged per line. A line without
// word confidences keeps confidence zero, meaning unknown.
func parseHOCR(data []byte, page int) ([]entity.PositionedElement, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse hocr: %w", err)
	}

	var elements []entity.PositionedElement
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hocrLineClasses[attrVal(n, "class")] {
			if el, ok := hocrLine(n, page); ok {
				elements = append(elements, el)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return elements, nil
}

func hocrLine(n *html.Node, page int) (entity.PositionedElement, bool) {
	box, ok := titleBBox(attrVal(n, "title"))
	if !ok {
		return entity.PositionedElement{}, false
	}
	text := strings.Join(strings.Fields(collectText(n)), " ")
	if text == "" {
		return entity.PositionedElement{}, false
	}

	var conf float64
	confN := 0
	var confWalk func(m *html.Node)
	confWalk = func(m *html.Node) {
		if m.Type == html.ElementNode && attrVal(m, "class") == "ocrx_word" {
			if c, ok := titleWConf(attrVal(m, "title")); ok {
				conf += c
				confN++
			}
		}
		for c := m.FirstChild; c != nil; c = c.NextSibling {
			confWalk(c)
		}
	}
	confWalk(n)

	el := entity.PositionedElement{
		Kind:   entity.KindText,
		Text:   text,
		Center: box.Center(),
		Extent: box.Size(),
		Page:   page,
	}
	if confN > 0 {
		el.Confidence = conf / float64(confN) / 100
	}
	return el, true
}

// titleBBox pulls "bbox x0 y0 x1 y1" out of an hOCR title attribute.
func titleBBox(title string) (geometry.BBox, bool) {
	for _, prop := range strings.Split(title, ";") {
		fields := strings.Fields(prop)
		if len(fields) != 5 || fields[0] != "bbox" {
			continue
		}
		var vals [4]float64
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return geometry.BBox{}, false
			}
			vals[i] = v
		}
		return geometry.NewBBox(vals[0], vals[1], vals[2], vals[3]), true
	}
	return geometry.BBox{}, false
}

func titleWConf(title string) (float64, bool) {
	for _, prop := range strings.Split(title, ";") {
		fields := strings.Fields(prop)
		if len(fields) == 2 && fields[0] == "x_wconf" {
			v, err := strconv.ParseFloat(fields[1], 64)
			return v, err == nil
		}
	}
	return 0, false
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collectText(n *html.Node) string {
	var b strings.Builder
	var walk func(m *html.Node)
	walk = func(m *html.Node) {
		if m.Type == html.TextNode {
			b.WriteString(m.Data)
			b.WriteString(" ")
		}
		for c := m.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
