package extract

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Kurai777/Alda-oficial/internal/core/classify"
	"github.com/Kurai777/Alda-oficial/internal/core/grouping"
	"github.com/Kurai777/Alda-oficial/internal/entity"
)

// SelectAnchors picks the elements that start a new record on one page.
// Elements are expected in top-to-bottom reading order. An element anchors
// when its text matches a category keyword, or when it sits in the top 20%
// of text elements by bounding-box area and its text is longer than 3
// runes. Zero anchors is a valid outcome, not an error.
func SelectAnchors(elements []entity.PositionedElement, cls *classify.Classifier) []int {
	var textIdx []int
	for i, el := range elements {
		if el.Kind == entity.KindText {
			textIdx = append(textIdx, i)
		}
	}
	if len(textIdx) == 0 {
		return nil
	}

	// Top fifth by area, at least one element. Ties keep insertion order.
	byArea := make([]int, len(textIdx))
	copy(byArea, textIdx)
	sort.SliceStable(byArea, func(a, b int) bool {
		return elements[byArea[a]].Area() > elements[byArea[b]].Area()
	})
	k := len(textIdx) / 5
	if k < 1 {
		k = 1
	}
	topArea := make(map[int]bool, k)
	for _, i := range byArea[:k] {
		topArea[i] = true
	}

	var anchors []int
	for _, i := range textIdx {
		text := strings.TrimSpace(elements[i].Text)
		if _, ok := cls.MatchCategory(text); ok {
			anchors = append(anchors, i)
			continue
		}
		if topArea[i] && utf8.RuneCountInString(text) > 3 {
			anchors = append(anchors, i)
		}
	}
	return anchors
}

// SelectLineAnchors is the fallback policy used when no element anchors
// fire on a page: a group starts a record when its concatenated text
// matches a category keyword, or begins with an upper-case rune and is
// longer than 3 runes.
func SelectLineAnchors(groups []grouping.Group, cls *classify.Classifier) []int {
	var anchors []int
	for i, g := range groups {
		text := g.Text()
		if _, ok := cls.MatchCategory(text); ok {
			anchors = append(anchors, i)
			continue
		}
		if utf8.RuneCountInString(text) > 3 && startsUpper(text) {
			anchors = append(anchors, i)
		}
	}
	return anchors
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
