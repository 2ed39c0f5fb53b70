package entity

import (
	"strings"

	"github.com/Kurai777/Alda-oficial/internal/geometry"
)

// ElementKind discriminates the two raw element flavors a source adapter emits.
type ElementKind string

const (
	KindText  ElementKind = "text"
	KindImage ElementKind = "image"
)

// PositionedElement represents one raw perceivable unit for data transfer
// between an element source adapter and the extraction core: a recognized
// text line or an embedded image, with its position in page or sheet space.
// For spreadsheet rows, Y is the row index and X the column index.
// Elements are immutable once emitted and owned by the run that produced them.
type PositionedElement struct {
	Kind       ElementKind    `json:"kind"`
	Text       string         `json:"text,omitempty"`
	Center     geometry.Point `json:"center"`
	Extent     geometry.Size  `json:"extent"`
	Confidence float64        `json:"confidence,omitempty"`
	Page       int            `json:"page"`
}

// EffectiveConfidence treats an absent confidence as full confidence, the
// convention for spreadsheet-sourced elements.
func (e PositionedElement) EffectiveConfidence() float64 {
	if e.Confidence == 0 {
		return 1.0
	}
	return e.Confidence
}

// Valid reports whether the element is well formed enough to enter the core.
// Malformed elements are dropped silently, never abort a page.
func (e PositionedElement) Valid() bool {
	if e.Kind == KindText && strings.TrimSpace(e.Text) == "" {
		return false
	}
	return e.Kind == KindText || e.Kind == KindImage
}

// Area returns the bounding-box area, the weak importance signal used by
// anchor selection.
func (e PositionedElement) Area() float64 {
	return e.Extent.Area()
}
