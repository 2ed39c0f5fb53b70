// Package geometry provides the 2D primitives the extraction core uses to
// reason about element positions: points, sizes and axis-aligned bounding
// boxes in page space (origin top-left, Y grows downward) or sheet space
// (Y is the row index, X the column index).
package geometry

import "math"

// Point represents a 2D point.
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Size represents a width/height extent.
type Size struct {
	W, H float64
}

// Area returns W*H.
func (s Size) Area() float64 {
	return s.W * s.H
}

// BBox represents an axis-aligned bounding box.
type BBox struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// NewBBox creates a bounding box from two corner coordinates in any order.
func NewBBox(x1, y1, x2, y2 float64) BBox {
	return BBox{
		MinX: math.Min(x1, x2),
		MinY: math.Min(y1, y2),
		MaxX: math.Max(x1, x2),
		MaxY: math.Max(y1, y2),
	}
}

// Width returns the horizontal extent.
func (b BBox) Width() float64 {
	return b.MaxX - b.MinX
}

// Height returns the vertical extent.
func (b BBox) Height() float64 {
	return b.MaxY - b.MinY
}

// Size returns the extent as a Size.
func (b BBox) Size() Size {
	return Size{W: b.Width(), H: b.Height()}
}

// Area returns the box area.
func (b BBox) Area() float64 {
	return b.Width() * b.Height()
}

// Center returns the center point.
func (b BBox) Center() Point {
	return Point{
		X: (b.MinX + b.MaxX) / 2,
		Y: (b.MinY + b.MaxY) / 2,
	}
}

// Contains checks whether a point lies inside the box.
func (b BBox) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX &&
		p.Y >= b.MinY && p.Y <= b.MaxY
}

// Union returns the smallest box covering both boxes.
func (b BBox) Union(other BBox) BBox {
	return BBox{
		MinX: math.Min(b.MinX, other.MinX),
		MinY: math.Min(b.MinY, other.MinY),
		MaxX: math.Max(b.MaxX, other.MaxX),
		MaxY: math.Max(b.MaxY, other.MaxY),
	}
}

// Empty reports whether the box has zero area.
func (b BBox) Empty() bool {
	return b.MaxX <= b.MinX || b.MaxY <= b.MinY
}
