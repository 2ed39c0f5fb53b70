// Package grouping partitions positioned elements into candidate record
// groups. Two interchangeable strategies are provided; neither dominates
// across catalog layouts, so the pipeline runs both and arbitrates by
// outcome.
package grouping

import (
	"math"
	"sort"
	"strings"

	"github.com/Kurai777/Alda-oficial/internal/entity"
	"github.com/Kurai777/Alda-oficial/internal/geometry"
)

// Group is an ordered cluster of elements judged to belong to one visual
// line or record region. Members are kept in reading order; Bounds is the
// aggregate bounding box. Groups are consumed by anchor selection and never
// persisted.
type Group struct {
	Members []entity.PositionedElement
	Bounds  geometry.BBox
}

// Text joins the text members in reading order with single spaces.
func (g Group) Text() string {
	parts := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		if m.Kind == entity.KindText && strings.TrimSpace(m.Text) != "" {
			parts = append(parts, strings.TrimSpace(m.Text))
		}
	}
	return strings.Join(parts, " ")
}

// Strategy partitions elements into groups under a distance threshold.
// Implementations must be deterministic: ties resolve by insertion order.
type Strategy interface {
	Name() string
	Group(elements []entity.PositionedElement, distance float64) []Group
}

// LineBand clusters by vertical bands: elements sorted by Y join the
// running group while the gap to the group's last member stays under the
// threshold, then each band is ordered left to right. O(n log n).
type LineBand struct{}

func (LineBand) Name() string { return "line-band" }

func (LineBand) Group(elements []entity.PositionedElement, distance float64) []Group {
	if len(elements) == 0 {
		return nil
	}
	sorted := make([]entity.PositionedElement, len(elements))
	copy(sorted, elements)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Center.Y < sorted[j].Center.Y
	})

	var groups []Group
	current := []entity.PositionedElement{sorted[0]}
	for _, el := range sorted[1:] {
		last := current[len(current)-1]
		if math.Abs(el.Center.Y-last.Center.Y) < distance {
			current = append(current, el)
			continue
		}
		groups = append(groups, finishBand(current))
		current = []entity.PositionedElement{el}
	}
	return append(groups, finishBand(current))
}

// finishBand orders a band left to right and seals its bounds.
func finishBand(members []entity.PositionedElement) Group {
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Center.X < members[j].Center.X
	})
	return Group{Members: members, Bounds: boundsOf(members)}
}

// Proximity grows clusters transitively: an ungrouped element joins when
// its Euclidean distance to any current member is within the threshold,
// so non-axis-aligned layouts still cluster. O(n²) worst case.
type Proximity struct{}

func (Proximity) Name() string { return "proximity" }

func (Proximity) Group(elements []entity.PositionedElement, distance float64) []Group {
	if len(elements) == 0 {
		return nil
	}
	used := make([]bool, len(elements))
	var groups []Group
	for i := range elements {
		if used[i] {
			continue
		}
		used[i] = true
		members := []entity.PositionedElement{elements[i]}
		for {
			grew := false
			for j := range elements {
				if used[j] {
					continue
				}
				if withinAny(elements[j], members, distance) {
					used[j] = true
					members = append(members, elements[j])
					grew = true
				}
			}
			if !grew {
				break
			}
		}
		groups = append(groups, finishRegion(members))
	}
	return groups
}

func withinAny(el entity.PositionedElement, members []entity.PositionedElement, distance float64) bool {
	for _, m := range members {
		if el.Center.Distance(m.Center) <= distance {
			return true
		}
	}
	return false
}

// finishRegion orders a 2D cluster top-to-bottom, then left-to-right.
func finishRegion(members []entity.PositionedElement) Group {
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].Center.Y != members[j].Center.Y {
			return members[i].Center.Y < members[j].Center.Y
		}
		return members[i].Center.X < members[j].Center.X
	})
	return Group{Members: members, Bounds: boundsOf(members)}
}

func boundsOf(members []entity.PositionedElement) geometry.BBox {
	b := elementBounds(members[0])
	for _, m := range members[1:] {
		b = b.Union(elementBounds(m))
	}
	return b
}

func elementBounds(e entity.PositionedElement) geometry.BBox {
	return geometry.NewBBox(
		e.Center.X-e.Extent.W/2, e.Center.Y-e.Extent.H/2,
		e.Center.X+e.Extent.W/2, e.Center.Y+e.Extent.H/2,
	)
}
