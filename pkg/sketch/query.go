package sketch

import (
	"math"

	"github.com/chazu/contour/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// PointAt returns the point closest to (x, y) within tol, or nil.
func (s *Sketch) PointAt(x, y, tol float64) *Point {
	var best *Point
	bestD := math.Inf(1)
	for _, p := range s.Points() {
		c := p.Coords()
		d := math.Hypot(c.X-x, c.Y-y)
		if d <= tol && d < bestD {
			best, bestD = p, d
		}
	}
	return best
}

// LineAt returns the line closest to (x, y) within tol, or nil.
func (s *Sketch) LineAt(x, y, tol float64) *Line {
	var best *Line
	bestD := math.Inf(1)
	q := v2.Vec{X: x, Y: y}
	for _, l := range s.Lines() {
		d := kernel.SegmentDistance2D(l.start.Coords(), l.end.Coords(), q)
		if d <= tol && d < bestD {
			best, bestD = l, d
		}
	}
	return best
}

// EntitiesInsideRect returns the entities lying entirely within the
// rectangle spanned by the two corners. An entity is inside when every point
// it depends on, directly or transitively, is inside. Entities without any
// point are never selected.
func (s *Sketch) EntitiesInsideRect(x1, y1, x2, y2 float64) []Entity {
	lo := v2.Vec{X: min(x1, x2), Y: min(y1, y2)}
	hi := v2.Vec{X: max(x1, x2), Y: max(y1, y2)}
	inside := func(p *Point) bool {
		c := p.Coords()
		return c.X >= lo.X && c.X <= hi.X && c.Y >= lo.Y && c.Y <= hi.Y
	}

	var out []Entity
	for _, e := range s.order {
		pts := pointsOf(e)
		if len(pts) == 0 {
			continue
		}
		all := true
		for _, p := range pts {
			if !inside(p) {
				all = false
				break
			}
		}
		if all {
			out = append(out, e)
		}
	}
	return out
}

// pointsOf collects e itself if it is a point, plus every point reachable
// through its dependencies.
func pointsOf(e Entity) []*Point {
	seen := make(map[Entity]bool)
	var pts []*Point
	var walk func(Entity)
	walk = func(e Entity) {
		if seen[e] {
			return
		}
		seen[e] = true
		if p, ok := e.(*Point); ok {
			pts = append(pts, p)
		}
		for _, d := range e.Dependencies() {
			walk(d)
		}
	}
	walk(e)
	return pts
}
