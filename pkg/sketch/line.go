package sketch

import (
	"math"

	"github.com/chazu/contour/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ Curve = (*Line)(nil)

// Line is a straight segment between two points. It owns no DoFs of its own.
type Line struct {
	Base
	start, end *Point
}

// NewLine creates a segment from start to end.
func NewLine(start, end *Point) *Line {
	return &Line{Base: newBase("Line"), start: start, end: end}
}

// Start returns the start point.
func (l *Line) Start() *Point { return l.start }

// End returns the end point.
func (l *Line) End() *Point { return l.end }

// Direction returns end - start in plane coordinates.
func (l *Line) Direction() v2.Vec {
	return l.end.Coords().Sub(l.start.Coords())
}

// Length returns the segment length.
func (l *Line) Length() float64 {
	d := l.Direction()
	return math.Hypot(d.X, d.Y)
}

// MinDist returns the distance between p and the segment in 3D.
func (l *Line) MinDist(p v3.Vec) float64 {
	return kernel.SegmentDistance(l.start.Value3D(), l.end.Value3D(), p)
}

// Hash folds the endpoint DoFs: the line's geometry changes with them.
func (l *Line) Hash() uint64 {
	return HashValues(l.start.x, l.start.y, l.end.x, l.end.y)
}

func (l *Line) Dependencies() []Entity { return uniqueDeps(l.start, l.end) }

func (l *Line) ReplaceDependency(old, repl Entity) {
	substitutePoint(l, &l.start, old, repl)
	substitutePoint(l, &l.end, old, repl)
}

func (l *Line) Clone() Entity {
	return &Line{Base: l.cloneBase(), start: l.start, end: l.end}
}

// ScriptCommand references both endpoints:
//
//	Line( 3, 1, 2, layer standard )
func (l *Line) ScriptCommand(em Emitter) Command {
	return command(l, em, []Entity{l.start, l.end})
}
