package sketch

import (
	"fmt"
	"math"
)

// ---------------------------------------------------------------------------
// Dependency substitution helpers
// ---------------------------------------------------------------------------

func substitutePoint(owner Entity, slot **Point, old, repl Entity) {
	if *slot == nil || old != Entity(*slot) {
		return
	}
	p, ok := repl.(*Point)
	if !ok {
		badSubstitute(owner, "point", repl)
	}
	*slot = p
}

func substituteLine(owner Entity, slot **Line, old, repl Entity) {
	if *slot == nil || old != Entity(*slot) {
		return
	}
	l, ok := repl.(*Line)
	if !ok {
		badSubstitute(owner, "line", repl)
	}
	*slot = l
}

func substituteCurve(owner Entity, slot *Curve, old, repl Entity) {
	if *slot == nil || old != Entity(*slot) {
		return
	}
	c, ok := repl.(Curve)
	if !ok {
		badSubstitute(owner, "curve", repl)
	}
	*slot = c
}

// ---------------------------------------------------------------------------
// FixedPoint
// ---------------------------------------------------------------------------

// FixedPoint pins a point to the target coordinates held in its "x" and "y"
// parameters. The targets default to the point's position at construction.
type FixedPoint struct {
	Base
	p *Point
}

// NewFixedPoint pins p at its current position.
func NewFixedPoint(p *Point) *FixedPoint {
	c := &FixedPoint{Base: newBase("FixedPoint"), p: p}
	c.declare("x", Double(p.x))
	c.declare("y", Double(p.y))
	return c
}

// Point returns the constrained point.
func (c *FixedPoint) Point() *Point { return c.p }

func (c *FixedPoint) NConstraints() int { return 2 }

func (c *FixedPoint) ConstraintError(i int) float64 {
	switch i {
	case 0:
		return c.p.x - c.params.Double("x")
	case 1:
		return c.p.y - c.params.Double("y")
	}
	badConstraint(c.TypeName(), i, 2)
	return 0
}

func (c *FixedPoint) Dependencies() []Entity { return uniqueDeps(c.p) }

func (c *FixedPoint) ReplaceDependency(old, repl Entity) {
	substitutePoint(c, &c.p, old, repl)
}

// ScaleSketch scales the target coordinates.
func (c *FixedPoint) ScaleSketch(factor float64) {
	c.params.SetDouble("x", c.params.Double("x")*factor)
	c.params.SetDouble("y", c.params.Double("y")*factor)
}

func (c *FixedPoint) Clone() Entity {
	return &FixedPoint{Base: c.cloneBase(), p: c.p}
}

func (c *FixedPoint) ScriptCommand(em Emitter) Command {
	return command(c, em, []Entity{c.p})
}

// ---------------------------------------------------------------------------
// Horizontal / Vertical
// ---------------------------------------------------------------------------

// Horizontal forces a line to run parallel to the plane's x axis.
type Horizontal struct {
	Base
	line *Line
}

// NewHorizontal constrains line to be horizontal.
func NewHorizontal(line *Line) *Horizontal {
	return &Horizontal{Base: newBase("HorizontalConstraint"), line: line}
}

// Line returns the constrained line.
func (c *Horizontal) Line() *Line { return c.line }

func (c *Horizontal) NConstraints() int { return 1 }

func (c *Horizontal) ConstraintError(i int) float64 {
	if i != 0 {
		badConstraint(c.TypeName(), i, 1)
	}
	return c.line.end.y - c.line.start.y
}

func (c *Horizontal) Dependencies() []Entity { return uniqueDeps(c.line) }

func (c *Horizontal) ReplaceDependency(old, repl Entity) {
	substituteLine(c, &c.line, old, repl)
}

func (c *Horizontal) Clone() Entity {
	return &Horizontal{Base: c.cloneBase(), line: c.line}
}

func (c *Horizontal) ScriptCommand(em Emitter) Command {
	return command(c, em, []Entity{c.line})
}

// Vertical forces a line to run parallel to the plane's y axis.
type Vertical struct {
	Base
	line *Line
}

// NewVertical constrains line to be vertical.
func NewVertical(line *Line) *Vertical {
	return &Vertical{Base: newBase("VerticalConstraint"), line: line}
}

// Line returns the constrained line.
func (c *Vertical) Line() *Line { return c.line }

func (c *Vertical) NConstraints() int { return 1 }

func (c *Vertical) ConstraintError(i int) float64 {
	if i != 0 {
		badConstraint(c.TypeName(), i, 1)
	}
	return c.line.end.x - c.line.start.x
}

func (c *Vertical) Dependencies() []Entity { return uniqueDeps(c.line) }

func (c *Vertical) ReplaceDependency(old, repl Entity) {
	substituteLine(c, &c.line, old, repl)
}

func (c *Vertical) Clone() Entity {
	return &Vertical{Base: c.cloneBase(), line: c.line}
}

func (c *Vertical) ScriptCommand(em Emitter) Command {
	return command(c, em, []Entity{c.line})
}

// ---------------------------------------------------------------------------
// PointOnCurve
// ---------------------------------------------------------------------------

// PointOnCurve keeps a point on a curve. The residual is the curve's minimum
// distance to the point's 3D value.
type PointOnCurve struct {
	Base
	p     *Point
	curve Curve
}

// NewPointOnCurve constrains p to lie on curve.
func NewPointOnCurve(p *Point, curve Curve) *PointOnCurve {
	return &PointOnCurve{Base: newBase("PointOnCurveConstraint"), p: p, curve: curve}
}

// Point returns the constrained point.
func (c *PointOnCurve) Point() *Point { return c.p }

// Curve returns the target curve.
func (c *PointOnCurve) Curve() Curve { return c.curve }

func (c *PointOnCurve) NConstraints() int { return 1 }

func (c *PointOnCurve) ConstraintError(i int) float64 {
	if i != 0 {
		badConstraint(c.TypeName(), i, 1)
	}
	return c.curve.MinDist(c.p.Value3D())
}

func (c *PointOnCurve) Dependencies() []Entity { return uniqueDeps(c.p, c.curve) }

func (c *PointOnCurve) ReplaceDependency(old, repl Entity) {
	substitutePoint(c, &c.p, old, repl)
	substituteCurve(c, &c.curve, old, repl)
}

func (c *PointOnCurve) Clone() Entity {
	return &PointOnCurve{Base: c.cloneBase(), p: c.p, curve: c.curve}
}

// ScriptCommand references the curve first, then the point:
//
//	PointOnCurveConstraint( 5, 3, 4, layer standard )
func (c *PointOnCurve) ScriptCommand(em Emitter) Command {
	return command(c, em, []Entity{c.curve, c.p})
}

// ---------------------------------------------------------------------------
// Tangent
// ---------------------------------------------------------------------------

// Tangent makes two lines meeting at a common point continue into each
// other. For straight segments this means parallel directions; the residual
// is the cross product of the normalized directions.
type Tangent struct {
	Base
	l1, l2 *Line
}

// NewTangent constrains l1 and l2 to be tangent.
func NewTangent(l1, l2 *Line) *Tangent {
	return &Tangent{Base: newBase("TangentConstraint"), l1: l1, l2: l2}
}

// Lines returns the two constrained lines.
func (c *Tangent) Lines() (*Line, *Line) { return c.l1, c.l2 }

// CommonPoint returns the point shared by both lines.
func (c *Tangent) CommonPoint() (*Point, error) {
	for _, a := range []*Point{c.l1.start, c.l1.end} {
		if a == c.l2.start || a == c.l2.end {
			return a, nil
		}
	}
	return nil, fmt.Errorf("sketch: %s: lines do not have a common point", c.TypeName())
}

func (c *Tangent) NConstraints() int { return 1 }

func (c *Tangent) ConstraintError(i int) float64 {
	if i != 0 {
		badConstraint(c.TypeName(), i, 1)
	}
	d1 := c.l1.Direction()
	d2 := c.l2.Direction()
	n1 := math.Hypot(d1.X, d1.Y)
	n2 := math.Hypot(d2.X, d2.Y)
	if n1 == 0 || n2 == 0 {
		return 0
	}
	return (d1.X*d2.Y - d1.Y*d2.X) / (n1 * n2)
}

func (c *Tangent) Dependencies() []Entity { return uniqueDeps(c.l1, c.l2) }

func (c *Tangent) ReplaceDependency(old, repl Entity) {
	substituteLine(c, &c.l1, old, repl)
	substituteLine(c, &c.l2, old, repl)
}

func (c *Tangent) Clone() Entity {
	return &Tangent{Base: c.cloneBase(), l1: c.l1, l2: c.l2}
}

func (c *Tangent) ScriptCommand(em Emitter) Command {
	return command(c, em, []Entity{c.l1, c.l2})
}
