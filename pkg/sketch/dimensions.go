package sketch

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

const degenerateAngle = 100 * math.Pi

// ---------------------------------------------------------------------------
// FixedDistance
// ---------------------------------------------------------------------------

// FixedDistance holds two points at the distance given by its "distance"
// parameter. With an along direction set, only the component of the
// separation along that direction is measured.
type FixedDistance struct {
	Base
	p1, p2 *Point
	along  *v3.Vec
}

// NewFixedDistance dimensions the distance between p1 and p2. The target
// defaults to their current distance.
func NewFixedDistance(p1, p2 *Point) *FixedDistance {
	c := &FixedDistance{Base: newBase("DistanceConstraint"), p1: p1, p2: p2}
	c.declareDefaults()
	return c
}

// NewFixedDistanceAlong dimensions the separation of p1 and p2 measured
// along dir.
func NewFixedDistanceAlong(p1, p2 *Point, dir v3.Vec) *FixedDistance {
	c := &FixedDistance{Base: newBase("DistanceConstraint"), p1: p1, p2: p2, along: &dir}
	c.declareDefaults()
	return c
}

func (c *FixedDistance) declareDefaults() {
	c.declare("distance", Double(c.Distance()))
	c.declare("dimLineOfs", Double(1))
	c.declare("arrowSize", Double(1))
}

// Points returns the dimensioned points.
func (c *FixedDistance) Points() (*Point, *Point) { return c.p1, c.p2 }

// Along returns the measuring direction, if one is set.
func (c *FixedDistance) Along() (v3.Vec, bool) {
	if c.along == nil {
		return v3.Vec{}, false
	}
	return *c.along, true
}

// Distance returns the current measured distance.
func (c *FixedDistance) Distance() float64 {
	d := c.p2.Value3D().Sub(c.p1.Value3D())
	if c.along != nil && c.along.Length() > 0 {
		return math.Abs(d.Dot(c.along.Normalize()))
	}
	return d.Length()
}

// Target returns the dimension value.
func (c *FixedDistance) Target() float64 { return c.params.Double("distance") }

// SetTarget changes the dimension value.
func (c *FixedDistance) SetTarget(v float64) { c.params.SetDouble("distance", v) }

// Hash folds the target so that edited dimensions invalidate cached results.
func (c *FixedDistance) Hash() uint64 { return HashValues(c.Target()) }

func (c *FixedDistance) NConstraints() int { return 1 }

func (c *FixedDistance) ConstraintError(i int) float64 {
	if i != 0 {
		badConstraint(c.TypeName(), i, 1)
	}
	return c.Distance() - c.Target()
}

func (c *FixedDistance) Dependencies() []Entity { return uniqueDeps(c.p1, c.p2) }

func (c *FixedDistance) ReplaceDependency(old, repl Entity) {
	substitutePoint(c, &c.p1, old, repl)
	substitutePoint(c, &c.p2, old, repl)
}

// ScaleSketch scales the target distance.
func (c *FixedDistance) ScaleSketch(factor float64) {
	c.SetTarget(c.Target() * factor)
}

func (c *FixedDistance) Clone() Entity {
	n := &FixedDistance{Base: c.cloneBase(), p1: c.p1, p2: c.p2}
	if c.along != nil {
		dir := *c.along
		n.along = &dir
	}
	return n
}

// ScriptCommand writes the optional direction as a literal vector after the
// point references:
//
//	DistanceConstraint( 3, 1, 2, [1, 0, 0], layer standard, distance=5, ... )
func (c *FixedDistance) ScriptCommand(em Emitter) Command {
	if c.along != nil {
		return command(c, em, []Entity{c.p1, c.p2}, VectorArg(c.along.X, c.along.Y, c.along.Z))
	}
	return command(c, em, []Entity{c.p1, c.p2})
}

// ---------------------------------------------------------------------------
// FixedAngle
// ---------------------------------------------------------------------------

// FixedAngle holds the angle at a center point between the rays to p1 and
// p2. The "angle" parameter is in degrees. Without p2, the second ray points
// along the plane's x axis.
type FixedAngle struct {
	Base
	p1, p2, ctr *Point
}

// NewFixedAngle dimensions the angle p1-ctr-p2. p2 may be nil. The target
// defaults to the current angle.
func NewFixedAngle(p1, p2, ctr *Point) *FixedAngle {
	c := &FixedAngle{Base: newBase("AngleConstraint"), p1: p1, p2: p2, ctr: ctr}
	c.declare("angle", Double(c.Angle()*180/math.Pi))
	c.declare("dimLineRadius", Double(1))
	c.declare("arrowSize", Double(1))
	return c
}

// Points returns p1, p2 (possibly nil) and the center.
func (c *FixedAngle) Points() (p1, p2, ctr *Point) { return c.p1, c.p2, c.ctr }

// Angle returns the current angle in radians, in [0, pi]. Coincident points
// give a large sentinel value so the solver moves them apart.
func (c *FixedAngle) Angle() float64 {
	o := c.ctr.Coords()
	d1 := c.p1.Coords().Sub(o)
	var d2x, d2y float64
	if c.p2 != nil {
		d2 := c.p2.Coords().Sub(o)
		d2x, d2y = d2.X, d2.Y
	} else {
		d2x, d2y = 1, 0
	}
	if math.Hypot(d1.X, d1.Y) < 1e-10 || math.Hypot(d2x, d2y) < 1e-10 {
		return degenerateAngle
	}
	return math.Atan2(math.Abs(d1.X*d2y-d1.Y*d2x), d1.X*d2x+d1.Y*d2y)
}

// Target returns the dimension value in degrees.
func (c *FixedAngle) Target() float64 { return c.params.Double("angle") }

// SetTarget changes the dimension value, in degrees.
func (c *FixedAngle) SetTarget(deg float64) { c.params.SetDouble("angle", deg) }

func (c *FixedAngle) Hash() uint64 { return HashValues(c.Target()) }

func (c *FixedAngle) NConstraints() int { return 1 }

func (c *FixedAngle) ConstraintError(i int) float64 {
	if i != 0 {
		badConstraint(c.TypeName(), i, 1)
	}
	return (c.Angle() - c.Target()*math.Pi/180) / math.Pi
}

func (c *FixedAngle) Dependencies() []Entity {
	if c.p2 == nil {
		return uniqueDeps(c.p1, c.ctr)
	}
	return uniqueDeps(c.p1, c.p2, c.ctr)
}

func (c *FixedAngle) ReplaceDependency(old, repl Entity) {
	substitutePoint(c, &c.p1, old, repl)
	substitutePoint(c, &c.p2, old, repl)
	substitutePoint(c, &c.ctr, old, repl)
}

func (c *FixedAngle) Clone() Entity {
	return &FixedAngle{Base: c.cloneBase(), p1: c.p1, p2: c.p2, ctr: c.ctr}
}

// ScriptCommand references p1, p2 and the center. A missing p2 is written
// as label 0.
func (c *FixedAngle) ScriptCommand(em Emitter) Command {
	if c.p2 == nil {
		cmd := command(c, em, []Entity{c.p1})
		cmd.Args = append(cmd.Args, RefArg(0), RefArg(em.Label(c.ctr)))
		return cmd
	}
	return command(c, em, []Entity{c.p1, c.p2, c.ctr})
}
