package sketch

import (
	"github.com/chazu/contour/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Point is a free point in the sketch plane. Its two DoFs are the in-plane
// x and y coordinates.
type Point struct {
	Base
	plane kernel.Plane
	x, y  float64
}

// NewPoint creates a point at (x, y) in plane. A nil plane means kernel.XY.
func NewPoint(plane kernel.Plane, x, y float64) *Point {
	if plane == nil {
		plane = kernel.XY
	}
	return &Point{Base: newBase("SketchPoint"), plane: plane, x: x, y: y}
}

// Plane returns the plane the point lives in.
func (p *Point) Plane() kernel.Plane { return p.plane }

// Coords returns the in-plane coordinates.
func (p *Point) Coords() v2.Vec { return v2.Vec{X: p.x, Y: p.y} }

// SetCoords moves the point.
func (p *Point) SetCoords(c v2.Vec) { p.x, p.y = c.X, c.Y }

// Value3D returns the point embedded in 3D through its plane.
func (p *Point) Value3D() v3.Vec { return p.plane.To3D(p.Coords()) }

func (p *Point) NDoF() int { return 2 }

func (p *Point) DoF(i int) float64 {
	switch i {
	case 0:
		return p.x
	case 1:
		return p.y
	}
	badDoF(p.TypeName(), i, 2)
	return 0
}

func (p *Point) SetDoF(i int, v float64) {
	switch i {
	case 0:
		p.x = v
	case 1:
		p.y = v
	default:
		badDoF(p.TypeName(), i, 2)
	}
}

func (p *Point) Hash() uint64 { return HashDoFs(p) }

func (p *Point) Dependencies() []Entity { return nil }

func (p *Point) ReplaceDependency(Entity, Entity) {}

// ScaleSketch scales the coordinates about the plane origin.
func (p *Point) ScaleSketch(factor float64) {
	p.x *= factor
	p.y *= factor
}

func (p *Point) Clone() Entity {
	return &Point{Base: p.cloneBase(), plane: p.plane, x: p.x, y: p.y}
}

// ScriptCommand writes the coordinates as a literal vector:
//
//	SketchPoint( 1, [0, 0], layer standard )
func (p *Point) ScriptCommand(em Emitter) Command {
	return command(p, em, nil, VectorArg(p.x, p.y))
}
