// Package kernel defines the geometry-kernel collaborator used by sketches.
// A sketch lives in a plane: the kernel maps in-plane coordinates into 3D
// space and back, and answers distance queries against 3D points.
// Vector and matrix types come from the sdfx CAD library.
package kernel

import (
	"errors"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Plane embeds 2D sketch coordinates into 3D space.
type Plane interface {
	// To3D maps in-plane coordinates to a 3D point.
	To3D(p v2.Vec) v3.Vec
	// To2D projects a 3D point onto the plane and returns its in-plane coordinates.
	To2D(p v3.Vec) v2.Vec
	// Normal returns the unit plane normal.
	Normal() v3.Vec
}

// Compile-time interface check.
var _ Plane = DatumPlane{}

// planeEps is the smallest axis length accepted when building a plane.
const planeEps = 1e-12

// ErrDegeneratePlane is returned when a plane cannot be built from the given
// normal and x direction.
var ErrDegeneratePlane = errors.New("kernel: degenerate plane definition")

// DatumPlane is a plane given by an origin and two orthonormal in-plane axes.
type DatumPlane struct {
	Origin v3.Vec
	XDir   v3.Vec
	YDir   v3.Vec
}

// The three principal planes through the origin.
var (
	XY = DatumPlane{XDir: v3.Vec{X: 1}, YDir: v3.Vec{Y: 1}}
	XZ = DatumPlane{XDir: v3.Vec{X: 1}, YDir: v3.Vec{Z: 1}}
	YZ = DatumPlane{XDir: v3.Vec{Y: 1}, YDir: v3.Vec{Z: 1}}
)

// NewPlane builds a plane through origin with the given normal. The in-plane
// x axis is xdir with its normal component removed.
func NewPlane(origin, normal, xdir v3.Vec) (DatumPlane, error) {
	if normal.Length() < planeEps {
		return DatumPlane{}, ErrDegeneratePlane
	}
	n := normal.Normalize()
	x := xdir.Sub(n.MulScalar(xdir.Dot(n)))
	if x.Length() < planeEps {
		return DatumPlane{}, ErrDegeneratePlane
	}
	x = x.Normalize()
	return DatumPlane{
		Origin: origin,
		XDir:   x,
		YDir:   n.Cross(x),
	}, nil
}

// To3D maps in-plane coordinates to a 3D point.
func (pl DatumPlane) To3D(p v2.Vec) v3.Vec {
	return pl.Origin.Add(pl.XDir.MulScalar(p.X)).Add(pl.YDir.MulScalar(p.Y))
}

// To2D returns the in-plane coordinates of the projection of p.
func (pl DatumPlane) To2D(p v3.Vec) v2.Vec {
	d := p.Sub(pl.Origin)
	return v2.Vec{X: d.Dot(pl.XDir), Y: d.Dot(pl.YDir)}
}

// Normal returns the unit plane normal.
func (pl DatumPlane) Normal() v3.Vec {
	return pl.XDir.Cross(pl.YDir)
}

// Transform returns the plane moved by the rigid transform m.
func (pl DatumPlane) Transform(m sdf.M44) DatumPlane {
	o := m.MulPosition(pl.Origin)
	return DatumPlane{
		Origin: o,
		XDir:   m.MulPosition(pl.Origin.Add(pl.XDir)).Sub(o).Normalize(),
		YDir:   m.MulPosition(pl.Origin.Add(pl.YDir)).Sub(o).Normalize(),
	}
}

// Offset returns the plane translated by d along its normal.
func (pl DatumPlane) Offset(d float64) DatumPlane {
	return pl.Transform(sdf.Translate3d(pl.Normal().MulScalar(d)))
}

// SegmentDistance returns the minimum distance between p and the segment a-b.
// A zero-length segment degenerates to the distance from a.
func SegmentDistance(a, b, p v3.Vec) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Sub(a).Length()
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l2))
	return p.Sub(a.Add(ab.MulScalar(t))).Length()
}

// SegmentDistance2D is SegmentDistance for in-plane coordinates.
func SegmentDistance2D(a, b, p v2.Vec) float64 {
	return SegmentDistance(v3.Vec{X: a.X, Y: a.Y}, v3.Vec{X: b.X, Y: b.Y}, v3.Vec{X: p.X, Y: p.Y})
}
