package display

import (
	"math"

	"github.com/chazu/contour/pkg/kernel"
	"github.com/chazu/contour/pkg/sketch"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Tessellate produces one line mesh per layer of sk, in LayerNames order,
// using DefaultStyle.
func Tessellate(sk *sketch.Sketch) []*kernel.Mesh {
	return DefaultStyle.Tessellate(sk)
}

// Tessellate walks the sketch and draws every entity into the mesh of its
// layer: points become markers, lines become segments, and dimensions
// become dimension lines. Hidden layers and layers with nothing to draw
// are omitted.
func (st Style) Tessellate(sk *sketch.Sketch) []*kernel.Mesh {
	if sk == nil {
		return nil
	}
	byLayer := make(map[string]*kernel.Mesh)
	for _, name := range sk.LayerNames() {
		byLayer[name] = &kernel.Mesh{Layer: name}
	}

	plane := sk.Plane()
	for _, e := range sk.Entities() {
		m := byLayer[e.Layer()]
		w := &meshWriter{mesh: m, plane: plane}
		switch e := e.(type) {
		case *sketch.Point:
			m.AddMarker(e.Value3D())
		case *sketch.Line:
			w.segment(e.Start().Coords(), e.End().Coords())
		case *sketch.FixedDistance:
			st.distanceLines(w, e)
		case *sketch.FixedAngle:
			st.angleArc(w, e)
		}
	}

	var meshes []*kernel.Mesh
	for _, name := range sk.LayerNames() {
		if !st.Visible(name) {
			continue
		}
		if m := byLayer[name]; !m.IsEmpty() {
			meshes = append(meshes, m)
		}
	}
	return meshes
}

// meshWriter embeds in-plane segments into a mesh.
type meshWriter struct {
	mesh  *kernel.Mesh
	plane kernel.Plane
}

func (w *meshWriter) segment(a, b v2.Vec) {
	w.mesh.AddSegment(w.plane.To3D(a), w.plane.To3D(b))
}

// distanceLines draws the dimension line parallel to p1-p2, offset by the
// "dimLineOfs" parameter, with extension lines back to the points.
func (st Style) distanceLines(w *meshWriter, d *sketch.FixedDistance) {
	p1, p2 := d.Points()
	a, b := p1.Coords(), p2.Coords()
	dir := b.Sub(a)
	l := math.Hypot(dir.X, dir.Y)
	if l == 0 {
		return
	}
	ofs := d.Parameters().Double("dimLineOfs")
	n := v2.Vec{X: -dir.Y / l, Y: dir.X / l}.MulScalar(ofs)
	w.segment(a, a.Add(n))
	w.segment(b, b.Add(n))
	w.segment(a.Add(n), b.Add(n))
}

// angleArc draws an arc of radius "dimLineRadius" around the center between
// the two rays.
func (st Style) angleArc(w *meshWriter, c *sketch.FixedAngle) {
	p1, p2, ctr := c.Points()
	o := ctr.Coords()
	d1 := p1.Coords().Sub(o)
	d2 := v2.Vec{X: 1}
	if p2 != nil {
		d2 = p2.Coords().Sub(o)
	}
	a1 := math.Atan2(d1.Y, d1.X)
	sweep := math.Atan2(d1.X*d2.Y-d1.Y*d2.X, d1.X*d2.X+d1.Y*d2.Y)
	r := c.Parameters().Double("dimLineRadius")
	n := max(st.ArcSegments, 1)
	at := func(i int) v2.Vec {
		t := a1 + sweep*float64(i)/float64(n)
		return o.Add(v2.Vec{X: math.Cos(t), Y: math.Sin(t)}.MulScalar(r))
	}
	for i := range n {
		w.segment(at(i), at(i+1))
	}
}
