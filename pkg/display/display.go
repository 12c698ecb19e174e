// Package display turns sketch entities into renderable geometry. Each
// entity gets a 2D signed distance field outline for picking and export,
// and each layer gets a line mesh embedded in 3D for drawing.
// The display layer only reads the sketch; it never mutates it.
package display

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/contour/pkg/sketch"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// ErrNoRepresentation is returned for entities that are not drawn as
// outlines, such as pure constraints.
var ErrNoRepresentation = errors.New("display: entity has no outline representation")

// Style controls outline dimensions, in sketch units, and per-layer
// display properties.
type Style struct {
	PointRadius float64 // radius of the disc drawn for a point
	LineWidth   float64 // stroke width of a line
	ArcSegments int     // segments per angle dimension arc

	// Layers overrides the properties of named layers. Layers missing
	// from the map are visible and coloured from DefaultPalette.
	Layers map[string]LayerProps
}

// LayerProps are the display properties of one layer.
type LayerProps struct {
	Color  string // "#rrggbb"; empty means palette colour
	Hidden bool
}

// DefaultPalette colours layers without an explicit colour.
var DefaultPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// DefaultStyle is used by the package-level functions.
var DefaultStyle = Style{PointRadius: 0.05, LineWidth: 0.02, ArcSegments: 16}

// WithLayer returns a copy of st with props set for the named layer.
func (st Style) WithLayer(name string, props LayerProps) Style {
	layers := make(map[string]LayerProps, len(st.Layers)+1)
	for k, v := range st.Layers {
		layers[k] = v
	}
	layers[name] = props
	st.Layers = layers
	return st
}

// Visible reports whether the named layer is drawn.
func (st Style) Visible(layer string) bool {
	return !st.Layers[layer].Hidden
}

// LayerColor returns the colour of the named layer; i is the layer's
// position among the drawn layers and picks the palette entry.
func (st Style) LayerColor(layer string, i int) string {
	if c := st.Layers[layer].Color; c != "" {
		return c
	}
	return DefaultPalette[i%len(DefaultPalette)]
}

// Representation returns the outline of e with DefaultStyle.
func Representation(e sketch.Entity) (sdf.SDF2, error) {
	return DefaultStyle.Representation(e)
}

// Representation returns the outline of e: a disc for a point and a
// capsule for a line.
func (st Style) Representation(e sketch.Entity) (sdf.SDF2, error) {
	switch e := e.(type) {
	case *sketch.Point:
		c, err := sdf.Circle2D(st.PointRadius)
		if err != nil {
			return nil, fmt.Errorf("display: point outline: %w", err)
		}
		return sdf.Transform2D(c, sdf.Translate2d(e.Coords())), nil

	case *sketch.Line:
		return st.segment(e.Start().Coords(), e.End().Coords()), nil

	default:
		return nil, ErrNoRepresentation
	}
}

// segment returns a capsule of the style's line width around a-b.
func (st Style) segment(a, b v2.Vec) sdf.SDF2 {
	d := b.Sub(a)
	length := math.Hypot(d.X, d.Y)
	w := st.LineWidth
	capsule := sdf.Box2D(v2.Vec{X: length + w, Y: w}, w/2)
	mid := a.Add(d.MulScalar(0.5))
	m := sdf.Translate2d(mid).Mul(sdf.Rotate2d(math.Atan2(d.Y, d.X)))
	return sdf.Transform2D(capsule, m)
}

// Outline returns the union of all entity outlines in sk, or nil when the
// sketch has nothing to draw.
func Outline(sk *sketch.Sketch) (sdf.SDF2, error) {
	return DefaultStyle.Outline(sk)
}

// Outline returns the union of the outlines of all entities on visible
// layers of sk.
func (st Style) Outline(sk *sketch.Sketch) (sdf.SDF2, error) {
	var parts []sdf.SDF2
	for _, e := range sk.Entities() {
		if !st.Visible(e.Layer()) {
			continue
		}
		s, err := st.Representation(e)
		if errors.Is(err, ErrNoRepresentation) {
			continue
		}
		if err != nil {
			return nil, err
		}
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return nil, nil
	}
	return sdf.Union2D(parts...), nil
}

// HitTest returns the drawn entity nearest to (x, y) whose outline lies
// within tol of the query point, or nil. Points win ties against lines.
func HitTest(sk *sketch.Sketch, x, y, tol float64) sketch.Entity {
	return DefaultStyle.HitTest(sk, x, y, tol)
}

// HitTest is HitTest with this style. Hidden layers cannot be hit.
func (st Style) HitTest(sk *sketch.Sketch, x, y, tol float64) sketch.Entity {
	q := v2.Vec{X: x, Y: y}
	var best sketch.Entity
	bestD := math.Inf(1)
	for _, e := range sk.Entities() {
		if !st.Visible(e.Layer()) {
			continue
		}
		s, err := st.Representation(e)
		if err != nil {
			continue
		}
		d := s.Evaluate(q)
		if _, isPoint := e.(*sketch.Point); isPoint {
			d -= st.LineWidth
		}
		if d <= tol && d < bestD {
			best, bestD = e, d
		}
	}
	return best
}
