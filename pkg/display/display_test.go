package display_test

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/contour/pkg/display"
	"github.com/chazu/contour/pkg/kernel"
	"github.com/chazu/contour/pkg/sketch"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// buildSquare creates a unit square with a distance on the bottom edge and
// a right angle at the origin. The dimensions live on their own layer.
func buildSquare() *sketch.Sketch {
	sk := sketch.New(nil)
	a, b := sk.NewPoint(0, 0), sk.NewPoint(1, 0)
	c, d := sk.NewPoint(1, 1), sk.NewPoint(0, 1)
	sk.MustInsert(
		sketch.NewLine(a, b), sketch.NewLine(b, c),
		sketch.NewLine(c, d), sketch.NewLine(d, a),
	)
	dist := sketch.NewFixedDistance(a, b)
	dist.SetLayer("dims")
	ang := sketch.NewFixedAngle(b, d, a)
	ang.SetLayer("dims")
	sk.MustInsert(dist, ang, sketch.NewHorizontal(sk.Lines()[0]))
	return sk
}

func meshFor(meshes []*kernel.Mesh, layer string) *kernel.Mesh {
	for _, m := range meshes {
		if m.Layer == layer {
			return m
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Representation
// ---------------------------------------------------------------------------

func TestRepresentationPoint(t *testing.T) {
	p := sketch.NewPoint(nil, 2, 3)
	s, err := display.Representation(p)
	if err != nil {
		t.Fatalf("Representation: %v", err)
	}
	r := display.DefaultStyle.PointRadius
	if got := s.Evaluate(v2.Vec{X: 2, Y: 3}); math.Abs(got+r) > 1e-9 {
		t.Errorf("center distance = %v, want %v", got, -r)
	}
	if got := s.Evaluate(v2.Vec{X: 3, Y: 3}); math.Abs(got-(1-r)) > 1e-9 {
		t.Errorf("outside distance = %v, want %v", got, 1-r)
	}
}

func TestRepresentationLine(t *testing.T) {
	l := sketch.NewLine(sketch.NewPoint(nil, 0, 0), sketch.NewPoint(nil, 0, 4))
	s, err := display.Representation(l)
	if err != nil {
		t.Fatalf("Representation: %v", err)
	}
	tests := []struct {
		name   string
		p      v2.Vec
		inside bool
	}{
		{"midpoint", v2.Vec{X: 0, Y: 2}, true},
		{"near end", v2.Vec{X: 0, Y: 3.99}, true},
		{"beside", v2.Vec{X: 1, Y: 2}, false},
		{"beyond end", v2.Vec{X: 0, Y: 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Evaluate(tt.p) <= 0; got != tt.inside {
				t.Errorf("inside = %v, want %v", got, tt.inside)
			}
		})
	}
	bb := s.BoundingBox()
	if bb.Max.Y < 4 || bb.Min.Y > 0 {
		t.Errorf("bounding box %v does not cover the segment", bb)
	}
}

func TestRepresentationConstraint(t *testing.T) {
	l := sketch.NewLine(sketch.NewPoint(nil, 0, 0), sketch.NewPoint(nil, 1, 0))
	_, err := display.Representation(sketch.NewHorizontal(l))
	if !errors.Is(err, display.ErrNoRepresentation) {
		t.Errorf("err = %v, want ErrNoRepresentation", err)
	}
}

func TestOutline(t *testing.T) {
	s, err := display.Outline(buildSquare())
	if err != nil {
		t.Fatalf("Outline: %v", err)
	}
	if s.Evaluate(v2.Vec{X: 0.5, Y: 0}) > 0 {
		t.Error("bottom edge not inside the outline")
	}
	if s.Evaluate(v2.Vec{X: 0.5, Y: 0.5}) <= 0 {
		t.Error("square interior should be outside the outline")
	}

	empty, err := display.Outline(sketch.New(nil))
	if err != nil || empty != nil {
		t.Errorf("Outline(empty) = %v, %v", empty, err)
	}
}

// ---------------------------------------------------------------------------
// Hit testing
// ---------------------------------------------------------------------------

func TestHitTest(t *testing.T) {
	sk := buildSquare()
	pts := sk.Points()
	lines := sk.Lines()

	tests := []struct {
		name string
		x, y float64
		want sketch.Entity
	}{
		{"corner point", 1.01, 0.99, pts[2]},
		{"bottom edge", 0.5, 0.02, lines[0]},
		{"left edge", -0.03, 0.5, lines[3]},
		{"interior", 0.5, 0.5, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := display.HitTest(sk, tt.x, tt.y, 0.05)
			if got != tt.want {
				t.Errorf("HitTest = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHitTestHiddenLayer(t *testing.T) {
	sk := buildSquare()
	st := display.DefaultStyle.WithLayer(sketch.DefaultLayer, display.LayerProps{Hidden: true})
	if got := st.HitTest(sk, 1.01, 0.99, 0.05); got != nil {
		t.Errorf("hit %v on a hidden layer", got)
	}
}

// ---------------------------------------------------------------------------
// Tessellation
// ---------------------------------------------------------------------------

func TestTessellateLayers(t *testing.T) {
	meshes := display.Tessellate(buildSquare())
	if len(meshes) != 2 {
		t.Fatalf("got %d meshes, want 2", len(meshes))
	}

	std := meshFor(meshes, sketch.DefaultLayer)
	if std == nil {
		t.Fatal("no mesh for the default layer")
	}
	if std.SegmentCount() != 4 {
		t.Errorf("default layer has %d segments, want 4", std.SegmentCount())
	}
	if len(std.Markers) != 4 {
		t.Errorf("default layer has %d markers, want 4", len(std.Markers))
	}

	dims := meshFor(meshes, "dims")
	if dims == nil {
		t.Fatal("no mesh for the dims layer")
	}
	// Three lines for the distance plus the arc.
	want := 3 + display.DefaultStyle.ArcSegments
	if dims.SegmentCount() != want {
		t.Errorf("dims layer has %d segments, want %d", dims.SegmentCount(), want)
	}
	if len(dims.Indices) != 2*want || dims.VertexCount() != 2*want {
		t.Errorf("index/vertex count mismatch: %d indices, %d vertices", len(dims.Indices), dims.VertexCount())
	}
}

func TestTessellateHiddenLayer(t *testing.T) {
	st := display.DefaultStyle.WithLayer("dims", display.LayerProps{Hidden: true})
	meshes := st.Tessellate(buildSquare())
	if len(meshes) != 1 || meshes[0].Layer != sketch.DefaultLayer {
		t.Fatalf("got %d meshes, want only %q", len(meshes), sketch.DefaultLayer)
	}
	if display.DefaultStyle.Layers != nil {
		t.Error("WithLayer modified DefaultStyle")
	}
}

func TestLayerColor(t *testing.T) {
	st := display.DefaultStyle.WithLayer("dims", display.LayerProps{Color: "#ff0000"})
	tests := []struct {
		layer string
		i     int
		want  string
	}{
		{"dims", 0, "#ff0000"},
		{"dims", 5, "#ff0000"},
		{sketch.DefaultLayer, 1, display.DefaultPalette[1]},
		{"other", len(display.DefaultPalette), display.DefaultPalette[0]},
	}
	for _, tt := range tests {
		if got := st.LayerColor(tt.layer, tt.i); got != tt.want {
			t.Errorf("LayerColor(%q, %d) = %q, want %q", tt.layer, tt.i, got, tt.want)
		}
	}
}

func TestTessellateEmbedsInPlane(t *testing.T) {
	sk := sketch.New(kernel.XZ)
	sk.NewPoint(2, 3)
	meshes := display.Tessellate(sk)
	if len(meshes) != 1 {
		t.Fatalf("got %d meshes, want 1", len(meshes))
	}
	v := meshes[0].Vertices
	if v[0] != 2 || v[1] != 0 || v[2] != 3 {
		t.Errorf("vertex = (%v, %v, %v), want (2, 0, 3)", v[0], v[1], v[2])
	}
}

func TestTessellateNil(t *testing.T) {
	if got := display.Tessellate(nil); got != nil {
		t.Errorf("Tessellate(nil) = %v", got)
	}
	if got := display.Tessellate(sketch.New(nil)); len(got) != 0 {
		t.Errorf("empty sketch produced %d meshes", len(got))
	}
}

// ---------------------------------------------------------------------------
// Cache
// ---------------------------------------------------------------------------

func TestCacheReleaseHook(t *testing.T) {
	sk := buildSquare()
	cache := display.NewCache(display.DefaultStyle)
	sk.OnRelease(cache.Release)

	for _, e := range sk.Entities() {
		_, _ = cache.Representation(e)
	}
	if cache.Len() != 8 {
		t.Fatalf("cached %d outlines, want 8", cache.Len())
	}

	// Deleting a corner removes the point and its two lines; the horizontal
	// constraint and dimensions were never cached.
	if err := sk.Delete(sk.Points()[1]); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if cache.Len() != 5 {
		t.Errorf("cached %d outlines after delete, want 5", cache.Len())
	}
}

func TestCacheRebuildsOnChange(t *testing.T) {
	p := sketch.NewPoint(nil, 0, 0)
	cache := display.NewCache(display.DefaultStyle)
	s1, _ := cache.Representation(p)
	s2, _ := cache.Representation(p)
	if s1 != s2 {
		t.Error("unchanged entity should hit the cache")
	}
	p.SetDoF(0, 5)
	s3, _ := cache.Representation(p)
	if s3.Evaluate(v2.Vec{X: 5}) > 0 {
		t.Error("cache returned a stale outline after the point moved")
	}
}
