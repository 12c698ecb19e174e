package script

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/chazu/contour/pkg/sketch"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// fullSketch uses every registered entity type. Entities are inserted out of
// dependency order on purpose.
func fullSketch() *sketch.Sketch {
	sk := sketch.New(nil)
	a := sketch.NewPoint(nil, 0, 0)
	b := sketch.NewPoint(nil, 4.25, -0.1)
	c := sketch.NewPoint(nil, 1.0/3, 2e-7)
	d := sketch.NewPoint(nil, -12, 1e6)
	ab := sketch.NewLine(a, b)
	bc := sketch.NewLine(b, c)
	cd := sketch.NewLine(c, d)
	cd.SetLayer("construction lines")

	dist := sketch.NewFixedDistance(a, b)
	dist.SetTarget(4.5)
	dist.SetLayer("dims")
	along := sketch.NewFixedDistanceAlong(b, c, v3.Vec{X: 0, Y: 1, Z: 0})
	ang := sketch.NewFixedAngle(a, c, b)
	ang.SetTarget(37.5)
	ray := sketch.NewFixedAngle(c, nil, a)

	// Constraints first, then the geometry they use.
	sk.MustInsert(
		sketch.NewTangent(ab, bc),
		sketch.NewHorizontal(ab),
		sketch.NewVertical(cd),
		sketch.NewPointOnCurve(d, bc),
		sketch.NewFixedPoint(a),
		dist, along, ang, ray,
		ab, bc, cd, a, b, c, d,
	)
	return sk
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

func TestGenerateDependencyOrder(t *testing.T) {
	cmds, err := Commands(fullSketch())
	require.NoError(t, err)
	require.Len(t, cmds, 16)

	defined := make(map[int]bool)
	for i, cmd := range cmds {
		assert.Equal(t, i+1, cmd.Label, "labels are assigned in emission order")
		for _, ref := range cmd.Refs() {
			if ref == 0 {
				continue
			}
			assert.True(t, defined[ref], "%s references label %d before it is defined", cmd.Type, ref)
		}
		defined[cmd.Label] = true
	}
}

func TestGenerateFormat(t *testing.T) {
	sk := sketch.New(nil)
	p1 := sk.NewPoint(0, 0)
	p2 := sk.NewPoint(3, 4)
	sk.MustInsert(sketch.NewFixedDistance(p1, p2))

	got, err := Generate(sk)
	require.NoError(t, err)
	want := "SketchPoint( 1, [0, 0], layer standard ),\n" +
		"SketchPoint( 2, [3, 4], layer standard ),\n" +
		"DistanceConstraint( 3, 1, 2, layer standard, distance=5, dimLineOfs=1, arrowSize=1 )\n"
	assert.Equal(t, want, got)
}

func TestGenerateRejectsDanglingDependency(t *testing.T) {
	sk := sketch.New(nil)
	a := sk.NewPoint(0, 0)
	sk.MustInsert(sketch.NewLine(a, sketch.NewPoint(nil, 1, 1)))
	_, err := Generate(sk)
	assert.Error(t, err)
}

func TestGenerateRejectsNonFinite(t *testing.T) {
	tests := []struct {
		name  string
		build func(sk *sketch.Sketch)
		want  string
	}{
		{"infinite target", func(sk *sketch.Sketch) {
			d := sketch.NewFixedDistance(sk.NewPoint(0, 0), sk.NewPoint(1, 0))
			d.SetTarget(math.Inf(1))
			sk.MustInsert(d)
		}, "parameter distance is not finite"},
		{"negative infinity", func(sk *sketch.Sketch) {
			a := sketch.NewFixedAngle(sk.NewPoint(1, 0), nil, sk.NewPoint(0, 0))
			a.SetTarget(math.Inf(-1))
			sk.MustInsert(a)
		}, "parameter angle is not finite"},
		{"NaN coordinate", func(sk *sketch.Sketch) {
			sk.NewPoint(math.NaN(), 0)
		}, "non-finite coordinate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sk := sketch.New(nil)
			tt.build(sk)
			_, err := Generate(sk)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGenerateEmpty(t *testing.T) {
	got, err := Generate(sketch.New(nil))
	require.NoError(t, err)
	assert.Empty(t, got)
}

// ---------------------------------------------------------------------------
// Round trip
// ---------------------------------------------------------------------------

func TestRoundTrip(t *testing.T) {
	orig := fullSketch()
	text, err := Generate(orig)
	require.NoError(t, err)

	parsed, err := Parse(text, nil)
	require.NoError(t, err, "script:\n%s", text)
	assert.Equal(t, orig.Len(), parsed.Len())

	want, err := Commands(orig)
	require.NoError(t, err)
	got, err := Commands(parsed)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		w, g := want[i], got[i]
		assert.Equal(t, w.Type, g.Type)
		assert.Equal(t, w.Label, g.Label)
		assert.Equal(t, w.Args, g.Args, "%s arguments", w.Type)
		assert.Equal(t, w.Layer, g.Layer)
		assert.True(t, w.Params.Equal(g.Params), "%s parameters", w.Type)
	}

	again, err := Generate(parsed)
	require.NoError(t, err)
	assert.Equal(t, text, again)
}

func TestRoundTripPreservesHashes(t *testing.T) {
	orig := fullSketch()
	text, err := Generate(orig)
	require.NoError(t, err)
	parsed, err := Parse(text, nil)
	require.NoError(t, err)

	// Iteration order differs, so compare hashes per type.
	hashes := func(sk *sketch.Sketch) map[string][]uint64 {
		m := make(map[string][]uint64)
		for _, e := range sk.Entities() {
			m[e.TypeName()] = append(m[e.TypeName()], e.Hash())
		}
		return m
	}
	want, got := hashes(orig), hashes(parsed)
	require.Len(t, got, len(want))
	for typ, hs := range want {
		assert.ElementsMatch(t, hs, got[typ], typ)
	}
}

func TestNestedParameterSet(t *testing.T) {
	src := `Dim( 1, 2, [1.5, -2], layer "a b", style={size=2, arrows={head=open, len=0.5}}, tags=[] )`
	cmds, err := ParseCommands(src)
	require.NoError(t, err)
	require.Len(t, cmds, 1)

	cmd := cmds[0]
	assert.Equal(t, "Dim", cmd.Type)
	assert.Equal(t, 1, cmd.Label)
	assert.Equal(t, []int{2}, cmd.Refs())
	assert.Equal(t, [][]float64{{1.5, -2}}, cmd.Vectors())
	assert.Equal(t, "a b", cmd.Layer)

	style, ok := cmd.Params.Get("style")
	require.True(t, ok)
	require.Equal(t, sketch.KindSet, style.Kind)
	arrows, ok := style.Set.Get("arrows")
	require.True(t, ok)
	head, _ := arrows.Set.Get("head")
	assert.Equal(t, sketch.Enum("open"), head)

	assert.Equal(t, src, FormatCommand(cmd))
}

func TestParseWithComments(t *testing.T) {
	src := `
// two points
SketchPoint( 1, [0, 0] )
SketchPoint( 2, [1, 0] ); /* no layer */
Line( 3, 1, 2, layer outline )`
	sk, err := Parse(src, nil)
	require.NoError(t, err)
	require.Equal(t, 3, sk.Len())
	l := sk.Lines()[0]
	assert.Equal(t, "outline", l.Layer())
	assert.Equal(t, sketch.DefaultLayer, l.Start().Layer())
}

func TestReadAndWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, fullSketch()))

	sk := sketch.New(nil)
	require.NoError(t, Read(&buf, sk))
	assert.Equal(t, 16, sk.Len())
	assert.True(t, sk.Invalidated())
	assert.Empty(t, sk.Validate())
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestParseErrors(t *testing.T) {
	const pts = "SketchPoint( 1, [0, 0] ),\nSketchPoint( 2, [1, 0] ),\n"
	tests := []struct {
		name    string
		src     string
		line    int
		command string
		msg     string
	}{
		{"unknown type", pts + "Circle( 3, 1, radius=2 )", 3, "Circle", "unknown entity type"},
		{"undefined label", pts + "Line( 3, 1, 7 )", 3, "Line", "undefined label 7"},
		{"forward reference", "Line( 3, 1, 2 ),\n" + pts, 1, "Line", "undefined label 1"},
		{"wrong type label", pts + "Line( 3, 1, 2 ),\nLine( 4, 3, 1 )", 4, "Line", "expected a point"},
		{"wrong type for line", pts + "HorizontalConstraint( 3, 1 )", 3, "HorizontalConstraint", "expected a line"},
		{"duplicate label", pts + "SketchPoint( 2, [5, 5] )", 3, "SketchPoint", "already defined"},
		{"reserved label", "SketchPoint( 0, [0, 0] )", 1, "SketchPoint", "invalid label"},
		{"unknown parameter", "SketchPoint( 1, [0, 0], radius=3 )", 1, "SketchPoint", "unknown parameter"},
		{"ill-typed parameter", pts + "DistanceConstraint( 3, 1, 2, distance=[1, 2] )", 3, "DistanceConstraint", "expected double"},
		{"wrong arity", pts + "Line( 3, 1 )", 3, "Line", "expected 2 label references"},
		{"vector length", "SketchPoint( 1, [0, 0, 0] )", 1, "SketchPoint", "3"},
		{"missing paren", "SketchPoint( 1, [0, 0]", 1, "SketchPoint", "expected \")\""},
		{"missing label", "SketchPoint( [0, 0] )", 1, "SketchPoint", "expected label"},
		{"reference after tail", pts + "Line( 3, layer a, 1, 2 )", 3, "Line", "after layer or parameters"},
		{"missing equals", "SketchPoint( 1, [0, 0], radius 3 )", 1, "SketchPoint", "expected '='"},
		{"duplicate parameter", pts + "DistanceConstraint( 3, 1, 2, distance=1, distance=2 )", 3, "DistanceConstraint", "given twice"},
		{"garbage", "42", 1, "", "expected command name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src, nil)
			require.Error(t, err)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.line, pe.Line, "line of %v", err)
			assert.Equal(t, tt.command, pe.Command)
			assert.Contains(t, pe.Msg, tt.msg)
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse("SketchPoint( 1, [0, 0] ),\n  Line( 2, 1, 9 )", nil)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)
	assert.Equal(t, 3, pe.Col)
	assert.True(t, strings.HasPrefix(pe.Error(), "2:3: Line: "), pe.Error())
}

func TestParseIsAllOrNothing(t *testing.T) {
	sk := sketch.New(nil)
	sk.NewPoint(9, 9)
	err := ParseInto(sk, "SketchPoint( 1, [0, 0] ),\nSketchPoint( 2, [1, 0] ),\nLine( 3, 1, 5 )")
	require.Error(t, err)
	assert.Equal(t, 1, sk.Len(), "failed parse must not modify the sketch")
	assert.False(t, sk.Invalidated())
}

func TestRegistry(t *testing.T) {
	for _, name := range []string{
		"SketchPoint", "Line", "FixedPoint", "HorizontalConstraint", "VerticalConstraint",
		"PointOnCurveConstraint", "TangentConstraint", "DistanceConstraint", "AngleConstraint",
	} {
		_, ok := Lookup(name)
		assert.True(t, ok, name)
	}
	assert.Contains(t, Types(), "Line")
	assert.Panics(t, func() { Register("Line", lineRule) })
}
