package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/contour/pkg/kernel"
	"github.com/chazu/contour/pkg/sketch"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites sketch Lisp source into something zygomys accepts.
// It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: on-curve -> on_curve
//     zygomys reads a hyphen inside an identifier as subtraction, so
//     kebab-case identifiers become underscore form outside of strings
//     and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Entity values
// ---------------------------------------------------------------------------

// sexpEntity carries a sketch entity between builtins.
type sexpEntity struct {
	e sketch.Entity
}

func (s *sexpEntity) SexpString(ps *zygo.PrintState) string {
	if p, ok := s.e.(*sketch.Point); ok {
		c := p.Coords()
		return fmt.Sprintf("(point %g %g)", c.X, c.Y)
	}
	return fmt.Sprintf("(%s %s)", s.e.TypeName(), s.e.ID().String()[:8])
}
func (s *sexpEntity) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// expect checks the positional arity and rejects unknown keywords.
func (pa kwArgs) expect(fn string, n int, keywords ...string) error {
	if len(pa.positional) != n {
		return fmt.Errorf("%s expects %d positional arguments, got %d", fn, n, len(pa.positional))
	}
	for k := range pa.kw {
		known := false
		for _, want := range keywords {
			if k == want {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%s: unknown keyword :%s", fn, k)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toVec3 reads a three-element list of numbers.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return v3.Vec{}, err
	}
	if len(items) != 3 {
		return v3.Vec{}, fmt.Errorf("expected 3 components, got %d", len(items))
	}
	var xyz [3]float64
	for i, item := range items {
		if xyz[i], err = toFloat64(item); err != nil {
			return v3.Vec{}, err
		}
	}
	return v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

func toEntity(s zygo.Sexp) (sketch.Entity, error) {
	if v, ok := s.(*sexpEntity); ok {
		return v.e, nil
	}
	return nil, fmt.Errorf("expected sketch entity, got %T (%s)", s, s.SexpString(nil))
}

func toPoint(s zygo.Sexp) (*sketch.Point, error) {
	e, err := toEntity(s)
	if err != nil {
		return nil, err
	}
	p, ok := e.(*sketch.Point)
	if !ok {
		return nil, fmt.Errorf("expected point, got %s", e.TypeName())
	}
	return p, nil
}

func toLine(s zygo.Sexp) (*sketch.Line, error) {
	e, err := toEntity(s)
	if err != nil {
		return nil, err
	}
	l, ok := e.(*sketch.Line)
	if !ok {
		return nil, fmt.Errorf("expected line, got %s", e.TypeName())
	}
	return l, nil
}

func toCurve(s zygo.Sexp) (sketch.Curve, error) {
	e, err := toEntity(s)
	if err != nil {
		return nil, err
	}
	c, ok := e.(sketch.Curve)
	if !ok {
		return nil, fmt.Errorf("expected curve, got %s", e.TypeName())
	}
	return c, nil
}

// toPlane maps :xy, :xz and :yz to the principal planes.
func toPlane(s zygo.Sexp) (kernel.Plane, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return nil, err
	}
	switch name {
	case "xy":
		return kernel.XY, nil
	case "xz":
		return kernel.XZ, nil
	case "yz":
		return kernel.YZ, nil
	}
	return nil, fmt.Errorf("invalid plane %q, expected xy, xz, or yz", name)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builder accumulates the sketch produced by one evaluation.
type builder struct {
	sk *sketch.Sketch
}

// add applies the common :layer keyword and inserts e.
func (b *builder) add(fn string, e sketch.Entity, pa kwArgs) (zygo.Sexp, error) {
	if v, ok := pa.kw["layer"]; ok {
		name, err := toKeywordString(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: layer: %w", fn, err)
		}
		e.SetLayer(name)
	}
	for _, d := range e.Dependencies() {
		if !b.sk.Contains(d) {
			return zygo.SexpNull, fmt.Errorf("%s: %s is not part of the sketch (merged or deleted?)",
				fn, d.TypeName())
		}
	}
	if err := b.sk.Insert(e); err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
	}
	return &sexpEntity{e: e}, nil
}

// entityFunc is the shape shared by all entity-creating builtins.
type entityFunc func(b *builder, pa kwArgs) (zygo.Sexp, error)

// entityBuiltins maps builtin names (underscore form) to their
// implementations. Every entity builtin accepts :layer.
var entityBuiltins = map[string]entityFunc{

	// (point x y)
	"point": func(b *builder, pa kwArgs) (zygo.Sexp, error) {
		if err := pa.expect("point", 2, "layer"); err != nil {
			return zygo.SexpNull, err
		}
		x, err := toFloat64(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point: x: %w", err)
		}
		y, err := toFloat64(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point: y: %w", err)
		}
		return b.add("point", sketch.NewPoint(b.sk.Plane(), x, y), pa)
	},

	// (line p1 p2)
	"line": func(b *builder, pa kwArgs) (zygo.Sexp, error) {
		if err := pa.expect("line", 2, "layer"); err != nil {
			return zygo.SexpNull, err
		}
		p1, err := toPoint(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("line: start: %w", err)
		}
		p2, err := toPoint(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("line: end: %w", err)
		}
		return b.add("line", sketch.NewLine(p1, p2), pa)
	},

	// (fix p :x 1 :y 2)
	"fix": func(b *builder, pa kwArgs) (zygo.Sexp, error) {
		if err := pa.expect("fix", 1, "layer", "x", "y"); err != nil {
			return zygo.SexpNull, err
		}
		p, err := toPoint(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("fix: %w", err)
		}
		c := sketch.NewFixedPoint(p)
		for _, key := range []string{"x", "y"} {
			if v, ok := pa.kw[key]; ok {
				f, err := toFloat64(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("fix: %s: %w", key, err)
				}
				c.Parameters().SetDouble(key, f)
			}
		}
		return b.add("fix", c, pa)
	},

	// (horizontal l)
	"horizontal": func(b *builder, pa kwArgs) (zygo.Sexp, error) {
		if err := pa.expect("horizontal", 1, "layer"); err != nil {
			return zygo.SexpNull, err
		}
		l, err := toLine(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("horizontal: %w", err)
		}
		return b.add("horizontal", sketch.NewHorizontal(l), pa)
	},

	// (vertical l)
	"vertical": func(b *builder, pa kwArgs) (zygo.Sexp, error) {
		if err := pa.expect("vertical", 1, "layer"); err != nil {
			return zygo.SexpNull, err
		}
		l, err := toLine(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vertical: %w", err)
		}
		return b.add("vertical", sketch.NewVertical(l), pa)
	},

	// (on-curve curve p)
	"on_curve": func(b *builder, pa kwArgs) (zygo.Sexp, error) {
		if err := pa.expect("on-curve", 2, "layer"); err != nil {
			return zygo.SexpNull, err
		}
		c, err := toCurve(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("on-curve: curve: %w", err)
		}
		p, err := toPoint(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("on-curve: point: %w", err)
		}
		return b.add("on-curve", sketch.NewPointOnCurve(p, c), pa)
	},

	// (tangent l1 l2)
	"tangent": func(b *builder, pa kwArgs) (zygo.Sexp, error) {
		if err := pa.expect("tangent", 2, "layer"); err != nil {
			return zygo.SexpNull, err
		}
		l1, err := toLine(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tangent: first: %w", err)
		}
		l2, err := toLine(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tangent: second: %w", err)
		}
		return b.add("tangent", sketch.NewTangent(l1, l2), pa)
	},

	// (distance p1 p2 :value 10 :along (list 1 0 0))
	"distance": func(b *builder, pa kwArgs) (zygo.Sexp, error) {
		if err := pa.expect("distance", 2, "layer", "value", "along"); err != nil {
			return zygo.SexpNull, err
		}
		p1, err := toPoint(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("distance: first: %w", err)
		}
		p2, err := toPoint(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("distance: second: %w", err)
		}
		var c *sketch.FixedDistance
		if v, ok := pa.kw["along"]; ok {
			dir, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("distance: along: %w", err)
			}
			c = sketch.NewFixedDistanceAlong(p1, p2, dir)
		} else {
			c = sketch.NewFixedDistance(p1, p2)
		}
		if v, ok := pa.kw["value"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("distance: value: %w", err)
			}
			c.SetTarget(f)
		}
		return b.add("distance", c, pa)
	},

	// (angle p1 ctr :to p2 :value 90)
	"angle": func(b *builder, pa kwArgs) (zygo.Sexp, error) {
		if err := pa.expect("angle", 2, "layer", "value", "to"); err != nil {
			return zygo.SexpNull, err
		}
		p1, err := toPoint(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("angle: first: %w", err)
		}
		ctr, err := toPoint(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("angle: center: %w", err)
		}
		var p2 *sketch.Point
		if v, ok := pa.kw["to"]; ok {
			if p2, err = toPoint(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("angle: to: %w", err)
			}
		}
		c := sketch.NewFixedAngle(p1, p2, ctr)
		if v, ok := pa.kw["value"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("angle: value: %w", err)
			}
			c.SetTarget(f)
		}
		return b.add("angle", c, pa)
	},
}

// registerBuiltins installs the sketch builtins into a zygomys environment.
// The builtins populate b.sk during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {
	for name, fn := range entityBuiltins {
		env.AddFunction(name, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			return fn(b, parseArgs(args))
		})
	}

	// -----------------------------------------------------------------------
	// (sketch-plane :xz)
	// -----------------------------------------------------------------------
	env.AddFunction("sketch_plane", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("sketch-plane requires exactly 1 argument, got %d", len(args))
		}
		if b.sk.Len() > 0 {
			return zygo.SexpNull, fmt.Errorf("sketch-plane must precede all entities")
		}
		pl, err := toPlane(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sketch-plane: %w", err)
		}
		b.sk = sketch.New(pl)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (merge p1 p2): p1's dependents move to p2; returns p2
	// -----------------------------------------------------------------------
	env.AddFunction("merge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("merge requires exactly 2 arguments, got %d", len(args))
		}
		p1, err := toPoint(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("merge: first: %w", err)
		}
		p2, err := toPoint(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("merge: second: %w", err)
		}
		if !b.sk.Contains(p1) {
			return zygo.SexpNull, fmt.Errorf("merge: first point is not part of the sketch (merged or deleted?)")
		}
		if err := b.sk.MergePoints(p1, p2); err != nil {
			return zygo.SexpNull, fmt.Errorf("merge: %w", err)
		}
		return args[1], nil
	})

	// -----------------------------------------------------------------------
	// (point-x p), (point-y p)
	// -----------------------------------------------------------------------
	coord := func(axis string, pick func(*sketch.Point) float64) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 1 {
				return zygo.SexpNull, fmt.Errorf("point-%s requires exactly 1 argument, got %d", axis, len(args))
			}
			p, err := toPoint(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("point-%s: %w", axis, err)
			}
			return &zygo.SexpFloat{Val: pick(p)}, nil
		}
	}
	env.AddFunction("point_x", coord("x", func(p *sketch.Point) float64 { return p.Coords().X }))
	env.AddFunction("point_y", coord("y", func(p *sketch.Point) float64 { return p.Coords().Y }))
}
