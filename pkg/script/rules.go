package script

import (
	"fmt"

	"github.com/chazu/contour/pkg/sketch"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func init() {
	Register("SketchPoint", pointRule)
	Register("Line", lineRule)
	Register("FixedPoint", fixedPointRule)
	Register("HorizontalConstraint", horizontalRule)
	Register("VerticalConstraint", verticalRule)
	Register("PointOnCurveConstraint", pointOnCurveRule)
	Register("TangentConstraint", tangentRule)
	Register("DistanceConstraint", distanceRule)
	Register("AngleConstraint", angleRule)
}

// refs checks that cmd carries exactly n label references.
func refs(cmd sketch.Command, n int) ([]int, error) {
	rs := cmd.Refs()
	if len(rs) != n {
		return nil, fmt.Errorf("expected %d label references, got %d", n, len(rs))
	}
	return rs, nil
}

// vectors checks that cmd carries between lo and hi literal vectors of the
// given length.
func vectors(cmd sketch.Command, lo, hi, length int) ([][]float64, error) {
	vs := cmd.Vectors()
	if len(vs) < lo || len(vs) > hi {
		if lo == hi {
			return nil, fmt.Errorf("expected %d vector arguments, got %d", lo, len(vs))
		}
		return nil, fmt.Errorf("expected %d to %d vector arguments, got %d", lo, hi, len(vs))
	}
	for _, v := range vs {
		if len(v) != length {
			return nil, fmt.Errorf("expected a vector of %d components, got %d", length, len(v))
		}
	}
	return vs, nil
}

func pointRule(cmd sketch.Command, r *Resolver) (sketch.Entity, error) {
	if _, err := refs(cmd, 0); err != nil {
		return nil, err
	}
	vs, err := vectors(cmd, 1, 1, 2)
	if err != nil {
		return nil, err
	}
	return sketch.NewPoint(r.Plane(), vs[0][0], vs[0][1]), nil
}

func lineRule(cmd sketch.Command, r *Resolver) (sketch.Entity, error) {
	rs, err := refs(cmd, 2)
	if err != nil {
		return nil, err
	}
	if _, err := vectors(cmd, 0, 0, 0); err != nil {
		return nil, err
	}
	start, err := r.Point(rs[0])
	if err != nil {
		return nil, err
	}
	end, err := r.Point(rs[1])
	if err != nil {
		return nil, err
	}
	return sketch.NewLine(start, end), nil
}

func fixedPointRule(cmd sketch.Command, r *Resolver) (sketch.Entity, error) {
	rs, err := refs(cmd, 1)
	if err != nil {
		return nil, err
	}
	p, err := r.Point(rs[0])
	if err != nil {
		return nil, err
	}
	return sketch.NewFixedPoint(p), nil
}

// singleLine resolves the one line a horizontal or vertical constraint
// references.
func singleLine(cmd sketch.Command, r *Resolver) (*sketch.Line, error) {
	rs, err := refs(cmd, 1)
	if err != nil {
		return nil, err
	}
	return r.Line(rs[0])
}

func horizontalRule(cmd sketch.Command, r *Resolver) (sketch.Entity, error) {
	l, err := singleLine(cmd, r)
	if err != nil {
		return nil, err
	}
	return sketch.NewHorizontal(l), nil
}

func verticalRule(cmd sketch.Command, r *Resolver) (sketch.Entity, error) {
	l, err := singleLine(cmd, r)
	if err != nil {
		return nil, err
	}
	return sketch.NewVertical(l), nil
}

func pointOnCurveRule(cmd sketch.Command, r *Resolver) (sketch.Entity, error) {
	rs, err := refs(cmd, 2)
	if err != nil {
		return nil, err
	}
	c, err := r.Curve(rs[0])
	if err != nil {
		return nil, err
	}
	p, err := r.Point(rs[1])
	if err != nil {
		return nil, err
	}
	return sketch.NewPointOnCurve(p, c), nil
}

func tangentRule(cmd sketch.Command, r *Resolver) (sketch.Entity, error) {
	rs, err := refs(cmd, 2)
	if err != nil {
		return nil, err
	}
	l1, err := r.Line(rs[0])
	if err != nil {
		return nil, err
	}
	l2, err := r.Line(rs[1])
	if err != nil {
		return nil, err
	}
	return sketch.NewTangent(l1, l2), nil
}

func distanceRule(cmd sketch.Command, r *Resolver) (sketch.Entity, error) {
	rs, err := refs(cmd, 2)
	if err != nil {
		return nil, err
	}
	vs, err := vectors(cmd, 0, 1, 3)
	if err != nil {
		return nil, err
	}
	p1, err := r.Point(rs[0])
	if err != nil {
		return nil, err
	}
	p2, err := r.Point(rs[1])
	if err != nil {
		return nil, err
	}
	if len(vs) == 1 {
		return sketch.NewFixedDistanceAlong(p1, p2, v3.Vec{X: vs[0][0], Y: vs[0][1], Z: vs[0][2]}), nil
	}
	return sketch.NewFixedDistance(p1, p2), nil
}

func angleRule(cmd sketch.Command, r *Resolver) (sketch.Entity, error) {
	rs, err := refs(cmd, 3)
	if err != nil {
		return nil, err
	}
	p1, err := r.Point(rs[0])
	if err != nil {
		return nil, err
	}
	p2, err := r.OptionalPoint(rs[1])
	if err != nil {
		return nil, err
	}
	ctr, err := r.Point(rs[2])
	if err != nil {
		return nil, err
	}
	return sketch.NewFixedAngle(p1, p2, ctr), nil
}
