package script

import (
	"fmt"

	"github.com/chazu/contour/pkg/kernel"
	"github.com/chazu/contour/pkg/sketch"
)

// Resolver maps labels defined earlier in the script to their entities.
type Resolver struct {
	plane  kernel.Plane
	labels map[int]sketch.Entity
}

func newResolver(plane kernel.Plane) *Resolver {
	return &Resolver{plane: plane, labels: make(map[int]sketch.Entity)}
}

// Plane returns the plane of the sketch being parsed into.
func (r *Resolver) Plane() kernel.Plane { return r.plane }

// Entity returns the entity defined under label.
func (r *Resolver) Entity(label int) (sketch.Entity, error) {
	e, ok := r.labels[label]
	if !ok {
		return nil, fmt.Errorf("undefined label %d", label)
	}
	return e, nil
}

// Point returns the point defined under label.
func (r *Resolver) Point(label int) (*sketch.Point, error) {
	e, err := r.Entity(label)
	if err != nil {
		return nil, err
	}
	p, ok := e.(*sketch.Point)
	if !ok {
		return nil, fmt.Errorf("label %d is a %s, expected a point", label, e.TypeName())
	}
	return p, nil
}

// OptionalPoint is like Point but maps label 0 to nil.
func (r *Resolver) OptionalPoint(label int) (*sketch.Point, error) {
	if label == 0 {
		return nil, nil
	}
	return r.Point(label)
}

// Line returns the line defined under label.
func (r *Resolver) Line(label int) (*sketch.Line, error) {
	e, err := r.Entity(label)
	if err != nil {
		return nil, err
	}
	l, ok := e.(*sketch.Line)
	if !ok {
		return nil, fmt.Errorf("label %d is a %s, expected a line", label, e.TypeName())
	}
	return l, nil
}

// Curve returns the curve defined under label.
func (r *Resolver) Curve(label int) (sketch.Curve, error) {
	e, err := r.Entity(label)
	if err != nil {
		return nil, err
	}
	c, ok := e.(sketch.Curve)
	if !ok {
		return nil, fmt.Errorf("label %d is a %s, expected a curve", label, e.TypeName())
	}
	return c, nil
}

func (r *Resolver) define(label int, e sketch.Entity) error {
	if label <= 0 {
		return fmt.Errorf("invalid label %d", label)
	}
	if prev, dup := r.labels[label]; dup {
		return fmt.Errorf("label %d already defined by a %s", label, prev.TypeName())
	}
	r.labels[label] = e
	return nil
}
