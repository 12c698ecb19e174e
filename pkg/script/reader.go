package script

import (
	"errors"
	"fmt"
	"io"
	"text/scanner"

	"github.com/chazu/contour/pkg/kernel"
	"github.com/chazu/contour/pkg/sketch"
)

// Parse builds a new sketch in plane from src. A nil plane means kernel.XY.
func Parse(src string, plane kernel.Plane) (*sketch.Sketch, error) {
	sk := sketch.New(plane)
	if err := ParseInto(sk, src); err != nil {
		return nil, err
	}
	return sk, nil
}

// ParseInto parses src and adds the resulting entities to sk. Labels are
// scoped to src. Parsing is all-or-nothing: on error sk is left untouched.
func ParseInto(sk *sketch.Sketch, src string) error {
	cmds, err := ParseCommands(src)
	if err != nil {
		return err
	}
	es, err := Build(cmds, sk.Plane())
	if err != nil {
		return err
	}
	for _, e := range es {
		if err := sk.Insert(e); err != nil {
			return err
		}
	}
	if len(es) > 0 {
		sk.Invalidate()
	}
	return nil
}

// Read parses the script read from r into sk.
func Read(r io.Reader, sk *sketch.Sketch) error {
	src, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("script: read: %w", err)
	}
	return ParseInto(sk, string(src))
}

// Build constructs the entities described by cmds, in order, resolving
// label references among them.
func Build(cmds []sketch.Command, plane kernel.Plane) ([]sketch.Entity, error) {
	if plane == nil {
		plane = kernel.XY
	}
	r := newResolver(plane)
	es := make([]sketch.Entity, 0, len(cmds))
	for _, cmd := range cmds {
		e, err := build(cmd, r)
		if err != nil {
			return nil, errorAt(scanner.Position{Line: cmd.Line, Column: cmd.Col}, cmd.Type, "%v", err)
		}
		es = append(es, e)
	}
	return es, nil
}

func build(cmd sketch.Command, r *Resolver) (sketch.Entity, error) {
	rule, ok := Lookup(cmd.Type)
	if !ok {
		return nil, errors.New("unknown entity type")
	}
	e, err := rule(cmd, r)
	if err != nil {
		return nil, err
	}
	if cmd.Layer != "" {
		e.SetLayer(cmd.Layer)
	}
	if cmd.Params != nil {
		if err := e.Parameters().Merge(cmd.Params); err != nil {
			return nil, err
		}
	}
	if err := r.define(cmd.Label, e); err != nil {
		return nil, err
	}
	return e, nil
}
