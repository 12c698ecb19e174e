package sketch

import "slices"

// Arg is a positional script argument: either a label reference or a
// literal vector such as a point's coordinates.
type Arg struct {
	Ref    int
	Vector []float64
}

// IsRef reports whether the argument references another entity.
func (a Arg) IsRef() bool { return a.Vector == nil }

// RefArg returns a label reference argument.
func RefArg(label int) Arg { return Arg{Ref: label} }

// VectorArg returns a literal vector argument.
func VectorArg(vs ...float64) Arg {
	if vs == nil {
		vs = []float64{}
	}
	return Arg{Vector: slices.Clone(vs)}
}

// Command is the structured form of one script command:
//
//	Type( label, args..., layer name, key=value, ... )
type Command struct {
	Type   string
	Label  int
	Args   []Arg
	Layer  string
	Params *Parameters

	// Line and Col locate the command in parsed source (1-based, 0 if unknown).
	Line int
	Col  int
}

// Refs returns the label references in argument order.
func (c Command) Refs() []int {
	var refs []int
	for _, a := range c.Args {
		if a.IsRef() {
			refs = append(refs, a.Ref)
		}
	}
	return refs
}

// Vectors returns the literal vector arguments in argument order.
func (c Command) Vectors() [][]float64 {
	var vs [][]float64
	for _, a := range c.Args {
		if !a.IsRef() {
			vs = append(vs, a.Vector)
		}
	}
	return vs
}

// Emitter hands out script labels during serialization. Label makes sure
// the command for e has been emitted and returns its label.
type Emitter interface {
	Label(e Entity) int
}

// command builds the common part of an entity's script command.
func command(e Entity, em Emitter, deps []Entity, extra ...Arg) Command {
	args := make([]Arg, 0, len(deps)+len(extra))
	for _, d := range deps {
		args = append(args, RefArg(em.Label(d)))
	}
	args = append(args, extra...)
	return Command{
		Type:   e.TypeName(),
		Args:   args,
		Layer:  e.Layer(),
		Params: e.Parameters().Clone(),
	}
}
