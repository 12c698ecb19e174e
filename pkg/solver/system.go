package solver

import (
	"math"

	"github.com/chazu/contour/pkg/sketch"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DoFRef addresses one degree of freedom.
type DoFRef struct {
	Entity sketch.Entity
	Index  int
}

// ConstraintRef addresses one constraint residual, with its value at the
// time it was reported.
type ConstraintRef struct {
	Entity sketch.Entity
	Index  int
	Error  float64
}

// system is the flattened view of a sketch: the unknowns and residuals in
// iteration order.
type system struct {
	dofs []DoFRef
	cons []ConstraintRef
}

func newSystem(sk *sketch.Sketch) *system {
	sys := &system{}
	for _, e := range sk.Entities() {
		for i := range e.NDoF() {
			sys.dofs = append(sys.dofs, DoFRef{Entity: e, Index: i})
		}
		for i := range e.NConstraints() {
			sys.cons = append(sys.cons, ConstraintRef{Entity: e, Index: i})
		}
	}
	return sys
}

func (s *system) n() int { return len(s.dofs) }
func (s *system) m() int { return len(s.cons) }

// x reads the current DoF values.
func (s *system) x() []float64 {
	x := make([]float64, len(s.dofs))
	for i, d := range s.dofs {
		x[i] = d.Entity.DoF(d.Index)
	}
	return x
}

// set writes x back into the entities.
func (s *system) set(x []float64) {
	for i, d := range s.dofs {
		d.Entity.SetDoF(d.Index, x[i])
	}
}

// residuals fills dst with F at the current DoF values.
func (s *system) residuals(dst []float64) {
	for i, c := range s.cons {
		dst[i] = c.Entity.ConstraintError(c.Index)
	}
}

// eval sets x and fills dst with F(x). It has the signature fd.Jacobian
// expects.
func (s *system) eval(dst, x []float64) {
	s.set(x)
	s.residuals(dst)
}

func (s *system) norm(x []float64) float64 {
	f := make([]float64, s.m())
	s.eval(f, x)
	return floats.Norm(f, 2)
}

// unconstrained returns the DoFs whose Jacobian column is zero: no residual
// reacts to them.
func (s *system) unconstrained(jac *mat.Dense) []DoFRef {
	if jac == nil {
		return append([]DoFRef(nil), s.dofs...)
	}
	var out []DoFRef
	col := make([]float64, s.m())
	for j, d := range s.dofs {
		mat.Col(col, j, jac)
		if floats.Norm(col, math.Inf(1)) < zeroColumn {
			out = append(out, d)
		}
	}
	return out
}

const zeroColumn = 1e-12

// Unsatisfied returns every constraint residual of sk whose magnitude is at
// least tol. Editors use it to mark constraints after a failed solve.
func Unsatisfied(sk *sketch.Sketch, tol float64) []ConstraintRef {
	var out []ConstraintRef
	for _, e := range sk.Entities() {
		for i := range e.NConstraints() {
			if v := e.ConstraintError(i); !(math.Abs(v) < tol) {
				out = append(out, ConstraintRef{Entity: e, Index: i, Error: v})
			}
		}
	}
	return out
}
