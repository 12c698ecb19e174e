package solver

import (
	"fmt"
	"math"

	"github.com/chazu/contour/pkg/sketch"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Status is the solver state. A solve moves from Unsolved through Solving to
// one of the terminal states.
type Status int

const (
	Unsolved Status = iota
	Solving
	Converged
	Diverged
	IterationLimitReached
)

func (s Status) String() string {
	switch s {
	case Unsolved:
		return "unsolved"
	case Solving:
		return "solving"
	case Converged:
		return "converged"
	case Diverged:
		return "diverged"
	case IterationLimitReached:
		return "iteration limit reached"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result reports the outcome of a solve. Non-convergence is a status, not
// an error; the sketch keeps its last iterated state.
type Result struct {
	Status     Status
	Iterations int
	Residual   float64 // ||F|| at the final state

	// Unsatisfied lists residuals whose magnitude is at least the tolerance.
	Unsatisfied []ConstraintRef
	// Unconstrained lists DoFs no constraint reacts to.
	Unconstrained []DoFRef
}

// IterationFunc observes every accepted step.
type IterationFunc func(iter int, residual float64)

// Option configures a Solver.
type Option func(*Solver)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Solver) { s.logger = l }
}

// WithIterationCallback registers fn to be called after each accepted step.
func WithIterationCallback(fn IterationFunc) Option {
	return func(s *Solver) { s.onIter = fn }
}

// Solver runs solves with fixed settings. It is not safe for concurrent use.
type Solver struct {
	settings Settings
	logger   *zap.Logger
	onIter   IterationFunc
	status   Status
}

// New validates settings and returns a Solver.
func New(settings Settings, opts ...Option) (*Solver, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	s := &Solver{settings: settings, logger: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Solve is shorthand for New followed by Solver.Solve.
func Solve(sk *sketch.Sketch, settings Settings, opts ...Option) (Result, error) {
	s, err := New(settings, opts...)
	if err != nil {
		return Result{}, err
	}
	return s.Solve(sk), nil
}

// Settings returns the solver settings.
func (s *Solver) Settings() Settings { return s.settings }

// Status returns the state of the most recent solve.
func (s *Solver) Status() Status { return s.status }

// Solve adjusts the DoFs of sk until every residual vanishes or the solver
// gives up. It runs to completion on the calling goroutine.
func (s *Solver) Solve(sk *sketch.Sketch) Result {
	sys := newSystem(sk)
	s.status = Solving
	s.logger.Debug("solve started",
		zap.Stringer("type", s.settings.Type),
		zap.Int("dofs", sys.n()),
		zap.Int("residuals", sys.m()))

	var res Result
	switch {
	case sys.m() == 0 || sys.n() == 0:
		x := sys.x()
		res.Residual = sys.norm(x)
		res.Status = Diverged
		if res.Residual < s.settings.Tolerance {
			res.Status = Converged
		}
	case s.settings.Type == Minimizer:
		res = s.minimize(sys)
	default:
		res = s.levenbergMarquardt(sys)
	}

	res.Unconstrained = sys.unconstrained(s.jacobian(sys, sys.x()))
	res.Unsatisfied = Unsatisfied(sk, s.settings.Tolerance)
	s.status = res.Status
	sk.Invalidate()

	fields := []zap.Field{
		zap.Stringer("status", res.Status),
		zap.Int("iterations", res.Iterations),
		zap.Float64("residual", res.Residual),
		zap.Int("unsatisfied", len(res.Unsatisfied)),
		zap.Int("unconstrained", len(res.Unconstrained)),
	}
	if res.Status == Converged {
		s.logger.Debug("solve finished", fields...)
	} else {
		s.logger.Warn("solve did not converge", fields...)
	}
	return res
}

// jacobian evaluates dF/dx at x by central differences and leaves the
// sketch at x. It returns nil for an empty system.
func (s *Solver) jacobian(sys *system, x []float64) *mat.Dense {
	if sys.m() == 0 || sys.n() == 0 {
		return nil
	}
	jac := mat.NewDense(sys.m(), sys.n(), nil)
	fd.Jacobian(jac, sys.eval, x, &fd.JacobianSettings{Formula: fd.Central})
	sys.set(x)
	return jac
}

const (
	lambdaInit = 1e-3
	lambdaMin  = 1e-12
	lambdaMax  = 1e16
)

// levenbergMarquardt solves (JᵀJ + λI)δ = -JᵀF for each step. The damped
// normal equations are well posed for any shape of J, so under- and
// over-constrained systems are handled alike.
func (s *Solver) levenbergMarquardt(sys *system) Result {
	n, m := sys.n(), sys.m()
	x := sys.x()
	f := make([]float64, m)
	sys.eval(f, x)
	norm := floats.Norm(f, 2)

	var (
		res    Result
		lambda = lambdaInit
		trial  = make([]float64, n)
		ftrial = make([]float64, m)
		jtj    = mat.NewSymDense(n, nil)
		grad   = mat.NewVecDense(n, nil)
		step   mat.VecDense
		chol   mat.Cholesky
	)

	for {
		if isBad(norm) {
			res.Status = Diverged
			break
		}
		if norm < s.settings.Tolerance {
			res.Status = Converged
			break
		}
		if res.Iterations >= s.settings.MaxIter {
			res.Status = IterationLimitReached
			break
		}
		res.Iterations++

		jac := s.jacobian(sys, x)
		jtj.SymOuterK(1, jac.T())
		grad.MulVec(jac.T(), mat.NewVecDense(m, f))

		accepted := false
		for !accepted && lambda <= lambdaMax {
			a := mat.NewSymDense(n, nil)
			a.CopySym(jtj)
			for i := range n {
				a.SetSym(i, i, a.At(i, i)+lambda)
			}
			if !chol.Factorize(a) {
				lambda *= 10
				continue
			}
			if err := chol.SolveVecTo(&step, grad); err != nil {
				lambda *= 10
				continue
			}
			for i := range n {
				trial[i] = x[i] - s.settings.Relax*step.AtVec(i)
			}
			sys.eval(ftrial, trial)
			tnorm := floats.Norm(ftrial, 2)
			if !isBad(tnorm) && tnorm < norm {
				copy(x, trial)
				copy(f, ftrial)
				norm = tnorm
				lambda = math.Max(lambda/10, lambdaMin)
				accepted = true
			} else {
				lambda *= 10
			}
		}
		sys.set(x)
		if !accepted {
			// No damping produces descent: stuck in a local minimum.
			res.Status = Diverged
			break
		}

		s.logger.Debug("solver step",
			zap.Int("iter", res.Iterations),
			zap.Float64("residual", norm),
			zap.Float64("lambda", lambda))
		if s.onIter != nil {
			s.onIter(res.Iterations, norm)
		}
	}

	sys.set(x)
	res.Residual = norm
	return res
}

func isBad(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }
