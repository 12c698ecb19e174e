package solver

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// minimize runs BFGS on the sum of squared residuals. Relax does not apply:
// the line search chooses its own step lengths.
func (s *Solver) minimize(sys *system) Result {
	f := make([]float64, sys.m())
	objective := func(x []float64) float64 {
		sys.eval(f, x)
		return floats.Dot(f, f)
	}
	problem := optimize.Problem{
		Func: objective,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, objective, x, &fd.Settings{Formula: fd.Central})
		},
	}

	tol := s.settings.Tolerance
	settings := &optimize.Settings{
		MajorIterations: s.settings.MaxIter,
		Converger: &residualConverger{
			threshold: tol * tol,
			stall:     optimize.FunctionConverge{Absolute: tol * tol * 1e-3, Iterations: 50},
		},
		Recorder: &stepRecorder{solver: s, sys: sys},
	}

	x0 := sys.x()
	var res Result
	out, err := optimize.Minimize(problem, x0, settings, &optimize.BFGS{})
	if out == nil {
		s.logger.Warn("minimizer failed", zap.Error(err))
		sys.set(x0)
		res.Residual = sys.norm(x0)
		res.Status = Diverged
		return res
	}
	if err != nil {
		s.logger.Debug("minimizer stopped", zap.Error(err), zap.Stringer("reason", out.Status))
	}

	res.Iterations = out.MajorIterations
	res.Residual = math.Sqrt(math.Max(objective(out.X), 0))
	sys.set(out.X)
	switch {
	case res.Residual < tol:
		res.Status = Converged
	case out.Status == optimize.IterationLimit:
		res.Status = IterationLimitReached
	default:
		res.Status = Diverged
	}
	return res
}

// residualConverger stops as soon as ||F||² drops below threshold and
// otherwise falls back to detecting a stalled objective.
type residualConverger struct {
	threshold float64
	stall     optimize.FunctionConverge
}

func (c *residualConverger) Init(dim int) { c.stall.Init(dim) }

func (c *residualConverger) Converged(loc *optimize.Location) optimize.Status {
	if loc.F < c.threshold {
		return optimize.FunctionThreshold
	}
	return c.stall.Converged(loc)
}

// stepRecorder writes every accepted BFGS iterate back into the sketch.
type stepRecorder struct {
	solver *Solver
	sys    *system
	iter   int
}

func (r *stepRecorder) Init() error { return nil }

func (r *stepRecorder) Record(loc *optimize.Location, op optimize.Operation, _ *optimize.Stats) error {
	if op&optimize.MajorIteration == 0 {
		return nil
	}
	r.iter++
	r.sys.set(loc.X)
	norm := math.Sqrt(math.Max(loc.F, 0))
	r.solver.logger.Debug("solver step", zap.Int("iter", r.iter), zap.Float64("residual", norm))
	if r.solver.onIter != nil {
		r.solver.onIter(r.iter, norm)
	}
	return nil
}
