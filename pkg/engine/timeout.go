package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/contour/pkg/sketch"
)

// EvalTimeout is the default hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrEvalTimeout is returned when a program runs past the engine's limit.
	ErrEvalTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a newer one had started.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

type evalResult struct {
	sketch *sketch.Sketch
	errors []EvalError
	err    error
}

// SetTimeout changes the evaluation limit. Zero or less restores EvalTimeout.
func (e *Engine) SetTimeout(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timeout = d
}

func (e *Engine) limit() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timeout <= 0 {
		return EvalTimeout
	}
	return e.timeout
}

func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation == gen
}

// wait blocks for the worker started as generation gen. A worker that
// outlives the limit keeps running; its result lands in the buffered
// channel and is dropped.
func (e *Engine) wait(ch <-chan evalResult, gen uint64) (*sketch.Sketch, []EvalError, error) {
	limit := e.limit()
	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case res := <-ch:
		if !e.current(gen) {
			return nil, nil, ErrSuperseded
		}
		return res.sketch, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrEvalTimeout, limit)
	}
}
