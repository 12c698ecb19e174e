package main

import (
	"errors"
	"fmt"

	"github.com/chazu/contour/pkg/display"
	"github.com/chazu/contour/pkg/engine"
	"github.com/chazu/contour/pkg/script"
	"github.com/chazu/contour/pkg/sketch"
	"github.com/chazu/contour/pkg/solver"
	"go.uber.org/zap"
)

// App runs the evaluate, solve and report pipeline.
type App struct {
	engine   *engine.Engine
	settings solver.Settings
	style    display.Style
	logger   *zap.Logger
}

// MeshData is the JSON-serializable per-layer line mesh.
type MeshData struct {
	Layer    string    `json:"layer"`
	Vertices []float32 `json:"vertices"`
	Indices  []uint32  `json:"indices"`
	Markers  []uint32  `json:"markers"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full outcome of one run.
type EvalResult struct {
	Script        string          `json:"script"`
	Status        string          `json:"status"`
	Iterations    int             `json:"iterations"`
	Residual      float64         `json:"residual"`
	Unsatisfied   []string        `json:"unsatisfied"`
	Unconstrained []string        `json:"unconstrained"`
	Meshes        []MeshData      `json:"meshes"`
	Errors        []EvalErrorData `json:"errors"`
	Warnings      []EvalErrorData `json:"warnings"`
}

// Converged reports whether the run produced a solved sketch.
func (r EvalResult) Converged() bool {
	return len(r.Errors) == 0 && r.Status == solver.Converged.String()
}

func newResult() EvalResult {
	return EvalResult{
		Status:        solver.Unsolved.String(),
		Unsatisfied:   []string{},
		Unconstrained: []string{},
		Meshes:        []MeshData{},
		Errors:        []EvalErrorData{},
		Warnings:      []EvalErrorData{},
	}
}

// NewApp creates an App solving with settings. A nil logger disables logging.
func NewApp(settings solver.Settings, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		engine:   engine.NewEngine(),
		settings: settings,
		style:    display.DefaultStyle,
		logger:   logger,
	}
}

// SetLayerProps sets the colour and visibility of a layer for later runs.
func (a *App) SetLayerProps(layer string, props display.LayerProps) {
	a.style = a.style.WithLayer(layer, props)
}

// EvaluateLisp builds a sketch from Lisp source, solves it and reports.
func (a *App) EvaluateLisp(source string) EvalResult {
	result := newResult()

	sk, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.logger.Error("evaluate fatal error", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}
	for _, w := range engine.Warnings(sk) {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Message})
	}

	a.solve(sk, &result)
	return result
}

// EvaluateScript parses a sketch script, solves it and reports.
func (a *App) EvaluateScript(source string) EvalResult {
	result := newResult()

	sk, err := script.Parse(source, nil)
	if err != nil {
		a.logger.Debug("script rejected", zap.Error(err))
		data := EvalErrorData{Message: err.Error()}
		var pe *script.ParseError
		if errors.As(err, &pe) {
			data = EvalErrorData{Line: pe.Line, Col: pe.Col, Message: pe.Msg}
			if pe.Command != "" {
				data.Message = pe.Command + ": " + pe.Msg
			}
		}
		result.Errors = append(result.Errors, data)
		return result
	}
	for _, v := range sk.Validate() {
		if v.Severity == sketch.SeverityWarning {
			result.Warnings = append(result.Warnings, EvalErrorData{Message: v.Message})
		}
	}

	a.solve(sk, &result)
	return result
}

// solve runs the solver on sk and fills in the solved script and meshes.
func (a *App) solve(sk *sketch.Sketch, result *EvalResult) {
	res, err := solver.Solve(sk, a.settings, solver.WithLogger(a.logger))
	if err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return
	}
	result.Status = res.Status.String()
	result.Iterations = res.Iterations
	result.Residual = res.Residual
	for _, c := range res.Unsatisfied {
		result.Unsatisfied = append(result.Unsatisfied,
			fmt.Sprintf("%s[%d] error %g", a.name(sk, c.Entity), c.Index, c.Error))
	}
	for _, d := range res.Unconstrained {
		result.Unconstrained = append(result.Unconstrained,
			fmt.Sprintf("%s[%d]", a.name(sk, d.Entity), d.Index))
	}

	text, err := script.Generate(sk)
	if err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: "serialize: " + err.Error()})
		return
	}
	result.Script = text

	for i, m := range a.style.Tessellate(sk) {
		result.Meshes = append(result.Meshes, MeshData{
			Layer:    m.Layer,
			Vertices: m.Vertices,
			Indices:  m.Indices,
			Markers:  m.Markers,
			Color:    a.style.LayerColor(m.Layer, i),
		})
	}
}

// name identifies e by type and position in sk.
func (a *App) name(sk *sketch.Sketch, e sketch.Entity) string {
	i, _ := sk.Find(e)
	return fmt.Sprintf("%s#%d", e.TypeName(), i+1)
}
