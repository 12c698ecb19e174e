// Command contour solves a constrained sketch and prints the solved script.
//
// Usage:
//
//	contour [flags] [file]
//
// The input is a sketch script, or a Lisp program with -lisp. Without a file
// argument the input is read from standard input.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chazu/contour/pkg/display"
	"github.com/chazu/contour/pkg/solver"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run is main without the process exit, returning the exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("contour", flag.ContinueOnError)
	fs.SetOutput(stderr)
	lisp := fs.Bool("lisp", false, "treat the input as a Lisp program")
	settingsPath := fs.String("settings", "", "solver settings YAML file")
	asJSON := fs.Bool("json", false, "print the full result as JSON")
	verbose := fs.Bool("v", false, "verbose logging")
	hide := fs.String("hide", "", "comma-separated layers to leave out of the meshes")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logger := newLogger(stderr, *verbose)
	defer logger.Sync()

	settings := solver.DefaultSettings()
	if *settingsPath != "" {
		var err error
		if settings, err = solver.LoadSettingsFile(*settingsPath); err != nil {
			fmt.Fprintln(stderr, "contour:", err)
			return 1
		}
	}

	src, err := readInput(fs.Args(), stdin)
	if err != nil {
		fmt.Fprintln(stderr, "contour:", err)
		return 1
	}

	app := NewApp(settings, logger)
	for _, layer := range strings.Split(*hide, ",") {
		if layer = strings.TrimSpace(layer); layer != "" {
			app.SetLayerProps(layer, display.LayerProps{Hidden: true})
		}
	}
	var result EvalResult
	if *lisp {
		result = app.EvaluateLisp(src)
	} else {
		result = app.EvaluateScript(src)
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintln(stderr, "contour:", err)
			return 1
		}
	} else {
		report(result, stdout, stderr)
	}

	switch {
	case len(result.Errors) > 0:
		return 1
	case !result.Converged():
		return 3
	}
	return 0
}

// report prints the solved script on stdout and diagnostics on stderr.
func report(r EvalResult, stdout, stderr io.Writer) {
	for _, e := range r.Errors {
		if e.Line > 0 {
			fmt.Fprintf(stderr, "error: %d:%d: %s\n", e.Line, e.Col, e.Message)
		} else {
			fmt.Fprintf(stderr, "error: %s\n", e.Message)
		}
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w.Message)
	}
	if len(r.Errors) > 0 {
		return
	}
	fmt.Fprint(stdout, r.Script)
	fmt.Fprintf(stderr, "%s after %d iterations, residual %g\n", r.Status, r.Iterations, r.Residual)
	for _, u := range r.Unsatisfied {
		fmt.Fprintf(stderr, "unsatisfied: %s\n", u)
	}
	for _, u := range r.Unconstrained {
		fmt.Fprintf(stderr, "unconstrained: %s\n", u)
	}
}

func readInput(args []string, stdin io.Reader) (string, error) {
	switch len(args) {
	case 0:
		b, err := io.ReadAll(stdin)
		return string(b), err
	case 1:
		if args[0] == "-" {
			b, err := io.ReadAll(stdin)
			return string(b), err
		}
		b, err := os.ReadFile(args[0])
		return string(b), err
	}
	return "", fmt.Errorf("expected at most one input file, got %d", len(args))
}

// newLogger builds a console logger writing to w: debug level when verbose,
// warnings only otherwise.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(level),
	)
	return zap.New(core)
}
