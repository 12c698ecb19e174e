package script

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/chazu/contour/pkg/sketch"
)

// emitter assigns labels lazily while walking the sketch. Asking for the
// label of an entity emits its command first, after its dependencies.
type emitter struct {
	labels map[sketch.Entity]int
	cmds   []sketch.Command
}

func (em *emitter) Label(e sketch.Entity) int {
	if l, ok := em.labels[e]; ok {
		return l
	}
	cmd := e.ScriptCommand(em)
	cmd.Label = len(em.cmds) + 1
	em.labels[e] = cmd.Label
	em.cmds = append(em.cmds, cmd)
	return cmd.Label
}

// Commands returns the commands describing sk in dependency order. Every
// entity appears exactly once, after all entities it references. A sketch
// with structural errors is rejected.
func Commands(sk *sketch.Sketch) ([]sketch.Command, error) {
	for _, v := range sk.Validate() {
		if v.Severity == sketch.SeverityError {
			return nil, fmt.Errorf("script: cannot serialize: %w", v)
		}
	}
	em := &emitter{labels: make(map[sketch.Entity]int)}
	for _, e := range sk.Entities() {
		em.Label(e)
	}
	for _, cmd := range em.cmds {
		if err := checkFinite(cmd); err != nil {
			return nil, err
		}
	}
	return em.cmds, nil
}

// checkFinite rejects commands carrying NaN or infinite numbers, which the
// number syntax cannot express.
func checkFinite(cmd sketch.Command) error {
	for _, a := range cmd.Args {
		if !a.IsRef() && !allFinite(a.Vector) {
			return fmt.Errorf("script: cannot serialize %s %d: non-finite coordinate %s",
				cmd.Type, cmd.Label, formatVector(a.Vector))
		}
	}
	if key, ok := nonFiniteParam(cmd.Params); ok {
		return fmt.Errorf("script: cannot serialize %s %d: parameter %s is not finite",
			cmd.Type, cmd.Label, key)
	}
	return nil
}

// nonFiniteParam returns the first key, nested keys joined by dots, whose
// value holds a NaN or infinity.
func nonFiniteParam(p *sketch.Parameters) (string, bool) {
	for _, k := range p.Keys() {
		v, _ := p.Get(k)
		switch v.Kind {
		case sketch.KindDouble:
			if !allFinite([]float64{v.Double}) {
				return k, true
			}
		case sketch.KindVector:
			if !allFinite(v.Vector) {
				return k, true
			}
		case sketch.KindSet:
			if sub, ok := nonFiniteParam(v.Set); ok {
				return k + "." + sub, true
			}
		}
	}
	return "", false
}

func allFinite(vs []float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Write serializes sk to w.
func Write(w io.Writer, sk *sketch.Sketch) error {
	cmds, err := Commands(sk)
	if err != nil {
		return err
	}
	for i, cmd := range cmds {
		sep := ",\n"
		if i == len(cmds)-1 {
			sep = "\n"
		}
		if _, err := io.WriteString(w, FormatCommand(cmd)+sep); err != nil {
			return fmt.Errorf("script: write: %w", err)
		}
	}
	return nil
}

// Generate serializes sk to a string.
func Generate(sk *sketch.Sketch) (string, error) {
	var b strings.Builder
	if err := Write(&b, sk); err != nil {
		return "", err
	}
	return b.String(), nil
}

// FormatCommand renders one command:
//
//	Type( label, args..., layer name, key=value, ... )
func FormatCommand(cmd sketch.Command) string {
	parts := []string{strconv.Itoa(cmd.Label)}
	for _, a := range cmd.Args {
		if a.IsRef() {
			parts = append(parts, strconv.Itoa(a.Ref))
		} else {
			parts = append(parts, formatVector(a.Vector))
		}
	}
	if cmd.Layer != "" {
		parts = append(parts, "layer "+formatName(cmd.Layer))
	}
	parts = append(parts, formatParams(cmd.Params)...)
	return cmd.Type + "( " + strings.Join(parts, ", ") + " )"
}

func formatParams(p *sketch.Parameters) []string {
	var out []string
	for _, k := range p.Keys() {
		v, _ := p.Get(k)
		out = append(out, k+"="+formatValue(v))
	}
	return out
}

func formatValue(v sketch.Value) string {
	switch v.Kind {
	case sketch.KindVector:
		return formatVector(v.Vector)
	case sketch.KindEnum:
		return formatName(v.Enum)
	case sketch.KindSet:
		return "{" + strings.Join(formatParams(v.Set), ", ") + "}"
	default:
		return formatFloat(v.Double)
	}
}

func formatVector(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = formatFloat(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// formatFloat writes the shortest text that parses back to exactly v.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatName writes identifiers bare and anything else quoted.
func formatName(s string) string {
	if isIdent(s) {
		return s
	}
	return strconv.Quote(s)
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}
