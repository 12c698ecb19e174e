package sketch

import "fmt"

// ValidationSeverity indicates whether a validation finding breaks the
// sketch or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // invariant violation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Entity   Entity             // offending entity (nil if sketch-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Entity == nil {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, describe(e.Entity), e.Message)
}

// Validate runs the structural checks on the sketch and returns the
// findings. An empty slice means the sketch is consistent. Validate never
// mutates the sketch.
func (s *Sketch) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, s.validateAcyclic()...)
	errs = append(errs, s.validateReferences()...)
	errs = append(errs, s.validateTangents()...)
	return errs
}

// validateAcyclic checks for dependency cycles using DFS with 3-color
// marking. Reaching a gray entity means it is on the current path.
func (s *Sketch) validateAcyclic() []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[Entity]int)
	var errs []ValidationError

	var visit func(e Entity) bool
	visit = func(e Entity) bool {
		switch color[e] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				Entity:   e,
				Message:  "dependency cycle detected",
				Severity: SeverityError,
			})
			return true
		}

		color[e] = gray
		for _, d := range e.Dependencies() {
			if visit(d) {
				return true
			}
		}
		color[e] = black
		return false
	}

	for _, e := range s.order {
		if color[e] == white && visit(e) {
			// One cycle is enough.
			break
		}
	}
	return errs
}

// validateReferences checks that every dependency is owned by the sketch.
func (s *Sketch) validateReferences() []ValidationError {
	var errs []ValidationError
	for _, e := range s.order {
		for _, d := range e.Dependencies() {
			if !s.Contains(d) {
				errs = append(errs, ValidationError{
					Entity:   e,
					Message:  fmt.Sprintf("dependency %s is not owned by the sketch", describe(d)),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateTangents warns about tangent constraints whose lines do not meet.
func (s *Sketch) validateTangents() []ValidationError {
	var errs []ValidationError
	for _, e := range s.order {
		t, ok := e.(*Tangent)
		if !ok {
			continue
		}
		if _, err := t.CommonPoint(); err != nil {
			errs = append(errs, ValidationError{
				Entity:   e,
				Message:  "lines do not share a point",
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
