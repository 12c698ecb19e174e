package solver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidSettings is returned for settings outside their valid range.
var ErrInvalidSettings = errors.New("solver: invalid settings")

// Type selects the solve strategy. Which one suits a sketch is a user
// choice; RootFinder is the default.
type Type int

const (
	RootFinder Type = iota // Levenberg-Marquardt on F(x) = 0
	Minimizer              // BFGS on sum F(x)^2
)

func (t Type) String() string {
	switch t {
	case RootFinder:
		return "root"
	case Minimizer:
		return "minimize"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// ParseType accepts the names written by String, case-insensitively.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "root", "rootfinder", "root_finder":
		return RootFinder, nil
	case "minimize", "minimizer":
		return Minimizer, nil
	}
	return 0, fmt.Errorf("%w: unknown solver type %q", ErrInvalidSettings, s)
}

// MarshalYAML writes the type by name.
func (t Type) MarshalYAML() (any, error) { return t.String(), nil }

// UnmarshalYAML reads the type by name.
func (t *Type) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseType(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*t = parsed
	return nil
}

// Settings control a solve.
type Settings struct {
	Type      Type    `yaml:"type"`
	Tolerance float64 `yaml:"tolerance"` // residual norm threshold
	Relax     float64 `yaml:"relax"`     // step damping in (0, 1]
	MaxIter   int     `yaml:"max_iter"`  // hard iteration cap
}

// DefaultSettings returns {RootFinder, 1e-10, 1, 1000}.
func DefaultSettings() Settings {
	return Settings{
		Type:      RootFinder,
		Tolerance: 1e-10,
		Relax:     1,
		MaxIter:   1000,
	}
}

// Validate checks value ranges.
func (s Settings) Validate() error {
	switch {
	case s.Type != RootFinder && s.Type != Minimizer:
		return fmt.Errorf("%w: unknown type %d", ErrInvalidSettings, int(s.Type))
	case !(s.Tolerance > 0):
		return fmt.Errorf("%w: tolerance must be positive, got %g", ErrInvalidSettings, s.Tolerance)
	case !(s.Relax > 0 && s.Relax <= 1):
		return fmt.Errorf("%w: relax must be in (0, 1], got %g", ErrInvalidSettings, s.Relax)
	case s.MaxIter < 1:
		return fmt.Errorf("%w: max_iter must be at least 1, got %d", ErrInvalidSettings, s.MaxIter)
	}
	return nil
}

// LoadSettings reads YAML settings from r. Keys absent from the document
// keep their default values; an empty document yields the defaults.
func LoadSettings(r io.Reader) (Settings, error) {
	s := DefaultSettings()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("solver: decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadSettingsFile reads YAML settings from path.
func LoadSettingsFile(path string) (Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return Settings{}, fmt.Errorf("solver: %w", err)
	}
	defer f.Close()
	return LoadSettings(f)
}
