package sketch

import (
	"slices"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
)

// DefaultLayer is the layer assigned to new entities.
const DefaultLayer = "standard"

// Entity is the capability set shared by every unit of sketch content.
//
// Geometric primitives own degrees of freedom; constraints own residuals.
// Dependencies are non-owning references to other entities of the same
// sketch; the Sketch holds the only owning references.
type Entity interface {
	// ID is an opaque identity, stable for the lifetime of the entity.
	ID() uuid.UUID
	// TypeName is the name under which the entity's script rule is registered.
	TypeName() string

	Layer() string
	SetLayer(name string)

	// Parameters are user-set constants, DefaultParameters their initial values.
	Parameters() *Parameters
	DefaultParameters() *Parameters

	NDoF() int
	DoF(i int) float64
	SetDoF(i int, v float64)

	NConstraints() int
	ConstraintError(i int) float64

	// Hash is a content fingerprint of the entity's current solved state.
	Hash() uint64

	// Dependencies lists the entities this entity reads, without duplicates.
	Dependencies() []Entity
	// ReplaceDependency substitutes repl for every reference to old.
	// It panics if repl cannot play old's role.
	ReplaceDependency(old, repl Entity)

	// ScaleSketch rescales stored geometric constants by factor.
	ScaleSketch(factor float64)

	// Clone returns a copy with a fresh identity that still references the
	// original dependencies; Sketch.Clone relinks them.
	Clone() Entity

	// ScriptCommand describes this entity as a script command. Dependencies
	// are referenced through em, which emits them first.
	ScriptCommand(em Emitter) Command
}

// Curve is an entity usable as the target of a point-on-curve constraint.
type Curve interface {
	Entity
	// MinDist returns the minimum distance from p to the curve.
	MinDist(p v3.Vec) float64
}

// Base carries the state common to all entities. Concrete entities embed it
// and override the capabilities meaningful to them.
type Base struct {
	typeName string
	id       uuid.UUID
	layer    string
	params   *Parameters
	defaults *Parameters
}

func newBase(typeName string) Base {
	return Base{
		typeName: typeName,
		id:       uuid.New(),
		layer:    DefaultLayer,
		params:   NewParameters(),
		defaults: NewParameters(),
	}
}

// TypeName returns the registered script type name.
func (b *Base) TypeName() string { return b.typeName }

// ID returns the entity identity.
func (b *Base) ID() uuid.UUID { return b.id }

// Layer returns the layer name.
func (b *Base) Layer() string { return b.layer }

// SetLayer moves the entity to another layer.
func (b *Base) SetLayer(name string) { b.layer = name }

// Parameters returns the current parameter set.
func (b *Base) Parameters() *Parameters { return b.params }

// DefaultParameters returns the parameter values assigned at construction.
func (b *Base) DefaultParameters() *Parameters { return b.defaults }

// NDoF is zero unless overridden.
func (b *Base) NDoF() int { return 0 }

// DoF panics unless overridden: the entity has no degrees of freedom.
func (b *Base) DoF(i int) float64 {
	badDoF(b.typeName, i, 0)
	return 0
}

// SetDoF panics unless overridden.
func (b *Base) SetDoF(i int, _ float64) { badDoF(b.typeName, i, 0) }

// NConstraints is zero unless overridden.
func (b *Base) NConstraints() int { return 0 }

// ConstraintError panics unless overridden: the entity constrains nothing.
func (b *Base) ConstraintError(i int) float64 {
	badConstraint(b.typeName, i, 0)
	return 0
}

// Hash returns the empty fold unless overridden.
func (b *Base) Hash() uint64 { return HashValues() }

// ScaleSketch does nothing unless overridden.
func (b *Base) ScaleSketch(float64) {}

// declare registers a parameter with its default value.
func (b *Base) declare(key string, v Value) {
	b.defaults.Set(key, v)
	b.params.Set(key, v.clone())
}

// cloneBase copies layer and parameters under a fresh identity.
func (b *Base) cloneBase() Base {
	return Base{
		typeName: b.typeName,
		id:       uuid.New(),
		layer:    b.layer,
		params:   b.params.Clone(),
		defaults: b.defaults.Clone(),
	}
}

// DependsOn reports whether dep is a direct dependency of e.
func DependsOn(e, dep Entity) bool {
	return slices.Contains(e.Dependencies(), dep)
}

// uniqueDeps drops nil entries and duplicates while keeping order.
func uniqueDeps(es ...Entity) []Entity {
	out := make([]Entity, 0, len(es))
	for _, e := range es {
		if e == nil || slices.Contains(out, e) {
			continue
		}
		out = append(out, e)
	}
	return out
}
