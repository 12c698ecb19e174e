package sketch

import (
	"fmt"
	"slices"
)

// ValueKind distinguishes the kinds of parameter values.
type ValueKind int

const (
	KindDouble ValueKind = iota // scalar
	KindVector                  // fixed-length list of scalars
	KindEnum                    // identifier chosen from a set of names
	KindSet                     // nested parameter set
)

func (k ValueKind) String() string {
	switch k {
	case KindDouble:
		return "double"
	case KindVector:
		return "vector"
	case KindEnum:
		return "enum"
	case KindSet:
		return "set"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Value is one entry of a parameter set.
type Value struct {
	Kind   ValueKind
	Double float64
	Vector []float64
	Enum   string
	Set    *Parameters
}

// Double returns a scalar value.
func Double(v float64) Value { return Value{Kind: KindDouble, Double: v} }

// Vector returns a vector value.
func Vector(vs ...float64) Value { return Value{Kind: KindVector, Vector: slices.Clone(vs)} }

// Enum returns an identifier value.
func Enum(name string) Value { return Value{Kind: KindEnum, Enum: name} }

// Set returns a nested parameter set value.
func Set(p *Parameters) Value { return Value{Kind: KindSet, Set: p} }

// Equal reports whether two values are of the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindDouble:
		return v.Double == o.Double
	case KindVector:
		return slices.Equal(v.Vector, o.Vector)
	case KindEnum:
		return v.Enum == o.Enum
	case KindSet:
		return v.Set.Equal(o.Set)
	}
	return false
}

func (v Value) clone() Value {
	switch v.Kind {
	case KindVector:
		v.Vector = slices.Clone(v.Vector)
	case KindSet:
		v.Set = v.Set.Clone()
	}
	return v
}

// Parameters is an ordered key/value configuration bag. Parameters are user
// set constants such as a dimension's target value; they are never solved for.
type Parameters struct {
	keys   []string
	values map[string]Value
}

// NewParameters returns an empty parameter set.
func NewParameters() *Parameters {
	return &Parameters{values: make(map[string]Value)}
}

// Len returns the number of entries.
func (p *Parameters) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Keys returns the keys in insertion order.
func (p *Parameters) Keys() []string {
	if p == nil {
		return nil
	}
	return slices.Clone(p.keys)
}

// Set inserts or replaces an entry.
func (p *Parameters) Set(key string, v Value) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = v
}

// Get returns the entry for key.
func (p *Parameters) Get(key string) (Value, bool) {
	if p == nil {
		return Value{}, false
	}
	v, ok := p.values[key]
	return v, ok
}

// Double returns the scalar stored under key. It panics if the key is missing
// or not a scalar; entity code only reads keys it declared itself.
func (p *Parameters) Double(key string) float64 {
	v, ok := p.Get(key)
	if !ok || v.Kind != KindDouble {
		panic(fmt.Sprintf("sketch: parameter %q is not a double", key))
	}
	return v.Double
}

// SetDouble replaces the scalar stored under key.
func (p *Parameters) SetDouble(key string, v float64) {
	p.Set(key, Double(v))
}

// Clone returns a deep copy.
func (p *Parameters) Clone() *Parameters {
	if p == nil {
		return nil
	}
	c := &Parameters{
		keys:   slices.Clone(p.keys),
		values: make(map[string]Value, len(p.values)),
	}
	for k, v := range p.values {
		c.values[k] = v.clone()
	}
	return c
}

// Equal reports whether both sets hold the same keys, in the same order, with
// equal values.
func (p *Parameters) Equal(o *Parameters) bool {
	if p.Len() != o.Len() {
		return false
	}
	if p.Len() == 0 {
		return true
	}
	if !slices.Equal(p.keys, o.keys) {
		return false
	}
	for k, v := range p.values {
		if !v.Equal(o.values[k]) {
			return false
		}
	}
	return true
}

// Merge copies entries from o into p. Every key in o must already exist in p
// with the same kind; nested sets are merged recursively.
func (p *Parameters) Merge(o *Parameters) error {
	for _, k := range o.Keys() {
		nv := o.values[k]
		cur, ok := p.values[k]
		if !ok {
			return fmt.Errorf("unknown parameter %q", k)
		}
		if cur.Kind != nv.Kind {
			return fmt.Errorf("parameter %q: expected %s, got %s", k, cur.Kind, nv.Kind)
		}
		switch {
		case cur.Kind == KindSet:
			if err := cur.Set.Merge(nv.Set); err != nil {
				return fmt.Errorf("parameter %q: %w", k, err)
			}
		case cur.Kind == KindVector && len(cur.Vector) != len(nv.Vector):
			return fmt.Errorf("parameter %q: expected %d components, got %d",
				k, len(cur.Vector), len(nv.Vector))
		default:
			p.values[k] = nv.clone()
		}
	}
	return nil
}
