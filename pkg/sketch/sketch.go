package sketch

import (
	"fmt"
	"slices"
	"sort"

	"github.com/chazu/contour/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Sketch owns a set of entities. It holds the only owning references; the
// dependency links between entities are plain observation pointers.
//
// A Sketch is not safe for concurrent use. Code running on another
// goroutine builds its own Sketch and hands over the finished value.
type Sketch struct {
	plane       kernel.Plane
	order       []Entity
	owned       map[Entity]struct{}
	invalidated bool
	onRelease   ReleaseFunc
}

// New creates an empty sketch in plane. A nil plane means kernel.XY.
func New(plane kernel.Plane) *Sketch {
	if plane == nil {
		plane = kernel.XY
	}
	return &Sketch{
		plane: plane,
		owned: make(map[Entity]struct{}),
	}
}

// Plane returns the sketch plane.
func (s *Sketch) Plane() kernel.Plane { return s.plane }

// NewPoint creates a point in the sketch plane and inserts it.
func (s *Sketch) NewPoint(x, y float64) *Point {
	p := NewPoint(s.plane, x, y)
	s.owned[p] = struct{}{}
	s.order = append(s.order, p)
	return p
}

// Insert adds e to the sketch. Inserting an entity that is already owned
// returns ErrDuplicateEntity. No solving is triggered.
func (s *Sketch) Insert(e Entity) error {
	if _, ok := s.owned[e]; ok {
		return fmt.Errorf("insert %s: %w", describe(e), ErrDuplicateEntity)
	}
	s.owned[e] = struct{}{}
	s.order = append(s.order, e)
	return nil
}

// MustInsert inserts every entity and panics on the first error.
func (s *Sketch) MustInsert(es ...Entity) {
	for _, e := range es {
		if err := s.Insert(e); err != nil {
			panic(err)
		}
	}
}

// Erase removes e without touching its dependents. Erasing an entity that is
// not owned returns ErrUnknownEntity.
func (s *Sketch) Erase(e Entity) error {
	i, ok := s.Find(e)
	if !ok {
		return fmt.Errorf("erase %s: %w", describe(e), ErrUnknownEntity)
	}
	delete(s.owned, e)
	s.order = slices.Delete(s.order, i, i+1)
	return nil
}

// Find returns the position of e in iteration order.
func (s *Sketch) Find(e Entity) (int, bool) {
	if _, ok := s.owned[e]; !ok {
		return -1, false
	}
	return slices.Index(s.order, e), true
}

// Contains reports whether e is owned by the sketch.
func (s *Sketch) Contains(e Entity) bool {
	_, ok := s.owned[e]
	return ok
}

// Len returns the number of owned entities.
func (s *Sketch) Len() int { return len(s.order) }

// Entities returns the owned entities in insertion order.
func (s *Sketch) Entities() []Entity { return slices.Clone(s.order) }

// Points returns all owned points in insertion order.
func (s *Sketch) Points() []*Point {
	var pts []*Point
	for _, e := range s.order {
		if p, ok := e.(*Point); ok {
			pts = append(pts, p)
		}
	}
	return pts
}

// Lines returns all owned lines in insertion order.
func (s *Sketch) Lines() []*Line {
	var ls []*Line
	for _, e := range s.order {
		if l, ok := e.(*Line); ok {
			ls = append(ls, l)
		}
	}
	return ls
}

// Invalidate marks the sketch as needing a re-solve and redraw.
func (s *Sketch) Invalidate() { s.invalidated = true }

// Invalidated reports whether Invalidate was called since the last MarkValid.
func (s *Sketch) Invalidated() bool { return s.invalidated }

// MarkValid clears the dirty flag.
func (s *Sketch) MarkValid() { s.invalidated = false }

// BoundingBox returns the axis-aligned box around all points. An empty
// sketch yields the degenerate zero box.
func (s *Sketch) BoundingBox() sdf.Box2 {
	pts := s.Points()
	if len(pts) == 0 {
		return sdf.Box2{}
	}
	bb := sdf.Box2{Min: pts[0].Coords(), Max: pts[0].Coords()}
	for _, p := range pts[1:] {
		c := p.Coords()
		bb.Min = v2.Vec{X: min(bb.Min.X, c.X), Y: min(bb.Min.Y, c.Y)}
		bb.Max = v2.Vec{X: max(bb.Max.X, c.X), Y: max(bb.Max.Y, c.Y)}
	}
	return bb
}

// LayerNames returns the sorted set of layer names in use.
func (s *Sketch) LayerNames() []string {
	seen := make(map[string]struct{})
	for _, e := range s.order {
		seen[e.Layer()] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Hash folds the hashes of all entities in iteration order.
func (s *Sketch) Hash() uint64 {
	hs := make([]uint64, len(s.order))
	for i, e := range s.order {
		hs[i] = e.Hash()
	}
	return combineHashes(hs...)
}

// FilterByParameters returns the entities whose parameters satisfy keep.
func (s *Sketch) FilterByParameters(keep func(*Parameters) bool) []Entity {
	var out []Entity
	for _, e := range s.order {
		if keep(e.Parameters()) {
			out = append(out, e)
		}
	}
	return out
}

// FindConnected returns the curves chained to e through shared points,
// transitively. The result follows iteration order.
func (s *Sketch) FindConnected(e Entity) []Entity {
	pts := make(map[*Point]struct{})
	for _, d := range e.Dependencies() {
		if p, ok := d.(*Point); ok {
			pts[p] = struct{}{}
		}
	}
	conn := make(map[Entity]struct{})
	for {
		before := len(conn)
		for _, c := range s.order {
			if _, ok := c.(Curve); !ok {
				continue
			}
			if _, done := conn[c]; done {
				continue
			}
			deps := c.Dependencies()
			if !slices.ContainsFunc(deps, func(d Entity) bool {
				p, ok := d.(*Point)
				if !ok {
					return false
				}
				_, shared := pts[p]
				return shared
			}) {
				continue
			}
			conn[c] = struct{}{}
			for _, d := range deps {
				if p, ok := d.(*Point); ok {
					pts[p] = struct{}{}
				}
			}
		}
		if len(conn) == before {
			break
		}
	}
	var out []Entity
	for _, c := range s.order {
		if _, ok := conn[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Clear removes all entities.
func (s *Sketch) Clear() {
	s.order = nil
	s.owned = make(map[Entity]struct{})
}

// Clone returns a deep copy. Every entity is cloned first; then each clone's
// dependencies are relinked from the originals to their clones. The
// release hook is not copied; install one on the clone if needed.
func (s *Sketch) Clone() *Sketch {
	c := New(s.plane)
	c.invalidated = s.invalidated

	clones := make(map[Entity]Entity, len(s.order))
	for _, e := range s.order {
		n := e.Clone()
		clones[e] = n
		c.owned[n] = struct{}{}
		c.order = append(c.order, n)
	}
	for _, n := range c.order {
		for _, d := range n.Dependencies() {
			if nd, ok := clones[d]; ok {
				n.ReplaceDependency(d, nd)
			}
		}
	}
	return c
}

func describe(e Entity) string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s %s", e.TypeName(), e.ID())
}
