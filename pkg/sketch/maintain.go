package sketch

import "fmt"

// ReleaseFunc is called for every entity removed by Delete, after it has
// left the sketch. Display layers use it to drop cached representations.
type ReleaseFunc func(e Entity)

// OnRelease installs the release hook. A nil hook disables it.
func (s *Sketch) OnRelease(fn ReleaseFunc) { s.onRelease = fn }

// Dependents returns the owned entities that directly depend on target.
func (s *Sketch) Dependents(target Entity) []Entity {
	var out []Entity
	for _, e := range s.order {
		if e != target && DependsOn(e, target) {
			out = append(out, e)
		}
	}
	return out
}

// Delete removes target together with everything that depends on it,
// directly or transitively. Dependents are removed before the entities
// they depend on, so no surviving entity is left with a dangling
// dependency. Deleting an entity that is not owned returns ErrUnknownEntity.
func (s *Sketch) Delete(target Entity) error {
	if !s.Contains(target) {
		return fmt.Errorf("delete %s: %w", describe(target), ErrUnknownEntity)
	}
	s.deleteRecursive(target)
	s.invalidated = true
	return nil
}

func (s *Sketch) deleteRecursive(target Entity) {
	for _, d := range s.Dependents(target) {
		// An earlier branch may already have removed d.
		if s.Contains(d) {
			s.deleteRecursive(d)
		}
	}
	if err := s.Erase(target); err != nil {
		return
	}
	if s.onRelease != nil {
		s.onRelease(target)
	}
}

// MergePoints redirects every reference to p1 onto p2 and erases p1.
// Merging a point into itself, or merging a point the sketch does not own,
// does nothing. The surviving point p2 must be owned by the sketch.
func (s *Sketch) MergePoints(p1, p2 *Point) error {
	if p1 == p2 || !s.Contains(p1) {
		return nil
	}
	if !s.Contains(p2) {
		return fmt.Errorf("merge into %s: %w", describe(p2), ErrUnknownEntity)
	}
	for _, e := range s.order {
		if e != Entity(p1) {
			e.ReplaceDependency(p1, p2)
		}
	}
	_ = s.Erase(p1)
	s.invalidated = true
	return nil
}

// Scale rescales the whole sketch about the plane origin: point
// coordinates and stored geometric constants alike.
func (s *Sketch) Scale(factor float64) {
	for _, e := range s.order {
		e.ScaleSketch(factor)
	}
	s.invalidated = true
}
