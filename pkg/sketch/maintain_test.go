package sketch

import (
	"errors"
	"testing"
)

func TestDeleteCascade(t *testing.T) {
	s := New(nil)
	p1, p2, p3 := s.NewPoint(0, 0), s.NewPoint(1, 0), s.NewPoint(1, 1)
	l1, l2 := NewLine(p1, p2), NewLine(p2, p3)
	h := NewHorizontal(l1)
	d := NewFixedDistance(p1, p2)
	tan := NewTangent(l1, l2)
	s.MustInsert(l1, l2, h, d, tan)

	var released []Entity
	s.OnRelease(func(e Entity) { released = append(released, e) })

	if err := s.Delete(p2); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// p2 plus l1, l2, h, d, tan.
	if len(released) != 6 {
		t.Errorf("released %d entities, want 6", len(released))
	}
	if released[len(released)-1] != Entity(p2) {
		t.Error("target must be released after its dependents")
	}
	if s.Len() != 2 || !s.Contains(p1) || !s.Contains(p3) {
		t.Errorf("survivors = %d entities, want p1 and p3", s.Len())
	}
	if errs := s.Validate(); len(errs) != 0 {
		t.Errorf("dangling dependencies after delete: %v", errs)
	}
	if !s.Invalidated() {
		t.Error("Delete must invalidate the sketch")
	}
}

func TestDeleteLeaf(t *testing.T) {
	s := New(nil)
	a, b := s.NewPoint(0, 0), s.NewPoint(1, 0)
	l := NewLine(a, b)
	h := NewHorizontal(l)
	s.MustInsert(l, h)

	if err := s.Delete(h); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Len() != 3 || s.Contains(h) {
		t.Errorf("Len = %d after deleting a leaf, want 3", s.Len())
	}
}

func TestDeleteUnknown(t *testing.T) {
	s := New(nil)
	err := s.Delete(NewPoint(nil, 0, 0))
	if !errors.Is(err, ErrUnknownEntity) {
		t.Fatalf("Delete = %v, want ErrUnknownEntity", err)
	}
}

func TestCloneDoesNotShareReleaseHook(t *testing.T) {
	s := New(nil)
	a, b := s.NewPoint(0, 0), s.NewPoint(1, 0)
	s.MustInsert(NewLine(a, b))
	var released []Entity
	s.OnRelease(func(e Entity) { released = append(released, e) })

	c := s.Clone()
	if err := c.Delete(c.Points()[0]); err != nil {
		t.Fatalf("Delete on clone: %v", err)
	}
	if len(released) != 0 {
		t.Errorf("deleting from the clone released %d entities through the original's hook", len(released))
	}
	if c.Len() != 1 || s.Len() != 3 {
		t.Errorf("clone len %d, original len %d; want 1 and 3", c.Len(), s.Len())
	}
}

func TestMergePoints(t *testing.T) {
	s := New(nil)
	a, b, c := s.NewPoint(0, 0), s.NewPoint(0.01, 0), s.NewPoint(1, 1)
	l1, l2 := NewLine(a, c), NewLine(b, c)
	d := NewFixedDistance(a, c)
	s.MustInsert(l1, l2, d)

	if err := s.MergePoints(a, b); err != nil {
		t.Fatalf("MergePoints: %v", err)
	}
	if s.Contains(a) {
		t.Fatal("merged point still owned")
	}
	if l1.Start() != b {
		t.Error("line not redirected to the surviving point")
	}
	if p1, _ := d.Points(); p1 != b {
		t.Error("dimension not redirected to the surviving point")
	}
	if errs := s.Validate(); len(errs) != 0 {
		t.Errorf("validation after merge: %v", errs)
	}

	// Second merge is a no-op.
	n := s.Len()
	hash := s.Hash()
	if err := s.MergePoints(a, b); err != nil {
		t.Fatalf("second MergePoints: %v", err)
	}
	if s.Len() != n || s.Hash() != hash || l1.Start() != b {
		t.Error("second merge changed the sketch")
	}
}

func TestMergeSelf(t *testing.T) {
	s := New(nil)
	a, b := s.NewPoint(0, 0), s.NewPoint(1, 0)
	s.MustInsert(NewLine(a, b))
	if err := s.MergePoints(a, a); err != nil {
		t.Fatalf("MergePoints: %v", err)
	}
	if !s.Contains(a) || s.Len() != 3 {
		t.Error("merging a point into itself must be a no-op")
	}
}

func TestMergeIntoUnownedPoint(t *testing.T) {
	s := New(nil)
	a, b := s.NewPoint(0, 0), s.NewPoint(1, 0)
	l := NewLine(a, b)
	s.MustInsert(l)
	stray := NewPoint(nil, 5, 5)

	err := s.MergePoints(a, stray)
	if !errors.Is(err, ErrUnknownEntity) {
		t.Fatalf("MergePoints = %v, want ErrUnknownEntity", err)
	}
	if !s.Contains(a) || l.Start() != a {
		t.Error("a rejected merge must leave the sketch untouched")
	}
	if errs := s.Validate(); len(errs) != 0 {
		t.Errorf("validation after rejected merge: %v", errs)
	}
}

func TestScale(t *testing.T) {
	s, pts, _ := buildTriangle()
	s.Scale(2)
	if c := pts[1].Coords(); c.X != 8 || c.Y != 0 {
		t.Errorf("scaled point = %v, want (8, 0)", c)
	}
	for _, e := range s.Entities() {
		if d, ok := e.(*FixedDistance); ok && !approx(d.ConstraintError(0), 0) {
			t.Errorf("distance residual %v after uniform scale", d.ConstraintError(0))
		}
	}
}
