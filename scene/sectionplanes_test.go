package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestSectionPlanesState_HashChangesOnStructure(t *testing.T) {
	s := NewSectionPlanesState()
	h0 := s.Hash()

	if got := s.Hash(); got != h0 {
		t.Fatalf("Hash() not stable on unchanged state: %v != %v", got, h0)
	}

	s.Add(&SectionPlane{Dir: mgl64.Vec3{0, 1, 0}, Active: true})
	h1 := s.Hash()
	if h1 == h0 {
		t.Fatal("Hash() unchanged after Add")
	}

	s.Add(&SectionPlane{Dir: mgl64.Vec3{1, 0, 0}})
	h2 := s.Hash()
	if h2 == h1 {
		t.Fatal("Hash() unchanged after second Add")
	}

	s.RemoveAt(1)
	h3 := s.Hash()
	if h3 == h2 {
		t.Fatal("Hash() unchanged after RemoveAt")
	}
	// Removing and re-adding produces a new identity, not the old hash.
	s.Add(&SectionPlane{Dir: mgl64.Vec3{1, 0, 0}})
	if got := s.Hash(); got == h2 {
		t.Error("Hash() reused identity of a removed plane")
	}
}

func TestSectionPlanesState_HashIgnoresActiveToggle(t *testing.T) {
	s := NewSectionPlanesState()
	p := &SectionPlane{Dir: mgl64.Vec3{0, 0, 1}, Active: false}
	s.Add(p)

	before := s.Hash()
	p.Active = true
	if got := s.Hash(); got != before {
		t.Errorf("Hash() changed on Active toggle: %v != %v", got, before)
	}
	p.Pos = mgl64.Vec3{10, 20, 30}
	if got := s.Hash(); got != before {
		t.Errorf("Hash() changed on Pos update: %v != %v", got, before)
	}
}

func TestSectionPlanesState_OrderPreserved(t *testing.T) {
	s := NewSectionPlanesState()
	a := &SectionPlane{Dir: mgl64.Vec3{1, 0, 0}}
	b := &SectionPlane{Dir: mgl64.Vec3{0, 1, 0}}
	c := &SectionPlane{Dir: mgl64.Vec3{0, 0, 1}}

	if got := s.Add(a); got != 0 {
		t.Errorf("Add(a) index = %d, want 0", got)
	}
	if got := s.Add(b); got != 1 {
		t.Errorf("Add(b) index = %d, want 1", got)
	}
	if got := s.Add(c); got != 2 {
		t.Errorf("Add(c) index = %d, want 2", got)
	}

	s.RemoveAt(1)
	planes := s.Planes()
	if len(planes) != 2 || planes[0] != a || planes[1] != c {
		t.Errorf("Planes() after RemoveAt(1) = %v, want [a c]", planes)
	}

	// Out-of-range removals are no-ops.
	s.RemoveAt(-1)
	s.RemoveAt(99)
	if s.Count() != 2 {
		t.Errorf("Count() = %d, want 2", s.Count())
	}
}

func TestSectionPlane_Dist(t *testing.T) {
	p := &SectionPlane{
		Pos: mgl64.Vec3{0, 5, 0},
		Dir: mgl64.Vec3{0, 1, 0},
	}
	if got := p.Dist(); got != 5 {
		t.Errorf("Dist() = %v, want 5", got)
	}
}
