// Package scene holds the renderer-facing scene state: the ordered
// section-plane collection and the per-frame render flags consumed by the
// draw orchestration in package render.
package scene

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/go-gl/mathgl/mgl64"
)

// SectionPlane is a clipping plane. Geometry on the negative side of the
// plane (against Dir) is clipped when the plane is active.
type SectionPlane struct {
	// Pos is a point on the plane in world space.
	Pos mgl64.Vec3

	// Dir is the plane normal. Geometry survives on the side Dir points to.
	Dir mgl64.Vec3

	// Active toggles clipping against this plane. Toggling Active does not
	// change the structural hash; it is a per-frame uniform, not a shader
	// configuration change.
	Active bool

	// id identifies the plane within its owning state. Assigned on Add,
	// never reused.
	id uint64
}

// Dist returns the signed distance of the plane from the world origin
// along its normal.
func (p *SectionPlane) Dist() float64 {
	return p.Dir.Dot(p.Pos)
}

// SectionPlanesState maintains the ordered collection of section planes
// owned by a scene. Insertion order defines the shader uniform binding
// order, so renderers may rely on Planes() being stable between
// structural changes.
//
// SectionPlanesState is not safe for concurrent use; all access happens
// on the frame loop goroutine.
type SectionPlanesState struct {
	planes []*SectionPlane
	nextID uint64
}

// NewSectionPlanesState returns an empty section-plane collection.
func NewSectionPlanesState() *SectionPlanesState {
	return &SectionPlanesState{nextID: 1}
}

// Add appends a plane and returns its index in uniform binding order.
func (s *SectionPlanesState) Add(p *SectionPlane) int {
	p.id = s.nextID
	s.nextID++
	s.planes = append(s.planes, p)
	return len(s.planes) - 1
}

// RemoveAt removes the plane at index i, preserving the order of the
// remaining planes. Out-of-range indices are ignored.
func (s *SectionPlanesState) RemoveAt(i int) {
	if i < 0 || i >= len(s.planes) {
		return
	}
	s.planes = append(s.planes[:i], s.planes[i+1:]...)
}

// Planes returns the planes in uniform binding order. The returned slice
// is owned by the state and must not be mutated structurally.
func (s *SectionPlanesState) Planes() []*SectionPlane {
	return s.planes
}

// Count returns the number of planes.
func (s *SectionPlanesState) Count() int {
	return len(s.planes)
}

// Hash returns a structural signature of the collection. It changes if
// and only if the number or identity of planes has changed; renderers
// compiled against a different hash hold stale assumptions about uniform
// count and must be reallocated before drawing.
func (s *SectionPlanesState) Hash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(s.planes)))
	_, _ = h.Write(buf[:])
	for _, p := range s.planes {
		binary.LittleEndian.PutUint64(buf[:], p.id)
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}
