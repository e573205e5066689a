package gpucore

// Resource IDs
//
// These opaque IDs represent GPU resources. Each adapter implementation
// maintains a mapping between IDs and actual backend resources.
// IDs are uint64 to accommodate various backend handle sizes.

import "fmt"

// BufferID is an opaque handle to a GPU buffer.
type BufferID uint64

// ProgramID is an opaque handle to a compiled shader program (a linked
// vertex+fragment pipeline on the backend).
type ProgramID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// BufferUsage is a bitmask specifying how a buffer will be used.
type BufferUsage uint32

// Buffer usage flags.
const (
	// BufferUsageVertex indicates the buffer can be used as a vertex buffer.
	BufferUsageVertex BufferUsage = 1 << 0

	// BufferUsageIndex indicates the buffer can be used as an index buffer.
	BufferUsageIndex BufferUsage = 1 << 1

	// BufferUsageUniform indicates the buffer can be used as a uniform buffer.
	BufferUsageUniform BufferUsage = 1 << 2

	// BufferUsageCopyDst indicates the buffer can be written after creation.
	BufferUsageCopyDst BufferUsage = 1 << 3
)

// IndexFormat is the element type of an index buffer.
type IndexFormat uint32

const (
	// IndexFormatUint16 is 16-bit indices.
	IndexFormatUint16 IndexFormat = iota

	// IndexFormatUint32 is 32-bit indices.
	IndexFormatUint32
)

// Bytes returns the size of one index element.
func (f IndexFormat) Bytes() int {
	if f == IndexFormatUint32 {
		return 4
	}
	return 2
}

// String returns the string representation of IndexFormat.
func (f IndexFormat) String() string {
	switch f {
	case IndexFormatUint16:
		return "Uint16"
	case IndexFormatUint32:
		return "Uint32"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(f))
	}
}

// PrimitiveTopology is the primitive type drawn from an index buffer.
type PrimitiveTopology uint32

const (
	// TopologyTriangles draws indexed triangle lists.
	TopologyTriangles PrimitiveTopology = iota

	// TopologyLines draws indexed line lists.
	TopologyLines

	// TopologyPoints draws indexed point lists.
	TopologyPoints
)

// String returns the string representation of PrimitiveTopology.
func (t PrimitiveTopology) String() string {
	switch t {
	case TopologyTriangles:
		return "Triangles"
	case TopologyLines:
		return "Lines"
	case TopologyPoints:
		return "Points"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(t))
	}
}

// Attribute identifies a vertex attribute of the batching layer layout.
type Attribute uint32

const (
	// AttrPosition is the quantized vertex position, dequantized in the
	// shader via the positions-decode matrix.
	AttrPosition Attribute = iota

	// AttrColor is the per-vertex RGBA color.
	AttrColor

	// AttrFlags is the per-vertex render state flags (visibility, x-ray,
	// highlight, selection).
	AttrFlags

	// AttrFlags2 is the second flags word (clippable).
	AttrFlags2

	// AttrOffset is the per-vertex world offset, present only when entity
	// offsets are enabled for the scene.
	AttrOffset

	numAttributes
)

// String returns the attribute name as declared in shader source.
func (a Attribute) String() string {
	switch a {
	case AttrPosition:
		return "position"
	case AttrColor:
		return "color"
	case AttrFlags:
		return "flags"
	case AttrFlags2:
		return "flags2"
	case AttrOffset:
		return "offset"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(a))
	}
}

// AttributeSet is a bitmask of the attributes a compiled program declares.
// Shaders are specialized per configuration, so an attribute absent from
// the set must not be bound at draw time.
type AttributeSet uint32

// NewAttributeSet builds a set from the given attributes.
func NewAttributeSet(attrs ...Attribute) AttributeSet {
	var s AttributeSet
	for _, a := range attrs {
		s |= 1 << a
	}
	return s
}

// Has reports whether the set contains a.
func (s AttributeSet) Has(a Attribute) bool {
	return s&(1<<a) != 0
}

// With returns a copy of the set containing a.
func (s AttributeSet) With(a Attribute) AttributeSet {
	return s | 1<<a
}

// Count returns the number of attributes in the set.
func (s AttributeSet) Count() int {
	n := 0
	for a := Attribute(0); a < numAttributes; a++ {
		if s.Has(a) {
			n++
		}
	}
	return n
}
