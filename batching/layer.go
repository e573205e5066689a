// Package batching groups the geometry of many objects into single-draw
// GPU buffer layers.
//
// A layer owns interleaved GPU buffers (positions, colors, flags, offsets,
// indices) holding every object batched into it, a positions-decode matrix
// that dequantizes compressed integer positions back to model space, and
// an optional RTC center when the layer's geometry is authored relative to
// a center rather than in world space. Buffers are created once at
// batch-build time by a LayerBuilder and released when the owning model is
// destroyed.
package batching

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Exiver-Labs/xeokit-sdk/gpucore"
	"github.com/Exiver-Labs/xeokit-sdk/scene"
)

// Layer errors.
var (
	// ErrLayerDestroyed is returned when operating on a destroyed layer.
	ErrLayerDestroyed = errors.New("batching: layer has been destroyed")

	// ErrBadObjectIndex is returned when an object index is out of range.
	ErrBadObjectIndex = errors.New("batching: object index out of range")

	// ErrOffsetsDisabled is returned when setting an offset on a layer
	// built without entity offsets.
	ErrOffsetsDisabled = errors.New("batching: entity offsets not enabled for this layer")
)

// Vertex data strides, in bytes.
const (
	positionStride = 8  // 4 x uint16, xyz + pad
	colorStride    = 4  // 4 x uint8
	flagsStride    = 4  // 4 x uint8
	offsetStride   = 12 // 3 x float32
)

// portion is the region of the shared buffers holding one object.
type portion struct {
	vertexBase  int
	vertexCount int
	indexBase   int
	indexCount  int
}

// Layer owns the GPU buffers of one batch of objects. Layers are created
// by a LayerBuilder; the zero value is not usable.
type Layer struct {
	adapter gpucore.GPUAdapter

	positionsBuf gpucore.BufferID
	colorsBuf    gpucore.BufferID
	flagsBuf     gpucore.BufferID
	flags2Buf    gpucore.BufferID
	offsetsBuf   gpucore.BufferID
	indicesBuf   gpucore.BufferID

	// decodeMatrix dequantizes 16-bit integer positions to model space.
	decodeMatrix mgl32.Mat4

	// rtcCenter is nil when the layer is in world space.
	rtcCenter *mgl64.Vec3

	topology    gpucore.PrimitiveTopology
	layerIndex  int
	indexCount  uint32
	indexFormat gpucore.IndexFormat

	portions []portion

	// objectFlags mirrors each object's entity flags CPU-side so layer
	// visibility can be derived without reading GPU buffers back.
	objectFlags []scene.EntityFlags
	numVisible  int

	destroyed bool
}

// LayerIndex is the layer's position within the model's flat layer list.
// It indexes the flattened per-layer-per-plane activity array in
// scene.RenderFlags.
func (l *Layer) LayerIndex() int { return l.layerIndex }

// Topology returns the primitive type of the layer's index buffer.
func (l *Layer) Topology() gpucore.PrimitiveTopology { return l.topology }

// IndexCount returns the total number of indices.
func (l *Layer) IndexCount() uint32 { return l.indexCount }

// IndexFormat returns the index element type.
func (l *Layer) IndexFormat() gpucore.IndexFormat { return l.indexFormat }

// DecodeMatrix returns the positions-decode matrix.
func (l *Layer) DecodeMatrix() mgl32.Mat4 { return l.decodeMatrix }

// RTCCenter returns the layer's RTC center, or nil when the layer is in
// world space.
func (l *Layer) RTCCenter() *mgl64.Vec3 { return l.rtcCenter }

// NumObjects returns the number of objects batched into the layer.
func (l *Layer) NumObjects() int { return len(l.portions) }

// NumVisibleObjects returns the number of objects currently drawn. A
// layer with no visible objects is skipped by the frame loop.
func (l *Layer) NumVisibleObjects() int { return l.numVisible }

// ObjectFlags returns the current entity flags of one object.
func (l *Layer) ObjectFlags(objectIndex int) (scene.EntityFlags, error) {
	if objectIndex < 0 || objectIndex >= len(l.objectFlags) {
		return 0, ErrBadObjectIndex
	}
	return l.objectFlags[objectIndex], nil
}

// PositionsBuf returns the quantized positions buffer.
func (l *Layer) PositionsBuf() gpucore.BufferID { return l.positionsBuf }

// ColorsBuf returns the per-vertex color buffer.
func (l *Layer) ColorsBuf() gpucore.BufferID { return l.colorsBuf }

// FlagsBuf returns the per-vertex render flags buffer.
func (l *Layer) FlagsBuf() gpucore.BufferID { return l.flagsBuf }

// Flags2Buf returns the secondary flags buffer.
func (l *Layer) Flags2Buf() gpucore.BufferID { return l.flags2Buf }

// OffsetsBuf returns the per-vertex offset buffer, or InvalidID when the
// layer was built without entity offsets.
func (l *Layer) OffsetsBuf() gpucore.BufferID { return l.offsetsBuf }

// IndicesBuf returns the index buffer.
func (l *Layer) IndicesBuf() gpucore.BufferID { return l.indicesBuf }

// HasOffsets reports whether the layer carries an offsets buffer.
func (l *Layer) HasOffsets() bool { return l.offsetsBuf != gpucore.InvalidID }

// SetFlags rewrites the render flags of one object across its vertex
// range. The change is uploaded immediately through the adapter; the next
// submitted frame observes it.
func (l *Layer) SetFlags(objectIndex int, f scene.EntityFlags) error {
	if l.destroyed {
		return ErrLayerDestroyed
	}
	if objectIndex < 0 || objectIndex >= len(l.portions) {
		return ErrBadObjectIndex
	}

	was := l.objectFlags[objectIndex].Drawn()
	l.objectFlags[objectIndex] = f
	if now := f.Drawn(); now != was {
		if now {
			l.numVisible++
		} else {
			l.numVisible--
		}
	}

	flags, flags2 := packFlags(f)
	p := l.portions[objectIndex]

	data := make([]byte, p.vertexCount*flagsStride)
	for i := 0; i < p.vertexCount; i++ {
		copy(data[i*flagsStride:], flags[:])
	}
	l.adapter.WriteBuffer(l.flagsBuf, uint64(p.vertexBase*flagsStride), data)

	for i := 0; i < p.vertexCount; i++ {
		copy(data[i*flagsStride:], flags2[:])
	}
	l.adapter.WriteBuffer(l.flags2Buf, uint64(p.vertexBase*flagsStride), data)
	return nil
}

// SetOffset rewrites the world offset of one object across its vertex
// range. The layer must have been built with entity offsets enabled.
func (l *Layer) SetOffset(objectIndex int, offset mgl64.Vec3) error {
	if l.destroyed {
		return ErrLayerDestroyed
	}
	if objectIndex < 0 || objectIndex >= len(l.portions) {
		return ErrBadObjectIndex
	}
	if !l.HasOffsets() {
		return ErrOffsetsDisabled
	}

	p := l.portions[objectIndex]
	data := make([]byte, p.vertexCount*offsetStride)
	for i := 0; i < p.vertexCount; i++ {
		putFloat32(data[i*offsetStride:], float32(offset.X()))
		putFloat32(data[i*offsetStride+4:], float32(offset.Y()))
		putFloat32(data[i*offsetStride+8:], float32(offset.Z()))
	}
	l.adapter.WriteBuffer(l.offsetsBuf, uint64(p.vertexBase*offsetStride), data)
	return nil
}

// Destroyed reports whether Destroy has been called.
func (l *Layer) Destroyed() bool { return l.destroyed }

// Destroy releases all GPU buffers. Safe to call more than once.
func (l *Layer) Destroy() {
	if l.destroyed {
		return
	}
	l.destroyed = true

	for _, id := range []gpucore.BufferID{
		l.positionsBuf, l.colorsBuf, l.flagsBuf, l.flags2Buf, l.offsetsBuf, l.indicesBuf,
	} {
		if id != gpucore.InvalidID {
			l.adapter.DestroyBuffer(id)
		}
	}
	l.positionsBuf = gpucore.InvalidID
	l.colorsBuf = gpucore.InvalidID
	l.flagsBuf = gpucore.InvalidID
	l.flags2Buf = gpucore.InvalidID
	l.offsetsBuf = gpucore.InvalidID
	l.indicesBuf = gpucore.InvalidID
}

// packFlags encodes entity flags into the two per-vertex flag words
// consumed by the shaders. The first word carries visibility and
// highlight states, the second carries clippability.
func packFlags(f scene.EntityFlags) (flags, flags2 [4]byte) {
	if f.Drawn() {
		flags[0] = 255
	}
	if f&scene.EntityXRayed != 0 {
		flags[1] = 255
	}
	if f&scene.EntityHighlighted != 0 {
		flags[2] = 255
	}
	if f&scene.EntitySelected != 0 {
		flags[3] = 255
	}
	if f&scene.EntityClippable != 0 {
		flags2[0] = 255
	}
	return flags, flags2
}

func putFloat32(b []byte, v float32) {
	bits := math.Float32bits(v)
	b[0] = byte(bits)
	b[1] = byte(bits >> 8)
	b[2] = byte(bits >> 16)
	b[3] = byte(bits >> 24)
}
