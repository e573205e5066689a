package batching

import (
	"errors"
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Exiver-Labs/xeokit-sdk/gpucore"
	"github.com/Exiver-Labs/xeokit-sdk/scene"
)

// Builder errors.
var (
	// ErrBuilderFinalized is returned when appending to a finalized builder.
	ErrBuilderFinalized = errors.New("batching: builder already finalized")

	// ErrNoGeometry is returned when finalizing an empty builder.
	ErrNoGeometry = errors.New("batching: no geometry appended")

	// ErrPositionsNotVec3 is returned when a position slice length is not a
	// multiple of three.
	ErrPositionsNotVec3 = errors.New("batching: positions length must be a multiple of 3")

	// ErrNoIndices is returned when a mesh carries no indices.
	ErrNoIndices = errors.New("batching: mesh has no indices")
)

// quantRange is the 16-bit quantization range for compressed positions.
const quantRange = 65535

// LayerConfig configures a LayerBuilder.
type LayerConfig struct {
	// Topology is the primitive type of all meshes in the layer.
	Topology gpucore.PrimitiveTopology

	// RTCCenter, when non-nil, marks the layer's positions as authored
	// relative to this center. Nil means world space.
	RTCCenter *mgl64.Vec3

	// LayerIndex is the layer's position in the model's flat layer list.
	LayerIndex int

	// EntityOffsets allocates a per-vertex offset buffer so objects can be
	// translated after build without re-batching.
	EntityOffsets bool
}

// LayerBuilder accumulates meshes and finalizes them into one Layer with
// populated GPU buffers. Builders are single-use: after Finalize the
// builder rejects further appends.
type LayerBuilder struct {
	adapter gpucore.GPUAdapter
	cfg     LayerConfig

	positions   []float64
	colors      []byte
	flags       []byte
	flags2      []byte
	indices     []uint32
	portions    []portion
	objectFlags []scene.EntityFlags

	aabbMin   [3]float32
	aabbMax   [3]float32
	finalized bool
}

// NewLayerBuilder returns a builder writing through the given adapter.
func NewLayerBuilder(adapter gpucore.GPUAdapter, cfg LayerConfig) *LayerBuilder {
	return &LayerBuilder{
		adapter: adapter,
		cfg:     cfg,
		aabbMin: [3]float32{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32},
		aabbMax: [3]float32{-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32},
	}
}

// AppendMesh adds one object's geometry to the batch and returns its
// object index within the layer.
//
// Positions are flat xyz triples, already relative to the layer's RTC
// center when one is configured. Indices are local to the mesh; the
// builder rebases them onto the shared vertex range.
func (b *LayerBuilder) AppendMesh(positions []float64, color [4]byte, indices []uint32, flags scene.EntityFlags) (int, error) {
	if b.finalized {
		return 0, ErrBuilderFinalized
	}
	if len(positions)%3 != 0 {
		return 0, ErrPositionsNotVec3
	}
	if len(indices) == 0 {
		return 0, ErrNoIndices
	}

	numVerts := len(positions) / 3
	vertexBase := len(b.positions) / 3
	indexBase := len(b.indices)

	b.positions = append(b.positions, positions...)
	for i := 0; i < numVerts; i++ {
		x := float32(positions[i*3])
		y := float32(positions[i*3+1])
		z := float32(positions[i*3+2])
		b.aabbMin[0] = math32.Min(b.aabbMin[0], x)
		b.aabbMin[1] = math32.Min(b.aabbMin[1], y)
		b.aabbMin[2] = math32.Min(b.aabbMin[2], z)
		b.aabbMax[0] = math32.Max(b.aabbMax[0], x)
		b.aabbMax[1] = math32.Max(b.aabbMax[1], y)
		b.aabbMax[2] = math32.Max(b.aabbMax[2], z)
	}

	f, f2 := packFlags(flags)
	for i := 0; i < numVerts; i++ {
		b.colors = append(b.colors, color[0], color[1], color[2], color[3])
		b.flags = append(b.flags, f[0], f[1], f[2], f[3])
		b.flags2 = append(b.flags2, f2[0], f2[1], f2[2], f2[3])
	}

	for _, ix := range indices {
		b.indices = append(b.indices, ix+uint32(vertexBase))
	}

	b.portions = append(b.portions, portion{
		vertexBase:  vertexBase,
		vertexCount: numVerts,
		indexBase:   indexBase,
		indexCount:  len(indices),
	})
	b.objectFlags = append(b.objectFlags, flags)
	return len(b.portions) - 1, nil
}

// Finalize quantizes the accumulated positions, creates the GPU buffers
// and returns the finished layer. The builder must not be reused.
func (b *LayerBuilder) Finalize() (*Layer, error) {
	if b.finalized {
		return nil, ErrBuilderFinalized
	}
	if len(b.portions) == 0 {
		return nil, ErrNoGeometry
	}
	b.finalized = true

	numVerts := len(b.positions) / 3
	quantized, decode := quantizePositions(b.positions, b.aabbMin, b.aabbMax)

	indexFormat := gpucore.IndexFormatUint16
	if numVerts > quantRange {
		indexFormat = gpucore.IndexFormatUint32
	}

	numVisible := 0
	for _, f := range b.objectFlags {
		if f.Drawn() {
			numVisible++
		}
	}

	layer := &Layer{
		adapter:      b.adapter,
		decodeMatrix: decode,
		rtcCenter:    b.cfg.RTCCenter,
		topology:     b.cfg.Topology,
		layerIndex:   b.cfg.LayerIndex,
		indexCount:   uint32(len(b.indices)),
		indexFormat:  indexFormat,
		portions:     b.portions,
		objectFlags:  b.objectFlags,
		numVisible:   numVisible,
	}

	var err error
	cleanup := func() { layer.Destroy() }

	if layer.positionsBuf, err = b.createBuffer(quantized, gpucore.BufferUsageVertex); err != nil {
		return nil, fmt.Errorf("batching: positions buffer: %w", err)
	}
	if layer.colorsBuf, err = b.createBuffer(b.colors, gpucore.BufferUsageVertex); err != nil {
		cleanup()
		return nil, fmt.Errorf("batching: colors buffer: %w", err)
	}
	if layer.flagsBuf, err = b.createBuffer(b.flags, gpucore.BufferUsageVertex|gpucore.BufferUsageCopyDst); err != nil {
		cleanup()
		return nil, fmt.Errorf("batching: flags buffer: %w", err)
	}
	if layer.flags2Buf, err = b.createBuffer(b.flags2, gpucore.BufferUsageVertex|gpucore.BufferUsageCopyDst); err != nil {
		cleanup()
		return nil, fmt.Errorf("batching: flags2 buffer: %w", err)
	}
	if b.cfg.EntityOffsets {
		zeros := make([]byte, numVerts*offsetStride)
		if layer.offsetsBuf, err = b.createBuffer(zeros, gpucore.BufferUsageVertex|gpucore.BufferUsageCopyDst); err != nil {
			cleanup()
			return nil, fmt.Errorf("batching: offsets buffer: %w", err)
		}
	}
	if layer.indicesBuf, err = b.createBuffer(packIndices(b.indices, indexFormat), gpucore.BufferUsageIndex); err != nil {
		cleanup()
		return nil, fmt.Errorf("batching: index buffer: %w", err)
	}

	return layer, nil
}

func (b *LayerBuilder) createBuffer(data []byte, usage gpucore.BufferUsage) (gpucore.BufferID, error) {
	id, err := b.adapter.CreateBuffer(len(data), usage)
	if err != nil {
		return gpucore.InvalidID, err
	}
	b.adapter.WriteBuffer(id, 0, data)
	return id, nil
}

// quantizePositions compresses positions to 16-bit integers against the
// batch AABB and returns the packed vertex data together with the decode
// matrix that restores model-space positions in the shader. The vertex
// stage reads the attribute as normalized [0,1] floats, so the decode
// matrix scales by the full AABB extent.
func quantizePositions(positions []float64, aabbMin, aabbMax [3]float32) ([]byte, mgl32.Mat4) {
	var extent [3]float32
	for i := 0; i < 3; i++ {
		extent[i] = aabbMax[i] - aabbMin[i]
		if extent[i] <= 0 {
			extent[i] = 1
		}
	}

	numVerts := len(positions) / 3
	data := make([]byte, numVerts*positionStride)
	for i := 0; i < numVerts; i++ {
		for c := 0; c < 3; c++ {
			v := (positions[i*3+c] - float64(aabbMin[c])) / float64(extent[c]) * quantRange
			q := uint16(math.Round(math.Max(0, math.Min(quantRange, v))))
			off := i*positionStride + c*2
			data[off] = byte(q)
			data[off+1] = byte(q >> 8)
		}
	}

	decode := mgl32.Translate3D(aabbMin[0], aabbMin[1], aabbMin[2]).
		Mul4(mgl32.Scale3D(extent[0], extent[1], extent[2]))
	return data, decode
}

// packIndices encodes the rebased index list in the chosen element type.
func packIndices(indices []uint32, format gpucore.IndexFormat) []byte {
	if format == gpucore.IndexFormatUint16 {
		data := make([]byte, len(indices)*2)
		for i, ix := range indices {
			data[i*2] = byte(ix)
			data[i*2+1] = byte(ix >> 8)
		}
		return data
	}
	data := make([]byte, len(indices)*4)
	for i, ix := range indices {
		data[i*4] = byte(ix)
		data[i*4+1] = byte(ix >> 8)
		data[i*4+2] = byte(ix >> 16)
		data[i*4+3] = byte(ix >> 24)
	}
	return data
}
