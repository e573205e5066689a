package batching

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Exiver-Labs/xeokit-sdk/gpucore"
	"github.com/Exiver-Labs/xeokit-sdk/scene"
)

// memAdapter is an in-memory GPUAdapter double tracking buffer contents.
type memAdapter struct {
	nextID  uint64
	buffers map[gpucore.BufferID][]byte
	writes  []bufferWrite
}

type bufferWrite struct {
	buffer gpucore.BufferID
	offset uint64
	size   int
}

func newMemAdapter() *memAdapter {
	return &memAdapter{nextID: 1, buffers: make(map[gpucore.BufferID][]byte)}
}

func (a *memAdapter) CreateBuffer(size int, usage gpucore.BufferUsage) (gpucore.BufferID, error) {
	if size <= 0 {
		return gpucore.InvalidID, gpucore.ErrInvalidBufferSize
	}
	id := gpucore.BufferID(a.nextID)
	a.nextID++
	a.buffers[id] = make([]byte, size)
	return id, nil
}

func (a *memAdapter) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) {
	if buf, ok := a.buffers[id]; ok {
		copy(buf[offset:], data)
	}
	a.writes = append(a.writes, bufferWrite{buffer: id, offset: offset, size: len(data)})
}

func (a *memAdapter) DestroyBuffer(id gpucore.BufferID) {
	delete(a.buffers, id)
}

func (a *memAdapter) CreateProgram(desc *gpucore.ProgramDescriptor) (gpucore.ProgramID, error) {
	id := gpucore.ProgramID(a.nextID)
	a.nextID++
	return id, nil
}

func (a *memAdapter) DestroyProgram(id gpucore.ProgramID) {}

func (a *memAdapter) Submit(rec *gpucore.Recording) error { return nil }

func (a *memAdapter) Destroy() {}

// unitQuad is two triangles covering [0,1]x[0,1] at z=0.
func unitQuad() ([]float64, []uint32) {
	positions := []float64{
		0, 0, 0,
		1, 0, 0,
		1, 1, 0,
		0, 1, 0,
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}
	return positions, indices
}

func buildTestLayer(t *testing.T, adapter *memAdapter, cfg LayerConfig, meshes int) *Layer {
	t.Helper()
	b := NewLayerBuilder(adapter, cfg)
	positions, indices := unitQuad()
	for i := 0; i < meshes; i++ {
		_, err := b.AppendMesh(positions, [4]byte{200, 10, 10, 255}, indices,
			scene.EntityVisible|scene.EntityClippable)
		require.NoError(t, err)
	}
	layer, err := b.Finalize()
	require.NoError(t, err)
	return layer
}

func TestLayerBuilder_AppendAndFinalize(t *testing.T) {
	adapter := newMemAdapter()
	b := NewLayerBuilder(adapter, LayerConfig{Topology: gpucore.TopologyTriangles, LayerIndex: 3})

	positions, indices := unitQuad()
	i0, err := b.AppendMesh(positions, [4]byte{255, 0, 0, 255}, indices, scene.EntityVisible)
	require.NoError(t, err)
	i1, err := b.AppendMesh(positions, [4]byte{0, 255, 0, 255}, indices, scene.EntityVisible)
	require.NoError(t, err)
	assert.Equal(t, 0, i0)
	assert.Equal(t, 1, i1)

	layer, err := b.Finalize()
	require.NoError(t, err)

	assert.Equal(t, 3, layer.LayerIndex())
	assert.Equal(t, 2, layer.NumObjects())
	assert.Equal(t, uint32(12), layer.IndexCount())
	assert.Equal(t, gpucore.IndexFormatUint16, layer.IndexFormat())
	assert.Equal(t, gpucore.TopologyTriangles, layer.Topology())
	assert.Nil(t, layer.RTCCenter())
	assert.False(t, layer.HasOffsets())

	// positions, colors, flags, flags2, indices.
	assert.Len(t, adapter.buffers, 5)

	// Second mesh indices are rebased past the first mesh's 4 vertices.
	idxData := adapter.buffers[layer.IndicesBuf()]
	require.Len(t, idxData, 12*2)
	second := uint32(idxData[12]) | uint32(idxData[13])<<8
	assert.Equal(t, uint32(4), second, "rebased first index of second mesh")
}

func TestLayerBuilder_DecodeMatrixRoundTrip(t *testing.T) {
	adapter := newMemAdapter()
	b := NewLayerBuilder(adapter, LayerConfig{Topology: gpucore.TopologyTriangles})

	positions := []float64{
		-10, 5, 100,
		30, -2.5, 108,
		12, 0, 104,
	}
	_, err := b.AppendMesh(positions, [4]byte{255, 255, 255, 255}, []uint32{0, 1, 2}, scene.EntityVisible)
	require.NoError(t, err)

	layer, err := b.Finalize()
	require.NoError(t, err)

	decode := layer.DecodeMatrix()
	posData := adapter.buffers[layer.PositionsBuf()]
	require.Len(t, posData, 3*positionStride)

	for i := 0; i < 3; i++ {
		var normalized [3]float32
		for c := 0; c < 3; c++ {
			off := i*positionStride + c*2
			q := uint16(posData[off]) | uint16(posData[off+1])<<8
			normalized[c] = float32(q) / quantRange
		}
		decoded := decode.Mul4x1([4]float32{normalized[0], normalized[1], normalized[2], 1})
		for c := 0; c < 3; c++ {
			assert.InDelta(t, positions[i*3+c], float64(decoded[c]), 0.01,
				"vertex %d component %d", i, c)
		}
	}
}

func TestLayerBuilder_Errors(t *testing.T) {
	adapter := newMemAdapter()

	t.Run("positions not vec3", func(t *testing.T) {
		b := NewLayerBuilder(adapter, LayerConfig{})
		_, err := b.AppendMesh([]float64{1, 2}, [4]byte{}, []uint32{0}, 0)
		assert.ErrorIs(t, err, ErrPositionsNotVec3)
	})

	t.Run("no indices", func(t *testing.T) {
		b := NewLayerBuilder(adapter, LayerConfig{})
		_, err := b.AppendMesh([]float64{1, 2, 3}, [4]byte{}, nil, 0)
		assert.ErrorIs(t, err, ErrNoIndices)
	})

	t.Run("empty finalize", func(t *testing.T) {
		b := NewLayerBuilder(adapter, LayerConfig{})
		_, err := b.Finalize()
		assert.ErrorIs(t, err, ErrNoGeometry)
	})

	t.Run("append after finalize", func(t *testing.T) {
		b := NewLayerBuilder(adapter, LayerConfig{})
		positions, indices := unitQuad()
		_, err := b.AppendMesh(positions, [4]byte{}, indices, scene.EntityVisible)
		require.NoError(t, err)
		_, err = b.Finalize()
		require.NoError(t, err)

		_, err = b.AppendMesh(positions, [4]byte{}, indices, scene.EntityVisible)
		assert.ErrorIs(t, err, ErrBuilderFinalized)
		_, err = b.Finalize()
		assert.ErrorIs(t, err, ErrBuilderFinalized)
	})
}

func TestLayerBuilder_EntityOffsets(t *testing.T) {
	center := mgl64.Vec3{1e6, 2e6, 3e6}
	adapter := newMemAdapter()
	layer := buildTestLayer(t, adapter, LayerConfig{
		Topology:      gpucore.TopologyTriangles,
		RTCCenter:     &center,
		EntityOffsets: true,
	}, 1)

	assert.True(t, layer.HasOffsets())
	require.NotNil(t, layer.RTCCenter())
	assert.True(t, errors.Is(layer.SetOffset(5, mgl64.Vec3{}), ErrBadObjectIndex))
	require.NoError(t, layer.SetOffset(0, mgl64.Vec3{1, 2, 3}))

	data := adapter.buffers[layer.OffsetsBuf()]
	require.Len(t, data, 4*offsetStride)
}
