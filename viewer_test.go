package xeokit

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Exiver-Labs/xeokit-sdk/batching"
	"github.com/Exiver-Labs/xeokit-sdk/gpucore"
	"github.com/Exiver-Labs/xeokit-sdk/scene"
)

// fakeAdapter is an in-memory GPUAdapter double.
type fakeAdapter struct {
	nextID    uint64
	buffers   map[gpucore.BufferID]int
	programs  int
	submitted []*gpucore.Recording
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{nextID: 1, buffers: make(map[gpucore.BufferID]int)}
}

func (a *fakeAdapter) CreateBuffer(size int, usage gpucore.BufferUsage) (gpucore.BufferID, error) {
	if size <= 0 {
		return gpucore.InvalidID, gpucore.ErrInvalidBufferSize
	}
	id := gpucore.BufferID(a.nextID)
	a.nextID++
	a.buffers[id] = size
	return id, nil
}

func (a *fakeAdapter) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) {}

func (a *fakeAdapter) DestroyBuffer(id gpucore.BufferID) {
	delete(a.buffers, id)
}

func (a *fakeAdapter) CreateProgram(desc *gpucore.ProgramDescriptor) (gpucore.ProgramID, error) {
	id := gpucore.ProgramID(a.nextID)
	a.nextID++
	a.programs++
	return id, nil
}

func (a *fakeAdapter) DestroyProgram(id gpucore.ProgramID) {}

func (a *fakeAdapter) Submit(rec *gpucore.Recording) error {
	a.submitted = append(a.submitted, rec)
	return nil
}

func (a *fakeAdapter) Destroy() {}

func stubCompiler(string) ([]uint32, error) {
	return []uint32{0x07230203}, nil
}

func newTestViewer(t *testing.T, opts ...ViewerOption) (*Viewer, *fakeAdapter) {
	t.Helper()
	adapter := newFakeAdapter()
	opts = append(opts, WithShaderCompiler(stubCompiler))
	v, err := NewViewer(adapter, opts...)
	require.NoError(t, err)
	return v, adapter
}

func addQuadLayer(t *testing.T, m *Model, rtcCenter *mgl64.Vec3) *batching.Layer {
	t.Helper()
	b := m.NewLayer(gpucore.TopologyTriangles, rtcCenter)
	positions := []float64{
		0, 0, 0,
		1, 0, 0,
		1, 1, 0,
		0, 1, 0,
	}
	_, err := b.AppendMesh(positions, [4]byte{128, 128, 128, 255}, []uint32{0, 1, 2, 0, 2, 3},
		scene.EntityVisible|scene.EntityClippable)
	require.NoError(t, err)
	layer, err := m.FinalizeLayer(b)
	require.NoError(t, err)
	return layer
}

func TestNewViewer_NilAdapter(t *testing.T) {
	_, err := NewViewer(nil)
	require.ErrorIs(t, err, ErrNilAdapter)
}

func TestViewer_RenderFrame(t *testing.T) {
	v, adapter := newTestViewer(t)
	m := v.CreateModel("m")
	addQuadLayer(t, m, nil)
	addQuadLayer(t, m, nil)

	stats, err := v.RenderFrame(mgl64.Ident4(), mgl64.Ident4())
	require.NoError(t, err)

	// One program per pass; within each pass the second layer elides
	// the bind.
	assert.Equal(t, 2, stats.ProgramBinds)
	assert.Equal(t, 2, stats.ProgramBindsElided)
	assert.Equal(t, 4, stats.DrawCalls)
	assert.Equal(t, 2, adapter.programs)
	require.Len(t, adapter.submitted, 1)
}

func TestViewer_SkipsLayersWithNoVisibleObjects(t *testing.T) {
	v, _ := newTestViewer(t)
	m := v.CreateModel("m")
	shown := addQuadLayer(t, m, nil)
	hidden := addQuadLayer(t, m, nil)
	require.NoError(t, hidden.SetFlags(0, scene.EntityClippable))

	stats, err := v.RenderFrame(mgl64.Ident4(), mgl64.Ident4())
	require.NoError(t, err)

	// Only the visible layer draws, once per pass.
	assert.Equal(t, 2, stats.DrawCalls)
	assert.Equal(t, []int{shown.LayerIndex()}, m.RenderFlags().VisibleLayers)

	// Re-showing the object brings the layer back on the next frame.
	require.NoError(t, hidden.SetFlags(0, scene.EntityVisible))
	stats, err = v.RenderFrame(mgl64.Ident4(), mgl64.Ident4())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.DrawCalls)
	assert.Equal(t, []int{shown.LayerIndex(), hidden.LayerIndex()}, m.RenderFlags().VisibleLayers)
}

func TestViewer_OcclusionPassDisabled(t *testing.T) {
	v, adapter := newTestViewer(t, WithOcclusionPass(false))
	m := v.CreateModel("m")
	addQuadLayer(t, m, nil)

	stats, err := v.RenderFrame(mgl64.Ident4(), mgl64.Ident4())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ProgramBinds)
	assert.Equal(t, 1, stats.DrawCalls)
	assert.Equal(t, 1, adapter.programs)
}

func TestViewer_LayersDrawInAscendingIndex(t *testing.T) {
	v, _ := newTestViewer(t, WithOcclusionPass(false))
	m := v.CreateModel("m")
	// Builders created in order get ascending indices; finalize them out
	// of order and verify the model re-sorts.
	b0 := m.NewLayer(gpucore.TopologyTriangles, nil)
	b1 := m.NewLayer(gpucore.TopologyTriangles, nil)
	positions := []float64{0, 0, 0, 1, 0, 0, 1, 1, 0}
	for _, b := range []*batching.LayerBuilder{b1, b0} {
		_, err := b.AppendMesh(positions, [4]byte{255, 255, 255, 255}, []uint32{0, 1, 2}, scene.EntityVisible)
		require.NoError(t, err)
		_, err = m.FinalizeLayer(b)
		require.NoError(t, err)
	}

	layers := m.Layers()
	require.Len(t, layers, 2)
	assert.Equal(t, 0, layers[0].LayerIndex())
	assert.Equal(t, 1, layers[1].LayerIndex())
}

func TestViewer_SectionPlaneChangeReallocatesRenderers(t *testing.T) {
	v, adapter := newTestViewer(t, WithOcclusionPass(false))
	m := v.CreateModel("m")
	addQuadLayer(t, m, nil)

	_, err := v.RenderFrame(mgl64.Ident4(), mgl64.Ident4())
	require.NoError(t, err)
	assert.Equal(t, 1, adapter.programs)

	v.SectionPlanes().Add(&scene.SectionPlane{Dir: mgl64.Vec3{1, 0, 0}, Active: true})

	stats, err := v.RenderFrame(mgl64.Ident4(), mgl64.Ident4())
	require.NoError(t, err)
	// New specialization compiled for one section plane.
	assert.Equal(t, 2, adapter.programs)
	assert.Equal(t, 1, stats.SectionPlaneReloads)
}

func TestViewer_RenderFlagsFollowPlaneActivity(t *testing.T) {
	v, _ := newTestViewer(t, WithOcclusionPass(false))
	m := v.CreateModel("m")
	addQuadLayer(t, m, nil)

	v.SectionPlanes().Add(&scene.SectionPlane{Dir: mgl64.Vec3{1, 0, 0}, Active: true})
	v.SectionPlanes().Add(&scene.SectionPlane{Dir: mgl64.Vec3{0, 1, 0}, Active: false})

	_, err := v.RenderFrame(mgl64.Ident4(), mgl64.Ident4())
	require.NoError(t, err)

	rf := m.RenderFlags()
	assert.True(t, rf.SectionPlaneActive(0, 0))
	assert.False(t, rf.SectionPlaneActive(0, 1))
}

func TestViewer_RemoveModelDestroysLayers(t *testing.T) {
	v, _ := newTestViewer(t)
	m := v.CreateModel("m")
	layer := addQuadLayer(t, m, nil)

	v.RemoveModel("m")
	assert.True(t, layer.Destroyed())
	assert.Empty(t, v.Models())
}

func TestViewer_Destroy(t *testing.T) {
	v, _ := newTestViewer(t)
	m := v.CreateModel("m")
	layer := addQuadLayer(t, m, nil)

	v.Destroy()
	v.Destroy() // idempotent
	assert.True(t, layer.Destroyed())

	_, err := v.RenderFrame(mgl64.Ident4(), mgl64.Ident4())
	require.ErrorIs(t, err, ErrViewerDestroyed)
}

func TestViewer_ContextRestored(t *testing.T) {
	v, adapter := newTestViewer(t, WithOcclusionPass(false))
	m := v.CreateModel("m")
	addQuadLayer(t, m, nil)

	_, err := v.RenderFrame(mgl64.Ident4(), mgl64.Ident4())
	require.NoError(t, err)
	require.Equal(t, 1, adapter.programs)

	v.ContextRestored()

	_, err = v.RenderFrame(mgl64.Ident4(), mgl64.Ident4())
	require.NoError(t, err)
	assert.Equal(t, 2, adapter.programs)
}
