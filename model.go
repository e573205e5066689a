package xeokit

import (
	"errors"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Exiver-Labs/xeokit-sdk/batching"
	"github.com/Exiver-Labs/xeokit-sdk/gpucore"
	"github.com/Exiver-Labs/xeokit-sdk/scene"
)

var (
	// ErrModelDestroyed is returned when operating on a destroyed model.
	ErrModelDestroyed = errors.New("xeokit: model destroyed")

	// ErrNilLayer is returned when a nil layer or builder is added.
	ErrNilLayer = errors.New("xeokit: nil layer")
)

// Model groups batching layers that are created and destroyed together.
// Models draw in the order they were created on the viewer; within a
// model, layers draw in ascending layer index.
type Model struct {
	id     string
	viewer *Viewer

	layers      []*batching.Layer
	nextIndex   int
	renderFlags *scene.RenderFlags

	destroyed bool
}

// ID returns the model's identifier.
func (m *Model) ID() string { return m.id }

// Layers returns the model's layers in draw order. The returned slice is
// owned by the model.
func (m *Model) Layers() []*batching.Layer { return m.layers }

// NewLayer returns a builder for the model's next layer. The layer index
// is assigned in creation order; rtcCenter may be nil for world-space
// geometry. Call FinalizeLayer with the builder to attach the finished
// layer.
func (m *Model) NewLayer(topology gpucore.PrimitiveTopology, rtcCenter *mgl64.Vec3) *batching.LayerBuilder {
	cfg := batching.LayerConfig{
		Topology:      topology,
		RTCCenter:     rtcCenter,
		LayerIndex:    m.nextIndex,
		EntityOffsets: m.viewer.opts.entityOffsets,
	}
	m.nextIndex++
	return batching.NewLayerBuilder(m.viewer.adapter, cfg)
}

// FinalizeLayer finalizes the builder and attaches the resulting layer
// to the model.
func (m *Model) FinalizeLayer(b *batching.LayerBuilder) (*batching.Layer, error) {
	if m.destroyed {
		return nil, ErrModelDestroyed
	}
	if b == nil {
		return nil, ErrNilLayer
	}
	layer, err := b.Finalize()
	if err != nil {
		return nil, err
	}
	m.AddLayer(layer)
	return layer, nil
}

// AddLayer attaches an already-built layer, keeping the model's layers
// sorted by ascending layer index.
func (m *Model) AddLayer(layer *batching.Layer) {
	if layer == nil {
		return
	}
	m.layers = append(m.layers, layer)
	sort.SliceStable(m.layers, func(i, j int) bool {
		return m.layers[i].LayerIndex() < m.layers[j].LayerIndex()
	})
}

// RenderFlags returns the model's flattened per-layer section-plane
// activity, rebuilt each frame before drawing.
func (m *Model) RenderFlags() *scene.RenderFlags { return m.renderFlags }

// rebuildRenderFlags recomputes layer visibility and the flattened
// activity array for the current section-plane state. Activity starts
// from each plane's own active toggle, replicated across every layer.
func (m *Model) rebuildRenderFlags(planes *scene.SectionPlanesState) {
	n := len(m.layers)
	if n == 0 {
		m.renderFlags.Reset(0, 0)
		return
	}
	maxIndex := 0
	for _, layer := range m.layers {
		if layer.LayerIndex() > maxIndex {
			maxIndex = layer.LayerIndex()
		}
	}
	m.renderFlags.Reset(maxIndex+1, planes.Count())
	for _, layer := range m.layers {
		m.renderFlags.SetLayerVisible(layer.LayerIndex(), layer.NumVisibleObjects() > 0)
	}
	for i, p := range planes.Planes() {
		if !p.Active {
			continue
		}
		for _, layer := range m.layers {
			m.renderFlags.SetSectionPlaneActive(layer.LayerIndex(), i, true)
		}
	}
}

// Destroy releases every layer's GPU buffers. Idempotent.
func (m *Model) Destroy() {
	if m.destroyed {
		return
	}
	m.destroyed = true
	for _, layer := range m.layers {
		layer.Destroy()
	}
	m.layers = nil
}
