package xeokit

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Exiver-Labs/xeokit-sdk/gpucore"
	"github.com/Exiver-Labs/xeokit-sdk/render"
	"github.com/Exiver-Labs/xeokit-sdk/scene"
)

var (
	// ErrNilAdapter is returned when a viewer is created without an adapter.
	ErrNilAdapter = errors.New("xeokit: nil adapter")

	// ErrViewerDestroyed is returned when operating on a destroyed viewer.
	ErrViewerDestroyed = errors.New("xeokit: viewer destroyed")
)

// Viewer owns the scene state and the per-frame draw orchestration. It
// draws models in creation order and their layers in ascending layer
// index, so consecutive draws share as much program and uniform state as
// possible.
//
// Viewer is not safe for concurrent use; frames are rendered from a
// single goroutine.
type Viewer struct {
	adapter gpucore.GPUAdapter
	opts    viewerOptions

	planes *scene.SectionPlanesState
	models []*Model

	cache     *render.ProgramCache
	drawPass  *render.DrawRenderer
	occlusion *render.OcclusionRenderer

	fc *render.FrameContext

	destroyed bool
}

// NewViewer creates a viewer drawing through the given adapter. The
// adapter is borrowed: Destroy releases the viewer's own resources but
// leaves the adapter alive.
func NewViewer(adapter gpucore.GPUAdapter, opts ...ViewerOption) (*Viewer, error) {
	if adapter == nil {
		return nil, ErrNilAdapter
	}
	o := defaultViewerOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger != nil {
		SetLogger(o.logger)
	}

	planes := scene.NewSectionPlanesState()
	cache := render.NewProgramCache(adapter)
	cache.Compiler = o.compiler

	v := &Viewer{
		adapter:  adapter,
		opts:     o,
		planes:   planes,
		cache:    cache,
		drawPass: render.NewDrawRenderer(cache, planes, o.entityOffsets),
		fc:       render.NewFrameContext(mgl64.Ident4(), mgl64.Ident4()),
	}
	if o.occlusionPass {
		v.occlusion = render.NewOcclusionRenderer(cache, planes, o.entityOffsets)
	}
	return v, nil
}

// SectionPlanes returns the viewer's section-plane collection. Adding or
// removing planes invalidates compiled renderers; the next frame
// reallocates them automatically.
func (v *Viewer) SectionPlanes() *scene.SectionPlanesState {
	return v.planes
}

// CreateModel adds an empty model. Models draw in creation order.
func (v *Viewer) CreateModel(id string) *Model {
	m := &Model{
		id:          id,
		viewer:      v,
		renderFlags: &scene.RenderFlags{},
	}
	v.models = append(v.models, m)
	return m
}

// RemoveModel detaches and destroys the model with the given id.
func (v *Viewer) RemoveModel(id string) {
	for i, m := range v.models {
		if m.id == id {
			v.models = append(v.models[:i], v.models[i+1:]...)
			m.Destroy()
			return
		}
	}
}

// Models returns the models in draw order.
func (v *Viewer) Models() []*Model { return v.models }

// RenderFrame draws every model and submits the frame to the adapter.
// Renderers whose section-plane specialization went stale are
// reallocated before drawing, and layers with no visible objects are
// skipped. The returned stats describe the work recorded for this
// frame.
func (v *Viewer) RenderFrame(view, proj mgl64.Mat4) (render.FrameStats, error) {
	if v.destroyed {
		return render.FrameStats{}, ErrViewerDestroyed
	}

	if !v.drawPass.Valid() {
		v.drawPass.Invalidate()
	}
	if v.occlusion != nil && !v.occlusion.Valid() {
		v.occlusion.Invalidate()
	}

	v.fc.Reset(view, proj)

	for _, m := range v.models {
		if m.destroyed {
			continue
		}
		m.rebuildRenderFlags(v.planes)
		for _, layer := range m.layers {
			if !m.renderFlags.LayerVisible(layer.LayerIndex()) {
				continue
			}
			v.drawPass.DrawLayer(v.fc, layer, m.renderFlags)
		}
	}
	if v.occlusion != nil {
		for _, m := range v.models {
			if m.destroyed {
				continue
			}
			for _, layer := range m.layers {
				if !m.renderFlags.LayerVisible(layer.LayerIndex()) {
					continue
				}
				v.occlusion.DrawLayer(v.fc, layer, m.renderFlags)
			}
		}
	}

	if err := v.adapter.Submit(v.fc.Recording); err != nil {
		return v.fc.Stats, fmt.Errorf("xeokit: submit frame: %w", err)
	}
	return v.fc.Stats, nil
}

// ContextRestored rebuilds GPU-side render state after the device was
// lost and restored. Renderer program handles and the program cache are
// dropped without destroying the dead backend resources; programs are
// rebuilt lazily on the next frame. Layer geometry buffers must be
// re-uploaded by the application.
func (v *Viewer) ContextRestored() {
	v.drawPass.ContextRestored()
	if v.occlusion != nil {
		v.occlusion.ContextRestored()
	}
	v.cache.Invalidate()
	Logger().Warn("GPU context restored, programs invalidated")
}

// Destroy releases all models, renderers and cached programs. The
// adapter remains usable by its owner. Idempotent.
func (v *Viewer) Destroy() {
	if v.destroyed {
		return
	}
	v.destroyed = true
	for _, m := range v.models {
		m.Destroy()
	}
	v.models = nil
	v.drawPass.Destroy()
	if v.occlusion != nil {
		v.occlusion.Destroy()
	}
	v.cache.Destroy()
}
