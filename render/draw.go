package render

import "github.com/Exiver-Labs/xeokit-sdk/scene"

// DrawRenderer draws batching layers for the main color pass. Vertex
// colors are interpolated and section planes discard clipped fragments.
type DrawRenderer struct {
	*layerDrawer
}

// NewDrawRenderer returns a color-pass renderer drawing against the
// given section-plane state. The program is allocated lazily on the
// first draw.
func NewDrawRenderer(cache *ProgramCache, planes *scene.SectionPlanesState, entityOffsets bool) *DrawRenderer {
	return &DrawRenderer{layerDrawer: newLayerDrawer(PassDraw, cache, planes, entityOffsets)}
}

var _ LayerRenderer = (*DrawRenderer)(nil)
