package render

import "github.com/Exiver-Labs/xeokit-sdk/scene"

// OcclusionRenderer draws batching layers as flat silhouettes for
// occlusion testing. It binds no color attribute; fragments are emitted
// solid white so occupancy can be read back. Section planes clip
// silhouettes the same way they clip the color pass, keeping occlusion
// results consistent with what is visible.
type OcclusionRenderer struct {
	*layerDrawer
}

// NewOcclusionRenderer returns an occlusion-pass renderer drawing
// against the given section-plane state. The program is allocated lazily
// on the first draw.
func NewOcclusionRenderer(cache *ProgramCache, planes *scene.SectionPlanesState, entityOffsets bool) *OcclusionRenderer {
	return &OcclusionRenderer{layerDrawer: newLayerDrawer(PassOcclusion, cache, planes, entityOffsets)}
}

var _ LayerRenderer = (*OcclusionRenderer)(nil)
