package scene

// EntityFlags is the per-object render state bitmask stored in the layer
// flags buffer. The bits mirror the object-level toggles exposed by the
// scene graph.
type EntityFlags uint32

const (
	// EntityVisible marks the object as visible.
	EntityVisible EntityFlags = 1 << iota

	// EntityCulled marks the object as culled by an external culling
	// system; a culled object is not drawn even when visible.
	EntityCulled

	// EntityPickable allows the object to be picked.
	EntityPickable

	// EntityClippable makes section planes apply to the object.
	EntityClippable

	// EntityXRayed renders the object in x-ray style.
	EntityXRayed

	// EntityHighlighted renders the object highlighted.
	EntityHighlighted

	// EntitySelected renders the object selected.
	EntitySelected

	// EntityEdges renders the object's edges emphasized.
	EntityEdges
)

// Drawn reports whether an object with these flags is drawn at all.
func (f EntityFlags) Drawn() bool {
	return f&EntityVisible != 0 && f&EntityCulled == 0
}

// RenderFlags is per-model scratch state recomputed whenever visibility
// or clip state changes, and read-only to renderers during a frame.
//
// The section-plane activity matrix is flattened as
// layerIndex*numSectionPlanes + planeIndex, indexed by the layer's
// position in the model's flat layer list.
type RenderFlags struct {
	numLayers        int
	numSectionPlanes int

	// sectionPlanesActivePerLayer is the flattened activity matrix.
	sectionPlanesActivePerLayer []bool

	// layerVisible holds per-layer visibility, indexed by layer index.
	layerVisible []bool

	// VisibleLayers lists the indices of layers that have at least one
	// drawn object this frame, in ascending layer order. Maintained by
	// SetLayerVisible.
	VisibleLayers []int
}

// NewRenderFlags returns an empty RenderFlags.
func NewRenderFlags() *RenderFlags {
	return &RenderFlags{}
}

// Reset resizes the flags for the given layer and plane counts and clears
// all state. Call at the start of every rebuild.
func (rf *RenderFlags) Reset(numLayers, numSectionPlanes int) {
	rf.numLayers = numLayers
	rf.numSectionPlanes = numSectionPlanes
	n := numLayers * numSectionPlanes
	if cap(rf.sectionPlanesActivePerLayer) < n {
		rf.sectionPlanesActivePerLayer = make([]bool, n)
	} else {
		rf.sectionPlanesActivePerLayer = rf.sectionPlanesActivePerLayer[:n]
		for i := range rf.sectionPlanesActivePerLayer {
			rf.sectionPlanesActivePerLayer[i] = false
		}
	}
	if cap(rf.layerVisible) < numLayers {
		rf.layerVisible = make([]bool, numLayers)
	} else {
		rf.layerVisible = rf.layerVisible[:numLayers]
		for i := range rf.layerVisible {
			rf.layerVisible[i] = false
		}
	}
	rf.VisibleLayers = rf.VisibleLayers[:0]
}

// SetLayerVisible records whether the layer has at least one drawn
// object this frame. Layers are expected to be recorded in ascending
// index order so VisibleLayers stays sorted.
func (rf *RenderFlags) SetLayerVisible(layerIndex int, visible bool) {
	if layerIndex < 0 || layerIndex >= len(rf.layerVisible) {
		return
	}
	if visible == rf.layerVisible[layerIndex] {
		return
	}
	if visible {
		rf.VisibleLayers = append(rf.VisibleLayers, layerIndex)
	} else {
		for i, idx := range rf.VisibleLayers {
			if idx == layerIndex {
				rf.VisibleLayers = append(rf.VisibleLayers[:i], rf.VisibleLayers[i+1:]...)
				break
			}
		}
	}
	rf.layerVisible[layerIndex] = visible
}

// LayerVisible reports whether the layer has drawn objects this frame.
// Out-of-range indices report false.
func (rf *RenderFlags) LayerVisible(layerIndex int) bool {
	if layerIndex < 0 || layerIndex >= len(rf.layerVisible) {
		return false
	}
	return rf.layerVisible[layerIndex]
}

// SetSectionPlaneActive records whether the given plane clips the given
// layer this frame.
func (rf *RenderFlags) SetSectionPlaneActive(layerIndex, planeIndex int, active bool) {
	rf.sectionPlanesActivePerLayer[layerIndex*rf.numSectionPlanes+planeIndex] = active
}

// SectionPlaneActive reports whether the given plane clips the given
// layer this frame.
func (rf *RenderFlags) SectionPlaneActive(layerIndex, planeIndex int) bool {
	return rf.sectionPlanesActivePerLayer[layerIndex*rf.numSectionPlanes+planeIndex]
}

// NumSectionPlanes returns the plane count the flags were reset with.
func (rf *RenderFlags) NumSectionPlanes() int {
	return rf.numSectionPlanes
}

// NumLayers returns the layer count the flags were reset with.
func (rf *RenderFlags) NumLayers() int {
	return rf.numLayers
}
