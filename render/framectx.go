// Package render draws batched geometry layers by recording GPU commands
// into a per-frame command stream. Renderers track the last bound program
// and the last relative-to-center origin across draw calls so that
// redundant program binds and section-plane uniform reloads are elided
// when consecutive layers share state.
package render

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Exiver-Labs/xeokit-sdk/gpucore"
	"github.com/Exiver-Labs/xeokit-sdk/rtc"
)

// FrameStats counts work performed and work elided during one frame.
// Elision counters exist so callers can observe how effectively draw
// ordering is exploiting shared renderer state.
type FrameStats struct {
	ProgramBinds              int
	ProgramBindsElided        int
	SectionPlaneReloads       int
	SectionPlaneReloadsElided int
	DrawCalls                 int
}

// FrameContext carries the state shared by all renderers during a single
// frame. It owns the frame's command recording and the cross-draw elision
// state: the last program bound and the last relative-to-center origin
// used for section-plane uniforms.
//
// A FrameContext is not safe for concurrent use; a frame is recorded from
// a single goroutine.
type FrameContext struct {
	// Recording receives the frame's GPU commands in draw order.
	Recording *gpucore.Recording

	// ViewMatrix and ProjMatrix are the camera matrices for this frame.
	// ViewMatrix is in absolute world space; renderers translate it per
	// layer when the layer carries a relative-to-center origin.
	ViewMatrix mgl64.Mat4
	ProjMatrix mgl64.Mat4

	Stats FrameStats

	lastProgramID gpucore.ProgramID
	lastCenter    mgl64.Vec3
	lastCenterSet bool
	hasLastCenter bool
}

// NewFrameContext returns a frame context ready to record one frame with
// the given camera matrices.
func NewFrameContext(view, proj mgl64.Mat4) *FrameContext {
	fc := &FrameContext{Recording: &gpucore.Recording{}}
	fc.Reset(view, proj)
	return fc
}

// Reset prepares the context for a new frame: the recording is truncated,
// the camera matrices replaced and all elision state and counters cleared.
// The recording's backing storage is retained across frames.
func (fc *FrameContext) Reset(view, proj mgl64.Mat4) {
	if fc.Recording == nil {
		fc.Recording = &gpucore.Recording{}
	}
	fc.Recording.Reset()
	fc.ViewMatrix = view
	fc.ProjMatrix = proj
	fc.Stats = FrameStats{}
	fc.lastProgramID = gpucore.InvalidID
	fc.lastCenter = mgl64.Vec3{}
	fc.lastCenterSet = false
	fc.hasLastCenter = false
}

// LastProgramID reports the program bound by the most recent draw in this
// frame, or [gpucore.InvalidID] when nothing has been drawn yet.
func (fc *FrameContext) LastProgramID() gpucore.ProgramID {
	return fc.lastProgramID
}

// sameCenter reports whether the given relative-to-center origin matches
// the one used by the previous draw. A layer with no origin and a layer
// with an explicit origin never compare equal, even at (0,0,0): switching
// between the two changes the space the section-plane uniforms were
// written in.
func (fc *FrameContext) sameCenter(hasCenter bool, center mgl64.Vec3) bool {
	if !fc.lastCenterSet {
		return false
	}
	if hasCenter != fc.hasLastCenter {
		return false
	}
	if !hasCenter {
		return true
	}
	return rtc.CentersEqual(center, fc.lastCenter)
}

func (fc *FrameContext) setLastCenter(hasCenter bool, center mgl64.Vec3) {
	fc.lastCenterSet = true
	fc.hasLastCenter = hasCenter
	fc.lastCenter = center
}
