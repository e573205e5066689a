package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"

	"github.com/Exiver-Labs/xeokit-sdk/gpucore"
)

func TestFrameContext_ResetClearsElisionState(t *testing.T) {
	fc := NewFrameContext(mgl64.Ident4(), mgl64.Ident4())
	fc.Recording.BindProgram(7)
	fc.lastProgramID = 7
	fc.setLastCenter(true, mgl64.Vec3{1, 2, 3})
	fc.Stats.DrawCalls = 5

	view := mgl64.Translate3D(1, 0, 0)
	fc.Reset(view, mgl64.Ident4())

	assert.Empty(t, fc.Recording.Commands)
	assert.Equal(t, gpucore.ProgramID(gpucore.InvalidID), fc.LastProgramID())
	assert.Equal(t, FrameStats{}, fc.Stats)
	assert.Equal(t, view, fc.ViewMatrix)
	assert.False(t, fc.sameCenter(true, mgl64.Vec3{1, 2, 3}))
}

func TestFrameContext_SameCenter(t *testing.T) {
	fc := NewFrameContext(mgl64.Ident4(), mgl64.Ident4())

	// No previous draw: nothing matches.
	assert.False(t, fc.sameCenter(false, mgl64.Vec3{}))

	fc.setLastCenter(false, mgl64.Vec3{})
	assert.True(t, fc.sameCenter(false, mgl64.Vec3{}))
	// An explicit origin at zero is not the same as no origin.
	assert.False(t, fc.sameCenter(true, mgl64.Vec3{}))

	fc.setLastCenter(true, mgl64.Vec3{1e6, 0, 0})
	assert.True(t, fc.sameCenter(true, mgl64.Vec3{1e6, 0, 0}))
	assert.False(t, fc.sameCenter(true, mgl64.Vec3{1e6 + 1, 0, 0}))
	assert.False(t, fc.sameCenter(false, mgl64.Vec3{}))
}
