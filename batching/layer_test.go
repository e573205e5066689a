package batching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Exiver-Labs/xeokit-sdk/gpucore"
	"github.com/Exiver-Labs/xeokit-sdk/scene"
)

func TestLayer_SetFlags(t *testing.T) {
	adapter := newMemAdapter()
	layer := buildTestLayer(t, adapter, LayerConfig{Topology: gpucore.TopologyTriangles}, 2)

	require.NoError(t, layer.SetFlags(1, scene.EntityVisible|scene.EntityHighlighted))

	// Object 1 occupies vertices 4..7; its flags live at byte 16 onward.
	data := adapter.buffers[layer.FlagsBuf()]
	require.Len(t, data, 8*flagsStride)
	assert.Equal(t, byte(255), data[16], "visibility byte")
	assert.Equal(t, byte(0), data[17], "xray byte")
	assert.Equal(t, byte(255), data[18], "highlight byte")

	// Object 0 is untouched and keeps its build-time flags.
	assert.Equal(t, byte(255), data[0], "object 0 visibility")
	assert.Equal(t, byte(0), data[2], "object 0 highlight")

	// Clippable moved to flags2.
	data2 := adapter.buffers[layer.Flags2Buf()]
	assert.Equal(t, byte(0), data2[16], "object 1 lost clippable")
	assert.Equal(t, byte(255), data2[0], "object 0 keeps clippable")
}

func TestLayer_SetFlags_Errors(t *testing.T) {
	adapter := newMemAdapter()
	layer := buildTestLayer(t, adapter, LayerConfig{}, 1)

	assert.ErrorIs(t, layer.SetFlags(-1, scene.EntityVisible), ErrBadObjectIndex)
	assert.ErrorIs(t, layer.SetFlags(1, scene.EntityVisible), ErrBadObjectIndex)
	assert.ErrorIs(t, layer.SetOffset(0, [3]float64{}), ErrOffsetsDisabled)

	layer.Destroy()
	assert.ErrorIs(t, layer.SetFlags(0, scene.EntityVisible), ErrLayerDestroyed)
	assert.ErrorIs(t, layer.SetOffset(0, [3]float64{}), ErrLayerDestroyed)
}

func TestLayer_Destroy(t *testing.T) {
	adapter := newMemAdapter()
	layer := buildTestLayer(t, adapter, LayerConfig{EntityOffsets: true}, 1)

	require.Len(t, adapter.buffers, 6)
	layer.Destroy()
	layer.Destroy() // idempotent
	assert.True(t, layer.Destroyed())
	assert.Empty(t, adapter.buffers, "all GPU buffers released")
	assert.Equal(t, gpucore.BufferID(gpucore.InvalidID), layer.PositionsBuf())
}

func TestLayer_VisibleObjectCount(t *testing.T) {
	adapter := newMemAdapter()
	layer := buildTestLayer(t, adapter, LayerConfig{Topology: gpucore.TopologyTriangles}, 2)

	assert.Equal(t, 2, layer.NumVisibleObjects())

	// Hiding an object drops the count; hiding it again is a no-op.
	require.NoError(t, layer.SetFlags(0, scene.EntityClippable))
	assert.Equal(t, 1, layer.NumVisibleObjects())
	require.NoError(t, layer.SetFlags(0, 0))
	assert.Equal(t, 1, layer.NumVisibleObjects())

	// Visible but culled objects are not drawn.
	require.NoError(t, layer.SetFlags(0, scene.EntityVisible|scene.EntityCulled))
	assert.Equal(t, 1, layer.NumVisibleObjects())

	require.NoError(t, layer.SetFlags(0, scene.EntityVisible))
	assert.Equal(t, 2, layer.NumVisibleObjects())

	f, err := layer.ObjectFlags(0)
	require.NoError(t, err)
	assert.Equal(t, scene.EntityVisible, f)
	_, err = layer.ObjectFlags(2)
	assert.ErrorIs(t, err, ErrBadObjectIndex)
}

func TestPackFlags(t *testing.T) {
	tests := []struct {
		name       string
		in         scene.EntityFlags
		wantFlags  [4]byte
		wantFlags2 [4]byte
	}{
		{"zero", 0, [4]byte{}, [4]byte{}},
		{"visible", scene.EntityVisible, [4]byte{255, 0, 0, 0}, [4]byte{}},
		{"visible culled", scene.EntityVisible | scene.EntityCulled, [4]byte{}, [4]byte{}},
		{
			"everything",
			scene.EntityVisible | scene.EntityXRayed | scene.EntityHighlighted |
				scene.EntitySelected | scene.EntityClippable,
			[4]byte{255, 255, 255, 255},
			[4]byte{255, 0, 0, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, f2 := packFlags(tt.in)
			assert.Equal(t, tt.wantFlags, f)
			assert.Equal(t, tt.wantFlags2, f2)
		})
	}
}
