// Package xeokit renders large batched 3D models with few draw calls.
//
// Meshes are appended to layers that share one set of GPU buffers each
// (quantized positions, colors, per-vertex state flags, optional world
// offsets) and are drawn with a single indexed draw call per layer.
// Layers may carry a relative-to-center origin so models far from the
// world origin render without float32 jitter: world math stays in
// float64, and the camera view matrix is translated per layer before it
// is written to the GPU.
//
// A Viewer owns the scene state (section planes, models) and draws each
// frame into a command recording. Renderers elide redundant program
// binds and section-plane uniform reloads across consecutive layers, so
// draw order determines how little state the GPU has to swap.
//
// Basic usage:
//
//	adapter, err := halgpu.Open()
//	if err != nil { ... }
//	viewer, err := xeokit.NewViewer(adapter)
//	if err != nil { ... }
//	defer viewer.Destroy()
//
//	model := viewer.CreateModel("tower")
//	builder := model.NewLayer(gpucore.TopologyTriangles, nil)
//	builder.AppendMesh(positions, color, indices, scene.EntityVisible)
//	if _, err := model.FinalizeLayer(builder); err != nil { ... }
//
//	stats, err := viewer.RenderFrame(viewMatrix, projMatrix)
package xeokit
