// Package gpucore provides the GPU abstractions the batching renderer is
// built on.
//
// It defines the [GPUAdapter] interface, which abstracts over backend
// implementations so the same draw orchestration works against a real
// device or an in-memory double:
//   - backend/halgpu (gogpu/wgpu HAL devices)
//   - backend (in-memory fallback adapter)
//
// # Frame Recording
//
// Renderers never talk to the adapter during a frame. They append
// commands to a [Recording] — program binds, uniform writes, buffer
// binds, indexed draws — and the frame orchestrator submits the finished
// recording once. That keeps state-change elision decisions inspectable:
// a test can walk Recording.Commands and assert exactly which binds and
// uniform reloads happened.
//
// # Resource Management
//
// GPU resources are referenced by opaque IDs ([BufferID], [ProgramID]).
// Adapters track the mapping between IDs and backend resources and
// ignore destruction of unknown IDs, so callers can destroy defensively
// after a context loss.
//
// # Programs
//
// [Program] pairs a WGSL source with its compiled SPIR-V and the
// attribute and uniform layout the renderer binds against. Compilation
// goes through naga via [CompileWGSL] unless the descriptor already
// carries SPIR-V.
package gpucore
