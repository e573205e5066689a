package gpucore

import "errors"

// Adapter errors.
var (
	// ErrInvalidBufferSize is returned when buffer size is not positive.
	ErrInvalidBufferSize = errors.New("gpucore: buffer size must be positive")

	// ErrAdapterDestroyed is returned when operating on a destroyed adapter.
	ErrAdapterDestroyed = errors.New("gpucore: adapter has been destroyed")

	// ErrUnknownResource is returned when a command references an ID the
	// adapter does not track.
	ErrUnknownResource = errors.New("gpucore: unknown resource id")
)

// GPUAdapter abstracts the GPU backend. Batching layers create their
// buffers through it at build time, renderers record frame commands into
// a Recording which the frame orchestrator submits through it, and the
// program cache registers compiled programs with it.
//
// Implementations track the mapping between opaque IDs and backend
// resources. The HAL-backed implementation lives in backend/halgpu; tests
// use lightweight in-memory adapters.
type GPUAdapter interface {
	// CreateBuffer creates a GPU buffer of the given byte size.
	CreateBuffer(size int, usage BufferUsage) (BufferID, error)

	// WriteBuffer writes data into a buffer at the given byte offset.
	WriteBuffer(id BufferID, offset uint64, data []byte)

	// DestroyBuffer releases a buffer. Unknown IDs are ignored.
	DestroyBuffer(id BufferID)

	// CreateProgram registers a compiled program. The descriptor's SPIRV
	// field is populated; the adapter builds whatever backend pipeline
	// state it needs from it.
	CreateProgram(desc *ProgramDescriptor) (ProgramID, error)

	// DestroyProgram releases a program. Unknown IDs are ignored.
	DestroyProgram(id ProgramID)

	// Submit executes a frame recording in order.
	Submit(rec *Recording) error

	// Destroy releases all backend resources. Safe to call at any point,
	// including before any frame was submitted.
	Destroy()
}
