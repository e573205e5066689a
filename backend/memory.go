package backend

import (
	"sync"

	"github.com/Exiver-Labs/xeokit-sdk/gpucore"
)

func init() {
	Register(BackendMemory, func() (gpucore.GPUAdapter, error) {
		return NewMemoryAdapter(), nil
	})
}

// MemoryAdapter is a gpucore.GPUAdapter that stores buffer contents in
// process memory and accepts every recording without executing it. It
// lets the full batching and draw orchestration run headless: buffer
// uploads are observable, frames submit successfully, and nothing
// touches a GPU.
//
// MemoryAdapter is safe for concurrent use.
type MemoryAdapter struct {
	mu        sync.Mutex
	nextID    uint64
	buffers   map[gpucore.BufferID][]byte
	programs  map[gpucore.ProgramID]string
	frames    int
	destroyed bool
}

var _ gpucore.GPUAdapter = (*MemoryAdapter)(nil)

// NewMemoryAdapter returns an empty in-memory adapter.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		nextID:   1,
		buffers:  make(map[gpucore.BufferID][]byte),
		programs: make(map[gpucore.ProgramID]string),
	}
}

// CreateBuffer allocates a zeroed in-memory buffer.
func (a *MemoryAdapter) CreateBuffer(size int, usage gpucore.BufferUsage) (gpucore.BufferID, error) {
	if size <= 0 {
		return gpucore.InvalidID, gpucore.ErrInvalidBufferSize
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return gpucore.InvalidID, gpucore.ErrAdapterDestroyed
	}
	id := gpucore.BufferID(a.nextID)
	a.nextID++
	a.buffers[id] = make([]byte, size)
	return id, nil
}

// WriteBuffer copies data into the buffer. Writes to unknown buffers or
// past the end are dropped, matching GPU queue semantics of not failing
// the frame.
func (a *MemoryAdapter) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	buf, ok := a.buffers[id]
	if !ok || offset+uint64(len(data)) > uint64(len(buf)) {
		return
	}
	copy(buf[offset:], data)
}

// DestroyBuffer releases a buffer. Unknown IDs are ignored.
func (a *MemoryAdapter) DestroyBuffer(id gpucore.BufferID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.buffers, id)
}

// CreateProgram records the program and returns a fresh handle. Shader
// source is accepted as-is; there is nothing to compile.
func (a *MemoryAdapter) CreateProgram(desc *gpucore.ProgramDescriptor) (gpucore.ProgramID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return gpucore.InvalidID, gpucore.ErrAdapterDestroyed
	}
	id := gpucore.ProgramID(a.nextID)
	a.nextID++
	a.programs[id] = desc.Label
	return id, nil
}

// DestroyProgram releases a program handle.
func (a *MemoryAdapter) DestroyProgram(id gpucore.ProgramID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.programs, id)
}

// Submit accepts the recording and counts the frame.
func (a *MemoryAdapter) Submit(rec *gpucore.Recording) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return gpucore.ErrAdapterDestroyed
	}
	a.frames++
	return nil
}

// Frames returns the number of submitted frames.
func (a *MemoryAdapter) Frames() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frames
}

// BufferBytes returns a copy of a buffer's contents, or nil for unknown
// buffers. Intended for tests and tooling.
func (a *MemoryAdapter) BufferBytes(id gpucore.BufferID) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	buf, ok := a.buffers[id]
	if !ok {
		return nil
	}
	out := make([]byte, len(buf))
	copy(out, buf)
	return out
}

// Destroy drops all resources. Subsequent operations fail.
func (a *MemoryAdapter) Destroy() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.destroyed = true
	a.buffers = make(map[gpucore.BufferID][]byte)
	a.programs = make(map[gpucore.ProgramID]string)
}
