package backend

import (
	"errors"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or fails to open.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Registered backend names.
const (
	// BackendHAL is the GPU adapter on gogpu/wgpu's hardware abstraction
	// layer. Registered by importing backend/halgpu.
	BackendHAL = "hal"

	// BackendMemory is the in-memory adapter. Always available; used for
	// headless operation and tests.
	BackendMemory = "memory"
)
