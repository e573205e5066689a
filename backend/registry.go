package backend

import (
	"fmt"
	"sync"

	"github.com/Exiver-Labs/xeokit-sdk/gpucore"
)

// Factory opens a new adapter instance. Factories are cheap to register;
// GPU resources are acquired only when the factory runs.
type Factory func() (gpucore.GPUAdapter, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)

	// Priority order for adapter selection (first available wins).
	// The HAL adapter is preferred; memory is the headless fallback.
	priority = []string{BackendHAL, BackendMemory}
)

// Register registers an adapter factory with the given name. Typically
// called from init() functions in backend packages. Registering an
// existing name replaces the factory.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a factory from the registry. Useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered backend names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}

// IsRegistered reports whether a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Open opens an adapter by name.
func Open(name string) (gpucore.GPUAdapter, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBackendNotAvailable, name)
	}
	return factory()
}

// Default opens the best available adapter in priority order: the GPU
// backend when it is registered and opens successfully, the in-memory
// fallback otherwise.
func Default() (gpucore.GPUAdapter, error) {
	registryMu.RLock()
	ordered := make([]Factory, 0, len(priority))
	for _, name := range priority {
		if factory, ok := factories[name]; ok {
			ordered = append(ordered, factory)
		}
	}
	registryMu.RUnlock()

	var lastErr error
	for _, factory := range ordered {
		adapter, err := factory()
		if err != nil {
			lastErr = err
			continue
		}
		if adapter != nil {
			return adapter, nil
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendNotAvailable, lastErr)
	}
	return nil, ErrBackendNotAvailable
}
