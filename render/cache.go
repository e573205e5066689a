package render

import (
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/Exiver-Labs/xeokit-sdk/gpucore"
)

// hashConfig produces the cache key for a program specialization using
// FNV-1a over the configuration fields.
func hashConfig(c ProgramConfig) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	put32 := func(v uint32) {
		buf[0] = byte(v)
		buf[1] = byte(v >> 8)
		buf[2] = byte(v >> 16)
		buf[3] = byte(v >> 24)
		h.Write(buf[:4])
	}
	put32(uint32(c.Pass))
	put32(uint32(c.NumSectionPlanes))
	if c.EntityOffsets {
		put32(1)
	} else {
		put32(0)
	}
	return h.Sum64()
}

// ProgramCache deduplicates shader programs by specialization so that
// renderers with the same pass kind, section-plane count and attribute
// layout share one program. The cache owns the programs it creates;
// renderers borrow them and must not destroy them.
type ProgramCache struct {
	mu      sync.Mutex
	adapter gpucore.GPUAdapter
	entries map[uint64]*gpucore.Program

	// Compiler translates WGSL source to SPIR-V for new programs.
	// When nil, compilation is delegated to the program constructor.
	Compiler func(source string) ([]uint32, error)

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewProgramCache returns an empty cache creating programs on the given
// adapter.
func NewProgramCache(adapter gpucore.GPUAdapter) *ProgramCache {
	return &ProgramCache{
		adapter: adapter,
		entries: make(map[uint64]*gpucore.Program),
	}
}

// GetOrCreate returns the program for the given specialization, creating
// and caching it on first use. Creation errors are not cached: a failed
// specialization is retried on the next call.
func (c *ProgramCache) GetOrCreate(cfg ProgramConfig) (*gpucore.Program, error) {
	key := hashConfig(cfg)

	c.mu.Lock()
	defer c.mu.Unlock()

	if prog, ok := c.entries[key]; ok {
		c.hits.Add(1)
		return prog, nil
	}
	c.misses.Add(1)

	desc := &gpucore.ProgramDescriptor{
		Label:      cfg.Label(),
		Source:     cfg.GenerateSource(),
		Attributes: cfg.Attributes(),
		Uniforms:   cfg.Uniforms(),
	}
	if c.Compiler != nil {
		spirv, err := c.Compiler(desc.Source)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", cfg.Label(), err)
		}
		desc.SPIRV = spirv
	}
	prog, err := gpucore.NewProgram(c.adapter, desc)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", cfg.Label(), err)
	}
	c.entries[key] = prog
	logger().Info("program created",
		"label", cfg.Label(),
		"attributes", cfg.Attributes().Count(),
		"sectionPlanes", cfg.NumSectionPlanes)
	return prog, nil
}

// Stats returns the cumulative hit and miss counts.
func (c *ProgramCache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached programs.
func (c *ProgramCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Invalidate drops all cached programs without destroying their backend
// handles. Called after the GPU context was lost and restored: the old
// handles are already gone, so destroying them would be an error.
func (c *ProgramCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[uint64]*gpucore.Program)
	if n > 0 {
		logger().Warn("program cache invalidated", "programs", n)
	}
}

// Destroy releases every cached program and empties the cache. The cache
// remains usable afterwards.
func (c *ProgramCache) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, prog := range c.entries {
		prog.Destroy()
	}
	c.entries = make(map[uint64]*gpucore.Program)
}
