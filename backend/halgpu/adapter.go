// Package halgpu implements gpucore.GPUAdapter on gogpu/wgpu's hardware
// abstraction layer. Buffers and shader modules are real HAL resources;
// render pipeline state is tracked locally until HAL render pass
// integration is complete.
package halgpu

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	types "github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/Exiver-Labs/xeokit-sdk/gpucore"
)

// DeviceHandle provides GPU device access from a host application. Hosts
// like gogpu windows implement gpucontext.DeviceProvider and hand it to
// the viewer, which reuses the shared device instead of opening its own.
type DeviceHandle = gpucontext.DeviceProvider

var (
	// ErrNilDevice is returned when an adapter is constructed without a device.
	ErrNilDevice = errors.New("halgpu: nil device")

	// ErrNoHALAccess is returned when a device provider does not expose
	// HAL types.
	ErrNoHALAccess = errors.New("halgpu: provider does not expose HAL types")

	// ErrNoBackend is returned when no usable HAL backend is registered.
	ErrNoBackend = errors.New("halgpu: no HAL backend available")

	// ErrNoAdapters is returned when the backend reports no GPU adapters.
	ErrNoAdapters = errors.New("halgpu: no GPU adapters found")
)

// Adapter bridges the gpucore abstraction to wgpu/hal. Resource IDs are
// opaque handles mapped to HAL resources internally.
//
// Adapter is safe for concurrent use; all resource maps are protected by
// a mutex. Frame submission is expected from a single goroutine.
type Adapter struct {
	mu     sync.RWMutex
	device hal.Device
	queue  hal.Queue

	// Owned instance and device, set when the adapter bootstraps its own
	// GPU. Shared devices from a provider are never destroyed here.
	instance   hal.Instance
	ownsDevice bool

	nextID atomic.Uint64

	buffers  map[gpucore.BufferID]hal.Buffer
	programs map[gpucore.ProgramID]*program

	destroyed bool
}

var _ gpucore.GPUAdapter = (*Adapter)(nil)

// program holds the HAL resources backing one compiled program: the
// shader module plus one uniform buffer per bound block, allocated
// lazily on first write.
type program struct {
	label    string
	module   hal.ShaderModule
	uniforms map[uint32]*uniformBuffer

	// pipeline is the render pipeline handle for this program. Pipeline
	// creation through HAL is pending; the handle tracks identity only.
	pipeline pipelineHandle
}

type uniformBuffer struct {
	buf  hal.Buffer
	size uint64
}

// pipelineHandle identifies a render pipeline. HAL render pipeline
// integration is pending, so the handle carries identity and label only.
type pipelineHandle struct {
	id    uint64
	label string
}

// New wraps an existing HAL device and queue. The caller retains
// ownership of both; Destroy leaves them alive.
func New(device hal.Device, queue hal.Queue) (*Adapter, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	a := &Adapter{
		device:   device,
		queue:    queue,
		buffers:  make(map[gpucore.BufferID]hal.Buffer),
		programs: make(map[gpucore.ProgramID]*program),
	}
	a.nextID.Store(1)
	return a, nil
}

// NewFromDeviceHandle builds an adapter on a host-provided device. The
// handle must additionally expose HalDevice() any and HalQueue() any for
// direct HAL access; providers without HAL access are rejected.
func NewFromDeviceHandle(h DeviceHandle) (*Adapter, error) {
	return NewFromProvider(h)
}

// NewFromProvider builds an adapter on a shared GPU device. The provider
// must expose HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue, the convention used by gpucontext device providers.
func NewFromProvider(provider any) (*Adapter, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALAccess
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALAccess)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALAccess)
	}
	return New(device, queue)
}

// Open bootstraps a dedicated GPU: it selects the Vulkan backend, picks a
// discrete or integrated adapter and opens a device. The returned Adapter
// owns the device and releases it on Destroy.
//
// The Vulkan HAL backend must be linked in by the caller:
//
//	import _ "github.com/gogpu/wgpu/hal/vulkan"
func Open() (*Adapter, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, ErrNoBackend
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapters
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("halgpu: open device: %w", err)
	}
	a, err := New(openDev.Device, openDev.Queue)
	if err != nil {
		instance.Destroy()
		return nil, err
	}
	a.instance = instance
	a.ownsDevice = true
	logger().Info("GPU adapter opened", "device", selected.Info.Name)
	return a, nil
}

func (a *Adapter) newID() uint64 {
	return a.nextID.Add(1) - 1
}

// CreateBuffer allocates a GPU buffer writable from the queue.
func (a *Adapter) CreateBuffer(size int, usage gpucore.BufferUsage) (gpucore.BufferID, error) {
	if size <= 0 {
		return gpucore.InvalidID, gpucore.ErrInvalidBufferSize
	}
	a.mu.RLock()
	dead := a.destroyed
	a.mu.RUnlock()
	if dead {
		return gpucore.InvalidID, gpucore.ErrAdapterDestroyed
	}

	buffer, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Size:  uint64(size),
		Usage: convertBufferUsage(usage),
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("halgpu: create buffer: %w", err)
	}

	id := gpucore.BufferID(a.newID())
	a.mu.Lock()
	a.buffers[id] = buffer
	a.mu.Unlock()
	return id, nil
}

// WriteBuffer uploads data through the queue. Writes to unknown buffers
// are dropped.
func (a *Adapter) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) {
	a.mu.RLock()
	buffer, ok := a.buffers[id]
	a.mu.RUnlock()
	if ok && len(data) > 0 {
		a.queue.WriteBuffer(buffer, offset, data)
	}
}

// DestroyBuffer releases a buffer. Unknown IDs are ignored.
func (a *Adapter) DestroyBuffer(id gpucore.BufferID) {
	a.mu.Lock()
	buffer, ok := a.buffers[id]
	if ok {
		delete(a.buffers, id)
	}
	a.mu.Unlock()
	if ok {
		a.device.DestroyBuffer(buffer)
	}
}

// CreateProgram builds the HAL shader module for a compiled program. The
// descriptor's SPIR-V is used when present; otherwise the WGSL source is
// handed to the HAL for translation.
func (a *Adapter) CreateProgram(desc *gpucore.ProgramDescriptor) (gpucore.ProgramID, error) {
	a.mu.RLock()
	dead := a.destroyed
	a.mu.RUnlock()
	if dead {
		return gpucore.InvalidID, gpucore.ErrAdapterDestroyed
	}

	source := hal.ShaderSource{SPIRV: desc.SPIRV}
	if len(desc.SPIRV) == 0 {
		source = hal.ShaderSource{WGSL: desc.Source}
	}
	module, err := a.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label,
		Source: source,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("halgpu: create shader module %q: %w", desc.Label, err)
	}

	id := gpucore.ProgramID(a.newID())
	p := &program{
		label:    desc.Label,
		module:   module,
		uniforms: make(map[uint32]*uniformBuffer),
		pipeline: pipelineHandle{id: a.newID(), label: desc.Label},
	}
	a.mu.Lock()
	a.programs[id] = p
	a.mu.Unlock()
	return id, nil
}

// DestroyProgram releases a program's shader module and uniform buffers.
func (a *Adapter) DestroyProgram(id gpucore.ProgramID) {
	a.mu.Lock()
	p, ok := a.programs[id]
	if ok {
		delete(a.programs, id)
	}
	a.mu.Unlock()
	if !ok {
		return
	}
	a.device.DestroyShaderModule(p.module)
	for _, u := range p.uniforms {
		a.device.DestroyBuffer(u.buf)
	}
}

// Destroy releases every tracked resource. A device obtained through Open
// is destroyed; shared devices are left alive.
func (a *Adapter) Destroy() {
	a.mu.Lock()
	if a.destroyed {
		a.mu.Unlock()
		return
	}
	a.destroyed = true
	buffers := a.buffers
	programs := a.programs
	a.buffers = make(map[gpucore.BufferID]hal.Buffer)
	a.programs = make(map[gpucore.ProgramID]*program)
	a.mu.Unlock()

	for _, buffer := range buffers {
		a.device.DestroyBuffer(buffer)
	}
	for _, p := range programs {
		a.device.DestroyShaderModule(p.module)
		for _, u := range p.uniforms {
			a.device.DestroyBuffer(u.buf)
		}
	}
	if a.ownsDevice {
		a.device.Destroy()
		if a.instance != nil {
			a.instance.Destroy()
			a.instance = nil
		}
	}
}

func convertBufferUsage(usage gpucore.BufferUsage) types.BufferUsage {
	var result types.BufferUsage
	if usage&gpucore.BufferUsageVertex != 0 {
		result |= types.BufferUsageVertex
	}
	if usage&gpucore.BufferUsageIndex != 0 {
		result |= types.BufferUsageIndex
	}
	if usage&gpucore.BufferUsageUniform != 0 {
		result |= types.BufferUsageUniform
	}
	if usage&gpucore.BufferUsageCopyDst != 0 {
		result |= types.BufferUsageCopyDst
	}
	return result
}
