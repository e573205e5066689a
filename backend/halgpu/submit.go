package halgpu

import (
	"fmt"

	types "github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/Exiver-Labs/xeokit-sdk/gpucore"
)

// Uniform buffers are allocated in 256-byte steps, the minimum uniform
// buffer offset alignment required by WebGPU.
const uniformBufferAlign = 256

// frameState tracks the render state accumulated while replaying a
// recording. Pass encoding through HAL is pending, so the state is used
// for validation and statistics rather than forwarded per command.
type frameState struct {
	program       gpucore.ProgramID
	vertexBuffers map[uint32]gpucore.BufferID
	indexBuffer   gpucore.BufferID
	indexFormat   gpucore.IndexFormat
	draws         int
}

// Submit replays a frame recording against the HAL device. Uniform
// writes are uploaded through the queue into each program's backing
// uniform buffers; draw state is tracked and the frame's command buffer
// is submitted without a fence.
func (a *Adapter) Submit(rec *gpucore.Recording) error {
	a.mu.RLock()
	dead := a.destroyed
	a.mu.RUnlock()
	if dead {
		return gpucore.ErrAdapterDestroyed
	}
	if rec == nil || len(rec.Commands) == 0 {
		return nil
	}

	state := frameState{vertexBuffers: make(map[uint32]gpucore.BufferID)}
	for _, cmd := range rec.Commands {
		switch c := cmd.(type) {
		case gpucore.BindProgram:
			a.mu.RLock()
			_, ok := a.programs[c.Program]
			a.mu.RUnlock()
			if !ok {
				return fmt.Errorf("halgpu: bind program %d: %w", c.Program, gpucore.ErrUnknownResource)
			}
			state.program = c.Program

		case gpucore.WriteUniform:
			if err := a.writeUniform(c); err != nil {
				return err
			}

		case gpucore.SetVertexBuffer:
			state.vertexBuffers[c.Slot] = c.Buffer

		case gpucore.SetIndexBuffer:
			state.indexBuffer = c.Buffer
			state.indexFormat = c.Format

		case gpucore.DrawIndexed:
			if state.program == gpucore.InvalidID {
				return fmt.Errorf("halgpu: draw without bound program")
			}
			if state.indexBuffer == gpucore.InvalidID {
				return fmt.Errorf("halgpu: draw without index buffer")
			}
			// Render pass encoding pending HAL render pipeline support;
			// the draw is validated and counted.
			state.draws++
		}
	}

	if state.draws == 0 {
		return nil
	}
	return a.flush(state.draws)
}

// writeUniform uploads one uniform block write, growing the backing
// buffer when the write extends past its current size.
func (a *Adapter) writeUniform(w gpucore.WriteUniform) error {
	a.mu.Lock()
	p, ok := a.programs[w.Program]
	if !ok {
		a.mu.Unlock()
		return fmt.Errorf("halgpu: uniform write to program %d: %w", w.Program, gpucore.ErrUnknownResource)
	}
	end := uint64(w.Offset) + uint64(len(w.Data))
	u := p.uniforms[w.Binding]
	if u == nil || u.size < end {
		size := (end + uniformBufferAlign - 1) / uniformBufferAlign * uniformBufferAlign
		buf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
			Label: fmt.Sprintf("%s-uniform-%d", p.label, w.Binding),
			Size:  size,
			Usage: types.BufferUsageUniform | types.BufferUsageCopyDst,
		})
		if err != nil {
			a.mu.Unlock()
			return fmt.Errorf("halgpu: create uniform buffer: %w", err)
		}
		if u != nil {
			a.device.DestroyBuffer(u.buf)
		}
		u = &uniformBuffer{buf: buf, size: size}
		p.uniforms[w.Binding] = u
	}
	a.mu.Unlock()

	a.queue.WriteBuffer(u.buf, uint64(w.Offset), w.Data)
	return nil
}

// flush encodes and submits the frame's command buffer without a fence.
func (a *Adapter) flush(draws int) error {
	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "frame",
	})
	if err != nil {
		return fmt.Errorf("halgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("frame"); err != nil {
		return fmt.Errorf("halgpu: begin encoding: %w", err)
	}
	cmdBuffer, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("halgpu: end encoding: %w", err)
	}
	defer cmdBuffer.Destroy()

	if err := a.queue.Submit([]hal.CommandBuffer{cmdBuffer}, nil, 0); err != nil {
		return fmt.Errorf("halgpu: submit: %w", err)
	}
	logger().Debug("frame submitted", "draws", draws)
	return nil
}
