package gpucore

// Recording is the command stream for one frame. Renderers append draw
// commands to the recording instead of talking to the GPU directly; the
// adapter executes the finished recording in order when the frame is
// submitted.
//
// Recording a frame rather than issuing calls immediately keeps the draw
// orchestration (state-change elision, uniform reload decisions)
// observable and testable without a GPU device.
//
// A Recording is not safe for concurrent use. Draws within a frame are
// strictly sequential and issued in a fixed layer order.
type Recording struct {
	Commands []Command
}

// Command is one recorded GPU command.
type Command interface {
	isCommand()
}

// BindProgram binds a compiled program for subsequent draws.
type BindProgram struct {
	Program ProgramID
}

// WriteUniform writes bytes into a uniform block of the bound program.
type WriteUniform struct {
	Program ProgramID

	// Binding is the uniform block binding index within the program.
	Binding uint32

	// Offset is the byte offset within the block.
	Offset uint32

	Data []byte
}

// SetVertexBuffer binds a vertex buffer to an attribute slot.
type SetVertexBuffer struct {
	Slot   uint32
	Buffer BufferID
}

// SetIndexBuffer binds the index buffer for the next indexed draw.
type SetIndexBuffer struct {
	Buffer BufferID
	Format IndexFormat
}

// DrawIndexed issues one indexed draw call with the currently bound
// program, vertex buffers and index buffer.
type DrawIndexed struct {
	IndexCount uint32
	FirstIndex uint32
	Topology   PrimitiveTopology
}

func (BindProgram) isCommand()     {}
func (WriteUniform) isCommand()    {}
func (SetVertexBuffer) isCommand() {}
func (SetIndexBuffer) isCommand()  {}
func (DrawIndexed) isCommand()     {}

func (rec *Recording) push(cmd Command) {
	rec.Commands = append(rec.Commands, cmd)
}

// BindProgram records a program bind.
func (rec *Recording) BindProgram(id ProgramID) {
	rec.push(BindProgram{Program: id})
}

// WriteUniform records a uniform block write. The data is copied so the
// caller may reuse its scratch buffer.
func (rec *Recording) WriteUniform(program ProgramID, binding, offset uint32, data []byte) {
	d := make([]byte, len(data))
	copy(d, data)
	rec.push(WriteUniform{Program: program, Binding: binding, Offset: offset, Data: d})
}

// SetVertexBuffer records a vertex buffer bind.
func (rec *Recording) SetVertexBuffer(slot uint32, buf BufferID) {
	rec.push(SetVertexBuffer{Slot: slot, Buffer: buf})
}

// SetIndexBuffer records an index buffer bind.
func (rec *Recording) SetIndexBuffer(buf BufferID, format IndexFormat) {
	rec.push(SetIndexBuffer{Buffer: buf, Format: format})
}

// DrawIndexed records an indexed draw call.
func (rec *Recording) DrawIndexed(indexCount, firstIndex uint32, topology PrimitiveTopology) {
	rec.push(DrawIndexed{IndexCount: indexCount, FirstIndex: firstIndex, Topology: topology})
}

// Reset clears the recording for reuse in the next frame.
func (rec *Recording) Reset() {
	rec.Commands = rec.Commands[:0]
}
