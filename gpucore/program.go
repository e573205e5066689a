package gpucore

import (
	"errors"
	"fmt"
)

// Program errors.
var (
	// ErrProgramDestroyed is returned when operating on a destroyed program.
	ErrProgramDestroyed = errors.New("gpucore: program has been destroyed")

	// ErrNilAdapter is returned when creating a resource without an adapter.
	ErrNilAdapter = errors.New("gpucore: adapter is nil")

	// ErrEmptyShaderSource is returned when a program descriptor carries no
	// shader source.
	ErrEmptyShaderSource = errors.New("gpucore: empty shader source")
)

// ProgramDescriptor describes a shader program to compile and link.
type ProgramDescriptor struct {
	// Label is an optional debug name.
	Label string

	// Source is the WGSL source containing both entry points.
	Source string

	// VertexEntry is the vertex entry point. Defaults to "vs_main".
	VertexEntry string

	// FragmentEntry is the fragment entry point. Defaults to "fs_main".
	FragmentEntry string

	// Attributes is the set of vertex attributes the source declares.
	Attributes AttributeSet

	// Uniforms maps uniform block names to their binding indices.
	Uniforms map[string]uint32

	// SPIRV is the compiled module. Left empty by callers, NewProgram
	// compiles Source into it; a pre-populated module skips compilation.
	SPIRV []uint32
}

// Program is a thin ownership wrapper around one compiled shader program
// and its attribute/uniform locations. Each program is compiled for a
// specific configuration (section-plane count, attribute presence), so
// the wrapper also records which attributes and uniform blocks exist.
//
// The wrapped GPU resource is owned exclusively: Destroy releases it and
// the program must not be bound afterwards.
type Program struct {
	id        ProgramID
	adapter   GPUAdapter
	label     string
	attrs     AttributeSet
	uniforms  map[string]uint32
	spirv     []uint32
	destroyed bool
}

// NewProgram compiles the descriptor's WGSL source and registers the
// program with the adapter. A compile error is returned without touching
// the adapter, so a failed program never holds GPU resources.
func NewProgram(adapter GPUAdapter, desc *ProgramDescriptor) (*Program, error) {
	if adapter == nil {
		return nil, ErrNilAdapter
	}
	if desc.Source == "" {
		return nil, ErrEmptyShaderSource
	}
	if desc.VertexEntry == "" {
		desc.VertexEntry = "vs_main"
	}
	if desc.FragmentEntry == "" {
		desc.FragmentEntry = "fs_main"
	}

	if len(desc.SPIRV) == 0 {
		spirv, err := CompileWGSL(desc.Source)
		if err != nil {
			return nil, err
		}
		desc.SPIRV = spirv
	}

	id, err := adapter.CreateProgram(desc)
	if err != nil {
		return nil, fmt.Errorf("gpucore: failed to create program %q: %w", desc.Label, err)
	}

	return &Program{
		id:       id,
		adapter:  adapter,
		label:    desc.Label,
		attrs:    desc.Attributes,
		uniforms: desc.Uniforms,
		spirv:    desc.SPIRV,
	}, nil
}

// ID returns the opaque program handle.
func (p *Program) ID() ProgramID {
	return p.id
}

// Label returns the debug name.
func (p *Program) Label() string {
	return p.label
}

// Bind records a bind of this program into the frame recording.
func (p *Program) Bind(rec *Recording) {
	rec.BindProgram(p.id)
}

// Attributes returns the attributes the compiled shader declares.
func (p *Program) Attributes() AttributeSet {
	return p.attrs
}

// HasAttribute reports whether the compiled shader declares a.
func (p *Program) HasAttribute(a Attribute) bool {
	return p.attrs.Has(a)
}

// UniformBinding returns the binding index of a uniform block by name.
// The second result is false if the shader does not declare the block.
func (p *Program) UniformBinding(name string) (uint32, bool) {
	b, ok := p.uniforms[name]
	return b, ok
}

// Destroyed reports whether Destroy has been called.
func (p *Program) Destroyed() bool {
	return p.destroyed
}

// Destroy releases the backend program. Safe to call more than once.
func (p *Program) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.adapter.DestroyProgram(p.id)
	p.id = InvalidID
}
