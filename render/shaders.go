package render

import (
	"fmt"
	"strings"

	"github.com/Exiver-Labs/xeokit-sdk/gpucore"
)

// PassKind selects which rendering pass a program is specialized for.
type PassKind int

const (
	// PassDraw is the main color pass.
	PassDraw PassKind = iota
	// PassOcclusion renders silhouettes for occlusion testing and
	// carries no per-vertex color.
	PassOcclusion
)

func (p PassKind) String() string {
	switch p {
	case PassDraw:
		return "draw"
	case PassOcclusion:
		return "occlusion"
	default:
		return fmt.Sprintf("PassKind(%d)", int(p))
	}
}

// Uniform block names and intra-block byte offsets shared between the
// generated shader source and the renderers that feed it. The scene block
// holds the camera and position-decode matrices; the section-planes block
// holds one 32-byte record per plane: a position vec4 whose w component
// is the active flag, followed by a direction vec4.
const (
	uniformScene         = "scene"
	uniformSectionPlanes = "sectionPlanes"

	sceneViewMatOffset   = 0
	sceneProjMatOffset   = 64
	sceneDecodeMatOffset = 128

	sectionPlaneStride       = 32
	sectionPlaneActiveOffset = 12
	sectionPlaneDirOffset    = 16
)

const (
	bindingScene         = 0
	bindingSectionPlanes = 1
)

// ProgramConfig identifies one shader specialization. Programs are
// generated per pass kind, per section-plane count and per entity-offset
// support, so two renderers with identical configuration share a program.
type ProgramConfig struct {
	Pass             PassKind
	NumSectionPlanes int
	EntityOffsets    bool
}

// Attributes returns the vertex attribute set the generated program
// declares.
func (c ProgramConfig) Attributes() gpucore.AttributeSet {
	set := gpucore.NewAttributeSet(gpucore.AttrPosition, gpucore.AttrFlags)
	if c.Pass == PassDraw {
		set = set.With(gpucore.AttrColor)
	}
	if c.NumSectionPlanes > 0 {
		set = set.With(gpucore.AttrFlags2)
	}
	if c.EntityOffsets {
		set = set.With(gpucore.AttrOffset)
	}
	return set
}

// Uniforms returns the uniform block name to binding index mapping for
// the generated program.
func (c ProgramConfig) Uniforms() map[string]uint32 {
	u := map[string]uint32{uniformScene: bindingScene}
	if c.NumSectionPlanes > 0 {
		u[uniformSectionPlanes] = bindingSectionPlanes
	}
	return u
}

// Label returns a stable human-readable name for the specialization,
// used as the program label in captures and logs.
func (c ProgramConfig) Label() string {
	label := fmt.Sprintf("batching-%s-planes%d", c.Pass, c.NumSectionPlanes)
	if c.EntityOffsets {
		label += "-offsets"
	}
	return label
}

// GenerateSource builds the WGSL source for the specialization. Section
// plane tests are unrolled per plane so the plane count is baked into the
// program rather than branched on at draw time.
func (c ProgramConfig) GenerateSource() string {
	var b strings.Builder
	c.writeUniforms(&b)
	c.writeVertexIO(&b)
	c.writeVertexStage(&b)
	c.writeFragmentStage(&b)
	return b.String()
}

func (c ProgramConfig) writeUniforms(b *strings.Builder) {
	b.WriteString("struct SceneUniforms {\n")
	b.WriteString("    viewMatrix: mat4x4<f32>,\n")
	b.WriteString("    projMatrix: mat4x4<f32>,\n")
	b.WriteString("    positionsDecodeMatrix: mat4x4<f32>,\n")
	b.WriteString("}\n\n")
	b.WriteString("@group(0) @binding(0) var<uniform> scene: SceneUniforms;\n\n")

	if c.NumSectionPlanes == 0 {
		return
	}
	b.WriteString("struct SectionPlaneUniforms {\n")
	for i := 0; i < c.NumSectionPlanes; i++ {
		// posActive.w carries the active flag for the plane.
		fmt.Fprintf(b, "    posActive%d: vec4<f32>,\n", i)
		fmt.Fprintf(b, "    dir%d: vec4<f32>,\n", i)
	}
	b.WriteString("}\n\n")
	b.WriteString("@group(0) @binding(1) var<uniform> sectionPlanes: SectionPlaneUniforms;\n\n")
}

func (c ProgramConfig) writeVertexIO(b *strings.Builder) {
	b.WriteString("struct VertexInput {\n")
	fmt.Fprintf(b, "    @location(%d) position: vec4<f32>,\n", gpucore.AttrPosition)
	if c.Pass == PassDraw {
		fmt.Fprintf(b, "    @location(%d) color: vec4<f32>,\n", gpucore.AttrColor)
	}
	fmt.Fprintf(b, "    @location(%d) flags: vec4<f32>,\n", gpucore.AttrFlags)
	if c.NumSectionPlanes > 0 {
		fmt.Fprintf(b, "    @location(%d) flags2: vec4<f32>,\n", gpucore.AttrFlags2)
	}
	if c.EntityOffsets {
		fmt.Fprintf(b, "    @location(%d) offset: vec3<f32>,\n", gpucore.AttrOffset)
	}
	b.WriteString("}\n\n")

	b.WriteString("struct VertexOutput {\n")
	b.WriteString("    @builtin(position) clipPosition: vec4<f32>,\n")
	if c.Pass == PassDraw {
		b.WriteString("    @location(0) color: vec4<f32>,\n")
	}
	if c.NumSectionPlanes > 0 {
		b.WriteString("    @location(1) worldPosition: vec3<f32>,\n")
		b.WriteString("    @location(2) clippable: f32,\n")
	}
	b.WriteString("}\n\n")
}

func (c ProgramConfig) writeVertexStage(b *strings.Builder) {
	b.WriteString("@vertex\n")
	b.WriteString("fn vs_main(in: VertexInput) -> VertexOutput {\n")
	b.WriteString("    var out: VertexOutput;\n")
	b.WriteString("    var worldPosition = (scene.positionsDecodeMatrix * vec4<f32>(in.position.xyz, 1.0)).xyz;\n")
	if c.EntityOffsets {
		b.WriteString("    worldPosition = worldPosition + in.offset;\n")
	}
	b.WriteString("    let viewPosition = scene.viewMatrix * vec4<f32>(worldPosition, 1.0);\n")
	b.WriteString("    out.clipPosition = scene.projMatrix * viewPosition;\n")
	// Vertices whose entity is not drawn collapse outside clip space.
	b.WriteString("    if (in.flags.x < 0.5) {\n")
	b.WriteString("        out.clipPosition = vec4<f32>(2.0, 2.0, 2.0, 1.0);\n")
	b.WriteString("    }\n")
	if c.Pass == PassDraw {
		b.WriteString("    out.color = in.color;\n")
	}
	if c.NumSectionPlanes > 0 {
		b.WriteString("    out.worldPosition = worldPosition;\n")
		b.WriteString("    out.clippable = in.flags2.x;\n")
	}
	b.WriteString("    return out;\n")
	b.WriteString("}\n\n")
}

func (c ProgramConfig) writeFragmentStage(b *strings.Builder) {
	b.WriteString("@fragment\n")
	b.WriteString("fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {\n")
	for i := 0; i < c.NumSectionPlanes; i++ {
		fmt.Fprintf(b, "    if (in.clippable > 0.5 && sectionPlanes.posActive%d.w > 0.5) {\n", i)
		fmt.Fprintf(b, "        if (dot(in.worldPosition - sectionPlanes.posActive%d.xyz, sectionPlanes.dir%d.xyz) < 0.0) {\n", i, i)
		b.WriteString("            discard;\n")
		b.WriteString("        }\n")
		b.WriteString("    }\n")
	}
	if c.Pass == PassDraw {
		b.WriteString("    return in.color;\n")
	} else {
		b.WriteString("    return vec4<f32>(1.0, 1.0, 1.0, 1.0);\n")
	}
	b.WriteString("}\n")
}
