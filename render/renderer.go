package render

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Exiver-Labs/xeokit-sdk/batching"
	"github.com/Exiver-Labs/xeokit-sdk/gpucore"
	"github.com/Exiver-Labs/xeokit-sdk/rtc"
	"github.com/Exiver-Labs/xeokit-sdk/scene"
)

// Status describes a renderer's lifecycle state.
type Status int

const (
	// StatusUnallocated means no program has been obtained yet; the
	// next draw allocates one lazily.
	StatusUnallocated Status = iota
	// StatusReady means the renderer holds a usable program.
	StatusReady
	// StatusFailed means program creation failed; draws are silent
	// no-ops until Invalidate is called.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusUnallocated:
		return "unallocated"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// LayerRenderer draws one batching layer per call, recording commands
// into the frame context. Implementations hold a program specialized for
// the section-plane state observed at allocation time; Valid reports
// whether that specialization still matches the live state.
type LayerRenderer interface {
	// DrawLayer records the commands to draw the layer. flags carries
	// the per-layer section-plane activity for the owning model; a nil
	// flags falls back to each plane's own active state.
	DrawLayer(fc *FrameContext, layer *batching.Layer, flags *scene.RenderFlags)

	// Valid reports whether the renderer's program still matches the
	// section-plane state it was allocated against. A renderer that
	// has not allocated yet, or whose allocation failed, is valid: it
	// needs no reallocation.
	Valid() bool

	// Invalidate drops the program reference so the next draw obtains
	// a fresh one. It also clears a failed status, allowing a retry.
	Invalidate()

	// ContextRestored drops the program reference after GPU context
	// loss without touching the dead backend handle.
	ContextRestored()

	// Destroy releases the renderer. Programs belong to the shared
	// cache and are not destroyed here.
	Destroy()

	// Err returns the program creation error when the renderer is in
	// the failed state, nil otherwise.
	Err() error
}

// layerDrawer implements the draw orchestration shared by the color and
// occlusion passes. The pass kind only changes which program
// specialization is requested and which vertex buffers are bound.
type layerDrawer struct {
	pass          PassKind
	cache         *ProgramCache
	planes        *scene.SectionPlanesState
	entityOffsets bool

	program    *gpucore.Program
	planesHash uint64
	status     Status
	err        error

	scratch [64]byte
}

func newLayerDrawer(pass PassKind, cache *ProgramCache, planes *scene.SectionPlanesState, entityOffsets bool) *layerDrawer {
	return &layerDrawer{
		pass:          pass,
		cache:         cache,
		planes:        planes,
		entityOffsets: entityOffsets,
	}
}

func (d *layerDrawer) Status() Status { return d.status }

func (d *layerDrawer) Err() error { return d.err }

// Valid reports whether the compiled program still matches the live
// section-plane state. Unallocated and failed renderers report true:
// they hold no specialization that could go stale, and the next draw
// allocates against the current state anyway.
func (d *layerDrawer) Valid() bool {
	if d.status != StatusReady {
		return true
	}
	return d.planesHash == d.planes.Hash()
}

func (d *layerDrawer) Invalidate() {
	d.program = nil
	d.err = nil
	d.status = StatusUnallocated
}

func (d *layerDrawer) ContextRestored() {
	d.program = nil
	d.err = nil
	d.status = StatusUnallocated
}

func (d *layerDrawer) Destroy() {
	d.program = nil
	d.err = nil
	d.status = StatusUnallocated
}

func (d *layerDrawer) allocate() error {
	cfg := ProgramConfig{
		Pass:             d.pass,
		NumSectionPlanes: d.planes.Count(),
		EntityOffsets:    d.entityOffsets,
	}
	prog, err := d.cache.GetOrCreate(cfg)
	if err != nil {
		return err
	}
	d.program = prog
	d.planesHash = d.planes.Hash()
	d.status = StatusReady
	return nil
}

// DrawLayer records one indexed draw for the layer.
//
// The program bind is elided when the previous draw used the same
// program. Section-plane uniforms are reloaded only when the program was
// just bound or the layer's relative-to-center origin differs from the
// previous draw; consecutive layers sharing both reuse the uniforms as
// written.
func (d *layerDrawer) DrawLayer(fc *FrameContext, layer *batching.Layer, flags *scene.RenderFlags) {
	if d.status == StatusFailed {
		return
	}
	if layer == nil || layer.Destroyed() || layer.IndexCount() == 0 {
		return
	}
	if d.program == nil {
		if err := d.allocate(); err != nil {
			d.status = StatusFailed
			d.err = err
			logger().Warn("pass disabled, program creation failed",
				"pass", d.pass, "err", err)
			return
		}
	}

	prog := d.program
	rec := fc.Recording

	justBound := false
	if fc.lastProgramID != prog.ID() {
		prog.Bind(rec)
		fc.lastProgramID = prog.ID()
		fc.Stats.ProgramBinds++
		justBound = true
		d.writeMat64(rec, sceneProjMatOffset, fc.ProjMatrix)
	} else {
		fc.Stats.ProgramBindsElided++
	}

	view := fc.ViewMatrix
	var center mgl64.Vec3
	hasCenter := false
	if c := layer.RTCCenter(); c != nil {
		center = *c
		hasCenter = true
		view = rtc.ViewMat(view, center)
	}
	d.writeMat64(rec, sceneViewMatOffset, view)

	m := layer.DecodeMatrix()
	d.writeMat32(rec, sceneDecodeMatOffset, m[:])

	if d.planes.Count() > 0 {
		if justBound || !fc.sameCenter(hasCenter, center) {
			d.loadSectionPlanes(rec, layer, flags, hasCenter, center)
			fc.Stats.SectionPlaneReloads++
		} else {
			fc.Stats.SectionPlaneReloadsElided++
		}
	}
	fc.setLastCenter(hasCenter, center)

	rec.SetVertexBuffer(uint32(gpucore.AttrPosition), layer.PositionsBuf())
	if prog.HasAttribute(gpucore.AttrColor) {
		rec.SetVertexBuffer(uint32(gpucore.AttrColor), layer.ColorsBuf())
	}
	rec.SetVertexBuffer(uint32(gpucore.AttrFlags), layer.FlagsBuf())
	if prog.HasAttribute(gpucore.AttrFlags2) {
		rec.SetVertexBuffer(uint32(gpucore.AttrFlags2), layer.Flags2Buf())
	}
	if prog.HasAttribute(gpucore.AttrOffset) && layer.HasOffsets() {
		rec.SetVertexBuffer(uint32(gpucore.AttrOffset), layer.OffsetsBuf())
	}
	rec.SetIndexBuffer(layer.IndicesBuf(), layer.IndexFormat())
	rec.DrawIndexed(layer.IndexCount(), 0, layer.Topology())
	fc.Stats.DrawCalls++
}

// loadSectionPlanes writes the full section-plane uniform block. Every
// plane gets its active flag written; position and direction are written
// only for active planes, translated into the layer's relative space
// when the layer carries an origin.
func (d *layerDrawer) loadSectionPlanes(rec *gpucore.Recording, layer *batching.Layer, flags *scene.RenderFlags, hasCenter bool, center mgl64.Vec3) {
	for i, p := range d.planes.Planes() {
		base := uint32(i * sectionPlaneStride)

		// Flags rebuilt before the plane (or layer) existed may be
		// smaller than the live state; fall back to the plane's own
		// toggle rather than index past them.
		active := p.Active
		if flags != nil && i < flags.NumSectionPlanes() && layer.LayerIndex() < flags.NumLayers() {
			active = flags.SectionPlaneActive(layer.LayerIndex(), i)
		}
		var activeVal float32
		if active {
			activeVal = 1
		}
		binary.LittleEndian.PutUint32(d.scratch[:4], math.Float32bits(activeVal))
		rec.WriteUniform(d.program.ID(), bindingSectionPlanes, base+sectionPlaneActiveOffset, d.scratch[:4])

		if !active {
			continue
		}
		pos := p.Pos
		if hasCenter {
			rtc.PlaneRTCPos(p.Dist(), p.Dir, center, &pos)
		}
		d.writeVec3(rec, bindingSectionPlanes, base, pos)
		d.writeVec3(rec, bindingSectionPlanes, base+sectionPlaneDirOffset, p.Dir)
	}
}

func (d *layerDrawer) writeVec3(rec *gpucore.Recording, binding, offset uint32, v mgl64.Vec3) {
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(d.scratch[i*4:], math.Float32bits(float32(v[i])))
	}
	rec.WriteUniform(d.program.ID(), binding, offset, d.scratch[:12])
}

func (d *layerDrawer) writeMat64(rec *gpucore.Recording, offset uint32, m mgl64.Mat4) {
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(d.scratch[i*4:], math.Float32bits(float32(m[i])))
	}
	rec.WriteUniform(d.program.ID(), bindingScene, offset, d.scratch[:64])
}

func (d *layerDrawer) writeMat32(rec *gpucore.Recording, offset uint32, m []float32) {
	for i, v := range m {
		binary.LittleEndian.PutUint32(d.scratch[i*4:], math.Float32bits(v))
	}
	rec.WriteUniform(d.program.ID(), bindingScene, offset, d.scratch[:len(m)*4])
}
