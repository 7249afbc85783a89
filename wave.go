package qfield

import (
	"log"
	"math"
	"runtime"
)

// boundaryReflect attenuates the soft-reflecting boundary treatment so edge
// energy bleeds out instead of ringing back at full strength.
const boundaryReflect = 0.90

// parallelRowThreshold is the cell count above which steps shard rows across
// the worker pool; smaller grids step faster single-threaded.
const parallelRowThreshold = 128 * 128

// WaveAnchor is one oscillating forcing source for a step, taken from the
// bus snapshot's anchor map.
type WaveAnchor struct {
	UV       Vec2
	Strength float32
	Phase    float32
}

// WaveStep parameterizes one finite-difference step.
type WaveStep struct {
	// TimeMs is the simulation clock driving anchor oscillation.
	TimeMs float64

	// WaveSpeed is the c² coefficient; the scheme is conditionally stable,
	// so values above 0.5 on a unit grid outrun the CFL bound. The per-cell
	// clamp keeps even unstable parameters bounded.
	WaveSpeed float32

	// Damping bleeds velocity each step.
	Damping float32

	// Frequency is the anchor oscillation rate in radians per second.
	Frequency float32

	// AnchorRadius is the UV-space falloff radius of anchor forcing.
	AnchorRadius float32

	Anchors []WaveAnchor
}

type waveImpulse struct {
	pos      Vec2
	strength float32
	radius   float32
}

// WaveFieldSolver evolves a damped 2D wave equation over a triple-buffered
// grid: discrete impulse injection, continuous anchor forcing, 4-neighbor
// Laplacian update, per-cell clamp to [-1,1]. Buffers rotate every step and
// are never read and written in the same pass.
type WaveFieldSolver struct {
	buf     scalarTriple
	pending []waveImpulse
	pool    *rowPool
	gpu     *gpuWaveSolver
}

// NewWaveFieldSolver allocates a solver at the given square resolution.
// Resolutions below 4 fall back to the default.
func NewWaveFieldSolver(resolution int) *WaveFieldSolver {
	if resolution < 4 {
		resolution = DefaultResolution
	}
	return &WaveFieldSolver{buf: newScalarTriple(resolution, resolution)}
}

// Field returns a read-only handle to the current height buffer.
func (s *WaveFieldSolver) Field() Field {
	return Field{width: s.buf.width, height: s.buf.height, data: s.buf.curr}
}

// PrevField returns the previous height buffer; height minus previous height
// is the renderer's velocity proxy.
func (s *WaveFieldSolver) PrevField() Field {
	return Field{width: s.buf.width, height: s.buf.height, data: s.buf.prev}
}

// AddImpulse queues a one-shot injection applied at the start of the next
// step. Non-finite or non-positive parameters are ignored.
func (s *WaveFieldSolver) AddImpulse(pos Vec2, strength, radius float32) {
	if !finite32(pos.X) || !finite32(pos.Y) || !finite32(strength) ||
		!finite32(radius) || radius <= 0 || strength == 0 {
		return
	}
	s.pending = append(s.pending, waveImpulse{pos: pos, strength: strength, radius: radius})
}

// Clear resets all three buffers to zero height. Pending impulses are kept;
// a reset field can still be driven by queued interaction.
func (s *WaveFieldSolver) Clear() {
	s.buf.zero()
}

// Resize reallocates all three buffers at a new square resolution and
// clears them. Simulation state is always discarded; old heights are never
// resampled onto the new grid.
func (s *WaveFieldSolver) Resize(resolution int) {
	if resolution < 4 {
		resolution = DefaultResolution
	}
	s.buf = newScalarTriple(resolution, resolution)
	if s.gpu != nil {
		s.gpu.close()
		s.gpu = nil
		if err := s.EnableGPU(); err != nil {
			log.Printf("wave: gpu disabled after resize: %v", err)
		}
	}
}

// Close stops the worker pool and releases any GPU resources. The solver
// must not be stepped afterwards.
func (s *WaveFieldSolver) Close() {
	if s.pool != nil {
		s.pool.close()
		s.pool = nil
	}
	if s.gpu != nil {
		s.gpu.close()
		s.gpu = nil
	}
}

// EnableGPU offloads the finite-difference update to an OpenCL device.
// Available only in builds with the opencl tag; on failure the solver keeps
// stepping on the CPU.
func (s *WaveFieldSolver) EnableGPU() error {
	gpu, err := newGPUWaveSolver(s.buf.width, s.buf.height)
	if err != nil {
		return err
	}
	log.Printf("wave: OpenCL solver enabled (device: %s)", gpu.deviceName())
	s.gpu = gpu
	return nil
}

// Step applies queued impulses and anchor forcing to the current buffer,
// runs the damped finite-difference update into the next buffer, applies
// boundary treatment, and rotates.
func (s *WaveFieldSolver) Step(p WaveStep) {
	s.applyImpulses()
	s.applyAnchors(p)

	if s.gpu != nil {
		if err := s.gpu.step(&s.buf, p.WaveSpeed, p.Damping, boundaryReflect); err != nil {
			log.Printf("wave: gpu step failed, falling back to cpu: %v", err)
			s.gpu.close()
			s.gpu = nil
		} else {
			s.buf.rotate()
			return
		}
	}

	if s.buf.width*s.buf.height >= parallelRowThreshold && runtime.NumCPU() > 1 {
		if s.pool == nil {
			s.pool = newRowPool(runtime.NumCPU())
		}
		s.pool.dispatch(s.buf.height, func(y int) {
			s.stepRow(y, p.WaveSpeed, p.Damping)
		})
	} else {
		for y := 1; y < s.buf.height-1; y++ {
			s.stepRow(y, p.WaveSpeed, p.Damping)
		}
	}

	s.buf.applyBoundaries(boundaryReflect)
	s.buf.rotate()
}

// applyImpulses stamps and drops all queued one-shot injections.
func (s *WaveFieldSolver) applyImpulses() {
	for _, imp := range s.pending {
		s.stamp(imp.pos, imp.strength, imp.radius)
	}
	s.pending = s.pending[:0]
}

// applyAnchors adds the standing-wave forcing terms for this step.
func (s *WaveFieldSolver) applyAnchors(p WaveStep) {
	if len(p.Anchors) == 0 || p.AnchorRadius <= 0 {
		return
	}
	t := p.TimeMs / 1000
	for _, a := range p.Anchors {
		if a.Strength == 0 {
			continue
		}
		force := float32(math.Sin(t*float64(p.Frequency)+float64(a.Phase))) * a.Strength
		s.stamp(a.UV, force, p.AnchorRadius)
	}
}

// stamp adds a smoothstep-falloff disc to the current buffer, clamped to the
// stability range.
func (s *WaveFieldSolver) stamp(pos Vec2, strength, radius float32) {
	w, h := s.buf.width, s.buf.height
	cx, cy := cellCenter(pos, w, h)
	cells := radius * float32(w-1)
	if cells <= 0 {
		return
	}
	x0 := clampCoord(int(cx-cells), 1, w-2)
	x1 := clampCoord(int(cx+cells)+1, 1, w-2)
	y0 := clampCoord(int(cy-cells), 1, h-2)
	y1 := clampCoord(int(cy+cells)+1, 1, h-2)

	curr := s.buf.curr
	for y := y0; y <= y1; y++ {
		dy := float32(y) - cy
		row := y * w
		for x := x0; x <= x1; x++ {
			dx := float32(x) - cx
			d := dx*dx + dy*dy
			if d > cells*cells {
				continue
			}
			weight := smoothFalloff(sqrt32(d) / cells)
			curr[row+x] = clampSigned(curr[row+x] + strength*weight)
		}
	}
}

// stepRow runs the damped wave update for one interior row. The inner loop
// is unrolled four wide; rows only read curr/prev and write next, so they
// shard freely across workers.
func (s *WaveFieldSolver) stepRow(y int, ws, damp float32) {
	w := s.buf.width
	base := y * w
	center := s.buf.curr[base : base+w]
	prev := s.buf.prev[base : base+w]
	top := s.buf.curr[base-w : base]
	bottom := s.buf.curr[base+w : base+2*w]
	next := s.buf.next[base : base+w]

	end := w - 2
	x := 1
	for ; x+3 <= end; x += 4 {
		c0 := center[x]
		lap0 := center[x-1] + center[x+1] + top[x] + bottom[x] - 4*c0
		next[x] = clampSigned(2*c0 - prev[x] + ws*lap0 - damp*(c0-prev[x]))

		x1 := x + 1
		c1 := center[x1]
		lap1 := center[x1-1] + center[x1+1] + top[x1] + bottom[x1] - 4*c1
		next[x1] = clampSigned(2*c1 - prev[x1] + ws*lap1 - damp*(c1-prev[x1]))

		x2 := x + 2
		c2 := center[x2]
		lap2 := center[x2-1] + center[x2+1] + top[x2] + bottom[x2] - 4*c2
		next[x2] = clampSigned(2*c2 - prev[x2] + ws*lap2 - damp*(c2-prev[x2]))

		x3 := x + 3
		c3 := center[x3]
		lap3 := center[x3-1] + center[x3+1] + top[x3] + bottom[x3] - 4*c3
		next[x3] = clampSigned(2*c3 - prev[x3] + ws*lap3 - damp*(c3-prev[x3]))
	}
	for ; x <= end; x++ {
		c := center[x]
		lap := center[x-1] + center[x+1] + top[x] + bottom[x] - 4*c
		next[x] = clampSigned(2*c - prev[x] + ws*lap - damp*(c-prev[x]))
	}
}
