package qfield

// TrailStep parameterizes one trail integration step. Decay is supplied per
// call rather than fixed so callers can freeze the field (decay 0) or vary
// fade speed frame to frame.
type TrailStep struct {
	// Decay is the fraction of each cell's value lost this step, in [0,1].
	Decay float32

	// Inject enables the radial bump below.
	Inject bool

	// Pos is the UV center of the injected bump.
	Pos Vec2

	// Strength is the bump's peak value added at the center.
	Strength float32

	// Radius is the UV-space radius at which the bump reaches zero.
	Radius float32
}

// TrailAccumulator integrates a decaying scalar field: ink left by sustained
// etch interaction that fades with continuous exponential decay. Values stay
// in [0,1].
type TrailAccumulator struct {
	buf scalarPair
}

// NewTrailAccumulator allocates a trail field at the given square resolution.
// Resolutions below 2 fall back to the default.
func NewTrailAccumulator(resolution int) *TrailAccumulator {
	if resolution < 2 {
		resolution = DefaultResolution
	}
	return &TrailAccumulator{buf: newScalarPair(resolution, resolution)}
}

// Field returns a read-only handle to the most recently written buffer.
func (t *TrailAccumulator) Field() Field {
	return Field{width: t.buf.width, height: t.buf.height, data: t.buf.curr}
}

// Clear resets both buffers to zero.
func (t *TrailAccumulator) Clear() {
	t.buf.zero()
}

// Resize reallocates the buffers at a new square resolution and clears them.
// Existing state is always discarded; there is no resampling onto the new
// grid.
func (t *TrailAccumulator) Resize(resolution int) {
	if resolution < 2 {
		resolution = DefaultResolution
	}
	t.buf = newScalarPair(resolution, resolution)
}

// Step decays every cell by p.Decay and optionally adds a smoothstep-shaped
// bump at p.Pos, then swaps buffers. The pass reads only the current buffer
// and writes only the next one, so a Field handle taken before the step
// keeps observing the pre-step values.
func (t *TrailAccumulator) Step(p TrailStep) {
	decay := clampUnit(p.Decay)
	keep := 1 - decay

	curr := t.buf.curr
	next := t.buf.next
	for i, v := range curr {
		next[i] = v * keep
	}

	if p.Inject && p.Strength > 0 && p.Radius > 0 &&
		finite32(p.Pos.X) && finite32(p.Pos.Y) {
		t.inject(next, p.Pos, p.Strength, p.Radius)
	}

	t.buf.swap()
}

// inject stamps an additive bump with peak strength at the center falling
// smoothly to zero at radius, clamping the result to [0,1].
func (t *TrailAccumulator) inject(dst []float32, pos Vec2, strength, radius float32) {
	w, h := t.buf.width, t.buf.height
	cx, cy := cellCenter(pos, w, h)
	cells := radius * float32(w-1)
	if cells <= 0 {
		return
	}
	x0 := clampCoord(int(cx-cells), 0, w-1)
	x1 := clampCoord(int(cx+cells)+1, 0, w-1)
	y0 := clampCoord(int(cy-cells), 0, h-1)
	y1 := clampCoord(int(cy+cells)+1, 0, h-1)

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
			dst[row+x] = clampUnit(dst[row+x] + strength*weight)
		}
	}
}
