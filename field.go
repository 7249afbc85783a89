package qfield

// Field is a read-only view of one scalar grid buffer. Renderers sample it;
// only the owning integrator ever writes the backing array.
type Field struct {
	width, height int
	data          []float32
}

// Width returns the grid width in cells.
func (f Field) Width() int { return f.width }

// Height returns the grid height in cells.
func (f Field) Height() int { return f.height }

// At returns the value at cell (x, y), clamping out-of-range coordinates to
// the edge.
func (f Field) At(x, y int) float32 {
	if len(f.data) == 0 {
		return 0
	}
	x = clampCoord(x, 0, f.width-1)
	y = clampCoord(y, 0, f.height-1)
	return f.data[y*f.width+x]
}

// Sample bilinearly interpolates the field at a UV coordinate.
func (f Field) Sample(uv Vec2) float32 {
	if len(f.data) == 0 {
		return 0
	}
	fx, fy := cellCenter(Vec2{X: clampUnit(uv.X), Y: clampUnit(uv.Y)}, f.width, f.height)
	x0 := int(fx)
	y0 := int(fy)
	x1 := clampCoord(x0+1, 0, f.width-1)
	y1 := clampCoord(y0+1, 0, f.height-1)
	tx := fx - float32(x0)
	ty := fy - float32(y0)
	top := f.data[y1*f.width+x0]*(1-tx) + f.data[y1*f.width+x1]*tx
	bottom := f.data[y0*f.width+x0]*(1-tx) + f.data[y0*f.width+x1]*tx
	return bottom*(1-ty) + top*ty
}

// Raw exposes the backing array for per-pixel renderers that cannot afford a
// call per cell. The slice aliases live solver state between steps and must
// be treated as read-only.
func (f Field) Raw() []float32 { return f.data }

// scalarPair is the double buffer used by decay-style integration: each step
// reads curr and writes next, then the two swap. Neither buffer is ever read
// and written in the same pass.
type scalarPair struct {
	width, height int
	curr          []float32
	next          []float32
}

func newScalarPair(width, height int) scalarPair {
	return scalarPair{
		width: width, height: height,
		curr: make([]float32, width*height),
		next: make([]float32, width*height),
	}
}

// swap makes the freshly written buffer current.
func (p *scalarPair) swap() {
	p.curr, p.next = p.next, p.curr
}

func (p *scalarPair) zero() {
	clear(p.curr)
	clear(p.next)
}

// scalarTriple stores the three buffers the finite-difference wave solver
// rotates: previous, current, and the one being written.
type scalarTriple struct {
	width, height int
	curr          []float32
	prev          []float32
	next          []float32
}

func newScalarTriple(width, height int) scalarTriple {
	return scalarTriple{
		width: width, height: height,
		curr: make([]float32, width*height),
		prev: make([]float32, width*height),
		next: make([]float32, width*height),
	}
}

// rotate advances one time level: next becomes current, current becomes
// previous, and the stale previous buffer is reused for the next write.
func (t *scalarTriple) rotate() {
	t.prev, t.curr, t.next = t.curr, t.next, t.prev
}

func (t *scalarTriple) zero() {
	clear(t.curr)
	clear(t.prev)
	clear(t.next)
}

// applyBoundaries writes soft-reflecting edges into the next buffer: each
// border cell takes the negated, attenuated value of its interior neighbor,
// which keeps edge ringing from building up.
func (t *scalarTriple) applyBoundaries(reflect float32) {
	lastRow := t.height - 1
	lastCol := t.width - 1
	for x := 0; x < t.width; x++ {
		top := t.next[1*t.width+x]
		bottom := t.next[(lastRow-1)*t.width+x]
		t.next[0*t.width+x] = -top * reflect
		t.next[lastRow*t.width+x] = -bottom * reflect
	}
	for y := 1; y < lastRow; y++ {
		left := t.next[y*t.width+1]
		right := t.next[y*t.width+lastCol-1]
		t.next[y*t.width+0] = -left * reflect
		t.next[y*t.width+lastCol] = -right * reflect
	}
}
