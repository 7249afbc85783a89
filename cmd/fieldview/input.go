package main

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"qfield"
)

// moveEpsilon is the UV distance below which a pointer counts as stationary
// for dwell timing.
const moveEpsilon = 0.002

// updatePointer translates the real mouse into bus events: hover with intent
// classification, left click bursts, right click anchor toggles.
func (g *Game) updatePointer() {
	mx, my := ebiten.CursorPosition()
	uv, ok := g.pointerToUV(float64(mx), float64(my))
	if !ok {
		if g.inside {
			g.inside = false
			g.bus.Emit(qfield.HoverLeaveEvent(surfaceID))
		}
		return
	}

	now := time.Now()
	if !g.inside || uvDistance(uv, g.lastUV) > moveEpsilon {
		g.lastMove = now
	}
	g.inside = true
	g.lastUV = uv

	cfg := g.bus.Config()
	intent := qfield.IntentProbe
	dwell := now.Sub(g.lastMove) >= time.Duration(cfg.EtchDwellMs*float64(time.Millisecond))
	if dwell || ebiten.IsKeyPressed(ebiten.KeyShift) {
		intent = qfield.IntentEtch
	}
	g.bus.Emit(qfield.HoverEvent(surfaceID, uv, intent))

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.bus.Emit(qfield.BurstEvent(surfaceID, uv, burstAmplitude, cfg.ProbeRadius*1.5))
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.toggleAnchorAt(uv, cfg)
	}
}

// toggleAnchorAt removes the nearest existing anchor when the pointer is
// within its forcing radius, otherwise places a new one under a fresh key.
func (g *Game) toggleAnchorAt(uv qfield.Vec2, cfg qfield.Config) {
	snap := g.bus.Snapshot()
	for key, a := range snap.Anchors {
		if uvDistance(uv, a.UV) <= cfg.AnchorRadius {
			g.bus.Emit(qfield.LatchEvent(surfaceID, key, a.UV, qfield.LatchToggle, latchStrength))
			return
		}
	}
	g.anchorCount++
	key := qfield.SurfaceID(fmt.Sprintf("%s/anchor-%d", surfaceID, g.anchorCount))
	g.bus.Emit(qfield.LatchEvent(surfaceID, key, uv, qfield.LatchAdd, latchStrength))
}

// pointerToUV runs the full client-to-surface mapping for one pointer sample.
func (g *Game) pointerToUV(x, y float64) (qfield.Vec2, bool) {
	vp := qfield.Viewport{Width: float64(g.res), Height: float64(g.res)}
	ndc, err := qfield.ClientToNDC(x, y, vp)
	if err != nil {
		return qfield.Vec2{}, false
	}
	return qfield.RaycastToSurfaceUV(ndc, g.camera, g.surface)
}

// handleDebugControls services the keyboard shortcuts.
func (g *Game) handleDebugControls() {
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.trail.Clear()
		g.wave.Clear()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		*debugFlag = !*debugFlag
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		g.auto.enabled = !g.auto.enabled
		if g.auto.enabled && g.inside {
			g.inside = false
			g.bus.Emit(qfield.HoverLeaveEvent(surfaceID))
		}
	}
}

// autoPointer wanders a synthetic pointer over the surface, occasionally
// bursting and latching. Used for demos and profile capture.
type autoPointer struct {
	enabled  bool
	rng      *rand.Rand
	pos      qfield.Vec2
	angle    float64
	etching  bool
	anchorID int
}

func (g *Game) updateAutoPointer() {
	a := &g.auto
	if a.rng == nil {
		a.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		a.pos = qfield.Vec2{X: 0.5, Y: 0.5}
		a.angle = a.rng.Float64() * 2 * math.Pi
	}

	const speed = 0.006
	a.angle += (a.rng.Float64() - 0.5) * 0.5
	a.pos.X += float32(math.Cos(a.angle) * speed)
	a.pos.Y += float32(math.Sin(a.angle) * speed)
	if a.pos.X < 0.05 || a.pos.X > 0.95 {
		a.angle = math.Pi - a.angle
		a.pos.X = clampF32(a.pos.X, 0.05, 0.95)
	}
	if a.pos.Y < 0.05 || a.pos.Y > 0.95 {
		a.angle = -a.angle
		a.pos.Y = clampF32(a.pos.Y, 0.05, 0.95)
	}

	if a.rng.Float64() < 0.02 {
		a.etching = !a.etching
	}
	intent := qfield.IntentProbe
	if a.etching {
		intent = qfield.IntentEtch
	}
	g.bus.Emit(qfield.HoverEvent(surfaceID, a.pos, intent))

	cfg := g.bus.Config()
	if a.rng.Float64() < 0.03 {
		g.bus.Emit(qfield.BurstEvent(surfaceID, a.pos, burstAmplitude, cfg.ProbeRadius*1.5))
	}
	if a.rng.Float64() < 0.005 {
		a.anchorID++
		key := qfield.SurfaceID(fmt.Sprintf("%s/auto-anchor-%d", surfaceID, a.anchorID))
		g.bus.Emit(qfield.LatchEvent(surfaceID, key, a.pos, qfield.LatchToggle, latchStrength))
	}
}

func uvDistance(a, b qfield.Vec2) float32 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return float32(math.Sqrt(float64(dx*dx + dy*dy)))
}

func clampF32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
