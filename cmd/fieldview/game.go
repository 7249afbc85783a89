package main

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"qfield"
)

// surfaceID names the single interactive surface the viewer drives.
const surfaceID = "fieldview"

const (
	defaultTPS       = 60.0
	burstAmplitude   = 0.9
	latchStrength    = 0.6
	etchInkStrength  = 0.35
	pulseLow         = 0.35
	pulseHigh        = 1.0
	pulseDurationSec = 0.9
	pgoRecordSeconds = 15
)

// Game wires the bus and both field integrators to ebiten: Update is the
// simulation tick and the input instrumentation layer, Draw is the
// reference renderer.
type Game struct {
	bus   *qfield.FieldBus
	trail *qfield.TrailAccumulator
	wave  *qfield.WaveFieldSolver
	res   int

	camera  qfield.Camera
	surface qfield.Surface

	simTimeMs float64
	lastSeq   uint64

	inside      bool
	lastUV      qfield.Vec2
	lastMove    time.Time
	anchorCount int

	// pulse eases the hover marker glow back and forth.
	pulse   *gween.Tween
	pulseUp bool
	glow    float32

	auto autoPointer

	pgoStop     func()
	pgoDeadline time.Time

	pixels []byte
}

// newGame constructs the viewer around a configured bus.
func newGame(bus *qfield.FieldBus) *Game {
	cfg := bus.Config()
	res := cfg.Resolution

	// Camera distance chosen so the full-screen NDC square maps exactly
	// onto the unit surface.
	fov := math.Pi / 3
	dist := 0.5 / math.Tan(fov/2)

	g := &Game{
		bus:   bus,
		trail: qfield.NewTrailAccumulator(res),
		wave:  qfield.NewWaveFieldSolver(res),
		res:   res,
		camera: qfield.Camera{
			Position: qfield.Vec3{X: 0.5, Y: 0.5, Z: dist},
			Forward:  qfield.Vec3{Z: -1},
			Right:    qfield.Vec3{X: 1},
			Up:       qfield.Vec3{Y: 1},
			FOV:      fov,
			Aspect:   1,
		},
		surface: qfield.Surface{
			Origin: qfield.Vec3{},
			SpanU:  qfield.Vec3{X: 1},
			SpanV:  qfield.Vec3{Y: 1},
		},
		pulse:   gween.New(pulseLow, pulseHigh, pulseDurationSec, ease.InOutQuad),
		pulseUp: true,
		glow:    pulseLow,
		pixels:  make([]byte, res*res*4),
	}
	g.auto.enabled = *autoPointerFlag
	return g
}

// Update advances one frame: instrumentation, bus tick, and both field
// integrations.
func (g *Game) Update() error {
	tps := ebiten.ActualTPS()
	if tps < 1 {
		tps = defaultTPS
	}
	dtMs := 1000 / tps

	g.updatePGORecording()
	g.handleDebugControls()

	if g.auto.enabled {
		g.updateAutoPointer()
	} else {
		g.updatePointer()
	}

	g.bus.Tick(dtMs, time.Now())
	g.integrate(dtMs)
	g.updatePulse(dtMs)
	return nil
}

// integrate feeds the latest bus snapshot into both solvers and steps them.
func (g *Game) integrate(dtMs float64) {
	snap := g.bus.Snapshot()
	cfg := g.bus.Config()

	// New impulses become one-shot wave injections exactly once.
	for _, imp := range snap.Impulses {
		if imp.Seq > g.lastSeq {
			g.lastSeq = imp.Seq
			g.wave.AddImpulse(imp.UV, imp.Amplitude, imp.Radius)
		}
	}

	step := qfield.TrailStep{Decay: cfg.TrailDecay}
	if snap.Hover.Active && snap.Hover.Intent == qfield.IntentEtch {
		step.Inject = true
		step.Pos = snap.Hover.UV
		step.Strength = etchInkStrength
		step.Radius = cfg.ProbeRadius
	}
	g.trail.Step(step)

	anchors := make([]qfield.WaveAnchor, 0, len(snap.Anchors))
	for _, a := range snap.Anchors {
		anchors = append(anchors, qfield.WaveAnchor{UV: a.UV, Strength: a.Strength, Phase: a.Phase})
	}
	g.wave.Step(qfield.WaveStep{
		TimeMs:       g.simTimeMs,
		WaveSpeed:    cfg.WaveSpeed,
		Damping:      cfg.WaveDamping,
		Frequency:    cfg.AnchorFrequency,
		AnchorRadius: cfg.AnchorRadius,
		Anchors:      anchors,
	})
	g.simTimeMs += dtMs
}

// updatePulse advances the hover glow tween, reversing at the ends.
func (g *Game) updatePulse(dtMs float64) {
	v, done := g.pulse.Update(float32(dtMs / 1000))
	g.glow = v
	if done {
		g.pulseUp = !g.pulseUp
		if g.pulseUp {
			g.pulse = gween.New(pulseLow, pulseHigh, pulseDurationSec, ease.InOutQuad)
		} else {
			g.pulse = gween.New(pulseHigh, pulseLow, pulseDurationSec, ease.InOutQuad)
		}
	}
}

// updatePGORecording starts and stops the scripted profile capture.
func (g *Game) updatePGORecording() {
	if !*recordDefaultPGO {
		return
	}
	if g.pgoStop == nil {
		stop, err := startCPUProfile("default.pgo")
		if err != nil {
			log.Printf("fieldview: profile capture failed: %v", err)
			*recordDefaultPGO = false
			return
		}
		g.pgoStop = stop
		g.pgoDeadline = time.Now().Add(pgoRecordSeconds * time.Second)
		g.auto.enabled = true
		log.Printf("fieldview: recording default.pgo for %ds", pgoRecordSeconds)
		return
	}
	if time.Now().After(g.pgoDeadline) {
		g.pgoStop()
		g.pgoStop = nil
		*recordDefaultPGO = false
		g.auto.enabled = *autoPointerFlag
		log.Printf("fieldview: default.pgo written")
	}
}

// debugSummary formats the overlay text.
func (g *Game) debugSummary() string {
	snap := g.bus.Snapshot()
	counters := g.bus.Counters()
	return fmt.Sprintf(
		"FPS: %.1f  TPS: %.1f\nimpulses: %d  anchors: %d  version: %d\nevicted: %d/%d  dropped: %d",
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		len(snap.Impulses), len(snap.Anchors), snap.Version,
		counters.ImpulseEvictions, counters.AnchorEvictions, counters.DroppedEvents,
	)
}
