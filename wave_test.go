package qfield

import (
	"math"
	"testing"
)

const waveTestRes = 65

func defaultWaveStep() WaveStep {
	return WaveStep{WaveSpeed: DefaultWaveSpeed, Damping: DefaultWaveDamping}
}

func TestWaveImpulseCreatesDisturbance(t *testing.T) {
	s := NewWaveFieldSolver(waveTestRes)
	defer s.Close()

	s.AddImpulse(Vec2{X: 0.5, Y: 0.5}, 0.8, 0.1)
	s.Step(defaultWaveStep())

	if got := s.Field().At(32, 32); got == 0 {
		t.Error("center still zero after impulse step")
	}
	// The stamped height becomes the previous buffer after rotation.
	if got := s.PrevField().At(32, 32); got != 0.8 {
		t.Errorf("previous buffer center = %v, want the stamped 0.8", got)
	}
}

func TestWavePropagation(t *testing.T) {
	s := NewWaveFieldSolver(waveTestRes)
	defer s.Close()

	s.AddImpulse(Vec2{X: 0.5, Y: 0.5}, 0.8, 0.05)
	for i := 0; i < 40; i++ {
		s.Step(defaultWaveStep())
	}

	// The ring should have traveled well past the injection radius.
	f := s.Field()
	activated := 0
	for y := 0; y < waveTestRes; y++ {
		for x := 0; x < waveTestRes; x++ {
			dx, dy := x-32, y-32
			if dx*dx+dy*dy < 10*10 {
				continue
			}
			if v := f.At(x, y); v > 1e-4 || v < -1e-4 {
				activated++
			}
		}
	}
	if activated == 0 {
		t.Error("no energy beyond radius 10 after 40 steps")
	}
}

func TestWaveBoundedUnderUnstableParameters(t *testing.T) {
	s := NewWaveFieldSolver(waveTestRes)
	defer s.Close()

	// Wave speed far above the CFL bound plus max-strength injection at
	// the same point every step for 10k steps; the per-cell clamp must
	// keep every value in range anyway.
	step := WaveStep{WaveSpeed: 1.5, Damping: 0}
	for i := 0; i < 10000; i++ {
		s.AddImpulse(Vec2{X: 0.5, Y: 0.5}, 1, 0.15)
		s.Step(step)
	}

	for i, v := range s.Field().Raw() {
		if v < -1 || v > 1 {
			t.Fatalf("cell %d = %v outside [-1,1]", i, v)
		}
	}
}

func TestWaveAnchorForcing(t *testing.T) {
	s := NewWaveFieldSolver(waveTestRes)
	defer s.Close()

	step := defaultWaveStep()
	step.TimeMs = 250
	step.Frequency = float32(2 * math.Pi) // sin peaks at t=0.25s
	step.AnchorRadius = 0.05
	step.Anchors = []WaveAnchor{{UV: Vec2{X: 0.5, Y: 0.5}, Strength: 0.5}}
	s.Step(step)

	if got := s.Field().At(32, 32); got == 0 {
		t.Error("anchor forcing left the field untouched")
	}
}

func TestWaveInertAnchorsIgnored(t *testing.T) {
	s := NewWaveFieldSolver(waveTestRes)
	defer s.Close()

	step := defaultWaveStep()
	step.TimeMs = 250
	step.Frequency = float32(2 * math.Pi)
	step.AnchorRadius = 0.05
	step.Anchors = []WaveAnchor{{UV: Vec2{X: 0.5, Y: 0.5}, Strength: 0}}
	s.Step(step)

	// Strength zero is present but inert; zero radius disables all forcing.
	step.Anchors[0].Strength = 0.5
	step.AnchorRadius = 0
	s.Step(step)

	for i, v := range s.Field().Raw() {
		if v != 0 {
			t.Fatalf("cell %d = %v from inert anchors, want 0", i, v)
		}
	}
}

func TestWaveInvalidImpulsesIgnored(t *testing.T) {
	nan := float32(math.NaN())
	s := NewWaveFieldSolver(waveTestRes)
	defer s.Close()

	s.AddImpulse(Vec2{X: nan, Y: 0.5}, 1, 0.1)
	s.AddImpulse(Vec2{X: 0.5, Y: 0.5}, 1, 0)
	s.AddImpulse(Vec2{X: 0.5, Y: 0.5}, 0, 0.1)
	s.AddImpulse(Vec2{X: 0.5, Y: 0.5}, nan, 0.1)
	s.Step(defaultWaveStep())

	for i, v := range s.Field().Raw() {
		if v != 0 {
			t.Fatalf("cell %d = %v after invalid impulses, want 0", i, v)
		}
	}
}

func TestWaveClear(t *testing.T) {
	s := NewWaveFieldSolver(waveTestRes)
	defer s.Close()

	s.AddImpulse(Vec2{X: 0.5, Y: 0.5}, 0.8, 0.1)
	s.Step(defaultWaveStep())
	s.Clear()
	for i, v := range s.Field().Raw() {
		if v != 0 {
			t.Fatalf("cell %d = %v after Clear, want 0", i, v)
		}
	}

	// Pending impulses survive a clear.
	s.AddImpulse(Vec2{X: 0.5, Y: 0.5}, 0.8, 0.1)
	s.Clear()
	s.Step(defaultWaveStep())
	if got := s.Field().At(32, 32); got == 0 {
		t.Error("pending impulse lost across Clear")
	}
}

func TestWaveResize(t *testing.T) {
	s := NewWaveFieldSolver(waveTestRes)
	defer s.Close()

	s.AddImpulse(Vec2{X: 0.5, Y: 0.5}, 0.8, 0.1)
	s.Step(defaultWaveStep())

	s.Resize(33)
	f := s.Field()
	if f.Width() != 33 || f.Height() != 33 {
		t.Fatalf("resized to %dx%d, want 33x33", f.Width(), f.Height())
	}
	for i, v := range f.Raw() {
		if v != 0 {
			t.Fatalf("cell %d = %v after resize, want 0", i, v)
		}
	}

	// Degenerate resolutions fall back to the default.
	s.Resize(1)
	if got := s.Field().Width(); got != DefaultResolution {
		t.Errorf("degenerate resize width = %d, want %d", got, DefaultResolution)
	}
}

func TestWaveDampingBleedsEnergy(t *testing.T) {
	energy := func(s *WaveFieldSolver) float64 {
		var sum float64
		for _, v := range s.Field().Raw() {
			sum += float64(v) * float64(v)
		}
		return sum
	}

	run := func(damping float32) float64 {
		s := NewWaveFieldSolver(waveTestRes)
		defer s.Close()
		s.AddImpulse(Vec2{X: 0.5, Y: 0.5}, 0.8, 0.1)
		for i := 0; i < 120; i++ {
			s.Step(WaveStep{WaveSpeed: 0.3, Damping: damping})
		}
		return energy(s)
	}

	damped := run(0.05)
	undamped := run(0)
	if damped >= undamped {
		t.Errorf("damped energy %v not below undamped %v", damped, undamped)
	}
}

func TestWaveParallelRows(t *testing.T) {
	// 192x192 crosses the row-sharding threshold, so this exercises the
	// worker pool when more than one CPU is available.
	s := NewWaveFieldSolver(192)
	defer s.Close()

	s.AddImpulse(Vec2{X: 0.5, Y: 0.5}, 0.9, 0.05)
	for i := 0; i < 20; i++ {
		s.Step(defaultWaveStep())
	}

	nonzero := false
	for _, v := range s.Field().Raw() {
		if v < -1 || v > 1 {
			t.Fatal("parallel step escaped the clamp range")
		}
		if v != 0 {
			nonzero = true
		}
	}
	if !nonzero {
		t.Error("parallel stepping produced an all-zero field")
	}
}
