package qfield

import (
	"math"
	"testing"
)

// Odd resolution puts UV (0.5, 0.5) exactly on cell (32, 32).
const trailTestRes = 65

func injectedTrail(strength float32) *TrailAccumulator {
	tr := NewTrailAccumulator(trailTestRes)
	tr.Step(TrailStep{
		Inject:   true,
		Pos:      Vec2{X: 0.5, Y: 0.5},
		Strength: strength,
		Radius:   0.1,
	})
	return tr
}

func TestTrailInjectPeak(t *testing.T) {
	tr := injectedTrail(0.8)
	if got := tr.Field().At(32, 32); got != 0.8 {
		t.Errorf("peak = %v, want 0.8", got)
	}
	// The bump falls off smoothly away from the center.
	if near := tr.Field().At(34, 32); near <= 0 || near >= 0.8 {
		t.Errorf("falloff value = %v, want in (0, 0.8)", near)
	}
	// Outside the radius nothing is written. 0.1 UV is 6.4 cells.
	if far := tr.Field().At(32, 45); far != 0 {
		t.Errorf("cell outside radius = %v, want 0", far)
	}
}

func TestTrailDecay(t *testing.T) {
	tr := injectedTrail(0.8)
	tr.Step(TrailStep{Decay: 0.5})
	if got := tr.Field().At(32, 32); math.Abs(float64(got)-0.4) > 1e-6 {
		t.Errorf("after one half-decay step = %v, want 0.4", got)
	}
	tr.Step(TrailStep{Decay: 0.5})
	if got := tr.Field().At(32, 32); math.Abs(float64(got)-0.2) > 1e-6 {
		t.Errorf("after two half-decay steps = %v, want 0.2", got)
	}
}

func TestTrailDecayMonotonic(t *testing.T) {
	tr := NewTrailAccumulator(trailTestRes)
	tr.Step(TrailStep{Inject: true, Pos: Vec2{X: 0.3, Y: 0.7}, Strength: 0.9, Radius: 0.3})

	prev := append([]float32(nil), tr.Field().Raw()...)
	for step := 0; step < 5; step++ {
		tr.Step(TrailStep{Decay: 0.1})
		curr := tr.Field().Raw()
		for i, v := range curr {
			if prev[i] == 0 {
				if v != 0 {
					t.Fatalf("step %d cell %d rose from 0 to %v", step, i, v)
				}
				continue
			}
			if v >= prev[i] {
				t.Fatalf("step %d cell %d did not decrease: %v -> %v", step, i, prev[i], v)
			}
		}
		prev = append(prev[:0], curr...)
	}
}

func TestTrailFreeze(t *testing.T) {
	tr := injectedTrail(0.8)
	for i := 0; i < 10; i++ {
		tr.Step(TrailStep{Decay: 0})
	}
	if got := tr.Field().At(32, 32); got != 0.8 {
		t.Errorf("frozen field changed: %v", got)
	}
}

func TestTrailDecayClamped(t *testing.T) {
	tr := injectedTrail(0.8)
	tr.Step(TrailStep{Decay: 3})
	if got := tr.Field().At(32, 32); got != 0 {
		t.Errorf("over-unit decay left %v, want 0", got)
	}
}

func TestTrailClampsToUnit(t *testing.T) {
	tr := injectedTrail(5)
	raw := tr.Field().Raw()
	for i, v := range raw {
		if v < 0 || v > 1 {
			t.Fatalf("cell %d = %v outside [0,1]", i, v)
		}
	}
	if got := tr.Field().At(32, 32); got != 1 {
		t.Errorf("saturated peak = %v, want 1", got)
	}
}

func TestTrailInvalidInjectIgnored(t *testing.T) {
	nan := float32(math.NaN())
	tr := NewTrailAccumulator(trailTestRes)
	tr.Step(TrailStep{Inject: true, Pos: Vec2{X: nan, Y: 0.5}, Strength: 1, Radius: 0.1})
	tr.Step(TrailStep{Inject: true, Pos: Vec2{X: 0.5, Y: 0.5}, Strength: 1, Radius: 0})
	tr.Step(TrailStep{Inject: true, Pos: Vec2{X: 0.5, Y: 0.5}, Strength: 0, Radius: 0.1})
	for i, v := range tr.Field().Raw() {
		if v != 0 {
			t.Fatalf("cell %d = %v after invalid injections, want 0", i, v)
		}
	}
}

func TestTrailPreStepHandleStable(t *testing.T) {
	tr := injectedTrail(0.8)
	handle := tr.Field()
	tr.Step(TrailStep{Decay: 0.5})
	if got := handle.At(32, 32); got != 0.8 {
		t.Errorf("pre-step handle observed %v, want 0.8", got)
	}
	if got := tr.Field().At(32, 32); math.Abs(float64(got)-0.4) > 1e-6 {
		t.Errorf("post-step field = %v, want 0.4", got)
	}
}

func TestTrailClearAndResize(t *testing.T) {
	tr := injectedTrail(0.8)
	tr.Clear()
	if got := tr.Field().At(32, 32); got != 0 {
		t.Errorf("cleared field = %v", got)
	}

	tr.Resize(33)
	f := tr.Field()
	if f.Width() != 33 || f.Height() != 33 {
		t.Errorf("resized to %dx%d, want 33x33", f.Width(), f.Height())
	}
	for i, v := range f.Raw() {
		if v != 0 {
			t.Fatalf("cell %d = %v after resize, want 0", i, v)
		}
	}
}

func TestTrailSample(t *testing.T) {
	tr := injectedTrail(0.8)
	if got := tr.Field().Sample(Vec2{X: 0.5, Y: 0.5}); math.Abs(float64(got)-0.8) > 1e-6 {
		t.Errorf("sample at center = %v, want 0.8", got)
	}
	// Out-of-range UVs clamp to the edge instead of failing.
	if got := tr.Field().Sample(Vec2{X: -3, Y: 7}); got != 0 {
		t.Errorf("clamped edge sample = %v, want 0", got)
	}
}
