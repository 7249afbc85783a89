// Package qfield is the interactive field simulation engine behind the
// generative background surfaces: a bus that turns pointer interaction into
// hover, impulse, and anchor state, plus two frame-stepped integrators over
// fixed-resolution scalar grids — a decaying ink trail and a damped 2D wave
// field.
//
// The package supplies numbers, not pixels. A renderer samples
// [FieldBus.Snapshot] and the [Field] handles of [TrailAccumulator] and
// [WaveFieldSolver] each frame and owns all colorization; an instrumentation
// layer feeds [FieldBus.Emit] and owns intent classification. cmd/fieldview
// is the reference implementation of both collaborators.
//
// Emit is safe to call from input-handling goroutines; everything else is
// driven from a single simulation goroutine calling [FieldBus.Tick] and the
// solvers' Step once per animation frame.
package qfield
