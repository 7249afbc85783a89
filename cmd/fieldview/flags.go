package main

import "flag"

// Command-line flags controlling the viewer and the simulation knobs it
// forwards into the library configuration.
var (
	// resolutionFlag sets the cell resolution of both scalar fields.
	resolutionFlag = flag.Int("resolution", 0, "field resolution in cells (0 = library default)")

	// debugFlag enables the FPS, counter, and state overlay.
	debugFlag = flag.Bool("debug", false, "show FPS and simulation state overlay")

	// autoPointerFlag replaces mouse input with a wandering synthetic pointer.
	autoPointerFlag = flag.Bool("auto-pointer", false, "drive the surface with a synthetic wandering pointer")

	// useGPUFlag offloads the wave update to OpenCL (requires -tags opencl).
	useGPUFlag = flag.Bool("use-gpu", false, "offload the wave solver to an OpenCL device")

	// trailDecayFlag overrides the per-step trail fade fraction.
	trailDecayFlag = flag.Float64("trail-decay", -1, "trail decay per step (0 freezes; negative = library default)")

	// waveSpeedFlag overrides the wave c² coefficient.
	waveSpeedFlag = flag.Float64("wave-speed", -1, "wave speed coefficient (negative = library default)")

	// waveDampingFlag overrides the wave damping coefficient.
	waveDampingFlag = flag.Float64("wave-damping", -1, "wave damping coefficient (negative = library default)")

	// recordDefaultPGO drives the auto-pointer for 15s while capturing default.pgo.
	recordDefaultPGO = flag.Bool("record-default-pgo", false, "wander automatically for 15s while capturing default.pgo")
)
