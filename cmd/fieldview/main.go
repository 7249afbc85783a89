// fieldview renders the interactive field simulation: mouse input feeds the
// bus, the trail and wave solvers step once per frame, and both fields
// composite into a single surface. See -help for the tuning flags.
package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"qfield"
)

// windowScale multiplies the field resolution into the window size.
const windowScale = 3

func main() {
	flag.Parse()

	cfg := qfield.DefaultConfig()
	if *resolutionFlag > 0 {
		cfg.Resolution = *resolutionFlag
	}
	if *trailDecayFlag >= 0 {
		cfg.TrailDecay = float32(*trailDecayFlag)
	}
	if *waveSpeedFlag >= 0 {
		cfg.WaveSpeed = float32(*waveSpeedFlag)
	}
	if *waveDampingFlag >= 0 {
		cfg.WaveDamping = float32(*waveDampingFlag)
	}

	bus := qfield.NewFieldBus(cfg)
	game := newGame(bus)
	defer game.wave.Close()

	if *useGPUFlag {
		if err := game.wave.EnableGPU(); err != nil {
			log.Printf("fieldview: falling back to CPU wave solver: %v", err)
		}
	}

	ebiten.SetWindowSize(cfg.Resolution*windowScale, cfg.Resolution*windowScale)
	ebiten.SetWindowTitle("fieldview")
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
