package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"qfield"
)

// Draw composites both fields into the pixel buffer and overlays the anchor
// and hover markers. The logical screen is one pixel per field cell.
func (g *Game) Draw(screen *ebiten.Image) {
	g.composite()
	screen.WritePixels(g.pixels)
	g.drawAnchors(screen)
	g.drawHoverMarker(screen)
	if *debugFlag {
		ebitenutil.DebugPrint(screen, g.debugSummary())
	}
}

// Layout reports the logical screen size; ebiten scales it to the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.res, g.res
}

// composite maps wave height and trail ink to colors over a dark base: wave
// crests run cyan, troughs indigo, trail ink amber. Field row 0 is the bottom
// of the surface, so rows flip into the top-down pixel buffer.
func (g *Game) composite() {
	wave := g.wave.Field().Raw()
	trail := g.trail.Field().Raw()
	res := g.res
	for py := 0; py < res; py++ {
		src := (res - 1 - py) * res
		dst := py * res * 4
		for px := 0; px < res; px++ {
			w := wave[src+px]
			t := trail[src+px]
			r := 8 + t*235
			gc := 10 + t*120
			b := 26 + t*40
			if w >= 0 {
				gc += w * 160
				b += w * 220
			} else {
				r += -w * 90
				b += -w * 200
			}
			i := dst + px*4
			g.pixels[i] = clampByte(r)
			g.pixels[i+1] = clampByte(gc)
			g.pixels[i+2] = clampByte(b)
			g.pixels[i+3] = 0xff
		}
	}
}

// uvToScreen converts a surface UV coordinate to screen pixels, flipping the
// vertical axis.
func (g *Game) uvToScreen(uv qfield.Vec2) (float32, float32) {
	scale := float32(g.res - 1)
	return uv.X * scale, scale - uv.Y*scale
}

// drawAnchors rings each persistent anchor at its forcing radius.
func (g *Game) drawAnchors(screen *ebiten.Image) {
	snap := g.bus.Snapshot()
	cfg := g.bus.Config()
	radius := cfg.AnchorRadius * float32(g.res-1)
	for _, a := range snap.Anchors {
		sx, sy := g.uvToScreen(a.UV)
		clr := color.NRGBA{R: 250, G: 220, B: 120, A: clampByte(120 + a.Strength*135)}
		vector.StrokeCircle(screen, sx, sy, radius, 1, clr, true)
	}
}

// drawHoverMarker rings the pointer at the probe radius with the pulsing
// glow, filling the center when intent has upgraded to etch.
func (g *Game) drawHoverMarker(screen *ebiten.Image) {
	snap := g.bus.Snapshot()
	if !snap.Hover.Active {
		return
	}
	cfg := g.bus.Config()
	sx, sy := g.uvToScreen(snap.Hover.UV)
	radius := cfg.ProbeRadius * float32(g.res-1)
	alpha := clampByte(g.glow * 255)
	vector.StrokeCircle(screen, sx, sy, radius, 1, color.NRGBA{R: 200, G: 240, B: 255, A: alpha}, true)
	if snap.Hover.Intent == qfield.IntentEtch {
		fill := color.NRGBA{R: 255, G: 200, B: 120, A: alpha / 3}
		vector.DrawFilledCircle(screen, sx, sy, radius*0.6, fill, true)
	}
}

func clampByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
