package qfield

import "math"

// Vec2 is a 2D coordinate. Which space it lives in (device pixels, NDC, or
// surface UV) is determined by the function producing it.
type Vec2 struct {
	X, Y float32
}

// clampCoord constrains v to lie within the inclusive [min, max] range.
func clampCoord(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// clampUnit constrains v to [0, 1].
func clampUnit(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clampSigned constrains v to [-1, 1], the stability range of the wave field.
func clampSigned(v float32) float32 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// smoothFalloff maps a normalized distance (0 at the center, 1 at the rim)
// to an injection weight: 1 at the center, 0 at the rim, smoothstep-shaped
// in between.
func smoothFalloff(t float32) float32 {
	t = clampUnit(t)
	s := t * t * (3 - 2*t)
	return 1 - s
}

// sqrt32 is a float32 square root.
func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

// cellCenter converts a UV coordinate to continuous cell coordinates on a
// grid of the given extent. UV origin is bottom-left; cell row 0 is the
// bottom row.
func cellCenter(uv Vec2, width, height int) (float32, float32) {
	return uv.X * float32(width-1), uv.Y * float32(height-1)
}
