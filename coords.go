package qfield

import (
	"fmt"
	"math"
)

// DomainError reports malformed geometric input. It is raised before any
// value can reach simulation state; once input passes this boundary the tick
// loop and solvers are guaranteed to process it to completion.
type DomainError struct {
	Op     string
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// Viewport is the pixel extent of the host surface ClientToNDC maps from.
type Viewport struct {
	Width, Height float64
}

// Vec3 is a 3D vector used by the raycast helper.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3     { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3     { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64  { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Camera is the projection state RaycastToSurfaceUV casts from. Forward,
// Right, and Up are assumed to form an orthonormal basis.
type Camera struct {
	Position Vec3
	Forward  Vec3
	Right    Vec3
	Up       Vec3

	// FOV is the vertical field of view in radians.
	FOV float64

	// Aspect is width over height.
	Aspect float64
}

// Surface is a positioned parallelogram in world space. Origin is the UV
// (0,0) corner; SpanU and SpanV are the full edges toward UV (1,0) and (0,1).
type Surface struct {
	Origin Vec3
	SpanU  Vec3
	SpanV  Vec3
}

func finite32(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finite64(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ClientToNDC maps device pixel coordinates to normalized device coordinates
// in [-1,1]×[-1,1], y-flipped so the top edge is +1. A zero-extent viewport
// or non-finite input is rejected with a DomainError.
func ClientToNDC(x, y float64, vp Viewport) (Vec2, error) {
	if !finite64(x) || !finite64(y) {
		return Vec2{}, &DomainError{Op: "ClientToNDC", Reason: "non-finite pointer coordinates"}
	}
	if !finite64(vp.Width) || !finite64(vp.Height) || vp.Width <= 0 || vp.Height <= 0 {
		return Vec2{}, &DomainError{Op: "ClientToNDC", Reason: "viewport has no extent"}
	}
	return Vec2{
		X: float32(x/vp.Width*2 - 1),
		Y: float32(-(y/vp.Height*2 - 1)),
	}, nil
}

// NDCToUV remaps an NDC coordinate to surface UV in [0,1]×[0,1], origin at
// the bottom-left.
func NDCToUV(ndc Vec2) Vec2 {
	return Vec2{
		X: ndc.X*0.5 + 0.5,
		Y: ndc.Y*0.5 + 0.5,
	}
}

// RaycastToSurfaceUV projects a ray from the camera through the NDC point
// and intersects the surface. A miss (parallel ray, surface behind the
// camera, or hit outside the parallelogram) returns ok=false and must be
// treated as "no update this frame", never as an error.
func RaycastToSurfaceUV(ndc Vec2, cam Camera, surf Surface) (Vec2, bool) {
	if !finite32(ndc.X) || !finite32(ndc.Y) {
		return Vec2{}, false
	}
	halfV := math.Tan(cam.FOV / 2)
	halfH := halfV * cam.Aspect
	dir := cam.Forward.
		Add(cam.Right.Scale(float64(ndc.X) * halfH)).
		Add(cam.Up.Scale(float64(ndc.Y) * halfV))

	normal := surf.SpanU.Cross(surf.SpanV)
	nn := normal.Dot(normal)
	if nn == 0 {
		return Vec2{}, false // degenerate surface
	}
	denom := dir.Dot(normal)
	if math.Abs(denom) < 1e-12 {
		return Vec2{}, false
	}
	t := surf.Origin.Sub(cam.Position).Dot(normal) / denom
	if t <= 0 {
		return Vec2{}, false
	}
	hit := cam.Position.Add(dir.Scale(t)).Sub(surf.Origin)

	// Solve hit = u·SpanU + v·SpanV via the cross-product form, exact for
	// any parallelogram, not just axis-aligned ones.
	u := hit.Cross(surf.SpanV).Dot(normal) / nn
	v := surf.SpanU.Cross(hit).Dot(normal) / nn
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return Vec2{}, false
	}
	return Vec2{X: float32(u), Y: float32(v)}, true
}
