package qfield

import (
	"math"
	"testing"
)

func TestClientToNDCCorners(t *testing.T) {
	vp := Viewport{Width: 800, Height: 600}
	cases := []struct {
		name string
		x, y float64
		want Vec2
	}{
		{"top-left", 0, 0, Vec2{X: -1, Y: 1}},
		{"bottom-right", 800, 600, Vec2{X: 1, Y: -1}},
		{"center", 400, 300, Vec2{X: 0, Y: 0}},
		{"top-right", 800, 0, Vec2{X: 1, Y: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ClientToNDC(tc.x, tc.y, vp)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ClientToNDC(%v, %v) = %v, want %v", tc.x, tc.y, got, tc.want)
			}
		})
	}
}

func TestClientToNDCRejectsBadInput(t *testing.T) {
	if _, err := ClientToNDC(10, 10, Viewport{}); err == nil {
		t.Error("zero viewport accepted")
	}
	if _, err := ClientToNDC(10, 10, Viewport{Width: -5, Height: 100}); err == nil {
		t.Error("negative viewport accepted")
	}
	if _, err := ClientToNDC(math.NaN(), 10, Viewport{Width: 100, Height: 100}); err == nil {
		t.Error("NaN pointer coordinate accepted")
	}
	_, err := ClientToNDC(10, math.Inf(1), Viewport{Width: 100, Height: 100})
	if err == nil {
		t.Fatal("infinite pointer coordinate accepted")
	}
	if _, ok := err.(*DomainError); !ok {
		t.Errorf("error type = %T, want *DomainError", err)
	}
}

func TestNDCToUV(t *testing.T) {
	if got := NDCToUV(Vec2{X: -1, Y: -1}); got != (Vec2{X: 0, Y: 0}) {
		t.Errorf("NDCToUV(-1,-1) = %v", got)
	}
	if got := NDCToUV(Vec2{X: 1, Y: 1}); got != (Vec2{X: 1, Y: 1}) {
		t.Errorf("NDCToUV(1,1) = %v", got)
	}
	if got := NDCToUV(Vec2{X: 0, Y: 0}); got != (Vec2{X: 0.5, Y: 0.5}) {
		t.Errorf("NDCToUV(0,0) = %v", got)
	}
}

// unitSurfaceCamera frames the unit XY square exactly: the NDC extremes land
// on the square's edges.
func unitSurfaceCamera() (Camera, Surface) {
	fov := math.Pi / 3
	cam := Camera{
		Position: Vec3{X: 0.5, Y: 0.5, Z: 0.5 / math.Tan(fov/2)},
		Forward:  Vec3{Z: -1},
		Right:    Vec3{X: 1},
		Up:       Vec3{Y: 1},
		FOV:      fov,
		Aspect:   1,
	}
	surf := Surface{
		Origin: Vec3{},
		SpanU:  Vec3{X: 1},
		SpanV:  Vec3{Y: 1},
	}
	return cam, surf
}

func TestRaycastHitsCenter(t *testing.T) {
	cam, surf := unitSurfaceCamera()
	uv, ok := RaycastToSurfaceUV(Vec2{}, cam, surf)
	if !ok {
		t.Fatal("center ray missed")
	}
	if math.Abs(float64(uv.X)-0.5) > 1e-6 || math.Abs(float64(uv.Y)-0.5) > 1e-6 {
		t.Errorf("center ray hit %v, want (0.5, 0.5)", uv)
	}
}

func TestRaycastOffCenter(t *testing.T) {
	cam, surf := unitSurfaceCamera()
	uv, ok := RaycastToSurfaceUV(Vec2{X: 0.5, Y: -0.5}, cam, surf)
	if !ok {
		t.Fatal("off-center ray missed")
	}
	if math.Abs(float64(uv.X)-0.75) > 1e-5 || math.Abs(float64(uv.Y)-0.25) > 1e-5 {
		t.Errorf("hit %v, want (0.75, 0.25)", uv)
	}
}

func TestRaycastMisses(t *testing.T) {
	cam, surf := unitSurfaceCamera()

	// Far outside the frustum slice that covers the surface.
	if _, ok := RaycastToSurfaceUV(Vec2{X: 3, Y: 0}, cam, surf); ok {
		t.Error("ray far outside the surface reported a hit")
	}

	// Surface behind the camera.
	behind := cam
	behind.Forward = Vec3{Z: 1}
	if _, ok := RaycastToSurfaceUV(Vec2{}, behind, surf); ok {
		t.Error("surface behind the camera reported a hit")
	}

	// Ray parallel to the surface plane.
	parallel := cam
	parallel.Forward = Vec3{X: 1}
	parallel.Right = Vec3{Z: 1}
	if _, ok := RaycastToSurfaceUV(Vec2{}, parallel, surf); ok {
		t.Error("parallel ray reported a hit")
	}

	// Degenerate surface with no area.
	flat := Surface{Origin: Vec3{}, SpanU: Vec3{X: 1}, SpanV: Vec3{X: 2}}
	if _, ok := RaycastToSurfaceUV(Vec2{}, cam, flat); ok {
		t.Error("degenerate surface reported a hit")
	}

	if _, ok := RaycastToSurfaceUV(Vec2{X: float32(math.NaN())}, cam, surf); ok {
		t.Error("non-finite NDC reported a hit")
	}
}

func TestRaycastTiltedSurface(t *testing.T) {
	cam, _ := unitSurfaceCamera()
	// A parallelogram leaning away in Z still resolves exact UVs.
	surf := Surface{
		Origin: Vec3{},
		SpanU:  Vec3{X: 1},
		SpanV:  Vec3{Y: 1, Z: -0.5},
	}
	uv, ok := RaycastToSurfaceUV(Vec2{}, cam, surf)
	if !ok {
		t.Fatal("tilted surface missed")
	}
	if uv.X < 0 || uv.X > 1 || uv.Y < 0 || uv.Y > 1 {
		t.Errorf("hit outside unit range: %v", uv)
	}
}
