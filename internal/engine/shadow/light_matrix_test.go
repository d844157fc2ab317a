package shadow

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/internal/engine/lighting"
)

func newSun() *lighting.DirectionalLight {
	sun := lighting.NewDirectionalLight(mgl32.Vec3{10, 20, 10}, 5)
	sun.Shadow = lighting.ShadowCamera{
		MapSize: 4096,
		Near:    0.5,
		Far:     50,
		Left:    -20,
		Right:   20,
		Top:     20,
		Bottom:  -20,
		Bias:    -0.0001,
	}
	return sun
}

func TestLightMatrix_TargetInsideFrustum(t *testing.T) {
	m := CalculateDirectionalLightMatrix(newSun())

	// The origin lies on the light axis, so it projects to the center of the map
	clip := mgl32.TransformCoordinate(mgl32.Vec3{0, 0, 0}, m)
	if abs32(clip[0]) > 1e-4 || abs32(clip[1]) > 1e-4 {
		t.Errorf("expected origin at map center, got %v", clip)
	}
	if clip[2] < -1 || clip[2] > 1 {
		t.Errorf("expected origin inside depth range, got z=%f", clip[2])
	}
}

func TestLightMatrix_GroundCornersCovered(t *testing.T) {
	m := CalculateDirectionalLightMatrix(newSun())

	// A model standing near the origin on the ground plane must fall inside the map
	for _, p := range []mgl32.Vec3{{2, -2, 2}, {-2, -2, -2}, {2, 1, -2}} {
		clip := mgl32.TransformCoordinate(p, m)
		for i := 0; i < 3; i++ {
			if clip[i] < -1 || clip[i] > 1 {
				t.Errorf("point %v outside shadow frustum: %v", p, clip)
				break
			}
		}
	}
}

func TestLightMatrix_VerticalLight(t *testing.T) {
	sun := newSun()
	sun.Position = mgl32.Vec3{0, 30, 0}

	m := CalculateDirectionalLightMatrix(sun)
	clip := mgl32.TransformCoordinate(mgl32.Vec3{0, 0, 0}, m)
	if clip.Len() != clip.Len() { // NaN check
		t.Fatalf("expected finite projection, got %v", clip)
	}
	if abs32(clip[0]) > 1e-4 || abs32(clip[1]) > 1e-4 {
		t.Errorf("expected origin at map center, got %v", clip)
	}
}
