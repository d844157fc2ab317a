package shadow

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/internal/engine/lighting"
)

// CalculateDirectionalLightMatrix computes the view-projection used for the
// shadow pass of a directional light: an orthographic box described by the
// light's shadow camera, looking from the light position at its target.
func CalculateDirectionalLightMatrix(light *lighting.DirectionalLight) mgl32.Mat4 {
	sc := light.Shadow

	// Choose an up vector that is not parallel with the light direction
	up := mgl32.Vec3{0, 1, 0}
	if abs32(light.Direction()[1]) > 0.99 {
		up = mgl32.Vec3{0, 0, 1}
	}

	view := mgl32.LookAtV(light.Position, light.Target, up)
	proj := mgl32.Ortho(sc.Left, sc.Right, sc.Bottom, sc.Top, sc.Near, sc.Far)

	return proj.Mul4(view)
}

// abs32 returns the absolute value of a float32.
func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
