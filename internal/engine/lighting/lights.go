// Package lighting provides the light sources of the viewer scene.
package lighting

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ShadowCamera is the orthographic frustum a directional light renders its
// shadow map with.
type ShadowCamera struct {
	MapSize int32   // Shadow map resolution (width = height)
	Near    float32 // Near plane distance from the light
	Far     float32 // Far plane distance from the light
	Left    float32
	Right   float32
	Top     float32
	Bottom  float32
	Bias    float32 // Depth bias applied when comparing against the map
}

// DirectionalLight shines from Position towards Target with parallel rays.
type DirectionalLight struct {
	Position   mgl32.Vec3
	Target     mgl32.Vec3
	Color      mgl32.Vec3
	Intensity  float32
	CastShadow bool
	Shadow     ShadowCamera
}

// NewDirectionalLight creates a white sun with the given position and
// intensity, aimed at the origin, with shadows disabled.
func NewDirectionalLight(position mgl32.Vec3, intensity float32) *DirectionalLight {
	return &DirectionalLight{
		Position:  position,
		Color:     mgl32.Vec3{1, 1, 1},
		Intensity: intensity,
		Shadow: ShadowCamera{
			MapSize: 512,
			Near:    0.5,
			Far:     500,
			Left:    -5,
			Right:   5,
			Top:     5,
			Bottom:  -5,
		},
	}
}

// Direction returns the normalized direction towards the light.
func (l *DirectionalLight) Direction() mgl32.Vec3 {
	d := l.Position.Sub(l.Target)
	if d.Len() == 0 {
		return mgl32.Vec3{0, 1, 0}
	}
	return d.Normalize()
}

// Radiance returns the color scaled by intensity, as uploaded to shaders.
func (l *DirectionalLight) Radiance() mgl32.Vec3 {
	return l.Color.Mul(l.Intensity)
}

// AmbientLight lights every surface equally.
type AmbientLight struct {
	Color     mgl32.Vec3
	Intensity float32
}

// Radiance returns the color scaled by intensity.
func (a AmbientLight) Radiance() mgl32.Vec3 {
	return a.Color.Mul(a.Intensity)
}
