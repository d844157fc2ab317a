package scene

import "github.com/go-gl/mathgl/mgl32"

// Material describes how a mesh surface is shaded.
type Material struct {
	Color        mgl32.Vec3
	VertexColors bool // use per-vertex colors instead of Color
	Roughness    float32
	Metalness    float32
	DoubleSided  bool
	Opacity      float32

	// ShadowOnly surfaces are invisible except where they are in shadow.
	ShadowOnly bool

	disposed  bool
	onDispose []func()
}

// NewStandardMaterial creates an opaque, single-sided physically based material.
func NewStandardMaterial(color mgl32.Vec3, roughness, metalness float32) *Material {
	return &Material{
		Color:     color,
		Roughness: roughness,
		Metalness: metalness,
		Opacity:   1,
	}
}

// NewShadowMaterial creates a material that only darkens shadowed areas.
func NewShadowMaterial(color mgl32.Vec3, opacity float32) *Material {
	return &Material{
		Color:      color,
		Opacity:    opacity,
		ShadowOnly: true,
		Roughness:  1,
	}
}

// OnDispose registers fn to run when the material is released.
func (m *Material) OnDispose(fn func()) {
	if m.disposed {
		fn()
		return
	}
	m.onDispose = append(m.onDispose, fn)
}

// Dispose releases the material. Hooks run once.
func (m *Material) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	hooks := m.onDispose
	m.onDispose = nil
	for _, fn := range hooks {
		fn()
	}
}

// Disposed reports whether Dispose has been called.
func (m *Material) Disposed() bool {
	return m.disposed
}
