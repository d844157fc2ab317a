// Package scene holds the viewer's scene graph: meshes, lights, ground and
// background. It owns no GPU state; the renderer draws it.
package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/internal/engine/lighting"
	"github.com/Faultbox/meshview/internal/engine/mesh"
)

// Scene is a flat list of meshes plus lights and an optional ground.
type Scene struct {
	Background mgl32.Vec3
	Sun        *lighting.DirectionalLight
	Ambient    lighting.AmbientLight
	Ground     *Mesh

	meshes []*Mesh
}

// New creates an empty scene with a white background.
func New() *Scene {
	return &Scene{Background: mgl32.Vec3{1, 1, 1}}
}

// Add inserts m. Adding a mesh twice has no effect.
func (s *Scene) Add(m *Mesh) {
	if m == nil || s.Contains(m) {
		return
	}
	s.meshes = append(s.meshes, m)
}

// Remove detaches m and reports whether it was present.
func (s *Scene) Remove(m *Mesh) bool {
	for i, existing := range s.meshes {
		if existing == m {
			s.meshes = append(s.meshes[:i], s.meshes[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether m is part of the scene.
func (s *Scene) Contains(m *Mesh) bool {
	for _, existing := range s.meshes {
		if existing == m {
			return true
		}
	}
	return false
}

// Meshes returns the added meshes, excluding the ground.
func (s *Scene) Meshes() []*Mesh {
	out := make([]*Mesh, len(s.meshes))
	copy(out, s.meshes)
	return out
}

// Len returns the number of added meshes.
func (s *Scene) Len() int {
	return len(s.meshes)
}

// Renderables returns the ground (if any) followed by the added meshes.
func (s *Scene) Renderables() []*Mesh {
	out := make([]*Mesh, 0, len(s.meshes)+1)
	if s.Ground != nil {
		out = append(out, s.Ground)
	}
	return append(out, s.meshes...)
}

// NewGround creates a horizontal square of the given size at height y that
// only shows the shadows cast onto it.
func NewGround(size, y float32, color mgl32.Vec3, opacity float32) *Mesh {
	h := size / 2
	geom := &mesh.Geometry{
		Positions: []mgl32.Vec3{{-h, -h, 0}, {h, -h, 0}, {h, h, 0}, {-h, h, 0}},
		Normals:   []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}

	ground := NewMesh(geom, NewShadowMaterial(color, opacity))
	ground.Name = "ground"
	// Lay the XY plane flat so its normal points up
	ground.Rotation = mgl32.Vec3{-math.Pi / 2, 0, 0}
	ground.Position = mgl32.Vec3{0, y, 0}
	ground.ReceiveShadow = true
	return ground
}
