package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/internal/engine/mesh"
)

// Mesh is a renderable object: geometry, material and a transform.
type Mesh struct {
	Name     string
	Geometry *mesh.Geometry
	Material *Material

	Position mgl32.Vec3
	Rotation mgl32.Vec3 // Euler angles in radians, applied X then Y then Z

	CastShadow    bool
	ReceiveShadow bool
}

// NewMesh creates a mesh at the origin.
func NewMesh(geometry *mesh.Geometry, material *Material) *Mesh {
	return &Mesh{
		Geometry: geometry,
		Material: material,
	}
}

// ModelMatrix returns the local-to-world transform.
func (m *Mesh) ModelMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(m.Position[0], m.Position[1], m.Position[2])
	r := mgl32.HomogRotate3DX(m.Rotation[0]).
		Mul4(mgl32.HomogRotate3DY(m.Rotation[1])).
		Mul4(mgl32.HomogRotate3DZ(m.Rotation[2]))
	return t.Mul4(r)
}

// NormalMatrix returns the transform for normals.
func (m *Mesh) NormalMatrix() mgl32.Mat3 {
	return m.ModelMatrix().Mat3().Inv().Transpose()
}

// WorldBounds returns the world-space bounding box with the transform applied.
func (m *Mesh) WorldBounds() mesh.Box {
	if m.Geometry == nil {
		return mesh.EmptyBox()
	}
	return m.Geometry.BoundingBox().Transform(m.ModelMatrix())
}

// Dispose releases geometry and material.
func (m *Mesh) Dispose() {
	if m.Geometry != nil {
		m.Geometry.Dispose()
	}
	if m.Material != nil {
		m.Material.Dispose()
	}
}
