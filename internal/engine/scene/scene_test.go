package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/internal/engine/mesh"
)

func triangle() *mesh.Geometry {
	return &mesh.Geometry{Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}}
}

func TestScene_AddRemove(t *testing.T) {
	s := New()
	m := NewMesh(triangle(), NewStandardMaterial(mgl32.Vec3{1, 1, 1}, 0.5, 0))

	s.Add(m)
	s.Add(m)
	if s.Len() != 1 {
		t.Fatalf("expected 1 mesh, got %d", s.Len())
	}
	if !s.Contains(m) {
		t.Error("expected scene to contain mesh")
	}

	if !s.Remove(m) {
		t.Error("expected Remove to report presence")
	}
	if s.Remove(m) {
		t.Error("expected second Remove to report absence")
	}
	if s.Len() != 0 {
		t.Errorf("expected empty scene, got %d", s.Len())
	}
}

func TestScene_Renderables(t *testing.T) {
	s := New()
	s.Ground = NewGround(50, -2, mgl32.Vec3{}, 0.3)
	m := NewMesh(triangle(), NewStandardMaterial(mgl32.Vec3{}, 1, 0))
	s.Add(m)

	r := s.Renderables()
	if len(r) != 2 || r[0] != s.Ground || r[1] != m {
		t.Errorf("expected ground then mesh, got %v", r)
	}
	if len(s.Meshes()) != 1 {
		t.Errorf("expected ground excluded from Meshes, got %d", len(s.Meshes()))
	}
}

func TestGround_FlatAtHeight(t *testing.T) {
	g := NewGround(50, -2, mgl32.Vec3{0.07, 0.07, 0.07}, 0.3)

	box := g.WorldBounds()
	if math.Abs(float64(box.Min[1]+2)) > 1e-4 || math.Abs(float64(box.Max[1]+2)) > 1e-4 {
		t.Errorf("expected ground at y=-2, got %v", box)
	}
	if math.Abs(float64(box.Size()[0]-50)) > 1e-3 || math.Abs(float64(box.Size()[2]-50)) > 1e-3 {
		t.Errorf("expected 50x50 ground, got %v", box.Size())
	}

	up := g.NormalMatrix().Mul3x1(g.Geometry.Normals[0])
	if !up.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-5) {
		t.Errorf("expected ground normal +Y, got %v", up)
	}
	if !g.Material.ShadowOnly || !g.ReceiveShadow || g.CastShadow {
		t.Error("expected shadow-receiving, non-casting shadow material")
	}
}

func TestMesh_WorldBounds(t *testing.T) {
	m := NewMesh(triangle(), NewStandardMaterial(mgl32.Vec3{}, 1, 0))
	m.Position = mgl32.Vec3{0, -1, 0}

	box := m.WorldBounds()
	if !box.Min.ApproxEqualThreshold(mgl32.Vec3{0, -1, 0}, 1e-5) || !box.Max.ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-5) {
		t.Errorf("unexpected world bounds %v", box)
	}

	// Quarter turn around Y maps +X onto -Z
	m.Rotation = mgl32.Vec3{0, math.Pi / 2, 0}
	box = m.WorldBounds()
	if math.Abs(float64(box.Min[2]+1)) > 1e-5 {
		t.Errorf("expected min z -1 after rotation, got %v", box)
	}
}

func TestMesh_DisposeReleasesBoth(t *testing.T) {
	m := NewMesh(triangle(), NewStandardMaterial(mgl32.Vec3{}, 1, 0))
	released := 0
	m.Geometry.OnDispose(func() { released++ })
	m.Material.OnDispose(func() { released++ })

	m.Dispose()
	m.Dispose()

	if released != 2 {
		t.Errorf("expected 2 releases, got %d", released)
	}
	if !m.Geometry.Disposed() || !m.Material.Disposed() {
		t.Error("expected geometry and material disposed")
	}
}
