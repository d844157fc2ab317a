package renderer

import (
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/internal/engine/mesh"
	"github.com/Faultbox/meshview/internal/engine/scene"
)

func TestInterleave(t *testing.T) {
	g := &mesh.Geometry{
		Positions: []mgl32.Vec3{{1, 2, 3}, {4, 5, 6}},
		Colors:    []mgl32.Vec3{{0.5, 0, 0}, {0, 0.5, 0}},
	}

	got := interleave(g)
	if len(got) != 2*floatsPerVertex {
		t.Fatalf("expected %d floats, got %d", 2*floatsPerVertex, len(got))
	}
	want := []float32{4, 5, 6, 0, 0, 0, 0, 0.5, 0}
	for i, v := range want {
		if got[floatsPerVertex+i] != v {
			t.Errorf("float %d: expected %f, got %f", i, v, got[floatsPerVertex+i])
		}
	}

	g.Colors = nil
	g.Normals = []mgl32.Vec3{{0, 1, 0}, {0, 1, 0}}
	got = interleave(g)
	if got[4] != 1 || got[6] != 1 || got[7] != 1 || got[8] != 1 {
		t.Errorf("expected up normal and white color, got %v", got[:floatsPerVertex])
	}
}

func TestDrawMode(t *testing.T) {
	tests := []struct {
		name      string
		geom      *mesh.Geometry
		wantMode  uint32
		wantCount int32
	}{
		{
			name:      "unindexed drops trailing vertices",
			geom:      &mesh.Geometry{Positions: make([]mgl32.Vec3, 7)},
			wantMode:  gl.TRIANGLES,
			wantCount: 6,
		},
		{
			name:      "indexed",
			geom:      &mesh.Geometry{Positions: make([]mgl32.Vec3, 4), Indices: []uint32{0, 1, 2, 0, 2, 3}},
			wantMode:  gl.TRIANGLES,
			wantCount: 6,
		},
		{
			name:      "point cloud",
			geom:      &mesh.Geometry{Positions: make([]mgl32.Vec3, 5), Points: true},
			wantMode:  gl.POINTS,
			wantCount: 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, count := drawMode(tt.geom)
			if mode != tt.wantMode || count != tt.wantCount {
				t.Errorf("expected (%d, %d), got (%d, %d)", tt.wantMode, tt.wantCount, mode, count)
			}
		})
	}
}

func TestTransparent(t *testing.T) {
	opaque := scene.NewMesh(nil, scene.NewStandardMaterial(mgl32.Vec3{1, 1, 1}, 0.5, 0))
	if transparent(opaque) {
		t.Error("standard material should be opaque")
	}

	faded := scene.NewMesh(nil, scene.NewStandardMaterial(mgl32.Vec3{1, 1, 1}, 0.5, 0))
	faded.Material.Opacity = 0.5
	if !transparent(faded) {
		t.Error("half opacity should be blended")
	}

	ground := scene.NewGround(10, 0, mgl32.Vec3{}, 1)
	if !transparent(ground) {
		t.Error("shadow-only ground should be blended")
	}
}
