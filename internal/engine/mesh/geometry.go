// Package mesh holds decoded triangle geometry and the helpers that prepare
// it for display: normals, bounds and centering.
package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/pkg/formats"
)

// Geometry is a triangle mesh in model space.
// Indices may be empty, in which case every three positions form a triangle.
type Geometry struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3 // per vertex, empty until computed or decoded
	Colors    []mgl32.Vec3 // per vertex, empty when the source has none
	Indices   []uint32

	// Points marks a vertex cloud without faces, drawn as points.
	Points bool

	bounds      Box
	boundsValid bool

	disposed  bool
	onDispose []func()
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions)
}

// TriangleCount returns the number of triangles drawn.
func (g *Geometry) TriangleCount() int {
	if g.Points {
		return 0
	}
	if g.Indexed() {
		return len(g.Indices) / 3
	}
	return len(g.Positions) / 3
}

// Indexed reports whether the geometry uses an index buffer.
func (g *Geometry) Indexed() bool {
	return len(g.Indices) > 0
}

// HasColors reports whether per-vertex colors are present.
func (g *Geometry) HasColors() bool {
	return len(g.Colors) == len(g.Positions) && len(g.Colors) > 0
}

// HasNormals reports whether per-vertex normals are present.
func (g *Geometry) HasNormals() bool {
	return len(g.Normals) == len(g.Positions) && len(g.Normals) > 0
}

// BoundingBox returns the model-space bounds, computing them on first use.
func (g *Geometry) BoundingBox() Box {
	if !g.boundsValid {
		g.ComputeBoundingBox()
	}
	return g.bounds
}

// ComputeBoundingBox recomputes the cached bounds from the positions.
func (g *Geometry) ComputeBoundingBox() {
	b := EmptyBox()
	for _, p := range g.Positions {
		b.ExpandByPoint(p)
	}
	g.bounds = b
	g.boundsValid = true
}

// ComputeVertexNormals replaces the normals with area-weighted vertex normals.
// Indexed vertices shared between faces get the normalized sum of their face
// normals; unindexed triangles get flat face normals.
func (g *Geometry) ComputeVertexNormals() {
	if g.Points {
		return
	}
	normals := make([]mgl32.Vec3, len(g.Positions))

	accumulate := func(a, b, c uint32) {
		pA, pB, pC := g.Positions[a], g.Positions[b], g.Positions[c]
		n := pC.Sub(pB).Cross(pA.Sub(pB))
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}

	if g.Indexed() {
		for i := 0; i+2 < len(g.Indices); i += 3 {
			a, b, c := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
			if int(a) >= len(normals) || int(b) >= len(normals) || int(c) >= len(normals) {
				continue
			}
			accumulate(a, b, c)
		}
	} else {
		for i := 0; i+2 < len(g.Positions); i += 3 {
			accumulate(uint32(i), uint32(i+1), uint32(i+2))
		}
	}

	for i, n := range normals {
		// Degenerate faces leave a zero normal
		if l := n.Len(); l > 1e-12 {
			normals[i] = n.Mul(1 / l)
		}
	}
	g.Normals = normals
}

// Translate moves every position by offset.
func (g *Geometry) Translate(offset mgl32.Vec3) {
	for i := range g.Positions {
		g.Positions[i] = g.Positions[i].Add(offset)
	}
	if g.boundsValid && !g.bounds.IsEmpty() {
		g.bounds.Min = g.bounds.Min.Add(offset)
		g.bounds.Max = g.bounds.Max.Add(offset)
	}
}

// Center moves the geometry so its bounding box is centered on the origin and
// returns the applied offset.
func (g *Geometry) Center() mgl32.Vec3 {
	offset := g.BoundingBox().Center().Mul(-1)
	g.Translate(offset)
	return offset
}

// OnDispose registers fn to run when the geometry is released.
func (g *Geometry) OnDispose(fn func()) {
	if g.disposed {
		fn()
		return
	}
	g.onDispose = append(g.onDispose, fn)
}

// Dispose releases the geometry. Hooks run once, in registration order.
func (g *Geometry) Dispose() {
	if g.disposed {
		return
	}
	g.disposed = true
	hooks := g.onDispose
	g.onDispose = nil
	for _, fn := range hooks {
		fn()
	}
}

// Disposed reports whether Dispose has been called.
func (g *Geometry) Disposed() bool {
	return g.disposed
}

// FromSTL builds unindexed geometry from an STL solid. Stored facet normals
// are ignored; callers compute normals from the winding.
func FromSTL(s *formats.STL) *Geometry {
	g := &Geometry{Positions: make([]mgl32.Vec3, 0, s.VertexCount())}
	for _, tri := range s.Triangles {
		for _, v := range tri.Vertices {
			g.Positions = append(g.Positions, mgl32.Vec3(v))
		}
	}
	return g
}

// FromPLY builds indexed geometry from a decoded PLY, carrying over colors and
// normals when the file has them. Files without faces become point clouds.
func FromPLY(p *formats.PLY) *Geometry {
	g := &Geometry{Positions: make([]mgl32.Vec3, len(p.Positions))}
	for i, v := range p.Positions {
		g.Positions[i] = mgl32.Vec3(v)
	}
	if p.HasColors() {
		g.Colors = make([]mgl32.Vec3, len(p.Colors))
		for i, c := range p.Colors {
			g.Colors[i] = mgl32.Vec3(c)
		}
	}
	if p.HasNormals() {
		g.Normals = make([]mgl32.Vec3, len(p.Normals))
		for i, n := range p.Normals {
			g.Normals[i] = mgl32.Vec3(n)
		}
	}
	if len(p.Faces) == 0 {
		g.Points = true
		return g
	}
	g.Indices = make([]uint32, 0, len(p.Faces)*3)
	for _, f := range p.Faces {
		g.Indices = append(g.Indices, f[0], f[1], f[2])
	}
	return g
}

// Decode parses data with the decoder for format.
func Decode(data []byte, format formats.Format) (*Geometry, error) {
	switch format {
	case formats.FormatSTL:
		s, err := formats.ParseSTL(data)
		if err != nil {
			return nil, err
		}
		return FromSTL(s), nil
	case formats.FormatPLY:
		p, err := formats.ParsePLY(data)
		if err != nil {
			return nil, fmt.Errorf("parsing PLY: %w", err)
		}
		return FromPLY(p), nil
	default:
		return nil, fmt.Errorf("%w: %q", formats.ErrUnsupportedFormat, format)
	}
}
