package renderer

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/internal/engine/mesh"
)

// floatsPerVertex is position, normal and color, interleaved.
const floatsPerVertex = 9

const vertexStride = floatsPerVertex * 4

// gpuMesh is the uploaded form of a geometry.
type gpuMesh struct {
	vao, vbo, ebo uint32
	count         int32
	mode          uint32
}

// interleave packs geometry attributes into the vertex layout. Missing normals
// are zero and missing colors white.
func interleave(g *mesh.Geometry) []float32 {
	out := make([]float32, 0, len(g.Positions)*floatsPerVertex)
	normals := g.HasNormals()
	colors := g.HasColors()
	for i, p := range g.Positions {
		n := mgl32.Vec3{}
		if normals {
			n = g.Normals[i]
		}
		c := mgl32.Vec3{1, 1, 1}
		if colors {
			c = g.Colors[i]
		}
		out = append(out, p[0], p[1], p[2], n[0], n[1], n[2], c[0], c[1], c[2])
	}
	return out
}

// drawMode returns the primitive and element count for g.
func drawMode(g *mesh.Geometry) (mode uint32, count int32) {
	switch {
	case g.Points:
		return gl.POINTS, int32(len(g.Positions))
	case g.Indexed():
		return gl.TRIANGLES, int32(len(g.Indices))
	default:
		return gl.TRIANGLES, int32(len(g.Positions) / 3 * 3)
	}
}

// uploadGeometry creates the vertex array for g.
func uploadGeometry(g *mesh.Geometry) *gpuMesh {
	vertices := interleave(g)
	m := &gpuMesh{}
	m.mode, m.count = drawMode(g)

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	if len(vertices) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	}
	setVertexLayout()

	if g.Indexed() && !g.Points {
		gl.GenBuffers(1, &m.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, gl.Ptr(g.Indices), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)
	return m
}

// setVertexLayout describes the interleaved layout for the bound buffer.
func setVertexLayout() {
	// Position
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, vertexStride, 0)
	gl.EnableVertexAttribArray(0)
	// Normal
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, vertexStride, 3*4)
	gl.EnableVertexAttribArray(1)
	// Color
	gl.VertexAttribPointerWithOffset(2, 3, gl.FLOAT, false, vertexStride, 6*4)
	gl.EnableVertexAttribArray(2)
}

func (m *gpuMesh) draw() {
	if m.count == 0 {
		return
	}
	gl.BindVertexArray(m.vao)
	if m.ebo != 0 {
		gl.DrawElementsWithOffset(m.mode, m.count, gl.UNSIGNED_INT, 0)
	} else {
		gl.DrawArrays(m.mode, 0, m.count)
	}
	gl.BindVertexArray(0)
}

func (m *gpuMesh) destroy() {
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
		m.ebo = 0
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
		m.vbo = 0
	}
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
}

// lineBuffer is a dynamic vertex array for debug lines.
type lineBuffer struct {
	vao, vbo uint32
	count    int32
}

func newLineBuffer() *lineBuffer {
	lb := &lineBuffer{}
	gl.GenVertexArrays(1, &lb.vao)
	gl.BindVertexArray(lb.vao)
	gl.GenBuffers(1, &lb.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, lb.vbo)
	setVertexLayout()
	gl.BindVertexArray(0)
	return lb
}

// set replaces the line vertices, all in one color.
func (lb *lineBuffer) set(points []mgl32.Vec3, color mgl32.Vec3) {
	vertices := make([]float32, 0, len(points)*floatsPerVertex)
	for _, p := range points {
		vertices = append(vertices, p[0], p[1], p[2], 0, 0, 0, color[0], color[1], color[2])
	}
	lb.count = int32(len(points))
	if lb.count == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, lb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (lb *lineBuffer) draw() {
	if lb.count == 0 {
		return
	}
	gl.BindVertexArray(lb.vao)
	gl.DrawArrays(gl.LINES, 0, lb.count)
	gl.BindVertexArray(0)
}

func (lb *lineBuffer) destroy() {
	if lb.vbo != 0 {
		gl.DeleteBuffers(1, &lb.vbo)
		lb.vbo = 0
	}
	if lb.vao != 0 {
		gl.DeleteVertexArrays(1, &lb.vao)
		lb.vao = 0
	}
}
