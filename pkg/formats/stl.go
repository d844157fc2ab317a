package formats

import (
	"bytes"
	"fmt"

	"github.com/hschendel/stl"
)

// STLTriangle is a single facet with its stored normal.
type STLTriangle struct {
	Normal   [3]float32
	Vertices [3][3]float32
}

// STL holds a decoded STL solid (binary or ASCII).
type STL struct {
	Name      string
	ASCII     bool
	Triangles []STLTriangle
}

// ParseSTL decodes STL data. Binary and ASCII encodings are both accepted.
func ParseSTL(data []byte) (*STL, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}

	solid, err := stl.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing STL: %w", err)
	}

	out := &STL{
		Name:      solid.Name,
		ASCII:     solid.IsAscii,
		Triangles: make([]STLTriangle, len(solid.Triangles)),
	}
	for i, tri := range solid.Triangles {
		out.Triangles[i].Normal = tri.Normal
		for j := 0; j < 3; j++ {
			out.Triangles[i].Vertices[j] = tri.Vertices[j]
		}
	}
	return out, nil
}

// VertexCount returns the number of (unshared) vertices in the solid.
func (s *STL) VertexCount() int {
	return len(s.Triangles) * 3
}
