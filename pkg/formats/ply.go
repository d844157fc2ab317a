package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/EliCDavis/polyform/formats/ply"
	"github.com/EliCDavis/polyform/modeling"
	"github.com/EliCDavis/vector/vector3"
)

// PLY format errors.
var (
	ErrInvalidPLYMagic         = errors.New("invalid PLY magic: expected 'ply'")
	ErrInvalidPLYHeader        = errors.New("invalid PLY header")
	ErrUnsupportedPLYEncoding  = errors.New("unsupported PLY encoding")
	ErrTruncatedPLYData        = errors.New("truncated PLY data")
	ErrMalformedPLYData        = errors.New("malformed PLY data")
	ErrMissingPLYVertices      = errors.New("PLY has no vertex positions")
	ErrInvalidPLYIndex         = errors.New("PLY face references missing vertex")
	ErrUnsupportedPLYPropType  = errors.New("unsupported PLY property type")
	errPLYHeaderTerminatorMiss = fmt.Errorf("%w: missing end_header", ErrInvalidPLYHeader)
)

// PLYEncoding is the body encoding declared in the header.
type PLYEncoding string

const (
	PLYASCII              PLYEncoding = "ascii"
	PLYBinaryLittleEndian PLYEncoding = "binary_little_endian"
	PLYBinaryBigEndian    PLYEncoding = "binary_big_endian"
)

// PLY holds decoded polygon data. Faces are triangulated.
type PLY struct {
	Encoding PLYEncoding
	Version  string
	Comments []string

	Positions [][3]float32
	Normals   [][3]float32 // nil when the file has no nx/ny/nz
	Colors    [][3]float32 // nil when the file has no colors; components in [0, 1]
	Faces     [][3]uint32
}

// HasColors reports whether per-vertex colors were present.
func (p *PLY) HasColors() bool {
	return len(p.Colors) > 0
}

// HasNormals reports whether per-vertex normals were present.
func (p *PLY) HasNormals() bool {
	return len(p.Normals) > 0
}

type plyType int

const (
	plyInvalid plyType = iota
	plyInt8
	plyUint8
	plyInt16
	plyUint16
	plyInt32
	plyUint32
	plyFloat32
	plyFloat64
)

func parsePLYType(name string) plyType {
	switch name {
	case "char", "int8":
		return plyInt8
	case "uchar", "uint8":
		return plyUint8
	case "short", "int16":
		return plyInt16
	case "ushort", "uint16":
		return plyUint16
	case "int", "int32":
		return plyInt32
	case "uint", "uint32":
		return plyUint32
	case "float", "float32":
		return plyFloat32
	case "double", "float64":
		return plyFloat64
	default:
		return plyInvalid
	}
}

func (t plyType) size() int {
	switch t {
	case plyInt8, plyUint8:
		return 1
	case plyInt16, plyUint16:
		return 2
	case plyInt32, plyUint32, plyFloat32:
		return 4
	case plyFloat64:
		return 8
	default:
		return 0
	}
}

func (t plyType) integral() bool {
	return t != plyInvalid && t != plyFloat32 && t != plyFloat64
}

type plyProperty struct {
	name      string
	typ       plyType
	list      bool
	countType plyType
}

// indices reports whether the property carries face corner indices.
func (p plyProperty) indices() bool {
	return p.list && (p.name == "vertex_indices" || p.name == "vertex_index")
}

type plyElement struct {
	name   string
	count  int
	props  []plyProperty
	header string
}

// minRowBytes is the smallest binary row: every list empty.
func (el plyElement) minRowBytes() int {
	n := 0
	for _, p := range el.props {
		if p.list {
			n += p.countType.size()
		} else {
			n += p.typ.size()
		}
	}
	return n
}

func (el plyElement) hasPositions() bool {
	found := 0
	for _, p := range el.props {
		if !p.list && (p.name == "x" || p.name == "y" || p.name == "z") {
			found++
		}
	}
	return found == 3
}

// decoded reports whether the element is handed to the mesh reader.
func (el plyElement) decoded() bool {
	return el.name == "vertex" || el.name == "face"
}

type plyHeader struct {
	encoding PLYEncoding
	version  string
	comments []string
	elements []plyElement
	bodyAt   int
}

func (h *plyHeader) element(name string) *plyElement {
	for i := range h.elements {
		if h.elements[i].name == name {
			return &h.elements[i]
		}
	}
	return nil
}

// plySpan is the byte range of one element inside the body.
type plySpan struct {
	start, end int
}

// ParsePLY decodes ASCII or binary PLY data. The body is checked against
// the header before decoding, so counts that do not fit the data are
// rejected without allocating for them.
func ParsePLY(data []byte) (*PLY, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}

	hdr, err := parsePLYHeader(data)
	if err != nil {
		return nil, err
	}
	vertex := hdr.element("vertex")
	if vertex == nil || !vertex.hasPositions() {
		return nil, ErrMissingPLYVertices
	}

	body := data[hdr.bodyAt:]
	spans, err := checkPLYBody(hdr, body, vertex.count)
	if err != nil {
		return nil, err
	}

	out := &PLY{
		Encoding: hdr.encoding,
		Version:  hdr.version,
		Comments: hdr.comments,
	}
	if err := readPLYMesh(hdr.rewrite(body, spans), out); err != nil {
		return nil, err
	}
	if len(out.Positions) == 0 {
		return nil, ErrMissingPLYVertices
	}
	return out, nil
}

// readPLYMesh runs the mesh reader over a body that already passed
// checkPLYBody and copies its attributes into out.
func readPLYMesh(data []byte, out *PLY) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrMalformedPLYData, r)
		}
	}()

	mesh, err := ply.ReadMesh(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPLYData, err)
	}

	view := mesh.View()
	out.Positions = float3s(view.Float3Data[modeling.PositionAttribute])
	if normals := view.Float3Data[modeling.NormalAttribute]; len(normals) == len(out.Positions) {
		out.Normals = float3s(normals)
	}
	if colors := view.Float3Data[modeling.ColorAttribute]; len(colors) == len(out.Positions) {
		out.Colors = float3s(colors)
	}

	if mesh.Topology() != modeling.TriangleTopology {
		return nil
	}
	indices := view.Indices
	out.Faces = make([][3]uint32, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		var face [3]uint32
		for k := 0; k < 3; k++ {
			idx := indices[i+k]
			if idx < 0 || idx >= len(out.Positions) {
				return fmt.Errorf("%w: triangle %d index %d (vertices: %d)", ErrInvalidPLYIndex, i/3, idx, len(out.Positions))
			}
			face[k] = uint32(idx)
		}
		out.Faces = append(out.Faces, face)
	}
	return nil
}

func float3s(src []vector3.Vector[float64]) [][3]float32 {
	if len(src) == 0 {
		return nil
	}
	out := make([][3]float32, len(src))
	for i, v := range src {
		out[i] = [3]float32{float32(v.X()), float32(v.Y()), float32(v.Z())}
	}
	return out
}

func parsePLYHeader(data []byte) (*plyHeader, error) {
	if !bytes.HasPrefix(data, []byte("ply\n")) && !bytes.HasPrefix(data, []byte("ply\r\n")) {
		return nil, ErrInvalidPLYMagic
	}

	hdr := &plyHeader{}
	pos := 0
	first := true
	for {
		if pos >= len(data) {
			return nil, errPLYHeaderTerminatorMiss
		}
		end := bytes.IndexByte(data[pos:], '\n')
		if end < 0 {
			return nil, errPLYHeaderTerminatorMiss
		}
		line := strings.TrimRight(string(data[pos:pos+end]), "\r")
		pos += end + 1

		if first {
			first = false
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "format":
			if len(fields) != 3 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidPLYHeader, line)
			}
			enc := PLYEncoding(fields[1])
			if enc != PLYASCII && enc != PLYBinaryLittleEndian && enc != PLYBinaryBigEndian {
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedPLYEncoding, fields[1])
			}
			hdr.encoding = enc
			hdr.version = fields[2]
		case "comment":
			hdr.comments = append(hdr.comments, strings.TrimSpace(strings.TrimPrefix(line, "comment")))
		case "obj_info":
		case "element":
			if len(fields) != 3 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidPLYHeader, line)
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: bad element count %q", ErrInvalidPLYHeader, fields[2])
			}
			hdr.elements = append(hdr.elements, plyElement{name: fields[1], count: count, header: line + "\n"})
		case "property":
			if len(hdr.elements) == 0 {
				return nil, fmt.Errorf("%w: property before element", ErrInvalidPLYHeader)
			}
			prop, err := parsePLYProperty(fields)
			if err != nil {
				return nil, err
			}
			el := &hdr.elements[len(hdr.elements)-1]
			el.props = append(el.props, prop)
			el.header += line + "\n"
		case "end_header":
			if hdr.encoding == "" {
				return nil, fmt.Errorf("%w: missing format line", ErrInvalidPLYHeader)
			}
			for _, el := range hdr.elements {
				if el.count > 0 && len(el.props) == 0 {
					return nil, fmt.Errorf("%w: element %q has no properties", ErrInvalidPLYHeader, el.name)
				}
			}
			hdr.bodyAt = pos
			return hdr, nil
		default:
			return nil, fmt.Errorf("%w: unknown keyword %q", ErrInvalidPLYHeader, fields[0])
		}
	}
}

func parsePLYProperty(fields []string) (plyProperty, error) {
	if len(fields) >= 5 && fields[1] == "list" {
		countType := parsePLYType(fields[2])
		itemType := parsePLYType(fields[3])
		if !countType.integral() || itemType == plyInvalid {
			return plyProperty{}, fmt.Errorf("%w: %s", ErrUnsupportedPLYPropType, strings.Join(fields[2:4], " "))
		}
		return plyProperty{name: fields[4], typ: itemType, list: true, countType: countType}, nil
	}
	if len(fields) != 3 {
		return plyProperty{}, fmt.Errorf("%w: %q", ErrInvalidPLYHeader, strings.Join(fields, " "))
	}
	typ := parsePLYType(fields[1])
	if typ == plyInvalid {
		return plyProperty{}, fmt.Errorf("%w: %s", ErrUnsupportedPLYPropType, fields[1])
	}
	return plyProperty{name: fields[2], typ: typ}, nil
}

// rewrite rebuilds the file with only the vertex and face elements.
func (h *plyHeader) rewrite(body []byte, spans []plySpan) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "ply\nformat %s %s\n", h.encoding, h.version)
	for _, el := range h.elements {
		if el.decoded() {
			buf.WriteString(el.header)
		}
	}
	buf.WriteString("end_header\n")
	for i, el := range h.elements {
		if !el.decoded() {
			continue
		}
		chunk := body[spans[i].start:spans[i].end]
		buf.Write(chunk)
		if h.encoding == PLYASCII && len(chunk) > 0 && chunk[len(chunk)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

// checkPLYBody walks every row declared by the header and returns where each
// element sits in the body. Face indices are checked against vertexCount.
func checkPLYBody(hdr *plyHeader, body []byte, vertexCount int) ([]plySpan, error) {
	switch hdr.encoding {
	case PLYBinaryLittleEndian:
		return checkPLYBinary(hdr, body, binary.LittleEndian, vertexCount)
	case PLYBinaryBigEndian:
		return checkPLYBinary(hdr, body, binary.BigEndian, vertexCount)
	default:
		return checkPLYASCII(hdr, body, vertexCount)
	}
}

func checkPLYBinary(hdr *plyHeader, body []byte, order binary.ByteOrder, vertexCount int) ([]plySpan, error) {
	spans := make([]plySpan, len(hdr.elements))
	pos := 0
	for i, el := range hdr.elements {
		if el.count > 0 && (len(body)-pos)/el.minRowBytes() < el.count {
			return nil, fmt.Errorf("%w: %d %s rows need at least %d bytes, have %d",
				ErrTruncatedPLYData, el.count, el.name, el.count*el.minRowBytes(), len(body)-pos)
		}
		start := pos
		for row := 0; row < el.count; row++ {
			for _, p := range el.props {
				if !p.list {
					pos += p.typ.size()
					if pos > len(body) {
						return nil, fmt.Errorf("%w: %s %d", ErrTruncatedPLYData, el.name, row)
					}
					continue
				}
				n, err := readPLYInt(body, pos, p.countType, order)
				if err != nil {
					return nil, fmt.Errorf("%s %d: %w", el.name, row, err)
				}
				if n < 0 {
					return nil, fmt.Errorf("%w: %s %d has list count %d", ErrMalformedPLYData, el.name, row, n)
				}
				pos += p.countType.size()
				if n > int64(len(body)-pos)/int64(p.typ.size()) {
					return nil, fmt.Errorf("%w: %s %d lists %d items", ErrTruncatedPLYData, el.name, row, n)
				}
				if el.name == "face" && p.indices() {
					for k := 0; k < int(n); k++ {
						idx, err := readPLYInt(body, pos+k*p.typ.size(), p.typ, order)
						if err != nil {
							return nil, fmt.Errorf("face %d: %w", row, err)
						}
						if idx < 0 || idx >= int64(vertexCount) {
							return nil, fmt.Errorf("%w: face %d index %d (vertices: %d)", ErrInvalidPLYIndex, row, idx, vertexCount)
						}
					}
				}
				pos += int(n) * p.typ.size()
			}
		}
		spans[i] = plySpan{start: start, end: pos}
	}
	return spans, nil
}

// readPLYInt reads an integer scalar at pos.
func readPLYInt(body []byte, pos int, t plyType, order binary.ByteOrder) (int64, error) {
	if !t.integral() {
		return 0, fmt.Errorf("%w: non-integer index type", ErrUnsupportedPLYPropType)
	}
	n := t.size()
	if pos+n > len(body) {
		return 0, ErrTruncatedPLYData
	}
	b := body[pos : pos+n]
	switch t {
	case plyInt8:
		return int64(int8(b[0])), nil
	case plyUint8:
		return int64(b[0]), nil
	case plyInt16:
		return int64(int16(order.Uint16(b))), nil
	case plyUint16:
		return int64(order.Uint16(b)), nil
	case plyInt32:
		return int64(int32(order.Uint32(b))), nil
	default:
		return int64(order.Uint32(b)), nil
	}
}

func checkPLYASCII(hdr *plyHeader, body []byte, vertexCount int) ([]plySpan, error) {
	spans := make([]plySpan, len(hdr.elements))
	pos := 0
	for i, el := range hdr.elements {
		if el.count > 0 && bytes.Count(body[pos:], []byte{'\n'})+1 < el.count {
			return nil, fmt.Errorf("%w: %d %s rows declared", ErrTruncatedPLYData, el.count, el.name)
		}
		start := pos
		for row := 0; row < el.count; row++ {
			line, at, next, ok := nextPLYLine(body, pos)
			if !ok {
				return nil, fmt.Errorf("%w: %s %d", ErrTruncatedPLYData, el.name, row)
			}
			if row == 0 {
				start = at
			}
			if err := checkPLYRow(el, strings.Fields(line), vertexCount); err != nil {
				return nil, fmt.Errorf("%s %d: %w", el.name, row, err)
			}
			pos = next
		}
		spans[i] = plySpan{start: start, end: pos}
	}
	return spans, nil
}

// nextPLYLine returns the next non-blank line at or after pos, where it
// starts and the offset just past it.
func nextPLYLine(body []byte, pos int) (string, int, int, bool) {
	for pos < len(body) {
		end := bytes.IndexByte(body[pos:], '\n')
		next := len(body)
		if end >= 0 {
			next = pos + end + 1
		}
		line := strings.TrimRight(string(body[pos:next]), "\r\n")
		if strings.TrimSpace(line) != "" {
			return line, pos, next, true
		}
		pos = next
	}
	return "", pos, pos, false
}

func checkPLYRow(el plyElement, fields []string, vertexCount int) error {
	k := 0
	for _, p := range el.props {
		if k >= len(fields) {
			return ErrTruncatedPLYData
		}
		if !p.list {
			if _, err := strconv.ParseFloat(fields[k], 64); err != nil {
				return fmt.Errorf("%w: bad number %q", ErrMalformedPLYData, fields[k])
			}
			k++
			continue
		}
		n, err := strconv.Atoi(fields[k])
		if err != nil || n < 0 {
			return fmt.Errorf("%w: bad list count %q", ErrMalformedPLYData, fields[k])
		}
		k++
		if n > len(fields)-k {
			return fmt.Errorf("%w: list of %d has %d values", ErrTruncatedPLYData, n, len(fields)-k)
		}
		for _, tok := range fields[k : k+n] {
			if el.name != "face" || !p.indices() {
				if _, err := strconv.ParseFloat(tok, 64); err != nil {
					return fmt.Errorf("%w: bad number %q", ErrMalformedPLYData, tok)
				}
				continue
			}
			idx, err := strconv.Atoi(tok)
			if err != nil {
				return fmt.Errorf("%w: bad index %q", ErrMalformedPLYData, tok)
			}
			if idx < 0 || idx >= vertexCount {
				return fmt.Errorf("%w: index %d (vertices: %d)", ErrInvalidPLYIndex, idx, vertexCount)
			}
		}
		k += n
	}
	if k != len(fields) {
		return fmt.Errorf("%w: %d extra values", ErrMalformedPLYData, len(fields)-k)
	}
	return nil
}
