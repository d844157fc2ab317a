// Package formats provides parsers for the mesh file formats the viewer opens.
package formats

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a supported mesh file format.
type Format string

const (
	FormatSTL Format = "stl"
	FormatPLY Format = "ply"
)

// Shared format errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported mesh format")
	ErrEmptyData         = errors.New("empty mesh data")
)

// String returns the lowercase format name.
func (f Format) String() string {
	return string(f)
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// SupportedFormats lists every format the viewer can decode, in picker order.
func SupportedFormats() []Format {
	return []Format{FormatSTL, FormatPLY}
}

// DetectFormat derives the format from a file name's extension.
// Matching is case-insensitive; names without an extension are unsupported.
func DetectFormat(name string) (Format, error) {
	ext := filepath.Ext(name)
	if ext == "" || ext == "." {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, filepath.Base(name))
	}
	return ParseFormat(ext[1:])
}

// ParseFormat converts a format name ("stl", "PLY", ...) to a Format.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatSTL:
		return FormatSTL, nil
	case FormatPLY:
		return FormatPLY, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}
