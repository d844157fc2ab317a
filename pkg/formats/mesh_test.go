package formats

import (
	"errors"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"model.stl", FormatSTL, false},
		{"MODEL.STL", FormatSTL, false},
		{"/tmp/scans/bunny.Ply", FormatPLY, false},
		{"mesh.ply", FormatPLY, false},
		{"model.obj", "", true},
		{"archive.stl.zip", "", true},
		{"noextension", "", true},
		{"trailingdot.", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("expected ErrUnsupportedFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(" PLY "); err != nil || f != FormatPLY {
		t.Errorf("expected ply, got %q (%v)", f, err)
	}
	if f, err := ParseFormat("stl"); err != nil || f != FormatSTL {
		t.Errorf("expected stl, got %q (%v)", f, err)
	}
	if _, err := ParseFormat("gltf"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestFormatExtension(t *testing.T) {
	if FormatSTL.Extension() != ".stl" {
		t.Errorf("expected .stl, got %s", FormatSTL.Extension())
	}
	if len(SupportedFormats()) != 2 {
		t.Errorf("expected 2 supported formats, got %d", len(SupportedFormats()))
	}
}
