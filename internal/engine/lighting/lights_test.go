package lighting

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestDirectionalLight_Direction(t *testing.T) {
	l := NewDirectionalLight(mgl32.Vec3{10, 20, 10}, 5)

	dir := l.Direction()
	if !dir.ApproxEqualThreshold(mgl32.Vec3{10, 20, 10}.Normalize(), 1e-6) {
		t.Errorf("expected direction towards light, got %v", dir)
	}

	l.Position = l.Target
	if l.Direction() != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("expected +Y fallback, got %v", l.Direction())
	}
}

func TestRadiance(t *testing.T) {
	sun := NewDirectionalLight(mgl32.Vec3{0, 1, 0}, 5)
	if sun.Radiance() != (mgl32.Vec3{5, 5, 5}) {
		t.Errorf("expected (5,5,5), got %v", sun.Radiance())
	}

	amb := AmbientLight{Color: ColorFromHex(0x404040), Intensity: 10}
	want := float32(0x40) / 255 * 10
	if got := amb.Radiance()[0]; got < want-1e-5 || got > want+1e-5 {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    mgl32.Vec3
		wantErr bool
	}{
		{"#ffffff", mgl32.Vec3{1, 1, 1}, false},
		{"0x000000", mgl32.Vec3{0, 0, 0}, false},
		{"ff0000", mgl32.Vec3{1, 0, 0}, false},
		{"LightBlue", ColorFromHex(0xadd8e6), false},
		{"#fff", mgl32.Vec3{}, true},
		{"#gggggg", mgl32.Vec3{}, true},
		{"", mgl32.Vec3{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
