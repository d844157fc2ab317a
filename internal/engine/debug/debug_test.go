package debug

import (
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/internal/engine/mesh"
)

func TestBoxLines(t *testing.T) {
	b := mesh.Box{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 2, 3}}

	lines := BoxLines(b, 0)
	if len(lines) != BoxLineVertexCount {
		t.Fatalf("expected %d vertices, got %d", BoxLineVertexCount, len(lines))
	}

	var total float32
	for i := 0; i < len(lines); i += 2 {
		total += lines[i+1].Sub(lines[i]).Len()
	}
	// 4 edges per axis
	if want := float32(4 * (1 + 2 + 3)); total != want {
		t.Errorf("expected total edge length %f, got %f", want, total)
	}

	padded := BoxLines(b, 0.5)
	for _, v := range padded {
		for i := 0; i < 3; i++ {
			if v[i] != b.Min[i]-0.5 && v[i] != b.Max[i]+0.5 {
				t.Fatalf("vertex %v not on the padded box", v)
			}
		}
	}

	if BoxLines(mesh.EmptyBox(), 1) != nil {
		t.Error("expected no lines for an empty box")
	}
}

func TestCaptureFromPixels(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	sc := NewScreenshotCapture(dir, "screenshot")
	sc.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

	// 1x2 image: bottom row red, top row blue (OpenGL order)
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	path, err := sc.CaptureFromPixels(pixels, 1, 2)
	if err != nil {
		t.Fatalf("CaptureFromPixels failed: %v", err)
	}
	if filepath.Base(path) != "screenshot-20240506-070809.png" {
		t.Errorf("unexpected filename %s", path)
	}

	for _, p := range []string{path, filepath.Join(dir, LatestName)} {
		f, err := os.Open(p)
		if err != nil {
			t.Fatalf("opening %s: %v", p, err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("decoding %s: %v", p, err)
		}
		r, _, b, _ := img.At(0, 0).RGBA()
		if r != 0 || b != 0xffff {
			t.Errorf("%s: expected blue top row, got r=%d b=%d", p, r, b)
		}
		r, _, b, _ = img.At(0, 1).RGBA()
		if r != 0xffff || b != 0 {
			t.Errorf("%s: expected red bottom row, got r=%d b=%d", p, r, b)
		}
	}
}

func TestCaptureFromPixels_SizeMismatch(t *testing.T) {
	sc := NewScreenshotCapture(t.TempDir(), "screenshot")
	if _, err := sc.CaptureFromPixels(make([]byte, 7), 1, 2); !errors.Is(err, ErrPixelSize) {
		t.Errorf("expected ErrPixelSize, got %v", err)
	}
	if _, err := sc.CaptureFromPixels(nil, 0, 0); !errors.Is(err, ErrPixelSize) {
		t.Errorf("expected ErrPixelSize for empty image, got %v", err)
	}
}
