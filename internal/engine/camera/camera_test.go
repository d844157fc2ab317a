package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func newTestControls() (*PerspectiveCamera, *OrbitControls) {
	cam := NewPerspectiveCamera(75, 800.0/500.0, 0.1, 1000)
	cam.Position = mgl32.Vec3{0, 0, 10}
	controls := NewOrbitControls(cam)
	controls.EnableDamping = true
	controls.Update()
	return cam, controls
}

func TestPerspectiveCamera_SetAspect(t *testing.T) {
	cam := NewPerspectiveCamera(75, 1.6, 0.1, 1000)

	cam.SetAspect(2)
	if cam.Aspect != 2 {
		t.Errorf("expected aspect 2, got %f", cam.Aspect)
	}
	cam.SetAspect(0)
	if cam.Aspect != 2 {
		t.Errorf("expected zero aspect to be ignored, got %f", cam.Aspect)
	}

	// Wider aspect shrinks the horizontal scale of the projection
	before := cam.ProjectionMatrix().At(0, 0)
	cam.SetAspect(4)
	if after := cam.ProjectionMatrix().At(0, 0); after >= before {
		t.Errorf("expected x scale to shrink, got %f -> %f", before, after)
	}
}

func TestPerspectiveCamera_ViewMatrix(t *testing.T) {
	cam := NewPerspectiveCamera(75, 1, 0.1, 1000)
	cam.Position = mgl32.Vec3{0, 0, 5}
	cam.LookAt(mgl32.Vec3{})

	p := mgl32.TransformCoordinate(mgl32.Vec3{}, cam.ViewMatrix())
	if !p.ApproxEqualThreshold(mgl32.Vec3{0, 0, -5}, 1e-5) {
		t.Errorf("expected target 5 units ahead, got %v", p)
	}
}

func TestOrbitControls_DampingEasesOut(t *testing.T) {
	cam, controls := newTestControls()

	// Half the viewport height is half a turn
	controls.HandleDrag(250, 0, 500)

	controls.Update()
	_, theta, _ := toSpherical(cam.Position)
	want := float32(-math.Pi * 0.05)
	if math.Abs(float64(theta-want)) > 1e-4 {
		t.Errorf("expected first frame to apply 5%%: theta %f, got %f", want, theta)
	}

	for i := 0; i < 400; i++ {
		controls.Update()
	}
	_, theta, _ = toSpherical(cam.Position)
	if math.Abs(math.Abs(float64(theta))-math.Pi) > 1e-3 {
		t.Errorf("expected damping to converge to half a turn, got theta %f", theta)
	}

	if controls.Update() {
		t.Error("expected controls to settle")
	}
}

func TestOrbitControls_NoDamping(t *testing.T) {
	cam, controls := newTestControls()
	controls.EnableDamping = false

	controls.HandleDrag(0, 125, 500)
	controls.Update()

	// A quarter turn upward puts the camera above the target (clamped off the pole)
	if cam.Position[1] < 9.99 {
		t.Errorf("expected camera above target, got %v", cam.Position)
	}
}

func TestOrbitControls_Zoom(t *testing.T) {
	cam, controls := newTestControls()

	controls.HandleZoom(1)
	controls.Update()
	if d := cam.Position.Len(); math.Abs(float64(d)-9.5) > 1e-4 {
		t.Errorf("expected distance 9.5, got %f", d)
	}

	controls.HandleZoom(-1)
	controls.Update()
	if d := cam.Position.Len(); math.Abs(float64(d)-10) > 1e-4 {
		t.Errorf("expected distance 10, got %f", d)
	}

	controls.MaxDistance = 5
	controls.Update()
	if d := cam.Position.Len(); math.Abs(float64(d)-5) > 1e-4 {
		t.Errorf("expected clamp to 5, got %f", d)
	}
}

func TestOrbitControls_TargetFollowsCamera(t *testing.T) {
	cam, controls := newTestControls()
	controls.EnableDamping = false

	controls.Target = mgl32.Vec3{1, 2, 3}
	cam.Position = mgl32.Vec3{1, 2, 8}
	controls.Update()

	if cam.Target() != controls.Target {
		t.Errorf("expected camera to look at %v, got %v", controls.Target, cam.Target())
	}
	if !cam.Position.ApproxEqualThreshold(mgl32.Vec3{1, 2, 8}, 1e-4) {
		t.Errorf("expected position unchanged, got %v", cam.Position)
	}
}

func TestOrbitControls_Pan(t *testing.T) {
	cam, controls := newTestControls()
	controls.EnableDamping = false

	controls.HandlePan(100, 0, 500)
	controls.Update()

	// Dragging right moves the target left along -X
	if controls.Target[0] >= 0 {
		t.Errorf("expected target to move left, got %v", controls.Target)
	}
	if math.Abs(float64(cam.Position[0]-controls.Target[0])) > 1e-4 {
		t.Errorf("expected camera to move with target, got %v", cam.Position)
	}
}
