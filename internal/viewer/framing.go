package viewer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/internal/engine/scene"
)

// Camera distance as a multiple of the model's bounding-box diagonal.
// Startup loads sit further back than uploads.
const (
	URLDistanceScale    float32 = 1.5
	UploadDistanceScale float32 = 1 / 1.5
)

// CameraFrame is the camera placement chosen for a model.
type CameraFrame struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
}

// FrameFor computes the frame for a model: the camera sits on the +Z side of
// the world bounding-box center at size*distanceScale, looking at the center.
func FrameFor(model *scene.Mesh, distanceScale float32) CameraFrame {
	box := model.WorldBounds()
	center, size := model.Position, float32(1)
	if !box.IsEmpty() {
		center = box.Center()
		// A single point still needs the camera off the target
		if d := box.Diagonal(); d > 1e-6 {
			size = d
		}
	}
	return CameraFrame{
		Position: center.Add(mgl32.Vec3{0, 0, size * distanceScale}),
		Target:   center,
	}
}

// FrameOn moves the camera and orbit target onto model and returns the frame.
func (s *Session) FrameOn(model *scene.Mesh, distanceScale float32) CameraFrame {
	frame := FrameFor(model, distanceScale)

	s.Camera.Position = frame.Position
	s.Camera.LookAt(frame.Target)
	if s.Controls != nil {
		s.Controls.Stop()
		s.Controls.Target = frame.Target
		s.Controls.Update()
		frame.Position = s.Camera.Position
	}
	return frame
}
