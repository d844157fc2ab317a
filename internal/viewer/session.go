// Package viewer holds the state of one viewing session: the single model
// slot, camera framing, auto-rotation and the load pipeline feeding them.
// Everything here runs on the UI thread except the reads started by Pipeline.
package viewer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/internal/engine/camera"
	"github.com/Faultbox/meshview/internal/engine/mesh"
	"github.com/Faultbox/meshview/internal/engine/scene"
)

// DefaultModelPosition is where every displayed model is placed.
var DefaultModelPosition = mgl32.Vec3{0, -1, 0}

// Snapshot is the externally visible session state.
type Snapshot struct {
	Playing   bool    `json:"playing"`
	Speed     float32 `json:"speed"`
	RotationY float32 `json:"rotationY"`
	HasModel  bool    `json:"hasModel"`
	Model     string  `json:"model,omitempty"`
}

// Session owns the displayed model and the animation state.
type Session struct {
	Scene    *scene.Scene
	Camera   *camera.PerspectiveCamera
	Controls *camera.OrbitControls

	anim         AnimationState
	defaultSpeed float32
	model        *scene.Mesh

	width, height int
	resizeHooks   []func(width, height int)
}

// NewSession creates a session over an existing scene and camera.
// controls may be nil.
func NewSession(sc *scene.Scene, cam *camera.PerspectiveCamera, controls *camera.OrbitControls) *Session {
	return &Session{
		Scene:        sc,
		Camera:       cam,
		Controls:     controls,
		anim:         AnimationState{Speed: DefaultRotationSpeed},
		defaultSpeed: DefaultRotationSpeed,
	}
}

// ReplaceModel releases the displayed model, if any, and displays geometry
// with material in its place.
func (s *Session) ReplaceModel(geometry *mesh.Geometry, material *scene.Material) *scene.Mesh {
	s.ClearModel()

	m := scene.NewMesh(geometry, material)
	m.Position = DefaultModelPosition
	m.CastShadow = true
	m.ReceiveShadow = true

	s.Scene.Add(m)
	s.model = m
	return m
}

// ClearModel removes and releases the displayed model.
func (s *Session) ClearModel() {
	if s.model == nil {
		return
	}
	s.Scene.Remove(s.model)
	s.model.Dispose()
	s.model = nil
}

// Model returns the displayed model, or nil.
func (s *Session) Model() *scene.Mesh {
	return s.model
}

// Animation returns the current animation state.
func (s *Session) Animation() AnimationState {
	return s.anim
}

// SetPlaying starts or stops auto-rotation.
func (s *Session) SetPlaying(playing bool) {
	s.anim.Playing = playing
}

// TogglePlay flips auto-rotation and returns the new state.
func (s *Session) TogglePlay() bool {
	s.anim.Playing = !s.anim.Playing
	return s.anim.Playing
}

// PlayLabel is the caption of the play/pause toggle.
func (s *Session) PlayLabel() string {
	if s.anim.Playing {
		return "Pause"
	}
	return "Play"
}

// SetSpeed sets the rotation speed in radians per frame.
func (s *Session) SetSpeed(v float32) {
	s.anim.Speed = v
}

// Reset zeroes the model rotation and restores the speed the session
// started with.
// The play state is left alone. Without a model it does nothing.
func (s *Session) Reset() {
	if s.model == nil {
		return
	}
	s.model.Rotation = mgl32.Vec3{}
	s.anim.Speed = s.defaultSpeed
}

// Frame advances one rendered frame.
func (s *Session) Frame() {
	if s.anim.Playing && s.model != nil {
		s.model.Rotation[1] += s.anim.Speed
	}
	if s.Controls != nil {
		s.Controls.Update()
	}
}

// OnResize registers fn to run on every viewport resize.
func (s *Session) OnResize(fn func(width, height int)) {
	s.resizeHooks = append(s.resizeHooks, fn)
}

// Resize updates the camera aspect for a viewport of width x height pixels
// and runs the resize hooks. Empty viewports are ignored.
func (s *Session) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.width, s.height = width, height
	s.Camera.SetAspect(float32(width) / float32(height))
	for _, fn := range s.resizeHooks {
		fn(width, height)
	}
}

// ViewportSize returns the last size passed to Resize.
func (s *Session) ViewportSize() (width, height int) {
	return s.width, s.height
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Playing: s.anim.Playing,
		Speed:   s.anim.Speed,
	}
	if s.model != nil {
		snap.HasModel = true
		snap.Model = s.model.Name
		snap.RotationY = s.model.Rotation[1]
	}
	return snap
}
