package viewer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/internal/engine/camera"
	"github.com/Faultbox/meshview/internal/engine/lighting"
	"github.com/Faultbox/meshview/internal/engine/scene"
)

// NewSceneFromConfig builds the background, ground and lights.
func NewSceneFromConfig(cfg *config.Config) (*scene.Scene, error) {
	sc := scene.New()

	bg, err := lighting.ParseColor(cfg.Scene.Background)
	if err != nil {
		return nil, fmt.Errorf("scene background: %w", err)
	}
	sc.Background = bg

	if g := cfg.Scene.Ground; g.Enabled {
		color, err := lighting.ParseColor(g.Color)
		if err != nil {
			return nil, fmt.Errorf("ground color: %w", err)
		}
		sc.Ground = scene.NewGround(g.Size, g.Y, color, g.Opacity)
	}

	sunCfg := cfg.Lighting.Sun
	sun := lighting.NewDirectionalLight(mgl32.Vec3(sunCfg.Position), sunCfg.Intensity)
	if sun.Color, err = lighting.ParseColor(sunCfg.Color); err != nil {
		return nil, fmt.Errorf("sun color: %w", err)
	}
	sun.CastShadow = sunCfg.CastShadow
	sh := sunCfg.Shadow
	sun.Shadow = lighting.ShadowCamera{
		MapSize: int32(sh.MapSize),
		Near:    sh.Near,
		Far:     sh.Far,
		Left:    -sh.Extent,
		Right:   sh.Extent,
		Top:     sh.Extent,
		Bottom:  -sh.Extent,
		Bias:    sh.Bias,
	}
	sc.Sun = sun

	ambient, err := lighting.ParseColor(cfg.Lighting.Ambient.Color)
	if err != nil {
		return nil, fmt.Errorf("ambient color: %w", err)
	}
	sc.Ambient = lighting.AmbientLight{Color: ambient, Intensity: cfg.Lighting.Ambient.Intensity}

	return sc, nil
}

// NewSessionFromConfig builds the scene, camera and orbit controls and wraps
// them in a session with the configured animation state.
func NewSessionFromConfig(cfg *config.Config) (*Session, error) {
	sc, err := NewSceneFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	c := cfg.Camera
	aspect := float32(cfg.Window.Width) / float32(cfg.Window.Height)
	cam := camera.NewPerspectiveCamera(c.FOV, aspect, c.Near, c.Far)
	cam.Position = mgl32.Vec3(c.Position)
	cam.LookAt(mgl32.Vec3{})

	controls := camera.NewOrbitControls(cam)
	controls.EnableDamping = c.Damping
	controls.DampingFactor = c.DampingFactor

	s := NewSession(sc, cam, controls)
	s.anim = AnimationState{Playing: cfg.Animation.Playing, Speed: cfg.Animation.Speed}
	s.defaultSpeed = cfg.Animation.Speed
	s.width, s.height = cfg.Window.Width, cfg.Window.Height
	return s, nil
}
