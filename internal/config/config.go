// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all viewer settings.
type Config struct {
	Window      WindowConfig     `yaml:"window"`
	Scene       SceneConfig      `yaml:"scene"`
	Lighting    LightingConfig   `yaml:"lighting"`
	Camera      CameraConfig     `yaml:"camera"`
	Animation   AnimationConfig  `yaml:"animation"`
	Model       ModelConfig      `yaml:"model"`
	Remote      RemoteConfig     `yaml:"remote"`
	Screenshots ScreenshotConfig `yaml:"screenshots"`
	Logging     LoggingConfig    `yaml:"logging"`
}

// WindowConfig holds window and output settings.
type WindowConfig struct {
	Title       string `yaml:"title"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	TargetFPS   uint   `yaml:"target_fps"`
	MSAASamples int    `yaml:"msaa_samples"`
}

// SceneConfig holds the background and ground plane.
type SceneConfig struct {
	Background string       `yaml:"background"` // "#rrggbb" or a CSS color name
	Ground     GroundConfig `yaml:"ground"`
}

// GroundConfig describes the shadow-catching ground plane.
type GroundConfig struct {
	Enabled bool    `yaml:"enabled"`
	Size    float32 `yaml:"size"`
	Y       float32 `yaml:"y"`
	Color   string  `yaml:"color"`
	Opacity float32 `yaml:"opacity"`
}

// LightingConfig holds the sun and ambient light.
type LightingConfig struct {
	Sun     SunConfig     `yaml:"sun"`
	Ambient AmbientConfig `yaml:"ambient"`
}

// SunConfig describes the directional light.
type SunConfig struct {
	Position   [3]float32   `yaml:"position"`
	Color      string       `yaml:"color"`
	Intensity  float32      `yaml:"intensity"`
	CastShadow bool         `yaml:"cast_shadow"`
	Shadow     ShadowConfig `yaml:"shadow"`
}

// ShadowConfig describes the sun's shadow map and frustum.
type ShadowConfig struct {
	MapSize int     `yaml:"map_size"`
	Bias    float32 `yaml:"bias"`
	Near    float32 `yaml:"near"`
	Far     float32 `yaml:"far"`
	Extent  float32 `yaml:"extent"` // half width of the square frustum
}

// AmbientConfig describes the ambient light.
type AmbientConfig struct {
	Color     string  `yaml:"color"`
	Intensity float32 `yaml:"intensity"`
}

// CameraConfig holds projection and orbit settings.
type CameraConfig struct {
	FOV           float32    `yaml:"fov"`
	Near          float32    `yaml:"near"`
	Far           float32    `yaml:"far"`
	Position      [3]float32 `yaml:"position"`
	Damping       bool       `yaml:"damping"`
	DampingFactor float32    `yaml:"damping_factor"`
}

// AnimationConfig holds the initial auto-rotation state.
type AnimationConfig struct {
	Playing bool    `yaml:"playing"`
	Speed   float32 `yaml:"speed"` // radians per frame
}

// ModelConfig holds the model loaded at startup.
type ModelConfig struct {
	URL          string        `yaml:"url"` // http(s) URL, file:// URL or path; empty loads nothing
	Format       string        `yaml:"format"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// RemoteConfig holds the websocket control endpoint.
type RemoteConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"` // empty allows same-host only
}

// ScreenshotConfig holds screenshot output settings.
type ScreenshotConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the stock viewer look.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:       "meshview",
			Width:       800,
			Height:      500,
			TargetFPS:   60,
			MSAASamples: 4,
		},
		Scene: SceneConfig{
			Background: "lightblue",
			Ground: GroundConfig{
				Enabled: true,
				Size:    50,
				Y:       -2,
				Color:   "#111111",
				Opacity: 0.3,
			},
		},
		Lighting: LightingConfig{
			Sun: SunConfig{
				Position:   [3]float32{10, 20, 10},
				Color:      "#ffffff",
				Intensity:  5,
				CastShadow: true,
				Shadow: ShadowConfig{
					MapSize: 4096,
					Bias:    -0.0001,
					Near:    0.5,
					Far:     50,
					Extent:  20,
				},
			},
			Ambient: AmbientConfig{
				Color:     "#404040",
				Intensity: 10,
			},
		},
		Camera: CameraConfig{
			FOV:           75,
			Near:          0.1,
			Far:           1000,
			Position:      [3]float32{3, 3, 8},
			Damping:       true,
			DampingFactor: 0.05,
		},
		Animation: AnimationConfig{
			Playing: false,
			Speed:   0.01,
		},
		Model: ModelConfig{
			Format:       "stl",
			FetchTimeout: 30 * time.Second,
		},
		Remote: RemoteConfig{
			Enabled: false,
			Addr:    "127.0.0.1:8765",
		},
		Screenshots: ScreenshotConfig{
			Dir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first setting the viewer cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180:
		return fmt.Errorf("%w: camera fov %v", ErrInvalid, c.Camera.FOV)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: camera clip range %v..%v", ErrInvalid, c.Camera.Near, c.Camera.Far)
	case c.Camera.DampingFactor < 0 || c.Camera.DampingFactor > 1:
		return fmt.Errorf("%w: damping factor %v", ErrInvalid, c.Camera.DampingFactor)
	case c.Animation.Speed < 0:
		return fmt.Errorf("%w: negative rotation speed %v", ErrInvalid, c.Animation.Speed)
	case c.Lighting.Sun.Shadow.MapSize < 0:
		return fmt.Errorf("%w: shadow map size %d", ErrInvalid, c.Lighting.Sun.Shadow.MapSize)
	case c.Remote.Enabled && c.Remote.Addr == "":
		return fmt.Errorf("%w: remote enabled without addr", ErrInvalid)
	}
	return nil
}
