package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 800 || cfg.Window.Height != 500 {
		t.Errorf("expected 800x500 window, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Scene.Background != "lightblue" {
		t.Errorf("expected lightblue background, got %s", cfg.Scene.Background)
	}
	if cfg.Scene.Ground.Y != -2 || cfg.Scene.Ground.Size != 50 {
		t.Errorf("expected 50 unit ground at y=-2, got %v at %v", cfg.Scene.Ground.Size, cfg.Scene.Ground.Y)
	}

	sun := cfg.Lighting.Sun
	if sun.Position != [3]float32{10, 20, 10} {
		t.Errorf("expected sun at (10,20,10), got %v", sun.Position)
	}
	if sun.Intensity != 5 {
		t.Errorf("expected sun intensity 5, got %f", sun.Intensity)
	}
	if sun.Shadow.MapSize != 4096 {
		t.Errorf("expected shadow map 4096, got %d", sun.Shadow.MapSize)
	}
	if cfg.Lighting.Ambient.Intensity != 10 {
		t.Errorf("expected ambient intensity 10, got %f", cfg.Lighting.Ambient.Intensity)
	}

	if cfg.Camera.FOV != 75 {
		t.Errorf("expected fov 75, got %f", cfg.Camera.FOV)
	}
	if cfg.Camera.Position != [3]float32{3, 3, 8} {
		t.Errorf("expected camera at (3,3,8), got %v", cfg.Camera.Position)
	}
	if cfg.Camera.DampingFactor != 0.05 {
		t.Errorf("expected damping factor 0.05, got %f", cfg.Camera.DampingFactor)
	}

	if cfg.Animation.Playing {
		t.Error("expected animation paused by default")
	}
	if cfg.Animation.Speed != 0.01 {
		t.Errorf("expected speed 0.01, got %f", cfg.Animation.Speed)
	}

	if cfg.Model.FetchTimeout != 30*time.Second {
		t.Errorf("expected fetch timeout 30s, got %v", cfg.Model.FetchTimeout)
	}
	if cfg.Remote.Enabled {
		t.Error("expected remote control disabled by default")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)

	yamlContent := `
window:
  width: 1280
  height: 720
  target_fps: 30

scene:
  background: "#202020"
  ground:
    enabled: false

lighting:
  sun:
    position: [0, 30, 0]
    shadow:
      map_size: 1024

camera:
  fov: 60
  damping: false

animation:
  playing: true
  speed: 0.02

model:
  url: "https://example.com/bunny.ply"
  format: "ply"
  fetch_timeout: 5s

remote:
  enabled: true
  addr: "0.0.0.0:9000"
  allowed_origins: ["http://localhost:3000"]

logging:
  level: "debug"
  log_file: "meshview.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1280 || cfg.Window.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Window.TargetFPS != 30 {
		t.Errorf("expected 30 fps, got %d", cfg.Window.TargetFPS)
	}
	if cfg.Window.Title != "meshview" {
		t.Errorf("expected title kept from defaults, got %q", cfg.Window.Title)
	}
	if cfg.Scene.Background != "#202020" {
		t.Errorf("expected background #202020, got %s", cfg.Scene.Background)
	}
	if cfg.Scene.Ground.Enabled {
		t.Error("expected ground disabled")
	}
	if cfg.Scene.Ground.Size != 50 {
		t.Errorf("expected ground size kept from defaults, got %f", cfg.Scene.Ground.Size)
	}
	if cfg.Lighting.Sun.Position != [3]float32{0, 30, 0} {
		t.Errorf("expected sun at (0,30,0), got %v", cfg.Lighting.Sun.Position)
	}
	if cfg.Lighting.Sun.Shadow.MapSize != 1024 {
		t.Errorf("expected shadow map 1024, got %d", cfg.Lighting.Sun.Shadow.MapSize)
	}
	if cfg.Lighting.Sun.Shadow.Far != 50 {
		t.Errorf("expected shadow far kept from defaults, got %f", cfg.Lighting.Sun.Shadow.Far)
	}
	if cfg.Camera.FOV != 60 || cfg.Camera.Damping {
		t.Errorf("expected fov 60 without damping, got %f/%v", cfg.Camera.FOV, cfg.Camera.Damping)
	}
	if !cfg.Animation.Playing || cfg.Animation.Speed != 0.02 {
		t.Errorf("expected playing at 0.02, got %v/%f", cfg.Animation.Playing, cfg.Animation.Speed)
	}
	if cfg.Model.URL != "https://example.com/bunny.ply" || cfg.Model.Format != "ply" {
		t.Errorf("unexpected model config %+v", cfg.Model)
	}
	if cfg.Model.FetchTimeout != 5*time.Second {
		t.Errorf("expected fetch timeout 5s, got %v", cfg.Model.FetchTimeout)
	}
	if !cfg.Remote.Enabled || cfg.Remote.Addr != "0.0.0.0:9000" {
		t.Errorf("unexpected remote config %+v", cfg.Remote)
	}
	if len(cfg.Remote.AllowedOrigins) != 1 {
		t.Errorf("expected 1 allowed origin, got %v", cfg.Remote.AllowedOrigins)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "meshview.log" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/meshview.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"fov too wide", func(c *Config) { c.Camera.FOV = 180 }},
		{"far before near", func(c *Config) { c.Camera.Far = 0.05 }},
		{"damping above one", func(c *Config) { c.Camera.DampingFactor = 1.5 }},
		{"negative speed", func(c *Config) { c.Animation.Speed = -0.01 }},
		{"negative shadow map", func(c *Config) { c.Lighting.Sun.Shadow.MapSize = -1 }},
		{"remote without addr", func(c *Config) { c.Remote.Enabled = true; c.Remote.Addr = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, FileName)
	if err := os.WriteFile(configPath, []byte("window:\n  width: 640\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Errorf("expected to find %s in current directory", FileName)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 1920
				*flagHeight = 1080
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 {
					t.Errorf("expected 1920x1080, got %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name: "model and format flags",
			setup: func() {
				*flagModel = "models/part.ply"
				*flagFormat = "ply"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Model.URL != "models/part.ply" || cfg.Model.Format != "ply" {
					t.Errorf("unexpected model config %+v", cfg.Model)
				}
			},
			teardown: func() {
				*flagModel = ""
				*flagFormat = ""
			},
		},
		{
			name:  "remote flag",
			setup: func() { *flagRemote = "127.0.0.1:9999" },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Remote.Enabled || cfg.Remote.Addr != "127.0.0.1:9999" {
					t.Errorf("unexpected remote config %+v", cfg.Remote)
				}
			},
			teardown: func() { *flagRemote = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)

	yamlContent := `
window:
  width: 1600
  height: 900
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width from flag, height from file
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(configPath, []byte("camera:\n  fov: 0\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := Default()
	cfg.Model.URL = "file:///tmp/cube.stl"
	cfg.Lighting.Sun.Intensity = 3

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.Model.URL != cfg.Model.URL {
		t.Errorf("expected url %s, got %s", cfg.Model.URL, loaded.Model.URL)
	}
	if loaded.Lighting.Sun.Intensity != 3 {
		t.Errorf("expected intensity 3, got %f", loaded.Lighting.Sun.Intensity)
	}
	if loaded.Model.FetchTimeout != 30*time.Second {
		t.Errorf("expected fetch timeout 30s, got %v", loaded.Model.FetchTimeout)
	}
}
