package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagWidth  = flag.Int("width", 0, "Window width")
	flagHeight = flag.Int("height", 0, "Window height")
	flagModel  = flag.String("model", "", "Model to load at startup (URL or path)")
	flagFormat = flag.String("format", "", "Format of -model: stl or ply")
	flagRemote = flag.String("remote", "", "Enable the websocket control endpoint on this address")
	flagSave   = flag.Bool("save-config", false, "Write the effective config to the user config directory and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveRequested reports whether --save-config was given.
func SaveRequested() bool {
	return *flagSave
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagModel != "" {
		cfg.Model.URL = *flagModel
	}
	if *flagFormat != "" {
		cfg.Model.Format = *flagFormat
	}
	if *flagRemote != "" {
		cfg.Remote.Enabled = true
		cfg.Remote.Addr = *flagRemote
	}
}
