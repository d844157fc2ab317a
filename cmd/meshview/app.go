package main

import (
	"context"
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/backend/sdlbackend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/internal/engine/debug"
	"github.com/Faultbox/meshview/internal/engine/renderer"
	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/internal/remote"
	"github.com/Faultbox/meshview/internal/viewer"
)

const (
	notificationDuration = 3 * time.Second
	shutdownTimeout      = 2 * time.Second
)

// App is the viewer window: session, pipeline and renderer driven by the
// imgui backend loop.
type App struct {
	cfg     *config.Config
	backend backend.Backend[sdlbackend.SDLWindowFlags]

	session  *viewer.Session
	pipeline *viewer.Pipeline
	renderer *renderer.Renderer
	remote   *remote.Server

	screenshots         *debug.ScreenshotCapture
	screenshotRequested bool

	// File dialog results, handed to the main thread
	picked chan string

	// UI state
	showBounds    bool
	pointer       viewer.Pointer
	notification  string
	notifiedAt    time.Time
	lastPublished viewer.Snapshot
	published     bool

	log *zap.Logger
}

// NewApp creates the window and everything drawn into it.
func NewApp(cfg *config.Config) (*App, error) {
	app := &App{
		cfg:         cfg,
		picked:      make(chan string, 1),
		screenshots: debug.NewScreenshotCapture(cfg.Screenshots.Dir, "screenshot"),
		log:         logger.Named("app"),
	}

	session, err := viewer.NewSessionFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	app.session = session

	app.backend, err = backend.CreateBackend(sdlbackend.NewSDLBackend())
	if err != nil {
		return nil, fmt.Errorf("creating backend: %w", err)
	}
	app.backend.SetBgColor(imgui.NewVec4(0, 0, 0, 1))
	app.backend.SetTargetFPS(cfg.Window.TargetFPS)
	app.backend.CreateWindow(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)

	// Function pointers are only available once the window owns a context
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	app.renderer, err = renderer.New(renderer.Config{
		Width:         int32(cfg.Window.Width),
		Height:        int32(cfg.Window.Height),
		Samples:       int32(cfg.Window.MSAASamples),
		ShadowMapSize: int32(cfg.Lighting.Sun.Shadow.MapSize),
	})
	if err != nil {
		return nil, err
	}

	app.session.OnResize(func(width, height int) {
		if err := app.renderer.Resize(int32(width), int32(height)); err != nil {
			app.log.Error("resize failed", zap.Error(err))
		}
	})
	app.backend.SetSizeChangeCallback(func(width, height int) {
		app.session.Resize(width, height)
	})
	app.backend.SetDropCallback(app.onDrop)

	app.pipeline = viewer.NewPipeline(app.session, viewer.PipelineConfig{
		Fetch:    viewer.NewFetchSource(cfg.Model.FetchTimeout),
		Notifier: viewer.NotifierFunc(showError),
	})
	app.pipeline.OnStateChange(app.onRequestState)

	if cfg.Remote.Enabled {
		app.remote = remote.New(cfg.Remote)
		if err := app.remote.Start(); err != nil {
			// Remote control is optional; the viewer keeps running without it
			app.log.Error("remote control unavailable", zap.Error(err))
			app.remote = nil
		}
	}

	if cfg.Model.URL != "" {
		// Failures are logged by the pipeline
		_, _ = app.pipeline.LoadURL(cfg.Model.URL, cfg.Model.Format)
	}

	return app, nil
}

// Run starts the main loop and returns when the window closes.
func (app *App) Run() {
	app.backend.Run(app.render)
}

// Close releases resources in reverse order of creation.
func (app *App) Close() {
	if app.pipeline != nil {
		app.pipeline.Close()
	}
	if app.remote != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := app.remote.Shutdown(ctx); err != nil {
			app.log.Warn("remote shutdown", zap.Error(err))
		}
		cancel()
	}
	if app.session != nil {
		app.session.ClearModel()
	}
	if app.renderer != nil {
		app.renderer.Close()
	}
}

// render is called each frame by the backend.
func (app *App) render() {
	// Deferred capture so the previous frame is complete
	if app.screenshotRequested {
		app.screenshotRequested = false
		app.captureScreenshot()
	}

	app.processPending()
	app.handleShortcuts()

	app.session.Frame()
	texture := app.renderer.Render(app.session.Scene, app.session.Camera,
		renderer.Options{ShowBounds: app.showBounds})

	app.renderViewport(texture)
	app.renderControls()
	app.renderNotification()

	app.publishState()
}

// processPending applies work handed over from other goroutines.
func (app *App) processPending() {
	select {
	case path := <-app.picked:
		app.pipeline.OnFileSelected(path)
	default:
	}

	app.pipeline.Poll()

	if app.remote != nil {
		app.remote.Drain(func(cmd remote.Command) {
			if err := remote.Apply(cmd, app.session, app.pipeline); err != nil {
				app.log.Warn("remote command failed", zap.String("action", cmd.Action), zap.Error(err))
			}
		})
	}
}

func (app *App) handleShortcuts() {
	if imgui.IsKeyChordPressed(imgui.KeyChord(imgui.KeyF12)) {
		app.screenshotRequested = true
	}
	if imgui.IsAnyItemActive() {
		return
	}
	if imgui.IsKeyChordPressed(imgui.KeyChord(imgui.KeySpace)) {
		app.session.TogglePlay()
	}
	if imgui.IsKeyChordPressed(imgui.KeyChord(imgui.KeyB)) {
		app.showBounds = !app.showBounds
	}
	ctrlO := imgui.KeyChord(imgui.ModCtrl) | imgui.KeyChord(imgui.KeyO)
	if imgui.IsKeyChordPressed(ctrlO) {
		app.openFileDialog()
	}
}

// openFileDialog shows the native picker without blocking the frame loop.
func (app *App) openFileDialog() {
	go func() {
		filename, err := dialog.File().
			Filter("3D Models", "stl", "ply").
			Title("Open Model").
			Load()
		if err != nil {
			if err != dialog.ErrCancelled {
				app.log.Error("file dialog failed", zap.Error(err))
			}
			return
		}

		// Keep only the newest pick
		select {
		case <-app.picked:
		default:
		}
		app.picked <- filename
	}()
}

// onDrop loads the last dropped file.
func (app *App) onDrop(paths []string) {
	if len(paths) == 0 {
		return
	}
	app.pipeline.OnFileSelected(paths[len(paths)-1])
}

func (app *App) onRequestState(req viewer.Request) {
	if req.State == viewer.StateDisplayed {
		app.backend.SetWindowTitle(fmt.Sprintf("%s - %s", app.cfg.Window.Title, req.Name))
	}
}

func (app *App) captureScreenshot() {
	pixels, width, height := app.renderer.Pixels()
	path, err := app.screenshots.CaptureFromPixels(pixels, width, height)
	if err != nil {
		app.log.Error("screenshot failed", zap.Error(err))
		app.showNotification(fmt.Sprintf("Screenshot failed: %v", err))
		return
	}
	app.log.Info("screenshot saved", zap.String("path", path))
	app.showNotification(fmt.Sprintf("Saved: %s", path))
}

// publishState pushes the session state to remote clients when it changed.
func (app *App) publishState() {
	if app.remote == nil {
		return
	}
	snap := app.session.Snapshot()
	if app.published && snap == app.lastPublished {
		return
	}
	app.remote.Publish(snap)
	app.lastPublished = snap
	app.published = true
}

func (app *App) showNotification(msg string) {
	app.notification = msg
	app.notifiedAt = time.Now()
}

// showError blocks on a native message box, like a browser alert.
func showError(title, message string) {
	dialog.Message("%s", message).Title(title).Error()
}
