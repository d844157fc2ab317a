package main

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/meshview/internal/viewer"
)

const controlsWidth = float32(260)

// renderViewport fills the window with the rendered scene and feeds mouse
// input over it to the orbit controls.
func (app *App) renderViewport(texture uint32) {
	viewport := imgui.MainViewport()
	imgui.SetNextWindowPos(viewport.Pos())
	imgui.SetNextWindowSize(viewport.Size())

	flags := imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoMove |
		imgui.WindowFlagsNoScrollbar | imgui.WindowFlagsNoCollapse | imgui.WindowFlagsNoBringToFrontOnFocus

	imgui.PushStyleVarVec2(imgui.StyleVarWindowPadding, imgui.NewVec2(0, 0))
	if imgui.BeginV("##Viewport", nil, flags) {
		size := imgui.ContentRegionAvail()

		// Display rendered texture (flip V for OpenGL)
		texRef := imgui.NewTextureRefTextureID(imgui.TextureID(texture))
		imgui.ImageWithBgV(
			*texRef,
			size,
			imgui.NewVec2(0, 1),
			imgui.NewVec2(1, 0),
			imgui.NewVec4(0, 0, 0, 1),
			imgui.NewVec4(1, 1, 1, 1),
		)

		mouse := imgui.MousePos()
		dx, dy := app.pointer.Move(mouse.X, mouse.Y)
		if imgui.IsItemHovered() {
			app.handleOrbitInput(dx, dy, size.Y)
		}
	}
	imgui.End()
	imgui.PopStyleVar()
}

// handleOrbitInput maps left drag to rotation, right drag to panning and the
// wheel to zoom.
func (app *App) handleOrbitInput(dx, dy, viewportHeight float32) {
	controls := app.session.Controls

	switch {
	case imgui.IsMouseDragging(imgui.MouseButtonLeft):
		controls.HandleDrag(dx, dy, viewportHeight)
	case imgui.IsMouseDragging(imgui.MouseButtonRight):
		controls.HandlePan(dx, dy, viewportHeight)
	}

	if wheel := imgui.CurrentIO().MouseWheel(); wheel != 0 {
		controls.HandleZoom(wheel)
	}
}

// renderControls draws the floating control panel.
func (app *App) renderControls() {
	pos := imgui.MainViewport().WorkPos()
	imgui.SetNextWindowPos(imgui.NewVec2(pos.X+10, pos.Y+10))
	imgui.SetNextWindowSize(imgui.NewVec2(controlsWidth, 0))
	imgui.SetNextWindowBgAlpha(0.8)

	flags := imgui.WindowFlagsNoResize | imgui.WindowFlagsNoMove | imgui.WindowFlagsNoCollapse |
		imgui.WindowFlagsAlwaysAutoResize
	if imgui.BeginV("Controls", nil, flags) {
		if imgui.Button("Open...") {
			app.openFileDialog()
		}
		imgui.SameLine()
		if imgui.Button(app.session.PlayLabel()) {
			app.session.TogglePlay()
		}
		imgui.SameLine()
		if imgui.Button("Reset") {
			app.session.Reset()
		}

		// The slider edits a copy so Reset is reflected next frame
		speed := app.session.Animation().Speed
		imgui.Text("Speed")
		imgui.SameLine()
		imgui.SetNextItemWidth(-1)
		if imgui.SliderFloatV("##Speed", &speed, 0, viewer.MaxRotationSpeed, "%.3f", imgui.SliderFlagsNone) {
			app.session.SetSpeed(viewer.QuantizeSpeed(speed))
		}

		imgui.Checkbox("Show bounds", &app.showBounds)

		imgui.Separator()
		app.renderStatus()
		imgui.TextDisabled("(Drag to rotate, right drag to pan, scroll to zoom)")
	}
	imgui.End()
}

// renderStatus describes the latest request and the displayed model.
func (app *App) renderStatus() {
	req := app.pipeline.Current()
	switch {
	case req.ID == 0:
		imgui.TextDisabled("No model loaded")
	case req.State == viewer.StateReading:
		imgui.Text(fmt.Sprintf("Loading %s...", req.Name))
	case req.Err != nil:
		imgui.TextColored(imgui.NewVec4(1, 0.4, 0.4, 1), fmt.Sprintf("%s: %s", req.Name, req.State))
	default:
		imgui.TextUnformatted(req.Name)
	}

	if model := app.session.Model(); model != nil && model.Geometry != nil {
		g := model.Geometry
		if g.Points {
			imgui.Text(fmt.Sprintf("Points: %d", g.VertexCount()))
		} else {
			imgui.Text(fmt.Sprintf("Vertices: %d  Triangles: %d", g.VertexCount(), g.TriangleCount()))
		}
	}
}

// renderNotification shows a brief overlay message.
func (app *App) renderNotification() {
	if app.notification == "" {
		return
	}
	if time.Since(app.notifiedAt) > notificationDuration {
		app.notification = ""
		return
	}

	viewport := imgui.MainViewport()
	imgui.SetNextWindowPos(imgui.NewVec2(viewport.WorkPos().X+10,
		viewport.WorkPos().Y+viewport.WorkSize().Y-40))
	imgui.SetNextWindowBgAlpha(0.7)
	flags := imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoMove |
		imgui.WindowFlagsAlwaysAutoResize | imgui.WindowFlagsNoFocusOnAppearing
	if imgui.BeginV("##Notification", nil, flags) {
		imgui.TextUnformatted(app.notification)
	}
	imgui.End()
}
