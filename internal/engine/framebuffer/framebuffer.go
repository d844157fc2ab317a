// Package framebuffer provides the offscreen target the viewport renders into.
package framebuffer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Framebuffer is a multisampled render target that resolves into a plain
// color texture the UI can display.
type Framebuffer struct {
	samples int32
	width   int32
	height  int32

	// Multisampled draw target (absent when samples <= 1)
	msFBO   uint32
	msColor uint32
	msDepth uint32

	// Resolve target sampled by the UI
	fbo          uint32
	colorTexture uint32
	depthRBO     uint32
}

// New creates a render target of the given size. samples <= 1 disables
// multisampling.
func New(width, height, samples int32) (*Framebuffer, error) {
	fb := &Framebuffer{samples: samples}
	fb.width, fb.height = clampSize(width, height)

	if err := fb.create(); err != nil {
		fb.Destroy()
		return nil, fmt.Errorf("creating framebuffer: %w", err)
	}
	return fb, nil
}

func clampSize(width, height int32) (int32, int32) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

func (fb *Framebuffer) multisampled() bool {
	return fb.samples > 1
}

func (fb *Framebuffer) create() error {
	gl.GenFramebuffers(1, &fb.fbo)
	gl.GenTextures(1, &fb.colorTexture)
	gl.GenRenderbuffers(1, &fb.depthRBO)
	if fb.multisampled() {
		gl.GenFramebuffers(1, &fb.msFBO)
		gl.GenRenderbuffers(1, &fb.msColor)
		gl.GenRenderbuffers(1, &fb.msDepth)
	}
	return fb.allocate()
}

// allocate (re)creates attachment storage for the current size.
func (fb *Framebuffer) allocate() error {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)

	gl.BindTexture(gl.TEXTURE_2D, fb.colorTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, fb.width, fb.height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, fb.colorTexture, 0)

	gl.BindRenderbuffer(gl.RENDERBUFFER, fb.depthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, fb.width, fb.height)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, fb.depthRBO)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return fmt.Errorf("resolve target incomplete: 0x%x", status)
	}

	if fb.multisampled() {
		gl.BindFramebuffer(gl.FRAMEBUFFER, fb.msFBO)

		gl.BindRenderbuffer(gl.RENDERBUFFER, fb.msColor)
		gl.RenderbufferStorageMultisample(gl.RENDERBUFFER, fb.samples, gl.RGBA8, fb.width, fb.height)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.RENDERBUFFER, fb.msColor)

		gl.BindRenderbuffer(gl.RENDERBUFFER, fb.msDepth)
		gl.RenderbufferStorageMultisample(gl.RENDERBUFFER, fb.samples, gl.DEPTH_COMPONENT24, fb.width, fb.height)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, fb.msDepth)

		if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
			gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
			return fmt.Errorf("multisample target incomplete: 0x%x", status)
		}
	}

	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

// drawFBO is the framebuffer geometry is rendered into.
func (fb *Framebuffer) drawFBO() uint32 {
	if fb.multisampled() {
		return fb.msFBO
	}
	return fb.fbo
}

// BindWithViewport binds the draw target and sets the viewport.
// Returns a function that restores the previous framebuffer and viewport.
func (fb *Framebuffer) BindWithViewport() func() {
	var prevFBO int32
	var prevViewport [4]int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.GetIntegerv(gl.VIEWPORT, &prevViewport[0])

	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.drawFBO())
	gl.Viewport(0, 0, fb.width, fb.height)

	return func() {
		gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
		gl.Viewport(prevViewport[0], prevViewport[1], prevViewport[2], prevViewport[3])
	}
}

// Clear clears color and depth of the bound target.
func (fb *Framebuffer) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Resolve copies the multisampled image into the color texture.
// It is a no-op without multisampling.
func (fb *Framebuffer) Resolve() {
	if !fb.multisampled() {
		return
	}
	var prevFBO int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, fb.msFBO)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, fb.fbo)
	gl.BlitFramebuffer(0, 0, fb.width, fb.height, 0, 0, fb.width, fb.height, gl.COLOR_BUFFER_BIT, gl.NEAREST)

	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
}

// ColorTexture returns the resolved color texture ID.
func (fb *Framebuffer) ColorTexture() uint32 {
	return fb.colorTexture
}

// Size returns the framebuffer dimensions.
func (fb *Framebuffer) Size() (width, height int32) {
	return fb.width, fb.height
}

// Resize reallocates attachments when the size changed.
func (fb *Framebuffer) Resize(width, height int32) error {
	width, height = clampSize(width, height)
	if width == fb.width && height == fb.height {
		return nil
	}
	fb.width = width
	fb.height = height
	return fb.allocate()
}

// ReadPixels returns the resolved image as bottom-up RGBA rows.
func (fb *Framebuffer) ReadPixels() []byte {
	pixels := make([]byte, fb.width*fb.height*4)

	var prevFBO int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	gl.ReadPixels(0, 0, fb.width, fb.height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))

	return pixels
}

// Destroy releases all OpenGL resources.
func (fb *Framebuffer) Destroy() {
	for _, fbo := range []*uint32{&fb.fbo, &fb.msFBO} {
		if *fbo != 0 {
			gl.DeleteFramebuffers(1, fbo)
			*fbo = 0
		}
	}
	for _, rbo := range []*uint32{&fb.depthRBO, &fb.msColor, &fb.msDepth} {
		if *rbo != 0 {
			gl.DeleteRenderbuffers(1, rbo)
			*rbo = 0
		}
	}
	if fb.colorTexture != 0 {
		gl.DeleteTextures(1, &fb.colorTexture)
		fb.colorTexture = 0
	}
}
