// Package renderer draws a scene with a shadow pass and a lit pass into an
// offscreen framebuffer whose color texture the UI displays.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/engine/camera"
	"github.com/Faultbox/meshview/internal/engine/debug"
	"github.com/Faultbox/meshview/internal/engine/framebuffer"
	"github.com/Faultbox/meshview/internal/engine/mesh"
	"github.com/Faultbox/meshview/internal/engine/renderer/shaders"
	"github.com/Faultbox/meshview/internal/engine/scene"
	"github.com/Faultbox/meshview/internal/engine/shader"
	"github.com/Faultbox/meshview/internal/engine/shadow"
	"github.com/Faultbox/meshview/internal/logger"
)

const (
	// PointSize is the pixel size of point cloud vertices.
	PointSize = 2

	// shadowTextureUnit is the unit the shadow map is sampled from.
	shadowTextureUnit = 1
)

// boundsColor is the wireframe color of the model bounds overlay.
var boundsColor = mgl32.Vec3{1, 0.55, 0}

// Config holds renderer settings.
type Config struct {
	Width         int32
	Height        int32
	Samples       int32 // MSAA samples, 0 or 1 disables multisampling
	ShadowMapSize int32
}

// Options toggles per-frame overlays.
type Options struct {
	ShowBounds bool
}

// Renderer owns all GPU state of the viewer. It must be used from the thread
// holding the GL context.
type Renderer struct {
	meshProgram  *shader.Program
	depthProgram *shader.Program

	target    *framebuffer.Framebuffer
	shadowMap *shadow.Map
	lines     *lineBuffer

	meshes map[*mesh.Geometry]*gpuMesh

	log *zap.Logger
}

// New compiles the programs and creates the offscreen targets. gl.Init must
// have been called.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		meshes: make(map[*mesh.Geometry]*gpuMesh),
		log:    logger.Named("renderer"),
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	var err error
	r.meshProgram, err = shader.Compile(shaders.MeshVertexShader, shaders.MeshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}
	r.depthProgram, err = shader.Compile(shaders.DepthVertexShader, shaders.DepthFragmentShader)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("depth shader: %w", err)
	}

	r.target, err = framebuffer.New(cfg.Width, cfg.Height, cfg.Samples)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("framebuffer: %w", err)
	}

	r.shadowMap, err = shadow.NewMap(cfg.ShadowMapSize)
	if err != nil {
		// The viewer still works without shadows
		r.log.Warn("shadow map unavailable", zap.Error(err))
		r.shadowMap = nil
	}

	r.lines = newLineBuffer()
	return r, nil
}

// Resize reallocates the offscreen target.
func (r *Renderer) Resize(width, height int32) error {
	if err := r.target.Resize(width, height); err != nil {
		return fmt.Errorf("resizing framebuffer: %w", err)
	}
	w, h := r.target.Size()
	r.log.Debug("output resized", zap.Int32("width", w), zap.Int32("height", h))
	return nil
}

// Size returns the output size in pixels.
func (r *Renderer) Size() (width, height int32) {
	return r.target.Size()
}

// Render draws sc as seen by cam and returns the color texture.
func (r *Renderer) Render(sc *scene.Scene, cam *camera.PerspectiveCamera, opts Options) uint32 {
	items := sc.Renderables()

	lightSpace := mgl32.Ident4()
	shadows := sc.Sun != nil && sc.Sun.CastShadow && r.shadowMap.IsValid()
	if shadows {
		lightSpace = shadow.CalculateDirectionalLightMatrix(sc.Sun)
		r.renderShadowPass(items, lightSpace)
	}

	restore := r.target.BindWithViewport()
	bg := sc.Background
	r.target.Clear(bg[0], bg[1], bg[2], 1)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	p := r.meshProgram
	p.Use()
	p.SetMat4("uView", cam.ViewMatrix())
	p.SetMat4("uProjection", cam.ProjectionMatrix())
	p.SetMat4("uLightSpace", lightSpace)
	p.SetVec3("uCameraPos", cam.Position)
	r.setLights(sc, shadows)

	// Opaque first, then blended surfaces without depth writes
	for _, m := range items {
		if !transparent(m) {
			r.drawMesh(m)
		}
	}
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)
	for _, m := range items {
		if transparent(m) {
			r.drawMesh(m)
		}
	}
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)

	if opts.ShowBounds {
		r.drawBounds(sc)
	}

	gl.Disable(gl.CULL_FACE)
	gl.Disable(gl.PROGRAM_POINT_SIZE)
	r.target.Resolve()
	restore()

	return r.target.ColorTexture()
}

// Pixels reads back the last rendered frame as bottom-up RGBA rows.
func (r *Renderer) Pixels() (pixels []byte, width, height int) {
	w, h := r.target.Size()
	return r.target.ReadPixels(), int(w), int(h)
}

// Close releases every GPU resource, including uploaded geometry.
func (r *Renderer) Close() {
	for g, m := range r.meshes {
		m.destroy()
		delete(r.meshes, g)
	}
	if r.lines != nil {
		r.lines.destroy()
		r.lines = nil
	}
	if r.shadowMap != nil {
		r.shadowMap.Destroy()
		r.shadowMap = nil
	}
	if r.target != nil {
		r.target.Destroy()
		r.target = nil
	}
	if r.meshProgram != nil {
		r.meshProgram.Delete()
		r.meshProgram = nil
	}
	if r.depthProgram != nil {
		r.depthProgram.Delete()
		r.depthProgram = nil
	}
}

func (r *Renderer) renderShadowPass(items []*scene.Mesh, lightSpace mgl32.Mat4) {
	r.shadowMap.Bind()
	r.depthProgram.Use()
	r.depthProgram.SetMat4("uLightSpace", lightSpace)
	for _, m := range items {
		if !m.CastShadow || m.Geometry == nil || m.Geometry.Points {
			continue
		}
		r.depthProgram.SetMat4("uModel", m.ModelMatrix())
		r.gpu(m.Geometry).draw()
	}
	r.shadowMap.Unbind()
}

func (r *Renderer) setLights(sc *scene.Scene, shadows bool) {
	p := r.meshProgram
	if sun := sc.Sun; sun != nil {
		p.SetVec3("uSunDir", sun.Direction())
		p.SetVec3("uSunColor", sun.Color)
		p.SetFloat("uSunIntensity", sun.Intensity)
		p.SetFloat("uShadowBias", sun.Shadow.Bias)
	} else {
		p.SetFloat("uSunIntensity", 0)
	}
	p.SetVec3("uAmbientColor", sc.Ambient.Color)
	p.SetFloat("uAmbientIntensity", sc.Ambient.Intensity)

	p.SetBool("uShadowsEnabled", shadows)
	p.SetInt("uShadowMap", shadowTextureUnit)
	if shadows {
		r.shadowMap.BindTexture(gl.TEXTURE0 + shadowTextureUnit)
		p.SetFloat("uShadowTexel", 1/float32(r.shadowMap.Resolution))
	}
}

func (r *Renderer) drawMesh(m *scene.Mesh) {
	if m.Geometry == nil || m.Material == nil {
		return
	}
	g, mat := m.Geometry, m.Material
	p := r.meshProgram

	if mat.DoubleSided || mat.ShadowOnly || g.Points {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}

	p.SetMat4("uModel", m.ModelMatrix())
	p.SetMat3("uNormalMatrix", m.NormalMatrix())
	p.SetFloat("uPointSize", PointSize)

	p.SetVec3("uColor", mat.Color)
	p.SetBool("uVertexColors", mat.VertexColors && g.HasColors())
	p.SetFloat("uRoughness", mat.Roughness)
	p.SetFloat("uMetalness", mat.Metalness)
	p.SetFloat("uOpacity", mat.Opacity)
	p.SetBool("uShadowOnly", mat.ShadowOnly)
	p.SetBool("uReceiveShadow", m.ReceiveShadow)
	p.SetBool("uUnlit", g.Points)

	r.gpu(g).draw()
}

func (r *Renderer) drawBounds(sc *scene.Scene) {
	var points []mgl32.Vec3
	for _, m := range sc.Meshes() {
		points = append(points, debug.BoxLines(m.WorldBounds(), 0)...)
	}
	r.lines.set(points, boundsColor)

	p := r.meshProgram
	p.SetMat4("uModel", mgl32.Ident4())
	p.SetMat3("uNormalMatrix", mgl32.Ident3())
	p.SetVec3("uColor", mgl32.Vec3{1, 1, 1})
	p.SetBool("uVertexColors", true)
	p.SetFloat("uOpacity", 1)
	p.SetBool("uShadowOnly", false)
	p.SetBool("uUnlit", true)
	r.lines.draw()
}

// gpu returns the uploaded form of g, uploading it on first use. The upload
// is released when g is disposed.
func (r *Renderer) gpu(g *mesh.Geometry) *gpuMesh {
	if m, ok := r.meshes[g]; ok {
		return m
	}
	m := uploadGeometry(g)
	r.meshes[g] = m
	r.log.Debug("geometry uploaded",
		zap.Int("vertices", g.VertexCount()),
		zap.Int("triangles", g.TriangleCount()))

	g.OnDispose(func() {
		if m, ok := r.meshes[g]; ok {
			m.destroy()
			delete(r.meshes, g)
		}
	})
	return m
}

// transparent reports whether m is drawn in the blended pass.
func transparent(m *scene.Mesh) bool {
	return m.Material != nil && (m.Material.ShadowOnly || m.Material.Opacity < 1)
}
