package viewer

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/engine/lighting"
	"github.com/Faultbox/meshview/internal/engine/mesh"
	"github.com/Faultbox/meshview/internal/engine/scene"
	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/pkg/formats"
)

// State is the progress of one load request.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateRejected
	StateReading
	StateDisplayed
	StateReadFailed
	StateDecodeFailed
	StateSuperseded
)

var stateNames = [...]string{
	StateIdle:         "idle",
	StateValidating:   "validating",
	StateRejected:     "rejected",
	StateReading:      "reading",
	StateDisplayed:    "displayed",
	StateReadFailed:   "read failed",
	StateDecodeFailed: "decode failed",
	StateSuperseded:   "superseded",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether the request is finished.
func (s State) Terminal() bool {
	switch s {
	case StateRejected, StateDisplayed, StateReadFailed, StateDecodeFailed, StateSuperseded:
		return true
	}
	return false
}

// Origin tells how a request was started.
type Origin int

const (
	OriginUpload Origin = iota // file picker or drop
	OriginURL                  // startup model
	OriginRemote               // remote "open" command
)

// Request is one attempt to display a model.
type Request struct {
	ID       uint64
	Name     string
	Location string
	Format   formats.Format
	Origin   Origin
	State    State
	Err      error
}

// Notifier shows blocking messages to the user.
type Notifier interface {
	Notify(title, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(title, message string)

// Notify calls f.
func (f NotifierFunc) Notify(title, message string) {
	f(title, message)
}

var (
	// Uploads are flat gray unless the file carries vertex colors
	uploadColor = lighting.ColorFromHex(0xcccccc)
	// Vertex colors are multiplied by the material color
	vertexColorBase = lighting.ColorFromHex(0xffffff)
)

const (
	uploadRoughness = 0.3
	uploadMetalness = 0.2
	urlRoughness    = 0.4
	urlMetalness    = 0.1
)

// UnsupportedFileMessage is shown when a file is neither STL nor PLY.
const UnsupportedFileMessage = "Only STL or PLY files are supported."

// PipelineConfig configures a Pipeline. Nil fields get defaults.
type PipelineConfig struct {
	Files    Source   // uploads; FileSource by default
	Fetch    Source   // startup loads; FetchSource without timeout by default
	Notifier Notifier // validation errors; logged only when nil
}

type readResult struct {
	req  Request
	data []byte
	err  error
}

// Pipeline turns file selections and startup URLs into displayed models.
// Reads run in goroutines; their results are applied by Poll on the UI thread
// and only the most recently started read is displayed.
type Pipeline struct {
	session  *Session
	files    Source
	fetch    Source
	notifier Notifier
	log      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	inbox []readResult

	nextID  uint64
	latest  uint64
	current Request
	hooks   []func(Request)
}

// NewPipeline creates a pipeline feeding session.
func NewPipeline(session *Session, cfg PipelineConfig) *Pipeline {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		session:  session,
		files:    cfg.Files,
		fetch:    cfg.Fetch,
		notifier: cfg.Notifier,
		log:      logger.Named("pipeline"),
		ctx:      ctx,
		cancel:   cancel,
	}
	if p.files == nil {
		p.files = FileSource{}
	}
	if p.fetch == nil {
		p.fetch = NewFetchSource(0)
	}
	return p
}

// OnStateChange registers fn to run on every request state change.
func (p *Pipeline) OnStateChange(fn func(Request)) {
	p.hooks = append(p.hooks, fn)
}

// Current returns the most recently accepted request.
func (p *Pipeline) Current() Request {
	return p.current
}

// Busy reports whether the latest accepted request is still reading.
func (p *Pipeline) Busy() bool {
	return p.current.ID != 0 && p.current.State == StateReading
}

// OnFileSelected validates path by extension and starts reading it.
// Unsupported files are reported through the Notifier and change nothing else.
func (p *Pipeline) OnFileSelected(path string) Request {
	return p.openFile(path, OriginUpload)
}

// OpenRemote is OnFileSelected for paths sent by a remote client. Rejections
// are only returned, the Notifier is not called.
func (p *Pipeline) OpenRemote(path string) Request {
	return p.openFile(path, OriginRemote)
}

func (p *Pipeline) openFile(path string, origin Origin) Request {
	req := Request{
		ID:       p.newID(),
		Name:     displayName(path),
		Location: path,
		Origin:   origin,
	}
	p.setState(&req, StateValidating)

	format, err := formats.DetectFormat(path)
	if err != nil {
		req.Err = err
		p.log.Warn("rejected file", zap.String("file", req.Name), zap.Error(err))
		if p.notifier != nil && origin == OriginUpload {
			p.notifier.Notify("Unsupported file", UnsupportedFileMessage)
		}
		p.setState(&req, StateRejected)
		return req
	}
	req.Format = format

	p.start(req, p.files)
	return p.current
}

// LoadURL starts loading a model from an http(s) URL, file:// URL or path.
// An empty format is derived from the location's extension.
func (p *Pipeline) LoadURL(location, format string) (Request, error) {
	var (
		f   formats.Format
		err error
	)
	if format == "" {
		f, err = formats.DetectFormat(displayName(location))
	} else {
		f, err = formats.ParseFormat(format)
	}
	if err != nil {
		p.log.Error("error loading model", zap.String("url", location), zap.Error(err))
		return Request{}, err
	}

	req := Request{
		ID:       p.newID(),
		Name:     displayName(location),
		Location: location,
		Format:   f,
		Origin:   OriginURL,
	}
	p.start(req, p.fetch)
	return p.current, nil
}

func (p *Pipeline) newID() uint64 {
	p.nextID++
	return p.nextID
}

func (p *Pipeline) start(req Request, src Source) {
	p.latest = req.ID
	p.current = req
	p.setState(&req, StateReading)
	p.log.Debug("reading model",
		zap.Uint64("request", req.ID),
		zap.String("location", req.Location),
		zap.Stringer("format", req.Format))

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		data, err := src.Read(p.ctx, req.Location)

		p.mu.Lock()
		p.inbox = append(p.inbox, readResult{req: req, data: data, err: err})
		p.mu.Unlock()
	}()
}

// Poll applies finished reads in completion order and returns how many it
// handled. Call it once per frame from the UI thread.
func (p *Pipeline) Poll() int {
	p.mu.Lock()
	results := p.inbox
	p.inbox = nil
	p.mu.Unlock()

	for _, res := range results {
		p.apply(res)
	}
	return len(results)
}

// Wait blocks until every started read has delivered its result.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Close cancels in-flight reads and waits for them.
func (p *Pipeline) Close() {
	p.cancel()
	p.wg.Wait()
}

func (p *Pipeline) apply(res readResult) {
	req := res.req
	fields := []zap.Field{zap.Uint64("request", req.ID), zap.String("file", req.Name)}

	if req.ID != p.latest {
		p.log.Debug("discarding superseded read", fields...)
		p.setState(&req, StateSuperseded)
		return
	}

	err := res.err
	if err == nil && len(res.data) == 0 {
		err = formats.ErrEmptyData
	}
	if err != nil {
		req.Err = err
		if req.Origin == OriginURL {
			p.log.Error("error loading model", zap.String("url", req.Location), zap.Error(err))
		} else {
			p.log.Debug("read failed", append(fields, zap.Error(err))...)
		}
		p.setState(&req, StateReadFailed)
		return
	}

	geom, err := decode(res.data, req.Format)
	if err != nil {
		req.Err = err
		if req.Origin == OriginURL {
			p.log.Error("error loading model", zap.String("url", req.Location), zap.Error(err))
		} else {
			p.log.Error("decoding model failed", append(fields, zap.Error(err))...)
		}
		p.setState(&req, StateDecodeFailed)
		return
	}

	model := p.display(req, geom)
	p.log.Info("model displayed",
		zap.String("file", req.Name),
		zap.Stringer("format", req.Format),
		zap.Int("vertices", geom.VertexCount()),
		zap.Int("triangles", geom.TriangleCount()),
		zap.Float32("size", model.WorldBounds().Diagonal()))
	p.setState(&req, StateDisplayed)
}

func decode(data []byte, format formats.Format) (*mesh.Geometry, error) {
	geom, err := mesh.Decode(data, format)
	if err != nil {
		return nil, err
	}
	if geom.VertexCount() == 0 {
		return nil, fmt.Errorf("%w: no vertices", formats.ErrEmptyData)
	}
	return geom, nil
}

// display builds the material for req, swaps the model in and frames it.
func (p *Pipeline) display(req Request, geom *mesh.Geometry) *scene.Mesh {
	var (
		material *scene.Material
		scale    float32
	)

	switch req.Origin {
	case OriginURL:
		geom.Center()
		if !geom.HasNormals() {
			geom.ComputeVertexNormals()
		}
		material = scene.NewStandardMaterial(vertexColorBase, urlRoughness, urlMetalness)
		material.VertexColors = geom.HasColors()
		material.DoubleSided = true
		scale = URLDistanceScale
	default:
		geom.ComputeVertexNormals()
		if req.Format == formats.FormatPLY && geom.HasColors() {
			material = scene.NewStandardMaterial(vertexColorBase, uploadRoughness, uploadMetalness)
			material.VertexColors = true
		} else {
			material = scene.NewStandardMaterial(uploadColor, uploadRoughness, uploadMetalness)
		}
		scale = UploadDistanceScale
	}

	model := p.session.ReplaceModel(geom, material)
	model.Name = req.Name
	p.session.FrameOn(model, scale)
	return model
}

func (p *Pipeline) setState(req *Request, s State) {
	req.State = s
	if req.ID == p.current.ID {
		p.current = *req
	}
	for _, fn := range p.hooks {
		fn(*req)
	}
}
