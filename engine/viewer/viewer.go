// Package viewer holds the graphics context of the shader viewer: the renderer, the uniform
// block, the active pipeline and the shader list cursor, driven by window events.
package viewer

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-toy/common"
	"github.com/Carmen-Shannon/oxy-toy/engine/renderer"
	"github.com/Carmen-Shannon/oxy-toy/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-toy/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-toy/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-toy/engine/uniform"
	"github.com/Carmen-Shannon/oxy-toy/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// State is the lifecycle state of a Viewer.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrNotReady is returned by Render outside the Ready state.
	ErrNotReady = errors.New("viewer: not ready")

	// ErrFatal wraps errors after which the viewer cannot keep rendering.
	ErrFatal = errors.New("viewer: fatal")
)

// RendererFactory creates the Renderer for a window.
type RendererFactory func(win window.Window, options ...renderer.RendererBuilderOption) (renderer.Renderer, error)

// DefaultRendererFactory creates a WebGPU renderer.
func DefaultRendererFactory(win window.Window, options ...renderer.RendererBuilderOption) (renderer.Renderer, error) {
	return renderer.NewRenderer(renderer.BackendTypeWGPU, win, options...)
}

type viewer struct {
	list *shader.ShaderList

	newRenderer     RendererFactory
	rendererOptions []renderer.RendererBuilderOption
	logger          *slog.Logger
	now             func() time.Time
	validate        func(key, source string) error

	state State
	win   window.Window
	r     renderer.Renderer

	vertex     shader.Shader
	block      *uniform.Block
	provider   bind_group_provider.BindGroupProvider
	bindGroups []bind_group_provider.BindGroupProvider

	pipeline     pipeline.Pipeline
	active       string
	activeSource string
	format       wgpu.TextureFormat
	title        string
	lastErr      error

	width, height int
	start         time.Time
}

// Viewer is the graphics context: it owns the GPU renderer for one window and renders the
// active entry of a ShaderList into it every frame. A Viewer is driven from the goroutine
// that runs the window's message loop and is not safe for concurrent use.
type Viewer interface {
	// Init creates the renderer for win, the uniform block and binding, and the pipeline for the
	// list's current entry, then sets the window title to that entry's name.
	//
	// Parameters:
	//   - win: the window to render into
	//
	// Returns:
	//   - error: an error wrapping ErrFatal if any step fails; the viewer stays uninitialized
	Init(win window.Window) error

	// HandleInput navigates the shader list on Left and Right key presses and rebuilds the pipeline.
	// When the rebuild fails the previous pipeline stays installed and the title shows both names.
	//
	// Parameters:
	//   - keyCode: the virtual key code of a key press
	//
	// Returns:
	//   - bool: true if the key was consumed
	HandleInput(keyCode uint32) bool

	// HandleResize records a new framebuffer size and reconfigures the surface.
	// Sizes with a zero or negative dimension are ignored.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	HandleResize(width, height int)

	// Render draws one frame. A lost surface is reconfigured and a frame the surface could not
	// provide is skipped; both return nil.
	//
	// Returns:
	//   - error: ErrNotReady outside the Ready state, or an error wrapping ErrFatal
	Render() error

	// Close releases every GPU object. Safe to call more than once.
	Close()

	// Title returns the title last set on the window.
	//
	// Returns:
	//   - string: the window title
	Title() string

	// ActiveShader returns the name of the shader the installed pipeline renders.
	//
	// Returns:
	//   - string: the active shader name
	ActiveShader() string

	// Pipeline returns the installed pipeline, or nil before Init.
	//
	// Returns:
	//   - pipeline.Pipeline: the installed pipeline
	Pipeline() pipeline.Pipeline

	// Uniform returns the values last written to the uniform buffer.
	//
	// Returns:
	//   - uniform.GPUUniform: a copy of the uniform values
	Uniform() uniform.GPUUniform

	// State returns the lifecycle state.
	//
	// Returns:
	//   - State: the current state
	State() State

	// LastError returns the most recent recoverable error, cleared by the next successful rebuild.
	//
	// Returns:
	//   - error: the last rebuild or resize error, or nil
	LastError() error
}

var _ Viewer = &viewer{}

// NewViewer creates an uninitialized Viewer over list.
//
// Parameters:
//   - list: the shader list to navigate
//   - options: a variadic list of ViewerBuilderOption functions
//
// Returns:
//   - Viewer: the uninitialized viewer
func NewViewer(list *shader.ShaderList, options ...ViewerBuilderOption) Viewer {
	v := &viewer{
		list:        list,
		newRenderer: DefaultRendererFactory,
		logger:      slog.Default(),
		now:         time.Now,
		validate:    shader.Validate,
	}
	for _, opt := range options {
		opt(v)
	}
	return v
}

func (v *viewer) Init(win window.Window) error {
	if v.state != StateUninitialized {
		return fmt.Errorf("viewer: Init called in state %s", v.state)
	}

	options := append([]renderer.RendererBuilderOption{renderer.WithLogger(v.logger)}, v.rendererOptions...)
	r, err := v.newRenderer(win, options...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFatal, err)
	}
	v.r = r
	v.win = win
	v.width, v.height = win.Width(), win.Height()
	v.block = uniform.NewBlock(v.width, v.height)

	if err := v.initResources(); err != nil {
		v.release()
		return fmt.Errorf("%w: %w", ErrFatal, err)
	}

	name, source := v.list.Current()
	p, err := v.build(name, source)
	if err != nil {
		v.release()
		return fmt.Errorf("%w: initial shader %s: %w", ErrFatal, name, err)
	}
	v.install(p, name, source)

	v.start = v.now()
	v.state = StateReady
	v.logger.Info("viewer ready",
		slog.String("shader", name),
		slog.Int("shaders", v.list.Len()),
		slog.Int("width", v.width),
		slog.Int("height", v.height))
	return nil
}

func (v *viewer) initResources() error {
	vs, err := pipeline.NewFullscreenVertexShader()
	if err != nil {
		return err
	}
	v.vertex = vs

	v.provider = bind_group_provider.NewBindGroupProvider("uniforms",
		bind_group_provider.WithLayoutDescriptor(uniform.BindGroupLayoutDescriptor()),
		bind_group_provider.WithBufferSize(uniform.Binding, uint64(len(v.block.Bytes()))),
	)
	if err := v.r.InitBindGroup(v.provider); err != nil {
		return err
	}
	v.bindGroups = []bind_group_provider.BindGroupProvider{v.provider}
	v.format = v.r.SurfaceConfig().Format
	return nil
}

// build creates a new pipeline for source without touching the installed one.
func (v *viewer) build(name, source string) (pipeline.Pipeline, error) {
	if v.validate != nil {
		if err := v.validate(name, source); err != nil {
			return nil, err
		}
	}
	fs, err := shader.NewShader(name, shader.StageFragment, source)
	if err != nil {
		return nil, err
	}
	p := pipeline.NewPipeline(name,
		pipeline.WithVertexShader(v.vertex),
		pipeline.WithFragmentShader(fs),
	)
	if err := v.r.BuildPipeline(p, v.bindGroups); err != nil {
		return nil, err
	}
	return p, nil
}

// install makes p the drawn pipeline and releases the one it replaces.
func (v *viewer) install(p pipeline.Pipeline, name, source string) {
	old := v.pipeline
	v.pipeline = p
	v.active = name
	v.activeSource = source
	v.lastErr = nil
	v.setTitle(name)
	if old != nil {
		old.Release()
	}
}

func (v *viewer) setTitle(title string) {
	v.title = title
	v.win.SetTitle(title)
}

func (v *viewer) HandleInput(keyCode uint32) bool {
	if v.state != StateReady {
		return false
	}

	var name, source string
	switch keyCode {
	case common.KeyRight:
		name, source = v.list.Advance()
	case common.KeyLeft:
		name, source = v.list.Retreat()
	default:
		return false
	}

	p, err := v.build(name, source)
	if err != nil {
		v.lastErr = err
		v.logger.Error("shader build failed, keeping previous pipeline",
			slog.String("shader", name),
			slog.String("active", v.active),
			slog.Any("err", err))
		v.setTitle(fmt.Sprintf("%s [failed: %s]", v.active, name))
		return true
	}
	v.install(p, name, source)
	v.logger.Debug("shader switched", slog.String("shader", name), slog.Int("index", v.list.Index()))
	return true
}

func (v *viewer) HandleResize(width, height int) {
	if v.state != StateReady || width <= 0 || height <= 0 {
		return
	}
	v.width, v.height = width, height
	v.block.OnResize(width, height)

	if err := v.r.Resize(width, height); err != nil {
		v.lastErr = err
		v.logger.Error("surface reconfigure failed", slog.Int("width", width), slog.Int("height", height), slog.Any("err", err))
		return
	}

	format := v.r.SurfaceConfig().Format
	if format == v.format {
		return
	}
	v.format = format
	p, err := v.build(v.active, v.activeSource)
	if err != nil {
		v.lastErr = err
		v.logger.Error("pipeline rebuild for new surface format failed", slog.String("shader", v.active), slog.Any("err", err))
		return
	}
	title := v.title
	v.install(p, v.active, v.activeSource)
	v.setTitle(title)
}

func (v *viewer) Render() error {
	if v.state != StateReady {
		return ErrNotReady
	}

	err := v.r.BeginFrame()
	switch {
	case err == nil:
	case errors.Is(err, renderer.ErrOutOfMemory):
		return fmt.Errorf("%w: %w", ErrFatal, err)
	case errors.Is(err, renderer.ErrSurfaceLost):
		v.logger.Warn("surface lost, reconfiguring", slog.Int("width", v.width), slog.Int("height", v.height))
		if err := v.r.Resize(v.width, v.height); err != nil {
			return fmt.Errorf("%w: %w", ErrFatal, err)
		}
		return nil
	default:
		v.logger.Warn("frame skipped", slog.Any("err", err))
		return nil
	}

	v.block.OnFrame(float32(v.now().Sub(v.start).Seconds()))
	v.r.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: v.provider,
		Binding:  uniform.Binding,
		Offset:   0,
		Data:     v.block.Bytes(),
	}})

	if err := v.r.Draw(v.pipeline, v.bindGroups); err != nil {
		_ = v.r.EndFrame()
		return fmt.Errorf("%w: %w", ErrFatal, err)
	}
	if err := v.r.EndFrame(); err != nil {
		v.logger.Warn("frame submit failed", slog.Any("err", err))
		return nil
	}
	v.r.Present()
	return nil
}

func (v *viewer) Close() {
	if v.state == StateTerminated {
		return
	}
	v.release()
	v.state = StateTerminated
}

// release drops GPU objects in reverse order of creation.
func (v *viewer) release() {
	if v.pipeline != nil {
		v.pipeline.Release()
		v.pipeline = nil
	}
	if v.provider != nil {
		v.provider.Release()
		v.provider = nil
		v.bindGroups = nil
	}
	if v.r != nil {
		v.r.Release()
		v.r = nil
	}
}

func (v *viewer) Title() string {
	return v.title
}

func (v *viewer) ActiveShader() string {
	return v.active
}

func (v *viewer) Pipeline() pipeline.Pipeline {
	return v.pipeline
}

func (v *viewer) Uniform() uniform.GPUUniform {
	if v.block == nil {
		return uniform.GPUUniform{}
	}
	return v.block.Snapshot()
}

func (v *viewer) State() State {
	return v.state
}

func (v *viewer) LastError() error {
	return v.lastErr
}
