package renderer

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-toy/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-toy/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-toy/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-toy/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend
	logger      *slog.Logger

	config SurfaceConfig

	// Pre-creation config collected from builder options
	adapterOptions     adapterOptions
	pendingPresentMode *PresentMode
	pendingClearColor  *wgpu.Color
}

// adapterOptions are the knobs consulted when requesting the GPU adapter.
type adapterOptions struct {
	forceFallback bool
	lowPower      bool
}

// Renderer owns the GPU instance, surface, adapter, device and queue for one window
// and exposes the handful of operations a full-screen fragment shader viewer needs.
//
// A frame is BeginFrame, one or more Draw calls, EndFrame and Present. Errors from
// BeginFrame tell the caller how to recover: ErrSurfaceLost means Resize with the current
// size, ErrSurfaceTransient means skip the frame, ErrOutOfMemory means stop.
type Renderer interface {
	// SurfaceConfig returns the configuration the surface was last configured with.
	//
	// Returns:
	//   - SurfaceConfig: the current surface configuration
	SurfaceConfig() SurfaceConfig

	// Resize reconfigures the surface for a new size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: an error if the surface could not be reconfigured
	Resize(width, height int) error

	// SetPresentMode sets the preferred present mode. It takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to prefer
	SetPresentMode(mode PresentMode)

	// InitBindGroup creates the GPU buffers, layout and bind group described by the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to initialize
	//
	// Returns:
	//   - error: an error if bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider) error

	// WriteBuffers queues buffer uploads that are visible to the next submitted frame.
	//
	// Parameters:
	//   - writes: the writes to queue
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BuildPipeline checks the pipeline's shader units against the providers' layouts, then
	// compiles them and creates the render pipeline for the current surface format.
	// On failure p is left unbuilt and no GPU objects are leaked.
	//
	// Parameters:
	//   - p: a pipeline with both vertex and fragment units set
	//   - providers: initialized bind group providers, in group order
	//
	// Returns:
	//   - error: ErrPipelineBuild wrapping the cause, or nil
	BuildPipeline(p pipeline.Pipeline, providers []bind_group_provider.BindGroupProvider) error

	// BeginFrame acquires the next surface texture and begins the frame's render pass.
	//
	// Returns:
	//   - error: ErrSurfaceLost, ErrSurfaceTransient or ErrOutOfMemory
	BeginFrame() error

	// Draw encodes the full-screen triangle with the given pipeline and bind groups.
	//
	// Parameters:
	//   - p: a built pipeline
	//   - bindGroups: the providers set at group indices 0..n-1
	//
	// Returns:
	//   - error: an error if no frame is in progress or p is not built
	Draw(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame ends the render pass and submits the frame's commands.
	//
	// Returns:
	//   - error: an error if no frame is in progress or encoding failed
	EndFrame() error

	// Present shows the frame's surface texture.
	Present()

	// Release releases every GPU object owned by the Renderer.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates the GPU objects for win and configures its surface at the window's size.
//
// Parameters:
//   - backendType: the GPU backend to use
//   - win: the window whose surface is rendered to
//   - options: a variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the configured renderer
//   - error: ErrNoAdapter, ErrNoDevice or ErrNoSRGBFormat when setup fails
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		logger:      slog.Default(),
	}

	// Options first so the adapter request sees them.
	for _, opt := range options {
		opt(r)
	}

	var err error
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend, err = newWGPURendererBackend(win.SurfaceDescriptor(), r.adapterOptions)
	}
	if err != nil {
		return nil, err
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pendingClearColor != nil {
		r.backend.SetClearColor(*r.pendingClearColor)
	}

	if err := r.Resize(win.Width(), win.Height()); err != nil {
		r.backend.Release()
		return nil, err
	}
	r.logger.Info("renderer ready",
		slog.Any("format", r.config.Format),
		slog.Any("present_mode", r.config.PresentMode),
		slog.Int("width", int(r.config.Width)),
		slog.Int("height", int(r.config.Height)))
	return r, nil
}

func (r *renderer) SurfaceConfig() SurfaceConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.config
}

func (r *renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	cfg, err := r.backend.ConfigureSurface(width, height)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.config = cfg
	r.mu.Unlock()
	return nil
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider) error {
	return r.backend.InitBindGroup(provider)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BuildPipeline(p pipeline.Pipeline, providers []bind_group_provider.BindGroupProvider) error {
	layouts, err := checkPipeline(p, providers)
	if err != nil {
		return err
	}
	if err := r.backend.BuildRenderPipeline(p, layouts); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPipelineBuild, p.PipelineKey(), err)
	}
	r.logger.Debug("pipeline built", slog.String("pipeline", p.PipelineKey()))
	return nil
}

// checkPipeline validates everything about a build that can be known without the device.
// It returns the providers' layouts in group order.
func checkPipeline(p pipeline.Pipeline, providers []bind_group_provider.BindGroupProvider) ([]*wgpu.BindGroupLayout, error) {
	vs, fs := p.Shader(shader.StageVertex), p.Shader(shader.StageFragment)
	if vs == nil || fs == nil {
		return nil, fmt.Errorf("%w: %s: both vertex and fragment shaders must be set", ErrPipelineBuild, p.PipelineKey())
	}
	if p.RenderPipeline() != nil {
		return nil, fmt.Errorf("%w: %s is already built", ErrPipelineBuild, p.PipelineKey())
	}

	descriptors := make([]wgpu.BindGroupLayoutDescriptor, len(providers))
	sizes := make(map[int]map[uint32]uint64, len(providers))
	layouts := make([]*wgpu.BindGroupLayout, len(providers))
	for i, provider := range providers {
		if provider.BindGroupLayout() == nil {
			return nil, fmt.Errorf("%w: %s: bind group %q is not initialized", ErrPipelineBuild, p.PipelineKey(), provider.Label())
		}
		descriptors[i] = provider.Descriptor()
		sizes[i] = make(map[uint32]uint64, len(descriptors[i].Entries))
		for _, e := range descriptors[i].Entries {
			sizes[i][e.Binding] = provider.BufferSize(int(e.Binding))
		}
		layouts[i] = provider.BindGroupLayout()
	}

	for _, s := range []shader.Shader{vs, fs} {
		if err := shader.CheckBindings(s, descriptors, sizes); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPipelineBuild, err)
		}
	}
	return layouts, nil
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) Draw(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider) error {
	return r.backend.Draw(p, bindGroups)
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.backend.Release()
}
