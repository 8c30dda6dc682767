package pipeline

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-toy/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// FullscreenVertexSource is the built-in vertex stage shared by every fragment shader.
// It emits one triangle covering the viewport from vertex_index alone, so no vertex buffers are bound.
//
//go:embed assets/fullscreen_vertex.wgsl
var FullscreenVertexSource string

// FullscreenVertexCount is the number of vertices drawn per frame.
const FullscreenVertexCount = 3

// NewFullscreenVertexShader parses FullscreenVertexSource.
func NewFullscreenVertexShader() (shader.Shader, error) {
	return shader.NewShader("fullscreen_vertex", shader.StageVertex, FullscreenVertexSource)
}

type pipeline struct {
	pipelineKey string

	vertexShader, fragmentShader shader.Shader

	// GPU objects populated by Renderer.BuildPipeline.
	renderPipeline *wgpu.RenderPipeline
	pipelineLayout *wgpu.PipelineLayout
	format         wgpu.TextureFormat

	cullMode    wgpu.CullMode
	topology    wgpu.PrimitiveTopology
	frontFace   wgpu.FrontFace
	writeMask   wgpu.ColorWriteMask
	blendState  *wgpu.BlendState
	sampleCount uint32
}

// Pipeline describes a render pipeline made of a vertex and a fragment shader plus the fixed
// rasterization and color-target state, and holds the GPU objects once the Renderer has built it.
// A Pipeline is built at most once; rebuilding means creating a new Pipeline.
type Pipeline interface {
	// PipelineKey returns the key used for GPU object labels, normally the fragment shader name.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Shader retrieves the shader for the given stage, or nil if not set.
	//
	// Parameters:
	//   - stage: shader.StageVertex or shader.StageFragment
	//
	// Returns:
	//   - shader.Shader: the shader for that stage, or nil
	Shader(stage shader.Stage) shader.Shader

	// RenderPipeline returns the GPU pipeline, or nil if the pipeline has not been built.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the render pipeline or nil
	RenderPipeline() *wgpu.RenderPipeline

	// Format returns the color target format the pipeline was built for.
	// Undefined until the pipeline has been built.
	//
	// Returns:
	//   - wgpu.TextureFormat: the color target format
	Format() wgpu.TextureFormat

	// CullMode returns the configured cull mode.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode (default wgpu.CullModeBack)
	CullMode() wgpu.CullMode

	// Topology returns the configured primitive topology.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the topology (default wgpu.PrimitiveTopologyTriangleList)
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the configured front face winding.
	//
	// Returns:
	//   - wgpu.FrontFace: the winding (default wgpu.FrontFaceCCW)
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the write mask (default wgpu.ColorWriteMaskAll)
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the color target blend state.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state (default replace)
	BlendState() *wgpu.BlendState

	// SampleCount returns the multisample count.
	//
	// Returns:
	//   - uint32: the sample count (default 1)
	SampleCount() uint32

	// SetRenderPipeline stores the GPU objects after a successful build.
	//
	// Parameters:
	//   - rp: the render pipeline
	//   - layout: the pipeline layout the render pipeline was created with
	//   - format: the color target format
	SetRenderPipeline(rp *wgpu.RenderPipeline, layout *wgpu.PipelineLayout, format wgpu.TextureFormat)

	// Release releases the GPU objects held by this pipeline. Safe to call more than once.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates an unbuilt render Pipeline.
// Defaults: triangle list, back-face culling with counter-clockwise front faces, replace blending,
// all color channels written, one sample, no depth or stencil.
//
// Parameters:
//   - pipelineKey: the key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey: pipelineKey,
		cullMode:    wgpu.CullModeBack,
		topology:    wgpu.PrimitiveTopologyTriangleList,
		frontFace:   wgpu.FrontFaceCCW,
		writeMask:   wgpu.ColorWriteMaskAll,
		blendState:  &wgpu.BlendStateReplace,
		sampleCount: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(stage shader.Stage) shader.Shader {
	switch stage {
	case shader.StageVertex:
		return p.vertexShader
	case shader.StageFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) Format() wgpu.TextureFormat {
	return p.format
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SampleCount() uint32 {
	return p.sampleCount
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline, layout *wgpu.PipelineLayout, format wgpu.TextureFormat) {
	p.renderPipeline = rp
	p.pipelineLayout = layout
	p.format = format
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	if p.pipelineLayout != nil {
		p.pipelineLayout.Release()
		p.pipelineLayout = nil
	}
}
