package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-toy/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("plasma.wgsl")

	assert.Equal(t, "plasma.wgsl", p.PipelineKey())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Equal(t, wgpu.ColorWriteMaskAll, p.WriteMask())
	assert.Equal(t, wgpu.BlendStateReplace, *p.BlendState())
	assert.Equal(t, uint32(1), p.SampleCount())
	assert.Nil(t, p.RenderPipeline())
	assert.Nil(t, p.Shader(shader.StageVertex))
	assert.Nil(t, p.Shader(shader.StageFragment))
}

func TestPipelineOptions(t *testing.T) {
	vs, err := NewFullscreenVertexShader()
	require.NoError(t, err)

	p := NewPipeline("k",
		WithVertexShader(vs),
		WithCullMode(wgpu.CullModeNone),
		WithFrontFace(wgpu.FrontFaceCW),
		WithTopology(wgpu.PrimitiveTopologyTriangleStrip),
		WithWriteMask(wgpu.ColorWriteMaskRed),
		WithBlendState(nil),
	)

	assert.Same(t, vs, p.Shader(shader.StageVertex))
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.FrontFaceCW, p.FrontFace())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleStrip, p.Topology())
	assert.Equal(t, wgpu.ColorWriteMaskRed, p.WriteMask())
	assert.Nil(t, p.BlendState())
}

func TestFullscreenVertexShader(t *testing.T) {
	vs, err := NewFullscreenVertexShader()
	require.NoError(t, err)
	assert.Equal(t, "main", vs.EntryPoint())
	assert.Empty(t, vs.BindGroupLayoutDescriptors())
	assert.NoError(t, shader.Validate(vs.Key(), vs.Source()))
}

func TestReleaseUnbuilt(t *testing.T) {
	p := NewPipeline("k")
	assert.NotPanics(t, p.Release)
}
