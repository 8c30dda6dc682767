package bind_group_provider

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProvider(t *testing.T) {
	desc := wgpu.BindGroupLayoutDescriptor{
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding: 0,
			Buffer:  wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: 16},
		}, {
			Binding: 1,
			Buffer:  wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
		}},
	}
	p := NewBindGroupProvider("uniforms", WithLayoutDescriptor(desc), WithBufferSize(1, 64))

	assert.Equal(t, "uniforms", p.Label())
	assert.Equal(t, "uniforms", p.Descriptor().Label)
	assert.Equal(t, uint64(16), p.BufferSize(0))
	assert.Equal(t, uint64(64), p.BufferSize(1))
	assert.Zero(t, p.BufferSize(7))
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.BindGroupLayout())
	assert.Nil(t, p.Buffer(0))
}

func TestWithLayoutDescriptorKeepsExplicitLabel(t *testing.T) {
	p := NewBindGroupProvider("uniforms", WithLayoutDescriptor(wgpu.BindGroupLayoutDescriptor{Label: "explicit"}))
	assert.Equal(t, "explicit", p.Descriptor().Label)
}

func TestReleaseUninitialized(t *testing.T) {
	p := NewBindGroupProvider("empty")
	assert.NotPanics(t, func() {
		p.Release()
		p.Release()
	})
}
