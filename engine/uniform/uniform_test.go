package uniform

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f32At(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func TestMarshalLayout(t *testing.T) {
	u := GPUUniform{Resolution: [2]float32{800, 600}, Time: 1.5}
	buf := u.Marshal()

	require.Len(t, buf, 16)
	assert.Equal(t, 16, u.Size())
	assert.Equal(t, float32(800), f32At(buf, 0))
	assert.Equal(t, float32(600), f32At(buf, 4))
	assert.Equal(t, float32(1.5), f32At(buf, 8))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[12:]))
}

func TestBlockResize(t *testing.T) {
	b := NewBlock(800, 600)
	assert.Equal(t, [2]float32{800, 600}, b.Snapshot().Resolution)

	assert.False(t, b.OnResize(0, 600))
	assert.False(t, b.OnResize(800, 0))
	assert.False(t, b.OnResize(-1, -1))
	assert.Equal(t, [2]float32{800, 600}, b.Snapshot().Resolution)

	assert.True(t, b.OnResize(1024, 768))
	assert.Equal(t, [2]float32{1024, 768}, b.Snapshot().Resolution)
}

func TestNewBlockClampsZeroSize(t *testing.T) {
	b := NewBlock(0, 0)
	assert.Equal(t, [2]float32{1, 1}, b.Snapshot().Resolution)
}

func TestBlockOnFrame(t *testing.T) {
	b := NewBlock(320, 240)
	b.OnFrame(2.25)
	assert.Equal(t, float32(2.25), b.Snapshot().Time)
	assert.Equal(t, float32(2.25), f32At(b.Bytes(), 8))
	assert.Equal(t, float32(320), f32At(b.Bytes(), 0))
}

func TestBindGroupLayoutDescriptor(t *testing.T) {
	d := BindGroupLayoutDescriptor()
	require.Len(t, d.Entries, 1)
	e := d.Entries[0]
	assert.Equal(t, uint32(Binding), e.Binding)
	assert.Equal(t, wgpu.ShaderStageFragment, e.Visibility)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, e.Buffer.Type)
	assert.False(t, e.Buffer.HasDynamicOffset)
	assert.Zero(t, e.Buffer.MinBindingSize)
}

func TestSourceMatchesLayout(t *testing.T) {
	assert.Contains(t, GPUUniformSource, "struct "+GPUUniformTypeName)
	assert.Contains(t, GPUUniformSource, "resolution: vec2<f32>")
	assert.Contains(t, GPUUniformSource, "time: f32")
}
