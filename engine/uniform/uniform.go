package uniform

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Binding is the binding index of the uniform buffer inside group 0.
const Binding = 0

// Block is the CPU-side copy of the uniform buffer. The viewer owns it on the event loop
// goroutine and uploads the whole block once per frame.
type Block struct {
	data GPUUniform
}

// NewBlock creates a Block for a surface of the given size with time zero.
// Non-positive dimensions are clamped to 1 so the shader never divides by zero.
func NewBlock(width, height int) *Block {
	return &Block{data: GPUUniform{
		Resolution: [2]float32{float32(max(width, 1)), float32(max(height, 1))},
	}}
}

// OnResize records a new surface size.
// A zero or negative dimension leaves the block unchanged.
//
// Returns:
//   - bool: true if the resolution was updated
func (b *Block) OnResize(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	b.data.Resolution = [2]float32{float32(width), float32(height)}
	return true
}

// OnFrame records the elapsed time in seconds for the frame about to be drawn.
func (b *Block) OnFrame(elapsed float32) {
	b.data.Time = elapsed
}

// Snapshot returns a copy of the current contents.
func (b *Block) Snapshot() GPUUniform {
	return b.data
}

// Bytes returns the whole block encoded for upload.
func (b *Block) Bytes() []byte {
	return b.data.Marshal()
}

// BindGroupLayoutDescriptor describes the single uniform binding every fragment shader sees:
// binding 0, fragment stage only, no dynamic offset.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the layout for bind group 0
func BindGroupLayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "uniform_bind_group_layout",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    Binding,
			Visibility: wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				HasDynamicOffset: false,
				MinBindingSize:   0,
			},
		}},
	}
}
