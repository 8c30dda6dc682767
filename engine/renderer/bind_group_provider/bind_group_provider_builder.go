package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithLayoutDescriptor sets the layout the Renderer creates the bind group layout from.
// The provider's label is applied to the descriptor when it has none.
//
// Parameters:
//   - desc: the layout descriptor
//
// Returns:
//   - BindGroupProviderOption: option function to apply
func WithLayoutDescriptor(desc wgpu.BindGroupLayoutDescriptor) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		if desc.Label == "" {
			desc.Label = p.label
		}
		p.descriptor = desc
	}
}

// WithBufferSize sets the allocation size of the buffer at binding.
//
// Parameters:
//   - binding: the binding index
//   - size: the buffer size in bytes
//
// Returns:
//   - BindGroupProviderOption: option function to apply
func WithBufferSize(binding int, size uint64) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bufferSizes[binding] = size
	}
}
