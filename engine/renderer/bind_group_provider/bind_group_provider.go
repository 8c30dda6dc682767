package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

type bindGroupProvider struct {
	label string

	// descriptor is the CPU-side layout the Renderer creates GPU objects from.
	descriptor wgpu.BindGroupLayoutDescriptor
	// bufferSizes overrides the allocation size per binding; bindings without an entry use MinBindingSize.
	bufferSizes map[int]uint64

	// GPU resources populated by Renderer.InitBindGroup.
	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout
	buffers         map[int]*wgpu.Buffer
}

// BindGroupProvider owns the GPU bind group, its layout and the buffers behind it for one
// bind group slot. The provider describes what to allocate; the Renderer allocates it.
//
// Usage pattern:
//  1. Create a provider with a layout descriptor and buffer sizes
//  2. Call Renderer.InitBindGroup(provider) to create GPU resources
//  3. Call Renderer.WriteBuffers with BufferWrite values targeting the provider
//  4. Pass BindGroup() to draw calls and BindGroupLayout() to pipeline builds
type BindGroupProvider interface {
	// Release releases every GPU resource held by this provider. Safe to call more than once.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Descriptor returns the bind group layout descriptor the provider was created with.
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the layout descriptor
	Descriptor() wgpu.BindGroupLayoutDescriptor

	// BufferSize returns the byte size to allocate for the buffer at binding.
	// Falls back to the layout entry's MinBindingSize when no override was given.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - uint64: the buffer size in bytes, or 0 if unknown
	BufferSize(binding int) uint64

	// BindGroup returns the created bind group, or nil if GPU resources have not been initialized.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the created bind group layout, or nil if GPU resources have not been initialized.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the bind group layout or nil
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the created buffer at binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// SetBindGroup stores the bind group. Called by Renderer.InitBindGroup.
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBindGroupLayout stores the bind group layout. Called by Renderer.InitBindGroup.
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer stores the buffer for binding. Called by Renderer.InitBindGroup.
	SetBuffer(binding int, buf *wgpu.Buffer)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: debug label used for every GPU object the Renderer creates for this provider
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new, uninitialized provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:       label,
		bufferSizes: make(map[int]uint64),
		buffers:     make(map[int]*wgpu.Buffer),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Descriptor() wgpu.BindGroupLayoutDescriptor {
	return p.descriptor
}

func (p *bindGroupProvider) BufferSize(binding int) uint64 {
	if size, ok := p.bufferSizes[binding]; ok {
		return size
	}
	for _, e := range p.descriptor.Entries {
		if int(e.Binding) == binding {
			return e.Buffer.MinBindingSize
		}
	}
	return 0
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, i)
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
}
