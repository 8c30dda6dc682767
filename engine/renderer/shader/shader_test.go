package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFragment = `
struct Uniforms {
    resolution: vec2<f32>,
    time: f32,
    _pad: u32,
}

@group(0) @binding(0) var<uniform> u: Uniforms;

/* block comment with @vertex fn nope() */
@fragment
fn main(@builtin(position) position: vec4<f32>) -> @location(0) vec4<f32> {
    let uv = position.xy / u.resolution;
    return vec4<f32>(uv, 0.5 + 0.5 * sin(u.time), 1.0);
}
`

func uniformLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageFragment,
			Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
		}},
	}
}

func TestNewShaderParsesFragment(t *testing.T) {
	s, err := NewShader("test.wgsl", StageFragment, testFragment)
	require.NoError(t, err)

	assert.Equal(t, "test.wgsl", s.Key())
	assert.Equal(t, StageFragment, s.Stage())
	assert.Equal(t, "main", s.EntryPoint())
	assert.Equal(t, testFragment, s.Module().WGSLDescriptor.Code)
	assert.Equal(t, "test.wgsl", s.Module().Label)

	layouts := s.BindGroupLayoutDescriptors()
	require.Len(t, layouts, 1)
	require.Len(t, layouts[0].Entries, 1)
	entry := layouts[0].Entries[0]
	assert.Equal(t, uint32(0), entry.Binding)
	assert.Equal(t, wgpu.ShaderStageFragment, entry.Visibility)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, entry.Buffer.Type)
	assert.Equal(t, uint64(16), entry.Buffer.MinBindingSize)
}

func TestNewShaderRequiresEntryPoint(t *testing.T) {
	_, err := NewShader("v.wgsl", StageVertex, testFragment)
	assert.ErrorIs(t, err, ErrInvalidSource)
	assert.Contains(t, err.Error(), "@vertex")
}

func TestCheckBindings(t *testing.T) {
	s, err := NewShader("test.wgsl", StageFragment, testFragment)
	require.NoError(t, err)

	provided := []wgpu.BindGroupLayoutDescriptor{uniformLayout()}
	assert.NoError(t, CheckBindings(s, provided, map[int]map[uint32]uint64{0: {0: 16}}))
	assert.NoError(t, CheckBindings(s, provided, nil))

	err = CheckBindings(s, provided, map[int]map[uint32]uint64{0: {0: 8}})
	assert.ErrorIs(t, err, ErrInvalidSource)

	err = CheckBindings(s, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidSource)

	extra := testFragment + "\n@group(0) @binding(1) var<uniform> v: Uniforms;\n"
	s, err = NewShader("extra.wgsl", StageFragment, extra)
	require.NoError(t, err)
	err = CheckBindings(s, provided, nil)
	assert.ErrorIs(t, err, ErrInvalidSource)
	assert.Contains(t, err.Error(), "@binding(1)")
}

func TestStructLayouts(t *testing.T) {
	src := `
struct Inner { a: vec3<f32>, b: f32 }
struct Outer {
    inner: Inner,
    values: array<vec4<f32>, 4>,
    flag: u32,
}
`
	sizes := computeStructSizes(parseStructBlocks(stripComments(src)))
	assert.Equal(t, wgslTypeLayout{16, 16}, sizes["Inner"])
	assert.Equal(t, wgslTypeLayout{96, 16}, sizes["Outer"])
}

func TestStripComments(t *testing.T) {
	src := "a /* x /* nested */ y */ b // tail\nc"
	assert.Equal(t, "a  b \nc\n", stripComments(src))
}

func TestPreProcessorExpandsAnnotations(t *testing.T) {
	pp := NewPreProcessor()
	pp.Register("uniforms", "struct Uniforms { time: f32 }\n", "Uniforms")

	out, err := pp.Process("//@oxy:include uniforms\n//@oxy:group 0 0 storage_uniform u uniforms\nfn f() {}")
	require.NoError(t, err)
	assert.Equal(t, "struct Uniforms { time: f32 }\n@group(0) @binding(0) var<uniform> u: Uniforms;\nfn f() {}", out)

	decls := pp.Declarations()
	require.Len(t, decls, 1)
	assert.Equal(t, AnnotationTypeBindingGroup, decls[0].Type)
	assert.Equal(t, 0, *decls[0].Group)
	assert.Equal(t, 0, *decls[0].Binding)
	assert.Equal(t, AnnotationArg("u"), decls[0].Args[1])
}

func TestPreProcessorErrors(t *testing.T) {
	pp := NewPreProcessor()
	tests := []struct {
		name string
		src  string
	}{
		{"unknown include", "//@oxy:include missing"},
		{"unknown group struct", "//@oxy:group 0 0 storage_uniform u missing"},
		{"bad group index", "//@oxy:group x 0 storage_uniform u missing"},
		{"bad address space", "//@oxy:group 0 0 private u missing"},
		{"unknown type", "//@oxy:provider 0 0 camera"},
		{"empty", "//@oxy:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pp.Process(tt.src)
			assert.Error(t, err)
		})
	}
}

func TestPreProcessorIgnoresCodeMentions(t *testing.T) {
	pp := NewPreProcessor()
	src := `let s = "@oxy:include x";`
	out, err := pp.Process(src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("ok.wgsl", testFragment))

	err := Validate("broken.wgsl", "@fragment fn main( -> {")
	assert.ErrorIs(t, err, ErrInvalidSource)
	assert.Contains(t, err.Error(), "broken.wgsl")
}
