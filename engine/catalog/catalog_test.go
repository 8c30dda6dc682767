package catalog

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/Carmen-Shannon/oxy-toy/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		PrefixFile:         {Data: []byte("//@oxy:include uniforms\n//@oxy:group 0 0 storage_uniform u uniforms\n")},
		SuffixFile:         {Data: []byte("\n// suffix\n")},
		"toy/zeta.wgsl":    {Data: []byte("// zeta\n")},
		"toy/alpha.wgsl":   {Data: []byte("// alpha\n")},
		"toy/middle.wgsl":  {Data: []byte("// middle\n")},
		"toy/notes.txt":    {Data: []byte("ignored")},
		"other/extra.wgsl": {Data: []byte("ignored")},
	}
}

func names(entries []shader.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestLoadSortsEntriesByFileName(t *testing.T) {
	c, err := Load(testFS())
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha.wgsl", "middle.wgsl", "zeta.wgsl"}, names(c.Entries))
	assert.Equal(t, "// alpha\n", c.Entries[0].Body)
}

func TestLoadExpandsPrefix(t *testing.T) {
	c, err := Load(testFS())
	require.NoError(t, err)
	assert.Contains(t, c.Prefix, "struct Uniforms")
	assert.Contains(t, c.Prefix, "@group(0) @binding(0) var<uniform> u: Uniforms;")
	assert.NotContains(t, c.Prefix, "@oxy:")
	assert.Equal(t, "\n// suffix\n", c.Suffix)
}

func TestLoadMissingTemplate(t *testing.T) {
	fsys := testFS()
	delete(fsys, SuffixFile)

	_, err := Load(fsys)
	assert.ErrorIs(t, err, ErrNoTemplates)
}

func TestLoadUnknownIncludeFails(t *testing.T) {
	fsys := testFS()
	fsys[PrefixFile] = &fstest.MapFile{Data: []byte("//@oxy:include nothing\n")}

	_, err := Load(fsys)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoTemplates)
}

func TestLoadEntriesSkipsTemplates(t *testing.T) {
	fsys := fstest.MapFS{
		PrefixFile: {Data: []byte("p")},
		SuffixFile: {Data: []byte("s")},
		"b.wgsl":   {Data: []byte("b")},
		"a.wgsl":   {Data: []byte("a")},
	}

	entries, err := LoadEntries(fsys, "*.wgsl")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.wgsl", "b.wgsl"}, names(entries))
}

func TestEmptyCatalogFailsBeforeGPU(t *testing.T) {
	fsys := testFS()
	for k := range fsys {
		if strings.HasPrefix(k, "toy/") {
			delete(fsys, k)
		}
	}

	c, err := Load(fsys)
	require.NoError(t, err)
	assert.Empty(t, c.Entries)

	_, err = c.ShaderList()
	assert.ErrorIs(t, err, shader.ErrEmptyCatalog)
}

func TestShaderListConcatenation(t *testing.T) {
	c, err := Load(testFS())
	require.NoError(t, err)
	list, err := c.ShaderList()
	require.NoError(t, err)

	name, source := list.Current()
	assert.Equal(t, "alpha.wgsl", name)
	assert.Equal(t, c.Prefix+"// alpha\n"+c.Suffix, source)
	assert.Equal(t, c.Source(c.Entries[0]), source)
}

func TestEmbeddedCatalog(t *testing.T) {
	c, err := Embedded()
	require.NoError(t, err)
	assert.Equal(t, []string{"gradient.wgsl", "plasma.wgsl", "rings.wgsl", "tunnel.wgsl"}, names(c.Entries))

	for _, e := range c.Entries {
		s, err := shader.NewShader(e.Name, shader.StageFragment, c.Source(e))
		require.NoError(t, err, e.Name)
		assert.Equal(t, "main", s.EntryPoint())

		layouts := s.BindGroupLayoutDescriptors()
		require.Contains(t, layouts, 0, e.Name)
		require.Len(t, layouts[0].Entries, 1)
		assert.Equal(t, wgpu.BufferBindingTypeUniform, layouts[0].Entries[0].Buffer.Type)
		assert.Equal(t, uint64(16), layouts[0].Entries[0].Buffer.MinBindingSize)
	}
}

func TestPreflightReportsFailuresInOrder(t *testing.T) {
	c, err := Load(testFS())
	require.NoError(t, err)

	var calls atomic.Int32
	boom := errors.New("boom")
	var logs bytes.Buffer
	failures := Preflight(c,
		WithWorkers(2),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		WithValidator(func(key, source string) error {
			calls.Add(1)
			if key == "zeta.wgsl" || key == "alpha.wgsl" {
				return boom
			}
			return nil
		}),
	)

	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, failures, 2)
	assert.Equal(t, "alpha.wgsl", failures[0].Name)
	assert.Equal(t, "zeta.wgsl", failures[1].Name)
	assert.ErrorIs(t, failures[0].Err, boom)
	assert.Contains(t, logs.String(), "shader failed preflight")
	assert.Contains(t, logs.String(), "failed=2")
}

func TestPreflightRecoversValidatorPanic(t *testing.T) {
	c, err := Load(testFS())
	require.NoError(t, err)

	failures := Preflight(c,
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
		WithValidator(func(key, source string) error {
			if key == "middle.wgsl" {
				panic("bad input")
			}
			return nil
		}),
	)

	require.Len(t, failures, 1)
	assert.Equal(t, "middle.wgsl", failures[0].Name)
	assert.ErrorIs(t, failures[0].Err, shader.ErrInvalidSource)
}

func TestPreflightEmptyCatalog(t *testing.T) {
	assert.Nil(t, Preflight(&Catalog{}))
}
