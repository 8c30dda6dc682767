// Package catalog assembles the fragment shader catalog: the shared prefix and suffix
// templates plus the ordered shader bodies, from the embedded assets or a directory.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"

	"github.com/Carmen-Shannon/oxy-toy/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-toy/engine/uniform"
)

//go:embed assets
var assets embed.FS

const (
	// PrefixFile is the template prepended to every body.
	PrefixFile = "fragment.prefix.wgsl"

	// SuffixFile is the template appended to every body.
	SuffixFile = "fragment.suffix.wgsl"

	// ToyPattern matches the bundled shader bodies.
	ToyPattern = "toy/*.wgsl"

	// UniformsKey is the registry key templates use to reference the Uniforms struct.
	UniformsKey shader.AnnotationArg = "uniforms"
)

// ErrNoTemplates is returned when a catalog source lacks the prefix or suffix template.
var ErrNoTemplates = errors.New("catalog: missing prefix or suffix template")

// Catalog is the expanded prefix and suffix with the bodies in display order.
type Catalog struct {
	Prefix  string
	Suffix  string
	Entries []shader.Entry
}

// Embedded loads the catalog bundled into the binary.
func Embedded() (*Catalog, error) {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load reads PrefixFile, SuffixFile and every body matching ToyPattern from fsys.
// The prefix is expanded against the Uniforms struct so templates never restate its layout.
//
// Parameters:
//   - fsys: a file system rooted at the catalog directory
//
// Returns:
//   - *Catalog: the loaded catalog; Entries may be empty
//   - error: ErrNoTemplates, a template expansion error, or a read error
func Load(fsys fs.FS) (*Catalog, error) {
	prefix, err := fs.ReadFile(fsys, PrefixFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoTemplates, err)
	}
	suffix, err := fs.ReadFile(fsys, SuffixFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoTemplates, err)
	}

	pp := shader.NewPreProcessor()
	pp.Register(UniformsKey, uniform.GPUUniformSource, uniform.GPUUniformTypeName)
	expanded, err := pp.Process(string(prefix))
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", PrefixFile, err)
	}

	entries, err := LoadEntries(fsys, ToyPattern)
	if err != nil {
		return nil, err
	}
	return &Catalog{
		Prefix:  expanded,
		Suffix:  string(suffix),
		Entries: entries,
	}, nil
}

// LoadEntries reads every file matching pattern from fsys, sorted by path.
// Each entry is named after its file name.
//
// Parameters:
//   - fsys: the file system to read from
//   - pattern: an fs.Glob pattern such as "*.wgsl"
//
// Returns:
//   - []shader.Entry: the bodies in file name order
//   - error: a glob or read error
func LoadEntries(fsys fs.FS, pattern string) ([]shader.Entry, error) {
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	slices.Sort(matches)

	entries := make([]shader.Entry, 0, len(matches))
	for _, m := range matches {
		name := path.Base(m)
		if name == PrefixFile || name == SuffixFile {
			continue
		}
		body, err := fs.ReadFile(fsys, m)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		entries = append(entries, shader.Entry{Name: name, Body: string(body)})
	}
	return entries, nil
}

// ShaderList creates a ShaderList over the catalog.
//
// Returns:
//   - *shader.ShaderList: the list positioned at the first entry
//   - error: shader.ErrEmptyCatalog if the catalog has no entries
func (c *Catalog) ShaderList() (*shader.ShaderList, error) {
	return shader.NewShaderList(c.Prefix, c.Suffix, c.Entries)
}

// Source returns the complete WGSL source for entry e.
func (c *Catalog) Source(e shader.Entry) string {
	return c.Prefix + e.Body + c.Suffix
}
