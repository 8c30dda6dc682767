package shader

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
)

// Stage identifies the pipeline stage a shader unit provides.
type Stage int

const (
	// StageVertex is a unit containing a @vertex entry point.
	StageVertex Stage = iota

	// StageFragment is a unit containing a @fragment entry point.
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// ErrInvalidSource is returned when WGSL source cannot be used to build a pipeline stage.
var ErrInvalidSource = errors.New("shader: invalid source")

type shader struct {
	key                        string
	source                     string
	stage                      Stage
	entryPoint                 string
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	module                     *wgpu.ShaderModuleDescriptor
}

// Shader is a parsed WGSL unit for one pipeline stage. It exposes the unit's key, source,
// entry point and the bind group layouts its declarations require.
type Shader interface {
	// Key returns the label used for the GPU module, normally the catalog entry name.
	//
	// Returns:
	//   - string: the shader's key
	Key() string

	// Source returns the full WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source
	Source() string

	// Stage returns the pipeline stage this unit provides.
	//
	// Returns:
	//   - Stage: StageVertex or StageFragment
	Stage() Stage

	// EntryPoint returns the entry point function name for this unit's stage.
	//
	// Returns:
	//   - string: the entry point name (e.g. "main")
	EntryPoint() string

	// BindGroupLayoutDescriptors returns the layouts declared by the source, keyed by group index.
	// Buffer entries carry MinBindingSize when the bound struct's size could be computed.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// Module returns the wgpu.ShaderModuleDescriptor used to compile this unit on the device.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader parses WGSL source for the given stage.
// The source must contain an entry point for that stage.
//
// Parameters:
//   - key: label for the unit, used for GPU object labels and error messages
//   - stage: the pipeline stage the source provides
//   - source: the complete WGSL source
//
// Returns:
//   - Shader: the parsed unit
//   - error: ErrInvalidSource if the stage's entry point is missing
func NewShader(key string, stage Stage, source string) (Shader, error) {
	entry := parseEntryPoint(source, stage)
	if entry == "" {
		return nil, fmt.Errorf("%w: %s has no @%s entry point", ErrInvalidSource, key, stage)
	}

	visibility := wgpu.ShaderStageFragment
	if stage == StageVertex {
		visibility = wgpu.ShaderStageVertex
	}
	return &shader{
		key:                        key,
		source:                     source,
		stage:                      stage,
		entryPoint:                 entry,
		bindGroupLayoutDescriptors: parseBindGroupLayouts(source, visibility),
		module: &wgpu.ShaderModuleDescriptor{
			Label:          key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: source},
		},
	}, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Stage() Stage {
	return s.stage
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

// CheckBindings verifies that every binding s declares is satisfied by the provided layouts.
// Group indices map to positions in provided. A declared buffer must have the same binding type
// and a MinBindingSize no larger than the provided buffer's size.
//
// Parameters:
//   - s: the shader whose declarations to check
//   - provided: the bind group layouts the pipeline will be built with, in group order
//   - sizes: the byte size of each provided buffer, keyed by group then binding
//
// Returns:
//   - error: ErrInvalidSource describing the first unsatisfied declaration, or nil
func CheckBindings(s Shader, provided []wgpu.BindGroupLayoutDescriptor, sizes map[int]map[uint32]uint64) error {
	declared := s.BindGroupLayoutDescriptors()
	for _, group := range slices.Sorted(maps.Keys(declared)) {
		if group >= len(provided) {
			return fmt.Errorf("%w: %s declares @group(%d) but only %d group(s) are bound", ErrInvalidSource, s.Key(), group, len(provided))
		}
		for _, want := range declared[group].Entries {
			have, ok := findEntry(provided[group], want.Binding)
			if !ok {
				return fmt.Errorf("%w: %s declares @group(%d) @binding(%d) which is not bound", ErrInvalidSource, s.Key(), group, want.Binding)
			}
			if want.Buffer.Type != have.Buffer.Type {
				return fmt.Errorf("%w: %s @group(%d) @binding(%d) has the wrong resource type", ErrInvalidSource, s.Key(), group, want.Binding)
			}
			if size, ok := sizes[group][want.Binding]; ok && want.Buffer.MinBindingSize > size {
				return fmt.Errorf("%w: %s @group(%d) @binding(%d) needs %d bytes, buffer has %d", ErrInvalidSource, s.Key(), group, want.Binding, want.Buffer.MinBindingSize, size)
			}
		}
	}
	return nil
}

func findEntry(desc wgpu.BindGroupLayoutDescriptor, binding uint32) (wgpu.BindGroupLayoutEntry, bool) {
	for _, e := range desc.Entries {
		if e.Binding == binding {
			return e, true
		}
	}
	return wgpu.BindGroupLayoutEntry{}, false
}
