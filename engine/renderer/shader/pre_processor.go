// pre_processor.go implements the WGSL template pre-processor. It expands @oxy: annotations
// in the fragment prefix and suffix templates against a registry of Go-side GPU struct sources.
package shader

import (
	"fmt"
	"strings"
)

// registryEntry pairs a WGSL struct source with the WGSL type name it declares.
type registryEntry struct {
	Source string
	Type   string
}

type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string
	declarations         []Annotation
}

// PreProcessor expands @oxy: annotations in WGSL templates.
type PreProcessor interface {
	// Register adds a struct definition that include and group annotations can reference.
	//
	// Parameters:
	//   - key: the struct key used in annotations
	//   - source: the WGSL struct definition text
	//   - typeName: the WGSL type name the definition declares
	Register(key AnnotationArg, source, typeName string)

	// Process replaces every annotation in source with its generated WGSL.
	// The declarations list is reset at the start of each call.
	//
	// Parameters:
	//   - source: the WGSL template containing annotations
	//
	// Returns:
	//   - string: the expanded WGSL source
	//   - error: an error if any annotation is malformed or references an unregistered struct
	Process(source string) (string, error)

	// Declarations returns the group annotations collected during the most recent Process call, in source order.
	//
	// Returns:
	//   - []Annotation: the declarations collected during the last Process call
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with an empty struct registry.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: make(map[AnnotationArg]registryEntry),
		addressSpaceRegistry: map[AnnotationArg]string{
			AnnotationArgStorageTypeUniform: "var<uniform>",
			AnnotationArgStorageTypeRead:    "var<storage, read>",
		},
	}
}

func (p *preProcessor) Register(key AnnotationArg, source, typeName string) {
	p.structRegistry[key] = registryEntry{Source: source, Type: typeName}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case AnnotationTypeInclude:
			entry, ok := p.structRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy include argument %q", a.Line, a.Args[0])
			}
			out = append(out, strings.TrimRight(entry.Source, "\n"))
		case AnnotationTypeBindingGroup:
			entry, ok := p.structRegistry[a.Args[2]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown struct type %q in @oxy group annotation", a.Line, a.Args[2])
			}
			addrSpace := p.addressSpaceRegistry[a.Args[0]]
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, addrSpace, a.Args[1], entry.Type))
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
