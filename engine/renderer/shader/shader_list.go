package shader

import (
	"errors"
	"fmt"
)

// ErrEmptyCatalog is returned when a ShaderList is constructed without entries.
var ErrEmptyCatalog = errors.New("shader: catalog has no entries")

// Entry is one fragment shader in the catalog.
// Body is the user-authored WGSL that sits between the shared prefix and suffix.
type Entry struct {
	Name string
	Body string
}

// ShaderList is a fixed, ordered catalog of fragment shader bodies with a cursor.
// The full source of an entry is always prefix + body + suffix. A ShaderList is not
// safe for concurrent use; the viewer owns it on the event-loop goroutine.
type ShaderList struct {
	prefix  string
	suffix  string
	entries []Entry
	index   int
}

// NewShaderList creates a ShaderList positioned at the first entry.
//
// Parameters:
//   - prefix: WGSL prepended to every body
//   - suffix: WGSL appended to every body
//   - entries: the catalog in display order; copied
//
// Returns:
//   - *ShaderList: the list, positioned at index 0
//   - error: ErrEmptyCatalog if entries is empty
func NewShaderList(prefix, suffix string, entries []Entry) (*ShaderList, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}
	return &ShaderList{
		prefix:  prefix,
		suffix:  suffix,
		entries: append([]Entry(nil), entries...),
	}, nil
}

// MustShaderList is like NewShaderList but panics on an empty catalog.
func MustShaderList(prefix, suffix string, entries []Entry) *ShaderList {
	l, err := NewShaderList(prefix, suffix, entries)
	if err != nil {
		panic(fmt.Sprintf("shader: %v", err))
	}
	return l
}

// Current returns the name and complete source of the entry under the cursor.
func (l *ShaderList) Current() (name, source string) {
	e := l.entries[l.index]
	return e.Name, l.prefix + e.Body + l.suffix
}

// Advance moves the cursor forward one entry, wrapping past the end, and returns the new current entry.
func (l *ShaderList) Advance() (name, source string) {
	l.index = (l.index + 1) % len(l.entries)
	return l.Current()
}

// Retreat moves the cursor back one entry, wrapping before the start, and returns the new current entry.
func (l *ShaderList) Retreat() (name, source string) {
	l.index = (l.index + len(l.entries) - 1) % len(l.entries)
	return l.Current()
}

// Index returns the cursor position.
func (l *ShaderList) Index() int {
	return l.index
}

// Len returns the number of entries.
func (l *ShaderList) Len() int {
	return len(l.entries)
}

// Names returns the entry names in catalog order.
func (l *ShaderList) Names() []string {
	names := make([]string, len(l.entries))
	for i, e := range l.entries {
		names[i] = e.Name
	}
	return names
}
