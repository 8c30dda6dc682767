package shader

import (
	"fmt"

	"github.com/gogpu/naga"
)

// Validate runs the WGSL front end over source without touching a GPU device.
// It reports syntax errors, unresolved identifiers and type errors that would otherwise
// surface only when the driver compiles the module.
//
// Parameters:
//   - key: label used in the returned error
//   - source: the complete WGSL source
//
// Returns:
//   - error: ErrInvalidSource wrapping the front-end diagnostic, or nil
func Validate(key, source string) error {
	ast, err := naga.Parse(source)
	if err != nil {
		return fmt.Errorf("%w: %s: parse: %v", ErrInvalidSource, key, err)
	}
	module, err := naga.Lower(ast)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSource, key, err)
	}
	if len(module.EntryPoints) == 0 {
		return fmt.Errorf("%w: %s has no entry points", ErrInvalidSource, key)
	}
	return nil
}
