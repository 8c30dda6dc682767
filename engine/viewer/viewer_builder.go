package viewer

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-toy/engine/renderer"
)

// ViewerBuilderOption is a functional option applied to a viewer during construction via NewViewer.
type ViewerBuilderOption func(*viewer)

// WithRendererFactory replaces the function that creates the Renderer in Init.
//
// Parameters:
//   - factory: the renderer factory
//
// Returns:
//   - ViewerBuilderOption: a function that applies the factory to a viewer
func WithRendererFactory(factory RendererFactory) ViewerBuilderOption {
	return func(v *viewer) {
		if factory != nil {
			v.newRenderer = factory
		}
	}
}

// WithRendererOptions sets the options passed to the renderer factory.
//
// Parameters:
//   - options: renderer options such as renderer.WithPresentMode
//
// Returns:
//   - ViewerBuilderOption: a function that applies the renderer options to a viewer
func WithRendererOptions(options ...renderer.RendererBuilderOption) ViewerBuilderOption {
	return func(v *viewer) {
		v.rendererOptions = append(v.rendererOptions, options...)
	}
}

// WithClock sets the monotonic time source the time uniform is measured with.
//
// Parameters:
//   - now: returns the current time
//
// Returns:
//   - ViewerBuilderOption: a function that applies the clock to a viewer
func WithClock(now func() time.Time) ViewerBuilderOption {
	return func(v *viewer) {
		if now != nil {
			v.now = now
		}
	}
}

// WithStrictValidation enables or disables the WGSL front-end check that runs before a
// source is handed to the device. Enabled by default.
//
// Parameters:
//   - strict: false to skip the check
//
// Returns:
//   - ViewerBuilderOption: a function that applies the setting to a viewer
func WithStrictValidation(strict bool) ViewerBuilderOption {
	return func(v *viewer) {
		if !strict {
			v.validate = nil
		}
	}
}

// WithValidator replaces the WGSL front-end check. Intended for tests.
//
// Parameters:
//   - validate: called with the shader name and its complete source
//
// Returns:
//   - ViewerBuilderOption: a function that applies the validator to a viewer
func WithValidator(validate func(key, source string) error) ViewerBuilderOption {
	return func(v *viewer) {
		v.validate = validate
	}
}

// WithLogger sets the logger for lifecycle and error messages.
//
// Parameters:
//   - logger: the logger; nil keeps slog.Default()
//
// Returns:
//   - ViewerBuilderOption: a function that applies the logger to a viewer
func WithLogger(logger *slog.Logger) ViewerBuilderOption {
	return func(v *viewer) {
		if logger != nil {
			v.logger = logger
		}
	}
}
