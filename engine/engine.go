package engine

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-toy/engine/profiler"
	"github.com/Carmen-Shannon/oxy-toy/engine/viewer"
	"github.com/Carmen-Shannon/oxy-toy/engine/window"
)

// ErrNotConfigured is returned by Run when the engine has no window or no viewer.
var ErrNotConfigured = errors.New("engine: window and viewer are required")

// engine implements the Engine interface.
// Window events, rendering and shutdown all happen on the goroutine that calls Run.
type engine struct {
	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window
	viewer viewer.Viewer
	logger *slog.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	lastRender       time.Time

	err error
}

// Engine drives a Viewer from a Window's message loop.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Viewer returns the viewer the engine renders.
	//
	// Returns:
	//   - viewer.Viewer: the viewer instance
	Viewer() viewer.Viewer

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run initializes the viewer on the window, wires resize and key callbacks to it and runs the
	// window's message loop on the calling goroutine, rendering once per iteration. It returns when
	// the window is closed, Quit is called, or rendering fails fatally. The viewer and the window
	// are always closed before Run returns.
	//
	// Returns:
	//   - error: the initialization or fatal render error, or nil on a normal close
	Run() error

	// Quit asks the message loop to stop after the current iteration.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (window, viewer, profiling, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		quitChannel: make(chan struct{}),
		logger:      slog.Default(),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Viewer() viewer.Viewer {
	return e.viewer
}

func (e *engine) Run() error {
	if e.window == nil || e.viewer == nil {
		return ErrNotConfigured
	}
	defer e.shutdown()

	if err := e.viewer.Init(e.window); err != nil {
		return err
	}

	e.window.SetResizeCallback(e.viewer.HandleResize)
	e.window.SetKeyDownCallback(func(keyCode uint32) {
		e.viewer.HandleInput(keyCode)
	})
	e.window.SetUpdateCallback(e.handleRender)

	e.lastRender = time.Now()
	e.window.ProcessMessages()
	return e.err
}

// handleRender renders one frame per message loop iteration and applies the frame limit.
func (e *engine) handleRender() {
	select {
	case <-e.quitChannel:
		return
	default:
	}

	if err := e.viewer.Render(); err != nil {
		e.logger.Error("render failed, shutting down", slog.Any("err", err))
		e.err = err
		e.Quit()
		return
	}

	if e.profilingEnabled {
		e.profiler.Tick()
	}

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(e.lastRender); remaining > 0 {
			time.Sleep(remaining)
		}
	}
	e.lastRender = time.Now()
}

// Quit closes the quit channel and asks the window to close.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
		if e.window != nil {
			e.window.RequestClose()
		}
	})
}

// shutdown releases the viewer's GPU objects before the window that owns their surface.
func (e *engine) shutdown() {
	e.viewer.Close()
	if err := e.window.Close(); err != nil {
		e.logger.Warn("window close failed", slog.Any("err", err))
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
