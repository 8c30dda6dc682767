// Package config maps the viewer's TOML configuration file onto component options.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-toy/engine/renderer"
	"github.com/Carmen-Shannon/oxy-toy/engine/window"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is returned when a configuration value is out of range.
var ErrInvalid = errors.New("config: invalid value")

// Config is the complete viewer configuration.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Shaders  ShadersConfig  `toml:"shaders"`
	Engine   EngineConfig   `toml:"engine"`
}

// WindowConfig is the [window] table.
type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// RendererConfig is the [renderer] table.
type RendererConfig struct {
	// PresentMode is "vsync" or "uncapped".
	PresentMode          string `toml:"present_mode"`
	ForceFallbackAdapter bool   `toml:"force_fallback_adapter"`
	// PowerPreference is "high" or "low".
	PowerPreference string `toml:"power_preference"`
}

// ShadersConfig is the [shaders] table.
type ShadersConfig struct {
	// Dir replaces the bundled shader bodies with the *.wgsl files of a directory when set.
	Dir string `toml:"dir"`
	// Strict runs the WGSL front end over every source before it reaches the device.
	Strict bool `toml:"strict"`
	// Workers bounds the startup preflight concurrency; 0 picks a default.
	Workers int `toml:"workers"`
}

// EngineConfig is the [engine] table.
type EngineConfig struct {
	Profiling  bool    `toml:"profiling"`
	FrameLimit float64 `toml:"frame_limit"`
	LogLevel   string  `toml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "oxy-toy",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			PresentMode:     "vsync",
			PowerPreference: "high",
		},
		Shaders: ShadersConfig{
			Strict: true,
		},
		Engine: EngineConfig{
			LogLevel: "info",
		},
	}
}

// Load reads and parses the TOML file at path.
//
// Parameters:
//   - path: the configuration file
//
// Returns:
//   - Config: the defaults overlaid with the file's values
//   - error: a read, decode or validation error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML data over Default and validates the result.
// Unknown keys are rejected.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the defaults overlaid with the document's values
//   - error: a decode or validation error
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every value that has a restricted range.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if _, err := renderer.ParsePresentMode(c.Renderer.PresentMode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	switch strings.ToLower(c.Renderer.PowerPreference) {
	case "", "high", "low":
	default:
		return fmt.Errorf("%w: power_preference %q", ErrInvalid, c.Renderer.PowerPreference)
	}
	if c.Shaders.Workers < 0 {
		return fmt.Errorf("%w: shaders.workers %d", ErrInvalid, c.Shaders.Workers)
	}
	if c.Engine.FrameLimit < 0 {
		return fmt.Errorf("%w: frame_limit %v", ErrInvalid, c.Engine.FrameLimit)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Engine.LogLevel.
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Engine.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalid, c.Engine.LogLevel)
	}
	return level, nil
}

// WindowOptions converts the [window] table into window options.
func (c Config) WindowOptions() []window.WindowBuilderOption {
	return []window.WindowBuilderOption{
		window.WithTitle(c.Window.Title),
		window.WithSize(c.Window.Width, c.Window.Height),
	}
}

// RendererOptions converts the [renderer] table into renderer options.
// Call Validate first; an invalid present mode falls back to vsync.
func (c Config) RendererOptions() []renderer.RendererBuilderOption {
	mode, _ := renderer.ParsePresentMode(c.Renderer.PresentMode)
	return []renderer.RendererBuilderOption{
		renderer.WithPresentMode(mode),
		renderer.WithForceSoftwareRenderer(c.Renderer.ForceFallbackAdapter),
		renderer.WithLowPower(strings.EqualFold(c.Renderer.PowerPreference, "low")),
	}
}
