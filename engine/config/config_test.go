package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.True(t, cfg.Shaders.Strict)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[window]
title = "toys"
width = 800

[renderer]
present_mode = "uncapped"

[shaders]
dir = "./shaders"
strict = false

[engine]
profiling = true
frame_limit = 120.0
log_level = "debug"
`))
	require.NoError(t, err)
	assert.Equal(t, "toys", cfg.Window.Title)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, "uncapped", cfg.Renderer.PresentMode)
	assert.Equal(t, "high", cfg.Renderer.PowerPreference)
	assert.Equal(t, "./shaders", cfg.Shaders.Dir)
	assert.False(t, cfg.Shaders.Strict)
	assert.True(t, cfg.Engine.Profiling)
	assert.InDelta(t, 120.0, cfg.Engine.FrameLimit, 1e-9)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	assert.Len(t, cfg.WindowOptions(), 2)
	assert.Len(t, cfg.RendererOptions(), 3)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"zero width":   "[window]\nwidth = 0\n",
		"present mode": "[renderer]\npresent_mode = \"sometimes\"\n",
		"power":        "[renderer]\npower_preference = \"medium\"\n",
		"frame limit":  "[engine]\nframe_limit = -1.0\n",
		"log level":    "[engine]\nlog_level = \"loud\"\n",
		"workers":      "[shaders]\nworkers = -2\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("[window]\ncolour = \"red\"\n"))
	assert.Error(t, err)
}

func TestParseRejectsMalformedTOML(t *testing.T) {
	_, err := Parse([]byte("[window\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oxytoy.toml")
	require.NoError(t, os.WriteFile(path, []byte("[window]\ntitle = \"from file\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from file", cfg.Window.Title)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
