package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowBuilderOptions(t *testing.T) {
	w := &engineWindow{width: 1280, height: 720}

	for _, opt := range []WindowBuilderOption{
		WithTitle("plasma.wgsl"),
		WithSize(800, 0),
		WithSizeLimits(320, 240, 0, 0),
	} {
		opt(w)
	}

	assert.Equal(t, "plasma.wgsl", w.title)
	assert.Equal(t, 800, w.width)
	assert.Equal(t, 720, w.height)
	assert.Equal(t, 320, w.minWidth)
	assert.Equal(t, 240, w.minHeight)
	assert.Zero(t, w.maxWidth)
}

func TestDontCare(t *testing.T) {
	assert.Equal(t, 100, dontCare(100))
	assert.Equal(t, dontCare(0), dontCare(-5))
}
