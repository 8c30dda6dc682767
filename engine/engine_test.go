package engine

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/Carmen-Shannon/oxy-toy/common"
	"github.com/Carmen-Shannon/oxy-toy/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-toy/engine/uniform"
	"github.com/Carmen-Shannon/oxy-toy/engine/viewer"
	"github.com/Carmen-Shannon/oxy-toy/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptWindow runs a fixed number of loop iterations, firing events before selected ones.
type scriptWindow struct {
	iterations int
	events     map[int]func(w *scriptWindow)

	onUpdate  func()
	onResize  func(width, height int)
	onKeyDown func(keyCode uint32)

	title       string
	closeAsked  bool
	closed      int
	ranMessages int
}

func (w *scriptWindow) SetUpdateCallback(callback func())                  { w.onUpdate = callback }
func (w *scriptWindow) SetResizeCallback(callback func(width, height int)) { w.onResize = callback }
func (w *scriptWindow) SetKeyDownCallback(callback func(keyCode uint32))   { w.onKeyDown = callback }
func (w *scriptWindow) SetTitle(title string)                             { w.title = title }
func (w *scriptWindow) Title() string                                     { return w.title }
func (w *scriptWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor        { return nil }
func (w *scriptWindow) IsRunning() bool                                   { return !w.closeAsked }
func (w *scriptWindow) RequestClose()                                     { w.closeAsked = true }
func (w *scriptWindow) Width() int                                        { return 640 }
func (w *scriptWindow) Height() int                                       { return 480 }

func (w *scriptWindow) Close() error {
	w.closed++
	return nil
}

func (w *scriptWindow) ProcessMessages() {
	for i := 0; i < w.iterations && w.IsRunning(); i++ {
		if ev := w.events[i]; ev != nil {
			ev(w)
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
		w.ranMessages++
	}
}

var _ window.Window = &scriptWindow{}

type recordingViewer struct {
	initErr   error
	renderErr error

	inited  bool
	renders int
	keys    []uint32
	resizes [][2]int
	closed  int
}

func (v *recordingViewer) Init(window.Window) error {
	v.inited = v.initErr == nil
	return v.initErr
}

func (v *recordingViewer) HandleInput(keyCode uint32) bool {
	v.keys = append(v.keys, keyCode)
	return keyCode == common.KeyLeft || keyCode == common.KeyRight
}

func (v *recordingViewer) HandleResize(width, height int) {
	v.resizes = append(v.resizes, [2]int{width, height})
}

func (v *recordingViewer) Render() error {
	v.renders++
	return v.renderErr
}

func (v *recordingViewer) Close()                      { v.closed++ }
func (v *recordingViewer) Title() string               { return "" }
func (v *recordingViewer) ActiveShader() string        { return "" }
func (v *recordingViewer) Pipeline() pipeline.Pipeline { return nil }
func (v *recordingViewer) Uniform() uniform.GPUUniform { return uniform.GPUUniform{} }
func (v *recordingViewer) State() viewer.State         { return viewer.StateReady }
func (v *recordingViewer) LastError() error            { return nil }

var _ viewer.Viewer = &recordingViewer{}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestRunRendersEachIteration(t *testing.T) {
	w := &scriptWindow{iterations: 5}
	v := &recordingViewer{}
	e := NewEngine(WithWindow(w), WithViewer(v), WithLogger(quietLogger()))

	require.NoError(t, e.Run())
	assert.True(t, v.inited)
	assert.Equal(t, 5, v.renders)
	assert.Equal(t, 1, v.closed)
	assert.Equal(t, 1, w.closed)
}

func TestRunForwardsEvents(t *testing.T) {
	w := &scriptWindow{
		iterations: 3,
		events: map[int]func(*scriptWindow){
			1: func(w *scriptWindow) {
				w.onKeyDown(common.KeyRight)
				w.onResize(1024, 768)
			},
		},
	}
	v := &recordingViewer{}
	e := NewEngine(WithWindow(w), WithViewer(v), WithLogger(quietLogger()))

	require.NoError(t, e.Run())
	assert.Equal(t, []uint32{common.KeyRight}, v.keys)
	assert.Equal(t, [][2]int{{1024, 768}}, v.resizes)
}

func TestRunStopsOnFatalRenderError(t *testing.T) {
	fatal := errors.New("device lost")
	w := &scriptWindow{iterations: 10}
	v := &recordingViewer{renderErr: fatal}
	e := NewEngine(WithWindow(w), WithViewer(v), WithLogger(quietLogger()))

	err := e.Run()
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, v.renders)
	assert.Equal(t, 1, w.ranMessages)
	assert.Equal(t, 1, v.closed)
}

func TestRunInitFailureClosesEverything(t *testing.T) {
	initErr := errors.New("no adapter")
	w := &scriptWindow{iterations: 10}
	v := &recordingViewer{initErr: initErr}
	e := NewEngine(WithWindow(w), WithViewer(v), WithLogger(quietLogger()))

	assert.ErrorIs(t, e.Run(), initErr)
	assert.Zero(t, v.renders)
	assert.Equal(t, 1, v.closed)
	assert.Equal(t, 1, w.closed)
}

func TestQuitStopsLoop(t *testing.T) {
	var e Engine
	w := &scriptWindow{
		iterations: 10,
		events: map[int]func(*scriptWindow){
			2: func(*scriptWindow) { e.Quit() },
		},
	}
	v := &recordingViewer{}
	e = NewEngine(WithWindow(w), WithViewer(v), WithLogger(quietLogger()))

	require.NoError(t, e.Run())
	assert.Equal(t, 2, v.renders)
	assert.True(t, w.closeAsked)
	e.Quit()
}

func TestRunRequiresWindowAndViewer(t *testing.T) {
	assert.ErrorIs(t, NewEngine().Run(), ErrNotConfigured)
	assert.ErrorIs(t, NewEngine(WithWindow(&scriptWindow{})).Run(), ErrNotConfigured)
}

func TestRenderFrameLimit(t *testing.T) {
	e := NewEngine(WithRenderFrameLimit(50)).(*engine)
	assert.Equal(t, int64(20_000_000), e.renderFrameLimit.Nanoseconds())

	e.SetRenderFrameLimit(0)
	assert.Zero(t, e.renderFrameLimit)
}
