package renderer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Always supported.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing. Falls back to the first supported mode when unavailable.
	PresentModeUncapped
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeVSync:
		return "vsync"
	case PresentModeUncapped:
		return "uncapped"
	default:
		return fmt.Sprintf("PresentMode(%d)", int(m))
	}
}

// ParsePresentMode converts a configuration value ("vsync" or "uncapped") to a PresentMode.
func ParsePresentMode(s string) (PresentMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "vsync", "fifo":
		return PresentModeVSync, nil
	case "uncapped", "immediate":
		return PresentModeUncapped, nil
	default:
		return 0, fmt.Errorf("unknown present mode %q", s)
	}
}

func (m PresentMode) wgpu() wgpu.PresentMode {
	if m == PresentModeUncapped {
		return wgpu.PresentModeImmediate
	}
	return wgpu.PresentModeFifo
}

var (
	// ErrNoAdapter is returned when no GPU adapter compatible with the surface exists.
	ErrNoAdapter = errors.New("renderer: no compatible adapter")

	// ErrNoDevice is returned when the adapter refuses to create a device.
	ErrNoDevice = errors.New("renderer: device request failed")

	// ErrNoSRGBFormat is returned when the surface offers no sRGB color format.
	ErrNoSRGBFormat = errors.New("renderer: can't find a compatible surface format")

	// ErrSurfaceLost means the surface must be reconfigured before the next frame.
	ErrSurfaceLost = errors.New("renderer: surface lost")

	// ErrSurfaceTransient covers acquisition failures (timeout, outdated) where skipping the frame is enough.
	ErrSurfaceTransient = errors.New("renderer: surface temporarily unavailable")

	// ErrOutOfMemory means the GPU ran out of memory or the device was lost; rendering cannot continue.
	ErrOutOfMemory = errors.New("renderer: out of memory")

	// ErrPipelineBuild is returned when a render pipeline could not be created.
	ErrPipelineBuild = errors.New("renderer: pipeline build failed")

	// ErrNoFrame is returned when a draw or submit is issued outside BeginFrame/EndFrame.
	ErrNoFrame = errors.New("renderer: no frame in progress")
)

// SurfaceConfig is the configuration the surface was last configured with.
type SurfaceConfig struct {
	Format      wgpu.TextureFormat
	Width       uint32
	Height      uint32
	PresentMode wgpu.PresentMode
	AlphaMode   wgpu.CompositeAlphaMode
}

// isSRGB reports whether format encodes color in the sRGB transfer function.
func isSRGB(format wgpu.TextureFormat) bool {
	switch format {
	case wgpu.TextureFormatRGBA8UnormSrgb, wgpu.TextureFormatBGRA8UnormSrgb:
		return true
	default:
		return false
	}
}

// selectSurfaceConfig picks the surface configuration from the adapter's capabilities:
// the first sRGB format, the preferred present mode when offered (else the first offered),
// and the first alpha mode.
func selectSurfaceConfig(caps wgpu.SurfaceCapabilities, preferred wgpu.PresentMode, width, height int) (SurfaceConfig, error) {
	cfg := SurfaceConfig{Width: uint32(width), Height: uint32(height)}

	found := false
	for _, f := range caps.Formats {
		if isSRGB(f) {
			cfg.Format = f
			found = true
			break
		}
	}
	if !found {
		return SurfaceConfig{}, ErrNoSRGBFormat
	}

	cfg.PresentMode = wgpu.PresentModeFifo
	if len(caps.PresentModes) > 0 {
		cfg.PresentMode = caps.PresentModes[0]
		for _, m := range caps.PresentModes {
			if m == preferred {
				cfg.PresentMode = m
				break
			}
		}
	}
	if len(caps.AlphaModes) > 0 {
		cfg.AlphaMode = caps.AlphaModes[0]
	}
	return cfg, nil
}

// classifySurfaceError maps a swapchain acquisition failure onto the recovery it needs.
// The driver reports the acquisition status only as text.
func classifySurfaceError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "OutOfMemory"), strings.Contains(msg, "DeviceLost"):
		return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	case strings.Contains(msg, "Lost"):
		return fmt.Errorf("%w: %w", ErrSurfaceLost, err)
	default:
		return fmt.Errorf("%w: %w", ErrSurfaceTransient, err)
	}
}

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}
