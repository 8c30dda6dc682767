// Command oxytoy opens a window and renders WGSL fragment shaders from a catalog.
// Left and Right switch shaders, Escape quits.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/Carmen-Shannon/oxy-toy/engine"
	"github.com/Carmen-Shannon/oxy-toy/engine/catalog"
	"github.com/Carmen-Shannon/oxy-toy/engine/config"
	"github.com/Carmen-Shannon/oxy-toy/engine/viewer"
	"github.com/Carmen-Shannon/oxy-toy/engine/window"
)

func init() {
	// GLFW must run on the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "path to a TOML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("oxytoy exited", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cat, err := loadCatalog(cfg.Shaders.Dir)
	if err != nil {
		return err
	}
	list, err := cat.ShaderList()
	if err != nil {
		return err
	}
	logger.Info("catalog loaded", slog.Int("shaders", list.Len()), slog.Any("names", list.Names()))

	if cfg.Shaders.Strict {
		catalog.Preflight(cat,
			catalog.WithWorkers(cfg.Shaders.Workers),
			catalog.WithLogger(logger),
		)
	}

	win, err := window.NewWindow(cfg.WindowOptions()...)
	if err != nil {
		return err
	}

	v := viewer.NewViewer(list,
		viewer.WithLogger(logger),
		viewer.WithStrictValidation(cfg.Shaders.Strict),
		viewer.WithRendererOptions(cfg.RendererOptions()...),
	)
	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithViewer(v),
		engine.WithProfiling(cfg.Engine.Profiling),
		engine.WithRenderFrameLimit(cfg.Engine.FrameLimit),
		engine.WithLogger(logger),
	)
	return eng.Run()
}

// loadCatalog returns the bundled catalog, with its bodies replaced by the *.wgsl files of dir when dir is set.
func loadCatalog(dir string) (*catalog.Catalog, error) {
	cat, err := catalog.Embedded()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return cat, nil
	}
	entries, err := catalog.LoadEntries(os.DirFS(dir), "*.wgsl")
	if err != nil {
		return nil, fmt.Errorf("shader dir %s: %w", dir, err)
	}
	cat.Entries = entries
	return cat, nil
}
