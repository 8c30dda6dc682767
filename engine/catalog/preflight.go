package catalog

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-toy/engine/renderer/shader"
)

// Failure is a catalog entry that did not pass validation.
type Failure struct {
	Name string
	Err  error
}

type preflight struct {
	workers  int
	validate func(key, source string) error
	logger   *slog.Logger
}

// Preflight validates every entry's complete source on a worker pool and returns the
// failures in catalog order. It never touches the GPU; failures are logged at warn level
// and left for the viewer's rebuild path to report when the entry is selected.
//
// Parameters:
//   - c: the catalog to validate
//   - options: a variadic list of PreflightOption functions
//
// Returns:
//   - []Failure: the entries that failed, or nil
func Preflight(c *Catalog, options ...PreflightOption) []Failure {
	p := &preflight{
		workers:  max(runtime.NumCPU()-1, 1),
		validate: shader.Validate,
		logger:   slog.Default(),
	}
	for _, opt := range options {
		opt(p)
	}
	if len(c.Entries) == 0 {
		return nil
	}

	start := time.Now()
	pool := worker.NewDynamicWorkerPool(min(p.workers, len(c.Entries)), 256, 1*time.Second)

	// Each task writes only its own slot; the WaitGroup is the barrier.
	errs := make([]error, len(c.Entries))
	var wg sync.WaitGroup
	for i, e := range c.Entries {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				errs[i] = p.run(e.Name, c.Source(e))
				return nil, nil
			},
		})
	}
	wg.Wait()

	var failures []Failure
	for i, err := range errs {
		if err == nil {
			continue
		}
		failures = append(failures, Failure{Name: c.Entries[i].Name, Err: err})
		p.logger.Warn("shader failed preflight", slog.String("shader", c.Entries[i].Name), slog.Any("err", err))
	}
	p.logger.Info("catalog preflight",
		slog.Int("shaders", len(c.Entries)),
		slog.Int("failed", len(failures)),
		slog.Duration("took", time.Since(start)))
	return failures
}

func (p *preflight) run(name, source string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: validator panic: %v", shader.ErrInvalidSource, name, r)
		}
	}()
	return p.validate(name, source)
}
