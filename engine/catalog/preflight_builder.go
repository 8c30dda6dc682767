package catalog

import "log/slog"

// PreflightOption is a functional option applied to a Preflight run.
type PreflightOption func(*preflight)

// WithWorkers sets the maximum number of concurrent validations.
// Values below 1 keep the default of NumCPU-1.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - PreflightOption: a function that applies the worker count
func WithWorkers(n int) PreflightOption {
	return func(p *preflight) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithValidator replaces shader.Validate as the per-entry check.
//
// Parameters:
//   - validate: called with the entry name and its complete source
//
// Returns:
//   - PreflightOption: a function that applies the validator
func WithValidator(validate func(key, source string) error) PreflightOption {
	return func(p *preflight) {
		if validate != nil {
			p.validate = validate
		}
	}
}

// WithLogger sets the logger failures and the summary are written to.
//
// Parameters:
//   - logger: the logger; nil keeps slog.Default()
//
// Returns:
//   - PreflightOption: a function that applies the logger
func WithLogger(logger *slog.Logger) PreflightOption {
	return func(p *preflight) {
		if logger != nil {
			p.logger = logger
		}
	}
}
