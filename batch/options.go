package batch

import (
	"errors"
	"log/slog"
)

// Option configures a Manager via New.
type Option func(*options) error

type options struct {
	concurrency int
	logger      *slog.Logger
}

// WithConcurrency runs up to n entries at once. 1, the default, is sequential.
func WithConcurrency(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return errors.New("concurrency must be at least 1")
		}
		o.concurrency = n
		return nil
	}
}

// WithLogger sets the logger for batch summaries.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}
