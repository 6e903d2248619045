package download

import (
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/imagedl/fsys"
)

// Option configures a Downloader via New.
type Option func(*options) error

type options struct {
	fs       *fsys.FS
	logger   *slog.Logger
	tracer   trace.Tracer
	recorder Recorder
	tempDir  string
	now      func() time.Time
}

// WithFS sets the filesystem downloads are staged and committed on.
// Defaults to the host filesystem.
func WithFS(fs *fsys.FS) Option {
	return func(o *options) error {
		if fs == nil {
			return errors.New("filesystem must not be nil")
		}
		o.fs = fs
		return nil
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithTracer sets the tracer spans are started on. Defaults to the global
// otel tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		o.tracer = tracer
		return nil
	}
}

// WithMetrics reports every finished download to r.
func WithMetrics(r Recorder) Option {
	return func(o *options) error {
		o.recorder = r
		return nil
	}
}

// WithTempDir sets the staging directory. Defaults to the filesystem's temp dir.
func WithTempDir(dir string) Option {
	return func(o *options) error {
		if dir == "" {
			return errors.New("temp dir must not be empty")
		}
		o.tempDir = dir
		return nil
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		if now == nil {
			return errors.New("clock must not be nil")
		}
		o.now = now
		return nil
	}
}

// CallOption tunes a single download.
type CallOption func(*callOptions)

type callOptions struct {
	overwrite    bool
	maxSize      int64
	validateMime bool
	timeout      time.Duration
}

func newCallOptions(opts []CallOption) callOptions {
	o := callOptions{validateMime: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithOverwrite allows replacing an existing destination.
func WithOverwrite(allow bool) CallOption {
	return func(o *callOptions) {
		o.overwrite = allow
	}
}

// WithMaxFileSize caps the download at n bytes; zero or less is unlimited.
func WithMaxFileSize(n int64) CallOption {
	return func(o *callOptions) {
		o.maxSize = n
	}
}

// WithValidateMimeType toggles the image/* gate. On by default.
func WithValidateMimeType(enabled bool) CallOption {
	return func(o *callOptions) {
		o.validateMime = enabled
	}
}

// WithTimeout bounds the whole download, on top of the transport's own timeouts.
func WithTimeout(d time.Duration) CallOption {
	return func(o *callOptions) {
		o.timeout = d
	}
}
