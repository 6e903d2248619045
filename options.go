package imagedl

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/adamwoolhether/imagedl/client/throttle"
	"github.com/adamwoolhether/imagedl/download"
	"github.com/adamwoolhether/imagedl/fsys"
	"github.com/adamwoolhether/imagedl/transport"
)

// Option configures the package-level entry points.
//
// Transport policy: WithTimeout, WithConnectTimeout, WithMaxRedirects,
// WithVerifyTLS, WithUserAgent, WithThrottle, WithProgress, WithTransport.
// Per download: WithOverwrite, WithMaxFileSize, WithValidateMimeType.
// Wiring: WithLogger, WithFS, WithTempDir, WithMetrics, WithConcurrency.
type Option func(*options) error

type options struct {
	cfg         transport.Config
	kind        transport.Kind
	call        []download.CallOption
	fs          *fsys.FS
	logger      *slog.Logger
	recorder    download.Recorder
	tempDir     string
	concurrency int
}

func newOptions(optFns []Option) (*options, error) {
	o := &options{
		cfg:         transport.DefaultConfig(),
		concurrency: 1,
	}
	for _, opt := range optFns {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("applying option: %w", err)
		}
	}
	return o, nil
}

// WithTimeout bounds each request. Default 30s.
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		o.cfg.Timeout = d
		return nil
	}
}

// WithConnectTimeout bounds dialing and the TLS handshake. Default 10s.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.New("connect timeout must not be negative")
		}
		o.cfg.ConnectTimeout = d
		return nil
	}
}

// WithMaxRedirects caps followed redirects. Default 5.
func WithMaxRedirects(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return errors.New("max redirects must not be negative")
		}
		o.cfg.MaxRedirects = n
		return nil
	}
}

// WithVerifyTLS toggles certificate verification. On by default.
func WithVerifyTLS(verify bool) Option {
	return func(o *options) error {
		o.cfg.VerifyTLS = verify
		return nil
	}
}

// WithUserAgent sets the User-Agent header of every request.
func WithUserAgent(ua string) Option {
	return func(o *options) error {
		o.cfg.UserAgent = ua
		return nil
	}
}

// WithThrottle limits requests per host.
func WithThrottle(rps, burst int) Option {
	return func(o *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		o.cfg.RPS = rps
		o.cfg.Burst = burst
		return nil
	}
}

// WithProgress logs body transfer progress at debug level.
func WithProgress(enabled bool) Option {
	return func(o *options) error {
		o.cfg.Progress = enabled
		return nil
	}
}

// WithTransport selects a backend instead of detecting one.
func WithTransport(kind transport.Kind) Option {
	return func(o *options) error {
		switch kind {
		case transport.KindClient, transport.KindNative, transport.KindRanged:
		default:
			return fmt.Errorf("unknown transport %q", kind)
		}
		o.kind = kind
		return nil
	}
}

// WithOverwrite allows replacing an existing destination.
func WithOverwrite(allow bool) Option {
	return func(o *options) error {
		o.call = append(o.call, download.WithOverwrite(allow))
		return nil
	}
}

// WithMaxFileSize caps each download at n bytes; zero is unlimited.
func WithMaxFileSize(n int64) Option {
	return func(o *options) error {
		if n < 0 {
			return errors.New("max file size must not be negative")
		}
		o.call = append(o.call, download.WithMaxFileSize(n))
		return nil
	}
}

// WithValidateMimeType toggles the image content type check. On by default.
func WithValidateMimeType(enabled bool) Option {
	return func(o *options) error {
		o.call = append(o.call, download.WithValidateMimeType(enabled))
		return nil
	}
}

// WithLogger sets the logger for downloads and transport selection.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		o.cfg.Logger = logger
		return nil
	}
}

// WithFS sets the filesystem files are staged and committed on.
func WithFS(fs *fsys.FS) Option {
	return func(o *options) error {
		if fs == nil {
			return errors.New("filesystem must not be nil")
		}
		o.fs = fs
		return nil
	}
}

// WithTempDir sets where downloads are staged before commit.
func WithTempDir(dir string) Option {
	return func(o *options) error {
		o.tempDir = dir
		return nil
	}
}

// WithMetrics reports every finished download to r.
func WithMetrics(r download.Recorder) Option {
	return func(o *options) error {
		o.recorder = r
		return nil
	}
}

// WithConcurrency runs up to n batch entries at once. Default 1.
func WithConcurrency(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return errors.New("concurrency must be at least 1")
		}
		o.concurrency = n
		return nil
	}
}
