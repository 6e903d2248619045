package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/adamwoolhether/imagedl/client/throttle"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	timeout            *time.Duration
	connectTimeout     *time.Duration
	userAgent          string
	throttle           *throttle.Config
	maxRedirects       *int
	insecureSkipVerify bool
	progress           bool
	logger             *slog.Logger
}

// WithTimeout sets the overall request timeout on the underlying [http.Client].
func WithTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.timeout = &d
		return nil
	}
}

// WithConnectTimeout bounds dialing and the TLS handshake.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("connect timeout must not be negative")
		}
		c.connectTimeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(c *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		c.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithMaxRedirects caps the number of redirects followed per request.
func WithMaxRedirects(n int) Option {
	return func(c *options) error {
		if n < 0 {
			return errors.New("max redirects must not be negative")
		}
		c.maxRedirects = &n
		return nil
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify() Option {
	return func(c *options) error {
		c.insecureSkipVerify = true
		return nil
	}
}

// WithProgress logs body transfer progress at debug level, at most once a second.
func WithProgress() Option {
	return func(c *options) error {
		c.progress = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		c.logger = logger
		return nil
	}
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}

// DoOption is a functional option for [Client.Do].
type DoOption func(options *doOpts) error

type doOpts struct {
	body   *[]byte
	header *http.Header
	status *int
	accept []int
}

// WithBody reads the full response body into dst.
func WithBody(dst *[]byte) DoOption {
	return func(opts *doOpts) error {
		if dst == nil {
			return errors.New("body destination must not be nil")
		}
		opts.body = dst

		return nil
	}
}

// WithResponseHeader copies the response headers into dst.
func WithResponseHeader(dst *http.Header) DoOption {
	return func(opts *doOpts) error {
		if dst == nil {
			return errors.New("header destination must not be nil")
		}
		opts.header = dst

		return nil
	}
}

// WithStatusCode records the response status code into dst.
func WithStatusCode(dst *int) DoOption {
	return func(opts *doOpts) error {
		if dst == nil {
			return errors.New("status destination must not be nil")
		}
		opts.status = dst

		return nil
	}
}

// WithAcceptStatus accepts additional status codes besides the expected one.
func WithAcceptStatus(codes ...int) DoOption {
	return func(opts *doOpts) error {
		opts.accept = append(opts.accept, codes...)

		return nil
	}
}

// RequestOption is a functional option for [Request].
type RequestOption func(options *requestOpts) error

type requestOpts struct {
	headers map[string][]string
}

// WithHeaders adds custom headers to the outgoing request.
func WithHeaders(headers map[string][]string) RequestOption {
	return func(opts *requestOpts) error {
		opts.headers = headers

		return nil
	}
}

// URLOption is a functional option for [URL].
type URLOption func(options *urlOpts)

type urlOpts struct {
	queryStrings map[string]string
}

// WithQueryStrings appends query parameters to the URL.
func WithQueryStrings(queryKV map[string]string) URLOption {
	return func(opts *urlOpts) {
		opts.queryStrings = queryKV
	}
}
