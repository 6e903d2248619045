// Package transport defines the contract the download orchestrator uses to
// reach remote resources, and the three interchangeable backends that
// implement it.
//
// All backends expose the same two operations, a full-body GET and a header
// probe. They differ only in their default policies and in whether the header
// probe is a true HEAD ([Transport.CheapProbe]) or has to be approximated with
// a body-suppressing GET.
package transport

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adamwoolhether/imagedl/validate"
)

// Transport performs the network half of a download.
type Transport interface {
	// Name identifies the backend in results and logs.
	Name() string
	// Fetch returns the complete response body of a GET against rawURL.
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
	// ProbeHeaders returns the response status and headers for rawURL
	// without transferring the body.
	ProbeHeaders(ctx context.Context, rawURL string) (Metadata, error)
	// CheapProbe reports whether ProbeHeaders is a true HEAD request. When it
	// is not, callers should validate against the fetched body instead.
	CheapProbe() bool
}

// Kind names a backend.
type Kind string

const (
	KindClient Kind = "client"
	KindNative Kind = "native"
	KindRanged Kind = "ranged"
)

// Preference is the order [Detect] tries backends in by default.
var Preference = []Kind{KindClient, KindNative, KindRanged}

// Config holds the policy every backend honours.
type Config struct {
	Timeout        time.Duration `json:"timeout" validate:"gte=0"`
	ConnectTimeout time.Duration `json:"connect_timeout" validate:"gte=0"`
	MaxRedirects   int           `json:"max_redirects" validate:"gte=0,lte=50"`
	VerifyTLS      bool          `json:"verify_tls"`
	UserAgent      string        `json:"user_agent" validate:"omitempty,printascii"`
	RPS            int           `json:"rps" validate:"gte=0"`
	Burst          int           `json:"burst" validate:"gte=0"`
	// Progress logs body transfer progress at debug level. Only the
	// client backend reports it.
	Progress       bool          `json:"progress"`
	Logger         *slog.Logger  `json:"-" validate:"-"`
}

// DefaultUserAgent is sent when Config.UserAgent is empty.
const DefaultUserAgent = "imagedl/1.0"

// DefaultConfig returns the default policy: 30s overall, 10s connect,
// at most 5 redirects, TLS verified.
func DefaultConfig() Config {
	return Config{
		Timeout:        30 * time.Second,
		ConnectTimeout: 10 * time.Second,
		MaxRedirects:   5,
		VerifyTLS:      true,
		UserAgent:      DefaultUserAgent,
	}
}

func (c Config) validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid transport config: %w", err)
	}
	return nil
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c Config) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return DefaultUserAgent
}

func (c Config) burst() int {
	return max(c.Burst, 1)
}
