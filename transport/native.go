package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/adamwoolhether/imagedl/client/throttle"
	"github.com/adamwoolhether/imagedl/errs"
)

// Native talks to net/http directly with a hand-configured transport.
// Its probe is a true HEAD.
type Native struct {
	hc        *http.Client
	userAgent string
}

// NewNative builds the net/http-backed transport from cfg.
func NewNative(cfg Config) (*Native, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	dialer := &net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	var rt http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.Timeout,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: !cfg.VerifyTLS, //nolint:gosec // opt-in via Config.VerifyTLS.
		},
		ForceAttemptHTTP2: true,
		MaxIdleConns:      10,
		IdleConnTimeout:   90 * time.Second,
	}

	if cfg.RPS > 0 {
		logger := cfg.logger()
		throttled, err := throttle.NewRoundTripper(cfg.RPS, cfg.burst(), func() *slog.Logger { return logger }, rt)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		rt = throttled
	}

	limit := cfg.MaxRedirects
	hc := &http.Client{
		Transport: rt,
		Timeout:   cfg.Timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) > limit {
				return fmt.Errorf("stopped after %d redirects", limit)
			}
			return nil
		},
	}

	return &Native{hc: hc, userAgent: cfg.userAgent()}, nil
}

func (n *Native) Name() string { return string(KindNative) }

func (n *Native) CheapProbe() bool { return true }

func (n *Native) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := n.do(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, statusError(rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.NewTransport(rawURL, fmt.Errorf("reading body: %w", err))
	}

	return body, nil
}

func (n *Native) ProbeHeaders(ctx context.Context, rawURL string) (Metadata, error) {
	resp, err := n.do(ctx, http.MethodHead, rawURL)
	if err != nil {
		return Metadata{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return Metadata{}, statusError(rawURL, resp.StatusCode)
	}

	return Metadata{StatusCode: resp.StatusCode, Header: resp.Header.Clone()}, nil
}

func (n *Native) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, errs.NewInvalidURL(rawURL).WithCause(err)
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.hc.Do(req)
	if err != nil {
		return nil, errs.NewTransport(rawURL, err)
	}

	return resp, nil
}
