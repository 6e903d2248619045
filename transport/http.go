package transport

import (
	"context"

	"github.com/adamwoolhether/imagedl/client"
)

// HTTP is the default backend, built on [client.Client]. Its probe is a true HEAD.
type HTTP struct {
	c *client.Client
}

// NewHTTP builds the client-backed transport from cfg.
func NewHTTP(cfg Config) (*HTTP, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	c, err := client.Build(clientOptions(cfg)...)
	if err != nil {
		return nil, err
	}

	return &HTTP{c: c}, nil
}

func clientOptions(cfg Config) []client.Option {
	opts := []client.Option{
		client.WithTimeout(cfg.Timeout),
		client.WithConnectTimeout(cfg.ConnectTimeout),
		client.WithMaxRedirects(cfg.MaxRedirects),
		client.WithUserAgent(cfg.userAgent()),
		client.WithLogger(cfg.logger()),
	}
	if !cfg.VerifyTLS {
		opts = append(opts, client.WithInsecureSkipVerify())
	}
	if cfg.RPS > 0 {
		opts = append(opts, client.WithThrottle(cfg.RPS, cfg.burst()))
	}
	if cfg.Progress {
		opts = append(opts, client.WithProgress())
	}
	return opts
}

func (h *HTTP) Name() string { return string(KindClient) }

func (h *HTTP) CheapProbe() bool { return true }

func (h *HTTP) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	body, _, err := h.c.Fetch(ctx, rawURL)
	if err != nil {
		return nil, classify(rawURL, err)
	}
	return body, nil
}

func (h *HTTP) ProbeHeaders(ctx context.Context, rawURL string) (Metadata, error) {
	header, status, err := h.c.Head(ctx, rawURL)
	if err != nil {
		return Metadata{}, classify(rawURL, err)
	}
	return Metadata{StatusCode: status, Header: header}, nil
}
