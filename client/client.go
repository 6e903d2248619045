// Package client wraps net/http with the request plumbing shared by the
// download transports.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/adamwoolhether/imagedl/client/throttle"
)

// Client wraps the std-lib *http.Client.
// It builds its own *http.Client and *http.Transport, which
// can be customized via optional funcs.
type Client struct {
	c        *http.Client
	logger   *slog.Logger
	progress bool
}

// Build creates a Client from the given options.
func Build(optFns ...Option) (*Client, error) {
	client := &Client{
		c:      &http.Client{},
		logger: slog.Default(),
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	client.progress = opts.progress

	if opts.timeout != nil {
		client.c.Timeout = *opts.timeout
	}

	if opts.maxRedirects != nil {
		limit := *opts.maxRedirects
		client.c.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
			if len(via) > limit {
				return fmt.Errorf("%w: limit %d", ErrTooManyRedirects, limit)
			}
			return nil
		}
	}

	var transport http.RoundTripper = baseTransport(opts)
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(opts.throttle.RPS, opts.throttle.Burst, func() *slog.Logger { return client.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	client.c.Transport = transport

	return client, nil
}

// baseTransport clones the default transport, applying the dial timeout
// and TLS verification policy.
func baseTransport(opts options) *http.Transport {
	tr := http.DefaultTransport.(*http.Transport).Clone()

	if opts.connectTimeout != nil {
		tr.DialContext = (&net.Dialer{Timeout: *opts.connectTimeout}).DialContext
		tr.TLSHandshakeTimeout = *opts.connectTimeout
	}

	if opts.insecureSkipVerify {
		if tr.TLSClientConfig == nil {
			tr.TLSClientConfig = &tls.Config{}
		}
		tr.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec // opt-in via WithInsecureSkipVerify.
	}

	return tr
}

// Do fires the request and hands the response to the given DoOptions once the
// status code matches expCode or one of the WithAcceptStatus codes.
func (c *Client) Do(req *http.Request, expCode int, opts ...DoOption) error {
	var settings doOpts
	for _, opt := range opts {
		if err := opt(&settings); err != nil {
			return err
		}
	}
	accept := append([]int{expCode}, settings.accept...)

	doFunc := func(resp *http.Response) error {
		if settings.status != nil {
			*settings.status = resp.StatusCode
		}
		if settings.header != nil {
			*settings.header = resp.Header.Clone()
		}
		if settings.body != nil {
			b, err := c.readBody(resp)
			if err != nil {
				return fmt.Errorf("reading body: %w", err)
			}
			*settings.body = b
		}

		return nil
	}

	return c.exec(req, accept, doFunc)
}

// readBody reads the whole response body, logging progress when enabled.
func (c *Client) readBody(resp *http.Response) ([]byte, error) {
	if !c.progress {
		return io.ReadAll(resp.Body)
	}

	var buf bytes.Buffer
	if resp.ContentLength > 0 {
		buf.Grow(int(resp.ContentLength))
	}
	pw := newProgressWriter(&buf, c.logger, resp.Request.URL.String(), resp.ContentLength)
	if _, err := io.Copy(pw, resp.Body); err != nil {
		return nil, err
	}
	pw.done()

	return buf.Bytes(), nil
}

// Fetch issues a GET against rawURL and returns the full response body and headers.
func (c *Client) Fetch(ctx context.Context, rawURL string, opts ...RequestOption) ([]byte, http.Header, error) {
	req, err := c.requestFor(ctx, rawURL, http.MethodGet, opts...)
	if err != nil {
		return nil, nil, err
	}

	var (
		body   []byte
		header http.Header
	)
	if err := c.Do(req, http.StatusOK, WithBody(&body), WithResponseHeader(&header)); err != nil {
		return nil, nil, err
	}

	return body, header, nil
}

// Head issues a HEAD against rawURL. Any 2xx or 3xx status is accepted.
func (c *Client) Head(ctx context.Context, rawURL string, opts ...RequestOption) (http.Header, int, error) {
	req, err := c.requestFor(ctx, rawURL, http.MethodHead, opts...)
	if err != nil {
		return nil, 0, err
	}

	var (
		header http.Header
		status int
	)
	err = c.Do(req, http.StatusOK,
		WithAcceptStatus(okStatuses...),
		WithResponseHeader(&header),
		WithStatusCode(&status),
	)
	if err != nil {
		return nil, 0, err
	}

	return header, status, nil
}

// Request instantiates an *http.Request with the provided information.
// It's just a convenience method that wraps the public Request func.
func (c *Client) Request(ctx context.Context, reqURL *url.URL, method string, opts ...RequestOption) (*http.Request, error) {
	return Request(ctx, reqURL, method, opts...)
}

func (c *Client) requestFor(ctx context.Context, rawURL, method string, opts ...RequestOption) (*http.Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}

	return Request(ctx, u, method, opts...)
}

// exec runs the request and injected function on success after validating the status code.
func (c *Client) exec(req *http.Request, accept []int, fn execFn) error {
	resp, err := c.c.Do(req)
	if err != nil {
		return fmt.Errorf("exec http do: %w", err)
	}

	defer func() {
		// Bodies beyond maxDrainSize are left unread; the connection is not reused.
		if _, err := io.CopyN(io.Discard, resp.Body, maxDrainSize); err != nil && !errors.Is(err, io.EOF) {
			c.logger.Debug("failed to discard unused body", "error", err)
		}
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	if !slices.Contains(accept, resp.StatusCode) {
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
		if err != nil {
			b = []byte("unable to read body")
		}

		statusErr := ErrUnexpectedStatusCode
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			statusErr = fmt.Errorf("%w: %w", ErrAuthFailure, ErrUnexpectedStatusCode)
		}

		return &UnexpectedStatusError{
			StatusCode: resp.StatusCode,
			Body:       string(b),
			Err:        statusErr,
		}
	}

	if err := fn(resp); err != nil {
		return fmt.Errorf("exec fn: %w", err)
	}

	return nil
}

// Request instantiates an *http.Request with the provided information.
func Request(ctx context.Context, reqURL *url.URL, method string, opts ...RequestOption) (*http.Request, error) {
	var settings requestOpts
	for _, opt := range opts {
		if err := opt(&settings); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	for k, v := range settings.headers {
		for _, element := range v {
			req.Header.Add(k, element)
		}
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	return req, nil
}

// URL creates a url.URL for use in Request.
func URL(scheme, host, path string, opts ...URLOption) *url.URL {
	var settings urlOpts
	for _, opt := range opts {
		opt(&settings)
	}

	endpoint := url.URL{
		Scheme: scheme,
		Host:   host,
		Path:   path,
	}

	if settings.queryStrings != nil {
		queryParams := url.Values{}
		for k, v := range settings.queryStrings {
			queryParams.Add(k, v)
		}

		endpoint.RawQuery = queryParams.Encode()
	}

	return &endpoint
}
