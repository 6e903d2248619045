package transport

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/adamwoolhether/imagedl/client"
	"github.com/adamwoolhether/imagedl/errs"
)

// Ranged probes with a single-byte ranged GET instead of HEAD, for servers
// that mishandle HEAD. The probe still opens a body, so it is not cheap.
type Ranged struct {
	c *client.Client
}

// NewRanged builds the range-probing transport from cfg.
func NewRanged(cfg Config) (*Ranged, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	c, err := client.Build(clientOptions(cfg)...)
	if err != nil {
		return nil, err
	}

	return &Ranged{c: c}, nil
}

func (r *Ranged) Name() string { return string(KindRanged) }

func (r *Ranged) CheapProbe() bool { return false }

func (r *Ranged) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	body, _, err := r.c.Fetch(ctx, rawURL)
	if err != nil {
		return nil, classify(rawURL, err)
	}
	return body, nil
}

// ProbeHeaders issues GET with Range: bytes=0-0 and discards the body. When
// the server honours the range, the full size is recovered from Content-Range
// and reported as Content-Length.
func (r *Ranged) ProbeHeaders(ctx context.Context, rawURL string) (Metadata, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Metadata{}, errs.NewInvalidURL(rawURL).WithCause(err)
	}

	req, err := r.c.Request(ctx, u, http.MethodGet, client.WithHeaders(map[string][]string{
		"Range": {"bytes=0-0"},
	}))
	if err != nil {
		return Metadata{}, classify(rawURL, err)
	}

	var (
		header http.Header
		status int
	)
	err = r.c.Do(req, http.StatusPartialContent,
		client.WithAcceptStatus(http.StatusOK, http.StatusRequestedRangeNotSatisfiable),
		client.WithResponseHeader(&header),
		client.WithStatusCode(&status),
	)
	if err != nil {
		return Metadata{}, classify(rawURL, err)
	}

	// A 200 means the range was ignored and Content-Length is already the full size.
	if status != http.StatusOK {
		header.Del("Content-Length")
		if total, ok := contentRangeTotal(header.Get("Content-Range")); ok {
			header.Set("Content-Length", strconv.FormatInt(total, 10))
		}
	}

	// An unsatisfiable first byte means the resource exists but is empty.
	if status == http.StatusRequestedRangeNotSatisfiable {
		status = http.StatusOK
	}

	return Metadata{StatusCode: status, Header: header}, nil
}

// contentRangeTotal extracts the complete length from a Content-Range value
// such as "bytes 0-0/1234" or "bytes */1234". An unknown total ("*") is not ok.
func contentRangeTotal(header string) (int64, bool) {
	header = strings.TrimPrefix(strings.TrimSpace(header), "bytes ")
	_, total, found := strings.Cut(header, "/")
	if !found || total == "*" {
		return 0, false
	}

	n, err := strconv.ParseInt(total, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}

	return n, true
}
