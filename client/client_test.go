package client_test

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/imagedl/client"
	"github.com/adamwoolhether/imagedl/client/throttle"
)

// pngMagic is the 8-byte PNG signature, enough for content sniffing.
var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func imageServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/cat.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("X-Echo-UA", r.Header.Get("User-Agent"))
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", "8")
			return
		}
		_, _ = w.Write(pngMagic)
	})
	mux.HandleFunc("/missing.png", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such image", http.StatusNotFound)
	})
	mux.HandleFunc("/private.png", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	})
	mux.HandleFunc("/huge-error.png", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(strings.Repeat("x", 64<<10)))
	})
	mux.HandleFunc("/redirect.png", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/cat.png", http.StatusFound)
	})
	mux.HandleFunc("/loop.png", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop.png", http.StatusFound)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func TestClient_Fetch(t *testing.T) {
	srv := imageServer(t)

	c, err := client.Build()
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	body, header, err := c.Fetch(t.Context(), srv.URL+"/cat.png")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if diff := cmp.Diff(pngMagic, body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
	if ct := header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("exp content type image/png, got %q", ct)
	}
}

func TestClient_FetchStatusErrors(t *testing.T) {
	srv := imageServer(t)

	c, err := client.Build()
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	testCases := map[string]struct {
		path      string
		expStatus int
		expAuth   bool
	}{
		"notFound":  {path: "/missing.png", expStatus: http.StatusNotFound},
		"forbidden": {path: "/private.png", expStatus: http.StatusForbidden, expAuth: true},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, _, err := c.Fetch(t.Context(), srv.URL+tc.path)
			if !errors.Is(err, client.ErrUnexpectedStatusCode) {
				t.Fatalf("exp ErrUnexpectedStatusCode, got: %v", err)
			}
			if got := client.StatusCode(err); got != tc.expStatus {
				t.Errorf("exp status %d, got %d", tc.expStatus, got)
			}
			if errors.Is(err, client.ErrAuthFailure) != tc.expAuth {
				t.Errorf("exp auth failure %v, got: %v", tc.expAuth, err)
			}
		})
	}
}

func TestClient_ErrorBodyCapped(t *testing.T) {
	srv := imageServer(t)

	c, err := client.Build()
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	_, _, err = c.Fetch(t.Context(), srv.URL+"/huge-error.png")

	var statusErr *client.UnexpectedStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("exp UnexpectedStatusError, got: %v", err)
	}
	if len(statusErr.Body) != 4<<10 {
		t.Errorf("exp error body capped at 4KB, got %d bytes", len(statusErr.Body))
	}
}

func TestClient_Head(t *testing.T) {
	srv := imageServer(t)

	c, err := client.Build(client.WithUserAgent("imagedl-test/1.0"))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	header, status, err := c.Head(t.Context(), srv.URL+"/cat.png")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if status != http.StatusOK {
		t.Errorf("exp 200, got %d", status)
	}
	if got := header.Get("Content-Length"); got != "8" {
		t.Errorf("exp content length 8, got %q", got)
	}
	if got := header.Get("X-Echo-UA"); got != "imagedl-test/1.0" {
		t.Errorf("exp user agent echoed, got %q", got)
	}
}

func TestClient_WithProgress(t *testing.T) {
	srv := imageServer(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c, err := client.Build(client.WithProgress(), client.WithLogger(logger))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	body, _, err := c.Fetch(t.Context(), srv.URL+"/cat.png")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if diff := cmp.Diff(pngMagic, body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}

	out := buf.String()
	if !strings.Contains(out, "fetch complete") {
		t.Errorf("exp completion line, got: %s", out)
	}
	if !strings.Contains(out, "transferred=8") {
		t.Errorf("exp 8 bytes transferred, got: %s", out)
	}
}

func TestClient_WithMaxRedirects(t *testing.T) {
	srv := imageServer(t)

	c, err := client.Build(client.WithMaxRedirects(3))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if _, _, err := c.Fetch(t.Context(), srv.URL+"/redirect.png"); err != nil {
		t.Errorf("exp single redirect to be followed, got: %v", err)
	}

	_, _, err = c.Fetch(t.Context(), srv.URL+"/loop.png")
	if !errors.Is(err, client.ErrTooManyRedirects) {
		t.Errorf("exp ErrTooManyRedirects, got: %v", err)
	}
}

func TestClient_WithTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c, err := client.Build(client.WithTimeout(10 * time.Millisecond))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if _, _, err := c.Fetch(t.Context(), ts.URL); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestClient_OptionValidation(t *testing.T) {
	testCases := map[string]struct {
		opt    client.Option
		expErr error
	}{
		"negativeTimeout": {opt: client.WithTimeout(-1)},
		"negativeConnect": {opt: client.WithConnectTimeout(-1)},
		"negativeMaxRedir": {
			opt: client.WithMaxRedirects(-1),
		},
		"zeroRPS": {
			opt:    client.WithThrottle(0, 10),
			expErr: throttle.ErrMustNotBeZero,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := client.Build(tc.opt)
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.expErr != nil && !errors.Is(err, tc.expErr) {
				t.Errorf("exp %v, got: %v", tc.expErr, err)
			}
		})
	}
}

func TestClient_Request(t *testing.T) {
	headers := map[string][]string{
		"Range":     {"bytes=0-0"},
		"Multi-Val": {"value", "value2"},
	}

	req, err := client.Request(t.Context(), client.URL("https", "localhost:8888", "/a.png"), http.MethodGet, client.WithHeaders(headers))
	if err != nil {
		t.Fatalf("create request exp nil err; got: %v", err)
	}

	for k, v := range headers {
		if diff := cmp.Diff(v, req.Header[k]); diff != "" {
			t.Errorf("header %s mismatch (-want +got):\n%s", k, diff)
		}
	}
}

func TestClient_RequestPropagatesTrace(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1},
		SpanID:     trace.SpanID{1},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(t.Context(), sc)

	req, err := client.Request(ctx, client.URL("https", "picsum.photos", "/64/64"), http.MethodGet)
	if err != nil {
		t.Fatalf("create request exp nil err; got: %v", err)
	}

	const exp = "00-01000000000000000000000000000000-0100000000000000-01"
	if got := req.Header.Get("Traceparent"); got != exp {
		t.Errorf("exp traceparent %q, got %q", exp, got)
	}
}

func TestClient_URL(t *testing.T) {
	testCases := map[string]struct {
		scheme string
		host   string
		path   string
		qs     map[string]string
		exp    string
	}{
		"basic": {
			scheme: "https",
			host:   "localhost:8888",
			path:   "/",
			exp:    "https://localhost:8888/",
		},
		"withQS": {
			scheme: "https",
			host:   "images.unsplash.com",
			path:   "/photo-1",
			qs:     map[string]string{"w": "640", "h": "480", "fit": "crop"},
			exp:    "https://images.unsplash.com/photo-1?fit=crop&h=480&w=640",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var opts []client.URLOption
			if tc.qs != nil {
				opts = append(opts, client.WithQueryStrings(tc.qs))
			}

			u := client.URL(tc.scheme, tc.host, tc.path, opts...)

			if u.String() != tc.exp {
				t.Errorf("exp generated url:, %q, got: %q", tc.exp, u.String())
			}
		})
	}
}

func TestClient_DoAcceptStatus(t *testing.T) {
	srv := imageServer(t)

	c, err := client.Build()
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	u, err := url.Parse(srv.URL + "/missing.png")
	if err != nil {
		t.Fatal(err)
	}

	req, err := c.Request(t.Context(), u, http.MethodGet)
	if err != nil {
		t.Fatal(err)
	}

	var status int
	if err := c.Do(req, http.StatusOK, client.WithAcceptStatus(http.StatusNotFound), client.WithStatusCode(&status)); err != nil {
		t.Fatalf("exp accepted 404, got: %v", err)
	}
	if status != http.StatusNotFound {
		t.Errorf("exp recorded 404, got %d", status)
	}
}
