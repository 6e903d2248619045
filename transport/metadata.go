package transport

import (
	"mime"
	"net/http"
	"strconv"
	"strings"
)

// Metadata is a read-only view over a probe's status and headers.
// Header lookups are case-insensitive.
type Metadata struct {
	StatusCode int
	Header     http.Header
}

// NewMetadata builds Metadata from an arbitrary header map, canonicalizing
// the keys.
func NewMetadata(status int, headers map[string]string) Metadata {
	h := make(http.Header, len(headers))
	for k, v := range headers {
		h.Set(k, v)
	}
	return Metadata{StatusCode: status, Header: h}
}

// Get returns the first value for key, or "".
func (m Metadata) Get(key string) string {
	if m.Header == nil {
		return ""
	}
	return m.Header.Get(key)
}

// ContentLength returns the declared body size, 0 if absent or invalid.
func (m Metadata) ContentLength() int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(m.Get("Content-Length")), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// HasContentLength reports whether a valid Content-Length was declared.
func (m Metadata) HasContentLength() bool {
	n, err := strconv.ParseInt(strings.TrimSpace(m.Get("Content-Length")), 10, 64)
	return err == nil && n >= 0
}

// ContentType returns the raw Content-Type, media parameters included.
func (m Metadata) ContentType() string {
	return m.Get("Content-Type")
}

// MediaType returns the lower-cased Content-Type without parameters.
func (m Metadata) MediaType() string {
	return MediaType(m.ContentType())
}

// LastModified returns the raw Last-Modified header, or "".
func (m Metadata) LastModified() string {
	return m.Get("Last-Modified")
}

// ContentDisposition returns the raw Content-Disposition header, or "".
func (m Metadata) ContentDisposition() string {
	return m.Get("Content-Disposition")
}

// OK reports a 2xx or 3xx status.
func (m Metadata) OK() bool {
	return m.StatusCode >= 200 && m.StatusCode < 400
}

// MediaType strips parameters from a Content-Type value and lower-cases it.
func MediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mt))
}
