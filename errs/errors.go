// Package errs defines the failure taxonomy shared by every stage of the
// download pipeline.
package errs

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	Unknown Kind = iota
	InvalidURL
	UnsupportedProtocol
	InvalidDestination
	AlreadyExists
	NotFound
	InvalidMimeType
	SizeExceeded
	EmptyFile
	Transport
	HTTP
	Write
)

var kindNames = map[Kind]string{
	Unknown:             "unknown",
	InvalidURL:          "invalid_url",
	UnsupportedProtocol: "unsupported_protocol",
	InvalidDestination:  "invalid_destination",
	AlreadyExists:       "already_exists",
	NotFound:            "not_found",
	InvalidMimeType:     "invalid_mime_type",
	SizeExceeded:        "size_exceeded",
	EmptyFile:           "empty_file",
	Transport:           "transport_error",
	HTTP:                "http_error",
	Write:               "write_error",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[Unknown]
}

// MarshalText lets a Kind serialize as its name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a name produced by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown error kind %q", text)
}

var (
	ErrInvalidURL          = errors.New("invalid url")
	ErrUnsupportedProtocol = errors.New("unsupported protocol")
	ErrInvalidDestination  = errors.New("invalid destination")
	ErrAlreadyExists       = errors.New("file already exists")
	ErrNotFound            = errors.New("not found")
	ErrInvalidMimeType     = errors.New("invalid mime type")
	ErrSizeExceeded        = errors.New("size exceeded")
	ErrEmptyFile           = errors.New("empty file")
	ErrTransport           = errors.New("transport failure")
	ErrHTTP                = errors.New("unexpected http status")
	ErrWrite               = errors.New("write failure")
)

var sentinels = map[Kind]error{
	InvalidURL:          ErrInvalidURL,
	UnsupportedProtocol: ErrUnsupportedProtocol,
	InvalidDestination:  ErrInvalidDestination,
	AlreadyExists:       ErrAlreadyExists,
	NotFound:            ErrNotFound,
	InvalidMimeType:     ErrInvalidMimeType,
	SizeExceeded:        ErrSizeExceeded,
	EmptyFile:           ErrEmptyFile,
	Transport:           ErrTransport,
	HTTP:                ErrHTTP,
	Write:               ErrWrite,
}

// Error carries a Kind together with the machine-readable context of the
// failure and remediation hints for whoever reads it.
type Error struct {
	Kind        Kind
	Detail      string
	StatusCode  int
	Context     map[string]any
	Suggestions []string
	Cause       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%v: %s", e.sentinel(), e.Detail)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap exposes both the Kind's sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.sentinel()}
	}
	return []error{e.sentinel(), e.Cause}
}

func (e *Error) sentinel() error {
	if s, ok := sentinels[e.Kind]; ok {
		return s
	}
	return errors.New(Unknown.String())
}

// WithCause returns a copy of e wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	cpy := *e
	cpy.Context = maps.Clone(e.Context)
	cpy.Suggestions = slices.Clone(e.Suggestions)
	cpy.Cause = cause
	return &cpy
}

// KindOf returns the Kind of the first *Error found in err's chain,
// or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return nil, false
	}
	return e, true
}
