package errs

import "fmt"

// NewInvalidURL reports a url that does not parse as an absolute url.
func NewInvalidURL(rawURL string) *Error {
	return &Error{
		Kind:    InvalidURL,
		Detail:  fmt.Sprintf("%q is not a well-formed url", rawURL),
		Context: map[string]any{"url": rawURL},
		Suggestions: []string{
			"Check that the url is valid and try again.",
			"Ensure the url includes a scheme and host.",
		},
	}
}

// NewUnsupportedProtocol reports a scheme other than http or https.
func NewUnsupportedProtocol(rawURL, scheme string) *Error {
	return &Error{
		Kind:    UnsupportedProtocol,
		Detail:  fmt.Sprintf("scheme %q for url %s, expected http or https", scheme, rawURL),
		Context: map[string]any{"url": rawURL, "protocol": scheme},
		Suggestions: []string{
			"Use an http:// or https:// url.",
		},
	}
}

// NewInvalidDestination reports a destination that cannot be written, with reason.
func NewInvalidDestination(path, reason string) *Error {
	return &Error{
		Kind:    InvalidDestination,
		Detail:  fmt.Sprintf("%s: %s", path, reason),
		Context: map[string]any{"path": path},
		Suggestions: []string{
			"Verify the destination directory exists.",
			"Check the directory is readable and writable by this process.",
		},
	}
}

// NewAlreadyExists reports a destination that exists while overwriting is off.
func NewAlreadyExists(path string) *Error {
	return &Error{
		Kind:    AlreadyExists,
		Detail:  path,
		Context: map[string]any{"path": path},
		Suggestions: []string{
			"Delete or rename the existing file and try again.",
			"Allow overwriting the destination.",
		},
	}
}

// NewNotFound reports a remote resource that does not exist. A status of 0 is omitted.
func NewNotFound(rawURL string, status int) *Error {
	detail := rawURL
	if status > 0 {
		detail = fmt.Sprintf("%s (status %d)", rawURL, status)
	}
	return &Error{
		Kind:       NotFound,
		Detail:     detail,
		StatusCode: status,
		Context:    map[string]any{"url": rawURL, "status": status},
		Suggestions: []string{
			"Check the url is correct and try again.",
			"Verify the resource exists at the specified url.",
		},
	}
}

// NewFileNotFound reports a local file missing when it should exist.
func NewFileNotFound(path string) *Error {
	return &Error{
		Kind:    NotFound,
		Detail:  fmt.Sprintf("file %s", path),
		Context: map[string]any{"path": path},
		Suggestions: []string{
			"Verify nothing else removed the file during the download.",
		},
	}
}

// NewInvalidMimeType reports content that is not image/*.
func NewInvalidMimeType(rawURL, mimeType string) *Error {
	if mimeType == "" {
		mimeType = "unknown"
	}
	return &Error{
		Kind:    InvalidMimeType,
		Detail:  fmt.Sprintf("%q for url %s, expected image/*", mimeType, rawURL),
		Context: map[string]any{"url": rawURL, "mime": mimeType},
		Suggestions: []string{
			"Check the url points at an image.",
			"Disable mime type validation if non-image content is expected.",
		},
	}
}

// NewSizeExceeded reports a body larger than the allowed limit.
func NewSizeExceeded(rawURL string, actual, limit int64) *Error {
	return &Error{
		Kind:    SizeExceeded,
		Detail:  fmt.Sprintf("%s is %d bytes, limit %d bytes", rawURL, actual, limit),
		Context: map[string]any{"url": rawURL, "actual": actual, "limit": limit},
		Suggestions: []string{
			"Raise the maximum file size.",
			"Request a smaller variant of the resource.",
		},
	}
}

// NewEmptyFile reports a zero-length download.
func NewEmptyFile(path string) *Error {
	return &Error{
		Kind:    EmptyFile,
		Detail:  path,
		Context: map[string]any{"path": path},
		Suggestions: []string{
			"Verify the remote resource is not empty.",
		},
	}
}

// NewTransport reports a failure below HTTP, such as a timeout.
func NewTransport(rawURL string, cause error) *Error {
	return &Error{
		Kind:    Transport,
		Detail:  rawURL,
		Context: map[string]any{"url": rawURL},
		Cause:   cause,
		Suggestions: []string{
			"Check the server is reachable and try again.",
			"Increase the timeout for slow servers.",
		},
	}
}

// NewHTTP reports an unexpected status other than not found.
func NewHTTP(rawURL string, status int) *Error {
	return &Error{
		Kind:       HTTP,
		Detail:     fmt.Sprintf("status %d for url %s", status, rawURL),
		StatusCode: status,
		Context:    map[string]any{"url": rawURL, "status": status},
		Suggestions: []string{
			"Check the server accepts the request and try again.",
		},
	}
}

// NewWrite reports a local filesystem failure.
func NewWrite(path string, cause error) *Error {
	return &Error{
		Kind:    Write,
		Detail:  path,
		Context: map[string]any{"path": path},
		Cause:   cause,
		Suggestions: []string{
			"Check the path is writable and the disk is not full.",
		},
	}
}
