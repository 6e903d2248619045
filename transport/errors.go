package transport

import (
	"net/http"

	"github.com/adamwoolhether/imagedl/client"
	"github.com/adamwoolhether/imagedl/errs"
)

// classify maps a backend failure onto the pipeline taxonomy.
func classify(rawURL string, err error) error {
	if status := client.StatusCode(err); status > 0 {
		return statusError(rawURL, status).WithCause(err)
	}
	return errs.NewTransport(rawURL, err)
}

// statusError maps an HTTP status of 400 or above onto the pipeline taxonomy.
func statusError(rawURL string, status int) *errs.Error {
	switch status {
	case http.StatusNotFound, http.StatusGone:
		return errs.NewNotFound(rawURL, status)
	default:
		return errs.NewHTTP(rawURL, status)
	}
}
