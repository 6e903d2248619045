package download

import (
	"time"

	"github.com/adamwoolhether/imagedl/errs"
)

// TimeLayout formats Metadata.DownloadTime.
const TimeLayout = "2006-01-02 15:04:05"

// tracerName names the tracer taken from the global provider.
const tracerName = "github.com/adamwoolhether/imagedl/download"

// Provider supplies the source, destination and constraints of one download.
type Provider interface {
	URL() string
	Destination() string
	AllowOverwrite() bool
	MaxFileSize() int64
}

// Recorder receives one observation per finished download.
type Recorder interface {
	Record(transport string, res Result, elapsed time.Duration)
}

// Result is the outcome of one download. Size and MimeType are only set on
// success; Error and Kind only on failure.
type Result struct {
	Success     bool      `json:"success"`
	Destination string    `json:"destination"`
	Size        int64     `json:"size"`
	MimeType    string    `json:"mime_type"`
	Error       string    `json:"error,omitempty"`
	Kind        errs.Kind `json:"kind,omitzero"`
	Metadata    Metadata  `json:"metadata"`
}

// Metadata describes how a result was obtained.
type Metadata struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	OriginalSize int64  `json:"original_size"`
	DownloadTime string `json:"download_time"`
	Method       string `json:"method"`
}

// FileProbe is the read-only view of a remote resource. Size is -1 when
// unknown; empty strings mean absent. Error is set when Exists is false.
type FileProbe struct {
	Exists       bool   `json:"exists"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mime_type,omitempty"`
	Filename     string `json:"filename,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	Error        string `json:"error,omitempty"`
}

func failure(dest string, err error, md Metadata) Result {
	return Result{
		Destination: dest,
		Error:       err.Error(),
		Kind:        errs.KindOf(err),
		Metadata:    md,
	}
}
