// Package imagedl downloads remote images to local files without ever
// leaving a partial or unvalidated file at the destination.
//
// The package-level functions build a fresh [download.Downloader] from the
// given options for every call and never return errors: failures are
// reported in the returned values. Long-lived callers should build a
// Downloader once with [NewDownloader] and reuse it.
package imagedl

import (
	"context"
	"fmt"
	"time"

	"github.com/adamwoolhether/imagedl/batch"
	"github.com/adamwoolhether/imagedl/download"
	"github.com/adamwoolhether/imagedl/transport"
)

// NewDownloader builds a Downloader over the configured transport, or the
// first available one in [transport.Preference].
func NewDownloader(optFns ...Option) (*download.Downloader, error) {
	opts, err := newOptions(optFns)
	if err != nil {
		return nil, err
	}

	return opts.downloader()
}

// NewManager builds a batch Manager over a fresh Downloader.
func NewManager(optFns ...Option) (*batch.Manager, error) {
	opts, err := newOptions(optFns)
	if err != nil {
		return nil, err
	}

	return opts.manager()
}

// Download fetches rawURL into dest. dest may be an existing directory.
func Download(ctx context.Context, rawURL, dest string, optFns ...Option) download.Result {
	opts, err := newOptions(optFns)
	if err != nil {
		return setupFailure(rawURL, dest, err)
	}

	d, err := opts.downloader()
	if err != nil {
		return setupFailure(rawURL, dest, err)
	}

	return d.Download(ctx, rawURL, dest, opts.call...)
}

// IsAccessible reports whether rawURL answers with a 2xx or 3xx status.
func IsAccessible(ctx context.Context, rawURL string, optFns ...Option) bool {
	d, err := NewDownloader(optFns...)
	if err != nil {
		return false
	}

	return d.IsAccessible(ctx, rawURL)
}

// GetFileInfo describes rawURL without downloading it.
func GetFileInfo(ctx context.Context, rawURL string, optFns ...Option) download.FileProbe {
	d, err := NewDownloader(optFns...)
	if err != nil {
		return download.FileProbe{Size: -1, Error: err.Error()}
	}

	return d.GetFileInfo(ctx, rawURL)
}

// DownloadAll downloads every url into dir. One failed url never stops the
// others, and Results keeps the order of urls.
func DownloadAll(ctx context.Context, urls []string, dir string, optFns ...Option) batch.Result {
	opts, err := newOptions(optFns)
	if err != nil {
		return setupFailures(urls, dir, err)
	}

	m, err := opts.manager()
	if err != nil {
		return setupFailures(urls, dir, err)
	}

	return m.DownloadAll(ctx, urls, dir, opts.call...)
}

func (o *options) downloader() (*download.Downloader, error) {
	var (
		t   transport.Transport
		err error
	)
	if o.kind != "" {
		t, err = transport.New(o.kind, o.cfg)
	} else {
		t, err = transport.Detect(o.cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("building transport: %w", err)
	}

	var dOpts []download.Option
	if o.fs != nil {
		dOpts = append(dOpts, download.WithFS(o.fs))
	}
	if o.logger != nil {
		dOpts = append(dOpts, download.WithLogger(o.logger))
	}
	if o.recorder != nil {
		dOpts = append(dOpts, download.WithMetrics(o.recorder))
	}
	if o.tempDir != "" {
		dOpts = append(dOpts, download.WithTempDir(o.tempDir))
	}

	return download.New(t, dOpts...)
}

func (o *options) manager() (*batch.Manager, error) {
	d, err := o.downloader()
	if err != nil {
		return nil, err
	}

	bOpts := []batch.Option{batch.WithConcurrency(o.concurrency)}
	if o.logger != nil {
		bOpts = append(bOpts, batch.WithLogger(o.logger))
	}

	return batch.New(d, bOpts...)
}

// setupFailure reports a Downloader that could not be built as a failed result.
func setupFailure(rawURL, dest string, err error) download.Result {
	return download.Result{
		Destination: dest,
		Error:       err.Error(),
		Metadata:    download.Metadata{URL: rawURL, DownloadTime: time.Now().Format(download.TimeLayout)},
	}
}

func setupFailures(urls []string, dir string, err error) batch.Result {
	results := make([]download.Result, len(urls))
	for i, u := range urls {
		results[i] = setupFailure(u, dir, err)
	}

	return batch.Result{
		Total:   len(urls),
		Failed:  len(urls),
		Results: results,
	}
}
