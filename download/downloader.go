// Package download drives a single image download from URL to committed
// file: destination resolution, validation, staging, commit and cleanup.
//
// [Downloader.Download] never returns an error; every failure is folded into
// the returned [Result]. [Downloader.Fetch] runs the same pipeline but also
// returns the structured *errs.Error for callers that want to branch on it.
package download

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/imagedl/errs"
	"github.com/adamwoolhether/imagedl/fsys"
	"github.com/adamwoolhether/imagedl/resolve"
	"github.com/adamwoolhether/imagedl/transport"
	"github.com/adamwoolhether/imagedl/validate"
)

// Downloader orchestrates downloads over one Transport. It holds no
// per-download state and is safe for concurrent use.
type Downloader struct {
	t        transport.Transport
	fs       *fsys.FS
	logger   *slog.Logger
	tracer   trace.Tracer
	recorder Recorder
	arena    arena
	now      func() time.Time
}

// New builds a Downloader over t.
func New(t transport.Transport, optFns ...Option) (*Downloader, error) {
	if t == nil {
		return nil, errors.New("transport must not be nil")
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying download option: %w", err)
		}
	}

	d := &Downloader{
		t:        t,
		fs:       opts.fs,
		logger:   opts.logger,
		tracer:   opts.tracer,
		recorder: opts.recorder,
		now:      opts.now,
	}
	if d.fs == nil {
		d.fs = fsys.OS()
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.tracer == nil {
		d.tracer = otel.Tracer(tracerName)
	}
	if d.now == nil {
		d.now = time.Now
	}

	tempDir := opts.tempDir
	if tempDir == "" {
		tempDir = d.fs.TempDir()
	}
	if err := d.fs.MkdirAll(tempDir); err != nil {
		return nil, fmt.Errorf("preparing temp dir: %w", err)
	}
	d.arena = arena{fs: d.fs, dir: tempDir}

	return d, nil
}

// Transport returns the backend this Downloader was built with.
func (d *Downloader) Transport() transport.Transport {
	return d.t
}

// Download fetches rawURL into dest. dest may be an existing directory, in
// which case the file name comes from the URL. Failures are reported in the
// Result, never as a panic or error.
func (d *Downloader) Download(ctx context.Context, rawURL, dest string, opts ...CallOption) Result {
	res, _ := d.Fetch(ctx, rawURL, dest, opts...)
	return res
}

// DownloadProvider runs the download p describes.
func (d *Downloader) DownloadProvider(ctx context.Context, p Provider, opts ...CallOption) Result {
	res, _ := d.FetchProvider(ctx, p, opts...)
	return res
}

// FetchProvider is the error-returning variant of DownloadProvider. The
// provider's overwrite and size policies apply after opts.
func (d *Downloader) FetchProvider(ctx context.Context, p Provider, opts ...CallOption) (Result, error) {
	opts = append(opts, WithOverwrite(p.AllowOverwrite()), WithMaxFileSize(p.MaxFileSize()))
	return d.Fetch(ctx, p.URL(), p.Destination(), opts...)
}

// Fetch is the error-returning variant of Download. The Result is populated
// on both paths; the error, when non-nil, is an *errs.Error.
func (d *Downloader) Fetch(ctx context.Context, rawURL, dest string, opts ...CallOption) (Result, error) {
	o := newCallOptions(opts)
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	r := &run{
		d:    d,
		url:  rawURL,
		opts: o,
		md: Metadata{
			ID:     uuid.NewString(),
			URL:    rawURL,
			Method: d.t.Name(),
		},
	}
	r.logger = d.logger.With("download_id", r.md.ID, "url", rawURL, "transport", d.t.Name())

	ctx, span := d.tracer.Start(ctx, "download",
		trace.WithAttributes(
			attribute.String("download.id", r.md.ID),
			attribute.String("download.url", rawURL),
			attribute.String("download.transport", d.t.Name()),
		))
	defer span.End()

	start := d.now()
	res, err := r.execute(ctx, dest)
	elapsed := d.now().Sub(start)

	if d.recorder != nil {
		d.recorder.Record(d.t.Name(), res, elapsed)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, errs.KindOf(err).String())
		r.logger.Warn("download failed", "dest", res.Destination, "kind", errs.KindOf(err), "error", err, "elapsed", elapsed)
		return res, err
	}

	span.SetAttributes(attribute.Int64("download.size", res.Size), attribute.String("download.mime", res.MimeType))
	r.logger.Info("download complete", "dest", res.Destination, "size", res.Size, "mime", res.MimeType, "elapsed", elapsed)

	return res, nil
}

// run is the state of one download.
type run struct {
	d      *Downloader
	url    string
	dest   string
	opts   callOptions
	md     Metadata
	logger *slog.Logger
}

func (r *run) execute(ctx context.Context, dest string) (Result, error) {
	fail := func(err error) (Result, error) {
		e, ok := errs.As(err)
		if !ok {
			e = errs.NewWrite(r.dest, err)
		}
		r.md.DownloadTime = r.d.now().Format(TimeLayout)
		return failure(r.dest, e, r.md), e
	}

	r.dest = resolve.Destination(r.d.fs.IsDir, r.url, dest)
	chain := validate.Download(r.d.fs, r.url, r.dest)

	if err := chain.MustBeValidURL().MustBeValidDestination().Err(); err != nil {
		return fail(err)
	}

	hinted := r.d.t.CheapProbe()
	if hinted {
		if err := r.checkHeaders(ctx, chain); err != nil {
			return fail(err)
		}
	}

	if !r.opts.overwrite {
		if err := chain.MustNotExist().Err(); err != nil {
			return fail(err)
		}
	}

	body, err := r.fetch(ctx)
	if err != nil {
		return fail(err)
	}
	if r.md.OriginalSize == 0 {
		r.md.OriginalSize = int64(len(body))
	}

	staged, err := r.d.arena.stage(r.md.ID, filepath.Base(r.dest), body)
	defer func() {
		if err := r.d.arena.release(staged); err != nil {
			r.logger.Error("failed to remove staged file", "path", staged, "error", err)
		}
	}()
	if err != nil {
		return fail(err)
	}

	if err := validate.File(r.d.fs, staged).MustExist().MustBeReadWritable().MustNotBeEmpty().Err(); err != nil {
		return fail(err)
	}

	sniffed, err := r.d.fs.MimeSniff(staged)
	if err != nil {
		return fail(errs.NewWrite(staged, err))
	}

	if !hinted && r.opts.validateMime {
		chain.MustBeImageMimeType(sniffed)
	}
	if err := chain.MustNotExceedSize(int64(len(body)), r.opts.maxSize).Err(); err != nil {
		return fail(err)
	}

	if err := r.commit(ctx, staged); err != nil {
		return fail(err)
	}

	if err := chain.MustExist().Err(); err != nil {
		return fail(err)
	}

	size, err := r.d.fs.Size(r.dest)
	if err != nil {
		return fail(errs.NewWrite(r.dest, err))
	}

	r.md.DownloadTime = r.d.now().Format(TimeLayout)

	return Result{
		Success:     true,
		Destination: r.dest,
		Size:        size,
		MimeType:    sniffed,
		Metadata:    r.md,
	}, nil
}

// checkHeaders gates mime and size on a header probe before any body is
// transferred.
func (r *run) checkHeaders(ctx context.Context, chain *validate.Chain) error {
	ctx, span := r.d.tracer.Start(ctx, "download.probe")
	defer span.End()

	md, err := r.d.t.ProbeHeaders(ctx, r.url)
	if err != nil {
		return err
	}
	if !md.OK() {
		return errs.NewNotFound(r.url, md.StatusCode)
	}

	if md.HasContentLength() {
		r.md.OriginalSize = md.ContentLength()
	}
	r.logger.Debug("probed headers", "status", md.StatusCode, "content_type", md.ContentType(), "content_length", md.ContentLength())

	if r.opts.validateMime {
		chain.MustBeImageMimeType(md.ContentType())
	}

	return chain.MustNotExceedSize(md.ContentLength(), r.opts.maxSize).Err()
}

func (r *run) fetch(ctx context.Context) ([]byte, error) {
	ctx, span := r.d.tracer.Start(ctx, "download.fetch")
	defer span.End()

	body, err := r.d.t.Fetch(ctx, r.url)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("download.bytes", len(body)))

	return body, nil
}

// commit lands the staged file on the destination. Without overwrite the
// destination is created exclusively, so a file that appeared since the
// existence check is never clobbered.
func (r *run) commit(ctx context.Context, staged string) error {
	_, span := r.d.tracer.Start(ctx, "download.commit")
	defer span.End()

	if r.opts.overwrite {
		if err := r.d.fs.Replace(staged, r.dest); err != nil {
			return errs.NewWrite(r.dest, err)
		}
		return nil
	}

	if err := r.d.fs.CopyExclusive(staged, r.dest); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return errs.NewAlreadyExists(r.dest)
		}
		return errs.NewWrite(r.dest, err)
	}

	return nil
}
