package download

import (
	"context"

	"github.com/adamwoolhether/imagedl/errs"
	"github.com/adamwoolhether/imagedl/resolve"
	"github.com/adamwoolhether/imagedl/transport"
	"github.com/adamwoolhether/imagedl/validate"
)

// IsAccessible reports whether rawURL answers a header probe with a 2xx or
// 3xx status. It never writes and never fails; probe errors read as false.
func (d *Downloader) IsAccessible(ctx context.Context, rawURL string) bool {
	md, err := d.probe(ctx, rawURL)
	return err == nil && md.OK()
}

// ValidateImageURL reports whether rawURL is reachable and advertises an
// image content type.
func (d *Downloader) ValidateImageURL(ctx context.Context, rawURL string) bool {
	md, err := d.probe(ctx, rawURL)
	return err == nil && md.OK() && validate.IsImage(md.ContentType())
}

// GetFileInfo describes rawURL from a header probe without downloading it.
func (d *Downloader) GetFileInfo(ctx context.Context, rawURL string) FileProbe {
	md, err := d.probe(ctx, rawURL)
	if err != nil {
		return FileProbe{Size: -1, Error: err.Error()}
	}
	if !md.OK() {
		return FileProbe{Size: -1, Error: errs.NewNotFound(rawURL, md.StatusCode).Error()}
	}

	size := int64(-1)
	if md.HasContentLength() {
		size = md.ContentLength()
	}

	return FileProbe{
		Exists:       true,
		Size:         size,
		MimeType:     md.ContentType(),
		Filename:     resolve.Filename(rawURL, md.ContentDisposition()),
		LastModified: md.LastModified(),
	}
}

func (d *Downloader) probe(ctx context.Context, rawURL string) (transport.Metadata, error) {
	ctx, span := d.tracer.Start(ctx, "download.probe")
	defer span.End()

	if err := validate.Download(d.fs, rawURL, "").MustBeValidURL().Err(); err != nil {
		d.logger.Debug("probe rejected url", "url", rawURL, "error", err)
		return transport.Metadata{}, err
	}

	md, err := d.t.ProbeHeaders(ctx, rawURL)
	if err != nil {
		d.logger.Debug("probe failed", "url", rawURL, "transport", d.t.Name(), "error", err)
		return transport.Metadata{}, err
	}

	return md, nil
}
