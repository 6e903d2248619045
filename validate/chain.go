// Package validate holds the gates a download passes through: a fluent
// chain over one (url, destination) pair, a chain over a staged file, and
// struct validation for configuration.
package validate

import (
	"mime"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/adamwoolhether/imagedl/errs"
	"github.com/adamwoolhether/imagedl/fsys"
)

// Chain validates one (url, destination) pair. Each Must* step is skipped
// once an earlier step has failed; Err returns that first failure.
//
//	err := validate.Download(fs, url, dest).
//		MustBeValidURL().
//		MustBeValidDestination().
//		Err()
type Chain struct {
	fs   *fsys.FS
	url  string
	dest string
	err  *errs.Error
}

// Download starts a chain for rawURL landing at dest.
func Download(fs *fsys.FS, rawURL, dest string) *Chain {
	return &Chain{fs: fs, url: rawURL, dest: dest}
}

// Err returns the first failure, or nil.
func (c *Chain) Err() error {
	if c.err == nil {
		return nil
	}
	return c.err
}

func (c *Chain) step(check func() *errs.Error) *Chain {
	if c.err == nil {
		c.err = check()
	}
	return c
}

// MustBeValidURL requires a well-formed URL with an http or https scheme.
func (c *Chain) MustBeValidURL() *Chain {
	return c.step(func() *errs.Error {
		if err := validate.Var(c.url, "required,url"); err != nil {
			return errs.NewInvalidURL(c.url).WithCause(err)
		}

		u, err := url.Parse(c.url)
		if err != nil {
			return errs.NewInvalidURL(c.url).WithCause(err)
		}

		switch strings.ToLower(u.Scheme) {
		case "http", "https":
		default:
			return errs.NewUnsupportedProtocol(c.url, u.Scheme)
		}

		if u.Host == "" {
			return errs.NewInvalidURL(c.url)
		}

		return nil
	})
}

// MustBeValidDestination requires the destination's directory to exist and be
// readable and writable, and the destination itself not to be a directory.
func (c *Chain) MustBeValidDestination() *Chain {
	return c.step(func() *errs.Error {
		if c.dest == "" {
			return errs.NewInvalidDestination(c.dest, "empty path")
		}
		if c.fs.IsDir(c.dest) {
			return errs.NewInvalidDestination(c.dest, "is a directory, not a file path")
		}
		if err := c.fs.Accessible(filepath.Dir(c.dest)); err != nil {
			return errs.NewInvalidDestination(c.dest, "directory is missing or not readable and writable").WithCause(err)
		}
		return nil
	})
}

// MustNotExist requires that nothing exists at the destination yet.
func (c *Chain) MustNotExist() *Chain {
	return c.step(func() *errs.Error {
		if c.fs.Exists(c.dest) {
			return errs.NewAlreadyExists(c.dest)
		}
		return nil
	})
}

// MustBeImageMimeType requires contentType to be an image/* media type.
// Media parameters and case are ignored.
func (c *Chain) MustBeImageMimeType(contentType string) *Chain {
	return c.step(func() *errs.Error {
		if !IsImage(contentType) {
			return errs.NewInvalidMimeType(c.url, contentType)
		}
		return nil
	})
}

// MustNotExceedSize requires actual <= limit. A limit of zero or less is unlimited.
func (c *Chain) MustNotExceedSize(actual, limit int64) *Chain {
	return c.step(func() *errs.Error {
		if limit > 0 && actual > limit {
			return errs.NewSizeExceeded(c.url, actual, limit)
		}
		return nil
	})
}

// MustExist requires the destination to exist, after commit.
func (c *Chain) MustExist() *Chain {
	return c.step(func() *errs.Error {
		if !c.fs.Exists(c.dest) {
			return errs.NewFileNotFound(c.dest)
		}
		return nil
	})
}

// IsImage reports whether contentType names an image/* media type.
func IsImage(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt, _, _ = strings.Cut(contentType, ";")
	}
	mt = strings.ToLower(strings.TrimSpace(mt))

	return strings.HasPrefix(mt, "image/") && len(mt) > len("image/")
}
