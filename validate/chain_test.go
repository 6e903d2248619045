package validate_test

import (
	"errors"
	"testing"

	"github.com/adamwoolhether/imagedl/errs"
	"github.com/adamwoolhether/imagedl/fsys"
	"github.com/adamwoolhether/imagedl/validate"
)

func memFS(t *testing.T) *fsys.FS {
	t.Helper()

	fs := fsys.Memory()
	if err := fs.MkdirAll("/out/sub"); err != nil {
		t.Fatal(err)
	}
	if err := fs.WriteAll("/out/existing.png", []byte("png")); err != nil {
		t.Fatal(err)
	}
	if err := fs.WriteAll("/out/empty.png", nil); err != nil {
		t.Fatal(err)
	}

	return fs
}

func TestChain_MustBeValidURL(t *testing.T) {
	fs := memFS(t)

	testCases := map[string]struct {
		url     string
		expKind errs.Kind
	}{
		"https":      {url: "https://picsum.photos/640/480"},
		"http":       {url: "http://example.com/a.png"},
		"upperCase":  {url: "HTTPS://example.com/a.png"},
		"ftp":        {url: "ftp://example.com/a.png", expKind: errs.UnsupportedProtocol},
		"file":       {url: "file:///etc/passwd", expKind: errs.UnsupportedProtocol},
		"garbage":    {url: "not a url", expKind: errs.InvalidURL},
		"empty":      {url: "", expKind: errs.InvalidURL},
		"noHost":     {url: "http://", expKind: errs.InvalidURL},
		"schemeless": {url: "example.com/a.png", expKind: errs.InvalidURL},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			err := validate.Download(fs, tc.url, "/out/a.png").MustBeValidURL().Err()

			if tc.expKind == errs.Unknown {
				if err != nil {
					t.Fatalf("exp nil err, got: %v", err)
				}
				return
			}

			if got := errs.KindOf(err); got != tc.expKind {
				t.Errorf("exp kind %v, got %v (%v)", tc.expKind, got, err)
			}
		})
	}
}

func TestChain_MustBeValidDestination(t *testing.T) {
	fs := memFS(t)

	testCases := map[string]struct {
		dest    string
		expFail bool
	}{
		"fileInExistingDir":  {dest: "/out/a.png"},
		"fileInSubdir":       {dest: "/out/sub/a.png"},
		"missingDir":         {dest: "/nope/a.png", expFail: true},
		"destIsDirectory":    {dest: "/out/sub", expFail: true},
		"parentIsFile":       {dest: "/out/existing.png/a.png", expFail: true},
		"emptyDestination":   {dest: "", expFail: true},
		"existingFileIsFine": {dest: "/out/existing.png"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			err := validate.Download(fs, "https://host/a.png", tc.dest).MustBeValidDestination().Err()

			if !tc.expFail {
				if err != nil {
					t.Fatalf("exp nil err, got: %v", err)
				}
				return
			}

			if !errors.Is(err, errs.ErrInvalidDestination) {
				t.Errorf("exp ErrInvalidDestination, got: %v", err)
			}
		})
	}
}

func TestChain_MustNotExistAndMustExist(t *testing.T) {
	fs := memFS(t)

	err := validate.Download(fs, "https://host/a.png", "/out/existing.png").MustNotExist().Err()
	if !errors.Is(err, errs.ErrAlreadyExists) {
		t.Errorf("exp ErrAlreadyExists, got: %v", err)
	}

	if err := validate.Download(fs, "https://host/a.png", "/out/new.png").MustNotExist().Err(); err != nil {
		t.Errorf("exp nil err, got: %v", err)
	}

	err = validate.Download(fs, "https://host/a.png", "/out/new.png").MustExist().Err()
	if errs.KindOf(err) != errs.NotFound {
		t.Errorf("exp NotFound, got: %v", err)
	}
}

func TestChain_MustBeImageMimeType(t *testing.T) {
	fs := memFS(t)

	testCases := map[string]struct {
		contentType string
		expOK       bool
	}{
		"jpeg":       {contentType: "image/jpeg", expOK: true},
		"withParams": {contentType: "image/png; charset=binary", expOK: true},
		"upperCase":  {contentType: "IMAGE/WEBP", expOK: true},
		"svg":        {contentType: "image/svg+xml", expOK: true},
		"html":       {contentType: "text/html; charset=utf-8"},
		"bareImage":  {contentType: "image/"},
		"empty":      {contentType: ""},
		"lookalike":  {contentType: "application/image-png"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			err := validate.Download(fs, "https://host/a", "/out/a").MustBeImageMimeType(tc.contentType).Err()

			if tc.expOK != (err == nil) {
				t.Fatalf("exp ok %v, got: %v", tc.expOK, err)
			}
			if err != nil && !errors.Is(err, errs.ErrInvalidMimeType) {
				t.Errorf("exp ErrInvalidMimeType, got: %v", err)
			}
		})
	}
}

func TestChain_MustNotExceedSize(t *testing.T) {
	fs := memFS(t)

	testCases := map[string]struct {
		actual, limit int64
		expOK         bool
	}{
		"under":     {actual: 10, limit: 100, expOK: true},
		"equal":     {actual: 100, limit: 100, expOK: true},
		"over":      {actual: 101, limit: 100},
		"unlimited": {actual: 1 << 40, limit: 0, expOK: true},
		"negative":  {actual: 1 << 40, limit: -1, expOK: true},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			err := validate.Download(fs, "https://host/a", "/out/a").MustNotExceedSize(tc.actual, tc.limit).Err()

			if tc.expOK != (err == nil) {
				t.Fatalf("exp ok %v, got: %v", tc.expOK, err)
			}

			if err != nil {
				e, _ := errs.As(err)
				if e.Kind != errs.SizeExceeded || e.Context["actual"] != tc.actual || e.Context["limit"] != tc.limit {
					t.Errorf("exp size context, got %+v", e)
				}
			}
		})
	}
}

func TestChain_ShortCircuits(t *testing.T) {
	fs := memFS(t)

	// The url fails first; the later size failure must not replace it.
	err := validate.Download(fs, "ftp://host/a.png", "/out/existing.png").
		MustBeValidURL().
		MustBeValidDestination().
		MustNotExist().
		MustNotExceedSize(10, 1).
		Err()

	if got := errs.KindOf(err); got != errs.UnsupportedProtocol {
		t.Errorf("exp first failure UnsupportedProtocol, got %v", got)
	}
}

func TestFileChain(t *testing.T) {
	fs := memFS(t)

	testCases := map[string]struct {
		path    string
		expKind errs.Kind
	}{
		"ok":      {path: "/out/existing.png"},
		"missing": {path: "/out/missing.png", expKind: errs.NotFound},
		"empty":   {path: "/out/empty.png", expKind: errs.EmptyFile},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			err := validate.File(fs, tc.path).MustExist().MustBeReadWritable().MustNotBeEmpty().Err()

			if got := errs.KindOf(err); got != tc.expKind {
				t.Errorf("exp kind %v, got %v (%v)", tc.expKind, got, err)
			}
		})
	}
}
