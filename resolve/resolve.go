// Package resolve turns user supplied destinations and source URLs into
// concrete file paths.
package resolve

import (
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultExt is used by Transform when the URL path carries no extension.
const DefaultExt = "jpg"

// defaultStem replaces a stem that sanitizes to nothing.
const defaultStem = "image"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Destination returns the concrete target path for rawURL. When dest is an
// existing directory, the last segment of the URL path is joined onto it.
// Otherwise dest is the literal target. No name is ever invented: a directory
// with no usable URL filename is returned unchanged for the caller to reject,
// and so is an empty dest.
func Destination(isDir func(string) bool, rawURL, dest string) string {
	if dest == "" || !isDir(dest) {
		return dest
	}

	name := URLFilename(rawURL)
	if name == "" {
		return dest
	}

	return filepath.Join(dest, name)
}

// Transform is the provider variant of Destination. A dest with an extension
// is literal; otherwise dest is treated as a directory and a file name is
// synthesized as <prefix><stem>.<ext> from the URL, the stem restricted to
// [A-Za-z0-9_-] and the extension defaulting to DefaultExt.
func Transform(rawURL, dest, prefix string) string {
	if filepath.Ext(dest) != "" {
		return dest
	}

	base := URLFilename(rawURL)
	ext := strings.TrimPrefix(path.Ext(base), ".")
	stem := Sanitize(strings.TrimSuffix(base, path.Ext(base)))
	if stem == "" {
		stem = defaultStem
	}

	ext = Sanitize(ext)
	if ext == "" {
		ext = DefaultExt
	}

	return filepath.Join(dest, prefix+stem+"."+ext)
}

// Sanitize strips every character outside [A-Za-z0-9_-].
func Sanitize(s string) string {
	return unsafeChars.ReplaceAllString(s, "")
}

// URLFilename returns the unescaped last segment of the URL path, or "" when
// the path has no usable segment.
func URLFilename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	name := path.Base(u.Path)
	switch name {
	case ".", "/", "..":
		return ""
	}

	return name
}

// Filename names a remote resource: the Content-Disposition filename when
// present, the URL path segment otherwise.
func Filename(rawURL, contentDisposition string) string {
	if contentDisposition != "" {
		if _, params, err := mime.ParseMediaType(contentDisposition); err == nil {
			if name := filepath.Base(params["filename"]); name != "." && name != string(filepath.Separator) && name != ".." {
				return name
			}
		}
	}

	return URLFilename(rawURL)
}
