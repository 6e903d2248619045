// Package fsys is the filesystem capability the download pipeline writes
// through. It wraps a go-billy filesystem so the same pipeline runs against
// the real disk or an in-memory tree.
package fsys

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

const filePerm = 0o644

// replacePrefix names the sibling temp file Replace renames over its target.
const replacePrefix = ".replace-"

// ErrNotDir is returned by Accessible when the path is not a directory.
var ErrNotDir = errors.New("not a directory")

// FS implements the pipeline's filesystem operations over go-billy.
type FS struct {
	fs      billy.Filesystem
	tempDir string
	clean   func(string) string
	access  func(string) error
}

// OS returns an FS over the host filesystem. Relative paths are resolved
// against the working directory.
func OS() *FS {
	return &FS{
		fs:      osfs.New("/"),
		tempDir: os.TempDir(),
		clean:   absPath,
		access:  hostAccess,
	}
}

// Memory returns an FS over an empty in-memory tree with /tmp created.
func Memory() *FS {
	mem := memfs.New()
	_ = mem.MkdirAll("/tmp", 0o755)

	f := &FS{
		fs:      mem,
		tempDir: "/tmp",
		clean:   path.Clean,
	}
	f.access = f.statAccess

	return f
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// TempDir is the default staging namespace.
func (f *FS) TempDir() string {
	return f.tempDir
}

// Join joins path elements with the filesystem's separator.
func (f *FS) Join(elem ...string) string {
	return f.fs.Join(elem...)
}

// Exists reports whether anything exists at p.
func (f *FS) Exists(p string) bool {
	_, err := f.fs.Stat(f.clean(p))
	return err == nil
}

// IsDir reports whether p is an existing directory.
func (f *FS) IsDir(p string) bool {
	info, err := f.fs.Stat(f.clean(p))
	return err == nil && info.IsDir()
}

// Size returns the byte length of the file at p.
func (f *FS) Size(p string) (int64, error) {
	info, err := f.fs.Stat(f.clean(p))
	if err != nil {
		return 0, fmt.Errorf("fsys: stat %q: %w", p, err)
	}
	return info.Size(), nil
}

// MkdirAll creates p and any missing parents.
func (f *FS) MkdirAll(p string) error {
	if err := f.fs.MkdirAll(f.clean(p), 0o755); err != nil {
		return fmt.Errorf("fsys: mkdirall %q: %w", p, err)
	}
	return nil
}

// WriteAll creates or truncates p and writes data to it.
func (f *FS) WriteAll(p string, data []byte) error {
	if err := util.WriteFile(f.fs, f.clean(p), data, filePerm); err != nil {
		return fmt.Errorf("fsys: write %q: %w", p, err)
	}
	return nil
}

// ReadAll returns the contents of p.
func (f *FS) ReadAll(p string) ([]byte, error) {
	b, err := util.ReadFile(f.fs, f.clean(p))
	if err != nil {
		return nil, fmt.Errorf("fsys: read %q: %w", p, err)
	}
	return b, nil
}

// Delete removes p. A missing file is not an error.
func (f *FS) Delete(p string) error {
	if err := f.fs.Remove(f.clean(p)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("fsys: remove %q: %w", p, err)
	}
	return nil
}

// Rename moves src to dst, replacing dst.
func (f *FS) Rename(src, dst string) error {
	if err := f.fs.Rename(f.clean(src), f.clean(dst)); err != nil {
		return fmt.Errorf("fsys: rename %q: %w", src, err)
	}
	return nil
}

// List returns the sorted names of the entries in dir.
func (f *FS) List(dir string) ([]string, error) {
	entries, err := f.fs.ReadDir(f.clean(dir))
	if err != nil {
		return nil, fmt.Errorf("fsys: readdir %q: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	return names, nil
}

// Copy copies src to dst, creating or truncating dst.
func (f *FS) Copy(src, dst string) error {
	return f.copyTo(src, dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
}

// CopyExclusive copies src to dst, failing with an error matching
// [fs.ErrExist] if dst already exists. The existence check and the create
// are a single operation.
func (f *FS) CopyExclusive(src, dst string) error {
	return f.copyTo(src, dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL)
}

func (f *FS) copyTo(src, dst string, flag int) (err error) {
	in, err := f.fs.Open(f.clean(src))
	if err != nil {
		return fmt.Errorf("fsys: open %q: %w", src, err)
	}
	defer in.Close()

	out, err := f.fs.OpenFile(f.clean(dst), flag, filePerm)
	if err != nil {
		return fmt.Errorf("fsys: create %q: %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("fsys: close %q: %w", dst, cerr)
		}
		if err != nil {
			_ = f.fs.Remove(f.clean(dst))
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("fsys: copy %q to %q: %w", src, dst, err)
	}

	return nil
}

// Replace copies src into a temp file beside dst and renames it over dst,
// so readers of dst see either the old or the new content.
func (f *FS) Replace(src, dst string) (err error) {
	dst = f.clean(dst)
	tmpName := f.Join(path.Dir(filepath.ToSlash(dst)), replacePrefix+uuid.NewString())

	if err := f.CopyExclusive(src, tmpName); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.fs.Remove(f.clean(tmpName))
		}
	}()

	return f.Rename(tmpName, dst)
}

// MimeSniff detects the media type of the file at p from its content.
func (f *FS) MimeSniff(p string) (string, error) {
	file, err := f.fs.Open(f.clean(p))
	if err != nil {
		return "", fmt.Errorf("fsys: open %q: %w", p, err)
	}
	defer file.Close()

	mt, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("fsys: sniff %q: %w", p, err)
	}

	return mt.String(), nil
}

// Accessible returns nil when dir is an existing directory this process can
// read from and write to.
func (f *FS) Accessible(dir string) error {
	dir = f.clean(dir)

	info, err := f.fs.Stat(dir)
	if err != nil {
		return fmt.Errorf("fsys: stat %q: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("fsys: %q: %w", dir, ErrNotDir)
	}

	return f.access(dir)
}

// statAccess is the access check for filesystems without host permissions.
func (f *FS) statAccess(string) error {
	return nil
}

// ReadWritable returns nil when the file at p can be opened for reading and writing.
func (f *FS) ReadWritable(p string) error {
	file, err := f.fs.OpenFile(f.clean(p), os.O_RDWR, filePerm)
	if err != nil {
		return fmt.Errorf("fsys: open %q: %w", p, err)
	}
	return file.Close()
}
