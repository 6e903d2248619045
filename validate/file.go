package validate

import (
	"github.com/adamwoolhether/imagedl/errs"
	"github.com/adamwoolhether/imagedl/fsys"
)

// FileChain validates a staged file before it is committed.
type FileChain struct {
	fs   *fsys.FS
	path string
	err  *errs.Error
}

// File starts a chain over the file at path.
func File(fs *fsys.FS, path string) *FileChain {
	return &FileChain{fs: fs, path: path}
}

// Err returns the first failed check, or nil.
func (c *FileChain) Err() error {
	if c.err == nil {
		return nil
	}
	return c.err
}

func (c *FileChain) step(check func() *errs.Error) *FileChain {
	if c.err == nil {
		c.err = check()
	}
	return c
}

// MustExist fails with NotFound when the file is gone.
func (c *FileChain) MustExist() *FileChain {
	return c.step(func() *errs.Error {
		if !c.fs.Exists(c.path) {
			return errs.NewFileNotFound(c.path)
		}
		return nil
	})
}

// MustBeReadWritable fails with Write when the file cannot be opened read-write.
func (c *FileChain) MustBeReadWritable() *FileChain {
	return c.step(func() *errs.Error {
		if err := c.fs.ReadWritable(c.path); err != nil {
			return errs.NewWrite(c.path, err)
		}
		return nil
	})
}

// MustNotBeEmpty fails with EmptyFile on a zero-length file.
func (c *FileChain) MustNotBeEmpty() *FileChain {
	return c.step(func() *errs.Error {
		size, err := c.fs.Size(c.path)
		if err != nil {
			return errs.NewWrite(c.path, err)
		}
		if size == 0 {
			return errs.NewEmptyFile(c.path)
		}
		return nil
	})
}
