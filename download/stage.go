package download

import (
	"github.com/adamwoolhether/imagedl/errs"
	"github.com/adamwoolhether/imagedl/fsys"
)

// tempPrefix marks staged files in the temp dir.
const tempPrefix = ".imagedl-"

// arena mints one staging path per download, salted with the download id so
// concurrent downloads of same-named files never share a temp file.
type arena struct {
	fs  *fsys.FS
	dir string
}

func (a arena) path(id, filename string) string {
	return a.fs.Join(a.dir, tempPrefix+id+"-"+filename)
}

// stage writes body to a fresh temp path. The path is returned even on
// failure so a partial write can be released.
func (a arena) stage(id, filename string, body []byte) (string, error) {
	p := a.path(id, filename)
	if err := a.fs.WriteAll(p, body); err != nil {
		return p, errs.NewWrite(p, err)
	}
	return p, nil
}

// release removes a staged file; a missing file is fine.
func (a arena) release(p string) error {
	if p == "" {
		return nil
	}
	return a.fs.Delete(p)
}
