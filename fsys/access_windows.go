//go:build windows

package fsys

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func hostAccess(dir string) error {
	ptr, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return fmt.Errorf("fsys: access %q: %w", dir, err)
	}

	attrs, err := windows.GetFileAttributes(ptr)
	if err != nil {
		return fmt.Errorf("fsys: access %q: %w", dir, err)
	}
	if attrs&windows.FILE_ATTRIBUTE_READONLY != 0 {
		return fmt.Errorf("fsys: access %q: read-only", dir)
	}

	return nil
}
