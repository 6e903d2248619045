//go:build !windows

package fsys

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func hostAccess(dir string) error {
	if err := unix.Access(dir, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return fmt.Errorf("fsys: access %q: %w", dir, err)
	}
	return nil
}
