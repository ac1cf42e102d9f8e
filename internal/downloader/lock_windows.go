//go:build windows

package downloader

import (
	"errors"
	"os"

	"golang.org/x/sys/windows"
)

func lockFileName(base, hash string) string {
	return base + hash + ".lock"
}

func lockFile(f *os.File) error {
	ol := new(windows.Overlapped)
	err := windows.LockFileEx(windows.Handle(f.Fd()), windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY, 0, 1, 0, ol)
	if errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
		return ErrLocked
	}
	return err
}

func unlockFile(f *os.File) error {
	ol := new(windows.Overlapped)
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, 1, 0, ol)
}

// releaseFile unlocks before removing: an open handle without
// FILE_SHARE_DELETE cannot be unlinked on Windows.
func releaseFile(f *os.File, name string) error {
	err := errors.Join(unlockFile(f), f.Close())
	if rmErr := os.Remove(name); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		err = errors.Join(err, rmErr)
	}
	return err
}

func hideFile(name string) {
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return
	}
	windows.SetFileAttributes(p, windows.FILE_ATTRIBUTE_HIDDEN)
}
