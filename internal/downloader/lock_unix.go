//go:build unix

package downloader

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

func lockFileName(base, hash string) string {
	return "." + base + "." + hash + ".lock"
}

func lockFile(f *os.File) error {
	err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if errors.Is(err, unix.EWOULDBLOCK) {
		return ErrLocked
	}
	return err
}

func unlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}

// releaseFile unlinks the lock file while still holding it, so anyone who
// opened the old inode fails the path check in TryLock.
func releaseFile(f *os.File, name string) error {
	err := os.Remove(name)
	if errors.Is(err, os.ErrNotExist) {
		err = nil
	}
	return errors.Join(err, unlockFile(f), f.Close())
}

// Dotfiles are already hidden on POSIX.
func hideFile(string) {}
