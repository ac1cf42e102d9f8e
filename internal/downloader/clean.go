package downloader

import (
	"errors"
	"fmt"
	"io/fs"
)

// Clean removes the partial file and lock sidecar left behind for finalPath.
// It refuses while another process holds the lock and returns the paths it
// removed.
func Clean(finalPath string, fsys FileSystem) ([]string, error) {
	if fsys == nil {
		fsys = OSFileSystem{}
	}
	lockPath := LockPath(finalPath)
	lock, err := fsys.TryLock(lockPath)
	if errors.Is(err, ErrLocked) {
		return nil, fmt.Errorf("a download into %s is in progress", finalPath)
	}
	if err != nil {
		return nil, fmt.Errorf("error acquiring lock: %w", err)
	}

	var removed []string
	temp := TempPath(finalPath)
	if err := fsys.Remove(temp); err == nil {
		removed = append(removed, temp)
	} else if !errors.Is(err, fs.ErrNotExist) {
		removeErr := fmt.Errorf("error removing partial file: %w", err)
		if err := lock.Unlock(); err != nil {
			return removed, errors.Join(removeErr, fmt.Errorf("error releasing lock: %w", err))
		}
		return removed, removeErr
	}
	if err := lock.Release(); err != nil {
		return removed, fmt.Errorf("error removing lock file: %w", err)
	}
	return append(removed, lockPath), nil
}
