package downloader

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

type File interface {
	io.Writer
	io.Closer
}

// Lock is an exclusive advisory lock on an open lock file.
type Lock interface {
	// Unlock releases the lock and closes the file. The file stays on disk.
	Unlock() error
	// Release deletes the lock file and releases the lock.
	Release() error
}

type FileSystem interface {
	Stat(name string) (fs.FileInfo, error)
	OpenFile(name string, flag int, perm fs.FileMode) (File, error)
	Rename(oldpath, newpath string) error
	Remove(name string) error
	// TryLock creates name if needed and takes a non-blocking exclusive lock
	// on it, returning ErrLocked when someone else holds it or when the
	// locked file is no longer the one at name.
	TryLock(name string) (Lock, error)
}

type OSFileSystem struct{}

func (OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (OSFileSystem) OpenFile(name string, flag int, perm fs.FileMode) (File, error) {
	f, err := os.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (OSFileSystem) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

func (OSFileSystem) Remove(name string) error {
	return os.Remove(name)
}

func (OSFileSystem) TryLock(name string) (Lock, error) {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	hideFile(name)
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, err
	}
	// A holder may have unlinked the file between our open and flock; the
	// lock then guards an orphaned inode and a newcomer can lock a fresh one.
	same, err := lockedFileAtPath(f, name)
	if err != nil || !same {
		// Closing the descriptor drops the lock even if the explicit unlock fails.
		_ = unlockFile(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		return nil, ErrLocked
	}
	return &fileLock{f: f, path: name}, nil
}

func lockedFileAtPath(f *os.File, name string) (bool, error) {
	held, err := f.Stat()
	if err != nil {
		return false, err
	}
	current, err := os.Stat(name)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return os.SameFile(held, current), nil
}

type fileLock struct {
	f    *os.File
	path string
}

func (l *fileLock) Unlock() error {
	err := unlockFile(l.f)
	return errors.Join(err, l.f.Close())
}

func (l *fileLock) Release() error {
	return releaseFile(l.f, l.path)
}

// TempPath is where partial data is staged before the final rename.
func TempPath(finalPath string) string {
	return finalPath + ".part"
}

// LockPath derives the lock sidecar for finalPath. The hash covers the path
// exactly as given so independent implementations agree on the name.
func LockPath(finalPath string) string {
	sum := md5.Sum([]byte(finalPath))
	hash := hex.EncodeToString(sum[:])
	return filepath.Join(filepath.Dir(finalPath), lockFileName(filepath.Base(finalPath), hash))
}

// fileSize returns the size of name and whether it exists.
func fileSize(fsys FileSystem, name string) (int64, bool, error) {
	info, err := fsys.Stat(name)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return info.Size(), true, nil
}
