package helpers

import (
	"math"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/pkg/errors"
	"github.com/simplelauncher/sml/pkg/faults"
)

// LockFile guards an exclusive on-disk resource with an advisory lock. The
// lock is re-entrant within the process: repeated Lock calls bump a counter
// and Unlock releases the underlying file lock only when the counter drops
// back to zero.
type LockFile struct {
	mutex sync.Mutex
	file  *os.File
	path  string
	count int
}

func NewLockFile(path string) (*LockFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, faults.Wrap(faults.InstanceIO, err, "failed to create lock directory")
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, faults.Wrap(faults.InstanceIO, err, "failed to open lock file")
	}

	return &LockFile{file: file, path: path}, nil
}

// LockPath opens the lock file and acquires the lock, closing the file again
// when the acquisition fails.
func LockPath(path string) (*LockFile, error) {
	result, err := NewLockFile(path)
	if err != nil {
		return nil, err
	}

	if err = result.Lock(); err != nil {
		result.Abort()
		return nil, err
	}

	return result, nil
}

func (l *LockFile) Path() string {
	return l.path
}

// Lock acquires or re-enters the lock. A contended lock reports the instance
// as busy without blocking.
func (l *LockFile) Lock() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.count > 0 {
		if l.count == math.MaxInt32 {
			return errors.New("too many lock attempts")
		}

		l.count++
		return nil
	}

	if l.file == nil {
		return faults.New(faults.InstanceIO, "lock file closed already")
	}

	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		if err == syscall.EWOULDBLOCK {
			return faults.Newf(faults.InstanceBusy, "lock already held by another process: %s", l.path)
		}

		return faults.Wrap(faults.InstanceIO, err, "failed to acquire lock")
	}

	l.count = 1
	return nil
}

// Unlock leaves the lock once. It reports whether the lock was held at all.
func (l *LockFile) Unlock() (bool, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.count == 0 {
		return false, nil
	}

	if l.count--; l.count == 0 {
		if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
			return true, faults.Wrap(faults.InstanceIO, err, "failed to release lock")
		}
	}

	return true, nil
}

// Locked tells whether this process holds the lock.
func (l *LockFile) Locked() bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.count > 0
}

// Close releases the lock regardless of the counter and closes the file.
func (l *LockFile) Close() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.file == nil {
		return nil
	}

	l.count = 0
	file := l.file
	l.file = nil

	// Closing the descriptor releases the lock anyway
	if err := file.Close(); err != nil {
		return faults.Wrap(faults.InstanceIO, err, "failed to close lock file")
	}

	return nil
}

// Abort closes the lock and swallows the error for cleanup paths.
func (l *LockFile) Abort() {
	_ = l.Close()
}
