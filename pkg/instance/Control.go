package instance

import (
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/simplelauncher/sml/internal/helpers"
	"github.com/simplelauncher/sml/pkg/faults"
	"github.com/simplelauncher/sml/pkg/static"
)

// Control owns an instance directory for the duration of a command. The
// acquisition creates the directory layout and takes the advisory lock, the
// release is guaranteed by closing on all exit paths.
type Control struct {
	*Inquiry
	lock *helpers.LockFile
}

// NewControl acquires the instance at the path, failing without blocking
// when another process holds it.
func NewControl(location string) (*Control, error) {
	inquiry := NewInquiry(location)

	if err := os.MkdirAll(inquiry.Location(), 0755); err != nil {
		return nil, faults.Wrap(faults.InstanceIO, err, "could not create the instance directory")
	}

	lock, err := helpers.LockPath(inquiry.Path(static.LOCKFILE))
	if err != nil {
		return nil, err
	}

	if err = os.MkdirAll(inquiry.Path(static.ETCDIR), 0755); err != nil {
		lock.Abort()
		return nil, faults.Wrap(faults.InstanceIO, err, "could not create the instance layout")
	}

	return &Control{Inquiry: inquiry, lock: lock}, nil
}

// NewControlWithRetry keeps retrying a busy acquisition with a paced backoff
// until the timeout elapses. A zero timeout degenerates to the fail-fast
// acquisition.
func NewControlWithRetry(location string, timeout time.Duration) (*Control, error) {
	if timeout <= 0 {
		return NewControl(location)
	}

	var result *Control

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxInterval = time.Second
	policy.MaxElapsedTime = timeout

	err := backoff.Retry(func() error {
		control, err := NewControl(location)
		if err != nil {
			if faults.Is(err, faults.InstanceBusy) {
				return err
			}

			return backoff.Permanent(err)
		}

		result = control
		return nil
	}, policy)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Close releases the ownership.
func (c *Control) Close() error {
	return c.lock.Close()
}

// Acquired tells whether the ownership is still held.
func (c *Control) Acquired() bool {
	return c.lock.Locked()
}

// Lock re-enters the ownership, Unlock leaves it once.
func (c *Control) Lock() error {
	return c.lock.Lock()
}

func (c *Control) Unlock() (bool, error) {
	return c.lock.Unlock()
}

// Execute runs an operation that requires the ownership to be held.
func (c *Control) Execute(operation func(*Control) error) error {
	if !c.Acquired() {
		return faults.New(faults.InstanceIO, "this operation requires the control to be held")
	}

	return operation(c)
}

// Clean removes the instance content except the lock file itself.
func (c *Control) Clean() error {
	return c.Execute(func(control *Control) error {
		lockPath := control.Path(static.LOCKFILE)

		_, err := helpers.DeleteTree(control.Location(), func(path string) bool {
			return sameFile(path, lockPath)
		})
		if err != nil {
			return faults.Wrap(faults.InstanceIO, err, "could not clean the instance")
		}

		return nil
	})
}

// Delete removes an instance completely. It refuses paths that do not look
// like an instance and reports whether there was anything to delete. The
// content goes first, then the lock file, then the empty directory, which
// tolerates a concurrent acquisition racing with the final unlink.
func Delete(path string) (bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	}

	if !SeemsValid(path) {
		return false, faults.Newf(faults.InstanceIO, "target path does not point to an instance: %s", path)
	}

	control, err := NewControl(path)
	if err != nil {
		return false, err
	}

	lockPath := control.Path(static.LOCKFILE)

	if err = control.Clean(); err != nil {
		control.Close()
		return false, err
	}

	if err = control.Close(); err != nil {
		return false, err
	}

	if err = os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
		return false, faults.Wrap(faults.InstanceIO, err, "could not delete the lock file")
	}

	if err = os.Remove(path); err != nil && !os.IsNotExist(err) {
		return false, faults.Wrap(faults.InstanceIO, err, "could not delete the instance directory")
	}

	return true, nil
}

func sameFile(a string, b string) bool {
	aInfo, err := os.Stat(a)
	if err != nil {
		return false
	}

	bInfo, err := os.Stat(b)
	if err != nil {
		return false
	}

	return os.SameFile(aInfo, bInfo)
}
