package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockName is the lock file created in the dataset root.
const LockName = ".vidset.lock"

// ErrLocked indicates another run holds the dataset root.
var ErrLocked = errors.New("dataset root is locked by another run")

// RootLock is an exclusive lock on a dataset root.
type RootLock struct {
	lock *flock.Flock
}

// Lock takes the exclusive lock for root without blocking. It fails with
// ErrLocked when another process already holds it.
func Lock(root string) (*RootLock, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create dataset root %q: %w", root, err)
	}
	lock := flock.New(filepath.Join(root, LockName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, root)
	}
	return &RootLock{lock: lock}, nil
}

// Path returns the lock file path.
func (l *RootLock) Path() string {
	return l.lock.Path()
}

// Unlock releases the lock. The lock file is left in place.
func (l *RootLock) Unlock() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
