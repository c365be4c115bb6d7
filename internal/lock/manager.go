package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// LockSuffix names the sibling lock file: "<target>.lock".
const LockSuffix = ".lock"

const pollInterval = 10 * time.Millisecond

var (
	// ErrLockTimeout reports that another holder kept the lock past the timeout.
	ErrLockTimeout = errors.New("timed out waiting for lock")
	// ErrFilenameRequired is returned for an empty target path.
	ErrFilenameRequired = errors.New("filename is required")
	// ErrNilLock is returned by ReleaseLock for a nil handle.
	ErrNilLock = errors.New("nil lock handle")
)

// LockManager hands out advisory locks on "<target>.lock". Only processes
// using the same convention are excluded; the target itself is never locked.
type LockManager struct {
	interval time.Duration
}

// NewLockManager returns a LockManager polling every 10ms.
func NewLockManager() *LockManager {
	return &LockManager{interval: pollInterval}
}

// AcquireLock waits up to timeout for an exclusive lock guarding filename.
func (lm *LockManager) AcquireLock(filename string, timeout time.Duration) (*FileLock, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return lm.AcquireLockContext(ctx, filename)
}

// AcquireLockContext waits until ctx is done for an exclusive lock guarding
// filename. A deadline or cancellation yields ErrLockTimeout.
func (lm *LockManager) AcquireLockContext(ctx context.Context, filename string) (*FileLock, error) {
	if filename == "" {
		return nil, ErrFilenameRequired
	}
	fl := &FileLock{FilePath: filename, LockPath: filename + LockSuffix}
	fl.flock = flock.New(fl.LockPath)

	started := time.Now()
	locked, err := fl.flock.TryLockContext(ctx, lm.interval)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return nil, fmt.Errorf("%w on %s after %s", ErrLockTimeout, fl.LockPath, time.Since(started).Round(time.Millisecond))
	case err != nil:
		return nil, fmt.Errorf("locking %s: %w", fl.LockPath, err)
	case !locked:
		return nil, fmt.Errorf("%w on %s", ErrLockTimeout, fl.LockPath)
	}
	return fl, nil
}

// ReleaseLock unlocks l. The lock file stays on disk.
func (lm *LockManager) ReleaseLock(l *FileLock) error {
	if l == nil {
		return ErrNilLock
	}
	if l.flock == nil {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("unlocking %s: %w", l.LockPath, err)
	}
	return nil
}

var _ LockManagerInterface = (*LockManager)(nil)
