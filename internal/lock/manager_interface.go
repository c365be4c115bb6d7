package lock

import (
	"time"

	"github.com/gofrs/flock"
)

// FileLock is a held advisory lock. FilePath is the guarded target and
// LockPath the sibling file actually locked.
type FileLock struct {
	FilePath string
	LockPath string
	flock    *flock.Flock
}

// LockManagerInterface is what the splice service needs from a locker.
type LockManagerInterface interface {
	AcquireLock(filePath string, timeout time.Duration) (*FileLock, error)
	ReleaseLock(lock *FileLock) error
}
