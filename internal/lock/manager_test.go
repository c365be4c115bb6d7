package lock

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const (
	testLockTimeout  = 200 * time.Millisecond
	veryShortTimeout = 30 * time.Millisecond
)

func tempTarget(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "target.txt")
	if err := os.WriteFile(path, []byte("x\n"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestLockManager_AcquireReleaseBasic(t *testing.T) {
	lm := NewLockManager()
	path := tempTarget(t)

	fl, err := lm.AcquireLock(path, testLockTimeout)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	if fl.FilePath != path || fl.LockPath != path+LockSuffix {
		t.Errorf("unexpected handle: %+v", fl)
	}
	if _, err := os.Stat(fl.LockPath); err != nil {
		t.Errorf("lock file not created: %v", err)
	}
	if err := lm.ReleaseLock(fl); err != nil {
		t.Fatalf("ReleaseLock failed: %v", err)
	}

	// The lock can be taken again once released.
	again, err := lm.AcquireLock(path, testLockTimeout)
	if err != nil {
		t.Fatalf("re-acquire failed: %v", err)
	}
	_ = lm.ReleaseLock(again)
}

func TestLockManager_AcquireEmptyFilename(t *testing.T) {
	lm := NewLockManager()
	_, err := lm.AcquireLock("", testLockTimeout)
	if !errors.Is(err, ErrFilenameRequired) {
		t.Errorf("expected ErrFilenameRequired, got %v", err)
	}
}

func TestLockManager_ReleaseNil(t *testing.T) {
	lm := NewLockManager()
	if err := lm.ReleaseLock(nil); !errors.Is(err, ErrNilLock) {
		t.Errorf("expected ErrNilLock, got %v", err)
	}
}

func TestLockManager_LockTimeout(t *testing.T) {
	lm := NewLockManager()
	path := tempTarget(t)

	held, err := lm.AcquireLock(path, testLockTimeout)
	if err != nil {
		t.Fatalf("Initial AcquireLock failed: %v", err)
	}
	defer lm.ReleaseLock(held)

	startTime := time.Now()
	_, err = lm.AcquireLock(path, veryShortTimeout)
	duration := time.Since(startTime)

	if !errors.Is(err, ErrLockTimeout) {
		t.Errorf("expected ErrLockTimeout, got %v", err)
	}
	if duration < veryShortTimeout {
		t.Errorf("second acquire returned too quickly, duration %v, expected at least %v", duration, veryShortTimeout)
	}
}

func TestLockManager_MissingDirectory(t *testing.T) {
	lm := NewLockManager()
	path := filepath.Join(t.TempDir(), "missing", "target.txt")
	_, err := lm.AcquireLock(path, veryShortTimeout)
	if err == nil {
		t.Fatalf("expected error locking in a missing directory")
	}
	if errors.Is(err, ErrLockTimeout) {
		t.Errorf("expected an IO error, got timeout")
	}
}

func TestLockManager_AcquireLockContextCanceled(t *testing.T) {
	lm := NewLockManager()
	path := tempTarget(t)

	held, err := lm.AcquireLock(path, testLockTimeout)
	if err != nil {
		t.Fatalf("Initial AcquireLock failed: %v", err)
	}
	defer lm.ReleaseLock(held)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(veryShortTimeout, cancel)
	_, err = lm.AcquireLockContext(ctx, path)
	if !errors.Is(err, ErrLockTimeout) {
		t.Errorf("expected ErrLockTimeout after cancel, got %v", err)
	}
}
