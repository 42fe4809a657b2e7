package store

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// DefaultLockTimeout bounds how long WithLock waits for a contended lock.
const DefaultLockTimeout = 5 * time.Second

// WithLock runs fn while holding an exclusive lock on path + ".lock".
func WithLock(path string, timeout time.Duration, fn func() error) error {
	return withLock(path, timeout, false, fn)
}

// WithReadLock runs fn while holding a shared lock on path + ".lock".
func WithReadLock(path string, timeout time.Duration, fn func() error) error {
	return withLock(path, timeout, true, fn)
}

func withLock(path string, timeout time.Duration, shared bool, fn func() error) error {
	lockPath := path + ".lock"
	fl := flock.New(lockPath)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	try := fl.TryLockContext
	if shared {
		try = fl.TryRLockContext
	}
	locked, err := try(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("locking %s: %w", lockPath, err)
	}
	if !locked {
		return fmt.Errorf("timed out locking %s", lockPath)
	}
	defer fl.Unlock()

	return fn()
}
