// Package lockfile provides advisory file locking for the task logs.
//
// A single flock-style lock on a sibling lock file covers the pair of log
// files for the duration of one lifecycle operation, so concurrent
// mutations from different processes serialize instead of interleaving.
// OS-level locks are released automatically when the holding process exits,
// so a killed writer never wedges the store.
package lockfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrLockBusy is returned when the lock is held by another process.
var ErrLockBusy = errors.New("store lock held by another process")

// ErrConcurrencyConflict is returned when the lock could not be acquired
// within the bounded retry window.
var ErrConcurrencyConflict = errors.New("could not acquire store lock")

// DefaultAcquireTimeout bounds the retry window for Acquire.
const DefaultAcquireTimeout = 10 * time.Second

// Lock is a held advisory lock. Release it when the operation's
// read-validate-write sequence is complete.
type Lock struct {
	f    *os.File
	path string
}

// Acquire takes the exclusive advisory lock at path, retrying with
// exponential backoff while another process holds it. It returns
// ErrConcurrencyConflict (wrapped) once the retry window is exhausted or
// the context is canceled.
func Acquire(ctx context.Context, path string) (*Lock, error) {
	// nolint:gosec // G304: path is the store's own lock file
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 10 * time.Millisecond
	policy.MaxInterval = 250 * time.Millisecond
	policy.MaxElapsedTime = DefaultAcquireTimeout

	err = backoff.Retry(func() error {
		return flockExclusiveNonBlock(f)
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		f.Close()
		if errors.Is(err, ErrLockBusy) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrConcurrencyConflict, path)
		}
		return nil, fmt.Errorf("acquiring lock %s: %w", path, err)
	}

	return &Lock{f: f, path: path}, nil
}

// Release drops the lock. Safe to call once per acquired lock.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	unlockErr := flockUnlock(l.f)
	closeErr := l.f.Close()
	l.f = nil
	if unlockErr != nil {
		return fmt.Errorf("releasing lock %s: %w", l.path, unlockErr)
	}
	return closeErr
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }
