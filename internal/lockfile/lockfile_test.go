package lockfile

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".test.lock")

	lock, err := Acquire(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, path, lock.Path())
	require.NoError(t, lock.Release())

	// The lock is free again after release.
	lock2, err := Acquire(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, lock2.Release())
}

func TestAcquireContendedTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".test.lock")

	held, err := Acquire(context.Background(), path)
	require.NoError(t, err)
	defer held.Release()

	// A second acquire on a separate descriptor contends with the first and
	// must give up once its context expires.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err = Acquire(ctx, path)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrConcurrencyConflict), "got %v", err)
}

func TestAcquireWaitsForRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".test.lock")

	held, err := Acquire(context.Background(), path)
	require.NoError(t, err)

	go func() {
		time.Sleep(100 * time.Millisecond)
		held.Release()
	}()

	start := time.Now()
	lock, err := Acquire(context.Background(), path)
	require.NoError(t, err, "second acquire should succeed once the holder releases")
	defer lock.Release()
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond, "acquire should have waited")
}

func TestReleaseIsIdempotentOnNil(t *testing.T) {
	var lock *Lock
	require.NoError(t, lock.Release())
}
