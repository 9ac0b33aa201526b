package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemorySession_PutGetRemove(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionRepository()

	_, err := store.Get(ctx, "alice")
	require.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Put(ctx, "alice", "r1", time.Hour))
	token, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "r1", token)

	// put overwrites the slot
	require.NoError(t, store.Put(ctx, "alice", "r2", time.Hour))
	token, err = store.Get(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "r2", token)

	require.NoError(t, store.Remove(ctx, "alice"))
	_, err = store.Get(ctx, "alice")
	require.ErrorIs(t, err, ErrSessionNotFound)

	// removing an absent session is a no-op
	require.NoError(t, store.Remove(ctx, "alice"))
}

func TestMemorySession_Rotate(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionRepository()

	require.NoError(t, store.Put(ctx, "alice", "r1", time.Hour))
	require.NoError(t, store.Rotate(ctx, "alice", "r1", "r2", time.Hour))

	token, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "r2", token)

	// replaying r1 fails and tears down the session
	err = store.Rotate(ctx, "alice", "r1", "r3", time.Hour)
	require.ErrorIs(t, err, ErrSessionMismatch)
	_, err = store.Get(ctx, "alice")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySession_RotateAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionRepository()

	err := store.Rotate(ctx, "alice", "r1", "r2", time.Hour)
	require.ErrorIs(t, err, ErrSessionMismatch)
}

func TestMemorySession_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionRepository()

	require.NoError(t, store.Put(ctx, "alice", "r1", -time.Second))
	_, err := store.Get(ctx, "alice")
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, store.Rotate(ctx, "alice", "r1", "r2", time.Hour), ErrSessionMismatch)
}

func TestMemorySession_ConcurrentRotateSingleWinner(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionRepository()
	require.NoError(t, store.Put(ctx, "alice", "r1", time.Hour))

	const callers = 16
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.Rotate(ctx, "alice", "r1", "next", time.Hour)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, ErrSessionMismatch)
		}
	}
	require.Equal(t, 1, wins)
}
