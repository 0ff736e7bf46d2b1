package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/sales-inventory-api/internal/domains/users/ports"
)

func TestSessionStore_ReplaceAndExpire(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore(time.Hour)
	store.WithClock(func() time.Time { return now })

	require.NoError(t, store.Save(ctx, "alice", "t1"))
	require.NoError(t, store.Save(ctx, "alice", "t2"))

	_, err := store.Lookup(ctx, "t1")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
	username, err := store.Lookup(ctx, "t2")
	require.NoError(t, err)
	require.Equal(t, "alice", username)

	now = now.Add(time.Hour)
	_, err = store.Lookup(ctx, "t2")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(0)
	require.NoError(t, store.Save(ctx, "bob", "tok"))
	require.NoError(t, store.Delete(ctx, "bob"))
	_, err := store.Lookup(ctx, "tok")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
}
