//go:build integration

package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Apurer/sales-inventory-api/internal/domains/sales/ports"
	"github.com/Apurer/sales-inventory-api/internal/platform/transaction"
)

func setupRedisContainer(t *testing.T) *goredis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := goredis.NewClient(&goredis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestIdempotencyStore_ClaimAndConflict(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	store := NewIdempotencyStore(setupRedisContainer(t), time.Minute)
	ctx := context.Background()

	missing, err := store.Get(ctx, "order-1")
	require.NoError(t, err)
	require.Nil(t, missing)

	saved, err := store.Save(ctx, ports.IdempotencyRecord{Key: "order-1", RequestHash: "h", SaleID: 10})
	require.NoError(t, err)
	require.Equal(t, int64(10), saved.SaleID)

	again, err := store.Save(ctx, ports.IdempotencyRecord{Key: "order-1", RequestHash: "h", SaleID: 10})
	require.NoError(t, err)
	require.Equal(t, "h", again.RequestHash)

	existing, err := store.Save(ctx, ports.IdempotencyRecord{Key: "order-1", RequestHash: "other", SaleID: 11})
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	require.Equal(t, int64(10), existing.SaleID)
}

func TestIdempotencyStore_ReleasedOnInMemoryRollback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	store := NewIdempotencyStore(setupRedisContainer(t), time.Minute)
	ctx := context.Background()
	boom := errors.New("boom")

	err := transaction.NewInMemory().Do(ctx, func(ctx context.Context) error {
		_, err := store.Save(ctx, ports.IdempotencyRecord{Key: "order-2", RequestHash: "h", SaleID: 1})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	record, err := store.Get(ctx, "order-2")
	require.NoError(t, err)
	require.Nil(t, record)
}
