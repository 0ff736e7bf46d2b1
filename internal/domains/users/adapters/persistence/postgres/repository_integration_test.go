//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/sales-inventory-api/internal/domains/users/domain"
	"github.com/Apurer/sales-inventory-api/internal/domains/users/ports"
	"github.com/Apurer/sales-inventory-api/internal/platform/migrations"
)

func setupUsersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("sales_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func TestRepository_SaveAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	user, err := domain.NewUser(0, "alice", "secret", domain.RoleManager)
	require.NoError(t, err)
	require.NoError(t, user.UpdateProfile("Alice", "Doe", "alice@example.com", "1234"))

	saved, err := repo.Save(ctx, user)
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, domain.RoleManager, saved.Role)
	assert.True(t, saved.CheckPassword("secret"))

	byID, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
	assert.Equal(t, saved.Email, byID.Email)
}

func TestRepository_ListAndDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		user, err := domain.NewUser(0, fmt.Sprintf("user%d", i), "pw123", domain.RoleSeller)
		require.NoError(t, err)
		_, err = repo.Save(ctx, user)
		require.NoError(t, err)
	}

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	require.NoError(t, repo.Delete(ctx, "user2"))
	_, err = repo.GetByUsername(ctx, "user2")
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "user2"), ports.ErrNotFound)
}

func TestSessionStore_LookupAndPurge(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	store := NewSessionStore(db, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice", "token-1"))
	require.NoError(t, store.Save(ctx, "alice", "token-2"))

	_, err := store.Lookup(ctx, "token-1")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
	username, err := store.Lookup(ctx, "token-2")
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.Create(&sessionRecord{Token: "stale", Username: "bob", ExpiresAt: &past}).Error)
	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}
