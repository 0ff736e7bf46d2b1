package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/sales-inventory-api/internal/domains/catalog/domain"
	"github.com/Apurer/sales-inventory-api/internal/domains/catalog/ports"
	"github.com/Apurer/sales-inventory-api/internal/platform/transaction"
)

func newProduct(t *testing.T, name string, stock int32) *domain.Product {
	t.Helper()
	p, err := domain.NewProduct(0, name, "general", decimal.NewFromInt(10), stock)
	require.NoError(t, err)
	return p
}

func TestRepository_SaveAssignsIDAndRejectsDuplicateName(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	saved, err := repo.Save(ctx, newProduct(t, "Keyboard", 3))
	require.NoError(t, err)
	require.Equal(t, int64(1), saved.ID)
	require.False(t, saved.CreatedAt.IsZero())

	_, err = repo.Save(ctx, newProduct(t, "keyboard", 1))
	require.ErrorIs(t, err, ports.ErrDuplicateName)
}

func TestRepository_RollbackRestoresStockAndRemovesInserts(t *testing.T) {
	repo := NewRepository()
	tm := transaction.NewInMemory()
	ctx := context.Background()

	saved, err := repo.Save(ctx, newProduct(t, "Mouse", 5))
	require.NoError(t, err)

	err = tm.Do(ctx, func(ctx context.Context) error {
		p, err := repo.GetForUpdate(ctx, saved.ID)
		require.NoError(t, err)
		require.NoError(t, p.Withdraw(2))
		_, err = repo.Save(ctx, p)
		require.NoError(t, err)
		_, err = repo.Save(ctx, newProduct(t, "Cable", 1))
		require.NoError(t, err)
		return errors.New("abort")
	})
	require.Error(t, err)

	reloaded, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, int32(5), reloaded.Stock)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestRepository_DeleteMissing(t *testing.T) {
	repo := NewRepository()
	require.ErrorIs(t, repo.Delete(context.Background(), 42), ports.ErrNotFound)
}
