package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/sales-inventory-api/internal/domains/customers/domain"
	"github.com/Apurer/sales-inventory-api/internal/domains/customers/ports"
	"github.com/Apurer/sales-inventory-api/internal/platform/transaction"
)

func newCustomer(t *testing.T, name, taxID string) *domain.Customer {
	t.Helper()
	c, err := domain.NewCustomer(0, name, taxID, "")
	require.NoError(t, err)
	return c
}

func TestRepository_DuplicateTaxID(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	_, err := repo.Save(ctx, newCustomer(t, "Maria", "123.456.789-09"))
	require.NoError(t, err)
	_, err = repo.Save(ctx, newCustomer(t, "Joana", "12345678909"))
	require.ErrorIs(t, err, ports.ErrDuplicateTaxID)
}

func TestRepository_SearchByName(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	_, err := repo.Save(ctx, newCustomer(t, "Maria Silva", "11111111111"))
	require.NoError(t, err)
	_, err = repo.Save(ctx, newCustomer(t, "Joao Souza", "22222222222"))
	require.NoError(t, err)
	_, err = repo.Save(ctx, newCustomer(t, "Ana SILVA", "33333333333"))
	require.NoError(t, err)

	found, err := repo.SearchByName(ctx, "silva")
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Equal(t, "Maria Silva", found[0].Name)
	require.Equal(t, "Ana SILVA", found[1].Name)
}

func TestRepository_RollbackRemovesInsert(t *testing.T) {
	repo := NewRepository()
	tx := transaction.NewInMemory()
	boom := errors.New("boom")

	err := tx.Do(context.Background(), func(ctx context.Context) error {
		if _, err := repo.Save(ctx, newCustomer(t, "Maria", "11111111111")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)
}
