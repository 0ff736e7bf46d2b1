package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	customermemory "github.com/Apurer/sales-inventory-api/internal/domains/customers/adapters/memory"
	"github.com/Apurer/sales-inventory-api/internal/domains/customers/domain"
	"github.com/Apurer/sales-inventory-api/internal/domains/customers/ports"
)

func TestCreateCustomer_InvalidInput(t *testing.T) {
	svc := NewService(customermemory.NewRepository())
	_, err := svc.CreateCustomer(context.Background(), &domain.Customer{Name: "Ana", TaxID: "12"})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidTaxID)
}

func TestUpdateCustomer(t *testing.T) {
	svc := NewService(customermemory.NewRepository())
	ctx := context.Background()
	created, err := svc.CreateCustomer(ctx, &domain.Customer{ID: 42, Name: "Ana", TaxID: "11111111111"})
	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)

	updated, err := svc.UpdateCustomer(ctx, created.ID, &domain.Customer{Name: "Ana Lima", TaxID: "111.111.111-11", Phone: "555"})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "Ana Lima", updated.Name)
	require.Equal(t, "555", updated.Phone)

	_, err = svc.UpdateCustomer(ctx, 99, &domain.Customer{Name: "X", TaxID: "22222222222"})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSearchCustomers_BlankListsAll(t *testing.T) {
	svc := NewService(customermemory.NewRepository())
	ctx := context.Background()
	_, err := svc.CreateCustomer(ctx, &domain.Customer{Name: "Ana", TaxID: "11111111111"})
	require.NoError(t, err)
	_, err = svc.CreateCustomer(ctx, &domain.Customer{Name: "Bruno", TaxID: "22222222222"})
	require.NoError(t, err)

	all, err := svc.SearchCustomers(ctx, "  ")
	require.NoError(t, err)
	require.Len(t, all, 2)

	some, err := svc.SearchCustomers(ctx, "bru")
	require.NoError(t, err)
	require.Len(t, some, 1)
}
