package api

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/Apurer/sales-inventory-api/internal/domains/catalog/domain"
	customerdomain "github.com/Apurer/sales-inventory-api/internal/domains/customers/domain"
	salestypes "github.com/Apurer/sales-inventory-api/internal/domains/sales/application/types"
	userdomain "github.com/Apurer/sales-inventory-api/internal/domains/users/domain"
)

func TestBuildStack_InMemoryFallback(t *testing.T) {
	ctx := context.Background()
	stack, cleanup, err := BuildStack(ctx, Config{SessionTTL: time.Hour, IdempotencyTTL: time.Hour}, nil)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	assert.Nil(t, stack.Relay)

	seller, err := stack.Users.Register(ctx, "vendedor", "secret-pass", userdomain.RoleSeller)
	require.NoError(t, err)
	product, err := catalogdomain.NewProduct(0, "Monitor", "displays", decimal.RequireFromString("899.90"), 4)
	require.NoError(t, err)
	product, err = stack.Catalog.CreateProduct(ctx, product)
	require.NoError(t, err)
	customer, err := customerdomain.NewCustomer(0, "Loja Centro", "11.222.333/0001-81", "")
	require.NoError(t, err)
	customer, err = stack.Customers.CreateCustomer(ctx, customer)
	require.NoError(t, err)

	sale, err := stack.Sales.CreateSale(ctx, salestypes.CreateSaleInput{
		CustomerID: customer.ID,
		SellerID:   seller.ID,
		Items:      []salestypes.ItemInput{{ProductID: product.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2699.70").Equal(sale.Total()))

	stored, err := stack.Catalog.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(1), stored.Stock)
}

func TestBuildStack_KafkaEnablesRelay(t *testing.T) {
	stack, cleanup, err := BuildStack(context.Background(), Config{
		KafkaBrokers:       []string{"localhost:9092"},
		KafkaTopic:         DefaultKafkaTopic,
		OutboxPollInterval: time.Second,
		SessionTTL:         time.Hour,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	assert.NotNil(t, stack.Relay)
}
