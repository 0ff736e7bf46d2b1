package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewProduct_Validates(t *testing.T) {
	_, err := NewProduct(0, "  ", "tools", decimal.NewFromInt(1), 1)
	require.ErrorIs(t, err, ErrEmptyName)

	_, err = NewProduct(0, "Hammer", "tools", decimal.NewFromInt(-1), 1)
	require.ErrorIs(t, err, ErrNegativePrice)

	_, err = NewProduct(0, "Hammer", "tools", decimal.NewFromInt(1), -1)
	require.ErrorIs(t, err, ErrNegativeStock)

	p, err := NewProduct(0, " Hammer ", " tools ", decimal.RequireFromString("10.499"), 3)
	require.NoError(t, err)
	require.Equal(t, "Hammer", p.Name)
	require.Equal(t, "tools", p.Category)
	require.True(t, p.Price.Equal(decimal.RequireFromString("10.50")))
}

func TestWithdraw_InsufficientStockLeavesStockUntouched(t *testing.T) {
	p, err := NewProduct(7, "Hammer", "tools", decimal.NewFromInt(5), 2)
	require.NoError(t, err)

	err = p.Withdraw(3)
	require.ErrorIs(t, err, ErrInsufficientStock)

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	require.Equal(t, "Hammer", stockErr.ProductName)
	require.Equal(t, int32(3), stockErr.Requested)
	require.Equal(t, int32(2), stockErr.Available)
	require.Equal(t, "insufficient stock for product: Hammer", err.Error())
	require.Equal(t, int32(2), p.Stock)
}

func TestWithdrawAndRestock(t *testing.T) {
	p, err := NewProduct(1, "Nail", "tools", decimal.NewFromInt(1), 5)
	require.NoError(t, err)

	require.NoError(t, p.Withdraw(5))
	require.Equal(t, int32(0), p.Stock)
	require.NoError(t, p.Restock(2))
	require.Equal(t, int32(2), p.Stock)

	require.ErrorIs(t, p.Withdraw(0), ErrInvalidQuantity)
	require.ErrorIs(t, p.Restock(-1), ErrInvalidQuantity)
}

func TestRestock_Overflow(t *testing.T) {
	p := &Product{Name: "Bulk", Stock: 2147483600}
	require.ErrorIs(t, p.Restock(100), ErrStockOverflow)
	require.Equal(t, int32(2147483600), p.Stock)
}
