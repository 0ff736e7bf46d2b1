package sequences

import (
	"testing"

	"github.com/stretchr/testify/require"

	salestypes "github.com/Apurer/sales-inventory-api/internal/domains/sales/application/types"
)

func TestCreateAttempts(t *testing.T) {
	require.Equal(t, int32(1), CreateAttempts(salestypes.CreateSaleInput{}))
	require.Equal(t, int32(1), CreateAttempts(salestypes.CreateSaleInput{IdempotencyKey: "  "}))
	require.Equal(t, int32(keyedCreateAttempts), CreateAttempts(salestypes.CreateSaleInput{IdempotencyKey: "order-1"}))
}
