package sales

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	salestypes "github.com/Apurer/sales-inventory-api/internal/domains/sales/application/types"
	salesports "github.com/Apurer/sales-inventory-api/internal/domains/sales/ports"
)

// CreateSaleActivityName runs the sale processor for one create command.
const CreateSaleActivityName = "sales.activities.CreateSale"

// Activities groups activities that operate on the sales bounded context.
type Activities struct {
	service salesports.Service
}

func NewActivities(service salesports.Service) *Activities {
	return &Activities{service: service}
}

// CreateSale runs the processor and returns the new sale id. Business
// failures are returned as non-retryable application errors; infrastructure
// failures stay retryable, and the sequence only retries commands that carry
// an idempotency key.
func (a *Activities) CreateSale(ctx context.Context, input salestypes.CreateSaleInput) (int64, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("sale activity not initialized", "customerId", input.CustomerID)
		return 0, errors.New("sale activity not initialized")
	}
	logger.Info("CreateSale activity started", "customerId", input.CustomerID, "sellerId", input.SellerID, "items", len(input.Items))
	sale, err := a.service.CreateSale(ctx, input)
	if err != nil {
		logger.Error("CreateSale activity failed", "customerId", input.CustomerID, "error", err)
		return 0, EncodeError(err)
	}
	logger.Info("CreateSale activity completed", "saleId", sale.ID)
	return sale.ID, nil
}
