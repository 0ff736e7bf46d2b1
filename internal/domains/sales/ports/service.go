package ports

import (
	"context"

	"github.com/shopspring/decimal"

	salestypes "github.com/Apurer/sales-inventory-api/internal/domains/sales/application/types"
	"github.com/Apurer/sales-inventory-api/internal/domains/sales/domain"
	"github.com/Apurer/sales-inventory-api/internal/shared/projection"
)

// Service is the sale processor exposed to adapters.
type Service interface {
	CreateSale(ctx context.Context, input salestypes.CreateSaleInput) (*domain.Sale, error)
	UpdateSale(ctx context.Context, input salestypes.UpdateSaleInput) (*domain.Sale, error)
	DeleteSale(ctx context.Context, input salestypes.DeleteSaleInput) error
	GetSale(ctx context.Context, id int64) (*domain.Sale, error)
	ListSales(ctx context.Context, input salestypes.ListSalesInput) (projection.Page[*domain.Sale], error)
	SalesBySeller(ctx context.Context, sellerID int64) ([]*domain.Sale, error)
	SalesByCustomer(ctx context.Context, customerID int64) ([]*domain.Sale, error)
	SalesByPeriod(ctx context.Context, input salestypes.PeriodInput) ([]*domain.Sale, error)
	TotalForSeller(ctx context.Context, sellerID int64) (decimal.Decimal, error)
}

// WorkflowOrchestrator runs sale creation, durably when Temporal is configured.
type WorkflowOrchestrator interface {
	CreateSale(ctx context.Context, input salestypes.CreateSaleInput) (*domain.Sale, error)
}
