package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/sales-inventory-api/internal/domains/sales/domain"
	"github.com/Apurer/sales-inventory-api/internal/shared/projection"
)

var ErrNotFound = errors.New("sale not found")

// Repository persists the sale aggregate together with its items.
type Repository interface {
	// Save inserts the sale when ID is zero, otherwise replaces its items.
	Save(ctx context.Context, sale *domain.Sale) (*domain.Sale, error)
	GetByID(ctx context.Context, id int64) (*domain.Sale, error)
	// GetForUpdate loads the sale and locks it until the transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*domain.Sale, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page projection.PageRequest) (projection.Page[*domain.Sale], error)
	FindBySeller(ctx context.Context, sellerID int64) ([]*domain.Sale, error)
	FindByCustomer(ctx context.Context, customerID int64) ([]*domain.Sale, error)
	ReferencesProduct(ctx context.Context, productID int64) (bool, error)
	FindByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Sale, error)
}
