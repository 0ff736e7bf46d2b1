package ports

import (
	"context"

	"github.com/Apurer/sales-inventory-api/internal/domains/catalog/domain"
)

// Service exposes catalog use cases to adapters.
type Service interface {
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, changes *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}
