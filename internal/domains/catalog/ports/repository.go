package ports

import (
	"context"
	"errors"

	"github.com/Apurer/sales-inventory-api/internal/domains/catalog/domain"
)

var (
	ErrNotFound      = errors.New("product not found")
	ErrDuplicateName = errors.New("product name already exists")
	ErrInUse         = errors.New("product is referenced by sales")
)

// Repository persists products. GetForUpdate locks the row for the rest of the
// surrounding transaction where the adapter supports it.
type Repository interface {
	Save(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.Product, error)
}

// Usage reports whether recorded sales still reference a product.
type Usage interface {
	ReferencesProduct(ctx context.Context, productID int64) (bool, error)
}

// TxManager runs fn inside one unit of work.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
