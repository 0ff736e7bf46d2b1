package ports

import (
	"context"
	"errors"

	"github.com/Apurer/sales-inventory-api/internal/domains/customers/domain"
)

var (
	ErrNotFound       = errors.New("customer not found")
	ErrDuplicateTaxID = errors.New("a customer with this tax id already exists")
)

// Repository persists customers.
type Repository interface {
	Save(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.Customer, error)
	SearchByName(ctx context.Context, fragment string) ([]*domain.Customer, error)
}
