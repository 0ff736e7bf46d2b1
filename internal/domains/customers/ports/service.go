package ports

import (
	"context"

	"github.com/Apurer/sales-inventory-api/internal/domains/customers/domain"
)

// Service exposes customer use cases to adapters.
type Service interface {
	CreateCustomer(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)
	ListCustomers(ctx context.Context) ([]*domain.Customer, error)
	SearchCustomers(ctx context.Context, name string) ([]*domain.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, changes *domain.Customer) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
}
