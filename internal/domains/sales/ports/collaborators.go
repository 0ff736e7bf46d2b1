package ports

import (
	"context"

	catalogdomain "github.com/Apurer/sales-inventory-api/internal/domains/catalog/domain"
	customerdomain "github.com/Apurer/sales-inventory-api/internal/domains/customers/domain"
	userdomain "github.com/Apurer/sales-inventory-api/internal/domains/users/domain"
)

// TxManager runs fn in one transaction. fn's ctx carries the transaction.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProductStore is the slice of the inventory the processor mutates.
type ProductStore interface {
	GetForUpdate(ctx context.Context, id int64) (*catalogdomain.Product, error)
	Save(ctx context.Context, product *catalogdomain.Product) (*catalogdomain.Product, error)
}

type CustomerLookup interface {
	GetByID(ctx context.Context, id int64) (*customerdomain.Customer, error)
}

type SellerLookup interface {
	GetByID(ctx context.Context, id int64) (*userdomain.User, error)
}
