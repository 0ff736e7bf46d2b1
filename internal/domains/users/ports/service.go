package ports

import (
	"context"

	"github.com/Apurer/sales-inventory-api/internal/domains/users/domain"
)

// Service exposes user bounded context use cases to adapters.
type Service interface {
	Register(ctx context.Context, username, password string, role domain.Role) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, username string) error
	// ResolveIdentity maps a session token to its user.
	ResolveIdentity(ctx context.Context, token string) (*domain.User, error)
}
