package ports

import (
	"context"
	"errors"

	"github.com/Apurer/sales-inventory-api/internal/domains/users/domain"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrUnauthenticated    = errors.New("missing or expired session")
)

type Repository interface {
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Delete(ctx context.Context, username string) error
	List(ctx context.Context) ([]*domain.User, error)
}
