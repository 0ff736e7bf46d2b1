package application

import (
	"context"
	"errors"

	"github.com/Apurer/sales-inventory-api/internal/domains/catalog/domain"
	"github.com/Apurer/sales-inventory-api/internal/domains/catalog/ports"
)

// Service orchestrates catalog use cases. Stock changes made here are direct
// catalog edits; sales move stock through the sales processor.
type Service struct {
	repo  ports.Repository
	tx    ports.TxManager
	usage ports.Usage
}

type Option func(*Service)

// WithTxManager runs edits and deletes in the same units of work as sales, so
// an edit cannot interleave with a sale's stock withdrawal.
func WithTxManager(tx ports.TxManager) Option {
	return func(s *Service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

// WithUsage refuses to delete products that sales still reference.
func WithUsage(usage ports.Usage) Option {
	return func(s *Service) {
		if usage != nil {
			s.usage = usage
		}
	}
}

func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, tx: directTx{}}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	candidate := *product
	candidate.ID = 0
	if err := candidate.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Save(ctx, &candidate)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.List(ctx)
}

// UpdateProduct replaces the editable fields of an existing product under a
// row lock.
func (s *Service) UpdateProduct(ctx context.Context, id int64, changes *domain.Product) (*domain.Product, error) {
	if changes == nil {
		return nil, errors.New("product is nil")
	}
	var updated *domain.Product
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := existing.Rename(changes.Name); err != nil {
			return mapError(err)
		}
		existing.Categorize(changes.Category)
		if err := existing.Reprice(changes.Price); err != nil {
			return mapError(err)
		}
		if err := existing.SetStock(changes.Stock); err != nil {
			return mapError(err)
		}
		updated, err = s.repo.Save(ctx, existing)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteProduct fails with ports.ErrInUse while any sale holds the product.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.tx.Do(ctx, func(ctx context.Context) error {
		if s.usage != nil {
			inUse, err := s.usage.ReferencesProduct(ctx, id)
			if err != nil {
				return err
			}
			if inUse {
				return ports.ErrInUse
			}
		}
		return s.repo.Delete(ctx, id)
	})
}

type directTx struct{}

func (directTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var _ ports.Service = (*Service)(nil)
