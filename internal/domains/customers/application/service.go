package application

import (
	"context"
	"errors"
	"strings"

	"github.com/Apurer/sales-inventory-api/internal/domains/customers/domain"
	"github.com/Apurer/sales-inventory-api/internal/domains/customers/ports"
)

// Service orchestrates customer use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateCustomer(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if customer == nil {
		return nil, errors.New("customer is nil")
	}
	candidate := *customer
	candidate.ID = 0
	if err := candidate.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Save(ctx, &candidate)
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	return s.repo.List(ctx)
}

// SearchCustomers matches a case-insensitive fragment of the customer name.
func (s *Service) SearchCustomers(ctx context.Context, name string) ([]*domain.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.repo.List(ctx)
	}
	return s.repo.SearchByName(ctx, name)
}

func (s *Service) UpdateCustomer(ctx context.Context, id int64, changes *domain.Customer) (*domain.Customer, error) {
	if changes == nil {
		return nil, errors.New("customer is nil")
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := existing.Rename(changes.Name); err != nil {
		return nil, mapError(err)
	}
	if err := existing.SetTaxID(changes.TaxID); err != nil {
		return nil, mapError(err)
	}
	existing.SetPhone(changes.Phone)
	return s.repo.Save(ctx, existing)
}

func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

var _ ports.Service = (*Service)(nil)
