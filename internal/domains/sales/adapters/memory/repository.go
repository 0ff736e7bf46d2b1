package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/sales-inventory-api/internal/domains/sales/domain"
	"github.com/Apurer/sales-inventory-api/internal/domains/sales/ports"
	"github.com/Apurer/sales-inventory-api/internal/platform/transaction"
	"github.com/Apurer/sales-inventory-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps sale aggregates in memory. Writes made inside a
// transaction.InMemory unit of work are undone on rollback.
type Repository struct {
	mu     sync.RWMutex
	sales  map[int64]*domain.Sale
	nextID int64
	now    func() time.Time
}

func NewRepository() *Repository {
	return &Repository{sales: map[int64]*domain.Sale{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Save(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	if sale == nil {
		return nil, errors.New("sale is nil")
	}
	if err := sale.Validate(); err != nil {
		return nil, err
	}
	clone := sale.Clone()
	r.mu.Lock()
	defer r.mu.Unlock()

	prevNextID := r.nextID
	previous, existed := r.sales[clone.ID]
	if clone.ID != 0 && !existed {
		return nil, ports.ErrNotFound
	}
	now := r.now().UTC()
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
		clone.CreatedAt = now
	} else {
		clone.CreatedAt = previous.CreatedAt
	}
	clone.UpdatedAt = now
	r.sales[clone.ID] = clone

	id := clone.ID
	transaction.OnRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if existed {
			r.sales[id] = previous
		} else {
			delete(r.sales, id)
		}
		r.nextID = prevNextID
	})
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sale, ok := r.sales[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return sale.Clone(), nil
}

// GetForUpdate is GetByID; transaction.InMemory already serialises writers.
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*domain.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	previous, ok := r.sales[id]
	if !ok {
		return ports.ErrNotFound
	}
	delete(r.sales, id)
	transaction.OnRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.sales[id] = previous
	})
	return nil
}

// List pages sales by creation date, newest first.
func (r *Repository) List(_ context.Context, page projection.PageRequest) (projection.Page[*domain.Sale], error) {
	page = page.Normalize()
	all := r.filter(func(*domain.Sale) bool { return true })
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	result := projection.Page[*domain.Sale]{Page: page.Page, Size: page.Size, TotalElements: int64(len(all))}
	start := page.Offset()
	if start < 0 || start >= len(all) {
		result.Items = []*domain.Sale{}
		return result, nil
	}
	end := start + page.Size
	if end > len(all) {
		end = len(all)
	}
	result.Items = all[start:end]
	return result, nil
}

func (r *Repository) FindBySeller(_ context.Context, sellerID int64) ([]*domain.Sale, error) {
	return r.filter(func(s *domain.Sale) bool { return s.SellerID == sellerID }), nil
}

func (r *Repository) FindByCustomer(_ context.Context, customerID int64) ([]*domain.Sale, error) {
	return r.filter(func(s *domain.Sale) bool { return s.CustomerID == customerID }), nil
}

// FindByDateRange matches creation dates within [start, end].
func (r *Repository) FindByDateRange(_ context.Context, start, end time.Time) ([]*domain.Sale, error) {
	return r.filter(func(s *domain.Sale) bool {
		return !s.CreatedAt.Before(start) && !s.CreatedAt.After(end)
	}), nil
}

// ReferencesProduct reports whether any stored sale has a line for productID.
func (r *Repository) ReferencesProduct(_ context.Context, productID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sale := range r.sales {
		for _, item := range sale.Items() {
			if item.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *Repository) filter(keep func(*domain.Sale) bool) []*domain.Sale {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Sale, 0, len(r.sales))
	for _, sale := range r.sales {
		if keep(sale) {
			list = append(list, sale.Clone())
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}
