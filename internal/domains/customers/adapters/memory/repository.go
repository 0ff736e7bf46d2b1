package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/sales-inventory-api/internal/domains/customers/domain"
	"github.com/Apurer/sales-inventory-api/internal/domains/customers/ports"
	"github.com/Apurer/sales-inventory-api/internal/platform/transaction"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory customer persistence adapter.
type Repository struct {
	mu        sync.RWMutex
	customers map[int64]*domain.Customer
	nextID    int64
	now       func() time.Time
}

func NewRepository() *Repository {
	return &Repository{customers: map[int64]*domain.Customer{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Save(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if customer == nil {
		return nil, errors.New("customer is nil")
	}
	clone := *customer
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.customers {
		if id != clone.ID && existing.TaxID == clone.TaxID {
			return nil, ports.ErrDuplicateTaxID
		}
	}

	prevNextID := r.nextID
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	previous, existed := r.customers[clone.ID]
	now := r.now()
	if existed {
		clone.CreatedAt = previous.CreatedAt
	} else if clone.CreatedAt.IsZero() {
		clone.CreatedAt = now
	}
	clone.UpdatedAt = now
	r.customers[clone.ID] = &clone

	id := clone.ID
	transaction.OnRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if existed {
			r.customers[id] = previous
		} else {
			delete(r.customers, id)
		}
		r.nextID = prevNextID
	})
	result := clone
	return &result, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	customer, ok := r.customers[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *customer
	return &clone, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	previous, ok := r.customers[id]
	if !ok {
		return ports.ErrNotFound
	}
	delete(r.customers, id)
	transaction.OnRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.customers[id] = previous
	})
	return nil
}

func (r *Repository) List(_ context.Context) ([]*domain.Customer, error) {
	return r.filter(func(*domain.Customer) bool { return true }), nil
}

func (r *Repository) SearchByName(_ context.Context, fragment string) ([]*domain.Customer, error) {
	needle := strings.ToLower(fragment)
	return r.filter(func(c *domain.Customer) bool {
		return strings.Contains(strings.ToLower(c.Name), needle)
	}), nil
}

func (r *Repository) filter(keep func(*domain.Customer) bool) []*domain.Customer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Customer, 0, len(r.customers))
	for _, customer := range r.customers {
		if !keep(customer) {
			continue
		}
		clone := *customer
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}
