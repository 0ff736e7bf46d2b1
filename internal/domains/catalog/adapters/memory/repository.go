package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/sales-inventory-api/internal/domains/catalog/domain"
	"github.com/Apurer/sales-inventory-api/internal/domains/catalog/ports"
	"github.com/Apurer/sales-inventory-api/internal/platform/transaction"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory product persistence adapter. Mutations made
// inside a transaction.InMemory unit of work are undone on rollback.
type Repository struct {
	mu       sync.RWMutex
	products map[int64]*domain.Product
	nextID   int64
	now      func() time.Time
}

func NewRepository() *Repository {
	return &Repository{products: map[int64]*domain.Product{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	clone := *product
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.products {
		if id != clone.ID && strings.EqualFold(existing.Name, clone.Name) {
			return nil, ports.ErrDuplicateName
		}
	}

	prevNextID := r.nextID
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	previous, existed := r.products[clone.ID]
	now := r.now()
	if existed {
		clone.CreatedAt = previous.CreatedAt
	} else if clone.CreatedAt.IsZero() {
		clone.CreatedAt = now
	}
	clone.UpdatedAt = now
	r.products[clone.ID] = &clone

	id := clone.ID
	transaction.OnRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if existed {
			r.products[id] = previous
		} else {
			delete(r.products, id)
		}
		r.nextID = prevNextID
	})
	result := clone
	return &result, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *product
	return &clone, nil
}

// GetForUpdate is GetByID; transaction.InMemory already serialises writers.
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	previous, ok := r.products[id]
	if !ok {
		return ports.ErrNotFound
	}
	delete(r.products, id)
	transaction.OnRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.products[id] = previous
	})
	return nil
}

func (r *Repository) List(_ context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Product, 0, len(r.products))
	for _, product := range r.products {
		clone := *product
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}
