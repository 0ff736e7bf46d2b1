package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/sales-inventory-api/internal/domains/users/domain"
	"github.com/Apurer/sales-inventory-api/internal/domains/users/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps users in memory, keyed by username.
type Repository struct {
	mu     sync.RWMutex
	users  map[string]*domain.User
	nextID int64
}

func NewRepository() *Repository {
	return &Repository{users: map[string]*domain.User{}}
}

func (r *Repository) Save(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	clone := *user
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.users[clone.Username]; ok {
		clone.ID = existing.ID
		clone.CreatedAt = existing.CreatedAt
	} else {
		r.nextID++
		clone.ID = r.nextID
		clone.CreatedAt = time.Now().UTC()
	}
	r.users[clone.Username] = &clone
	result := clone
	return &result, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *Repository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[strings.TrimSpace(username)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *Repository) Delete(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	username = strings.TrimSpace(username)
	if _, ok := r.users[username]; !ok {
		return ports.ErrNotFound
	}
	delete(r.users, username)
	return nil
}

func (r *Repository) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		clone := *user
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}
