package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Apurer/sales-inventory-api/internal/domains/users/domain"
	"github.com/Apurer/sales-inventory-api/internal/domains/users/ports"
)

// Service exposes user bounded context use cases.
type Service struct {
	repo     ports.Repository
	sessions ports.SessionStore
	newToken func() string
}

type Option func(*Service)

// WithTokenGenerator overrides session token generation.
func WithTokenGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newToken = gen
		}
	}
}

func NewService(repo ports.Repository, sessions ports.SessionStore, opts ...Option) *Service {
	if sessions == nil {
		sessions = ports.NoopSessionStore
	}
	s := &Service{repo: repo, sessions: sessions, newToken: uuid.NewString}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) Register(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	parsed, err := domain.ParseRole(string(role))
	if err != nil {
		return nil, mapError(err)
	}
	user, err := domain.NewUser(0, username, password, parsed)
	if err != nil {
		return nil, mapError(err)
	}
	if _, err := s.repo.GetByUsername(ctx, user.Username); err == nil {
		return nil, ports.ErrDuplicateUsername
	} else if !errors.Is(err, ports.ErrNotFound) {
		return nil, err
	}
	return s.repo.Save(ctx, user)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return "", mapError(ports.ErrInvalidCredentials)
	}
	user, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, ports.ErrNotFound) {
		return "", mapError(ports.ErrInvalidCredentials)
	}
	if err != nil {
		return "", err
	}
	if !user.CheckPassword(password) {
		return "", mapError(ports.ErrInvalidCredentials)
	}
	token := s.newToken()
	if err := s.sessions.Save(ctx, user.Username, token); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return token, nil
}

// Logout revokes the session of username. Revoking an absent session is not
// an error.
func (s *Service) Logout(ctx context.Context, username string) error {
	if strings.TrimSpace(username) == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, username); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Service) ResolveIdentity(ctx context.Context, token string) (*domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, mapError(ports.ErrSessionNotFound)
	}
	username, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		return nil, mapError(err)
	}
	user, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, mapError(ports.ErrSessionNotFound)
	}
	return user, err
}

var _ ports.Service = (*Service)(nil)
