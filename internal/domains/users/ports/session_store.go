package ports

import (
	"context"
	"errors"
)

// ErrSessionNotFound is returned by Lookup for unknown or expired tokens.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore abstracts session/token persistence. A user holds at most one
// live token; Save replaces the previous one.
type SessionStore interface {
	Save(ctx context.Context, username, token string) error
	Lookup(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, username string) error
}

// NoopSessionStore is a safe default when callers do not need session persistence.
var NoopSessionStore SessionStore = noopSessionStore{}

type noopSessionStore struct{}

func (noopSessionStore) Save(_ context.Context, _ string, _ string) error { return nil }
func (noopSessionStore) Lookup(_ context.Context, _ string) (string, error) {
	return "", ErrSessionNotFound
}
func (noopSessionStore) Delete(_ context.Context, _ string) error { return nil }
