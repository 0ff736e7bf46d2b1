package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/sales-inventory-api/internal/domains/users/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

type session struct {
	username  string
	expiresAt time.Time
}

// SessionStore is an in-memory SessionStore implementation.
type SessionStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	byToken map[string]session
	byUser  map[string]string
}

// NewSessionStore keeps sessions for ttl; a non-positive ttl never expires.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:     ttl,
		now:     time.Now,
		byToken: map[string]session{},
		byUser:  map[string]string{},
	}
}

// WithClock overrides the time source for deterministic testing.
func (s *SessionStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *SessionStore) Save(_ context.Context, username, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if previous, ok := s.byUser[username]; ok {
		delete(s.byToken, previous)
	}
	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = s.now().Add(s.ttl)
	}
	s.byToken[token] = session{username: username, expiresAt: expiresAt}
	s.byUser[username] = token
	return nil
}

func (s *SessionStore) Lookup(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byToken[token]
	if !ok {
		return "", ports.ErrSessionNotFound
	}
	if !sess.expiresAt.IsZero() && !s.now().Before(sess.expiresAt) {
		delete(s.byToken, token)
		delete(s.byUser, sess.username)
		return "", ports.ErrSessionNotFound
	}
	return sess.username, nil
}

func (s *SessionStore) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token, ok := s.byUser[username]; ok {
		delete(s.byToken, token)
		delete(s.byUser, username)
	}
	return nil
}
