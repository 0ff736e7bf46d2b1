package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	userports "github.com/Apurer/sales-inventory-api/internal/domains/users/ports"
)

var _ userports.SessionStore = (*SessionStore)(nil)

// DefaultSessionTTL applies when no TTL is configured.
const DefaultSessionTTL = 24 * time.Hour

// SessionStore keeps sessions in Redis. Two keys are written per session,
// token -> username and username -> token, both expiring together.
type SessionStore struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewSessionStore(client goredis.UniversalClient, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{client: client, prefix: "sales:session", ttl: ttl}
}

func (s *SessionStore) tokenKey(token string) string {
	return fmt.Sprintf("%s:token:%s", s.prefix, token)
}

func (s *SessionStore) userKey(username string) string {
	return fmt.Sprintf("%s:user:%s", s.prefix, username)
}

func (s *SessionStore) Save(ctx context.Context, username, token string) error {
	username = strings.TrimSpace(username)
	token = strings.TrimSpace(token)
	if username == "" || token == "" {
		return errors.New("username and token are required")
	}
	previous, err := s.client.Get(ctx, s.userKey(username)).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		if previous != "" {
			pipe.Del(ctx, s.tokenKey(previous))
		}
		pipe.Set(ctx, s.tokenKey(token), username, s.ttl)
		pipe.Set(ctx, s.userKey(username), token, s.ttl)
		return nil
	})
	return err
}

func (s *SessionStore) Lookup(ctx context.Context, token string) (string, error) {
	username, err := s.client.Get(ctx, s.tokenKey(strings.TrimSpace(token))).Result()
	if errors.Is(err, goredis.Nil) {
		return "", userports.ErrSessionNotFound
	}
	return username, err
}

func (s *SessionStore) Delete(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil
	}
	token, err := s.client.Get(ctx, s.userKey(username)).Result()
	if errors.Is(err, goredis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.client.Del(ctx, s.tokenKey(token), s.userKey(username)).Err()
}
