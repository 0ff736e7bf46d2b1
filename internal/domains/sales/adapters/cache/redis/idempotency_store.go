package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Apurer/sales-inventory-api/internal/domains/sales/ports"
	"github.com/Apurer/sales-inventory-api/internal/platform/transaction"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// DefaultKeyTTL bounds how long a client key can be replayed.
const DefaultKeyTTL = 24 * time.Hour

// IdempotencyStore claims keys with SET NX. Redis does not join the sale
// transaction: a claim made by a transaction that later fails to commit
// stays until the key expires.
type IdempotencyStore struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

func NewIdempotencyStore(client goredis.UniversalClient, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultKeyTTL
	}
	return &IdempotencyStore{client: client, prefix: "sales:idempotency", ttl: ttl, now: time.Now}
}

type storedRecord struct {
	Key         string    `json:"key"`
	RequestHash string    `json:"requestHash"`
	SaleID      int64     `json:"saleId"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (s *IdempotencyStore) redisKey(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, strings.TrimSpace(key))
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	raw, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stored storedRecord
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode idempotency record %q: %w", key, err)
	}
	return &ports.IdempotencyRecord{
		Key:         stored.Key,
		RequestHash: stored.RequestHash,
		SaleID:      stored.SaleID,
		CreatedAt:   stored.CreatedAt,
		UpdatedAt:   stored.CreatedAt,
	}, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	now := s.now().UTC()
	raw, err := json.Marshal(storedRecord{
		Key:         record.Key,
		RequestHash: record.RequestHash,
		SaleID:      record.SaleID,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	claimed, err := s.client.SetNX(ctx, s.redisKey(record.Key), raw, s.ttl).Result()
	if err != nil {
		return nil, err
	}
	if claimed {
		transaction.OnRollback(ctx, func() {
			_ = s.client.Del(context.Background(), s.redisKey(record.Key)).Err()
		})
		record.CreatedAt = now
		record.UpdatedAt = now
		return &record, nil
	}
	existing, err := s.Get(ctx, record.Key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.New("idempotency key expired during claim")
	}
	if existing.RequestHash != record.RequestHash || existing.SaleID != record.SaleID {
		return existing, ports.ErrIdempotencyConflict
	}
	return existing, nil
}
