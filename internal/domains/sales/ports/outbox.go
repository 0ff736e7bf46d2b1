package ports

import (
	"context"
	"time"

	"github.com/Apurer/sales-inventory-api/internal/domains/sales/domain"
)

// Outbox records domain events inside the caller's transaction.
type Outbox interface {
	Append(ctx context.Context, event domain.Event) error
}

// OutboxMessage is a stored event waiting to be relayed.
type OutboxMessage struct {
	ID          string
	EventName   string
	AggregateID int64
	Payload     []byte
	CreatedAt   time.Time
}

// OutboxReader is implemented by outboxes that a relay can drain.
type OutboxReader interface {
	Pending(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkPublished(ctx context.Context, ids []string) error
}

// Publisher delivers relayed messages to a broker.
type Publisher interface {
	Publish(ctx context.Context, messages []OutboxMessage) error
}

// NoopOutbox drops events.
var NoopOutbox Outbox = noopOutbox{}

type noopOutbox struct{}

func (noopOutbox) Append(context.Context, domain.Event) error { return nil }
