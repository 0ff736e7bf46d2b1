package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/sales-inventory-api/internal/domains/sales/domain"
	"github.com/Apurer/sales-inventory-api/internal/domains/sales/ports"
	"github.com/Apurer/sales-inventory-api/internal/platform/transaction"
)

var (
	_ ports.Outbox       = (*Outbox)(nil)
	_ ports.OutboxReader = (*Outbox)(nil)
)

// Outbox buffers sale events in memory until a relay marks them published.
type Outbox struct {
	mu       sync.Mutex
	messages []ports.OutboxMessage
	now      func() time.Time
}

func NewOutbox() *Outbox {
	return &Outbox{now: time.Now}
}

func (o *Outbox) Append(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := ports.OutboxMessage{
		ID:          uuid.NewString(),
		EventName:   event.EventName(),
		AggregateID: event.AggregateID(),
		Payload:     payload,
		CreatedAt:   o.now().UTC(),
	}
	o.mu.Lock()
	o.messages = append(o.messages, msg)
	o.mu.Unlock()

	transaction.OnRollback(ctx, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		for i := range o.messages {
			if o.messages[i].ID == msg.ID {
				o.messages = append(o.messages[:i], o.messages[i+1:]...)
				return
			}
		}
	})
	return nil
}

// Pending returns up to limit unpublished messages in append order.
func (o *Outbox) Pending(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if limit <= 0 || limit > len(o.messages) {
		limit = len(o.messages)
	}
	return append([]ports.OutboxMessage(nil), o.messages[:limit]...), nil
}

func (o *Outbox) MarkPublished(_ context.Context, ids []string) error {
	done := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		done[id] = struct{}{}
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	kept := o.messages[:0]
	for _, msg := range o.messages {
		if _, ok := done[msg.ID]; !ok {
			kept = append(kept, msg)
		}
	}
	o.messages = kept
	return nil
}
