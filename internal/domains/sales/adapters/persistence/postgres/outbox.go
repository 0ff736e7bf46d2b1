package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Apurer/sales-inventory-api/internal/domains/sales/domain"
	"github.com/Apurer/sales-inventory-api/internal/domains/sales/ports"
	"github.com/Apurer/sales-inventory-api/internal/platform/transaction"
)

var (
	_ ports.Outbox       = (*Outbox)(nil)
	_ ports.OutboxReader = (*Outbox)(nil)
)

// Outbox stores sale events in the same transaction as the sale write so a
// relay can publish them after commit.
type Outbox struct {
	db *gorm.DB
}

func NewOutbox(db *gorm.DB) *Outbox {
	return &Outbox{db: db}
}

type outboxRecord struct {
	ID          string     `gorm:"primaryKey;column:id;type:uuid"`
	EventName   string     `gorm:"column:event_name;size:128;not null"`
	AggregateID int64      `gorm:"column:aggregate_id;not null;index"`
	Payload     []byte     `gorm:"column:payload;type:jsonb;not null"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null"`
	PublishedAt *time.Time `gorm:"column:published_at;index"`
}

func (outboxRecord) TableName() string { return "sale_outbox_events" }

func (o *Outbox) Append(ctx context.Context, event domain.Event) error {
	if err := o.ensureDB(); err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event.EventName(), err)
	}
	record := outboxRecord{
		ID:          uuid.NewString(),
		EventName:   event.EventName(),
		AggregateID: event.AggregateID(),
		Payload:     payload,
		CreatedAt:   event.OccurredAt(),
	}
	return transaction.DB(ctx, o.db).Create(&record).Error
}

// Pending returns up to limit unpublished messages, oldest first.
func (o *Outbox) Pending(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if err := o.ensureDB(); err != nil {
		return nil, err
	}
	query := transaction.DB(ctx, o.db).Where("published_at IS NULL").Order("created_at").Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []outboxRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	messages := make([]ports.OutboxMessage, 0, len(records))
	for _, record := range records {
		messages = append(messages, ports.OutboxMessage{
			ID:          record.ID,
			EventName:   record.EventName,
			AggregateID: record.AggregateID,
			Payload:     record.Payload,
			CreatedAt:   record.CreatedAt,
		})
	}
	return messages, nil
}

func (o *Outbox) MarkPublished(ctx context.Context, ids []string) error {
	if err := o.ensureDB(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.DB(ctx, o.db).
		Model(&outboxRecord{}).
		Where("id IN ?", ids).
		Update("published_at", gorm.Expr("NOW()")).Error
}

func (o *Outbox) ensureDB() error {
	if o == nil || o.db == nil {
		return errors.New("postgres sale outbox not configured")
	}
	return nil
}
