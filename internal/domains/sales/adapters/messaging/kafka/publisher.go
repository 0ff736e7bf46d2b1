package kafka

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Apurer/sales-inventory-api/internal/domains/sales/ports"
)

var _ ports.Publisher = (*Publisher)(nil)

// Header names carried on every sale event message.
const (
	HeaderEventName = "event-name"
	HeaderMessageID = "message-id"
)

// Options configures the Kafka writer.
type Options struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// Publisher writes outbox messages to one topic, keyed by sale id so events
// of a sale stay ordered within a partition.
type Publisher struct {
	writer messageWriter
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewPublisher(opts Options) (*Publisher, error) {
	if len(opts.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if strings.TrimSpace(opts.Topic) == "" {
		return nil, errors.New("kafka topic is required")
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	return &Publisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(opts.Brokers...),
		Topic:                  opts.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           100 * time.Millisecond,
		WriteTimeout:           opts.WriteTimeout,
		AllowAutoTopicCreation: true,
	}}, nil
}

func (p *Publisher) Publish(ctx context.Context, messages []ports.OutboxMessage) error {
	if len(messages) == 0 {
		return nil
	}
	return p.writer.WriteMessages(ctx, toKafkaMessages(messages)...)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func toKafkaMessages(messages []ports.OutboxMessage) []kafka.Message {
	out := make([]kafka.Message, 0, len(messages))
	for _, msg := range messages {
		out = append(out, kafka.Message{
			Key:   []byte(strconv.FormatInt(msg.AggregateID, 10)),
			Value: msg.Payload,
			Time:  msg.CreatedAt,
			Headers: []kafka.Header{
				{Key: HeaderEventName, Value: []byte(msg.EventName)},
				{Key: HeaderMessageID, Value: []byte(msg.ID)},
			},
		})
	}
	return out
}
