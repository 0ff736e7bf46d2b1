// Package relay drains the sale outbox into a broker after commit.
package relay

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/sales-inventory-api/internal/domains/sales/ports"
)

const (
	DefaultInterval  = 2 * time.Second
	DefaultBatchSize = 100
)

// Relay polls the outbox and publishes messages with at-least-once delivery:
// a batch is marked published only after the broker accepted it.
type Relay struct {
	outbox    ports.OutboxReader
	publisher ports.Publisher
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	tracer    trace.Tracer
}

type Option func(*Relay)

func WithInterval(interval time.Duration) Option {
	return func(r *Relay) {
		if interval > 0 {
			r.interval = interval
		}
	}
}

func WithBatchSize(size int) Option {
	return func(r *Relay) {
		if size > 0 {
			r.batchSize = size
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(r *Relay) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

func New(outbox ports.OutboxReader, publisher ports.Publisher, opts ...Option) *Relay {
	r := &Relay{
		outbox:    outbox,
		publisher: publisher,
		interval:  DefaultInterval,
		batchSize: DefaultBatchSize,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:    tracenoop.NewTracerProvider().Tracer("sales/outbox-relay"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Run drains the outbox on start and then once per interval until ctx ends.
// Publish failures are logged and retried on the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	r.logger.InfoContext(ctx, "outbox relay started", slog.Duration("interval", r.interval))
	for {
		if _, err := r.Drain(ctx); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "outbox relay batch failed", slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			r.logger.InfoContext(context.Background(), "outbox relay stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Drain publishes pending batches until the outbox is empty and returns the
// number of messages relayed.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	relayed := 0
	for {
		n, err := r.relayBatch(ctx)
		relayed += n
		if err != nil || n < r.batchSize {
			return relayed, err
		}
	}
}

func (r *Relay) relayBatch(ctx context.Context) (int, error) {
	messages, err := r.outbox.Pending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(messages) == 0 {
		return 0, nil
	}
	ctx, span := r.tracer.Start(ctx, "OutboxRelay.Publish", trace.WithAttributes(attribute.Int("outbox.batch_size", len(messages))))
	defer span.End()

	if err := r.publisher.Publish(ctx, messages); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.ID)
	}
	if err := r.outbox.MarkPublished(ctx, ids); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	r.logger.LogAttrs(ctx, slog.LevelDebug, "outbox batch relayed", slog.Int("count", len(messages)))
	return len(messages), nil
}
