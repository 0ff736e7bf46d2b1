package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Apurer/sales-inventory-api/internal/app/api"
	saleskafka "github.com/Apurer/sales-inventory-api/internal/domains/sales/adapters/messaging/kafka"
	"github.com/Apurer/sales-inventory-api/internal/domains/sales/adapters/messaging/relay"
	salespostgres "github.com/Apurer/sales-inventory-api/internal/domains/sales/adapters/persistence/postgres"
	platformobservability "github.com/Apurer/sales-inventory-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/sales-inventory-api/internal/platform/postgres"
)

// The standalone relay drains sale_outbox_events into Kafka for deployments
// that keep the API process free of broker connections.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	const serviceName = "sales-outbox-relay"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	if !cfg.KafkaEnabled() {
		logger.Error("KAFKA_BROKERS not set; nothing to relay to")
		os.Exit(1)
	}
	db, cleanup := platformpostgres.ConnectDSN(ctx, cfg.PostgresDSN, logger)
	defer cleanup()
	if db == nil {
		logger.Error("the outbox relay needs POSTGRES_DSN")
		os.Exit(1)
	}
	publisher, err := saleskafka.NewPublisher(saleskafka.Options{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
	if err != nil {
		logger.Error("failed to configure kafka publisher", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer publisher.Close()

	r := relay.New(salespostgres.NewOutbox(db), publisher,
		relay.WithInterval(cfg.OutboxPollInterval),
		relay.WithLogger(logger),
		relay.WithTracer(instruments.Tracer("internal.sales.outbox")),
	)
	if err := r.Run(ctx); err != nil {
		logger.Error("outbox relay exited with error", slog.String("error", err.Error()))
	}
}
