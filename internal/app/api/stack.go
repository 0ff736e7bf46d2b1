package api

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	catalogmemory "github.com/Apurer/sales-inventory-api/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/Apurer/sales-inventory-api/internal/domains/catalog/adapters/observability"
	catalogpostgres "github.com/Apurer/sales-inventory-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/sales-inventory-api/internal/domains/catalog/application"
	catalogports "github.com/Apurer/sales-inventory-api/internal/domains/catalog/ports"
	customermemory "github.com/Apurer/sales-inventory-api/internal/domains/customers/adapters/memory"
	customerobs "github.com/Apurer/sales-inventory-api/internal/domains/customers/adapters/observability"
	customerpostgres "github.com/Apurer/sales-inventory-api/internal/domains/customers/adapters/persistence/postgres"
	customerapp "github.com/Apurer/sales-inventory-api/internal/domains/customers/application"
	customerports "github.com/Apurer/sales-inventory-api/internal/domains/customers/ports"
	salesredis "github.com/Apurer/sales-inventory-api/internal/domains/sales/adapters/cache/redis"
	salesmemory "github.com/Apurer/sales-inventory-api/internal/domains/sales/adapters/memory"
	saleskafka "github.com/Apurer/sales-inventory-api/internal/domains/sales/adapters/messaging/kafka"
	"github.com/Apurer/sales-inventory-api/internal/domains/sales/adapters/messaging/relay"
	salesobs "github.com/Apurer/sales-inventory-api/internal/domains/sales/adapters/observability"
	salespostgres "github.com/Apurer/sales-inventory-api/internal/domains/sales/adapters/persistence/postgres"
	salesapp "github.com/Apurer/sales-inventory-api/internal/domains/sales/application"
	salesports "github.com/Apurer/sales-inventory-api/internal/domains/sales/ports"
	userredis "github.com/Apurer/sales-inventory-api/internal/domains/users/adapters/cache/redis"
	usermemory "github.com/Apurer/sales-inventory-api/internal/domains/users/adapters/memory"
	userobs "github.com/Apurer/sales-inventory-api/internal/domains/users/adapters/observability"
	userpostgres "github.com/Apurer/sales-inventory-api/internal/domains/users/adapters/persistence/postgres"
	userapp "github.com/Apurer/sales-inventory-api/internal/domains/users/application"
	userports "github.com/Apurer/sales-inventory-api/internal/domains/users/ports"
	"github.com/Apurer/sales-inventory-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/sales-inventory-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/sales-inventory-api/internal/platform/postgres"
	platformredis "github.com/Apurer/sales-inventory-api/internal/platform/redis"
	"github.com/Apurer/sales-inventory-api/internal/platform/transaction"
)

// Stack is the service graph shared by the API and worker processes.
type Stack struct {
	Users     userports.Service
	Catalog   catalogports.Service
	Customers customerports.Service
	Sales     salesports.Service
	// Relay is nil unless Kafka brokers are configured.
	Relay *relay.Relay
}

type outboxStore interface {
	salesports.Outbox
	salesports.OutboxReader
}

type repositories struct {
	tx          salesports.TxManager
	products    catalogports.Repository
	customers   customerports.Repository
	users       userports.Repository
	sales       salesports.Repository
	sessions    userports.SessionStore
	idempotency salesports.IdempotencyStore
	outbox      outboxStore
}

// BuildStack connects to whatever infrastructure cfg names and wires the
// bounded contexts on top. Missing infrastructure degrades to in-memory adapters.
func BuildStack(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*Stack, func(), error) {
	logger := effectiveLogger(instruments)
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	db, closeDB := platformpostgres.ConnectDSN(ctx, cfg.PostgresDSN, logger)
	cleanups = append(cleanups, closeDB)
	if db != nil {
		if err := migrations.Run(db); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	redisClient, closeRedis := platformredis.ConnectOptional(ctx, platformredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	cleanups = append(cleanups, closeRedis)

	repos, err := buildRepositories(cfg, db, redisClient, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	stack := &Stack{
		Users: userobs.New(
			userapp.NewService(repos.users, repos.sessions),
			userobs.WithLogger(logger),
			userobs.WithTracer(instruments.Tracer("internal.users.application")),
			userobs.WithMeter(instruments.Meter("internal.users.application")),
		),
		Catalog: catalogobs.New(
			catalogapp.NewService(repos.products,
				catalogapp.WithTxManager(repos.tx),
				catalogapp.WithUsage(repos.sales),
			),
			catalogobs.WithLogger(logger),
			catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
			catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
		),
		Customers: customerobs.New(
			customerapp.NewService(repos.customers),
			customerobs.WithLogger(logger),
			customerobs.WithTracer(instruments.Tracer("internal.customers.application")),
			customerobs.WithMeter(instruments.Meter("internal.customers.application")),
		),
	}

	saleOpts := []salesapp.Option{salesapp.WithIdempotencyStore(repos.idempotency)}
	if repos.outbox != nil {
		saleOpts = append(saleOpts, salesapp.WithOutbox(repos.outbox))
	}
	stack.Sales = salesobs.New(
		salesapp.NewService(repos.tx, repos.products, repos.customers, repos.users, repos.sales, saleOpts...),
		salesobs.WithLogger(logger),
		salesobs.WithTracer(instruments.Tracer("internal.sales.application")),
		salesobs.WithMeter(instruments.Meter("internal.sales.application")),
	)

	if repos.outbox != nil {
		publisher, err := saleskafka.NewPublisher(saleskafka.Options{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("configure kafka publisher: %w", err)
		}
		cleanups = append(cleanups, func() { _ = publisher.Close() })
		stack.Relay = relay.New(repos.outbox, publisher,
			relay.WithInterval(cfg.OutboxPollInterval),
			relay.WithLogger(logger),
			relay.WithTracer(instruments.Tracer("internal.sales.outbox")),
		)
		logger.Info("sale events relayed to kafka", slog.String("topic", cfg.KafkaTopic))
	} else {
		logger.Warn("KAFKA_BROKERS not set, sale events are not published")
	}
	return stack, cleanup, nil
}

// buildRepositories picks PostgreSQL when db is set and memory otherwise.
// Sessions prefer Redis. Idempotency keys prefer the transactional PostgreSQL
// store; Redis backs them only for the in-memory stack, whose rollback
// releases the claimed key.
func buildRepositories(cfg Config, db *gorm.DB, redisClient *goredis.Client, logger *slog.Logger) (repositories, error) {
	var repos repositories
	if db != nil {
		tx, err := transaction.NewGorm(db)
		if err != nil {
			return repos, fmt.Errorf("configure transaction manager: %w", err)
		}
		repos.tx = tx
		repos.products = catalogpostgres.NewRepository(db)
		repos.customers = customerpostgres.NewRepository(db)
		repos.users = userpostgres.NewRepository(db)
		repos.sales = salespostgres.NewRepository(db)
		repos.sessions = userpostgres.NewSessionStore(db, cfg.SessionTTL)
		repos.idempotency = salespostgres.NewIdempotencyStore(db)
		if cfg.KafkaEnabled() {
			repos.outbox = salespostgres.NewOutbox(db)
		}
		logger.Info("repositories configured with postgres")
	} else {
		repos.tx = transaction.NewInMemory()
		repos.products = catalogmemory.NewRepository()
		repos.customers = customermemory.NewRepository()
		repos.users = usermemory.NewRepository()
		repos.sales = salesmemory.NewRepository()
		repos.sessions = usermemory.NewSessionStore(cfg.SessionTTL)
		repos.idempotency = salesmemory.NewIdempotencyStore()
		if redisClient != nil {
			repos.idempotency = salesredis.NewIdempotencyStore(redisClient, cfg.IdempotencyTTL)
		}
		if cfg.KafkaEnabled() {
			repos.outbox = salesmemory.NewOutbox()
		}
	}
	if redisClient != nil {
		repos.sessions = userredis.NewSessionStore(redisClient, cfg.SessionTTL)
		logger.Info("sessions stored in redis")
	}
	return repos, nil
}
