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
	userpostgres "github.com/Apurer/sales-inventory-api/internal/domains/users/adapters/persistence/postgres"
	platformobservability "github.com/Apurer/sales-inventory-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/sales-inventory-api/internal/platform/postgres"
)

// The purger runs once, or every SESSION_PURGE_INTERVAL_MINUTES until signalled.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: platformobservability.ParseLevel(os.Getenv("LOG_LEVEL"))}))
	db, cleanup := platformpostgres.ConnectDSN(ctx, cfg.PostgresDSN, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge sessions")
	}
	store := userpostgres.NewSessionStore(db, cfg.SessionTTL)

	purge := func() {
		purgeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		purged, err := store.PurgeExpired(purgeCtx)
		if err != nil {
			logger.Error("failed to purge sessions", slog.String("error", err.Error()))
			return
		}
		logger.Info("session purge completed", slog.Int64("purged", purged))
	}

	purge()
	if cfg.SessionPurgeIntervalMinute <= 0 {
		return
	}
	ticker := time.NewTicker(time.Duration(cfg.SessionPurgeIntervalMinute) * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purge()
		}
	}
}
