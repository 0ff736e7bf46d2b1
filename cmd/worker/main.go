package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/sales-inventory-api/internal/app/api"
	platformobservability "github.com/Apurer/sales-inventory-api/internal/platform/observability"
	saleactivities "github.com/Apurer/sales-inventory-api/internal/platform/temporal/activities/sales"
	saleworkflows "github.com/Apurer/sales-inventory-api/internal/platform/temporal/workflows/sales"
)

func main() {
	ctx := context.Background()
	const serviceName = "sales-inventory-worker"
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
	if cfg.PostgresDSN == "" {
		logger.Warn("worker running without POSTGRES_DSN; sales it creates are invisible to the API process")
	}

	// The worker only needs the processor; events are relayed by the API process.
	cfg.KafkaBrokers = nil
	stack, cleanup, err := api.BuildStack(ctx, cfg, instruments)
	if err != nil {
		logger.Error("failed to build service stack", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()
	saleActivities := saleactivities.NewActivities(stack.Sales)

	temporalClient, err := api.ConnectTemporalClient(cfg, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, saleworkflows.SaleCreationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(saleworkflows.SaleCreationWorkflow, workflow.RegisterOptions{Name: saleworkflows.SaleCreationWorkflowName})
	w.RegisterActivityWithOptions(saleActivities.CreateSale, activity.RegisterOptions{Name: saleactivities.CreateSaleActivityName})

	logger.Info("worker listening", slog.String("taskQueue", saleworkflows.SaleCreationTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
