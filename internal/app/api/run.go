package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"golang.org/x/sync/errgroup"

	salesserver "github.com/Apurer/sales-inventory-api/go"
	salesworkflows "github.com/Apurer/sales-inventory-api/internal/domains/sales/adapters/workflows"
	salesports "github.com/Apurer/sales-inventory-api/internal/domains/sales/ports"
	platformobservability "github.com/Apurer/sales-inventory-api/internal/platform/observability"
)

const shutdownTimeout = 10 * time.Second

// Run boots the sales HTTP API with observability, repositories, workflows and
// the outbox relay wired. It returns once ctx is cancelled and the server drained.
func Run(ctx context.Context) error {
	const serviceName = "sales-inventory-api"
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	stack, cleanup, err := BuildStack(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer cleanup()

	var saleWorkflows salesports.WorkflowOrchestrator = salesworkflows.NewInlineSaleWorkflows(stack.Sales)
	if temporalClient, err := ConnectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, running sale creation inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		saleWorkflows = salesworkflows.NewTemporalSaleWorkflows(temporalClient, stack.Sales)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	handlers := salesserver.ApiHandleFunctions{
		Guard:       salesserver.NewGuard(stack.Users),
		AuthAPI:     salesserver.NewAuthAPI(stack.Users),
		ProductAPI:  salesserver.NewProductAPI(stack.Catalog),
		CustomerAPI: salesserver.NewCustomerAPI(stack.Customers),
		SaleAPI:     salesserver.NewSaleAPI(stack.Sales, saleWorkflows),
	}
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	router = salesserver.NewRouterWithGinEngine(router, handlers)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("sales API listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("sales API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if stack.Relay != nil {
		group.Go(func() error { return stack.Relay.Run(groupCtx) })
	}
	return group.Wait()
}

// ConnectTemporalClient dials Temporal with OpenTelemetry tracing and slog-backed
// SDK logs. It fails fast when TEMPORAL_DISABLED is set.
func ConnectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
