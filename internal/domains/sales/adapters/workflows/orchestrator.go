package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	salestypes "github.com/Apurer/sales-inventory-api/internal/domains/sales/application/types"
	"github.com/Apurer/sales-inventory-api/internal/domains/sales/domain"
	"github.com/Apurer/sales-inventory-api/internal/domains/sales/ports"
	saleactivities "github.com/Apurer/sales-inventory-api/internal/platform/temporal/activities/sales"
	saleworkflows "github.com/Apurer/sales-inventory-api/internal/platform/temporal/workflows/sales"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalSaleWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineSaleWorkflows)(nil)
)

// workflowStarter is the subset of client.Client the orchestrator uses.
type workflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
	GetWorkflow(ctx context.Context, workflowID string, runID string) client.WorkflowRun
}

// TemporalSaleWorkflows starts sale workflows on a Temporal cluster and
// loads the resulting sale through the read side.
type TemporalSaleWorkflows struct {
	client    workflowStarter
	reader    ports.Service
	taskQueue string
}

// NewTemporalSaleWorkflows wires a Temporal client into the orchestrator.
func NewTemporalSaleWorkflows(c client.Client, reader ports.Service) *TemporalSaleWorkflows {
	return &TemporalSaleWorkflows{client: c, reader: reader, taskQueue: saleworkflows.SaleCreationTaskQueue}
}

// CreateSale starts the Temporal workflow that processes a sale and waits for it.
func (o *TemporalSaleWorkflows) CreateSale(ctx context.Context, input salestypes.CreateSaleInput) (*domain.Sale, error) {
	if o == nil || o.client == nil || o.reader == nil {
		return nil, errors.New("temporal sale workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildSaleCreationWorkflowID(input, traceComponent)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		saleworkflows.SaleCreationWorkflow,
		saleworkflows.SaleCreationWorkflowInput{Command: input, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) || strings.TrimSpace(input.IdempotencyKey) == "" {
			return nil, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var saleID int64
	if err := run.Get(ctx, &saleID); err != nil {
		return nil, saleactivities.DecodeError(err)
	}
	return o.reader.GetSale(ctx, saleID)
}

// InlineSaleWorkflows executes the processor directly without Temporal, useful for tests or dev fallbacks.
type InlineSaleWorkflows struct {
	service ports.Service
}

func NewInlineSaleWorkflows(service ports.Service) *InlineSaleWorkflows {
	return &InlineSaleWorkflows{service: service}
}

func (o *InlineSaleWorkflows) CreateSale(ctx context.Context, input salestypes.CreateSaleInput) (*domain.Sale, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline sale workflows not configured")
	}
	return o.service.CreateSale(ctx, input)
}

// buildSaleCreationWorkflowID is deterministic for keyed requests so a retried
// request joins the running workflow.
func buildSaleCreationWorkflowID(input salestypes.CreateSaleInput, traceComponent string) string {
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" {
		return fmt.Sprintf("sale-creation-idem-%s", hashIdempotencyKey(key))
	}
	return fmt.Sprintf("sale-creation-%d-%d-%s", input.SellerID, time.Now().UnixNano(), traceComponent)
}

func hashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
