package sales

import (
	"go.temporal.io/sdk/workflow"

	salestypes "github.com/Apurer/sales-inventory-api/internal/domains/sales/application/types"
	"github.com/Apurer/sales-inventory-api/internal/platform/temporal/sequences"
)

const (
	// SaleCreationWorkflowName is the public identifier for registering the workflow.
	SaleCreationWorkflowName = "sales.workflows.Creation"
	// SaleCreationTaskQueue is the queue consumed by the worker processing sale workflows.
	SaleCreationTaskQueue = "SALE_CREATION"
)

// SaleCreationWorkflowInput captures the create command and the caller's trace id.
type SaleCreationWorkflowInput struct {
	Command salestypes.CreateSaleInput
	TraceID string
}

// SaleCreationWorkflow runs the sale processor through a single activity and
// returns the new sale id.
func SaleCreationWorkflow(ctx workflow.Context, input SaleCreationWorkflowInput) (int64, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("SaleCreationWorkflow started", withTraceID(input.TraceID, "customerId", input.Command.CustomerID)...)
	saleID, err := sequences.RunSaleCreationSequence(ctx, input.Command)
	if err != nil {
		logger.Error("SaleCreationWorkflow failed", withTraceID(input.TraceID, "customerId", input.Command.CustomerID, "error", err)...)
		return 0, err
	}
	logger.Info("SaleCreationWorkflow completed", withTraceID(input.TraceID, "saleId", saleID)...)
	return saleID, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
