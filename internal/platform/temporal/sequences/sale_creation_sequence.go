package sequences

import (
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	salestypes "github.com/Apurer/sales-inventory-api/internal/domains/sales/application/types"
	saleactivities "github.com/Apurer/sales-inventory-api/internal/platform/temporal/activities/sales"
)

// keyedCreateAttempts bounds retries of a create that carries an idempotency
// key; a retried keyed create replays the committed sale.
const keyedCreateAttempts = 5

// RunSaleCreationSequence executes the activity that processes a sale and
// returns the id of the persisted sale.
func RunSaleCreationSequence(ctx workflow.Context, input salestypes.CreateSaleInput) (int64, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("sale creation sequence started", "customerId", input.CustomerID, "sellerId", input.SellerID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    CreateAttempts(input),
			NonRetryableErrorTypes: []string{
				saleactivities.ErrorTypeInvalidInput,
				saleactivities.ErrorTypeNotFound,
				saleactivities.ErrorTypeInsufficientStock,
				saleactivities.ErrorTypeIdempotencyConflict,
			},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var saleID int64
	if err := workflow.ExecuteActivity(ctx, saleactivities.CreateSaleActivityName, input).Get(ctx, &saleID); err != nil {
		logger.Error("sale creation sequence failed", "customerId", input.CustomerID, "error", err)
		return 0, err
	}
	logger.Info("sale creation sequence completed", "saleId", saleID)
	return saleID, nil
}

// CreateAttempts is the activity attempt budget for input. Without an
// idempotency key a failure may follow a commit, so the create runs once.
func CreateAttempts(input salestypes.CreateSaleInput) int32 {
	if strings.TrimSpace(input.IdempotencyKey) == "" {
		return 1
	}
	return keyedCreateAttempts
}
