package sales

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	salesapp "github.com/Apurer/sales-inventory-api/internal/domains/sales/application"
	salestypes "github.com/Apurer/sales-inventory-api/internal/domains/sales/application/types"
	saleactivities "github.com/Apurer/sales-inventory-api/internal/platform/temporal/activities/sales"
)

func TestSaleCreationWorkflow_ReturnsSaleID(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	var received salestypes.CreateSaleInput
	env.RegisterActivityWithOptions(func(_ context.Context, input salestypes.CreateSaleInput) (int64, error) {
		received = input
		return 41, nil
	}, activity.RegisterOptions{Name: saleactivities.CreateSaleActivityName})

	command := salestypes.CreateSaleInput{
		CustomerID: 1,
		SellerID:   2,
		Items:      []salestypes.ItemInput{{ProductID: 3, Quantity: 4}},
	}
	env.ExecuteWorkflow(SaleCreationWorkflow, SaleCreationWorkflowInput{Command: command, TraceID: "trace"})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var saleID int64
	require.NoError(t, env.GetWorkflowResult(&saleID))
	require.Equal(t, int64(41), saleID)
	require.Equal(t, command, received)
}

func TestSaleCreationWorkflow_BusinessErrorIsNotRetried(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	attempts := 0
	env.RegisterActivityWithOptions(func(context.Context, salestypes.CreateSaleInput) (int64, error) {
		attempts++
		return 0, saleactivities.EncodeError(&salesapp.NotFoundError{Entity: salesapp.EntityCustomer, ID: 9})
	}, activity.RegisterOptions{Name: saleactivities.CreateSaleActivityName})

	env.ExecuteWorkflow(SaleCreationWorkflow, SaleCreationWorkflowInput{Command: salestypes.CreateSaleInput{CustomerID: 9}})

	require.True(t, env.IsWorkflowCompleted())
	err := saleactivities.DecodeError(env.GetWorkflowError())
	var missing *salesapp.NotFoundError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, int64(9), missing.ID)
	require.Equal(t, 1, attempts)
}

func TestSaleCreationWorkflow_UnkeyedCreateRunsOnce(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	attempts := 0
	env.RegisterActivityWithOptions(func(context.Context, salestypes.CreateSaleInput) (int64, error) {
		attempts++
		if attempts == 1 {
			return 0, errors.New("connection reset after commit")
		}
		return 77, nil
	}, activity.RegisterOptions{Name: saleactivities.CreateSaleActivityName})

	command := salestypes.CreateSaleInput{CustomerID: 1, SellerID: 2, Items: []salestypes.ItemInput{{ProductID: 3, Quantity: 1}}}
	env.ExecuteWorkflow(SaleCreationWorkflow, SaleCreationWorkflowInput{Command: command})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	require.Equal(t, 1, attempts)
}

func TestSaleCreationWorkflow_KeyedCreateRetriesTransientFailure(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	attempts := 0
	env.RegisterActivityWithOptions(func(context.Context, salestypes.CreateSaleInput) (int64, error) {
		attempts++
		if attempts == 1 {
			return 0, errors.New("connection reset after commit")
		}
		return 77, nil
	}, activity.RegisterOptions{Name: saleactivities.CreateSaleActivityName})

	command := salestypes.CreateSaleInput{
		CustomerID:     1,
		SellerID:       2,
		Items:          []salestypes.ItemInput{{ProductID: 3, Quantity: 1}},
		IdempotencyKey: "order-1",
	}
	env.ExecuteWorkflow(SaleCreationWorkflow, SaleCreationWorkflowInput{Command: command})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var saleID int64
	require.NoError(t, env.GetWorkflowResult(&saleID))
	require.Equal(t, int64(77), saleID)
	require.Equal(t, 2, attempts)
}
