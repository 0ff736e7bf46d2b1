package sales

import (
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"

	catalogdomain "github.com/Apurer/sales-inventory-api/internal/domains/catalog/domain"
	salesapp "github.com/Apurer/sales-inventory-api/internal/domains/sales/application"
)

// Application error types used across the activity boundary.
const (
	ErrorTypeInvalidInput        = "sales.InvalidInput"
	ErrorTypeNotFound            = "sales.NotFound"
	ErrorTypeInsufficientStock   = "sales.InsufficientStock"
	ErrorTypeIdempotencyConflict = "sales.IdempotencyConflict"
)

type errorDetails struct {
	Message     string
	Entity      string
	ID          int64
	ProductName string
	Requested   int32
	Available   int32
}

// EncodeError turns processor business errors into non-retryable application
// errors carrying enough detail to rebuild them. Other errors pass through.
func EncodeError(err error) error {
	if err == nil {
		return nil
	}
	var stock *catalogdomain.InsufficientStockError
	var missing *salesapp.NotFoundError
	switch {
	case errors.As(err, &stock):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrorTypeInsufficientStock, nil, errorDetails{
			Message:     err.Error(),
			ID:          stock.ProductID,
			ProductName: stock.ProductName,
			Requested:   stock.Requested,
			Available:   stock.Available,
		})
	case errors.As(err, &missing):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrorTypeNotFound, nil, errorDetails{
			Message: err.Error(),
			Entity:  missing.Entity,
			ID:      missing.ID,
		})
	case errors.Is(err, salesapp.ErrIdempotencyConflict):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrorTypeIdempotencyConflict, nil, errorDetails{Message: err.Error()})
	case errors.Is(err, salesapp.ErrInvalidInput):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrorTypeInvalidInput, nil, errorDetails{Message: err.Error()})
	default:
		return err
	}
}

// DecodeError rebuilds the typed processor error from a workflow failure.
// Errors without a known application error type are returned unchanged.
func DecodeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	var details errorDetails
	if appErr.HasDetails() {
		if detailErr := appErr.Details(&details); detailErr != nil {
			details = errorDetails{}
		}
	}
	if details.Message == "" {
		details.Message = appErr.Message()
	}
	switch appErr.Type() {
	case ErrorTypeInsufficientStock:
		return &catalogdomain.InsufficientStockError{
			ProductID:   details.ID,
			ProductName: details.ProductName,
			Requested:   details.Requested,
			Available:   details.Available,
		}
	case ErrorTypeNotFound:
		return &salesapp.NotFoundError{Entity: details.Entity, ID: details.ID}
	case ErrorTypeIdempotencyConflict:
		return fmt.Errorf("%w: %s", salesapp.ErrIdempotencyConflict, details.Message)
	case ErrorTypeInvalidInput:
		return fmt.Errorf("%w: %s", salesapp.ErrInvalidInput, details.Message)
	default:
		return err
	}
}
