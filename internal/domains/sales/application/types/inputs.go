package types

import "time"

// ItemInput requests quantity units of a product.
type ItemInput struct {
	ProductID int64 `json:"productId"`
	Quantity  int32 `json:"quantity"`
}

// CreateSaleInput carries the create command. IdempotencyKey is optional.
type CreateSaleInput struct {
	CustomerID     int64       `json:"customerId"`
	SellerID       int64       `json:"sellerId"`
	Items          []ItemInput `json:"items"`
	IdempotencyKey string      `json:"idempotencyKey,omitempty"`
}

// UpdateSaleInput replaces the whole composition of an existing sale.
type UpdateSaleInput struct {
	SaleID     int64
	CustomerID int64
	SellerID   int64
	Items      []ItemInput
}

// DeleteSaleInput removes a sale, optionally returning its units to stock.
type DeleteSaleInput struct {
	SaleID      int64
	ReturnStock bool
}

// ListSalesInput pages through every sale, newest first.
type ListSalesInput struct {
	Page int
	Size int
}

// PeriodInput bounds a creation-date query; both ends are inclusive.
type PeriodInput struct {
	Start time.Time
	End   time.Time
}
