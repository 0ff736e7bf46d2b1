package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is the base interface for sale domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
	AggregateID() int64
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	SaleID    int64     `json:"saleId"`
	Timestamp time.Time `json:"occurredAt"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID returns the sale the event belongs to.
func (e BaseEvent) AggregateID() int64 {
	return e.SaleID
}

// ItemSnapshot is the line payload carried on events.
type ItemSnapshot struct {
	ProductID int64           `json:"productId"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// SaleCreated is raised once a sale and its stock withdrawals are persisted.
type SaleCreated struct {
	BaseEvent
	CustomerID int64           `json:"customerId"`
	SellerID   int64           `json:"sellerId"`
	Total      decimal.Decimal `json:"total"`
	Items      []ItemSnapshot  `json:"items"`
}

// EventName returns the event type identifier.
func (e SaleCreated) EventName() string {
	return "sales.sale.created"
}

// SaleUpdated is raised when a sale's composition is replaced.
type SaleUpdated struct {
	BaseEvent
	CustomerID    int64           `json:"customerId"`
	SellerID      int64           `json:"sellerId"`
	PreviousTotal decimal.Decimal `json:"previousTotal"`
	Total         decimal.Decimal `json:"total"`
	Items         []ItemSnapshot  `json:"items"`
}

// EventName returns the event type identifier.
func (e SaleUpdated) EventName() string {
	return "sales.sale.updated"
}

// SaleDeleted is raised when a sale is removed.
type SaleDeleted struct {
	BaseEvent
	StockReturned bool           `json:"stockReturned"`
	Items         []ItemSnapshot `json:"items"`
}

// EventName returns the event type identifier.
func (e SaleDeleted) EventName() string {
	return "sales.sale.deleted"
}

// Snapshot copies the sale lines for an event payload.
func Snapshot(items []Item) []ItemSnapshot {
	out := make([]ItemSnapshot, 0, len(items))
	for _, item := range items {
		out = append(out, ItemSnapshot{ProductID: item.ProductID, Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}
	return out
}
