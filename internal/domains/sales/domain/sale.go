package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCustomer   = errors.New("sale customer id is required")
	ErrInvalidSeller     = errors.New("sale seller id is required")
	ErrInvalidProduct    = errors.New("sale item product id is required")
	ErrInvalidQuantity   = errors.New("sale item quantity must be greater than zero")
	ErrNegativeUnitPrice = errors.New("sale item unit price must not be negative")
	ErrNoItems           = errors.New("sale must contain at least one item")
)

// Item is one line of a sale. UnitPrice is the product price frozen at the
// moment the line was added.
type Item struct {
	Line      int
	ProductID int64
	Quantity  int32
	UnitPrice decimal.Decimal
}

// Subtotal is UnitPrice × Quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt32(i.Quantity))
}

// Sale is the order aggregate. It owns its items by value and keeps the total
// equal to the sum of item subtotals; callers see both only through accessors.
type Sale struct {
	ID         int64
	CustomerID int64
	SellerID   int64
	CreatedAt  time.Time
	UpdatedAt  time.Time

	items []Item
	total decimal.Decimal
}

// NewSale starts an empty sale for customer and seller.
func NewSale(customerID, sellerID int64) (*Sale, error) {
	s := &Sale{total: decimal.Zero}
	if err := s.Reassign(customerID, sellerID); err != nil {
		return nil, err
	}
	return s, nil
}

// Rehydrate rebuilds a persisted sale. The total is recomputed from items.
func Rehydrate(id, customerID, sellerID int64, items []Item, createdAt, updatedAt time.Time) *Sale {
	s := &Sale{
		ID:         id,
		CustomerID: customerID,
		SellerID:   sellerID,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
		items:      append([]Item(nil), items...),
	}
	s.recalculate()
	return s
}

// Reassign sets the customer and seller references.
func (s *Sale) Reassign(customerID, sellerID int64) error {
	if customerID <= 0 {
		return ErrInvalidCustomer
	}
	if sellerID <= 0 {
		return ErrInvalidSeller
	}
	s.CustomerID = customerID
	s.SellerID = sellerID
	return nil
}

// AddItem appends a line and folds its subtotal into the total.
func (s *Sale) AddItem(productID int64, quantity int32, unitPrice decimal.Decimal) error {
	if productID <= 0 {
		return ErrInvalidProduct
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return ErrNegativeUnitPrice
	}
	item := Item{
		Line:      len(s.items) + 1,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}
	s.items = append(s.items, item)
	s.total = s.total.Add(item.Subtotal())
	return nil
}

// ClearItems drops every line while keeping the sale identity.
func (s *Sale) ClearItems() {
	s.items = nil
	s.total = decimal.Zero
}

// Items returns a copy of the lines in insertion order.
func (s *Sale) Items() []Item {
	return append([]Item(nil), s.items...)
}

// Total is the sum of item subtotals.
func (s *Sale) Total() decimal.Decimal {
	return s.total
}

// Validate checks the aggregate before persistence.
func (s *Sale) Validate() error {
	if s.CustomerID <= 0 {
		return ErrInvalidCustomer
	}
	if s.SellerID <= 0 {
		return ErrInvalidSeller
	}
	if len(s.items) == 0 {
		return ErrNoItems
	}
	for _, item := range s.items {
		if item.ProductID <= 0 {
			return ErrInvalidProduct
		}
		if item.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

// Clone returns a deep copy of the sale.
func (s *Sale) Clone() *Sale {
	if s == nil {
		return nil
	}
	clone := *s
	clone.items = s.Items()
	return &clone
}

func (s *Sale) recalculate() {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Subtotal())
	}
	s.total = total
}
