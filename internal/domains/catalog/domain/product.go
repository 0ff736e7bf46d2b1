package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyName         = errors.New("product name is required")
	ErrNegativePrice     = errors.New("product price must not be negative")
	ErrNegativeStock     = errors.New("product stock must not be negative")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrStockOverflow     = errors.New("product stock exceeds the supported maximum")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError reports a withdrawal larger than the available stock.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int32
	Available   int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product: %s", e.ProductName)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Product is the inventory aggregate. Stock only moves through Withdraw,
// Restock, or an explicit catalog edit via SetStock.
type Product struct {
	ID        int64
	Name      string
	Category  string
	Price     decimal.Decimal
	Stock     int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProduct validates and constructs a product.
func NewProduct(id int64, name, category string, price decimal.Decimal, stock int32) (*Product, error) {
	p := &Product{ID: id}
	if err := p.Rename(name); err != nil {
		return nil, err
	}
	p.Categorize(category)
	if err := p.Reprice(price); err != nil {
		return nil, err
	}
	if err := p.SetStock(stock); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Product) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	p.Name = name
	return nil
}

func (p *Product) Categorize(category string) {
	p.Category = strings.TrimSpace(category)
}

// Reprice sets the unit price rounded to cents.
func (p *Product) Reprice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrNegativePrice
	}
	p.Price = price.Round(2)
	return nil
}

func (p *Product) SetStock(stock int32) error {
	if stock < 0 {
		return ErrNegativeStock
	}
	p.Stock = stock
	return nil
}

// Withdraw removes quantity units from stock or fails without mutating.
func (p *Product) Withdraw(quantity int32) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if p.Stock < quantity {
		return &InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Requested:   quantity,
			Available:   p.Stock,
		}
	}
	p.Stock -= quantity
	return nil
}

// Restock returns quantity units to stock.
func (p *Product) Restock(quantity int32) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if p.Stock > math.MaxInt32-quantity {
		return ErrStockOverflow
	}
	p.Stock += quantity
	return nil
}

// Validate re-applies the aggregate invariants before persistence.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}
