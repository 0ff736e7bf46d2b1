package domain

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

var (
	ErrEmptyName    = errors.New("customer name is required")
	ErrEmptyTaxID   = errors.New("customer tax id is required")
	ErrInvalidTaxID = errors.New("customer tax id must contain 11 (CPF) or 14 (CNPJ) digits")
)

// Customer is referenced by sales and never mutated by the sale processor.
type Customer struct {
	ID        int64
	Name      string
	TaxID     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCustomer validates and constructs a customer.
func NewCustomer(id int64, name, taxID, phone string) (*Customer, error) {
	c := &Customer{ID: id}
	if err := c.Rename(name); err != nil {
		return nil, err
	}
	if err := c.SetTaxID(taxID); err != nil {
		return nil, err
	}
	c.SetPhone(phone)
	return c, nil
}

func (c *Customer) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	c.Name = name
	return nil
}

// SetTaxID stores the tax identifier as digits only, so formatted and raw
// CPF/CNPJ values compare equal.
func (c *Customer) SetTaxID(taxID string) error {
	digits := NormalizeTaxID(taxID)
	if digits == "" {
		return ErrEmptyTaxID
	}
	if len(digits) != 11 && len(digits) != 14 {
		return ErrInvalidTaxID
	}
	c.TaxID = digits
	return nil
}

func (c *Customer) SetPhone(phone string) {
	c.Phone = strings.TrimSpace(phone)
}

// Validate re-applies the aggregate invariants before persistence.
func (c *Customer) Validate() error {
	if err := c.Rename(c.Name); err != nil {
		return err
	}
	return c.SetTaxID(c.TaxID)
}

// NormalizeTaxID strips punctuation from a CPF/CNPJ.
func NormalizeTaxID(taxID string) string {
	var b strings.Builder
	for _, r := range taxID {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
