package application

import (
	"errors"
	"fmt"

	catalogdomain "github.com/Apurer/sales-inventory-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/sales-inventory-api/internal/domains/catalog/ports"
	customerports "github.com/Apurer/sales-inventory-api/internal/domains/customers/ports"
	"github.com/Apurer/sales-inventory-api/internal/domains/sales/domain"
	"github.com/Apurer/sales-inventory-api/internal/domains/sales/ports"
	userports "github.com/Apurer/sales-inventory-api/internal/domains/users/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid sale input")
	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("resource not found")
	// ErrIdempotencyConflict is returned when a key is reused for a different payload.
	ErrIdempotencyConflict = ports.ErrIdempotencyConflict
)

// Entity names carried by NotFoundError.
const (
	EntitySale     = "sale"
	EntityCustomer = "customer"
	EntitySeller   = "seller"
	EntityProduct  = "product"
)

// NotFoundError names the entity a sale operation could not resolve.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func notFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// lookupError converts a collaborator's not-found sentinel into a NotFoundError.
func lookupError(err error, entity string, id int64) error {
	if errors.Is(err, ports.ErrNotFound) ||
		errors.Is(err, catalogports.ErrNotFound) ||
		errors.Is(err, customerports.ErrNotFound) ||
		errors.Is(err, userports.ErrNotFound) {
		return notFound(entity, id)
	}
	return err
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidCustomer) ||
		errors.Is(err, domain.ErrInvalidSeller) ||
		errors.Is(err, domain.ErrInvalidProduct) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrNegativeUnitPrice) ||
		errors.Is(err, domain.ErrNoItems) ||
		errors.Is(err, catalogdomain.ErrInvalidQuantity) ||
		errors.Is(err, catalogdomain.ErrStockOverflow) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
