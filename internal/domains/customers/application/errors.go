package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/sales-inventory-api/internal/domains/customers/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid customer input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrEmptyTaxID) ||
		errors.Is(err, domain.ErrInvalidTaxID) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
