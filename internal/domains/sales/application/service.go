package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	salestypes "github.com/Apurer/sales-inventory-api/internal/domains/sales/application/types"
	"github.com/Apurer/sales-inventory-api/internal/domains/sales/domain"
	"github.com/Apurer/sales-inventory-api/internal/domains/sales/ports"
	"github.com/Apurer/sales-inventory-api/internal/shared/projection"
)

// errReplay aborts a create transaction whose idempotency key was claimed
// concurrently; the stored record is then replayed outside the transaction.
var errReplay = errors.New("idempotency key already claimed")

// Service is the sale processor. Every create, update and delete runs in one
// transaction; any failure rolls back all stock movements of the call.
type Service struct {
	tx          ports.TxManager
	products    ports.ProductStore
	customers   ports.CustomerLookup
	sellers     ports.SellerLookup
	sales       ports.Repository
	outbox      ports.Outbox
	idempotency ports.IdempotencyStore
	now         func() time.Time
}

type Option func(*Service)

// WithOutbox records sale events in the same transaction as the sale write.
func WithOutbox(outbox ports.Outbox) Option {
	return func(s *Service) {
		if outbox != nil {
			s.outbox = outbox
		}
	}
}

// WithIdempotencyStore enables Idempotency-Key handling on CreateSale.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) { s.idempotency = store }
}

// WithClock overrides the time source stamped on events.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the processor with its stores.
func NewService(
	tx ports.TxManager,
	products ports.ProductStore,
	customers ports.CustomerLookup,
	sellers ports.SellerLookup,
	sales ports.Repository,
	opts ...Option,
) *Service {
	s := &Service{
		tx:        tx,
		products:  products,
		customers: customers,
		sellers:   sellers,
		sales:     sales,
		outbox:    ports.NoopOutbox,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateSale withdraws stock for every line in input order and persists the sale.
func (s *Service) CreateSale(ctx context.Context, input salestypes.CreateSaleInput) (*domain.Sale, error) {
	if err := validateCommand(input.CustomerID, input.SellerID, input.Items); err != nil {
		return nil, err
	}
	key := strings.TrimSpace(input.IdempotencyKey)
	if s.idempotency == nil {
		key = ""
	}
	var fingerprint string
	if key != "" {
		var err error
		if fingerprint, err = FingerprintCreateSale(input); err != nil {
			return nil, err
		}
		existing, err := s.idempotency.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return s.replay(ctx, existing, fingerprint)
		}
	}

	var (
		created *domain.Sale
		claimed *ports.IdempotencyRecord
	)
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		if err := s.resolveParties(ctx, input.CustomerID, input.SellerID); err != nil {
			return err
		}
		sale, err := domain.NewSale(input.CustomerID, input.SellerID)
		if err != nil {
			return mapError(err)
		}
		if err := s.withdrawLines(ctx, sale, input.Items); err != nil {
			return err
		}
		saved, err := s.sales.Save(ctx, sale)
		if err != nil {
			return err
		}
		if err := s.outbox.Append(ctx, domain.SaleCreated{
			BaseEvent:  domain.BaseEvent{SaleID: saved.ID, Timestamp: s.now().UTC()},
			CustomerID: saved.CustomerID,
			SellerID:   saved.SellerID,
			Total:      saved.Total(),
			Items:      domain.Snapshot(saved.Items()),
		}); err != nil {
			return fmt.Errorf("append sale created event: %w", err)
		}
		if key != "" {
			record, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{Key: key, RequestHash: fingerprint, SaleID: saved.ID})
			if errors.Is(err, ports.ErrIdempotencyConflict) && record != nil {
				claimed = record
				return errReplay
			}
			if err != nil {
				return err
			}
		}
		created = saved
		return nil
	})
	if errors.Is(err, errReplay) {
		return s.replay(ctx, claimed, fingerprint)
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateSale returns every old line to stock, then applies the new lines as
// CreateSale does. The sale keeps its identity.
func (s *Service) UpdateSale(ctx context.Context, input salestypes.UpdateSaleInput) (*domain.Sale, error) {
	if input.SaleID <= 0 {
		return nil, fmt.Errorf("%w: sale id is required", ErrInvalidInput)
	}
	if err := validateCommand(input.CustomerID, input.SellerID, input.Items); err != nil {
		return nil, err
	}
	var updated *domain.Sale
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		sale, err := s.sales.GetForUpdate(ctx, input.SaleID)
		if err != nil {
			return lookupError(err, EntitySale, input.SaleID)
		}
		if err := s.resolveParties(ctx, input.CustomerID, input.SellerID); err != nil {
			return err
		}
		previousTotal := sale.Total()
		if err := s.restoreLines(ctx, sale.Items()); err != nil {
			return err
		}
		sale.ClearItems()
		if err := s.withdrawLines(ctx, sale, input.Items); err != nil {
			return err
		}
		if err := sale.Reassign(input.CustomerID, input.SellerID); err != nil {
			return mapError(err)
		}
		saved, err := s.sales.Save(ctx, sale)
		if err != nil {
			return err
		}
		if err := s.outbox.Append(ctx, domain.SaleUpdated{
			BaseEvent:     domain.BaseEvent{SaleID: saved.ID, Timestamp: s.now().UTC()},
			CustomerID:    saved.CustomerID,
			SellerID:      saved.SellerID,
			PreviousTotal: previousTotal,
			Total:         saved.Total(),
			Items:         domain.Snapshot(saved.Items()),
		}); err != nil {
			return fmt.Errorf("append sale updated event: %w", err)
		}
		updated = saved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteSale removes a sale and its items, returning units to stock when asked.
func (s *Service) DeleteSale(ctx context.Context, input salestypes.DeleteSaleInput) error {
	if input.SaleID <= 0 {
		return fmt.Errorf("%w: sale id is required", ErrInvalidInput)
	}
	return s.tx.Do(ctx, func(ctx context.Context) error {
		sale, err := s.sales.GetForUpdate(ctx, input.SaleID)
		if err != nil {
			return lookupError(err, EntitySale, input.SaleID)
		}
		if input.ReturnStock {
			if err := s.restoreLines(ctx, sale.Items()); err != nil {
				return err
			}
		}
		if err := s.sales.Delete(ctx, sale.ID); err != nil {
			return lookupError(err, EntitySale, sale.ID)
		}
		if err := s.outbox.Append(ctx, domain.SaleDeleted{
			BaseEvent:     domain.BaseEvent{SaleID: sale.ID, Timestamp: s.now().UTC()},
			StockReturned: input.ReturnStock,
			Items:         domain.Snapshot(sale.Items()),
		}); err != nil {
			return fmt.Errorf("append sale deleted event: %w", err)
		}
		return nil
	})
}

func (s *Service) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	sale, err := s.sales.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, EntitySale, id)
	}
	return sale, nil
}

// ListSales pages through all sales, newest first.
func (s *Service) ListSales(ctx context.Context, input salestypes.ListSalesInput) (projection.Page[*domain.Sale], error) {
	request := projection.PageRequest{Page: input.Page, Size: input.Size}.Normalize()
	return s.sales.List(ctx, request)
}

func (s *Service) SalesBySeller(ctx context.Context, sellerID int64) ([]*domain.Sale, error) {
	return s.sales.FindBySeller(ctx, sellerID)
}

func (s *Service) SalesByCustomer(ctx context.Context, customerID int64) ([]*domain.Sale, error) {
	return s.sales.FindByCustomer(ctx, customerID)
}

// SalesByPeriod returns sales created within [Start, End].
func (s *Service) SalesByPeriod(ctx context.Context, input salestypes.PeriodInput) ([]*domain.Sale, error) {
	if input.Start.IsZero() || input.End.IsZero() {
		return nil, fmt.Errorf("%w: period start and end are required", ErrInvalidInput)
	}
	if input.Start.After(input.End) {
		return nil, fmt.Errorf("%w: period start is after end", ErrInvalidInput)
	}
	return s.sales.FindByDateRange(ctx, input.Start, input.End)
}

// TotalForSeller sums the totals of every sale made by the seller.
func (s *Service) TotalForSeller(ctx context.Context, sellerID int64) (decimal.Decimal, error) {
	sales, err := s.sales.FindBySeller(ctx, sellerID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, sale := range sales {
		total = total.Add(sale.Total())
	}
	return total, nil
}

func (s *Service) resolveParties(ctx context.Context, customerID, sellerID int64) error {
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return lookupError(err, EntityCustomer, customerID)
	}
	if _, err := s.sellers.GetByID(ctx, sellerID); err != nil {
		return lookupError(err, EntitySeller, sellerID)
	}
	return nil
}

// withdrawLines processes lines strictly in order; a repeated product sees the
// stock already withdrawn by its earlier lines.
func (s *Service) withdrawLines(ctx context.Context, sale *domain.Sale, lines []salestypes.ItemInput) error {
	for _, line := range lines {
		product, err := s.products.GetForUpdate(ctx, line.ProductID)
		if err != nil {
			return lookupError(err, EntityProduct, line.ProductID)
		}
		if err := product.Withdraw(line.Quantity); err != nil {
			return mapError(err)
		}
		if _, err := s.products.Save(ctx, product); err != nil {
			return err
		}
		if err := sale.AddItem(product.ID, line.Quantity, product.Price); err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (s *Service) restoreLines(ctx context.Context, items []domain.Item) error {
	for _, item := range items {
		product, err := s.products.GetForUpdate(ctx, item.ProductID)
		if err != nil {
			return lookupError(err, EntityProduct, item.ProductID)
		}
		if err := product.Restock(item.Quantity); err != nil {
			return mapError(err)
		}
		if _, err := s.products.Save(ctx, product); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) replay(ctx context.Context, record *ports.IdempotencyRecord, fingerprint string) (*domain.Sale, error) {
	if record == nil {
		return nil, errors.New("idempotency record missing")
	}
	if record.RequestHash != fingerprint {
		return nil, fmt.Errorf("%w: key %q was used for a different sale request", ErrIdempotencyConflict, record.Key)
	}
	return s.GetSale(ctx, record.SaleID)
}

func validateCommand(customerID, sellerID int64, lines []salestypes.ItemInput) error {
	if customerID <= 0 {
		return mapError(domain.ErrInvalidCustomer)
	}
	if sellerID <= 0 {
		return mapError(domain.ErrInvalidSeller)
	}
	if len(lines) == 0 {
		return mapError(domain.ErrNoItems)
	}
	for i, line := range lines {
		if line.ProductID <= 0 {
			return fmt.Errorf("item %d: %w", i+1, mapError(domain.ErrInvalidProduct))
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("item %d: %w", i+1, mapError(domain.ErrInvalidQuantity))
		}
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
