package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	catalogdomain "github.com/Apurer/sales-inventory-api/internal/domains/catalog/domain"
	salestypes "github.com/Apurer/sales-inventory-api/internal/domains/sales/application/types"
	salesdomain "github.com/Apurer/sales-inventory-api/internal/domains/sales/domain"
	salesports "github.com/Apurer/sales-inventory-api/internal/domains/sales/ports"
	"github.com/Apurer/sales-inventory-api/internal/shared/projection"
)

const tracerName = "github.com/Apurer/sales-inventory-api/internal/domains/sales/adapters/observability/service"

// Service decorates the sale processor with tracing, logging, and metrics.
type Service struct {
	inner   salesports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core sale processor.
func New(inner salesports.Service, opts ...Option) salesports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) CreateSale(ctx context.Context, input salestypes.CreateSaleInput) (*salesdomain.Sale, error) {
	attrs := []attribute.KeyValue{
		attribute.Int64("sale.customer_id", input.CustomerID),
		attribute.Int64("sale.seller_id", input.SellerID),
		attribute.Int("sale.item_count", len(input.Items)),
	}
	if input.IdempotencyKey != "" {
		attrs = append(attrs, attribute.Bool("sale.idempotent", true))
	}
	ctx, span := s.tracer.Start(ctx, "SalesService.CreateSale", trace.WithAttributes(attrs...))
	defer span.End()

	s.logInfo(ctx, "creating sale", slog.Int64("sale.customer_id", input.CustomerID), slog.Int("sale.item_count", len(input.Items)))
	result, err := s.inner.CreateSale(ctx, input)
	if err != nil {
		s.metrics.recordStockRejection(ctx, err, "create")
		return nil, s.handleError(ctx, span, err, "failed to create sale", slog.Int64("sale.customer_id", input.CustomerID))
	}
	span.SetAttributes(attribute.Int64("sale.id", result.ID))
	s.metrics.recordCreated(ctx)
	s.logInfo(ctx, "sale created", slog.Int64("sale.id", result.ID), slog.String("sale.total", result.Total().StringFixed(2)))
	return result, nil
}

func (s *Service) UpdateSale(ctx context.Context, input salestypes.UpdateSaleInput) (*salesdomain.Sale, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.UpdateSale", trace.WithAttributes(
		attribute.Int64("sale.id", input.SaleID),
		attribute.Int("sale.item_count", len(input.Items)),
	))
	defer span.End()

	s.logInfo(ctx, "updating sale", slog.Int64("sale.id", input.SaleID))
	result, err := s.inner.UpdateSale(ctx, input)
	if err != nil {
		s.metrics.recordStockRejection(ctx, err, "update")
		return nil, s.handleError(ctx, span, err, "failed to update sale", slog.Int64("sale.id", input.SaleID))
	}
	s.metrics.recordUpdated(ctx)
	s.logInfo(ctx, "sale updated", slog.Int64("sale.id", result.ID), slog.String("sale.total", result.Total().StringFixed(2)))
	return result, nil
}

func (s *Service) DeleteSale(ctx context.Context, input salestypes.DeleteSaleInput) error {
	ctx, span := s.tracer.Start(ctx, "SalesService.DeleteSale", trace.WithAttributes(
		attribute.Int64("sale.id", input.SaleID),
		attribute.Bool("sale.return_stock", input.ReturnStock),
	))
	defer span.End()

	s.logInfo(ctx, "deleting sale", slog.Int64("sale.id", input.SaleID), slog.Bool("sale.return_stock", input.ReturnStock))
	if err := s.inner.DeleteSale(ctx, input); err != nil {
		return s.handleError(ctx, span, err, "failed to delete sale", slog.Int64("sale.id", input.SaleID))
	}
	s.metrics.recordDeleted(ctx, input.ReturnStock)
	return nil
}

func (s *Service) GetSale(ctx context.Context, id int64) (*salesdomain.Sale, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.GetSale", trace.WithAttributes(attribute.Int64("sale.id", id)))
	defer span.End()

	result, err := s.inner.GetSale(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load sale", slog.Int64("sale.id", id))
	}
	return result, nil
}

func (s *Service) ListSales(ctx context.Context, input salestypes.ListSalesInput) (projection.Page[*salesdomain.Sale], error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.ListSales", trace.WithAttributes(
		attribute.Int("page.number", input.Page),
		attribute.Int("page.size", input.Size),
	))
	defer span.End()

	result, err := s.inner.ListSales(ctx, input)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to list sales")
	}
	span.SetAttributes(attribute.Int64("page.total_elements", result.TotalElements))
	return result, nil
}

func (s *Service) SalesBySeller(ctx context.Context, sellerID int64) ([]*salesdomain.Sale, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.SalesBySeller", trace.WithAttributes(attribute.Int64("sale.seller_id", sellerID)))
	defer span.End()

	result, err := s.inner.SalesBySeller(ctx, sellerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list seller sales", slog.Int64("sale.seller_id", sellerID))
	}
	span.SetAttributes(attribute.Int("sale.count", len(result)))
	return result, nil
}

func (s *Service) SalesByCustomer(ctx context.Context, customerID int64) ([]*salesdomain.Sale, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.SalesByCustomer", trace.WithAttributes(attribute.Int64("sale.customer_id", customerID)))
	defer span.End()

	result, err := s.inner.SalesByCustomer(ctx, customerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list customer sales", slog.Int64("sale.customer_id", customerID))
	}
	span.SetAttributes(attribute.Int("sale.count", len(result)))
	return result, nil
}

func (s *Service) SalesByPeriod(ctx context.Context, input salestypes.PeriodInput) ([]*salesdomain.Sale, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.SalesByPeriod", trace.WithAttributes(
		attribute.String("period.start", input.Start.String()),
		attribute.String("period.end", input.End.String()),
	))
	defer span.End()

	result, err := s.inner.SalesByPeriod(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list sales by period")
	}
	span.SetAttributes(attribute.Int("sale.count", len(result)))
	return result, nil
}

func (s *Service) TotalForSeller(ctx context.Context, sellerID int64) (decimal.Decimal, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.TotalForSeller", trace.WithAttributes(attribute.Int64("sale.seller_id", sellerID)))
	defer span.End()

	result, err := s.inner.TotalForSeller(ctx, sellerID)
	if err != nil {
		return decimal.Zero, s.handleError(ctx, span, err, "failed to total seller sales", slog.Int64("sale.seller_id", sellerID))
	}
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

type serviceMetrics struct {
	salesCreated    metric.Int64Counter
	salesUpdated    metric.Int64Counter
	salesDeleted    metric.Int64Counter
	stockRejections metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("sales.service.sales_created", metric.WithDescription("Number of sales created"))
	updated, _ := m.Int64Counter("sales.service.sales_updated", metric.WithDescription("Number of sales updated"))
	deleted, _ := m.Int64Counter("sales.service.sales_deleted", metric.WithDescription("Number of sales deleted"))
	rejected, _ := m.Int64Counter("sales.service.stock_rejections", metric.WithDescription("Sale writes rejected for insufficient stock"))
	return serviceMetrics{salesCreated: created, salesUpdated: updated, salesDeleted: deleted, stockRejections: rejected}
}

func (m serviceMetrics) recordCreated(ctx context.Context) {
	if m.salesCreated != nil {
		m.salesCreated.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordUpdated(ctx context.Context) {
	if m.salesUpdated != nil {
		m.salesUpdated.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordDeleted(ctx context.Context, returnStock bool) {
	if m.salesDeleted != nil {
		m.salesDeleted.Add(ctx, 1, metric.WithAttributes(attribute.Bool("sale.return_stock", returnStock)))
	}
}

func (m serviceMetrics) recordStockRejection(ctx context.Context, err error, operation string) {
	if m.stockRejections == nil || !errors.Is(err, catalogdomain.ErrInsufficientStock) {
		return
	}
	m.stockRejections.Add(ctx, 1, metric.WithAttributes(attribute.String("sale.operation", operation)))
}

var _ salesports.Service = (*Service)(nil)
