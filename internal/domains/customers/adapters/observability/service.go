package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	customerdomain "github.com/Apurer/sales-inventory-api/internal/domains/customers/domain"
	customerports "github.com/Apurer/sales-inventory-api/internal/domains/customers/ports"
)

const tracerName = "github.com/Apurer/sales-inventory-api/internal/domains/customers/adapters/observability/service"

// Service decorates the customers service with tracing, logging, and metrics.
type Service struct {
	inner   customerports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core customers service.
func New(inner customerports.Service, opts ...Option) customerports.Service {
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

func (s *Service) CreateCustomer(ctx context.Context, customer *customerdomain.Customer) (*customerdomain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.CreateCustomer")
	defer span.End()

	s.logInfo(ctx, "creating customer")
	result, err := s.inner.CreateCustomer(ctx, customer)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create customer")
	}
	s.metrics.recordCreated(ctx)
	span.SetAttributes(attribute.Int64("customer.id", result.ID))
	s.logInfo(ctx, "customer created", slog.Int64("customer.id", result.ID))
	return result, nil
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (*customerdomain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.GetCustomer", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer span.End()

	result, err := s.inner.GetCustomer(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load customer", slog.Int64("customer.id", id))
	}
	return result, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]*customerdomain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.ListCustomers")
	defer span.End()

	result, err := s.inner.ListCustomers(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list customers")
	}
	span.SetAttributes(attribute.Int("customer.count", len(result)))
	return result, nil
}

func (s *Service) SearchCustomers(ctx context.Context, name string) ([]*customerdomain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.SearchCustomers")
	defer span.End()

	result, err := s.inner.SearchCustomers(ctx, name)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to search customers")
	}
	span.SetAttributes(attribute.Int("customer.count", len(result)))
	return result, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id int64, changes *customerdomain.Customer) (*customerdomain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.UpdateCustomer", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer span.End()

	s.logInfo(ctx, "updating customer", slog.Int64("customer.id", id))
	result, err := s.inner.UpdateCustomer(ctx, id, changes)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update customer", slog.Int64("customer.id", id))
	}
	return result, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "CustomerService.DeleteCustomer", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer span.End()

	s.logInfo(ctx, "deleting customer", slog.Int64("customer.id", id))
	if err := s.inner.DeleteCustomer(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete customer", slog.Int64("customer.id", id))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "customer deleted", slog.Int64("customer.id", id))
	return nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	customersCreated metric.Int64Counter
	customersDeleted metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("customers.service.customers_created", metric.WithDescription("Number of customers registered"))
	deleted, _ := m.Int64Counter("customers.service.customers_deleted", metric.WithDescription("Number of customers deleted"))
	return serviceMetrics{customersCreated: created, customersDeleted: deleted}
}

func (m serviceMetrics) recordCreated(ctx context.Context) {
	if m.customersCreated != nil {
		m.customersCreated.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	if m.customersDeleted != nil {
		m.customersDeleted.Add(ctx, 1)
	}
}

var _ customerports.Service = (*Service)(nil)
