package observability

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	catalogdomain "github.com/Apurer/sales-inventory-api/internal/domains/catalog/domain"
	salestypes "github.com/Apurer/sales-inventory-api/internal/domains/sales/application/types"
	salesdomain "github.com/Apurer/sales-inventory-api/internal/domains/sales/domain"
	salesports "github.com/Apurer/sales-inventory-api/internal/domains/sales/ports"
)

type stubService struct {
	salesports.Service
	createErr error
}

func (s *stubService) CreateSale(_ context.Context, input salestypes.CreateSaleInput) (*salesdomain.Sale, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	sale, err := salesdomain.NewSale(input.CustomerID, input.SellerID)
	if err != nil {
		return nil, err
	}
	for _, item := range input.Items {
		if err := sale.AddItem(item.ProductID, item.Quantity, decimal.NewFromInt(5)); err != nil {
			return nil, err
		}
	}
	sale.ID = 42
	return sale, nil
}

func newInstrumented(t *testing.T, inner salesports.Service) (salesports.Service, *tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	svc := New(inner,
		WithTracer(tracerProvider.Tracer("test")),
		WithMeter(meterProvider.Meter("test")),
	)
	return svc, recorder, reader
}

func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			var total int64
			for _, point := range sum.DataPoints {
				total += point.Value
			}
			return total
		}
	}
	return 0
}

func TestService_CreateSaleRecordsSpanAndCounter(t *testing.T) {
	svc, recorder, reader := newInstrumented(t, &stubService{})

	sale, err := svc.CreateSale(context.Background(), salestypes.CreateSaleInput{
		CustomerID:     7,
		SellerID:       3,
		Items:          []salestypes.ItemInput{{ProductID: 1, Quantity: 2}},
		IdempotencyKey: "key-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), sale.ID)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "SalesService.CreateSale", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.Int64("sale.id", 42))
	assert.Contains(t, spans[0].Attributes(), attribute.Bool("sale.idempotent", true))
	assert.Equal(t, int64(1), counterValue(t, reader, "sales.service.sales_created"))
}

func TestService_StockRejectionMarksSpanAndCounts(t *testing.T) {
	stockErr := &catalogdomain.InsufficientStockError{ProductID: 1, ProductName: "Pen", Requested: 9, Available: 1}
	svc, recorder, reader := newInstrumented(t, &stubService{createErr: stockErr})

	_, err := svc.CreateSale(context.Background(), salestypes.CreateSaleInput{CustomerID: 7, SellerID: 3})
	require.ErrorIs(t, err, catalogdomain.ErrInsufficientStock)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, int64(1), counterValue(t, reader, "sales.service.stock_rejections"))
	assert.Zero(t, counterValue(t, reader, "sales.service.sales_created"))
}
