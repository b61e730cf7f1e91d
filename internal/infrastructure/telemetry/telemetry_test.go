package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSetup_Disabled(t *testing.T) {
	tel, err := Setup(context.Background(), config.TelemetryConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, tel.TracingEnabled())
	assert.NotNil(t, tel.Meter("test"))
	assert.False(t, tel.LogCore(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, tel.InstrumentDB(nil))
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Equal(t, "AlwaysOffSampler", sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestShopMetrics_OrderEvents(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewShopMetrics(provider.Meter("test"), func(context.Context) (int64, error) { return 3, nil })
	require.NoError(t, err)

	order := &trade.Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            trade.OrderStatusProcessing,
		PaymentMethod:     trade.PaymentMethodCard,
		Total:             decimal.RequireFromString("19.99"),
		Currency:          "USD",
	}
	ctx := context.Background()
	require.NoError(t, m.Handle(ctx, trade.NewOrderPlacedEvent(order)))
	require.NoError(t, m.Handle(ctx, trade.NewOrderPlacedEvent(order)))
	require.NoError(t, m.Handle(ctx, trade.NewOrderStatusChangedEvent(order, trade.OrderStatusPending)))
	m.RecordRateLimited(ctx, "auth")

	data := collect(t, reader)

	placed := data["shop.orders.placed"].(metricdata.Sum[int64])
	require.Len(t, placed.DataPoints, 1)
	assert.Equal(t, int64(2), placed.DataPoints[0].Value)

	revenue := data["shop.orders.revenue"].(metricdata.Sum[float64])
	assert.InDelta(t, 39.98, revenue.DataPoints[0].Value, 0.0001)

	lowStock := data["shop.products.low_stock"].(metricdata.Gauge[int64])
	assert.Equal(t, int64(3), lowStock.DataPoints[0].Value)

	limited := data["shop.http.rate_limited"].(metricdata.Sum[int64])
	assert.Equal(t, int64(1), limited.DataPoints[0].Value)
}

func TestStartSpan_RecordsError(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx, span := StartSpan(context.Background(), "checkout")
	assert.NotEmpty(t, TraceID(ctx))
	EndSpan(span, errors.New("stock changed"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "checkout", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Empty(t, TraceID(context.Background()))
}
