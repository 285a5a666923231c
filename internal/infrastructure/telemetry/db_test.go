package telemetry

import (
	"context"
	"testing"

	"github.com/stockledger/backend/internal/infrastructure/persistence/persistencetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func TestInstrumentDB_RecordsQuerySpans(t *testing.T) {
	db := persistencetest.NewSQLiteDB(t)
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	require.NoError(t, InstrumentDB(db, DBTracingConfig{Enabled: true, DBName: "stockledger", TracerProvider: tp}, zap.NewNop()))

	ctx, span := tp.Tracer("test").Start(context.Background(), "request")
	var n int64
	require.NoError(t, db.WithContext(ctx).Table("stores").Count(&n).Error)
	span.End()

	spans := recorder.Ended()
	require.GreaterOrEqual(t, len(spans), 2)
	var child sdktrace.ReadOnlySpan
	for _, s := range spans {
		if s.Name() != "request" {
			child = s
		}
	}
	require.NotNil(t, child)
	assert.Equal(t, span.SpanContext().TraceID(), child.SpanContext().TraceID())
}

func TestInstrumentDB_Disabled(t *testing.T) {
	db := persistencetest.NewSQLiteDB(t)
	assert.NoError(t, InstrumentDB(db, DBTracingConfig{}, zap.NewNop()))
}

func TestRegisterPoolMetrics(t *testing.T) {
	db := persistencetest.NewSQLiteDB(t)
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	reg, err := RegisterPoolMetrics(db, provider.Meter("test"))
	require.NoError(t, err)
	defer func() { _ = reg.Unregister() }()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["stockledger.db.pool.connections"])
	assert.True(t, names["stockledger.db.pool.waits"])
}
