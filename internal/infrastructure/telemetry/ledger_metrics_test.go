package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Sum[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Sum[int64]{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				out[m.Name] = sum
			}
		}
	}
	return out
}

func total(sum metricdata.Sum[int64]) int64 {
	var n int64
	for _, dp := range sum.DataPoints {
		n += dp.Value
	}
	return n
}

func base(eventType string) shared.BaseDomainEvent {
	return shared.NewBaseDomainEvent(eventType, inventory.AggregateTypeStockItem, uuid.New(), time.Now())
}

func TestLedgerMetrics_Handle(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewLedgerMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	events := []shared.DomainEvent{
		&inventory.StockReceivedEvent{BaseDomainEvent: base(inventory.EventTypeStockReceived), Quantity: 10},
		&inventory.StockIssuedEvent{BaseDomainEvent: base(inventory.EventTypeStockIssued), Quantity: 4},
		&inventory.StockLevelLowEvent{BaseDomainEvent: base(inventory.EventTypeStockLevelLow)},
		&inventory.TransferTransitionedEvent{
			BaseDomainEvent: base(inventory.EventTypeTransferTransitioned),
			TransferType:    inventory.TransferRestock,
			From:            inventory.TransferInTransit,
			To:              inventory.TransferCompleted,
		},
		&inventory.ReservationExpiredEvent{BaseDomainEvent: base(inventory.EventTypeReservationExpired)},
		&inventory.AuditApprovedEvent{BaseDomainEvent: base(inventory.EventTypeAuditApproved), ItemsWithVariances: 3},
	}
	for _, e := range events {
		require.NoError(t, m.Handle(ctx, e))
	}

	sums := collect(t, reader)
	assert.Equal(t, int64(6), total(sums["stockledger.events"]))
	assert.Equal(t, int64(14), total(sums["stockledger.stock.moved"]))
	assert.Equal(t, int64(1), total(sums["stockledger.stock.low"]))
	assert.Equal(t, int64(1), total(sums["stockledger.reservation.expired"]))
	assert.Equal(t, int64(3), total(sums["stockledger.audit.variances"]))

	transfers := sums["stockledger.transfer.transitions"]
	require.Len(t, transfers.DataPoints, 1)
	status, ok := transfers.DataPoints[0].Attributes.Value(AttrTransferTo)
	require.True(t, ok)
	assert.Equal(t, attribute.StringValue("completed"), status)
}

func TestLedgerMetrics_SubscribesToEverything(t *testing.T) {
	m, err := NewLedgerMetrics(sdkmetric.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	assert.Empty(t, m.EventTypes())
}
