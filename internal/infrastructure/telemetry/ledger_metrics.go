package telemetry

import (
	"context"
	"fmt"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Attribute keys shared by ledger instruments
var (
	AttrEventType    = attribute.Key("event_type")
	AttrTransferType = attribute.Key("transfer_type")
	AttrTransferTo   = attribute.Key("transfer_status")
	AttrDirection    = attribute.Key("direction")
)

// LedgerMetrics turns committed ledger events into counters. It subscribes
// to every event type on the bus.
type LedgerMetrics struct {
	events      metric.Int64Counter
	movedUnits  metric.Int64Counter
	lowStock    metric.Int64Counter
	transfers   metric.Int64Counter
	expirations metric.Int64Counter
	variances   metric.Int64Counter
}

// NewLedgerMetrics registers the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	m := &LedgerMetrics{}
	var err error
	counters := []struct {
		dst               *metric.Int64Counter
		name, desc, units string
	}{
		{&m.events, "stockledger.events", "Ledger events published after commit", "{event}"},
		{&m.movedUnits, "stockledger.stock.moved", "Units received or issued", "{unit}"},
		{&m.lowStock, "stockledger.stock.low", "Low-stock threshold crossings", "{crossing}"},
		{&m.transfers, "stockledger.transfer.transitions", "Transfer status changes", "{transition}"},
		{&m.expirations, "stockledger.reservation.expired", "Reservations swept to expired", "{reservation}"},
		{&m.variances, "stockledger.audit.variances", "Audit lines approved with a variance", "{line}"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.units))
		if err != nil {
			return nil, fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
	}
	return m, nil
}

// EventTypes returns nil so the bus delivers every event
func (m *LedgerMetrics) EventTypes() []string {
	return nil
}

// Handle records event
func (m *LedgerMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	m.events.Add(ctx, 1, metric.WithAttributes(AttrEventType.String(event.EventType())))

	switch e := event.(type) {
	case *inventory.StockReceivedEvent:
		m.movedUnits.Add(ctx, e.Quantity, metric.WithAttributes(AttrDirection.String("in")))
	case *inventory.StockIssuedEvent:
		m.movedUnits.Add(ctx, e.Quantity, metric.WithAttributes(AttrDirection.String("out")))
	case *inventory.StockLevelLowEvent:
		m.lowStock.Add(ctx, 1)
	case *inventory.TransferTransitionedEvent:
		m.transfers.Add(ctx, 1, metric.WithAttributes(
			AttrTransferType.String(string(e.TransferType)),
			AttrTransferTo.String(string(e.To)),
		))
	case *inventory.ReservationExpiredEvent:
		m.expirations.Add(ctx, 1)
	case *inventory.AuditApprovedEvent:
		m.variances.Add(ctx, int64(e.ItemsWithVariances))
	}
	return nil
}

var _ shared.EventHandler = (*LedgerMetrics)(nil)
