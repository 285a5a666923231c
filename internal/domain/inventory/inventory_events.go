package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeStockItem   = "StockItem"
	AggregateTypeTransfer    = "Transfer"
	AggregateTypeStockAudit  = "StockAudit"
	AggregateTypeReservation = "Reservation"
)

// Event type constants
const (
	EventTypeStockReceived        = "StockReceived"
	EventTypeStockIssued          = "StockIssued"
	EventTypeStockLevelLow        = "StockLevelLow"
	EventTypeTransferTransitioned = "TransferTransitioned"
	EventTypeReservationExpired   = "ReservationExpired"
	EventTypeAuditApproved        = "AuditApproved"
)

// StockReceivedEvent is raised when stock is added to an item
type StockReceivedEvent struct {
	shared.BaseDomainEvent
	StockItemID uuid.UUID  `json:"stock_item_id"`
	SKU         string     `json:"sku"`
	StoreID     *uuid.UUID `json:"store_id,omitempty"`
	Quantity    int64      `json:"quantity"`
	NewTotal    int64      `json:"new_total"`
}

// NewStockReceivedEvent creates a new StockReceivedEvent
func NewStockReceivedEvent(item *StockItem, qty int64, storeID *uuid.UUID, now time.Time) *StockReceivedEvent {
	return &StockReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReceived, AggregateTypeStockItem, item.ID, now),
		StockItemID:     item.ID,
		SKU:             item.SKU,
		StoreID:         storeID,
		Quantity:        qty,
		NewTotal:        item.TotalOnHand(),
	}
}

// StockIssuedEvent is raised when stock leaves an item
type StockIssuedEvent struct {
	shared.BaseDomainEvent
	StockItemID uuid.UUID  `json:"stock_item_id"`
	SKU         string     `json:"sku"`
	StoreID     *uuid.UUID `json:"store_id,omitempty"`
	Quantity    int64      `json:"quantity"`
	NewTotal    int64      `json:"new_total"`
}

// NewStockIssuedEvent creates a new StockIssuedEvent
func NewStockIssuedEvent(item *StockItem, qty int64, storeID *uuid.UUID, now time.Time) *StockIssuedEvent {
	return &StockIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockIssued, AggregateTypeStockItem, item.ID, now),
		StockItemID:     item.ID,
		SKU:             item.SKU,
		StoreID:         storeID,
		Quantity:        qty,
		NewTotal:        item.TotalOnHand(),
	}
}

// StockLevelLowEvent is raised when availability drops to the reorder threshold
type StockLevelLowEvent struct {
	shared.BaseDomainEvent
	StockItemID      uuid.UUID `json:"stock_item_id"`
	SKU              string    `json:"sku"`
	ItemName         string    `json:"item_name"`
	AvailableForSale int64     `json:"available_for_sale"`
	ReOrder          int64     `json:"re_order"`
}

// NewStockLevelLowEvent creates a new StockLevelLowEvent
func NewStockLevelLowEvent(item *StockItem, now time.Time) *StockLevelLowEvent {
	return &StockLevelLowEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockLevelLow, AggregateTypeStockItem, item.ID, now),
		StockItemID:      item.ID,
		SKU:              item.SKU,
		ItemName:         item.ItemName,
		AvailableForSale: item.AvailableForSale(),
		ReOrder:          item.ReOrder,
	}
}

// TransferTransitionedEvent is raised on every transfer status change,
// including creation (From empty).
type TransferTransitionedEvent struct {
	shared.BaseDomainEvent
	TransferID   uuid.UUID      `json:"transfer_id"`
	StockItemID  uuid.UUID      `json:"stock_item_id"`
	TransferType TransferType   `json:"transfer_type"`
	From         TransferStatus `json:"from"`
	To           TransferStatus `json:"to"`
	Quantity     int64          `json:"quantity"`
}

// NewTransferTransitionedEvent creates a new TransferTransitionedEvent
func NewTransferTransitionedEvent(t *Transfer, from TransferStatus, now time.Time) *TransferTransitionedEvent {
	return &TransferTransitionedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferTransitioned, AggregateTypeTransfer, t.ID, now),
		TransferID:      t.ID,
		StockItemID:     t.StockItemID,
		TransferType:    t.Type,
		From:            from,
		To:              t.Status,
		Quantity:        t.Quantity,
	}
}

// ReservationExpiredEvent is raised when a sweep stores the expired status
type ReservationExpiredEvent struct {
	shared.BaseDomainEvent
	ReservationID uuid.UUID `json:"reservation_id"`
	StockItemID   uuid.UUID `json:"stock_item_id"`
	Quantity      int64     `json:"quantity"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// NewReservationExpiredEvent creates a new ReservationExpiredEvent
func NewReservationExpiredEvent(r *Reservation, now time.Time) *ReservationExpiredEvent {
	return &ReservationExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationExpired, AggregateTypeReservation, r.ID, now),
		ReservationID:   r.ID,
		StockItemID:     r.StockItemID,
		Quantity:        r.Quantity,
		ExpiresAt:       r.ExpiresAt,
	}
}

// AuditApprovedEvent is raised when a stocktake is approved
type AuditApprovedEvent struct {
	shared.BaseDomainEvent
	AuditID            uuid.UUID `json:"audit_id"`
	Reference          string    `json:"audit_reference"`
	ItemsWithVariances int       `json:"items_with_variances"`
	TotalVarianceValue string    `json:"total_variance_value"`
}

// NewAuditApprovedEvent creates a new AuditApprovedEvent
func NewAuditApprovedEvent(a *StockAudit, now time.Time) *AuditApprovedEvent {
	return &AuditApprovedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeAuditApproved, AggregateTypeStockAudit, a.ID, now),
		AuditID:            a.ID,
		Reference:          a.Reference,
		ItemsWithVariances: a.ItemsWithVariances,
		TotalVarianceValue: a.TotalVarianceValue.StringFixed(2),
	}
}
