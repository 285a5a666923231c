package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
)

// TransferStatus is the workflow state of a transfer
type TransferStatus string

const (
	TransferPending            TransferStatus = "pending"
	TransferInTransit          TransferStatus = "in_transit"
	TransferAwaitingCollection TransferStatus = "awaiting_collection"
	TransferCompleted          TransferStatus = "completed"
	TransferCollected          TransferStatus = "collected"
	TransferCancelled          TransferStatus = "cancelled"
)

// IsTerminal reports whether the transfer is finished
func (s TransferStatus) IsTerminal() bool {
	return s == TransferCompleted || s == TransferCollected || s == TransferCancelled
}

// TransferType decides when quantities move
type TransferType string

const (
	TransferRestock            TransferType = "restock"
	TransferCustomerCollection TransferType = "customer_collection"
	TransferGeneral            TransferType = "general"
)

// IsValid reports whether the type is known
func (t TransferType) IsValid() bool {
	return t == TransferRestock || t == TransferCustomerCollection || t == TransferGeneral
}

// decrementsOnCreate is true for types whose stock leaves the source at once
func (t TransferType) decrementsOnCreate() bool {
	return t == TransferCustomerCollection || t == TransferGeneral
}

// LocationDelta is one location change a transition asks the ledger to apply
type LocationDelta struct {
	StoreID uuid.UUID
	Delta   int64
}

// Transfer moves a quantity of one item between two stores.
//
// Restock transfers leave the source untouched until completion, when both
// sides move at once. Customer collection and general transfers take the
// quantity out of the source at creation.
type Transfer struct {
	shared.BaseAggregateRoot
	StockItemID       uuid.UUID      `gorm:"type:uuid;index" json:"stock_item_id"`
	FromStoreID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"from_store_id"`
	ToStoreID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"to_store_id"`
	Quantity          int64          `gorm:"not null" json:"quantity"`
	Type              TransferType   `gorm:"column:transfer_type;type:varchar(30);not null" json:"transfer_type"`
	Status            TransferStatus `gorm:"type:varchar(30);not null;index" json:"status"`
	Reason            string         `gorm:"column:transfer_reason;type:text" json:"transfer_reason"`
	Customer          CustomerInfo   `gorm:"embedded" json:"customer"`
	Notes             string         `gorm:"type:text" json:"notes"`
	SourceDecremented bool           `gorm:"not null" json:"source_decremented"`
	StagedAtTarget    bool           `gorm:"not null" json:"staged_at_target"`
	CreatedBy         string         `gorm:"type:varchar(100)" json:"created_by"`
	ApprovedBy        string         `gorm:"type:varchar(100)" json:"approved_by"`
	ApprovedAt        *time.Time     `json:"approved_at,omitempty"`
	CompletedBy       string         `gorm:"type:varchar(100)" json:"completed_by"`
	CompletedAt       *time.Time     `json:"completed_at,omitempty"`
	CollectedBy       string         `gorm:"type:varchar(100)" json:"collected_by"`
	CollectedAt       *time.Time     `json:"collected_at,omitempty"`
	CancelledBy       string         `gorm:"type:varchar(100)" json:"cancelled_by"`
	CancelledAt       *time.Time     `json:"cancelled_at,omitempty"`
}

// TableName returns the table name for GORM
func (Transfer) TableName() string {
	return "transfers"
}

// NewTransferInput carries the fields needed to create a transfer
type NewTransferInput struct {
	StockItemID uuid.UUID
	FromStoreID uuid.UUID
	ToStoreID   uuid.UUID
	Quantity    int64
	Type        TransferType
	Reason      string
	Customer    CustomerInfo
	Notes       string
	CreatedBy   string
}

// NewTransfer validates the request and returns the location deltas creation
// requires.
func NewTransfer(in NewTransferInput, now time.Time) (*Transfer, []LocationDelta, error) {
	if in.Quantity <= 0 {
		return nil, nil, shared.NewValidationError("quantity", "must be greater than zero")
	}
	if in.FromStoreID == in.ToStoreID {
		return nil, nil, shared.NewValidationError("to_location", "must differ from from_location")
	}
	if in.Type == "" {
		in.Type = TransferGeneral
	}
	if !in.Type.IsValid() {
		return nil, nil, shared.NewValidationError("transfer_type", fmt.Sprintf("unknown type %q", in.Type))
	}

	t := &Transfer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		StockItemID:       in.StockItemID,
		FromStoreID:       in.FromStoreID,
		ToStoreID:         in.ToStoreID,
		Quantity:          in.Quantity,
		Type:              in.Type,
		Status:            TransferPending,
		Reason:            in.Reason,
		Customer:          in.Customer,
		Notes:             in.Notes,
		CreatedBy:         in.CreatedBy,
	}

	var deltas []LocationDelta
	if in.Type.decrementsOnCreate() {
		deltas = append(deltas, LocationDelta{StoreID: in.FromStoreID, Delta: -in.Quantity})
		t.SourceDecremented = true
	}
	t.AddDomainEvent(NewTransferTransitionedEvent(t, "", now))
	return t, deltas, nil
}

// CanBeApproved reports whether approve is legal
func (t *Transfer) CanBeApproved() bool {
	return t.Status == TransferPending
}

// CanBeCompleted reports whether complete is legal
func (t *Transfer) CanBeCompleted() bool {
	return t.Status == TransferPending || t.Status == TransferInTransit
}

// CanBeCollected reports whether mark collected is legal
func (t *Transfer) CanBeCollected() bool {
	return t.Status == TransferAwaitingCollection
}

// CanBeCancelled reports whether cancel is legal
func (t *Transfer) CanBeCancelled() bool {
	return t.Status == TransferPending || t.Status == TransferInTransit || t.Status == TransferAwaitingCollection
}

// Approve moves a pending transfer into transit. No quantities move.
func (t *Transfer) Approve(actor string, now time.Time) error {
	if !t.CanBeApproved() {
		return shared.NewIllegalTransition("transfer", string(t.Status), "approve")
	}
	t.transition(TransferInTransit, now)
	t.ApprovedBy = actor
	t.ApprovedAt = &now
	return nil
}

// Complete lands the stock at the destination. Customer collections stop at
// awaiting_collection; the other types finish.
func (t *Transfer) Complete(actor string, now time.Time) ([]LocationDelta, error) {
	if !t.CanBeCompleted() {
		return nil, shared.NewIllegalTransition("transfer", string(t.Status), "complete")
	}

	var deltas []LocationDelta
	next := TransferCompleted
	switch t.Type {
	case TransferRestock:
		deltas = []LocationDelta{
			{StoreID: t.FromStoreID, Delta: -t.Quantity},
			{StoreID: t.ToStoreID, Delta: t.Quantity},
		}
	case TransferCustomerCollection:
		deltas = []LocationDelta{{StoreID: t.ToStoreID, Delta: t.Quantity}}
		t.StagedAtTarget = true
		next = TransferAwaitingCollection
	default:
		deltas = []LocationDelta{{StoreID: t.ToStoreID, Delta: t.Quantity}}
	}

	t.transition(next, now)
	t.CompletedBy = actor
	t.CompletedAt = &now
	return deltas, nil
}

// MarkCollected records the customer taking the stock away; it leaves the
// destination here.
func (t *Transfer) MarkCollected(actor string, now time.Time) ([]LocationDelta, error) {
	if !t.CanBeCollected() {
		return nil, shared.NewIllegalTransition("transfer", string(t.Status), "collect")
	}
	t.transition(TransferCollected, now)
	t.StagedAtTarget = false
	t.CollectedBy = actor
	t.CollectedAt = &now
	return []LocationDelta{{StoreID: t.ToStoreID, Delta: -t.Quantity}}, nil
}

// Cancel aborts an open transfer, returning in-flight stock to the source and
// pulling back anything already staged at the destination. Restock transfers
// never moved stock before completion, so cancelling them moves nothing.
func (t *Transfer) Cancel(actor string, now time.Time) ([]LocationDelta, error) {
	if !t.CanBeCancelled() {
		return nil, shared.NewIllegalTransition("transfer", string(t.Status), "cancel")
	}

	var deltas []LocationDelta
	if t.StagedAtTarget {
		deltas = append(deltas, LocationDelta{StoreID: t.ToStoreID, Delta: -t.Quantity})
		t.StagedAtTarget = false
	}
	if t.SourceDecremented {
		deltas = append(deltas, LocationDelta{StoreID: t.FromStoreID, Delta: t.Quantity})
		t.SourceDecremented = false
	}

	t.transition(TransferCancelled, now)
	t.CancelledBy = actor
	t.CancelledAt = &now
	return deltas, nil
}

func (t *Transfer) transition(next TransferStatus, now time.Time) {
	from := t.Status
	t.Status = next
	t.Touch(now)
	t.IncrementVersion()
	t.AddDomainEvent(NewTransferTransitionedEvent(t, from, now))
}
