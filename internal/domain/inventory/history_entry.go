package inventory

import (
	"time"

	"github.com/google/uuid"
)

// HistoryKind classifies a journal entry
type HistoryKind string

const (
	HistoryCreated         HistoryKind = "created"
	HistoryReceived        HistoryKind = "received"
	HistoryIssued          HistoryKind = "issued"
	HistoryAdjusted        HistoryKind = "adjusted"
	HistoryTransfer        HistoryKind = "transfer"
	HistoryFulfilled       HistoryKind = "commitment_fulfilled"
	HistoryAuditAdjustment HistoryKind = "audit_adjustment"
	HistoryDeleted         HistoryKind = "deleted"
)

// HistoryEntry is an append-only journal record of a quantity-affecting event.
// Quantity is the resulting total; exactly one of ReceiveQuantity and
// IssueQuantity carries the delta. Entries are never updated.
type HistoryEntry struct {
	ID              uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	StockItemID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"stock_item_id"`
	ItemName        string      `gorm:"type:varchar(200);not null;index" json:"item_name"`
	SKU             string      `gorm:"type:varchar(50);not null" json:"sku"`
	Category        string      `gorm:"type:varchar(100)" json:"category"`
	Kind            HistoryKind `gorm:"type:varchar(30);not null;index" json:"kind"`
	Quantity        int64       `gorm:"not null" json:"quantity"`
	ReceiveQuantity int64       `gorm:"not null" json:"receive_quantity"`
	IssueQuantity   int64       `gorm:"not null" json:"issue_quantity"`
	StoreID         *uuid.UUID  `gorm:"type:uuid" json:"store_id,omitempty"`
	Reference       string      `gorm:"type:varchar(100)" json:"reference,omitempty"`
	Actor           string      `gorm:"type:varchar(100)" json:"actor"`
	Note            string      `gorm:"type:text" json:"note"`
	Timestamp       time.Time   `gorm:"not null;index" json:"timestamp"`
}

// TableName returns the table name for GORM
func (HistoryEntry) TableName() string {
	return "history_entries"
}

// JournalRequest describes the entry a save should produce
type JournalRequest struct {
	Kind      HistoryKind
	Actor     string
	Note      string
	StoreID   *uuid.UUID
	Reference string
	// Force writes an entry even when the total did not change.
	Force bool
}

// Journal synthesizes the single history entry for persisting item. It
// compares the current total with the stored baseline: nil is returned when
// nothing changed on an already stored item and the request is not forced.
func Journal(item *StockItem, req JournalRequest, now time.Time) *HistoryEntry {
	delta := item.TotalOnHand() - item.PersistedTotal()
	if item.IsPersisted() && delta == 0 && !req.Force {
		return nil
	}
	kind := req.Kind
	if kind == "" {
		kind = defaultKind(item, delta)
	}
	entry := &HistoryEntry{
		ID:          uuid.New(),
		StockItemID: item.ID,
		ItemName:    item.ItemName,
		SKU:         item.SKU,
		Category:    item.Category,
		Kind:        kind,
		Quantity:    item.TotalOnHand(),
		StoreID:     req.StoreID,
		Reference:   req.Reference,
		Actor:       req.Actor,
		Note:        req.Note,
		Timestamp:   now,
	}
	if delta > 0 {
		entry.ReceiveQuantity = delta
	} else {
		entry.IssueQuantity = -delta
	}
	return entry
}

// NewAuditAdjustmentEntry records a stocktake overwrite of previous by counted
func NewAuditAdjustmentEntry(item *StockItem, storeID *uuid.UUID, previous, counted int64, auditRef, actor string, now time.Time) *HistoryEntry {
	entry := &HistoryEntry{
		ID:          uuid.New(),
		StockItemID: item.ID,
		ItemName:    item.ItemName,
		SKU:         item.SKU,
		Category:    item.Category,
		Kind:        HistoryAuditAdjustment,
		Quantity:    item.TotalOnHand(),
		StoreID:     storeID,
		Reference:   auditRef,
		Actor:       actor,
		Note:        "Stocktake adjustment " + auditRef,
		Timestamp:   now,
	}
	if delta := counted - previous; delta > 0 {
		entry.ReceiveQuantity = delta
	} else {
		entry.IssueQuantity = -delta
	}
	return entry
}

// NewDeletionEntry records the removal of an item
func NewDeletionEntry(item *StockItem, actor, note string, now time.Time) *HistoryEntry {
	return &HistoryEntry{
		ID:            uuid.New(),
		StockItemID:   item.ID,
		ItemName:      item.ItemName,
		SKU:           item.SKU,
		Category:      item.Category,
		Kind:          HistoryDeleted,
		Quantity:      0,
		IssueQuantity: item.TotalOnHand(),
		Actor:         actor,
		Note:          note,
		Timestamp:     now,
	}
}

func defaultKind(item *StockItem, delta int64) HistoryKind {
	switch {
	case !item.IsPersisted():
		return HistoryCreated
	case delta > 0:
		return HistoryReceived
	case delta < 0:
		return HistoryIssued
	default:
		return HistoryAdjusted
	}
}
