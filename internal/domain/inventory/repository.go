package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
)

// StoreRepository defines persistence for stores
type StoreRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Store, error)
	FindByCode(ctx context.Context, code string) (*Store, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Store, int64, error)
	Save(ctx context.Context, store *Store) error
}

// ConditionSummary is the stock count grouped by condition
type ConditionSummary struct {
	Condition     Condition `json:"condition"`
	Count         int64     `json:"count"`
	TotalQuantity int64     `json:"total_quantity"`
}

// StockItemRepository defines persistence for stock items and their
// location entries. Loaded items carry their locations and are marked
// persisted; holds are attached by the caller.
type StockItemRepository interface {
	// FindByID loads an item with its locations
	FindByID(ctx context.Context, id uuid.UUID) (*StockItem, error)

	// FindByIDForUpdate loads an item and row-locks it until the surrounding
	// transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*StockItem, error)

	// FindByNameForUpdate loads and row-locks an item by exact name
	FindByNameForUpdate(ctx context.Context, name string) (*StockItem, error)

	// FindBySKU loads an item by SKU
	FindBySKU(ctx context.Context, sku string) (*StockItem, error)

	// FindAll lists items; Filters supports "category" and "condition"
	FindAll(ctx context.Context, filter shared.Filter) ([]StockItem, int64, error)

	// FindLowStock lists items whose availability at now is at or below re_order
	FindLowStock(ctx context.Context, now time.Time, filter shared.Filter) ([]StockItem, int64, error)

	// FindSplitItems lists every item that has at least one location entry
	FindSplitItems(ctx context.Context) ([]StockItem, error)

	// ConditionSummary groups items by condition
	ConditionSummary(ctx context.Context) ([]ConditionSummary, error)

	// FindLocation loads a single location entry
	FindLocation(ctx context.Context, id uuid.UUID) (*LocationEntry, error)

	// SaveLocation updates a single location entry
	SaveLocation(ctx context.Context, loc *LocationEntry) error

	// Save writes the item and all of its location entries
	Save(ctx context.Context, item *StockItem) error

	// Delete removes the item and its location entries
	Delete(ctx context.Context, id uuid.UUID) error
}

// CommitmentRepository defines persistence for commitments
type CommitmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Commitment, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Commitment, error)
	// FindAll lists commitments; Filters supports "stock_item_id" and "is_fulfilled"
	FindAll(ctx context.Context, filter shared.Filter) ([]Commitment, int64, error)
	Save(ctx context.Context, c *Commitment) error
	// SumOpen sums unfulfilled commitment quantities for an item
	SumOpen(ctx context.Context, stockItemID uuid.UUID) (int64, error)
}

// ReservationRepository defines persistence for reservations
type ReservationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Reservation, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Reservation, error)
	// FindAll lists reservations; Filters supports "stock_item_id", "status" and "reservation_type"
	FindAll(ctx context.Context, filter shared.Filter) ([]Reservation, int64, error)
	// FindActive lists reservations still holding stock at now
	FindActive(ctx context.Context, now time.Time, filter shared.Filter) ([]Reservation, int64, error)
	// FindLapsed lists stored-active reservations whose expiry has passed
	FindLapsed(ctx context.Context, now time.Time, limit int) ([]Reservation, error)
	// FindByStatus lists reservations with a stored status
	FindByStatus(ctx context.Context, status ReservationStatus, filter shared.Filter) ([]Reservation, int64, error)
	Save(ctx context.Context, r *Reservation) error
	// SumActive sums quantities of reservations holding stock at now
	SumActive(ctx context.Context, stockItemID uuid.UUID, now time.Time) (int64, error)
}

// TransferRepository defines persistence for transfers
type TransferRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Transfer, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Transfer, error)
	// FindAll lists transfers; Filters supports "status", "transfer_type" and "stock_item_id"
	FindAll(ctx context.Context, filter shared.Filter) ([]Transfer, int64, error)
	Save(ctx context.Context, t *Transfer) error
	// CountOpen counts an item's transfers that have not reached a terminal status
	CountOpen(ctx context.Context, stockItemID uuid.UUID) (int64, error)
}

// StockAuditRepository defines persistence for audits and their lines
type StockAuditRepository interface {
	// FindByID loads an audit with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*StockAudit, error)
	// FindByIDForUpdate loads and row-locks an audit with its lines
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*StockAudit, error)
	// FindAll lists audits without lines; Filters supports "status" and "audit_type"
	FindAll(ctx context.Context, filter shared.Filter) ([]StockAudit, int64, error)
	// FindItems pages through the lines of an audit
	FindItems(ctx context.Context, auditID uuid.UUID, filter shared.Filter) ([]AuditItem, int64, error)
	// CountForYear counts audits created in a calendar year
	CountForYear(ctx context.Context, year int) (int64, error)
	// CountOpenLines counts an item's lines on audits not yet approved or cancelled
	CountOpenLines(ctx context.Context, stockItemID uuid.UUID) (int64, error)
	// Save writes the audit and all of its lines
	Save(ctx context.Context, audit *StockAudit) error
}

// HistoryRepository is the append-only journal. It has no update or delete.
type HistoryRepository interface {
	Append(ctx context.Context, entries ...*HistoryEntry) error
	// FindAll lists entries newest first; Filters supports "kind" and "actor"
	FindAll(ctx context.Context, filter shared.Filter) ([]HistoryEntry, int64, error)
	FindByStockItem(ctx context.Context, stockItemID uuid.UUID, filter shared.Filter) ([]HistoryEntry, int64, error)
}
