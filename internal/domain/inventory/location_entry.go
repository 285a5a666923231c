package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
)

// LocationEntry is the quantity of one stock item held at one store.
// Quantity never goes negative.
type LocationEntry struct {
	shared.BaseEntity
	StockItemID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_location_item_store" json:"stock_item_id"`
	StoreID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_location_item_store" json:"store_id"`
	Quantity    int64     `gorm:"not null" json:"quantity"`
	Aisle       string    `gorm:"type:varchar(50)" json:"aisle"`
}

// TableName returns the table name for GORM
func (LocationEntry) TableName() string {
	return "location_entries"
}

func newLocationEntry(itemID, storeID uuid.UUID, now time.Time) LocationEntry {
	return LocationEntry{
		BaseEntity:  shared.NewBaseEntity(now),
		StockItemID: itemID,
		StoreID:     storeID,
	}
}

// SetAisle updates the shelf position
func (l *LocationEntry) SetAisle(aisle string, now time.Time) error {
	if len(aisle) > 50 {
		return shared.NewValidationError("aisle", "must be at most 50 characters")
	}
	l.Aisle = aisle
	l.Touch(now)
	return nil
}
