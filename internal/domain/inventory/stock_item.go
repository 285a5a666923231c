package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Condition describes the physical state of stock
type Condition string

const (
	ConditionNew         Condition = "new"
	ConditionDemoUnit    Condition = "demo_unit"
	ConditionBStock      Condition = "bstock"
	ConditionOpenBox     Condition = "open_box"
	ConditionRefurbished Condition = "refurbished"
)

// IsValid reports whether the condition is known
func (c Condition) IsValid() bool {
	switch c {
	case ConditionNew, ConditionDemoUnit, ConditionBStock, ConditionOpenBox, ConditionRefurbished:
		return true
	}
	return false
}

// StockLevel is the derived, never persisted state of an item
type StockLevel string

const (
	LevelInStock  StockLevel = "in_stock"
	LevelLow      StockLevel = "low_stock"
	LevelDepleted StockLevel = "depleted"
)

// StockItem is the aggregate root for one sellable item.
//
// Quantity is the legacy scalar count. Once the item has at least one
// LocationEntry it is in split mode: the location entries become the only
// source of truth and Quantity is kept as a read-only projection of their sum.
// Committed and reserved quantities are not stored; they are attached on load
// from the open commitments and reservations.
type StockItem struct {
	shared.BaseAggregateRoot
	SKU             string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"sku"`
	ItemName        string          `gorm:"type:varchar(200);not null;index" json:"item_name"`
	Category        string          `gorm:"type:varchar(100);index" json:"category"`
	Condition       Condition       `gorm:"type:varchar(20);not null" json:"condition"`
	Quantity        int64           `gorm:"not null" json:"quantity"`
	ReOrder         int64           `gorm:"not null" json:"re_order"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_cost"`
	HomeStoreID     *uuid.UUID      `gorm:"type:uuid" json:"home_store_id,omitempty"`
	Aisle           string          `gorm:"type:varchar(50)" json:"aisle"`
	ReceiveQuantity int64           `gorm:"not null" json:"receive_quantity"`
	IssueQuantity   int64           `gorm:"not null" json:"issue_quantity"`
	ReceivedBy      string          `gorm:"type:varchar(100)" json:"received_by"`
	IssuedBy        string          `gorm:"type:varchar(100)" json:"issued_by"`
	CreatedBy       string          `gorm:"type:varchar(100)" json:"created_by"`
	Note            string          `gorm:"type:text" json:"note"`
	Locations       []LocationEntry `gorm:"foreignKey:StockItemID;constraint:OnDelete:CASCADE" json:"locations"`

	committed      int64
	reserved       int64
	persistedTotal int64
	persisted      bool
}

// TableName returns the table name for GORM
func (StockItem) TableName() string {
	return "stock_items"
}

// NewStockItemInput carries the fields needed to create an item
type NewStockItemInput struct {
	SKU         string
	ItemName    string
	Category    string
	Condition   Condition
	ReOrder     int64
	UnitCost    decimal.Decimal
	HomeStoreID *uuid.UUID
	Aisle       string
	CreatedBy   string
}

// NewStockItem creates an item with no stock. Initial stock goes through Receive
// so that it is journalled like any other movement.
func NewStockItem(in NewStockItemInput, now time.Time) (*StockItem, error) {
	name := strings.TrimSpace(in.ItemName)
	if name == "" {
		return nil, shared.NewValidationError("item_name", "is required")
	}
	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		sku = AutoSKU(name)
	}
	if in.Condition == "" {
		in.Condition = ConditionNew
	}
	if !in.Condition.IsValid() {
		return nil, shared.NewValidationError("condition", fmt.Sprintf("unknown condition %q", in.Condition))
	}
	if in.ReOrder < 0 {
		return nil, shared.NewValidationError("re_order", "must not be negative")
	}
	if in.UnitCost.IsNegative() {
		return nil, shared.NewValidationError("unit_cost", "must not be negative")
	}
	return &StockItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		SKU:               sku,
		ItemName:          name,
		Category:          in.Category,
		Condition:         in.Condition,
		ReOrder:           in.ReOrder,
		UnitCost:          in.UnitCost,
		HomeStoreID:       in.HomeStoreID,
		Aisle:             in.Aisle,
		CreatedBy:         in.CreatedBy,
	}, nil
}

// AutoSKU derives the SKU used for items created on purchase order receipt:
// AUTO- followed by the first 20 characters of the upper-cased name with
// spaces replaced by dashes. Upper-casing uses full Unicode case mapping.
func AutoSKU(name string) string {
	upper := []rune(cases.Upper(language.Und).String(strings.TrimSpace(name)))
	if len(upper) > 20 {
		upper = upper[:20]
	}
	return "AUTO-" + strings.ReplaceAll(string(upper), " ", "-")
}

// MarkPersisted records the current total as the stored baseline. Repositories
// call it after loading and after saving.
func (s *StockItem) MarkPersisted() {
	s.persisted = true
	s.persistedTotal = s.TotalOnHand()
}

// IsPersisted reports whether the item has been stored before
func (s *StockItem) IsPersisted() bool {
	return s.persisted
}

// PersistedTotal is the total on hand as last stored
func (s *StockItem) PersistedTotal() int64 {
	return s.persistedTotal
}

// SetHolds attaches the committed and active reserved quantities computed from
// the open commitments and reservations.
func (s *StockItem) SetHolds(committed, reserved int64) {
	s.committed = committed
	s.reserved = reserved
}

// CommittedQuantity is the sum of unfulfilled commitments
func (s *StockItem) CommittedQuantity() int64 {
	return s.committed
}

// ReservedQuantity is the sum of active, unexpired reservations
func (s *StockItem) ReservedQuantity() int64 {
	return s.reserved
}

// IsSplit reports whether the item is tracked per location
func (s *StockItem) IsSplit() bool {
	return len(s.Locations) > 0
}

// TotalAcrossLocations sums every location entry
func (s *StockItem) TotalAcrossLocations() int64 {
	var total int64
	for i := range s.Locations {
		total += s.Locations[i].Quantity
	}
	return total
}

// TotalOnHand is the physical count: the location sum in split mode, the
// legacy scalar otherwise.
func (s *StockItem) TotalOnHand() int64 {
	if s.IsSplit() {
		return s.TotalAcrossLocations()
	}
	return s.Quantity
}

// AvailableForSale is on hand minus committed minus active reservations
func (s *StockItem) AvailableForSale() int64 {
	return s.TotalOnHand() - s.committed - s.reserved
}

// IsLowStock reports whether availability has dropped to the reorder threshold
func (s *StockItem) IsLowStock() bool {
	return s.AvailableForSale() <= s.ReOrder
}

// Level returns the derived stock level
func (s *StockItem) Level() StockLevel {
	switch {
	case s.AvailableForSale() <= 0:
		return LevelDepleted
	case s.IsLowStock():
		return LevelLow
	default:
		return LevelInStock
	}
}

// Location returns the entry for a store, or nil
func (s *StockItem) Location(storeID uuid.UUID) *LocationEntry {
	for i := range s.Locations {
		if s.Locations[i].StoreID == storeID {
			return &s.Locations[i]
		}
	}
	return nil
}

// LocationQuantity returns the quantity at a store, zero when absent
func (s *StockItem) LocationQuantity(storeID uuid.UUID) int64 {
	if loc := s.Location(storeID); loc != nil {
		return loc.Quantity
	}
	return 0
}

// QuantityAt is the stock held at a store. Legacy stock on a non-split item
// counts as held at the home store, or at any store when no home is set.
func (s *StockItem) QuantityAt(storeID uuid.UUID) int64 {
	if s.IsSplit() {
		return s.LocationQuantity(storeID)
	}
	if s.HomeStoreID != nil && *s.HomeStoreID != storeID {
		return 0
	}
	return s.Quantity
}

// ResolveLocation picks the location an unqualified movement applies to.
// Non-split items return nil. Split items with a single location use it;
// split items with several require an explicit store.
func (s *StockItem) ResolveLocation(storeID *uuid.UUID) (*uuid.UUID, error) {
	if storeID != nil {
		return storeID, nil
	}
	if !s.IsSplit() {
		return nil, nil
	}
	if len(s.Locations) == 1 {
		id := s.Locations[0].StoreID
		return &id, nil
	}
	return nil, shared.NewValidationError("location_id", "is required for items stocked at more than one location")
}

// AddToLocation upserts the entry for a store and increments it. Adding zero is
// a no-op. The first location added to an item holding legacy stock moves
// that stock into the home store entry (or this store's entry when no home
// store is set) so nothing is lost on the switch to split mode.
func (s *StockItem) AddToLocation(storeID uuid.UUID, qty int64, aisle string, now time.Time) error {
	if qty < 0 {
		return shared.NewValidationError("quantity", "must not be negative")
	}
	if qty == 0 {
		return nil
	}
	s.foldLegacyQuantity(storeID, now)

	loc := s.Location(storeID)
	if loc == nil {
		s.Locations = append(s.Locations, newLocationEntry(s.ID, storeID, now))
		loc = &s.Locations[len(s.Locations)-1]
	}
	loc.Quantity += qty
	if aisle != "" {
		loc.Aisle = aisle
	}
	loc.Touch(now)
	s.syncProjection(now)
	return nil
}

// RemoveFromLocation decrements the entry for a store. It fails with an
// InsufficientStockError and leaves the item unchanged when the location
// holds less than qty.
func (s *StockItem) RemoveFromLocation(storeID uuid.UUID, qty int64, now time.Time) error {
	if qty < 0 {
		return shared.NewValidationError("quantity", "must not be negative")
	}
	if qty == 0 {
		return nil
	}
	if !s.IsSplit() {
		if held := s.QuantityAt(storeID); held < qty {
			return s.insufficientAt(storeID, qty, held)
		}
		s.foldLegacyQuantity(storeID, now)
	}

	loc := s.Location(storeID)
	if loc == nil || loc.Quantity < qty {
		return s.insufficientAt(storeID, qty, s.LocationQuantity(storeID))
	}
	loc.Quantity -= qty
	loc.Touch(now)
	s.syncProjection(now)
	return nil
}

// Issue removes stock. In split mode the location is resolved first. With
// enforceAvailability the issue must also fit within AvailableForSale; the
// commitment fulfilment path skips that check since the stock it issues is
// its own hold.
func (s *StockItem) Issue(qty int64, storeID *uuid.UUID, actor, note string, enforceAvailability bool, now time.Time) error {
	if qty <= 0 {
		return shared.NewValidationError("quantity", "must be greater than zero")
	}
	target, err := s.ResolveLocation(storeID)
	if err != nil {
		return err
	}
	if enforceAvailability && qty > s.AvailableForSale() {
		return &shared.InsufficientStockError{ItemID: s.ID, StoreID: target, Requested: qty, Available: s.AvailableForSale()}
	}

	if target != nil {
		if err := s.RemoveFromLocation(*target, qty, now); err != nil {
			return err
		}
	} else {
		if s.Quantity < qty {
			return &shared.InsufficientStockError{ItemID: s.ID, Requested: qty, Available: s.Quantity}
		}
		s.Quantity -= qty
	}

	s.IssueQuantity += qty
	s.IssuedBy = actor
	s.Note = note
	s.Touch(now)
	s.AddDomainEvent(NewStockIssuedEvent(s, qty, target, now))
	return nil
}

// Receive adds stock, to a location when one is given or resolvable.
func (s *StockItem) Receive(qty int64, storeID *uuid.UUID, aisle, actor, note string, now time.Time) error {
	if qty <= 0 {
		return shared.NewValidationError("quantity", "must be greater than zero")
	}
	target, err := s.ResolveLocation(storeID)
	if err != nil {
		return err
	}

	if target != nil {
		if err := s.AddToLocation(*target, qty, aisle, now); err != nil {
			return err
		}
	} else {
		s.Quantity += qty
	}

	s.ReceiveQuantity += qty
	s.ReceivedBy = actor
	s.Note = note
	if aisle != "" {
		s.Aisle = aisle
	}
	s.Touch(now)
	s.AddDomainEvent(NewStockReceivedEvent(s, qty, target, now))
	return nil
}

// SetQuantity is the legacy direct edit. Split items reject it because a
// scalar edit cannot say which location changed.
func (s *StockItem) SetQuantity(qty int64, now time.Time) error {
	if s.IsSplit() {
		return shared.NewValidationError("quantity", "cannot be edited directly once stock is held at locations")
	}
	if qty < 0 {
		return shared.NewValidationError("quantity", "must not be negative")
	}
	s.Quantity = qty
	s.Touch(now)
	return nil
}

// OverwriteCount sets a counted quantity directly. Stocktake approval is the
// only caller: the count replaces the recorded figure instead of being added
// as a delta.
func (s *StockItem) OverwriteCount(storeID *uuid.UUID, counted int64, now time.Time) error {
	if counted < 0 {
		return shared.NewValidationError("physical_count", "must not be negative")
	}
	if storeID == nil {
		if s.IsSplit() {
			return shared.NewValidationError("location_id", "is required for items stocked at locations")
		}
		s.Quantity = counted
		s.Touch(now)
		return nil
	}

	s.foldLegacyQuantity(*storeID, now)
	loc := s.Location(*storeID)
	if loc == nil {
		s.Locations = append(s.Locations, newLocationEntry(s.ID, *storeID, now))
		loc = &s.Locations[len(s.Locations)-1]
	}
	loc.Quantity = counted
	loc.Touch(now)
	s.syncProjection(now)
	return nil
}

// CheckHoldable validates a new commitment or reservation of qty against
// current availability.
func (s *StockItem) CheckHoldable(qty int64) error {
	if qty <= 0 {
		return shared.NewValidationError("quantity", "must be greater than zero")
	}
	if available := s.AvailableForSale(); qty > available {
		return shared.NewValidationError("quantity", fmt.Sprintf("only %d available for sale, requested %d", available, qty))
	}
	return nil
}

// CheckConsistency verifies that a split item's projection matches its
// location entries.
func (s *StockItem) CheckConsistency() error {
	if !s.IsSplit() {
		return nil
	}
	if sum := s.TotalAcrossLocations(); sum != s.Quantity {
		return &shared.ConsistencyViolation{ItemID: s.ID, Recorded: s.Quantity, LocationSum: sum}
	}
	for i := range s.Locations {
		if s.Locations[i].Quantity < 0 {
			return &shared.ConsistencyViolation{ItemID: s.ID, Recorded: s.Quantity, LocationSum: s.TotalAcrossLocations()}
		}
	}
	return nil
}

// UpdateDetails changes descriptive fields
func (s *StockItem) UpdateDetails(name, category string, condition Condition, reOrder int64, unitCost decimal.Decimal, now time.Time) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewValidationError("item_name", "is required")
	}
	if !condition.IsValid() {
		return shared.NewValidationError("condition", fmt.Sprintf("unknown condition %q", condition))
	}
	if reOrder < 0 {
		return shared.NewValidationError("re_order", "must not be negative")
	}
	if unitCost.IsNegative() {
		return shared.NewValidationError("unit_cost", "must not be negative")
	}
	s.ItemName = strings.TrimSpace(name)
	s.Category = category
	s.Condition = condition
	s.ReOrder = reOrder
	s.UnitCost = unitCost
	s.Touch(now)
	return nil
}

func (s *StockItem) foldLegacyQuantity(storeID uuid.UUID, now time.Time) {
	if s.IsSplit() || s.Quantity == 0 {
		return
	}
	home := storeID
	if s.HomeStoreID != nil {
		home = *s.HomeStoreID
	}
	entry := newLocationEntry(s.ID, home, now)
	entry.Quantity = s.Quantity
	entry.Aisle = s.Aisle
	s.Locations = append(s.Locations, entry)
}

func (s *StockItem) syncProjection(now time.Time) {
	if s.IsSplit() {
		s.Quantity = s.TotalAcrossLocations()
	}
	s.Touch(now)
}

func (s *StockItem) insufficientAt(storeID uuid.UUID, requested, available int64) error {
	id := storeID
	return &shared.InsufficientStockError{ItemID: s.ID, StoreID: &id, Requested: requested, Available: available}
}

// ApplyDeltas applies transfer location changes. Every decrement is checked
// before anything is written so a failure leaves the item unchanged.
func (s *StockItem) ApplyDeltas(deltas []LocationDelta, now time.Time) error {
	need := make(map[uuid.UUID]int64)
	for _, d := range deltas {
		if d.Delta < 0 {
			need[d.StoreID] -= d.Delta
		}
	}
	for storeID, qty := range need {
		if held := s.QuantityAt(storeID); held < qty {
			return s.insufficientAt(storeID, qty, held)
		}
	}
	for _, d := range deltas {
		if d.Delta < 0 {
			if err := s.RemoveFromLocation(d.StoreID, -d.Delta, now); err != nil {
				return err
			}
		}
	}
	for _, d := range deltas {
		if d.Delta > 0 {
			if err := s.AddToLocation(d.StoreID, d.Delta, "", now); err != nil {
				return err
			}
		}
	}
	return nil
}
