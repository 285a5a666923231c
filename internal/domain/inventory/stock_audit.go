package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/shared"
)

// AuditStatus is the workflow state of a stocktake
type AuditStatus string

const (
	AuditPlanned    AuditStatus = "planned"
	AuditInProgress AuditStatus = "in_progress"
	AuditCompleted  AuditStatus = "completed"
	AuditCancelled  AuditStatus = "cancelled"
	AuditApproved   AuditStatus = "approved"
)

// IsTerminal reports whether the audit is finished
func (s AuditStatus) IsTerminal() bool {
	return s == AuditApproved || s == AuditCancelled
}

// AuditType is the scope of a stocktake
type AuditType string

const (
	AuditFull      AuditType = "full"
	AuditPartial   AuditType = "partial"
	AuditCycle     AuditType = "cycle"
	AuditLocation  AuditType = "location"
	AuditCategory  AuditType = "category"
	AuditSpotCheck AuditType = "spot_check"
)

// IsValid reports whether the type is known
func (t AuditType) IsValid() bool {
	switch t {
	case AuditFull, AuditPartial, AuditCycle, AuditLocation, AuditCategory, AuditSpotCheck:
		return true
	}
	return false
}

// AuditItemStatus is the counting state of one line
type AuditItemStatus string

const (
	AuditItemPending     AuditItemStatus = "pending"
	AuditItemCounted     AuditItemStatus = "counted"
	AuditItemVerified    AuditItemStatus = "verified"
	AuditItemDiscrepancy AuditItemStatus = "discrepancy"
)

// StockAudit is a counting campaign that reconciles physical counts back into
// the ledger on approval.
type StockAudit struct {
	shared.BaseAggregateRoot
	Reference          string          `gorm:"type:varchar(30);not null;uniqueIndex" json:"audit_reference"`
	Title              string          `gorm:"type:varchar(200);not null" json:"title"`
	Description        string          `gorm:"type:text" json:"description"`
	Type               AuditType       `gorm:"column:audit_type;type:varchar(20);not null" json:"audit_type"`
	Status             AuditStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	PlannedStart       *time.Time      `json:"planned_start_date,omitempty"`
	PlannedEnd         *time.Time      `json:"planned_end_date,omitempty"`
	ActualStart        *time.Time      `json:"actual_start_date,omitempty"`
	ActualEnd          *time.Time      `json:"actual_end_date,omitempty"`
	CreatedBy          string          `gorm:"type:varchar(100)" json:"created_by"`
	StartedBy          string          `gorm:"type:varchar(100)" json:"started_by"`
	CompletedBy        string          `gorm:"type:varchar(100)" json:"completed_by"`
	ApprovedBy         string          `gorm:"type:varchar(100)" json:"approved_by"`
	ApprovedAt         *time.Time      `json:"approved_at,omitempty"`
	CancelledBy        string          `gorm:"type:varchar(100)" json:"cancelled_by"`
	TotalItemsPlanned  int             `gorm:"not null" json:"total_items_planned"`
	TotalItemsCounted  int             `gorm:"not null" json:"total_items_counted"`
	ItemsWithVariances int             `gorm:"not null" json:"items_with_variances"`
	TotalVarianceValue decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_variance_value"`
	Items              []AuditItem     `gorm:"foreignKey:AuditID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// TableName returns the table name for GORM
func (StockAudit) TableName() string {
	return "stock_audits"
}

// AuditItem is one counted line: an item, optionally at one location.
type AuditItem struct {
	shared.BaseEntity
	AuditID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"audit_id"`
	StockItemID       uuid.UUID       `gorm:"type:uuid;index" json:"stock_item_id"`
	StoreID           *uuid.UUID      `gorm:"type:uuid" json:"audit_location,omitempty"`
	Aisle             string          `gorm:"type:varchar(50)" json:"audit_aisle"`
	ItemName          string          `gorm:"type:varchar(200)" json:"item_name"`
	SKU               string          `gorm:"type:varchar(50)" json:"sku"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_cost"`
	Snapshotted       bool            `gorm:"not null" json:"snapshotted"`
	SystemQuantity    int64           `gorm:"not null" json:"system_quantity"`
	CommittedQuantity int64           `gorm:"not null" json:"committed_quantity"`
	ReservedQuantity  int64           `gorm:"not null" json:"reserved_quantity"`
	PhysicalCount     *int64          `json:"physical_count"`
	VarianceQuantity  int64           `gorm:"not null" json:"variance_quantity"`
	VarianceReason    string          `gorm:"type:varchar(100)" json:"variance_reason"`
	VarianceNotes     string          `gorm:"type:text" json:"variance_notes"`
	Status            AuditItemStatus `gorm:"type:varchar(20);not null" json:"status"`
	CountedBy         string          `gorm:"type:varchar(100)" json:"counted_by"`
	CountDate         *time.Time      `json:"count_date,omitempty"`
	AdjustmentApplied bool            `gorm:"not null" json:"adjustment_applied"`
	AdjustmentDate    *time.Time      `json:"adjustment_date,omitempty"`
}

// TableName returns the table name for GORM
func (AuditItem) TableName() string {
	return "audit_items"
}

// NewStockAuditInput carries the fields needed to plan an audit
type NewStockAuditInput struct {
	Reference    string
	Title        string
	Description  string
	Type         AuditType
	PlannedStart *time.Time
	PlannedEnd   *time.Time
	CreatedBy    string
}

// NewStockAudit plans an audit
func NewStockAudit(in NewStockAuditInput, now time.Time) (*StockAudit, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, shared.NewValidationError("title", "is required")
	}
	if in.Type == "" {
		in.Type = AuditFull
	}
	if !in.Type.IsValid() {
		return nil, shared.NewValidationError("audit_type", fmt.Sprintf("unknown type %q", in.Type))
	}
	if in.PlannedStart != nil && in.PlannedEnd != nil && in.PlannedEnd.Before(*in.PlannedStart) {
		return nil, shared.NewValidationError("planned_end_date", "must not be before the planned start")
	}
	return &StockAudit{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(now),
		Reference:          in.Reference,
		Title:              strings.TrimSpace(in.Title),
		Description:        in.Description,
		Type:               in.Type,
		Status:             AuditPlanned,
		PlannedStart:       in.PlannedStart,
		PlannedEnd:         in.PlannedEnd,
		CreatedBy:          in.CreatedBy,
		TotalVarianceValue: decimal.Zero,
	}, nil
}

// AuditReference formats the human reference for the nth audit of a year
func AuditReference(year, n int) string {
	return fmt.Sprintf("AUD-%d-%04d", year, n)
}

// CanStart reports whether start is legal
func (a *StockAudit) CanStart() bool {
	return a.Status == AuditPlanned
}

// CanComplete requires an in-progress audit with at least one line
func (a *StockAudit) CanComplete() bool {
	return a.Status == AuditInProgress && len(a.Items) > 0
}

// CanCancel is true until the audit is completed, approved or cancelled
func (a *StockAudit) CanCancel() bool {
	return a.Status == AuditPlanned || a.Status == AuditInProgress
}

// ProgressPercentage is counted lines over planned lines
func (a *StockAudit) ProgressPercentage() float64 {
	if a.TotalItemsPlanned == 0 {
		return 0
	}
	return float64(a.TotalItemsCounted) / float64(a.TotalItemsPlanned) * 100
}

// Item finds a line by ID
func (a *StockAudit) Item(id uuid.UUID) *AuditItem {
	for i := range a.Items {
		if a.Items[i].ID == id {
			return &a.Items[i]
		}
	}
	return nil
}

// AddItem adds a line for item, at storeID when given. Items stocked at
// several locations need an explicit store. An unqualified line on a legacy
// item with a home store is pinned to the home store, so approval still finds
// its location after the item splits. Lines added while counting is under way
// are snapshotted immediately.
func (a *StockAudit) AddItem(item *StockItem, storeID *uuid.UUID, now time.Time) (*AuditItem, error) {
	if a.Status != AuditPlanned && a.Status != AuditInProgress {
		return nil, shared.NewIllegalTransition("audit", string(a.Status), "add item to")
	}
	target, err := item.ResolveLocation(storeID)
	if err != nil {
		return nil, err
	}
	if target == nil && item.HomeStoreID != nil {
		home := *item.HomeStoreID
		target = &home
	}
	for i := range a.Items {
		if a.Items[i].StockItemID == item.ID && sameStore(a.Items[i].StoreID, target) {
			return nil, shared.NewValidationError("stock_item_id", "is already part of this audit")
		}
	}

	line := AuditItem{
		BaseEntity:  shared.NewBaseEntity(now),
		AuditID:     a.ID,
		StockItemID: item.ID,
		StoreID:     target,
		ItemName:    item.ItemName,
		SKU:         item.SKU,
		UnitCost:    item.UnitCost,
		Status:      AuditItemPending,
	}
	if target != nil {
		if loc := item.Location(*target); loc != nil {
			line.Aisle = loc.Aisle
		} else if !item.IsSplit() {
			line.Aisle = item.Aisle
		}
	}
	if a.Status == AuditInProgress {
		line.Snapshot(item)
	}
	a.Items = append(a.Items, line)
	a.TotalItemsPlanned = len(a.Items)
	a.Touch(now)
	return &a.Items[len(a.Items)-1], nil
}

// Start snapshots every line from the current ledger and opens counting.
// items maps stock item IDs to their loaded aggregates.
func (a *StockAudit) Start(actor string, items map[uuid.UUID]*StockItem, now time.Time) error {
	if !a.CanStart() {
		return shared.NewIllegalTransition("audit", string(a.Status), "start")
	}
	for i := range a.Items {
		item, ok := items[a.Items[i].StockItemID]
		if !ok {
			return shared.NewValidationError("items", fmt.Sprintf("stock item %s is missing", a.Items[i].StockItemID))
		}
		a.Items[i].Snapshot(item)
	}
	a.Status = AuditInProgress
	a.StartedBy = actor
	a.ActualStart = &now
	a.Touch(now)
	a.IncrementVersion()
	return nil
}

// CountItem records a physical count for a line
func (a *StockAudit) CountItem(lineID uuid.UUID, physical int64, reason, notes, actor string, now time.Time) (*AuditItem, error) {
	if a.Status != AuditInProgress {
		return nil, shared.NewIllegalTransition("audit", string(a.Status), "count items in")
	}
	line := a.Item(lineID)
	if line == nil {
		return nil, shared.ErrNotFound
	}
	if err := line.RecordCount(physical, reason, notes, actor, now); err != nil {
		return nil, err
	}
	a.recomputeSummary()
	a.Touch(now)
	return line, nil
}

// Complete closes counting and recomputes the summary counters
func (a *StockAudit) Complete(actor string, now time.Time) error {
	if !a.CanComplete() {
		from := string(a.Status)
		if a.Status == AuditInProgress {
			from += " with no items"
		}
		return shared.NewIllegalTransition("audit", from, "complete")
	}
	a.recomputeSummary()
	a.Status = AuditCompleted
	a.CompletedBy = actor
	a.ActualEnd = &now
	a.Touch(now)
	a.IncrementVersion()
	return nil
}

// Approve accepts a completed audit and returns the lines whose counts must be
// written back to the ledger. Lines already adjusted are never returned.
func (a *StockAudit) Approve(actor string, now time.Time) ([]*AuditItem, error) {
	if a.Status != AuditCompleted {
		return nil, shared.NewIllegalTransition("audit", string(a.Status), "approve")
	}
	a.Status = AuditApproved
	a.ApprovedBy = actor
	a.ApprovedAt = &now
	a.Touch(now)
	a.IncrementVersion()
	a.AddDomainEvent(NewAuditApprovedEvent(a, now))
	return a.PendingAdjustments(), nil
}

// PendingAdjustments lists counted lines with a variance not yet applied
func (a *StockAudit) PendingAdjustments() []*AuditItem {
	var out []*AuditItem
	for i := range a.Items {
		if a.Items[i].NeedsAdjustment() {
			out = append(out, &a.Items[i])
		}
	}
	return out
}

// Cancel abandons an audit that has not completed
func (a *StockAudit) Cancel(actor string, now time.Time) error {
	if !a.CanCancel() {
		return shared.NewIllegalTransition("audit", string(a.Status), "cancel")
	}
	a.Status = AuditCancelled
	a.CancelledBy = actor
	a.Touch(now)
	a.IncrementVersion()
	return nil
}

func (a *StockAudit) recomputeSummary() {
	counted, withVariance := 0, 0
	value := decimal.Zero
	for i := range a.Items {
		line := &a.Items[i]
		line.Recompute()
		if line.PhysicalCount == nil {
			continue
		}
		counted++
		if line.VarianceQuantity != 0 {
			withVariance++
			value = value.Add(line.UnitCost.Mul(decimal.NewFromInt(line.VarianceQuantity)))
		}
	}
	a.TotalItemsPlanned = len(a.Items)
	a.TotalItemsCounted = counted
	a.ItemsWithVariances = withVariance
	a.TotalVarianceValue = value.Round(2)
}

// Snapshot copies the ledger figures for the line's scope. A store-scoped line
// on a legacy item sees the legacy quantity wherever QuantityAt places it.
func (l *AuditItem) Snapshot(item *StockItem) {
	if l.StoreID != nil {
		l.SystemQuantity = item.QuantityAt(*l.StoreID)
	} else {
		l.SystemQuantity = item.TotalOnHand()
	}
	l.CommittedQuantity = item.CommittedQuantity()
	l.ReservedQuantity = item.ReservedQuantity()
	l.UnitCost = item.UnitCost
	l.Snapshotted = true
	l.Recompute()
}

// RecordCount stores a physical count; the count date is stamped on the first count
func (l *AuditItem) RecordCount(physical int64, reason, notes, actor string, now time.Time) error {
	if physical < 0 {
		return shared.NewValidationError("physical_count", "must not be negative")
	}
	if l.AdjustmentApplied {
		return shared.NewIllegalTransition("audit item", "adjusted", "recount")
	}
	count := physical
	l.PhysicalCount = &count
	l.VarianceReason = reason
	l.VarianceNotes = notes
	l.CountedBy = actor
	if l.CountDate == nil {
		l.CountDate = &now
	}
	l.Touch(now)
	l.Recompute()
	return nil
}

// Recompute derives the variance from the count. It runs on every save.
func (l *AuditItem) Recompute() {
	if l.PhysicalCount == nil {
		return
	}
	l.VarianceQuantity = *l.PhysicalCount - l.SystemQuantity
	if l.Status == AuditItemVerified {
		return
	}
	if l.VarianceQuantity != 0 {
		l.Status = AuditItemDiscrepancy
	} else {
		l.Status = AuditItemCounted
	}
}

// NeedsAdjustment is true for a counted line with an unapplied variance
func (l *AuditItem) NeedsAdjustment() bool {
	return l.PhysicalCount != nil && l.VarianceQuantity != 0 && !l.AdjustmentApplied
}

// MarkAdjusted flags the line as written back to the ledger
func (l *AuditItem) MarkAdjusted(now time.Time) {
	l.AdjustmentApplied = true
	l.AdjustmentDate = &now
	l.Touch(now)
}

func sameStore(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
