package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/inventory"
)

// StoreResponse represents a store in API responses
type StoreResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Designation string    `json:"designation"`
	Address     string    `json:"address"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateStoreRequest creates a store or warehouse
type CreateStoreRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Code        string `json:"code" binding:"required,max=20"`
	Designation string `json:"designation" binding:"omitempty,oneof=store warehouse"`
	Address     string `json:"address" binding:"max=500"`
}

// ToStoreResponse converts a domain store
func ToStoreResponse(s *inventory.Store) StoreResponse {
	return StoreResponse{
		ID:          s.ID,
		Name:        s.Name,
		Code:        s.Code,
		Designation: string(s.Designation),
		Address:     s.Address,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
	}
}

// LocationResponse is one location entry of an item
type LocationResponse struct {
	ID        uuid.UUID `json:"id"`
	StoreID   uuid.UUID `json:"store_id"`
	Quantity  int64     `json:"quantity"`
	Aisle     string    `json:"aisle"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StockItemResponse is an item with its derived quantities
type StockItemResponse struct {
	ID                uuid.UUID          `json:"id"`
	SKU               string             `json:"sku"`
	ItemName          string             `json:"item_name"`
	Category          string             `json:"category"`
	Condition         string             `json:"condition"`
	Quantity          int64              `json:"quantity"`
	TotalOnHand       int64              `json:"total_on_hand"`
	CommittedQuantity int64              `json:"committed_quantity"`
	ReservedQuantity  int64              `json:"reserved_quantity"`
	AvailableForSale  int64              `json:"available_for_sale"`
	ReOrder           int64              `json:"re_order"`
	StockLevel        string             `json:"stock_level"`
	IsLowStock        bool               `json:"is_low_stock"`
	IsSplit           bool               `json:"is_split"`
	UnitCost          decimal.Decimal    `json:"unit_cost"`
	HomeStoreID       *uuid.UUID         `json:"home_store_id,omitempty"`
	Aisle             string             `json:"aisle"`
	ReceiveQuantity   int64              `json:"receive_quantity"`
	IssueQuantity     int64              `json:"issue_quantity"`
	ReceivedBy        string             `json:"received_by"`
	IssuedBy          string             `json:"issued_by"`
	CreatedBy         string             `json:"created_by"`
	Note              string             `json:"note"`
	Locations         []LocationResponse `json:"locations"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	Version           int                `json:"version"`
}

// ToStockItemResponse converts an item whose holds have been attached
func ToStockItemResponse(item *inventory.StockItem) StockItemResponse {
	locations := make([]LocationResponse, 0, len(item.Locations))
	for _, loc := range item.Locations {
		locations = append(locations, ToLocationResponse(&loc))
	}
	return StockItemResponse{
		ID:                item.ID,
		SKU:               item.SKU,
		ItemName:          item.ItemName,
		Category:          item.Category,
		Condition:         string(item.Condition),
		Quantity:          item.Quantity,
		TotalOnHand:       item.TotalOnHand(),
		CommittedQuantity: item.CommittedQuantity(),
		ReservedQuantity:  item.ReservedQuantity(),
		AvailableForSale:  item.AvailableForSale(),
		ReOrder:           item.ReOrder,
		StockLevel:        string(item.Level()),
		IsLowStock:        item.IsLowStock(),
		IsSplit:           item.IsSplit(),
		UnitCost:          item.UnitCost,
		HomeStoreID:       item.HomeStoreID,
		Aisle:             item.Aisle,
		ReceiveQuantity:   item.ReceiveQuantity,
		IssueQuantity:     item.IssueQuantity,
		ReceivedBy:        item.ReceivedBy,
		IssuedBy:          item.IssuedBy,
		CreatedBy:         item.CreatedBy,
		Note:              item.Note,
		Locations:         locations,
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
		Version:           item.Version,
	}
}

// ToLocationResponse converts a location entry
func ToLocationResponse(loc *inventory.LocationEntry) LocationResponse {
	return LocationResponse{
		ID:        loc.ID,
		StoreID:   loc.StoreID,
		Quantity:  loc.Quantity,
		Aisle:     loc.Aisle,
		UpdatedAt: loc.UpdatedAt,
	}
}

// ItemListFilter represents filter options for item lists
type ItemListFilter struct {
	Search    string `form:"search"`
	Category  string `form:"category"`
	Condition string `form:"condition" binding:"omitempty,oneof=new demo_unit bstock open_box refurbished"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string `form:"order_by"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CreateItemRequest creates an item, optionally with opening stock
type CreateItemRequest struct {
	SKU             string          `json:"sku" binding:"max=50"`
	ItemName        string          `json:"item_name" binding:"required,max=200"`
	Category        string          `json:"category" binding:"max=100"`
	Condition       string          `json:"condition" binding:"omitempty,oneof=new demo_unit bstock open_box refurbished"`
	ReOrder         int64           `json:"re_order" binding:"min=0"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	HomeStoreID     *uuid.UUID      `json:"home_store_id"`
	Aisle           string          `json:"aisle" binding:"omitempty,aisle"`
	InitialQuantity int64           `json:"initial_quantity" binding:"min=0"`
	Actor           string          `json:"-"`
}

// UpdateItemRequest changes descriptive fields. Quantity is the legacy
// direct edit and is refused for items held at locations.
type UpdateItemRequest struct {
	ItemName  string          `json:"item_name" binding:"required,max=200"`
	Category  string          `json:"category" binding:"max=100"`
	Condition string          `json:"condition" binding:"required,oneof=new demo_unit bstock open_box refurbished"`
	ReOrder   int64           `json:"re_order" binding:"min=0"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Quantity  *int64          `json:"quantity" binding:"omitempty,min=0"`
	Note      string          `json:"note"`
	Actor     string          `json:"-"`
}

// IssueRequest removes stock from an item
type IssueRequest struct {
	Quantity   int64      `json:"quantity" binding:"required,min=1"`
	LocationID *uuid.UUID `json:"location_id"`
	Note       string     `json:"note"`
	Actor      string     `json:"-"`
}

// ReceiveRequest adds stock to an item
type ReceiveRequest struct {
	Quantity   int64      `json:"quantity" binding:"required,min=1"`
	LocationID *uuid.UUID `json:"location_id"`
	Aisle      string     `json:"aisle" binding:"omitempty,aisle"`
	Note       string     `json:"note"`
	Actor      string     `json:"-"`
}

// UpdateAisleRequest patches the aisle of one location entry
type UpdateAisleRequest struct {
	Aisle string `json:"aisle" binding:"omitempty,aisle"`
}

// HistoryEntryResponse is one journal entry
type HistoryEntryResponse struct {
	ID              uuid.UUID  `json:"id"`
	StockItemID     uuid.UUID  `json:"stock_item_id"`
	ItemName        string     `json:"item_name"`
	SKU             string     `json:"sku"`
	Category        string     `json:"category"`
	Kind            string     `json:"kind"`
	Quantity        int64      `json:"quantity"`
	ReceiveQuantity int64      `json:"receive_quantity"`
	IssueQuantity   int64      `json:"issue_quantity"`
	StoreID         *uuid.UUID `json:"store_id,omitempty"`
	Reference       string     `json:"reference,omitempty"`
	Actor           string     `json:"actor"`
	Note            string     `json:"note"`
	Timestamp       time.Time  `json:"timestamp"`
}

// ToHistoryEntryResponse converts a journal entry
func ToHistoryEntryResponse(e *inventory.HistoryEntry) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:              e.ID,
		StockItemID:     e.StockItemID,
		ItemName:        e.ItemName,
		SKU:             e.SKU,
		Category:        e.Category,
		Kind:            string(e.Kind),
		Quantity:        e.Quantity,
		ReceiveQuantity: e.ReceiveQuantity,
		IssueQuantity:   e.IssueQuantity,
		StoreID:         e.StoreID,
		Reference:       e.Reference,
		Actor:           e.Actor,
		Note:            e.Note,
		Timestamp:       e.Timestamp,
	}
}

// HistoryFilter represents filter options for history lists
type HistoryFilter struct {
	Kind     string `form:"kind"`
	Actor    string `form:"actor"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ConsistencyReport lists every split item whose projection has drifted
type ConsistencyReport struct {
	CheckedItems int                       `json:"checked_items"`
	Violations   []ConsistencyViolationDTO `json:"violations"`
	CheckedAt    time.Time                 `json:"checked_at"`
}

// ConsistencyViolationDTO describes one drifted item
type ConsistencyViolationDTO struct {
	StockItemID uuid.UUID `json:"stock_item_id"`
	SKU         string    `json:"sku"`
	Recorded    int64     `json:"recorded"`
	LocationSum int64     `json:"location_sum"`
}

// CustomerDTO carries customer details on holds and transfers
type CustomerDTO struct {
	Name        string `json:"customer_name" binding:"max=200"`
	Phone       string `json:"customer_phone" binding:"max=50"`
	Email       string `json:"customer_email" binding:"omitempty,email"`
	OrderNumber string `json:"order_number" binding:"max=50"`
}

func (c CustomerDTO) toDomain() inventory.CustomerInfo {
	return inventory.CustomerInfo{Name: c.Name, Phone: c.Phone, Email: c.Email, OrderNumber: c.OrderNumber}
}

func toCustomerDTO(c inventory.CustomerInfo) CustomerDTO {
	return CustomerDTO{Name: c.Name, Phone: c.Phone, Email: c.Email, OrderNumber: c.OrderNumber}
}

// CommitRequest commits stock to a customer order
type CommitRequest struct {
	StockItemID   uuid.UUID       `json:"stock_item_id" binding:"required"`
	Quantity      int64           `json:"quantity" binding:"required,min=1"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	Customer      CustomerDTO     `json:"customer"`
	LocationID    *uuid.UUID      `json:"location_id"`
	Notes         string          `json:"notes"`
	Actor         string          `json:"-"`
}

// FulfilRequest closes a commitment by issuing its stock
type FulfilRequest struct {
	LocationID *uuid.UUID `json:"location_id"`
	Actor      string     `json:"-"`
}

// CommitmentResponse represents a commitment in API responses
type CommitmentResponse struct {
	ID            uuid.UUID       `json:"id"`
	StockItemID   uuid.UUID       `json:"stock_item_id"`
	LocationID    *uuid.UUID      `json:"location_id,omitempty"`
	Quantity      int64           `json:"quantity"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	Customer      CustomerDTO     `json:"customer"`
	Notes         string          `json:"notes"`
	CommittedBy   string          `json:"committed_by"`
	IsFulfilled   bool            `json:"is_fulfilled"`
	Outcome       string          `json:"outcome,omitempty"`
	FulfilledAt   *time.Time      `json:"fulfilled_at,omitempty"`
	FulfilledBy   string          `json:"fulfilled_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToCommitmentResponse converts a commitment
func ToCommitmentResponse(c *inventory.Commitment) CommitmentResponse {
	return CommitmentResponse{
		ID:            c.ID,
		StockItemID:   c.StockItemID,
		LocationID:    c.StoreID,
		Quantity:      c.Quantity,
		DepositAmount: c.DepositAmount,
		Customer:      toCustomerDTO(c.Customer),
		Notes:         c.Notes,
		CommittedBy:   c.CommittedBy,
		IsFulfilled:   c.IsFulfilled,
		Outcome:       string(c.Outcome),
		FulfilledAt:   c.FulfilledAt,
		FulfilledBy:   c.FulfilledBy,
		CreatedAt:     c.CreatedAt,
	}
}

// CommitmentFilter represents filter options for commitment lists
type CommitmentFilter struct {
	StockItemID *uuid.UUID `form:"-"`
	IsFulfilled *bool      `form:"is_fulfilled"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ReserveRequest places a temporary hold
type ReserveRequest struct {
	StockItemID     uuid.UUID   `json:"stock_item_id" binding:"required"`
	Quantity        int64       `json:"quantity" binding:"required,min=1"`
	ReservationType string      `json:"reservation_type" binding:"omitempty,oneof=quote hold inspection transfer_prep maintenance other"`
	DurationDays    int         `json:"duration_days" binding:"omitempty,min=1,max=365"`
	Customer        CustomerDTO `json:"customer"`
	ReferenceNumber string      `json:"reference_number" binding:"max=50"`
	Reason          string      `json:"reason"`
	Actor           string      `json:"-"`
}

// ReservationResponse represents a reservation with its status at read time
type ReservationResponse struct {
	ID              uuid.UUID   `json:"id"`
	StockItemID     uuid.UUID   `json:"stock_item_id"`
	Quantity        int64       `json:"quantity"`
	ReservationType string      `json:"reservation_type"`
	Status          string      `json:"status"`
	ExpiresAt       time.Time   `json:"expires_at"`
	DaysUntilExpiry int         `json:"days_until_expiry"`
	Customer        CustomerDTO `json:"customer"`
	ReferenceNumber string      `json:"reference_number"`
	Reason          string      `json:"reason"`
	ReservedBy      string      `json:"reserved_by"`
	FulfilledBy     string      `json:"fulfilled_by,omitempty"`
	FulfilledAt     *time.Time  `json:"fulfilled_at,omitempty"`
	CancelledBy     string      `json:"cancelled_by,omitempty"`
	CancelledAt     *time.Time  `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// ToReservationResponse converts a reservation, deriving lazy expiry at now
func ToReservationResponse(r *inventory.Reservation, now time.Time) ReservationResponse {
	return ReservationResponse{
		ID:              r.ID,
		StockItemID:     r.StockItemID,
		Quantity:        r.Quantity,
		ReservationType: string(r.Type),
		Status:          string(r.EffectiveStatus(now)),
		ExpiresAt:       r.ExpiresAt,
		DaysUntilExpiry: r.DaysUntilExpiry(now),
		Customer:        toCustomerDTO(r.Customer),
		ReferenceNumber: r.ReferenceNumber,
		Reason:          r.Reason,
		ReservedBy:      r.ReservedBy,
		FulfilledBy:     r.FulfilledBy,
		FulfilledAt:     r.FulfilledAt,
		CancelledBy:     r.CancelledBy,
		CancelledAt:     r.CancelledAt,
		CreatedAt:       r.CreatedAt,
	}
}

// ReservationFilter represents filter options for reservation lists
type ReservationFilter struct {
	StockItemID     *uuid.UUID `form:"-"`
	ReservationType string     `form:"reservation_type"`
	Page            int        `form:"page" binding:"omitempty,min=1"`
	PageSize        int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ExpiryStats summarizes one sweep of lapsed reservations
type ExpiryStats struct {
	TotalExpired int       `json:"total_expired"`
	Expired      int       `json:"expired"`
	Failed       int       `json:"failed"`
	ProcessedAt  time.Time `json:"processed_at"`
}

// CreateTransferRequest starts a transfer between two stores
type CreateTransferRequest struct {
	StockItemID    uuid.UUID   `json:"stock_item_id" binding:"required"`
	FromLocationID uuid.UUID   `json:"from_location_id" binding:"required"`
	ToLocationID   uuid.UUID   `json:"to_location_id" binding:"required"`
	Quantity       int64       `json:"quantity" binding:"required,min=1"`
	TransferType   string      `json:"transfer_type" binding:"omitempty,oneof=restock customer_collection general"`
	Reason         string      `json:"transfer_reason"`
	Customer       CustomerDTO `json:"customer"`
	Notes          string      `json:"notes"`
	Actor          string      `json:"-"`
}

// TransferResponse represents a transfer in API responses
type TransferResponse struct {
	ID             uuid.UUID   `json:"id"`
	StockItemID    uuid.UUID   `json:"stock_item_id"`
	FromLocationID uuid.UUID   `json:"from_location_id"`
	ToLocationID   uuid.UUID   `json:"to_location_id"`
	Quantity       int64       `json:"quantity"`
	TransferType   string      `json:"transfer_type"`
	Status         string      `json:"status"`
	Reason         string      `json:"transfer_reason"`
	Customer       CustomerDTO `json:"customer"`
	Notes          string      `json:"notes"`
	CreatedBy      string      `json:"created_by"`
	ApprovedBy     string      `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time  `json:"approved_at,omitempty"`
	CompletedBy    string      `json:"completed_by,omitempty"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
	CollectedBy    string      `json:"collected_by,omitempty"`
	CollectedAt    *time.Time  `json:"collected_at,omitempty"`
	CancelledBy    string      `json:"cancelled_by,omitempty"`
	CancelledAt    *time.Time  `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	Version        int         `json:"version"`
}

// ToTransferResponse converts a transfer
func ToTransferResponse(t *inventory.Transfer) TransferResponse {
	return TransferResponse{
		ID:             t.ID,
		StockItemID:    t.StockItemID,
		FromLocationID: t.FromStoreID,
		ToLocationID:   t.ToStoreID,
		Quantity:       t.Quantity,
		TransferType:   string(t.Type),
		Status:         string(t.Status),
		Reason:         t.Reason,
		Customer:       toCustomerDTO(t.Customer),
		Notes:          t.Notes,
		CreatedBy:      t.CreatedBy,
		ApprovedBy:     t.ApprovedBy,
		ApprovedAt:     t.ApprovedAt,
		CompletedBy:    t.CompletedBy,
		CompletedAt:    t.CompletedAt,
		CollectedBy:    t.CollectedBy,
		CollectedAt:    t.CollectedAt,
		CancelledBy:    t.CancelledBy,
		CancelledAt:    t.CancelledAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		Version:        t.Version,
	}
}

// TransferFilter represents filter options for transfer lists
type TransferFilter struct {
	StockItemID  *uuid.UUID `form:"-"`
	Status       string     `form:"status"`
	TransferType string     `form:"transfer_type"`
	Page         int        `form:"page" binding:"omitempty,min=1"`
	PageSize     int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CreateAuditRequest plans a stocktake
type CreateAuditRequest struct {
	Title        string      `json:"title" binding:"required,max=200"`
	Description  string      `json:"description"`
	AuditType    string      `json:"audit_type" binding:"omitempty,oneof=full partial cycle location category spot_check"`
	PlannedStart *time.Time  `json:"planned_start"`
	PlannedEnd   *time.Time  `json:"planned_end"`
	Items        []AuditLine `json:"items" binding:"omitempty,dive"`
	Actor        string      `json:"-"`
}

// AuditLine names an item, and optionally a location, to count
type AuditLine struct {
	StockItemID uuid.UUID  `json:"stock_item_id" binding:"required"`
	LocationID  *uuid.UUID `json:"location_id"`
}

// CountItemRequest records a physical count
type CountItemRequest struct {
	PhysicalCount  *int64 `json:"physical_count" binding:"required,min=0"`
	VarianceReason string `json:"variance_reason" binding:"max=100"`
	VarianceNotes  string `json:"variance_notes"`
	Actor          string `json:"-"`
}

// AuditResponse represents an audit in API responses
type AuditResponse struct {
	ID                 uuid.UUID           `json:"id"`
	Reference          string              `json:"reference"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	AuditType          string              `json:"audit_type"`
	Status             string              `json:"status"`
	PlannedStart       *time.Time          `json:"planned_start,omitempty"`
	PlannedEnd         *time.Time          `json:"planned_end,omitempty"`
	ActualStart        *time.Time          `json:"actual_start,omitempty"`
	ActualEnd          *time.Time          `json:"actual_end,omitempty"`
	CreatedBy          string              `json:"created_by"`
	ApprovedBy         string              `json:"approved_by,omitempty"`
	ApprovedAt         *time.Time          `json:"approved_at,omitempty"`
	TotalItemsPlanned  int                 `json:"total_items_planned"`
	TotalItemsCounted  int                 `json:"total_items_counted"`
	ItemsWithVariances int                 `json:"items_with_variances"`
	TotalVarianceValue decimal.Decimal     `json:"total_variance_value"`
	ProgressPercentage float64             `json:"progress_percentage"`
	Items              []AuditItemResponse `json:"items,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	Version            int                 `json:"version"`
}

// AuditItemResponse is one audit line
type AuditItemResponse struct {
	ID                uuid.UUID  `json:"id"`
	StockItemID       uuid.UUID  `json:"stock_item_id"`
	LocationID        *uuid.UUID `json:"location_id,omitempty"`
	Aisle             string     `json:"aisle"`
	ItemName          string     `json:"item_name"`
	SKU               string     `json:"sku"`
	SystemQuantity    int64      `json:"system_quantity"`
	CommittedQuantity int64      `json:"committed_quantity"`
	ReservedQuantity  int64      `json:"reserved_quantity"`
	PhysicalCount     *int64     `json:"physical_count,omitempty"`
	VarianceQuantity  int64      `json:"variance_quantity"`
	VarianceReason    string     `json:"variance_reason,omitempty"`
	VarianceNotes     string     `json:"variance_notes,omitempty"`
	Status            string     `json:"status"`
	CountedBy         string     `json:"counted_by,omitempty"`
	CountDate         *time.Time `json:"count_date,omitempty"`
	AdjustmentApplied bool       `json:"adjustment_applied"`
	AdjustmentDate    *time.Time `json:"adjustment_date,omitempty"`
}

// ToAuditResponse converts an audit; lines are included when loaded
func ToAuditResponse(a *inventory.StockAudit) AuditResponse {
	items := make([]AuditItemResponse, 0, len(a.Items))
	for i := range a.Items {
		items = append(items, ToAuditItemResponse(&a.Items[i]))
	}
	return AuditResponse{
		ID:                 a.ID,
		Reference:          a.Reference,
		Title:              a.Title,
		Description:        a.Description,
		AuditType:          string(a.Type),
		Status:             string(a.Status),
		PlannedStart:       a.PlannedStart,
		PlannedEnd:         a.PlannedEnd,
		ActualStart:        a.ActualStart,
		ActualEnd:          a.ActualEnd,
		CreatedBy:          a.CreatedBy,
		ApprovedBy:         a.ApprovedBy,
		ApprovedAt:         a.ApprovedAt,
		TotalItemsPlanned:  a.TotalItemsPlanned,
		TotalItemsCounted:  a.TotalItemsCounted,
		ItemsWithVariances: a.ItemsWithVariances,
		TotalVarianceValue: a.TotalVarianceValue,
		ProgressPercentage: a.ProgressPercentage(),
		Items:              items,
		CreatedAt:          a.CreatedAt,
		Version:            a.Version,
	}
}

// ToAuditItemResponse converts an audit line
func ToAuditItemResponse(l *inventory.AuditItem) AuditItemResponse {
	return AuditItemResponse{
		ID:                l.ID,
		StockItemID:       l.StockItemID,
		LocationID:        l.StoreID,
		Aisle:             l.Aisle,
		ItemName:          l.ItemName,
		SKU:               l.SKU,
		SystemQuantity:    l.SystemQuantity,
		CommittedQuantity: l.CommittedQuantity,
		ReservedQuantity:  l.ReservedQuantity,
		PhysicalCount:     l.PhysicalCount,
		VarianceQuantity:  l.VarianceQuantity,
		VarianceReason:    l.VarianceReason,
		VarianceNotes:     l.VarianceNotes,
		Status:            string(l.Status),
		CountedBy:         l.CountedBy,
		CountDate:         l.CountDate,
		AdjustmentApplied: l.AdjustmentApplied,
		AdjustmentDate:    l.AdjustmentDate,
	}
}

// AuditFilter represents filter options for audit lists
type AuditFilter struct {
	Status    string `form:"status"`
	AuditType string `form:"audit_type"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// PageRequest is a bare page selector
type PageRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}
