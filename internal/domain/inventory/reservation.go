package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
)

// ReservationStatus is the stored status of a reservation
type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationExpired   ReservationStatus = "expired"
	ReservationFulfilled ReservationStatus = "fulfilled"
	ReservationCancelled ReservationStatus = "cancelled"
)

// IsTerminal reports whether no further transition is possible
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationFulfilled || s == ReservationCancelled
}

// ReservationType is why stock is being held
type ReservationType string

const (
	ReservationQuote        ReservationType = "quote"
	ReservationHold         ReservationType = "hold"
	ReservationInspection   ReservationType = "inspection"
	ReservationTransferPrep ReservationType = "transfer_prep"
	ReservationMaintenance  ReservationType = "maintenance"
	ReservationOther        ReservationType = "other"
)

// IsValid reports whether the type is known
func (t ReservationType) IsValid() bool {
	switch t {
	case ReservationQuote, ReservationHold, ReservationInspection, ReservationTransferPrep, ReservationMaintenance, ReservationOther:
		return true
	}
	return false
}

// Reservation is a time-bounded hold without a deposit.
//
// The stored Status can lag behind time: an active reservation whose
// ExpiresAt has passed is effectively expired before any sweep stores that.
// Every decision about whether it still holds stock goes through
// EffectiveStatus.
type Reservation struct {
	shared.BaseEntity
	StockItemID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"stock_item_id"`
	Quantity        int64             `gorm:"not null" json:"quantity"`
	Type            ReservationType   `gorm:"column:reservation_type;type:varchar(20);not null" json:"reservation_type"`
	Status          ReservationStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ExpiresAt       time.Time         `gorm:"not null;index" json:"expires_at"`
	Customer        CustomerInfo      `gorm:"embedded" json:"customer"`
	ReferenceNumber string            `gorm:"type:varchar(100)" json:"reference_number"`
	Reason          string            `gorm:"type:text" json:"reason"`
	ReservedBy      string            `gorm:"type:varchar(100)" json:"reserved_by"`
	FulfilledBy     string            `gorm:"type:varchar(100)" json:"fulfilled_by"`
	FulfilledAt     *time.Time        `json:"fulfilled_at,omitempty"`
	CancelledBy     string            `gorm:"type:varchar(100)" json:"cancelled_by"`
	CancelledAt     *time.Time        `json:"cancelled_at,omitempty"`
}

// TableName returns the table name for GORM
func (Reservation) TableName() string {
	return "reservations"
}

// NewReservationInput carries the fields needed to reserve stock
type NewReservationInput struct {
	StockItemID     uuid.UUID
	Quantity        int64
	Type            ReservationType
	ExpiresAt       time.Time
	Customer        CustomerInfo
	ReferenceNumber string
	Reason          string
	ReservedBy      string
}

// NewReservation validates input-level rules. Availability is checked by the
// caller against the locked item.
func NewReservation(in NewReservationInput, now time.Time) (*Reservation, error) {
	if in.Quantity <= 0 {
		return nil, shared.NewValidationError("quantity", "must be greater than zero")
	}
	if in.Type == "" {
		in.Type = ReservationHold
	}
	if !in.Type.IsValid() {
		return nil, shared.NewValidationError("reservation_type", fmt.Sprintf("unknown type %q", in.Type))
	}
	if !in.ExpiresAt.After(now) {
		return nil, shared.NewValidationError("expires_at", "must be in the future")
	}
	return &Reservation{
		BaseEntity:      shared.NewBaseEntity(now),
		StockItemID:     in.StockItemID,
		Quantity:        in.Quantity,
		Type:            in.Type,
		Status:          ReservationActive,
		ExpiresAt:       in.ExpiresAt,
		Customer:        in.Customer,
		ReferenceNumber: in.ReferenceNumber,
		Reason:          in.Reason,
		ReservedBy:      in.ReservedBy,
	}, nil
}

// EffectiveStatus derives the status at now without mutating the record
func (r *Reservation) EffectiveStatus(now time.Time) ReservationStatus {
	if r.Status == ReservationActive && !now.Before(r.ExpiresAt) {
		return ReservationExpired
	}
	return r.Status
}

// IsExpired reports whether the reservation has lapsed, swept or not
func (r *Reservation) IsExpired(now time.Time) bool {
	return r.EffectiveStatus(now) == ReservationExpired
}

// HoldsStock reports whether the quantity counts toward reserved stock
func (r *Reservation) HoldsStock(now time.Time) bool {
	return r.EffectiveStatus(now) == ReservationActive
}

// CanBeFulfilled requires a stored active status, regardless of expiry
func (r *Reservation) CanBeFulfilled() bool {
	return r.Status == ReservationActive
}

// CanBeCancelled is true for active and expired reservations
func (r *Reservation) CanBeCancelled() bool {
	return r.Status == ReservationActive || r.Status == ReservationExpired
}

// DaysUntilExpiry is the whole days left, zero once not active
func (r *Reservation) DaysUntilExpiry(now time.Time) int {
	if r.EffectiveStatus(now) != ReservationActive {
		return 0
	}
	return int(r.ExpiresAt.Sub(now) / (24 * time.Hour))
}

// Fulfill closes an active reservation
func (r *Reservation) Fulfill(actor string, now time.Time) error {
	if !r.CanBeFulfilled() {
		return shared.NewIllegalTransition("reservation", string(r.Status), "fulfill")
	}
	r.Status = ReservationFulfilled
	r.FulfilledBy = actor
	r.FulfilledAt = &now
	r.Touch(now)
	return nil
}

// Cancel closes an active or expired reservation
func (r *Reservation) Cancel(actor string, now time.Time) error {
	if !r.CanBeCancelled() {
		return shared.NewIllegalTransition("reservation", string(r.Status), "cancel")
	}
	r.Status = ReservationCancelled
	r.CancelledBy = actor
	r.CancelledAt = &now
	r.Touch(now)
	return nil
}

// Expire stores the expired status for a lapsed active reservation
func (r *Reservation) Expire(now time.Time) error {
	if r.Status != ReservationActive || !r.IsExpired(now) {
		return shared.NewIllegalTransition("reservation", string(r.EffectiveStatus(now)), "expire")
	}
	r.Status = ReservationExpired
	r.Touch(now)
	return nil
}
