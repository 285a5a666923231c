package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/shared"
)

// CommitmentOutcome records how a commitment left the open state
type CommitmentOutcome string

const (
	OutcomeOpen      CommitmentOutcome = ""
	OutcomeFulfilled CommitmentOutcome = "fulfilled"
	OutcomeReleased  CommitmentOutcome = "released"
)

// CustomerInfo identifies who a hold is for
type CustomerInfo struct {
	Name        string `gorm:"column:customer_name;type:varchar(200)" json:"customer_name"`
	Phone       string `gorm:"column:customer_phone;type:varchar(50)" json:"customer_phone"`
	Email       string `gorm:"column:customer_email;type:varchar(200)" json:"customer_email"`
	OrderNumber string `gorm:"column:customer_order_number;type:varchar(100)" json:"customer_order_number"`
}

// Commitment is a deposit-backed hold. It counts against availability until
// it is fulfilled (stock issued) or released (hold dropped, no stock moves).
// Deposit refunds are handled outside the system.
type Commitment struct {
	shared.BaseEntity
	StockItemID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"stock_item_id"`
	StoreID       *uuid.UUID        `gorm:"type:uuid" json:"store_id,omitempty"`
	Quantity      int64             `gorm:"not null" json:"quantity"`
	DepositAmount decimal.Decimal   `gorm:"type:decimal(18,2);not null" json:"deposit_amount"`
	Customer      CustomerInfo      `gorm:"embedded" json:"customer"`
	Notes         string            `gorm:"type:text" json:"notes"`
	CommittedBy   string            `gorm:"type:varchar(100)" json:"committed_by"`
	IsFulfilled   bool              `gorm:"not null;index" json:"is_fulfilled"`
	Outcome       CommitmentOutcome `gorm:"type:varchar(20)" json:"outcome"`
	FulfilledAt   *time.Time        `json:"fulfilled_at,omitempty"`
	FulfilledBy   string            `gorm:"type:varchar(100)" json:"fulfilled_by"`
}

// TableName returns the table name for GORM
func (Commitment) TableName() string {
	return "commitments"
}

// NewCommitment validates input-level rules. Availability is checked by the
// caller against the locked item.
func NewCommitment(itemID uuid.UUID, qty int64, deposit decimal.Decimal, customer CustomerInfo, storeID *uuid.UUID, notes, actor string, now time.Time) (*Commitment, error) {
	if qty <= 0 {
		return nil, shared.NewValidationError("quantity", "must be greater than zero")
	}
	if deposit.IsNegative() {
		return nil, shared.NewValidationError("deposit_amount", "must not be negative")
	}
	if customer.Name == "" {
		return nil, shared.NewValidationError("customer_name", "is required")
	}
	return &Commitment{
		BaseEntity:    shared.NewBaseEntity(now),
		StockItemID:   itemID,
		StoreID:       storeID,
		Quantity:      qty,
		DepositAmount: deposit,
		Customer:      customer,
		Notes:         notes,
		CommittedBy:   actor,
	}, nil
}

// IsOpen reports whether the commitment still holds stock
func (c *Commitment) IsOpen() bool {
	return !c.IsFulfilled
}

// MarkFulfilled closes the commitment after its stock has been issued
func (c *Commitment) MarkFulfilled(actor string, now time.Time) error {
	return c.close(OutcomeFulfilled, "fulfill", actor, now)
}

// Release drops the hold without issuing stock
func (c *Commitment) Release(actor string, now time.Time) error {
	return c.close(OutcomeReleased, "release", actor, now)
}

func (c *Commitment) close(outcome CommitmentOutcome, action, actor string, now time.Time) error {
	if c.IsFulfilled {
		return shared.NewIllegalTransition("commitment", string(c.Outcome), action)
	}
	c.IsFulfilled = true
	c.Outcome = outcome
	c.FulfilledAt = &now
	c.FulfilledBy = actor
	c.Touch(now)
	return nil
}
