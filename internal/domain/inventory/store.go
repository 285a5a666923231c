package inventory

import (
	"strings"
	"time"

	"github.com/stockledger/backend/internal/domain/shared"
)

// StoreDesignation distinguishes retail stores from warehouses
type StoreDesignation string

const (
	DesignationStore     StoreDesignation = "store"
	DesignationWarehouse StoreDesignation = "warehouse"
)

// IsValid reports whether the designation is known
func (d StoreDesignation) IsValid() bool {
	return d == DesignationStore || d == DesignationWarehouse
}

// Store is a physical place that can hold stock
type Store struct {
	shared.BaseEntity
	Name        string           `gorm:"type:varchar(100);not null" json:"name"`
	Code        string           `gorm:"type:varchar(20);not null;uniqueIndex" json:"code"`
	Designation StoreDesignation `gorm:"type:varchar(20);not null" json:"designation"`
	Address     string           `gorm:"type:varchar(255)" json:"address"`
	IsActive    bool             `gorm:"not null" json:"is_active"`
}

// TableName returns the table name for GORM
func (Store) TableName() string {
	return "stores"
}

// NewStore creates an active store
func NewStore(name, code string, designation StoreDesignation, address string, now time.Time) (*Store, error) {
	name = strings.TrimSpace(name)
	code = strings.ToUpper(strings.TrimSpace(code))
	if name == "" {
		return nil, shared.NewValidationError("name", "is required")
	}
	if code == "" {
		return nil, shared.NewValidationError("code", "is required")
	}
	if designation == "" {
		designation = DesignationStore
	}
	if !designation.IsValid() {
		return nil, shared.NewValidationError("designation", "must be store or warehouse")
	}
	return &Store{
		BaseEntity:  shared.NewBaseEntity(now),
		Name:        name,
		Code:        code,
		Designation: designation,
		Address:     address,
		IsActive:    true,
	}, nil
}

// Deactivate closes the store to incoming stock. Stock already held there
// can still be issued or transferred out.
func (s *Store) Deactivate(now time.Time) error {
	if !s.IsActive {
		return shared.NewIllegalTransition("store", "inactive", "deactivate")
	}
	s.IsActive = false
	s.Touch(now)
	return nil
}

// CheckAcceptsStock fails with a ValidationError on field when the store is
// closed to incoming stock
func (s *Store) CheckAcceptsStock(field string) error {
	if !s.IsActive {
		return shared.NewValidationError(field, "store is inactive")
	}
	return nil
}
