package shared

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error codes shared by the domain and the HTTP layer.
const (
	CodeNotFound             = "NOT_FOUND"
	CodeAlreadyExists        = "ALREADY_EXISTS"
	CodeValidation           = "VALIDATION_ERROR"
	CodeConcurrencyConflict  = "CONCURRENCY_CONFLICT"
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeInsufficientStock    = "INSUFFICIENT_STOCK"
	CodeConsistencyViolation = "CONSISTENCY_VIOLATION"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped cause, if any
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code
func (e *DomainError) Is(target error) bool {
	var de *DomainError
	if errors.As(target, &de) {
		return de.Code == e.Code
	}
	return false
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorWithCause creates a domain error wrapping an underlying cause
func NewDomainErrorWithCause(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     cause,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
)

// InsufficientStockError is returned when a decrement exceeds what is on hand
// at the targeted location, or what is available for sale on the item.
type InsufficientStockError struct {
	ItemID    uuid.UUID
	StoreID   *uuid.UUID
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	if e.StoreID != nil {
		return fmt.Sprintf("insufficient stock at location %s: requested %d, available %d", e.StoreID, e.Requested, e.Available)
	}
	return fmt.Sprintf("insufficient stock: requested %d, available %d", e.Requested, e.Available)
}

// Is matches ErrInsufficientStock style comparisons by code
func (e *InsufficientStockError) Is(target error) bool {
	return isCode(target, CodeInsufficientStock)
}

// Code returns the error code
func (e *InsufficientStockError) Code() string { return CodeInsufficientStock }

// IllegalTransitionError is returned when an operation is invoked outside its legal state.
type IllegalTransitionError struct {
	Entity string
	From   string
	Action string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot %s %s in status %s", e.Action, e.Entity, e.From)
}

func (e *IllegalTransitionError) Is(target error) bool {
	return isCode(target, CodeInvalidTransition)
}

// Code returns the error code
func (e *IllegalTransitionError) Code() string { return CodeInvalidTransition }

// ValidationError is an input-level rejection.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return isCode(target, CodeValidation)
}

// Code returns the error code
func (e *ValidationError) Code() string { return CodeValidation }

// ConsistencyViolation reports a split item whose recorded quantity disagrees
// with the sum of its location entries. It never surfaces in correct operation.
type ConsistencyViolation struct {
	ItemID      uuid.UUID
	Recorded    int64
	LocationSum int64
}

func (e *ConsistencyViolation) Error() string {
	return fmt.Sprintf("stock item %s: recorded quantity %d does not match location sum %d", e.ItemID, e.Recorded, e.LocationSum)
}

func (e *ConsistencyViolation) Is(target error) bool {
	return isCode(target, CodeConsistencyViolation)
}

// Code returns the error code
func (e *ConsistencyViolation) Code() string { return CodeConsistencyViolation }

// Sentinels for errors.Is checks against the typed errors above.
var (
	ErrInsufficientStock    = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrIllegalTransition    = NewDomainError(CodeInvalidTransition, "Operation not allowed in current state")
	ErrValidation           = NewDomainError(CodeValidation, "Invalid input provided")
	ErrConsistencyViolation = NewDomainError(CodeConsistencyViolation, "Ledger consistency violated")
)

// NewValidationError builds a ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewIllegalTransition builds an IllegalTransitionError
func NewIllegalTransition(entity, from, action string) *IllegalTransitionError {
	return &IllegalTransitionError{Entity: entity, From: from, Action: action}
}

// ErrorCode extracts the code from any error produced by this package.
// Unknown errors yield an empty string.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func isCode(target error, code string) bool {
	var de *DomainError
	if errors.As(target, &de) {
		return de.Code == code
	}
	return false
}
