package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_WrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewDomainErrorWithCause(CodeConcurrencyConflict, "Save failed", cause)

	assert.Equal(t, "Save failed: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestTypedErrors_MatchSentinelsByCode(t *testing.T) {
	store := uuid.New()
	tests := []struct {
		name     string
		err      error
		sentinel error
		code     string
	}{
		{"insufficient stock", &InsufficientStockError{ItemID: uuid.New(), StoreID: &store, Requested: 5, Available: 2}, ErrInsufficientStock, CodeInsufficientStock},
		{"illegal transition", NewIllegalTransition("transfer", "completed", "approve"), ErrIllegalTransition, CodeInvalidTransition},
		{"validation", NewValidationError("quantity", "must be positive"), ErrValidation, CodeValidation},
		{"consistency", &ConsistencyViolation{ItemID: uuid.New(), Recorded: 7, LocationSum: 6}, ErrConsistencyViolation, CodeConsistencyViolation},
		{"plain domain error", ErrNotFound, ErrNotFound, CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("commit: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.code, ErrorCode(wrapped))
		})
	}
}

func TestInsufficientStockError_As(t *testing.T) {
	item := uuid.New()
	err := fmt.Errorf("issue: %w", &InsufficientStockError{ItemID: item, Requested: 10, Available: 4})

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, item, insufficient.ItemID)
	assert.Equal(t, int64(4), insufficient.Available)
	assert.Equal(t, "insufficient stock: requested 10, available 4", insufficient.Error())
}

func TestErrorCode_Unknown(t *testing.T) {
	assert.Empty(t, ErrorCode(nil))
	assert.Empty(t, ErrorCode(errors.New("boom")))
}
