package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
)

// MockEventHandler records every event delivered to it.
type MockEventHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
}

// NewMockEventHandler creates a handler subscribed to eventTypes, or to
// every event when none are given.
func NewMockEventHandler(eventTypes ...string) *MockEventHandler {
	return &MockEventHandler{eventTypes: eventTypes}
}

// EventTypes returns the event types this handler subscribes to.
func (h *MockEventHandler) EventTypes() []string {
	return h.eventTypes
}

// Handle records event and returns the configured error.
func (h *MockEventHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

// Handled returns a copy of the recorded events.
func (h *MockEventHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

// HandledCount returns the number of recorded events.
func (h *MockEventHandler) HandledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// OfType returns the recorded events of eventType.
func (h *MockEventHandler) OfType(eventType string) []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []shared.DomainEvent
	for _, e := range h.handled {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// SetError makes subsequent Handle calls fail with err.
func (h *MockEventHandler) SetError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// TestEvent is a bare domain event.
type TestEvent struct {
	shared.BaseDomainEvent
}

// NewTestEvent creates a test event of eventType about a random aggregate.
func NewTestEvent(eventType string) *TestEvent {
	return &TestEvent{BaseDomainEvent: shared.BaseDomainEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		AggID:     uuid.New(),
		AggType:   "TestAggregate",
	}}
}
