package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "StockItem", uuid.New(), time.Now()),
	}
}

type recordingHandler struct {
	mu     sync.Mutex
	types  []string
	seen   []shared.DomainEvent
	err    error
	panics bool
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	low := &recordingHandler{types: []string{"StockLevelLow"}}
	all := &recordingHandler{}
	bus.Subscribe(low)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("StockLevelLow"),
		newTestEvent("StockIssued"),
	))

	assert.Equal(t, 1, low.count())
	assert.Equal(t, 2, all.count())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := &recordingHandler{types: []string{"StockLevelLow"}}
	bus.Subscribe(h, "AuditApproved")

	_ = bus.Publish(context.Background(), newTestEvent("StockLevelLow"), newTestEvent("AuditApproved"))

	require.Equal(t, 1, h.count())
	assert.Equal(t, "AuditApproved", h.seen[0].EventType())
}

func TestInMemoryEventBus_HandlerFailuresAreIsolated(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := &recordingHandler{err: errors.New("mail server down")}
	panicking := &recordingHandler{panics: true}
	healthy := &recordingHandler{}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("StockLevelLow"))

	assert.NoError(t, err)
	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, 2, recorded.FilterMessage("Handler failed to process event").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := &recordingHandler{types: []string{"StockIssued", "StockReceived"}}
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	_ = bus.Publish(context.Background(), newTestEvent("StockIssued"))

	assert.Equal(t, 0, h.count())
	assert.Equal(t, 0, bus.registry.Count())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	assert.False(t, bus.IsRunning())

	require.NoError(t, bus.Start(context.Background()))
	assert.True(t, bus.IsRunning())

	require.NoError(t, bus.Stop(context.Background()))
	assert.False(t, bus.IsRunning())
}

func TestHandlerRegistry_Count(t *testing.T) {
	r := NewHandlerRegistry()
	h := &recordingHandler{}
	r.Register(h, "A", "B")
	r.Register(&recordingHandler{})

	assert.Equal(t, 2, r.Count())
	assert.Len(t, r.Handlers("A"), 2)
	assert.Len(t, r.Handlers("C"), 1)
}
