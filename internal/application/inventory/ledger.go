package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Ledger is the single write path for stock items. Every change to an item's
// quantities goes through Save so that each persisted change produces exactly
// one history entry.
type Ledger struct {
	clock shared.Clock
}

// NewLedger creates a Ledger reading time from clock
func NewLedger(clock shared.Clock) *Ledger {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &Ledger{clock: clock}
}

// LoadItem loads an item and attaches its committed and reserved holds.
// With forUpdate the item row stays locked until the transaction ends.
func (l *Ledger) LoadItem(ctx context.Context, repos TransactionalRepositories, id uuid.UUID, forUpdate bool) (*inventory.StockItem, error) {
	var (
		item *inventory.StockItem
		err  error
	)
	if forUpdate {
		item, err = repos.Items().FindByIDForUpdate(ctx, id)
	} else {
		item, err = repos.Items().FindByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if err := l.AttachHolds(ctx, repos, item); err != nil {
		return nil, err
	}
	return item, nil
}

// AttachHolds computes the item's holds from open commitments and
// reservations still active now.
func (l *Ledger) AttachHolds(ctx context.Context, repos TransactionalRepositories, item *inventory.StockItem) error {
	committed, err := repos.Commitments().SumOpen(ctx, item.ID)
	if err != nil {
		return err
	}
	reserved, err := repos.Reservations().SumActive(ctx, item.ID, l.clock.Now())
	if err != nil {
		return err
	}
	item.SetHolds(committed, reserved)
	return nil
}

// Save persists item. The history entry is synthesized from the difference
// between the stored and current totals; with recordHistory false the caller
// writes its own entry. A split item whose projection disagrees with its
// locations is refused with a ConsistencyViolation.
func (l *Ledger) Save(ctx context.Context, repos TransactionalRepositories, item *inventory.StockItem, req inventory.JournalRequest, recordHistory bool) error {
	if err := item.CheckConsistency(); err != nil {
		return err
	}
	now := l.clock.Now()
	wasLow := item.IsPersisted() &&
		item.PersistedTotal()-item.CommittedQuantity()-item.ReservedQuantity() <= item.ReOrder

	entry := inventory.Journal(item, req, now)
	if item.IsPersisted() {
		item.IncrementVersion()
	}
	if err := repos.Items().Save(ctx, item); err != nil {
		return err
	}
	if recordHistory && entry != nil {
		if err := repos.History().Append(ctx, entry); err != nil {
			return err
		}
	}
	if item.IsPersisted() && !wasLow && item.IsLowStock() {
		item.AddDomainEvent(inventory.NewStockLevelLowEvent(item, now))
	}
	item.MarkPersisted()
	return nil
}

// pendingEvents gathers domain events raised inside a transaction so they can
// be published once it has committed.
type pendingEvents struct {
	events []shared.DomainEvent
}

func (p *pendingEvents) collect(aggregates ...shared.AggregateRoot) {
	for _, agg := range aggregates {
		p.events = append(p.events, agg.GetDomainEvents()...)
		agg.ClearDomainEvents()
	}
}

// ServiceDeps are the collaborators shared by every ledger service
type ServiceDeps struct {
	Scope     TransactionScope
	Repos     TransactionalRepositories
	Clock     shared.Clock
	Publisher shared.EventPublisher
	Logger    *zap.Logger
}

type ledgerService struct {
	scope     TransactionScope
	repos     TransactionalRepositories
	ledger    *Ledger
	clock     shared.Clock
	publisher shared.EventPublisher
	logger    *zap.Logger
}

func newLedgerService(deps ServiceDeps) ledgerService {
	clock := deps.Clock
	if clock == nil {
		clock = shared.SystemClock{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return ledgerService{
		scope:     deps.Scope,
		repos:     deps.Repos,
		ledger:    NewLedger(clock),
		clock:     clock,
		publisher: deps.Publisher,
		logger:    logger,
	}
}

// publish sends collected events. Failures are logged by the event bus and
// never undo a committed transaction.
func (s *ledgerService) publish(ctx context.Context, p *pendingEvents) {
	if s.publisher == nil || len(p.events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, p.events...); err != nil {
		s.logger.Warn("Failed to publish domain events", zap.Int("count", len(p.events)), zap.Error(err))
	}
}

// SetEventPublisher sets the publisher used after commits
func (s *ledgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}
