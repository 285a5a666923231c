package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TransferService moves stock between stores through the transfer workflow.
// Each transition applies its location deltas to the item and writes a
// history entry in the same transaction.
type TransferService struct {
	ledgerService
}

// NewTransferService creates a new TransferService
func NewTransferService(deps ServiceDeps) *TransferService {
	return &TransferService{ledgerService: newLedgerService(deps)}
}

// Create opens a transfer. The source location must hold the quantity,
// whatever the transfer type.
func (s *TransferService) Create(ctx context.Context, req CreateTransferRequest) (*TransferResponse, error) {
	var t *inventory.Transfer
	events := &pendingEvents{}
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := s.ledger.LoadItem(ctx, repos, req.StockItemID, true)
		if err != nil {
			return err
		}
		if _, err := repos.Stores().FindByID(ctx, req.FromLocationID); err != nil {
			return storeLookupError("from_location", err)
		}
		if err := checkReceivingStore(ctx, repos, req.ToLocationID, "to_location"); err != nil {
			return err
		}

		now := s.clock.Now()
		var deltas []inventory.LocationDelta
		t, deltas, err = inventory.NewTransfer(inventory.NewTransferInput{
			StockItemID: item.ID,
			FromStoreID: req.FromLocationID,
			ToStoreID:   req.ToLocationID,
			Quantity:    req.Quantity,
			Type:        inventory.TransferType(req.TransferType),
			Reason:      req.Reason,
			Customer:    req.Customer.toDomain(),
			Notes:       req.Notes,
			CreatedBy:   req.Actor,
		}, now)
		if err != nil {
			return err
		}
		if held := item.QuantityAt(t.FromStoreID); held < t.Quantity {
			from := t.FromStoreID
			return &shared.InsufficientStockError{ItemID: item.ID, StoreID: &from, Requested: t.Quantity, Available: held}
		}
		if err := s.applyToItem(ctx, repos, item, t, deltas, "created", req.Actor, now); err != nil {
			return err
		}
		if err := repos.Transfers().Save(ctx, t); err != nil {
			return err
		}
		events.collect(item, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events)
	s.logger.Info("Transfer created",
		zap.String("transfer_id", t.ID.String()),
		zap.String("transfer_type", string(t.Type)),
		zap.Int64("quantity", t.Quantity),
	)
	resp := ToTransferResponse(t)
	return &resp, nil
}

// Approve moves a pending transfer into transit
func (s *TransferService) Approve(ctx context.Context, id uuid.UUID, actor string) (*TransferResponse, error) {
	return s.transition(ctx, id, actor, "approved", func(t *inventory.Transfer, now time.Time) ([]inventory.LocationDelta, error) {
		return nil, t.Approve(actor, now)
	})
}

// Complete lands the stock at the destination
func (s *TransferService) Complete(ctx context.Context, id uuid.UUID, actor string) (*TransferResponse, error) {
	return s.transition(ctx, id, actor, "completed", func(t *inventory.Transfer, now time.Time) ([]inventory.LocationDelta, error) {
		return t.Complete(actor, now)
	})
}

// Collect records the customer taking a staged customer collection
func (s *TransferService) Collect(ctx context.Context, id uuid.UUID, actor string) (*TransferResponse, error) {
	return s.transition(ctx, id, actor, "collected", func(t *inventory.Transfer, now time.Time) ([]inventory.LocationDelta, error) {
		return t.MarkCollected(actor, now)
	})
}

// Cancel aborts an open transfer and restores any stock already moved
func (s *TransferService) Cancel(ctx context.Context, id uuid.UUID, actor string) (*TransferResponse, error) {
	return s.transition(ctx, id, actor, "cancelled", func(t *inventory.Transfer, now time.Time) ([]inventory.LocationDelta, error) {
		return t.Cancel(actor, now)
	})
}

func (s *TransferService) transition(
	ctx context.Context,
	id uuid.UUID,
	actor, verb string,
	apply func(*inventory.Transfer, time.Time) ([]inventory.LocationDelta, error),
) (*TransferResponse, error) {
	var t *inventory.Transfer
	events := &pendingEvents{}
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		t, err = repos.Transfers().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		item, err := s.ledger.LoadItem(ctx, repos, t.StockItemID, true)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		deltas, err := apply(t, now)
		if err != nil {
			return err
		}
		if err := s.applyToItem(ctx, repos, item, t, deltas, verb, actor, now); err != nil {
			return err
		}
		if err := repos.Transfers().Save(ctx, t); err != nil {
			return err
		}
		events.collect(item, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events)
	resp := ToTransferResponse(t)
	return &resp, nil
}

// applyToItem applies deltas and saves the item with a forced transfer entry,
// so transitions that move nothing are journalled too.
func (s *TransferService) applyToItem(
	ctx context.Context,
	repos TransactionalRepositories,
	item *inventory.StockItem,
	t *inventory.Transfer,
	deltas []inventory.LocationDelta,
	verb, actor string,
	now time.Time,
) error {
	if err := item.ApplyDeltas(deltas, now); err != nil {
		return err
	}
	from := t.FromStoreID
	note := fmt.Sprintf("Transfer %s: %d from %s to %s (%s)", verb, t.Quantity, t.FromStoreID, t.ToStoreID, t.Type)
	return s.ledger.Save(ctx, repos, item, inventory.JournalRequest{
		Kind:      inventory.HistoryTransfer,
		Actor:     actor,
		Note:      note,
		StoreID:   &from,
		Reference: t.ID.String(),
		Force:     true,
	}, true)
}

// Get returns one transfer
func (s *TransferService) Get(ctx context.Context, id uuid.UUID) (*TransferResponse, error) {
	t, err := s.repos.Transfers().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToTransferResponse(t)
	return &resp, nil
}

// List lists transfers, newest first
func (s *TransferService) List(ctx context.Context, f TransferFilter) ([]TransferResponse, int64, error) {
	filter := shared.Filter{Page: f.Page, PageSize: f.PageSize, Filters: map[string]interface{}{}}
	if f.StockItemID != nil {
		filter.Filters["stock_item_id"] = *f.StockItemID
	}
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	if f.TransferType != "" {
		filter.Filters["transfer_type"] = f.TransferType
	}
	list, total, err := s.repos.Transfers().FindAll(ctx, filter.Normalize())
	if err != nil {
		return nil, 0, err
	}
	out := make([]TransferResponse, 0, len(list))
	for i := range list {
		out = append(out, ToTransferResponse(&list[i]))
	}
	return out, total, nil
}

// ListPending lists transfers waiting for approval
func (s *TransferService) ListPending(ctx context.Context, page PageRequest) ([]TransferResponse, int64, error) {
	return s.List(ctx, TransferFilter{Status: string(inventory.TransferPending), Page: page.Page, PageSize: page.PageSize})
}

// ListAwaitingCollection lists customer collections staged at their destination
func (s *TransferService) ListAwaitingCollection(ctx context.Context, page PageRequest) ([]TransferResponse, int64, error) {
	return s.List(ctx, TransferFilter{Status: string(inventory.TransferAwaitingCollection), Page: page.Page, PageSize: page.PageSize})
}
