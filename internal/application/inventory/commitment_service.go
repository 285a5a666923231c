package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CommitmentService handles stock committed to customer orders
type CommitmentService struct {
	ledgerService
}

// NewCommitmentService creates a new CommitmentService
func NewCommitmentService(deps ServiceDeps) *CommitmentService {
	return &CommitmentService{ledgerService: newLedgerService(deps)}
}

// Commit holds stock for a customer. The item row is locked while
// availability is checked so concurrent commits cannot both pass.
func (s *CommitmentService) Commit(ctx context.Context, req CommitRequest) (*CommitmentResponse, error) {
	var c *inventory.Commitment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := s.ledger.LoadItem(ctx, repos, req.StockItemID, true)
		if err != nil {
			return err
		}
		if req.LocationID != nil {
			if _, err := repos.Stores().FindByID(ctx, *req.LocationID); err != nil {
				return storeLookupError("location_id", err)
			}
		}
		if err := item.CheckHoldable(req.Quantity); err != nil {
			return err
		}
		c, err = inventory.NewCommitment(item.ID, req.Quantity, req.DepositAmount, req.Customer.toDomain(), req.LocationID, req.Notes, req.Actor, s.clock.Now())
		if err != nil {
			return err
		}
		return repos.Commitments().Save(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Stock committed",
		zap.String("commitment_id", c.ID.String()),
		zap.String("stock_item_id", c.StockItemID.String()),
		zap.Int64("quantity", c.Quantity),
	)
	resp := ToCommitmentResponse(c)
	return &resp, nil
}

// Fulfil issues the committed stock and closes the commitment. Only the
// physical stock is checked: the commitment's own hold is what is issued.
// The stock leaves req.LocationID when given, else the commitment's store.
func (s *CommitmentService) Fulfil(ctx context.Context, id uuid.UUID, req FulfilRequest) (*CommitmentResponse, error) {
	actor := req.Actor
	var c *inventory.Commitment
	events := &pendingEvents{}
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		c, err = repos.Commitments().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !c.IsOpen() {
			return shared.NewIllegalTransition("commitment", string(c.Outcome), "fulfil")
		}
		item, err := s.ledger.LoadItem(ctx, repos, c.StockItemID, true)
		if err != nil {
			return err
		}
		from := c.StoreID
		if req.LocationID != nil {
			from = req.LocationID
		}
		now := s.clock.Now()
		note := fmt.Sprintf("Commitment fulfilled for %s", c.Customer.Name)
		if err := item.Issue(c.Quantity, from, actor, note, false, now); err != nil {
			return err
		}
		if err := c.MarkFulfilled(actor, now); err != nil {
			return err
		}
		store, _ := item.ResolveLocation(from)
		if err := s.ledger.Save(ctx, repos, item, inventory.JournalRequest{
			Kind:      inventory.HistoryFulfilled,
			Actor:     actor,
			Note:      note,
			StoreID:   store,
			Reference: c.ID.String(),
		}, true); err != nil {
			return err
		}
		if err := repos.Commitments().Save(ctx, c); err != nil {
			return err
		}
		events.collect(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events)
	resp := ToCommitmentResponse(c)
	return &resp, nil
}

// Release closes a commitment without issuing stock
func (s *CommitmentService) Release(ctx context.Context, id uuid.UUID, actor string) (*CommitmentResponse, error) {
	var c *inventory.Commitment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		c, err = repos.Commitments().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := c.Release(actor, s.clock.Now()); err != nil {
			return err
		}
		return repos.Commitments().Save(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	resp := ToCommitmentResponse(c)
	return &resp, nil
}

// Get returns one commitment
func (s *CommitmentService) Get(ctx context.Context, id uuid.UUID) (*CommitmentResponse, error) {
	c, err := s.repos.Commitments().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCommitmentResponse(c)
	return &resp, nil
}

// List lists commitments, newest first
func (s *CommitmentService) List(ctx context.Context, f CommitmentFilter) ([]CommitmentResponse, int64, error) {
	filter := shared.Filter{Page: f.Page, PageSize: f.PageSize, Filters: map[string]interface{}{}}
	if f.StockItemID != nil {
		filter.Filters["stock_item_id"] = *f.StockItemID
	}
	if f.IsFulfilled != nil {
		filter.Filters["is_fulfilled"] = *f.IsFulfilled
	}
	list, total, err := s.repos.Commitments().FindAll(ctx, filter.Normalize())
	if err != nil {
		return nil, 0, err
	}
	out := make([]CommitmentResponse, 0, len(list))
	for i := range list {
		out = append(out, ToCommitmentResponse(&list[i]))
	}
	return out, total, nil
}
