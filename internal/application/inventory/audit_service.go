package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditService runs stocktakes: plan, count, complete and approve. Approval
// overwrites the ledger with the counted figures.
type AuditService struct {
	ledgerService
}

// NewAuditService creates a new AuditService
func NewAuditService(deps ServiceDeps) *AuditService {
	return &AuditService{ledgerService: newLedgerService(deps)}
}

// Create plans an audit with the next reference of the year
func (s *AuditService) Create(ctx context.Context, req CreateAuditRequest) (*AuditResponse, error) {
	var audit *inventory.StockAudit
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		now := s.clock.Now()
		n, err := repos.Audits().CountForYear(ctx, now.Year())
		if err != nil {
			return err
		}
		audit, err = inventory.NewStockAudit(inventory.NewStockAuditInput{
			Reference:    inventory.AuditReference(now.Year(), int(n)+1),
			Title:        req.Title,
			Description:  req.Description,
			Type:         inventory.AuditType(req.AuditType),
			PlannedStart: req.PlannedStart,
			PlannedEnd:   req.PlannedEnd,
			CreatedBy:    req.Actor,
		}, now)
		if err != nil {
			return err
		}
		for _, line := range req.Items {
			item, err := s.ledger.LoadItem(ctx, repos, line.StockItemID, false)
			if err != nil {
				return err
			}
			if _, err := audit.AddItem(item, line.LocationID, now); err != nil {
				return err
			}
		}
		return repos.Audits().Save(ctx, audit)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Stock audit created",
		zap.String("audit_id", audit.ID.String()),
		zap.String("reference", audit.Reference),
		zap.Int("items", len(audit.Items)),
	)
	resp := ToAuditResponse(audit)
	return &resp, nil
}

// AddItem adds a line to a planned or running audit
func (s *AuditService) AddItem(ctx context.Context, auditID uuid.UUID, line AuditLine) (*AuditItemResponse, error) {
	var added *inventory.AuditItem
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		audit, err := repos.Audits().FindByIDForUpdate(ctx, auditID)
		if err != nil {
			return err
		}
		item, err := s.ledger.LoadItem(ctx, repos, line.StockItemID, false)
		if err != nil {
			return err
		}
		added, err = audit.AddItem(item, line.LocationID, s.clock.Now())
		if err != nil {
			return err
		}
		return repos.Audits().Save(ctx, audit)
	})
	if err != nil {
		return nil, err
	}
	resp := ToAuditItemResponse(added)
	return &resp, nil
}

// Start snapshots every line from the current ledger and opens counting
func (s *AuditService) Start(ctx context.Context, id uuid.UUID, actor string) (*AuditResponse, error) {
	return s.mutate(ctx, id, func(repos TransactionalRepositories, audit *inventory.StockAudit) error {
		items := make(map[uuid.UUID]*inventory.StockItem, len(audit.Items))
		for i := range audit.Items {
			itemID := audit.Items[i].StockItemID
			if _, ok := items[itemID]; ok {
				continue
			}
			item, err := s.ledger.LoadItem(ctx, repos, itemID, false)
			if err != nil {
				return err
			}
			items[itemID] = item
		}
		return audit.Start(actor, items, s.clock.Now())
	})
}

// CountItem records the physical count of one line
func (s *AuditService) CountItem(ctx context.Context, auditID, lineID uuid.UUID, req CountItemRequest) (*AuditItemResponse, error) {
	if req.PhysicalCount == nil {
		return nil, shared.NewValidationError("physical_count", "is required")
	}
	var counted inventory.AuditItem
	_, err := s.mutate(ctx, auditID, func(_ TransactionalRepositories, audit *inventory.StockAudit) error {
		line, err := audit.CountItem(lineID, *req.PhysicalCount, req.VarianceReason, req.VarianceNotes, req.Actor, s.clock.Now())
		if err != nil {
			return err
		}
		counted = *line
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToAuditItemResponse(&counted)
	return &resp, nil
}

// Complete closes counting
func (s *AuditService) Complete(ctx context.Context, id uuid.UUID, actor string) (*AuditResponse, error) {
	return s.mutate(ctx, id, func(_ TransactionalRepositories, audit *inventory.StockAudit) error {
		return audit.Complete(actor, s.clock.Now())
	})
}

// Cancel abandons an audit that has not completed
func (s *AuditService) Cancel(ctx context.Context, id uuid.UUID, actor string) (*AuditResponse, error) {
	return s.mutate(ctx, id, func(_ TransactionalRepositories, audit *inventory.StockAudit) error {
		return audit.Cancel(actor, s.clock.Now())
	})
}

// Approve accepts a completed audit and overwrites each counted line's
// ledger figure with the physical count. Each adjustment is journalled as
// an audit adjustment and applied at most once.
func (s *AuditService) Approve(ctx context.Context, id uuid.UUID, actor string) (*AuditResponse, error) {
	events := &pendingEvents{}
	resp, err := s.mutate(ctx, id, func(repos TransactionalRepositories, audit *inventory.StockAudit) error {
		now := s.clock.Now()
		lines, err := audit.Approve(actor, now)
		if err != nil {
			return err
		}
		for _, line := range lines {
			item, err := s.ledger.LoadItem(ctx, repos, line.StockItemID, true)
			if err != nil {
				return err
			}
			if err := s.adjust(ctx, repos, audit, line, item, actor); err != nil {
				return err
			}
			events.collect(item)
		}
		events.collect(audit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events)
	s.logger.Info("Stock audit approved",
		zap.String("audit_id", id.String()),
		zap.Int("items_with_variances", resp.ItemsWithVariances),
	)
	return resp, nil
}

func (s *AuditService) adjust(
	ctx context.Context,
	repos TransactionalRepositories,
	audit *inventory.StockAudit,
	line *inventory.AuditItem,
	item *inventory.StockItem,
	actor string,
) error {
	now := s.clock.Now()
	store := line.StoreID
	if store == nil && item.IsSplit() {
		resolved, err := item.ResolveLocation(nil)
		if err != nil {
			return err
		}
		store = resolved
	}

	previous := item.TotalOnHand()
	if store != nil {
		previous = item.QuantityAt(*store)
	}
	counted := *line.PhysicalCount
	if err := item.OverwriteCount(store, counted, now); err != nil {
		return err
	}
	if err := s.ledger.Save(ctx, repos, item, inventory.JournalRequest{}, false); err != nil {
		return err
	}
	entry := inventory.NewAuditAdjustmentEntry(item, store, previous, counted, audit.Reference, actor, now)
	if err := repos.History().Append(ctx, entry); err != nil {
		return err
	}
	line.MarkAdjusted(now)
	return nil
}

func (s *AuditService) mutate(ctx context.Context, id uuid.UUID, apply func(TransactionalRepositories, *inventory.StockAudit) error) (*AuditResponse, error) {
	var audit *inventory.StockAudit
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		audit, err = repos.Audits().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := apply(repos, audit); err != nil {
			return err
		}
		return repos.Audits().Save(ctx, audit)
	})
	if err != nil {
		return nil, err
	}
	resp := ToAuditResponse(audit)
	return &resp, nil
}

// Get returns an audit with its lines
func (s *AuditService) Get(ctx context.Context, id uuid.UUID) (*AuditResponse, error) {
	audit, err := s.repos.Audits().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToAuditResponse(audit)
	return &resp, nil
}

// List lists audits without their lines, newest first
func (s *AuditService) List(ctx context.Context, f AuditFilter) ([]AuditResponse, int64, error) {
	filter := shared.Filter{Page: f.Page, PageSize: f.PageSize, Filters: map[string]interface{}{}}
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	if f.AuditType != "" {
		filter.Filters["audit_type"] = f.AuditType
	}
	list, total, err := s.repos.Audits().FindAll(ctx, filter.Normalize())
	if err != nil {
		return nil, 0, err
	}
	out := make([]AuditResponse, 0, len(list))
	for i := range list {
		out = append(out, ToAuditResponse(&list[i]))
	}
	return out, total, nil
}

// ListItems pages through the lines of an audit
func (s *AuditService) ListItems(ctx context.Context, auditID uuid.UUID, page PageRequest) ([]AuditItemResponse, int64, error) {
	if _, err := s.repos.Audits().FindByID(ctx, auditID); err != nil {
		return nil, 0, err
	}
	filter := shared.Filter{Page: page.Page, PageSize: page.PageSize, OrderBy: "item_name", OrderDir: "asc"}.Normalize()
	lines, total, err := s.repos.Audits().FindItems(ctx, auditID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]AuditItemResponse, 0, len(lines))
	for i := range lines {
		out = append(out, ToAuditItemResponse(&lines[i]))
	}
	return out, total, nil
}
