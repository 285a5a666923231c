package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockService handles stores, items and the direct issue and receive
// movements of the ledger.
type StockService struct {
	ledgerService
}

// NewStockService creates a new StockService
func NewStockService(deps ServiceDeps) *StockService {
	return &StockService{ledgerService: newLedgerService(deps)}
}

// CreateStore registers a store or warehouse
func (s *StockService) CreateStore(ctx context.Context, req CreateStoreRequest) (*StoreResponse, error) {
	store, err := inventory.NewStore(req.Name, req.Code, inventory.StoreDesignation(req.Designation), req.Address, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.Stores().FindByCode(ctx, store.Code); err == nil {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "A store with this code already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if err := s.repos.Stores().Save(ctx, store); err != nil {
		return nil, err
	}
	resp := ToStoreResponse(store)
	return &resp, nil
}

// GetStore returns one store
func (s *StockService) GetStore(ctx context.Context, id uuid.UUID) (*StoreResponse, error) {
	store, err := s.repos.Stores().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToStoreResponse(store)
	return &resp, nil
}

// ListStores lists stores by name
func (s *StockService) ListStores(ctx context.Context, page PageRequest) ([]StoreResponse, int64, error) {
	filter := shared.Filter{Page: page.Page, PageSize: page.PageSize, OrderBy: "name", OrderDir: "asc"}.Normalize()
	stores, total, err := s.repos.Stores().FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]StoreResponse, 0, len(stores))
	for i := range stores {
		out = append(out, ToStoreResponse(&stores[i]))
	}
	return out, total, nil
}

// DeactivateStore closes a store to incoming stock
func (s *StockService) DeactivateStore(ctx context.Context, id uuid.UUID) (*StoreResponse, error) {
	var store *inventory.Store
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		store, err = repos.Stores().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := store.Deactivate(s.clock.Now()); err != nil {
			return err
		}
		return repos.Stores().Save(ctx, store)
	})
	if err != nil {
		return nil, err
	}
	resp := ToStoreResponse(store)
	return &resp, nil
}

// CreateItem creates an item. Opening stock is booked as a receive into the
// home store when one is given, so the item starts in split mode.
func (s *StockService) CreateItem(ctx context.Context, req CreateItemRequest) (*StockItemResponse, error) {
	item, err := inventory.NewStockItem(inventory.NewStockItemInput{
		SKU:         req.SKU,
		ItemName:    req.ItemName,
		Category:    req.Category,
		Condition:   inventory.Condition(req.Condition),
		ReOrder:     req.ReOrder,
		UnitCost:    req.UnitCost,
		HomeStoreID: req.HomeStoreID,
		Aisle:       req.Aisle,
		CreatedBy:   req.Actor,
	}, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if req.InitialQuantity < 0 {
		return nil, shared.NewValidationError("initial_quantity", "must not be negative")
	}

	events := &pendingEvents{}
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.Items().FindBySKU(ctx, item.SKU); err == nil {
			return shared.NewDomainError(shared.CodeAlreadyExists, "An item with this SKU already exists")
		} else if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if req.HomeStoreID != nil {
			if err := checkReceivingStore(ctx, repos, *req.HomeStoreID, "home_store_id"); err != nil {
				return err
			}
		}
		if req.InitialQuantity > 0 {
			if err := item.Receive(req.InitialQuantity, req.HomeStoreID, req.Aisle, req.Actor, "Initial stock", s.clock.Now()); err != nil {
				return err
			}
		}
		if err := s.ledger.Save(ctx, repos, item, inventory.JournalRequest{
			Kind:    inventory.HistoryCreated,
			Actor:   req.Actor,
			Note:    "Item created",
			StoreID: req.HomeStoreID,
		}, true); err != nil {
			return err
		}
		events.collect(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events)

	s.logger.Info("Stock item created",
		zap.String("stock_item_id", item.ID.String()),
		zap.String("sku", item.SKU),
		zap.Int64("quantity", item.TotalOnHand()),
	)
	resp := ToStockItemResponse(item)
	return &resp, nil
}

// UpdateItem changes descriptive fields and, for items not held at
// locations, the legacy quantity.
func (s *StockService) UpdateItem(ctx context.Context, id uuid.UUID, req UpdateItemRequest) (*StockItemResponse, error) {
	var item *inventory.StockItem
	events := &pendingEvents{}
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		item, err = s.ledger.LoadItem(ctx, repos, id, true)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		if err := item.UpdateDetails(req.ItemName, req.Category, inventory.Condition(req.Condition), req.ReOrder, req.UnitCost, now); err != nil {
			return err
		}
		if req.Quantity != nil {
			if err := item.SetQuantity(*req.Quantity, now); err != nil {
				return err
			}
		}
		if err := s.ledger.Save(ctx, repos, item, inventory.JournalRequest{
			Kind:  inventory.HistoryAdjusted,
			Actor: req.Actor,
			Note:  req.Note,
		}, true); err != nil {
			return err
		}
		events.collect(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events)
	resp := ToStockItemResponse(item)
	return &resp, nil
}

// DeleteItem removes an item and journals the removal. Items with open
// commitments, active reservations, transfers under way or lines on an
// unfinished audit cannot be deleted.
func (s *StockService) DeleteItem(ctx context.Context, id uuid.UUID, actor, note string) error {
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := s.ledger.LoadItem(ctx, repos, id, true)
		if err != nil {
			return err
		}
		if item.CommittedQuantity() > 0 || item.ReservedQuantity() > 0 {
			return shared.NewValidationError("stock_item_id", "item has open commitments or reservations")
		}
		transfers, err := repos.Transfers().CountOpen(ctx, id)
		if err != nil {
			return err
		}
		if transfers > 0 {
			return shared.NewValidationError("stock_item_id", fmt.Sprintf("item has %d open transfers", transfers))
		}
		lines, err := repos.Audits().CountOpenLines(ctx, id)
		if err != nil {
			return err
		}
		if lines > 0 {
			return shared.NewValidationError("stock_item_id", "item is on an audit that is not yet approved or cancelled")
		}
		if note == "" {
			note = "Item deleted"
		}
		if err := repos.History().Append(ctx, inventory.NewDeletionEntry(item, actor, note, s.clock.Now())); err != nil {
			return err
		}
		return repos.Items().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Stock item deleted", zap.String("stock_item_id", id.String()), zap.String("actor", actor))
	return nil
}

// GetItem returns an item with its derived quantities
func (s *StockService) GetItem(ctx context.Context, id uuid.UUID) (*StockItemResponse, error) {
	item, err := s.ledger.LoadItem(ctx, s.repos, id, false)
	if err != nil {
		return nil, err
	}
	resp := ToStockItemResponse(item)
	return &resp, nil
}

// ListItems lists items with their derived quantities
func (s *StockService) ListItems(ctx context.Context, f ItemListFilter) ([]StockItemResponse, int64, error) {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  map[string]interface{}{},
	}
	if filter.OrderBy == "" {
		filter.OrderBy, filter.OrderDir = "item_name", "asc"
	}
	if f.Category != "" {
		filter.Filters["category"] = f.Category
	}
	if f.Condition != "" {
		filter.Filters["condition"] = f.Condition
	}
	items, total, err := s.repos.Items().FindAll(ctx, filter.Normalize())
	if err != nil {
		return nil, 0, err
	}
	return s.toResponses(ctx, items, total)
}

// LowStock lists items whose availability is at or below their reorder level
func (s *StockService) LowStock(ctx context.Context, page PageRequest) ([]StockItemResponse, int64, error) {
	filter := shared.Filter{Page: page.Page, PageSize: page.PageSize}.Normalize()
	items, total, err := s.repos.Items().FindLowStock(ctx, s.clock.Now(), filter)
	if err != nil {
		return nil, 0, err
	}
	return s.toResponses(ctx, items, total)
}

// ConditionSummary returns counts grouped by condition
func (s *StockService) ConditionSummary(ctx context.Context) ([]inventory.ConditionSummary, error) {
	return s.repos.Items().ConditionSummary(ctx)
}

// Locations lists the location entries of an item
func (s *StockService) Locations(ctx context.Context, id uuid.UUID) ([]LocationResponse, error) {
	item, err := s.repos.Items().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]LocationResponse, 0, len(item.Locations))
	for i := range item.Locations {
		out = append(out, ToLocationResponse(&item.Locations[i]))
	}
	return out, nil
}

// UpdateLocationAisle sets the aisle of one location entry. Quantities are
// untouched so no history is written.
func (s *StockService) UpdateLocationAisle(ctx context.Context, itemID, locationEntryID uuid.UUID, req UpdateAisleRequest) (*LocationResponse, error) {
	var loc *inventory.LocationEntry
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		loc, err = repos.Items().FindLocation(ctx, locationEntryID)
		if err != nil {
			return err
		}
		if loc.StockItemID != itemID {
			return shared.ErrNotFound
		}
		if err := loc.SetAisle(req.Aisle, s.clock.Now()); err != nil {
			return err
		}
		return repos.Items().SaveLocation(ctx, loc)
	})
	if err != nil {
		return nil, err
	}
	resp := ToLocationResponse(loc)
	return &resp, nil
}

// Issue removes stock from an item. The quantity must fit within what is
// available for sale and, in split mode, within the targeted location.
func (s *StockService) Issue(ctx context.Context, id uuid.UUID, req IssueRequest) (*StockItemResponse, error) {
	var item *inventory.StockItem
	events := &pendingEvents{}
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		item, err = s.ledger.LoadItem(ctx, repos, id, true)
		if err != nil {
			return err
		}
		if req.LocationID != nil {
			if _, err := repos.Stores().FindByID(ctx, *req.LocationID); err != nil {
				return storeLookupError("location_id", err)
			}
		}
		if err := item.Issue(req.Quantity, req.LocationID, req.Actor, req.Note, true, s.clock.Now()); err != nil {
			return err
		}
		store, _ := item.ResolveLocation(req.LocationID)
		if err := s.ledger.Save(ctx, repos, item, inventory.JournalRequest{
			Kind:    inventory.HistoryIssued,
			Actor:   req.Actor,
			Note:    req.Note,
			StoreID: store,
		}, true); err != nil {
			return err
		}
		events.collect(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events)
	resp := ToStockItemResponse(item)
	return &resp, nil
}

// Receive adds stock to an item, at a location when one is given or the
// item is held at exactly one.
func (s *StockService) Receive(ctx context.Context, id uuid.UUID, req ReceiveRequest) (*StockItemResponse, error) {
	var item *inventory.StockItem
	events := &pendingEvents{}
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		item, err = s.ledger.LoadItem(ctx, repos, id, true)
		if err != nil {
			return err
		}
		if req.LocationID != nil {
			if err := checkReceivingStore(ctx, repos, *req.LocationID, "location_id"); err != nil {
				return err
			}
		}
		if err := item.Receive(req.Quantity, req.LocationID, req.Aisle, req.Actor, req.Note, s.clock.Now()); err != nil {
			return err
		}
		store, _ := item.ResolveLocation(req.LocationID)
		if err := s.ledger.Save(ctx, repos, item, inventory.JournalRequest{
			Kind:    inventory.HistoryReceived,
			Actor:   req.Actor,
			Note:    req.Note,
			StoreID: store,
		}, true); err != nil {
			return err
		}
		events.collect(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events)
	resp := ToStockItemResponse(item)
	return &resp, nil
}

// History lists journal entries, newest first
func (s *StockService) History(ctx context.Context, f HistoryFilter) ([]HistoryEntryResponse, int64, error) {
	entries, total, err := s.repos.History().FindAll(ctx, historyFilter(f))
	if err != nil {
		return nil, 0, err
	}
	return toHistoryResponses(entries), total, nil
}

// ItemHistory lists journal entries of one item, newest first
func (s *StockService) ItemHistory(ctx context.Context, id uuid.UUID, f HistoryFilter) ([]HistoryEntryResponse, int64, error) {
	entries, total, err := s.repos.History().FindByStockItem(ctx, id, historyFilter(f))
	if err != nil {
		return nil, 0, err
	}
	return toHistoryResponses(entries), total, nil
}

// ConsistencyReport checks every split item against its location entries
func (s *StockService) ConsistencyReport(ctx context.Context) (*ConsistencyReport, error) {
	items, err := s.repos.Items().FindSplitItems(ctx)
	if err != nil {
		return nil, err
	}
	report := &ConsistencyReport{
		CheckedItems: len(items),
		Violations:   make([]ConsistencyViolationDTO, 0),
		CheckedAt:    s.clock.Now(),
	}
	for i := range items {
		var violation *shared.ConsistencyViolation
		if err := items[i].CheckConsistency(); errors.As(err, &violation) {
			report.Violations = append(report.Violations, ConsistencyViolationDTO{
				StockItemID: items[i].ID,
				SKU:         items[i].SKU,
				Recorded:    violation.Recorded,
				LocationSum: violation.LocationSum,
			})
		}
	}
	if len(report.Violations) > 0 {
		s.logger.Error("Ledger consistency violations found", zap.Int("count", len(report.Violations)))
	}
	return report, nil
}

func (s *StockService) toResponses(ctx context.Context, items []inventory.StockItem, total int64) ([]StockItemResponse, int64, error) {
	out := make([]StockItemResponse, 0, len(items))
	for i := range items {
		if err := s.ledger.AttachHolds(ctx, s.repos, &items[i]); err != nil {
			return nil, 0, err
		}
		out = append(out, ToStockItemResponse(&items[i]))
	}
	return out, total, nil
}

func historyFilter(f HistoryFilter) shared.Filter {
	filter := shared.Filter{Page: f.Page, PageSize: f.PageSize, Filters: map[string]interface{}{}}
	if f.Kind != "" {
		filter.Filters["kind"] = f.Kind
	}
	if f.Actor != "" {
		filter.Filters["actor"] = f.Actor
	}
	return filter.Normalize()
}

func toHistoryResponses(entries []inventory.HistoryEntry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, ToHistoryEntryResponse(&entries[i]))
	}
	return out
}

// checkReceivingStore requires the store to exist and accept stock
func checkReceivingStore(ctx context.Context, repos TransactionalRepositories, id uuid.UUID, field string) error {
	store, err := repos.Stores().FindByID(ctx, id)
	if err != nil {
		return storeLookupError(field, err)
	}
	return store.CheckAcceptsStock(field)
}

// storeLookupError turns a missing store into a validation error on field
func storeLookupError(field string, err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewValidationError(field, "unknown store")
	}
	return err
}
