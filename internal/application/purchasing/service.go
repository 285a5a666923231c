package purchasing

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/purchasing"
	"github.com/stockledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ServiceDeps are the collaborators of the purchase order service
type ServiceDeps struct {
	Scope     TransactionScope
	Repos     TransactionalRepositories
	Clock     shared.Clock
	Publisher shared.EventPublisher
	Logger    *zap.Logger
	Rates     purchasing.TaxRates
}

// Service runs the purchase order lifecycle and books receipts into stock
type Service struct {
	scope     TransactionScope
	repos     TransactionalRepositories
	ledger    *appinv.Ledger
	clock     shared.Clock
	publisher shared.EventPublisher
	logger    *zap.Logger
	rates     purchasing.TaxRates
}

// NewService creates a purchase order service
func NewService(deps ServiceDeps) *Service {
	clock := deps.Clock
	if clock == nil {
		clock = shared.SystemClock{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rates := deps.Rates
	if rates.GSTRate.IsZero() && rates.PriceExcFactor.IsZero() {
		rates = purchasing.DefaultTaxRates()
	}
	return &Service{
		scope:     deps.Scope,
		repos:     deps.Repos,
		ledger:    appinv.NewLedger(clock),
		clock:     clock,
		publisher: deps.Publisher,
		logger:    logger,
		rates:     rates,
	}
}

// Create places a draft order numbered PO-{year}-{NNN}
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	now := s.clock.Now()
	lines := make([]purchasing.ItemInput, 0, len(req.Items))
	for _, l := range req.Items {
		lines = append(lines, purchasing.ItemInput{
			ItemName:        l.ItemName,
			SKU:             l.SKU,
			Quantity:        l.Quantity,
			UnitPriceIncGST: l.UnitPriceIncGST,
			DiscountPercent: l.DiscountPercent,
		})
	}

	var po *purchasing.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		n, err := repos.PurchaseOrders().CountForYear(ctx, now.Year())
		if err != nil {
			return err
		}
		po, err = purchasing.NewPurchaseOrder(purchasing.Reference(now.Year(), int(n)+1), req.SupplierName, req.Notes, req.Actor, lines, now)
		if err != nil {
			return err
		}
		return repos.PurchaseOrders().Save(ctx, po)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Purchase order created",
		zap.String("reference", po.Reference),
		zap.String("supplier", po.SupplierName),
		zap.Int("lines", len(po.Items)),
	)
	resp := ToOrderResponse(po, s.rates)
	return &resp, nil
}

// Send moves a draft to sent
func (s *Service) Send(ctx context.Context, id uuid.UUID, actor string) (*OrderResponse, error) {
	return s.mutate(ctx, id, "Sent", actor, func(po *purchasing.PurchaseOrder) error {
		return po.Send(s.clock.Now())
	})
}

// Approve confirms a sent order
func (s *Service) Approve(ctx context.Context, id uuid.UUID, actor string) (*OrderResponse, error) {
	return s.mutate(ctx, id, "Approved", actor, func(po *purchasing.PurchaseOrder) error {
		return po.Approve(s.clock.Now())
	})
}

// Cancel abandons an order that has not completed
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, actor string) (*OrderResponse, error) {
	return s.mutate(ctx, id, "Cancelled", actor, func(po *purchasing.PurchaseOrder) error {
		return po.Cancel(s.clock.Now())
	})
}

func (s *Service) mutate(ctx context.Context, id uuid.UUID, action, actor string, apply func(*purchasing.PurchaseOrder) error) (*OrderResponse, error) {
	var po *purchasing.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		po, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := apply(po); err != nil {
			return err
		}
		if actor != "" {
			po.AppendHistory(action+" by "+actor, s.clock.Now())
		}
		return repos.PurchaseOrders().Save(ctx, po)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Purchase order "+strings.ToLower(action), zap.String("reference", po.Reference))
	resp := ToOrderResponse(po, s.rates)
	return &resp, nil
}

// Receive books goods into the receiving store in one transaction: order
// lines, stock items, their locations and the history journal all change
// together or not at all. Unknown items are created with an AUTO- SKU.
func (s *Service) Receive(ctx context.Context, id uuid.UUID, req ReceiveOrderRequest) (*OrderResponse, error) {
	now := s.clock.Now()
	received := make(map[uuid.UUID]int64, len(req.Items))
	for _, l := range req.Items {
		if l.ReceivedQuantity > 0 {
			received[l.ID] += l.ReceivedQuantity
		}
	}

	var po *purchasing.PurchaseOrder
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		po, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		store, err := repos.Stores().FindByID(ctx, req.ReceivingStoreID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewValidationError("receiving_store_id", "unknown store")
			}
			return err
		}
		if err := store.CheckAcceptsStock("receiving_store_id"); err != nil {
			return err
		}
		if err := po.CheckReceivable(received); err != nil {
			return err
		}

		for i := range po.Items {
			line := &po.Items[i]
			qty := received[line.ID]
			if qty == 0 {
				continue
			}
			item, err := s.findOrCreateItem(ctx, repos, line, store.ID, req.Actor)
			if err != nil {
				return err
			}
			if err := item.Receive(qty, &store.ID, req.Aisle, req.Actor, "Received on "+po.Reference, now); err != nil {
				return err
			}
			journal := inventory.JournalRequest{
				Kind:      inventory.HistoryReceived,
				Actor:     req.Actor,
				Note:      "Received on " + po.Reference,
				StoreID:   &store.ID,
				Reference: po.Reference,
			}
			if err := s.ledger.Save(ctx, repos, item, journal, true); err != nil {
				return err
			}
			events = append(events, item.GetDomainEvents()...)
			item.ClearDomainEvents()
		}

		label := store.Name
		if req.Notes != "" {
			label += ". Notes: " + req.Notes
		}
		if err := po.RecordReceipt(received, label, now); err != nil {
			return err
		}
		return repos.PurchaseOrders().Save(ctx, po)
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil && len(events) > 0 {
		if err := s.publisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish domain events", zap.Int("count", len(events)), zap.Error(err))
		}
	}
	s.logger.Info("Purchase order received",
		zap.String("reference", po.Reference),
		zap.String("status", string(po.Status)),
		zap.String("store_id", req.ReceivingStoreID.String()),
	)
	resp := ToOrderResponse(po, s.rates)
	return &resp, nil
}

// findOrCreateItem locks the stock item named like the line, creating it on
// first receipt. New items take the line SKU, or an AUTO- SKU derived from
// the name; a clash with another item's SKU gets a short suffix.
func (s *Service) findOrCreateItem(ctx context.Context, repos TransactionalRepositories, line *purchasing.Item, storeID uuid.UUID, actor string) (*inventory.StockItem, error) {
	item, err := repos.Items().FindByNameForUpdate(ctx, line.ItemName)
	if err == nil {
		if err := s.ledger.AttachHolds(ctx, repos, item); err != nil {
			return nil, err
		}
		return item, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	sku := strings.TrimSpace(line.SKU)
	if sku == "" {
		sku = inventory.AutoSKU(line.ItemName)
	}
	item, err = inventory.NewStockItem(inventory.NewStockItemInput{
		SKU:         sku,
		ItemName:    line.ItemName,
		UnitCost:    line.PriceExcGST(s.rates),
		HomeStoreID: &storeID,
		CreatedBy:   actor,
	}, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if _, err := repos.Items().FindBySKU(ctx, item.SKU); err == nil {
		item.SKU = item.SKU + "-" + strings.ToUpper(item.ID.String()[:4])
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	s.logger.Info("Stock item created from purchase order",
		zap.String("item_name", item.ItemName),
		zap.String("sku", item.SKU),
	)
	return item, nil
}

// Get returns one order with its lines
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	po, err := s.repos.PurchaseOrders().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(po, s.rates)
	return &resp, nil
}

// List pages through orders, newest first
func (s *Service) List(ctx context.Context, f OrderFilter) ([]OrderResponse, int64, error) {
	filter := shared.DefaultFilter()
	filter.Page = f.Page
	filter.PageSize = f.PageSize
	filter.Search = f.Search
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	list, total, err := s.repos.PurchaseOrders().FindAll(ctx, filter.Normalize())
	if err != nil {
		return nil, 0, err
	}
	out := make([]OrderResponse, 0, len(list))
	for i := range list {
		out = append(out, ToOrderResponse(&list[i], s.rates))
	}
	return out, total, nil
}

// SetEventPublisher sets the publisher used after commits
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}
