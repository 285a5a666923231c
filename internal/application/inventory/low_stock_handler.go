package inventory

import (
	"context"
	"fmt"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockAlert is a low or depleted stock notification
type StockAlert struct {
	StockItemID      string `json:"stock_item_id"`
	SKU              string `json:"sku"`
	ItemName         string `json:"item_name"`
	AvailableForSale int64  `json:"available_for_sale"`
	ReOrder          int64  `json:"re_order"`
	AlertType        string `json:"alert_type"` // "low_stock", "out_of_stock"
}

// StockAlertNotifier delivers stock alerts
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert StockAlert) error
}

// LowStockHandler turns StockLevelLow events into alerts
type LowStockHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// NewLowStockHandler creates a handler that logs every alert
func NewLowStockHandler(logger *zap.Logger) *LowStockHandler {
	return &LowStockHandler{logger: logger}
}

// WithNotifier sets the notifier alerts are forwarded to
func (h *LowStockHandler) WithNotifier(notifier StockAlertNotifier) *LowStockHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockLevelLow}
}

// Handle processes a StockLevelLowEvent
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	low, ok := event.(*inventory.StockLevelLowEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s", inventory.EventTypeStockLevelLow, event.EventType())
	}

	alertType := "low_stock"
	if low.AvailableForSale <= 0 {
		alertType = "out_of_stock"
	}
	alert := StockAlert{
		StockItemID:      low.StockItemID.String(),
		SKU:              low.SKU,
		ItemName:         low.ItemName,
		AvailableForSale: low.AvailableForSale,
		ReOrder:          low.ReOrder,
		AlertType:        alertType,
	}

	h.logger.Warn("stock level low",
		zap.String("stock_item_id", alert.StockItemID),
		zap.String("sku", alert.SKU),
		zap.Int64("available_for_sale", alert.AvailableForSale),
		zap.Int64("re_order", alert.ReOrder),
		zap.String("alert_type", alertType),
	)

	if h.notifier != nil {
		// Delivery failures are logged; they never fail event handling.
		if err := h.notifier.SendAlert(ctx, alert); err != nil {
			h.logger.Error("failed to send stock alert", zap.String("stock_item_id", alert.StockItemID), zap.Error(err))
		}
	}
	return nil
}

var _ shared.EventHandler = (*LowStockHandler)(nil)
