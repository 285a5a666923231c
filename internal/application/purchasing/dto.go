package purchasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/purchasing"
)

// OrderLineRequest is one line of a new order
type OrderLineRequest struct {
	ItemName        string          `json:"item_name" binding:"required,max=200"`
	SKU             string          `json:"sku" binding:"omitempty,max=50"`
	Quantity        int64           `json:"quantity" binding:"required,gt=0"`
	UnitPriceIncGST decimal.Decimal `json:"price_inc"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// CreateOrderRequest places a draft order
type CreateOrderRequest struct {
	SupplierName string             `json:"supplier_name" binding:"required,max=200"`
	Notes        string             `json:"notes"`
	Items        []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
	Actor        string             `json:"-"`
}

// ReceiveLine is the quantity arriving against one order line
type ReceiveLine struct {
	ID               uuid.UUID `json:"id" binding:"required"`
	ReceivedQuantity int64     `json:"received_quantity" binding:"gte=0"`
}

// ReceiveOrderRequest books goods into a store
type ReceiveOrderRequest struct {
	ReceivingStoreID uuid.UUID     `json:"receiving_store_id" binding:"required"`
	Aisle            string        `json:"aisle" binding:"omitempty,aisle"`
	Notes            string        `json:"notes"`
	Items            []ReceiveLine `json:"items" binding:"required,min=1,dive"`
	Actor            string        `json:"-"`
}

// OrderFilter selects orders for listing
type OrderFilter struct {
	Status   string `form:"status"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// OrderLineResponse is an order line with its money breakdown
type OrderLineResponse struct {
	ID               uuid.UUID         `json:"id"`
	ItemName         string            `json:"item_name"`
	SKU              string            `json:"sku"`
	Quantity         int64             `json:"quantity"`
	ReceivedQuantity int64             `json:"received_quantity"`
	Outstanding      int64             `json:"outstanding"`
	UnitPriceIncGST  decimal.Decimal   `json:"price_inc"`
	UnitPriceExcGST  decimal.Decimal   `json:"price_exc"`
	DiscountPercent  decimal.Decimal   `json:"discount_percent"`
	Totals           purchasing.Totals `json:"totals"`
}

// OrderResponse is the API view of a purchase order
type OrderResponse struct {
	ID           uuid.UUID           `json:"id"`
	Reference    string              `json:"reference_number"`
	SupplierName string              `json:"supplier_name"`
	Status       purchasing.Status   `json:"status"`
	Notes        string              `json:"notes"`
	History      string              `json:"history"`
	CreatedBy    string              `json:"created_by"`
	SentAt       *time.Time          `json:"sent_at,omitempty"`
	ConfirmedAt  *time.Time          `json:"confirmed_at,omitempty"`
	ReceivedAt   *time.Time          `json:"received_at,omitempty"`
	Items        []OrderLineResponse `json:"items,omitempty"`
	Totals       purchasing.Totals   `json:"totals"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// ToOrderResponse converts an order, pricing it with rates
func ToOrderResponse(po *purchasing.PurchaseOrder, rates purchasing.TaxRates) OrderResponse {
	resp := OrderResponse{
		ID:           po.ID,
		Reference:    po.Reference,
		SupplierName: po.SupplierName,
		Status:       po.Status,
		Notes:        po.Notes,
		History:      po.History,
		CreatedBy:    po.CreatedBy,
		SentAt:       po.SentAt,
		ConfirmedAt:  po.ConfirmedAt,
		ReceivedAt:   po.ReceivedAt,
		Totals:       po.Totals(rates),
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}
	for i := range po.Items {
		line := &po.Items[i]
		resp.Items = append(resp.Items, OrderLineResponse{
			ID:               line.ID,
			ItemName:         line.ItemName,
			SKU:              line.SKU,
			Quantity:         line.Quantity,
			ReceivedQuantity: line.ReceivedQuantity,
			Outstanding:      line.Outstanding(),
			UnitPriceIncGST:  line.UnitPriceIncGST,
			UnitPriceExcGST:  line.PriceExcGST(rates),
			DiscountPercent:  line.DiscountPercent,
			Totals:           line.Totals(rates),
		})
	}
	return resp
}
