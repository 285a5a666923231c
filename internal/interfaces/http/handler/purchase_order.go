package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apppurchasing "github.com/stockledger/backend/internal/application/purchasing"
	"github.com/stockledger/backend/internal/infrastructure/auth"
	"github.com/stockledger/backend/internal/interfaces/http/middleware"
)

// PurchaseOrderHandler serves supplier orders and their receipt into stock
type PurchaseOrderHandler struct {
	BaseHandler
	orders *apppurchasing.Service
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orders *apppurchasing.Service) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orders: orders}
}

// RegisterRoutes mounts the purchase order routes on rg
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	view := middleware.RequireCapability(auth.CapView)
	manage := middleware.RequireCapability(auth.CapPurchase)

	g := rg.Group("/purchase-orders")
	g.GET("", view, h.List)
	g.POST("", manage, h.Create)
	g.GET("/:id", view, h.Get)
	g.POST("/:id/send", manage, h.transition(h.orders.Send))
	g.POST("/:id/approve", manage, h.transition(h.orders.Approve))
	g.POST("/:id/cancel", manage, h.transition(h.orders.Cancel))
	// Receiving moves stock, so it needs both capabilities.
	g.POST("/:id/receive", manage, middleware.RequireCapability(auth.CapManageStock), h.Receive)
}

// Create handles POST /purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req apppurchasing.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.Actor = h.Actor(c)
	order, err := h.orders.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Receive handles POST /purchase-orders/:id/receive
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req apppurchasing.ReceiveOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.Actor = h.Actor(c)
	order, err := h.orders.Receive(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

type orderTransition func(ctx context.Context, id uuid.UUID, actor string) (*apppurchasing.OrderResponse, error)

func (h *PurchaseOrderHandler) transition(fn orderTransition) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.ParamID(c, "id")
		if !ok {
			return
		}
		order, err := fn(c.Request.Context(), id, h.Actor(c))
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, order)
	}
}

// Get handles GET /purchase-orders/:id
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List handles GET /purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	var filter apppurchasing.OrderFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	orders, total, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}
