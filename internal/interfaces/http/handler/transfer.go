package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/infrastructure/auth"
	"github.com/stockledger/backend/internal/interfaces/http/middleware"
)

// TransferHandler serves inter-store transfers
type TransferHandler struct {
	BaseHandler
	transfers *appinv.TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transfers *appinv.TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

// RegisterRoutes mounts the transfer routes on rg
func (h *TransferHandler) RegisterRoutes(rg *gin.RouterGroup) {
	view := middleware.RequireCapability(auth.CapView)
	manage := middleware.RequireCapability(auth.CapTransfer)

	g := rg.Group("/transfers")
	g.GET("", view, h.List)
	g.GET("/pending", view, h.ListPending)
	g.GET("/awaiting-collection", view, h.ListAwaitingCollection)
	g.POST("", manage, h.Create)
	g.GET("/:id", view, h.Get)
	g.POST("/:id/approve", middleware.RequireCapability(auth.CapApproveTransfer), h.transition(h.transfers.Approve))
	g.POST("/:id/complete", manage, h.transition(h.transfers.Complete))
	g.POST("/:id/collect", manage, h.transition(h.transfers.Collect))
	g.POST("/:id/cancel", manage, h.transition(h.transfers.Cancel))
}

// Create handles POST /transfers
func (h *TransferHandler) Create(c *gin.Context) {
	var req appinv.CreateTransferRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.Actor = h.Actor(c)
	transfer, err := h.transfers.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, transfer)
}

type transferTransition func(ctx context.Context, id uuid.UUID, actor string) (*appinv.TransferResponse, error)

// transition adapts one state machine edge to a handler
func (h *TransferHandler) transition(fn transferTransition) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.ParamID(c, "id")
		if !ok {
			return
		}
		transfer, err := fn(c.Request.Context(), id, h.Actor(c))
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, transfer)
	}
}

// Get handles GET /transfers/:id
func (h *TransferHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	transfer, err := h.transfers.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfer)
}

// List handles GET /transfers
func (h *TransferHandler) List(c *gin.Context) {
	var filter appinv.TransferFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	itemID, ok := h.QueryID(c, "stock_item_id")
	if !ok {
		return
	}
	filter.StockItemID = itemID
	transfers, total, err := h.transfers.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, transfers, total, filter.Page, filter.PageSize)
}

// ListPending handles GET /transfers/pending
func (h *TransferHandler) ListPending(c *gin.Context) {
	h.listPage(c, h.transfers.ListPending)
}

// ListAwaitingCollection handles GET /transfers/awaiting-collection
func (h *TransferHandler) ListAwaitingCollection(c *gin.Context) {
	h.listPage(c, h.transfers.ListAwaitingCollection)
}

func (h *TransferHandler) listPage(c *gin.Context, fn func(context.Context, appinv.PageRequest) ([]appinv.TransferResponse, int64, error)) {
	var page appinv.PageRequest
	if !h.BindQuery(c, &page) {
		return
	}
	transfers, total, err := fn(c.Request.Context(), page)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, transfers, total, page.Page, page.PageSize)
}
