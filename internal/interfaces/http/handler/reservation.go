package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/infrastructure/auth"
	"github.com/stockledger/backend/internal/interfaces/http/middleware"
)

// ReservationHandler serves temporary holds
type ReservationHandler struct {
	BaseHandler
	reservations *appinv.ReservationService
}

// NewReservationHandler creates a new ReservationHandler
func NewReservationHandler(reservations *appinv.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservations: reservations}
}

// RegisterRoutes mounts the reservation routes on rg
func (h *ReservationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	view := middleware.RequireCapability(auth.CapView)
	manage := middleware.RequireCapability(auth.CapReserve)

	g := rg.Group("/reservations")
	g.GET("", view, h.ListActive)
	g.GET("/expired", view, h.ListExpired)
	g.POST("", manage, h.Reserve)
	g.POST("/expire", manage, h.ExpireLapsed)
	g.GET("/:id", view, h.Get)
	g.POST("/:id/fulfil", manage, h.Fulfil)
	g.POST("/:id/cancel", manage, h.Cancel)
}

// Reserve handles POST /reservations
func (h *ReservationHandler) Reserve(c *gin.Context) {
	var req appinv.ReserveRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.Actor = h.Actor(c)
	reservation, err := h.reservations.Reserve(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, reservation)
}

// Fulfil handles POST /reservations/:id/fulfil
func (h *ReservationHandler) Fulfil(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	reservation, err := h.reservations.Fulfil(c.Request.Context(), id, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reservation)
}

// Cancel handles POST /reservations/:id/cancel
func (h *ReservationHandler) Cancel(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	reservation, err := h.reservations.Cancel(c.Request.Context(), id, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reservation)
}

// Get handles GET /reservations/:id
func (h *ReservationHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	reservation, err := h.reservations.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reservation)
}

// ListActive handles GET /reservations
func (h *ReservationHandler) ListActive(c *gin.Context) {
	h.list(c, h.reservations.ListActive)
}

// ListExpired handles GET /reservations/expired
func (h *ReservationHandler) ListExpired(c *gin.Context) {
	h.list(c, h.reservations.ListExpired)
}

// ExpireLapsed handles POST /reservations/expire, the on-demand sweep
func (h *ReservationHandler) ExpireLapsed(c *gin.Context) {
	stats, err := h.reservations.ExpireLapsed(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

type reservationLister func(ctx context.Context, f appinv.ReservationFilter) ([]appinv.ReservationResponse, int64, error)

func (h *ReservationHandler) list(c *gin.Context, fn reservationLister) {
	var filter appinv.ReservationFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	itemID, ok := h.QueryID(c, "stock_item_id")
	if !ok {
		return
	}
	filter.StockItemID = itemID
	reservations, total, err := fn(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, reservations, total, filter.Page, filter.PageSize)
}
