package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/infrastructure/auth"
	"github.com/stockledger/backend/internal/interfaces/http/middleware"
)

// AuditHandler serves stocktakes
type AuditHandler struct {
	BaseHandler
	audits *appinv.AuditService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(audits *appinv.AuditService) *AuditHandler {
	return &AuditHandler{audits: audits}
}

// RegisterRoutes mounts the audit routes on rg
func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	view := middleware.RequireCapability(auth.CapView)
	manage := middleware.RequireCapability(auth.CapAudit)

	g := rg.Group("/audits")
	g.GET("", view, h.List)
	g.POST("", manage, h.Create)
	g.GET("/:id", view, h.Get)
	g.GET("/:id/items", view, h.ListItems)
	g.POST("/:id/items", manage, h.AddItem)
	g.POST("/:id/items/:item_id/count", manage, h.CountItem)
	g.POST("/:id/start", manage, h.transition(h.audits.Start))
	g.POST("/:id/complete", manage, h.transition(h.audits.Complete))
	g.POST("/:id/cancel", manage, h.transition(h.audits.Cancel))
	g.POST("/:id/approve", middleware.RequireCapability(auth.CapApproveAudit), h.transition(h.audits.Approve))
}

// Create handles POST /audits
func (h *AuditHandler) Create(c *gin.Context) {
	var req appinv.CreateAuditRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.Actor = h.Actor(c)
	audit, err := h.audits.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, audit)
}

// AddItem handles POST /audits/:id/items
func (h *AuditHandler) AddItem(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var line appinv.AuditLine
	if !h.BindJSON(c, &line) {
		return
	}
	item, err := h.audits.AddItem(c.Request.Context(), id, line)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// CountItem handles POST /audits/:id/items/:item_id/count
func (h *AuditHandler) CountItem(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.ParamID(c, "item_id")
	if !ok {
		return
	}
	var req appinv.CountItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.Actor = h.Actor(c)
	item, err := h.audits.CountItem(c.Request.Context(), id, lineID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

type auditTransition func(ctx context.Context, id uuid.UUID, actor string) (*appinv.AuditResponse, error)

func (h *AuditHandler) transition(fn auditTransition) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.ParamID(c, "id")
		if !ok {
			return
		}
		audit, err := fn(c.Request.Context(), id, h.Actor(c))
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, audit)
	}
}

// Get handles GET /audits/:id
func (h *AuditHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	audit, err := h.audits.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, audit)
}

// List handles GET /audits
func (h *AuditHandler) List(c *gin.Context) {
	var filter appinv.AuditFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	audits, total, err := h.audits.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, audits, total, filter.Page, filter.PageSize)
}

// ListItems handles GET /audits/:id/items
func (h *AuditHandler) ListItems(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var page appinv.PageRequest
	if !h.BindQuery(c, &page) {
		return
	}
	items, total, err := h.audits.ListItems(c.Request.Context(), id, page)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, page.Page, page.PageSize)
}
