package handler

import (
	"github.com/gin-gonic/gin"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/infrastructure/auth"
	"github.com/stockledger/backend/internal/interfaces/http/middleware"
)

// CommitmentHandler serves customer commitments
type CommitmentHandler struct {
	BaseHandler
	commitments *appinv.CommitmentService
}

// NewCommitmentHandler creates a new CommitmentHandler
func NewCommitmentHandler(commitments *appinv.CommitmentService) *CommitmentHandler {
	return &CommitmentHandler{commitments: commitments}
}

// RegisterRoutes mounts the commitment routes on rg
func (h *CommitmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	view := middleware.RequireCapability(auth.CapView)
	manage := middleware.RequireCapability(auth.CapCommit)

	g := rg.Group("/commitments")
	g.GET("", view, h.List)
	g.POST("", manage, h.Commit)
	g.GET("/:id", view, h.Get)
	g.POST("/:id/fulfil", manage, h.Fulfil)
	g.POST("/:id/release", manage, h.Release)
}

// Commit handles POST /commitments
func (h *CommitmentHandler) Commit(c *gin.Context) {
	var req appinv.CommitRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.Actor = h.Actor(c)
	commitment, err := h.commitments.Commit(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, commitment)
}

// Fulfil handles POST /commitments/:id/fulfil. The body is optional.
func (h *CommitmentHandler) Fulfil(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req appinv.FulfilRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}
	req.Actor = h.Actor(c)
	commitment, err := h.commitments.Fulfil(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, commitment)
}

// Release handles POST /commitments/:id/release
func (h *CommitmentHandler) Release(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	commitment, err := h.commitments.Release(c.Request.Context(), id, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, commitment)
}

// Get handles GET /commitments/:id
func (h *CommitmentHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	commitment, err := h.commitments.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, commitment)
}

// List handles GET /commitments
func (h *CommitmentHandler) List(c *gin.Context) {
	var filter appinv.CommitmentFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	itemID, ok := h.QueryID(c, "stock_item_id")
	if !ok {
		return
	}
	filter.StockItemID = itemID
	commitments, total, err := h.commitments.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, commitments, total, filter.Page, filter.PageSize)
}
