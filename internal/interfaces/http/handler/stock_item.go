package handler

import (
	"github.com/gin-gonic/gin"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/infrastructure/auth"
	"github.com/stockledger/backend/internal/interfaces/http/middleware"
)

// StockItemHandler serves stores, stock items, their locations and history
type StockItemHandler struct {
	BaseHandler
	stock *appinv.StockService
}

// NewStockItemHandler creates a new StockItemHandler
func NewStockItemHandler(stock *appinv.StockService) *StockItemHandler {
	return &StockItemHandler{stock: stock}
}

// RegisterRoutes mounts the stock routes on rg
func (h *StockItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	view := middleware.RequireCapability(auth.CapView)
	manage := middleware.RequireCapability(auth.CapManageStock)

	stores := rg.Group("/stores")
	stores.GET("", view, h.ListStores)
	stores.POST("", manage, h.CreateStore)
	stores.GET("/:id", view, h.GetStore)
	stores.POST("/:id/deactivate", manage, h.DeactivateStore)

	items := rg.Group("/stock-items")
	items.GET("", view, h.List)
	items.POST("", manage, h.Create)
	items.GET("/low-stock", view, h.LowStock)
	items.GET("/condition-summary", view, h.ConditionSummary)
	items.GET("/:id", view, h.Get)
	items.PUT("/:id", manage, h.Update)
	items.DELETE("/:id", manage, h.Delete)
	items.POST("/:id/receive", manage, h.Receive)
	items.POST("/:id/issue", manage, h.Issue)
	items.GET("/:id/locations", view, h.Locations)
	items.PATCH("/:id/locations/:location_id", manage, h.UpdateLocationAisle)
	items.GET("/:id/history", view, h.ItemHistory)

	rg.GET("/history", view, h.History)
	rg.GET("/admin/consistency", manage, h.ConsistencyReport)
}

// CreateStore handles POST /stores
func (h *StockItemHandler) CreateStore(c *gin.Context) {
	var req appinv.CreateStoreRequest
	if !h.BindJSON(c, &req) {
		return
	}
	store, err := h.stock.CreateStore(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, store)
}

// GetStore handles GET /stores/:id
func (h *StockItemHandler) GetStore(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	store, err := h.stock.GetStore(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, store)
}

// DeactivateStore handles POST /stores/:id/deactivate
func (h *StockItemHandler) DeactivateStore(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	store, err := h.stock.DeactivateStore(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, store)
}

// ListStores handles GET /stores
func (h *StockItemHandler) ListStores(c *gin.Context) {
	var page appinv.PageRequest
	if !h.BindQuery(c, &page) {
		return
	}
	stores, total, err := h.stock.ListStores(c.Request.Context(), page)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, stores, total, page.Page, page.PageSize)
}

// Create handles POST /stock-items
func (h *StockItemHandler) Create(c *gin.Context) {
	var req appinv.CreateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.Actor = h.Actor(c)
	item, err := h.stock.CreateItem(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// Get handles GET /stock-items/:id
func (h *StockItemHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	item, err := h.stock.GetItem(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// List handles GET /stock-items
func (h *StockItemHandler) List(c *gin.Context) {
	var filter appinv.ItemListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	items, total, err := h.stock.ListItems(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Update handles PUT /stock-items/:id
func (h *StockItemHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req appinv.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.Actor = h.Actor(c)
	item, err := h.stock.UpdateItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Delete handles DELETE /stock-items/:id?note=...
func (h *StockItemHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.stock.DeleteItem(c.Request.Context(), id, h.Actor(c), c.Query("note")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Receive handles POST /stock-items/:id/receive
func (h *StockItemHandler) Receive(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req appinv.ReceiveRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.Actor = h.Actor(c)
	item, err := h.stock.Receive(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Issue handles POST /stock-items/:id/issue
func (h *StockItemHandler) Issue(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req appinv.IssueRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.Actor = h.Actor(c)
	item, err := h.stock.Issue(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Locations handles GET /stock-items/:id/locations
func (h *StockItemHandler) Locations(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	locations, err := h.stock.Locations(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, locations)
}

// UpdateLocationAisle handles PATCH /stock-items/:id/locations/:location_id
func (h *StockItemHandler) UpdateLocationAisle(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	locationID, ok := h.ParamID(c, "location_id")
	if !ok {
		return
	}
	var req appinv.UpdateAisleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	loc, err := h.stock.UpdateLocationAisle(c.Request.Context(), id, locationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, loc)
}

// LowStock handles GET /stock-items/low-stock
func (h *StockItemHandler) LowStock(c *gin.Context) {
	var page appinv.PageRequest
	if !h.BindQuery(c, &page) {
		return
	}
	items, total, err := h.stock.LowStock(c.Request.Context(), page)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, page.Page, page.PageSize)
}

// ConditionSummary handles GET /stock-items/condition-summary
func (h *StockItemHandler) ConditionSummary(c *gin.Context) {
	summary, err := h.stock.ConditionSummary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ItemHistory handles GET /stock-items/:id/history
func (h *StockItemHandler) ItemHistory(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var filter appinv.HistoryFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	entries, total, err := h.stock.ItemHistory(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}

// History handles GET /history
func (h *StockItemHandler) History(c *gin.Context) {
	var filter appinv.HistoryFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	entries, total, err := h.stock.History(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}

// ConsistencyReport handles GET /admin/consistency
func (h *StockItemHandler) ConsistencyReport(c *gin.Context) {
	report, err := h.stock.ConsistencyReport(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
