package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/infrastructure/logger"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
	"github.com/stockledger/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the status derived from code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		middleware.GetRequestID(c),
		details,
	))
}

// HandleError converts ledger errors to HTTP responses. Typed errors carry
// their own message; anything unrecognised is logged and hidden behind 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var validationErr *shared.ValidationError
	if errors.As(err, &validationErr) {
		h.ValidationError(c, []dto.ValidationDetail{{Field: validationErr.Field, Message: validationErr.Message}})
		return
	}

	var consistencyErr *shared.ConsistencyViolation
	if errors.As(err, &consistencyErr) {
		logger.GetGinLogger(c).Error("Ledger consistency violated",
			zap.String("stock_item_id", consistencyErr.ItemID.String()),
			zap.Int64("recorded", consistencyErr.Recorded),
			zap.Int64("location_sum", consistencyErr.LocationSum),
		)
		h.Error(c, dto.ErrCodeConsistencyViolation, err.Error())
		return
	}

	var stockErr *shared.InsufficientStockError
	var transitionErr *shared.IllegalTransitionError
	if errors.As(err, &stockErr) || errors.As(err, &transitionErr) {
		h.Error(c, shared.ErrorCode(err), err.Error())
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, domainErr.Code, domainErr.Message)
		return
	}

	logger.GetGinLogger(c).Error("Unhandled error", zap.Error(err))
	h.Error(c, dto.ErrCodeInternal, "An unexpected error occurred")
}

// BindJSON binds the request body, answering 400 itself on failure
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.ValidationError(c, middleware.ValidationDetails(err))
		return false
	}
	return true
}

// BindQuery binds query parameters, answering 400 itself on failure
func (h *BaseHandler) BindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		h.ValidationError(c, middleware.ValidationDetails(err))
		return false
	}
	return true
}

// ParamID parses the named path parameter as a UUID
func (h *BaseHandler) ParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.ValidationError(c, []dto.ValidationDetail{{Field: name, Message: "Invalid UUID format"}})
		return uuid.Nil, false
	}
	return id, true
}

// QueryID parses an optional UUID query parameter
func (h *BaseHandler) QueryID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.ValidationError(c, []dto.ValidationDetail{{Field: name, Message: "Invalid UUID format"}})
		return nil, false
	}
	return &id, true
}

// Actor returns the username recorded on every ledger write
func (h *BaseHandler) Actor(c *gin.Context) string {
	return middleware.GetActor(c)
}
