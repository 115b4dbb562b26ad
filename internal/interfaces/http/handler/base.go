// Package handler implements the storefront HTTP handlers.
package handler

import (
	"errors"
	"net/http"

	appshared "github.com/brewline/storefront/internal/application/shared"
	"github.com/brewline/storefront/internal/domain/shared"
	"github.com/brewline/storefront/internal/infrastructure/logger"
	"github.com/brewline/storefront/internal/interfaces/http/dto"
	"github.com/brewline/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithWarnings sends a 200 response that reports non-fatal problems
func (h *BaseHandler) SuccessWithWarnings(c *gin.Context, data any, warnings appshared.Warnings) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithWarnings(data, warnings))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any, warnings appshared.Warnings) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponseWithWarnings(data, warnings))
}

// List sends a full list with its length in meta
func (h *BaseHandler) List(c *gin.Context, data any, total int) {
	c.JSON(http.StatusOK, dto.NewListResponse(data, total))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// HandleError converts an error into the standard envelope.
// Domain errors keep their code; anything else is a 500 and is logged.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		status := dto.GetHTTPStatus(code)
		if status >= http.StatusInternalServerError {
			logger.GetGinLogger(c).Error("Request failed", zap.String("code", code), zap.Error(err))
		}
		h.Error(c, status, code, domainErr.Message)
		return
	}

	_ = c.Error(err)
	logger.GetGinLogger(c).Error("Unexpected error", zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// bindJSON decodes and validates the body. On failure the response is already written.
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if middleware.AbortIfBodyTooLarge(c, err) {
			return false
		}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			middleware.HandleValidationError(c, verrs)
			return false
		}
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid request body")
		return false
	}
	return true
}

// pathUUID parses a UUID path parameter. On failure the response is already written.
func (h *BaseHandler) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidationFormat, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}
