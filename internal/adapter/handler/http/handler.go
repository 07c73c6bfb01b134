package http

import (
	"errors"
	"net/http"

	"github.com/MikeRez0/ypstore/internal/core/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errorStatuses is matched in order with errors.Is; the first hit wins.
var errorStatuses = []struct {
	err    error
	status int
}{
	{domain.ErrInternal, http.StatusInternalServerError},
	{domain.ErrDataNotFound, http.StatusNotFound},
	{domain.ErrConflictingData, http.StatusConflict},
	{domain.ErrOrderInProgress, http.StatusConflict},

	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrEmptyAuthorizationHeader, http.StatusUnauthorized},
	{domain.ErrInvalidAuthorizationHeader, http.StatusUnauthorized},
	{domain.ErrInvalidAuthorizationType, http.StatusUnauthorized},
	{domain.ErrInvalidToken, http.StatusUnauthorized},
	{domain.ErrExpiredToken, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},

	{domain.ErrNoUpdatedData, http.StatusBadRequest},
	{domain.ErrBadRequest, http.StatusBadRequest},
	{domain.ErrInsufficientStock, http.StatusBadRequest},
	{domain.ErrInvalidTransition, http.StatusBadRequest},
	{domain.ErrInvalidOrderStatus, http.StatusBadRequest},
}

func statusFor(err error) (int, bool) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status, true
		}
	}
	return http.StatusInternalServerError, false
}

type errorResponse struct {
	Error string `json:"error"`
}

type Handler struct {
	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

func (h *Handler) errorBody(ctx *gin.Context, err error) (int, errorResponse) {
	statusCode, ok := statusFor(err)
	if !ok || statusCode == http.StatusInternalServerError {
		if !ok {
			h.logger.Error("error processing request",
				zap.String("path", ctx.FullPath()), zap.Error(err))
		}
		return http.StatusInternalServerError, errorResponse{Error: domain.ErrInternal.Error()}
	}
	return statusCode, errorResponse{Error: err.Error()}
}

// handleValidationError sends 400 for a malformed request body or parameter
func (h *Handler) handleValidationError(ctx *gin.Context, err error) {
	h.logger.Debug("bad request", zap.Error(err))
	ctx.JSON(http.StatusBadRequest, errorResponse{Error: domain.ErrBadRequest.Error()})
}

// handleAbort sends an error response and stops the handler chain
func (h *Handler) handleAbort(ctx *gin.Context, err error) {
	statusCode, body := h.errorBody(ctx, err)
	ctx.AbortWithStatusJSON(statusCode, body)
}

func (h *Handler) handleError(ctx *gin.Context, err error) {
	statusCode, body := h.errorBody(ctx, err)
	ctx.JSON(statusCode, body)
}

// handleSuccessWithStatus sends data with the given status, or an empty body when data is nil
func (h *Handler) handleSuccessWithStatus(ctx *gin.Context, data any, status int) {
	if data != nil {
		ctx.JSON(status, data)
	} else {
		ctx.Status(status)
	}
}

func (h *Handler) handleSuccess(ctx *gin.Context, data any) {
	h.handleSuccessWithStatus(ctx, data, http.StatusOK)
}
