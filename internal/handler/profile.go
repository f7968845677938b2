package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/healthmate-ai/backend/internal/service"
)

// ProfileHandler implements health profile API endpoints
type ProfileHandler struct {
	service *service.ProfileService
	logger  *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(service *service.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger,
	}
}

// SaveProfile creates or replaces the caller's health profile
func (h *ProfileHandler) SaveProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Invalid request body",
			Details: stringPtr(err.Error()),
		})
		return
	}

	saved, err := h.service.SaveProfile(c.Request.Context(), req.toProfile(userID))
	if err != nil {
		h.logger.Error("failed to save health profile",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to save health profile",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, saved)
}

// GetProfile returns the caller's health profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to get health profile",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to get health profile",
			Details: stringPtr(err.Error()),
		})
		return
	}

	if profile == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "NOT_FOUND",
			Message: "Health profile not found",
		})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// DeleteProfile removes the caller's health profile
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteProfile(c.Request.Context(), userID); err != nil {
		h.logger.Error("failed to delete health profile",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to delete health profile",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// GetHealthSummary returns the profile with derived metric categories
func (h *ProfileHandler) GetHealthSummary(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	summary, err := h.service.GetHealthSummary(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to get health summary",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to get health summary",
			Details: stringPtr(err.Error()),
		})
		return
	}

	if summary == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "NOT_FOUND",
			Message: "Health profile not found",
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}
