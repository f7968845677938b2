package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/healthmate-ai/backend/internal/service"
)

// ChatHandler implements health chat API endpoints
type ChatHandler struct {
	service *service.ChatService
	logger  *zap.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(service *service.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  logger,
	}
}

// SendMessage runs one chat turn and returns the stored exchange
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "A message is required",
			Details: stringPtr(err.Error()),
		})
		return
	}

	exchange, err := h.service.SendMessage(c.Request.Context(), userID, req.Message)
	if err != nil {
		h.logger.Error("failed to process chat message",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to process chat message",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, exchange)
}

// GetHistory returns the caller's recent exchanges, oldest first
func (h *ChatHandler) GetHistory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	history, err := h.service.History(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to get chat history",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to get chat history",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, history)
}

// ClearHistory wipes the caller's chat history
func (h *ChatHandler) ClearHistory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.service.Clear(c.Request.Context(), userID); err != nil {
		h.logger.Error("failed to clear chat history",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to clear chat history",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, ClearChatResponse{Cleared: true})
}

// StreamMessages pushes the caller's new exchanges over server-sent
// events until the client disconnects
func (h *ChatHandler) StreamMessages(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	messages, unsubscribe := h.service.Subscribe(userID)
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	h.logger.Info("chat stream opened", zap.String("user_id", userID))

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, open := <-messages:
			if !open {
				return false
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				h.logger.Error("failed to encode chat event", zap.Error(err))
				return true
			}
			c.SSEvent("message", string(payload))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})

	h.logger.Info("chat stream closed", zap.String("user_id", userID))
}
