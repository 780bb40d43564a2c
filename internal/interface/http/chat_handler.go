package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agriconnect/agriconnect/internal/domain/chat"
	apperrors "github.com/agriconnect/agriconnect/pkg/errors"
)

// ChatHandler exposes direct messaging endpoints.
type ChatHandler struct {
	svc    chat.Service
	logger *slog.Logger
}

// NewChatHandler constructs the chat handler.
func NewChatHandler(svc chat.Service, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, logger: logger.With("component", "http.chat")}
}

// SendMessage delivers a message to another user.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing auth context", nil))
		return
	}
	var req struct {
		RecipientID string `json:"recipientId"`
		Text        string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	msg, err := h.svc.SendMessage(c.Request.Context(), claims.UserID, req.RecipientID, req.Text)
	if err != nil {
		abortWithError(c, chatError(err))
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// ListConversations returns the caller's conversations.
func (h *ChatHandler) ListConversations(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing auth context", nil))
		return
	}
	conversations, err := h.svc.ListConversations(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, chatError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// ListMessages returns a conversation's messages.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing auth context", nil))
		return
	}
	messages, err := h.svc.ListMessages(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		abortWithError(c, chatError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func chatError(err error) *HTTPError {
	switch {
	case errors.Is(err, chat.ErrConversationNotFound):
		return NewHTTPError(http.StatusNotFound, "not_found", errMessage(err), err)
	case apperrors.IsCode(err, "invalid_input"):
		return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	default:
		return NewHTTPError(http.StatusInternalServerError, "chat_failed", errMessage(err), err)
	}
}
