package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tawasol-app/backend/internal/middleware"
	"github.com/tawasol-app/backend/internal/models"
	syncengine "github.com/tawasol-app/backend/internal/sync"
)

type MessageHandler struct {
	sessions *syncengine.Manager
}

func NewMessageHandler(sessions *syncengine.Manager) *MessageHandler {
	return &MessageHandler{sessions: sessions}
}

// RegisterMessageRoutes mounts the direct message endpoints.
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.GET("/conversations", h.GetConversations)
	g.GET("/messages/:peer_id", h.OpenThread)
	g.DELETE("/messages/:peer_id/active", h.CloseThread)
	g.POST("/messages", h.SendMessage)
}

// GetConversations returns the viewer's conversation list, one entry per
// peer, newest first, with unread counts.
func (h *MessageHandler) GetConversations(c echo.Context) error {
	userID := middleware.UserID(c)

	session, err := h.sessions.Session(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load session")
	}
	return c.JSON(http.StatusOK, session.Conversations())
}

// OpenThread returns the full two-party thread with the given peer,
// oldest first, and marks it read.
func (h *MessageHandler) OpenThread(c echo.Context) error {
	userID := middleware.UserID(c)

	peerID, err := parseUintParam(c, "peer_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid peer ID")
	}

	session, err := h.sessions.Session(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load session")
	}

	msgs, err := session.OpenThread(c.Request().Context(), peerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch messages")
	}
	return c.JSON(http.StatusOK, msgs)
}

// CloseThread clears the viewer's active conversation selection.
func (h *MessageHandler) CloseThread(c echo.Context) error {
	userID := middleware.UserID(c)

	peerID, err := parseUintParam(c, "peer_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid peer ID")
	}

	session, err := h.sessions.Session(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load session")
	}

	session.CloseThread(peerID)
	return c.NoContent(http.StatusNoContent)
}

// SendMessage sends a direct message and returns the stored row.
func (h *MessageHandler) SendMessage(c echo.Context) error {
	userID := middleware.UserID(c)

	req := new(models.SendMessageRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	if req.ReceiverID == userID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot message yourself")
	}

	session, err := h.sessions.Session(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load session")
	}

	msg, err := session.SendMessage(c.Request().Context(), req.ReceiverID, req.Content)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send message")
	}
	return c.JSON(http.StatusCreated, msg)
}
