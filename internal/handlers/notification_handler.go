package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tawasol-app/backend/internal/middleware"
	"github.com/tawasol-app/backend/internal/repositories"
	syncengine "github.com/tawasol-app/backend/internal/sync"
)

type NotificationHandler struct {
	notificationRepo repositories.NotificationRepository
	sessions         *syncengine.Manager
}

func NewNotificationHandler(notificationRepo repositories.NotificationRepository, sessions *syncengine.Manager) *NotificationHandler {
	return &NotificationHandler{notificationRepo: notificationRepo, sessions: sessions}
}

// RegisterNotificationRoutes mounts the notification endpoints.
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.PUT("/notifications/read-all", h.MarkAllRead)
	g.PUT("/notifications/:id/read", h.MarkRead)
}

// GetNotifications returns the viewer's notifications, newest first, with
// actor profiles and the unread total.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	userID := middleware.UserID(c)

	session, err := h.sessions.Session(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load session")
	}

	views, unread := session.Notifications()

	// The session backfill is capped, so the store count is authoritative
	// for the badge total.
	if total, err := h.notificationRepo.UnreadCount(userID); err == nil {
		unread = int(total)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": views,
		"unread_count":  unread,
	})
}

// MarkRead marks one of the viewer's notifications as read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID := middleware.UserID(c)

	notificationID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}

	if err := h.notificationRepo.MarkRead(notificationID, userID); errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
	} else if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to mark notification read")
	}

	if session, err := h.sessions.Session(c.Request().Context(), userID); err == nil {
		session.MarkNotificationRead(notificationID)
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead marks every notification of the viewer as read.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID := middleware.UserID(c)

	if err := h.notificationRepo.MarkAllRead(userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to mark notifications read")
	}

	if session, err := h.sessions.Session(c.Request().Context(), userID); err == nil {
		session.MarkAllNotificationsRead()
	}
	return c.NoContent(http.StatusNoContent)
}
