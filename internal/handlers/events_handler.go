package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tawasol-app/backend/internal/middleware"
	"github.com/tawasol-app/backend/internal/realtime"
)

const keepAliveInterval = 25 * time.Second

type EventsHandler struct {
	channel realtime.Channel
}

func NewEventsHandler(channel realtime.Channel) *EventsHandler {
	return &EventsHandler{channel: channel}
}

// RegisterEventRoutes mounts the event stream endpoint.
func (h *EventsHandler) RegisterEventRoutes(g *echo.Group) {
	g.GET("/events", h.Stream)
}

// Stream pushes the viewer's realtime events over server-sent events.
// Periodic comment lines keep idle connections from being reaped by
// proxies.
func (h *EventsHandler) Stream(c echo.Context) error {
	userID := middleware.UserID(c)

	sub, err := h.channel.Subscribe(realtime.Filter{UserID: userID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to subscribe")
	}
	defer h.channel.Unsubscribe(sub)

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-keepAlive.C:
			if _, err := fmt.Fprint(res, ": keep-alive\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case event, ok := <-sub.Events():
			if !ok {
				// Listener dropped the connection; the client reconnects
				// and refetches.
				return nil
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event.Table, payload); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
