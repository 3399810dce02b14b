package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/tawasol-app/backend/internal/models"
	syncengine "github.com/tawasol-app/backend/internal/sync"
)

// stubNotificationRepo reports a store-side unread total larger than the
// session's capped backfill.
type stubNotificationRepo struct {
	unread int64
}

func (r *stubNotificationRepo) CreateNotification(n *models.Notification) error { return nil }
func (r *stubNotificationRepo) GetNotificationsByRecipient(recipientID uint, limit int) ([]models.Notification, error) {
	return nil, nil
}
func (r *stubNotificationRepo) MarkRead(id, recipientID uint) error  { return nil }
func (r *stubNotificationRepo) MarkAllRead(recipientID uint) error   { return nil }
func (r *stubNotificationRepo) UnreadCount(recipientID uint) (int64, error) {
	return r.unread, nil
}

func TestGetNotifications_UnreadTotalComesFromStore(t *testing.T) {
	gw := &nullGateway{
		notifications: []*models.Notification{
			{ID: 1, Type: models.NotificationLike, ActorID: 2, RecipientID: 1, CreatedAt: time.Now()},
		},
	}
	sessions := syncengine.NewManager(gw, nullChannel{})
	defer sessions.Close()

	h := NewNotificationHandler(&stubNotificationRepo{unread: 7}, sessions)

	c, rec := newAuthedContext(1, "/notifications")
	if err := h.GetNotifications(c); err != nil {
		t.Fatalf("get notifications: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Notifications []models.NotificationView `json:"notifications"`
		UnreadCount   int                       `json:"unread_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Notifications) != 1 {
		t.Fatalf("cached notifications = %d, want 1", len(body.Notifications))
	}
	if body.UnreadCount != 7 {
		t.Fatalf("unread_count = %d, want the store total 7", body.UnreadCount)
	}
}
