package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tawasol-app/backend/internal/middleware"
	"github.com/tawasol-app/backend/internal/models"
	"github.com/tawasol-app/backend/internal/realtime"
)

// nullGateway satisfies the session gateway with empty data, except for the
// notifications a test seeds into it.
type nullGateway struct {
	notifications []*models.Notification
}

func (g *nullGateway) FetchMessages(ctx context.Context, userID uint) ([]*models.Message, error) {
	return nil, nil
}

func (g *nullGateway) FetchThread(ctx context.Context, userID, peerID uint) ([]*models.Message, error) {
	return nil, nil
}

func (g *nullGateway) InsertMessage(ctx context.Context, senderID, receiverID uint, content string) (*models.Message, error) {
	return &models.Message{ID: "srv-0001", SenderID: senderID, ReceiverID: receiverID, Content: content, CreatedAt: time.Now()}, nil
}

func (g *nullGateway) MarkConversationRead(ctx context.Context, userID, peerID uint) error {
	return nil
}

func (g *nullGateway) FetchPost(ctx context.Context, postID string) (*models.Post, error) {
	return &models.Post{}, nil
}

func (g *nullGateway) InsertLike(ctx context.Context, postID string, userID uint) error { return nil }
func (g *nullGateway) DeleteLike(ctx context.Context, postID string, userID uint) error { return nil }

func (g *nullGateway) FetchLikedPostIDs(ctx context.Context, userID uint) ([]string, error) {
	return nil, nil
}

func (g *nullGateway) FetchComments(ctx context.Context, postID string) ([]*models.Comment, error) {
	return nil, nil
}

func (g *nullGateway) InsertComment(ctx context.Context, postID string, userID uint, content string) (*models.Comment, error) {
	return &models.Comment{}, nil
}

func (g *nullGateway) UpdateComment(ctx context.Context, commentID, userID uint, content string) (*models.Comment, error) {
	return &models.Comment{}, nil
}

func (g *nullGateway) DeleteComment(ctx context.Context, commentID, userID uint) error { return nil }

func (g *nullGateway) FetchFollowing(ctx context.Context, userID uint) ([]uint, error) {
	return nil, nil
}

func (g *nullGateway) InsertFollow(ctx context.Context, followerID, followingID uint) error {
	return nil
}

func (g *nullGateway) DeleteFollow(ctx context.Context, followerID, followingID uint) error {
	return nil
}

func (g *nullGateway) FetchNotifications(ctx context.Context, userID uint) ([]*models.Notification, error) {
	return append([]*models.Notification(nil), g.notifications...), nil
}

func (g *nullGateway) FetchProfiles(ctx context.Context, ids []uint) ([]*models.User, error) {
	return nil, nil
}

// nullChannel hands out subscriptions nothing ever feeds.
type nullChannel struct{}

func (nullChannel) Subscribe(f realtime.Filter) (*realtime.Subscription, error) {
	return realtime.NewSubscription(f, 1), nil
}

func (nullChannel) Unsubscribe(s *realtime.Subscription) {}

// newAuthedContext builds an echo context carrying the resolved user id, as
// the auth middleware would leave it.
func newAuthedContext(userID uint, path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextUserID, userID)
	return c, rec
}
