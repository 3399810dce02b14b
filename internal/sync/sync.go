// Package sync keeps a per-user in-memory view of the social graph
// consistent with the data store: an entity cache fed by fetches and live
// push events, conversation aggregation derived from it, and optimistic
// mutations that reconcile or roll back against the gateway.
package sync

import (
	"context"
	"errors"
	"time"

	"github.com/tawasol-app/backend/internal/models"
)

// Kind names an entity type held by the cache.
type Kind string

const (
	KindMessage      Kind = "message"
	KindNotification Kind = "notification"
	KindComment      Kind = "comment"
	KindPost         Kind = "post"
	KindProfile      Kind = "profile"
)

// Entity is a server-owned record with a stable id. All cached types
// implement it.
type Entity interface {
	EntityID() string
	CreatedTime() time.Time
}

// ErrGone reports that a mutation targeted an entity that no longer exists
// remotely (or a uniqueness conflict for an insert). The end state the caller
// wanted is already true, so the coordinator treats it as success-no-op.
var ErrGone = errors.New("entity already in requested state")

// Gateway is the only component of the sync engine permitted to perform
// network I/O. Each operation is a plain request/response; retry policy, if
// any, belongs to the caller because only the caller knows whether a local
// speculative state exists to reconcile or roll back.
type Gateway interface {
	FetchMessages(ctx context.Context, userID uint) ([]*models.Message, error)
	FetchThread(ctx context.Context, userID, peerID uint) ([]*models.Message, error)
	InsertMessage(ctx context.Context, senderID, receiverID uint, content string) (*models.Message, error)
	MarkConversationRead(ctx context.Context, userID, peerID uint) error

	FetchPost(ctx context.Context, postID string) (*models.Post, error)
	InsertLike(ctx context.Context, postID string, userID uint) error
	DeleteLike(ctx context.Context, postID string, userID uint) error
	FetchLikedPostIDs(ctx context.Context, userID uint) ([]string, error)

	FetchComments(ctx context.Context, postID string) ([]*models.Comment, error)
	InsertComment(ctx context.Context, postID string, userID uint, content string) (*models.Comment, error)
	UpdateComment(ctx context.Context, commentID, userID uint, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, commentID, userID uint) error

	FetchFollowing(ctx context.Context, userID uint) ([]uint, error)
	InsertFollow(ctx context.Context, followerID, followingID uint) error
	DeleteFollow(ctx context.Context, followerID, followingID uint) error

	FetchNotifications(ctx context.Context, userID uint) ([]*models.Notification, error)
	FetchProfiles(ctx context.Context, ids []uint) ([]*models.User, error)
}
