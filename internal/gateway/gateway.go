// Package gateway adapts the repository layer to the sync engine's Gateway
// contract. It also owns the write side effects the original backend ran as
// database triggers: denormalized counters, notification fan-out and
// realtime publication.
package gateway

import (
	"context"
	"errors"
	"log"

	"github.com/tawasol-app/backend/internal/models"
	"github.com/tawasol-app/backend/internal/realtime"
	"github.com/tawasol-app/backend/internal/repositories"
	syncengine "github.com/tawasol-app/backend/internal/sync"
	"gorm.io/gorm"
)

// Store bundles the repositories the gateway composes.
type Store struct {
	Users         repositories.UserRepository
	Posts         repositories.PostRepository
	Comments      repositories.CommentRepository
	Likes         repositories.LikeRepository
	Follows       repositories.FollowRepository
	Messages      repositories.MessageRepository
	Notifications repositories.NotificationRepository
}

// Gateway implements syncengine.Gateway.
type Gateway struct {
	store Store
	db    *gorm.DB // realtime publishing only
}

// New creates a gateway over the given repositories.
func New(store Store, db *gorm.DB) *Gateway {
	return &Gateway{store: store, db: db}
}

func (g *Gateway) FetchMessages(ctx context.Context, userID uint) ([]*models.Message, error) {
	rows, err := g.store.Messages.GetMessagesForUser(userID)
	if err != nil {
		return nil, err
	}
	return asPointers(rows), nil
}

func (g *Gateway) FetchThread(ctx context.Context, userID, peerID uint) ([]*models.Message, error) {
	rows, err := g.store.Messages.GetMessagesBetween(userID, peerID)
	if err != nil {
		return nil, err
	}
	return asPointers(rows), nil
}

func (g *Gateway) InsertMessage(ctx context.Context, senderID, receiverID uint, content string) (*models.Message, error) {
	msg := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Read:       false,
	}
	if err := g.store.Messages.CreateMessage(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (g *Gateway) MarkConversationRead(ctx context.Context, userID, peerID uint) error {
	return g.store.Messages.MarkConversationRead(userID, peerID)
}

func (g *Gateway) FetchPost(ctx context.Context, postID string) (*models.Post, error) {
	return g.store.Posts.GetPostByID(ctx, postID)
}

// InsertLike stores the like, bumps the post counter, fans out the
// notification and publishes the change to the post owner. A like that
// already exists maps to ErrGone: the end state holds.
func (g *Gateway) InsertLike(ctx context.Context, postID string, userID uint) error {
	like := &models.Like{PostID: postID, UserID: userID}
	if err := g.store.Likes.CreateLike(like); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return syncengine.ErrGone
		}
		return err
	}

	if err := g.store.Posts.IncrementLikesCount(ctx, postID, 1); err != nil {
		log.Printf("gateway: increment likes count for post %s: %v", postID, err)
	}
	if post, err := g.store.Posts.GetPostByID(ctx, postID); err == nil {
		g.notify(&models.Notification{
			Type:        models.NotificationLike,
			ActorID:     userID,
			RecipientID: post.UserID,
			PostID:      postID,
		})
		g.publishLike(realtime.ActionInsert, like, post.UserID)
	}
	return nil
}

// DeleteLike removes the like and decrements the counter. A like that is
// already gone maps to ErrGone.
func (g *Gateway) DeleteLike(ctx context.Context, postID string, userID uint) error {
	if err := g.store.Likes.DeleteLike(postID, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return syncengine.ErrGone
		}
		return err
	}
	if err := g.store.Posts.IncrementLikesCount(ctx, postID, -1); err != nil {
		log.Printf("gateway: decrement likes count for post %s: %v", postID, err)
	}
	if post, err := g.store.Posts.GetPostByID(ctx, postID); err == nil {
		g.publishLike(realtime.ActionDelete, &models.Like{PostID: postID, UserID: userID}, post.UserID)
	}
	return nil
}

func (g *Gateway) FetchLikedPostIDs(ctx context.Context, userID uint) ([]string, error) {
	return g.store.Likes.GetLikedPostIDs(userID)
}

func (g *Gateway) FetchComments(ctx context.Context, postID string) ([]*models.Comment, error) {
	rows, err := g.store.Comments.GetCommentsByPostID(postID)
	if err != nil {
		return nil, err
	}
	return asPointers(rows), nil
}

func (g *Gateway) InsertComment(ctx context.Context, postID string, userID uint, content string) (*models.Comment, error) {
	comment := &models.Comment{PostID: postID, UserID: userID, Content: content}
	if err := g.store.Comments.CreateComment(comment); err != nil {
		return nil, err
	}
	if err := g.store.Posts.IncrementCommentsCount(ctx, postID, 1); err != nil {
		log.Printf("gateway: increment comments count for post %s: %v", postID, err)
	}
	if post, err := g.store.Posts.GetPostByID(ctx, postID); err == nil {
		g.notify(&models.Notification{
			Type:        models.NotificationComment,
			ActorID:     userID,
			RecipientID: post.UserID,
			PostID:      postID,
		})
	}
	return comment, nil
}

// UpdateComment edits the comment after an ownership check by id equality.
func (g *Gateway) UpdateComment(ctx context.Context, commentID, userID uint, content string) (*models.Comment, error) {
	comment, err := g.store.Comments.GetCommentByID(commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, syncengine.ErrGone
		}
		return nil, err
	}
	if comment.UserID != userID {
		return nil, ErrForbidden
	}
	comment.Content = content
	if err := g.store.Comments.UpdateComment(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes the comment. Already-deleted maps to ErrGone and the
// comment counter is not decremented a second time.
func (g *Gateway) DeleteComment(ctx context.Context, commentID, userID uint) error {
	comment, err := g.store.Comments.GetCommentByID(commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return syncengine.ErrGone
		}
		return err
	}
	if comment.UserID != userID {
		return ErrForbidden
	}
	if err := g.store.Comments.DeleteComment(commentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return syncengine.ErrGone
		}
		return err
	}
	if err := g.store.Posts.IncrementCommentsCount(ctx, comment.PostID, -1); err != nil {
		log.Printf("gateway: decrement comments count for post %s: %v", comment.PostID, err)
	}
	return nil
}

func (g *Gateway) FetchFollowing(ctx context.Context, userID uint) ([]uint, error) {
	return g.store.Follows.GetFollowingIDs(userID)
}

func (g *Gateway) InsertFollow(ctx context.Context, followerID, followingID uint) error {
	follow := &models.Follow{FollowerID: followerID, FollowingID: followingID}
	if err := g.store.Follows.CreateFollow(follow); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return syncengine.ErrGone
		}
		return err
	}
	g.notify(&models.Notification{
		Type:        models.NotificationFollow,
		ActorID:     followerID,
		RecipientID: followingID,
	})
	return nil
}

func (g *Gateway) DeleteFollow(ctx context.Context, followerID, followingID uint) error {
	if err := g.store.Follows.DeleteFollow(followerID, followingID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return syncengine.ErrGone
		}
		return err
	}
	return nil
}

func (g *Gateway) FetchNotifications(ctx context.Context, userID uint) ([]*models.Notification, error) {
	rows, err := g.store.Notifications.GetNotificationsByRecipient(userID, notificationFetchLimit)
	if err != nil {
		return nil, err
	}
	return asPointers(rows), nil
}

func (g *Gateway) FetchProfiles(ctx context.Context, ids []uint) ([]*models.User, error) {
	rows, err := g.store.Users.GetUsersByIDs(ids)
	if err != nil {
		return nil, err
	}
	return asPointers(rows), nil
}

// notificationFetchLimit bounds the notification backfill on session start.
const notificationFetchLimit = 100

// ErrForbidden reports a mutation on an entity the user does not own.
var ErrForbidden = errors.New("not the owner")

func (g *Gateway) notify(n *models.Notification) {
	if err := g.store.Notifications.CreateNotification(n); err != nil {
		log.Printf("gateway: create %s notification: %v", n.Type, err)
	}
}

func (g *Gateway) publishLike(action string, like *models.Like, postOwnerID uint) {
	if err := realtime.PublishRow(g.db, action, realtime.TableLikes, postOwnerID, like); err != nil {
		log.Printf("gateway: publish like event: %v", err)
	}
}

// asPointers converts a value slice into the pointer slice the sync engine
// caches.
func asPointers[T any](rows []T) []*T {
	out := make([]*T, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out
}
