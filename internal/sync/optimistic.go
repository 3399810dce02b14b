package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tawasol-app/backend/internal/models"
)

// provisionalPrefix marks locally synthesized ids that no server row carries.
const provisionalPrefix = "local-"

// LikeState is the viewer-facing outcome of a like toggle.
type LikeState struct {
	PostID     string `json:"post_id"`
	Liked      bool   `json:"liked"`
	LikesCount int    `json:"likes_count"`
}

// ToggleLike flips the liked flag and the cached like counter immediately,
// then issues the remote mutation. On failure both are reverted. Toggles for
// the same post serialize: a second toggle arriving while one is in flight
// waits for it to settle and then issues the opposite mutation, so a rapid
// double-toggle always lands back on the pre-toggle state.
func (s *Session) ToggleLike(ctx context.Context, postID string) (LikeState, error) {
	post, err := s.cachedPost(ctx, postID)
	if err != nil {
		return LikeState{}, err
	}

	s.beginLikeToggle(postID)
	defer s.endLikeToggle(postID)

	s.mu.Lock()
	wasLiked := s.liked[postID]
	s.liked[postID] = !wasLiked
	s.mu.Unlock()

	delta := 1
	if wasLiked {
		delta = -1
	}
	s.adjustPostLikes(postID, delta)

	if wasLiked {
		err = s.gw.DeleteLike(ctx, postID, s.userID)
	} else {
		err = s.gw.InsertLike(ctx, postID, s.userID)
	}
	// The end state the user wanted is already true remotely.
	if errors.Is(err, ErrGone) {
		err = nil
	}

	s.mu.Lock()
	if err != nil {
		s.liked[postID] = wasLiked
	}
	liked := s.liked[postID]
	s.mu.Unlock()

	if err != nil {
		s.adjustPostLikes(postID, -delta)
		return LikeState{}, fmt.Errorf("toggle like: %w", err)
	}

	count := post.LikesCount + delta
	if e, ok := s.cache.Get(KindPost, postID); ok {
		if p, isPost := e.(*models.Post); isPost {
			count = p.LikesCount
		}
	}
	return LikeState{PostID: postID, Liked: liked, LikesCount: count}, nil
}

// beginLikeToggle claims the per-post toggle slot, waiting for any in-flight
// toggle on the same post to settle first.
func (s *Session) beginLikeToggle(postID string) {
	for {
		s.mu.Lock()
		prev, busy := s.inflightLikes[postID]
		if !busy {
			s.inflightLikes[postID] = make(chan struct{})
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		<-prev
	}
}

func (s *Session) endLikeToggle(postID string) {
	s.mu.Lock()
	done := s.inflightLikes[postID]
	delete(s.inflightLikes, postID)
	s.mu.Unlock()
	close(done)
}

// SendMessage inserts a provisional message so the conversation list reflects
// it immediately, then issues the remote insert. On success the provisional
// entity is replaced by the server row, keyed by the temporary id held here
// rather than by content, so duplicate-content messages are never merged. On
// failure the provisional entity is removed and the error surfaced.
func (s *Session) SendMessage(ctx context.Context, receiverID uint, content string) (*models.Message, error) {
	provisional := &models.Message{
		ID:         provisionalPrefix + uuid.NewString(),
		SenderID:   s.userID,
		ReceiverID: receiverID,
		Content:    content,
		Read:       true, // self-sent
		CreatedAt:  time.Now(),
	}

	s.mu.Lock()
	s.provisional[provisional.ID] = true
	s.pendingSends++
	s.mu.Unlock()
	s.cache.Put(KindMessage, provisional)

	confirmed, err := s.gw.InsertMessage(ctx, s.userID, receiverID, content)

	s.mu.Lock()
	delete(s.provisional, provisional.ID)
	s.pendingSends--
	s.mu.Unlock()

	s.cache.Remove(KindMessage, provisional.ID)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	s.cache.Put(KindMessage, confirmed)
	return confirmed, nil
}

// MarkThreadRead flips the read flag on every cached incoming message from
// the peer and issues the remote update. No rollback on failure: the next
// reconcile re-fetch restores server truth.
func (s *Session) MarkThreadRead(ctx context.Context, peerID uint) error {
	for _, m := range s.cachedMessages() {
		if m.SenderID == peerID && m.ReceiverID == s.userID && !m.Read {
			updated := *m
			updated.Read = true
			s.cache.Put(KindMessage, &updated)
		}
	}
	if err := s.gw.MarkConversationRead(ctx, s.userID, peerID); err != nil {
		return fmt.Errorf("mark thread read: %w", err)
	}
	return nil
}

// Comments returns the post's comment list, fetching and caching it.
func (s *Session) Comments(ctx context.Context, postID string) ([]*models.Comment, error) {
	return s.refetchComments(ctx, postID)
}

// AddComment issues the insert and then re-fetches the post's comment list.
// Comments are low-frequency, so a full re-fetch after each mutation is
// simpler than patching and cannot drift from server-side counters.
func (s *Session) AddComment(ctx context.Context, postID string, content string) ([]*models.Comment, error) {
	if _, err := s.gw.InsertComment(ctx, postID, s.userID, content); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return s.refetchComments(ctx, postID)
}

// UpdateComment edits a comment and re-fetches the list.
func (s *Session) UpdateComment(ctx context.Context, postID string, commentID uint, content string) ([]*models.Comment, error) {
	if _, err := s.gw.UpdateComment(ctx, commentID, s.userID, content); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return s.refetchComments(ctx, postID)
}

// DeleteComment removes a comment and re-fetches the list. Deleting a comment
// that is already gone remotely is success: the end state holds.
func (s *Session) DeleteComment(ctx context.Context, postID string, commentID uint) ([]*models.Comment, error) {
	err := s.gw.DeleteComment(ctx, commentID, s.userID)
	if err != nil && !errors.Is(err, ErrGone) {
		return nil, fmt.Errorf("delete comment: %w", err)
	}
	return s.refetchComments(ctx, postID)
}

// ToggleFollow flips follow-set membership immediately, issues the remote
// mutation and reverts the flip on failure. Toggles for the same target
// serialize like the like toggles do: the second one waits and then issues
// the opposite mutation, netting a double-toggle to its pre-toggle state.
func (s *Session) ToggleFollow(ctx context.Context, targetID uint) (bool, error) {
	if targetID == s.userID {
		return false, fmt.Errorf("cannot follow yourself")
	}

	s.beginFollowToggle(targetID)
	defer s.endFollowToggle(targetID)

	s.mu.Lock()
	wasFollowing := s.following[targetID]
	if wasFollowing {
		delete(s.following, targetID)
	} else {
		s.following[targetID] = true
	}
	s.mu.Unlock()

	var err error
	if wasFollowing {
		err = s.gw.DeleteFollow(ctx, s.userID, targetID)
	} else {
		err = s.gw.InsertFollow(ctx, s.userID, targetID)
	}
	if errors.Is(err, ErrGone) {
		err = nil
	}

	s.mu.Lock()
	if err != nil {
		if wasFollowing {
			s.following[targetID] = true
		} else {
			delete(s.following, targetID)
		}
	}
	following := s.following[targetID]
	s.mu.Unlock()

	if err != nil {
		return following, fmt.Errorf("toggle follow: %w", err)
	}
	return following, nil
}

func (s *Session) beginFollowToggle(targetID uint) {
	for {
		s.mu.Lock()
		prev, busy := s.inflightFollows[targetID]
		if !busy {
			s.inflightFollows[targetID] = make(chan struct{})
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		<-prev
	}
}

func (s *Session) endFollowToggle(targetID uint) {
	s.mu.Lock()
	done := s.inflightFollows[targetID]
	delete(s.inflightFollows, targetID)
	s.mu.Unlock()
	close(done)
}

// cachedPost returns the cached post, fetching it on a miss so the optimistic
// counter has a server baseline to adjust.
func (s *Session) cachedPost(ctx context.Context, postID string) (*models.Post, error) {
	if e, ok := s.cache.Get(KindPost, postID); ok {
		if p, isPost := e.(*models.Post); isPost {
			return p, nil
		}
	}
	p, err := s.gw.FetchPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("fetch post: %w", err)
	}
	s.cache.Put(KindPost, p)
	return p, nil
}

func (s *Session) adjustPostLikes(postID string, delta int) {
	e, ok := s.cache.Get(KindPost, postID)
	if !ok {
		return
	}
	p, isPost := e.(*models.Post)
	if !isPost {
		return
	}
	updated := *p
	updated.LikesCount += delta
	if updated.LikesCount < 0 {
		updated.LikesCount = 0
	}
	s.cache.Put(KindPost, &updated)
}

// refetchComments replaces the cached comments for the post with server
// truth.
func (s *Session) refetchComments(ctx context.Context, postID string) ([]*models.Comment, error) {
	comments, err := s.gw.FetchComments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("fetch comments: %w", err)
	}
	for _, e := range s.cache.All(KindComment) {
		if c, ok := e.(*models.Comment); ok && c.PostID == postID {
			s.cache.Remove(KindComment, c.EntityID())
		}
	}
	for _, c := range comments {
		s.cache.Put(KindComment, c)
	}
	return comments, nil
}

func sortNotifications(views []models.NotificationView) {
	sort.Slice(views, func(i, j int) bool {
		if !views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].CreatedAt.After(views[j].CreatedAt)
		}
		return views[i].ID > views[j].ID
	})
}
