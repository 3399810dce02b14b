package sync

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"

	"github.com/tawasol-app/backend/internal/models"
	"github.com/tawasol-app/backend/internal/realtime"
)

// Session is one user's live view of the store: entity cache, follow and
// liked sets, and the bookkeeping for in-flight optimistic mutations. All
// mutation goes through the session so revert semantics are defined once.
type Session struct {
	userID  uint
	cache   *Cache
	gw      Gateway
	channel realtime.Channel

	mu              sync.Mutex
	following       map[uint]bool
	liked           map[string]bool
	inflightLikes   map[string]chan struct{}
	inflightFollows map[uint]chan struct{}
	provisional     map[string]bool
	pendingSends    int
	activePeer      uint

	cancel context.CancelFunc
}

// NewSession creates a session for the user. Call Start before use.
func NewSession(userID uint, gw Gateway, channel realtime.Channel) *Session {
	return &Session{
		userID:          userID,
		cache:           NewCache(),
		gw:              gw,
		channel:         channel,
		following:       make(map[uint]bool),
		liked:           make(map[string]bool),
		inflightLikes:   make(map[string]chan struct{}),
		inflightFollows: make(map[uint]chan struct{}),
		provisional:     make(map[string]bool),
	}
}

// UserID returns the session owner's id.
func (s *Session) UserID() uint { return s.userID }

// Cache exposes the session's entity cache.
func (s *Session) Cache() *Cache { return s.cache }

// Start performs the initial load and launches the live-update subscriber.
func (s *Session) Start(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		return fmt.Errorf("initial session load: %w", err)
	}
	subCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.runSubscriber(subCtx)
	return nil
}

// Close stops the subscriber.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Refresh re-fetches every collection the session tracks and merges it into
// the cache. Merge-by-id makes this safe to run concurrently with live
// pushes; provisional entities are left untouched.
func (s *Session) Refresh(ctx context.Context) error {
	msgs, err := s.gw.FetchMessages(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("fetch messages: %w", err)
	}
	peers := make(map[uint]bool)
	for _, m := range msgs {
		s.cache.Put(KindMessage, m)
		peers[m.PeerID(s.userID)] = true
	}

	notifs, err := s.gw.FetchNotifications(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("fetch notifications: %w", err)
	}
	for _, n := range notifs {
		s.cache.Put(KindNotification, n)
		peers[n.ActorID] = true
	}

	likedIDs, err := s.gw.FetchLikedPostIDs(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("fetch liked posts: %w", err)
	}
	followingIDs, err := s.gw.FetchFollowing(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("fetch following: %w", err)
	}

	s.mu.Lock()
	s.liked = make(map[string]bool, len(likedIDs))
	for _, id := range likedIDs {
		s.liked[id] = true
	}
	s.following = make(map[uint]bool, len(followingIDs))
	for _, id := range followingIDs {
		s.following[id] = true
	}
	s.mu.Unlock()

	return s.loadProfiles(ctx, peers)
}

func (s *Session) loadProfiles(ctx context.Context, ids map[uint]bool) error {
	missing := make([]uint, 0, len(ids))
	for id := range ids {
		if _, ok := s.cache.Get(KindProfile, strconv.FormatUint(uint64(id), 10)); !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	users, err := s.gw.FetchProfiles(ctx, missing)
	if err != nil {
		return fmt.Errorf("fetch profiles: %w", err)
	}
	for _, u := range users {
		s.cache.Put(KindProfile, u)
	}
	return nil
}

// LoadProfiles ensures the given user profiles are cached, fetching only
// the ones not already present.
func (s *Session) LoadProfiles(ctx context.Context, ids []uint) error {
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return s.loadProfiles(ctx, set)
}

// ResolveProfile looks up a cached public profile by user id.
func (s *Session) ResolveProfile(id uint) (models.Profile, bool) {
	e, ok := s.cache.Get(KindProfile, strconv.FormatUint(uint64(id), 10))
	if !ok {
		return models.Profile{}, false
	}
	u, ok := e.(*models.User)
	if !ok {
		return models.Profile{}, false
	}
	return u.PublicProfile(), true
}

// Conversations aggregates the cached messages into per-peer summaries,
// newest conversation first.
func (s *Session) Conversations() []models.Conversation {
	return AggregateConversations(s.cachedMessages(), s.userID, s.ResolveProfile)
}

// OpenThread marks the peer as the active selection, fetches the two-party
// thread and merges it into the cache. The cache writes are unconditional:
// data fetched for a conversation the user has since navigated away from is
// still valid. Marking the thread read, however, only happens if the peer is
// still the active selection once the fetch returns.
func (s *Session) OpenThread(ctx context.Context, peerID uint) ([]*models.Message, error) {
	s.mu.Lock()
	s.activePeer = peerID
	s.mu.Unlock()

	msgs, err := s.gw.FetchThread(ctx, s.userID, peerID)
	if err != nil {
		return nil, fmt.Errorf("fetch thread: %w", err)
	}
	for _, m := range msgs {
		s.cache.Put(KindMessage, m)
	}
	// A missing profile degrades to a placeholder, so the thread itself
	// still opens.
	if err := s.loadProfiles(ctx, map[uint]bool{peerID: true}); err != nil {
		log.Printf("session %d: load peer profile %d: %v", s.userID, peerID, err)
	}

	s.mu.Lock()
	stillActive := s.activePeer == peerID
	s.mu.Unlock()
	if stillActive {
		if err := s.MarkThreadRead(ctx, peerID); err != nil {
			return nil, err
		}
	}
	return s.Thread(peerID), nil
}

// CloseThread clears the active selection if it is still the given peer.
func (s *Session) CloseThread(peerID uint) {
	s.mu.Lock()
	if s.activePeer == peerID {
		s.activePeer = 0
	}
	s.mu.Unlock()
}

// Thread returns the cached two-party thread in chronological order.
func (s *Session) Thread(peerID uint) []*models.Message {
	var out []*models.Message
	for _, m := range s.cachedMessages() {
		if m.PeerID(s.userID) == peerID {
			out = append(out, m)
		}
	}
	SortThread(out)
	return out
}

// Notifications returns cached notifications decorated with actor profiles,
// newest first, plus the unread count.
func (s *Session) Notifications() ([]models.NotificationView, int) {
	ents := s.cache.All(KindNotification)
	out := make([]models.NotificationView, 0, len(ents))
	unread := 0
	for _, e := range ents {
		n, ok := e.(*models.Notification)
		if !ok {
			continue
		}
		view := models.NotificationView{Notification: *n}
		if p, found := s.ResolveProfile(n.ActorID); found {
			view.Actor = p
		} else {
			view.Actor = models.PlaceholderProfile(n.ActorID)
		}
		out = append(out, view)
		if !n.IsRead {
			unread++
		}
	}
	sortNotifications(out)
	return out, unread
}

// MarkNotificationRead flips the cached copy of one notification. The store
// write happens elsewhere; this keeps the session view in step with it.
func (s *Session) MarkNotificationRead(id uint) {
	key := strconv.FormatUint(uint64(id), 10)
	if e, ok := s.cache.Get(KindNotification, key); ok {
		if n, ok := e.(*models.Notification); ok && !n.IsRead {
			read := *n
			read.IsRead = true
			s.cache.Put(KindNotification, &read)
		}
	}
}

// MarkAllNotificationsRead flips every cached notification to read.
func (s *Session) MarkAllNotificationsRead() {
	for _, e := range s.cache.All(KindNotification) {
		if n, ok := e.(*models.Notification); ok && !n.IsRead {
			read := *n
			read.IsRead = true
			s.cache.Put(KindNotification, &read)
		}
	}
}

// IsFollowing reports follow-set membership, an O(1) check.
func (s *Session) IsFollowing(userID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.following[userID]
}

// FollowingIDs returns the current follow set.
func (s *Session) FollowingIDs() []uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint, 0, len(s.following))
	for id := range s.following {
		out = append(out, id)
	}
	return out
}

// Liked reports whether the user has liked the post, reflecting any
// optimistic toggle still in flight.
func (s *Session) Liked(postID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liked[postID]
}

func (s *Session) cachedMessages() []*models.Message {
	ents := s.cache.All(KindMessage)
	out := make([]*models.Message, 0, len(ents))
	for _, e := range ents {
		if m, ok := e.(*models.Message); ok {
			out = append(out, m)
		}
	}
	return out
}
