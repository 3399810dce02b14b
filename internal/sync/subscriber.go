package sync

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/tawasol-app/backend/internal/models"
	"github.com/tawasol-app/backend/internal/realtime"
)

// resubscribeDelay paces reconnect attempts after a channel drop.
const resubscribeDelay = time.Second

// runSubscriber bridges the push channel into the cache. The channel is
// best-effort: when a subscription's stream closes (transport drop), the
// subscriber resubscribes and re-fetches the affected collections to patch
// any gap. Never surfaced to the user; repeated failures are only logged.
func (s *Session) runSubscriber(ctx context.Context) {
	first := true
	for {
		if ctx.Err() != nil {
			return
		}

		sub, err := s.channel.Subscribe(realtime.Filter{UserID: s.userID})
		if err != nil {
			log.Printf("sync: subscribe for user %d: %v", s.userID, err)
			select {
			case <-time.After(resubscribeDelay):
			case <-ctx.Done():
				return
			}
			continue
		}

		if !first {
			// Patch whatever the gap swallowed.
			if err := s.Refresh(ctx); err != nil {
				log.Printf("sync: reconcile after resubscribe for user %d: %v", s.userID, err)
			}
		}
		first = false

		s.consume(ctx, sub)
		s.channel.Unsubscribe(sub)

		select {
		case <-time.After(resubscribeDelay):
		case <-ctx.Done():
			return
		}
	}
}

// consume drains the subscription until its stream closes or ctx is done.
func (s *Session) consume(ctx context.Context, sub *realtime.Subscription) {
	for {
		select {
		case e, ok := <-sub.Events():
			if !ok {
				return
			}
			s.HandleEvent(e)
		case <-ctx.Done():
			return
		}
	}
}

// HandleEvent merges one externally-originated row change into the cache.
// Merge is by id, so an event for a row the session already holds (own
// mutation, earlier fetch) can never double-count.
func (s *Session) HandleEvent(e realtime.Event) {
	switch e.Table {
	case realtime.TableMessages:
		s.handleMessageEvent(e)
	case realtime.TableNotifications:
		s.handleNotificationEvent(e)
	case realtime.TableLikes:
		s.handleLikeEvent(e)
	}
}

func (s *Session) handleMessageEvent(e realtime.Event) {
	var m models.Message
	if err := json.Unmarshal(e.Row, &m); err != nil {
		log.Printf("sync: malformed message event: %v", err)
		return
	}
	switch e.Action {
	case realtime.ActionInsert, realtime.ActionUpdate:
		if s.isOwnPendingSend(&m) {
			// The send path will insert the confirmed row itself; applying
			// the push copy now would show the message twice alongside its
			// provisional entity.
			return
		}
		s.cache.Put(KindMessage, &m)
	case realtime.ActionDelete:
		s.cache.Remove(KindMessage, m.ID)
	}
}

// isOwnPendingSend reports whether the event row is a self-sent message whose
// round trip has not completed, i.e. a provisional entity for it is still in
// the cache.
func (s *Session) isOwnPendingSend(m *models.Message) bool {
	if m.SenderID != s.userID {
		return false
	}
	if strings.HasPrefix(m.ID, provisionalPrefix) {
		return true
	}
	if _, cached := s.cache.Get(KindMessage, m.ID); cached {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingSends > 0
}

func (s *Session) handleNotificationEvent(e realtime.Event) {
	var n models.Notification
	if err := json.Unmarshal(e.Row, &n); err != nil {
		log.Printf("sync: malformed notification event: %v", err)
		return
	}
	switch e.Action {
	case realtime.ActionInsert, realtime.ActionUpdate:
		s.cache.Put(KindNotification, &n)
	case realtime.ActionDelete:
		s.cache.Remove(KindNotification, n.EntityID())
	}
}

// handleLikeEvent keeps the cached like counter of an own post in step with
// other users' likes. The session's own toggles already adjusted the counter
// optimistically, so actor==self events are skipped.
func (s *Session) handleLikeEvent(e realtime.Event) {
	var l models.Like
	if err := json.Unmarshal(e.Row, &l); err != nil {
		log.Printf("sync: malformed like event: %v", err)
		return
	}
	if l.UserID == s.userID {
		return
	}
	switch e.Action {
	case realtime.ActionInsert:
		s.adjustPostLikes(l.PostID, 1)
	case realtime.ActionDelete:
		s.adjustPostLikes(l.PostID, -1)
	}
}
