package sync

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/tawasol-app/backend/internal/models"
	"github.com/tawasol-app/backend/internal/realtime"
)

func messageEvent(t *testing.T, action string, m *models.Message) realtime.Event {
	t.Helper()
	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	return realtime.Event{Action: action, Table: realtime.TableMessages, UserID: m.ReceiverID, Row: raw}
}

func TestHandleEvent_ReverseChronologicalPushOrder(t *testing.T) {
	s := newTestSession(newStubGateway())
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	newer := message("m2", 2, 1, "newer", false, base.Add(time.Hour))
	older := message("m1", 2, 1, "older", false, base)

	// Newer transmitted first, older second.
	s.HandleEvent(messageEvent(t, realtime.ActionInsert, newer))
	s.HandleEvent(messageEvent(t, realtime.ActionInsert, older))

	convs := s.Conversations()
	if len(convs) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(convs))
	}
	if convs[0].LastMessage.ID != "m2" {
		t.Fatalf("last message = %q, want the newer push %q", convs[0].LastMessage.ID, "m2")
	}
	if convs[0].UnreadCount != 2 {
		t.Fatalf("unread = %d, want 2", convs[0].UnreadCount)
	}
}

func TestHandleEvent_DuplicatePushDoesNotDoubleCount(t *testing.T) {
	s := newTestSession(newStubGateway())
	m := message("m1", 2, 1, "hi", false, time.Now())

	s.HandleEvent(messageEvent(t, realtime.ActionInsert, m))
	s.HandleEvent(messageEvent(t, realtime.ActionInsert, m))

	if convs := s.Conversations(); convs[0].UnreadCount != 1 {
		t.Fatalf("duplicate push double-counted unread: %d", convs[0].UnreadCount)
	}
}

func TestHandleEvent_SkipsOwnPendingSend(t *testing.T) {
	s := newTestSession(newStubGateway())
	s.mu.Lock()
	s.pendingSends = 1
	s.mu.Unlock()

	own := message("srv-0001", 1, 2, "hello", true, time.Now())
	e := messageEvent(t, realtime.ActionInsert, own)
	e.UserID = 1 // echoed back on own channel
	s.HandleEvent(e)

	if got := s.Cache().Len(KindMessage); got != 0 {
		t.Fatalf("push copy of an in-flight own send must be skipped, cached %d", got)
	}
}

func TestHandleEvent_OwnSendAfterSettlementMerges(t *testing.T) {
	s := newTestSession(newStubGateway())
	own := message("srv-0001", 1, 2, "hello", true, time.Now())
	s.Cache().Put(KindMessage, own)

	e := messageEvent(t, realtime.ActionInsert, own)
	s.HandleEvent(e)

	if got := s.Cache().Len(KindMessage); got != 1 {
		t.Fatalf("merge-by-id must keep exactly one copy, got %d", got)
	}
}

func TestHandleEvent_ReadFlagUpdateAdjustsUnread(t *testing.T) {
	s := newTestSession(newStubGateway())
	at := time.Now()
	s.HandleEvent(messageEvent(t, realtime.ActionInsert, message("m1", 2, 1, "hi", false, at)))

	read := message("m1", 2, 1, "hi", true, at)
	s.HandleEvent(messageEvent(t, realtime.ActionUpdate, read))

	if convs := s.Conversations(); convs[0].UnreadCount != 0 {
		t.Fatalf("unread = %d after read-flag update, want 0", convs[0].UnreadCount)
	}
}

func TestHandleEvent_NotificationInsert(t *testing.T) {
	s := newTestSession(newStubGateway())
	n := &models.Notification{ID: 5, Type: models.NotificationLike, ActorID: 2, RecipientID: 1, CreatedAt: time.Now()}
	raw, _ := json.Marshal(n)
	s.HandleEvent(realtime.Event{Action: realtime.ActionInsert, Table: realtime.TableNotifications, UserID: 1, Row: raw})

	views, unread := s.Notifications()
	if len(views) != 1 || unread != 1 {
		t.Fatalf("notifications = %d (unread %d), want 1/1", len(views), unread)
	}
}

func TestHandleEvent_ForeignLikeAdjustsOwnPostCounter(t *testing.T) {
	gw := newStubGateway()
	postID := seedPost(gw, 3)
	s := newTestSession(gw)
	if _, err := s.cachedPost(context.Background(), postID); err != nil {
		t.Fatal(err)
	}

	l := &models.Like{ID: 1, PostID: postID, UserID: 2}
	raw, _ := json.Marshal(l)
	s.HandleEvent(realtime.Event{Action: realtime.ActionInsert, Table: realtime.TableLikes, UserID: 1, Row: raw})

	e, _ := s.Cache().Get(KindPost, postID)
	if count := e.(*models.Post).LikesCount; count != 4 {
		t.Fatalf("likes count = %d after foreign like push, want 4", count)
	}

	// The session's own like events were applied optimistically already.
	own := &models.Like{ID: 2, PostID: postID, UserID: 1}
	raw, _ = json.Marshal(own)
	s.HandleEvent(realtime.Event{Action: realtime.ActionInsert, Table: realtime.TableLikes, UserID: 1, Row: raw})
	e, _ = s.Cache().Get(KindPost, postID)
	if count := e.(*models.Post).LikesCount; count != 4 {
		t.Fatalf("own like event double-counted: %d", count)
	}
}

func TestRunSubscriber_RefetchesAfterDrop(t *testing.T) {
	gw := newStubGateway()
	ch := &stubChannel{}
	s := NewSession(1, gw, ch)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.runSubscriber(ctx)

	waitFor(t, func() bool {
		ch.mu.Lock()
		defer ch.mu.Unlock()
		return len(ch.subs) == 1
	})

	// Drop the transport: the stream closes, the subscriber must resubscribe
	// and reconcile via a fresh fetch.
	ch.mu.Lock()
	ch.subs[0].Close()
	ch.mu.Unlock()

	waitFor(t, func() bool {
		ch.mu.Lock()
		defer ch.mu.Unlock()
		return len(ch.subs) == 2
	})
	waitFor(t, func() bool {
		gw.mu.Lock()
		defer gw.mu.Unlock()
		return gw.fetchMessagesCalls >= 1
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}
