package sync

import (
	"context"
	"testing"
	"time"

	"github.com/tawasol-app/backend/internal/models"
)

func TestRefresh_PopulatesCacheAndSets(t *testing.T) {
	gw := newStubGateway()
	gw.messages = append(gw.messages, message("m1", 2, 1, "hi", false, time.Now()))
	gw.notifications = append(gw.notifications, &models.Notification{ID: 1, Type: models.NotificationFollow, ActorID: 3, RecipientID: 1, CreatedAt: time.Now()})
	gw.following[3] = true
	gw.profiles[2] = &models.User{ID: 2, Username: "peer", FullName: "Peer Person"}

	s := newTestSession(gw)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if got := s.Cache().Len(KindMessage); got != 1 {
		t.Fatalf("messages cached = %d, want 1", got)
	}
	if !s.IsFollowing(3) {
		t.Fatal("follow set not loaded")
	}
	if p, ok := s.ResolveProfile(2); !ok || p.Username != "peer" {
		t.Fatalf("peer profile not resolved: %+v ok=%v", p, ok)
	}
	if _, unread := s.Notifications(); unread != 1 {
		t.Fatalf("unread notifications = %d, want 1", unread)
	}
}

func TestOpenThread_MarksReadWhileActive(t *testing.T) {
	gw := newStubGateway()
	gw.messages = append(gw.messages,
		message("m1", 2, 1, "one", false, time.Now().Add(-time.Minute)),
		message("m2", 2, 1, "two", false, time.Now()),
	)
	s := newTestSession(gw)

	msgs, err := s.OpenThread(context.Background(), 2)
	if err != nil {
		t.Fatalf("open thread: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("thread size = %d, want 2", len(msgs))
	}
	if msgs[0].ID != "m1" || msgs[1].ID != "m2" {
		t.Fatalf("thread not chronological: %s then %s", msgs[0].ID, msgs[1].ID)
	}
	if convs := s.Conversations(); convs[0].UnreadCount != 0 {
		t.Fatalf("open thread left %d unread", convs[0].UnreadCount)
	}
}

func TestOpenThread_NavigationAwayStillCachesFetch(t *testing.T) {
	gw := newStubGateway()
	gw.messages = append(gw.messages, message("m1", 2, 1, "hello", false, time.Now()))
	s := newTestSession(gw)

	// The user switched to peer 3 before the peer-2 fetch completed; the
	// fetched rows still land in the cache, but peer 2 is not marked read.
	s.mu.Lock()
	s.activePeer = 3
	s.mu.Unlock()

	msgs, err := s.gw.FetchThread(context.Background(), 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range msgs {
		s.Cache().Put(KindMessage, m)
	}

	if got := s.Cache().Len(KindMessage); got != 1 {
		t.Fatal("late fetch result must still be cached")
	}
	if convs := s.Conversations(); convs[0].UnreadCount != 1 {
		t.Fatalf("inactive thread must stay unread, got %d", convs[0].UnreadCount)
	}
}

func TestManager_ReusesSession(t *testing.T) {
	gw := newStubGateway()
	m := NewManager(gw, &stubChannel{})
	defer m.Close()

	a, err := m.Session(context.Background(), 1)
	if err != nil {
		t.Fatalf("first session: %v", err)
	}
	b, err := m.Session(context.Background(), 1)
	if err != nil {
		t.Fatalf("second session: %v", err)
	}
	if a != b {
		t.Fatal("manager must reuse the user's session")
	}
}
