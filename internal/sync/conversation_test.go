package sync

import (
	"testing"
	"time"

	"github.com/tawasol-app/backend/internal/models"
)

const self = uint(1)

func noProfiles(id uint) (models.Profile, bool) { return models.Profile{}, false }

func TestAggregate_LastMessageIsMaxTimestampRegardlessOfOrder(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	newer := message("b", 2, self, "newer", false, base.Add(time.Hour))
	older := message("a", self, 2, "older", true, base)

	// Newer first, older second: arrival order must not matter.
	convs := AggregateConversations([]*models.Message{newer, older}, self, noProfiles)

	if len(convs) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(convs))
	}
	if convs[0].LastMessage.ID != "b" {
		t.Fatalf("last message = %q, want the max-timestamp message %q", convs[0].LastMessage.ID, "b")
	}
}

func TestAggregate_TieBreaksOnHigherID(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	first := message("m-001", 2, self, "first", true, at)
	second := message("m-002", 2, self, "second", true, at)

	convs := AggregateConversations([]*models.Message{second, first}, self, noProfiles)
	if convs[0].LastMessage.ID != "m-002" {
		t.Fatalf("equal timestamps must break toward higher id, got %q", convs[0].LastMessage.ID)
	}
}

func TestAggregate_UnreadCountsReceivedUnreadOnly(t *testing.T) {
	at := time.Now()
	msgs := []*models.Message{
		message("a", 2, self, "unread 1", false, at),
		message("b", 2, self, "unread 2", false, at.Add(time.Second)),
		message("c", 2, self, "read", true, at.Add(2*time.Second)),
		message("d", self, 2, "own unread flag irrelevant", false, at.Add(3*time.Second)),
	}

	convs := AggregateConversations(msgs, self, noProfiles)
	if convs[0].UnreadCount != 2 {
		t.Fatalf("unread count = %d, want 2", convs[0].UnreadCount)
	}
}

func TestAggregate_SortsByLastMessageDescending(t *testing.T) {
	at := time.Now()
	msgs := []*models.Message{
		message("a", 2, self, "old thread", true, at.Add(-time.Hour)),
		message("b", 3, self, "fresh thread", true, at),
	}

	convs := AggregateConversations(msgs, self, noProfiles)
	if len(convs) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(convs))
	}
	if convs[0].Peer.ID != 3 || convs[1].Peer.ID != 2 {
		t.Fatalf("conversations out of order: %d then %d", convs[0].Peer.ID, convs[1].Peer.ID)
	}
}

func TestAggregate_UnresolvablePeerGetsPlaceholder(t *testing.T) {
	msgs := []*models.Message{
		message("a", 99, self, "who dis", false, time.Now()),
	}

	convs := AggregateConversations(msgs, self, noProfiles)
	if len(convs) != 1 {
		t.Fatal("conversation with unknown peer was dropped")
	}
	if convs[0].Peer.ID != 99 || convs[0].Peer.Username != "unknown" {
		t.Fatalf("expected placeholder profile for peer 99, got %+v", convs[0].Peer)
	}
	if convs[0].UnreadCount != 1 {
		t.Fatalf("placeholder conversation lost its unread count: %d", convs[0].UnreadCount)
	}
}

func TestAggregate_GroupsByPeerNotByDirection(t *testing.T) {
	at := time.Now()
	msgs := []*models.Message{
		message("a", self, 2, "sent", true, at),
		message("b", 2, self, "received", true, at.Add(time.Second)),
	}

	convs := AggregateConversations(msgs, self, noProfiles)
	if len(convs) != 1 {
		t.Fatalf("both directions must land in one conversation, got %d", len(convs))
	}
}
