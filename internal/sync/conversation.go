package sync

import (
	"sort"

	"github.com/tawasol-app/backend/internal/models"
)

// ProfileResolver resolves a user id to a public profile. The second return
// is false when the profile is unknown.
type ProfileResolver func(id uint) (models.Profile, bool)

// AggregateConversations groups messages by the non-self participant and
// derives one summary per peer: the most recent message and the count of
// unread messages addressed to self. It tolerates out-of-order arrival by
// always comparing timestamps, never trusting append order. Ties on equal
// timestamps break toward the larger id. A peer whose profile cannot be
// resolved is surfaced with a placeholder rather than dropped, since dropping
// would hide unread messages.
func AggregateConversations(msgs []*models.Message, selfID uint, resolve ProfileResolver) []models.Conversation {
	byPeer := make(map[uint]*models.Conversation)

	for _, m := range msgs {
		peer := m.PeerID(selfID)
		conv, ok := byPeer[peer]
		if !ok {
			conv = &models.Conversation{}
			byPeer[peer] = conv
			if p, found := resolve(peer); found {
				conv.Peer = p
			} else {
				conv.Peer = models.PlaceholderProfile(peer)
			}
		}

		if newerMessage(m, conv.LastMessage) {
			conv.LastMessage = m
		}
		if m.ReceiverID == selfID && !m.Read {
			conv.UnreadCount++
		}
	}

	out := make([]models.Conversation, 0, len(byPeer))
	for _, conv := range byPeer {
		out = append(out, *conv)
	}
	sort.Slice(out, func(i, j int) bool {
		return newerMessage(out[i].LastMessage, out[j].LastMessage)
	})
	return out
}

// newerMessage reports whether a should displace b as "last message".
func newerMessage(a, b *models.Message) bool {
	if b == nil {
		return true
	}
	if a == nil {
		return false
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// SortThread orders a two-party thread oldest first for display.
func SortThread(msgs []*models.Message) {
	sort.Slice(msgs, func(i, j int) bool {
		return newerMessage(msgs[j], msgs[i])
	})
}
