package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tawasol-app/backend/internal/models"
	"github.com/tawasol-app/backend/internal/realtime"
)

// stubGateway is an in-memory Gateway with switchable failure modes.
type stubGateway struct {
	mu sync.Mutex

	messages      []*models.Message
	notifications []*models.Notification
	comments      map[string][]*models.Comment
	posts         map[string]*models.Post
	likes         map[string]bool // "postID" liked by the stub's single user
	following     map[uint]bool
	profiles      map[uint]*models.User

	failInsertMessage bool
	failInsertLike    bool
	failDeleteLike    bool
	failInsertFollow  bool
	goneDeleteComment bool

	// holdInsertLike and holdInsertFollow, when set, block the mutation
	// until the channel is closed, so tests can overlap a second toggle
	// with one still in flight.
	holdInsertLike   chan struct{}
	holdInsertFollow chan struct{}

	fetchMessagesCalls int
	insertLikeCalls    int
	deleteLikeCalls    int
	nextMessageID      int
}

func newStubGateway() *stubGateway {
	return &stubGateway{
		comments:  make(map[string][]*models.Comment),
		posts:     make(map[string]*models.Post),
		likes:     make(map[string]bool),
		following: make(map[uint]bool),
		profiles:  make(map[uint]*models.User),
	}
}

func (g *stubGateway) FetchMessages(ctx context.Context, userID uint) ([]*models.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetchMessagesCalls++
	return append([]*models.Message(nil), g.messages...), nil
}

func (g *stubGateway) FetchThread(ctx context.Context, userID, peerID uint) ([]*models.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []*models.Message
	for _, m := range g.messages {
		if m.PeerID(userID) == peerID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (g *stubGateway) InsertMessage(ctx context.Context, senderID, receiverID uint, content string) (*models.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failInsertMessage {
		return nil, fmt.Errorf("stub: network down")
	}
	g.nextMessageID++
	m := &models.Message{
		ID:         fmt.Sprintf("srv-%04d", g.nextMessageID),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Read:       false,
		CreatedAt:  time.Now(),
	}
	g.messages = append(g.messages, m)
	return m, nil
}

func (g *stubGateway) MarkConversationRead(ctx context.Context, userID, peerID uint) error {
	return nil
}

func (g *stubGateway) FetchPost(ctx context.Context, postID string) (*models.Post, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.posts[postID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, fmt.Errorf("stub: post %s not found", postID)
}

func (g *stubGateway) InsertLike(ctx context.Context, postID string, userID uint) error {
	if g.holdInsertLike != nil {
		<-g.holdInsertLike
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.insertLikeCalls++
	if g.failInsertLike {
		return fmt.Errorf("stub: network down")
	}
	if g.likes[postID] {
		return ErrGone
	}
	g.likes[postID] = true
	if p, ok := g.posts[postID]; ok {
		p.LikesCount++
	}
	return nil
}

func (g *stubGateway) DeleteLike(ctx context.Context, postID string, userID uint) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleteLikeCalls++
	if g.failDeleteLike {
		return fmt.Errorf("stub: network down")
	}
	if !g.likes[postID] {
		return ErrGone
	}
	delete(g.likes, postID)
	if p, ok := g.posts[postID]; ok {
		p.LikesCount--
	}
	return nil
}

func (g *stubGateway) FetchLikedPostIDs(ctx context.Context, userID uint) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for id := range g.likes {
		out = append(out, id)
	}
	return out, nil
}

func (g *stubGateway) FetchComments(ctx context.Context, postID string) ([]*models.Comment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*models.Comment(nil), g.comments[postID]...), nil
}

func (g *stubGateway) InsertComment(ctx context.Context, postID string, userID uint, content string) (*models.Comment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c := &models.Comment{
		ID:        uint(len(g.comments[postID]) + 1),
		PostID:    postID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	g.comments[postID] = append(g.comments[postID], c)
	return c, nil
}

func (g *stubGateway) UpdateComment(ctx context.Context, commentID, userID uint, content string) (*models.Comment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, list := range g.comments {
		for _, c := range list {
			if c.ID == commentID {
				c.Content = content
				return c, nil
			}
		}
	}
	return nil, ErrGone
}

func (g *stubGateway) DeleteComment(ctx context.Context, commentID, userID uint) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.goneDeleteComment {
		return ErrGone
	}
	for postID, list := range g.comments {
		for i, c := range list {
			if c.ID == commentID {
				g.comments[postID] = append(list[:i], list[i+1:]...)
				return nil
			}
		}
	}
	return ErrGone
}

func (g *stubGateway) FetchFollowing(ctx context.Context, userID uint) ([]uint, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []uint
	for id := range g.following {
		out = append(out, id)
	}
	return out, nil
}

func (g *stubGateway) InsertFollow(ctx context.Context, followerID, followingID uint) error {
	if g.holdInsertFollow != nil {
		<-g.holdInsertFollow
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failInsertFollow {
		return fmt.Errorf("stub: network down")
	}
	g.following[followingID] = true
	return nil
}

func (g *stubGateway) DeleteFollow(ctx context.Context, followerID, followingID uint) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.following[followingID] {
		return ErrGone
	}
	delete(g.following, followingID)
	return nil
}

func (g *stubGateway) FetchNotifications(ctx context.Context, userID uint) ([]*models.Notification, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*models.Notification(nil), g.notifications...), nil
}

func (g *stubGateway) FetchProfiles(ctx context.Context, ids []uint) ([]*models.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []*models.User
	for _, id := range ids {
		if u, ok := g.profiles[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// stubChannel hands out subscriptions that tests feed by hand.
type stubChannel struct {
	mu   sync.Mutex
	subs []*realtime.Subscription
}

func (c *stubChannel) Subscribe(f realtime.Filter) (*realtime.Subscription, error) {
	s := realtime.NewSubscription(f, 16)
	c.mu.Lock()
	c.subs = append(c.subs, s)
	c.mu.Unlock()
	return s, nil
}

func (c *stubChannel) Unsubscribe(s *realtime.Subscription) {}

// message builds a test message with a deterministic id and timestamp.
func message(id string, sender, receiver uint, content string, read bool, at time.Time) *models.Message {
	return &models.Message{
		ID:         id,
		SenderID:   sender,
		ReceiverID: receiver,
		Content:    content,
		Read:       read,
		CreatedAt:  at,
	}
}

// newTestSession wires a session over the stubs without starting the
// subscriber goroutine.
func newTestSession(gw *stubGateway) *Session {
	return NewSession(1, gw, &stubChannel{})
}
