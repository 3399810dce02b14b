package sync

import (
	"context"
	"sync"

	"github.com/tawasol-app/backend/internal/realtime"
)

// Manager owns one Session per authenticated user, created lazily on first
// use and kept warm for the lifetime of the process.
type Manager struct {
	gw      Gateway
	channel realtime.Channel

	mu       sync.Mutex
	sessions map[uint]*Session
}

// NewManager creates a session manager over the given gateway and push
// channel.
func NewManager(gw Gateway, channel realtime.Channel) *Manager {
	return &Manager{
		gw:       gw,
		channel:  channel,
		sessions: make(map[uint]*Session),
	}
}

// Session returns the user's session, starting one on first access.
func (m *Manager) Session(ctx context.Context, userID uint) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[userID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	// Built outside the lock: the initial load hits the gateway.
	s := NewSession(userID, m.gw, m.channel)
	if err := s.Start(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[userID]; ok {
		// Lost the race to another request; keep the first session.
		s.Close()
		return existing, nil
	}
	m.sessions[userID] = s
	return s, nil
}

// Close stops every session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.Close()
		delete(m.sessions, id)
	}
}
