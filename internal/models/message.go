package models

import "time"

// Message represents a direct message between two users (PostgreSQL).
// Immutable once created except for the read flag.
type Message struct {
	ID         string    `json:"id" gorm:"primaryKey;size:64"`
	SenderID   uint      `json:"sender_id" gorm:"index"`
	ReceiverID uint      `json:"receiver_id" gorm:"index"`
	Content    string    `json:"content" gorm:"size:2000"`
	Read       bool      `json:"read" gorm:"default:false;index"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

// EntityID implements the sync cache entity contract.
func (m *Message) EntityID() string { return m.ID }

// CreatedTime implements the sync cache entity contract.
func (m *Message) CreatedTime() time.Time { return m.CreatedAt }

// PeerID returns the non-self participant of the message.
func (m *Message) PeerID(selfID uint) uint {
	if m.SenderID == selfID {
		return m.ReceiverID
	}
	return m.SenderID
}

// SendMessageRequest defines the request body for sending a direct message
type SendMessageRequest struct {
	ReceiverID uint   `json:"receiver_id" validate:"required"`
	Content    string `json:"content" validate:"required,min=1,max=2000"`
}

// Conversation is the derived per-peer summary of a message thread.
// It is recomputed from cached messages, never stored.
type Conversation struct {
	Peer        Profile  `json:"user"`
	LastMessage *Message `json:"last_message"`
	UnreadCount int      `json:"unread_count"`
}
