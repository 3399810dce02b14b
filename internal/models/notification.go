package models

import (
	"strconv"
	"time"
)

// Notification kinds created by the mutating handlers.
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
	NotificationShare   = "share"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:30;index"` // like, comment, follow, share
	ActorID     uint      `json:"actor_id" gorm:"index"`
	RecipientID uint      `json:"recipient_id" gorm:"index"`
	PostID      string    `json:"post_id,omitempty" gorm:"size:64"` // optional post reference
	IsRead      bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

// EntityID implements the sync cache entity contract.
func (n *Notification) EntityID() string { return strconv.FormatUint(uint64(n.ID), 10) }

// CreatedTime implements the sync cache entity contract.
func (n *Notification) CreatedTime() time.Time { return n.CreatedAt }

// NotificationView decorates a Notification with its actor profile.
type NotificationView struct {
	Notification
	Actor Profile `json:"actor"`
}
