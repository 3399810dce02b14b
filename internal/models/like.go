package models

import (
	"strconv"
	"time"
)

// Like represents a like on a post (PostgreSQL)
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"index;uniqueIndex:idx_post_user_like;size:64"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_post_user_like"`
	CreatedAt time.Time `json:"created_at"`
}

// EntityID implements the sync cache entity contract.
func (l *Like) EntityID() string { return strconv.FormatUint(uint64(l.ID), 10) }

// CreatedTime implements the sync cache entity contract.
func (l *Like) CreatedTime() time.Time { return l.CreatedAt }
