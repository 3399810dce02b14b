package models

import (
	"strconv"
	"time"
)

// Comment represents a comment on a post (PostgreSQL)
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"index;size:64"` // ID of the post the comment belongs to (MongoDB ObjectID as string)
	UserID    uint      `json:"user_id" gorm:"index"`
	Content   string    `json:"content" gorm:"size:500"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntityID implements the sync cache entity contract.
func (c *Comment) EntityID() string { return strconv.FormatUint(uint64(c.ID), 10) }

// CreatedTime implements the sync cache entity contract.
func (c *Comment) CreatedTime() time.Time { return c.CreatedAt }

// CommentView decorates a Comment with its author profile.
type CommentView struct {
	Comment
	Author Profile `json:"profiles"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}
