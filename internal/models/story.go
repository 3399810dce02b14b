package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Story represents a user's story stored in MongoDB. Stories expire 24 hours
// after creation and are filtered out of the feed once expired.
type Story struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    uint               `json:"user_id" bson:"user_id"`
	MediaURL  string             `json:"media_url" bson:"media_url"`
	MediaType string             `json:"media_type" bson:"media_type"` // image or video
	ExpiresAt time.Time          `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// StorySeen tracks which stories a user has seen (PostgreSQL)
type StorySeen struct {
	ID      uint      `json:"id" gorm:"primaryKey"`
	StoryID string    `json:"story_id" gorm:"index;uniqueIndex:idx_story_user_seen;size:64"`
	UserID  uint      `json:"user_id" gorm:"index;uniqueIndex:idx_story_user_seen"`
	SeenAt  time.Time `json:"seen_at"`
}

// StoryView decorates a Story with its author profile and seen flag.
type StoryView struct {
	Story
	Author Profile `json:"author"`
	Seen   bool    `json:"seen"`
}

// CreateStoryRequest defines the request body for creating a story
type CreateStoryRequest struct {
	MediaURL  string `json:"media_url" validate:"required,url"`
	MediaType string `json:"media_type" validate:"required,oneof=image video"`
}
