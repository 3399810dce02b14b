package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Media kinds attached to a post.
const (
	MediaNone  = "text"
	MediaImage = "image"
	MediaVideo = "video"
)

// Post represents a feed post stored in MongoDB
type Post struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        uint               `json:"user_id" bson:"user_id"`
	Content       string             `json:"content" bson:"content"`
	MediaURL      string             `json:"media_url,omitempty" bson:"media_url,omitempty"`
	MediaType     string             `json:"media_type" bson:"media_type"` // text, image or video
	LikesCount    int                `json:"likes_count" bson:"likes_count"`
	CommentsCount int                `json:"comments_count" bson:"comments_count"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// EntityID implements the sync cache entity contract.
func (p *Post) EntityID() string { return p.ID.Hex() }

// CreatedTime implements the sync cache entity contract.
func (p *Post) CreatedTime() time.Time { return p.CreatedAt }

// EngagementScore weights comments over likes and is used for the trending
// ordering of the feed.
func (p *Post) EngagementScore() int {
	return p.LikesCount + 2*p.CommentsCount
}

// PostView decorates a Post with viewer-specific state.
type PostView struct {
	Post
	Author    Profile `json:"profiles"`
	UserLiked bool    `json:"user_liked"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content   string `json:"content" validate:"required,min=1,max=1000"`
	MediaURL  string `json:"media_url,omitempty" validate:"omitempty,url"`
	MediaType string `json:"media_type,omitempty" validate:"omitempty,oneof=text image video"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}
