package models

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User represents a registered account with its public profile (PostgreSQL)
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"uniqueIndex;size:30"`
	FullName    string    `json:"full_name" gorm:"size:100"`
	Email       string    `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	Bio         string    `json:"bio,omitempty" gorm:"size:300"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Password    string    `json:"-"`                                         // Store hashed password, ignore for JSON serialization
	FirebaseUID string    `json:"firebase_uid,omitempty" gorm:"uniqueIndex"` // Link to Firebase User UID
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EntityID implements the sync cache entity contract.
func (u *User) EntityID() string { return strconv.FormatUint(uint64(u.ID), 10) }

// CreatedTime implements the sync cache entity contract.
func (u *User) CreatedTime() time.Time { return u.CreatedAt }

// Profile is the public projection of a User embedded in view models.
type Profile struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// PublicProfile returns the user's public projection.
func (u *User) PublicProfile() Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
	}
}

// PlaceholderProfile stands in for a peer whose profile row could not be
// resolved. Conversations with an unknown peer are still surfaced.
func PlaceholderProfile(id uint) Profile {
	return Profile{
		ID:       id,
		Username: "unknown",
		FullName: "Unknown User",
	}
}

type CreateLocalUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type FirebaseLoginRequest struct {
	IDToken  string `json:"id_token" validate:"required"`
	Username string `json:"username,omitempty" validate:"omitempty,min=3,max=30,alphanum"`
	FullName string `json:"full_name,omitempty" validate:"omitempty,min=2,max=100"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Username  string `json:"username,omitempty" validate:"omitempty,min=3,max=30,alphanum"`
	FullName  string `json:"full_name,omitempty" validate:"omitempty,min=2,max=100"`
	Bio       string `json:"bio,omitempty" validate:"omitempty,max=300"`
	AvatarURL string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
