package models

import "time"

// User is a principal that owns packages, artifacts, posts and profiles.
// The avatar bytes are never part of this shape; see Avatar.
type User struct {
	ID              string    `json:"id"`
	Firstname       string    `json:"firstname"`
	Lastname        string    `json:"lastname"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	AvatarMediaType string    `json:"avatar_media_type,omitempty"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Avatar is the binary profile picture of a user.
type Avatar struct {
	UserID    string
	MediaType string
	Data      []byte
}

// UserRole links one user to one role.
type UserRole struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	RoleID    string    `json:"role_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
