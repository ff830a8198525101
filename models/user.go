package models

import (
	"strings"
	"time"
)

// Role decides what a user may see; admins' articles are visible to everyone.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is an account. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName is the name used in notification texts.
func (u *User) DisplayName() string {
	if u == nil || strings.TrimSpace(u.Name) == "" {
		return "Someone"
	}
	return u.Name
}

// UserProfile is a user with its social graph and authored articles.
type UserProfile struct {
	User
	Followers []string `json:"followers"`
	Following []string `json:"following"`
	Articles  []string `json:"articles"`
	// RecentContacts is the user's recency list, most recent first. It is
	// only filled in when users read their own profile.
	RecentContacts []string `json:"recent_contacts,omitempty"`
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

func (r *CreateUserRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	return validateStruct(r)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	return validateStruct(r)
}

type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

func (r *UpdateProfileRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	return validateStruct(r)
}

// FollowResult is the state after a follow toggle.
type FollowResult struct {
	Following bool `json:"following"`
}
