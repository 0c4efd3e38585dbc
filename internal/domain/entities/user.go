package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// UserRole represents the role carried in session tokens
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// User represents an account holder identified by the external identity provider
type User struct {
	ID         uuid.UUID   `json:"id"`
	ExternalID string      `json:"externalId"`
	Name       string      `json:"name"`
	Avatar     string      `json:"avatar"`
	Email      null.String `json:"email"`
	IsAdmin    bool        `json:"isAdmin"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// Role returns the session role derived from the admin flag.
func (u *User) Role() UserRole {
	if u.IsAdmin {
		return UserRoleAdmin
	}
	return UserRoleUser
}

// UpsertUserInput is the profile supplied by the identity provider on login
type UpsertUserInput struct {
	ExternalID string      `json:"externalId" binding:"required"`
	Name       string      `json:"name" binding:"required"`
	Avatar     string      `json:"avatar"`
	Email      null.String `json:"email"`
	IsAdmin    bool        `json:"-"`
}

// UserWithStatus is a user annotated with its current moderation status
type UserWithStatus struct {
	*User
	ModerationStatus *ModerationStatus `json:"moderationStatus"`
}

// SessionResponse is returned after absorbing an identity provider login
type SessionResponse struct {
	AccessToken string `json:"accessToken"`
	User        *User  `json:"user"`
}
