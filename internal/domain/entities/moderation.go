package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// ModerationKind is the kind of restriction applied to a user
type ModerationKind string

const (
	ModerationLock      ModerationKind = "lock"
	ModerationDisable   ModerationKind = "disable"
	ModerationRatelimit ModerationKind = "ratelimit"
)

// ModerationPrecedence is the order in which active kinds are collapsed into a status.
var ModerationPrecedence = []ModerationKind{ModerationLock, ModerationDisable, ModerationRatelimit}

// Valid reports whether k is a known kind.
func (k ModerationKind) Valid() bool {
	switch k {
	case ModerationLock, ModerationDisable, ModerationRatelimit:
		return true
	}
	return false
}

// StatusKind maps an action kind to the status kind reported to callers.
func (k ModerationKind) StatusKind() StatusKind {
	switch k {
	case ModerationLock:
		return StatusLocked
	case ModerationDisable:
		return StatusDisabled
	case ModerationRatelimit:
		return StatusRatelimited
	}
	return ""
}

// UnknownModerator is reported in history when the moderator record is gone.
const UnknownModerator = "Unknown"

// ModerationAction is a time-scoped restriction applied to a user
type ModerationAction struct {
	ID              uuid.UUID      `json:"id"`
	UserID          uuid.UUID      `json:"userId"`
	Kind            ModerationKind `json:"actionType"`
	Reason          string         `json:"reason"`
	DurationSeconds null.Int64     `json:"durationSeconds"`
	ModeratorID     uuid.UUID      `json:"moderatorId"`
	ModeratorName   string         `json:"moderatorName,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	ExpiresAt       null.Time      `json:"expiresAt"`
	IsActive        bool           `json:"isActive"`
}

// IsEffectivelyActive reports whether the action restricts its subject at now.
// Expiry is exclusive: the action stops applying at ExpiresAt.
func (a *ModerationAction) IsEffectivelyActive(now time.Time) bool {
	if !a.IsActive {
		return false
	}
	if !a.ExpiresAt.Valid {
		return true
	}
	return now.Before(a.ExpiresAt.Time)
}

// CreateModerationInput is what the record store needs to persist a new action
type CreateModerationInput struct {
	UserID          uuid.UUID
	Kind            ModerationKind
	Reason          string
	DurationSeconds null.Int64
	ModeratorID     uuid.UUID
	CreatedAt       time.Time
}

// ExpiresAt derives the expiry: only ratelimits with a duration expire.
func (in CreateModerationInput) ExpiresAt() null.Time {
	if in.Kind != ModerationRatelimit || !in.DurationSeconds.Valid {
		return null.Time{}
	}
	return null.TimeFrom(in.CreatedAt.Add(time.Duration(in.DurationSeconds.Int64) * time.Second))
}

// ApplyModerationInput is the admin request to apply an action
type ApplyModerationInput struct {
	UserID          uuid.UUID      `json:"userId" binding:"required"`
	Kind            ModerationKind `json:"actionType" binding:"required"`
	Reason          string         `json:"reason"`
	DurationSeconds null.Int64     `json:"durationSeconds"`
}

// RemoveModerationInput is the admin request to deactivate actions of a kind
type RemoveModerationInput struct {
	UserID uuid.UUID      `json:"userId" binding:"required"`
	Kind   ModerationKind `json:"actionType" binding:"required"`
}

// StatusKind is the collapsed moderation state reported for a user
type StatusKind string

const (
	StatusLocked      StatusKind = "locked"
	StatusDisabled    StatusKind = "disabled"
	StatusRatelimited StatusKind = "ratelimited"
)

// ModerationStatus is the single current status of a user
type ModerationStatus struct {
	IsLocked      bool        `json:"isLocked"`
	IsDisabled    bool        `json:"isDisabled"`
	IsRatelimited bool        `json:"isRatelimited"`
	Reason        null.String `json:"reason"`
	Kind          StatusKind  `json:"actionType,omitempty"`
}

// Restricted reports whether the owner may not manage their own keys.
func (s *ModerationStatus) Restricted() bool {
	return s.IsLocked || s.IsDisabled
}
