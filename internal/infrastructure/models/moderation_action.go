package models

import (
	"time"

	"github.com/google/uuid"
)

type ModerationAction struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index:idx_moderation_subject_kind"`
	ActionType      string    `gorm:"type:varchar(20);not null;index:idx_moderation_subject_kind"`
	Reason          string    `gorm:"type:text;not null"`
	DurationSeconds *int64
	ModeratorID     uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt       time.Time
	ExpiresAt       *time.Time
	IsActive        bool `gorm:"default:true;not null;index"`
}

func (ModerationAction) TableName() string { return "moderation_actions" }

// ModerationHistoryRow is a moderation action joined with its moderator's name
type ModerationHistoryRow struct {
	ModerationAction
	ModeratorName *string
}

// All returns every model managed by the record store, in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &ApiKey{}, &ModerationAction{}}
}
