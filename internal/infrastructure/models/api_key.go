package models

import (
	"time"

	"github.com/google/uuid"
)

type ApiKey struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Secret     string    `gorm:"column:api_key;type:varchar(100);uniqueIndex;not null"`
	Name       string    `gorm:"type:varchar(100);not null"`
	CreatedAt  time.Time
	LastUsedAt *time.Time
}

func (ApiKey) TableName() string { return "api_keys" }
