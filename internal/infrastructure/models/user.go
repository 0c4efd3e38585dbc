package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ExternalID string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Name       string    `gorm:"type:varchar(100);not null"`
	Avatar     string    `gorm:"type:varchar(255)"`
	Email      *string   `gorm:"type:varchar(255)"`
	IsAdmin    bool      `gorm:"default:false;not null"`
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}

func (User) TableName() string { return "users" }
