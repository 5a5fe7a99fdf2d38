package models

import (
	"time"

	"github.com/google/uuid"
)

type EmailVerification struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Email     string    `gorm:"type:varchar(254);not null"`
	Code      uuid.UUID `gorm:"type:varchar(36);uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

func (v EmailVerification) IsExpired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}
