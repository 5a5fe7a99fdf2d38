package models

import "time"

type Store struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"type:varchar(255);not null;index"`
	Slug        string `json:"slug" gorm:"type:varchar(255);uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`
	URL         string `json:"url" gorm:"type:text"`
	Logo        string `json:"logo" gorm:"type:text"`
	// CSS selector of the price element on the store's product pages.
	PriceSelector string    `json:"-" gorm:"type:varchar(255)"`
	Views         int64     `json:"views" gorm:"not null;default:0"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
