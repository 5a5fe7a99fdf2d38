package models

import "time"

// Comparison is one product in a user's comparison set.
type Comparison struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:uniq_comparisons_user_product"`
	ProductID uint      `json:"product_id" gorm:"not null;uniqueIndex:uniq_comparisons_user_product;index"`
	Product   *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	User      User      `json:"-" gorm:"foreignKey:UserID;references:ID"`
	CreatedAt time.Time `json:"created_at"`
}
