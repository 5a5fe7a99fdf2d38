package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ProductType struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Slug        string    `json:"slug" gorm:"type:varchar(255);uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Views       int64     `json:"views" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Product struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	Name            string          `json:"name" gorm:"type:varchar(255);not null"`
	CardDescription string          `json:"card_description" gorm:"type:varchar(512)"`
	Description     string          `json:"description" gorm:"type:text"`
	Price           decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	SourceURL       string          `json:"source_url" gorm:"type:text"`
	Specifications  datatypes.JSON  `json:"specifications,omitempty"`
	Views           int64           `json:"views" gorm:"not null;default:0"`

	ProductTypeID uint         `json:"product_type_id" gorm:"not null;index"`
	ProductType   *ProductType `json:"product_type,omitempty" gorm:"foreignKey:ProductTypeID;constraint:OnDelete:CASCADE"`
	StoreID       uint         `json:"store_id" gorm:"not null;index"`
	Store         *Store       `json:"store,omitempty" gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PriceHistory struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	ProductID  uint            `json:"product_id" gorm:"not null;index"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	RecordedAt time.Time       `json:"recorded_at" gorm:"not null;index"`
}

func (PriceHistory) TableName() string {
	return "price_history"
}
