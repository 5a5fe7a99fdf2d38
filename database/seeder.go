package database

import (
	"pricely/models"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedDemoCatalog fills an empty catalog with a few stores, categories and products.
func SeedDemoCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Store{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		stores := []models.Store{
			{Name: "TechnoPark", Slug: "technopark", URL: "https://www.technopark.ru", Description: "Consumer electronics", PriceSelector: ".product-prices__price"},
			{Name: "DNS", Slug: "dns", URL: "https://www.dns-shop.ru", Description: "Computers and components", PriceSelector: ".product-buy__price"},
			{Name: "Citilink", Slug: "citilink", URL: "https://www.citilink.ru", Description: "Electronics retailer"},
		}
		if err := tx.Create(&stores).Error; err != nil {
			return err
		}

		types := []models.ProductType{
			{Name: "Smartphones", Slug: "smartphones", Description: "Mobile phones"},
			{Name: "Laptops", Slug: "laptops", Description: "Portable computers"},
			{Name: "Headphones", Slug: "headphones", Description: "Wired and wireless headphones"},
		}
		if err := tx.Create(&types).Error; err != nil {
			return err
		}

		price := decimal.RequireFromString
		products := []models.Product{
			{Name: "Phone X 128GB", CardDescription: "6.1\" OLED, 128GB", Price: price("79990.00"), ProductTypeID: types[0].ID, StoreID: stores[0].ID,
				Specifications: datatypes.JSON(`{"storage":"128GB","screen":"6.1"}`)},
			{Name: "Phone X 128GB", CardDescription: "6.1\" OLED, 128GB", Price: price("78490.00"), ProductTypeID: types[0].ID, StoreID: stores[1].ID},
			{Name: "Phone Lite 64GB", CardDescription: "5.8\" LCD, 64GB", Price: price("29990.00"), ProductTypeID: types[0].ID, StoreID: stores[2].ID},
			{Name: "UltraBook 14", CardDescription: "14\" IPS, 16GB RAM", Price: price("99990.00"), ProductTypeID: types[1].ID, StoreID: stores[1].ID,
				Specifications: datatypes.JSON(`{"ram":"16GB","cpu":"8 cores"}`)},
			{Name: "UltraBook 14", CardDescription: "14\" IPS, 16GB RAM", Price: price("101500.00"), ProductTypeID: types[1].ID, StoreID: stores[2].ID},
		}
		return tx.Create(&products).Error
	})
}
