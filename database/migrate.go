package database

import (
	"fmt"

	"pricely/migrations"
	"pricely/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.ProductType{},
		&models.Product{},
		&models.Comparison{},
		&models.StoreComment{},
		&models.ProductComment{},
		&models.EmailVerification{},
		&models.PriceHistory{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	if err := migrations.CreateCatalogIndexes(db); err != nil {
		return fmt.Errorf("catalog indexes: %w", err)
	}
	if err := migrations.CreateComparisonsUniqueIndex(db); err != nil {
		return fmt.Errorf("comparisons index: %w", err)
	}
	return nil
}
