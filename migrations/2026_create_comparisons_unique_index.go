package migrations

import "gorm.io/gorm"

// CreateComparisonsUniqueIndex makes a product appear at most once in a user's comparison set.
// AutoMigrate creates the same index for fresh databases; this covers tables created before it.
func CreateComparisonsUniqueIndex(db *gorm.DB) error {
	return db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uniq_comparisons_user_product
		ON comparisons(user_id, product_id)
	`).Error
}
