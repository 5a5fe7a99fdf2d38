package migrations

import "gorm.io/gorm"

// CreateCatalogIndexes adds the indexes used by listing and ordering queries.
// Statements run one by one since sqlite does not accept multi-statement Exec.
func CreateCatalogIndexes(db *gorm.DB) error {
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_products_type_price ON products(product_type_id, price)`,
		`CREATE INDEX IF NOT EXISTS idx_products_store_views ON products(store_id, views DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_product_types_views ON product_types(views DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_stores_views ON stores(views DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_store_comments_store_created ON store_comments(store_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_product_comments_product_created ON product_comments(product_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_price_history_product_recorded ON price_history(product_id, recorded_at DESC)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
