package catalog

import (
	"strings"

	"pricely/models"

	"gorm.io/gorm"
)

type Scope = func(*gorm.DB) *gorm.DB

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a substring pattern for LIKE ... ESCAPE '\'. Case folding happens
// in SQL on both sides so the column and the query go through the same LOWER().
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}

// SearchProducts matches name or card description. An empty query matches everything.
func SearchProducts(query string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		query = strings.TrimSpace(query)
		if query == "" {
			return db
		}
		p := containsPattern(query)
		return db.Where(
			`(LOWER(products.name) LIKE LOWER(?) ESCAPE '\' OR LOWER(products.card_description) LIKE LOWER(?) ESCAPE '\')`,
			p, p)
	}
}

// SearchProductTypes matches name or description. An empty query matches everything.
func SearchProductTypes(query string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		query = strings.TrimSpace(query)
		if query == "" {
			return db
		}
		p := containsPattern(query)
		return db.Where(
			`(LOWER(product_types.name) LIKE LOWER(?) ESCAPE '\' OR LOWER(product_types.description) LIKE LOWER(?) ESCAPE '\')`,
			p, p)
	}
}

// PopularProductTypes keeps the types that have at least one product.
func PopularProductTypes() Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("EXISTS (SELECT 1 FROM products p WHERE p.product_type_id = product_types.id)")
	}
}

func ProductsOfType(productTypeID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("products.product_type_id = ?", productTypeID)
	}
}

func StoreProducts(storeID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("products.store_id = ?", storeID)
	}
}

// ComparedBy keeps the products in the user's comparison set.
func ComparedBy(userID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("products.id IN (SELECT c.product_id FROM comparisons c WHERE c.user_id = ?)", userID)
	}
}

// ComparedProductTypes keeps the types of the products in the user's comparison set.
func ComparedProductTypes(userID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(`product_types.id IN (
			SELECT p.product_type_id FROM comparisons c
			JOIN products p ON p.id = c.product_id
			WHERE c.user_id = ?)`, userID)
	}
}

// WithStores joins stores for ordering and preloads the Store association.
func WithStores() Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Select("products.*").
			Joins("JOIN stores ON stores.id = products.store_id").
			Preload("Store")
	}
}

// OrderByStoreAndPrice requires WithStores.
func OrderByStoreAndPrice() Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order("stores.name ASC").Order("products.price ASC").Order("products.id ASC")
	}
}

// OrderByPopularity orders annotated product types.
func OrderByPopularity() Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order("store_count DESC").Order("product_types.views DESC").Order("product_types.id ASC")
	}
}

func OrderByViews(table string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + ".views DESC").Order(table + ".id ASC")
	}
}

// PopularProducts returns the store's most viewed products.
func PopularProducts(db *gorm.DB, storeID uint, limit int) ([]models.Product, error) {
	products := make([]models.Product, 0)
	err := db.Model(&models.Product{}).
		Scopes(StoreProducts(storeID), OrderByViews("products")).
		Preload("ProductType").
		Limit(limit).
		Find(&products).Error
	return products, err
}
