package catalog

import (
	"fmt"

	"pricely/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AnnotatedProductType is a product type with the price summary of its products
// and the number of distinct stores selling them.
type AnnotatedProductType struct {
	models.ProductType
	PriceMin   decimal.NullDecimal `json:"product__price__min"`
	PriceMax   decimal.NullDecimal `json:"product__price__max"`
	PriceAvg   decimal.NullDecimal `json:"product__price__avg"`
	StoreCount int64               `json:"product__store__count"`
}

func (a *AnnotatedProductType) Round() {
	a.PriceMin = roundPrice(a.PriceMin)
	a.PriceMax = roundPrice(a.PriceMax)
	a.PriceAvg = roundPrice(a.PriceAvg)
}

// AnnotateProductTypes adds price_min, price_max, price_avg and store_count
// columns to a product_types query. Types without products keep null prices
// and a zero store count.
func AnnotateProductTypes(q *gorm.DB) *gorm.DB {
	return q.Select(
		"product_types.*, " +
			"MIN(products.price) AS price_min, " +
			"MAX(products.price) AS price_max, " +
			"AVG(products.price) AS price_avg, " +
			"COUNT(DISTINCT products.store_id) AS store_count").
		Joins("LEFT JOIN products ON products.product_type_id = product_types.id").
		Group("product_types.id")
}

// ScanAnnotated runs an annotated query and rounds the aggregated prices.
func ScanAnnotated(q *gorm.DB) ([]AnnotatedProductType, error) {
	rows := make([]AnnotatedProductType, 0)
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("annotated product types: %w", err)
	}
	for i := range rows {
		rows[i].Round()
	}
	return rows, nil
}
