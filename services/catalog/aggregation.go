package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceRounding is the number of decimal places surfaced for aggregated prices.
const PriceRounding = 2

// PriceStats holds the rounded price summary of a product collection.
// Every field is null when the collection is empty.
type PriceStats struct {
	Min decimal.NullDecimal `json:"price__min"`
	Max decimal.NullDecimal `json:"price__max"`
	Avg decimal.NullDecimal `json:"price__avg"`
}

// Map returns the stats keyed the way list contexts expose them.
func (s PriceStats) Map() map[string]interface{} {
	return map[string]interface{}{
		"price__min": s.Min,
		"price__max": s.Max,
		"price__avg": s.Avg,
	}
}

func roundPrice(v decimal.NullDecimal) decimal.NullDecimal {
	if !v.Valid {
		return v
	}
	return decimal.NewNullDecimal(v.Decimal.Round(PriceRounding))
}

// PriceAggregation computes MIN/MAX/AVG of products.price over q.
// q must be a filtered products query without ordering, limit or preloads.
func PriceAggregation(q *gorm.DB) (PriceStats, error) {
	var row struct {
		PriceMin decimal.NullDecimal
		PriceMax decimal.NullDecimal
		PriceAvg decimal.NullDecimal
	}
	err := q.Session(&gorm.Session{}).
		Select("MIN(products.price) AS price_min, MAX(products.price) AS price_max, AVG(products.price) AS price_avg").
		Scan(&row).Error
	if err != nil {
		return PriceStats{}, fmt.Errorf("price aggregation: %w", err)
	}
	return PriceStats{
		Min: roundPrice(row.PriceMin),
		Max: roundPrice(row.PriceMax),
		Avg: roundPrice(row.PriceAvg),
	}, nil
}
