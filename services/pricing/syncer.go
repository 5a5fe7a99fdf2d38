package pricing

import (
	"context"
	"fmt"
	"time"

	"pricely/metrics"
	"pricely/models"
	"pricely/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SyncReport struct {
	Checked   int `json:"checked"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// Syncer refreshes product prices from their store pages.
type Syncer struct {
	db      *gorm.DB
	fetcher PageFetcher
	now     func() time.Time
}

func NewSyncer(db *gorm.DB, fetcher PageFetcher) *Syncer {
	return &Syncer{db: db, fetcher: fetcher, now: time.Now}
}

// SyncAll checks every product that has a source URL in a store with a price selector.
// Per-product failures are counted and logged; only a failed product query aborts the run.
func (s *Syncer) SyncAll(ctx context.Context) (SyncReport, error) {
	var report SyncReport

	var products []models.Product
	err := s.db.WithContext(ctx).
		Select("products.*").
		Joins("JOIN stores ON stores.id = products.store_id").
		Where("products.source_url <> '' AND stores.price_selector <> ''").
		Preload("Store").
		Order("products.id").
		Find(&products).Error
	if err != nil {
		return report, fmt.Errorf("load products: %w", err)
	}

	for i := range products {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.Checked++
		changed, err := s.SyncProduct(ctx, &products[i])
		switch {
		case err != nil:
			report.Failed++
			metrics.RecordPriceSync("failed")
			utils.Logger().Warn().Err(err).Uint("product_id", products[i].ID).Msg("price sync failed")
		case changed:
			report.Updated++
			metrics.RecordPriceSync("updated")
		default:
			report.Unchanged++
			metrics.RecordPriceSync("unchanged")
		}
	}
	return report, nil
}

// SyncProduct fetches one product page and stores the price when it changed.
// p.Store must be loaded.
func (s *Syncer) SyncProduct(ctx context.Context, p *models.Product) (bool, error) {
	if p.Store == nil {
		return false, fmt.Errorf("product %d: store not loaded", p.ID)
	}
	page, err := s.fetcher.Fetch(ctx, p.SourceURL)
	if err != nil {
		return false, err
	}
	price, err := ParsePrice(page, p.Store.PriceSelector)
	if err != nil {
		return false, err
	}
	price = price.Round(2)
	if price.Equal(p.Price) {
		return false, nil
	}
	if err := s.recordPrice(ctx, p, price); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Syncer) recordPrice(ctx context.Context, p *models.Product, price decimal.Decimal) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("id = ?", p.ID).Update("price", price).Error; err != nil {
			return fmt.Errorf("update price: %w", err)
		}
		entry := models.PriceHistory{ProductID: p.ID, Price: price, RecordedAt: s.now()}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("append price history: %w", err)
		}
		p.Price = price
		return nil
	})
}
