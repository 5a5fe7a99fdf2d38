package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("PRODUCTS_PAGINATE_BY", "")
	t.Setenv("VISIT_TRACKING_TTL", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := LoadConfig()
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 12, cfg.ProductsPaginateBy)
	assert.Equal(t, 8, cfg.PopularProductsPaginateBy)
	assert.Equal(t, time.Hour, cfg.VisitTrackingTTL)
	assert.Equal(t, 48*time.Hour, cfg.EmailVerificationTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("PRODUCTS_PAGINATE_BY", "20")
	t.Setenv("VISIT_TRACKING_TTL", "30m")
	t.Setenv("PRICE_SYNC_ENABLED", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("SITE_URL", "https://pricely.example/")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 20, cfg.ProductsPaginateBy)
	assert.Equal(t, 30*time.Minute, cfg.VisitTrackingTTL)
	assert.True(t, cfg.PriceSyncEnabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "https://pricely.example", cfg.SiteURL)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "pricely", DBPort: "5432"}
	assert.Equal(t, "host=db user=u password=p dbname=pricely port=5432 sslmode=disable", cfg.DSN())
}
