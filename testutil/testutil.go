// Package testutil provides in-memory backends for package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"pricely/config"
	"pricely/database"
	"pricely/models"
	"pricely/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const JWTSecret = "test-secret"

// NewTestDB opens a private in-memory sqlite database with the full schema.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// NewTestRedis starts a miniredis server and returns it with a connected client.
func NewTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func NewTestConfig() *config.Config {
	return &config.Config{
		DBDriver:                  "sqlite",
		SiteURL:                   "http://testserver",
		CORSOrigins:               []string{"http://localhost:3000"},
		JWTSecret:                 JWTSecret,
		JWTTTL:                    time.Hour,
		ProductsPaginateBy:        12,
		PopularProductsPaginateBy: 8,
		VisitTrackingTTL:          time.Hour,
		EmailVerificationTTL:      48 * time.Hour,
		PriceSyncTimeout:          time.Second,
	}
}

// Mail is one message captured by FakeMailer.
type Mail struct {
	To, Subject, Text, HTML string
}

type FakeMailer struct {
	mu   sync.Mutex
	Sent []Mail
	Err  error
}

func (m *FakeMailer) Send(to, subject, textBody, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, Mail{To: to, Subject: subject, Text: textBody, HTML: htmlBody})
	return nil
}

func (m *FakeMailer) Last() (Mail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return Mail{}, false
	}
	return m.Sent[len(m.Sent)-1], true
}

func Price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func CreateStore(t *testing.T, db *gorm.DB, name string) models.Store {
	t.Helper()
	s := models.Store{Name: name, Slug: utils.Slugify(name, "store"), Description: name + " store"}
	require.NoError(t, db.Create(&s).Error)
	return s
}

func CreateProductType(t *testing.T, db *gorm.DB, name, description string) models.ProductType {
	t.Helper()
	pt := models.ProductType{Name: name, Slug: utils.Slugify(name, "type"), Description: description}
	require.NoError(t, db.Create(&pt).Error)
	return pt
}

func CreateProduct(t *testing.T, db *gorm.DB, name string, price string, pt models.ProductType, store models.Store) models.Product {
	t.Helper()
	p := models.Product{
		Name:            name,
		CardDescription: name + " card",
		Price:           Price(price),
		ProductTypeID:   pt.ID,
		StoreID:         store.ID,
	}
	require.NoError(t, db.Omit("ProductType", "Store").Create(&p).Error)
	return p
}

// CreateUser stores a user whose password is "password123".
func CreateUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	u := models.User{
		Username: username,
		Slug:     utils.Slugify(username, "user"),
		Email:    strings.ToLower(username) + "@example.com",
		Password: hash,
		Role:     "user",
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func Token(t *testing.T, user models.User) string {
	t.Helper()
	token, _, err := utils.GenerateJWT(user.ID, user.Role, JWTSecret, time.Hour)
	require.NoError(t, err)
	return token
}
