package database_test

import (
	"testing"

	"pricely/config"
	"pricely/database"
	"pricely/models"
	"pricely/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMigrateIsIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	require.NoError(t, database.Migrate(db))
	assert.True(t, db.Migrator().HasIndex(&models.Comparison{}, "uniq_comparisons_user_product"))
	assert.True(t, db.Migrator().HasIndex(&models.Product{}, "idx_products_type_price"))
}

func TestComparisonPairIsUnique(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := testutil.CreateStore(t, db, "Shop")
	pt := testutil.CreateProductType(t, db, "Phones", "")
	p := testutil.CreateProduct(t, db, "Phone", "1.00", pt, store)
	u := testutil.CreateUser(t, db, "alice")

	require.NoError(t, db.Omit("User", "Product").Create(&models.Comparison{UserID: u.ID, ProductID: p.ID}).Error)
	err := db.Omit("User", "Product").Create(&models.Comparison{UserID: u.ID, ProductID: p.ID}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestSeedDemoCatalog(t *testing.T) {
	db := testutil.NewTestDB(t)
	require.NoError(t, database.SeedDemoCatalog(db))
	require.NoError(t, database.SeedDemoCatalog(db))

	var stores, products int64
	require.NoError(t, db.Model(&models.Store{}).Count(&stores).Error)
	require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
	assert.Equal(t, int64(3), stores)
	assert.Equal(t, int64(5), products)
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := database.Connect(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestConnectSQLite(t *testing.T) {
	db, err := database.Connect(&config.Config{DBDriver: "sqlite", SQLitePath: t.TempDir() + "/pricely.db"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}
