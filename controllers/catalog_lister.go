package controllers

import (
	"pricely/models"
	"pricely/services/catalog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// catalogLister paginates product and product type listings.
type catalogLister struct {
	db         *gorm.DB
	paginateBy int
}

func (l catalogLister) products() *gorm.DB {
	return l.db.Model(&models.Product{})
}

func (l catalogLister) productTypes() *gorm.DB {
	return l.db.Model(&models.ProductType{})
}

// listProducts paginates products matching scopes, ordered by store name and price.
func (l catalogLister) listProducts(c *gin.Context, scopes ...catalog.Scope) ([]productItem, pageInfo, bool) {
	var total int64
	if err := l.products().Scopes(scopes...).Count(&total).Error; err != nil {
		respondDBError(c, err, "count products")
		return nil, pageInfo{}, false
	}
	page, info, ok := resolvePage(c, total, l.paginateBy)
	if !ok {
		return nil, info, false
	}

	products := make([]models.Product, 0)
	err := l.products().
		Scopes(scopes...).
		Scopes(catalog.WithStores(), catalog.OrderByStoreAndPrice(), catalog.Paginate(page)).
		Find(&products).Error
	if err != nil {
		respondDBError(c, err, "list products")
		return nil, info, false
	}
	items, err := withComparisonFlags(c, l.db, products)
	if err != nil {
		respondDBError(c, err, "comparison flags")
		return nil, info, false
	}
	return items, info, true
}

// listProductTypes paginates annotated product types matching scopes.
func (l catalogLister) listProductTypes(c *gin.Context, order catalog.Scope, scopes ...catalog.Scope) ([]catalog.AnnotatedProductType, pageInfo, bool) {
	var total int64
	if err := l.productTypes().Scopes(scopes...).Count(&total).Error; err != nil {
		respondDBError(c, err, "count product types")
		return nil, pageInfo{}, false
	}
	page, info, ok := resolvePage(c, total, l.paginateBy)
	if !ok {
		return nil, info, false
	}

	q := catalog.AnnotateProductTypes(l.productTypes().Scopes(scopes...)).
		Scopes(order, catalog.Paginate(page))
	rows, err := catalog.ScanAnnotated(q)
	if err != nil {
		respondDBError(c, err, "list product types")
		return nil, info, false
	}
	return rows, info, true
}
