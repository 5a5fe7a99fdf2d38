package controllers

import (
	"errors"
	"net/http"

	"pricely/config"
	"pricely/middleware"
	"pricely/models"
	"pricely/services/catalog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const comparisonsTitle = "Comparisons"

// ComparisonController serves the signed-in user's comparison set.
type ComparisonController struct {
	catalogLister
}

func NewComparisonController(db *gorm.DB, cfg *config.Config) *ComparisonController {
	return &ComparisonController{catalogLister{db: db, paginateBy: cfg.ProductsPaginateBy}}
}

func comparisonContext(c *gin.Context, objects interface{}, info pageInfo) gin.H {
	ctx := listContext(c, listTexts{Title: comparisonsTitle}, objects, info)
	ctx["comparison"] = true
	return ctx
}

// GET /comparisons/
func (cc *ComparisonController) ProductTypeList(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	rows, info, ok := cc.listProductTypes(c, catalog.OrderByViews("product_types"), catalog.ComparedProductTypes(userID))
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, comparisonContext(c, rows, info))
}

// GET /comparisons/:slug/
func (cc *ComparisonController) ProductList(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	var productType models.ProductType
	if err := cc.db.Where("slug = ?", c.Param("slug")).First(&productType).Error; err != nil {
		respondDBError(c, err, "product type lookup")
		return
	}

	scopes := []catalog.Scope{catalog.ProductsOfType(productType.ID), catalog.ComparedBy(userID)}
	stats, err := catalog.PriceAggregation(cc.products().Scopes(scopes...))
	if err != nil {
		respondDBError(c, err, "comparison prices")
		return
	}
	items, info, ok := cc.listProducts(c, scopes...)
	if !ok {
		return
	}
	ctx := comparisonContext(c, items, info)
	ctx["product_type"] = productType
	respondOK(c, http.StatusOK, mergeStats(ctx, stats))
}

type addComparisonRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// POST /comparisons/
func (cc *ComparisonController) Add(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	var req addComparisonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "product_id is required")
		return
	}

	var product models.Product
	if err := cc.db.Select("id").First(&product, req.ProductID).Error; err != nil {
		respondDBError(c, err, "product lookup")
		return
	}

	var existing int64
	if err := cc.db.Model(&models.Comparison{}).
		Where("user_id = ? AND product_id = ?", userID, product.ID).
		Count(&existing).Error; err != nil {
		respondDBError(c, err, "comparison lookup")
		return
	}
	if existing > 0 {
		respondError(c, http.StatusConflict, "Product is already in comparisons")
		return
	}

	cmp := models.Comparison{UserID: userID, ProductID: product.ID}
	if err := cc.db.Omit("User", "Product").Create(&cmp).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, http.StatusConflict, "Product is already in comparisons")
			return
		}
		respondDBError(c, err, "create comparison")
		return
	}
	respondOK(c, http.StatusCreated, cmp)
}

// DELETE /comparisons/:product_id/
func (cc *ComparisonController) Remove(c *gin.Context) {
	productID, ok := paramID(c, "product_id")
	if !ok {
		respondError(c, http.StatusNotFound, "Not found")
		return
	}
	res := cc.db.Where("user_id = ? AND product_id = ?", middleware.CurrentUserID(c), productID).
		Delete(&models.Comparison{})
	if res.Error != nil {
		respondDBError(c, res.Error, "delete comparison")
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "Product is not in comparisons")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"product_id": productID})
}
