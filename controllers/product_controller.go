package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"pricely/config"
	"pricely/middleware"
	"pricely/models"
	"pricely/services/catalog"
	"pricely/services/visits"
	"pricely/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const searchResultsDescription = "Explore the results of your search query."

type ProductController struct {
	catalogLister
	visits *visits.Tracker
}

func NewProductController(db *gorm.DB, tracker *visits.Tracker, cfg *config.Config) *ProductController {
	return &ProductController{
		catalogLister: catalogLister{db: db, paginateBy: cfg.ProductsPaginateBy},
		visits:        tracker,
	}
}

// GET /products/
func (pc *ProductController) ProductTypeList(c *gin.Context) {
	rows, info, ok := pc.listProductTypes(c, catalog.OrderByPopularity(), catalog.PopularProductTypes())
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, listContext(c, listTexts{
		Title:     "Categories",
		ListTitle: "Discover Popular Product Categories",
		Description: "Explore our curated list of popular product categories, " +
			"sorted by their popularity among users.",
	}, rows, info))
}

// GET /products/categories/:slug/
func (pc *ProductController) ProductList(c *gin.Context) {
	var productType models.ProductType
	if err := pc.db.Where("slug = ?", c.Param("slug")).First(&productType).Error; err != nil {
		respondDBError(c, err, "product type lookup")
		return
	}

	stats, err := catalog.PriceAggregation(pc.products().Scopes(catalog.ProductsOfType(productType.ID)))
	if err != nil {
		respondDBError(c, err, "product type prices")
		return
	}
	items, info, ok := pc.listProducts(c, catalog.ProductsOfType(productType.ID))
	if !ok {
		return
	}

	if trackVisit(c, pc.visits, visits.KindProductType, productType.ID) {
		productType.Views++
	}
	ctx := listContext(c, listTexts{
		Title:       productType.Name,
		ListTitle:   fmt.Sprintf("Products in the category \"%s\"", productType.Name),
		Description: "Discover a wide range of products available in the selected category.",
	}, items, info)
	ctx["product_type"] = productType
	respondOK(c, http.StatusOK, mergeStats(ctx, stats))
}

// GET /products/items/:id/
func (pc *ProductController) ProductDetail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		respondError(c, http.StatusNotFound, "Not found")
		return
	}
	var product models.Product
	if err := pc.db.Preload("Store").Preload("ProductType").First(&product, id).Error; err != nil {
		respondDBError(c, err, "product lookup")
		return
	}

	var comments []models.ProductComment
	err := pc.db.Preload("Author").
		Where("product_id = ?", product.ID).
		Order("created_at DESC").Order("id DESC").
		Find(&comments).Error
	if err != nil {
		respondDBError(c, err, "product comments")
		return
	}
	views := make([]models.CommentView, len(comments))
	for i, cm := range comments {
		views[i] = cm.View()
	}

	if trackVisit(c, pc.visits, visits.KindProduct, product.ID) {
		product.Views++
	}
	items, err := withComparisonFlags(c, pc.db, []models.Product{product})
	if err != nil {
		respondDBError(c, err, "comparison flags")
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"title":    product.Name,
		"object":   items[0],
		"comments": views,
	})
}

// GET /products/items/:id/history/
func (pc *ProductController) PriceHistory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		respondError(c, http.StatusNotFound, "Not found")
		return
	}
	var product models.Product
	if err := pc.db.Select("id", "name", "price").First(&product, id).Error; err != nil {
		respondDBError(c, err, "product lookup")
		return
	}
	history := make([]models.PriceHistory, 0)
	if err := pc.db.Where("product_id = ?", id).Order("recorded_at ASC").Order("id ASC").Find(&history).Error; err != nil {
		respondDBError(c, err, "price history")
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"product_id": product.ID,
		"name":       product.Name,
		"price":      product.Price,
		"history":    history,
	})
}

type searchRedirectQuery struct {
	SearchType string `form:"search_type" binding:"required,search_type"`
}

// GET /products/search/ forwards to the search for the chosen type, keeping the query string.
func (pc *ProductController) SearchRedirect(c *gin.Context) {
	var q searchRedirectQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "search_type not in product or product_type")
		return
	}
	target := "/products/search/products/"
	if q.SearchType == utils.SearchTypeProductType {
		target = "/products/search/categories/"
	}
	c.Redirect(http.StatusFound, target+"?"+c.Request.URL.RawQuery)
}

// GET /products/search/products/
func (pc *ProductController) ProductSearch(c *gin.Context) {
	search := catalog.SearchProducts(c.Query("search_query"))
	stats, err := catalog.PriceAggregation(pc.products().Scopes(search))
	if err != nil {
		respondDBError(c, err, "search prices")
		return
	}
	items, info, ok := pc.listProducts(c, search)
	if !ok {
		return
	}
	ctx := listContext(c, listTexts{
		Title:       "Product Search",
		ListTitle:   "Search Results",
		Description: searchResultsDescription,
	}, items, info)
	respondOK(c, http.StatusOK, mergeStats(ctx, stats))
}

// GET /products/search/categories/
func (pc *ProductController) ProductTypeSearch(c *gin.Context) {
	rows, info, ok := pc.listProductTypes(c, catalog.OrderByPopularity(), catalog.SearchProductTypes(c.Query("search_query")))
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, listContext(c, listTexts{
		Title:       "Category Search",
		ListTitle:   "Search Results",
		Description: searchResultsDescription,
	}, rows, info))
}

type commentRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

// POST /products/items/:id/comments/
func (pc *ProductController) CreateComment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		respondError(c, http.StatusNotFound, "Not found")
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		respondError(c, http.StatusBadRequest, "text is required")
		return
	}
	var product models.Product
	if err := pc.db.Select("id").First(&product, id).Error; err != nil {
		respondDBError(c, err, "product lookup")
		return
	}

	comment := models.ProductComment{
		AuthorID:  middleware.CurrentUserID(c),
		ProductID: product.ID,
		Text:      strings.TrimSpace(req.Text),
	}
	if err := pc.db.Omit("Author").Create(&comment).Error; err != nil {
		respondDBError(c, err, "create product comment")
		return
	}
	if err := pc.db.First(&comment.Author, comment.AuthorID).Error; err != nil {
		respondDBError(c, err, "comment author")
		return
	}
	respondOK(c, http.StatusCreated, comment.View())
}
