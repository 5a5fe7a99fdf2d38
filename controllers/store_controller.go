package controllers

import (
	"net/http"
	"strings"

	"pricely/config"
	"pricely/middleware"
	"pricely/models"
	"pricely/services/catalog"
	"pricely/services/visits"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type StoreController struct {
	db           *gorm.DB
	visits       *visits.Tracker
	paginateBy   int
	popularLimit int
}

func NewStoreController(db *gorm.DB, tracker *visits.Tracker, cfg *config.Config) *StoreController {
	return &StoreController{
		db:           db,
		visits:       tracker,
		paginateBy:   cfg.ProductsPaginateBy,
		popularLimit: cfg.PopularProductsPaginateBy,
	}
}

// GET /stores/
func (sc *StoreController) List(c *gin.Context) {
	var total int64
	if err := sc.db.Model(&models.Store{}).Count(&total).Error; err != nil {
		respondDBError(c, err, "count stores")
		return
	}
	page, info, ok := resolvePage(c, total, sc.paginateBy)
	if !ok {
		return
	}
	stores := make([]models.Store, 0)
	err := sc.db.Model(&models.Store{}).
		Scopes(catalog.OrderByViews("stores"), catalog.Paginate(page)).
		Find(&stores).Error
	if err != nil {
		respondDBError(c, err, "list stores")
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"title":       "Stores",
		"object_list": stores,
		"page_obj":    info,
	})
}

// GET /stores/:slug/
func (sc *StoreController) Detail(c *gin.Context) {
	var store models.Store
	if err := sc.db.Where("slug = ?", c.Param("slug")).First(&store).Error; err != nil {
		respondDBError(c, err, "store lookup")
		return
	}

	var comments []models.StoreComment
	err := sc.db.Preload("Author").
		Where("store_id = ?", store.ID).
		Order("created_at DESC").Order("id DESC").
		Find(&comments).Error
	if err != nil {
		respondDBError(c, err, "store comments")
		return
	}
	views := make([]models.CommentView, len(comments))
	for i, cm := range comments {
		views[i] = cm.View()
	}

	popular, err := catalog.PopularProducts(sc.db, store.ID, sc.popularLimit)
	if err != nil {
		respondDBError(c, err, "popular products")
		return
	}
	items, err := withComparisonFlags(c, sc.db, popular)
	if err != nil {
		respondDBError(c, err, "comparison flags")
		return
	}

	if trackVisit(c, sc.visits, visits.KindStore, store.ID) {
		store.Views++
	}
	respondOK(c, http.StatusOK, gin.H{
		"title":            store.Name,
		"object":           store,
		"comments":         views,
		"popular_products": items,
	})
}

// POST /stores/:slug/comments/
func (sc *StoreController) CreateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		respondError(c, http.StatusBadRequest, "text is required")
		return
	}
	var store models.Store
	if err := sc.db.Select("id").Where("slug = ?", c.Param("slug")).First(&store).Error; err != nil {
		respondDBError(c, err, "store lookup")
		return
	}

	comment := models.StoreComment{
		AuthorID: middleware.CurrentUserID(c),
		StoreID:  store.ID,
		Text:     strings.TrimSpace(req.Text),
	}
	if err := sc.db.Omit("Author").Create(&comment).Error; err != nil {
		respondDBError(c, err, "create store comment")
		return
	}
	if err := sc.db.First(&comment.Author, comment.AuthorID).Error; err != nil {
		respondDBError(c, err, "comment author")
		return
	}
	respondOK(c, http.StatusCreated, comment.View())
}
