package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"pricely/middleware"
	"pricely/models"
	"pricely/services/catalog"
	"pricely/services/visits"
	"pricely/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func respondOK(c *gin.Context, status int, result interface{}) {
	c.JSON(status, gin.H{"result": result, "success": true})
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"result": nil, "success": false, "error": msg})
}

// respondDBError maps a lookup error to 404 or a logged 500.
func respondDBError(c *gin.Context, err error, context string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "Not found")
		return
	}
	utils.LogError(err, context)
	respondError(c, http.StatusInternalServerError, "Internal server error")
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// pageInfo is the pagination block of a list context.
type pageInfo struct {
	Number      int     `json:"number"`
	NumPages    int     `json:"num_pages"`
	Count       int64   `json:"count"`
	PageSize    int     `json:"page_size"`
	HasNext     bool    `json:"has_next"`
	HasPrevious bool    `json:"has_previous"`
	Next        *string `json:"next"`
	Previous    *string `json:"previous"`
}

// pageURL keeps every query parameter of the current request and swaps the page.
func pageURL(c *gin.Context, number int) *string {
	q := c.Request.URL.Query()
	q.Set("page", strconv.Itoa(number))
	u := c.Request.URL.Path + "?" + q.Encode()
	return &u
}

// resolvePage reads ?page= and writes the 404 response itself when the page is invalid.
func resolvePage(c *gin.Context, total int64, size int) (catalog.Page, pageInfo, bool) {
	page, err := catalog.ResolvePage(c.Query("page"), total, size)
	if err != nil {
		respondError(c, http.StatusNotFound, "Invalid page")
		return page, pageInfo{}, false
	}
	info := pageInfo{
		Number:      page.Number,
		NumPages:    page.NumPages,
		Count:       page.Count,
		PageSize:    page.Size,
		HasNext:     page.HasNext(),
		HasPrevious: page.HasPrevious(),
	}
	if info.HasNext {
		info.Next = pageURL(c, page.Number+1)
	}
	if info.HasPrevious {
		info.Previous = pageURL(c, page.Number-1)
	}
	return page, info, true
}

type listTexts struct {
	Title       string
	ListTitle   string
	Description string
}

// listContext builds the keys shared by every catalog list response.
func listContext(c *gin.Context, texts listTexts, objects interface{}, page pageInfo) gin.H {
	var searchType interface{}
	if st, ok := c.GetQuery("search_type"); ok {
		searchType = st
	}
	return gin.H{
		"title":                   texts.Title,
		"object_list_title":       texts.ListTitle,
		"object_list_description": texts.Description,
		"search_query":            c.Query("search_query"),
		"search_type":             searchType,
		"object_list":             objects,
		"page_obj":                page,
	}
}

func mergeStats(ctx gin.H, stats catalog.PriceStats) gin.H {
	for k, v := range stats.Map() {
		ctx[k] = v
	}
	return ctx
}

// trackVisit counts the view and reports whether it was new.
// Failures are logged and treated as a repeat visit.
func trackVisit(c *gin.Context, tracker *visits.Tracker, kind visits.Kind, id uint) bool {
	counted, err := tracker.Track(c.Request.Context(), kind, c.ClientIP(), id)
	if err != nil {
		utils.LogError(err, "visit tracking")
		return false
	}
	return counted
}

// productItem is a product as listed to a (possibly anonymous) user.
type productItem struct {
	models.Product
	IsCompared bool `json:"is_compared"`
}

func comparedIDs(db *gorm.DB, userID uint, products []models.Product) (map[uint]bool, error) {
	set := make(map[uint]bool)
	if userID == 0 || len(products) == 0 {
		return set, nil
	}
	ids := make([]uint, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	var compared []uint
	err := db.Model(&models.Comparison{}).
		Where("user_id = ? AND product_id IN ?", userID, ids).
		Pluck("product_id", &compared).Error
	if err != nil {
		return nil, err
	}
	for _, id := range compared {
		set[id] = true
	}
	return set, nil
}

// withComparisonFlags marks the products the current user compares.
func withComparisonFlags(c *gin.Context, db *gorm.DB, products []models.Product) ([]productItem, error) {
	set, err := comparedIDs(db, middleware.CurrentUserID(c), products)
	if err != nil {
		return nil, err
	}
	items := make([]productItem, len(products))
	for i, p := range products {
		items[i] = productItem{Product: p, IsCompared: set[p.ID]}
	}
	return items, nil
}
