package controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"pricely/models"
	"pricely/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalogFixture struct {
	first, second   models.Store
	phones, laptops models.ProductType
	phone, phone2   models.Product
	laptop          models.Product
}

func seedCatalog(t *testing.T, s *testServer) catalogFixture {
	t.Helper()
	var f catalogFixture
	f.first = testutil.CreateStore(t, s.db, "Alpha")
	f.second = testutil.CreateStore(t, s.db, "Beta")
	f.phones = testutil.CreateProductType(t, s.db, "Phones", "Mobile devices")
	f.laptops = testutil.CreateProductType(t, s.db, "Laptops", "Portable computers")
	testutil.CreateProductType(t, s.db, "Empty", "Nothing here")
	f.phone = testutil.CreateProduct(t, s.db, "Galaxy", "1.00", f.phones, f.second)
	f.phone2 = testutil.CreateProduct(t, s.db, "Pixel", "1.01", f.phones, f.first)
	f.laptop = testutil.CreateProduct(t, s.db, "ThinkPad", "900.00", f.laptops, f.first)
	return f
}

func TestProductTypeListShowsPopularTypes(t *testing.T) {
	s := newTestServer(t)
	seedCatalog(t, s)

	w, env := s.get(t, "/products/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Categories", env.Result["title"])
	assert.Equal(t, "Discover Popular Product Categories", env.Result["object_list_title"])
	assert.NotEmpty(t, env.Result["object_list_description"])
	assert.Equal(t, "", env.Result["search_query"])
	assert.Nil(t, env.Result["search_type"])

	types := list(t, env.Result["object_list"])
	require.Len(t, types, 2)
	phones := object(t, types[0])
	assert.Equal(t, "Phones", phones["name"])
	assert.EqualValues(t, 2, phones["product__store__count"])
	assert.Equal(t, "1", phones["product__price__min"])
	assert.Equal(t, "1.01", phones["product__price__max"])
	assert.Equal(t, "1.01", phones["product__price__avg"])
	assert.Equal(t, "Laptops", object(t, types[1])["name"])
}

func TestProductListByCategory(t *testing.T) {
	s := newTestServer(t)
	f := seedCatalog(t, s)

	w, env := s.get(t, "/products/categories/phones/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Phones", env.Result["title"])
	assert.Equal(t, `Products in the category "Phones"`, env.Result["object_list_title"])
	assert.Equal(t, "1", env.Result["price__min"])
	assert.Equal(t, "1.01", env.Result["price__max"])
	assert.Equal(t, "1.01", env.Result["price__avg"])
	assert.EqualValues(t, 1, object(t, env.Result["product_type"])["views"])

	products := list(t, env.Result["object_list"])
	require.Len(t, products, 2)
	// ordered by store name, then price
	assert.Equal(t, "Pixel", object(t, products[0])["name"])
	assert.Equal(t, "Galaxy", object(t, products[1])["name"])
	assert.Equal(t, "Alpha", object(t, object(t, products[0])["store"])["name"])
	assert.Equal(t, false, object(t, products[0])["is_compared"])

	var reloaded models.ProductType
	require.NoError(t, s.db.First(&reloaded, f.phones.ID).Error)
	assert.Equal(t, int64(1), reloaded.Views)
}

func TestProductListEmptyCategoryHasNullPrices(t *testing.T) {
	s := newTestServer(t)
	seedCatalog(t, s)

	w, env := s.get(t, "/products/categories/empty/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, env.Result, "price__min")
	assert.Nil(t, env.Result["price__min"])
	assert.Nil(t, env.Result["price__avg"])
	assert.Empty(t, list(t, env.Result["object_list"]))
}

func TestProductListInvalidPageDoesNotCountVisit(t *testing.T) {
	s := newTestServer(t)
	f := seedCatalog(t, s)

	w, _ := s.get(t, "/products/categories/phones/?page=9", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	var reloaded models.ProductType
	require.NoError(t, s.db.First(&reloaded, f.phones.ID).Error)
	assert.Equal(t, int64(0), reloaded.Views)

	// the visit window was not opened, so the next good request counts
	w, env := s.get(t, "/products/categories/phones/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, object(t, env.Result["product_type"])["views"])
}

func TestProductListUnknownCategory(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.get(t, "/products/categories/unknown/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductListPagination(t *testing.T) {
	s := newTestServer(t)
	store := testutil.CreateStore(t, s.db, "Shop")
	pt := testutil.CreateProductType(t, s.db, "Cables", "")
	for i := 0; i < 15; i++ {
		testutil.CreateProduct(t, s.db, fmt.Sprintf("Cable %02d", i), fmt.Sprintf("%d.00", i+1), pt, store)
	}

	_, env := s.get(t, "/products/categories/cables/?search_query=x", "")
	page := object(t, env.Result["page_obj"])
	assert.EqualValues(t, 2, page["num_pages"])
	assert.Equal(t, "/products/categories/cables/?page=2&search_query=x", page["next"])
	assert.Nil(t, page["previous"])
	assert.Len(t, list(t, env.Result["object_list"]), 12)

	_, env = s.get(t, "/products/categories/cables/?page=last", "")
	assert.Len(t, list(t, env.Result["object_list"]), 3)
	assert.EqualValues(t, 2, object(t, env.Result["page_obj"])["number"])

	w, _ := s.get(t, "/products/categories/cables/?page=3", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.get(t, "/products/categories/cables/?page=abc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductDetail(t *testing.T) {
	s := newTestServer(t)
	f := seedCatalog(t, s)
	user := testutil.CreateUser(t, s.db, "alice")
	require.NoError(t, s.db.Omit("User", "Product").Create(&models.Comparison{UserID: user.ID, ProductID: f.phone.ID}).Error)
	older := models.ProductComment{AuthorID: user.ID, ProductID: f.phone.ID, Text: "older", CreatedAt: time.Now().Add(-time.Hour)}
	newer := models.ProductComment{AuthorID: user.ID, ProductID: f.phone.ID, Text: "newer", CreatedAt: time.Now()}
	require.NoError(t, s.db.Omit("Author").Create(&older).Error)
	require.NoError(t, s.db.Omit("Author").Create(&newer).Error)

	path := fmt.Sprintf("/products/items/%d/", f.phone.ID)
	w, env := s.get(t, path, testutil.Token(t, user))
	require.Equal(t, http.StatusOK, w.Code)
	obj := object(t, env.Result["object"])
	assert.Equal(t, "Galaxy", obj["name"])
	assert.EqualValues(t, 1, obj["views"])
	assert.Equal(t, true, obj["is_compared"])
	assert.Equal(t, "Phones", object(t, obj["product_type"])["name"])

	comments := list(t, env.Result["comments"])
	require.Len(t, comments, 2)
	assert.Equal(t, "newer", object(t, comments[0])["text"])

	// anonymous visitors get no comparison flag
	_, env = s.get(t, path, "")
	assert.Equal(t, false, object(t, env.Result["object"])["is_compared"])
}

func TestProductDetailNotFound(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.get(t, "/products/items/999/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.get(t, "/products/items/abc/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPriceHistory(t *testing.T) {
	s := newTestServer(t)
	f := seedCatalog(t, s)
	now := time.Now()
	require.NoError(t, s.db.Create(&[]models.PriceHistory{
		{ProductID: f.laptop.ID, Price: testutil.Price("950.00"), RecordedAt: now.Add(-48 * time.Hour)},
		{ProductID: f.laptop.ID, Price: testutil.Price("900.00"), RecordedAt: now.Add(-24 * time.Hour)},
	}).Error)

	w, env := s.get(t, fmt.Sprintf("/products/items/%d/history/", f.laptop.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	history := list(t, env.Result["history"])
	require.Len(t, history, 2)
	assert.Equal(t, "950", object(t, history[0])["price"])
	assert.Equal(t, "900", object(t, history[1])["price"])

	w, _ = s.get(t, "/products/items/999/history/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchRedirect(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name     string
		query    string
		status   int
		location string
	}{
		{"product", "search_type=product&search_query=gal", http.StatusFound, "/products/search/products/?search_type=product&search_query=gal"},
		{"product type", "search_query=pho&search_type=product_type&page=2", http.StatusFound, "/products/search/categories/?search_query=pho&search_type=product_type&page=2"},
		{"invalid type", "search_type=store&search_query=x", http.StatusBadRequest, ""},
		{"missing type", "search_query=x", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := s.get(t, "/products/search/?"+tt.query, "")
			assert.Equal(t, tt.status, w.Code)
			if tt.location != "" {
				assert.Equal(t, tt.location, w.Header().Get("Location"))
			}
		})
	}
}

func TestProductSearch(t *testing.T) {
	s := newTestServer(t)
	seedCatalog(t, s)

	w, env := s.get(t, "/products/search/products/?search_query=GALAXY&search_type=product", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Product Search", env.Result["title"])
	assert.Equal(t, "Search Results", env.Result["object_list_title"])
	assert.Equal(t, "GALAXY", env.Result["search_query"])
	assert.Equal(t, "product", env.Result["search_type"])
	assert.Equal(t, "1", env.Result["price__max"])
	products := list(t, env.Result["object_list"])
	require.Len(t, products, 1)
	assert.Equal(t, "Galaxy", object(t, products[0])["name"])

	_, env = s.get(t, "/products/search/products/", "")
	assert.Len(t, list(t, env.Result["object_list"]), 3)
}

func TestProductTypeSearch(t *testing.T) {
	s := newTestServer(t)
	seedCatalog(t, s)

	w, env := s.get(t, "/products/search/categories/?search_query=portable&search_type=product_type", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Category Search", env.Result["title"])
	types := list(t, env.Result["object_list"])
	require.Len(t, types, 1)
	assert.Equal(t, "Laptops", object(t, types[0])["name"])
	assert.Equal(t, "900", object(t, types[0])["product__price__avg"])

	// unlike the category list, search also finds types without products
	_, env = s.get(t, "/products/search/categories/?search_query=nothing", "")
	assert.Len(t, list(t, env.Result["object_list"]), 1)
}

func TestProductCreateComment(t *testing.T) {
	s := newTestServer(t)
	f := seedCatalog(t, s)
	user := testutil.CreateUser(t, s.db, "alice")
	path := fmt.Sprintf("/products/items/%d/comments/", f.phone.ID)

	w, _ := s.do(t, http.MethodPost, path, map[string]string{"text": "nice"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := s.do(t, http.MethodPost, path, map[string]string{"text": "nice"}, testutil.Token(t, user))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "nice", env.Result["text"])

	var count int64
	require.NoError(t, s.db.Model(&models.ProductComment{}).Where("product_id = ?", f.phone.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
