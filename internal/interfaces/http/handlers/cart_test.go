package handlers

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newBrokenCartDB migrates the catalog but not the cart table, so every
// cart write fails inside the store layer.
func newBrokenCartDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&product.Product{}))
	require.NoError(t, db.Create(&product.Product{
		SKU: "SKU-1", Name: "Widget", Slug: "widget",
		Price: decimal.NewFromFloat(10), StockQuantity: 5, IsActive: true,
	}).Error)

	return db
}

func TestAddToCartStoreFailureHidesInternals(t *testing.T) {
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)
	h := NewCartHandler(newBrokenCartDB(t), &config.Config{}, log)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/cart/items",
		bytes.NewBufferString(`{"product_id":1,"quantity":1}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", uint(1))

	h.AddToCart(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
	// Driver and SQL detail must never reach the response body.
	assert.NotContains(t, w.Body.String(), "cart_lines")
	assert.NotContains(t, w.Body.String(), "no such table")
}

func TestUpdateCartItemStoreFailureHidesInternals(t *testing.T) {
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)
	h := NewCartHandler(newBrokenCartDB(t), &config.Config{}, log)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/cart/items/1",
		bytes.NewBufferString(`{"quantity":2}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Set("user_id", uint(1))

	h.UpdateCartItem(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
	assert.NotContains(t, w.Body.String(), "no such table")
}

func TestAddToCartBusinessErrorKeepsMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)
	h := NewCartHandler(newBrokenCartDB(t), &config.Config{}, log)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/cart/items",
		bytes.NewBufferString(`{"product_id":999,"quantity":1}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", uint(1))

	h.AddToCart(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "product not found or inactive")
}
