package product

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&Product{}))

	return NewService(db, &config.Config{}), db
}

func createTestProduct(t *testing.T, svc *Service, name string, price string, active bool) *Product {
	t.Helper()

	isActive := active
	prod, err := svc.CreateProduct(&ProductCreateRequest{
		SKU:           fmt.Sprintf("SKU-%s", name),
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: 10,
		IsActive:      &isActive,
	})
	require.NoError(t, err)
	return prod
}

func TestCreateProductGeneratesSlug(t *testing.T) {
	svc, _ := newTestService(t)

	prod := createTestProduct(t, svc, "Classic T-Shirt", "19.99", true)
	assert.Equal(t, "classic-t-shirt", prod.Slug)
	assert.True(t, prod.IsActive)

	got, err := svc.GetProductBySlug("classic-t-shirt")
	require.NoError(t, err)
	assert.Equal(t, prod.ID, got.ID)
}

func TestCreateProductRejectsBadPricing(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateProduct(&ProductCreateRequest{
		SKU:   "SKU-1",
		Name:  "Bad",
		Price: decimal.NewFromInt(-1),
	})
	assert.Error(t, err)

	_, err = svc.CreateProduct(&ProductCreateRequest{
		SKU:                "SKU-2",
		Name:               "Bad discount",
		Price:              decimal.NewFromInt(10),
		DiscountPercentage: decimal.NewFromInt(101),
	})
	assert.Error(t, err)
}

func TestGetProductsFiltersInactive(t *testing.T) {
	svc, _ := newTestService(t)
	createTestProduct(t, svc, "Visible", "10.00", true)
	hidden := createTestProduct(t, svc, "Hidden", "10.00", false)

	resp, err := svc.GetProducts(&ProductListRequest{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Visible", resp.Products[0].Name)

	_, err = svc.GetProduct(hidden.ID)
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)

	_, err = svc.GetProductBySlug("hidden")
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
}

func TestCreateProductPersistsInactiveFlag(t *testing.T) {
	svc, db := newTestService(t)
	prod := createTestProduct(t, svc, "Dormant", "10.00", false)

	var row Product
	require.NoError(t, db.First(&row, prod.ID).Error)
	assert.False(t, row.IsActive)
}

func TestGetProductsSearchAndPriceFilters(t *testing.T) {
	svc, _ := newTestService(t)
	createTestProduct(t, svc, "Coffee Mug", "12.50", true)
	createTestProduct(t, svc, "Wall Poster", "8.00", true)
	createTestProduct(t, svc, "Espresso Cup", "30.00", true)

	resp, err := svc.GetProducts(&ProductListRequest{Page: 1, Limit: 20, Search: "coffee"})
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Coffee Mug", resp.Products[0].Name)

	resp, err = svc.GetProducts(&ProductListRequest{Page: 1, Limit: 20, MinPrice: "10", MaxPrice: "20"})
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Coffee Mug", resp.Products[0].Name)
}

func TestGetProductsPagination(t *testing.T) {
	svc, _ := newTestService(t)
	for i := 0; i < 5; i++ {
		createTestProduct(t, svc, fmt.Sprintf("Item %d", i), "10.00", true)
	}

	resp, err := svc.GetProducts(&ProductListRequest{Page: 2, Limit: 2, SortBy: "name", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Len(t, resp.Products, 2)
	assert.EqualValues(t, 5, resp.Pagination.Total)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.True(t, resp.Pagination.HasNext)
	assert.True(t, resp.Pagination.HasPrev)
}

func TestUpdateProduct(t *testing.T) {
	svc, _ := newTestService(t)
	prod := createTestProduct(t, svc, "Widget", "10.00", true)

	newName := "Gadget"
	newPrice := decimal.NewFromFloat(15.50)
	updated, err := svc.UpdateProduct(prod.ID, &ProductUpdateRequest{
		Name:  &newName,
		Price: &newPrice,
	})
	require.NoError(t, err)

	got, err := svc.GetProduct(updated.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gadget", got.Name)
	assert.Equal(t, "gadget", got.Slug)
	assert.True(t, got.Price.Equal(newPrice))
}

func TestDeleteProductSoftDeletes(t *testing.T) {
	svc, db := newTestService(t)
	prod := createTestProduct(t, svc, "Widget", "10.00", true)

	require.NoError(t, svc.DeleteProduct(prod.ID))
	assert.ErrorIs(t, svc.DeleteProduct(prod.ID), apperrors.ErrProductNotFound)

	_, err := svc.GetProduct(prod.ID)
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)

	// Row survives for order history joins
	var count int64
	require.NoError(t, db.Unscoped().Model(&Product{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSetStock(t *testing.T) {
	svc, _ := newTestService(t)
	prod := createTestProduct(t, svc, "Widget", "10.00", true)

	updated, err := svc.SetStock(prod.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, 42, updated.StockQuantity)

	_, err = svc.SetStock(prod.ID, -1)
	assert.Error(t, err)

	_, err = svc.SetStock(9999, 1)
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Classic T-Shirt", "classic-t-shirt"},
		{"  Wall   Poster  ", "wall-poster"},
		{"Café crème 50%", "caf-crme-50"},
		{"snake_case_name", "snake-case-name"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}

func TestDiscountedPriceOnEntity(t *testing.T) {
	p := Product{
		Price:              decimal.NewFromFloat(100),
		DiscountPercentage: decimal.NewFromInt(25),
	}
	assert.True(t, p.DiscountedPrice().Equal(decimal.NewFromInt(75)))

	p.StockQuantity = 0
	assert.False(t, p.IsInStock())
}
