package order

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestServices(t *testing.T) (*Service, *cart.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(&product.Product{}, &cart.CartLine{}, &Order{}, &OrderLine{}))

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.Config{}
	cartSvc := cart.NewService(db, cfg, log)
	return NewService(db, cfg, cartSvc, log), cartSvc, db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, discount float64, stock int, active bool) *product.Product {
	t.Helper()

	p := &product.Product{
		SKU:                fmt.Sprintf("SKU-%s", name),
		Name:               name,
		Slug:               product.Slugify(name),
		Price:              decimal.NewFromFloat(price),
		DiscountPercentage: decimal.NewFromFloat(discount),
		StockQuantity:      stock,
		IsActive:           active,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func shippingRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		ShippingAddress: "1 Main St, Springfield",
		CustomerEmail:   "jane@example.com",
		FullName:        "Jane Doe",
		Phone:           "555-0100",
	}
}

func stockOf(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var p product.Product
	require.NoError(t, db.First(&p, productID).Error)
	return p.StockQuantity
}

func TestCreateOrderSnapshotsCartAndDecrementsStock(t *testing.T) {
	svc, cartSvc, db := newTestServices(t)
	a := seedProduct(t, db, "Alpha", 10.00, 0, 5, true)
	b := seedProduct(t, db, "Beta", 20.00, 0, 5, true)
	owner := cart.UserOwner(1)

	_, err := cartSvc.AddToCart(owner, a.ID, 2)
	require.NoError(t, err)
	_, err = cartSvc.AddToCart(owner, b.ID, 1)
	require.NoError(t, err)

	confirmation, err := svc.CreateOrder(owner, shippingRequest())
	require.NoError(t, err)
	assert.True(t, confirmation.TotalAmount.Equal(decimal.NewFromFloat(40.00)),
		"total: %s", confirmation.TotalAmount)
	assert.True(t, strings.HasPrefix(confirmation.OrderNumber, "ORD-"), confirmation.OrderNumber)

	ord, err := svc.GetOrder(1, confirmation.OrderID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPending, ord.Status)
	assert.Equal(t, "jane@example.com", ord.CustomerEmail)
	require.Len(t, ord.Lines, 2)

	byProduct := map[uint]OrderLine{}
	for _, line := range ord.Lines {
		byProduct[line.ProductID] = line
	}
	assert.Equal(t, "Alpha", byProduct[a.ID].ProductName)
	assert.Equal(t, 2, byProduct[a.ID].Quantity)
	assert.True(t, byProduct[a.ID].UnitPrice.Equal(decimal.NewFromFloat(10.00)))
	assert.True(t, byProduct[a.ID].Subtotal.Equal(decimal.NewFromFloat(20.00)))
	assert.Equal(t, 1, byProduct[b.ID].Quantity)

	// Stock decremented and the cart emptied
	assert.Equal(t, 3, stockOf(t, db, a.ID))
	assert.Equal(t, 4, stockOf(t, db, b.ID))

	resp, err := cartSvc.GetCart(owner)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestCreateOrderSnapshotSurvivesCatalogEdits(t *testing.T) {
	svc, cartSvc, db := newTestServices(t)
	prod := seedProduct(t, db, "Alpha", 10.00, 0, 5, true)
	owner := cart.UserOwner(1)

	_, err := cartSvc.AddToCart(owner, prod.ID, 1)
	require.NoError(t, err)

	confirmation, err := svc.CreateOrder(owner, shippingRequest())
	require.NoError(t, err)

	// Later catalog edits must not leak into the placed order
	require.NoError(t, db.Model(&product.Product{}).Where("id = ?", prod.ID).
		Updates(map[string]interface{}{"name": "Renamed", "price": "99.99"}).Error)

	ord, err := svc.GetOrder(1, confirmation.OrderID)
	require.NoError(t, err)
	require.Len(t, ord.Lines, 1)
	assert.Equal(t, "Alpha", ord.Lines[0].ProductName)
	assert.True(t, ord.Lines[0].UnitPrice.Equal(decimal.NewFromFloat(10.00)))
}

func TestCreateOrderEmptyCart(t *testing.T) {
	svc, _, _ := newTestServices(t)

	_, err := svc.CreateOrder(cart.UserOwner(1), shippingRequest())
	assert.ErrorIs(t, err, apperrors.ErrEmptyCart)

	_, err = svc.CreateOrder(cart.AnonymousOwner(), shippingRequest())
	assert.ErrorIs(t, err, apperrors.ErrEmptyCart)
}

func TestCreateOrderMissingShippingInfo(t *testing.T) {
	svc, cartSvc, db := newTestServices(t)
	prod := seedProduct(t, db, "Alpha", 10.00, 0, 5, true)
	owner := cart.UserOwner(1)

	_, err := cartSvc.AddToCart(owner, prod.ID, 1)
	require.NoError(t, err)

	cases := []struct {
		field  string
		mutate func(*CreateOrderRequest)
	}{
		{"shipping_address", func(r *CreateOrderRequest) { r.ShippingAddress = "  " }},
		{"customer_email", func(r *CreateOrderRequest) { r.CustomerEmail = "" }},
		{"full_name", func(r *CreateOrderRequest) { r.FullName = "" }},
	}

	for _, tc := range cases {
		req := shippingRequest()
		tc.mutate(req)

		_, err := svc.CreateOrder(owner, req)
		var missing *apperrors.MissingShippingInfoError
		require.ErrorAs(t, err, &missing, tc.field)
		assert.Equal(t, tc.field, missing.Field)
	}

	// The cart survives every rejected attempt
	count, err := cartSvc.GetCartCount(owner)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreateOrderInsufficientStockRollsBackEverything(t *testing.T) {
	svc, cartSvc, db := newTestServices(t)
	a := seedProduct(t, db, "Alpha", 10.00, 0, 5, true)
	b := seedProduct(t, db, "Beta", 20.00, 0, 5, true)
	owner := cart.UserOwner(1)

	_, err := cartSvc.AddToCart(owner, a.ID, 2)
	require.NoError(t, err)
	_, err = cartSvc.AddToCart(owner, b.ID, 3)
	require.NoError(t, err)

	// Stock for Beta drops after the lines were added
	require.NoError(t, db.Model(&product.Product{}).Where("id = ?", b.ID).Update("stock_quantity", 1).Error)

	_, err = svc.CreateOrder(owner, shippingRequest())
	var stockErr *apperrors.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, b.ID, stockErr.ProductID)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)

	// Nothing was persisted and no stock moved
	var orders, orderLines int64
	require.NoError(t, db.Model(&Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&OrderLine{}).Count(&orderLines).Error)
	assert.EqualValues(t, 0, orders)
	assert.EqualValues(t, 0, orderLines)
	assert.Equal(t, 5, stockOf(t, db, a.ID))
	assert.Equal(t, 1, stockOf(t, db, b.ID))

	count, err := cartSvc.GetCartCount(owner)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestCreateOrderRejectsInactiveProduct(t *testing.T) {
	svc, cartSvc, db := newTestServices(t)
	prod := seedProduct(t, db, "Alpha", 10.00, 0, 5, true)
	owner := cart.UserOwner(1)

	_, err := cartSvc.AddToCart(owner, prod.ID, 1)
	require.NoError(t, err)

	require.NoError(t, db.Model(&product.Product{}).Where("id = ?", prod.ID).Update("is_active", false).Error)

	_, err = svc.CreateOrder(owner, shippingRequest())
	var inactiveErr *apperrors.ProductInactiveError
	require.ErrorAs(t, err, &inactiveErr)
	assert.Equal(t, prod.ID, inactiveErr.ProductID)
}

func TestCreateOrderForGuestSession(t *testing.T) {
	svc, cartSvc, db := newTestServices(t)
	prod := seedProduct(t, db, "Alpha", 10.00, 0, 5, true)
	guest := cart.GuestOwner("guest-session")

	_, err := cartSvc.AddToCart(guest, prod.ID, 2)
	require.NoError(t, err)

	confirmation, err := svc.CreateOrder(guest, shippingRequest())
	require.NoError(t, err)

	var ord Order
	require.NoError(t, db.Preload("Lines").First(&ord, confirmation.OrderID).Error)
	assert.Nil(t, ord.UserID)
	require.Len(t, ord.Lines, 1)
	assert.Equal(t, 3, stockOf(t, db, prod.ID))

	resp, err := cartSvc.GetCart(guest)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestCreateOrderAppliesDiscountedPricing(t *testing.T) {
	svc, cartSvc, db := newTestServices(t)
	// 33.33 at 15% off, 3 units: 84.9915 -> 84.99
	prod := seedProduct(t, db, "Alpha", 33.33, 15, 10, true)
	owner := cart.UserOwner(1)

	_, err := cartSvc.AddToCart(owner, prod.ID, 3)
	require.NoError(t, err)

	confirmation, err := svc.CreateOrder(owner, shippingRequest())
	require.NoError(t, err)
	assert.True(t, confirmation.TotalAmount.Equal(decimal.NewFromFloat(84.99)),
		"total: %s", confirmation.TotalAmount)

	ord, err := svc.GetOrder(1, confirmation.OrderID)
	require.NoError(t, err)
	require.Len(t, ord.Lines, 1)
	assert.True(t, ord.Lines[0].UnitPrice.Equal(decimal.NewFromFloat(28.33)),
		"unit: %s", ord.Lines[0].UnitPrice)
}

func TestOrderLineSubtotalMatchesStoredUnitPrice(t *testing.T) {
	svc, cartSvc, db := newTestServices(t)
	// 20.01 at 50% off is 10.005 per unit, a half-cent case: the stored
	// subtotal must follow the rounded unit price, not round independently.
	prod := seedProduct(t, db, "Alpha", 20.01, 50, 10, true)
	owner := cart.UserOwner(1)

	_, err := cartSvc.AddToCart(owner, prod.ID, 3)
	require.NoError(t, err)

	confirmation, err := svc.CreateOrder(owner, shippingRequest())
	require.NoError(t, err)

	ord, err := svc.GetOrder(1, confirmation.OrderID)
	require.NoError(t, err)
	require.Len(t, ord.Lines, 1)

	line := ord.Lines[0]
	assert.True(t, line.UnitPrice.Equal(decimal.NewFromFloat(10.01)),
		"unit: %s", line.UnitPrice)
	assert.True(t, line.Subtotal.Equal(decimal.NewFromFloat(30.03)),
		"subtotal: %s", line.Subtotal)
	assert.True(t, line.Subtotal.Equal(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))),
		"unit price times quantity must equal the stored subtotal")

	// The order total still rounds once from the full-precision sum.
	assert.True(t, confirmation.TotalAmount.Equal(decimal.NewFromFloat(30.02)),
		"total: %s", confirmation.TotalAmount)
}

func TestConcurrentCheckoutsNeverOversell(t *testing.T) {
	svc, cartSvc, db := newTestServices(t)
	prod := seedProduct(t, db, "Alpha", 10.00, 0, 1, true)

	owners := []cart.Owner{cart.UserOwner(1), cart.UserOwner(2)}
	for _, o := range owners {
		_, err := cartSvc.AddToCart(o, prod.ID, 1)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(owners))
	for i, o := range owners {
		wg.Add(1)
		go func(i int, o cart.Owner) {
			defer wg.Done()
			_, errs[i] = svc.CreateOrder(o, shippingRequest())
		}(i, o)
	}
	wg.Wait()

	var wins, stockFailures int
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		var stockErr *apperrors.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		stockFailures++
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, stockFailures)
	assert.Equal(t, 0, stockOf(t, db, prod.ID))

	var orders int64
	require.NoError(t, db.Model(&Order{}).Count(&orders).Error)
	assert.EqualValues(t, 1, orders)
}

func TestGetOrderScopedToUser(t *testing.T) {
	svc, cartSvc, db := newTestServices(t)
	prod := seedProduct(t, db, "Alpha", 10.00, 0, 5, true)
	owner := cart.UserOwner(1)

	_, err := cartSvc.AddToCart(owner, prod.ID, 1)
	require.NoError(t, err)

	confirmation, err := svc.CreateOrder(owner, shippingRequest())
	require.NoError(t, err)

	_, err = svc.GetOrder(2, confirmation.OrderID)
	assert.ErrorIs(t, err, apperrors.ErrOrderNotFound)

	_, err = svc.GetOrder(1, 9999)
	assert.ErrorIs(t, err, apperrors.ErrOrderNotFound)
}

func TestGetUserOrdersPagination(t *testing.T) {
	svc, cartSvc, db := newTestServices(t)
	prod := seedProduct(t, db, "Alpha", 10.00, 0, 100, true)
	owner := cart.UserOwner(1)

	for i := 0; i < 3; i++ {
		_, err := cartSvc.AddToCart(owner, prod.ID, 1)
		require.NoError(t, err)
		_, err = svc.CreateOrder(owner, shippingRequest())
		require.NoError(t, err)
	}

	resp, err := svc.GetUserOrders(1, 1, 2)
	require.NoError(t, err)
	assert.Len(t, resp.Orders, 2)
	assert.EqualValues(t, 3, resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	assert.True(t, resp.Pagination.HasNext)
	assert.False(t, resp.Pagination.HasPrev)

	resp, err = svc.GetUserOrders(1, 2, 2)
	require.NoError(t, err)
	assert.Len(t, resp.Orders, 1)
	assert.True(t, resp.Pagination.HasPrev)

	// Another user sees nothing
	resp, err = svc.GetUserOrders(2, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, resp.Orders)
}
