// internal/domain/order/service.go
package order

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"github.com/your-org/storefront-backend/internal/pkg/money"
	"gorm.io/gorm"
)

// Service handles order business logic
type Service struct {
	db          *gorm.DB
	config      *config.Config
	cartService *cart.Service
	logger      *logrus.Logger
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, cartService *cart.Service, logger *logrus.Logger) *Service {
	return &Service{
		db:          db,
		config:      cfg,
		cartService: cartService,
		logger:      logger,
	}
}

// CreateOrderRequest represents checkout data
type CreateOrderRequest struct {
	ShippingAddress string `json:"shipping_address"`
	CustomerEmail   string `json:"customer_email"`
	FullName        string `json:"full_name"`
	Phone           string `json:"phone"`
	Notes           string `json:"notes"`
}

// OrderConfirmation is returned on successful checkout
type OrderConfirmation struct {
	OrderID     uint            `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// OrderListResponse represents paginated order history
type OrderListResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// CreateOrder atomically converts the owner's cart into a persisted order.
// Stock is re-validated, snapshot lines are written, stock is decremented via
// a conditional update, and the cart is cleared, all in one transaction. Any
// failure after validation rolls the whole set of writes back.
func (s *Service) CreateOrder(owner cart.Owner, req *CreateOrderRequest) (*OrderConfirmation, error) {
	if err := validateShippingInfo(req); err != nil {
		return nil, err
	}
	if owner.IsAnonymous() {
		return nil, apperrors.ErrEmptyCart
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, apperrors.Store("begin checkout", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	lines, err := s.cartService.CheckoutLines(tx, owner)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if len(lines) == 0 {
		tx.Rollback()
		return nil, apperrors.ErrEmptyCart
	}

	if err := validateLines(lines); err != nil {
		tx.Rollback()
		return nil, err
	}

	// Price every line at the live discounted price, full precision; round
	// once per stored value.
	type pricedLine struct {
		cart.CheckoutLine
		unitPrice decimal.Decimal
		subtotal  decimal.Decimal
	}

	priced := make([]pricedLine, len(lines))
	total := decimal.Zero
	for i, line := range lines {
		unit := money.DiscountedPrice(line.Price, line.DiscountPercentage)
		sub := unit.Mul(decimal.NewFromInt(int64(line.Quantity)))
		priced[i] = pricedLine{CheckoutLine: line, unitPrice: unit, subtotal: sub}
		total = total.Add(sub)
	}

	userID, _ := owner.UserID()
	var userIDPtr *uint
	if owner.IsUser() {
		userIDPtr = &userID
	}

	// Provisional unique number; the final ID-based one is assigned right
	// after the insert. Two concurrent checkouts must never collide on the
	// order_number unique index.
	newOrder := Order{
		OrderNumber:     fmt.Sprintf("tmp-%s", uuid.NewString()),
		UserID:          userIDPtr,
		CustomerEmail:   req.CustomerEmail,
		FullName:        req.FullName,
		Phone:           req.Phone,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
		Status:          OrderStatusPending,
		TotalAmount:     money.Round2(total),
	}

	if err := tx.Create(&newOrder).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Store("create order", err)
	}

	newOrder.OrderNumber = newOrder.GenerateOrderNumber()
	if err := tx.Model(&newOrder).Update("order_number", newOrder.OrderNumber).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Store("assign order number", err)
	}

	for _, line := range priced {
		// The stored subtotal derives from the rounded snapshot unit price,
		// so unit_price * quantity always matches subtotal on the row.
		unitPrice := money.Round2(line.unitPrice)
		orderLine := OrderLine{
			OrderID:     newOrder.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   unitPrice,
			Subtotal:    unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
		}
		if err := tx.Create(&orderLine).Error; err != nil {
			tx.Rollback()
			return nil, apperrors.Store("create order line", err)
		}
	}

	// Conditional decrement closes the race between the stock check above and
	// this write: zero affected rows means a concurrent checkout won.
	for _, line := range priced {
		result := tx.Model(&product.Product{}).
			Where("id = ? AND stock_quantity >= ?", line.ProductID, line.Quantity).
			Update("stock_quantity", gorm.Expr("stock_quantity - ?", line.Quantity))
		if result.Error != nil {
			tx.Rollback()
			return nil, apperrors.Store("decrement stock", result.Error)
		}
		if result.RowsAffected == 0 {
			available := currentStock(tx, line.ProductID)
			tx.Rollback()
			return nil, &apperrors.InsufficientStockError{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Available:   available,
				Requested:   line.Quantity,
			}
		}
	}

	if err := s.cartService.ClearCartTx(tx, owner); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Store("commit checkout", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     newOrder.ID,
		"order_number": newOrder.OrderNumber,
		"total_amount": newOrder.TotalAmount.String(),
	}).Info("Order created")

	return &OrderConfirmation{
		OrderID:     newOrder.ID,
		OrderNumber: newOrder.OrderNumber,
		TotalAmount: newOrder.TotalAmount,
	}, nil
}

// GetOrder retrieves one of the user's orders with its lines
func (s *Service) GetOrder(userID, orderID uint) (*Order, error) {
	var ord Order
	result := s.db.Preload("Lines").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&ord)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, apperrors.Store("get order", result.Error)
	}
	return &ord, nil
}

// GetUserOrders retrieves the user's order history, newest first
func (s *Service) GetUserOrders(userID uint, page, limit int) (*OrderListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var orders []Order
	var total int64

	query := s.db.Model(&Order{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Store("count orders", err)
	}

	offset := (page - 1) * limit
	if err := query.Preload("Lines").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, apperrors.Store("list orders", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &OrderListResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}, nil
}

// Private helpers

func validateShippingInfo(req *CreateOrderRequest) error {
	switch {
	case strings.TrimSpace(req.ShippingAddress) == "":
		return &apperrors.MissingShippingInfoError{Field: "shipping_address"}
	case strings.TrimSpace(req.CustomerEmail) == "":
		return &apperrors.MissingShippingInfoError{Field: "customer_email"}
	case strings.TrimSpace(req.FullName) == "":
		return &apperrors.MissingShippingInfoError{Field: "full_name"}
	}
	return nil
}

func validateLines(lines []cart.CheckoutLine) error {
	for _, line := range lines {
		if !line.IsActive {
			return &apperrors.ProductInactiveError{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
			}
		}
		if line.Quantity > line.StockQuantity {
			return &apperrors.InsufficientStockError{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Available:   line.StockQuantity,
				Requested:   line.Quantity,
			}
		}
	}
	return nil
}

func currentStock(tx *gorm.DB, productID uint) int {
	var prod product.Product
	if err := tx.First(&prod, productID).Error; err != nil {
		return 0
	}
	return prod.StockQuantity
}
