// internal/domain/cart/service.go
package cart

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"github.com/your-org/storefront-backend/internal/pkg/money"
	"gorm.io/gorm"
)

// Service handles cart business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
}

// NewService creates a new cart service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		logger: logger,
	}
}

// CheckoutLine is the single decoding shape for cart lines joined with live
// product data. The order engine consumes it inside its checkout transaction.
type CheckoutLine struct {
	CartID             uint
	ProductID          uint
	Quantity           int
	ProductName        string
	Price              decimal.Decimal
	DiscountPercentage decimal.Decimal
	StockQuantity      int
	IsActive           bool
}

// CheckoutLines loads the owner's cart lines joined with live product rows
// using the caller's transaction handle, so the stock checkout validates is
// the stock it decrements.
func (s *Service) CheckoutLines(tx *gorm.DB, owner Owner) ([]CheckoutLine, error) {
	return loadLines(tx, owner)
}

// ClearCartTx deletes all of the owner's lines inside the caller's
// transaction. Checkout uses this so the cart empties atomically with the
// order insert.
func (s *Service) ClearCartTx(tx *gorm.DB, owner Owner) error {
	if owner.IsAnonymous() {
		return nil
	}
	if err := owner.scope(tx).Delete(&CartLine{}).Error; err != nil {
		return apperrors.Store("clear cart", err)
	}
	return nil
}

// GetCart retrieves the owner's cart lines joined with current product data
// plus a computed summary. An owner with no identity gets an empty cart.
func (s *Service) GetCart(owner Owner) (*CartResponse, error) {
	if owner.IsAnonymous() {
		return emptyCart(), nil
	}

	rows, err := loadLines(s.db, owner)
	if err != nil {
		return nil, err
	}

	items := make([]CartItemResponse, len(rows))
	var subtotal, discountAmount, totalAmount decimal.Decimal
	totalItems := 0

	for i, row := range rows {
		qty := decimal.NewFromInt(int64(row.Quantity))
		unitPrice := money.DiscountedPrice(row.Price, row.DiscountPercentage)
		lineGross := row.Price.Mul(qty)
		lineNet := unitPrice.Mul(qty)

		items[i] = CartItemResponse{
			CartID:             row.CartID,
			ProductID:          row.ProductID,
			ProductName:        row.ProductName,
			Quantity:           row.Quantity,
			Price:              row.Price,
			DiscountPercentage: row.DiscountPercentage,
			UnitPrice:          money.Round2(unitPrice),
			LineTotal:          money.Round2(lineNet),
			StockQuantity:      row.StockQuantity,
			IsActive:           row.IsActive,
		}

		totalItems += row.Quantity
		subtotal = subtotal.Add(lineGross)
		discountAmount = discountAmount.Add(lineGross.Sub(lineNet))
		totalAmount = totalAmount.Add(lineNet)
	}

	return &CartResponse{
		Items: items,
		Summary: CartSummary{
			TotalItems:     totalItems,
			Subtotal:       money.Round2(subtotal),
			DiscountAmount: money.Round2(discountAmount),
			TotalAmount:    money.Round2(totalAmount),
		},
	}, nil
}

// AddToCart adds quantity of a product to the owner's cart. If a line for the
// product already exists its quantity is incremented, atomically, so
// concurrent adds never lose an update.
func (s *Service) AddToCart(owner Owner, productID uint, quantity int) (*AddToCartResult, error) {
	if owner.IsAnonymous() {
		return nil, apperrors.ErrNoActiveSession
	}
	if quantity < 1 {
		return nil, apperrors.ErrInvalidQuantity
	}

	var prod product.Product
	result := s.db.Where("id = ? AND is_active = ?", productID, true).First(&prod)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.Store("load product", result.Error)
	}
	if !prod.IsInStock() {
		return nil, &apperrors.InsufficientStockError{
			ProductID:   prod.ID,
			ProductName: prod.Name,
			Available:   0,
			Requested:   quantity,
		}
	}

	// Two passes: losing an insert race surfaces as a duplicate key, after
	// which the existing line is incremented instead.
	for attempt := 0; attempt < 2; attempt++ {
		var line CartLine
		err := owner.scope(s.db).Where("product_id = ?", productID).First(&line).Error
		switch {
		case err == nil:
			return s.incrementLine(&line, &prod, quantity)

		case errors.Is(err, gorm.ErrRecordNotFound):
			if quantity > prod.StockQuantity {
				return nil, &apperrors.InsufficientStockError{
					ProductID:   prod.ID,
					ProductName: prod.Name,
					Available:   prod.StockQuantity,
					Requested:   quantity,
				}
			}

			userID, sessionID := owner.lineKeys()
			newLine := CartLine{
				UserID:    userID,
				SessionID: sessionID,
				ProductID: productID,
				Quantity:  quantity,
			}
			createErr := s.db.Create(&newLine).Error
			if createErr == nil {
				return &AddToCartResult{CartID: newLine.ID, Quantity: quantity, Status: "added"}, nil
			}
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				continue
			}
			return nil, apperrors.Store("create cart line", createErr)

		default:
			return nil, apperrors.Store("load cart line", err)
		}
	}

	return nil, apperrors.Store("add to cart", fmt.Errorf("cart line for product %d kept vanishing", productID))
}

// incrementLine adds quantity to an existing line with a guarded single-UPDATE
// increment; zero affected rows means the resulting quantity would exceed stock.
func (s *Service) incrementLine(line *CartLine, prod *product.Product, quantity int) (*AddToCartResult, error) {
	result := s.db.Model(&CartLine{}).
		Where("id = ? AND quantity + ? <= ?", line.ID, quantity, prod.StockQuantity).
		Update("quantity", gorm.Expr("quantity + ?", quantity))
	if result.Error != nil {
		return nil, apperrors.Store("increment cart line", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, &apperrors.InsufficientStockError{
			ProductID:   prod.ID,
			ProductName: prod.Name,
			Available:   prod.StockQuantity,
			Requested:   line.Quantity + quantity,
		}
	}

	var updated CartLine
	if err := s.db.First(&updated, line.ID).Error; err != nil {
		return nil, apperrors.Store("reload cart line", err)
	}

	return &AddToCartResult{CartID: updated.ID, Quantity: updated.Quantity, Status: "updated"}, nil
}

// UpdateCartItem sets the quantity of a cart line the owner holds. The
// ownership check is load-bearing: foreign cart IDs report CartItemNotFound.
func (s *Service) UpdateCartItem(owner Owner, cartID uint, quantity int) (*UpdateCartItemResult, error) {
	if owner.IsAnonymous() {
		return nil, apperrors.ErrNoActiveSession
	}
	if quantity < 1 {
		return nil, apperrors.ErrInvalidQuantity
	}

	var line CartLine
	err := owner.scope(s.db).Where("cart_lines.id = ?", cartID).First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCartItemNotFound
		}
		return nil, apperrors.Store("load cart line", err)
	}

	var prod product.Product
	if err := s.db.First(&prod, line.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.Store("load product", err)
	}

	if quantity > prod.StockQuantity {
		return nil, &apperrors.InsufficientStockError{
			ProductID:   prod.ID,
			ProductName: prod.Name,
			Available:   prod.StockQuantity,
			Requested:   quantity,
		}
	}

	result := owner.scope(s.db.Model(&CartLine{})).Where("cart_lines.id = ?", cartID).Update("quantity", quantity)
	if result.Error != nil {
		return nil, apperrors.Store("update cart line", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrCartItemNotFound
	}

	subtotal := money.Round2(prod.DiscountedPrice().Mul(decimal.NewFromInt(int64(quantity))))
	return &UpdateCartItemResult{CartID: cartID, Quantity: quantity, Subtotal: subtotal}, nil
}

// RemoveCartItem deletes a cart line the owner holds
func (s *Service) RemoveCartItem(owner Owner, cartID uint) error {
	if owner.IsAnonymous() {
		return apperrors.ErrNoActiveSession
	}

	result := owner.scope(s.db).Where("cart_lines.id = ?", cartID).Delete(&CartLine{})
	if result.Error != nil {
		return apperrors.Store("remove cart line", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrCartItemNotFound
	}
	return nil
}

// ClearCart deletes all lines for the owner. A no-op for anonymous owners.
func (s *Service) ClearCart(owner Owner) error {
	return s.ClearCartTx(s.db, owner)
}

// GetCartCount returns the sum of quantities in the owner's cart, for badge
// display without pulling full cart detail
func (s *Service) GetCartCount(owner Owner) (int, error) {
	if owner.IsAnonymous() {
		return 0, nil
	}

	var count int
	err := owner.scope(s.db.Model(&CartLine{})).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&count).Error
	if err != nil {
		return 0, apperrors.Store("count cart", err)
	}
	return count, nil
}

// ValidateCart re-checks every line against current product availability and
// stock. The Order Engine runs the equivalent check inside its transaction;
// this is the advisory pre-checkout gate.
func (s *Service) ValidateCart(owner Owner) (*ValidationResult, error) {
	if owner.IsAnonymous() {
		return &ValidationResult{Valid: true, Issues: []CartIssue{}}, nil
	}

	var lines []CartLine
	if err := owner.scope(s.db).Order("cart_lines.id").Find(&lines).Error; err != nil {
		return nil, apperrors.Store("load cart lines", err)
	}

	rows, err := loadLines(s.db, owner)
	if err != nil {
		return nil, err
	}
	byCartID := make(map[uint]CheckoutLine, len(rows))
	for _, row := range rows {
		byCartID[row.CartID] = row
	}

	issues := []CartIssue{}
	for _, line := range lines {
		row, ok := byCartID[line.ID]
		if !ok || !row.IsActive {
			issues = append(issues, CartIssue{
				CartID:    line.ID,
				ProductID: line.ProductID,
				Issue:     "no longer available",
			})
			continue
		}
		if line.Quantity > row.StockQuantity {
			issues = append(issues, CartIssue{
				CartID:    line.ID,
				ProductID: line.ProductID,
				Issue:     fmt.Sprintf("only %d in stock, you have %d", row.StockQuantity, line.Quantity),
			})
		}
	}

	return &ValidationResult{Valid: len(issues) == 0, Issues: issues}, nil
}

// MergeGuestCart folds a guest session's cart into a user's cart at login.
// Same-product lines are summed into the user line; the rest are re-pointed
// to the user. Per-line failures are logged and skipped so a merge glitch
// never blocks the login.
func (s *Service) MergeGuestCart(sessionID string, userID uint) {
	if sessionID == "" {
		return
	}

	var guestLines []CartLine
	if err := s.db.Where("session_id = ?", sessionID).Find(&guestLines).Error; err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).
			Warn("Failed to load guest cart for merge")
		return
	}

	for _, guestLine := range guestLines {
		if err := s.mergeLine(guestLine, userID); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"session_id": sessionID,
				"user_id":    userID,
				"product_id": guestLine.ProductID,
			}).Warn("Failed to merge guest cart line")
		}
	}
}

func (s *Service) mergeLine(guestLine CartLine, userID uint) error {
	var userLine CartLine
	err := s.db.Where("user_id = ? AND product_id = ?", userID, guestLine.ProductID).First(&userLine).Error

	switch {
	case err == nil:
		return s.foldIntoUserLine(guestLine, userLine.ID)

	case errors.Is(err, gorm.ErrRecordNotFound):
		updateErr := s.db.Model(&CartLine{}).
			Where("id = ?", guestLine.ID).
			Updates(map[string]interface{}{"user_id": userID, "session_id": nil}).Error
		if updateErr == nil {
			return nil
		}
		if errors.Is(updateErr, gorm.ErrDuplicatedKey) {
			// The user gained a line for this product between the lookup and
			// the re-point; fold into it instead.
			var existing CartLine
			if findErr := s.db.Where("user_id = ? AND product_id = ?", userID, guestLine.ProductID).
				First(&existing).Error; findErr != nil {
				return findErr
			}
			return s.foldIntoUserLine(guestLine, existing.ID)
		}
		return updateErr

	default:
		return err
	}
}

func (s *Service) foldIntoUserLine(guestLine CartLine, userLineID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&CartLine{}).
			Where("id = ?", userLineID).
			Update("quantity", gorm.Expr("quantity + ?", guestLine.Quantity)).Error; err != nil {
			return err
		}
		return tx.Delete(&CartLine{}, guestLine.ID).Error
	})
}

func loadLines(db *gorm.DB, owner Owner) ([]CheckoutLine, error) {
	var rows []CheckoutLine
	err := owner.scope(db.Table("cart_lines")).
		Select("cart_lines.id AS cart_id, cart_lines.product_id, cart_lines.quantity, " +
			"products.name AS product_name, products.price, products.discount_percentage, " +
			"products.stock_quantity, products.is_active").
		Joins("JOIN products ON products.id = cart_lines.product_id AND products.deleted_at IS NULL").
		Order("cart_lines.id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Store("load cart", err)
	}
	return rows, nil
}

func emptyCart() *CartResponse {
	return &CartResponse{
		Items: []CartItemResponse{},
		Summary: CartSummary{
			TotalItems:     0,
			Subtotal:       decimal.Zero,
			DiscountAmount: decimal.Zero,
			TotalAmount:    decimal.Zero,
		},
	}
}
