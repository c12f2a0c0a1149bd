// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine represents one product+quantity entry in a cart. Exactly one of
// UserID/SessionID is set. Lines are deleted outright (no soft delete) so the
// per-owner uniqueness indexes stay meaningful.
type CartLine struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"uniqueIndex:uniq_cart_user_product" json:"user_id,omitempty"`
	SessionID *string   `gorm:"size:64;uniqueIndex:uniq_cart_session_product" json:"session_id,omitempty"`
	ProductID uint      `gorm:"not null;uniqueIndex:uniq_cart_user_product;uniqueIndex:uniq_cart_session_product" json:"product_id"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (CartLine) TableName() string {
	return "cart_lines"
}

// CartItemResponse represents a cart line joined with live product data
type CartItemResponse struct {
	CartID             uint            `json:"cart_id"`
	ProductID          uint            `json:"product_id"`
	ProductName        string          `json:"product_name"`
	Quantity           int             `json:"quantity"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	LineTotal          decimal.Decimal `json:"line_total"`
	StockQuantity      int             `json:"stock_quantity"`
	IsActive           bool            `json:"is_active"`
}

// CartSummary represents computed cart totals, rounded to 2 decimal places
// at the summary level only
type CartSummary struct {
	TotalItems     int             `json:"total_items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

// CartResponse represents a shopping cart with items and summary
type CartResponse struct {
	Items   []CartItemResponse `json:"items"`
	Summary CartSummary        `json:"summary"`
}

// AddToCartResult reports the outcome of an add operation
type AddToCartResult struct {
	CartID   uint   `json:"cart_id"`
	Quantity int    `json:"quantity"`
	Status   string `json:"status"` // "added" or "updated"
}

// UpdateCartItemResult reports the outcome of a quantity update
type UpdateCartItemResult struct {
	CartID   uint            `json:"cart_id"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartIssue describes one problem found during pre-checkout validation
type CartIssue struct {
	CartID    uint   `json:"cart_id"`
	ProductID uint   `json:"product_id"`
	Issue     string `json:"issue"`
}

// ValidationResult is the outcome of ValidateCart
type ValidationResult struct {
	Valid  bool        `json:"valid"`
	Issues []CartIssue `json:"issues"`
}
