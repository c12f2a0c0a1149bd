// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/pkg/money"
	"gorm.io/gorm"
)

// Product represents the product entity
type Product struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	SKU                string          `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name               string          `gorm:"not null;size:255" json:"name"`
	Slug               string          `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description        string          `gorm:"type:text" json:"description"`
	Price              decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_percentage"`
	StockQuantity      int             `gorm:"not null;default:0" json:"stock_quantity"`
	IsActive           bool            `gorm:"not null" json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Product) TableName() string {
	return "products"
}

// DiscountedPrice returns the effective unit price after applying the
// discount percentage, at full precision.
func (p *Product) DiscountedPrice() decimal.Decimal {
	return money.DiscountedPrice(p.Price, p.DiscountPercentage)
}

// IsInStock reports whether any units remain
func (p *Product) IsInStock() bool {
	return p.StockQuantity > 0
}
