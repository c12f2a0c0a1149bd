// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order represents a placed order. Immutable once created, apart from status
// transitions owned by order management outside this service.
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderNumber     string          `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID          *uint           `gorm:"index" json:"user_id"` // Nullable for guest orders
	CustomerEmail   string          `gorm:"not null;size:255" json:"customer_email"`
	FullName        string          `gorm:"not null;size:255" json:"full_name"`
	Phone           string          `gorm:"size:20" json:"phone"`
	ShippingAddress string          `gorm:"not null;type:text" json:"shipping_address"`
	Notes           string          `gorm:"type:text" json:"notes"`
	Status          OrderStatus     `gorm:"not null;default:'pending'" json:"status"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`

	Lines []OrderLine `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"lines"`
}

// OrderLine represents one product snapshot within an order. ProductName and
// UnitPrice are copied at purchase time so later catalog edits never alter
// historical order data.
type OrderLine struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"order_id"`
	ProductID   uint            `gorm:"not null;index" json:"product_id"`
	ProductName string          `gorm:"not null;size:255" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderLine) TableName() string { return "order_lines" }

// GenerateOrderNumber generates a unique order number
// Format: ORD-YYYYMMDD-XXXXX
func (o *Order) GenerateOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%05d", time.Now().UTC().Format("20060102"), o.ID)
}
