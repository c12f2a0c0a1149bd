// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration handler
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{db: db}
}

// RunAutoMigrations runs GORM auto migrations for all entities
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database migrations...")

	err := m.db.AutoMigrate(
		&user.User{},
		&product.Product{},
		&cart.CartLine{},
		&order.Order{},
		&order.OrderLine{},
	)
	if err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	log.Println("✅ Database migrations completed")
	return nil
}

// CreateIndexes creates additional indexes not covered by struct tags
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating database indexes...")

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_active_created ON products (is_active, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders (user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_cart_lines_product ON cart_lines (product_id)",
	}

	for _, idx := range indexes {
		if err := m.db.Exec(idx).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	log.Println("✅ Database indexes created")
	return nil
}

// SeedInitialData seeds a small catalog and an admin account for development
func (m *Migration) SeedInitialData() error {
	var count int64
	if err := m.db.Model(&product.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil // Already seeded
	}

	log.Println("🔄 Seeding initial data...")

	products := []product.Product{
		{
			SKU:           "TSHIRT-001",
			Name:          "Classic T-Shirt",
			Slug:          "classic-t-shirt",
			Description:   "A plain cotton t-shirt",
			Price:         decimal.NewFromFloat(19.99),
			StockQuantity: 100,
			IsActive:      true,
		},
		{
			SKU:                "MUG-001",
			Name:               "Coffee Mug",
			Slug:               "coffee-mug",
			Description:        "Ceramic mug, 350ml",
			Price:              decimal.NewFromFloat(12.50),
			DiscountPercentage: decimal.NewFromInt(10),
			StockQuantity:      50,
			IsActive:           true,
		},
		{
			SKU:           "POSTER-001",
			Name:          "Wall Poster",
			Slug:          "wall-poster",
			Description:   "A2 matte print",
			Price:         decimal.NewFromFloat(8.00),
			StockQuantity: 200,
			IsActive:      true,
		},
	}

	for _, p := range products {
		if err := m.db.Create(&p).Error; err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.SKU, err)
		}
	}

	log.Println("✅ Initial data seeded")
	return nil
}

// GetTableInfo logs row counts per table, for development visibility
func (m *Migration) GetTableInfo() {
	tables := []string{"users", "products", "cart_lines", "orders", "order_lines"}
	for _, table := range tables {
		var count int64
		if err := m.db.Table(table).Count(&count).Error; err != nil {
			log.Printf("⚠️  Failed to count table %s: %v", table, err)
			continue
		}
		log.Printf("📊 Table %s: %d rows", table, count)
	}
}
