// internal/domain/product/service.go
package product

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles product business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Search    string `form:"search"`
	SortBy    string `form:"sort_by,default=created_at"`
	SortOrder string `form:"sort_order,default=desc"`
	MinPrice  string `form:"min_price"`
	MaxPrice  string `form:"max_price"`
}

// ProductCreateRequest represents product creation data
type ProductCreateRequest struct {
	SKU                string          `json:"sku" binding:"required"`
	Name               string          `json:"name" binding:"required"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price" binding:"required"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	StockQuantity      int             `json:"stock_quantity"`
	IsActive           *bool           `json:"is_active"`
}

// ProductUpdateRequest represents product update data; nil fields are left unchanged
type ProductUpdateRequest struct {
	Name               *string          `json:"name"`
	Description        *string          `json:"description"`
	Price              *decimal.Decimal `json:"price"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage"`
	IsActive           *bool            `json:"is_active"`
}

// ProductListResponse represents a paginated product list
type ProductListResponse struct {
	Products   []Product  `json:"products"`
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

// GetProducts retrieves active products with filtering and pagination
func (s *Service) GetProducts(req *ProductListRequest) (*ProductListResponse, error) {
	var products []Product
	var total int64

	query := s.db.Model(&Product{}).Where("is_active = ?", true)

	if req.Search != "" {
		term := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", term, term)
	}

	if req.MinPrice != "" {
		if min, err := decimal.NewFromString(req.MinPrice); err == nil {
			query = query.Where("price >= ?", min)
		}
	}

	if req.MaxPrice != "" {
		if max, err := decimal.NewFromString(req.MaxPrice); err == nil {
			query = query.Where("price <= ?", max)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Store("count products", err)
	}

	query = query.Order(s.buildOrderClause(req.SortBy, req.SortOrder))

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, apperrors.Store("list products", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	pagination := Pagination{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    req.Page < totalPages,
		HasPrev:    req.Page > 1,
	}

	return &ProductListResponse{
		Products:   products,
		Pagination: pagination,
	}, nil
}

// GetProduct retrieves a single active product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var product Product
	result := s.db.Where("id = ? AND is_active = ?", id, true).First(&product)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.Store("get product", result.Error)
	}
	return &product, nil
}

// GetProductBySlug retrieves a single active product by slug
func (s *Service) GetProductBySlug(slug string) (*Product, error) {
	var product Product
	result := s.db.Where("slug = ? AND is_active = ?", slug, true).First(&product)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.Store("get product by slug", result.Error)
	}
	return &product, nil
}

// CreateProduct creates a new product (admin)
func (s *Service) CreateProduct(req *ProductCreateRequest) (*Product, error) {
	if err := validatePricing(req.Price, req.DiscountPercentage); err != nil {
		return nil, err
	}
	if req.StockQuantity < 0 {
		return nil, fmt.Errorf("stock quantity cannot be negative")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	product := Product{
		SKU:                req.SKU,
		Name:               req.Name,
		Slug:               Slugify(req.Name),
		Description:        req.Description,
		Price:              req.Price,
		DiscountPercentage: req.DiscountPercentage,
		StockQuantity:      req.StockQuantity,
		IsActive:           isActive,
	}

	if err := s.db.Create(&product).Error; err != nil {
		return nil, apperrors.Store("create product", err)
	}

	return &product, nil
}

// UpdateProduct updates an existing product (admin)
func (s *Service) UpdateProduct(id uint, req *ProductUpdateRequest) (*Product, error) {
	var product Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.Store("get product", err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
		updates["slug"] = Slugify(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		disc := product.DiscountPercentage
		if req.DiscountPercentage != nil {
			disc = *req.DiscountPercentage
		}
		if err := validatePricing(*req.Price, disc); err != nil {
			return nil, err
		}
		updates["price"] = *req.Price
	}
	if req.DiscountPercentage != nil {
		if err := validatePricing(product.Price, *req.DiscountPercentage); err != nil {
			return nil, err
		}
		updates["discount_percentage"] = *req.DiscountPercentage
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(&product).Updates(updates).Error; err != nil {
			return nil, apperrors.Store("update product", err)
		}
	}

	return &product, nil
}

// DeleteProduct soft deletes a product (admin)
func (s *Service) DeleteProduct(id uint) error {
	result := s.db.Delete(&Product{}, id)
	if result.Error != nil {
		return apperrors.Store("delete product", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrProductNotFound
	}
	return nil
}

// SetStock sets a product's stock level to an absolute value (admin)
func (s *Service) SetStock(id uint, quantity int) (*Product, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("stock quantity cannot be negative")
	}

	var product Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.Store("get product", err)
	}

	if err := s.db.Model(&product).Update("stock_quantity", quantity).Error; err != nil {
		return nil, apperrors.Store("set stock", err)
	}

	product.StockQuantity = quantity
	return &product, nil
}

// Slugify converts a product name into a URL-safe slug
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	return strings.Trim(strings.Join(strings.FieldsFunc(slug, func(r rune) bool { return r == '-' }), "-"), "-")
}

func validatePricing(price, discount decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("price cannot be negative")
	}
	if discount.IsNegative() || discount.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("discount percentage must be between 0 and 100")
	}
	return nil
}

func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"price":      true,
		"name":       true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}
