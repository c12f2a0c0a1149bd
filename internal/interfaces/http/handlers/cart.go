// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	config      *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		cartService: cart.NewService(db, cfg, logger),
		config:      cfg,
	}
}

// AddToCartRequest represents the add to cart payload. Quantity defaults to 1.
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// UpdateCartItemRequest represents the update quantity payload
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	owner := middleware.ResolveOwner(c)

	cartResponse, err := h.cartService.GetCart(owner)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    cartResponse,
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	owner := middleware.ResolveOwner(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	result, err := h.cartService.AddToCart(owner, req.ProductID, req.Quantity)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": errorMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    result,
	})
}

// UpdateCartItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	owner := middleware.ResolveOwner(c)

	cartID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cart item ID",
		})
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	result, err := h.cartService.UpdateCartItem(owner, cartID, req.Quantity)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": errorMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    result,
	})
}

// RemoveCartItem handles DELETE /cart/items/:id
func (h *CartHandler) RemoveCartItem(c *gin.Context) {
	owner := middleware.ResolveOwner(c)

	cartID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cart item ID",
		})
		return
	}

	if err := h.cartService.RemoveCartItem(owner, cartID); err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": errorMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	owner := middleware.ResolveOwner(c)

	if err := h.cartService.ClearCart(owner); err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": "Failed to clear cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	owner := middleware.ResolveOwner(c)

	count, err := h.cartService.GetCartCount(owner)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": "Failed to get cart count",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart count retrieved successfully",
		"data": gin.H{
			"count": count,
		},
	})
}

// ValidateCart handles POST /cart/validate
func (h *CartHandler) ValidateCart(c *gin.Context) {
	owner := middleware.ResolveOwner(c)

	result, err := h.cartService.ValidateCart(owner)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error": "Failed to validate cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart validated",
		"data":    result,
	})
}

// parseIDParam parses a numeric path parameter
func parseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
