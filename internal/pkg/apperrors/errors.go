// internal/pkg/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for caller mistakes and simple business rejections.
var (
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrProductNotFound  = errors.New("product not found or inactive")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrNoActiveSession  = errors.New("no active session")
	ErrOrderNotFound    = errors.New("order not found")
)

// InsufficientStockError is returned when a requested quantity exceeds the
// product's current stock. Available is the total quantity still purchasable.
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	if e.ProductName != "" {
		return fmt.Sprintf("insufficient stock for product '%s'. Available: %d, Requested: %d",
			e.ProductName, e.Available, e.Requested)
	}
	return fmt.Sprintf("insufficient stock. Available: %d, Requested: %d", e.Available, e.Requested)
}

// ProductInactiveError is returned when a cart references a product that has
// been deactivated since it was added.
type ProductInactiveError struct {
	ProductID   uint
	ProductName string
}

func (e *ProductInactiveError) Error() string {
	return fmt.Sprintf("product '%s' is no longer available", e.ProductName)
}

// MissingShippingInfoError names the first required checkout field left blank.
type MissingShippingInfoError struct {
	Field string
}

func (e *MissingShippingInfoError) Error() string {
	return fmt.Sprintf("missing shipping information: %s is required", e.Field)
}

// StoreError wraps a failure from the underlying data store. It is surfaced
// to callers as a generic internal failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Store wraps err as a StoreError, or returns nil when err is nil.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// HTTPStatus maps an error from the cart/order engines to the status code a
// handler should respond with.
func HTTPStatus(err error) int {
	var (
		stockErr    *InsufficientStockError
		inactiveErr *ProductInactiveError
		shippingErr *MissingShippingInfoError
		storeErr    *StoreError
	)

	switch {
	case errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrNoActiveSession),
		errors.As(err, &shippingErr):
		return http.StatusBadRequest
	case errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrCartItemNotFound),
		errors.Is(err, ErrOrderNotFound):
		return http.StatusNotFound
	case errors.As(err, &stockErr), errors.As(err, &inactiveErr):
		return http.StatusConflict
	case errors.As(err, &storeErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// IsStoreError reports whether err originated in the data store. Handlers use
// this to hide internal details from responses.
func IsStoreError(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr)
}
