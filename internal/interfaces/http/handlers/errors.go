// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
)

// errorMessage returns the client-facing message for a service error.
// Store errors carry driver and SQL detail that must not reach the
// response body, so they collapse to a generic message.
func errorMessage(err error) string {
	if apperrors.IsStoreError(err) {
		return "Internal server error"
	}
	return err.Error()
}
