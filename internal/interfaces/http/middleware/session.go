// internal/interfaces/http/middleware/session.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
)

const sessionContextKey = "session_id"

// Session issues an anonymous session cookie on first contact and keeps
// a registry of live guest sessions in Redis. The cookie identifies the
// guest cart until the visitor logs in and the cart is merged.
func Session(cfg *config.Config, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cfg.Session.CookieName)
		if err != nil || sessionID == "" {
			sessionID = uuid.New().String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(
				cfg.Session.CookieName,
				sessionID,
				int(cfg.Session.TTL.Seconds()),
				"/",
				"",
				cfg.App.Environment == "production",
				true,
			)
		}

		// Refresh the session registry entry. Redis being down must not
		// take the storefront with it, so failures are ignored here.
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		key := fmt.Sprintf("session:%s", sessionID)
		_ = redisClient.Set(ctx, key, time.Now().Unix(), cfg.Session.TTL).Err()

		c.Set(sessionContextKey, sessionID)
		c.Next()
	}
}

// GetSessionIDFromContext extracts the anonymous session ID from gin context
func GetSessionIDFromContext(c *gin.Context) (string, bool) {
	sessionID, exists := c.Get(sessionContextKey)
	if !exists {
		return "", false
	}
	return sessionID.(string), true
}

// ResolveOwner determines who the cart belongs to for this request.
// An authenticated user always wins over the session cookie.
func ResolveOwner(c *gin.Context) cart.Owner {
	if userID, ok := GetUserIDFromContext(c); ok {
		return cart.UserOwner(userID)
	}
	if sessionID, ok := GetSessionIDFromContext(c); ok {
		return cart.GuestOwner(sessionID)
	}
	return cart.AnonymousOwner()
}
