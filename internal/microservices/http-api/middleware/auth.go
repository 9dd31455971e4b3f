package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"elibrary/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// TokenHeader is the primary header the session token travels in.
const TokenHeader = "x-auth-token"

// Gin context keys set by AuthMiddleware.
const (
	ContextUserID   = "userID"
	ContextUsername = "username"
)

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID   string
	Username string
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// AuthMiddleware is a Gin middleware for JWT authentication of API requests.
// The token is read from x-auth-token, falling back to "Authorization: Bearer".
// Every failure answers with the same generic message; the cause is logged at debug.
func AuthMiddleware(authService service.AuthService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c.Request)
		if tokenString == "" {
			respondError(c, http.StatusUnauthorized, "NO_TOKEN", "not authorized")
			c.Abort()
			return
		}

		claims, err := authService.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			if isTokenError(err) {
				logger.Debug("token_rejected", "path", c.Request.URL.Path, "reason", err.Error())
				respondError(c, http.StatusUnauthorized, "INVALID_TOKEN", "not authorized")
			} else {
				logger.Error("token_lookup_failed", "path", c.Request.URL.Path, "error", err.Error())
				respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Server Error")
			}
			c.Abort()
			return
		}

		// Set user info in context for handlers to use
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), Identity{
			UserID:   claims.UserID,
			Username: claims.Username,
		}))

		c.Next()
	}
}

func extractToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(TokenHeader)); token != "" {
		return token
	}

	// Fallback format: "Bearer <token>"
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

func isTokenError(err error) bool {
	return errors.Is(err, service.ErrInvalidToken) || errors.Is(err, service.ErrExpiredToken)
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}
