package middleware

import (
	"context"
	"net/http"
	"strings"

	"blog-backend/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// usernameKey names the caller on the gin context for the access log.
const usernameKey = "username"

// TokenVerifier decodes a bearer token into the identity it was issued for.
type TokenVerifier interface {
	Verify(token string) (*models.Identity, error)
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (*models.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*models.Identity)
	return id, ok && id != nil
}

// CurrentIdentity returns the caller authenticated by AuthMiddleware.
func CurrentIdentity(c *gin.Context) (*models.Identity, bool) {
	return IdentityFromContext(c.Request.Context())
}

// AuthMiddleware creates a Gin middleware for JWT authentication. It only
// authenticates; role checks are left to the handlers.
func AuthMiddleware(verifier TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}

		tokenString := bearerToken(authHeader)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token missing"})
			return
		}

		id, err := verifier.Verify(tokenString)
		if err != nil {
			logger.Debug("Rejected token", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(usernameKey, id.Username)
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))

		c.Next()
	}
}

// bearerToken extracts the token from "Bearer <token>". The scheme is
// matched case-insensitively; anything else yields "".
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
