package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bbarathsrinivasan/ACMHack/internal/models"
	appErrors "github.com/bbarathsrinivasan/ACMHack/pkg/errors"
	"github.com/bbarathsrinivasan/ACMHack/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// TokenValidator resolves bearer tokens into claims.
type TokenValidator interface {
	Validate(token string) (*models.JWTClaims, error)
}

// Auth returns JWT when enabled, otherwise Anonymous.
func Auth(enabled bool, tokens TokenValidator) gin.HandlerFunc {
	if enabled {
		return JWT(tokens)
	}
	return Anonymous()
}

// JWT protects routes by requiring a valid access token.
func JWT(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		token, ok := bearerToken(header)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := tokens.Validate(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// Anonymous scopes every request to the local user.
func Anonymous() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: models.AnonymousUserID})
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
