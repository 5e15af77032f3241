package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/bbarathsrinivasan/ACMHack/internal/middleware"
	"github.com/bbarathsrinivasan/ACMHack/internal/models"
	"github.com/bbarathsrinivasan/ACMHack/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// currentUserID falls back to the local user when no claims were attached.
func currentUserID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil && claims.UserID != "" {
		return claims.UserID
	}
	return models.AnonymousUserID
}

// expectedVersion reads the client's version from If-Match, then the version query parameter.
func expectedVersion(c *gin.Context) string {
	if header := c.GetHeader("If-Match"); header != "" {
		return response.ParseETag(header)
	}
	return c.Query("version")
}
