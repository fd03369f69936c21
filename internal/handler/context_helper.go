package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hallticket-api/internal/middleware"
	"github.com/noah-isme/hallticket-api/internal/models"
)

// claimsFromContext returns the JWT claims the auth middleware stored,
// or nil when the request was not authenticated.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*models.JWTClaims)
	return claims
}
