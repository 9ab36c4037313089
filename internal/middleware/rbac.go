package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/tutorhub/class-ledger-api/internal/models"
	appErrors "github.com/tutorhub/class-ledger-api/pkg/errors"
	"github.com/tutorhub/class-ledger-api/pkg/response"
)

// RequireRole gates a route on a minimum capability level. Roles are
// ordered, so a PRINCIPAL passes a TEACHER gate.
func RequireRole(minimum models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if !claims.Role.AtLeast(minimum) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRoleOrSelf passes when the caller meets the minimum role or is
// acting on their own resource, identified by the named path parameter.
func RequireRoleOrSelf(minimum models.Role, idParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if claims.Role.AtLeast(minimum) {
			c.Next()
			return
		}
		if targetID := c.Param(idParam); targetID != "" && targetID == claims.UserID {
			c.Next()
			return
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
