// server/internal/api/middleware/auth.go
package middleware

import (
	"context"
	"strings"

	"bike-parking-api-server/internal/api/respond"
	"bike-parking-api-server/internal/apperr"
	"bike-parking-api-server/internal/models"

	"github.com/gin-gonic/gin"
)

const callerKey = "caller"

// CallerResolver maps a bearer token to the account behind it.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, token string) (*models.Account, error)
}

// Authenticate requires "Authorization: Bearer <token>" and stores the resolved
// account in the context for CallerFrom.
func Authenticate(resolver CallerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respond.Error(c, apperr.Unauthorized("authorization header is required"))
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			respond.Error(c, apperr.Unauthorized("invalid token format"))
			return
		}

		caller, err := resolver.ResolveCaller(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			respond.Error(c, err)
			return
		}

		c.Set(callerKey, caller)
		c.Next()
	}
}

// Authorize rejects callers whose role is not listed. It must run after Authenticate.
func Authorize(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok {
			respond.Error(c, apperr.Unauthorized("authentication required"))
			return
		}

		for _, role := range allowedRoles {
			if role == caller.Role {
				c.Next()
				return
			}
		}

		respond.Error(c, apperr.Forbidden("role "+string(caller.Role)+" is not allowed to access this resource"))
	}
}

// CallerFrom returns the account stored by Authenticate.
func CallerFrom(c *gin.Context) (*models.Account, bool) {
	v, exists := c.Get(callerKey)
	if !exists {
		return nil, false
	}
	caller, ok := v.(*models.Account)
	return caller, ok && caller != nil
}
