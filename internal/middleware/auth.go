package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridehail-backend/internal/apperrors"
	"github.com/chachabrian/ridehail-backend/internal/models"
	"github.com/chachabrian/ridehail-backend/internal/services"
)

const principalKey = "principal"

// PrincipalResolver turns a bearer token into the caller.
type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) (services.Principal, error)
}

// AuthMiddleware resolves the caller once per request. The token comes from
// the Authorization header or, for WebSocket upgrades, the token query
// parameter.
func AuthMiddleware(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Fields(authHeader)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		principal, err := resolver.Resolve(c.Request.Context(), tokenString)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireRoles rejects callers whose role is not listed.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := Principal(c)
		for _, role := range roles {
			if p.Is(role) {
				c.Next()
				return
			}
		}
		AbortWithError(c, apperrors.Forbidden("Not authorized for this action"))
	}
}

// Principal returns the caller set by AuthMiddleware, or the zero value.
func Principal(c *gin.Context) services.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(services.Principal); ok {
			return p
		}
	}
	return services.Principal{}
}
