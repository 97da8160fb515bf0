package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"cartside/api/internal/models"
)

// RequireRoles gates an endpoint to principals whose role is in the
// allow-list. It must run after AuthUser has attached the principal; the
// rejection names the principal's actual role.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		userVal, exists := c.Get(CtxUserKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}
		user, ok := userVal.(models.User)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		if _, ok := roleSet[user.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": fmt.Sprintf("role %q is not permitted", user.Role),
			})
			return
		}

		c.Next()
	}
}
