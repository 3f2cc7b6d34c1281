package middleware

import (
	"slices"

	"process-platform/internal/errors"

	"github.com/gin-gonic/gin"
)

const (
	RoleAdmin       = "admin"
	RoleContributor = "contributor"
	RoleReader      = "reader"
)

// RequireRole lets the request through when the authenticated role is one of
// roles. It must run after the JWT middleware has set "user_role".
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("user_role")
		if role == "" {
			c.Error(errors.Unauthorized("Authentication required", nil))
			c.Abort()
			return
		}
		if !slices.Contains(roles, role) {
			c.Error(errors.Forbidden("Insufficient permissions", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}

// Writers is the role set allowed to change content.
func Writers() gin.HandlerFunc {
	return RequireRole(RoleAdmin, RoleContributor)
}

// AdminOnly guards user management and taxonomies.
func AdminOnly() gin.HandlerFunc {
	return RequireRole(RoleAdmin)
}
