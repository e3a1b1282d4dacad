package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthorizeRoles gates a route to the given roles. It must run after
// IsAuthenticated, which puts the role claim on the context.
func AuthorizeRoles(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("role")
		roleValue, _ := role.(string)

		for _, allowed := range allowedRoles {
			if roleValue == allowed {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": fmt.Sprintf("role %q is not allowed to access this resource", roleValue),
		})
	}
}
