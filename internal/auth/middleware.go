package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/backoffice-service/internal/utils"
)

const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
	contextIdentity = "identity"
)

// Authenticate rejects requests without a valid bearer token and stores the
// caller in the gin context.
func Authenticate(verifier Verifier, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing bearer token"})
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			logger.Warn("Token rejected", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		c.Set(ContextUserID, identity.UserID)
		c.Set(ContextUserRole, identity.Role)
		c.Set(contextIdentity, identity)
		c.Next()
	}
}

// RequirePermission lets the request through when the caller's role grants any of perms.
func RequirePermission(checker *Checker, perms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		if !checker.Any(identity.Role, perms...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "Insufficient permissions",
				"details": perms,
			})
			return
		}
		c.Next()
	}
}

func CurrentIdentity(c *gin.Context) (*Identity, bool) {
	value, exists := c.Get(contextIdentity)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*Identity)
	return identity, ok && identity != nil
}
