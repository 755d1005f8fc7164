package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"studio-admin-service/internal/services"
)

type AuthMiddleware struct {
	sessionService *services.SessionService
}

func NewAuthMiddleware(sessionService *services.SessionService) *AuthMiddleware {
	return &AuthMiddleware{
		sessionService: sessionService,
	}
}

// AuthRequired validates the bearer token against both the JWT signature
// and the stored session row, so revoked sessions fail immediately.
func (m *AuthMiddleware) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token required",
				"code":  "MISSING_TOKEN",
			})
			c.Abort()
			return
		}

		claims, err := m.sessionService.Validate(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired session",
				"code":  "INVALID_SESSION",
			})
			c.Abort()
			return
		}

		c.Set("admin_id", claims.AdminID)
		c.Set("admin_username", claims.Username)
		c.Set("admin_email", claims.Email)
		c.Set("session_id", claims.SessionID)
		c.Set("require_password_change", claims.RequirePasswordChange)
		c.Set("session_token", token)

		c.Next()
	}
}

// PasswordChangeGate blocks every authenticated route except password change
// and logout while a credential is flagged for a forced password change.
// Apply after AuthRequired.
func (m *AuthMiddleware) PasswordChangeGate(exemptPaths ...string) gin.HandlerFunc {
	exempt := make(map[string]bool, len(exemptPaths))
	for _, p := range exemptPaths {
		exempt[p] = true
	}

	return func(c *gin.Context) {
		required := c.GetBool("require_password_change")
		if required && !exempt[c.FullPath()] {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Password change required before continuing",
				"code":  "PASSWORD_CHANGE_REQUIRED",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// extractToken extracts the JWT token from the Authorization header
func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return parts[1]
}

// GetAdminID utility function to get the authenticated admin ID from context
func GetAdminID(c *gin.Context) (uuid.UUID, error) {
	adminID, exists := c.Get("admin_id")
	if !exists {
		return uuid.Nil, fmt.Errorf("admin ID not found in context")
	}

	adminUUID, ok := adminID.(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid admin ID format")
	}

	return adminUUID, nil
}

// GetUsername utility function to get the authenticated username from context
func GetUsername(c *gin.Context) string {
	username, exists := c.Get("admin_username")
	if !exists {
		return ""
	}
	name, _ := username.(string)
	return name
}
