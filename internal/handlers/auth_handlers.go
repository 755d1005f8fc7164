package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"studio-admin-service/internal/events"
	"studio-admin-service/internal/middleware"
	"studio-admin-service/internal/models"
	"studio-admin-service/internal/services"
)

// AuthHandlers handles admin authentication endpoints
type AuthHandlers struct {
	authService     *services.AuthService
	sessionService  *services.SessionService
	loginURLService *services.LoginURLService
	publisher       *events.Publisher
	logger          *logrus.Logger
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(authService *services.AuthService, sessionService *services.SessionService, loginURLService *services.LoginURLService, publisher *events.Publisher, logger *logrus.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService:     authService,
		sessionService:  sessionService,
		loginURLService: loginURLService,
		publisher:       publisher,
		logger:          logger,
	}
}

// SetupRequest represents the first-admin bootstrap request
type SetupRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	CustomURL       string `json:"custom_url"`
}

// LoginRequest represents a login attempt at a private login path
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// UpdateLoginURLRequest represents a login URL change. An empty custom_url
// asks for a freshly generated random path.
type UpdateLoginURLRequest struct {
	CustomURL string `json:"custom_url"`
}

// Setup handles first-admin bootstrap. It refuses once any credential exists.
func (h *AuthHandlers) Setup(c *gin.Context) {
	var req SetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	admin, validationErrors, err := h.authService.SetupFirstAdmin(services.SetupRequest{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		CustomURL:       req.CustomURL,
	})
	if err != nil {
		if errors.Is(err, models.ErrAdminExists) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Setup has already been completed",
				"code":  "SETUP_COMPLETE",
			})
			return
		}
		if errors.Is(err, models.ErrLoginURLTaken) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "That login URL is already in use",
				"code":  "LOGIN_URL_TAKEN",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to create first admin")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to complete setup",
		})
		return
	}
	if len(validationErrors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Validation failed",
			"errors": validationErrors,
		})
		return
	}

	middleware.LogSecurityEvent(h.logger, "admin_setup_complete", c.ClientIP(), admin.Email, map[string]interface{}{
		"admin_id": admin.ID.String(),
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Admin account created",
		"admin_id":  admin.ID,
		"login_url": "/admin/login/" + admin.CustomLoginURL,
	})
}

// Login authenticates at a private login path. An unknown path returns the
// same 404 the router produces for any unknown route, so the response shape
// never confirms whether a login path exists.
func (h *AuthHandlers) Login(c *gin.Context) {
	urlPath := c.Param("url_path")

	admin, err := h.loginURLService.Resolve(urlPath)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			middleware.LogSecurityEvent(h.logger, "unknown_login_path", c.ClientIP(), "", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			NotFound(c)
			return
		}
		h.logger.WithError(err).Error("Failed to resolve login path")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	attemptsBefore := admin.LoginAttempts
	result, err := h.authService.Authenticate(admin, req.Username, req.Password)
	if err != nil {
		h.handleLoginFailure(c, admin, attemptsBefore, err)
		return
	}

	token, session, err := h.sessionService.Issue(result.Admin, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.logger.WithError(err).Error("Failed to create session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	middleware.LogSecurityEvent(h.logger, "successful_login", c.ClientIP(), result.Admin.Email, map[string]interface{}{
		"admin_id": result.Admin.ID.String(),
	})
	h.publisher.PublishAuth(c.Request.Context(), events.AuthEvent{
		Subject:   events.SubjectLoginSuccess,
		AdminID:   result.Admin.ID.String(),
		Username:  result.Admin.Username,
		IPAddress: c.ClientIP(),
	})

	c.JSON(http.StatusOK, gin.H{
		"token":                   token,
		"expires_at":              session.ExpiresAt.Format(time.RFC3339),
		"require_password_change": result.RequirePasswordChange,
		"admin": gin.H{
			"id":       result.Admin.ID,
			"username": result.Admin.Username,
			"email":    result.Admin.Email,
		},
	})
}

// handleLoginFailure logs and publishes the failure sub-reason, then answers
// with one generic response. The client never learns whether the credentials
// were wrong, the account locked, or the account disabled. attemptsBefore
// lets it tell a freshly triggered lock apart from an attempt against an
// account that was already locked.
func (h *AuthHandlers) handleLoginFailure(c *gin.Context, admin *models.AdminCredential, attemptsBefore int, err error) {
	switch {
	case errors.Is(err, models.ErrAccountLocked):
		middleware.LogSecurityEvent(h.logger, "locked_login_attempt", c.ClientIP(), admin.Email, map[string]interface{}{
			"admin_id": admin.ID.String(),
		})
		if admin.LoginAttempts > attemptsBefore {
			h.publisher.PublishAuth(c.Request.Context(), events.AuthEvent{
				Subject:        events.SubjectLoginFailed,
				AdminID:        admin.ID.String(),
				IPAddress:      c.ClientIP(),
				FailedAttempts: admin.LoginAttempts,
			})
			lockedUntil := ""
			if admin.LockedUntil != nil {
				lockedUntil = admin.LockedUntil.Format(time.RFC3339)
			}
			h.publisher.PublishAuth(c.Request.Context(), events.AuthEvent{
				Subject:     events.SubjectAccountLocked,
				AdminID:     admin.ID.String(),
				IPAddress:   c.ClientIP(),
				LockedUntil: lockedUntil,
			})
		}

	case errors.Is(err, models.ErrAccountDisabled):
		middleware.LogSecurityEvent(h.logger, "disabled_login_attempt", c.ClientIP(), admin.Email, map[string]interface{}{
			"admin_id": admin.ID.String(),
		})

	case errors.Is(err, models.ErrInvalidCredentials):
		middleware.LogSecurityEvent(h.logger, "failed_login_attempt", c.ClientIP(), admin.Email, map[string]interface{}{
			"admin_id":       admin.ID.String(),
			"login_attempts": admin.LoginAttempts,
		})
		h.publisher.PublishAuth(c.Request.Context(), events.AuthEvent{
			Subject:        events.SubjectLoginFailed,
			AdminID:        admin.ID.String(),
			IPAddress:      c.ClientIP(),
			FailedAttempts: admin.LoginAttempts,
		})

	default:
		h.logger.WithError(err).Error("Login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusUnauthorized, gin.H{
		"error": "Invalid username or password",
		"code":  "INVALID_CREDENTIALS",
	})
}

// Logout revokes the current session. The token is accepted even when the
// session row is already inactive so logout is idempotent.
func (h *AuthHandlers) Logout(c *gin.Context) {
	token := c.GetString("session_token")
	if err := h.sessionService.Revoke(token); err != nil && !errors.Is(err, models.ErrNotFound) {
		h.logger.WithError(err).Error("Failed to revoke session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log out"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// ChangePassword verifies the current password before accepting a new one,
// then revokes every other session for the account.
func (h *AuthHandlers) ChangePassword(c *gin.Context) {
	adminID, err := middleware.GetAdminID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	validationErrors, err := h.authService.ChangePassword(adminID, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		h.logger.WithError(err).Error("Failed to change password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}
	if len(validationErrors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Validation failed",
			"errors": validationErrors,
		})
		return
	}

	// Other sessions die with the old password. The current one is
	// reissued so the caller stays logged in.
	if err := h.sessionService.RevokeAllForAdmin(adminID); err != nil {
		h.logger.WithError(err).Warn("Failed to revoke existing sessions after password change")
	}

	admin, err := h.authService.GetAdmin(adminID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to reload admin after password change")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}
	token, session, err := h.sessionService.Issue(admin, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.logger.WithError(err).Error("Failed to reissue session after password change")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}

	middleware.LogSecurityEvent(h.logger, "password_changed", c.ClientIP(), admin.Email, map[string]interface{}{
		"admin_id": admin.ID.String(),
	})
	h.publisher.PublishAuth(c.Request.Context(), events.AuthEvent{
		Subject:   events.SubjectPasswordChanged,
		AdminID:   admin.ID.String(),
		Username:  admin.Username,
		IPAddress: c.ClientIP(),
	})

	c.JSON(http.StatusOK, gin.H{
		"message":    "Password changed",
		"token":      token,
		"expires_at": session.ExpiresAt.Format(time.RFC3339),
	})
}

// UpdateLoginURL changes the private login path. An empty custom_url rotates
// to a freshly generated random path.
func (h *AuthHandlers) UpdateLoginURL(c *gin.Context) {
	adminID, err := middleware.GetAdminID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req UpdateLoginURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	var segment string
	if req.CustomURL == "" {
		segment, err = h.loginURLService.Rotate(adminID)
	} else {
		segment = req.CustomURL
		err = h.loginURLService.SetCustom(adminID, req.CustomURL)
	}
	if err != nil {
		switch {
		case errors.Is(err, models.ErrLoginURLTaken):
			c.JSON(http.StatusConflict, gin.H{
				"error": "That login URL is already in use",
				"code":  "LOGIN_URL_TAKEN",
			})
		case errors.Is(err, services.ErrInvalidLoginURL):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Custom URL can only contain letters, numbers, hyphens, and underscores",
				"code":  "INVALID_LOGIN_URL",
			})
		default:
			h.logger.WithError(err).Error("Failed to update login URL")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update login URL"})
		}
		return
	}

	middleware.LogSecurityEvent(h.logger, "login_url_changed", c.ClientIP(), "", map[string]interface{}{
		"admin_id": adminID.String(),
	})
	h.publisher.PublishAuth(c.Request.Context(), events.AuthEvent{
		Subject: events.SubjectLoginURLRotated,
		AdminID: adminID.String(),
	})

	c.JSON(http.StatusOK, gin.H{
		"message":   "Login URL updated",
		"login_url": "/admin/login/" + segment,
	})
}

// SecurityCheck returns the advisory posture report for the current admin.
func (h *AuthHandlers) SecurityCheck(c *gin.Context) {
	adminID, err := middleware.GetAdminID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	admin, err := h.authService.GetAdmin(adminID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load admin for security check")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run security check"})
		return
	}

	c.JSON(http.StatusOK, h.authService.PostureReport(admin))
}

// NotFound is the single 404 response used for unknown routes and unknown
// login paths alike.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
}
