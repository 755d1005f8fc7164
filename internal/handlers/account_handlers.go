package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"studio-admin-service/internal/events"
	"studio-admin-service/internal/middleware"
	"studio-admin-service/internal/models"
	"studio-admin-service/internal/services"
)

// AccountHandlers handles admin account management endpoints
type AccountHandlers struct {
	authService    *services.AuthService
	sessionService *services.SessionService
	publisher      *events.Publisher
	logger         *logrus.Logger
}

// NewAccountHandlers creates a new account handlers instance
func NewAccountHandlers(authService *services.AuthService, sessionService *services.SessionService, publisher *events.Publisher, logger *logrus.Logger) *AccountHandlers {
	return &AccountHandlers{
		authService:    authService,
		sessionService: sessionService,
		publisher:      publisher,
		logger:         logger,
	}
}

// List returns every admin account with its security state.
func (h *AccountHandlers) List(c *gin.Context) {
	admins, err := h.authService.ListAdmins()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list admin accounts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list accounts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accounts": admins,
		"count":    len(admins),
	})
}

// Unlock clears the lockout and failure counter on an account.
func (h *AccountHandlers) Unlock(c *gin.Context) {
	accountID, ok := h.parseAccountID(c)
	if !ok {
		return
	}

	if err := h.authService.Unlock(accountID); err != nil {
		h.respondAccountError(c, err, "Failed to unlock account")
		return
	}

	middleware.LogSecurityEvent(h.logger, "account_unlocked", c.ClientIP(), "", map[string]interface{}{
		"account_id":  accountID.String(),
		"unlocked_by": middleware.GetUsername(c),
	})
	h.publisher.PublishAuth(c.Request.Context(), events.AuthEvent{
		Subject: events.SubjectAccountUnlocked,
		AdminID: accountID.String(),
	})

	c.JSON(http.StatusOK, gin.H{"message": "Account unlocked"})
}

// Activate re-enables a deactivated account.
func (h *AccountHandlers) Activate(c *gin.Context) {
	accountID, ok := h.parseAccountID(c)
	if !ok {
		return
	}

	if err := h.authService.SetActive(accountID, true); err != nil {
		h.respondAccountError(c, err, "Failed to activate account")
		return
	}

	middleware.LogSecurityEvent(h.logger, "account_activated", c.ClientIP(), "", map[string]interface{}{
		"account_id":   accountID.String(),
		"activated_by": middleware.GetUsername(c),
	})

	c.JSON(http.StatusOK, gin.H{"message": "Account activated"})
}

// Deactivate disables an account and revokes its sessions. An admin cannot
// deactivate their own account, the site must keep at least one way in.
func (h *AccountHandlers) Deactivate(c *gin.Context) {
	accountID, ok := h.parseAccountID(c)
	if !ok {
		return
	}

	selfID, err := middleware.GetAdminID(c)
	if err == nil && selfID == accountID {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "You cannot deactivate your own account",
			"code":  "SELF_DEACTIVATION",
		})
		return
	}

	if err := h.authService.SetActive(accountID, false); err != nil {
		h.respondAccountError(c, err, "Failed to deactivate account")
		return
	}
	if err := h.sessionService.RevokeAllForAdmin(accountID); err != nil {
		h.logger.WithError(err).Warn("Failed to revoke sessions for deactivated account")
	}

	middleware.LogSecurityEvent(h.logger, "account_deactivated", c.ClientIP(), "", map[string]interface{}{
		"account_id":     accountID.String(),
		"deactivated_by": middleware.GetUsername(c),
	})

	c.JSON(http.StatusOK, gin.H{"message": "Account deactivated"})
}

func (h *AccountHandlers) parseAccountID(c *gin.Context) (uuid.UUID, bool) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid account ID format",
			"code":  "INVALID_ACCOUNT_ID",
		})
		return uuid.Nil, false
	}
	return accountID, true
}

func (h *AccountHandlers) respondAccountError(c *gin.Context, err error, message string) {
	if errors.Is(err, models.ErrNotFound) {
		NotFound(c)
		return
	}
	h.logger.WithError(err).Error(message)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}
