package services

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"studio-admin-service/internal/config"
	"studio-admin-service/internal/models"
	"studio-admin-service/internal/repository"
	"github.com/google/uuid"
)

// AuthService drives the per-credential authentication state machine:
// login attempt, failure counting, lockout, lazy unlock and the forced
// password-change gate.
type AuthService struct {
	repo            repository.AdminRepositoryInterface
	passwordService *PasswordService
	loginURLService *LoginURLService
	security        config.SecurityConfig
}

// AuthResult is the outcome of a successful authentication.
type AuthResult struct {
	Admin                 *models.AdminCredential
	RequirePasswordChange bool
}

// SetupRequest carries the first-admin bootstrap input.
type SetupRequest struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	CustomURL       string
}

// NewAuthService creates a new auth service
func NewAuthService(repo repository.AdminRepositoryInterface, passwordService *PasswordService, loginURLService *LoginURLService, security config.SecurityConfig) *AuthService {
	return &AuthService{
		repo:            repo,
		passwordService: passwordService,
		loginURLService: loginURLService,
		security:        security,
	}
}

// Authenticate evaluates one login attempt against a resolved credential.
//
// Order matters: the lockout check runs first and performs no hash
// comparison and no counter change; a mismatch increments the counter and
// locks at the threshold; a disabled account fails after the match without
// touching the counter; success resets the counter, clears the lockout and
// stamps last_login.
func (s *AuthService) Authenticate(admin *models.AdminCredential, username, password string) (*AuthResult, error) {
	if admin.IsAccountLocked() {
		return nil, models.ErrAccountLocked
	}

	usernameMatch := subtle.ConstantTimeCompare([]byte(admin.Username), []byte(username)) == 1
	passwordErr := s.passwordService.VerifyPassword(password, admin.PasswordHash)

	if !usernameMatch || passwordErr != nil {
		attempts, lockedUntil, err := s.repo.RecordFailedAttempt(admin.ID, s.security.MaxLoginAttempts, s.security.LockoutWindow())
		if err != nil {
			return nil, fmt.Errorf("failed to record login attempt: %w", err)
		}
		admin.LoginAttempts = attempts
		admin.LockedUntil = lockedUntil
		if lockedUntil != nil {
			return nil, models.ErrAccountLocked
		}
		return nil, models.ErrInvalidCredentials
	}

	if !admin.ActiveStatus {
		return nil, models.ErrAccountDisabled
	}

	if err := s.repo.RecordSuccessfulLogin(admin.ID); err != nil {
		return nil, fmt.Errorf("failed to record successful login: %w", err)
	}
	admin.LoginAttempts = 0
	admin.LockedUntil = nil
	now := time.Now()
	admin.LastLogin = &now

	return &AuthResult{
		Admin:                 admin,
		RequirePasswordChange: admin.RequirePasswordChange,
	}, nil
}

// SetupFirstAdmin creates the bootstrap credential. It refuses when any
// credential already exists. Returns field-level validation messages for
// malformed input; the returned error covers persistence failures and the
// already-exists case.
func (s *AuthService) SetupFirstAdmin(req SetupRequest) (*models.AdminCredential, []string, error) {
	var validationErrors []string

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if len(username) < 3 {
		validationErrors = append(validationErrors, "Username must be at least 3 characters long")
	}
	if email == "" || !strings.Contains(email, "@") {
		validationErrors = append(validationErrors, "Please enter a valid email address")
	}
	if req.Password != req.ConfirmPassword {
		validationErrors = append(validationErrors, "Passwords do not match")
	}
	validationErrors = append(validationErrors, s.passwordService.ValidatePassword(req.Password)...)

	customURL := strings.TrimSpace(req.CustomURL)
	if customURL == "" {
		generated, err := s.loginURLService.Generate()
		if err != nil {
			return nil, nil, err
		}
		customURL = generated
	} else if !s.loginURLService.IsValidSegment(customURL) {
		validationErrors = append(validationErrors, "Custom URL can only contain letters, numbers, hyphens, and underscores")
	}

	if len(validationErrors) > 0 {
		return nil, validationErrors, nil
	}

	hash, err := s.passwordService.HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	admin := &models.AdminCredential{
		Username:       username,
		Email:          email,
		PasswordHash:   hash,
		CustomLoginURL: customURL,
		ActiveStatus:   true,
	}

	if err := s.repo.CreateFirstAdmin(admin); err != nil {
		return nil, nil, err
	}
	return admin, nil, nil
}

// ChangePassword requires re-entry of the current password before accepting
// a new one, so possession of a session alone is not enough to take over the
// account. The new password goes through the same policy check as setup.
func (s *AuthService) ChangePassword(adminID uuid.UUID, currentPassword, newPassword, confirmPassword string) ([]string, error) {
	admin, err := s.repo.GetByID(adminID)
	if err != nil {
		return nil, err
	}

	var validationErrors []string
	if err := s.passwordService.VerifyPassword(currentPassword, admin.PasswordHash); err != nil {
		validationErrors = append(validationErrors, "Current password is incorrect")
	}
	if newPassword != confirmPassword {
		validationErrors = append(validationErrors, "New passwords do not match")
	}
	validationErrors = append(validationErrors, s.passwordService.ValidatePassword(newPassword)...)

	if len(validationErrors) > 0 {
		return validationErrors, nil
	}

	hash, err := s.passwordService.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePassword(adminID, hash); err != nil {
		return nil, err
	}
	return nil, nil
}

// Unlock clears the failure counter and lockout timestamp. This is the
// explicit admin transition out of the locked state.
func (s *AuthService) Unlock(adminID uuid.UUID) error {
	return s.repo.Unlock(adminID)
}

// SetActive toggles a credential's active status. Inactive credentials
// refuse authentication regardless of password correctness.
func (s *AuthService) SetActive(adminID uuid.UUID, active bool) error {
	return s.repo.SetActiveStatus(adminID, active)
}

// GetAdmin retrieves a credential by ID
func (s *AuthService) GetAdmin(adminID uuid.UUID) (*models.AdminCredential, error) {
	return s.repo.GetByID(adminID)
}

// ListAdmins returns all admin credentials.
func (s *AuthService) ListAdmins() ([]models.AdminCredential, error) {
	return s.repo.List()
}

// PostureReport derives the advisory security-health view of a credential.
// It reads state only and never blocks authentication.
func (s *AuthService) PostureReport(admin *models.AdminCredential) *models.PostureReport {
	passwordAge := time.Since(admin.PasswordUpdatedAt)
	passwordAgeDays := int(passwordAge.Hours() / 24)
	passwordOld := passwordAgeDays > s.security.PasswordMaxAgeDays

	var recommendations []string
	if passwordOld {
		recommendations = append(recommendations,
			fmt.Sprintf("Consider changing your password (it's over %d days old)", s.security.PasswordMaxAgeDays))
	}
	if admin.LoginAttempts > 0 {
		recommendations = append(recommendations, "Recent failed login attempts detected")
	}

	return &models.PostureReport{
		PasswordAgeDays: passwordAgeDays,
		PasswordOld:     passwordOld,
		LastLogin:       admin.LastLogin,
		LoginAttempts:   admin.LoginAttempts,
		AccountLocked:   admin.IsAccountLocked(),
		Recommendations: recommendations,
	}
}
