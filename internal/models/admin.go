package models

import (
	"time"

	"github.com/google/uuid"
)

// AdminCredential is the stored identity, secret and security metadata
// for one administrator account.
type AdminCredential struct {
	ID                    uuid.UUID  `json:"id" db:"id"`
	Username              string     `json:"username" db:"username"`
	Email                 string     `json:"email" db:"email"`
	PasswordHash          string     `json:"-" db:"password_hash"` // SECURITY: never expose the hash
	CustomLoginURL        string     `json:"custom_login_url" db:"custom_login_url"`
	ActiveStatus          bool       `json:"active_status" db:"active_status"`
	LoginAttempts         int        `json:"login_attempts" db:"login_attempts"`
	LastLogin             *time.Time `json:"last_login" db:"last_login"`
	LockedUntil           *time.Time `json:"locked_until" db:"locked_until"`
	PasswordUpdatedAt     time.Time  `json:"password_updated_at" db:"password_updated_at"`
	RequirePasswordChange bool       `json:"require_password_change" db:"require_password_change"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at" db:"updated_at"`
}

// IsAccountLocked reports whether the lockout window is still open.
// Lockout is evaluated lazily at the next attempt, there is no timer.
func (a *AdminCredential) IsAccountLocked() bool {
	return a.LockedUntil != nil && time.Now().Before(*a.LockedUntil)
}

// AdminSession binds one authenticated request context to one credential.
// Lifetime is a fixed absolute expiry from issuance, independent of activity.
type AdminSession struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AdminID   uuid.UUID `json:"admin_id" db:"admin_id"`
	Token     string    `json:"-" db:"token"` // SECURITY: never expose tokens in API responses
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	IPAddress string    `json:"-" db:"ip_address"`
	UserAgent string    `json:"-" db:"user_agent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PostureReport is the derived, read-only summary of a credential's
// security health. Advisory only, it never blocks authentication.
type PostureReport struct {
	PasswordAgeDays int        `json:"password_age_days"`
	PasswordOld     bool       `json:"password_old"`
	LastLogin       *time.Time `json:"last_login"`
	LoginAttempts   int        `json:"login_attempts"`
	AccountLocked   bool       `json:"account_locked"`
	Recommendations []string   `json:"recommendations"`
}
