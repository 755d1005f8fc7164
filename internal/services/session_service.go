package services

import (
	"fmt"
	"time"

	"studio-admin-service/internal/models"
	"studio-admin-service/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionService issues and validates admin sessions. A session is a signed
// JWT bound to a row in admin_sessions; the row is authoritative, so logout
// revokes a token immediately even though the JWT itself is stateless.
type SessionService struct {
	repo       repository.AdminRepositoryInterface
	secret     string
	expiryTime time.Duration
}

// SessionClaims are the JWT claims carried by an admin session token.
type SessionClaims struct {
	AdminID               uuid.UUID `json:"admin_id"`
	Username              string    `json:"username"`
	Email                 string    `json:"email"`
	SessionID             uuid.UUID `json:"session_id"`
	RequirePasswordChange bool      `json:"require_password_change"`
	jwt.RegisteredClaims
}

// NewSessionService creates a new session service
func NewSessionService(repo repository.AdminRepositoryInterface, secret string, expiry time.Duration) *SessionService {
	return &SessionService{
		repo:       repo,
		secret:     secret,
		expiryTime: expiry,
	}
}

// Issue creates a session for an authenticated credential. The expiry is
// absolute from issuance, independent of activity.
func (s *SessionService) Issue(admin *models.AdminCredential, ipAddress, userAgent string) (string, *models.AdminSession, error) {
	sessionID := uuid.New()

	token, err := s.generateToken(admin, sessionID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	session := &models.AdminSession{
		ID:        sessionID,
		AdminID:   admin.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(s.expiryTime),
		IsActive:  true,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}

	if err := s.repo.CreateSession(session); err != nil {
		return "", nil, fmt.Errorf("failed to store session: %w", err)
	}

	return token, session, nil
}

// Validate parses a session token and checks the backing session row. A
// revoked or expired row fails validation regardless of the JWT's own expiry.
func (s *SessionService) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	session, err := s.repo.GetSession(claims.SessionID)
	if err != nil {
		return nil, models.ErrSessionRevoked
	}
	if !session.IsActive || time.Now().After(session.ExpiresAt) {
		return nil, models.ErrSessionRevoked
	}

	return claims, nil
}

// Revoke destroys the session behind a token immediately and unconditionally.
func (s *SessionService) Revoke(tokenString string) error {
	claims, err := s.parseUnchecked(tokenString)
	if err != nil {
		return err
	}
	return s.repo.DeactivateSession(claims.SessionID)
}

// RevokeAllForAdmin destroys every session belonging to one credential.
// Used after a password change so stolen sessions do not survive it.
func (s *SessionService) RevokeAllForAdmin(adminID uuid.UUID) error {
	return s.repo.DeactivateAdminSessions(adminID)
}

// Expiry returns the absolute session lifetime.
func (s *SessionService) Expiry() time.Duration {
	return s.expiryTime
}

func (s *SessionService) generateToken(admin *models.AdminCredential, sessionID uuid.UUID) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		AdminID:               admin.ID,
		Username:              admin.Username,
		Email:                 admin.Email,
		SessionID:             sessionID,
		RequirePasswordChange: admin.RequirePasswordChange,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiryTime)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "studio-admin-service",
			Subject:   admin.ID.String(),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// parseUnchecked validates the signature but skips the session-row check.
// Logout uses it so an already-revoked token still resolves to its session.
func (s *SessionService) parseUnchecked(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
