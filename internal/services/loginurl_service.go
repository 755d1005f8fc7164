package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"

	"studio-admin-service/internal/models"
	"studio-admin-service/internal/repository"
	"github.com/google/uuid"
)

// loginURLPattern restricts custom segments to URL-safe characters.
var loginURLPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)

// loginURLEntropyBytes is the random entropy behind generated segments.
const loginURLEntropyBytes = 16

// maxGenerateRetries bounds collision retries against the uniqueness
// constraint. With 16 bytes of entropy a single retry is already unlikely.
const maxGenerateRetries = 3

// LoginURLService manages the per-admin randomized login path segments.
type LoginURLService struct {
	repo repository.AdminRepositoryInterface
}

// NewLoginURLService creates a new login URL service
func NewLoginURLService(repo repository.AdminRepositoryInterface) *LoginURLService {
	return &LoginURLService{
		repo: repo,
	}
}

// Generate produces a fresh unguessable path segment from a
// cryptographically secure random source.
func (s *LoginURLService) Generate() (string, error) {
	bytes := make([]byte, loginURLEntropyBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate login url: %w", err)
	}
	return "admin-" + base64.RawURLEncoding.EncodeToString(bytes), nil
}

// IsValidSegment reports whether a custom segment uses only the allowed
// character set.
func (s *LoginURLService) IsValidSegment(segment string) bool {
	return loginURLPattern.MatchString(segment)
}

// Resolve maps a path segment to its credential. Returns models.ErrNotFound
// for unknown segments; the handler renders the generic 404 body so a probe
// cannot distinguish a wrong login path from any other missing resource.
func (s *LoginURLService) Resolve(segment string) (*models.AdminCredential, error) {
	return s.repo.GetByLoginURL(segment)
}

// Rotate assigns a freshly generated segment to the credential, retrying on
// the rare uniqueness collision. The old segment stops resolving immediately.
func (s *LoginURLService) Rotate(adminID uuid.UUID) (string, error) {
	for i := 0; i < maxGenerateRetries; i++ {
		segment, err := s.Generate()
		if err != nil {
			return "", err
		}

		err = s.repo.UpdateLoginURL(adminID, segment)
		if err == nil {
			return segment, nil
		}
		if err != models.ErrLoginURLTaken {
			return "", err
		}
	}
	return "", fmt.Errorf("failed to generate a unique login url after %d attempts", maxGenerateRetries)
}

// ErrInvalidLoginURL is returned for custom segments outside the allowed
// character set.
var ErrInvalidLoginURL = errors.New("login url may only contain letters, numbers, hyphens, and underscores")

// SetCustom assigns a caller-chosen segment after validating its character
// set. Uniqueness is enforced by the store.
func (s *LoginURLService) SetCustom(adminID uuid.UUID, segment string) error {
	if !s.IsValidSegment(segment) {
		return ErrInvalidLoginURL
	}
	return s.repo.UpdateLoginURL(adminID, segment)
}
