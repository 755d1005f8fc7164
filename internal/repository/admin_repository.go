package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"studio-admin-service/internal/models"
)

const uniqueViolation = "23505"

type AdminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{
		db: db,
	}
}

const adminColumns = `
	id, username, email, password_hash, custom_login_url, active_status,
	login_attempts, last_login, locked_until, password_updated_at,
	require_password_change, created_at, updated_at
`

// Count returns the number of admin credentials.
func (r *AdminRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM admin_credentials").Scan(&count)
	return count, err
}

// CreateFirstAdmin inserts the bootstrap credential. The count check and the
// insert run in one transaction so two concurrent setup requests cannot both
// create an admin.
func (r *AdminRepository) CreateFirstAdmin(admin *models.AdminCredential) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("LOCK TABLE admin_credentials IN SHARE ROW EXCLUSIVE MODE"); err != nil {
		return err
	}

	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM admin_credentials").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return models.ErrAdminExists
	}

	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	now := time.Now()
	admin.CreatedAt = now
	admin.UpdatedAt = now
	if admin.PasswordUpdatedAt.IsZero() {
		admin.PasswordUpdatedAt = now
	}

	_, err = tx.Exec(`
		INSERT INTO admin_credentials (id, username, email, password_hash, custom_login_url,
			active_status, login_attempts, password_updated_at, require_password_change,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, admin.ID, admin.Username, admin.Email, admin.PasswordHash, admin.CustomLoginURL,
		admin.ActiveStatus, admin.LoginAttempts, admin.PasswordUpdatedAt,
		admin.RequirePasswordChange, admin.CreatedAt, admin.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrLoginURLTaken
		}
		return err
	}

	return tx.Commit()
}

// GetByID retrieves a credential by ID
func (r *AdminRepository) GetByID(adminID uuid.UUID) (*models.AdminCredential, error) {
	query := "SELECT " + adminColumns + " FROM admin_credentials WHERE id = $1"
	return r.getByQuery(query, adminID)
}

// GetByUsername retrieves a credential by username
func (r *AdminRepository) GetByUsername(username string) (*models.AdminCredential, error) {
	query := "SELECT " + adminColumns + " FROM admin_credentials WHERE username = $1"
	return r.getByQuery(query, username)
}

// GetByLoginURL resolves a custom login path segment to a credential.
// Returns models.ErrNotFound when no credential matches; callers must render
// the generic not-found response so valid paths cannot be enumerated.
func (r *AdminRepository) GetByLoginURL(segment string) (*models.AdminCredential, error) {
	query := "SELECT " + adminColumns + " FROM admin_credentials WHERE custom_login_url = $1"
	return r.getByQuery(query, segment)
}

// List returns all admin credentials ordered by creation time.
func (r *AdminRepository) List() ([]models.AdminCredential, error) {
	rows, err := r.db.Query("SELECT " + adminColumns + " FROM admin_credentials ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []models.AdminCredential
	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, *admin)
	}
	return admins, rows.Err()
}

// RecordFailedAttempt increments the consecutive failure counter and sets the
// lockout timestamp when the threshold is reached. The read-modify-write runs
// under a row lock so concurrent attempts against the same credential cannot
// both observe the pre-increment count.
func (r *AdminRepository) RecordFailedAttempt(adminID uuid.UUID, threshold int, window time.Duration) (int, *time.Time, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, nil, err
	}
	defer tx.Rollback()

	var attempts int
	err = tx.QueryRow(
		"SELECT login_attempts FROM admin_credentials WHERE id = $1 FOR UPDATE", adminID,
	).Scan(&attempts)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil, models.ErrNotFound
		}
		return 0, nil, err
	}

	attempts++
	var lockedUntil *time.Time
	if attempts >= threshold {
		t := time.Now().Add(window)
		lockedUntil = &t
	}

	_, err = tx.Exec(`
		UPDATE admin_credentials
		SET login_attempts = $2, locked_until = $3, updated_at = NOW()
		WHERE id = $1
	`, adminID, attempts, lockedUntil)
	if err != nil {
		return 0, nil, err
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, err
	}
	return attempts, lockedUntil, nil
}

// RecordSuccessfulLogin resets the failure counter, clears any lockout and
// stamps last_login.
func (r *AdminRepository) RecordSuccessfulLogin(adminID uuid.UUID) error {
	result, err := r.db.Exec(`
		UPDATE admin_credentials
		SET login_attempts = 0, locked_until = NULL, last_login = NOW(), updated_at = NOW()
		WHERE id = $1
	`, adminID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Unlock clears both the failure counter and the lockout timestamp.
func (r *AdminRepository) Unlock(adminID uuid.UUID) error {
	result, err := r.db.Exec(`
		UPDATE admin_credentials
		SET login_attempts = 0, locked_until = NULL, updated_at = NOW()
		WHERE id = $1
	`, adminID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// UpdatePassword stores a new password hash, stamps password_updated_at and
// clears the forced-change flag.
func (r *AdminRepository) UpdatePassword(adminID uuid.UUID, passwordHash string) error {
	result, err := r.db.Exec(`
		UPDATE admin_credentials
		SET password_hash = $2, password_updated_at = NOW(),
			require_password_change = FALSE, updated_at = NOW()
		WHERE id = $1
	`, adminID, passwordHash)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// UpdateLoginURL atomically replaces the custom login path segment. The old
// segment stops resolving the moment the update commits.
func (r *AdminRepository) UpdateLoginURL(adminID uuid.UUID, segment string) error {
	result, err := r.db.Exec(`
		UPDATE admin_credentials
		SET custom_login_url = $2, updated_at = NOW()
		WHERE id = $1
	`, adminID, segment)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrLoginURLTaken
		}
		return err
	}
	return requireRow(result)
}

// SetActiveStatus activates or deactivates a credential.
func (r *AdminRepository) SetActiveStatus(adminID uuid.UUID, active bool) error {
	result, err := r.db.Exec(`
		UPDATE admin_credentials
		SET active_status = $2, updated_at = NOW()
		WHERE id = $1
	`, adminID, active)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// SetRequirePasswordChange flags the credential so the next successful login
// is routed into the change-password flow.
func (r *AdminRepository) SetRequirePasswordChange(adminID uuid.UUID, required bool) error {
	result, err := r.db.Exec(`
		UPDATE admin_credentials
		SET require_password_change = $2, updated_at = NOW()
		WHERE id = $1
	`, adminID, required)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Session management

// CreateSession stores a new admin session
func (r *AdminRepository) CreateSession(session *models.AdminSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO admin_sessions (id, admin_id, token, expires_at, is_active,
			ip_address, user_agent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, session.ID, session.AdminID, session.Token, session.ExpiresAt, session.IsActive,
		session.IPAddress, session.UserAgent, session.CreatedAt, session.UpdatedAt)
	return err
}

// GetSession retrieves a session by ID
func (r *AdminRepository) GetSession(sessionID uuid.UUID) (*models.AdminSession, error) {
	session := &models.AdminSession{}
	var ipAddress, userAgent sql.NullString

	err := r.db.QueryRow(`
		SELECT id, admin_id, token, expires_at, is_active, ip_address, user_agent,
			created_at, updated_at
		FROM admin_sessions WHERE id = $1
	`, sessionID).Scan(
		&session.ID, &session.AdminID, &session.Token, &session.ExpiresAt,
		&session.IsActive, &ipAddress, &userAgent, &session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	session.IPAddress = ipAddress.String
	session.UserAgent = userAgent.String
	return session, nil
}

// DeactivateSession revokes one session immediately and unconditionally.
func (r *AdminRepository) DeactivateSession(sessionID uuid.UUID) error {
	_, err := r.db.Exec(`
		UPDATE admin_sessions SET is_active = FALSE, updated_at = NOW() WHERE id = $1
	`, sessionID)
	return err
}

// DeactivateAdminSessions revokes every session belonging to one credential.
func (r *AdminRepository) DeactivateAdminSessions(adminID uuid.UUID) error {
	_, err := r.db.Exec(`
		UPDATE admin_sessions SET is_active = FALSE, updated_at = NOW() WHERE admin_id = $1
	`, adminID)
	return err
}

// CleanupExpiredSessions removes expired session rows.
func (r *AdminRepository) CleanupExpiredSessions() (int64, error) {
	result, err := r.db.Exec("DELETE FROM admin_sessions WHERE expires_at < NOW()")
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Helpers

func (r *AdminRepository) getByQuery(query string, args ...interface{}) (*models.AdminCredential, error) {
	row := r.db.QueryRow(query, args...)
	return scanAdmin(row)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAdmin(row rowScanner) (*models.AdminCredential, error) {
	admin := &models.AdminCredential{}
	var lastLogin, lockedUntil sql.NullTime

	err := row.Scan(
		&admin.ID, &admin.Username, &admin.Email, &admin.PasswordHash,
		&admin.CustomLoginURL, &admin.ActiveStatus, &admin.LoginAttempts,
		&lastLogin, &lockedUntil, &admin.PasswordUpdatedAt,
		&admin.RequirePasswordChange, &admin.CreatedAt, &admin.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	if lastLogin.Valid {
		admin.LastLogin = &lastLogin.Time
	}
	if lockedUntil.Valid {
		admin.LockedUntil = &lockedUntil.Time
	}
	return admin, nil
}

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == uniqueViolation
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrNotFound
	}
	return nil
}
