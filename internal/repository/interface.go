package repository

import (
	"time"

	"github.com/google/uuid"

	"studio-admin-service/internal/models"
)

// AdminRepositoryInterface defines the contract for credential and session
// storage. Services depend on this so tests can substitute an in-memory fake.
type AdminRepositoryInterface interface {
	Count() (int, error)
	CreateFirstAdmin(admin *models.AdminCredential) error
	GetByID(adminID uuid.UUID) (*models.AdminCredential, error)
	GetByUsername(username string) (*models.AdminCredential, error)
	GetByLoginURL(segment string) (*models.AdminCredential, error)
	List() ([]models.AdminCredential, error)
	RecordFailedAttempt(adminID uuid.UUID, threshold int, window time.Duration) (int, *time.Time, error)
	RecordSuccessfulLogin(adminID uuid.UUID) error
	Unlock(adminID uuid.UUID) error
	UpdatePassword(adminID uuid.UUID, passwordHash string) error
	UpdateLoginURL(adminID uuid.UUID, segment string) error
	SetActiveStatus(adminID uuid.UUID, active bool) error
	SetRequirePasswordChange(adminID uuid.UUID, required bool) error

	CreateSession(session *models.AdminSession) error
	GetSession(sessionID uuid.UUID) (*models.AdminSession, error)
	DeactivateSession(sessionID uuid.UUID) error
	DeactivateAdminSessions(adminID uuid.UUID) error
	CleanupExpiredSessions() (int64, error)
}

// ProjectRepositoryInterface defines the contract for project and timeline
// event storage.
type ProjectRepositoryInterface interface {
	Create(project *models.Project) error
	GetByID(projectID uuid.UUID) (*models.Project, error)
	List() ([]models.Project, error)
	UpdateStatus(project *models.Project, event *models.TimelineEvent) error
	UpdateDetails(project *models.Project) error
	AddEvent(event *models.TimelineEvent) error
	ListEvents(projectID uuid.UUID) ([]models.TimelineEvent, error)
}

// LeadRepositoryInterface defines the contract for contact, intake and
// newsletter storage.
type LeadRepositoryInterface interface {
	CreateContact(contact *models.ContactSubmission) error
	ListContacts() ([]models.ContactSubmission, error)
	CreateIntake(intake *models.IntakeSubmission) error
	GetIntake(intakeID uuid.UUID) (*models.IntakeSubmission, error)
	ListIntakes() ([]models.IntakeSubmission, error)
	Subscribe(email string) (*models.NewsletterSubscription, error)
}

// Compile-time conformance checks.
var (
	_ AdminRepositoryInterface   = (*AdminRepository)(nil)
	_ ProjectRepositoryInterface = (*ProjectRepository)(nil)
	_ LeadRepositoryInterface    = (*LeadRepository)(nil)
)
