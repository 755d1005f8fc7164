package services

import (
	"time"

	"github.com/google/uuid"

	"studio-admin-service/internal/models"
)

// fakeAdminRepo is an in-memory stand-in for the Postgres admin repository.
type fakeAdminRepo struct {
	admins   map[uuid.UUID]*models.AdminCredential
	sessions map[uuid.UUID]*models.AdminSession
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{
		admins:   make(map[uuid.UUID]*models.AdminCredential),
		sessions: make(map[uuid.UUID]*models.AdminSession),
	}
}

func (f *fakeAdminRepo) add(admin *models.AdminCredential) *models.AdminCredential {
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	if admin.PasswordUpdatedAt.IsZero() {
		admin.PasswordUpdatedAt = time.Now()
	}
	f.admins[admin.ID] = admin
	return admin
}

func (f *fakeAdminRepo) Count() (int, error) {
	return len(f.admins), nil
}

func (f *fakeAdminRepo) CreateFirstAdmin(admin *models.AdminCredential) error {
	if len(f.admins) > 0 {
		return models.ErrAdminExists
	}
	for _, existing := range f.admins {
		if existing.CustomLoginURL == admin.CustomLoginURL {
			return models.ErrLoginURLTaken
		}
	}
	admin.ID = uuid.New()
	admin.PasswordUpdatedAt = time.Now()
	f.admins[admin.ID] = admin
	return nil
}

func (f *fakeAdminRepo) GetByID(adminID uuid.UUID) (*models.AdminCredential, error) {
	admin, ok := f.admins[adminID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return admin, nil
}

func (f *fakeAdminRepo) GetByUsername(username string) (*models.AdminCredential, error) {
	for _, admin := range f.admins {
		if admin.Username == username {
			return admin, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeAdminRepo) GetByLoginURL(segment string) (*models.AdminCredential, error) {
	for _, admin := range f.admins {
		if admin.CustomLoginURL == segment {
			return admin, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeAdminRepo) List() ([]models.AdminCredential, error) {
	out := make([]models.AdminCredential, 0, len(f.admins))
	for _, admin := range f.admins {
		out = append(out, *admin)
	}
	return out, nil
}

func (f *fakeAdminRepo) RecordFailedAttempt(adminID uuid.UUID, threshold int, window time.Duration) (int, *time.Time, error) {
	admin, ok := f.admins[adminID]
	if !ok {
		return 0, nil, models.ErrNotFound
	}
	admin.LoginAttempts++
	if admin.LoginAttempts >= threshold {
		until := time.Now().Add(window)
		admin.LockedUntil = &until
	}
	return admin.LoginAttempts, admin.LockedUntil, nil
}

func (f *fakeAdminRepo) RecordSuccessfulLogin(adminID uuid.UUID) error {
	admin, ok := f.admins[adminID]
	if !ok {
		return models.ErrNotFound
	}
	admin.LoginAttempts = 0
	admin.LockedUntil = nil
	now := time.Now()
	admin.LastLogin = &now
	return nil
}

func (f *fakeAdminRepo) Unlock(adminID uuid.UUID) error {
	admin, ok := f.admins[adminID]
	if !ok {
		return models.ErrNotFound
	}
	admin.LoginAttempts = 0
	admin.LockedUntil = nil
	return nil
}

func (f *fakeAdminRepo) UpdatePassword(adminID uuid.UUID, passwordHash string) error {
	admin, ok := f.admins[adminID]
	if !ok {
		return models.ErrNotFound
	}
	admin.PasswordHash = passwordHash
	admin.PasswordUpdatedAt = time.Now()
	admin.RequirePasswordChange = false
	return nil
}

func (f *fakeAdminRepo) UpdateLoginURL(adminID uuid.UUID, segment string) error {
	for id, admin := range f.admins {
		if id != adminID && admin.CustomLoginURL == segment {
			return models.ErrLoginURLTaken
		}
	}
	admin, ok := f.admins[adminID]
	if !ok {
		return models.ErrNotFound
	}
	admin.CustomLoginURL = segment
	return nil
}

func (f *fakeAdminRepo) SetActiveStatus(adminID uuid.UUID, active bool) error {
	admin, ok := f.admins[adminID]
	if !ok {
		return models.ErrNotFound
	}
	admin.ActiveStatus = active
	return nil
}

func (f *fakeAdminRepo) SetRequirePasswordChange(adminID uuid.UUID, required bool) error {
	admin, ok := f.admins[adminID]
	if !ok {
		return models.ErrNotFound
	}
	admin.RequirePasswordChange = required
	return nil
}

func (f *fakeAdminRepo) CreateSession(session *models.AdminSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	session.IsActive = true
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeAdminRepo) GetSession(sessionID uuid.UUID) (*models.AdminSession, error) {
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return session, nil
}

func (f *fakeAdminRepo) DeactivateSession(sessionID uuid.UUID) error {
	session, ok := f.sessions[sessionID]
	if !ok {
		return models.ErrNotFound
	}
	session.IsActive = false
	return nil
}

func (f *fakeAdminRepo) DeactivateAdminSessions(adminID uuid.UUID) error {
	for _, session := range f.sessions {
		if session.AdminID == adminID {
			session.IsActive = false
		}
	}
	return nil
}

func (f *fakeAdminRepo) CleanupExpiredSessions() (int64, error) {
	var removed int64
	for id, session := range f.sessions {
		if session.ExpiresAt.Before(time.Now()) {
			delete(f.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// fakeProjectRepo is an in-memory stand-in for the Postgres project repository.
type fakeProjectRepo struct {
	projects map[uuid.UUID]*models.Project
	events   []models.TimelineEvent
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[uuid.UUID]*models.Project)}
}

func (f *fakeProjectRepo) Create(project *models.Project) error {
	project.ID = uuid.New()
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	f.projects[project.ID] = project
	return nil
}

func (f *fakeProjectRepo) GetByID(projectID uuid.UUID) (*models.Project, error) {
	project, ok := f.projects[projectID]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *project
	return &copied, nil
}

func (f *fakeProjectRepo) List() ([]models.Project, error) {
	out := make([]models.Project, 0, len(f.projects))
	for _, project := range f.projects {
		out = append(out, *project)
	}
	return out, nil
}

func (f *fakeProjectRepo) UpdateStatus(project *models.Project, event *models.TimelineEvent) error {
	stored, ok := f.projects[project.ID]
	if !ok {
		return models.ErrNotFound
	}
	*stored = *project
	stored.UpdatedAt = time.Now()
	if event != nil {
		event.ID = uuid.New()
		f.events = append(f.events, *event)
	}
	return nil
}

func (f *fakeProjectRepo) UpdateDetails(project *models.Project) error {
	stored, ok := f.projects[project.ID]
	if !ok {
		return models.ErrNotFound
	}
	*stored = *project
	stored.UpdatedAt = time.Now()
	return nil
}

func (f *fakeProjectRepo) AddEvent(event *models.TimelineEvent) error {
	event.ID = uuid.New()
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeProjectRepo) ListEvents(projectID uuid.UUID) ([]models.TimelineEvent, error) {
	var out []models.TimelineEvent
	for i := len(f.events) - 1; i >= 0; i-- {
		if f.events[i].ProjectID == projectID {
			out = append(out, f.events[i])
		}
	}
	return out, nil
}

func (f *fakeProjectRepo) eventsFor(projectID uuid.UUID) []models.TimelineEvent {
	var out []models.TimelineEvent
	for _, event := range f.events {
		if event.ProjectID == projectID {
			out = append(out, event)
		}
	}
	return out
}

// fakeLeadRepo is an in-memory stand-in for the Postgres lead repository.
type fakeLeadRepo struct {
	contacts []models.ContactSubmission
	intakes  map[uuid.UUID]*models.IntakeSubmission
	subs     map[string]*models.NewsletterSubscription
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{
		intakes: make(map[uuid.UUID]*models.IntakeSubmission),
		subs:    make(map[string]*models.NewsletterSubscription),
	}
}

func (f *fakeLeadRepo) CreateContact(contact *models.ContactSubmission) error {
	contact.ID = uuid.New()
	contact.SubmittedAt = time.Now()
	f.contacts = append(f.contacts, *contact)
	return nil
}

func (f *fakeLeadRepo) ListContacts() ([]models.ContactSubmission, error) {
	return f.contacts, nil
}

func (f *fakeLeadRepo) CreateIntake(intake *models.IntakeSubmission) error {
	intake.ID = uuid.New()
	intake.SubmittedAt = time.Now()
	f.intakes[intake.ID] = intake
	return nil
}

func (f *fakeLeadRepo) GetIntake(intakeID uuid.UUID) (*models.IntakeSubmission, error) {
	intake, ok := f.intakes[intakeID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return intake, nil
}

func (f *fakeLeadRepo) ListIntakes() ([]models.IntakeSubmission, error) {
	out := make([]models.IntakeSubmission, 0, len(f.intakes))
	for _, intake := range f.intakes {
		out = append(out, *intake)
	}
	return out, nil
}

func (f *fakeLeadRepo) Subscribe(email string) (*models.NewsletterSubscription, error) {
	if existing, ok := f.subs[email]; ok {
		existing.IsActive = true
		return existing, nil
	}
	sub := &models.NewsletterSubscription{
		ID:           uuid.New(),
		Email:        email,
		SubscribedAt: time.Now(),
		IsActive:     true,
	}
	f.subs[email] = sub
	return sub, nil
}
