package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"studio-admin-service/internal/models"
	"studio-admin-service/internal/repository"
)

// ProjectService owns the project lifecycle: status transitions, progress
// tracking and the append-only timeline.
type ProjectService struct {
	projects repository.ProjectRepositoryInterface
	leads    repository.LeadRepositoryInterface
}

// StatusUpdate carries one status/progress change request for a project.
// Pointer fields are optional; nil means leave the current value alone.
type StatusUpdate struct {
	Status             models.ProjectStatus
	Progress           *int
	CurrentPhase       *string
	NextMilestone      *string
	Notes              *string
	ExpectedCompletion *time.Time
	ChangedBy          string
	EventDescription   string
}

// NewProjectService creates a new project service
func NewProjectService(projects repository.ProjectRepositoryInterface, leads repository.LeadRepositoryInterface) *ProjectService {
	return &ProjectService{projects: projects, leads: leads}
}

// clampProgress snaps a requested progress value into the 0..100 range.
// Out-of-range values are adjusted silently rather than rejected.
func clampProgress(progress int) int {
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// CreateProject persists a new project and records its opening timeline
// event. A missing status defaults to inquiry.
func (s *ProjectService) CreateProject(project *models.Project, createdBy string) (*models.Project, error) {
	if project.Status == "" {
		project.Status = models.StatusInquiry
	}
	if _, err := models.ParseProjectStatus(string(project.Status)); err != nil {
		return nil, err
	}
	project.ProgressPercentage = clampProgress(project.ProgressPercentage)
	if project.InquiryDate.IsZero() {
		project.InquiryDate = time.Now()
	}

	if err := s.projects.Create(project); err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Project created with status: %s", project.Status.Display())
	event := &models.TimelineEvent{
		ProjectID:   project.ID,
		EventType:   models.EventStatusChange,
		Title:       "Project Created",
		Description: &description,
		NewStatus:   &project.Status,
		CreatedBy:   createdBy,
		EventDate:   time.Now(),
	}
	if err := s.projects.AddEvent(event); err != nil {
		return nil, err
	}
	project.TimelineEvents = []models.TimelineEvent{*event}
	return project, nil
}

// UpdateStatus applies one status/progress change. When the status actually
// changes it records exactly one status_change event carrying both the old
// and new values, atomically with the project update; a same-status update
// records nothing. Setting completed on a project with no completion date
// stamps it and forces progress to 100; an already stamped date is kept.
func (s *ProjectService) UpdateStatus(projectID uuid.UUID, update StatusUpdate) (*models.Project, *models.TimelineEvent, error) {
	newStatus, err := models.ParseProjectStatus(string(update.Status))
	if err != nil {
		return nil, nil, err
	}

	project, err := s.projects.GetByID(projectID)
	if err != nil {
		return nil, nil, err
	}
	oldStatus := project.Status

	project.Status = newStatus
	if update.Progress != nil {
		project.ProgressPercentage = clampProgress(*update.Progress)
	}
	if update.CurrentPhase != nil {
		project.CurrentPhase = update.CurrentPhase
	}
	if update.NextMilestone != nil {
		project.NextMilestone = update.NextMilestone
	}
	if update.Notes != nil {
		project.Notes = update.Notes
	}
	if update.ExpectedCompletion != nil {
		project.ExpectedCompletion = update.ExpectedCompletion
	}

	if newStatus == models.StatusCompleted && project.ActualCompletion == nil {
		now := time.Now()
		project.ActualCompletion = &now
		project.ProgressPercentage = 100
	}

	var event *models.TimelineEvent
	if newStatus != oldStatus {
		description := update.EventDescription
		if description == "" {
			description = fmt.Sprintf("Status changed from %s to %s", oldStatus.Display(), newStatus.Display())
		}
		old := oldStatus
		event = &models.TimelineEvent{
			ProjectID:   project.ID,
			EventType:   models.EventStatusChange,
			Title:       fmt.Sprintf("Status: %s", newStatus.Display()),
			Description: &description,
			OldStatus:   &old,
			NewStatus:   &project.Status,
			CreatedBy:   update.ChangedBy,
			EventDate:   time.Now(),
		}
	}

	if err := s.projects.UpdateStatus(project, event); err != nil {
		return nil, nil, err
	}
	return project, event, nil
}

// UpdateDetails edits descriptive fields without touching status or the
// timeline.
func (s *ProjectService) UpdateDetails(project *models.Project) error {
	project.ProgressPercentage = clampProgress(project.ProgressPercentage)
	return s.projects.UpdateDetails(project)
}

// AddEvent appends one manual timeline entry (milestone, note, meeting and
// so on). Status changes go through UpdateStatus instead.
func (s *ProjectService) AddEvent(projectID uuid.UUID, eventType models.EventType, title, description, createdBy string) (*models.TimelineEvent, error) {
	parsed, err := models.ParseEventType(string(eventType))
	if err != nil {
		return nil, err
	}
	if parsed == models.EventStatusChange {
		return nil, fmt.Errorf("%w: status_change events are recorded automatically on status updates", models.ErrInvalidInput)
	}
	if _, err := s.projects.GetByID(projectID); err != nil {
		return nil, err
	}

	event := &models.TimelineEvent{
		ProjectID:   projectID,
		EventType:   parsed,
		Title:       title,
		CreatedBy:   createdBy,
		EventDate:   time.Now(),
		IsMilestone: parsed == models.EventMilestone,
	}
	if description != "" {
		event.Description = &description
	}
	if err := s.projects.AddEvent(event); err != nil {
		return nil, err
	}
	return event, nil
}

// GetProject returns one project with its timeline loaded newest-first.
func (s *ProjectService) GetProject(projectID uuid.UUID) (*models.Project, error) {
	project, err := s.projects.GetByID(projectID)
	if err != nil {
		return nil, err
	}
	events, err := s.projects.ListEvents(projectID)
	if err != nil {
		return nil, err
	}
	project.TimelineEvents = events
	return project, nil
}

// ListProjects returns all projects, newest first.
func (s *ProjectService) ListProjects() ([]models.Project, error) {
	return s.projects.List()
}

// ListEvents returns a project's timeline, newest first.
func (s *ProjectService) ListEvents(projectID uuid.UUID) ([]models.TimelineEvent, error) {
	if _, err := s.projects.GetByID(projectID); err != nil {
		return nil, err
	}
	return s.projects.ListEvents(projectID)
}

// PromoteIntake turns an intake submission into an inquiry-status project,
// linking the submission so the origin stays traceable.
func (s *ProjectService) PromoteIntake(intakeID uuid.UUID, createdBy string) (*models.Project, error) {
	intake, err := s.leads.GetIntake(intakeID)
	if err != nil {
		return nil, err
	}

	project := &models.Project{
		ClientName:         intake.ContactName,
		ClientEmail:        intake.Email,
		ClientPhone:        intake.Phone,
		ProjectName:        fmt.Sprintf("%s Website", intake.BusinessName),
		ProjectType:        intake.WebsiteType,
		Status:             models.StatusInquiry,
		InquiryDate:        intake.SubmittedAt,
		IntakeSubmissionID: &intake.ID,
	}
	if intake.Budget != "" {
		budget := intake.Budget
		project.Budget = &budget
	}
	if intake.Timeline != "" {
		timeline := intake.Timeline
		project.Timeline = &timeline
	}
	if intake.ProjectDescription != "" {
		desc := intake.ProjectDescription
		project.Description = &desc
	}

	return s.CreateProject(project, createdBy)
}
