package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"studio-admin-service/internal/models"
)

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{
		db: db,
	}
}

const projectColumns = `
	id, client_name, project_name, project_type, status, budget, timeline,
	description, client_email, client_phone, inquiry_date, start_date,
	expected_completion, actual_completion, progress_percentage, current_phase,
	next_milestone, website_url, notes, intake_submission_id, created_at, updated_at
`

// Create inserts a project
func (r *ProjectRepository) Create(project *models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.InquiryDate.IsZero() {
		project.InquiryDate = now
	}
	if project.Status == "" {
		project.Status = models.StatusInquiry
	}

	_, err := r.db.Exec(`
		INSERT INTO projects (id, client_name, project_name, project_type, status,
			budget, timeline, description, client_email, client_phone, inquiry_date,
			start_date, expected_completion, actual_completion, progress_percentage,
			current_phase, next_milestone, website_url, notes, intake_submission_id,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22)
	`, project.ID, project.ClientName, project.ProjectName, project.ProjectType,
		project.Status, project.Budget, project.Timeline, project.Description,
		project.ClientEmail, project.ClientPhone, project.InquiryDate,
		project.StartDate, project.ExpectedCompletion, project.ActualCompletion,
		project.ProgressPercentage, project.CurrentPhase, project.NextMilestone,
		project.WebsiteURL, project.Notes, project.IntakeSubmissionID,
		project.CreatedAt, project.UpdatedAt)
	return err
}

// GetByID retrieves a project by ID
func (r *ProjectRepository) GetByID(projectID uuid.UUID) (*models.Project, error) {
	row := r.db.QueryRow("SELECT "+projectColumns+" FROM projects WHERE id = $1", projectID)
	return scanProject(row)
}

// List returns all projects, newest first.
func (r *ProjectRepository) List() ([]models.Project, error) {
	rows, err := r.db.Query("SELECT " + projectColumns + " FROM projects ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

// UpdateStatus persists a project update together with its status_change
// timeline event in one transaction. A failed event insert rolls back the
// project update, so a transition can never commit without its audit record.
// event may be nil when the status did not change.
func (r *ProjectRepository) UpdateStatus(project *models.Project, event *models.TimelineEvent) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	project.UpdatedAt = time.Now()

	result, err := tx.Exec(`
		UPDATE projects
		SET status = $2, progress_percentage = $3, current_phase = $4,
			next_milestone = $5, notes = $6, start_date = $7,
			expected_completion = $8, actual_completion = $9, updated_at = $10
		WHERE id = $1
	`, project.ID, project.Status, project.ProgressPercentage, project.CurrentPhase,
		project.NextMilestone, project.Notes, project.StartDate,
		project.ExpectedCompletion, project.ActualCompletion, project.UpdatedAt)
	if err != nil {
		return err
	}
	if err := requireRow(result); err != nil {
		return err
	}

	if event != nil {
		if err := insertEvent(tx, event); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// UpdateDetails updates project fields that do not participate in the
// lifecycle state machine.
func (r *ProjectRepository) UpdateDetails(project *models.Project) error {
	project.UpdatedAt = time.Now()

	result, err := r.db.Exec(`
		UPDATE projects
		SET client_name = $2, project_name = $3, project_type = $4, budget = $5,
			timeline = $6, description = $7, client_email = $8, client_phone = $9,
			website_url = $10, notes = $11, updated_at = $12
		WHERE id = $1
	`, project.ID, project.ClientName, project.ProjectName, project.ProjectType,
		project.Budget, project.Timeline, project.Description, project.ClientEmail,
		project.ClientPhone, project.WebsiteURL, project.Notes, project.UpdatedAt)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// AddEvent appends one timeline event. Events are never updated or deleted.
func (r *ProjectRepository) AddEvent(event *models.TimelineEvent) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertEvent(tx, event); err != nil {
		return err
	}
	return tx.Commit()
}

// ListEvents returns a project's timeline, newest first.
func (r *ProjectRepository) ListEvents(projectID uuid.UUID) ([]models.TimelineEvent, error) {
	rows, err := r.db.Query(`
		SELECT id, project_id, event_type, title, description, event_date,
			created_by, old_status, new_status, file_url, is_milestone, created_at
		FROM project_timeline_events
		WHERE project_id = $1
		ORDER BY event_date DESC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.TimelineEvent
	for rows.Next() {
		var event models.TimelineEvent
		var description, oldStatus, newStatus, fileURL sql.NullString

		err := rows.Scan(
			&event.ID, &event.ProjectID, &event.EventType, &event.Title,
			&description, &event.EventDate, &event.CreatedBy,
			&oldStatus, &newStatus, &fileURL, &event.IsMilestone, &event.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if description.Valid {
			event.Description = &description.String
		}
		if oldStatus.Valid {
			s := models.ProjectStatus(oldStatus.String)
			event.OldStatus = &s
		}
		if newStatus.Valid {
			s := models.ProjectStatus(newStatus.String)
			event.NewStatus = &s
		}
		if fileURL.Valid {
			event.FileURL = &fileURL.String
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func insertEvent(tx *sql.Tx, event *models.TimelineEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	now := time.Now()
	event.CreatedAt = now
	if event.EventDate.IsZero() {
		event.EventDate = now
	}

	_, err := tx.Exec(`
		INSERT INTO project_timeline_events (id, project_id, event_type, title,
			description, event_date, created_by, old_status, new_status, file_url,
			is_milestone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, event.ID, event.ProjectID, event.EventType, event.Title, event.Description,
		event.EventDate, event.CreatedBy, event.OldStatus, event.NewStatus,
		event.FileURL, event.IsMilestone, event.CreatedAt)
	return err
}

func scanProject(row rowScanner) (*models.Project, error) {
	project := &models.Project{}
	var budget, timeline, description, clientPhone sql.NullString
	var currentPhase, nextMilestone, websiteURL, notes sql.NullString
	var startDate, expectedCompletion, actualCompletion sql.NullTime
	var intakeID uuid.NullUUID

	err := row.Scan(
		&project.ID, &project.ClientName, &project.ProjectName, &project.ProjectType,
		&project.Status, &budget, &timeline, &description, &project.ClientEmail,
		&clientPhone, &project.InquiryDate, &startDate, &expectedCompletion,
		&actualCompletion, &project.ProgressPercentage, &currentPhase,
		&nextMilestone, &websiteURL, &notes, &intakeID,
		&project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	if budget.Valid {
		project.Budget = &budget.String
	}
	if timeline.Valid {
		project.Timeline = &timeline.String
	}
	if description.Valid {
		project.Description = &description.String
	}
	if clientPhone.Valid {
		project.ClientPhone = &clientPhone.String
	}
	if currentPhase.Valid {
		project.CurrentPhase = &currentPhase.String
	}
	if nextMilestone.Valid {
		project.NextMilestone = &nextMilestone.String
	}
	if websiteURL.Valid {
		project.WebsiteURL = &websiteURL.String
	}
	if notes.Valid {
		project.Notes = &notes.String
	}
	if startDate.Valid {
		project.StartDate = &startDate.Time
	}
	if expectedCompletion.Valid {
		project.ExpectedCompletion = &expectedCompletion.Time
	}
	if actualCompletion.Valid {
		project.ActualCompletion = &actualCompletion.Time
	}
	if intakeID.Valid {
		project.IntakeSubmissionID = &intakeID.UUID
	}
	return project, nil
}
