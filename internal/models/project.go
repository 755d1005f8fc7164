package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProjectStatus is the closed set of lifecycle states for a client engagement.
type ProjectStatus string

const (
	StatusInquiry     ProjectStatus = "inquiry"
	StatusPlanning    ProjectStatus = "planning"
	StatusDevelopment ProjectStatus = "development"
	StatusReview      ProjectStatus = "review"
	StatusCompleted   ProjectStatus = "completed"
	StatusCancelled   ProjectStatus = "cancelled"
)

// ProjectStatuses lists every valid status in lifecycle order.
func ProjectStatuses() []ProjectStatus {
	return []ProjectStatus{
		StatusInquiry,
		StatusPlanning,
		StatusDevelopment,
		StatusReview,
		StatusCompleted,
		StatusCancelled,
	}
}

// ParseProjectStatus validates a raw status string against the closed set.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	switch ProjectStatus(s) {
	case StatusInquiry, StatusPlanning, StatusDevelopment, StatusReview, StatusCompleted, StatusCancelled:
		return ProjectStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown project status %q", ErrInvalidInput, s)
}

// Display returns the human-readable label used by the admin dashboard.
func (s ProjectStatus) Display() string {
	switch s {
	case StatusInquiry:
		return "Initial Inquiry"
	case StatusPlanning:
		return "Planning & Design"
	case StatusDevelopment:
		return "Development"
	case StatusReview:
		return "Client Review"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// IsTerminal reports whether the status ends the engagement.
func (s ProjectStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// EventType is the closed set of timeline event kinds.
type EventType string

const (
	EventStatusChange   EventType = "status_change"
	EventMilestone      EventType = "milestone"
	EventNote           EventType = "note"
	EventFileUpload     EventType = "file_upload"
	EventClientFeedback EventType = "client_feedback"
	EventMeeting        EventType = "meeting"
	EventPayment        EventType = "payment"
)

// ParseEventType validates a raw event type string against the closed set.
func ParseEventType(s string) (EventType, error) {
	switch EventType(s) {
	case EventStatusChange, EventMilestone, EventNote, EventFileUpload, EventClientFeedback, EventMeeting, EventPayment:
		return EventType(s), nil
	}
	return "", fmt.Errorf("%w: unknown event type %q", ErrInvalidInput, s)
}

// Project models a client engagement moving through the lifecycle states.
type Project struct {
	ID                 uuid.UUID     `json:"id" db:"id"`
	ClientName         string        `json:"client_name" db:"client_name"`
	ProjectName        string        `json:"project_name" db:"project_name"`
	ProjectType        string        `json:"project_type" db:"project_type"`
	Status             ProjectStatus `json:"status" db:"status"`
	Budget             *string       `json:"budget" db:"budget"`
	Timeline           *string       `json:"timeline" db:"timeline"`
	Description        *string       `json:"description" db:"description"`
	ClientEmail        string        `json:"client_email" db:"client_email"`
	ClientPhone        *string       `json:"client_phone" db:"client_phone"`
	InquiryDate        time.Time     `json:"inquiry_date" db:"inquiry_date"`
	StartDate          *time.Time    `json:"start_date" db:"start_date"`
	ExpectedCompletion *time.Time    `json:"expected_completion" db:"expected_completion"`
	ActualCompletion   *time.Time    `json:"actual_completion" db:"actual_completion"`
	ProgressPercentage int           `json:"progress_percentage" db:"progress_percentage"`
	CurrentPhase       *string       `json:"current_phase" db:"current_phase"`
	NextMilestone      *string       `json:"next_milestone" db:"next_milestone"`
	WebsiteURL         *string       `json:"website_url" db:"website_url"`
	Notes              *string       `json:"notes" db:"notes"`
	IntakeSubmissionID *uuid.UUID    `json:"intake_submission_id" db:"intake_submission_id"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" db:"updated_at"`

	TimelineEvents []TimelineEvent `json:"timeline_events,omitempty"`
}

// IsOverdue reports whether an active project has passed its expected completion.
func (p *Project) IsOverdue() bool {
	if p.ExpectedCompletion == nil || p.Status.IsTerminal() {
		return false
	}
	return time.Now().After(*p.ExpectedCompletion)
}

// DaysSinceInquiry returns the whole days elapsed since the initial inquiry.
func (p *Project) DaysSinceInquiry() int {
	return int(time.Since(p.InquiryDate).Hours() / 24)
}

// TimelineEvent is one immutable audit record in a project's history.
// Events are append-only: no updates, no deletes.
type TimelineEvent struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	ProjectID   uuid.UUID      `json:"project_id" db:"project_id"`
	EventType   EventType      `json:"event_type" db:"event_type"`
	Title       string         `json:"title" db:"title"`
	Description *string        `json:"description" db:"description"`
	EventDate   time.Time      `json:"event_date" db:"event_date"`
	CreatedBy   string         `json:"created_by" db:"created_by"`
	OldStatus   *ProjectStatus `json:"old_status" db:"old_status"`
	NewStatus   *ProjectStatus `json:"new_status" db:"new_status"`
	FileURL     *string        `json:"file_url" db:"file_url"`
	IsMilestone bool           `json:"is_milestone" db:"is_milestone"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}
