package models

import (
	"time"

	"github.com/google/uuid"
)

// ContactSubmission is one message sent through the public contact form.
type ContactSubmission struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Email       string    `json:"email" db:"email"`
	Phone       *string   `json:"phone" db:"phone"`
	Subject     string    `json:"subject" db:"subject"`
	Message     string    `json:"message" db:"message"`
	SubmittedAt time.Time `json:"submitted_at" db:"submitted_at"`
}

// IntakeSubmission is one project intake questionnaire from a prospective
// client. Intakes can later be promoted into a Project.
type IntakeSubmission struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	BusinessName       string    `json:"business_name" db:"business_name"`
	ContactName        string    `json:"contact_name" db:"contact_name"`
	Email              string    `json:"email" db:"email"`
	Phone              *string   `json:"phone" db:"phone"`
	WebsiteType        string    `json:"website_type" db:"website_type"`
	Timeline           string    `json:"timeline" db:"timeline"`
	Budget             string    `json:"budget" db:"budget"`
	ProjectDescription string    `json:"project_description" db:"project_description"`
	AdditionalNotes    *string   `json:"additional_notes" db:"additional_notes"`
	SubmittedAt        time.Time `json:"submitted_at" db:"submitted_at"`
}

// NewsletterSubscription is one mailing-list signup.
type NewsletterSubscription struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	SubscribedAt time.Time `json:"subscribed_at" db:"subscribed_at"`
	IsActive     bool      `json:"is_active" db:"is_active"`
}
