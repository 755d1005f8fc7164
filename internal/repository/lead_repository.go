package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"studio-admin-service/internal/models"
)

// LeadRepository stores the public lead-capture submissions: contact
// messages, project intakes and newsletter signups.
type LeadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{
		db: db,
	}
}

// CreateContact stores a contact form submission
func (r *LeadRepository) CreateContact(contact *models.ContactSubmission) error {
	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	if contact.SubmittedAt.IsZero() {
		contact.SubmittedAt = time.Now()
	}

	_, err := r.db.Exec(`
		INSERT INTO contact_submissions (id, name, email, phone, subject, message, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, contact.ID, contact.Name, contact.Email, contact.Phone, contact.Subject,
		contact.Message, contact.SubmittedAt)
	return err
}

// ListContacts returns contact submissions, newest first.
func (r *LeadRepository) ListContacts() ([]models.ContactSubmission, error) {
	rows, err := r.db.Query(`
		SELECT id, name, email, phone, subject, message, submitted_at
		FROM contact_submissions ORDER BY submitted_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []models.ContactSubmission
	for rows.Next() {
		var contact models.ContactSubmission
		var phone sql.NullString

		err := rows.Scan(&contact.ID, &contact.Name, &contact.Email, &phone,
			&contact.Subject, &contact.Message, &contact.SubmittedAt)
		if err != nil {
			return nil, err
		}
		if phone.Valid {
			contact.Phone = &phone.String
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

// CreateIntake stores a project intake submission
func (r *LeadRepository) CreateIntake(intake *models.IntakeSubmission) error {
	if intake.ID == uuid.Nil {
		intake.ID = uuid.New()
	}
	if intake.SubmittedAt.IsZero() {
		intake.SubmittedAt = time.Now()
	}

	_, err := r.db.Exec(`
		INSERT INTO intake_submissions (id, business_name, contact_name, email, phone,
			website_type, timeline, budget, project_description, additional_notes, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, intake.ID, intake.BusinessName, intake.ContactName, intake.Email, intake.Phone,
		intake.WebsiteType, intake.Timeline, intake.Budget, intake.ProjectDescription,
		intake.AdditionalNotes, intake.SubmittedAt)
	return err
}

// GetIntake retrieves one intake submission by ID
func (r *LeadRepository) GetIntake(intakeID uuid.UUID) (*models.IntakeSubmission, error) {
	intake := &models.IntakeSubmission{}
	var phone, additionalNotes sql.NullString

	err := r.db.QueryRow(`
		SELECT id, business_name, contact_name, email, phone, website_type, timeline,
			budget, project_description, additional_notes, submitted_at
		FROM intake_submissions WHERE id = $1
	`, intakeID).Scan(
		&intake.ID, &intake.BusinessName, &intake.ContactName, &intake.Email, &phone,
		&intake.WebsiteType, &intake.Timeline, &intake.Budget,
		&intake.ProjectDescription, &additionalNotes, &intake.SubmittedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	if phone.Valid {
		intake.Phone = &phone.String
	}
	if additionalNotes.Valid {
		intake.AdditionalNotes = &additionalNotes.String
	}
	return intake, nil
}

// ListIntakes returns intake submissions, newest first.
func (r *LeadRepository) ListIntakes() ([]models.IntakeSubmission, error) {
	rows, err := r.db.Query(`
		SELECT id, business_name, contact_name, email, phone, website_type, timeline,
			budget, project_description, additional_notes, submitted_at
		FROM intake_submissions ORDER BY submitted_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var intakes []models.IntakeSubmission
	for rows.Next() {
		var intake models.IntakeSubmission
		var phone, additionalNotes sql.NullString

		err := rows.Scan(&intake.ID, &intake.BusinessName, &intake.ContactName,
			&intake.Email, &phone, &intake.WebsiteType, &intake.Timeline,
			&intake.Budget, &intake.ProjectDescription, &additionalNotes,
			&intake.SubmittedAt)
		if err != nil {
			return nil, err
		}
		if phone.Valid {
			intake.Phone = &phone.String
		}
		if additionalNotes.Valid {
			intake.AdditionalNotes = &additionalNotes.String
		}
		intakes = append(intakes, intake)
	}
	return intakes, rows.Err()
}

// Subscribe stores a newsletter signup. Re-subscribing an existing address
// reactivates it instead of failing the unique constraint.
func (r *LeadRepository) Subscribe(email string) (*models.NewsletterSubscription, error) {
	sub := &models.NewsletterSubscription{
		ID:           uuid.New(),
		Email:        email,
		SubscribedAt: time.Now(),
		IsActive:     true,
	}

	err := r.db.QueryRow(`
		INSERT INTO newsletter_subscriptions (id, email, subscribed_at, is_active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (email) DO UPDATE SET is_active = TRUE
		RETURNING id, subscribed_at
	`, sub.ID, sub.Email, sub.SubscribedAt).Scan(&sub.ID, &sub.SubscribedAt)
	if err != nil {
		return nil, err
	}
	return sub, nil
}
