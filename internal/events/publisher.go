package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Subjects published by this service. Auth events feed security monitoring,
// project events feed client notifications.
const (
	SubjectLoginSuccess    = "studio.auth.login_success"
	SubjectLoginFailed     = "studio.auth.login_failed"
	SubjectAccountLocked   = "studio.auth.account_locked"
	SubjectAccountUnlocked = "studio.auth.account_unlocked"
	SubjectPasswordChanged = "studio.auth.password_changed"
	SubjectLoginURLRotated = "studio.auth.login_url_rotated"
	SubjectProjectCreated  = "studio.project.created"
	SubjectStatusChanged   = "studio.project.status_changed"
	SubjectEventAdded      = "studio.project.event_added"
	SubjectIntakeReceived  = "studio.project.intake_received"
)

// AuthEvent is the payload for studio.auth.* subjects.
type AuthEvent struct {
	Subject        string    `json:"subject"`
	AdminID        string    `json:"admin_id,omitempty"`
	Username       string    `json:"username,omitempty"`
	IPAddress      string    `json:"ip_address,omitempty"`
	FailedAttempts int       `json:"failed_attempts,omitempty"`
	LockedUntil    string    `json:"locked_until,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// ProjectEvent is the payload for studio.project.* subjects.
type ProjectEvent struct {
	Subject   string    `json:"subject"`
	ProjectID string    `json:"project_id"`
	OldStatus string    `json:"old_status,omitempty"`
	NewStatus string    `json:"new_status,omitempty"`
	EventType string    `json:"event_type,omitempty"`
	Progress  int       `json:"progress"`
	ChangedBy string    `json:"changed_by,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher publishes service events to NATS. A nil Publisher (NATS not
// configured) silently drops events so the HTTP path never depends on the
// broker being up.
type Publisher struct {
	client *Client
	logger *logrus.Logger
}

// NewPublisher creates a new event publisher
func NewPublisher(client *Client, logger *logrus.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

// PublishAuth publishes one auth event on its subject.
func (p *Publisher) PublishAuth(ctx context.Context, event AuthEvent) error {
	event.Timestamp = time.Now().UTC()
	return p.publish(ctx, event.Subject, event)
}

// PublishProject publishes one project lifecycle event on its subject.
func (p *Publisher) PublishProject(ctx context.Context, event ProjectEvent) error {
	event.Timestamp = time.Now().UTC()
	return p.publish(ctx, event.Subject, event)
}

func (p *Publisher) publish(ctx context.Context, subject string, payload interface{}) error {
	if p == nil || p.client == nil || !p.client.IsConnected() {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ack, err := p.client.js.Publish(subject, data, nats.Context(ctx))
	if err != nil {
		p.logger.WithField("subject", subject).WithError(err).Error("Failed to publish event")
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"subject":  subject,
		"sequence": ack.Sequence,
	}).Debug("Published event")
	return nil
}
