package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"studio-admin-service/internal/events"
	"studio-admin-service/internal/models"
	"studio-admin-service/internal/repository"
)

// LeadHandlers handles public lead capture and the admin views over it.
type LeadHandlers struct {
	repo      repository.LeadRepositoryInterface
	publisher *events.Publisher
	logger    *logrus.Logger
}

// NewLeadHandlers creates a new lead handlers instance
func NewLeadHandlers(repo repository.LeadRepositoryInterface, publisher *events.Publisher, logger *logrus.Logger) *LeadHandlers {
	return &LeadHandlers{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// ContactRequest represents a public contact form submission
type ContactRequest struct {
	Name    string  `json:"name" binding:"required"`
	Email   string  `json:"email" binding:"required,email"`
	Phone   *string `json:"phone"`
	Subject string  `json:"subject" binding:"required"`
	Message string  `json:"message" binding:"required"`
}

// IntakeRequest represents a public project intake questionnaire
type IntakeRequest struct {
	BusinessName       string  `json:"business_name" binding:"required"`
	ContactName        string  `json:"contact_name" binding:"required"`
	Email              string  `json:"email" binding:"required,email"`
	Phone              *string `json:"phone"`
	WebsiteType        string  `json:"website_type" binding:"required"`
	Timeline           string  `json:"timeline"`
	Budget             string  `json:"budget"`
	ProjectDescription string  `json:"project_description" binding:"required"`
	AdditionalNotes    *string `json:"additional_notes"`
}

// SubscribeRequest represents a newsletter signup
type SubscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Contact stores a contact form submission.
func (h *LeadHandlers) Contact(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	contact := &models.ContactSubmission{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	}
	if err := h.repo.CreateContact(contact); err != nil {
		h.logger.WithError(err).Error("Failed to store contact submission")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit message"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Thank you for your message. We'll be in touch soon.",
		"id":      contact.ID,
	})
}

// Intake stores a project intake questionnaire.
func (h *LeadHandlers) Intake(c *gin.Context) {
	var req IntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	intake := &models.IntakeSubmission{
		BusinessName:       req.BusinessName,
		ContactName:        req.ContactName,
		Email:              req.Email,
		Phone:              req.Phone,
		WebsiteType:        req.WebsiteType,
		Timeline:           req.Timeline,
		Budget:             req.Budget,
		ProjectDescription: req.ProjectDescription,
		AdditionalNotes:    req.AdditionalNotes,
	}
	if err := h.repo.CreateIntake(intake); err != nil {
		h.logger.WithError(err).Error("Failed to store intake submission")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit intake form"})
		return
	}

	h.publisher.PublishProject(c.Request.Context(), events.ProjectEvent{
		Subject:   events.SubjectIntakeReceived,
		ProjectID: intake.ID.String(),
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Thank you! We'll review your project details and get back to you.",
		"id":      intake.ID,
	})
}

// Subscribe adds an email to the newsletter list. Re-subscribing an existing
// address reactivates it rather than failing.
func (h *LeadHandlers) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	subscription, err := h.repo.Subscribe(req.Email)
	if err != nil {
		h.logger.WithError(err).Error("Failed to store newsletter subscription")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to subscribe"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "You're subscribed!",
		"id":      subscription.ID,
	})
}

// ListContacts returns all contact submissions for the admin dashboard.
func (h *LeadHandlers) ListContacts(c *gin.Context) {
	contacts, err := h.repo.ListContacts()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list contact submissions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list contacts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contacts": contacts,
		"count":    len(contacts),
	})
}

// ListIntakes returns all intake submissions for the admin dashboard.
func (h *LeadHandlers) ListIntakes(c *gin.Context) {
	intakes, err := h.repo.ListIntakes()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list intake submissions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list intakes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"intakes": intakes,
		"count":   len(intakes),
	})
}
