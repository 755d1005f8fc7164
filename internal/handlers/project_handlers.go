package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"studio-admin-service/internal/events"
	"studio-admin-service/internal/middleware"
	"studio-admin-service/internal/models"
	"studio-admin-service/internal/services"
)

// ProjectHandlers handles project lifecycle endpoints
type ProjectHandlers struct {
	projectService *services.ProjectService
	publisher      *events.Publisher
	logger         *logrus.Logger
}

// NewProjectHandlers creates a new project handlers instance
func NewProjectHandlers(projectService *services.ProjectService, publisher *events.Publisher, logger *logrus.Logger) *ProjectHandlers {
	return &ProjectHandlers{
		projectService: projectService,
		publisher:      publisher,
		logger:         logger,
	}
}

// CreateProjectRequest represents a new project
type CreateProjectRequest struct {
	ClientName  string  `json:"client_name" binding:"required"`
	ClientEmail string  `json:"client_email" binding:"required,email"`
	ClientPhone *string `json:"client_phone"`
	ProjectName string  `json:"project_name" binding:"required"`
	ProjectType string  `json:"project_type" binding:"required"`
	Status      string  `json:"status"`
	Budget      *string `json:"budget"`
	Timeline    *string `json:"timeline"`
	Description *string `json:"description"`
	WebsiteURL  *string `json:"website_url"`
}

// UpdateStatusRequest represents a status/progress change
type UpdateStatusRequest struct {
	Status             string     `json:"status" binding:"required"`
	Progress           *int       `json:"progress"`
	CurrentPhase       *string    `json:"current_phase"`
	NextMilestone      *string    `json:"next_milestone"`
	Notes              *string    `json:"notes"`
	ExpectedCompletion *time.Time `json:"expected_completion"`
	EventDescription   string     `json:"event_description"`
}

// AddEventRequest represents a manual timeline entry
type AddEventRequest struct {
	EventType   string `json:"event_type" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// Create creates a new project with its opening timeline event.
func (h *ProjectHandlers) Create(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	project := &models.Project{
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		ClientPhone: req.ClientPhone,
		ProjectName: req.ProjectName,
		ProjectType: req.ProjectType,
		Status:      models.ProjectStatus(req.Status),
		Budget:      req.Budget,
		Timeline:    req.Timeline,
		Description: req.Description,
		WebsiteURL:  req.WebsiteURL,
	}

	created, err := h.projectService.CreateProject(project, middleware.GetUsername(c))
	if err != nil {
		h.respondProjectError(c, err, "Failed to create project")
		return
	}

	h.publisher.PublishProject(c.Request.Context(), events.ProjectEvent{
		Subject:   events.SubjectProjectCreated,
		ProjectID: created.ID.String(),
		NewStatus: string(created.Status),
		ChangedBy: middleware.GetUsername(c),
	})

	c.JSON(http.StatusCreated, created)
}

// List returns all projects, newest first.
func (h *ProjectHandlers) List(c *gin.Context) {
	projects, err := h.projectService.ListProjects()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list projects")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list projects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"count":    len(projects),
	})
}

// Get returns one project with its full timeline.
func (h *ProjectHandlers) Get(c *gin.Context) {
	projectID, ok := h.parseProjectID(c)
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(projectID)
	if err != nil {
		h.respondProjectError(c, err, "Failed to load project")
		return
	}

	c.JSON(http.StatusOK, project)
}

// UpdateStatus applies a status/progress change and returns the project with
// the recorded event, if the status actually changed.
func (h *ProjectHandlers) UpdateStatus(c *gin.Context) {
	projectID, ok := h.parseProjectID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	project, event, err := h.projectService.UpdateStatus(projectID, services.StatusUpdate{
		Status:             models.ProjectStatus(req.Status),
		Progress:           req.Progress,
		CurrentPhase:       req.CurrentPhase,
		NextMilestone:      req.NextMilestone,
		Notes:              req.Notes,
		ExpectedCompletion: req.ExpectedCompletion,
		ChangedBy:          middleware.GetUsername(c),
		EventDescription:   req.EventDescription,
	})
	if err != nil {
		h.respondProjectError(c, err, "Failed to update project status")
		return
	}

	if event != nil {
		oldStatus := ""
		if event.OldStatus != nil {
			oldStatus = string(*event.OldStatus)
		}
		h.publisher.PublishProject(c.Request.Context(), events.ProjectEvent{
			Subject:   events.SubjectStatusChanged,
			ProjectID: project.ID.String(),
			OldStatus: oldStatus,
			NewStatus: string(project.Status),
			Progress:  project.ProgressPercentage,
			ChangedBy: middleware.GetUsername(c),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"project": project,
		"event":   event,
	})
}

// AddEvent appends a manual timeline entry.
func (h *ProjectHandlers) AddEvent(c *gin.Context) {
	projectID, ok := h.parseProjectID(c)
	if !ok {
		return
	}

	var req AddEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	event, err := h.projectService.AddEvent(projectID, models.EventType(req.EventType), req.Title, req.Description, middleware.GetUsername(c))
	if err != nil {
		h.respondProjectError(c, err, "Failed to add timeline event")
		return
	}

	h.publisher.PublishProject(c.Request.Context(), events.ProjectEvent{
		Subject:   events.SubjectEventAdded,
		ProjectID: projectID.String(),
		EventType: string(event.EventType),
		ChangedBy: event.CreatedBy,
	})

	c.JSON(http.StatusCreated, event)
}

// ListEvents returns a project's timeline, newest first.
func (h *ProjectHandlers) ListEvents(c *gin.Context) {
	projectID, ok := h.parseProjectID(c)
	if !ok {
		return
	}

	timeline, err := h.projectService.ListEvents(projectID)
	if err != nil {
		h.respondProjectError(c, err, "Failed to list timeline events")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": timeline,
		"count":  len(timeline),
	})
}

// FromIntake promotes an intake submission into an inquiry-status project.
func (h *ProjectHandlers) FromIntake(c *gin.Context) {
	intakeID, err := uuid.Parse(c.Param("intake_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid intake ID format",
			"code":  "INVALID_INTAKE_ID",
		})
		return
	}

	project, err := h.projectService.PromoteIntake(intakeID, middleware.GetUsername(c))
	if err != nil {
		h.respondProjectError(c, err, "Failed to create project from intake")
		return
	}

	h.publisher.PublishProject(c.Request.Context(), events.ProjectEvent{
		Subject:   events.SubjectProjectCreated,
		ProjectID: project.ID.String(),
		NewStatus: string(project.Status),
		ChangedBy: middleware.GetUsername(c),
	})

	c.JSON(http.StatusCreated, project)
}

// Statuses returns the valid status values and their display labels, for
// dashboard dropdowns.
func (h *ProjectHandlers) Statuses(c *gin.Context) {
	statuses := make([]gin.H, 0, len(models.ProjectStatuses()))
	for _, status := range models.ProjectStatuses() {
		statuses = append(statuses, gin.H{
			"value":   status,
			"display": status.Display(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"statuses": statuses})
}

func (h *ProjectHandlers) parseProjectID(c *gin.Context) (uuid.UUID, bool) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid project ID format",
			"code":  "INVALID_PROJECT_ID",
		})
		return uuid.Nil, false
	}
	return projectID, true
}

func (h *ProjectHandlers) respondProjectError(c *gin.Context, err error, message string) {
	if errors.Is(err, models.ErrNotFound) {
		NotFound(c)
		return
	}
	if errors.Is(err, models.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.logger.WithError(err).Error(message)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}
