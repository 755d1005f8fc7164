package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"studio-admin-service/internal/config"
	"studio-admin-service/internal/events"
	"studio-admin-service/internal/middleware"
	"studio-admin-service/internal/models"
	"studio-admin-service/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testPassword = "CorrectHorse9!"

var (
	testHashOnce sync.Once
	testHash     string
)

func hashedTestPassword(t *testing.T) string {
	t.Helper()
	testHashOnce.Do(func() {
		hash, err := services.NewPasswordService().HashPassword(testPassword)
		if err != nil {
			t.Fatalf("Failed to hash fixture password: %v", err)
		}
		testHash = hash
	})
	return testHash
}

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

func (f *fakeAdminRepo) Count() (int, error) { return len(f.admins), nil }

func (f *fakeAdminRepo) CreateFirstAdmin(admin *models.AdminCredential) error {
	if len(f.admins) > 0 {
		return models.ErrAdminExists
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

func (f *fakeAdminRepo) CleanupExpiredSessions() (int64, error) { return 0, nil }

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
	event.CreatedAt = time.Now()
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeProjectRepo) ListEvents(projectID uuid.UUID) ([]models.TimelineEvent, error) {
	var out []models.TimelineEvent
	for _, event := range f.events {
		if event.ProjectID == projectID {
			out = append(out, event)
		}
	}
	return out, nil
}

// fakeLeadRepo is an in-memory stand-in for the Postgres lead repository.
type fakeLeadRepo struct {
	contacts []models.ContactSubmission
	intakes  []models.IntakeSubmission
}

func (f *fakeLeadRepo) CreateContact(contact *models.ContactSubmission) error {
	contact.ID = uuid.New()
	contact.SubmittedAt = time.Now()
	f.contacts = append(f.contacts, *contact)
	return nil
}

func (f *fakeLeadRepo) ListContacts() ([]models.ContactSubmission, error) { return f.contacts, nil }

func (f *fakeLeadRepo) CreateIntake(intake *models.IntakeSubmission) error {
	intake.ID = uuid.New()
	intake.SubmittedAt = time.Now()
	f.intakes = append(f.intakes, *intake)
	return nil
}

func (f *fakeLeadRepo) GetIntake(intakeID uuid.UUID) (*models.IntakeSubmission, error) {
	for i := range f.intakes {
		if f.intakes[i].ID == intakeID {
			return &f.intakes[i], nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeLeadRepo) ListIntakes() ([]models.IntakeSubmission, error) { return f.intakes, nil }

func (f *fakeLeadRepo) Subscribe(email string) (*models.NewsletterSubscription, error) {
	return &models.NewsletterSubscription{
		ID:           uuid.New(),
		Email:        email,
		SubscribedAt: time.Now(),
		IsActive:     true,
	}, nil
}

type testEnv struct {
	router   *gin.Engine
	repo     *fakeAdminRepo
	projects *fakeProjectRepo
	leads    *fakeLeadRepo
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo := newFakeAdminRepo()
	projects := newFakeProjectRepo()
	leads := &fakeLeadRepo{}
	publisher := events.NewPublisher(nil, logger)

	securityCfg := config.SecurityConfig{
		MaxLoginAttempts:   5,
		LockoutMinutes:     30,
		PasswordMaxAgeDays: 90,
	}

	passwordService := services.NewPasswordService()
	loginURLService := services.NewLoginURLService(repo)
	sessionService := services.NewSessionService(repo, "test-secret", time.Hour)
	authService := services.NewAuthService(repo, passwordService, loginURLService, securityCfg)

	authHandlers := NewAuthHandlers(authService, sessionService, loginURLService, publisher, logger)
	accountHandlers := NewAccountHandlers(authService, sessionService, publisher, logger)
	projectHandlers := NewProjectHandlers(services.NewProjectService(projects, leads), publisher, logger)
	leadHandlers := NewLeadHandlers(leads, publisher, logger)
	authMiddleware := middleware.NewAuthMiddleware(sessionService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.NoRoute(NotFound)

	router.POST("/admin/login/:url_path", authHandlers.Login)

	api := router.Group("/api/v1")
	api.POST("/admin/setup", authHandlers.Setup)
	api.POST("/contact", leadHandlers.Contact)

	admin := api.Group("/admin")
	admin.Use(authMiddleware.AuthRequired())
	admin.Use(authMiddleware.PasswordChangeGate(
		"/api/v1/admin/password/change",
		"/api/v1/admin/logout",
	))
	admin.POST("/logout", authHandlers.Logout)
	admin.POST("/password/change", authHandlers.ChangePassword)
	admin.PUT("/settings/login-url", authHandlers.UpdateLoginURL)
	admin.GET("/security-check", authHandlers.SecurityCheck)
	admin.GET("/accounts", accountHandlers.List)
	admin.POST("/accounts/:id/unlock", accountHandlers.Unlock)
	admin.POST("/accounts/:id/deactivate", accountHandlers.Deactivate)
	admin.GET("/contacts", leadHandlers.ListContacts)
	admin.POST("/projects", projectHandlers.Create)
	admin.POST("/projects/:id/events", projectHandlers.AddEvent)
	admin.GET("/projects/:id/events", projectHandlers.ListEvents)

	return &testEnv{router: router, repo: repo, projects: projects, leads: leads}
}

func (e *testEnv) seedAdmin(t *testing.T) *models.AdminCredential {
	t.Helper()
	admin := &models.AdminCredential{
		ID:                uuid.New(),
		Username:          "owner",
		Email:             "owner@example.com",
		PasswordHash:      hashedTestPassword(t),
		CustomLoginURL:    "admin-door",
		ActiveStatus:      true,
		PasswordUpdatedAt: time.Now(),
	}
	e.repo.admins[admin.ID] = admin
	return admin
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()

	w := e.do(t, "POST", "/admin/login/admin-door", gin.H{
		"username": "owner",
		"password": testPassword,
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Login failed: status %d body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode login response: %v", err)
	}
	return resp.Token
}

func TestSetup_CreatesFirstAdminOnly(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, "POST", "/api/v1/admin/setup", gin.H{
		"username":         "owner",
		"email":            "owner@example.com",
		"password":         testPassword,
		"confirm_password": testPassword,
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		LoginURL string `json:"login_url"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.LoginURL == "" {
		t.Error("Expected a login_url in the response")
	}

	// A second setup attempt must be refused.
	w = env.do(t, "POST", "/api/v1/admin/setup", gin.H{
		"username":         "intruder",
		"email":            "intruder@example.com",
		"password":         testPassword,
		"confirm_password": testPassword,
	}, "")
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for second setup, got %d", w.Code)
	}
}

func TestSetup_ValidationErrors(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, "POST", "/api/v1/admin/setup", gin.H{
		"username":         "ab",
		"email":            "bad",
		"password":         "weak",
		"confirm_password": "other",
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}

	var resp struct {
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Errors) == 0 {
		t.Error("Expected validation errors in the response")
	}
}

func TestLogin_UnknownPathLooksLikeAnyOther404(t *testing.T) {
	env := setupTestRouter(t)
	env.seedAdmin(t)

	loginAttempt := env.do(t, "POST", "/admin/login/admin-wrong", gin.H{
		"username": "owner",
		"password": testPassword,
	}, "")
	unknownRoute := env.do(t, "GET", "/no/such/route", nil, "")

	if loginAttempt.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for unknown login path, got %d", loginAttempt.Code)
	}
	if loginAttempt.Body.String() != unknownRoute.Body.String() {
		t.Errorf("Expected identical 404 bodies, got %q vs %q",
			loginAttempt.Body.String(), unknownRoute.Body.String())
	}
}

func TestLogin_Success(t *testing.T) {
	env := setupTestRouter(t)
	env.seedAdmin(t)

	token := env.login(t)
	if token == "" {
		t.Fatal("Expected a session token")
	}

	w := env.do(t, "GET", "/api/v1/admin/security-check", nil, token)
	if w.Code != http.StatusOK {
		t.Errorf("Expected authenticated request to succeed, got %d", w.Code)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	env := setupTestRouter(t)
	admin := env.seedAdmin(t)

	w := env.do(t, "POST", "/admin/login/admin-door", gin.H{
		"username": "owner",
		"password": "WrongPassword1!",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}
	if admin.LoginAttempts != 1 {
		t.Errorf("Expected failed attempt recorded, got %d", admin.LoginAttempts)
	}
}

func TestLogin_LockedAccount(t *testing.T) {
	env := setupTestRouter(t)
	admin := env.seedAdmin(t)
	until := time.Now().Add(10 * time.Minute)
	admin.LockedUntil = &until

	w := env.do(t, "POST", "/admin/login/admin-door", gin.H{
		"username": "owner",
		"password": testPassword,
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}
	if admin.LoginAttempts != 0 {
		t.Errorf("Expected locked attempt to leave the counter alone, got %d", admin.LoginAttempts)
	}
}

func TestLogin_FailureResponsesIndistinguishable(t *testing.T) {
	env := setupTestRouter(t)
	admin := env.seedAdmin(t)

	wrongPassword := env.do(t, "POST", "/admin/login/admin-door", gin.H{
		"username": "owner",
		"password": "WrongPassword1!",
	}, "")

	until := time.Now().Add(10 * time.Minute)
	admin.LockedUntil = &until
	locked := env.do(t, "POST", "/admin/login/admin-door", gin.H{
		"username": "owner",
		"password": testPassword,
	}, "")

	admin.LockedUntil = nil
	admin.LoginAttempts = 0
	admin.ActiveStatus = false
	disabled := env.do(t, "POST", "/admin/login/admin-door", gin.H{
		"username": "owner",
		"password": testPassword,
	}, "")

	// Wrong password, locked, and disabled must all look the same from
	// outside, or probing reveals account state.
	for name, w := range map[string]*httptest.ResponseRecorder{
		"wrong password": wrongPassword,
		"locked":         locked,
		"disabled":       disabled,
	} {
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", name, w.Code)
		}
		if w.Body.String() != wrongPassword.Body.String() {
			t.Errorf("%s: expected body %q, got %q", name, wrongPassword.Body.String(), w.Body.String())
		}
	}
}

func TestAuthRequired_MissingToken(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, "GET", "/api/v1/admin/security-check", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
}

func TestLogout_RevokesSession(t *testing.T) {
	env := setupTestRouter(t)
	env.seedAdmin(t)
	token := env.login(t)

	w := env.do(t, "POST", "/api/v1/admin/logout", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	w = env.do(t, "GET", "/api/v1/admin/security-check", nil, token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected revoked token to be rejected, got %d", w.Code)
	}
}

func TestPasswordChangeGate(t *testing.T) {
	env := setupTestRouter(t)
	admin := env.seedAdmin(t)
	admin.RequirePasswordChange = true
	token := env.login(t)

	// Everything except password change and logout is blocked.
	w := env.do(t, "GET", "/api/v1/admin/security-check", nil, token)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 while password change pending, got %d", w.Code)
	}
	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Code != "PASSWORD_CHANGE_REQUIRED" {
		t.Errorf("Expected PASSWORD_CHANGE_REQUIRED, got %q", resp.Code)
	}

	// The change itself goes through.
	w = env.do(t, "POST", "/api/v1/admin/password/change", gin.H{
		"current_password": testPassword,
		"new_password":     "NewSecretWord7#",
		"confirm_password": "NewSecretWord7#",
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected password change to succeed, got %d: %s", w.Code, w.Body.String())
	}

	var changed struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &changed); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	// The fresh token is no longer gated.
	w = env.do(t, "GET", "/api/v1/admin/security-check", nil, changed.Token)
	if w.Code != http.StatusOK {
		t.Errorf("Expected access after password change, got %d", w.Code)
	}
}

func TestUpdateLoginURL_Rotate(t *testing.T) {
	env := setupTestRouter(t)
	admin := env.seedAdmin(t)
	token := env.login(t)

	w := env.do(t, "PUT", "/api/v1/admin/settings/login-url", gin.H{}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if admin.CustomLoginURL == "admin-door" {
		t.Error("Expected login URL to change")
	}

	// The old path now behaves like any unknown route.
	w = env.do(t, "POST", "/admin/login/admin-door", gin.H{
		"username": "owner",
		"password": testPassword,
	}, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 at the old path, got %d", w.Code)
	}
}

func TestDeactivate_SelfRejected(t *testing.T) {
	env := setupTestRouter(t)
	admin := env.seedAdmin(t)
	token := env.login(t)

	w := env.do(t, "POST", "/api/v1/admin/accounts/"+admin.ID.String()+"/deactivate", nil, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for self-deactivation, got %d", w.Code)
	}
	if !admin.ActiveStatus {
		t.Error("Expected account to stay active")
	}
}

func TestAddEvent_AppendsToTimeline(t *testing.T) {
	env := setupTestRouter(t)
	env.seedAdmin(t)
	token := env.login(t)

	w := env.do(t, "POST", "/api/v1/admin/projects", gin.H{
		"client_name":  "Acme Bakery",
		"client_email": "hello@acmebakery.test",
		"project_name": "Acme Bakery Website",
		"project_type": "business",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	w = env.do(t, "POST", "/api/v1/admin/projects/"+created.ID+"/events", gin.H{
		"event_type":  "milestone",
		"title":       "Homepage approved",
		"description": "Client signed off on the homepage design.",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, "GET", "/api/v1/admin/projects/"+created.ID+"/events", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var timeline struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &timeline); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	// The opening event plus the milestone.
	if timeline.Count != 2 {
		t.Errorf("Expected 2 timeline events, got %d", timeline.Count)
	}
}

func TestContact_PublicSubmission(t *testing.T) {
	env := setupTestRouter(t)
	env.seedAdmin(t)

	w := env.do(t, "POST", "/api/v1/contact", gin.H{
		"name":    "Jo Smith",
		"email":   "jo@example.com",
		"subject": "New site",
		"message": "We need a website for our bakery.",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// Visible to an authenticated admin.
	token := env.login(t)
	w = env.do(t, "GET", "/api/v1/admin/contacts", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("Expected 1 contact, got %d", resp.Count)
	}
}
