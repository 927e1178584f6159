package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/analyzer"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/checker"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/config"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/dto"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/models"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/notify"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/services"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/session"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubAI struct {
	mu    sync.Mutex
	calls int
}

func (s *stubAI) AnalyzeLog(_ context.Context, _ string) (*analyzer.LogAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return &analyzer.LogAnalysis{
		Summary:  "Timeout talking to payments",
		Cause:    "Upstream latency",
		Severity: models.SeverityWarning,
		Fix:      "Add a retry with backoff",
		Raw:      []byte(`{"summary":"Timeout talking to payments"}`),
	}, nil
}

func (s *stubAI) OptimizeQuery(_ context.Context, query, _ string) (*analyzer.QueryAnalysis, error) {
	return &analyzer.QueryAnalysis{
		QueryType:      "SELECT",
		Language:       "SQL",
		IsValid:        true,
		Errors:         []string{},
		OptimizedQuery: query,
		Raw:            []byte(`{"queryType":"SELECT"}`),
	}, nil
}

type server struct {
	app      *fiber.App
	db       *gorm.DB
	auth     *services.AuthService
	ingest   *services.IngestService
	owner    *models.User
	stranger *models.User
	alpha    *models.Project
	beta     *models.Project
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 24 * time.Hour,
		AdminEmails:      "boss@example.com",
		CORSOrigins:      "*",
	}
	revoker := session.NewMemoryStore()
	ai := &stubAI{}

	access := services.NewAccessService(db)
	settings := services.NewSettingsService(db)
	telegram := notify.NewTelegramSender(settings, "http://127.0.0.1:1", 0)
	auth := services.NewAuthService(db, cfg, revoker)
	logs := services.NewLogService(db, access, ai, telegram)
	ingest := services.NewIngestService(logs, access, telegram)
	serviceChecker := checker.New(db, checker.NewProber(time.Second), ai, telegram)

	app := fiber.New()
	Setup(app, cfg, db, revoker, Handlers{
		Auth:        handlers.NewAuthHandler(auth),
		Health:      handlers.NewHealthHandler(db, checker.NewAutoChecker(db, serviceChecker, "")),
		Project:     handlers.NewProjectHandler(services.NewProjectService(db, access)),
		Service:     handlers.NewServiceHandler(services.NewServiceManager(db, access), serviceChecker),
		Log:         handlers.NewLogHandler(logs),
		QueryLog:    handlers.NewQueryLogHandler(services.NewQueryLogService(db, access, ai)),
		Webhook:     handlers.NewWebhookHandler(ingest),
		Settings:    handlers.NewSettingsHandler(settings, telegram),
		Performance: handlers.NewPerformanceHandler(services.NewPerformanceService(checker.NewProber(time.Second), settings, ai, telegram)),
	})

	s := &server{app: app, db: db, auth: auth, ingest: ingest}
	s.owner = testutil.CreateUser(t, db, "owner@example.com", models.RoleUser)
	s.stranger = testutil.CreateUser(t, db, "stranger@example.com", models.RoleUser)
	s.alpha = testutil.CreateProject(t, db, s.owner, "Alpha")
	s.beta = testutil.CreateProject(t, db, s.stranger, "Beta")
	return s
}

// token logs in through the service so tests stay clear of the auth rate limit.
func (s *server) token(t *testing.T, email string) string {
	t.Helper()
	resp, err := s.auth.Login(&dto.LoginRequest{Email: email, Password: "password123"})
	require.NoError(t, err)
	return resp.AccessToken
}

func (s *server) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	status, body := s.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, status)

	var health dto.HealthResponse
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "stopped", health.AutoChecker)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newServer(t)
	for _, path := range []string{"/api/projects", "/api/services", "/api/logs", "/api/query-logs", "/api/settings"} {
		status, _ := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
	}
}

func TestWebhookLogAcceptedThenRecorded(t *testing.T) {
	s := newServer(t)

	status, body := s.do(t, http.MethodPost, "/api/webhook/log", "", dto.WebhookLogRequest{
		ErrorText:    "context deadline exceeded calling payments",
		ProjectID:    s.alpha.ID.String(),
		FunctionName: "ChargeCard",
	})
	require.Equal(t, http.StatusAccepted, status, string(body))

	var accepted dto.WebhookLogAccepted
	require.NoError(t, json.Unmarshal(body, &accepted))
	assert.Equal(t, "Log registered", accepted.Message)
	assert.Equal(t, s.alpha.ID.String(), accepted.ProjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.ingest.Wait(ctx))

	var stored models.Log
	require.NoError(t, s.db.Where("project_id = ?", s.alpha.ID).First(&stored).Error)
	assert.Equal(t, models.SourceWebhook, stored.Source)
	assert.Equal(t, "ChargeCard", stored.FunctionName)
	assert.Equal(t, "Timeout talking to payments", stored.Summary)
}

func TestWebhookLogUnknownProject(t *testing.T) {
	s := newServer(t)
	status, _ := s.do(t, http.MethodPost, "/api/webhook/log", "", dto.WebhookLogRequest{
		ErrorText: "boom",
		ProjectID: "7d3c1f7e-2a7b-4d0e-9b8a-0c1d2e3f4a5b",
	})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestWebhookLogValidation(t *testing.T) {
	s := newServer(t)
	status, _ := s.do(t, http.MethodPost, "/api/webhook/log", "", map[string]string{"project_id": s.alpha.ID.String()})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLogsOfForeignProjectForbidden(t *testing.T) {
	s := newServer(t)
	token := s.token(t, "owner@example.com")

	status, _ := s.do(t, http.MethodGet, "/api/logs?project_id="+s.beta.ID.String(), token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := s.do(t, http.MethodGet, "/api/logs?project_id="+s.alpha.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, status)
	var list dto.LogListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 0, list.Count)
}

func TestAnalyzeThenListLogs(t *testing.T) {
	s := newServer(t)
	token := s.token(t, "owner@example.com")

	status, body := s.do(t, http.MethodPost, "/api/logs/analyze", token, dto.AnalyzeLogRequest{
		Text:      "panic: runtime error: index out of range",
		ProjectID: s.alpha.ID.String(),
	})
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = s.do(t, http.MethodGet, "/api/logs", token, nil)
	require.Equal(t, http.StatusOK, status)
	var list dto.LogListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Alpha", list.Logs[0].ProjectName)

	strangerToken := s.token(t, "stranger@example.com")
	status, _ = s.do(t, http.MethodGet, "/api/logs/"+list.Logs[0].ID.String(), strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestDeleteProjectLeavesServicesAndLogs(t *testing.T) {
	s := newServer(t)
	svc := testutil.CreateService(t, s.db, s.alpha, models.Service{Name: "api", URL: "http://127.0.0.1:1/health"})
	require.NoError(t, s.db.Create(&models.Log{Text: "old", ProjectID: &s.alpha.ID, ServiceID: &svc.ID}).Error)

	token := s.token(t, "owner@example.com")
	status, body := s.do(t, http.MethodDelete, "/api/projects/"+s.alpha.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	var projects int64
	require.NoError(t, s.db.Model(&models.Project{}).Where("id = ?", s.alpha.ID).Count(&projects).Error)
	assert.Zero(t, projects)

	var services, logs int64
	require.NoError(t, s.db.Model(&models.Service{}).Where("project_id = ?", s.alpha.ID).Count(&services).Error)
	require.NoError(t, s.db.Model(&models.Log{}).Where("project_id = ?", s.alpha.ID).Count(&logs).Error)
	assert.Equal(t, int64(1), services)
	assert.Equal(t, int64(1), logs)
}

func TestDeleteProjectRequiresOwner(t *testing.T) {
	s := newServer(t)
	token := s.token(t, "stranger@example.com")
	status, _ := s.do(t, http.MethodDelete, "/api/projects/"+s.alpha.ID.String(), token, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	s := newServer(t)
	token := s.token(t, "owner@example.com")

	status, _ := s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, body := s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, string(body), "revoked")
}

func TestSettingsAdminOnly(t *testing.T) {
	s := newServer(t)
	testutil.CreateUser(t, s.db, "boss@example.com", models.RoleUser)

	status, _ := s.do(t, http.MethodGet, "/api/settings", s.token(t, "owner@example.com"), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := s.do(t, http.MethodGet, "/api/settings", s.token(t, "boss@example.com"), nil)
	require.Equal(t, http.StatusOK, status)
	var setting models.Setting
	require.NoError(t, json.Unmarshal(body, &setting))
	assert.Equal(t, models.DefaultResponseTimeThreshold, setting.Thresholds.ResponseTime)
}

func TestTestNotification(t *testing.T) {
	s := newServer(t)
	testutil.CreateUser(t, s.db, "boss@example.com", models.RoleUser)
	token := s.token(t, "boss@example.com")

	status, body := s.do(t, http.MethodPost, "/api/settings/test-notification", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "Check Telegram configuration")

	var delivered []string
	var mu sync.Mutex
	bot := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&msg)
		mu.Lock()
		delivered = append(delivered, msg.Text)
		mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer bot.Close()

	// Swap the sender for one that points at the fake bot API.
	settings := services.NewSettingsService(s.db)
	botToken, groupID := "123:abc", "-100"
	_, err := settings.Update(&dto.UpdateSettingsRequest{TelegramBotToken: &botToken, TelegramGroupID: &groupID})
	require.NoError(t, err)

	app := fiber.New()
	h := handlers.NewSettingsHandler(settings, notify.NewTelegramSender(settings, bot.URL, 0))
	app.Post("/test", h.TestNotification)
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/test", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, delivered, 1)
	assert.Contains(t, delivered[0], "This is a test notification from LogWise AI")
}

func TestServiceCrudAndStatus(t *testing.T) {
	s := newServer(t)
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	token := s.token(t, "owner@example.com")
	status, body := s.do(t, http.MethodPost, "/api/services", token, dto.CreateServiceRequest{
		Name:      "checkout",
		URL:       target.URL,
		ProjectID: s.alpha.ID.String(),
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var svc models.Service
	require.NoError(t, json.Unmarshal(body, &svc))

	status, body = s.do(t, http.MethodGet, "/api/services/"+svc.ID.String()+"/status", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var result checker.Result
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, models.StatusUp, result.Status)

	strangerToken := s.token(t, "stranger@example.com")
	status, _ = s.do(t, http.MethodGet, "/api/services/"+svc.ID.String(), strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
}
