package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/analyzer"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/config"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/models"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/notify"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/testutil"
	"gorm.io/gorm"
)

type stubAnalyzer struct {
	mu     sync.Mutex
	texts  []string
	result analyzer.LogAnalysis
	err    error
}

func newStubAnalyzer(severity string) *stubAnalyzer {
	return &stubAnalyzer{result: analyzer.LogAnalysis{
		Summary:  "Null dereference",
		Cause:    "Object used before initialisation",
		Severity: severity,
		Fix:      "Initialise the object",
		Raw:      []byte(`{"summary":"Null dereference"}`),
	}}
}

func (s *stubAnalyzer) AnalyzeLog(_ context.Context, text string) (*analyzer.LogAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	if s.err != nil {
		return nil, s.err
	}
	result := s.result
	return &result, nil
}

type stubOptimizer struct {
	result *analyzer.QueryAnalysis
	err    error
}

func (s *stubOptimizer) OptimizeQuery(_ context.Context, query, _ string) (*analyzer.QueryAnalysis, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &analyzer.QueryAnalysis{
		QueryType:      "SELECT",
		Language:       "SQL",
		IsValid:        true,
		Errors:         []string{},
		OptimizedQuery: query,
		Optimizations: []models.Optimization{
			{Suggestion: "Select only needed columns", Reason: "Less IO", Impact: "medium"},
		},
		IndexSuggestions: []models.IndexSuggestion{
			{Index: "CREATE INDEX idx_users_email ON users(email)", Reason: "Filter column", Columns: []string{"email"}},
		},
		Raw: []byte(`{"queryType":"SELECT"}`),
	}, nil
}

type notification struct {
	Type  string
	Event notify.Event
}

type stubNotifier struct {
	mu   sync.Mutex
	sent []notification
	ok   bool
}

func (s *stubNotifier) Notify(_ context.Context, eventType string, e notify.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, notification{Type: eventType, Event: e})
	return s.ok
}

func (s *stubNotifier) events() []notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notification(nil), s.sent...)
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 24 * time.Hour,
		AdminEmails:      "boss@example.com",
	}
}

// world is a small tenancy: owner owns Alpha, member is assigned to it,
// stranger owns Beta.
type world struct {
	db       *gorm.DB
	access   *AccessService
	owner    *models.User
	member   *models.User
	stranger *models.User
	alpha    *models.Project
	beta     *models.Project
}

func newWorld(t *testing.T) *world {
	t.Helper()
	db := testutil.NewDB(t)
	w := &world{db: db, access: NewAccessService(db)}
	w.owner = testutil.CreateUser(t, db, "owner@example.com", models.RoleUser)
	w.member = testutil.CreateUser(t, db, "member@example.com", models.RoleUser)
	w.stranger = testutil.CreateUser(t, db, "stranger@example.com", models.RoleUser)
	w.alpha = testutil.CreateProject(t, db, w.owner, "Alpha")
	w.beta = testutil.CreateProject(t, db, w.stranger, "Beta")
	testutil.Assign(t, db, w.member, w.alpha)
	return w
}
