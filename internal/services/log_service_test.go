package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/analyzer"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/dto"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/models"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/notify"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzePersistsLog(t *testing.T) {
	w := newWorld(t)
	n := &stubNotifier{ok: true}
	svc := NewLogService(w.db, w.access, newStubAnalyzer(models.SeverityCritical), n)

	resp, err := svc.Analyze(context.Background(), w.member.ID, &dto.AnalyzeLogRequest{
		Text: "NullPointerException at line 42", ProjectID: w.alpha.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Null dereference", resp.Summary)
	assert.Equal(t, models.SourceAnalyze, resp.Source)
	assert.Equal(t, "Alpha", resp.ProjectName)
	assert.NotEmpty(t, resp.AIRaw)
	assert.Empty(t, n.events(), "analyze never notifies")

	_, err = svc.Analyze(context.Background(), w.stranger.ID, &dto.AnalyzeLogRequest{
		Text: "x", ProjectID: w.alpha.ID.String(),
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestAnalyzeFailureStoresNothing(t *testing.T) {
	w := newWorld(t)
	a := newStubAnalyzer(models.SeverityInfo)
	a.err = &analyzer.AnalysisError{Op: "analysis", Err: errors.New("rate limited")}
	svc := NewLogService(w.db, w.access, a, &stubNotifier{})

	_, err := svc.Analyze(context.Background(), w.owner.ID, &dto.AnalyzeLogRequest{Text: "x", ProjectID: w.alpha.ID.String()})
	var ae *analyzer.AnalysisError
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, err.Error(), "rate limited")

	var count int64
	w.db.Model(&models.Log{}).Count(&count)
	assert.Zero(t, count)
}

func TestPushNotifiesOnCritical(t *testing.T) {
	w := newWorld(t)
	n := &stubNotifier{ok: true}
	svc := NewLogService(w.db, w.access, newStubAnalyzer(models.SeverityCritical), n)

	resp, err := svc.Push(context.Background(), &dto.AnalyzeLogRequest{Text: "panic", ProjectID: w.alpha.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, models.SourcePush, resp.Source)

	events := n.events()
	require.Len(t, events, 1)
	assert.Equal(t, notify.EventCriticalError, events[0].Type)
	assert.Equal(t, models.SeverityCritical, events[0].Event.Severity)

	_, err = svc.Push(context.Background(), &dto.AnalyzeLogRequest{Text: "panic", ProjectID: uuid.NewString()})
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestPushSkipsNotificationBelowCritical(t *testing.T) {
	w := newWorld(t)
	n := &stubNotifier{ok: true}
	svc := NewLogService(w.db, w.access, newStubAnalyzer(models.SeverityWarning), n)

	_, err := svc.Push(context.Background(), &dto.AnalyzeLogRequest{Text: "slow", ProjectID: w.alpha.ID.String()})
	require.NoError(t, err)
	assert.Empty(t, n.events())
}

func TestListScopesAndFilters(t *testing.T) {
	w := newWorld(t)
	svc := NewLogService(w.db, w.access, newStubAnalyzer(models.SeverityInfo), &stubNotifier{})
	service := testutil.CreateService(t, w.db, w.alpha, models.Service{Name: "api", URL: "http://api.example.com"})

	old := time.Now().Add(-72 * time.Hour)
	require.NoError(t, w.db.Create(&models.Log{Text: "old", ProjectID: &w.alpha.ID, CreatedAt: old, AIRaw: []byte(`{"a":1}`)}).Error)
	require.NoError(t, w.db.Create(&models.Log{Text: "check", ProjectID: &w.alpha.ID, ServiceID: &service.ID, AIRaw: []byte(`{"a":1}`)}).Error)
	require.NoError(t, w.db.Create(&models.Log{Text: "beta", ProjectID: &w.beta.ID}).Error)
	require.NoError(t, w.db.Create(&models.Log{Text: "orphan"}).Error)

	all, err := svc.List(w.member.ID, false, LogFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, all.Count)
	assert.Equal(t, "check", all.Logs[0].Text, "newest first")
	assert.Equal(t, "api", all.Logs[0].ServiceName)
	assert.Equal(t, "Alpha", all.Logs[0].ProjectName)
	assert.Empty(t, all.Logs[0].AIRaw)

	_, err = svc.List(w.member.ID, false, LogFilter{ProjectID: &w.beta.ID})
	assert.ErrorIs(t, err, ErrAccessDenied)

	byService, err := svc.List(w.member.ID, false, LogFilter{ServiceID: &service.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, byService.Count)

	_, err = svc.List(w.owner.ID, false, LogFilter{ProjectID: &w.alpha.ID, ServiceID: &service.ID})
	assert.NoError(t, err)

	since := time.Now().Add(-time.Hour)
	recent, err := svc.List(w.member.ID, false, LogFilter{Start: &since})
	require.NoError(t, err)
	assert.Equal(t, 1, recent.Count)

	limited, err := svc.List(w.member.ID, false, LogFilter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, limited.Count)

	nobody, err := svc.List(uuid.New(), false, LogFilter{})
	require.NoError(t, err)
	assert.NotNil(t, nobody.Logs)
	assert.Zero(t, nobody.Count)
}

func TestListServiceProjectMismatch(t *testing.T) {
	w := newWorld(t)
	svc := NewLogService(w.db, w.access, newStubAnalyzer(models.SeverityInfo), &stubNotifier{})
	gamma := testutil.CreateProject(t, w.db, w.owner, "Gamma")
	service := testutil.CreateService(t, w.db, gamma, models.Service{URL: "http://g.example.com"})

	_, err := svc.List(w.owner.ID, false, LogFilter{ProjectID: &w.alpha.ID, ServiceID: &service.ID})
	assert.ErrorIs(t, err, ErrServiceProjectMismatch)
}

func TestListAdminSeesProjectlessLogs(t *testing.T) {
	w := newWorld(t)
	svc := NewLogService(w.db, w.access, newStubAnalyzer(models.SeverityInfo), &stubNotifier{})
	require.NoError(t, w.db.Create(&models.Log{Text: "orphan"}).Error)
	admin := testutil.CreateUser(t, w.db, "admin@example.com", models.RoleAdmin)

	list, err := svc.List(admin.ID, true, LogFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "orphan", list.Logs[0].Text)

	list, err = svc.List(w.owner.ID, true, LogFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)
}

func TestGetLog(t *testing.T) {
	w := newWorld(t)
	svc := NewLogService(w.db, w.access, newStubAnalyzer(models.SeverityInfo), &stubNotifier{})
	entry := models.Log{Text: "boom", ProjectID: &w.alpha.ID, AIRaw: []byte(`{"summary":"s"}`)}
	require.NoError(t, w.db.Create(&entry).Error)
	orphan := models.Log{Text: "orphan"}
	require.NoError(t, w.db.Create(&orphan).Error)

	got, err := svc.Get(w.member.ID, false, entry.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"s"}`, string(got.AIRaw))

	_, err = svc.Get(w.stranger.ID, false, entry.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.Get(w.member.ID, false, uuid.New())
	assert.ErrorIs(t, err, ErrLogNotFound)

	_, err = svc.Get(w.member.ID, false, orphan.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = svc.Get(w.member.ID, true, orphan.ID)
	assert.NoError(t, err)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLogLimit, clampLimit(0))
	assert.Equal(t, DefaultLogLimit, clampLimit(-3))
	assert.Equal(t, 7, clampLimit(7))
	assert.Equal(t, MaxLogLimit, clampLimit(10_000))
}
