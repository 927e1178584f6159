package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/dto"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/models"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/notify"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
)

// IngestService handles error reports posted by monitored applications.
type IngestService struct {
	logs     *LogService
	access   *AccessService
	notifier Notifier
	now      func() time.Time

	wg sync.WaitGroup
}

func NewIngestService(logs *LogService, access *AccessService, notifier Notifier) *IngestService {
	return &IngestService{logs: logs, access: access, notifier: notifier, now: time.Now}
}

// Accept checks the project exists and queues the report for background
// analysis. The caller answers 202 before analysis starts; later failures
// are only logged.
func (s *IngestService) Accept(req *dto.WebhookLogRequest) (*dto.WebhookLogAccepted, error) {
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return nil, ErrProjectNotFound
	}
	project, err := s.logs.project(projectID)
	if err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go s.process(project, req.ErrorText, strings.TrimSpace(req.FunctionName))

	return &dto.WebhookLogAccepted{
		Message:   "Log registered",
		ProjectID: project.ID.String(),
		Timestamp: s.now().UTC(),
	}, nil
}

func (s *IngestService) process(project *models.Project, errorText, functionName string) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			sentry.CurrentHub().Recover(r)
			slog.Error("webhook log processing panicked", "component", "webhook", "project_id", project.ID.String(), "panic", fmt.Sprint(r))
		}
	}()

	ctx := context.Background()
	entry, analysis, err := s.logs.record(ctx, errorText, project, functionName, models.SourceWebhook)
	if err != nil {
		slog.Error("webhook log processing failed", "component", "webhook", "project_id", project.ID.String(), "error", err)
		return
	}
	slog.Info("webhook log saved", "component", "webhook", "log_id", entry.ID.String(), "severity", entry.Severity)

	if functionName == "" {
		functionName = "Unknown"
	}
	sent := s.notifier.Notify(ctx, notify.EventWebhookError, notify.Event{
		ProjectName:  project.Name,
		FunctionName: functionName,
		Summary:      analysis.Summary,
		Cause:        analysis.Cause,
		Severity:     analysis.Severity,
		Fix:          analysis.Fix,
		ErrorText:    errorText,
		LogID:        entry.ID.String(),
	})
	if !sent {
		slog.Warn("webhook notification not delivered", "component", "webhook", "log_id", entry.ID.String())
	}
}

// Wait blocks until queued reports finish or ctx ends.
func (s *IngestService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AnalyzeSync is the authenticated, synchronous variant. It sends no
// notification.
func (s *IngestService) AnalyzeSync(ctx context.Context, userID uuid.UUID, req *dto.WebhookAnalyzeRequest) (*dto.WebhookAnalyzeResponse, error) {
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return nil, ErrProjectNotFound
	}
	if err := s.access.RequireProjectAccess(userID, projectID); err != nil {
		return nil, err
	}
	project, err := s.logs.project(projectID)
	if err != nil {
		return nil, err
	}

	entry, _, err := s.logs.record(ctx, req.ErrorText, project, strings.TrimSpace(req.FunctionName), models.SourceWebhook)
	if err != nil {
		return nil, err
	}
	return &dto.WebhookAnalyzeResponse{Log: *toLogResponse(entry, project), ProjectName: project.Name}, nil
}
