package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/analyzer"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/dto"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/models"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/notify"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultLogLimit = 50
	MaxLogLimit     = 500
)

// LogFilter narrows a log listing. Zero values mean no filter.
type LogFilter struct {
	ProjectID *uuid.UUID
	ServiceID *uuid.UUID
	Start     *time.Time
	End       *time.Time
	Limit     int
}

type LogService struct {
	db       *gorm.DB
	access   *AccessService
	analyzer LogAnalyzer
	notifier Notifier
}

func NewLogService(db *gorm.DB, access *AccessService, analyzer LogAnalyzer, notifier Notifier) *LogService {
	return &LogService{db: db, access: access, analyzer: analyzer, notifier: notifier}
}

// Analyze classifies text for a project the user can access and stores the
// result. An analyzer failure is returned and nothing is stored.
func (s *LogService) Analyze(ctx context.Context, userID uuid.UUID, req *dto.AnalyzeLogRequest) (*dto.LogResponse, error) {
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return nil, ErrProjectNotFound
	}
	if err := s.access.RequireProjectAccess(userID, projectID); err != nil {
		return nil, err
	}
	project, err := s.project(projectID)
	if err != nil {
		return nil, err
	}

	entry, _, err := s.record(ctx, req.Text, project, "", models.SourceAnalyze)
	if err != nil {
		return nil, err
	}
	return toLogResponse(entry, project), nil
}

// Push is the unauthenticated ingestion path. Critical results raise a
// critical_error notification.
func (s *LogService) Push(ctx context.Context, req *dto.AnalyzeLogRequest) (*dto.LogResponse, error) {
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return nil, ErrProjectNotFound
	}
	project, err := s.project(projectID)
	if err != nil {
		return nil, err
	}

	entry, analysis, err := s.record(ctx, req.Text, project, "", models.SourcePush)
	if err != nil {
		return nil, err
	}
	if analysis.Severity == models.SeverityCritical {
		s.notifier.Notify(ctx, notify.EventCriticalError, notify.Event{
			Summary:  analysis.Summary,
			Cause:    analysis.Cause,
			Severity: analysis.Severity,
			Fix:      analysis.Fix,
		})
	}
	return toLogResponse(entry, project), nil
}

// List returns logs newest first without the raw AI blob. Without a project
// filter the accessible projects are unioned; admins also see logs that
// belong to no project.
func (s *LogService) List(userID uuid.UUID, isAdmin bool, f LogFilter) (*dto.LogListResponse, error) {
	q := s.db.Model(&models.Log{}).Omit("ai_raw").Preload("Project").Preload("Service")

	if f.ProjectID != nil {
		if err := s.access.RequireProjectAccess(userID, *f.ProjectID); err != nil {
			return nil, err
		}
		q = q.Where("project_id = ?", *f.ProjectID)
	} else {
		ids, err := s.access.AccessibleProjectIDs(userID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve accessible projects: %w", err)
		}
		switch {
		case len(ids) == 0 && !isAdmin:
			return &dto.LogListResponse{Logs: []dto.LogResponse{}, Count: 0}, nil
		case len(ids) == 0:
			q = q.Where("project_id IS NULL")
		case isAdmin:
			q = q.Where(s.db.Where("project_id IN ?", ids).Or("project_id IS NULL"))
		default:
			q = q.Scopes(tenant.ForProjects(ids))
		}
	}

	if f.ServiceID != nil {
		var svc models.Service
		err := s.db.Select("id", "project_id").First(&svc, "id = ?", *f.ServiceID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return nil, fmt.Errorf("failed to load service: %w", err)
		case !s.access.HasProjectAccess(userID, svc.ProjectID):
			return nil, ErrAccessDenied
		case f.ProjectID != nil && svc.ProjectID != *f.ProjectID:
			return nil, ErrServiceProjectMismatch
		}
		q = q.Where("service_id = ?", *f.ServiceID)
	}

	if f.Start != nil {
		q = q.Where("created_at >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("created_at <= ?", *f.End)
	}

	var logs []models.Log
	if err := q.Order("created_at DESC").Limit(clampLimit(f.Limit)).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	out := make([]dto.LogResponse, 0, len(logs))
	for i := range logs {
		logs[i].AIRaw = nil
		out = append(out, *toLogResponse(&logs[i], logs[i].Project))
	}
	return &dto.LogListResponse{Logs: out, Count: len(out)}, nil
}

// Get returns one log including the raw AI blob.
func (s *LogService) Get(userID uuid.UUID, isAdmin bool, logID uuid.UUID) (*dto.LogResponse, error) {
	var entry models.Log
	if err := s.db.Preload("Project").Preload("Service").First(&entry, "id = ?", logID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}
	if entry.ProjectID == nil {
		if !isAdmin {
			return nil, ErrAccessDenied
		}
	} else if !s.access.HasProjectAccess(userID, *entry.ProjectID) {
		return nil, ErrAccessDenied
	}
	return toLogResponse(&entry, entry.Project), nil
}

// record analyzes text and persists the annotated log.
func (s *LogService) record(ctx context.Context, text string, project *models.Project, functionName, source string) (*models.Log, *analyzer.LogAnalysis, error) {
	analysis, err := s.analyzer.AnalyzeLog(ctx, text)
	if err != nil {
		return nil, nil, err
	}

	entry := models.Log{
		Text:         text,
		Summary:      analysis.Summary,
		Cause:        analysis.Cause,
		Severity:     analysis.Severity,
		Fix:          analysis.Fix,
		CodePatch:    analysis.CodePatch,
		ProjectID:    &project.ID,
		FunctionName: functionName,
		Source:       source,
	}
	if len(analysis.Raw) > 0 {
		entry.AIRaw = []byte(analysis.Raw)
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to save log: %w", err)
	}
	return &entry, analysis, nil
}

func (s *LogService) project(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func toLogResponse(entry *models.Log, project *models.Project) *dto.LogResponse {
	resp := &dto.LogResponse{Log: *entry}
	if project != nil {
		resp.ProjectName = project.Name
	}
	if entry.Service != nil {
		resp.ServiceName = entry.Service.Name
		resp.ServiceURL = entry.Service.URL
	}
	return resp
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLogLimit
	case limit > MaxLogLimit:
		return MaxLogLimit
	default:
		return limit
	}
}
