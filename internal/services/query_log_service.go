package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/dto"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/models"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QueryLogService struct {
	db        *gorm.DB
	access    *AccessService
	optimizer QueryOptimizer
}

func NewQueryLogService(db *gorm.DB, access *AccessService, optimizer QueryOptimizer) *QueryLogService {
	return &QueryLogService{db: db, access: access, optimizer: optimizer}
}

// Optimize reviews a query and stores the review. Nothing is stored when
// the optimizer fails.
func (s *QueryLogService) Optimize(ctx context.Context, userID uuid.UUID, req *dto.OptimizeQueryRequest) (*models.QueryOptimizationLog, error) {
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return nil, ErrProjectNotFound
	}
	if err := s.access.RequireProjectAccess(userID, projectID); err != nil {
		return nil, err
	}

	functionName := strings.TrimSpace(req.FunctionName)
	result, err := s.optimizer.OptimizeQuery(ctx, req.Query, functionName)
	if err != nil {
		return nil, err
	}

	entry := models.QueryOptimizationLog{
		Query:              req.Query,
		QueryType:          result.QueryType,
		Language:           result.Language,
		IsValid:            result.IsValid,
		Errors:             result.Errors,
		OptimizedQuery:     result.OptimizedQuery,
		OptimizationReason: result.OptimizationReason,
		Optimizations:      result.Optimizations,
		IndexSuggestions:   result.IndexSuggestions,
		CorrectedQuery:     result.CorrectedQuery,
		ProjectID:          projectID,
		FunctionName:       functionName,
	}
	if len(result.Raw) > 0 {
		entry.AIRaw = []byte(result.Raw)
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to save query log: %w", err)
	}
	return &entry, nil
}

// List returns query reviews newest first, scoped like logs.
func (s *QueryLogService) List(userID uuid.UUID, projectID *uuid.UUID, limit int) (*dto.QueryLogListResponse, error) {
	var ids []uuid.UUID
	if projectID != nil {
		if err := s.access.RequireProjectAccess(userID, *projectID); err != nil {
			return nil, err
		}
		ids = []uuid.UUID{*projectID}
	} else {
		var err error
		if ids, err = s.access.AccessibleProjectIDs(userID); err != nil {
			return nil, fmt.Errorf("failed to resolve accessible projects: %w", err)
		}
	}

	entries := []models.QueryOptimizationLog{}
	if len(ids) > 0 {
		if err := s.db.Omit("ai_raw").
			Scopes(tenant.ForProjects(ids)).
			Order("created_at DESC").
			Limit(clampLimit(limit)).
			Find(&entries).Error; err != nil {
			return nil, fmt.Errorf("failed to list query logs: %w", err)
		}
	}
	return &dto.QueryLogListResponse{QueryLogs: entries, Count: len(entries)}, nil
}

func (s *QueryLogService) Get(userID, id uuid.UUID) (*models.QueryOptimizationLog, error) {
	var entry models.QueryOptimizationLog
	if err := s.db.First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQueryLogNotFound
		}
		return nil, err
	}
	if !s.access.HasProjectAccess(userID, entry.ProjectID) {
		return nil, ErrAccessDenied
	}
	return &entry, nil
}
