package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/dto"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/models"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceManager handles CRUD for monitored services. Status fields are
// owned by the checker and never written here.
type ServiceManager struct {
	db     *gorm.DB
	access *AccessService
}

func NewServiceManager(db *gorm.DB, access *AccessService) *ServiceManager {
	return &ServiceManager{db: db, access: access}
}

// List returns services of projectID, or of every accessible project when
// projectID is nil. No accessible projects yields an empty list.
func (s *ServiceManager) List(userID uuid.UUID, projectID *uuid.UUID) ([]models.Service, error) {
	ids, err := s.scope(userID, projectID)
	if err != nil {
		return nil, err
	}
	services := []models.Service{}
	if len(ids) == 0 {
		return services, nil
	}
	if err := s.db.Preload("Project").Scopes(tenant.ForProjects(ids)).Order("created_at DESC").Find(&services).Error; err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func (s *ServiceManager) Get(userID, serviceID uuid.UUID) (*models.Service, error) {
	var svc models.Service
	if err := s.db.Preload("Project").First(&svc, "id = ?", serviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	if !s.access.HasProjectAccess(userID, svc.ProjectID) {
		return nil, ErrAccessDenied
	}
	return &svc, nil
}

func (s *ServiceManager) Create(userID uuid.UUID, req *dto.CreateServiceRequest) (*models.Service, error) {
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return nil, ErrProjectNotFound
	}
	if err := s.access.RequireProjectAccess(userID, projectID); err != nil {
		return nil, err
	}
	if req.AutoCheck && req.MinuteInterval < 1 {
		return nil, ErrInvalidInterval
	}

	svc := models.Service{
		Name:           strings.TrimSpace(req.Name),
		URL:            strings.TrimSpace(req.URL),
		ProjectID:      projectID,
		Status:         models.StatusUnknown,
		AutoCheck:      req.AutoCheck,
		MinuteInterval: req.MinuteInterval,
		ReportSuccess:  req.ReportSuccess,
	}
	if err := s.db.Create(&svc).Error; err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return s.Get(userID, svc.ID)
}

// Update applies a partial update. Moving a service to another project
// requires access to both projects.
func (s *ServiceManager) Update(userID, serviceID uuid.UUID, req *dto.UpdateServiceRequest) (*models.Service, error) {
	svc, err := s.Get(userID, serviceID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.URL != nil {
		updates["url"] = strings.TrimSpace(*req.URL)
	}
	if req.ProjectID != nil {
		projectID, err := uuid.Parse(*req.ProjectID)
		if err != nil {
			return nil, ErrProjectNotFound
		}
		if err := s.access.RequireProjectAccess(userID, projectID); err != nil {
			return nil, err
		}
		updates["project_id"] = projectID
	}

	autoCheck := svc.AutoCheck
	interval := svc.MinuteInterval
	if req.AutoCheck != nil {
		autoCheck = *req.AutoCheck
		updates["auto_check"] = autoCheck
	}
	if req.MinuteInterval != nil {
		interval = *req.MinuteInterval
		updates["minute_interval"] = interval
	}
	if autoCheck && interval < 1 {
		return nil, ErrInvalidInterval
	}
	if req.ReportSuccess != nil {
		updates["report_success"] = *req.ReportSuccess
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.Service{}).Where("id = ?", serviceID).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update service: %w", err)
		}
	}
	return s.Get(userID, serviceID)
}

// Delete removes the service row only; its logs are kept.
func (s *ServiceManager) Delete(userID, serviceID uuid.UUID) error {
	if _, err := s.Get(userID, serviceID); err != nil {
		return err
	}
	if err := s.db.Delete(&models.Service{}, "id = ?", serviceID).Error; err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	return nil
}

func (s *ServiceManager) scope(userID uuid.UUID, projectID *uuid.UUID) ([]uuid.UUID, error) {
	if projectID != nil {
		if err := s.access.RequireProjectAccess(userID, *projectID); err != nil {
			return nil, err
		}
		return []uuid.UUID{*projectID}, nil
	}
	ids, err := s.access.AccessibleProjectIDs(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve accessible projects: %w", err)
	}
	return ids, nil
}
