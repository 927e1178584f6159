package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/dto"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectService struct {
	db     *gorm.DB
	access *AccessService
}

func NewProjectService(db *gorm.DB, access *AccessService) *ProjectService {
	return &ProjectService{db: db, access: access}
}

// List returns every project the user owns or is assigned to.
func (s *ProjectService) List(userID uuid.UUID) (*dto.ProjectListResponse, error) {
	ids, err := s.access.AccessibleProjectIDs(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve accessible projects: %w", err)
	}

	resp := &dto.ProjectListResponse{Projects: []dto.ProjectResponse{}}
	if len(ids) == 0 {
		return resp, nil
	}

	var projects []models.Project
	if err := s.db.Preload("Owner").Where("id IN ?", ids).Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	for i := range projects {
		resp.Projects = append(resp.Projects, toProjectResponse(&projects[i], userID))
	}
	resp.Count = len(resp.Projects)
	return resp, nil
}

// Get returns a project with its assigned users.
func (s *ProjectService) Get(userID, projectID uuid.UUID) (*dto.ProjectResponse, error) {
	if err := s.access.RequireProjectAccess(userID, projectID); err != nil {
		return nil, err
	}
	return s.load(userID, projectID)
}

func (s *ProjectService) Create(userID uuid.UUID, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	project := models.Project{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		OwnerID:     userID,
	}
	if project.Name == "" {
		return nil, &dto.ValidationError{Field: "name", Tag: "required"}
	}
	if err := s.db.Create(&project).Error; err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return s.load(userID, project.ID)
}

func (s *ProjectService) Update(userID, projectID uuid.UUID, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	if _, err := s.requireOwner(userID, projectID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) > 0 {
		if err := s.db.Model(&models.Project{}).Where("id = ?", projectID).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update project: %w", err)
		}
	}
	return s.load(userID, projectID)
}

// Delete removes a project and its assignments. Services, logs and query
// logs of the project are kept unless cascade is set.
func (s *ProjectService) Delete(userID, projectID uuid.UUID, cascade bool) error {
	if _, err := s.requireOwner(userID, projectID); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.UserProject{}).Error; err != nil {
			return err
		}
		if cascade {
			var serviceIDs []uuid.UUID
			if err := tx.Model(&models.Service{}).Where("project_id = ?", projectID).Pluck("id", &serviceIDs).Error; err != nil {
				return err
			}
			if len(serviceIDs) > 0 {
				if err := tx.Where("service_id IN ?", serviceIDs).Delete(&models.Log{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("project_id = ?", projectID).Delete(&models.Log{}).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", projectID).Delete(&models.QueryOptimizationLog{}).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", projectID).Delete(&models.Service{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Project{}, "id = ?", projectID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	slog.Info("project deleted", "project_id", projectID.String(), "cascade", cascade)
	return nil
}

// AssignUser grants targetID access. Only an admin or the owner may assign.
func (s *ProjectService) AssignUser(actorID uuid.UUID, actorIsAdmin bool, projectID, targetID uuid.UUID) (*dto.UserResponse, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}
	if !actorIsAdmin && project.OwnerID != actorID {
		return nil, ErrNotOwner
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.UserProject{}).Where("user_id = ? AND project_id = ?", targetID, projectID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 || project.OwnerID == targetID {
		return nil, ErrAlreadyAssigned
	}

	if err := s.db.Create(&models.UserProject{UserID: targetID, ProjectID: projectID}).Error; err != nil {
		return nil, fmt.Errorf("failed to assign user: %w", err)
	}

	resp := toUserResponse(&user)
	return &resp, nil
}

// UnassignUser revokes targetID's assignment. The owner cannot be removed.
func (s *ProjectService) UnassignUser(actorID uuid.UUID, actorIsAdmin bool, projectID, targetID uuid.UUID) error {
	project, err := s.findProject(projectID)
	if err != nil {
		return err
	}
	if !actorIsAdmin && project.OwnerID != actorID {
		return ErrNotOwner
	}
	if project.OwnerID == targetID {
		return ErrCannotRemoveOwner
	}

	result := s.db.Where("user_id = ? AND project_id = ?", targetID, projectID).Delete(&models.UserProject{})
	if result.Error != nil {
		return fmt.Errorf("failed to unassign user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// AvailableUsers lists users that are neither owner nor assignee.
func (s *ProjectService) AvailableUsers(projectID uuid.UUID) ([]dto.UserResponse, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}

	assigned := s.db.Model(&models.UserProject{}).Select("user_id").Where("project_id = ?", projectID)

	var users []models.User
	if err := s.db.Where("id <> ? AND id NOT IN (?)", project.OwnerID, assigned).
		Order("email ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	resp := make([]dto.UserResponse, len(users))
	for i := range users {
		resp[i] = toUserResponse(&users[i])
	}
	return resp, nil
}

func (s *ProjectService) findProject(projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) requireOwner(userID, projectID uuid.UUID) (*models.Project, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != userID {
		return nil, ErrNotOwner
	}
	return project, nil
}

func (s *ProjectService) load(userID, projectID uuid.UUID) (*dto.ProjectResponse, error) {
	var project models.Project
	if err := s.db.Preload("Owner").First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	var assignments []models.UserProject
	if err := s.db.Preload("User").Where("project_id = ?", projectID).Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}

	resp := toProjectResponse(&project, userID)
	resp.AssignedUsers = make([]dto.UserResponse, 0, len(assignments))
	for _, a := range assignments {
		if a.User != nil {
			resp.AssignedUsers = append(resp.AssignedUsers, toUserResponse(a.User))
		}
	}
	return &resp, nil
}

func toProjectResponse(p *models.Project, viewerID uuid.UUID) dto.ProjectResponse {
	resp := dto.ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		IsOwner:     p.OwnerID == viewerID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Owner != nil {
		resp.OwnerEmail = p.Owner.Email
	}
	return resp
}
