package services

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccessService answers whether a user may read or write a project's
// resources. The owner and assigned users have access. Admin bypasses are
// handled by callers, not here.
type AccessService struct {
	db *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db}
}

// HasProjectAccess fails closed: a missing project or a lookup error both
// deny access.
func (s *AccessService) HasProjectAccess(userID, projectID uuid.UUID) bool {
	var project models.Project
	if err := s.db.Select("id", "owner_id").First(&project, "id = ?", projectID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("project access lookup failed", "project_id", projectID.String(), "error", err)
		}
		return false
	}
	if project.OwnerID == userID {
		return true
	}

	var count int64
	if err := s.db.Model(&models.UserProject{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Count(&count).Error; err != nil {
		slog.Error("project assignment lookup failed", "project_id", projectID.String(), "error", err)
		return false
	}
	return count > 0
}

// AccessibleProjectIDs returns the union of owned and assigned project ids,
// without duplicates.
func (s *AccessService) AccessibleProjectIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	var owned []uuid.UUID
	if err := s.db.Model(&models.Project{}).Where("owner_id = ?", userID).Pluck("id", &owned).Error; err != nil {
		return nil, err
	}
	var assigned []uuid.UUID
	if err := s.db.Model(&models.UserProject{}).Where("user_id = ?", userID).Pluck("project_id", &assigned).Error; err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(owned)+len(assigned))
	ids := make([]uuid.UUID, 0, len(owned)+len(assigned))
	for _, id := range append(owned, assigned...) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// RequireProjectAccess maps a denied check to ErrProjectNotFound or
// ErrAccessDenied.
func (s *AccessService) RequireProjectAccess(userID, projectID uuid.UUID) error {
	if s.HasProjectAccess(userID, projectID) {
		return nil
	}
	var count int64
	if err := s.db.Model(&models.Project{}).Where("id = ?", projectID).Count(&count).Error; err == nil && count == 0 {
		return ErrProjectNotFound
	}
	return ErrAccessDenied
}
