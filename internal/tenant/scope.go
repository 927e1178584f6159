package tenant

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForProjects returns a GORM scope that filters by project_id membership.
func ForProjects(ids []uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("project_id IN ?", ids)
	}
}
