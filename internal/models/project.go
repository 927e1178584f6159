package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is the tenant container for services and logs. The owner has
// implicit full access; other users need a UserProject assignment.
type Project struct {
	ID          uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	OwnerID     uuid.UUID `gorm:"size:36;not null;index" json:"owner_id"`
	Owner       *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// UserProject grants a non-owner access to a project. One row per pair.
type UserProject struct {
	ID        uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"size:36;not null;uniqueIndex:idx_user_project,priority:1" json:"user_id"`
	ProjectID uuid.UUID `gorm:"size:36;not null;uniqueIndex:idx_user_project,priority:2;index" json:"project_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (up *UserProject) BeforeCreate(tx *gorm.DB) error {
	if up.ID == uuid.Nil {
		up.ID = uuid.New()
	}
	return nil
}

func (UserProject) TableName() string {
	return "user_projects"
}
