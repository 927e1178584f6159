package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusUp      = "up"
	StatusDown    = "down"
	StatusUnknown = "unknown"
)

// Service is a monitored HTTP endpoint. Status, LastChecked and
// LastAutoCheck are written only by check operations.
type Service struct {
	ID             uuid.UUID  `gorm:"size:36;primaryKey" json:"id"`
	Name           string     `gorm:"size:255;not null" json:"name"`
	URL            string     `gorm:"size:2048;not null" json:"url"`
	Status         string     `gorm:"size:10;default:'unknown'" json:"status"`
	LastChecked    *time.Time `json:"last_checked"`
	ProjectID      uuid.UUID  `gorm:"size:36;not null;index" json:"project_id"`
	Project        *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	AutoCheck      bool       `gorm:"index" json:"auto_check"`
	MinuteInterval int        `json:"minute_interval"`
	ReportSuccess  bool       `json:"report_success"`
	LastAutoCheck  *time.Time `json:"last_auto_check"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = StatusUnknown
	}
	return nil
}

// DueForAutoCheck reports whether an automatic check should run at now.
// A service never auto-checked is always due.
func (s *Service) DueForAutoCheck(now time.Time) bool {
	if !s.AutoCheck || s.MinuteInterval < 1 {
		return false
	}
	if s.LastAutoCheck == nil {
		return true
	}
	return now.Sub(*s.LastAutoCheck) >= time.Duration(s.MinuteInterval)*time.Minute
}
