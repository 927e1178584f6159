package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

const (
	SourceAnalyze      = "analyze"
	SourcePush         = "push"
	SourceWebhook      = "webhook"
	SourceServiceCheck = "service_check"
)

// Log is an AI-annotated error or service-check record. Append-only.
type Log struct {
	ID             uuid.UUID      `gorm:"size:36;primaryKey" json:"id"`
	Text           string         `gorm:"type:text;not null" json:"text"`
	Summary        string         `gorm:"type:text" json:"summary"`
	Cause          string         `gorm:"type:text" json:"cause"`
	Severity       string         `gorm:"size:20;default:'info';index" json:"severity"`
	Fix            string         `gorm:"type:text" json:"fix"`
	CodePatch      string         `gorm:"type:text" json:"code_patch,omitempty"`
	AIRaw          datatypes.JSON `json:"ai_raw,omitempty"`
	ProjectID      *uuid.UUID     `gorm:"size:36;index" json:"project_id"`
	Project        *Project       `gorm:"foreignKey:ProjectID" json:"-"`
	ServiceID      *uuid.UUID     `gorm:"size:36;index" json:"service_id,omitempty"`
	Service        *Service       `gorm:"foreignKey:ServiceID" json:"-"`
	FunctionName   string         `gorm:"size:255" json:"function_name,omitempty"`
	Source         string         `gorm:"size:20;index" json:"source"`
	CheckStatus    string         `gorm:"size:10" json:"check_status,omitempty"`
	ResponseTimeMs *int64         `json:"response_time_ms,omitempty"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (l *Log) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Severity == "" {
		l.Severity = SeverityInfo
	}
	return nil
}

func ValidSeverity(s string) bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}
