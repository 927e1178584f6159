package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GlobalSettingsKey is the fixed unique key of the single settings row.
const GlobalSettingsKey = "global"

const (
	DefaultResponseTimeThreshold = 1000
	DefaultErrorRateThreshold    = 5
)

type Thresholds struct {
	ResponseTime int     `json:"response_time"`
	ErrorRate    float64 `json:"error_rate"`
}

// Setting holds chat notification credentials and alert thresholds.
type Setting struct {
	ID               uuid.UUID  `gorm:"size:36;primaryKey" json:"id"`
	Key              string     `gorm:"column:setting_key;size:32;not null;uniqueIndex" json:"-"`
	TelegramBotToken string     `gorm:"size:255" json:"telegram_bot_token"`
	TelegramGroupID  string     `gorm:"size:64" json:"telegram_group_id"`
	Thresholds       Thresholds `gorm:"embedded;embeddedPrefix:threshold_" json:"thresholds"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (s *Setting) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// All lists every model managed by AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&RefreshToken{},
		&Project{},
		&UserProject{},
		&Service{},
		&Log{},
		&QueryOptimizationLog{},
		&Setting{},
		&SystemLog{},
	}
}
