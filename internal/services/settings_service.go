package services

import (
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/dto"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsService owns the single settings row, keyed by
// models.GlobalSettingsKey under a unique index.
type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// Get returns the settings row, creating it with defaults on first access.
// Concurrent first calls converge on one row: the insert is a no-op on
// conflict and the winner is read back.
func (s *SettingsService) Get() (*models.Setting, error) {
	setting, found, err := s.find()
	if err != nil {
		return nil, err
	}
	if found {
		return setting, nil
	}

	defaults := models.Setting{
		Key: models.GlobalSettingsKey,
		Thresholds: models.Thresholds{
			ResponseTime: models.DefaultResponseTimeThreshold,
			ErrorRate:    models.DefaultErrorRateThreshold,
		},
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoNothing: true,
	}).Create(&defaults).Error; err != nil {
		return nil, fmt.Errorf("failed to create settings: %w", err)
	}

	setting, found, err = s.find()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.New("settings row missing after create")
	}
	return setting, nil
}

// Update applies a partial update. Thresholds are merged field by field.
func (s *SettingsService) Update(req *dto.UpdateSettingsRequest) (*models.Setting, error) {
	setting, err := s.Get()
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.TelegramBotToken != nil {
		updates["telegram_bot_token"] = *req.TelegramBotToken
	}
	if req.TelegramGroupID != nil {
		updates["telegram_group_id"] = *req.TelegramGroupID
	}
	if req.Thresholds != nil {
		if req.Thresholds.ResponseTime != nil {
			updates["threshold_response_time"] = *req.Thresholds.ResponseTime
		}
		if req.Thresholds.ErrorRate != nil {
			updates["threshold_error_rate"] = *req.Thresholds.ErrorRate
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.Setting{}).Where("id = ?", setting.ID).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update settings: %w", err)
		}
	}
	return s.Get()
}

func (s *SettingsService) find() (*models.Setting, bool, error) {
	var setting models.Setting
	result := s.db.Where("setting_key = ?", models.GlobalSettingsKey).Limit(1).Find(&setting)
	if result.Error != nil {
		return nil, false, fmt.Errorf("failed to load settings: %w", result.Error)
	}
	return &setting, result.RowsAffected > 0, nil
}
