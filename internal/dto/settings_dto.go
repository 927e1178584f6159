package dto

type ThresholdsPatch struct {
	ResponseTime *int     `json:"response_time" validate:"omitempty,gte=1"`
	ErrorRate    *float64 `json:"error_rate" validate:"omitempty,gte=0,lte=100"`
}

type UpdateSettingsRequest struct {
	TelegramBotToken *string          `json:"telegram_bot_token"`
	TelegramGroupID  *string          `json:"telegram_group_id"`
	Thresholds       *ThresholdsPatch `json:"thresholds"`
}

type TestNotificationRequest struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type PerformanceResponse struct {
	Endpoint     string `json:"endpoint"`
	ResponseTime int64  `json:"response_time"`
	Threshold    int    `json:"threshold"`
	Status       int    `json:"status,omitempty"`
	IsSlow       bool   `json:"is_slow"`
	Suggestion   string `json:"suggestion,omitempty"`
	Error        string `json:"error,omitempty"`
}
