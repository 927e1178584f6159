package dto

import "time"

type WebhookLogRequest struct {
	ErrorText    string `json:"error_text" validate:"required"`
	ProjectID    string `json:"project_id" validate:"required,uuid"`
	FunctionName string `json:"function_name" validate:"max=255"`
}

type WebhookLogAccepted struct {
	Message   string    `json:"message"`
	ProjectID string    `json:"project_id"`
	Timestamp time.Time `json:"timestamp"`
}

type WebhookAnalyzeRequest struct {
	ErrorText    string `json:"error_text" validate:"required"`
	ProjectID    string `json:"project_id" validate:"required,uuid"`
	FunctionName string `json:"function_name" validate:"max=255"`
}

type WebhookAnalyzeResponse struct {
	Log         LogResponse `json:"log"`
	ProjectName string      `json:"project_name"`
}
