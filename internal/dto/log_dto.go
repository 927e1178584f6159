package dto

import "github.com/ahmetcoskunkizilkaya/logwise/internal/models"

type AnalyzeLogRequest struct {
	Text      string `json:"text" validate:"required"`
	ProjectID string `json:"project_id" validate:"required,uuid"`
}

// LogResponse is a log row with the names of the project and service it
// belongs to.
type LogResponse struct {
	models.Log
	ProjectName string `json:"project_name,omitempty"`
	ServiceName string `json:"service_name,omitempty"`
	ServiceURL  string `json:"service_url,omitempty"`
}

type LogListResponse struct {
	Logs  []LogResponse `json:"logs"`
	Count int           `json:"count"`
}

type OptimizeQueryRequest struct {
	ProjectID    string `json:"project_id" validate:"required,uuid"`
	FunctionName string `json:"function_name" validate:"max=255"`
	Query        string `json:"query" validate:"required"`
}

type QueryLogListResponse struct {
	QueryLogs []models.QueryOptimizationLog `json:"query_logs"`
	Count     int                           `json:"count"`
}
