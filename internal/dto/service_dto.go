package dto

import "github.com/ahmetcoskunkizilkaya/logwise/internal/models"

type CreateServiceRequest struct {
	Name           string `json:"name" validate:"required,max=255"`
	URL            string `json:"url" validate:"required,url,max=2048"`
	ProjectID      string `json:"project_id" validate:"required,uuid"`
	AutoCheck      bool   `json:"auto_check"`
	MinuteInterval int    `json:"minute_interval" validate:"gte=0,lte=10080"`
	ReportSuccess  bool   `json:"report_success"`
}

type UpdateServiceRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=1,max=255"`
	URL            *string `json:"url" validate:"omitempty,url,max=2048"`
	ProjectID      *string `json:"project_id" validate:"omitempty,uuid"`
	AutoCheck      *bool   `json:"auto_check"`
	MinuteInterval *int    `json:"minute_interval" validate:"omitempty,gte=0,lte=10080"`
	ReportSuccess  *bool   `json:"report_success"`
}

type ServiceListResponse struct {
	Services []models.Service `json:"services"`
	Count    int              `json:"count"`
}
