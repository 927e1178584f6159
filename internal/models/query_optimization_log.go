package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Optimization struct {
	Suggestion string `json:"suggestion"`
	Reason     string `json:"reason"`
	Impact     string `json:"impact"`
}

type IndexSuggestion struct {
	Index   string   `json:"index"`
	Reason  string   `json:"reason"`
	Columns []string `json:"columns"`
}

// QueryOptimizationLog records one AI review of a database query.
type QueryOptimizationLog struct {
	ID                 uuid.UUID                            `gorm:"size:36;primaryKey" json:"id"`
	Query              string                               `gorm:"type:text;not null" json:"query"`
	QueryType          string                               `gorm:"size:50" json:"query_type"`
	Language           string                               `gorm:"size:50" json:"language"`
	IsValid            bool                                 `json:"is_valid"`
	Errors             datatypes.JSONSlice[string]          `json:"errors"`
	OptimizedQuery     string                               `gorm:"type:text" json:"optimized_query"`
	OptimizationReason string                               `gorm:"type:text" json:"optimization_reason"`
	Optimizations      datatypes.JSONSlice[Optimization]    `json:"optimizations"`
	IndexSuggestions   datatypes.JSONSlice[IndexSuggestion] `json:"index_suggestions"`
	CorrectedQuery     string                               `gorm:"type:text" json:"corrected_query"`
	AIRaw              datatypes.JSON                       `json:"ai_raw,omitempty"`
	ProjectID          uuid.UUID                            `gorm:"size:36;not null;index" json:"project_id"`
	FunctionName       string                               `gorm:"size:255" json:"function_name,omitempty"`
	CreatedAt          time.Time                            `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time                            `json:"updated_at"`
}

func (q *QueryOptimizationLog) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.QueryType == "" {
		q.QueryType = "Unknown"
	}
	if q.Language == "" {
		q.Language = "Unknown"
	}
	return nil
}
