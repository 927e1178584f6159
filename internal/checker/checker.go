package checker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/analyzer"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/models"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/notify"
	"gorm.io/gorm"
)

type LogAnalyzer interface {
	AnalyzeLog(ctx context.Context, text string) (*analyzer.LogAnalysis, error)
}

type Notifier interface {
	Notify(ctx context.Context, eventType string, e notify.Event) bool
}

// Mode distinguishes checks requested by a user from scheduled ones.
type Mode int

const (
	// Manual checks always record a log and leave LastAutoCheck alone.
	Manual Mode = iota
	// Auto checks update LastAutoCheck and honour ReportSuccess.
	Auto
)

// Result is the outcome of one check.
type Result struct {
	ServiceID      string    `json:"id"`
	Name           string    `json:"name"`
	URL            string    `json:"url"`
	Status         string    `json:"status"`
	StatusCode     int       `json:"status_code,omitempty"`
	ResponseTimeMs *int64    `json:"response_time"`
	LastChecked    time.Time `json:"last_checked"`
	Error          string    `json:"error,omitempty"`
	LogID          string    `json:"log_id,omitempty"`
	Notified       bool      `json:"notified"`
}

// Checker runs a single check: probe, persist status, then best-effort
// logging and notification.
type Checker struct {
	db       *gorm.DB
	prober   *Prober
	analyzer LogAnalyzer
	notifier Notifier
	now      func() time.Time
}

func New(db *gorm.DB, prober *Prober, analyzer LogAnalyzer, notifier Notifier) *Checker {
	return &Checker{db: db, prober: prober, analyzer: analyzer, notifier: notifier, now: time.Now}
}

// Check probes svc and records the outcome. Only a failure to persist the
// new status is returned as an error; analysis, log and notification
// failures are logged and swallowed.
func (c *Checker) Check(ctx context.Context, svc *models.Service, mode Mode) (*Result, error) {
	probe := c.prober.Probe(ctx, svc.URL)
	now := c.now()

	status := models.StatusDown
	if probe.Up() {
		status = models.StatusUp
	}

	result := &Result{
		ServiceID:   svc.ID.String(),
		Name:        svc.Name,
		URL:         svc.URL,
		Status:      status,
		StatusCode:  probe.StatusCode,
		LastChecked: now,
	}
	if probe.Err != nil {
		result.Error = probe.Err.Error()
	} else {
		ms := probe.Duration.Milliseconds()
		result.ResponseTimeMs = &ms
	}

	updates := map[string]interface{}{
		"status":       status,
		"last_checked": now,
	}
	if mode == Auto {
		updates["last_auto_check"] = now
	}
	if err := c.db.Model(&models.Service{}).Where("id = ?", svc.ID).Updates(updates).Error; err != nil {
		return result, fmt.Errorf("failed to save service status: %w", err)
	}
	svc.Status = status
	svc.LastChecked = &now
	if mode == Auto {
		svc.LastAutoCheck = &now
	}

	if status == models.StatusUp && mode == Auto && !svc.ReportSuccess {
		return result, nil
	}

	analysis := c.recordLog(ctx, svc, result)

	if status == models.StatusDown {
		result.Notified = c.notifyDown(ctx, svc, result, analysis)
	}
	return result, nil
}

func (c *Checker) recordLog(ctx context.Context, svc *models.Service, result *Result) *analyzer.LogAnalysis {
	text := c.describe(svc, result)

	analysis, err := c.analyzer.AnalyzeLog(ctx, text)
	if err != nil {
		slog.Warn("service check analysis failed", "component", "checker", "service_id", svc.ID.String(), "error", err)
		analysis = nil
	}

	entry := models.Log{
		Text:           text,
		Summary:        fmt.Sprintf("Service %s status check: %s", svc.Name, result.Status),
		Cause:          "Service is operational",
		Fix:            "No action needed",
		Severity:       models.SeverityInfo,
		ProjectID:      &svc.ProjectID,
		ServiceID:      &svc.ID,
		Source:         models.SourceServiceCheck,
		CheckStatus:    result.Status,
		ResponseTimeMs: result.ResponseTimeMs,
	}
	if result.Status == models.StatusDown {
		entry.Cause = "Service is not responding"
		entry.Fix = "Check service configuration and network connectivity"
		entry.Severity = models.SeverityCritical
	}
	if analysis != nil {
		entry.Summary = pick(analysis.Summary, analyzer.DefaultSummary, entry.Summary)
		entry.Cause = pick(analysis.Cause, analyzer.DefaultCause, entry.Cause)
		entry.Fix = pick(analysis.Fix, analyzer.DefaultFix, entry.Fix)
		entry.CodePatch = analysis.CodePatch
		entry.AIRaw = []byte(analysis.Raw)
	}

	if err := c.db.Create(&entry).Error; err != nil {
		slog.Error("failed to save service check log", "component", "checker", "service_id", svc.ID.String(), "error", err)
	} else {
		result.LogID = entry.ID.String()
	}
	return analysis
}

func (c *Checker) notifyDown(ctx context.Context, svc *models.Service, result *Result, analysis *analyzer.LogAnalysis) bool {
	if analysis == nil {
		var text string
		if result.Error != "" {
			text = fmt.Sprintf("Service %s (%s) is unreachable. Error: %s", svc.Name, svc.URL, result.Error)
		} else {
			text = fmt.Sprintf("Service %s (%s) is down. Status code: %d", svc.Name, svc.URL, result.StatusCode)
		}
		a, err := c.analyzer.AnalyzeLog(ctx, text)
		if err != nil {
			slog.Warn("service down analysis failed", "component", "checker", "service_id", svc.ID.String(), "error", err)
		} else {
			analysis = a
		}
	}

	event := notify.Event{
		Name:   svc.Name,
		URL:    svc.URL,
		Status: models.StatusDown,
		Cause:  "Service is not responding",
		Fix:    "Check service configuration and network connectivity",
	}
	if analysis != nil {
		event.Cause = pick(analysis.Cause, analyzer.DefaultCause, event.Cause)
		event.Fix = pick(analysis.Fix, analyzer.DefaultFix, event.Fix)
	}
	return c.notifier.Notify(ctx, notify.EventServiceDown, event)
}

func (c *Checker) describe(svc *models.Service, result *Result) string {
	projectName := "Unknown"
	var project models.Project
	if err := c.db.Select("name").Where("id = ?", svc.ProjectID).Limit(1).Find(&project).Error; err == nil && project.Name != "" {
		projectName = project.Name
	}

	text := fmt.Sprintf("Service check: %s (%s) is %s", svc.Name, svc.URL, result.Status)
	if result.Error != "" {
		text += ". Error: " + result.Error
	} else if result.Status == models.StatusDown {
		text += fmt.Sprintf(". Status code: %d", result.StatusCode)
	}
	if result.ResponseTimeMs != nil {
		text += fmt.Sprintf(". Response time: %dms", *result.ResponseTimeMs)
	} else {
		text += ". Response time: N/A"
	}
	return text + ". Project: " + projectName
}

// pick returns value unless it is empty or the analyzer's placeholder.
func pick(value, placeholder, fallback string) string {
	if value == "" || value == placeholder {
		return fallback
	}
	return value
}
