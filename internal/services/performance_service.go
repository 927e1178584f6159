package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/analyzer"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/checker"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/dto"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/models"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/notify"
)

// PerformanceService times a single GET against an arbitrary endpoint and
// compares it with the configured response-time threshold.
type PerformanceService struct {
	prober   *checker.Prober
	settings *SettingsService
	analyzer LogAnalyzer
	notifier Notifier
}

func NewPerformanceService(prober *checker.Prober, settings *SettingsService, analyzer LogAnalyzer, notifier Notifier) *PerformanceService {
	return &PerformanceService{prober: prober, settings: settings, analyzer: analyzer, notifier: notifier}
}

// Check returns ErrEndpointUnreachable together with a populated response
// when the request fails at the transport level.
func (s *PerformanceService) Check(ctx context.Context, endpoint string) (*dto.PerformanceResponse, error) {
	setting, err := s.settings.Get()
	if err != nil {
		return nil, err
	}
	threshold := setting.Thresholds.ResponseTime
	if threshold <= 0 {
		threshold = models.DefaultResponseTimeThreshold
	}

	probe := s.prober.Probe(ctx, endpoint)
	resp := &dto.PerformanceResponse{
		Endpoint:     endpoint,
		ResponseTime: probe.Duration.Milliseconds(),
		Threshold:    threshold,
	}
	if probe.Err != nil {
		resp.Error = probe.Err.Error()
		resp.IsSlow = true
		return resp, fmt.Errorf("%w: %v", ErrEndpointUnreachable, probe.Err)
	}

	resp.Status = probe.StatusCode
	resp.IsSlow = resp.ResponseTime > int64(threshold)
	if !resp.IsSlow {
		return resp, nil
	}

	text := fmt.Sprintf("API endpoint %s is slow. Response time: %dms, Threshold: %dms", endpoint, resp.ResponseTime, threshold)
	analysis, err := s.analyzer.AnalyzeLog(ctx, text)
	if err != nil {
		slog.Warn("performance analysis failed", "component", "performance", "endpoint", endpoint, "error", err)
		resp.Suggestion = analyzer.DefaultFix
	} else {
		resp.Suggestion = analysis.Fix
	}

	s.notifier.Notify(ctx, notify.EventPerformanceIssue, notify.Event{
		Endpoint:     endpoint,
		ResponseTime: resp.ResponseTime,
		Threshold:    threshold,
		Suggestion:   resp.Suggestion,
	})
	return resp, nil
}
