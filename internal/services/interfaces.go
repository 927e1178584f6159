package services

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/analyzer"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/notify"
)

type LogAnalyzer interface {
	AnalyzeLog(ctx context.Context, text string) (*analyzer.LogAnalysis, error)
}

type QueryOptimizer interface {
	OptimizeQuery(ctx context.Context, query, functionName string) (*analyzer.QueryAnalysis, error)
}

// Notifier delivers an alert. It reports delivery and never fails the
// caller.
type Notifier interface {
	Notify(ctx context.Context, eventType string, e notify.Event) bool
}
