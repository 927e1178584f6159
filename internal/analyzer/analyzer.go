// Package analyzer turns free-form error text and database queries into
// fixed-shape records using a chat-completion model.
package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/models"
	"github.com/qri-io/jsonschema"
)

var (
	ErrNotConfigured = errors.New("AI provider not configured")
	ErrEmptyResponse = errors.New("empty response from AI provider")
)

const (
	DefaultSummary = "No summary available"
	DefaultCause   = "No cause identified"
	DefaultFix     = "No fix recommendation"
)

// Provider sends one system+user prompt pair and returns the raw content of
// the first completion.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
}

// AnalysisError wraps any failure of an analysis call.
type AnalysisError struct {
	Op  string
	Err error
}

func (e *AnalysisError) Error() string {
	return "AI " + e.Op + " failed: " + e.Err.Error()
}

func (e *AnalysisError) Unwrap() error { return e.Err }

type LogAnalysis struct {
	Summary   string          `json:"summary"`
	Cause     string          `json:"cause"`
	Severity  string          `json:"severity"`
	Fix       string          `json:"fix"`
	CodePatch string          `json:"codePatch"`
	Raw       json.RawMessage `json:"-"`
}

type QueryAnalysis struct {
	QueryType          string                   `json:"queryType"`
	Language           string                   `json:"language"`
	IsValid            bool                     `json:"isValid"`
	Errors             []string                 `json:"errors"`
	OptimizedQuery     string                   `json:"optimizedQuery"`
	OptimizationReason string                   `json:"optimizationReason"`
	Optimizations      []models.Optimization    `json:"optimizations"`
	IndexSuggestions   []models.IndexSuggestion `json:"indexSuggestions"`
	CorrectedQuery     string                   `json:"correctedQuery"`
	Raw                json.RawMessage          `json:"-"`
}

// Analyzer is safe for concurrent use.
type Analyzer struct {
	provider    Provider
	logSchema   *jsonschema.Schema
	querySchema *jsonschema.Schema
}

func New(provider Provider) (*Analyzer, error) {
	logSchema, err := compileSchema(logAnalysisSchema)
	if err != nil {
		return nil, fmt.Errorf("log analysis schema: %w", err)
	}
	querySchema, err := compileSchema(queryAnalysisSchema)
	if err != nil {
		return nil, fmt.Errorf("query analysis schema: %w", err)
	}
	return &Analyzer{provider: provider, logSchema: logSchema, querySchema: querySchema}, nil
}

// AnalyzeLog classifies text. Repeated calls with the same text may return
// different results.
func (a *Analyzer) AnalyzeLog(ctx context.Context, text string) (*LogAnalysis, error) {
	fields, raw, err := a.complete(ctx, "analysis", a.logSchema, CompletionRequest{
		System:      logSystemPrompt,
		Prompt:      buildLogPrompt(text),
		Temperature: 0.3,
	})
	if err != nil {
		return nil, err
	}

	result := &LogAnalysis{
		Summary:   stringField(fields, "summary", DefaultSummary),
		Cause:     stringField(fields, "cause", DefaultCause),
		Severity:  NormalizeSeverity(stringField(fields, "severity", "")),
		Fix:       stringField(fields, "fix", DefaultFix),
		CodePatch: stringField(fields, "codePatch", ""),
		Raw:       raw,
	}
	return result, nil
}

// OptimizeQuery reviews a database query for validity and performance.
func (a *Analyzer) OptimizeQuery(ctx context.Context, query, functionName string) (*QueryAnalysis, error) {
	fields, raw, err := a.complete(ctx, "query optimization", a.querySchema, CompletionRequest{
		System:      querySystemPrompt,
		Prompt:      buildQueryPrompt(query, functionName),
		Temperature: 0.3,
	})
	if err != nil {
		return nil, err
	}

	result := &QueryAnalysis{
		QueryType:          stringField(fields, "queryType", "Unknown"),
		Language:           stringField(fields, "language", "Unknown"),
		IsValid:            boolField(fields, "isValid", true),
		Errors:             stringSliceField(fields, "errors"),
		OptimizedQuery:     stringField(fields, "optimizedQuery", query),
		OptimizationReason: stringField(fields, "optimizationReason", ""),
		CorrectedQuery:     stringField(fields, "correctedQuery", ""),
		Raw:                raw,
	}
	decodeField(fields, "optimizations", &result.Optimizations)
	decodeField(fields, "indexSuggestions", &result.IndexSuggestions)
	if result.Optimizations == nil {
		result.Optimizations = []models.Optimization{}
	}
	if result.IndexSuggestions == nil {
		result.IndexSuggestions = []models.IndexSuggestion{}
	}
	for i := range result.IndexSuggestions {
		if result.IndexSuggestions[i].Columns == nil {
			result.IndexSuggestions[i].Columns = []string{}
		}
	}
	return result, nil
}

// NormalizeSeverity maps anything outside info/warning/critical to info.
func NormalizeSeverity(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if models.ValidSeverity(s) {
		return s
	}
	return models.SeverityInfo
}

func (a *Analyzer) complete(ctx context.Context, op string, schema *jsonschema.Schema, req CompletionRequest) (map[string]any, json.RawMessage, error) {
	if a.provider == nil {
		return nil, nil, &AnalysisError{Op: op, Err: ErrNotConfigured}
	}

	content, err := a.provider.Complete(ctx, req)
	if err != nil {
		return nil, nil, &AnalysisError{Op: op, Err: err}
	}
	content = cleanJSONContent(content)
	if content == "" {
		return nil, nil, &AnalysisError{Op: op, Err: ErrEmptyResponse}
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, nil, &AnalysisError{Op: op, Err: fmt.Errorf("invalid JSON from %s: %w", a.provider.Name(), err)}
	}

	if verrs, err := schema.ValidateBytes(ctx, []byte(content)); err == nil && len(verrs) > 0 {
		slog.Warn("AI response does not match expected shape",
			"component", "analyzer",
			"provider", a.provider.Name(),
			"op", op,
			"violations", len(verrs),
			"first", verrs[0].PropertyPath+": "+verrs[0].Message,
		)
	}

	return fields, json.RawMessage(content), nil
}

func compileSchema(src string) (*jsonschema.Schema, error) {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(src), rs); err != nil {
		return nil, err
	}
	return rs, nil
}

func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

func stringField(fields map[string]any, key, fallback string) string {
	switch v := fields[key].(type) {
	case nil:
		return fallback
	case string:
		if strings.TrimSpace(v) == "" {
			return fallback
		}
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fallback
		}
		return string(b)
	}
}

func boolField(fields map[string]any, key string, fallback bool) bool {
	switch v := fields[key].(type) {
	case bool:
		return v
	case string:
		return !strings.EqualFold(v, "false")
	default:
		return fallback
	}
}

func stringSliceField(fields map[string]any, key string) []string {
	out := []string{}
	switch v := fields[key].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	case string:
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// decodeField round-trips a loosely typed value into dst, leaving dst
// untouched when the shapes do not match.
func decodeField(fields map[string]any, key string, dst any) {
	v, ok := fields[key]
	if !ok || v == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = json.Unmarshal(b, dst)
}
