package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	content string
	err     error
	last    CompletionRequest
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(_ context.Context, req CompletionRequest) (string, error) {
	s.last = req
	return s.content, s.err
}

func newAnalyzer(t *testing.T, p Provider) *Analyzer {
	t.Helper()
	a, err := New(p)
	require.NoError(t, err)
	return a
}

func TestAnalyzeLogNormalizesSeverity(t *testing.T) {
	for _, severity := range []string{"high", "", "CRITICALISH", "debug"} {
		p := &stubProvider{content: `{"summary":"s","cause":"c","severity":"` + severity + `","fix":"f"}`}
		res, err := newAnalyzer(t, p).AnalyzeLog(context.Background(), "boom")
		require.NoError(t, err)
		assert.Equal(t, "info", res.Severity, "severity %q", severity)
	}

	p := &stubProvider{content: `{"summary":"s","cause":"c","severity":"Critical","fix":"f"}`}
	res, err := newAnalyzer(t, p).AnalyzeLog(context.Background(), "boom")
	require.NoError(t, err)
	assert.Equal(t, "critical", res.Severity)
}

func TestAnalyzeLogBackfillsDefaults(t *testing.T) {
	p := &stubProvider{content: "```json\n{\"severity\":\"warning\"}\n```"}
	res, err := newAnalyzer(t, p).AnalyzeLog(context.Background(), "NullPointerException at line 42")
	require.NoError(t, err)

	assert.Equal(t, DefaultSummary, res.Summary)
	assert.Equal(t, DefaultCause, res.Cause)
	assert.Equal(t, DefaultFix, res.Fix)
	assert.Equal(t, "warning", res.Severity)
	assert.Empty(t, res.CodePatch)
	assert.JSONEq(t, `{"severity":"warning"}`, string(res.Raw))

	assert.Contains(t, p.last.Prompt, "LOG TEXT:\nNullPointerException at line 42")
	assert.Equal(t, 0.3, p.last.Temperature)
	assert.Equal(t, logSystemPrompt, p.last.System)
}

func TestAnalyzeLogCoercesNonStringFields(t *testing.T) {
	p := &stubProvider{content: `{"summary":"s","cause":"c","severity":"info","fix":["restart","scale"]}`}
	res, err := newAnalyzer(t, p).AnalyzeLog(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, `["restart","scale"]`, res.Fix)
}

func TestAnalyzeLogFailures(t *testing.T) {
	cases := map[string]*stubProvider{
		"provider error": {err: errors.New("rate limited")},
		"empty content":  {content: "  "},
		"invalid json":   {content: "not json"},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := newAnalyzer(t, p).AnalyzeLog(context.Background(), "x")
			require.Error(t, err)
			var aerr *AnalysisError
			require.ErrorAs(t, err, &aerr)
			assert.Contains(t, err.Error(), "AI analysis failed")
		})
	}

	_, err := newAnalyzer(t, &stubProvider{err: errors.New("rate limited")}).AnalyzeLog(context.Background(), "x")
	assert.ErrorContains(t, err, "rate limited")

	_, err = newAnalyzer(t, nil).AnalyzeLog(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestOptimizeQuery(t *testing.T) {
	p := &stubProvider{content: `{
		"queryType": "SELECT",
		"language": "PostgreSQL",
		"isValid": false,
		"errors": ["missing FROM"],
		"optimizedQuery": "SELECT id FROM users WHERE email = $1",
		"optimizations": [{"suggestion": "select only needed columns", "reason": "less IO", "impact": "medium"}],
		"indexSuggestions": [{"index": "CREATE INDEX idx_users_email ON users(email)", "reason": "lookup"}],
		"correctedQuery": "SELECT * FROM users WHERE email = $1"
	}`}
	res, err := newAnalyzer(t, p).OptimizeQuery(context.Background(), "SELECT * users WHERE email = $1", "findUser")
	require.NoError(t, err)

	assert.Equal(t, "SELECT", res.QueryType)
	assert.Equal(t, "PostgreSQL", res.Language)
	assert.False(t, res.IsValid)
	assert.Equal(t, []string{"missing FROM"}, res.Errors)
	require.Len(t, res.Optimizations, 1)
	assert.Equal(t, "medium", res.Optimizations[0].Impact)
	require.Len(t, res.IndexSuggestions, 1)
	assert.Equal(t, []string{}, res.IndexSuggestions[0].Columns)
	assert.Contains(t, p.last.Prompt, "CALLING FUNCTION: findUser")
}

func TestOptimizeQueryDefaults(t *testing.T) {
	p := &stubProvider{content: `{}`}
	res, err := newAnalyzer(t, p).OptimizeQuery(context.Background(), "SELECT 1", "")
	require.NoError(t, err)

	assert.Equal(t, "Unknown", res.QueryType)
	assert.Equal(t, "Unknown", res.Language)
	assert.True(t, res.IsValid)
	assert.Equal(t, "SELECT 1", res.OptimizedQuery)
	assert.Empty(t, res.Errors)
	assert.NotNil(t, res.Optimizations)
	assert.NotContains(t, p.last.Prompt, "CALLING FUNCTION")
}

func TestGroqProvider(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"summary\":\"ok\"}"}}]}`))
	}))
	defer srv.Close()

	p := NewGroqProvider("key", srv.URL, "llama-3.3-70b-versatile", 0)
	content, err := p.Complete(context.Background(), CompletionRequest{System: "sys", Prompt: "user", Temperature: 0.3})
	require.NoError(t, err)

	assert.Equal(t, `{"summary":"ok"}`, content)
	assert.Equal(t, "llama-3.3-70b-versatile", got.Model)
	assert.Equal(t, 0.3, got.Temperature)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
}

func TestGroqProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached"}}`))
	}))
	defer srv.Close()

	_, err := NewGroqProvider("key", srv.URL, "m", 0).Complete(context.Background(), CompletionRequest{})
	assert.ErrorContains(t, err, "Rate limit reached")

	_, err = NewGroqProvider("", srv.URL, "m", 0).Complete(context.Background(), CompletionRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer empty.Close()
	_, err = NewGroqProvider("key", empty.URL, "m", 0).Complete(context.Background(), CompletionRequest{})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOllamaProvider(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3.1","message":{"role":"assistant","content":"{\"severity\":\"critical\"}"},"done":true}` + "\n"))
	}))
	defer srv.Close()

	p, err := NewOllamaProvider(srv.URL, "llama3.1", 0)
	require.NoError(t, err)

	res, err := newAnalyzer(t, p).AnalyzeLog(context.Background(), "panic")
	require.NoError(t, err)
	assert.Equal(t, "critical", res.Severity)
	assert.Equal(t, "llama3.1", got["model"])
	assert.Equal(t, "json", got["format"])
	assert.Equal(t, false, got["stream"])
}

func TestNewOllamaProviderRejectsBadURL(t *testing.T) {
	_, err := NewOllamaProvider("::not a url", "m", 0)
	assert.Error(t, err)
}
