// Package notify formats alert text and delivers it to a Telegram chat.
package notify

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"
)

const (
	EventCriticalError    = "critical_error"
	EventServiceDown      = "service_down"
	EventPerformanceIssue = "performance_issue"
	EventTest             = "test"
	EventWebhookError     = "webhook_error"
)

// MaxErrorTextLen is the number of characters of raw error text embedded in
// a webhook_error message before it is cut and suffixed with "...".
const MaxErrorTextLen = 500

// Event carries the fields used by the message templates. Each template
// reads only the fields relevant to its event type.
type Event struct {
	Summary  string `json:"summary,omitempty"`
	Cause    string `json:"cause,omitempty"`
	Severity string `json:"severity,omitempty"`
	Fix      string `json:"fix,omitempty"`

	Name   string `json:"name,omitempty"`
	URL    string `json:"url,omitempty"`
	Status string `json:"status,omitempty"`

	Endpoint     string `json:"endpoint,omitempty"`
	ResponseTime int64  `json:"response_time,omitempty"`
	Threshold    int    `json:"threshold,omitempty"`
	Suggestion   string `json:"suggestion,omitempty"`

	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`

	ProjectName  string `json:"project_name,omitempty"`
	FunctionName string `json:"function_name,omitempty"`
	ErrorText    string `json:"error_text,omitempty"`
	LogID        string `json:"log_id,omitempty"`
}

// FormatMessage renders the template for eventType stamped with the current
// time. Unknown event types fall back to a JSON dump of the event.
func FormatMessage(eventType string, e Event) string {
	return FormatMessageAt(eventType, e, time.Now())
}

func FormatMessageAt(eventType string, e Event, now time.Time) string {
	ts := now.UTC().Format(time.RFC3339)
	esc := html.EscapeString
	var b strings.Builder

	switch eventType {
	case EventCriticalError:
		b.WriteString("🚨 <b>Critical Error Detected</b>\n\n")
		fmt.Fprintf(&b, "Summary: %s\n", esc(e.Summary))
		fmt.Fprintf(&b, "Cause: %s\n", esc(e.Cause))
		fmt.Fprintf(&b, "Severity: %s\n", esc(e.Severity))
		fmt.Fprintf(&b, "Fix: %s\n", esc(e.Fix))
		fmt.Fprintf(&b, "Time: %s", ts)

	case EventServiceDown:
		b.WriteString("⚠️ <b>Service Down</b>\n\n")
		fmt.Fprintf(&b, "Service: %s\n", esc(e.Name))
		fmt.Fprintf(&b, "URL: %s\n", esc(e.URL))
		fmt.Fprintf(&b, "Status: %s\n", esc(e.Status))
		if e.Cause != "" {
			fmt.Fprintf(&b, "Cause: %s\n", esc(e.Cause))
		}
		if e.Fix != "" {
			fmt.Fprintf(&b, "Fix: %s\n", esc(e.Fix))
		}
		fmt.Fprintf(&b, "Time: %s", ts)

	case EventPerformanceIssue:
		b.WriteString("⚡ <b>Performance Issue</b>\n\n")
		fmt.Fprintf(&b, "Endpoint: %s\n", esc(e.Endpoint))
		fmt.Fprintf(&b, "Response Time: %dms\n", e.ResponseTime)
		fmt.Fprintf(&b, "Threshold: %dms\n", e.Threshold)
		fmt.Fprintf(&b, "Suggestion: %s\n", esc(e.Suggestion))
		fmt.Fprintf(&b, "Time: %s", ts)

	case EventTest:
		b.WriteString("🧪 <b>Test Notification</b>\n\n")
		fmt.Fprintf(&b, "Type: %s\n", esc(e.Type))
		fmt.Fprintf(&b, "Message: %s\n", esc(e.Message))
		fmt.Fprintf(&b, "Time: %s", ts)

	case EventWebhookError:
		fmt.Fprintf(&b, "%s <b>Error Detected via Webhook</b>\n\n", severityEmoji(e.Severity))
		fmt.Fprintf(&b, "<b>Project:</b> %s\n", esc(e.ProjectName))
		fmt.Fprintf(&b, "<b>Function:</b> %s\n", esc(e.FunctionName))
		fmt.Fprintf(&b, "<b>Severity:</b> %s\n\n", esc(strings.ToUpper(e.Severity)))
		fmt.Fprintf(&b, "<b>Summary:</b>\n%s\n\n", esc(e.Summary))
		fmt.Fprintf(&b, "<b>Root Cause:</b>\n%s\n\n", esc(e.Cause))
		fmt.Fprintf(&b, "<b>Proposed Solution:</b>\n%s\n\n", esc(e.Fix))
		fmt.Fprintf(&b, "<b>Error Text:</b>\n<code>%s</code>\n\n", esc(TruncateErrorText(e.ErrorText)))
		fmt.Fprintf(&b, "<b>Log ID:</b> %s\n", esc(e.LogID))
		fmt.Fprintf(&b, "<b>Time:</b> %s", ts)

	default:
		dump, err := json.MarshalIndent(e, "", "  ")
		if err != nil {
			dump = []byte("{}")
		}
		fmt.Fprintf(&b, "📢 <b>LogWise Alert</b>\n\n%s\nTime: %s", esc(string(dump)), ts)
	}

	return b.String()
}

// TruncateErrorText keeps the first MaxErrorTextLen characters of s and
// appends "..." when anything was cut.
func TruncateErrorText(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxErrorTextLen {
		return s
	}
	return string(runes[:MaxErrorTextLen]) + "..."
}

func severityEmoji(severity string) string {
	switch severity {
	case "critical":
		return "🚨"
	case "warning":
		return "⚠️"
	default:
		return "ℹ️"
	}
}
