package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/models"
	"golang.org/x/time/rate"
)

// SettingsSource returns the current chat credentials.
type SettingsSource interface {
	Get() (*models.Setting, error)
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// MaxRateWait bounds how long a send waits for the rate limiter before the
// message is dropped.
const MaxRateWait = 5 * time.Second

// TelegramSender posts messages through the Bot API. Outbound sends are
// throttled by a token bucket shared by all callers.
type TelegramSender struct {
	settings SettingsSource
	apiURL   string
	client   *http.Client
	limiter  *rate.Limiter
	maxWait  time.Duration
}

// NewTelegramSender builds a sender allowing perMinute messages per minute.
// perMinute <= 0 disables throttling.
func NewTelegramSender(settings SettingsSource, apiURL string, perMinute int) *TelegramSender {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if perMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
	return &TelegramSender{
		settings: settings,
		apiURL:   strings.TrimRight(apiURL, "/"),
		client:   &http.Client{Timeout: 10 * time.Second},
		limiter:  limiter,
		maxWait:  MaxRateWait,
	}
}

// Send delivers message and reports whether the provider acknowledged it.
// Missing credentials are a silent no-op. Failures are logged, never returned.
func (s *TelegramSender) Send(ctx context.Context, message string) bool {
	settings, err := s.settings.Get()
	if err != nil {
		slog.Error("failed to load notification settings", "component", "notify", "error", err)
		return false
	}
	if settings.TelegramBotToken == "" || settings.TelegramGroupID == "" {
		slog.Warn("telegram not configured, skipping notification", "component", "notify")
		return false
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.maxWait)
	err = s.limiter.Wait(waitCtx)
	cancel()
	if err != nil {
		slog.Warn("notification dropped by rate limiter", "component", "notify", "error", err)
		return false
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:    settings.TelegramGroupID,
		Text:      message,
		ParseMode: "HTML",
	})
	if err != nil {
		slog.Error("failed to encode telegram message", "component", "notify", "error", err)
		return false
	}

	url := s.apiURL + "/bot" + settings.TelegramBotToken + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		slog.Error("failed to build telegram request", "component", "notify", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Error("telegram request failed", "component", "notify", "error", redact(err.Error(), settings.TelegramBotToken))
		return false
	}
	defer resp.Body.Close()

	var out sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		slog.Error("failed to decode telegram response", "component", "notify", "status", resp.StatusCode, "error", err)
		return false
	}
	if !out.OK {
		slog.Error("telegram rejected notification", "component", "notify", "status", resp.StatusCode, "error", out.Description)
		return false
	}

	slog.Info("telegram notification sent", "component", "notify")
	return true
}

// Notify formats an event and sends it.
func (s *TelegramSender) Notify(ctx context.Context, eventType string, e Event) bool {
	return s.Send(ctx, FormatMessage(eventType, e))
}

func redact(msg, secret string) string {
	if secret == "" {
		return msg
	}
	return strings.ReplaceAll(msg, secret, "***")
}
