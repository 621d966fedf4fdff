package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"macro-risk-alerts/internal/alert"
)

// Notification bundles alerts for one delivery: either the critical slice of
// a freshly admitted batch or a periodic digest.
type Notification struct {
	Subject string
	Source  string
	Alerts  []alert.Candidate
	SentAt  time.Time
}

// Notifier delivers notifications to an external channel.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// WebhookNotifier pushes messages through a Telegram-compatible bot API.
type WebhookNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewWebhookNotifier constructs the webhook channel.
func NewWebhookNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &WebhookNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_webhook").Logger(),
	}
}

// Notify renders the notification and calls the sendMessage API.
func (n *WebhookNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("webhook returned ok=false")
		}
	}

	n.logger.Info().
		Str("subject", note.Subject).
		Int("alerts", len(note.Alerts)).
		Msg("notification delivered")
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	subject := note.Subject
	if subject == "" {
		subject = "Risk Alerts"
	}
	builder.WriteString(fmt.Sprintf("[%s]\n", subject))
	if note.Source != "" {
		builder.WriteString(fmt.Sprintf("Source: %s\n", note.Source))
	}
	if !note.SentAt.IsZero() {
		builder.WriteString(fmt.Sprintf("At: %s UTC\n", note.SentAt.UTC().Format(time.RFC3339)))
	}

	for _, a := range note.Alerts {
		builder.WriteString(fmt.Sprintf("\n%s %s: %s\n", a.Severity, a.Type, a.Title))
		builder.WriteString(a.Message + "\n")
		if a.RelatedEntity != "" {
			builder.WriteString(fmt.Sprintf("Entity: %s", a.RelatedEntity))
			if a.Country != "" {
				builder.WriteString(fmt.Sprintf(" (%s)", a.Country))
			}
			builder.WriteString("\n")
		}
	}
	return builder.String()
}

var _ Notifier = (*WebhookNotifier)(nil)
