package alerting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"macro-risk-alerts/internal/alert"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testNotification() Notification {
	return Notification{
		Subject: "Critical Risk Alerts",
		Source:  "fx_monitor",
		SentAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Alerts: []alert.Candidate{
			{
				Type:          alert.TypeFX,
				Severity:      alert.SeverityCritical,
				Title:         "USD/JPY CRITICAL Move",
				Message:       "USD/JPY weakened 2.50% in 1 hour",
				RelatedEntity: "USD/JPY",
				Country:       "JP",
			},
		},
	}
}

func TestWebhookNotifierSuccess(t *testing.T) {
	received := make(map[string]string)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "sendMessage") {
			t.Fatalf("path should contain sendMessage, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	notifier := NewWebhookNotifier("token", "chat", srv.URL, time.Second, testLogger())

	if err := notifier.Notify(context.Background(), testNotification()); err != nil {
		t.Fatalf("Notify should succeed: %v", err)
	}

	if received["chat_id"] != "chat" {
		t.Fatalf("wrong chat_id: %#v", received)
	}
	text := received["text"]
	if !strings.Contains(text, "[Critical Risk Alerts]") {
		t.Fatalf("text should carry the subject, got %q", text)
	}
	if !strings.Contains(text, "CRITICAL FX: USD/JPY CRITICAL Move") {
		t.Fatalf("text should carry the alert line, got %q", text)
	}
	if !strings.Contains(text, "Entity: USD/JPY (JP)") {
		t.Fatalf("text should carry the entity line, got %q", text)
	}
}

func TestWebhookNotifierAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false})
	}))
	defer srv.Close()

	notifier := NewWebhookNotifier("token", "chat", srv.URL, time.Second, testLogger())

	if err := notifier.Notify(context.Background(), testNotification()); err == nil {
		t.Fatal("ok=false should return an error")
	}
}

func TestWebhookNotifierHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	notifier := NewWebhookNotifier("token", "chat", srv.URL, time.Second, testLogger())

	if err := notifier.Notify(context.Background(), testNotification()); err == nil {
		t.Fatal("HTTP 403 should return an error")
	}
}

func TestRenderMessageDefaults(t *testing.T) {
	text := renderMessage(Notification{})
	if !strings.HasPrefix(text, "[Risk Alerts]") {
		t.Fatalf("empty subject should fall back, got %q", text)
	}
	if strings.Contains(text, "Source:") {
		t.Fatalf("empty source should be omitted, got %q", text)
	}
}
