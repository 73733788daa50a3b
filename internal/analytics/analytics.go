// Package analytics reports handled conversation turns to a chatbase-style
// message analytics API. Reporting is best-effort: failures are logged and
// never surface to the conversation.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const defaultEndpoint = "https://chatbase.com/api/message"

// Turn is one handled conversation turn as seen by the webhook.
type Turn struct {
	MessageID string
	SessionID string
	UserID    string
	Intent    string
	Message   string
}

// Message is the wire shape of the analytics API.
type Message struct {
	APIKey    string `json:"api_key"`
	Type      string `json:"type"`
	Platform  string `json:"platform"`
	MessageID string `json:"message_id"`
	SessionID string `json:"session_id,omitempty"`
	UserID    string `json:"user_id"`
	Intent    string `json:"intent"`
	Message   string `json:"message,omitempty"`
	Version   string `json:"version"`
	TimeMs    int64  `json:"time_stamp"`
}

// Reporter sends messages to the analytics API. A Reporter with an empty
// key is disabled and drops everything.
type Reporter struct {
	key      string
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewReporter creates a Reporter. An empty key disables reporting.
func NewReporter(key string, logger *slog.Logger) *Reporter {
	return &Reporter{
		key:      key,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
		logger:   logger,
	}
}

// Enabled reports whether messages will actually be sent.
func (r *Reporter) Enabled() bool { return r.key != "" }

// Report records one handled turn. The user id may be empty for anonymous
// requests; the message id is generated when the platform supplied none.
func (r *Reporter) Report(ctx context.Context, t Turn) {
	if !r.Enabled() {
		return
	}
	if t.MessageID == "" {
		t.MessageID = uuid.NewString()
	}

	msg := Message{
		APIKey:    r.key,
		Type:      "user",
		Platform:  "google-assistant",
		MessageID: t.MessageID,
		SessionID: t.SessionID,
		UserID:    t.UserID,
		Intent:    t.Intent,
		Message:   t.Message,
		Version:   "1.0",
		TimeMs:    time.Now().UnixMilli(),
	}

	if err := r.send(ctx, msg); err != nil {
		r.logger.Warn("analytics report failed", "error", err, "intent", t.Intent)
	}
}

func (r *Reporter) send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("analytics API returned status %d", resp.StatusCode)
	}
	return nil
}
