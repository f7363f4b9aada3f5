package alert

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// WebhookSink posts events to an alerting-channel endpoint. Delivery runs
// asynchronously with up to 3 retries (1s, 5s, 30s); exhaustion is logged
// and swallowed.
type WebhookSink struct {
	url    string
	secret string
	client *http.Client

	// delays overrides the retry schedule; nil means the default.
	delays []time.Duration
}

// NewWebhookSink creates a sink for the given endpoint. The payload is
// signed with HMAC-SHA256 when secret is non-empty.
// Header: X-Zestifyre-Signature: sha256=<hex>
func NewWebhookSink(url, secret string) *WebhookSink {
	return &WebhookSink{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Record enqueues the event for asynchronous delivery and returns
// immediately.
func (w *WebhookSink) Record(event Event) {
	go w.deliverWithRetry(event)
}

func (w *WebhookSink) deliverWithRetry(event Event) {
	delays := w.delays
	if delays == nil {
		delays = []time.Duration{0, 1 * time.Second, 5 * time.Second, 30 * time.Second}
	}
	for attempt, delay := range delays {
		if delay > 0 {
			time.Sleep(delay)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := w.deliver(ctx, event)
		cancel()
		if err == nil {
			slog.Debug("alert delivered",
				"url", w.url,
				"kind", event.Kind,
				"event_id", event.ID,
				"attempt", attempt+1,
			)
			return
		}
		slog.Warn("alert delivery failed",
			"url", w.url,
			"kind", event.Kind,
			"event_id", event.ID,
			"attempt", attempt+1,
			"error", err,
		)
	}
	slog.Error("alert delivery exhausted all retries",
		"url", w.url,
		"kind", event.Kind,
		"event_id", event.ID,
	)
}

func (w *WebhookSink) deliver(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("alert: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("alert: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Zestifyre-Alert/1.0")

	if w.secret != "" {
		mac := hmac.New(sha256.New, []byte(w.secret))
		mac.Write(body)
		sig := hex.EncodeToString(mac.Sum(nil))
		req.Header.Set("X-Zestifyre-Signature", "sha256="+sig)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("alert: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("alert: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
