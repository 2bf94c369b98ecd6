// Package notify posts the run summary to a chat webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/warp/sport-bonus/generic"
	"github.com/warp/sport-bonus/report"
)

// placeholderSuffix marks the example Slack URL shipped in configuration.
const placeholderSuffix = "XXXXXXXXXXXXXXXXXXXXXXXX"

// Message is the webhook payload. Slack incoming webhooks and most
// compatible receivers accept a single text field.
type Message struct {
	Text string `json:"text"`
}

// Webhook sends summaries via HTTP POST.
type Webhook struct {
	URL      string
	Currency string
	client   *http.Client
}

func NewWebhook(url, currency string, timeout time.Duration) *Webhook {
	return &Webhook{
		URL:      url,
		Currency: currency,
		client:   &http.Client{Timeout: timeout},
	}
}

// IsPlaceholder reports whether url is unset or still the shipped example.
func IsPlaceholder(url string) bool {
	url = strings.TrimSpace(url)
	return url == "" || strings.HasSuffix(url, placeholderSuffix)
}

// Send posts the summary. Every failure, including a skipped placeholder
// endpoint, is a *generic.NotificationError.
func (w *Webhook) Send(ctx context.Context, s report.Summary) error {
	if IsPlaceholder(w.URL) {
		return &generic.NotificationError{Endpoint: w.URL, Skipped: true}
	}

	body, err := json.Marshal(Message{Text: s.Text(w.Currency)})
	if err != nil {
		return &generic.NotificationError{Endpoint: w.URL, Err: fmt.Errorf("marshal webhook payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return &generic.NotificationError{Endpoint: w.URL, Err: fmt.Errorf("create webhook request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "sport-bonus/1.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return &generic.NotificationError{Endpoint: w.URL, Err: fmt.Errorf("send webhook: %w", err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &generic.NotificationError{Endpoint: w.URL, StatusCode: resp.StatusCode}
	}
	return nil
}
