package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Dispatcher posts audit embeds to a Discord webhook. Delivery is
// best-effort: one attempt, short timeout, no retry, and callers only log a
// failure.
type Dispatcher interface {
	// Configured reports whether a webhook URL is set; unset silently
	// disables this sink.
	Configured() bool
	Send(ctx context.Context, payload *discordgo.WebhookParams) error
}

type dispatcher struct {
	url  string
	http *http.Client
}

// NewDispatcher returns a Dispatcher for the given webhook URL ("" disables).
func NewDispatcher(url string) Dispatcher {
	return &dispatcher{
		url:  url,
		http: &http.Client{Timeout: 5 * time.Second},
	}
}

func (d *dispatcher) Configured() bool { return d.url != "" }

func (d *dispatcher) Send(ctx context.Context, payload *discordgo.WebhookParams) error {
	if d.url == "" {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.http.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	return nil
}
