package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dropwatch/dropwatch/internal/config"
)

// SlackChannel posts Block Kit messages to a Slack incoming webhook.
type SlackChannel struct {
	cfg    config.SlackNotifyConfig
	client *http.Client
}

// NewSlack creates a SlackChannel from cfg.
func NewSlack(cfg config.SlackNotifyConfig) *SlackChannel {
	return &SlackChannel{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

func (s *SlackChannel) Name() string       { return "slack" }
func (s *SlackChannel) IsConfigured() bool { return s.cfg.Enabled && s.cfg.WebhookURL != "" }

func (s *SlackChannel) Send(ctx context.Context, alert Alert) error {
	name := alert.Product.Name
	if name == "" {
		name = "Unknown"
	}
	price := alert.Product.Price
	if price == "" {
		price = "N/A"
	}

	blocks := []map[string]any{
		{
			"type": "header",
			"text": map[string]any{"type": "plain_text", "text": "🧸 Restock Alert! 🧸"},
		},
		{
			"type": "section",
			"text": map[string]any{
				"type": "mrkdwn",
				"text": "*Great news!* The item you're monitoring is back in stock!\n\n" + alert.Message,
			},
		},
		{
			"type": "section",
			"fields": []map[string]any{
				{"type": "mrkdwn", "text": "*Product:*\n" + name},
				{"type": "mrkdwn", "text": "*Price:*\n" + price},
			},
		},
		{
			"type": "actions",
			"elements": []map[string]any{
				{
					"type":  "button",
					"text":  map[string]any{"type": "plain_text", "text": "🛒 Buy Now!"},
					"url":   alert.Target.URL,
					"style": "primary",
				},
			},
		},
		{
			"type": "context",
			"elements": []map[string]any{
				{"type": "mrkdwn", "text": "Sent by dropwatch • " + time.Now().Format("2006-01-02 15:04:05")},
			},
		},
	}
	if alert.Product.ImageURL != "" {
		img := map[string]any{
			"type":      "image",
			"image_url": alert.Product.ImageURL,
			"alt_text":  "Product Image",
		}
		blocks = append(blocks[:2], append([]map[string]any{img}, blocks[2:]...)...)
	}

	payload := map[string]any{"text": "🧸 Restock Alert!", "blocks": blocks}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.WebhookURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req) // #nosec G107 -- WebhookURL is a user-configured Slack incoming webhook URL
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned %d", resp.StatusCode)
	}
	return nil
}
