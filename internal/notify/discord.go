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

// DiscordChannel posts a rich embed to a Discord incoming webhook.
type DiscordChannel struct {
	cfg    config.DiscordNotifyConfig
	client *http.Client
}

// NewDiscord creates a DiscordChannel from cfg.
func NewDiscord(cfg config.DiscordNotifyConfig) *DiscordChannel {
	return &DiscordChannel{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

func (d *DiscordChannel) Name() string       { return "discord" }
func (d *DiscordChannel) IsConfigured() bool { return d.cfg.Enabled && d.cfg.WebhookURL != "" }

func (d *DiscordChannel) Send(ctx context.Context, alert Alert) error {
	name := alert.Product.Name
	if name == "" {
		name = "Unknown"
	}
	price := alert.Product.Price
	if price == "" {
		price = "N/A"
	}

	embed := map[string]any{
		"title":       "🧸 Restock Alert!",
		"description": "The item you're monitoring is back in stock!",
		"color":       0x00FF00,
		"fields": []map[string]any{
			{"name": "Product", "value": name, "inline": true},
			{"name": "Price", "value": price, "inline": true},
			{"name": "Link", "value": fmt.Sprintf("[Click here to buy!](%s)", alert.Target.URL), "inline": false},
		},
		"footer": map[string]any{
			"text": "dropwatch • " + time.Now().Format("2006-01-02 15:04:05"),
		},
	}
	if alert.Product.ImageURL != "" {
		embed["thumbnail"] = map[string]any{"url": alert.Product.ImageURL}
	}

	payload := map[string]any{
		"content": "@everyone " + alert.Message,
		"embeds":  []map[string]any{embed},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.WebhookURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := d.client.Do(req) // #nosec G107 -- WebhookURL is a user-configured Discord webhook URL
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook returned %d", resp.StatusCode)
	}
	return nil
}
