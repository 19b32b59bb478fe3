package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dropwatch/dropwatch/internal/config"
)

// WebhookChannel POSTs restock alerts to a generic HTTP endpoint with
// optional HMAC-SHA256 signing.
type WebhookChannel struct {
	cfg    config.WebhookNotifyConfig
	client *http.Client
}

// NewWebhook creates a WebhookChannel from cfg.
func NewWebhook(cfg config.WebhookNotifyConfig) *WebhookChannel {
	return &WebhookChannel{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

func (w *WebhookChannel) Name() string       { return "webhook" }
func (w *WebhookChannel) IsConfigured() bool { return w.cfg.Enabled && w.cfg.URL != "" }

func (w *WebhookChannel) Send(ctx context.Context, alert Alert) error {
	payload := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"event":     "restock_alert",
		"url":       alert.Target.URL,
		"message":   alert.Message,
		"product_info": map[string]any{
			"name":      alert.Product.Name,
			"price":     alert.Product.Price,
			"image_url": alert.Product.ImageURL,
		},
		"method":     alert.Method,
		"confidence": alert.Confidence,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.cfg.Secret != "" {
		mac := hmac.New(sha256.New, []byte(w.cfg.Secret))
		mac.Write(b)
		req.Header.Set("X-Dropwatch-Signature", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	}

	resp, err := w.client.Do(req) // #nosec G107 -- URL is a user-configured webhook endpoint
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
