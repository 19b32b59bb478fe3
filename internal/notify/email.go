package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/dropwatch/dropwatch/internal/config"
)

// EmailChannel sends restock alerts via SMTP with an HTML body.
type EmailChannel struct {
	cfg config.EmailNotifyConfig
}

// NewEmail creates an EmailChannel from cfg.
func NewEmail(cfg config.EmailNotifyConfig) *EmailChannel { return &EmailChannel{cfg: cfg} }

func (e *EmailChannel) Name() string { return "email" }

func (e *EmailChannel) IsConfigured() bool {
	return e.cfg.Enabled && e.cfg.SMTPHost != "" && e.cfg.From != "" && e.cfg.To != ""
}

func (e *EmailChannel) Send(_ context.Context, alert Alert) error {
	recipients := splitRecipients(e.cfg.To)
	if len(recipients) == 0 {
		return fmt.Errorf("email: no recipients")
	}

	name := alert.Product.Name
	if name == "" {
		name = "Unknown"
	}
	price := alert.Product.Price
	if price == "" {
		price = "N/A"
	}

	htmlBody := fmt.Sprintf(`<html>
<body>
<h2>🧸 Restock Alert! 🧸</h2>
<p><strong>Great news!</strong> The item you're monitoring is back in stock!</p>
<div style="background-color: #f0f8ff; padding: 15px; border-radius: 5px; margin: 10px 0;">
<p><strong>Product:</strong> %s</p>
<p><strong>Price:</strong> %s</p>
<p><strong>URL:</strong> <a href="%s">%s</a></p>
</div>
<p><strong>Action required:</strong> Click the link above to purchase now!</p>
<p><em>%s</em></p>
<hr>
<p style="font-size: 12px; color: #666;">Sent by dropwatch at %s</p>
</body>
</html>`,
		htmlEscape(name), htmlEscape(price),
		alert.Target.URL, htmlEscape(alert.Target.URL),
		htmlEscape(alert.Message),
		time.Now().Format("2006-01-02 15:04:05"))

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: 🎉 Restock Alert: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s",
		e.cfg.From, strings.Join(recipients, ", "), name,
		strings.ReplaceAll(htmlBody, "\n", "\r\n"))

	port := e.cfg.SMTPPort
	if port == 0 {
		port = 587
	}
	addr := fmt.Sprintf("%s:%d", e.cfg.SMTPHost, port)

	var auth smtp.Auth
	if e.cfg.Username != "" {
		auth = smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, e.cfg.From, recipients, []byte(msg)); err != nil {
		return fmt.Errorf("email: send: %w", err)
	}
	return nil
}

func splitRecipients(to string) []string {
	var out []string
	for _, r := range strings.Split(to, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
