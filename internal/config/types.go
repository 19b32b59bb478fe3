package config

// Config is the root configuration structure for dropwatch.
// Serialised to ~/.dropwatch/config.json.
type Config struct {
	Monitor  MonitorConfig  `mapstructure:"monitor"  json:"monitor"`
	Database DatabaseConfig `mapstructure:"database" json:"database"`
	AI       AIConfig       `mapstructure:"ai"       json:"ai"`
	Notify   NotifyConfig   `mapstructure:"notify"   json:"notify"`
}

// MonitorConfig controls the monitoring loop.
type MonitorConfig struct {
	// IntervalSeconds is the sleep between monitoring cycles.
	IntervalSeconds int `mapstructure:"interval_seconds" json:"interval_seconds"`
	// RequestTimeoutSeconds bounds each page fetch.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" json:"request_timeout_seconds"`
	// TargetDelaySeconds is the pacing delay between targets in one cycle.
	TargetDelaySeconds int `mapstructure:"target_delay_seconds" json:"target_delay_seconds"`
	// UseScreenshot enables the screenshot + vision classification path.
	// Requires a configured AI provider; falls back to HTML parsing on
	// any vision failure.
	UseScreenshot bool `mapstructure:"use_screenshot" json:"use_screenshot"`
	// Schedule is an optional cron expression. When set it replaces the
	// fixed-interval loop as the cycle trigger.
	Schedule string `mapstructure:"schedule" json:"schedule"`
	// Targets seeds the target table on startup.
	Targets []string `mapstructure:"targets" json:"targets"`
}

// DatabaseConfig controls the storage backend.
type DatabaseConfig struct {
	// Driver is "sqlite" (default) or "mysql".
	Driver string `mapstructure:"driver" json:"driver"`
	// Path is the SQLite file path (expanded at runtime).
	Path string `mapstructure:"path"   json:"path"`
	// DSN is the MySQL data source name (used when Driver == "mysql").
	DSN string `mapstructure:"dsn"    json:"dsn"`
}

// AIConfig controls the provider used for alert message generation and
// screenshot analysis.
type AIConfig struct {
	// Provider is "openai", "ollama", or "" (disabled).
	Provider  string `mapstructure:"provider"       json:"provider"`
	OpenAIKey string `mapstructure:"openai_api_key" json:"openai_api_key"`
	Model     string `mapstructure:"model"          json:"model"`
	// VisionModel is used for screenshot analysis when it differs from Model.
	VisionModel string `mapstructure:"vision_model" json:"vision_model"`
	// BaseURL overrides the API endpoint (useful for proxies).
	BaseURL string `mapstructure:"base_url" json:"base_url"`
	// OllamaURL is used when Provider == "ollama".
	OllamaURL string `mapstructure:"ollama_url" json:"ollama_url"`
}

// NotifyConfig holds one section per notification channel. A channel is
// active when Enabled is true and its credentials are present.
type NotifyConfig struct {
	Email    EmailNotifyConfig    `mapstructure:"email"    json:"email"`
	Discord  DiscordNotifyConfig  `mapstructure:"discord"  json:"discord"`
	Slack    SlackNotifyConfig    `mapstructure:"slack"    json:"slack"`
	Telegram TelegramNotifyConfig `mapstructure:"telegram" json:"telegram"`
	Webhook  WebhookNotifyConfig  `mapstructure:"webhook"  json:"webhook"`
}

// EmailNotifyConfig configures SMTP delivery.
type EmailNotifyConfig struct {
	Enabled  bool   `mapstructure:"enabled"   json:"enabled"`
	SMTPHost string `mapstructure:"smtp_host" json:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port" json:"smtp_port"`
	Username string `mapstructure:"username"  json:"username"`
	Password string `mapstructure:"password"  json:"password"`
	From     string `mapstructure:"from"      json:"from"`
	To       string `mapstructure:"to"        json:"to"` // comma-separated
}

// DiscordNotifyConfig configures a Discord incoming webhook.
type DiscordNotifyConfig struct {
	Enabled    bool   `mapstructure:"enabled"     json:"enabled"`
	WebhookURL string `mapstructure:"webhook_url" json:"webhook_url"`
}

// SlackNotifyConfig configures a Slack incoming webhook.
type SlackNotifyConfig struct {
	Enabled    bool   `mapstructure:"enabled"     json:"enabled"`
	WebhookURL string `mapstructure:"webhook_url" json:"webhook_url"`
}

// TelegramNotifyConfig configures the Telegram Bot API.
type TelegramNotifyConfig struct {
	Enabled  bool   `mapstructure:"enabled"   json:"enabled"`
	BotToken string `mapstructure:"bot_token" json:"bot_token"`
	ChatID   string `mapstructure:"chat_id"   json:"chat_id"`
}

// WebhookNotifyConfig configures a generic HTTP endpoint with optional
// HMAC-SHA256 signing.
type WebhookNotifyConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	URL     string `mapstructure:"url"     json:"url"`
	Secret  string `mapstructure:"secret"  json:"secret"`
}
