package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultConfigDir  = ".dropwatch"
	DefaultConfigFile = "config.json"
	DefaultDBFile     = ".dropwatch/dropwatch.db"
)

// Load reads the config file (creating it with defaults if absent) and returns
// a populated Config. The configPath flag may override the default location.
func Load(configPath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix("dropwatch")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(home, DefaultConfigDir))
	}

	setDefaults(v, home)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !isNotExist(err) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
		// No config yet; defaults apply until the first Save.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Database.Path = expandHome(cfg.Database.Path, home)
	return &cfg, nil
}

// Save writes the config to disk as JSON.
func Save(cfg *Config, configPath string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("cannot determine home directory: %w", err)
	}

	if configPath == "" {
		configPath = filepath.Join(home, DefaultConfigDir, DefaultConfigFile)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("serialising config: %w", err)
	}

	return os.WriteFile(configPath, data, 0o600)
}

// ConfigPath returns the effective config file path.
func ConfigPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile), nil
}

// Validate checks the configuration for errors that make startup impossible.
// This is the only fatal error path: everything past startup degrades
// gracefully. Returns the full list so the user can fix them in one pass.
func (c *Config) Validate() []string {
	var errs []string

	if c.Monitor.IntervalSeconds <= 0 {
		errs = append(errs, "monitor.interval_seconds must be positive")
	}
	if c.Monitor.RequestTimeoutSeconds <= 0 {
		errs = append(errs, "monitor.request_timeout_seconds must be positive")
	}
	if c.Monitor.TargetDelaySeconds < 0 {
		errs = append(errs, "monitor.target_delay_seconds must not be negative")
	}
	for _, t := range c.Monitor.Targets {
		if u, err := url.Parse(t); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("monitor.targets: %q is not an absolute URL", t))
		}
	}

	switch c.Database.Driver {
	case "", "sqlite", "sqlite3":
	case "mysql":
		if c.Database.DSN == "" {
			errs = append(errs, "database.dsn required when database.driver is mysql")
		}
	default:
		errs = append(errs, fmt.Sprintf("unsupported database.driver %q (supported: sqlite, mysql)", c.Database.Driver))
	}

	switch c.AI.Provider {
	case "", "none", "ollama":
	case "openai":
		if c.AI.OpenAIKey == "" {
			errs = append(errs, "ai.openai_api_key required when ai.provider is openai")
		}
	default:
		errs = append(errs, fmt.Sprintf("unsupported ai.provider %q (supported: openai, ollama)", c.AI.Provider))
	}
	if c.Monitor.UseScreenshot && (c.AI.Provider == "" || c.AI.Provider == "none") {
		errs = append(errs, "monitor.use_screenshot requires a configured ai.provider")
	}

	n := c.Notify
	if n.Email.Enabled && (n.Email.SMTPHost == "" || n.Email.From == "" || n.Email.To == "") {
		errs = append(errs, "notify.email requires smtp_host, from and to when enabled")
	}
	if n.Discord.Enabled && n.Discord.WebhookURL == "" {
		errs = append(errs, "notify.discord.webhook_url required when enabled")
	}
	if n.Slack.Enabled && n.Slack.WebhookURL == "" {
		errs = append(errs, "notify.slack.webhook_url required when enabled")
	}
	if n.Telegram.Enabled && (n.Telegram.BotToken == "" || n.Telegram.ChatID == "") {
		errs = append(errs, "notify.telegram requires bot_token and chat_id when enabled")
	}
	if n.Webhook.Enabled && n.Webhook.URL == "" {
		errs = append(errs, "notify.webhook.url required when enabled")
	}

	return errs
}

// setDefaults populates viper with sensible out-of-the-box values.
func setDefaults(v *viper.Viper, home string) {
	v.SetDefault("monitor.interval_seconds", 30)
	v.SetDefault("monitor.request_timeout_seconds", 10)
	v.SetDefault("monitor.target_delay_seconds", 1)
	v.SetDefault("monitor.use_screenshot", false)
	v.SetDefault("monitor.schedule", "")
	v.SetDefault("monitor.targets", []string{})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", filepath.Join(home, DefaultDBFile))
	v.SetDefault("database.dsn", "")

	v.SetDefault("ai.provider", "")
	v.SetDefault("ai.model", "gpt-4o")
	v.SetDefault("ai.vision_model", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.ollama_url", "http://localhost:11434")

	v.SetDefault("notify.email.smtp_port", 587)
}

func expandHome(path, home string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

func isNotExist(err error) bool {
	return os.IsNotExist(err) || strings.Contains(err.Error(), "no such file")
}
