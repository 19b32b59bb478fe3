package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Monitor: MonitorConfig{
			IntervalSeconds:       30,
			RequestTimeoutSeconds: 10,
			TargetDelaySeconds:    1,
			Targets:               []string{"https://shop.example.com/p/labubu"},
		},
		Database: DatabaseConfig{Driver: "sqlite"},
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if errs := validConfig().Validate(); len(errs) != 0 {
		t.Fatalf("expected valid config, got %v", errs)
	}
}

func TestValidateRejectsBadInterval(t *testing.T) {
	cfg := validConfig()
	cfg.Monitor.IntervalSeconds = 0
	assertProblem(t, cfg, "interval_seconds")
}

func TestValidateRejectsRelativeTargetURL(t *testing.T) {
	cfg := validConfig()
	cfg.Monitor.Targets = append(cfg.Monitor.Targets, "/products/labubu")
	assertProblem(t, cfg, "absolute URL")
}

func TestValidateRejectsMySQLWithoutDSN(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "mysql"
	assertProblem(t, cfg, "database.dsn")
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "postgres"
	assertProblem(t, cfg, "database.driver")
}

func TestValidateRejectsOpenAIWithoutKey(t *testing.T) {
	cfg := validConfig()
	cfg.AI.Provider = "openai"
	assertProblem(t, cfg, "openai_api_key")
}

func TestValidateRejectsScreenshotWithoutProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Monitor.UseScreenshot = true
	assertProblem(t, cfg, "use_screenshot")
}

func TestValidateRejectsIncompleteChannels(t *testing.T) {
	cfg := validConfig()
	cfg.Notify.Telegram.Enabled = true
	assertProblem(t, cfg, "telegram")

	cfg = validConfig()
	cfg.Notify.Email.Enabled = true
	assertProblem(t, cfg, "email")

	cfg = validConfig()
	cfg.Notify.Discord.Enabled = true
	assertProblem(t, cfg, "discord")
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := &Config{}
	cfg.Monitor.UseScreenshot = true
	cfg.Notify.Slack.Enabled = true
	errs := cfg.Validate()
	if len(errs) < 3 {
		t.Fatalf("expected every problem reported at once, got %v", errs)
	}
}

func assertProblem(t *testing.T, cfg *Config, fragment string) {
	t.Helper()
	errs := cfg.Validate()
	for _, e := range errs {
		if strings.Contains(e, fragment) {
			return
		}
	}
	t.Fatalf("expected a problem mentioning %q, got %v", fragment, errs)
}
