package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dropwatch/dropwatch/internal/config"
	"github.com/dropwatch/dropwatch/internal/notify"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Interactive setup wizard for dropwatch",
	Long: `Walks you through configuring dropwatch:
  - Product pages to watch and the check interval
  - AI provider (optional — enables vision detection and generated alert text)
  - Notification channels (email, Discord, Slack, Telegram, webhook)

Without an AI key detection still works via HTML analysis, and alerts
use a built-in message template.`,
	RunE: runOnboard,
}

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#F472B6")).
	MarginBottom(1)

var successStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#10B981"))

var warnStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#F59E0B"))

var faintStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#6B7280"))

func runOnboard(cmd *cobra.Command, args []string) error {
	fmt.Println()
	fmt.Println(headerStyle.Render("  dropwatch — product restock monitor"))
	fmt.Println(faintStyle.Render("  Get alerted the moment your item comes back in stock.\n"))

	// Load existing config or start fresh.
	cfg, err := config.Load(cfgFile)
	if err != nil {
		cfg = &config.Config{}
	}

	// --- Step 1: Targets and interval ---
	fmt.Println(headerStyle.Render("  Step 1/3 · What to watch"))

	targetsInput := strings.Join(cfg.Monitor.Targets, ", ")
	interval := strconv.Itoa(cfg.Monitor.IntervalSeconds)
	if interval == "0" {
		interval = "30"
	}
	useScreenshot := cfg.Monitor.UseScreenshot

	watchForm := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Product page URLs (comma-separated, optional)").
				Description("You can also add pages later with: dropwatch target add <url>").
				Placeholder("https://shop.example.com/products/...").
				Value(&targetsInput),
			huh.NewInput().
				Title("Check interval (seconds)").
				Value(&interval).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n <= 0 {
						return fmt.Errorf("enter a positive number of seconds")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Use screenshot + AI vision detection?").
				Description("More robust on JS-heavy shops. Requires Chrome and an AI provider.").
				Value(&useScreenshot),
		),
	)
	if err := watchForm.Run(); err != nil {
		return err
	}

	cfg.Monitor.Targets = nil
	for _, t := range strings.Split(targetsInput, ",") {
		if t = strings.TrimSpace(t); t != "" {
			cfg.Monitor.Targets = append(cfg.Monitor.Targets, t)
		}
	}
	cfg.Monitor.IntervalSeconds, _ = strconv.Atoi(strings.TrimSpace(interval))
	cfg.Monitor.UseScreenshot = useScreenshot

	// --- Step 2: AI provider ---
	fmt.Println(headerStyle.Render("  Step 2/3 · AI Provider (optional)"))
	fmt.Println(faintStyle.Render("  Used for screenshot analysis and alert message generation."))
	fmt.Println(faintStyle.Render("  Skip it and dropwatch relies on HTML parsing and a message template.\n"))

	provider := cfg.AI.Provider
	if provider == "" {
		provider = "none"
	}
	openAIKey := cfg.AI.OpenAIKey
	model := cfg.AI.Model
	if model == "" {
		model = "gpt-4o"
	}
	ollamaURL := cfg.AI.OllamaURL
	if ollamaURL == "" {
		ollamaURL = "http://localhost:11434"
	}

	aiForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("AI provider").
				Options(
					huh.NewOption("None (HTML detection only)", "none"),
					huh.NewOption("OpenAI (vision + generated alerts)", "openai"),
					huh.NewOption("Ollama (local models)", "ollama"),
				).
				Value(&provider),
		),
	)
	if err := aiForm.Run(); err != nil {
		return err
	}

	switch provider {
	case "openai":
		keyForm := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("OpenAI API Key").
					Placeholder("sk-...").
					EchoMode(huh.EchoModePassword).
					Value(&openAIKey),
				huh.NewInput().
					Title("Model").
					Value(&model),
			),
		)
		if err := keyForm.Run(); err != nil {
			return err
		}
		cfg.AI.Provider = "openai"
		cfg.AI.OpenAIKey = openAIKey
		cfg.AI.Model = model
	case "ollama":
		ollamaForm := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Ollama URL").
					Value(&ollamaURL),
				huh.NewInput().
					Title("Model").
					Value(&model),
			),
		)
		if err := ollamaForm.Run(); err != nil {
			return err
		}
		cfg.AI.Provider = "ollama"
		cfg.AI.OllamaURL = ollamaURL
		cfg.AI.Model = model
	default:
		cfg.AI.Provider = ""
	}
	if cfg.Monitor.UseScreenshot && cfg.AI.Provider == "" {
		fmt.Println(warnStyle.Render("  Screenshot detection needs an AI provider; disabling it."))
		cfg.Monitor.UseScreenshot = false
	}

	// --- Step 3: Notification channels ---
	fmt.Println(headerStyle.Render("  Step 3/3 · Notifications"))

	var channels []string
	if cfg.Notify.Email.Enabled {
		channels = append(channels, "email")
	}
	if cfg.Notify.Discord.Enabled {
		channels = append(channels, "discord")
	}
	if cfg.Notify.Slack.Enabled {
		channels = append(channels, "slack")
	}
	if cfg.Notify.Telegram.Enabled {
		channels = append(channels, "telegram")
	}
	if cfg.Notify.Webhook.Enabled {
		channels = append(channels, "webhook")
	}

	chanForm := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Where should restock alerts go?").
				Options(
					huh.NewOption("Email (SMTP)", "email"),
					huh.NewOption("Discord webhook", "discord"),
					huh.NewOption("Slack webhook", "slack"),
					huh.NewOption("Telegram bot", "telegram"),
					huh.NewOption("Generic webhook", "webhook"),
				).
				Value(&channels),
		),
	)
	if err := chanForm.Run(); err != nil {
		return err
	}

	enabled := make(map[string]bool, len(channels))
	for _, c := range channels {
		enabled[c] = true
	}
	cfg.Notify.Email.Enabled = enabled["email"]
	cfg.Notify.Discord.Enabled = enabled["discord"]
	cfg.Notify.Slack.Enabled = enabled["slack"]
	cfg.Notify.Telegram.Enabled = enabled["telegram"]
	cfg.Notify.Webhook.Enabled = enabled["webhook"]

	if enabled["email"] {
		port := strconv.Itoa(cfg.Notify.Email.SMTPPort)
		if port == "0" {
			port = "587"
		}
		emailForm := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("SMTP host").Value(&cfg.Notify.Email.SMTPHost),
				huh.NewInput().Title("SMTP port").Value(&port),
				huh.NewInput().Title("Username").Value(&cfg.Notify.Email.Username),
				huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&cfg.Notify.Email.Password),
				huh.NewInput().Title("From address").Value(&cfg.Notify.Email.From),
				huh.NewInput().Title("To addresses (comma-separated)").Value(&cfg.Notify.Email.To),
			),
		)
		if err := emailForm.Run(); err != nil {
			return err
		}
		cfg.Notify.Email.SMTPPort, _ = strconv.Atoi(strings.TrimSpace(port))
	}
	if enabled["discord"] {
		f := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Discord webhook URL").Value(&cfg.Notify.Discord.WebhookURL),
		))
		if err := f.Run(); err != nil {
			return err
		}
	}
	if enabled["slack"] {
		f := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Slack webhook URL").Value(&cfg.Notify.Slack.WebhookURL),
		))
		if err := f.Run(); err != nil {
			return err
		}
	}
	if enabled["telegram"] {
		f := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Telegram bot token").EchoMode(huh.EchoModePassword).Value(&cfg.Notify.Telegram.BotToken),
			huh.NewInput().Title("Telegram chat ID").Value(&cfg.Notify.Telegram.ChatID),
		))
		if err := f.Run(); err != nil {
			return err
		}
	}
	if enabled["webhook"] {
		f := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Webhook URL").Value(&cfg.Notify.Webhook.URL),
			huh.NewInput().Title("Signing secret (optional)").EchoMode(huh.EchoModePassword).Value(&cfg.Notify.Webhook.Secret),
		))
		if err := f.Run(); err != nil {
			return err
		}
	}

	// --- Save and summarise ---
	cfgPath, err := config.ConfigPath(cfgFile)
	if err != nil {
		return err
	}
	if err := config.Save(cfg, cfgPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	dispatcher := notify.NewDispatcher(cfg.Notify)

	fmt.Println()
	fmt.Println(successStyle.Render("  ✓ Configuration saved to " + cfgPath))
	fmt.Printf("  Targets: %d   Interval: %ds   AI: %s\n",
		len(cfg.Monitor.Targets), cfg.Monitor.IntervalSeconds, providerLabel(cfg.AI.Provider))
	if dispatcher.IsAnyConfigured() {
		fmt.Printf("  Channels: %s\n", strings.Join(dispatcher.Channels(), ", "))
	} else {
		fmt.Println(warnStyle.Render("  No notification channels configured; restocks will only be logged."))
	}
	fmt.Println()
	fmt.Println(faintStyle.Render("  Start monitoring with: dropwatch monitor"))
	return nil
}

func providerLabel(p string) string {
	if p == "" {
		return "none"
	}
	return p
}
