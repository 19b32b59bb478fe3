package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	cfgFile string
	verbose bool
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dropwatch",
	Short: "Product restock monitor with multi-channel alerts",
	Long: `dropwatch watches e-commerce product pages and alerts you the moment an
item flips from out-of-stock to in-stock. Detection combines structured
HTML analysis with optional AI vision on page screenshots; alerts go out
over email, Discord, Slack, Telegram, and generic webhooks.

Get started:
  dropwatch onboard     Interactive setup wizard
  dropwatch target add  Add a product page to watch
  dropwatch monitor     Run the monitoring loop
  dropwatch check       Check a single URL once
  dropwatch ui          Launch the terminal dashboard`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ~/.dropwatch/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable verbose/debug output")

	rootCmd.Version = Version
	rootCmd.AddCommand(
		onboardCmd,
		monitorCmd,
		checkCmd,
		statusCmd,
		targetCmd,
		uiCmd,
		configCmd,
	)
}

func initLogging() {
	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		slog.Debug("Verbose logging enabled")
	}
}
