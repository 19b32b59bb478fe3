package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropwatch/dropwatch/internal/ai"
	"github.com/dropwatch/dropwatch/internal/config"
	"github.com/dropwatch/dropwatch/internal/database"
	"github.com/dropwatch/dropwatch/internal/fetch"
	"github.com/dropwatch/dropwatch/internal/monitor"
	"github.com/dropwatch/dropwatch/internal/notify"
	"github.com/dropwatch/dropwatch/internal/screenshot"
	"github.com/dropwatch/dropwatch/internal/store"
)

var (
	monitorInterval   int
	monitorScreenshot bool
	monitorOnce       bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the continuous monitoring loop",
	Long: `Starts the dropwatch monitoring loop. Each cycle:
  1. Loads the active targets from the database
  2. Fetches and classifies each product page
  3. Logs every observation to the stock event history
  4. On an out-of-stock to in-stock transition, sends alerts on all
     configured channels and records each delivery outcome

The loop runs at a fixed interval, or on a cron schedule when
monitor.schedule is set in the config.

Examples:
  dropwatch monitor                 # run with config settings
  dropwatch monitor --interval 60   # override the check interval
  dropwatch monitor --once          # single cycle, then exit`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().IntVar(&monitorInterval, "interval", 0,
		"Check interval in seconds (overrides config)")
	monitorCmd.Flags().BoolVar(&monitorScreenshot, "screenshot", false,
		"Force the screenshot + vision detection path")
	monitorCmd.Flags().BoolVar(&monitorOnce, "once", false,
		"Run a single cycle and exit")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown on SIGINT/SIGTERM.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		fmt.Println("\nShutting down gracefully...")
		cancel()
	}()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if monitorInterval > 0 {
		cfg.Monitor.IntervalSeconds = monitorInterval
	}
	if monitorScreenshot {
		cfg.Monitor.UseScreenshot = true
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, "config:", e)
		}
		return fmt.Errorf("invalid configuration (%d problems)", len(errs))
	}

	mon, cleanup, err := buildMonitor(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Printf("dropwatch monitor starting (interval: %ds)\n", cfg.Monitor.IntervalSeconds)
	fmt.Println("Press Ctrl+C to stop gracefully.")
	fmt.Println()

	if monitorOnce {
		mon.RunCycle(ctx)
		return nil
	}
	if err := mon.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("monitor error: %w", err)
	}
	fmt.Println("Monitor stopped.")
	return nil
}

// buildMonitor wires the full stack from config: database, store, fetcher,
// AI provider, screenshot capturer, and notification dispatcher.
func buildMonitor(ctx context.Context, cfg *config.Config) (*monitor.Monitor, func(), error) {
	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	st := store.New(db)

	// Seed the target table from config.
	for _, u := range cfg.Monitor.Targets {
		if err := st.AddTarget(ctx, u, ""); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("seeding target %s: %w", u, err)
		}
	}

	fetcher := fetch.NewHTTP(time.Duration(cfg.Monitor.RequestTimeoutSeconds) * time.Second)

	provider, err := ai.New(cfg.AI)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("configuring AI provider: %w", err)
	}

	var shooter monitor.Screenshotter
	var capturer *screenshot.Capturer
	if cfg.Monitor.UseScreenshot {
		capturer = screenshot.NewCapturer(nil)
		shooter = capturer
	}

	dispatcher := notify.NewDispatcher(cfg.Notify)

	mon := monitor.New(cfg.Monitor, st, fetcher, provider, shooter, dispatcher, nil)
	cleanup := func() {
		if capturer != nil {
			capturer.Close()
		}
		db.Close()
	}
	return mon, cleanup, nil
}
