package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropwatch/dropwatch/internal/config"
	"github.com/dropwatch/dropwatch/internal/database"
	"github.com/dropwatch/dropwatch/internal/store"
	"github.com/dropwatch/dropwatch/models"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the latest stock state per target and recent alert activity",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	db, err := database.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	st := store.New(db)

	targets, err := st.ActiveTargets(ctx)
	if err != nil {
		return fmt.Errorf("loading targets: %w", err)
	}
	events, err := st.LatestEvents(ctx)
	if err != nil {
		return fmt.Errorf("loading events: %w", err)
	}
	latest := make(map[string]models.StockEvent, len(events))
	for _, ev := range events {
		latest[ev.URL] = ev
	}

	if len(targets) == 0 {
		fmt.Println("No targets. Add one with: dropwatch target add <url>")
		return nil
	}

	fmt.Printf("Targets (%d):\n", len(targets))
	for _, t := range targets {
		ev, ok := latest[t.URL]
		switch {
		case !ok:
			fmt.Printf("  ?  %s (not checked yet)\n", t.DisplayName())
		case ev.InStock:
			fmt.Printf("  ✅ %s  %s  [%s %.2f]  %s\n",
				t.DisplayName(), ev.Price, ev.Method, ev.Confidence,
				ev.CheckedAt.Local().Format("2006-01-02 15:04:05"))
		default:
			fmt.Printf("  ❌ %s  [%s %.2f]  %s\n",
				t.DisplayName(), ev.Method, ev.Confidence,
				ev.CheckedAt.Local().Format("2006-01-02 15:04:05"))
		}
	}

	stats, err := st.NotificationStats(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		return fmt.Errorf("loading notification stats: %w", err)
	}
	if len(stats) > 0 {
		fmt.Println("\nNotifications (last 24h):")
		for _, s := range stats {
			fmt.Printf("  %-10s %-8s %d\n", s.Channel, s.Status, s.Count)
		}
	}
	return nil
}
