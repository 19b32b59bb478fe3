package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropwatch/dropwatch/internal/classify"
	"github.com/dropwatch/dropwatch/internal/config"
	"github.com/dropwatch/dropwatch/internal/fetch"
	"github.com/dropwatch/dropwatch/internal/signal"
)

var checkCmd = &cobra.Command{
	Use:   "check <url>",
	Short: "Check a single product page once and print the verdict",
	Long: `Fetches the page, runs the stock classification cascade, and prints the
result. Nothing is written to the database and no alerts are sent.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	pageURL := args[0]

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Monitor.RequestTimeoutSeconds)*time.Second+5*time.Second)
	defer cancel()

	fetcher := fetch.NewHTTP(time.Duration(cfg.Monitor.RequestTimeoutSeconds) * time.Second)
	doc, err := fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", pageURL, err)
	}

	verdict := classify.Classify(signal.Extract(doc, pageURL))

	status := "OUT OF STOCK"
	if verdict.InStock {
		status = "IN STOCK"
	}
	fmt.Printf("%s\n", pageURL)
	fmt.Printf("  Status:     %s\n", status)
	fmt.Printf("  Method:     %s\n", verdict.Method)
	fmt.Printf("  Confidence: %.2f\n", verdict.Confidence)
	if verdict.Product.Name != "" {
		fmt.Printf("  Product:    %s\n", verdict.Product.Name)
	}
	if verdict.Product.Price != "" {
		fmt.Printf("  Price:      %s\n", verdict.Product.Price)
	}
	if verdict.Note != "" {
		fmt.Printf("  Note:       %s\n", verdict.Note)
	}
	return nil
}
