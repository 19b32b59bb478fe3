package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/dropwatch/dropwatch/internal/config"
	"github.com/dropwatch/dropwatch/internal/database"
	"github.com/dropwatch/dropwatch/internal/store"
)

var targetCmd = &cobra.Command{
	Use:   "target",
	Short: "Manage monitored product pages",
	Long:  `Add, remove, list, and bulk-import the product pages dropwatch watches.`,
}

var targetName string

var targetAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a product page to the watch list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pageURL := args[0]
		if u, err := url.Parse(pageURL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%q is not an absolute URL", pageURL)
		}
		return withStore(func(ctx context.Context, st *store.Store) error {
			if err := st.AddTarget(ctx, pageURL, targetName); err != nil {
				return err
			}
			fmt.Printf("Watching %s\n", pageURL)
			return nil
		})
	},
}

var targetRemoveCmd = &cobra.Command{
	Use:   "remove <url>",
	Short: "Stop watching a product page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, st *store.Store) error {
			if err := st.DeactivateTarget(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Stopped watching %s\n", args[0])
			return nil
		})
	},
}

var targetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all watched product pages",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, st *store.Store) error {
			targets, err := st.AllTargets(ctx)
			if err != nil {
				return err
			}
			if len(targets) == 0 {
				fmt.Println("No targets. Add one with: dropwatch target add <url>")
				return nil
			}
			for _, t := range targets {
				marker := " "
				if !t.Active {
					marker = "-"
				}
				checked := "never"
				if t.LastChecked != nil {
					checked = t.LastChecked.Local().Format("2006-01-02 15:04:05")
				}
				fmt.Printf("%s %s  (last checked: %s)\n", marker, t.URL, checked)
			}
			return nil
		})
	},
}

// importTarget is one entry of a YAML import file.
type importTarget struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

var targetImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Bulk-import targets from a YAML file",
	Long: `Reads a YAML list of targets and adds each to the watch list:

  - url: https://shop.example.com/products/blind-box
    name: Blind Box Series 5
  - url: https://shop.example.com/products/plush`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		var entries []importTarget
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("parsing %s: %w", args[0], err)
		}
		return withStore(func(ctx context.Context, st *store.Store) error {
			added := 0
			for _, e := range entries {
				if u, err := url.Parse(e.URL); err != nil || u.Scheme == "" || u.Host == "" {
					fmt.Fprintf(os.Stderr, "skipping %q: not an absolute URL\n", e.URL)
					continue
				}
				if err := st.AddTarget(ctx, e.URL, e.Name); err != nil {
					return fmt.Errorf("adding %s: %w", e.URL, err)
				}
				added++
			}
			fmt.Printf("Imported %d targets\n", added)
			return nil
		})
	},
}

// withStore opens the database, migrates, and runs fn with a Store.
func withStore(fn func(context.Context, *store.Store) error) error {
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
	return fn(ctx, store.New(db))
}

func init() {
	targetAddCmd.Flags().StringVar(&targetName, "name", "", "Display name for the product")
	targetCmd.AddCommand(targetAddCmd, targetRemoveCmd, targetListCmd, targetImportCmd)
}
