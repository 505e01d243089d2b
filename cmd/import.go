package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/user/skim/internal/config"
	"github.com/user/skim/internal/karakeep"
)

var importDryRun bool
var importYes bool

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Export the library into Karakeep",
	Long:  "Create a Karakeep bookmark for every synced document that has a source URL. Already-imported documents are skipped, so re-running is safe.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.Karakeep.BaseURL == "" || cfg.Karakeep.APIKey == "" {
			return fmt.Errorf("karakeep base_url and api_key are required (config file or KARAKEEP_URL / KARAKEEP_API_KEY)")
		}

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		tracker, err := karakeep.OpenTracker(cfg.ImportDBPath())
		if err != nil {
			return err
		}
		defer tracker.Close()

		client, err := karakeep.NewClient(cfg.Karakeep.BaseURL, cfg.Karakeep.APIKey)
		if err != nil {
			return err
		}

		if !importDryRun && !importYes {
			confirmed := false
			form := huh.NewForm(huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Import your library into %s?", cfg.Karakeep.BaseURL)).
					Affirmative("Import").
					Negative("Cancel").
					Value(&confirmed),
			))
			if err := form.Run(); err != nil {
				return err
			}
			if !confirmed {
				return nil
			}
		}

		importer := karakeep.NewImporter(st, tracker, client, logger)
		importer.DryRun = importDryRun

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		stats, err := importer.Run(ctx)
		if stats != nil {
			fmt.Printf("Created: %d\nAlready existed: %d\nSkipped: %d\nErrors: %d\n",
				stats.Created, stats.Exists, stats.Skipped, stats.Errors)
		}
		return err
	},
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "List what would be imported without creating bookmarks")
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(importCmd)
}
