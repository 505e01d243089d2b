package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/skim/internal/config"
	skimsync "github.com/user/skim/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the library once and exit",
	Long:  "Pull new and updated documents from Readwise Reader into the local database.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		catalog, err := newCatalog(cfg)
		if err != nil {
			return err
		}

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		engine := skimsync.New(st, catalog, logger)
		result, err := engine.Run(context.Background())
		if err != nil {
			return err
		}

		mode := "full"
		if result.Incremental {
			mode = "incremental"
		}
		fmt.Printf("Synced %d documents (%s)\n", result.Updated, mode)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
