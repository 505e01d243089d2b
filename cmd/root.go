package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/skim/internal/config"
	"github.com/user/skim/internal/queue"
	"github.com/user/skim/internal/readwise"
	"github.com/user/skim/internal/store"
	"github.com/user/skim/internal/summarize"
)

var rootCmd = &cobra.Command{
	Use:   "skim",
	Short: "Readwise Reader triage",
	Long:  "Mirror your Readwise Reader library locally and triage it with keep/dismiss swipes, from the terminal or the browser.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTriage()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the process-wide structured logger.
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// openStore loads config and opens the library database.
func openStore(cfg *config.Config) (*store.Store, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return store.Open(cfg.DBPath())
}

// newCatalog builds the Readwise client from config.
func newCatalog(cfg *config.Config) (*readwise.Client, error) {
	return readwise.NewClient(cfg.ReadwiseToken)
}

// newSummarizer builds the summary service, or nil when no LLM is
// configured.
func newSummarizer(cfg *config.Config, st *store.Store, catalog *readwise.Client, logger *slog.Logger) *summarize.Service {
	llm := cfg.GetLLMConfig()
	if llm.APIKey == "" && llm.Provider != "ollama" {
		return nil
	}

	client, err := summarize.NewClient(llm.Provider, llm.APIKey,
		summarize.WithBaseURL(llm.BaseURL), summarize.WithModel(llm.Model))
	if err != nil {
		logger.Warn("summarizer disabled", "error", err)
		return nil
	}
	return summarize.NewService(st, catalog, client, logger)
}

// buildQueue assembles the triage queue and its collaborators.
func buildQueue(logger *slog.Logger) (*config.Config, *store.Store, *readwise.Client, *queue.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	catalog, err := newCatalog(cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	return cfg, st, catalog, queue.New(st, catalog, logger), nil
}
