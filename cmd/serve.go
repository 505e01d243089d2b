package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	skimsync "github.com/user/skim/internal/sync"
	"github.com/user/skim/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web triage interface",
	Long:  "Start the HTTP server with the swipe UI, background library sync, and the summarize API.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		cfg, st, catalog, q, err := buildQueue(logger)
		if err != nil {
			return err
		}
		defer st.Close()

		ok, err := catalog.VerifyToken()
		if err != nil {
			return fmt.Errorf("verify readwise token: %w", err)
		}
		if !ok {
			return fmt.Errorf("readwise token rejected, check readwise_token in your config")
		}

		engine := skimsync.New(st, catalog, logger)
		summarizer := newSummarizer(cfg, st, catalog, logger)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		go engine.RunPeriodic(ctx, time.Duration(cfg.SyncIntervalMin)*time.Minute)

		server := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: web.NewServer(q, summarizer, engine, logger).Handler(),
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", "addr", fmt.Sprintf("http://localhost:%d", cfg.Port))
			errCh <- server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		q.Wait()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
