package cmd

import (
	"github.com/spf13/cobra"

	"github.com/user/skim/internal/ui"
)

var triageCmd = &cobra.Command{
	Use:   "triage",
	Short: "Triage the inbox in the terminal",
	Long:  "Review undecided documents one card at a time with keep/dismiss swipes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTriage()
	},
}

func runTriage() error {
	logger := newLogger()

	cfg, st, catalog, q, err := buildQueue(logger)
	if err != nil {
		return err
	}
	defer st.Close()
	defer q.Wait()

	var summarizer ui.Summarizer
	if svc := newSummarizer(cfg, st, catalog, logger); svc != nil {
		summarizer = svc
	}

	return ui.Run(q, summarizer)
}

func init() {
	rootCmd.AddCommand(triageCmd)
}
