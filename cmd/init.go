package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/skim/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example config file",
	Long:  "Create ~/.config/skim/config.yaml with commented defaults. Existing files are left untouched.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SaveExampleConfig(); err != nil {
			return err
		}
		fmt.Println("Config written to ~/.config/skim/config.yaml")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
