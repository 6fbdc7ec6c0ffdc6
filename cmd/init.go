package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/auto-qa/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize autoqa configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose the generation backend, database and Atlassian site, and writes a .autoqa.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
