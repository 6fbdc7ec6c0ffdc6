package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/auto-qa/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "autoqa",
	Short: "AI-assisted QA test case and test plan generation",
	Long: `Auto QA turns user stories, acceptance criteria, documents, Confluence
pages and Jira stories into structured test cases and test plans. It also
answers QA questions from a team knowledge base, over HTTP, a websocket and
MCP for AI agents.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
