// Package cli holds the fitlog-bot command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Without a subcommand it serves the bot.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fitlog-bot",
		Short:         "Telegram bot for logging workouts",
		Long:          "fitlog-bot runs the workout logging bot together with its admin API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
	root.PersistentFlags().String("config", ".", "Directory holding config.yaml")

	root.AddCommand(newServeCmd())
	root.AddCommand(newSeedCmd())
	root.AddCommand(newSweepCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newHashPasswordCmd())
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}

// configPath returns the --config flag, falling back to FITLOG_CONFIG.
func configPath(cmd *cobra.Command) string {
	if cmd.Flags().Changed("config") {
		p, _ := cmd.Flags().GetString("config")
		return p
	}
	if p := os.Getenv("FITLOG_CONFIG"); p != "" {
		return p
	}
	return "."
}
