package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var dbFlag string
	var envFileFlag string
	var jsonFlag bool

	ctx := newCommandContext(&dbFlag, &envFileFlag, &jsonFlag)

	rootCmd := &cobra.Command{
		Use:           "noticectl",
		Short:         "Administer the noticeboard database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "SQLite database path (default from NOTICEBOARD_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", ".env", "Optional .env file to load")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Print JSON instead of a table")

	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newAnnouncementsCommand(ctx))
	rootCmd.AddCommand(newRecipientsCommand(ctx))
	rootCmd.AddCommand(newDispatchesCommand(ctx))

	return rootCmd
}
